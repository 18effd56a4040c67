package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Build accepts a build request. With "sync": true the bundle is built
// before responding; otherwise the build is queued and 202 returned.
func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject      string   `json:"subject"`
		Unit         string   `json:"unit"`
		Lecture      string   `json:"lecture"`
		DocumentURLs []string `json:"document_urls,omitempty"`
		Sync         bool     `json:"sync,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Subject == "" || req.Unit == "" || req.Lecture == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "subject, unit and lecture are required", http.StatusBadRequest)
		return
	}

	if !req.Sync {
		if err := h.service.Enqueue(r.Context(), req.Subject, req.Unit, req.Lecture, req.DocumentURLs); err != nil {
			slog.ErrorContext(r.Context(), "failed to enqueue build", "error", err, "lecture", req.Lecture)
			h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.writeData(w, http.StatusAccepted, map[string]string{"status": "queued", "lecture": req.Lecture})
		return
	}

	chunks, err := h.service.BuildSync(r.Context(), req.Subject, req.Unit, req.Lecture, req.DocumentURLs)
	if err != nil {
		switch {
		case errors.Is(err, embedcache.ErrNoSources):
			h.writeError(r.Context(), w, "NO_SOURCES", "no documents registered for lecture", http.StatusNotFound)
		case errors.Is(err, embedcache.ErrEmptyCorpus):
			h.writeError(r.Context(), w, "EMPTY_CORPUS", "documents produced no text", http.StatusUnprocessableEntity)
		default:
			slog.ErrorContext(r.Context(), "bundle build failed", "error", err, "lecture", req.Lecture)
			h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	h.writeData(w, http.StatusCreated, map[string]any{"lecture": req.Lecture, "chunks": chunks})
}

// Invalidate removes the cached bundle for a lecture.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	lecture := r.PathValue("lecture")
	if lecture == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "lecture is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Invalidate(r.Context(), lecture); err != nil {
		if errors.Is(err, embedcache.ErrNotCached) {
			h.writeError(r.Context(), w, "NOT_FOUND", "no cached bundle for lecture", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to invalidate bundle", "error", err, "lecture", lecture)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"data": data}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]any{
		"error":         map[string]string{"code": code, "message": message},
		"correlationId": middleware.GetCorrelationID(ctx),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
