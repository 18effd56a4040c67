package registry

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"gurucool/api/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject"`
		Unit    string `json:"unit"`
		Lecture string `json:"lecture"`
		Name    string `json:"name"`
		URL     string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	doc := &Document{Subject: req.Subject, Unit: req.Unit, Lecture: req.Lecture, Name: req.Name, URL: req.URL}
	if err := h.service.Register(r.Context(), doc); err != nil {
		if strings.Contains(err.Error(), "required") {
			h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "failed to register document", "error", err, "url", req.URL)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]any{"data": doc}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subject, unit, lecture := q.Get("subject"), q.Get("unit"), q.Get("lecture")
	if subject == "" || unit == "" || lecture == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "subject, unit and lecture are required", http.StatusBadRequest)
		return
	}

	docs, err := h.service.List(r.Context(), subject, unit, lecture)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list documents", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []Document{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": docs}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if IsNotFound(err) {
			h.writeError(r.Context(), w, "NOT_FOUND", "document not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete document", "error", err, "id", id)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
