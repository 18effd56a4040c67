package ask

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Ask answers a question against a lecture's cached bundle. A missing
// session_id starts a fresh conversation and returns its id.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id,omitempty"`
		Lecture   string `json:"lecture"`
		Query     string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Lecture == "" || req.Query == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "lecture and query are required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	answer, err := h.service.Ask(r.Context(), req.SessionID, req.Lecture, req.Query)
	if err != nil {
		if errors.Is(err, embedcache.ErrNotCached) {
			h.writeError(r.Context(), w, "NOT_CACHED", "no embedding cache for lecture, build it first", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to answer query", "error", err, "lecture", req.Lecture)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{
		"data": map[string]any{
			"session_id": req.SessionID,
			"answer":     answer.Answer,
			"sources":    answer.Sources,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
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
