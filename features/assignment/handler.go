package assignment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/generate"
	"gurucool/api/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Questions returns an assignment question set for a lecture.
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lecture string `json:"lecture"`
		Count   int    `json:"count,omitempty"`
		Kind    string `json:"kind,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Lecture == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "lecture is required", http.StatusBadRequest)
		return
	}

	questions, err := h.service.Questions(r.Context(), req.Lecture, req.Count, generate.Kind(req.Kind))
	if err != nil {
		switch {
		case errors.Is(err, embedcache.ErrNotCached):
			h.writeError(r.Context(), w, "NOT_CACHED", "no embedding cache for lecture, build it first", http.StatusNotFound)
		case errors.Is(err, generate.ErrNoItems):
			h.writeError(r.Context(), w, "NO_ITEMS", "model produced no usable questions", http.StatusBadGateway)
		case strings.Contains(err.Error(), "unsupported assignment kind"):
			h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		default:
			slog.ErrorContext(r.Context(), "assignment generation failed", "error", err, "lecture", req.Lecture)
			h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{"data": map[string]any{"lecture": req.Lecture, "questions": questions}}
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
