package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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

type quizRequest struct {
	Lecture string `json:"lecture"`
	Count   int    `json:"count,omitempty"`
}

// Questions returns a batch of short-answer questions for a lecture.
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	questions, err := h.service.Questions(r.Context(), req.Lecture, req.Count)
	if err != nil {
		h.writeGenerationError(r.Context(), w, req.Lecture, err)
		return
	}
	h.writeData(w, map[string]any{"lecture": req.Lecture, "questions": questions})
}

// MCQs returns a batch of multiple-choice questions for a lecture.
func (h *Handler) MCQs(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	mcqs, err := h.service.MCQs(r.Context(), req.Lecture, req.Count)
	if err != nil {
		h.writeGenerationError(r.Context(), w, req.Lecture, err)
		return
	}
	h.writeData(w, map[string]any{"lecture": req.Lecture, "questions": mcqs})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (quizRequest, bool) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return req, false
	}
	if req.Lecture == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "lecture is required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *Handler) writeGenerationError(ctx context.Context, w http.ResponseWriter, lecture string, err error) {
	switch {
	case errors.Is(err, embedcache.ErrNotCached):
		h.writeError(ctx, w, "NOT_CACHED", "no embedding cache for lecture, build it first", http.StatusNotFound)
	case errors.Is(err, generate.ErrNoItems):
		h.writeError(ctx, w, "NO_ITEMS", "model produced no usable questions", http.StatusBadGateway)
	default:
		slog.ErrorContext(ctx, "quiz generation failed", "error", err, "lecture", lecture)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
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
