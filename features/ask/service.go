package ask

import (
	"context"

	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/session"
	"gurucool/api/internal/text"
)

// BundleLoader reads cached bundles. Asking never triggers a build; a
// miss surfaces as embedcache.ErrNotCached.
type BundleLoader interface {
	Load(ctx context.Context, lecture string) (*embedcache.Bundle, error)
}

// Retriever selects the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, bundle *embedcache.Bundle, k int) ([]text.Chunk, error)
}

// Answerer composes an answer from retrieved chunks and conversation history.
type Answerer interface {
	Answer(ctx context.Context, query string, chunks []text.Chunk, history *session.History) (string, []string, error)
}

// Answer is the response to one question.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Service answers questions over a lecture's cached bundle, threading
// per-session conversation history through the generator.
type Service struct {
	loader    BundleLoader
	retriever Retriever
	answerer  Answerer
	sessions  *session.Store
	topK      int
}

func NewService(loader BundleLoader, retriever Retriever, answerer Answerer, sessions *session.Store, topK int) *Service {
	return &Service{loader: loader, retriever: retriever, answerer: answerer, sessions: sessions, topK: topK}
}

func (s *Service) Ask(ctx context.Context, sessionID, lecture, query string) (*Answer, error) {
	bundle, err := s.loader.Load(ctx, lecture)
	if err != nil {
		return nil, err
	}

	chunks, err := s.retriever.Retrieve(ctx, query, bundle, s.topK)
	if err != nil {
		return nil, err
	}

	history := s.sessions.Get(sessionID)
	answer, sources, err := s.answerer.Answer(ctx, query, chunks, history)
	if err != nil {
		return nil, err
	}

	return &Answer{Answer: answer, Sources: sources}, nil
}
