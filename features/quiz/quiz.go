package quiz

import (
	"context"

	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/generate"
	"gurucool/api/internal/text"
)

// BundleLoader reads cached bundles; quiz generation never builds one.
type BundleLoader interface {
	Load(ctx context.Context, lecture string) (*embedcache.Bundle, error)
}

// ItemSource produces quiz items from lecture chunks.
type ItemSource interface {
	Questions(ctx context.Context, chunks []text.Chunk, count int, kind generate.Kind) ([]generate.Question, error)
	MCQs(ctx context.Context, chunks []text.Chunk, count int) ([]generate.MCQ, error)
}

// DefaultCount is the batch size when the request does not name one.
const DefaultCount = 5

// Service generates short-answer quizzes and MCQs over a lecture's
// cached bundle.
type Service struct {
	loader BundleLoader
	items  ItemSource
}

func NewService(loader BundleLoader, items ItemSource) *Service {
	return &Service{loader: loader, items: items}
}

func (s *Service) Questions(ctx context.Context, lecture string, count int) ([]generate.Question, error) {
	if count <= 0 {
		count = DefaultCount
	}
	bundle, err := s.loader.Load(ctx, lecture)
	if err != nil {
		return nil, err
	}
	return s.items.Questions(ctx, bundle.Chunks, count, generate.KindShort)
}

func (s *Service) MCQs(ctx context.Context, lecture string, count int) ([]generate.MCQ, error) {
	if count <= 0 {
		count = DefaultCount
	}
	bundle, err := s.loader.Load(ctx, lecture)
	if err != nil {
		return nil, err
	}
	return s.items.MCQs(ctx, bundle.Chunks, count)
}
