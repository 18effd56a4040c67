package assignment

import (
	"context"
	"fmt"

	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/generate"
	"gurucool/api/internal/text"
)

// BundleLoader reads cached bundles; assignment generation never builds one.
type BundleLoader interface {
	Load(ctx context.Context, lecture string) (*embedcache.Bundle, error)
}

// ItemSource produces assignment questions from lecture chunks.
type ItemSource interface {
	Questions(ctx context.Context, chunks []text.Chunk, count int, kind generate.Kind) ([]generate.Question, error)
}

// DefaultCount is the batch size when the request does not name one.
const DefaultCount = 5

// Service generates assignment question sets. Assignments default to
// long-form questions; short-answer sets are available on request.
type Service struct {
	loader BundleLoader
	items  ItemSource
}

func NewService(loader BundleLoader, items ItemSource) *Service {
	return &Service{loader: loader, items: items}
}

func (s *Service) Questions(ctx context.Context, lecture string, count int, kind generate.Kind) ([]generate.Question, error) {
	if count <= 0 {
		count = DefaultCount
	}
	switch kind {
	case "":
		kind = generate.KindLong
	case generate.KindShort, generate.KindLong:
	default:
		return nil, fmt.Errorf("unsupported assignment kind %q", kind)
	}

	bundle, err := s.loader.Load(ctx, lecture)
	if err != nil {
		return nil, err
	}
	return s.items.Questions(ctx, bundle.Chunks, count, kind)
}
