package retrieval

import (
	"context"
	"fmt"
	"time"

	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/middleware"
	"gurucool/api/internal/text"
)

// DefaultTopK is how many chunks a retrieval returns when the caller does not
// ask for a specific count.
const DefaultTopK = 5

// Embedder mirrors the embedding contract used at build time. Queries must be
// embedded with the same model that produced the bundle; a dimension mismatch
// is surfaced as an error by the index.
type Embedder interface {
	Embed(ctx context.Context, content string) ([]float32, error)
}

// Service retrieves the chunks nearest to a query from a cache bundle.
type Service struct {
	embedder Embedder
	logger   *QueryLogger
}

func NewService(e Embedder, l *QueryLogger) *Service {
	return &Service{embedder: e, logger: l}
}

// Retrieve embeds the query and returns the k nearest chunks in ascending
// distance order. k values above the corpus size return the whole corpus;
// non-positive k falls back to DefaultTopK.
func (s *Service) Retrieve(ctx context.Context, query string, bundle *embedcache.Bundle, k int) ([]text.Chunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	start := time.Now()

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := bundle.Index.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	chunks := make([]text.Chunk, len(results))
	for i, r := range results {
		chunks[i] = bundle.Chunks[r.Index]
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:         query,
			NumResults:    len(chunks),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}
	return chunks, nil
}
