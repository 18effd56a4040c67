package embeddings

import (
	"context"
	"encoding/json"
	"fmt"

	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/middleware"
	"gurucool/api/internal/worker"
)

// Publisher is the slice of the NSQ producer the service needs.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// CacheStore is the slice of the embedding cache the service needs.
type CacheStore interface {
	GetOrBuild(ctx context.Context, req embedcache.BuildRequest) (*embedcache.Bundle, error)
	Invalidate(ctx context.Context, lecture string) error
}

// Service triggers embedding-bundle builds, either inline or through the
// build worker, and invalidates cached bundles.
type Service struct {
	cache     CacheStore
	publisher Publisher
}

func NewService(cache CacheStore, publisher Publisher) *Service {
	return &Service{cache: cache, publisher: publisher}
}

// BuildSync builds the bundle on the calling goroutine and reports its size.
func (s *Service) BuildSync(ctx context.Context, subject, unit, lecture string, urls []string) (int, error) {
	b, err := s.cache.GetOrBuild(ctx, embedcache.BuildRequest{
		Subject:   subject,
		Unit:      unit,
		Lecture:   lecture,
		Locations: urls,
	})
	if err != nil {
		return 0, err
	}
	return len(b.Chunks), nil
}

// Enqueue hands the build to the worker via NSQ and returns immediately.
func (s *Service) Enqueue(ctx context.Context, subject, unit, lecture string, urls []string) error {
	payload := worker.BuildPayload{
		Subject:       subject,
		Unit:          unit,
		Lecture:       lecture,
		DocumentURLs:  urls,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal build payload: %w", err)
	}
	return s.publisher.Publish(worker.TopicBuild, body)
}

// Invalidate deletes the cached bundle for a lecture. The next read
// triggers a rebuild from the current document set.
func (s *Service) Invalidate(ctx context.Context, lecture string) error {
	return s.cache.Invalidate(ctx, lecture)
}
