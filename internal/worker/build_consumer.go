package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"gurucool/api/features/job"
	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/middleware"
)

// TopicBuild carries asynchronous bundle-build requests.
const TopicBuild = "embeddings.build"

// BuildPayload is the message body on TopicBuild.
type BuildPayload struct {
	Subject       string   `json:"subject"`
	Unit          string   `json:"unit"`
	Lecture       string   `json:"lecture"`
	DocumentURLs  []string `json:"document_urls,omitempty"`
	CorrelationID string   `json:"correlation_id"`
}

// BundleBuilder is the slice of the cache store the consumer needs.
type BundleBuilder interface {
	GetOrBuild(ctx context.Context, req embedcache.BuildRequest) (*embedcache.Bundle, error)
}

// ArtifactRecorder stamps registry documents with the bundle built from
// them. Best effort; failures are logged and ignored.
type ArtifactRecorder interface {
	RecordBundleArtifact(ctx context.Context, subject, unit, lecture, artifact string) error
}

// BuildConsumer drains TopicBuild, running one bundle build per message.
// Transient failures are retried through NSQ; deterministic build failures
// (no sources, empty corpus) are recorded as failed jobs and not retried.
type BuildConsumer struct {
	cache     BundleBuilder
	jobRepo   job.Repository
	artifacts ArtifactRecorder
	buildTTL  time.Duration
}

func NewBuildConsumer(cache BundleBuilder, jobRepo job.Repository, artifacts ArtifactRecorder) *BuildConsumer {
	return &BuildConsumer{cache: cache, jobRepo: jobRepo, artifacts: artifacts, buildTTL: 10 * time.Minute}
}

func (h *BuildConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload BuildPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// poison pill, don't retry
		slog.Error("poison pill: invalid build payload", "error", err)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}
	ctx, cancel := context.WithTimeout(ctx, h.buildTTL)
	defer cancel()

	_, err := h.cache.GetOrBuild(ctx, embedcache.BuildRequest{
		Subject:   payload.Subject,
		Unit:      payload.Unit,
		Lecture:   payload.Lecture,
		Locations: payload.DocumentURLs,
	})
	if err == nil {
		slog.InfoContext(ctx, "build completed", "lecture", payload.Lecture)
		if h.artifacts != nil {
			artifact := embedcache.BundleFileName(payload.Lecture)
			if err := h.artifacts.RecordBundleArtifact(ctx, payload.Subject, payload.Unit, payload.Lecture, artifact); err != nil {
				slog.WarnContext(ctx, "failed to record bundle artifact", "lecture", payload.Lecture, "error", err)
			}
		}
		return nil
	}

	if errors.Is(err, embedcache.ErrNoSources) || errors.Is(err, embedcache.ErrEmptyCorpus) {
		slog.ErrorContext(ctx, "build failed permanently", "lecture", payload.Lecture, "error", err)
		h.recordFailure(ctx, payload, m.Body, err)
		return nil
	}

	slog.ErrorContext(ctx, "build failed, will retry", "lecture", payload.Lecture, "error", err)
	return err
}

func (h *BuildConsumer) recordFailure(ctx context.Context, payload BuildPayload, body []byte, cause error) {
	if h.jobRepo == nil {
		return
	}
	j := &job.Job{
		Lecture: payload.Lecture,
		Topic:   TopicBuild,
		Payload: json.RawMessage(body),
		Error:   cause.Error(),
	}
	if err := h.jobRepo.Save(ctx, j); err != nil {
		slog.ErrorContext(ctx, "failed to record failed build", "lecture", payload.Lecture, "error", err)
	}
}
