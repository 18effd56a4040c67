package registry

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document ID does not exist or was deleted.
var ErrNotFound = errors.New("document not found")

// Document is one registered source file for a lecture. URL points at blob
// storage; Artifact optionally references a derived artifact (for example a
// generated summary) written back after processing.
type Document struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	Unit     string `json:"unit"`
	Lecture  string `json:"lecture"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Artifact string `json:"artifact,omitempty"`
}

type Repository interface {
	Save(ctx context.Context, doc *Document) error
	ListByLecture(ctx context.Context, subject, unit, lecture string) ([]Document, error)
	SetArtifact(ctx context.Context, id, artifact string) error
	SoftDelete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Service exposes the registry to the rest of the system: document
// registration for teachers and source resolution for cache builds.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, doc *Document) error {
	if doc.Subject == "" || doc.Unit == "" || doc.Lecture == "" || doc.URL == "" {
		return fmt.Errorf("subject, unit, lecture and url are required")
	}
	return s.repo.Save(ctx, doc)
}

func (s *Service) List(ctx context.Context, subject, unit, lecture string) ([]Document, error) {
	return s.repo.ListByLecture(ctx, subject, unit, lecture)
}

// ResolveSources returns the registered document URLs for a lecture, in
// registration order. An empty result is not an error here; callers decide
// whether a lecture without sources is fatal.
func (s *Service) ResolveSources(ctx context.Context, subject, unit, lecture string) ([]string, error) {
	docs, err := s.repo.ListByLecture(ctx, subject, unit, lecture)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(docs))
	for _, d := range docs {
		urls = append(urls, d.URL)
	}
	return urls, nil
}

// RecordArtifact attaches a derived-artifact reference to a document. The
// contract is write-only and best effort from the caller's perspective.
func (s *Service) RecordArtifact(ctx context.Context, id, artifact string) error {
	return s.repo.SetArtifact(ctx, id, artifact)
}

// RecordBundleArtifact stamps every document of a lecture with the bundle
// that was built from it. Best effort: a failed stamp is logged by the
// caller, never propagated into the build result.
func (s *Service) RecordBundleArtifact(ctx context.Context, subject, unit, lecture, artifact string) error {
	docs, err := s.repo.ListByLecture(ctx, subject, unit, lecture)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := s.repo.SetArtifact(ctx, d.ID, artifact); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
