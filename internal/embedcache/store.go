package embedcache

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gurucool/api/internal/ingest"
	"gurucool/api/internal/text"
	"gurucool/api/internal/vector"
)

var (
	// ErrNoSources means no document locations were supplied and the registry
	// lookup produced none.
	ErrNoSources = errors.New("no document sources for lecture")
	// ErrEmptyCorpus means ingestion produced zero chunks; nothing is cached.
	ErrEmptyCorpus = errors.New("ingestion produced no content")
	// ErrNotCached is returned by read-only lookups for lectures that were
	// never built.
	ErrNotCached = errors.New("no cached embeddings for lecture")
)

const bundleSuffix = "_embedding_cache.gob"

// BundleFileName is the on-disk name of a lecture's bundle, relative to the
// cache root.
func BundleFileName(lecture string) string {
	return lecture + bundleSuffix
}

// Bundle is the persisted triple for one lecture: the embedding matrix, the
// searchable index built over it, and the chunks that produced it, all in the
// same order. A bundle is built once, lazily, and is immutable afterwards.
type Bundle struct {
	Embeddings [][]float32
	Index      *vector.Flat
	Chunks     []text.Chunk
}

// Embedder computes a fixed-dimensionality vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, content string) ([]float32, error)
}

// Ingestor fetches and parses lecture source files.
type Ingestor interface {
	Ingest(ctx context.Context, locations []string, dest string) ([]ingest.Document, error)
}

// SourceResolver looks up document locations for a lecture when the caller
// did not supply any.
type SourceResolver interface {
	ResolveSources(ctx context.Context, subject, unit, lecture string) ([]string, error)
}

// BuildRequest identifies a lecture and, optionally, the documents to build
// its bundle from. Subject and Unit place the ingested files on disk and feed
// the registry lookup when Locations is empty.
type BuildRequest struct {
	Subject   string
	Unit      string
	Lecture   string
	Locations []string
}

// Store maps lecture identifiers to persisted bundles. Concurrent builds for
// the same lecture are collapsed to one: late arrivals wait for the in-flight
// build and share its result.
type Store struct {
	cachePath string
	dataPath  string
	chunkSize int
	overlap   int

	embedder Embedder
	ingestor Ingestor
	resolver SourceResolver

	mu       sync.Mutex
	inflight map[string]*build
}

type build struct {
	done   chan struct{}
	bundle *Bundle
	err    error
}

func NewStore(cachePath, dataPath string, embedder Embedder, ingestor Ingestor, resolver SourceResolver) *Store {
	return &Store{
		cachePath: cachePath,
		dataPath:  dataPath,
		chunkSize: text.DefaultChunkSize,
		overlap:   text.DefaultOverlap,
		embedder:  embedder,
		ingestor:  ingestor,
		resolver:  resolver,
		inflight:  make(map[string]*build),
	}
}

// WithChunking overrides the default chunking parameters. Call before the
// first build; changing them afterwards would mix window sizes across bundles.
func (s *Store) WithChunking(chunkSize, overlap int) *Store {
	if chunkSize > 0 {
		s.chunkSize = chunkSize
	}
	if overlap >= 0 {
		s.overlap = overlap
	}
	return s
}

func (s *Store) bundlePath(lecture string) string {
	return filepath.Join(s.cachePath, BundleFileName(lecture))
}

// Load returns the persisted bundle for a lecture without building anything.
func (s *Store) Load(ctx context.Context, lecture string) (*Bundle, error) {
	b, err := readBundle(s.bundlePath(lecture))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, lecture)
	}
	if err != nil {
		return nil, fmt.Errorf("load bundle %s: %w", lecture, err)
	}
	slog.DebugContext(ctx, "bundle loaded from cache", "lecture", lecture, "chunks", len(b.Chunks))
	return b, nil
}

// GetOrBuild returns the cached bundle for the lecture, building and
// persisting it on first miss. A cached bundle is trusted as-is; no staleness
// check against the sources is performed. Build failures leave no partial
// bundle on disk.
func (s *Store) GetOrBuild(ctx context.Context, req BuildRequest) (*Bundle, error) {
	for {
		if b, err := s.Load(ctx, req.Lecture); err == nil {
			return b, nil
		} else if !errors.Is(err, ErrNotCached) {
			return nil, err
		}

		s.mu.Lock()
		if fl, ok := s.inflight[req.Lecture]; ok {
			s.mu.Unlock()
			select {
			case <-fl.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if fl.err != nil {
				// the owning build failed; re-check the cache and retry
				continue
			}
			return fl.bundle, nil
		}
		fl := &build{done: make(chan struct{})}
		s.inflight[req.Lecture] = fl
		s.mu.Unlock()

		fl.bundle, fl.err = s.build(ctx, req)
		close(fl.done)
		s.mu.Lock()
		delete(s.inflight, req.Lecture)
		s.mu.Unlock()

		return fl.bundle, fl.err
	}
}

func (s *Store) build(ctx context.Context, req BuildRequest) (*Bundle, error) {
	start := time.Now()

	locations := req.Locations
	if len(locations) == 0 {
		if s.resolver == nil {
			return nil, ErrNoSources
		}
		resolved, err := s.resolver.ResolveSources(ctx, req.Subject, req.Unit, req.Lecture)
		if err != nil {
			return nil, fmt.Errorf("resolve sources: %w", err)
		}
		locations = resolved
	}
	if len(locations) == 0 {
		return nil, ErrNoSources
	}

	dest := filepath.Join(s.dataPath, req.Subject, req.Unit, req.Lecture)
	docs, err := s.ingestor.Ingest(ctx, locations, dest)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	chunks := ingest.Chunks(docs, s.chunkSize, s.overlap)
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	embeddings := make([][]float32, len(chunks))
	for i, c := range chunks {
		v, err := s.embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		embeddings[i] = v
	}

	index := vector.NewFlat(len(embeddings[0]))
	if err := index.Add(embeddings...); err != nil {
		return nil, fmt.Errorf("index embeddings: %w", err)
	}

	bundle := &Bundle{Embeddings: embeddings, Index: index, Chunks: chunks}
	if err := s.persist(req.Lecture, bundle); err != nil {
		return nil, fmt.Errorf("persist bundle: %w", err)
	}

	slog.InfoContext(ctx, "embedding bundle built",
		"lecture", req.Lecture, "chunks", len(chunks), "dim", index.Dim, "took", time.Since(start))
	return bundle, nil
}

// persist writes the bundle to a temp file and publishes it with a rename so
// readers never observe a partially written bundle.
func (s *Store) persist(lecture string, b *Bundle) error {
	if err := os.MkdirAll(s.cachePath, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.cachePath, lecture+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.bundlePath(lecture))
}

// Invalidate removes a lecture's persisted bundle, forcing the next
// GetOrBuild to rebuild from sources. Invalidating an unknown lecture
// returns ErrNotCached.
func (s *Store) Invalidate(ctx context.Context, lecture string) error {
	err := os.Remove(s.bundlePath(lecture))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotCached, lecture)
	}
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "bundle invalidated", "lecture", lecture)
	return nil
}

// Count reports how many bundles are currently persisted.
func (s *Store) Count() (int, error) {
	entries, err := os.ReadDir(s.cachePath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), bundleSuffix) {
			n++
		}
	}
	return n, nil
}

func readBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &b, nil
}
