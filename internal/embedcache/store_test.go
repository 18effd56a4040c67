package embedcache

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gurucool/api/internal/ingest"
)

type stubEmbedder struct {
	calls atomic.Int32
}

func (e *stubEmbedder) Embed(_ context.Context, content string) ([]float32, error) {
	e.calls.Add(1)
	return []float32{float32(len(content)), 1, 0}, nil
}

type stubIngestor struct {
	docs  []ingest.Document
	calls atomic.Int32
	delay time.Duration

	gotLocations []string
}

func (i *stubIngestor) Ingest(_ context.Context, locations []string, _ string) ([]ingest.Document, error) {
	i.calls.Add(1)
	i.gotLocations = locations
	if i.delay > 0 {
		time.Sleep(i.delay)
	}
	return i.docs, nil
}

type stubResolver struct {
	urls []string
	err  error
}

func (r *stubResolver) ResolveSources(_ context.Context, _, _, _ string) ([]string, error) {
	return r.urls, r.err
}

func newTestStore(t *testing.T, ing Ingestor, res SourceResolver) (*Store, *stubEmbedder) {
	t.Helper()
	emb := &stubEmbedder{}
	s := NewStore(t.TempDir(), t.TempDir(), emb, ing, res)
	return s, emb
}

func request() BuildRequest {
	return BuildRequest{
		Subject:   "physics",
		Unit:      "unit1",
		Lecture:   "lec42",
		Locations: []string{"https://example.com/a.txt"},
	}
}

func TestGetOrBuild(t *testing.T) {
	t.Run("Idempotent Build", func(t *testing.T) {
		ing := &stubIngestor{docs: []ingest.Document{{Content: "The sky is blue.", Source: "a.txt"}}}
		s, emb := newTestStore(t, ing, nil)

		first, err := s.GetOrBuild(context.Background(), request())
		require.NoError(t, err)
		second, err := s.GetOrBuild(context.Background(), request())
		require.NoError(t, err)

		assert.Equal(t, int32(1), ing.calls.Load())
		assert.Equal(t, int32(1), emb.calls.Load())
		assert.Equal(t, first.Chunks, second.Chunks)
		assert.Equal(t, first.Embeddings, second.Embeddings)
	})

	t.Run("Bundle Invariant", func(t *testing.T) {
		ing := &stubIngestor{docs: []ingest.Document{
			{Content: "alpha", Source: "a.txt"},
			{Content: "beta", Source: "b.txt"},
		}}
		s, _ := newTestStore(t, ing, nil)

		b, err := s.GetOrBuild(context.Background(), request())
		require.NoError(t, err)
		assert.Equal(t, len(b.Chunks), len(b.Embeddings))
		assert.Equal(t, len(b.Chunks), b.Index.Len())
	})

	t.Run("At Most One Build", func(t *testing.T) {
		ing := &stubIngestor{
			docs:  []ingest.Document{{Content: "Grass is green.", Source: "b.txt"}},
			delay: 50 * time.Millisecond,
		}
		s, _ := newTestStore(t, ing, nil)

		const n = 8
		bundles := make([]*Bundle, n)
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				bundles[i], errs[i] = s.GetOrBuild(context.Background(), request())
			}(i)
		}
		wg.Wait()

		for i := 0; i < n; i++ {
			require.NoError(t, errs[i])
		}
		assert.Equal(t, int32(1), ing.calls.Load())
		for i := 1; i < n; i++ {
			assert.Equal(t, bundles[0].Chunks, bundles[i].Chunks)
		}
	})

	t.Run("Empty Corpus Not Cached", func(t *testing.T) {
		ing := &stubIngestor{}
		s, _ := newTestStore(t, ing, nil)

		_, err := s.GetOrBuild(context.Background(), request())
		assert.ErrorIs(t, err, ErrEmptyCorpus)

		entries, err := os.ReadDir(s.cachePath)
		require.NoError(t, err)
		assert.Empty(t, entries, "failed build must leave no bundle file")

		_, err = s.Load(context.Background(), "lec42")
		assert.ErrorIs(t, err, ErrNotCached)
	})

	t.Run("Missing Sources", func(t *testing.T) {
		s, _ := newTestStore(t, &stubIngestor{}, &stubResolver{})
		req := request()
		req.Locations = nil

		_, err := s.GetOrBuild(context.Background(), req)
		assert.ErrorIs(t, err, ErrNoSources)
	})

	t.Run("Resolver Fallback", func(t *testing.T) {
		ing := &stubIngestor{docs: []ingest.Document{{Content: "resolved", Source: "r.txt"}}}
		res := &stubResolver{urls: []string{"https://example.com/r.txt"}}
		s, _ := newTestStore(t, ing, res)
		req := request()
		req.Locations = nil

		_, err := s.GetOrBuild(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, res.urls, ing.gotLocations)
	})

	t.Run("Resolver Error Propagates", func(t *testing.T) {
		res := &stubResolver{err: errors.New("registry down")}
		s, _ := newTestStore(t, &stubIngestor{}, res)
		req := request()
		req.Locations = nil

		_, err := s.GetOrBuild(context.Background(), req)
		assert.ErrorContains(t, err, "registry down")
	})
}

func TestLoad(t *testing.T) {
	t.Run("Miss Returns ErrNotCached", func(t *testing.T) {
		s, _ := newTestStore(t, &stubIngestor{}, nil)
		_, err := s.Load(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotCached)
	})

	t.Run("Round Trip", func(t *testing.T) {
		ing := &stubIngestor{docs: []ingest.Document{{Content: "persisted", Source: "p.txt"}}}
		s, _ := newTestStore(t, ing, nil)

		built, err := s.GetOrBuild(context.Background(), request())
		require.NoError(t, err)

		loaded, err := s.Load(context.Background(), "lec42")
		require.NoError(t, err)
		assert.Equal(t, built.Chunks, loaded.Chunks)
		assert.Equal(t, built.Embeddings, loaded.Embeddings)
		assert.Equal(t, built.Index.Dim, loaded.Index.Dim)
	})
}

func TestInvalidate(t *testing.T) {
	ing := &stubIngestor{docs: []ingest.Document{{Content: "v1", Source: "a.txt"}}}
	s, _ := newTestStore(t, ing, nil)

	_, err := s.GetOrBuild(context.Background(), request())
	require.NoError(t, err)

	require.NoError(t, s.Invalidate(context.Background(), "lec42"))
	_, err = s.Load(context.Background(), "lec42")
	assert.ErrorIs(t, err, ErrNotCached)

	// rebuild runs the expensive path again
	_, err = s.GetOrBuild(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, int32(2), ing.calls.Load())

	assert.ErrorIs(t, s.Invalidate(context.Background(), "never-built"), ErrNotCached)
}

func TestCount(t *testing.T) {
	ing := &stubIngestor{docs: []ingest.Document{{Content: "x", Source: "a.txt"}}}
	s, _ := newTestStore(t, ing, nil)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = s.GetOrBuild(context.Background(), request())
	require.NoError(t, err)

	n, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
