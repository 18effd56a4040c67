package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		location string
		idx      int
		want     string
	}{
		{"Plain File", "https://example.com/docs/notes.pdf", 0, "notes.pdf"},
		{"Query String Stripped", "https://example.com/slides.pptx?token=abc", 1, "slides.pptx"},
		{"No Extension", "https://example.com/download", 2, "document_2.txt"},
		{"Trailing Slash", "https://example.com/docs/", 3, "document_3.txt"},
		{"Unparseable", "://bad", 4, "document_4.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.location, tt.idx))
		})
	}
}

func TestIngest(t *testing.T) {
	t.Run("Downloads And Parses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/a.txt":
				w.Write([]byte("The sky is blue."))
			case "/b.txt":
				w.Write([]byte("Grass is green."))
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		dest := t.TempDir()
		in := New(srv.Client())
		docs, err := in.Ingest(context.Background(), []string{srv.URL + "/a.txt", srv.URL + "/b.txt"}, dest)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "The sky is blue.", docs[0].Content)
		assert.Equal(t, "Grass is green.", docs[1].Content)
	})

	t.Run("Existing File Skips Fetch", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte("remote content"))
		}))
		defer srv.Close()

		dest := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dest, "a.txt"), []byte("local content"), 0o644))

		in := New(srv.Client())
		docs, err := in.Ingest(context.Background(), []string{srv.URL + "/a.txt"}, dest)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "local content", docs[0].Content)
		assert.Equal(t, int32(0), hits.Load())
	})

	t.Run("Fetch Failure Skips Item", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/ok.txt" {
				w.Write([]byte("still here"))
				return
			}
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		in := New(srv.Client())
		docs, err := in.Ingest(context.Background(), []string{srv.URL + "/gone.txt", srv.URL + "/ok.txt"}, t.TempDir())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "still here", docs[0].Content)
	})

	t.Run("Synthetic Name For Bare URL", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("payload"))
		}))
		defer srv.Close()

		dest := t.TempDir()
		in := New(srv.Client())
		_, err := in.Ingest(context.Background(), []string{srv.URL + "/download"}, dest)
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(dest, "document_0.txt"))
		assert.NoError(t, err)
	})

	t.Run("Reingest Is Deterministic", func(t *testing.T) {
		dest := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dest, "a.txt"), []byte("alpha beta gamma"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dest, "b.txt"), []byte("delta epsilon"), 0o644))

		in := New(nil)
		first, err := in.Ingest(context.Background(), nil, dest)
		require.NoError(t, err)
		second, err := in.Ingest(context.Background(), nil, dest)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		firstChunks := Chunks(first, 1000, 200)
		secondChunks := Chunks(second, 1000, 200)
		assert.Equal(t, firstChunks, secondChunks)
	})
}

func TestChunks(t *testing.T) {
	docs := []Document{
		{Content: "aaaa", Source: "a.txt"},
		{Content: "bbbb", Source: "b.txt"},
	}
	chunks := Chunks(docs, 3, 1)
	require.Len(t, chunks, 4)
	assert.Equal(t, "aaa", chunks[0].Text)
	assert.Equal(t, "a.txt", chunks[0].Source)
	assert.Equal(t, "b.txt", chunks[2].Source)
}
