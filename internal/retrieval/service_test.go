package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/text"
	"gurucool/api/internal/vector"
)

// axisEmbedder maps known strings to fixed unit vectors so distances are
// fully controlled by the test.
type axisEmbedder struct {
	vectors map[string][]float32
}

func (e *axisEmbedder) Embed(_ context.Context, content string) ([]float32, error) {
	if v, ok := e.vectors[content]; ok {
		return v, nil
	}
	return []float32{0, 0}, nil
}

func testBundle(t *testing.T, vectors [][]float32, chunks []text.Chunk) *embedcache.Bundle {
	t.Helper()
	idx := vector.NewFlat(len(vectors[0]))
	require.NoError(t, idx.Add(vectors...))
	return &embedcache.Bundle{Embeddings: vectors, Index: idx, Chunks: chunks}
}

func TestRetrieve(t *testing.T) {
	chunks := []text.Chunk{
		{Text: "The sky is blue.", Source: "a.txt"},
		{Text: "Grass is green.", Source: "b.txt"},
		{Text: "Water is wet.", Source: "c.txt"},
	}
	bundle := testBundle(t, [][]float32{{1, 0}, {0, 1}, {-1, 0}}, chunks)
	emb := &axisEmbedder{vectors: map[string][]float32{
		"What color is grass?": {0, 1},
		"sky":                  {1, 0},
	}}
	svc := NewService(emb, nil)

	t.Run("Nearest Chunk Wins", func(t *testing.T) {
		got, err := svc.Retrieve(context.Background(), "What color is grass?", bundle, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b.txt", got[0].Source)
	})

	t.Run("Ascending Distance Order", func(t *testing.T) {
		got, err := svc.Retrieve(context.Background(), "sky", bundle, 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "a.txt", got[0].Source)
		assert.Equal(t, "b.txt", got[1].Source)
		assert.Equal(t, "c.txt", got[2].Source)
	})

	t.Run("K Above Corpus Returns Everything", func(t *testing.T) {
		got, err := svc.Retrieve(context.Background(), "sky", bundle, 50)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("Default K", func(t *testing.T) {
		got, err := svc.Retrieve(context.Background(), "sky", bundle, 0)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("Dimension Mismatch Rejected", func(t *testing.T) {
		bad := &axisEmbedder{vectors: map[string][]float32{"sky": {1, 0, 0}}}
		_, err := NewService(bad, nil).Retrieve(context.Background(), "sky", bundle, 1)
		assert.ErrorIs(t, err, vector.ErrDimensionMismatch)
	})

	t.Run("Query Log Written", func(t *testing.T) {
		var buf bytes.Buffer
		logged := NewService(emb, NewQueryLogger(&buf))
		_, err := logged.Retrieve(context.Background(), "sky", bundle, 2)
		require.NoError(t, err)

		var entry QueryLogEntry
		require.NoError(t, json.NewDecoder(strings.NewReader(buf.String())).Decode(&entry))
		assert.Equal(t, "sky", entry.Query)
		assert.Equal(t, 2, entry.NumResults)
	})
}
