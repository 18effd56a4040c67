package vector

import (
	"errors"
	"fmt"
	"sort"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Flat is an exhaustive nearest-neighbor index over squared L2 distance.
// Vectors are scanned linearly on every search; insertion order is the tie
// break, so results are deterministic for equal distances. Fields are
// exported for gob serialization inside a cache bundle.
type Flat struct {
	Dim     int
	Vectors [][]float32
}

// NewFlat creates an empty index for vectors of the given dimensionality.
func NewFlat(dim int) *Flat {
	return &Flat{Dim: dim}
}

// Result is one search hit: the insertion position of the vector and its
// squared L2 distance to the query.
type Result struct {
	Index    int
	Distance float32
}

// Add appends vectors to the index in order.
func (f *Flat) Add(vectors ...[]float32) error {
	for _, v := range vectors {
		if len(v) != f.Dim {
			return fmt.Errorf("%w: index dim %d, vector dim %d", ErrDimensionMismatch, f.Dim, len(v))
		}
		f.Vectors = append(f.Vectors, v)
	}
	return nil
}

// Len reports the number of indexed vectors.
func (f *Flat) Len() int {
	return len(f.Vectors)
}

// Search returns the k nearest vectors to query in ascending distance order.
// If k exceeds the index size, every vector is returned. Equal distances
// preserve insertion order.
func (f *Flat) Search(query []float32, k int) ([]Result, error) {
	if len(query) != f.Dim {
		return nil, fmt.Errorf("%w: index dim %d, query dim %d", ErrDimensionMismatch, f.Dim, len(query))
	}
	if k <= 0 {
		return nil, nil
	}

	results := make([]Result, len(f.Vectors))
	for i, v := range f.Vectors {
		results[i] = Result{Index: i, Distance: l2Squared(query, v)}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
