package index

import (
	"fmt"
	"sort"
)

// Index is a flat inner-product index over unit-length vectors, stored
// contiguously. The dimension is fixed by the first vector handed to Build;
// entries are only ever appended, never reordered or removed, so a vector's
// position is its identity.
type Index struct {
	dim     int
	vectors []float32
}

// Hit is one search match: the inner-product score and the position of the
// matched entry.
type Hit struct {
	Score    float32
	Position int
}

// New returns an empty, unbuilt index.
func New() *Index { return &Index{} }

// Size reports the number of indexed vectors.
func (ix *Index) Size() int {
	if ix.dim == 0 {
		return 0
	}
	return len(ix.vectors) / ix.dim
}

// Dim reports the index dimension, 0 before the first Build.
func (ix *Index) Dim() int { return ix.dim }

// Build replaces the index wholesale with the given vectors. The dimension is
// taken from the first vector; any other length fails the build.
func (ix *Index) Build(vectors [][]float32) error {
	if len(vectors) == 0 {
		return fmt.Errorf("no vectors to index")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("cannot index zero-dimension vectors")
	}

	flat := make([]float32, 0, len(vectors)*dim)
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d: %w: got %d want %d", i, ErrDimensionMismatch, len(v), dim)
		}
		flat = append(flat, v...)
	}
	ix.dim = dim
	ix.vectors = flat
	return nil
}

// Add appends vectors to an already-built index without touching prior
// entries.
func (ix *Index) Add(vectors [][]float32) error {
	if ix.dim == 0 {
		return ErrNotBuilt
	}
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("vector %d: %w: got %d want %d", i, ErrDimensionMismatch, len(v), ix.dim)
		}
	}
	for _, v := range vectors {
		ix.vectors = append(ix.vectors, v...)
	}
	return nil
}

// Search returns up to topN entries ranked by inner product, descending.
// The scan walks insertion order and the sort is stable, so ties resolve to
// the lower position. An empty index yields an empty result, not an error.
func (ix *Index) Search(query []float32, topN int) ([]Hit, error) {
	n := ix.Size()
	if n == 0 || topN <= 0 {
		return nil, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query: %w: got %d want %d", ErrDimensionMismatch, len(query), ix.dim)
	}

	hits := make([]Hit, n)
	for i := 0; i < n; i++ {
		hits[i] = Hit{
			Score:    Dot(query, ix.vectors[i*ix.dim:(i+1)*ix.dim]),
			Position: i,
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if topN < len(hits) {
		hits = hits[:topN]
	}
	return hits, nil
}

// Vector returns the stored vector at position i. The returned slice aliases
// the index storage and must not be modified.
func (ix *Index) Vector(i int) []float32 {
	return ix.vectors[i*ix.dim : (i+1)*ix.dim]
}

// fromFlat reconstructs an index from persisted storage.
func fromFlat(dim int, flat []float32) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension: %d", dim)
	}
	if len(flat)%dim != 0 {
		return nil, fmt.Errorf("flat vector length %d is not a multiple of dim %d", len(flat), dim)
	}
	return &Index{dim: dim, vectors: flat}, nil
}
