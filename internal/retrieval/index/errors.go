package index

import "errors"

var (
	// ErrDimensionMismatch indicates a vector whose dimension does not match
	// the index. Usually means the embedding model changed; the snapshot must
	// be wiped and rebuilt.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNotBuilt indicates Add was called before Build.
	ErrNotBuilt = errors.New("index has not been built")
)
