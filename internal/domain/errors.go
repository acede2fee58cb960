package domain

import "errors"

var (
	// ErrDimensionMismatch signals vectors of inconsistent or unexpected length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNotBuilt signals use of an index or snapshot before it was built.
	ErrNotBuilt = errors.New("index not built")
	// ErrOutOfRange signals a catalog position outside [0, count).
	ErrOutOfRange = errors.New("position out of range")
	// ErrEmbeddingUnavailable signals that the embedding provider could not produce a vector.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrInvalidRequest signals a malformed request or filter.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMisaligned signals an embedding matrix that does not line up with the catalog.
	ErrMisaligned = errors.New("embeddings not aligned with catalog")
	// ErrEmptyIndex signals an attempt to build an index from zero vectors.
	ErrEmptyIndex = errors.New("empty index")
	// ErrReloadFailed signals a snapshot reload that could not be published.
	ErrReloadFailed = errors.New("snapshot reload failed")
)
