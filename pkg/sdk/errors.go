package gamerec

import "github.com/kailas-cloud/gamerec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest       = domain.ErrInvalidRequest
	ErrNotBuilt             = domain.ErrNotBuilt
	ErrOutOfRange           = domain.ErrOutOfRange
	ErrDimensionMismatch    = domain.ErrDimensionMismatch
	ErrMisaligned           = domain.ErrMisaligned
	ErrEmptyIndex           = domain.ErrEmptyIndex
	ErrEmbeddingUnavailable = domain.ErrEmbeddingUnavailable
	ErrReloadFailed         = domain.ErrReloadFailed
)
