package index

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreFactoryRequired is returned when a store factory is not provided.
	ErrStoreFactoryRequired = errors.New("store factory required")

	// ErrVectorCountMismatch indicates Add received mismatched chunk
	// and vector counts.
	ErrVectorCountMismatch = errors.New("chunk and vector counts differ")
)
