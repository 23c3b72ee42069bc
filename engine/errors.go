package engine

import "errors"

var (
	// ErrStoreRequired is returned when a snapshot store is not provided.
	ErrStoreRequired = errors.New("snapshot store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrUnknownBackend is returned for an index backend name that no
	// implementation registers.
	ErrUnknownBackend = errors.New("unknown index backend")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
