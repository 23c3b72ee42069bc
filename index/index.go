package index

import "github.com/poiesic/passage/core"

// Result is a single nearest-neighbor match: the unit id of the indexed
// vector and its distance to the query under the index metric.
type Result struct {
	Unit  core.UnitID
	Score float64
}

// Index is a searchable structure over a fixed set of embedding vectors.
// The vector at position i is addressed by unit id i, matching the corpus
// the vectors were derived from. An index is built once and read-only
// afterwards; implementations must be safe for concurrent Search calls.
type Index interface {
	// Build constructs the index from vectors in unit id order. It fails
	// on an empty input or inconsistent dimensionality.
	Build(vectors [][]float32) error

	// Search returns up to k entries nearest to the query vector, ordered
	// by ascending score with ties broken by ascending unit id. A k larger
	// than the entry count returns all entries; k <= 0 is a caller error.
	Search(query []float32, k int) ([]Result, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dim returns the vector dimensionality, 0 before Build.
	Dim() int

	// Metric returns the distance metric the index scores with.
	Metric() Metric

	// MarshalBinary serializes the index into a self-describing blob.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized blob,
	// replacing any previous contents. Corrupt or version-mismatched
	// blobs fail without leaving a partially loaded index.
	UnmarshalBinary(data []byte) error
}
