package store

import "time"

// Meta describes one persisted snapshot. It travels with the index and
// corpus artifacts and carries everything needed to verify them before a
// single byte is decoded.
type Meta struct {
	// Fingerprint is the build fingerprint shared by the index and corpus
	// artifacts of one build. Artifacts with differing fingerprints were
	// never produced together.
	Fingerprint uint64

	// Dim is the embedding dimensionality the snapshot was built with.
	Dim int

	// Metric is the distance metric name the index scores with.
	Metric string

	// Backend is the index backend name the snapshot was built for.
	Backend string

	// Count is the number of units, identical for index and corpus.
	Count int

	// CreatedAt records when the build completed.
	CreatedAt time.Time

	// IndexSum is the BLAKE2b digest of the index artifact.
	IndexSum uint64

	// CorpusSum is the BLAKE2b digest of the corpus artifact.
	CorpusSum uint64
}

// Snapshot bundles the artifacts of one completed build. The three parts
// are persisted and loaded as a single unit; no backend ever exposes a
// subset of them as a successful load.
type Snapshot struct {
	Meta   Meta
	Index  []byte
	Corpus []byte
}
