package store

import "context"

// SnapshotStore persists the paired build artifacts of the retrieval
// engine. Implementations must be thread-safe and must commit the pair
// all-or-nothing: a crash or failure mid-save never leaves a loadable
// state mixing two builds.
type SnapshotStore interface {
	// Save persists the snapshot atomically. After a successful return a
	// loader observes the complete new snapshot; after a failure it still
	// observes the previous one.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the current snapshot.
	// Returns ErrNoSnapshot if nothing has been saved yet and
	// ErrPartialSnapshot if only part of a pair is present.
	Load(ctx context.Context) (*Snapshot, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
