package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/passage/store"
)

const (
	currentFile = "CURRENT"
	metaFile    = "meta"
	indexFile   = "index"
	corpusFile  = "corpus"
	snapPrefix  = "snap-"
)

// Store persists snapshots as generation directories under a root path.
//
// Each save writes a fresh snap-<fingerprint> directory containing the
// meta, index and corpus files, then atomically repoints the CURRENT file
// at it via write-temp-then-rename. A crash mid-save leaves at worst an
// unreferenced generation directory; CURRENT always names a generation
// that was written out completely.
type Store struct {
	root   string
	logger *slog.Logger
}

var _ store.SnapshotStore = (*Store)(nil)

// Option is a functional option for configuring a Store.
type Option func(*Store)

// WithLogger sets the logger used for maintenance warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a filesystem snapshot store rooted at the given directory,
// creating it if necessary.
func New(root string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot root: %w", err)
	}
	s := &Store{
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save writes the snapshot into its own generation directory and repoints
// CURRENT at it. Previous generations are pruned after the swap; a reader
// holding open files of the old generation is unaffected.
func (s *Store) Save(ctx context.Context, snap *store.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gen := generationName(snap.Meta.Fingerprint)
	dir := filepath.Join(s.root, gen)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create generation dir: %w", err)
	}

	files := map[string][]byte{
		metaFile:   store.MarshalMeta(&snap.Meta),
		indexFile:  snap.Index,
		corpusFile: snap.Corpus,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s artifact: %w", name, err)
		}
	}

	// The new generation only becomes visible through this rename; until
	// it succeeds every loader keeps resolving the previous generation.
	tmp := filepath.Join(s.root, currentFile+".tmp")
	if err := os.WriteFile(tmp, []byte(gen+"\n"), 0o644); err != nil {
		return fmt.Errorf("write current pointer: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.root, currentFile)); err != nil {
		return fmt.Errorf("swap current pointer: %w", err)
	}

	s.prune(gen)
	return nil
}

// Load resolves CURRENT and reads the generation it names.
func (s *Store) Load(ctx context.Context) (*store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pointer, err := os.ReadFile(filepath.Join(s.root, currentFile))
	if os.IsNotExist(err) {
		return nil, store.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read current pointer: %w", err)
	}

	gen := strings.TrimSpace(string(pointer))
	if !strings.HasPrefix(gen, snapPrefix) || strings.ContainsAny(gen, `/\`) {
		return nil, fmt.Errorf("%w: current pointer names %q", store.ErrPartialSnapshot, gen)
	}
	dir := filepath.Join(s.root, gen)

	readArtifact := func(name string) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s missing from %s", store.ErrPartialSnapshot, name, gen)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s artifact: %w", name, err)
		}
		return data, nil
	}

	metaData, err := readArtifact(metaFile)
	if err != nil {
		return nil, err
	}
	meta, err := store.UnmarshalMeta(metaData)
	if err != nil {
		return nil, err
	}
	indexData, err := readArtifact(indexFile)
	if err != nil {
		return nil, err
	}
	corpusData, err := readArtifact(corpusFile)
	if err != nil {
		return nil, err
	}

	return &store.Snapshot{
		Meta:   *meta,
		Index:  indexData,
		Corpus: corpusData,
	}, nil
}

// Close releases nothing; the store holds no open handles between calls.
func (s *Store) Close() error {
	return nil
}

// prune removes generation directories other than keep, plus any stale
// pointer temp file. Failures are logged, not returned: stray directories
// cost disk space, never correctness.
func (s *Store) prune(keep string) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Warn("listing snapshot root for pruning failed", "err", err)
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, snapPrefix) || name == keep {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, name)); err != nil {
			s.logger.Warn("pruning old generation failed", "generation", name, "err", err)
		}
	}
}

func generationName(fingerprint uint64) string {
	return fmt.Sprintf("%s%016x", snapPrefix, fingerprint)
}
