package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/embed"
	"github.com/poiesic/passage/index"
	"github.com/poiesic/passage/index/flat"
	"github.com/poiesic/passage/index/vptree"
	"github.com/poiesic/passage/segment"
	"github.com/poiesic/passage/store"
)

// Index backend names, as configured for builds and as recorded in
// snapshot metadata.
const (
	// BackendFlat selects the exact scan index.
	BackendFlat = "flat"

	// BackendVPTree selects the vantage-point tree index.
	BackendVPTree = "vptree"
)

const (
	defaultBatchSize  = 100
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// Engine orchestrates the retrieval lifecycle: building snapshots from raw
// document text, persisting and restoring them, and answering ranked
// nearest-neighbor queries against the serving snapshot.
type Engine struct {
	snapshots store.SnapshotStore
	embedder  embed.Embedder
	segmenter *segment.Segmenter
	pool      *ants.Pool
	logger    *slog.Logger

	backend    string
	metric     index.Metric
	dim        int
	batchSize  int
	maxRetries int
	retryDelay time.Duration

	current atomic.Pointer[snapshot]
}

// snapshot is one immutable serving state. Build and Load construct the
// whole snapshot aside and publish it with a single atomic store, so
// queries never observe a half-replaced index/corpus pair.
type snapshot struct {
	index  index.Index
	corpus *core.Corpus
	meta   store.Meta
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent embedding batches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}

		if e.pool != nil {
			e.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		e.pool = pool
		return nil
	}
}

// WithSegmenter replaces the default segmenter.
func WithSegmenter(s *segment.Segmenter) Option {
	return func(e *Engine) error {
		if s == nil {
			s = segment.New()
		}
		e.segmenter = s
		return nil
	}
}

// WithBackend selects the index backend for new builds. Load always follows
// the backend recorded in the snapshot being loaded.
// Default is BackendFlat.
func WithBackend(name string) Option {
	return func(e *Engine) error {
		switch name {
		case BackendFlat, BackendVPTree:
			e.backend = name
			return nil
		}
		return fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// WithMetric sets the distance metric for new builds.
// Default is index.MetricL2.
func WithMetric(metric index.Metric) Option {
	return func(e *Engine) error {
		e.metric = metric
		return nil
	}
}

// WithDimensions pins the expected embedding dimensionality. The default 0
// adopts the dimensionality of the first vector of the next build.
func WithDimensions(dim int) Option {
	return func(e *Engine) error {
		if dim < 0 {
			dim = 0
		}
		e.dim = dim
		return nil
	}
}

// WithBatchSize sets how many units are embedded per capability call.
// Default is 100, with a minimum of 1.
func WithBatchSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		e.batchSize = size
		return nil
	}
}

// WithRetry configures the retry policy for embedding calls.
// maxAttempts must be greater than zero; baseDelay doubles on each retry.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(e *Engine) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		e.maxRetries = maxAttempts
		e.retryDelay = baseDelay
		return nil
	}
}

// New creates a retrieval engine over the given snapshot store and
// embedder. The engine starts without a serving snapshot; call Build or
// Load before querying.
func New(snapshots store.SnapshotStore, embedder embed.Embedder, opts ...Option) (*Engine, error) {
	if snapshots == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		snapshots:  snapshots,
		embedder:   embedder,
		segmenter:  segment.New(),
		pool:       pool,
		logger:     slog.Default(),
		backend:    BackendFlat,
		metric:     index.MetricL2,
		batchSize:  defaultBatchSize,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Close()
			return nil, optErr
		}
	}

	return e, nil
}

// Build segments raw document text, embeds every surviving unit, constructs
// the configured index and corpus, persists the paired artifacts and swaps
// them in as the serving snapshot. A failed build returns an error and
// leaves the previous snapshot serving, both in memory and in the store.
func (e *Engine) Build(ctx context.Context, raw string) error {
	units := e.segmenter.Segment(raw)
	if len(units) == 0 {
		return fmt.Errorf("%w: %w", core.ErrBuild, core.ErrNoUnits)
	}

	texts := make([]string, len(units))
	for i, unit := range units {
		texts[i] = unit.Text
	}

	vectors, err := e.embedUnits(ctx, texts)
	if err != nil {
		return err
	}

	dim, err := core.ValidateVectors(vectors, e.dim)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrBuild, err)
	}

	idx, err := newIndex(e.backend, e.metric)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrBuild, err)
	}
	if err := idx.Build(vectors); err != nil {
		return fmt.Errorf("%w: building %s index: %w", core.ErrBuild, e.backend, err)
	}
	corpus := core.NewCorpus(units)

	indexBlob, err := idx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: encoding index artifact: %w", core.ErrBuild, err)
	}
	corpusBlob := store.MarshalCorpus(corpus)

	indexSum := core.Fingerprint(indexBlob)
	corpusSum := core.Fingerprint(corpusBlob)
	meta := store.Meta{
		Fingerprint: pairFingerprint(indexSum, corpusSum),
		Dim:         dim,
		Metric:      idx.Metric().String(),
		Backend:     e.backend,
		Count:       corpus.Len(),
		CreatedAt:   time.Now().UTC(),
		IndexSum:    indexSum,
		CorpusSum:   corpusSum,
	}

	snap := &store.Snapshot{Meta: meta, Index: indexBlob, Corpus: corpusBlob}
	if err := e.snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("%w: persisting snapshot: %w", core.ErrBuild, err)
	}

	e.current.Store(&snapshot{index: idx, corpus: corpus, meta: meta})
	e.logger.Info("build complete",
		"units", corpus.Len(),
		"dim", dim,
		"backend", e.backend,
		"metric", meta.Metric)
	return nil
}

// Query embeds the query text, searches the serving snapshot and resolves
// every hit to its unit text. Caller input is validated before the embedder
// is invoked. Any unresolvable hit aborts the whole query; there are no
// partial results.
func (e *Engine) Query(ctx context.Context, query string, k int) (*core.QueryResult, error) {
	if err := core.ValidateQuery(query, k); err != nil {
		return nil, err
	}

	cur := e.current.Load()
	if cur == nil {
		return nil, fmt.Errorf("%w: build or load a snapshot first", core.ErrNotLoaded)
	}

	vec, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", core.ErrCapability, err)
	}
	if len(vec) != cur.meta.Dim {
		return nil, fmt.Errorf("%w: %w: query vector has %d dimensions, snapshot has %d",
			core.ErrCapability, core.ErrDimensionMismatch, len(vec), cur.meta.Dim)
	}

	matches, err := cur.index.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("%w: index search: %w", core.ErrIntegrity, err)
	}

	hits := make([]core.Hit, len(matches))
	texts := make([]string, len(matches))
	for i, match := range matches {
		unit, err := cur.corpus.Lookup(match.Unit)
		if err != nil {
			return nil, err
		}
		hits[i] = core.Hit{Score: match.Score, Unit: match.Unit, Text: unit.Text}
		texts[i] = unit.Text
	}

	return &core.QueryResult{
		Query:  query,
		Hits:   hits,
		Answer: strings.Join(texts, " "),
	}, nil
}

// Load restores the serving snapshot from the store. Artifact digests, the
// paired build fingerprint and the unit counts are verified before any
// decoded state becomes visible to queries.
func (e *Engine) Load(ctx context.Context) error {
	snap, err := e.snapshots.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			return fmt.Errorf("%w: %w", core.ErrNotLoaded, err)
		}
		return fmt.Errorf("%w: %w: %w", core.ErrIntegrity, core.ErrSnapshotCorrupt, err)
	}

	meta := snap.Meta
	if sum := core.Fingerprint(snap.Index); sum != meta.IndexSum {
		return fmt.Errorf("%w: %w: index artifact digest %016x, meta says %016x",
			core.ErrIntegrity, core.ErrSnapshotCorrupt, sum, meta.IndexSum)
	}
	if sum := core.Fingerprint(snap.Corpus); sum != meta.CorpusSum {
		return fmt.Errorf("%w: %w: corpus artifact digest %016x, meta says %016x",
			core.ErrIntegrity, core.ErrSnapshotCorrupt, sum, meta.CorpusSum)
	}
	if fp := pairFingerprint(meta.IndexSum, meta.CorpusSum); fp != meta.Fingerprint {
		return fmt.Errorf("%w: %w: artifacts fingerprint to %016x, meta says %016x",
			core.ErrIntegrity, core.ErrFingerprintMismatch, fp, meta.Fingerprint)
	}

	corpus, err := store.UnmarshalCorpus(snap.Corpus)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", core.ErrIntegrity, core.ErrSnapshotCorrupt, err)
	}
	if corpus.Len() != meta.Count {
		return fmt.Errorf("%w: %w: corpus has %d units, meta says %d",
			core.ErrIntegrity, core.ErrCountMismatch, corpus.Len(), meta.Count)
	}

	metric, err := index.ParseMetric(meta.Metric)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", core.ErrIntegrity, core.ErrSnapshotCorrupt, err)
	}
	idx, err := newIndex(meta.Backend, metric)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", core.ErrIntegrity, core.ErrSnapshotCorrupt, err)
	}
	if err := idx.UnmarshalBinary(snap.Index); err != nil {
		return fmt.Errorf("%w: %w: decoding index artifact: %w", core.ErrIntegrity, core.ErrSnapshotCorrupt, err)
	}
	if idx.Len() != corpus.Len() {
		return fmt.Errorf("%w: %w: index has %d entries, corpus has %d units",
			core.ErrIntegrity, core.ErrCountMismatch, idx.Len(), corpus.Len())
	}
	if idx.Dim() != meta.Dim {
		return fmt.Errorf("%w: %w: index blob has %d dimensions, meta says %d",
			core.ErrIntegrity, core.ErrSnapshotCorrupt, idx.Dim(), meta.Dim)
	}

	e.current.Store(&snapshot{index: idx, corpus: corpus, meta: meta})
	e.logger.Info("snapshot loaded",
		"units", corpus.Len(),
		"dim", meta.Dim,
		"backend", meta.Backend,
		"metric", meta.Metric,
		"createdAt", meta.CreatedAt)
	return nil
}

// Ready reports whether a snapshot is currently serving queries.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Count returns the number of units in the serving snapshot, or 0 when no
// snapshot is loaded.
func (e *Engine) Count() int {
	if cur := e.current.Load(); cur != nil {
		return cur.corpus.Len()
	}
	return 0
}

// Metadata returns the serving snapshot's metadata and whether a snapshot
// is loaded at all.
func (e *Engine) Metadata() (store.Meta, bool) {
	if cur := e.current.Load(); cur != nil {
		return cur.meta, true
	}
	return store.Meta{}, false
}

// Close releases the embedding worker pool. The snapshot store is owned by
// the caller and is left open. The engine should not be used after Close.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// embedUnits embeds every unit text, fanning batches out through the worker
// pool. Each batch writes into its own pre-sized slice window, so
// concurrent batches preserve unit order exactly.
func (e *Engine) embedUnits(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	batches := (len(texts) + e.batchSize - 1) / e.batchSize
	errs := make([]error, batches)

	var wg sync.WaitGroup
	for b := 0; b < batches; b++ {
		start := b * e.batchSize
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			errs[b] = e.embedBatch(ctx, texts[start:end], vectors[start:end])
		})
		if err != nil {
			wg.Done()
			errs[b] = fmt.Errorf("%w: submitting embedding batch: %w", core.ErrCapability, err)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return vectors, nil
}

// embedBatch embeds one batch of texts with retry and writes the resulting
// vectors into out.
func (e *Engine) embedBatch(ctx context.Context, texts []string, out [][]float32) error {
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = e.embedder.EmbedTexts(ctx, texts)
		return err
	}, e.maxRetries, e.retryDelay)

	if err != nil {
		return fmt.Errorf("%w: embedding failed after %d attempts: %w", core.ErrCapability, e.maxRetries, err)
	}

	if len(embeddings) != len(texts) {
		return fmt.Errorf("%w: embedding count mismatch: expected %d, got %d",
			core.ErrCapability, len(texts), len(embeddings))
	}

	copy(out, embeddings)
	return nil
}

// newIndex returns an empty index for the named backend.
func newIndex(backend string, metric index.Metric) (index.Index, error) {
	switch backend {
	case BackendFlat:
		return flat.New(metric), nil
	case BackendVPTree:
		return vptree.New(metric), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// pairFingerprint derives the shared build fingerprint from the two
// artifact digests. Index and corpus blobs carry the same fingerprint only
// when they came out of the same build.
func pairFingerprint(indexSum, corpusSum uint64) uint64 {
	var pair [16]byte
	binary.LittleEndian.PutUint64(pair[:8], indexSum)
	binary.LittleEndian.PutUint64(pair[8:], corpusSum)
	return core.Fingerprint(pair[:])
}
