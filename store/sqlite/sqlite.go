package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/poiesic/passage/store"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshot (
    name TEXT PRIMARY KEY,
    data BLOB NOT NULL
);
`

// Artifact row names. The three rows are replaced in one transaction, so
// a loader sees either a complete build or none.
const (
	metaRow   = "meta"
	indexRow  = "index"
	corpusRow = "corpus"
)

// Store persists snapshots in a SQLite database.
type Store struct {
	db *sql.DB
}

var _ store.SnapshotStore = (*Store)(nil)

// Open creates a SQLite-backed snapshot store at the given path, creating
// the database and schema if necessary. Use ":memory:" for an in-memory
// store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle, ensuring the snapshot
// schema exists. The caller keeps ownership of the handle's lifetime when
// using this constructor; Close still closes it.
func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite: db is nil")
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		return nil, fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save replaces the three snapshot rows in one transaction.
func (s *Store) Save(ctx context.Context, snap *store.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO snapshot(name, data) VALUES(?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows := []struct {
		name string
		data []byte
	}{
		{metaRow, store.MarshalMeta(&snap.Meta)},
		{indexRow, snap.Index},
		{corpusRow, snap.Corpus},
	}
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.name, row.data); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load reads the three snapshot rows.
func (s *Store) Load(ctx context.Context) (*store.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, data FROM snapshot`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artifacts := make(map[string][]byte, 3)
	for rows.Next() {
		var (
			name string
			data []byte
		)
		if err := rows.Scan(&name, &data); err != nil {
			return nil, err
		}
		artifacts[name] = data
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metaData, haveMeta := artifacts[metaRow]
	indexData, haveIndex := artifacts[indexRow]
	corpusData, haveCorpus := artifacts[corpusRow]

	present := 0
	for _, have := range []bool{haveMeta, haveIndex, haveCorpus} {
		if have {
			present++
		}
	}
	switch present {
	case 0:
		return nil, store.ErrNoSnapshot
	case 3:
		// complete pair
	default:
		return nil, fmt.Errorf("%w: %d of 3 artifacts present", store.ErrPartialSnapshot, present)
	}

	meta, err := store.UnmarshalMeta(metaData)
	if err != nil {
		return nil, err
	}
	return &store.Snapshot{Meta: *meta, Index: indexData, Corpus: corpusData}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
