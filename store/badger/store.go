package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/poiesic/passage/store"
)

// Keys for the snapshot artifacts. All three are written in one
// transaction, so a loader sees either a complete build or none.
const (
	metaKey   = "snap:meta"
	indexKey  = "snap:index"
	corpusKey = "snap:corpus"
)

// Store persists snapshots in a BadgerDB database.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ store.SnapshotStore = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenStore opens a BadgerDB-backed snapshot store at the specified path.
// Creates the directory if it doesn't exist.
func OpenStore(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsClosed returns true if the database is closed.
func (s *Store) IsClosed() bool {
	return s.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (s *Store) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := s.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// Save writes the three snapshot artifacts in one transaction.
func (s *Store) Save(ctx context.Context, snap *store.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return store.ErrStorageClosed
	}

	return s.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(metaKey), store.MarshalMeta(&snap.Meta)); err != nil {
			return err
		}
		if err := tx.Set([]byte(indexKey), snap.Index); err != nil {
			return err
		}
		if err := tx.Set([]byte(corpusKey), snap.Corpus); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Load reads the three snapshot artifacts in one read transaction.
func (s *Store) Load(ctx context.Context) (*store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.db.IsClosed() {
		return nil, store.ErrStorageClosed
	}

	var snap store.Snapshot
	err := s.WithTx(func(tx *badger.Txn) error {
		metaData, err := readValue(tx, metaKey)
		if err != nil {
			return err
		}
		indexData, err := readValue(tx, indexKey)
		if err != nil {
			return err
		}
		corpusData, err := readValue(tx, corpusKey)
		if err != nil {
			return err
		}

		present := 0
		for _, data := range [][]byte{metaData, indexData, corpusData} {
			if data != nil {
				present++
			}
		}
		switch present {
		case 0:
			return store.ErrNoSnapshot
		case 3:
			// complete pair
		default:
			return fmt.Errorf("%w: %d of 3 artifacts present", store.ErrPartialSnapshot, present)
		}

		meta, err := store.UnmarshalMeta(metaData)
		if err != nil {
			return err
		}
		snap = store.Snapshot{Meta: *meta, Index: indexData, Corpus: corpusData}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// readValue copies the value under key, or returns nil if the key is
// absent.
func readValue(tx *badger.Txn, key string) ([]byte, error) {
	item, err := tx.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
