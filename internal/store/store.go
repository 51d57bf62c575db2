package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
)

// namespace scopes every roster key inside the Badger keyspace so Clear only
// drops what this adapter wrote.
const namespace = "roster:"

// Store is the Badger-backed Adapter.
type Store struct {
	db     *badger.DB
	codec  Codec
	logger *slog.Logger
	closed atomic.Bool
}

// Options configures a Badger store.
type Options struct {
	// InMemory keeps the database in RAM; Path is ignored.
	InMemory bool
	Codec    Codec
}

// New opens (or creates) a Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	return NewWithOptions(path, logger, Options{})
}

// NewWithOptions opens a Badger database with explicit options.
func NewWithOptions(path string, logger *slog.Logger, o Options) (*Store, error) {
	if logger == nil {
		logger = discardLogger()
	}

	opts := badger.DefaultOptions(path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Every roster mutation is write-through
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	codec := o.Codec
	if codec == nil {
		codec = JSONCodec{}
	}

	logger.Info("Badger database opened successfully", "path", path, "in_memory", o.InMemory)

	return &Store{
		db:     db,
		codec:  codec,
		logger: logger,
	}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.logger.Info("Closing database connection")
	return s.db.Close()
}

func (s *Store) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}

// GetItem implements Adapter.
func (s *Store) GetItem(ctx context.Context, key string, dest any) (bool, error) {
	if err := s.check(ctx, key); err != nil {
		return false, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(namespace + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get key %q: %w", key, err)
	}

	if err := s.codec.Unmarshal(data, dest); err != nil {
		s.logger.Warn("Discarding undecodable value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// SetItem implements Adapter.
func (s *Store) SetItem(ctx context.Context, key string, value any) error {
	return s.SetItems(ctx, map[string]any{key: value})
}

// SetItems implements Adapter. All keys are written in one Badger transaction.
func (s *Store) SetItems(ctx context.Context, items map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for key := range items {
		if err := s.check(ctx, key); err != nil {
			return err
		}
	}

	encoded, err := encodeAll(s.codec, items)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for key, data := range encoded {
			if err := txn.Set([]byte(namespace+key), data); err != nil {
				return fmt.Errorf("failed to set key %q: %w", key, err)
			}
		}
		return nil
	})
}

// RemoveItem implements Adapter.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(namespace + key))
	})
}

// Clear implements Adapter.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if err := s.db.DropPrefix([]byte(namespace)); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// Keys implements Adapter.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var keys []string
	prefix := []byte(namespace)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), namespace))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(keys)
	return keys, nil
}
