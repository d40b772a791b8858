package boltdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/medsched/repository"
)

// Store persists key-value blobs in a single BoltDB bucket.
type Store struct {
	db     *bolt.DB
	path   string
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "medsched"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		path:   path,
		bucket: []byte(bucket),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return repository.ErrKeyNotFound
		}
		// bolt values are only valid for the life of the transaction
		value = append([]byte(nil), v...)
		return nil
	})
	return value, err
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetAll(ctx, map[string][]byte{key: value})
}

// SetAll writes every entry in one transaction.
func (s *Store) SetAll(ctx context.Context, entries map[string][]byte) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for k, v := range entries {
			if err := b.Put([]byte(k), v); err != nil {
				return fmt.Errorf("put %s: %w", k, err)
			}
		}
		return nil
	})
}

// Remove deletes the keys in one transaction; absent keys are ignored.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

// Size returns the number of stored keys.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Snapshot writes a consistent copy of the database file to path.
func (s *Store) Snapshot(path string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(path, 0o600)
	})
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

// TxCounts reports open and total started read transactions.
func (s *Store) TxCounts() (open, started int) {
	stats := s.Stats()
	return stats.OpenTxN, stats.TxN
}

func (s *Store) ready(ctx context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return ctx.Err()
}

var _ repository.KeyValueStore = (*Store)(nil)
