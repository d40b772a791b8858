package postgres

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/medsched/repository"
)

const (
	selectValueSQL = `SELECT value FROM kv WHERE key = $1`
	upsertValueSQL = `INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	deleteKeysSQL  = `DELETE FROM kv WHERE key = ANY($1)`
	countKeysSQL   = `SELECT count(*) FROM kv`
)

// Pool is the subset of *pgxpool.Pool the store needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Store keeps every key as one row of the kv table.
type Store struct {
	pool Pool
}

func NewStore(pool Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.pool.QueryRow(ctx, selectValueSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, upsertValueSQL, key, value)
	return err
}

// SetAll upserts every entry inside one transaction.
func (s *Store) SetAll(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := tx.Exec(ctx, upsertValueSQL, k, entries[k]); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, deleteKeysSQL, keys)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Size returns the number of stored keys.
func (s *Store) Size() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var count int
	err := s.pool.QueryRow(ctx, countKeysSQL).Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

var _ repository.KeyValueStore = (*Store)(nil)
