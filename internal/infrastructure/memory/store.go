package memory

import (
	"context"
	"sync"

	"github.com/fastygo/medsched/repository"
)

// Store is a process-local KeyValueStore. Nothing survives a restart.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, repository.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetAll(ctx, map[string][]byte{key: value})
}

func (s *Store) SetAll(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.data[k] = append([]byte(nil), v...)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error { return nil }

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var _ repository.KeyValueStore = (*Store)(nil)
