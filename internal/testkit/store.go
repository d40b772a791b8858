// Package testkit holds doubles shared by package tests.
package testkit

import (
	"context"
	"errors"
	"sync"

	"github.com/fastygo/medsched/internal/infrastructure/memory"
	"github.com/fastygo/medsched/repository"
)

// ErrInjected is the failure returned by a FlakyStore operation that was told to fail.
var ErrInjected = errors.New("injected storage failure")

// FlakyStore wraps a KeyValueStore and fails selected operations on demand.
type FlakyStore struct {
	repository.KeyValueStore

	mu         sync.Mutex
	failGet    bool
	failSet    bool
	failRemove bool
	writes     int
}

func NewFlakyStore() *FlakyStore {
	return &FlakyStore{KeyValueStore: memory.NewStore()}
}

func (s *FlakyStore) FailGets(fail bool)    { s.mu.Lock(); s.failGet = fail; s.mu.Unlock() }
func (s *FlakyStore) FailSets(fail bool)    { s.mu.Lock(); s.failSet = fail; s.mu.Unlock() }
func (s *FlakyStore) FailRemoves(fail bool) { s.mu.Lock(); s.failRemove = fail; s.mu.Unlock() }

// Writes counts successful Set and SetAll calls.
func (s *FlakyStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *FlakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return s.KeyValueStore.Get(ctx, key)
}

func (s *FlakyStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetAll(ctx, map[string][]byte{key: value})
}

func (s *FlakyStore) SetAll(ctx context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return ErrInjected
	}
	if err := s.KeyValueStore.SetAll(ctx, entries); err != nil {
		return err
	}
	s.writes++
	return nil
}

func (s *FlakyStore) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	fail := s.failRemove
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return s.KeyValueStore.Remove(ctx, keys...)
}

// Inline is a MutationQueue that runs jobs on the caller's goroutine.
type Inline struct{}

func (Inline) Do(ctx context.Context, job func(ctx context.Context) error) error {
	return job(ctx)
}
