package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KeyValueStore.Get for an absent key.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the durable string-key to blob mapping every repository is built on.
// SetAll and Remove apply to all given keys or to none of them.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetAll(ctx context.Context, entries map[string][]byte) error
	Remove(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
