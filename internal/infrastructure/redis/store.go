package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/fastygo/medsched/internal/config"
	"github.com/fastygo/medsched/repository"
)

// Store is a KeyValueStore on top of plain Redis strings. Keys never expire.
type Store struct {
	client *goRedis.Client
	prefix string
}

func NewStore(client *goRedis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Open connects to the configured Redis instance and verifies it answers a ping.
func Open(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	opts, err := goRedis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := goRedis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewStore(client, cfg.KeyPrefix), nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goRedis.Nil) {
			return nil, repository.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// SetAll uses MULTI/EXEC so the entries land together.
func (s *Store) SetAll(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe goRedis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, s.key(k), v, 0)
		}
		return nil
	})
	return err
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, s.key(k))
	}
	return s.client.Del(ctx, prefixed...).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	return fmt.Sprintf("%s%s", s.prefix, k)
}

var _ repository.KeyValueStore = (*Store)(nil)
