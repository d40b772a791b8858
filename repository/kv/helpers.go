package kv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/repository"
)

// loadList decodes a JSON array stored under key; an absent key is an empty list.
func loadList[T any](ctx context.Context, store repository.KeyValueStore, key string) ([]T, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return []T{}, nil
		}
		return nil, domain.StorageUnavailable(err)
	}
	if len(raw) == 0 {
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt record under "+key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func saveList[T any](ctx context.Context, store repository.KeyValueStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, key, payload); err != nil {
		return domain.StorageUnavailable(err)
	}
	return nil
}
