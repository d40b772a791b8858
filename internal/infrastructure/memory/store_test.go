package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/medsched/repository"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	value := []byte("v")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got), "stored bytes are copied")

	require.NoError(t, s.SetAll(ctx, map[string][]byte{"a": nil, "b": nil}))
	assert.Equal(t, 3, s.Len())

	require.NoError(t, s.Remove(ctx, "a", "b"))
	assert.Equal(t, 1, s.Len())
	assert.NoError(t, s.Ping(ctx))
}
