package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	m.Register("store", func(context.Context) error { order = append(order, "store"); return nil })
	m.Register("writer", func(context.Context) error { order = append(order, "writer"); return nil })
	m.RegisterCloser("server", closerFunc(func() error { order = append(order, "server"); return nil }))
	m.Register("ignored", nil)

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"server", "writer", "store"}, order)

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3, "hooks run once")
}

func TestShutdownJoinsErrors(t *testing.T) {
	m := New(time.Second, nil)
	first := errors.New("first")
	second := errors.New("second")
	ran := false

	m.Register("a", func(context.Context) error { return first })
	m.Register("b", func(context.Context) error { ran = true; return nil })
	m.Register("c", func(context.Context) error { return second })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.True(t, ran)
}

func TestShutdownHooksSeeDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, m.Shutdown(context.Background()), context.DeadlineExceeded)
}
