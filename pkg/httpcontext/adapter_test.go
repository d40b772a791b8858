package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/medsched/domain"
	appLogger "github.com/fastygo/medsched/pkg/logger"
)

func TestAttachKeepsRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, "abc")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	assert.Equal(t, "abc", appLogger.RequestID(ctx))
	assert.Equal(t, "abc", string(rc.Response.Header.Peek(HeaderRequestID)))

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
}

func TestAttachAssignsRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	ctx, cancel := NewAdapter(0).Attach(&rc)
	defer cancel()

	assert.NotEmpty(t, appLogger.RequestID(ctx))
}

func TestSession(t *testing.T) {
	var rc fasthttp.RequestCtx
	assert.Nil(t, Session(&rc))

	s := &domain.Session{User: domain.User{ID: "1"}, Token: "t"}
	WithSession(&rc, s)
	assert.Same(t, s, Session(&rc))
}
