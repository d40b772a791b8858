package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/medsched/domain"
	appLogger "github.com/fastygo/medsched/pkg/logger"
)

const (
	HeaderRequestID = "X-Request-ID"

	sessionKey = "medsched.session"
)

// Adapter turns a fasthttp.RequestCtx into a context.Context bounded by the
// request timeout and tagged with the request id and, once authenticated, the user id.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach echoes (or assigns) X-Request-ID and returns the derived context.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	ctx.Response.Header.Set(HeaderRequestID, reqID)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if session := Session(ctx); session != nil {
		stdCtx = appLogger.ContextWithUserID(stdCtx, session.User.ID)
	}
	return stdCtx, cancel
}

// WithSession records the authenticated session on the request.
func WithSession(ctx *fasthttp.RequestCtx, session *domain.Session) {
	ctx.SetUserValue(sessionKey, session)
}

// Session returns the session stored by WithSession, or nil.
func Session(ctx *fasthttp.RequestCtx) *domain.Session {
	if ctx == nil {
		return nil
	}
	session, _ := ctx.UserValue(sessionKey).(*domain.Session)
	return session
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if header := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID))); header != "" {
		return header
	}
	return uuid.NewString()
}
