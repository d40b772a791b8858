package middleware

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/medsched/api/transport"
	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/pkg/httpcontext"
)

// Authenticator resolves a bearer token to the live session.
type Authenticator interface {
	Authenticate(token string) (*domain.Session, error)
}

// SessionAuth admits requests whose bearer token is the live session token and
// records that session on the request.
func SessionAuth(auth Authenticator, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := extractToken(ctx)
			if token == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			session, err := auth.Authenticate(token)
			if err != nil {
				logger.Warn("rejected session token", zap.String("path", string(ctx.Path())), zap.Error(err))
				unauthorized(ctx, err.Error())
				return
			}

			httpcontext.WithSession(ctx, session)
			next(ctx)
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(http.StatusUnauthorized)
	ctx.SetBodyString(transport.NewError(string(domain.ErrCodeUnauthorized), message, nil).String())
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
