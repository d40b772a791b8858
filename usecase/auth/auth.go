package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/repository"
)

// Directory is the part of the identity directory the session service needs.
type Directory interface {
	FindByCredentials(email, password string) (*domain.User, error)
	Register(ctx context.Context, data domain.RegisterData) (*domain.User, error)
	FindByID(id string) (*domain.User, error)
}

// UseCase is the only source of the current user. At most one session is live.
type UseCase struct {
	directory Directory
	sessions  repository.SessionRepository
	tokens    *TokenIssuer
	logger    *zap.Logger

	// write serializes sign-in, registration and sign-out so storage and the
	// in-memory session never disagree.
	write   sync.Mutex
	mu      sync.RWMutex
	current *domain.Session
}

func New(directory Directory, sessions repository.SessionRepository, tokens *TokenIssuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		directory: directory,
		sessions:  sessions,
		tokens:    tokens,
		logger:    logger,
	}
}

func (uc *UseCase) SignIn(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	user, err := uc.directory.FindByCredentials(creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	return uc.establish(ctx, user)
}

// Register creates a patient and signs them in. When the account is stored but the
// session is not, ErrRegisteredSignIn tells the caller to sign in instead of retrying.
func (uc *UseCase) Register(ctx context.Context, data domain.RegisterData) (*domain.Session, error) {
	user, err := uc.directory.Register(ctx, data)
	if err != nil {
		return nil, err
	}
	session, err := uc.establish(ctx, user)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRegisteredSignIn.Code, domain.ErrRegisteredSignIn.Message, err)
	}
	return session, nil
}

// SignOut clears the session. Clearing an empty session is not an error. The
// in-memory session is dropped even when storage fails, and the failure is returned.
func (uc *UseCase) SignOut(ctx context.Context) error {
	uc.write.Lock()
	defer uc.write.Unlock()

	uc.setCurrent(nil)
	if err := uc.sessions.Delete(ctx); err != nil {
		uc.logger.Error("failed to clear stored session", zap.Error(err))
		return err
	}
	return nil
}

// Restore loads the persisted session on startup. Any failure means "signed out".
func (uc *UseCase) Restore(ctx context.Context) *domain.Session {
	uc.write.Lock()
	defer uc.write.Unlock()

	session, err := uc.sessions.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			uc.logger.Warn("stored session unreadable", zap.Error(err))
		}
		uc.setCurrent(nil)
		return nil
	}

	if err := uc.verify(session); err != nil {
		if upgraded := uc.upgradeLegacy(ctx, session, err); upgraded != nil {
			return upgraded
		}
		uc.logger.Warn("discarding stored session", zap.String("user_id", session.User.ID), zap.Error(err))
		if delErr := uc.sessions.Delete(ctx); delErr != nil {
			uc.logger.Warn("failed to clear discarded session", zap.Error(delErr))
		}
		uc.setCurrent(nil)
		return nil
	}

	uc.setCurrent(session)
	uc.logger.Info("session restored", zap.String("user_id", session.User.ID))
	return cloneSession(session)
}

// Current returns the live session, or nil when signed out.
func (uc *UseCase) Current() *domain.Session {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return cloneSession(uc.current)
}

// Authenticate resolves a bearer token to the live session.
func (uc *UseCase) Authenticate(token string) (*domain.Session, error) {
	current := uc.Current()
	if current == nil || token == "" || token != current.Token {
		return nil, domain.ErrUnauthorized
	}
	if err := uc.verify(current); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "session expired", err)
	}
	return current, nil
}

// upgradeLegacy replaces an opaque, non-JWT token left by an older install with a
// signed one, provided the stored user still resolves to the same identity.
// Caller holds uc.write.
func (uc *UseCase) upgradeLegacy(ctx context.Context, stored *domain.Session, cause error) *domain.Session {
	if !errors.Is(cause, jwt.ErrTokenMalformed) {
		return nil
	}
	user, err := uc.directory.FindByID(stored.User.ID)
	if err != nil || user.Role != stored.User.Role {
		return nil
	}
	session, err := uc.persist(ctx, user)
	if err != nil {
		return nil
	}
	uc.logger.Info("legacy session upgraded", zap.String("user_id", user.ID))
	return session
}

func (uc *UseCase) establish(ctx context.Context, user *domain.User) (*domain.Session, error) {
	uc.write.Lock()
	defer uc.write.Unlock()
	return uc.persist(ctx, user)
}

// persist issues a token for user and stores it as the live session. Caller holds uc.write.
func (uc *UseCase) persist(ctx context.Context, user *domain.User) (*domain.Session, error) {
	token, err := uc.tokens.Issue(*user)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to issue token", err)
	}
	session := &domain.Session{User: *user, Token: token}

	if err := uc.sessions.Save(ctx, session); err != nil {
		uc.logger.Error("failed to persist session", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	uc.setCurrent(session)
	uc.logger.Info("session started", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return cloneSession(session), nil
}

func (uc *UseCase) verify(session *domain.Session) error {
	claims, err := uc.tokens.Verify(session.Token)
	if err != nil {
		return err
	}
	if claims.Subject != session.User.ID {
		return errBadToken
	}
	return nil
}

func (uc *UseCase) setCurrent(session *domain.Session) {
	uc.mu.Lock()
	uc.current = cloneSession(session)
	uc.mu.Unlock()
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
