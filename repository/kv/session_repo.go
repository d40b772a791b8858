package kv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/repository"
)

type sessionRepository struct {
	store repository.KeyValueStore
}

// NewSessionRepository keeps the session user and token under two keys that are
// always written and removed together.
func NewSessionRepository(store repository.KeyValueStore) repository.SessionRepository {
	return &sessionRepository{store: store}
}

// Get returns domain.ErrSessionNotFound unless both keys are present.
func (r *sessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	rawUser, err := r.get(ctx, KeySessionUser)
	if err != nil {
		return nil, err
	}
	token, err := r.get(ctx, KeySessionToken)
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt session user", err)
	}

	session := &domain.Session{User: user, Token: string(token)}
	if !session.Valid() {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if !session.Valid() {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(session.User)
	if err != nil {
		return err
	}

	if err := r.store.SetAll(ctx, map[string][]byte{
		KeySessionUser:  payload,
		KeySessionToken: []byte(session.Token),
	}); err != nil {
		return domain.StorageUnavailable(err)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context) error {
	if err := r.store.Remove(ctx, KeySessionUser, KeySessionToken); err != nil {
		return domain.StorageUnavailable(err)
	}
	return nil
}

func (r *sessionRepository) get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.StorageUnavailable(err)
	}
	if len(raw) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return raw, nil
}
