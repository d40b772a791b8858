package repository

import (
	"context"

	"github.com/fastygo/medsched/domain"
)

type SessionRepository interface {
	Get(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context) error
}
