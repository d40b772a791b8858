package repository

import (
	"context"

	"github.com/fastygo/medsched/domain"
)

// PatientRepository persists the roster of registered patients.
type PatientRepository interface {
	Load(ctx context.Context) ([]domain.User, error)
	Save(ctx context.Context, patients []domain.User) error
}
