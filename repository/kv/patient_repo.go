package kv

import (
	"context"

	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/repository"
)

type patientRepository struct {
	store repository.KeyValueStore
}

func NewPatientRepository(store repository.KeyValueStore) repository.PatientRepository {
	return &patientRepository{store: store}
}

func (r *patientRepository) Load(ctx context.Context) ([]domain.User, error) {
	return loadList[domain.User](ctx, r.store, KeyPatients)
}

func (r *patientRepository) Save(ctx context.Context, patients []domain.User) error {
	return saveList(ctx, r.store, KeyPatients, patients)
}
