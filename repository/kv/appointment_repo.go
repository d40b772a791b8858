package kv

import (
	"context"

	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/repository"
)

type appointmentRepository struct {
	store repository.KeyValueStore
}

// NewAppointmentRepository stores the appointment collection as one JSON array.
func NewAppointmentRepository(store repository.KeyValueStore) repository.AppointmentRepository {
	return &appointmentRepository{store: store}
}

func (r *appointmentRepository) Load(ctx context.Context) ([]domain.Appointment, error) {
	return loadList[domain.Appointment](ctx, r.store, KeyAppointments)
}

func (r *appointmentRepository) Save(ctx context.Context, appointments []domain.Appointment) error {
	return saveList(ctx, r.store, KeyAppointments, appointments)
}
