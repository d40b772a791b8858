package repository

import (
	"context"

	"github.com/fastygo/medsched/domain"
)

// AppointmentRepository reads and replaces the whole appointment collection.
type AppointmentRepository interface {
	Load(ctx context.Context) ([]domain.Appointment, error)
	Save(ctx context.Context, appointments []domain.Appointment) error
}
