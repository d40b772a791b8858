package appointment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/repository"
	"github.com/fastygo/medsched/usecase"
)

// UseCase owns the appointment collection. Every mutation is a whole-collection
// read-modify-write run through the queue, so two mutations never interleave.
// The store does not enforce the status state machine; callers offer
// confirm/cancel only while an appointment is pending.
type UseCase struct {
	appointments repository.AppointmentRepository
	queue        usecase.MutationQueue
	logger       *zap.Logger
	newID        func() string
}

func New(appointments repository.AppointmentRepository, queue usecase.MutationQueue, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		appointments: appointments,
		queue:        queue,
		logger:       logger,
		newID:        uuid.NewString,
	}
}

// Create stores a new pending appointment. Nothing is kept if the write fails.
func (uc *UseCase) Create(ctx context.Context, draft domain.AppointmentDraft) (*domain.Appointment, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	created := draft.Pending(uc.newID())
	err := uc.queue.Do(ctx, func(ctx context.Context) error {
		all, err := uc.appointments.Load(ctx)
		if err != nil {
			return err
		}
		return uc.appointments.Save(ctx, append(all, created))
	})
	if err != nil {
		uc.logger.Error("failed to create appointment", zap.String("patient_id", draft.PatientID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("appointment created",
		zap.String("appointment_id", created.ID),
		zap.String("patient_id", created.PatientID),
		zap.String("doctor_id", created.DoctorID))
	return &created, nil
}

// ListAll returns every appointment in insertion order.
func (uc *UseCase) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	return uc.appointments.Load(ctx)
}

func (uc *UseCase) ListForPatient(ctx context.Context, patientID string) ([]domain.Appointment, error) {
	return uc.filter(ctx, func(a domain.Appointment) bool { return a.PatientID == patientID })
}

func (uc *UseCase) ListForDoctor(ctx context.Context, doctorID string) ([]domain.Appointment, error) {
	return uc.filter(ctx, func(a domain.Appointment) bool { return a.DoctorID == doctorID })
}

// Get returns a single appointment by id.
func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	all, err := uc.appointments.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			found := all[i]
			return &found, nil
		}
	}
	return nil, domain.ErrAppointmentNotFound
}

// UpdateStatus sets the status of the appointment with the given id. An unknown
// id is a silent no-op and leaves storage untouched.
func (uc *UseCase) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.IsTerminal() {
		return domain.Invalid("status must be confirmed or cancelled")
	}

	matched, err := uc.update(ctx, id, status, nil)
	if err != nil {
		uc.logger.Error("failed to update appointment status", zap.String("appointment_id", id), zap.Error(err))
		return err
	}

	if matched {
		uc.logger.Info("appointment status updated", zap.String("appointment_id", id), zap.String("status", string(status)))
	} else {
		uc.logger.Debug("status update for unknown appointment ignored", zap.String("appointment_id", id))
	}
	return nil
}

// Review applies a reviewer's confirm/cancel decision. Admins may review any
// appointment and doctors only their own; the appointment must still be pending.
// The checks run against the stored record inside the same queued mutation.
func (uc *UseCase) Review(ctx context.Context, id string, status domain.Status, reviewer domain.User) (*domain.Appointment, error) {
	if !status.IsTerminal() {
		return nil, domain.Invalid("status must be confirmed or cancelled")
	}
	if !reviewer.Role.CanReviewAppointments() {
		return nil, domain.ErrForbidden
	}

	var reviewed domain.Appointment
	matched, err := uc.update(ctx, id, status, func(a domain.Appointment) error {
		if reviewer.Role == domain.RoleDoctor && a.DoctorID != reviewer.ID {
			return domain.ErrForbidden
		}
		if !a.Status.CanTransitionTo(status) {
			return domain.ErrInvalidTransition
		}
		reviewed = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, domain.ErrAppointmentNotFound
	}

	reviewed.Status = status
	uc.logger.Info("appointment reviewed",
		zap.String("appointment_id", id),
		zap.String("reviewer_id", reviewer.ID),
		zap.String("status", string(status)))
	return &reviewed, nil
}

// Cancel is UpdateStatus(id, cancelled).
func (uc *UseCase) Cancel(ctx context.Context, id string) error {
	return uc.UpdateStatus(ctx, id, domain.StatusCancelled)
}

func (uc *UseCase) filter(ctx context.Context, keep func(domain.Appointment) bool) ([]domain.Appointment, error) {
	all, err := uc.appointments.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Appointment, 0, len(all))
	for _, a := range all {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// update runs one queued read-modify-write that sets status on the record with id.
// guard, if set, may veto the change. Nothing is written when no record matches.
func (uc *UseCase) update(ctx context.Context, id string, status domain.Status, guard func(domain.Appointment) error) (bool, error) {
	var matched bool
	err := uc.queue.Do(ctx, func(ctx context.Context) error {
		matched = false
		all, err := uc.appointments.Load(ctx)
		if err != nil {
			return err
		}
		for i := range all {
			if all[i].ID != id {
				continue
			}
			if guard != nil {
				if err := guard(all[i]); err != nil {
					return err
				}
			}
			all[i].Status = status
			matched = true
		}
		if !matched {
			return nil
		}
		return uc.appointments.Save(ctx, all)
	})
	if err != nil {
		// the job may still be running if the caller gave up waiting
		return false, err
	}
	return matched, nil
}
