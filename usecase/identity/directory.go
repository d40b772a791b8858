package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/repository"
	"github.com/fastygo/medsched/usecase"
)

const patientIDPrefix = "patient-"

// Directory answers who an email/password pair belongs to. Staff identities are
// fixed; patients are loaded by Restore and grow through Register.
type Directory struct {
	repo     repository.PatientRepository
	queue    usecase.MutationQueue
	roster   Roster
	password string
	logger   *zap.Logger

	mu       sync.RWMutex
	patients []domain.User
	restored bool
	loaded   bool
}

func New(repo repository.PatientRepository, queue usecase.MutationQueue, roster Roster, password string, logger *zap.Logger) *Directory {
	if roster.Admin.ID == "" && len(roster.Doctors) == 0 {
		roster = DefaultRoster()
	}
	if password == "" {
		password = DefaultPassword
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		repo:     repo,
		queue:    queue,
		roster:   roster,
		password: password,
		logger:   logger,
	}
}

// Restore loads the persisted patient roster. It must run before Register or
// FindByCredentials. A failed read is logged and the roster is treated as empty;
// the directory then reloads before its next write instead of overwriting data it
// never saw. It reports whether the roster was actually read.
func (d *Directory) Restore(ctx context.Context) bool {
	patients, err := d.repo.Load(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.restored = true
	if err != nil {
		d.logger.Warn("patient roster unavailable, continuing with staff only", zap.Error(err))
		return false
	}
	d.patients = patients
	d.loaded = true
	d.logger.Info("patient roster restored", zap.Int("patients", len(patients)))
	return true
}

// Flush persists the in-memory patient roster.
func (d *Directory) Flush(ctx context.Context) error {
	if !d.isRestored() {
		return domain.ErrDirectoryNotRestored
	}
	return d.queue.Do(ctx, func(ctx context.Context) error {
		current, err := d.ensureLoaded(ctx)
		if err != nil {
			return err
		}
		return d.repo.Save(ctx, current)
	})
}

// FindByCredentials checks admin, then doctors, then registered patients.
func (d *Directory) FindByCredentials(email, password string) (*domain.User, error) {
	if !d.isRestored() {
		return nil, domain.ErrDirectoryNotRestored
	}
	if password != d.password {
		return nil, domain.ErrInvalidCredentials
	}

	if sameEmail(d.roster.Admin.Email, email) {
		admin := d.roster.Admin
		return &admin, nil
	}
	for _, doctor := range d.roster.Doctors {
		if sameEmail(doctor.Email, email) {
			found := doctor
			return &found, nil
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, patient := range d.patients {
		if sameEmail(patient.Email, email) {
			found := patient
			return &found, nil
		}
	}
	return nil, domain.ErrInvalidCredentials
}

// FindByID resolves any known identity by id.
func (d *Directory) FindByID(id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	if d.roster.Admin.ID == id {
		admin := d.roster.Admin
		return &admin, nil
	}
	for _, doctor := range d.roster.Doctors {
		if doctor.ID == id {
			found := doctor
			return &found, nil
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, patient := range d.patients {
		if patient.ID == id {
			found := patient
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Register adds a patient and persists the full roster. The in-memory roster only
// changes once the write has succeeded.
func (d *Directory) Register(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
	name := strings.TrimSpace(data.Name)
	email := strings.TrimSpace(data.Email)
	switch {
	case name == "":
		return nil, domain.Invalid("name is required")
	case email == "":
		return nil, domain.Invalid("email is required")
	}
	if !d.isRestored() {
		return nil, domain.ErrDirectoryNotRestored
	}

	var created domain.User
	err := d.queue.Do(ctx, func(ctx context.Context) error {
		current, err := d.ensureLoaded(ctx)
		if err != nil {
			return err
		}
		if d.emailTaken(email, current) {
			return domain.ErrDuplicateEmail
		}

		seq := nextSequence(current)
		patient := domain.User{
			ID:    fmt.Sprintf("%s%d", patientIDPrefix, seq),
			Name:  name,
			Email: email,
			Role:  domain.RolePatient,
			Image: patientImage(seq),
		}

		next := append(current, patient)
		if err := d.repo.Save(ctx, next); err != nil {
			return err
		}

		d.mu.Lock()
		d.patients = next
		d.mu.Unlock()
		created = patient
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("patient registered", zap.String("user_id", created.ID))
	return &created, nil
}

// AllUsers lists doctors followed by registered patients.
func (d *Directory) AllUsers() []domain.User {
	users := d.AllDoctors()
	return append(users, d.Patients()...)
}

func (d *Directory) AllDoctors() []domain.User {
	return append([]domain.User(nil), d.roster.Doctors...)
}

func (d *Directory) Patients() []domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.User(nil), d.patients...)
}

// ensureLoaded returns a private copy of the roster, reading storage first when
// Restore could not. Only called from queued jobs.
func (d *Directory) ensureLoaded(ctx context.Context) ([]domain.User, error) {
	d.mu.RLock()
	loaded := d.loaded
	current := append([]domain.User(nil), d.patients...)
	d.mu.RUnlock()
	if loaded {
		return current, nil
	}

	patients, err := d.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.patients = patients
	d.loaded = true
	d.mu.Unlock()
	d.logger.Info("patient roster reloaded", zap.Int("patients", len(patients)))
	return append([]domain.User(nil), patients...), nil
}

func (d *Directory) emailTaken(email string, patients []domain.User) bool {
	if sameEmail(d.roster.Admin.Email, email) {
		return true
	}
	for _, doctor := range d.roster.Doctors {
		if sameEmail(doctor.Email, email) {
			return true
		}
	}
	for _, patient := range patients {
		if sameEmail(patient.Email, email) {
			return true
		}
	}
	return false
}

func (d *Directory) isRestored() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.restored
}

// nextSequence keeps ids monotonic even if the stored roster has gaps.
func nextSequence(patients []domain.User) int {
	highest := len(patients)
	for _, p := range patients {
		n, err := strconv.Atoi(strings.TrimPrefix(p.ID, patientIDPrefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func sameEmail(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
