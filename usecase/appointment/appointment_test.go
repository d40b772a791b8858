package appointment

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/internal/infrastructure/boltdb"
	"github.com/fastygo/medsched/internal/services/writer"
	"github.com/fastygo/medsched/internal/testkit"
	"github.com/fastygo/medsched/repository"
	"github.com/fastygo/medsched/repository/kv"
)

func draft(patientID, doctorID string) domain.AppointmentDraft {
	return domain.AppointmentDraft{
		PatientID:   patientID,
		PatientName: "Patient " + patientID,
		DoctorID:    doctorID,
		DoctorName:  "Doctor " + doctorID,
		Specialty:   "Cardiologia",
		Date:        "2026-11-02",
		Time:        "14:30",
	}
}

func newBoltUseCase(t *testing.T) (*UseCase, repository.KeyValueStore) {
	t.Helper()
	store, err := boltdb.Open(filepath.Join(t.TempDir(), "test.db"), "test")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	w := writer.New("appointments", time.Second, 16, nil)
	w.Start()
	t.Cleanup(func() { _ = w.Stop(context.Background()) })

	return New(kv.NewAppointmentRepository(store), w, nil), store
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	uc, _ := newBoltUseCase(t)

	before, err := uc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, before)

	in := draft("p1", "1")
	created, err := uc.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)

	after, err := uc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	assert.Equal(t, in.Pending(created.ID), after[0])
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	uc, _ := newBoltUseCase(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		created, err := uc.Create(ctx, draft("p1", "1"))
		require.NoError(t, err)
		assert.False(t, seen[created.ID], "duplicate id %s", created.ID)
		seen[created.ID] = true
	}
}

func TestCreateValidation(t *testing.T) {
	uc, _ := newBoltUseCase(t)
	bad := draft("", "1")
	_, err := uc.Create(context.Background(), bad)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCreateStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewFlakyStore()
	uc := New(kv.NewAppointmentRepository(store), testkit.Inline{}, nil)

	store.FailSets(true)
	_, err := uc.Create(ctx, draft("p1", "1"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	store.FailSets(false)
	all, err := uc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "failed create must not be committed")

	store.FailGets(true)
	_, err = uc.Create(ctx, draft("p1", "1"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	_, err = uc.ListAll(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	uc, _ := newBoltUseCase(t)

	a, err := uc.Create(ctx, draft("p1", "1"))
	require.NoError(t, err)
	b, err := uc.Create(ctx, draft("p2", "1"))
	require.NoError(t, err)
	c, err := uc.Create(ctx, draft("p1", "2"))
	require.NoError(t, err)

	forP1, err := uc.ListForPatient(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID}, ids(forP1))

	forDoctor, err := uc.ListForDoctor(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, ids(forDoctor))

	none, err := uc.ListForDoctor(ctx, "9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	uc, _ := newBoltUseCase(t)

	a, err := uc.Create(ctx, draft("p1", "1"))
	require.NoError(t, err)
	b, err := uc.Create(ctx, draft("p1", "1"))
	require.NoError(t, err)

	require.NoError(t, uc.UpdateStatus(ctx, a.ID, domain.StatusConfirmed))

	forPatient, err := uc.ListForPatient(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, forPatient, 2)
	assert.Equal(t, domain.StatusConfirmed, forPatient[0].Status)
	assert.Equal(t, domain.StatusPending, forPatient[1].Status)

	require.NoError(t, uc.Cancel(ctx, b.ID))
	got, err := uc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	err = uc.UpdateStatus(ctx, a.ID, domain.StatusPending)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestUpdateStatusUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	uc, store := newBoltUseCase(t)

	_, err := uc.Create(ctx, draft("p1", "1"))
	require.NoError(t, err)

	before, err := store.Get(ctx, kv.KeyAppointments)
	require.NoError(t, err)

	require.NoError(t, uc.UpdateStatus(ctx, "does-not-exist", domain.StatusConfirmed))

	after, err := store.Get(ctx, kv.KeyAppointments)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateStatusUnknownIDDoesNotWrite(t *testing.T) {
	store := testkit.NewFlakyStore()
	uc := New(kv.NewAppointmentRepository(store), testkit.Inline{}, nil)

	require.NoError(t, uc.UpdateStatus(context.Background(), "missing", domain.StatusCancelled))
	assert.Zero(t, store.Writes())
}

func TestUpdateStatusStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewFlakyStore()
	uc := New(kv.NewAppointmentRepository(store), testkit.Inline{}, nil)

	a, err := uc.Create(ctx, draft("p1", "1"))
	require.NoError(t, err)

	store.FailSets(true)
	err = uc.UpdateStatus(ctx, a.ID, domain.StatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	store.FailSets(false)
	got, err := uc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestGetNotFound(t *testing.T) {
	uc, _ := newBoltUseCase(t)
	_, err := uc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

// Concurrent mutations of different records must not clobber each other.
func TestConcurrentMutationsKeepEveryWrite(t *testing.T) {
	ctx := context.Background()
	uc, _ := newBoltUseCase(t)

	const n = 30
	created := make([]*domain.Appointment, n)
	for i := 0; i < n; i++ {
		a, err := uc.Create(ctx, draft(fmt.Sprintf("p%d", i), "1"))
		require.NoError(t, err)
		created[i] = a
	}

	var wg sync.WaitGroup
	for i, a := range created {
		wg.Add(2)
		status := domain.StatusConfirmed
		if i%2 == 1 {
			status = domain.StatusCancelled
		}
		go func(id string, s domain.Status) {
			defer wg.Done()
			assert.NoError(t, uc.UpdateStatus(ctx, id, s))
		}(a.ID, status)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Create(ctx, draft(fmt.Sprintf("late%d", i), "2"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := uc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2*n)

	forDoctor, err := uc.ListForDoctor(ctx, "1")
	require.NoError(t, err)
	for i, a := range forDoctor {
		want := domain.StatusConfirmed
		if i%2 == 1 {
			want = domain.StatusCancelled
		}
		assert.Equal(t, want, a.Status, "appointment %s", a.ID)
	}
}

func TestConfirmScenario(t *testing.T) {
	ctx := context.Background()
	uc, _ := newBoltUseCase(t)

	created, err := uc.Create(ctx, domain.AppointmentDraft{PatientID: "p1", DoctorID: "D1", Date: "2026-11-02", Time: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status)

	require.NoError(t, uc.UpdateStatus(ctx, created.ID, domain.StatusConfirmed))

	forDoctor, err := uc.ListForDoctor(ctx, "D1")
	require.NoError(t, err)
	require.Len(t, forDoctor, 1)
	assert.Equal(t, domain.StatusConfirmed, forDoctor[0].Status)
	assert.Equal(t, created.ID, forDoctor[0].ID)
}

func ids(list []domain.Appointment) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestReview(t *testing.T) {
	ctx := context.Background()
	admin := domain.User{ID: "admin", Role: domain.RoleAdmin}
	doctor := domain.User{ID: "1", Role: domain.RoleDoctor}
	otherDoctor := domain.User{ID: "2", Role: domain.RoleDoctor}
	patient := domain.User{ID: "p1", Role: domain.RolePatient}

	t.Run("doctor confirms own", func(t *testing.T) {
		uc, _ := newBoltUseCase(t)
		a, err := uc.Create(ctx, draft("p1", "1"))
		require.NoError(t, err)

		reviewed, err := uc.Review(ctx, a.ID, domain.StatusConfirmed, doctor)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, reviewed.Status)

		_, err = uc.Review(ctx, a.ID, domain.StatusCancelled, admin)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("forbidden reviewers", func(t *testing.T) {
		uc, _ := newBoltUseCase(t)
		a, err := uc.Create(ctx, draft("p1", "1"))
		require.NoError(t, err)

		_, err = uc.Review(ctx, a.ID, domain.StatusCancelled, otherDoctor)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		_, err = uc.Review(ctx, a.ID, domain.StatusCancelled, patient)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		got, err := uc.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, got.Status)
	})

	t.Run("admin cancels any", func(t *testing.T) {
		uc, _ := newBoltUseCase(t)
		a, err := uc.Create(ctx, draft("p1", "2"))
		require.NoError(t, err)

		_, err = uc.Review(ctx, a.ID, domain.StatusCancelled, admin)
		require.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		uc, _ := newBoltUseCase(t)
		_, err := uc.Review(ctx, "missing", domain.StatusConfirmed, admin)
		assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
	})
}
