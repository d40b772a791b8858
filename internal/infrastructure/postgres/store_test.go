package postgres

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/medsched/internal/config"
	"github.com/fastygo/medsched/repository"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(
		pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual),
	)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return NewStore(mock), mock
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectQuery(selectValueSQL).WithArgs("@MedicalApp:user").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`{"id":"admin"}`)))
	v, err := store.Get(ctx, "@MedicalApp:user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"admin"}`, string(v))

	mock.ExpectQuery(selectValueSQL).WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	down := errors.New("connection reset")
	mock.ExpectQuery(selectValueSQL).WithArgs("k").WillReturnError(down)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, down)
}

func TestSet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(upsertValueSQL).WithArgs("k", []byte("v")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
}

func TestSetAllCommitsOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(upsertValueSQL).WithArgs("@MedicalApp:token", []byte("t")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(upsertValueSQL).WithArgs("@MedicalApp:user", []byte("u")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, store.SetAll(context.Background(), map[string][]byte{
		"@MedicalApp:user":  []byte("u"),
		"@MedicalApp:token": []byte("t"),
	}))
	require.NoError(t, store.SetAll(context.Background(), nil))
}

func TestSetAllRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)
	down := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec(upsertValueSQL).WithArgs("a", []byte("1")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(upsertValueSQL).WithArgs("b", []byte("2")).WillReturnError(down)
	mock.ExpectRollback()

	err := store.SetAll(context.Background(), map[string][]byte{"a": []byte("1"), "b": []byte("2")})
	assert.ErrorIs(t, err, down)

	mock.ExpectBegin().WillReturnError(down)
	assert.ErrorIs(t, store.SetAll(context.Background(), map[string][]byte{"a": []byte("1")}), down)
}

func TestRemove(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(deleteKeysSQL).WithArgs([]string{"a", "b"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	require.NoError(t, store.Remove(context.Background(), "a", "b"))
	require.NoError(t, store.Remove(context.Background()))
}

func TestPingAndSize(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectPing()
	require.NoError(t, store.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	assert.Error(t, store.Ping(context.Background()))

	mock.ExpectQuery(countKeysSQL).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func TestEmbeddedMigrations(t *testing.T) {
	source, err := iofs.New(migrationFS, "migrations")
	require.NoError(t, err)
	defer source.Close()

	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	r, _, err := source.ReadUp(first)
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS kv")

	_, _, err = source.ReadDown(first)
	assert.NoError(t, err)
}

func TestRunMigrationsDisabled(t *testing.T) {
	assert.NoError(t, RunMigrations(nil, nil))
	assert.NoError(t, RunMigrations(&config.Config{}, nil))
}

// Runs against a live instance only when DATABASE_URL is set.
func TestStoreLive(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg := &config.Config{
		Database:   config.DatabaseConfig{URL: url},
		Migrations: config.MigrationsConfig{Enabled: true},
	}
	require.NoError(t, RunMigrations(cfg, nil))

	pool, err := NewPool(ctx, cfg.Database, nil)
	require.NoError(t, err)
	store := NewStore(pool)
	defer store.Close()
	defer store.Remove(ctx, "medsched-test:a", "medsched-test:b")

	require.NoError(t, store.SetAll(ctx, map[string][]byte{
		"medsched-test:a": []byte("1"),
		"medsched-test:b": []byte("2"),
	}))
	v, err := store.Get(ctx, "medsched-test:b")
	require.NoError(t, err)
	assert.Equal(t, "2", string(v))

	require.NoError(t, store.Remove(ctx, "medsched-test:a", "medsched-test:b"))
	_, err = store.Get(ctx, "medsched-test:a")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}
