package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*ProfileRepository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	repo := NewProfileRepository(NewFromConn(conn))
	repo.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return repo, mock
}

func TestProfileRepository_EnsureProfile(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs(sqlmock.AnyArg(), "u1", "a@b.com", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.EnsureProfile(context.Background(), "u1", "a@b.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_EnsureProfileError(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).WillReturnError(errors.New("connection reset"))

	err := repo.EnsureProfile(context.Background(), "u1", "a@b.com")
	assert.ErrorContains(t, err, "failed to ensure profile")
}

func TestProfileRepository_List(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "firebase_uid", "email", "role", "created_at", "last_seen_at"}).
		AddRow(uuid.New().String(), "u1", "a@b.com", "user", now, now).
		AddRow(uuid.New().String(), "u2", "c@d.com", "user", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles")).WithArgs(50).WillReturnRows(rows)

	profiles, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "u1", profiles[0].FirebaseUID)
	assert.Equal(t, "c@d.com", profiles[1].Email)
}

func TestProfileRepository_Delete(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM profiles")).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM profiles")).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u1"), ErrProfileNotFound)
}

func TestDB_HealthCheck(t *testing.T) {
	t.Parallel()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("down"))

	db := NewFromConn(conn)
	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.Error(t, db.HealthCheck(context.Background()))
}
