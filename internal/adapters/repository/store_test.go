package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"no rows", sql.ErrNoRows, domain.KindNotFound},
		{"unique", &pq.Error{Code: pgUniqueViolation}, domain.KindConflict},
		{"foreign key", &pq.Error{Code: pgForeignKeyViolation}, domain.KindValidation},
		{"check", &pq.Error{Code: pgCheckViolation}, domain.KindValidation},
		{"malformed uuid", &pq.Error{Code: pgInvalidText}, domain.KindNotFound},
		{"serialization", &pq.Error{Code: pgSerialization}, domain.KindConflict},
		{"other driver error", &pq.Error{Code: "53300"}, domain.KindInternal},
		{"plain", errors.New("connection reset"), domain.KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.KindOf(mapError(tc.err, "animal")))
		})
	}
	assert.NoError(t, mapError(nil, "animal"))
	assert.Equal(t, "animal not found", domain.PublicMessage(mapError(sql.ErrNoRows, "animal")))
}

func TestUserRepository_FindBySubject(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "subject", "first_name", "last_name", "email", "role", "is_active", "created_at", "updated_at", "last_login_at"}).
		AddRow("u1", "sub-1", "Ada", "Byron", "ada@rescue.org", "Staff", true, now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE subject = $1")).
		WithArgs("sub-1").
		WillReturnRows(rows)

	u, err := store.Users().FindBySubject(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	require.NotNil(t, u.Subject)
	assert.Equal(t, "sub-1", *u.Subject)
	assert.Equal(t, domain.RoleStaff, u.Role)
	assert.Nil(t, u.LastLoginAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE subject = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = store.Users().FindBySubject(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: pgUniqueViolation})

	err := store.Users().Create(context.Background(), &domain.User{ID: "u1", Email: "a@b.org", Role: domain.RoleGuest})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Users().Update(context.Background(), &domain.User{ID: "u1", Role: domain.RoleGuest})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestWithinTx_CommitsWithLocks(t *testing.T) {
	store, mock := newMockStore(t)
	evt := domain.Event{ID: "e1", Type: domain.EventAdoptionFinalized, Payload: json.RawMessage(`{}`), CreatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM adoption_history WHERE animal_id = $1 AND return_date IS NULL FOR UPDATE")).
		WithArgs("a1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("e1", "adoption.finalized", "{}", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(ctx context.Context, r ports.Repositories) error {
		_, err := r.Adoptions().FindActiveForUpdate(ctx, "a1")
		require.True(t, errors.Is(err, domain.ErrNotFound))
		return r.Outbox().Enqueue(ctx, evt)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, r ports.Repositories) error {
		return r.Outbox().Enqueue(ctx, domain.Event{ID: "e1", Type: domain.EventAdoptionReturned, Payload: json.RawMessage(`{}`)})
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadsOutsideTxDoNotLock(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`return_date IS NULL$`).
		WithArgs("a1").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Adoptions().FindActiveForUpdate(context.Background(), "a1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
