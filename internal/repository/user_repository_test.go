package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-seat-reservation/internal/model"
)

var userCols = []string{"id", "email", "password_hash", "email_confirmed", "confirmation_token", "created_at", "updated_at"}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("ana@gmail.com", sqlmock.AnyArg(), "tok").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := NewUserRepo(db).Create(context.Background(), "  Ana@Gmail.com ", "secret12", "tok", 4)
	assert.ErrorIs(t, err, model.ErrEmailExists)
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := NewUserRepo(db).Create(context.Background(), "ana@gmail.com", "secret12", "tok", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM users WHERE email=\?`).
		WithArgs("ana@gmail.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(5, "ana@gmail.com", "h", false, "tok", now, now))

	u, err := NewUserRepo(db).GetByEmail(context.Background(), "ANA@gmail.com")
	require.NoError(t, err)
	require.NotNil(t, u.ConfirmationToken)
	assert.Equal(t, "tok", *u.ConfirmationToken)
	assert.False(t, u.EmailConfirmed)
}

func TestUserRepo_UserByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE id=\?`).WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).UserByID(context.Background(), 1)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserRepo_ConfirmByToken(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`UPDATE users SET email_confirmed=TRUE, confirmation_token=NULL`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET email_confirmed=TRUE`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepo(db)
	require.NoError(t, repo.ConfirmByToken(context.Background(), "tok"))
	assert.ErrorIs(t, repo.ConfirmByToken(context.Background(), "tok"), model.ErrInvalidToken)
	assert.ErrorIs(t, repo.ConfirmByToken(context.Background(), " "), model.ErrInvalidToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_ValidateRefresh(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	repo := NewTokenRepo(db)
	repo.now = func() time.Time { return now }
	cols := []string{"user_id", "expires_at", "revoked_at"}

	mock.ExpectQuery(`FROM refresh_tokens`).WithArgs("live").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(7, now.Add(time.Hour), nil))
	mock.ExpectQuery(`FROM refresh_tokens`).WithArgs("expired").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(7, now.Add(-time.Hour), nil))
	mock.ExpectQuery(`FROM refresh_tokens`).WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(7, now.Add(time.Hour), now))
	mock.ExpectQuery(`FROM refresh_tokens`).WithArgs("unknown").WillReturnError(sql.ErrNoRows)

	id, err := repo.ValidateRefresh(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	for _, h := range []string{"expired", "revoked", "unknown"} {
		_, err := repo.ValidateRefresh(context.Background(), h)
		assert.ErrorIs(t, err, model.ErrInvalidToken, h)
	}
}
