package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/flight-seat-reservation/internal/database"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
	"github.com/iliyamo/flight-seat-reservation/internal/utils"
)

type UserRepo struct{ db database.DBTX }

func NewUserRepo(db database.DBTX) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, password_hash, email_confirmed, confirmation_token, created_at, updated_at`

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes password and inserts an unconfirmed user holding
// confirmToken.  It returns model.ErrEmailExists on a duplicate address.
func (r *UserRepo) Create(ctx context.Context, email, password, confirmToken string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, email_confirmed, confirmation_token) VALUES (?,?,FALSE,?)",
		normalizeEmail(email), hash, confirmToken)
	if err != nil {
		if isDuplicate(err) {
			return 0, model.ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *UserRepo) scan(row *sql.Row) (*model.User, error) {
	var (
		u     model.User
		token sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.EmailConfirmed, &token, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if token.Valid {
		t := token.String
		u.ConfirmationToken = &t
	}
	return &u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scan(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

// UserByID fetches a user by id.
func (r *UserRepo) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.scan(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// ConfirmByToken confirms the account holding token and clears the token
// so it cannot be redeemed twice.  Unknown tokens give model.ErrInvalidToken.
func (r *UserRepo) ConfirmByToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.ErrInvalidToken
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET email_confirmed=TRUE, confirmation_token=NULL WHERE confirmation_token=? AND email_confirmed=FALSE",
		token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrInvalidToken
	}
	return nil
}

// Delete removes a user.  Registration uses it to roll back an account
// whose confirmation mail could not be sent.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}
