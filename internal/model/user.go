package model

import "time"

// User represents an application user record as stored in the
// `users` table.  A user is created unconfirmed at registration and
// becomes confirmed exactly once when the confirmation token is
// redeemed; the token is cleared at that point and never reissued.
//
// Fields:
//  ID                – primary key identifier of the user.
//  Email             – unique email address, stored lower-cased.
//  PasswordHash      – bcrypt hashed password.
//  EmailConfirmed    – whether the confirmation link was followed.
//  ConfirmationToken – single-use token (nil once redeemed).
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type User struct {
	ID                uint64    // users.id
	Email             string    // users.email
	PasswordHash      string    // users.password_hash
	EmailConfirmed    bool      // users.email_confirmed
	ConfirmationToken *string   // users.confirmation_token (nullable)
	CreatedAt         time.Time // users.created_at
	UpdatedAt         time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is never stored; only its SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
