// Package auth implements credential login, token refresh and the bootstrap
// admin account.
package auth

import (
	"context"
	"errors"
	"time"

	"recovery_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Account is a user row with credentials, internal to the auth context.
type Account struct {
	ID           int64
	UUID         uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// Repository provides credential lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, uuid, name, email, password_hash, role, is_active, created_at`

// GetByEmail returns the account for a login email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE lower(email) = lower($1)`, email,
	).Scan(&a.ID, &a.UUID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, apperr.Unauthorized("invalid credentials")
		}
		return Account{}, err
	}
	return a, nil
}

// GetByUUID returns the account for a token subject.
func (r *Repository) GetByUUID(ctx context.Context, id uuid.UUID) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE uuid = $1`, id,
	).Scan(&a.ID, &a.UUID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, apperr.Unauthorized("account not found")
		}
		return Account{}, err
	}
	return a, nil
}

// EnsureAdmin creates the bootstrap admin account if no user exists with the
// given email. Called once at startup; a no-op on subsequent boots.
func (r *Repository) EnsureAdmin(ctx context.Context, name, email, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (uuid, name, email, password_hash, role, is_in_distribution)
		VALUES ($1, $2, $3, $4, 'admin', FALSE)
		ON CONFLICT (email) DO NOTHING
	`, uuid.New(), name, email, passwordHash)
	return err
}
