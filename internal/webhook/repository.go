// Package webhook receives purchase notifications from the checkout platform
// and feeds them into lead intake.
package webhook

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings is the singleton webhook configuration row.
type Settings struct {
	WebhookToken   string `json:"webhook_token"`
	WebhookEnabled bool   `json:"webhook_enabled"`
	RequireToken   bool   `json:"require_token"`
}

// Repository provides access to the webhook settings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new webhook repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSettings returns the current webhook configuration.
func (r *Repository) GetSettings(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx,
		`SELECT webhook_token, webhook_enabled, require_token FROM api_settings WHERE id = 1`,
	).Scan(&s.WebhookToken, &s.WebhookEnabled, &s.RequireToken)
	return s, err
}

// UpdateSettings changes the webhook toggles. Passing a nil field keeps the
// stored value.
func (r *Repository) UpdateSettings(ctx context.Context, enabled, requireToken *bool, token *string) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `
		UPDATE api_settings
		SET webhook_enabled = COALESCE($1, webhook_enabled),
		    require_token = COALESCE($2, require_token),
		    webhook_token = COALESCE($3, webhook_token),
		    updated_at = now()
		WHERE id = 1
		RETURNING webhook_token, webhook_enabled, require_token
	`, enabled, requireToken, token).Scan(&s.WebhookToken, &s.WebhookEnabled, &s.RequireToken)
	return s, err
}
