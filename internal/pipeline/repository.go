// Package pipeline manages the lead status ladder and marketing campaigns.
package pipeline

import (
	"context"
	"errors"
	"time"

	"recovery_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Status is a pipeline stage leads move through.
type Status struct {
	ID           int64
	UUID         uuid.UUID
	Name         string
	Color        string
	DisplayOrder int
	IsConversion bool
	IsSystem     bool
	LeadCount    int64
}

// Campaign groups leads by acquisition effort.
type Campaign struct {
	ID        int64
	UUID      uuid.UUID
	Name      string
	IsActive  bool
	LeadCount int64
	CreatedAt time.Time
}

// Repository provides status and campaign data access.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new pipeline repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListStatuses returns all statuses in display order with lead counts.
func (r *Repository) ListStatuses(ctx context.Context) ([]Status, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.uuid, s.name, s.color, s.display_order, s.is_conversion, s.is_system,
		       COUNT(l.id) FILTER (WHERE l.is_active) AS lead_count
		FROM lead_statuses s
		LEFT JOIN leads l ON l.status_id = s.id
		GROUP BY s.id
		ORDER BY s.display_order ASC, s.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Status
	for rows.Next() {
		var s Status
		if err := rows.Scan(&s.ID, &s.UUID, &s.Name, &s.Color, &s.DisplayOrder, &s.IsConversion, &s.IsSystem, &s.LeadCount); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// CreateStatus inserts a pipeline stage after the current last position.
func (r *Repository) CreateStatus(ctx context.Context, name, color string, isConversion bool) (Status, error) {
	var s Status
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_statuses (uuid, name, color, display_order, is_conversion)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(display_order), 0) + 1 FROM lead_statuses), $4)
		RETURNING id, uuid, name, color, display_order, is_conversion, is_system
	`, uuid.New(), name, color, isConversion).Scan(
		&s.ID, &s.UUID, &s.Name, &s.Color, &s.DisplayOrder, &s.IsConversion, &s.IsSystem)
	if err != nil {
		if isUnique(err) {
			return Status{}, apperr.Conflict("status name already exists")
		}
		return Status{}, err
	}
	return s, nil
}

// UpdateStatus renames or recolors a stage.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, name, color string, isConversion bool) (Status, error) {
	var s Status
	err := r.pool.QueryRow(ctx, `
		UPDATE lead_statuses
		SET name = $2, color = $3, is_conversion = $4
		WHERE uuid = $1
		RETURNING id, uuid, name, color, display_order, is_conversion, is_system
	`, id, name, color, isConversion).Scan(
		&s.ID, &s.UUID, &s.Name, &s.Color, &s.DisplayOrder, &s.IsConversion, &s.IsSystem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Status{}, apperr.NotFound("status not found")
		}
		if isUnique(err) {
			return Status{}, apperr.Conflict("status name already exists")
		}
		return Status{}, err
	}
	return s, nil
}

// DeleteStatus removes a stage. System stages and stages still holding leads
// are protected.
func (r *Repository) DeleteStatus(ctx context.Context, id uuid.UUID) error {
	var statusID int64
	var isSystem bool
	err := r.pool.QueryRow(ctx,
		`SELECT id, is_system FROM lead_statuses WHERE uuid = $1`, id,
	).Scan(&statusID, &isSystem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("status not found")
		}
		return err
	}
	if isSystem {
		return apperr.Forbidden("system statuses cannot be deleted")
	}

	var inUse int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE status_id = $1 AND is_active`, statusID,
	).Scan(&inUse); err != nil {
		return err
	}
	if inUse > 0 {
		return apperr.Conflict("status still has leads")
	}

	_, err = r.pool.Exec(ctx, `DELETE FROM lead_statuses WHERE id = $1`, statusID)
	return err
}

// StatusOrderEntry pairs a status uuid with its new display position.
type StatusOrderEntry struct {
	UUID  uuid.UUID
	Order int
}

// ReorderStatuses applies a full ladder reordering in one transaction.
func (r *Repository) ReorderStatuses(ctx context.Context, entries []StatusOrderEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, entry := range entries {
		if _, err := tx.Exec(ctx,
			`UPDATE lead_statuses SET display_order = $2 WHERE uuid = $1`, entry.UUID, entry.Order); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListCampaigns returns campaigns newest-first with lead counts.
func (r *Repository) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.uuid, c.name, c.is_active, c.created_at,
		       COUNT(l.id) FILTER (WHERE l.is_active) AS lead_count
		FROM campaigns c
		LEFT JOIN leads l ON l.campaign_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Campaign
	for rows.Next() {
		var c Campaign
		if err := rows.Scan(&c.ID, &c.UUID, &c.Name, &c.IsActive, &c.CreatedAt, &c.LeadCount); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// CreateCampaign inserts a campaign.
func (r *Repository) CreateCampaign(ctx context.Context, name string) (Campaign, error) {
	var c Campaign
	err := r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (uuid, name) VALUES ($1, $2)
		RETURNING id, uuid, name, is_active, created_at
	`, uuid.New(), name).Scan(&c.ID, &c.UUID, &c.Name, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if isUnique(err) {
			return Campaign{}, apperr.Conflict("campaign name already exists")
		}
		return Campaign{}, err
	}
	return c, nil
}

// RenameCampaign changes a campaign name.
func (r *Repository) RenameCampaign(ctx context.Context, id uuid.UUID, name string) (Campaign, error) {
	var c Campaign
	err := r.pool.QueryRow(ctx, `
		UPDATE campaigns SET name = $2 WHERE uuid = $1
		RETURNING id, uuid, name, is_active, created_at
	`, id, name).Scan(&c.ID, &c.UUID, &c.Name, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, apperr.NotFound("campaign not found")
		}
		if isUnique(err) {
			return Campaign{}, apperr.Conflict("campaign name already exists")
		}
		return Campaign{}, err
	}
	return c, nil
}

// ActivateCampaign makes one campaign the active one, deactivating the rest.
func (r *Repository) ActivateCampaign(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `UPDATE campaigns SET is_active = FALSE WHERE is_active`); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE campaigns SET is_active = TRUE WHERE uuid = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("campaign not found")
	}
	return tx.Commit(ctx)
}

// DeleteCampaign removes a campaign; its leads keep running with a null
// campaign via the FK's ON DELETE SET NULL.
func (r *Repository) DeleteCampaign(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE uuid = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("campaign not found")
	}
	return nil
}

func isUnique(err error) bool {
	type sqlState interface{ SQLState() string }
	var state sqlState
	return errors.As(err, &state) && state.SQLState() == "23505"
}
