// Package schedules manages follow-up appointments sellers book on leads.
package schedules

import (
	"context"
	"errors"
	"time"

	"recovery_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schedule is a booked follow-up on a lead.
type Schedule struct {
	ID          int64
	UUID        uuid.UUID
	LeadID      int64
	SellerID    *int64
	ScheduledAt time.Time
	Type        string
	Status      string
	Notes       *string
	CreatedAt   time.Time
}

// ScheduleDetail joins in lead and seller display data.
type ScheduleDetail struct {
	Schedule
	LeadUUID  uuid.UUID
	LeadName  string
	LeadPhone *string
}

// Repository provides schedule data access.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new schedules repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create books a follow-up on a lead, resolved by lead uuid.
func (r *Repository) Create(ctx context.Context, leadUUID uuid.UUID, sellerID *int64, at time.Time, scheduleType string, notes *string) (Schedule, error) {
	var s Schedule
	err := r.pool.QueryRow(ctx, `
		INSERT INTO schedules (uuid, lead_id, seller_id, scheduled_at, type, notes)
		SELECT $1, l.id, $3, $4, $5, $6
		FROM leads l WHERE l.uuid = $2 AND l.is_active
		RETURNING id, uuid, lead_id, seller_id, scheduled_at, type, status, notes, created_at
	`, uuid.New(), leadUUID, sellerID, at, scheduleType, notes).Scan(
		&s.ID, &s.UUID, &s.LeadID, &s.SellerID, &s.ScheduledAt, &s.Type, &s.Status, &s.Notes, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Schedule{}, apperr.NotFound("lead not found")
		}
		return Schedule{}, err
	}
	return s, nil
}

// ListUpcoming returns pending and due schedules, optionally scoped to a
// seller, soonest first.
func (r *Repository) ListUpcoming(ctx context.Context, sellerID *int64) ([]ScheduleDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.uuid, s.lead_id, s.seller_id, s.scheduled_at, s.type, s.status, s.notes, s.created_at,
		       l.uuid, l.name, l.phone
		FROM schedules s
		JOIN leads l ON l.id = s.lead_id
		WHERE s.status IN ('pending', 'due')
		  AND ($1::bigint IS NULL OR s.seller_id = $1)
		ORDER BY s.scheduled_at ASC
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ScheduleDetail
	for rows.Next() {
		var d ScheduleDetail
		if err := rows.Scan(
			&d.ID, &d.UUID, &d.LeadID, &d.SellerID, &d.ScheduledAt, &d.Type, &d.Status, &d.Notes, &d.CreatedAt,
			&d.LeadUUID, &d.LeadName, &d.LeadPhone,
		); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// MarkDue flips a pending schedule to due, returning it with its lead for
// event publishing. A schedule that was cancelled or completed in the
// meantime returns nil.
func (r *Repository) MarkDue(ctx context.Context, id uuid.UUID) (*ScheduleDetail, error) {
	var d ScheduleDetail
	err := r.pool.QueryRow(ctx, `
		UPDATE schedules s SET status = 'due'
		FROM leads l
		WHERE s.uuid = $1 AND s.status = 'pending' AND l.id = s.lead_id
		RETURNING s.id, s.uuid, s.lead_id, s.seller_id, s.scheduled_at, s.type, s.status, s.notes, s.created_at,
		          l.uuid, l.name, l.phone
	`, id).Scan(&d.ID, &d.UUID, &d.LeadID, &d.SellerID, &d.ScheduledAt, &d.Type, &d.Status, &d.Notes, &d.CreatedAt,
		&d.LeadUUID, &d.LeadName, &d.LeadPhone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// SetStatus moves a schedule to done or cancelled.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE schedules SET status = $2 WHERE uuid = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("schedule not found")
	}
	return nil
}

// OwnerID returns the seller owning a schedule, for access checks.
func (r *Repository) OwnerID(ctx context.Context, id uuid.UUID) (*int64, error) {
	var sellerID *int64
	err := r.pool.QueryRow(ctx, `SELECT seller_id FROM schedules WHERE uuid = $1`, id).Scan(&sellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("schedule not found")
		}
		return nil, err
	}
	return sellerID, nil
}
