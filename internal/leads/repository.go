// Package leads owns the lead lifecycle: intake with deduplication and
// round-robin assignment, listing, status changes and seller ownership.
package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recovery_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Lead is a sales lead row.
type Lead struct {
	ID            int64
	UUID          uuid.UUID
	Name          string
	Email         *string
	Phone         *string
	ProductName   *string
	TransactionID *string
	Source        string
	SellerID      *int64
	StatusID      *int64
	CampaignID    *int64
	ImportBatchID *int64
	InGroup       bool
	IsActive      bool
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LeadDetail joins in the display names a listing needs.
type LeadDetail struct {
	Lead
	SellerName   *string
	SellerUUID   *uuid.UUID
	StatusName   *string
	CampaignName *string
}

// ListFilter narrows the lead listing.
type ListFilter struct {
	SellerID   *int64
	StatusID   *int64
	CampaignID *int64
	Search     string
	InGroup    *bool
	Page       int
	PerPage    int
}

// Repository provides lead data access.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new leads repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, uuid, name, email, phone, product_name, transaction_id, source, seller_id, status_id,
	campaign_id, import_batch_id, in_group, is_active, notes, created_at, updated_at`

func scanLead(row pgx.Row, l *Lead) error {
	return row.Scan(
		&l.ID, &l.UUID, &l.Name, &l.Email, &l.Phone, &l.ProductName, &l.TransactionID, &l.Source,
		&l.SellerID, &l.StatusID, &l.CampaignID, &l.ImportBatchID, &l.InGroup, &l.IsActive, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt,
	)
}

// FindByEmail returns the active lead matching an email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Lead, error) {
	var l Lead
	err := r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE lower(email) = lower($1) AND is_active LIMIT 1`, email,
	).Scan(
		&l.ID, &l.UUID, &l.Name, &l.Email, &l.Phone, &l.ProductName, &l.TransactionID, &l.Source,
		&l.SellerID, &l.StatusID, &l.CampaignID, &l.ImportBatchID, &l.InGroup, &l.IsActive, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// FindByPhoneSuffix returns the active lead whose phone ends with the given
// eight-digit suffix, which survives country-code and formatting differences.
// Phones are stored normalized, so the trailing-digits index applies.
func (r *Repository) FindByPhoneSuffix(ctx context.Context, suffix string) (*Lead, error) {
	var l Lead
	err := r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads
		 WHERE phone IS NOT NULL AND right(phone, 8) = $1 AND is_active
		 LIMIT 1`, suffix,
	).Scan(
		&l.ID, &l.UUID, &l.Name, &l.Email, &l.Phone, &l.ProductName, &l.TransactionID, &l.Source,
		&l.SellerID, &l.StatusID, &l.CampaignID, &l.ImportBatchID, &l.InGroup, &l.IsActive, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// NewLead is the insert payload for Create.
type NewLead struct {
	Name          string
	Email         *string
	Phone         *string
	ProductName   *string
	TransactionID *string
	Source        string
	SellerID      *int64
	StatusID      *int64
	CampaignID    *int64
	ImportBatchID *int64
	InGroup       bool
	Notes         *string
}

// Create inserts a lead and returns the stored row.
func (r *Repository) Create(ctx context.Context, n NewLead) (Lead, error) {
	var l Lead
	err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (uuid, name, email, phone, product_name, transaction_id, source, seller_id,
			status_id, campaign_id, import_batch_id, in_group, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+leadColumns+`
	`, uuid.New(), n.Name, n.Email, n.Phone, n.ProductName, n.TransactionID, n.Source, n.SellerID,
		n.StatusID, n.CampaignID, n.ImportBatchID, n.InGroup, n.Notes), &l)
	if err != nil {
		return Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return l, nil
}

// UpdateContact refreshes contact fields on a duplicate intake. Seller
// ownership is never touched here.
func (r *Repository) UpdateContact(ctx context.Context, id int64, name string, email, phone, productName *string) (Lead, error) {
	var l Lead
	err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET name = COALESCE(NULLIF($2, ''), name),
		    email = COALESCE($3, email),
		    phone = COALESCE($4, phone),
		    product_name = COALESCE($5, product_name),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, name, email, phone, productName), &l)
	if err != nil {
		return Lead{}, fmt.Errorf("update lead contact: %w", err)
	}
	return l, nil
}

// GetByUUID returns a lead with joined display names.
func (r *Repository) GetByUUID(ctx context.Context, id uuid.UUID) (LeadDetail, error) {
	var d LeadDetail
	err := r.pool.QueryRow(ctx, `
		SELECT l.id, l.uuid, l.name, l.email, l.phone, l.product_name, l.transaction_id, l.source,
		       l.seller_id, l.status_id, l.campaign_id, l.import_batch_id, l.in_group, l.is_active, l.notes,
		       l.created_at, l.updated_at,
		       u.name, u.uuid, ls.name, c.name
		FROM leads l
		LEFT JOIN users u ON u.id = l.seller_id
		LEFT JOIN lead_statuses ls ON ls.id = l.status_id
		LEFT JOIN campaigns c ON c.id = l.campaign_id
		WHERE l.uuid = $1 AND l.is_active
	`, id).Scan(
		&d.ID, &d.UUID, &d.Name, &d.Email, &d.Phone, &d.ProductName, &d.TransactionID, &d.Source,
		&d.SellerID, &d.StatusID, &d.CampaignID, &d.ImportBatchID, &d.InGroup, &d.IsActive, &d.Notes,
		&d.CreatedAt, &d.UpdatedAt,
		&d.SellerName, &d.SellerUUID, &d.StatusName, &d.CampaignName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LeadDetail{}, apperr.NotFound("lead not found")
		}
		return LeadDetail{}, err
	}
	return d, nil
}

// List returns a filtered, paginated page of leads with the total count.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]LeadDetail, int64, error) {
	where := []string{"l.is_active"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.SellerID != nil {
		where = append(where, "l.seller_id = "+arg(*f.SellerID))
	}
	if f.StatusID != nil {
		where = append(where, "l.status_id = "+arg(*f.StatusID))
	}
	if f.CampaignID != nil {
		where = append(where, "l.campaign_id = "+arg(*f.CampaignID))
	}
	if f.InGroup != nil {
		where = append(where, "l.in_group = "+arg(*f.InGroup))
	}
	if f.Search != "" {
		p := arg("%" + strings.ToLower(f.Search) + "%")
		where = append(where, "(lower(l.name) LIKE "+p+" OR lower(l.email) LIKE "+p+" OR l.phone LIKE "+p+")")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads l WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.PerPage <= 0 || f.PerPage > 100 {
		f.PerPage = 25
	}
	if f.Page < 1 {
		f.Page = 1
	}
	query := `
		SELECT l.id, l.uuid, l.name, l.email, l.phone, l.product_name, l.transaction_id, l.source,
		       l.seller_id, l.status_id, l.campaign_id, l.import_batch_id, l.in_group, l.is_active, l.notes,
		       l.created_at, l.updated_at,
		       u.name, u.uuid, ls.name, c.name
		FROM leads l
		LEFT JOIN users u ON u.id = l.seller_id
		LEFT JOIN lead_statuses ls ON ls.id = l.status_id
		LEFT JOIN campaigns c ON c.id = l.campaign_id
		WHERE ` + cond + `
		ORDER BY l.created_at DESC
		LIMIT ` + arg(f.PerPage) + ` OFFSET ` + arg((f.Page-1)*f.PerPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []LeadDetail
	for rows.Next() {
		var d LeadDetail
		if err := rows.Scan(
			&d.ID, &d.UUID, &d.Name, &d.Email, &d.Phone, &d.ProductName, &d.TransactionID, &d.Source,
			&d.SellerID, &d.StatusID, &d.CampaignID, &d.ImportBatchID, &d.InGroup, &d.IsActive, &d.Notes,
			&d.CreatedAt, &d.UpdatedAt,
			&d.SellerName, &d.SellerUUID, &d.StatusName, &d.CampaignName,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, d)
	}
	return result, total, rows.Err()
}

// UpdateStatus moves a lead to another pipeline status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, statusID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET status_id = $2, updated_at = now() WHERE uuid = $1 AND is_active`, id, statusID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// AppendNote adds a timestamped line to the lead's notes.
func (r *Repository) AppendNote(ctx context.Context, id uuid.UUID, author, note string) error {
	line := fmt.Sprintf("[%s] %s: %s", time.Now().Format("2006-01-02 15:04"), author, note)
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET notes = COALESCE(notes || E'\n', '') || $2, updated_at = now()
		WHERE uuid = $1 AND is_active
	`, id, line)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// Reassign hands a lead to a specific seller, outside the rotation.
func (r *Repository) Reassign(ctx context.Context, id uuid.UUID, sellerID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET seller_id = $2, updated_at = now() WHERE uuid = $1 AND is_active`, id, sellerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// SetInGroup flags whether the lead joined the WhatsApp group.
func (r *Repository) SetInGroup(ctx context.Context, id uuid.UUID, inGroup bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET in_group = $2, updated_at = now() WHERE uuid = $1 AND is_active`, id, inGroup)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// BulkSetInGroup applies the group flag to many leads at once.
func (r *Repository) BulkSetInGroup(ctx context.Context, ids []uuid.UUID, inGroup bool) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET in_group = $2, updated_at = now() WHERE uuid = ANY($1) AND is_active`, ids, inGroup)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// BulkDeactivate soft-deletes many leads at once.
func (r *Repository) BulkDeactivate(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET is_active = FALSE, updated_at = now() WHERE uuid = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Deactivate soft-deletes a lead.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET is_active = FALSE, updated_at = now() WHERE uuid = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// DefaultStatusID returns the system entry status new leads start in.
func (r *Repository) DefaultStatusID(ctx context.Context) (*int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM lead_statuses WHERE is_system ORDER BY display_order ASC LIMIT 1`,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}
