package imports

import (
	"context"
	"errors"
	"strings"
	"time"

	"recovery_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Batch is one import run.
type Batch struct {
	ID         int64
	UUID       uuid.UUID
	Name       string
	Source     string
	CampaignID *int64
	SellerID   *int64
	TotalRows  int
	Imported   int
	Updated    int
	Skipped    int
	IsReverted bool
	CreatedBy  *int64
	CreatedAt  time.Time
}

// BatchWithCounts adds the live lead count, which shrinks when leads from the
// batch are deleted individually.
type BatchWithCounts struct {
	Batch
	LiveLeads int64
}

// Repository provides import batch data access.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new imports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateBatch inserts a batch header before rows are processed.
func (r *Repository) CreateBatch(ctx context.Context, name, source string, campaignID, sellerID, createdBy *int64, totalRows int) (Batch, error) {
	var b Batch
	err := r.pool.QueryRow(ctx, `
		INSERT INTO import_batches (uuid, name, source, campaign_id, seller_id, created_by, total_rows)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, uuid, name, source, campaign_id, seller_id, total_rows, imported, updated, skipped, is_reverted, created_by, created_at
	`, uuid.New(), name, source, campaignID, sellerID, createdBy, totalRows).Scan(
		&b.ID, &b.UUID, &b.Name, &b.Source, &b.CampaignID, &b.SellerID, &b.TotalRows,
		&b.Imported, &b.Updated, &b.Skipped, &b.IsReverted, &b.CreatedBy, &b.CreatedAt,
	)
	return b, err
}

// FinishBatch records the outcome counters.
func (r *Repository) FinishBatch(ctx context.Context, id int64, imported, updated, skipped int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE import_batches SET imported = $2, updated = $3, skipped = $4 WHERE id = $1`,
		id, imported, updated, skipped)
	return err
}

// ListBatches returns batches newest-first with live lead counts.
func (r *Repository) ListBatches(ctx context.Context) ([]BatchWithCounts, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.uuid, b.name, b.source, b.campaign_id, b.seller_id, b.total_rows,
		       b.imported, b.updated, b.skipped, b.is_reverted, b.created_by, b.created_at,
		       COUNT(l.id) FILTER (WHERE l.is_active) AS live_leads
		FROM import_batches b
		LEFT JOIN leads l ON l.import_batch_id = b.id
		GROUP BY b.id
		ORDER BY b.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BatchWithCounts
	for rows.Next() {
		var b BatchWithCounts
		if err := rows.Scan(
			&b.ID, &b.UUID, &b.Name, &b.Source, &b.CampaignID, &b.SellerID, &b.TotalRows,
			&b.Imported, &b.Updated, &b.Skipped, &b.IsReverted, &b.CreatedBy, &b.CreatedAt,
			&b.LiveLeads,
		); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// RevertBatch soft-deletes the leads a batch created and marks it reverted.
// Leads that existed before the batch and were merely updated stay put.
func (r *Repository) RevertBatch(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var batchID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM import_batches WHERE uuid = $1 AND NOT is_reverted FOR UPDATE`, id,
	).Scan(&batchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound("batch not found or already reverted")
		}
		return 0, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE leads SET is_active = FALSE, updated_at = now() WHERE import_batch_id = $1`, batchID)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE import_batches SET is_reverted = TRUE WHERE id = $1`, batchID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteBatch removes a reverted batch header.
func (r *Repository) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM import_batches WHERE uuid = $1 AND is_reverted`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("batch not found or not reverted")
	}
	return nil
}

// StatusIDsByName maps lowercase status names to ids, used to resolve the
// per-row status column.
func (r *Repository) StatusIDsByName(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM lead_statuses`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		result[strings.ToLower(strings.TrimSpace(name))] = id
	}
	return result, rows.Err()
}
