// Package exports streams lead data out as CSV for spreadsheet workflows.
package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Exporter writes lead exports.
type Exporter struct {
	pool *pgxpool.Pool
}

// NewExporter creates a new exporter.
func NewExporter(pool *pgxpool.Pool) *Exporter {
	return &Exporter{pool: pool}
}

var csvHeader = []string{"name", "email", "phone", "product", "status", "seller", "campaign", "source", "in_group", "created_at"}

// WriteLeadsCSV streams all active leads, optionally filtered by seller or
// status, to w in CSV form.
func (e *Exporter) WriteLeadsCSV(ctx context.Context, w io.Writer, sellerID, statusID *int64) error {
	rows, err := e.pool.Query(ctx, `
		SELECT l.name, COALESCE(l.email, ''), COALESCE(l.phone, ''), COALESCE(l.product_name, ''),
		       COALESCE(ls.name, ''), COALESCE(u.name, ''), COALESCE(c.name, ''), l.source, l.in_group, l.created_at
		FROM leads l
		LEFT JOIN lead_statuses ls ON ls.id = l.status_id
		LEFT JOIN users u ON u.id = l.seller_id
		LEFT JOIN campaigns c ON c.id = l.campaign_id
		WHERE l.is_active
		  AND ($1::bigint IS NULL OR l.seller_id = $1)
		  AND ($2::bigint IS NULL OR l.status_id = $2)
		ORDER BY l.created_at DESC
	`, sellerID, statusID)
	if err != nil {
		return fmt.Errorf("query leads for export: %w", err)
	}
	defer rows.Close()

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for rows.Next() {
		var (
			name, email, phone, product, status, seller, campaign, source string
			inGroup                                                       bool
			createdAt                                                     time.Time
		)
		if err := rows.Scan(&name, &email, &phone, &product, &status, &seller, &campaign, &source, &inGroup, &createdAt); err != nil {
			return err
		}
		record := []string{
			name, email, phone, product, status, seller, campaign, source,
			boolToCSV(inGroup), createdAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

func boolToCSV(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
