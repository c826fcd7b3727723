// Package distribution implements the round-robin lead assignment engine.
//
// Assignment state is a single cursor row in distribution_control that
// remembers the last seller who received a lead. Every assignment runs as one
// database transaction that locks the cursor row, reads the current roster,
// picks the next seller and advances the cursor, so concurrent intakes are
// serialized and each consumes exactly one rotation turn.
package distribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recovery_crm_backend/internal/sellers"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxFunc receives the rotation roster and the cursor value inside the
// assignment transaction. It returns the seller id the cursor should advance
// to, or nil to leave the cursor untouched.
type TxFunc func(roster []sellers.Seller, lastAssigned *int64) (next *int64, err error)

// Store serializes read-modify-write cycles on the distribution cursor.
type Store interface {
	Transact(ctx context.Context, fn TxFunc) error
}

// DB is the subset of pool operations the store uses, satisfied by
// *pgxpool.Pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// PGStore is the Postgres-backed Store. The FOR UPDATE lock on the singleton
// cursor row is what makes concurrent assignments queue up.
type PGStore struct {
	pool DB
}

// NewPGStore creates a new Postgres distribution store.
func NewPGStore(pool DB) *PGStore {
	return &PGStore{pool: pool}
}

// Transact runs fn inside a transaction holding the cursor row lock.
func (s *PGStore) Transact(ctx context.Context, fn TxFunc) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin assignment tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var lastAssigned *int64
	err = tx.QueryRow(ctx,
		`SELECT last_seller_id FROM distribution_control WHERE id = 1 FOR UPDATE`,
	).Scan(&lastAssigned)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock distribution cursor: %w", err)
	}

	roster, err := sellers.ListEligible(ctx, tx)
	if err != nil {
		return fmt.Errorf("load distribution roster: %w", err)
	}

	next, err := fn(roster, lastAssigned)
	if err != nil {
		return err
	}

	if next != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO distribution_control (id, last_seller_id, updated_at)
			VALUES (1, $1, $2)
			ON CONFLICT (id) DO UPDATE SET last_seller_id = EXCLUDED.last_seller_id, updated_at = EXCLUDED.updated_at
		`, *next, time.Now()); err != nil {
			return fmt.Errorf("advance distribution cursor: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit assignment tx: %w", err)
	}
	return nil
}

// Stats is a distribution overview for the admin dashboard.
type Stats struct {
	RosterSize     int    `json:"roster_size"`
	LastSellerID   *int64 `json:"last_seller_id"`
	LastSellerName string `json:"last_seller_name,omitempty"`
	NextSellerName string `json:"next_seller_name,omitempty"`
}

// ReadStats returns the current rotation state without consuming a turn.
func (s *PGStore) ReadStats(ctx context.Context) (Stats, error) {
	var stats Stats

	err := s.pool.QueryRow(ctx,
		`SELECT last_seller_id FROM distribution_control WHERE id = 1`,
	).Scan(&stats.LastSellerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Stats{}, fmt.Errorf("read distribution cursor: %w", err)
	}

	roster, err := sellers.ListEligible(ctx, s.pool)
	if err != nil {
		return Stats{}, fmt.Errorf("load distribution roster: %w", err)
	}
	stats.RosterSize = len(roster)

	if stats.LastSellerID != nil {
		for _, seller := range roster {
			if seller.ID == *stats.LastSellerID {
				stats.LastSellerName = seller.Name
				break
			}
		}
	}
	if next := pickNext(roster, stats.LastSellerID); next != nil {
		stats.NextSellerName = next.Name
	}
	return stats, nil
}
