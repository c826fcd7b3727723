// Package dashboard aggregates lead and seller metrics for the home screen.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Summary is the headline counter block.
type Summary struct {
	TotalLeads    int64 `json:"total_leads"`
	LeadsToday    int64 `json:"leads_today"`
	LeadsThisWeek int64 `json:"leads_this_week"`
	Unassigned    int64 `json:"unassigned"`
	InGroup       int64 `json:"in_group"`
	Conversions   int64 `json:"conversions"`
}

// StatusCount is one slice of the pipeline breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Color  string `json:"color"`
	Count  int64  `json:"count"`
}

// RecentLead is a row in the latest-arrivals list.
type RecentLead struct {
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Seller    *string   `json:"seller"`
	Status    *string   `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SellerPerformance is one seller's row in the admin leaderboard.
type SellerPerformance struct {
	Name        string `json:"name"`
	TotalLeads  int64  `json:"total_leads"`
	Conversions int64  `json:"conversions"`
}

// Overview is the full dashboard payload.
type Overview struct {
	Summary  Summary             `json:"summary"`
	ByStatus []StatusCount       `json:"by_status"`
	Recent   []RecentLead        `json:"recent"`
	Sellers  []SellerPerformance `json:"sellers,omitempty"`
}

// Service computes dashboard aggregates.
type Service struct {
	pool *pgxpool.Pool
}

// NewService creates a new dashboard service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Overview runs the aggregate queries concurrently. A non-nil sellerID scopes
// every number to that seller; admins pass nil and also get the leaderboard.
func (s *Service) Overview(ctx context.Context, sellerID *int64) (Overview, error) {
	var out Overview

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.summary(ctx, sellerID)
		if err != nil {
			return err
		}
		out.Summary = summary
		return nil
	})
	g.Go(func() error {
		byStatus, err := s.byStatus(ctx, sellerID)
		if err != nil {
			return err
		}
		out.ByStatus = byStatus
		return nil
	})
	g.Go(func() error {
		recent, err := s.recent(ctx, sellerID)
		if err != nil {
			return err
		}
		out.Recent = recent
		return nil
	})
	if sellerID == nil {
		g.Go(func() error {
			performance, err := s.sellerPerformance(ctx)
			if err != nil {
				return err
			}
			out.Sellers = performance
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

func (s *Service) summary(ctx context.Context, sellerID *int64) (Summary, error) {
	var sum Summary
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE l.created_at >= date_trunc('day', now())),
		       COUNT(*) FILTER (WHERE l.created_at >= date_trunc('week', now())),
		       COUNT(*) FILTER (WHERE l.seller_id IS NULL),
		       COUNT(*) FILTER (WHERE l.in_group),
		       COUNT(*) FILTER (WHERE ls.is_conversion)
		FROM leads l
		LEFT JOIN lead_statuses ls ON ls.id = l.status_id
		WHERE l.is_active AND ($1::bigint IS NULL OR l.seller_id = $1)
	`, sellerID).Scan(
		&sum.TotalLeads, &sum.LeadsToday, &sum.LeadsThisWeek, &sum.Unassigned, &sum.InGroup, &sum.Conversions)
	return sum, err
}

func (s *Service) byStatus(ctx context.Context, sellerID *int64) ([]StatusCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ls.name, ls.color, COUNT(l.id)
		FROM lead_statuses ls
		LEFT JOIN leads l ON l.status_id = ls.id AND l.is_active
			AND ($1::bigint IS NULL OR l.seller_id = $1)
		GROUP BY ls.id
		ORDER BY ls.display_order ASC
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Color, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func (s *Service) recent(ctx context.Context, sellerID *int64) ([]RecentLead, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT l.uuid, l.name, l.source, u.name, ls.name, l.created_at
		FROM leads l
		LEFT JOIN users u ON u.id = l.seller_id
		LEFT JOIN lead_statuses ls ON ls.id = l.status_id
		WHERE l.is_active AND ($1::bigint IS NULL OR l.seller_id = $1)
		ORDER BY l.created_at DESC
		LIMIT 10
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RecentLead
	for rows.Next() {
		var rl RecentLead
		var id uuid.UUID
		if err := rows.Scan(&id, &rl.Name, &rl.Source, &rl.Seller, &rl.Status, &rl.CreatedAt); err != nil {
			return nil, err
		}
		rl.UUID = id.String()
		result = append(result, rl)
	}
	return result, rows.Err()
}

func (s *Service) sellerPerformance(ctx context.Context) ([]SellerPerformance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.name,
		       COUNT(l.id) FILTER (WHERE l.is_active),
		       COUNT(l.id) FILTER (WHERE l.is_active AND ls.is_conversion)
		FROM users u
		LEFT JOIN leads l ON l.seller_id = u.id
		LEFT JOIN lead_statuses ls ON ls.id = l.status_id
		WHERE u.role = 'seller' AND u.is_active
		GROUP BY u.id
		ORDER BY COUNT(l.id) FILTER (WHERE l.is_active) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SellerPerformance
	for rows.Next() {
		var sp SellerPerformance
		if err := rows.Scan(&sp.Name, &sp.TotalLeads, &sp.Conversions); err != nil {
			return nil, err
		}
		result = append(result, sp)
	}
	return result, rows.Err()
}
