// Package sellers provides the seller directory bounded context: the user
// records that can receive leads, and the eligibility roster consumed by the
// distribution engine.
package sellers

import (
	"context"
	"errors"
	"time"

	"recovery_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seller represents a user able to receive leads.
type Seller struct {
	ID                int64
	UUID              uuid.UUID
	Name              string
	Email             string
	Role              string
	IsActive          bool
	InDistribution    bool
	DistributionOrder int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SellerWithStats is a seller with lead counters for admin listings.
type SellerWithStats struct {
	Seller
	TotalLeads  int64
	Conversions int64
}

// Querier is the subset of pgx operations the roster query needs; satisfied
// by both *pgxpool.Pool and pgx.Tx so the distribution engine can read the
// roster inside its assignment transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const eligibleQuery = `
	SELECT id, uuid, name, email, role, is_active, is_in_distribution, distribution_order, created_at, updated_at
	FROM users
	WHERE role = 'seller' AND is_active AND is_in_distribution
	ORDER BY distribution_order ASC, id ASC
`

// ListEligible returns the sellers currently in the distribution rotation, in
// rotation order: ascending distribution_order with id as a stable tie-break.
// An empty roster is a valid result, not an error.
func ListEligible(ctx context.Context, q Querier) ([]Seller, error) {
	rows, err := q.Query(ctx, eligibleQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Seller
	for rows.Next() {
		var s Seller
		if err := scanSeller(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Repository provides data access for sellers and users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new sellers repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListEligible returns the current distribution roster.
func (r *Repository) ListEligible(ctx context.Context) ([]Seller, error) {
	return ListEligible(ctx, r.pool)
}

// ListUsers returns all users ordered by name.
func (r *Repository) ListUsers(ctx context.Context) ([]Seller, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, uuid, name, email, role, is_active, is_in_distribution, distribution_order, created_at, updated_at
		FROM users
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Seller
	for rows.Next() {
		var s Seller
		if err := scanSeller(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ListSellersWithStats returns active sellers with lead and conversion counts.
func (r *Repository) ListSellersWithStats(ctx context.Context) ([]SellerWithStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.uuid, u.name, u.email, u.role, u.is_active, u.is_in_distribution, u.distribution_order,
		       u.created_at, u.updated_at,
		       COUNT(l.id) AS total_leads,
		       COUNT(l.id) FILTER (WHERE ls.is_conversion) AS conversions
		FROM users u
		LEFT JOIN leads l ON l.seller_id = u.id
		LEFT JOIN lead_statuses ls ON ls.id = l.status_id
		WHERE u.role = 'seller' AND u.is_active
		GROUP BY u.id
		ORDER BY u.distribution_order ASC, u.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SellerWithStats
	for rows.Next() {
		var s SellerWithStats
		if err := rows.Scan(
			&s.ID, &s.UUID, &s.Name, &s.Email, &s.Role, &s.IsActive, &s.InDistribution, &s.DistributionOrder,
			&s.CreatedAt, &s.UpdatedAt, &s.TotalLeads, &s.Conversions,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetByUUID returns a user by public uuid.
func (r *Repository) GetByUUID(ctx context.Context, id uuid.UUID) (Seller, error) {
	var s Seller
	row := r.pool.QueryRow(ctx, `
		SELECT id, uuid, name, email, role, is_active, is_in_distribution, distribution_order, created_at, updated_at
		FROM users
		WHERE uuid = $1
	`, id)
	if err := scanSeller(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Seller{}, apperr.NotFound("user not found")
		}
		return Seller{}, err
	}
	return s, nil
}

// GetActiveSellerByID returns an active seller by database id, used to
// validate administrative reassignment targets.
func (r *Repository) GetActiveSellerByID(ctx context.Context, id int64) (Seller, error) {
	var s Seller
	row := r.pool.QueryRow(ctx, `
		SELECT id, uuid, name, email, role, is_active, is_in_distribution, distribution_order, created_at, updated_at
		FROM users
		WHERE id = $1 AND role = 'seller' AND is_active
	`, id)
	if err := scanSeller(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Seller{}, apperr.NotFound("seller not found or inactive")
		}
		return Seller{}, err
	}
	return s, nil
}

// ActiveSellerID resolves a seller uuid to its database id, rejecting
// inactive accounts and non-sellers.
func (r *Repository) ActiveSellerID(ctx context.Context, id uuid.UUID) (int64, error) {
	var sellerID int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM users WHERE uuid = $1 AND role = 'seller' AND is_active`, id,
	).Scan(&sellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound("seller not found or inactive")
		}
		return 0, err
	}
	return sellerID, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash, role string) (Seller, error) {
	var s Seller
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (uuid, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uuid, name, email, role, is_active, is_in_distribution, distribution_order, created_at, updated_at
	`, uuid.New(), name, email, passwordHash, role)
	if err := scanSeller(row, &s); err != nil {
		if isUniqueViolation(err) {
			return Seller{}, apperr.Conflict("email already registered")
		}
		return Seller{}, err
	}
	return s, nil
}

// Update changes a user's profile fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, email string, isActive bool) (Seller, error) {
	var s Seller
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, email = $3, is_active = $4, updated_at = now()
		WHERE uuid = $1
		RETURNING id, uuid, name, email, role, is_active, is_in_distribution, distribution_order, created_at, updated_at
	`, id, name, email, isActive)
	if err := scanSeller(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Seller{}, apperr.NotFound("user not found")
		}
		if isUniqueViolation(err) {
			return Seller{}, apperr.Conflict("email already registered")
		}
		return Seller{}, err
	}
	return s, nil
}

// SetDistribution toggles a seller's rotation opt-in and, optionally, its order.
func (r *Repository) SetDistribution(ctx context.Context, id uuid.UUID, inDistribution bool, order *int) (Seller, error) {
	var s Seller
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET is_in_distribution = $2,
		    distribution_order = COALESCE($3, distribution_order),
		    updated_at = now()
		WHERE uuid = $1 AND role = 'seller'
		RETURNING id, uuid, name, email, role, is_active, is_in_distribution, distribution_order, created_at, updated_at
	`, id, inDistribution, order)
	if err := scanSeller(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Seller{}, apperr.NotFound("seller not found")
		}
		return Seller{}, err
	}
	return s, nil
}

// OrderEntry pairs a seller uuid with its new rotation position.
type OrderEntry struct {
	UUID  uuid.UUID
	Order int
}

// ReorderDistribution applies a full rotation reordering in one transaction.
func (r *Repository) ReorderDistribution(ctx context.Context, entries []OrderEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, entry := range entries {
		if _, err = tx.Exec(ctx, `
			UPDATE users SET distribution_order = $2, updated_at = now()
			WHERE uuid = $1 AND role = 'seller'
		`, entry.UUID, entry.Order); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Deactivate disables a user account. The engine tolerates deactivated
// sellers by skipping them on the next roster read.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET is_active = FALSE, is_in_distribution = FALSE, updated_at = now()
		WHERE uuid = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func scanSeller(row pgx.Row, s *Seller) error {
	return row.Scan(
		&s.ID, &s.UUID, &s.Name, &s.Email, &s.Role, &s.IsActive, &s.InDistribution, &s.DistributionOrder,
		&s.CreatedAt, &s.UpdatedAt,
	)
}

func isUniqueViolation(err error) bool {
	// pgx surfaces unique violations as *pgconn.PgError with code 23505;
	// matching on the SQLSTATE keeps the check driver-version stable.
	type sqlState interface{ SQLState() string }
	var state sqlState
	return errors.As(err, &state) && state.SQLState() == "23505"
}
