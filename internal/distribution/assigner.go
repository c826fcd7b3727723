package distribution

import (
	"context"

	"recovery_crm_backend/internal/sellers"
	"recovery_crm_backend/platform/logger"
)

// Assigner picks the next seller in the rotation and advances the cursor.
type Assigner struct {
	store Store
	log   *logger.Logger
}

// NewAssigner creates a new round-robin assigner.
func NewAssigner(store Store, log *logger.Logger) *Assigner {
	return &Assigner{store: store, log: log}
}

// Next consumes one rotation turn and returns the chosen seller. A nil seller
// with a nil error means the roster is empty; the cursor is left untouched in
// that case so rotation resumes where it stopped once sellers return.
func (a *Assigner) Next(ctx context.Context) (*sellers.Seller, error) {
	var chosen *sellers.Seller

	err := a.store.Transact(ctx, func(roster []sellers.Seller, lastAssigned *int64) (*int64, error) {
		next := pickNext(roster, lastAssigned)
		if next == nil {
			return nil, nil
		}
		chosen = next
		return &next.ID, nil
	})
	if err != nil {
		return nil, err
	}

	if chosen == nil {
		a.log.Warn("no eligible sellers in distribution roster")
	}
	return chosen, nil
}

// pickNext selects the seller after lastAssigned in roster order, wrapping at
// the end. When lastAssigned is nil or no longer in the roster, rotation
// restarts at the first seller.
func pickNext(roster []sellers.Seller, lastAssigned *int64) *sellers.Seller {
	if len(roster) == 0 {
		return nil
	}
	if lastAssigned == nil {
		return &roster[0]
	}
	for i := range roster {
		if roster[i].ID == *lastAssigned {
			return &roster[(i+1)%len(roster)]
		}
	}
	// Cursor points at a seller that left the rotation.
	return &roster[0]
}
