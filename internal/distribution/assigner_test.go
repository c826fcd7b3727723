package distribution

import (
	"context"
	"errors"
	"testing"

	"recovery_crm_backend/internal/sellers"
	"recovery_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore runs TxFunc against an in-memory roster and cursor, mimicking the
// serialized transaction without a database.
type fakeStore struct {
	roster       []sellers.Seller
	lastAssigned *int64
	transactErr  error
	commits      int
}

func (f *fakeStore) Transact(_ context.Context, fn TxFunc) error {
	if f.transactErr != nil {
		return f.transactErr
	}
	next, err := fn(f.roster, f.lastAssigned)
	if err != nil {
		return err
	}
	if next != nil {
		v := *next
		f.lastAssigned = &v
		f.commits++
	}
	return nil
}

func makeRoster(ids ...int64) []sellers.Seller {
	roster := make([]sellers.Seller, 0, len(ids))
	for i, id := range ids {
		roster = append(roster, sellers.Seller{
			ID:                id,
			UUID:              uuid.New(),
			Name:              string(rune('A' + i)),
			InDistribution:    true,
			IsActive:          true,
			DistributionOrder: i,
		})
	}
	return roster
}

func newTestAssigner(store Store) *Assigner {
	return NewAssigner(store, logger.New("test"))
}

func TestNextCyclesThroughRoster(t *testing.T) {
	store := &fakeStore{roster: makeRoster(1, 2, 3)}
	assigner := newTestAssigner(store)

	want := []int64{1, 2, 3, 1, 2, 3}
	for i, expected := range want {
		seller, err := assigner.Next(context.Background())
		if err != nil {
			t.Fatalf("turn %d: unexpected error: %v", i, err)
		}
		if seller == nil {
			t.Fatalf("turn %d: expected a seller, got nil", i)
		}
		if seller.ID != expected {
			t.Errorf("turn %d: got seller %d, want %d", i, seller.ID, expected)
		}
	}
	if store.commits != len(want) {
		t.Errorf("cursor advanced %d times, want %d", store.commits, len(want))
	}
}

func TestNextStartsAtFirstSellerWhenCursorEmpty(t *testing.T) {
	store := &fakeStore{roster: makeRoster(7, 9, 11)}
	assigner := newTestAssigner(store)

	seller, err := assigner.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seller == nil || seller.ID != 7 {
		t.Fatalf("expected first seller 7, got %+v", seller)
	}
}

func TestNextWrapsFromLastToFirst(t *testing.T) {
	last := int64(3)
	store := &fakeStore{roster: makeRoster(1, 2, 3), lastAssigned: &last}
	assigner := newTestAssigner(store)

	seller, err := assigner.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seller == nil || seller.ID != 1 {
		t.Fatalf("expected wrap to seller 1, got %+v", seller)
	}
}

func TestNextRestartsWhenCursorSellerLeftRotation(t *testing.T) {
	gone := int64(42)
	store := &fakeStore{roster: makeRoster(1, 2, 3), lastAssigned: &gone}
	assigner := newTestAssigner(store)

	seller, err := assigner.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seller == nil || seller.ID != 1 {
		t.Fatalf("expected restart at seller 1, got %+v", seller)
	}
	if store.lastAssigned == nil || *store.lastAssigned != 1 {
		t.Fatalf("cursor should now point at seller 1, got %v", store.lastAssigned)
	}
}

func TestNextEmptyRosterLeavesCursorUntouched(t *testing.T) {
	last := int64(2)
	store := &fakeStore{roster: nil, lastAssigned: &last}
	assigner := newTestAssigner(store)

	seller, err := assigner.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seller != nil {
		t.Fatalf("expected no seller, got %+v", seller)
	}
	if store.commits != 0 {
		t.Errorf("cursor advanced %d times, want 0", store.commits)
	}
	if store.lastAssigned == nil || *store.lastAssigned != 2 {
		t.Errorf("cursor changed to %v, want 2", store.lastAssigned)
	}
}

func TestNextSingleSellerAlwaysChosen(t *testing.T) {
	store := &fakeStore{roster: makeRoster(5)}
	assigner := newTestAssigner(store)

	for i := 0; i < 4; i++ {
		seller, err := assigner.Next(context.Background())
		if err != nil {
			t.Fatalf("turn %d: unexpected error: %v", i, err)
		}
		if seller == nil || seller.ID != 5 {
			t.Fatalf("turn %d: expected seller 5, got %+v", i, seller)
		}
	}
}

func TestNextSurfacesStoreFailure(t *testing.T) {
	wantErr := errors.New("connection reset")
	store := &fakeStore{transactErr: wantErr}
	assigner := newTestAssigner(store)

	seller, err := assigner.Next(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if seller != nil {
		t.Fatalf("expected no seller on failure, got %+v", seller)
	}
}

func TestPickNextDeterministicForSameState(t *testing.T) {
	roster := makeRoster(1, 2, 3)
	last := int64(1)

	first := pickNext(roster, &last)
	second := pickNext(roster, &last)
	if first == nil || second == nil {
		t.Fatal("expected sellers from a non-empty roster")
	}
	if first.ID != second.ID {
		t.Errorf("same state picked different sellers: %d vs %d", first.ID, second.ID)
	}
	if first.ID != 2 {
		t.Errorf("expected seller 2 after seller 1, got %d", first.ID)
	}
}
