package distribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"recovery_crm_backend/internal/sellers"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

const (
	cursorQuery  = `SELECT last_seller_id FROM distribution_control WHERE id = 1 FOR UPDATE`
	rosterQuery  = `FROM users`
	cursorUpsert = `INSERT INTO distribution_control`
)

func rosterColumns() []string {
	return []string{"id", "uuid", "name", "email", "role", "is_active", "is_in_distribution", "distribution_order", "created_at", "updated_at"}
}

func rosterRow(rows *pgxmock.Rows, id int64, name string, order int) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(id, uuid.New(), name, name+"@example.com", "seller", true, true, order, now, now)
}

func TestTransactLocksCursorAndAdvances(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	last := int64(1)
	mock.ExpectBegin()
	mock.ExpectQuery(cursorQuery).
		WillReturnRows(pgxmock.NewRows([]string{"last_seller_id"}).AddRow(&last))
	mock.ExpectQuery(rosterQuery).
		WillReturnRows(rosterRow(rosterRow(pgxmock.NewRows(rosterColumns()), 1, "ana", 0), 2, "bruno", 1))
	mock.ExpectExec(cursorUpsert).
		WithArgs(int64(2), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	store := NewPGStore(mock)
	err = store.Transact(context.Background(), func(roster []sellers.Seller, lastAssigned *int64) (*int64, error) {
		if lastAssigned == nil || *lastAssigned != 1 {
			t.Errorf("expected cursor at 1, got %v", lastAssigned)
		}
		if len(roster) != 2 {
			t.Errorf("expected 2 sellers, got %d", len(roster))
		}
		next := int64(2)
		return &next, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTransactSkipsUpsertWhenCursorUnchanged(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(cursorQuery).
		WillReturnRows(pgxmock.NewRows([]string{"last_seller_id"}).AddRow((*int64)(nil)))
	mock.ExpectQuery(rosterQuery).
		WillReturnRows(pgxmock.NewRows(rosterColumns()))
	mock.ExpectCommit()

	store := NewPGStore(mock)
	err = store.Transact(context.Background(), func(roster []sellers.Seller, lastAssigned *int64) (*int64, error) {
		if lastAssigned != nil {
			t.Errorf("expected empty cursor, got %v", *lastAssigned)
		}
		if len(roster) != 0 {
			t.Errorf("expected empty roster, got %d sellers", len(roster))
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTransactRollsBackOnCallbackError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	wantErr := errors.New("lead insert failed")
	mock.ExpectBegin()
	mock.ExpectQuery(cursorQuery).
		WillReturnRows(pgxmock.NewRows([]string{"last_seller_id"}).AddRow((*int64)(nil)))
	mock.ExpectQuery(rosterQuery).
		WillReturnRows(rosterRow(pgxmock.NewRows(rosterColumns()), 1, "ana", 0))
	mock.ExpectRollback()

	store := NewPGStore(mock)
	err = store.Transact(context.Background(), func([]sellers.Seller, *int64) (*int64, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTransactSurfacesLockFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(cursorQuery).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	store := NewPGStore(mock)
	err = store.Transact(context.Background(), func([]sellers.Seller, *int64) (*int64, error) {
		t.Fatal("callback should not run when the cursor lock fails")
		return nil, nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
