package leads

import (
	"context"
	"errors"
	"strings"
	"testing"

	"recovery_crm_backend/internal/sellers"
	"recovery_crm_backend/platform/logger"
	"recovery_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// memStore keeps created leads in memory and implements the dedup lookups the
// same way the SQL does.
type memStore struct {
	leads   []Lead
	nextID  int64
	fail    error
	defStat *int64
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*Lead, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	for i := range m.leads {
		if m.leads[i].Email != nil && strings.EqualFold(*m.leads[i].Email, email) {
			return &m.leads[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByPhoneSuffix(_ context.Context, suffix string) (*Lead, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	for i := range m.leads {
		p := m.leads[i].Phone
		if p != nil && strings.HasSuffix(*p, suffix) {
			return &m.leads[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) Create(_ context.Context, n NewLead) (Lead, error) {
	if m.fail != nil {
		return Lead{}, m.fail
	}
	m.nextID++
	lead := Lead{
		ID:       m.nextID,
		UUID:     uuid.New(),
		Name:     n.Name,
		Email:    n.Email,
		Phone:    n.Phone,
		Source:   n.Source,
		SellerID: n.SellerID,
		StatusID: n.StatusID,
		IsActive: true,
	}
	m.leads = append(m.leads, lead)
	return lead, nil
}

func (m *memStore) UpdateContact(_ context.Context, id int64, name string, email, phoneNum, productName *string) (Lead, error) {
	for i := range m.leads {
		if m.leads[i].ID == id {
			m.leads[i].Name = name
			if email != nil {
				m.leads[i].Email = email
			}
			if phoneNum != nil {
				m.leads[i].Phone = phoneNum
			}
			if productName != nil {
				m.leads[i].ProductName = productName
			}
			return m.leads[i], nil
		}
	}
	return Lead{}, errors.New("lead not found")
}

func (m *memStore) DefaultStatusID(_ context.Context) (*int64, error) {
	return m.defStat, nil
}

// fakePicker cycles a fixed roster, counting turns consumed.
type fakePicker struct {
	roster []sellers.Seller
	cursor int
	calls  int
	fail   error
}

func (f *fakePicker) Next(context.Context) (*sellers.Seller, error) {
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	if len(f.roster) == 0 {
		return nil, nil
	}
	s := f.roster[f.cursor%len(f.roster)]
	f.cursor++
	return &s, nil
}

func newTestService(store *memStore, picker *fakePicker) *Service {
	return NewService(store, picker, nil, logger.New("test"))
}

func seller(id int64, name string) sellers.Seller {
	return sellers.Seller{ID: id, UUID: uuid.New(), Name: name, IsActive: true, InDistribution: true}
}

func TestIntakeAssignsNewLeadRoundRobin(t *testing.T) {
	store := &memStore{}
	picker := &fakePicker{roster: []sellers.Seller{seller(1, "ana"), seller(2, "bruno")}}
	svc := newTestService(store, picker)

	first, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "Maria", Email: "maria@example.com", Source: "webhook", Distribute: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Existing {
		t.Fatal("first intake should create a lead")
	}
	if first.Lead.SellerID == nil || *first.Lead.SellerID != 1 {
		t.Fatalf("expected seller 1, got %v", first.Lead.SellerID)
	}

	second, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "Joana", Email: "joana@example.com", Source: "webhook", Distribute: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Lead.SellerID == nil || *second.Lead.SellerID != 2 {
		t.Fatalf("expected seller 2, got %v", second.Lead.SellerID)
	}
}

func TestIntakeDuplicateEmailCreatesOneLead(t *testing.T) {
	store := &memStore{}
	picker := &fakePicker{roster: []sellers.Seller{seller(1, "ana"), seller(2, "bruno")}}
	svc := newTestService(store, picker)

	req := IntakeRequest{Name: "Maria", Email: "X@Y.com", Source: "webhook", Distribute: true}

	first, err := svc.Intake(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Intake(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !second.Existing {
		t.Fatal("second intake should report an existing lead")
	}
	if second.Lead.ID != first.Lead.ID {
		t.Errorf("expected same lead, got %d and %d", first.Lead.ID, second.Lead.ID)
	}
	if len(store.leads) != 1 {
		t.Errorf("expected 1 stored lead, got %d", len(store.leads))
	}
	if picker.calls != 1 {
		t.Errorf("rotation consumed %d turns, want 1", picker.calls)
	}
}

func TestIntakeDuplicateByPhoneSuffix(t *testing.T) {
	store := &memStore{}
	picker := &fakePicker{roster: []sellers.Seller{seller(1, "ana")}}
	svc := newTestService(store, picker)

	_, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "Carlos", Phone: "+55 (11) 91234-5678", Source: "webhook", Distribute: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same subscriber reported without country code and different formatting.
	result, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "Carlos A.", Phone: "11912345678", Source: "import", Distribute: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Existing {
		t.Fatal("expected phone suffix match to dedupe")
	}
	if len(store.leads) != 1 {
		t.Errorf("expected 1 stored lead, got %d", len(store.leads))
	}
	if picker.calls != 1 {
		t.Errorf("rotation consumed %d turns, want 1", picker.calls)
	}
}

func TestIntakeDuplicateNeverReassigns(t *testing.T) {
	store := &memStore{}
	picker := &fakePicker{roster: []sellers.Seller{seller(1, "ana"), seller(2, "bruno")}}
	svc := newTestService(store, picker)

	first, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "Maria", Email: "maria@example.com", Source: "webhook", Distribute: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := int64(99)
	result, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "Maria", Email: "maria@example.com", Source: "import",
		Distribute: false, FixedSellerID: &other, UpdateExisting: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Existing {
		t.Fatal("expected duplicate")
	}
	if result.Lead.SellerID == nil || *result.Lead.SellerID != *first.Lead.SellerID {
		t.Errorf("duplicate intake changed seller: got %v, want %v", result.Lead.SellerID, *first.Lead.SellerID)
	}
}

func TestIntakeEmptyRosterCreatesUnassigned(t *testing.T) {
	store := &memStore{}
	picker := &fakePicker{}
	svc := newTestService(store, picker)

	result, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "Novo", Email: "new@lead.com", Source: "webhook", Distribute: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Existing {
		t.Fatal("expected a new lead")
	}
	if result.Lead.SellerID != nil {
		t.Errorf("expected unassigned lead, got seller %d", *result.Lead.SellerID)
	}
	if len(store.leads) != 1 {
		t.Errorf("expected 1 stored lead, got %d", len(store.leads))
	}
}

func TestIntakeSurfacesAssignerFailure(t *testing.T) {
	store := &memStore{}
	picker := &fakePicker{fail: errors.New("cursor write timeout")}
	svc := newTestService(store, picker)

	_, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "Maria", Email: "maria@example.com", Source: "webhook", Distribute: true,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.leads) != 0 {
		t.Errorf("no lead should be created on a failed assignment, got %d", len(store.leads))
	}
}

func TestIntakeSkipsDedupOnPlaceholderEmail(t *testing.T) {
	store := &memStore{}
	picker := &fakePicker{roster: []sellers.Seller{seller(1, "ana")}}
	svc := newTestService(store, picker)

	// Short placeholder values must not collide with each other.
	for _, email := range []string{"a@b", "x@y"} {
		result, err := svc.Intake(context.Background(), IntakeRequest{
			Name: "Lead " + email, Email: email, Source: "webhook", Distribute: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Existing {
			t.Errorf("placeholder email %q matched as duplicate", email)
		}
	}
	if len(store.leads) != 2 {
		t.Errorf("expected 2 stored leads, got %d", len(store.leads))
	}
}

func TestIntakeShortPhoneNeverDedupes(t *testing.T) {
	store := &memStore{}
	picker := &fakePicker{roster: []sellers.Seller{seller(1, "ana")}}
	svc := newTestService(store, picker)

	if _, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "A", Phone: "912345678", Source: "webhook", Distribute: true,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "B", Phone: "912345678", Source: "webhook", Distribute: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Existing {
		t.Error("nine-digit numbers carry too little identity to dedupe on")
	}
}

func TestIntakeNormalizesContactFields(t *testing.T) {
	store := &memStore{}
	picker := &fakePicker{roster: []sellers.Seller{seller(1, "ana")}}
	svc := newTestService(store, picker)

	result, err := svc.Intake(context.Background(), IntakeRequest{
		Name: "  Maria  ", Email: "  MARIA@Example.COM ", Phone: "+55 (11) 91234-5678",
		Source: "manual", Distribute: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Lead.Name != "Maria" {
		t.Errorf("name not trimmed: %q", result.Lead.Name)
	}
	if result.Lead.Email == nil || *result.Lead.Email != "maria@example.com" {
		t.Errorf("email not lowercased: %v", result.Lead.Email)
	}
	if result.Lead.Phone == nil || phone.Digits(*result.Lead.Phone) != *result.Lead.Phone {
		t.Errorf("phone not stored digits-only: %v", result.Lead.Phone)
	}
}
