package webhook

import (
	"encoding/json"
	"testing"
)

func decodePayload(t *testing.T, raw string) hotmartPayload {
	t.Helper()
	var p hotmartPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return p
}

func TestExtractNestedPayload(t *testing.T) {
	p := decodePayload(t, `{
		"event": "PURCHASE_APPROVED",
		"data": {
			"buyer": {"name": "Maria Silva", "email": "Maria@Example.com", "checkout_phone": "+5511912345678"},
			"product": {"name": "Curso Completo"},
			"purchase": {"transaction": "HP12345"}
		}
	}`)

	got := extract(p)
	if got.Name != "Maria Silva" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Email != "maria@example.com" {
		t.Errorf("email = %q, want lowercased", got.Email)
	}
	if got.Phone != "+5511912345678" {
		t.Errorf("phone = %q", got.Phone)
	}
	if got.ProductName != "Curso Completo" {
		t.Errorf("product = %q", got.ProductName)
	}
	if got.TransactionID != "HP12345" {
		t.Errorf("transaction = %q", got.TransactionID)
	}
}

func TestExtractFlatLegacyPayload(t *testing.T) {
	p := decodePayload(t, `{
		"first_name": "Joao",
		"email": "joao@email.com",
		"phone_number": "11999998888",
		"product_name": "Mentoria",
		"transaction": "TX9"
	}`)

	got := extract(p)
	if got.Name != "Joao" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Email != "joao@email.com" {
		t.Errorf("email = %q", got.Email)
	}
	if got.Phone != "11999998888" {
		t.Errorf("phone = %q", got.Phone)
	}
	if got.ProductName != "Mentoria" {
		t.Errorf("product = %q", got.ProductName)
	}
	if got.TransactionID != "TX9" {
		t.Errorf("transaction = %q", got.TransactionID)
	}
}

func TestExtractPhoneFallbackOrder(t *testing.T) {
	p := decodePayload(t, `{
		"data": {"buyer": {"name": "X", "phone": "222", "checkout_phone": "333"}}
	}`)
	if got := extract(p); got.Phone != "222" {
		t.Errorf("phone = %q, want phone before checkout_phone", got.Phone)
	}

	p = decodePayload(t, `{
		"data": {"buyer": {"name": "X", "phone_number": "111", "phone": "222"}}
	}`)
	if got := extract(p); got.Phone != "111" {
		t.Errorf("phone = %q, want phone_number first", got.Phone)
	}
}

func TestExtractEmptyPayload(t *testing.T) {
	got := extract(decodePayload(t, `{}`))
	if got.Name != "" || got.Email != "" || got.Phone != "" {
		t.Errorf("expected empty extraction, got %+v", got)
	}
}
