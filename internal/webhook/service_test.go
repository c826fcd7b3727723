package webhook

import (
	"context"
	"testing"

	"recovery_crm_backend/internal/leads"
	"recovery_crm_backend/platform/logger"
)

type fakeSettings struct {
	settings Settings
	fail     error
}

func (f *fakeSettings) GetSettings(context.Context) (Settings, error) {
	return f.settings, f.fail
}

type fakeIntaker struct {
	requests []leads.IntakeRequest
	result   leads.IntakeResult
	fail     error
}

func (f *fakeIntaker) Intake(_ context.Context, req leads.IntakeRequest) (leads.IntakeResult, error) {
	f.requests = append(f.requests, req)
	if f.fail != nil {
		return leads.IntakeResult{}, f.fail
	}
	return f.result, nil
}

func openGate() *fakeSettings {
	return &fakeSettings{settings: Settings{WebhookEnabled: true}}
}

func buyerPayload(name, email, phone string) hotmartPayload {
	return hotmartPayload{Data: &hotmartData{
		Buyer: &hotmartBuyer{Name: name, Email: email, Phone: phone},
	}}
}

func TestReceiveRejectsMissingEmail(t *testing.T) {
	intake := &fakeIntaker{}
	svc := NewService(openGate(), intake, logger.New("test"))

	_, err := svc.Receive(context.Background(), "", buyerPayload("Carlos", "", "11912345678"))
	if err == nil {
		t.Fatal("payload without email must be rejected")
	}
	if len(intake.requests) != 0 {
		t.Errorf("intake ran %d times for a rejected payload", len(intake.requests))
	}
}

func TestReceiveRejectsWhenDisabled(t *testing.T) {
	intake := &fakeIntaker{}
	svc := NewService(&fakeSettings{settings: Settings{WebhookEnabled: false}}, intake, logger.New("test"))

	_, err := svc.Receive(context.Background(), "", buyerPayload("Maria", "maria@x.com", ""))
	if err == nil {
		t.Fatal("disabled webhook must reject payloads")
	}
	if len(intake.requests) != 0 {
		t.Errorf("intake ran %d times while disabled", len(intake.requests))
	}
}

func TestReceiveTokenGate(t *testing.T) {
	gate := &fakeSettings{settings: Settings{
		WebhookEnabled: true, RequireToken: true, WebhookToken: "secret-token",
	}}
	intake := &fakeIntaker{}
	svc := NewService(gate, intake, logger.New("test"))

	if _, err := svc.Receive(context.Background(), "wrong", buyerPayload("Maria", "maria@x.com", "")); err == nil {
		t.Fatal("wrong bearer token must be rejected")
	}
	if _, err := svc.Receive(context.Background(), "secret-token", buyerPayload("Maria", "maria@x.com", "")); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if len(intake.requests) != 1 {
		t.Fatalf("intake ran %d times, want 1", len(intake.requests))
	}
}

func TestReceiveRunsIntakeWithDistribution(t *testing.T) {
	intake := &fakeIntaker{}
	svc := NewService(openGate(), intake, logger.New("test"))

	_, err := svc.Receive(context.Background(), "", buyerPayload("Maria", "Maria@Example.com", "+5511912345678"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intake.requests) != 1 {
		t.Fatalf("intake ran %d times, want 1", len(intake.requests))
	}
	req := intake.requests[0]
	if req.Source != "hotmart" || !req.Distribute {
		t.Errorf("request = %+v, want hotmart source with distribution on", req)
	}
	if req.Email != "maria@example.com" {
		t.Errorf("email = %q, want lowercased", req.Email)
	}
}
