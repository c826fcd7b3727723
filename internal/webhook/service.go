package webhook

import (
	"context"
	"crypto/subtle"

	"recovery_crm_backend/internal/leads"
	"recovery_crm_backend/platform/apperr"
	"recovery_crm_backend/platform/logger"
)

// Intaker is the lead intake entry point the webhook feeds.
type Intaker interface {
	Intake(ctx context.Context, req leads.IntakeRequest) (leads.IntakeResult, error)
}

// SettingsStore reads the webhook gate configuration.
type SettingsStore interface {
	GetSettings(ctx context.Context) (Settings, error)
}

// Service gates incoming notifications and turns them into leads.
type Service struct {
	settings SettingsStore
	intake   Intaker
	log      *logger.Logger
}

// NewService creates a new webhook service.
func NewService(settings SettingsStore, intake Intaker, log *logger.Logger) *Service {
	return &Service{settings: settings, intake: intake, log: log}
}

// Receive validates the gate (enabled flag, optional bearer token) and runs
// intake with distribution on. Duplicate purchases resolve to the existing
// lead without touching the rotation.
func (s *Service) Receive(ctx context.Context, bearerToken string, payload hotmartPayload) (leads.IntakeResult, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return leads.IntakeResult{}, err
	}
	if !settings.WebhookEnabled {
		return leads.IntakeResult{}, apperr.Forbidden("webhook is disabled")
	}
	if settings.RequireToken {
		if subtle.ConstantTimeCompare([]byte(bearerToken), []byte(settings.WebhookToken)) != 1 {
			return leads.IntakeResult{}, apperr.Unauthorized("invalid webhook token")
		}
	}

	// The checkout platform always sends the buyer email; a payload without
	// one is malformed. Phone-only leads come in through imports instead.
	data := extract(payload)
	if data.Email == "" {
		return leads.IntakeResult{}, apperr.Validation("email is required")
	}

	result, err := s.intake.Intake(ctx, leads.IntakeRequest{
		Name:          data.Name,
		Email:         data.Email,
		Phone:         data.Phone,
		ProductName:   data.ProductName,
		TransactionID: data.TransactionID,
		Source:        "hotmart",
		Distribute:    true,
	})
	if err != nil {
		s.log.Error("webhook intake failed", "error", err)
		return leads.IntakeResult{}, err
	}
	return result, nil
}
