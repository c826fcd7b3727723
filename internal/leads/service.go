package leads

import (
	"context"
	"strings"

	"recovery_crm_backend/internal/events"
	"recovery_crm_backend/internal/sellers"
	"recovery_crm_backend/platform/logger"
	"recovery_crm_backend/platform/phone"
)

// LeadStore is the persistence surface the intake flow needs.
type LeadStore interface {
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	FindByPhoneSuffix(ctx context.Context, suffix string) (*Lead, error)
	Create(ctx context.Context, n NewLead) (Lead, error)
	UpdateContact(ctx context.Context, id int64, name string, email, phone, productName *string) (Lead, error)
	DefaultStatusID(ctx context.Context) (*int64, error)
}

// SellerPicker consumes one rotation turn. A nil seller with nil error means
// nobody is eligible.
type SellerPicker interface {
	Next(ctx context.Context) (*sellers.Seller, error)
}

// Service coordinates lead intake: normalization, deduplication, assignment.
type Service struct {
	store    LeadStore
	assigner SellerPicker
	bus      events.Bus
	log      *logger.Logger
}

// NewService creates a new leads service.
func NewService(store LeadStore, assigner SellerPicker, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, assigner: assigner, bus: bus, log: log}
}

// IntakeRequest is the normalized-shape input every entry channel (webhook,
// import, manual create) converges to before deduplication.
type IntakeRequest struct {
	Name          string
	Email         string
	Phone         string
	ProductName   string
	TransactionID string
	Source        string
	CampaignID    *int64
	ImportBatchID *int64
	StatusID      *int64
	InGroup       bool

	// Distribute runs the round-robin assigner for new leads. When false,
	// FixedSellerID (possibly nil) is used as-is.
	Distribute    bool
	FixedSellerID *int64

	// UpdateExisting refreshes contact fields when a duplicate is found.
	UpdateExisting bool
}

// IntakeResult reports what intake did with the payload.
type IntakeResult struct {
	Lead     Lead
	Existing bool
}

// Intake deduplicates the payload against stored leads and creates a new lead
// when none matches, consuming one rotation turn if distribution is on. A
// duplicate never re-enters the rotation and keeps its seller.
func (s *Service) Intake(ctx context.Context, req IntakeRequest) (IntakeResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	normPhone := phone.Digits(phone.NormalizeE164(req.Phone))
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Desconhecido"
	}

	existing, err := s.findDuplicate(ctx, email, normPhone)
	if err != nil {
		return IntakeResult{}, err
	}
	if existing != nil {
		if req.UpdateExisting {
			updated, err := s.store.UpdateContact(ctx, existing.ID, name,
				optional(email), optional(normPhone), optional(strings.TrimSpace(req.ProductName)))
			if err != nil {
				return IntakeResult{}, err
			}
			return IntakeResult{Lead: updated, Existing: true}, nil
		}
		return IntakeResult{Lead: *existing, Existing: true}, nil
	}

	sellerID := req.FixedSellerID
	var sellerName string
	if req.Distribute {
		seller, err := s.assigner.Next(ctx)
		if err != nil {
			return IntakeResult{}, err
		}
		if seller != nil {
			sellerID = &seller.ID
			sellerName = seller.Name
		}
	}

	statusID := req.StatusID
	if statusID == nil {
		statusID, err = s.store.DefaultStatusID(ctx)
		if err != nil {
			return IntakeResult{}, err
		}
	}

	lead, err := s.store.Create(ctx, NewLead{
		Name:          name,
		Email:         optional(email),
		Phone:         optional(normPhone),
		ProductName:   optional(strings.TrimSpace(req.ProductName)),
		TransactionID: optional(strings.TrimSpace(req.TransactionID)),
		Source:        req.Source,
		SellerID:      sellerID,
		StatusID:      statusID,
		CampaignID:    req.CampaignID,
		ImportBatchID: req.ImportBatchID,
		InGroup:       req.InGroup,
	})
	if err != nil {
		return IntakeResult{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			LeadUUID:  lead.UUID,
			Source:    lead.Source,
			SellerID:  sellerID,
		})
		if sellerID != nil {
			s.bus.Publish(ctx, events.LeadAssigned{
				BaseEvent:  events.NewBaseEvent(),
				LeadID:     lead.ID,
				LeadUUID:   lead.UUID,
				SellerID:   *sellerID,
				SellerName: sellerName,
			})
		}
	}
	if sellerID != nil && sellerName != "" {
		s.log.LeadAssigned(lead.UUID.String(), *sellerID, sellerName)
	}
	return IntakeResult{Lead: lead, Existing: false}, nil
}

// findDuplicate applies the dedup policy: exact email match first, then the
// trailing-digits phone match when the number carries enough digits.
func (s *Service) findDuplicate(ctx context.Context, email, normPhone string) (*Lead, error) {
	if isDedupEmail(email) {
		found, err := s.store.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}
	if len(normPhone) >= 10 {
		if suffix := phone.Suffix(normPhone); suffix != "" {
			found, err := s.store.FindByPhoneSuffix(ctx, suffix)
			if err != nil {
				return nil, err
			}
			if found != nil {
				return found, nil
			}
		}
	}
	return nil, nil
}

// isDedupEmail filters out placeholder values some payloads send in the
// email field.
func isDedupEmail(email string) bool {
	return len(email) > 5 && strings.Contains(email, "@")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
