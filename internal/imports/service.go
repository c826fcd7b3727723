package imports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recovery_crm_backend/internal/events"
	"recovery_crm_backend/internal/leads"
	"recovery_crm_backend/platform/logger"
)

// Intaker is the lead intake entry point rows are fed through, so imported
// leads obey the same dedup and assignment rules as webhook leads.
type Intaker interface {
	Intake(ctx context.Context, req leads.IntakeRequest) (leads.IntakeResult, error)
}

// Service runs import batches.
type Service struct {
	repo   *Repository
	intake Intaker
	bus    events.Bus
	log    *logger.Logger
}

// NewService creates a new imports service.
func NewService(repo *Repository, intake Intaker, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, intake: intake, bus: bus, log: log}
}

// Request configures one import run.
type Request struct {
	BatchName      string
	Rows           []Row
	CampaignID     *int64
	StatusID       *int64
	SellerID       *int64
	Distribute     bool
	InGroup        bool
	UpdateExisting bool
	CreatedBy      *int64
}

// Result summarizes an import run.
type Result struct {
	BatchUUID string `json:"batch_uuid"`
	Total     int    `json:"total"`
	Imported  int    `json:"imported"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
}

// Run processes the rows one by one through intake. Distribution, when on,
// consumes one rotation turn per genuinely new lead; a fixed seller bypasses
// the rotation entirely.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	name := strings.TrimSpace(req.BatchName)
	if name == "" {
		name = fmt.Sprintf("Import %s", time.Now().Format("2006-01-02 15:04"))
	}

	sellerID := req.SellerID
	if req.Distribute {
		sellerID = nil
	}
	batch, err := s.repo.CreateBatch(ctx, name, "manual", req.CampaignID, sellerID, req.CreatedBy, len(req.Rows))
	if err != nil {
		return Result{}, fmt.Errorf("create import batch: %w", err)
	}

	statusByName, err := s.repo.StatusIDsByName(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{BatchUUID: batch.UUID.String(), Total: len(req.Rows)}
	for _, row := range req.Rows {
		statusID := req.StatusID
		if row.StatusName != "" {
			if id, ok := statusByName[strings.ToLower(strings.TrimSpace(row.StatusName))]; ok {
				statusID = &id
			}
		}

		intakeResult, err := s.intake.Intake(ctx, leads.IntakeRequest{
			Name:           row.Name,
			Email:          row.Email,
			Phone:          row.Phone,
			ProductName:    row.Product,
			Source:         "import",
			CampaignID:     req.CampaignID,
			ImportBatchID:  &batch.ID,
			StatusID:       statusID,
			InGroup:        req.InGroup,
			Distribute:     req.Distribute,
			FixedSellerID:  sellerID,
			UpdateExisting: req.UpdateExisting,
		})
		if err != nil {
			s.log.Error("import row failed", "batch", batch.UUID.String(), "error", err)
			result.Skipped++
			continue
		}
		if intakeResult.Existing {
			if req.UpdateExisting {
				result.Updated++
			} else {
				result.Skipped++
			}
		} else {
			result.Imported++
		}
	}

	if err := s.repo.FinishBatch(ctx, batch.ID, result.Imported, result.Updated, result.Skipped); err != nil {
		s.log.Error("finish import batch failed", "batch", batch.UUID.String(), "error", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.ImportCompleted{
			BaseEvent: events.NewBaseEvent(),
			BatchID:   batch.ID,
			BatchUUID: batch.UUID,
			Imported:  result.Imported,
			Updated:   result.Updated,
			Skipped:   result.Skipped,
		})
	}
	return result, nil
}
