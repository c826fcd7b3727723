// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"recovery_crm_backend/platform/events"
	"recovery_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a genuinely new lead enters the system.
type LeadCreated struct {
	BaseEvent
	LeadID   int64     `json:"leadId"`
	LeadUUID uuid.UUID `json:"leadUuid"`
	Source   string    `json:"source"`
	SellerID *int64    `json:"sellerId,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadAssigned is published when the distribution engine assigns a seller.
type LeadAssigned struct {
	BaseEvent
	LeadID     int64     `json:"leadId"`
	LeadUUID   uuid.UUID `json:"leadUuid"`
	SellerID   int64     `json:"sellerId"`
	SellerName string    `json:"sellerName"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// =============================================================================
// Import Domain Events
// =============================================================================

// ImportCompleted is published when a bulk import batch has been processed.
type ImportCompleted struct {
	BaseEvent
	BatchID   int64     `json:"batchId"`
	BatchUUID uuid.UUID `json:"batchUuid"`
	Imported  int       `json:"imported"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
}

func (e ImportCompleted) EventName() string { return "imports.completed" }

// =============================================================================
// Schedule Domain Events
// =============================================================================

// ScheduleDue is published by the worker when a follow-up schedule comes due.
type ScheduleDue struct {
	BaseEvent
	ScheduleID   int64     `json:"scheduleId"`
	ScheduleUUID uuid.UUID `json:"scheduleUuid"`
	LeadID       int64     `json:"leadId"`
	LeadUUID     uuid.UUID `json:"leadUuid"`
	SellerID     *int64    `json:"sellerId,omitempty"`
	ScheduledAt  time.Time `json:"scheduledAt"`
}

func (e ScheduleDue) EventName() string { return "schedules.due" }
