package schedules

import (
	"context"
	"net/http"
	"time"

	"recovery_crm_backend/platform/apperr"
	"recovery_crm_backend/platform/httpkit"
	"recovery_crm_backend/platform/logger"
	"recovery_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReminderScheduler enqueues a deferred reminder for a schedule. A nil value
// disables reminders; schedules then surface through listing only.
type ReminderScheduler interface {
	ScheduleFollowUpReminder(ctx context.Context, scheduleUUID string, runAt time.Time) error
}

// Handler exposes follow-up schedule endpoints.
type Handler struct {
	repo      *Repository
	reminders ReminderScheduler
	log       *logger.Logger
	validate  *validator.Validator
}

// NewHandler creates a new schedules handler.
func NewHandler(repo *Repository, reminders ReminderScheduler, log *logger.Logger) *Handler {
	return &Handler{repo: repo, reminders: reminders, log: log, validate: validator.New()}
}

type createScheduleRequest struct {
	LeadUUID    string `json:"lead_uuid" validate:"required,uuid"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=call message meeting"`
	Notes       string `json:"notes" validate:"omitempty,max=2000"`
}

type statusScheduleRequest struct {
	Status string `json:"status" validate:"required,oneof=done cancelled"`
}

type scheduleResponse struct {
	UUID        string  `json:"uuid"`
	LeadUUID    string  `json:"lead_uuid"`
	LeadName    string  `json:"lead_name,omitempty"`
	LeadPhone   *string `json:"lead_phone,omitempty"`
	ScheduledAt string  `json:"scheduled_at"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes"`
}

// Create handles POST /schedules.
func (h *Handler) Create(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}
	leadUUID, err := uuid.Parse(req.LeadUUID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id")
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("scheduled_at must be RFC 3339"))
		return
	}
	if at.Before(time.Now()) {
		httpkit.HandleError(c, apperr.Validation("scheduled_at must be in the future"))
		return
	}

	var sellerID *int64
	if id, ok := httpkit.UserID(c); ok && httpkit.Role(c) != httpkit.RoleAdmin {
		sellerID = &id
	}
	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	schedule, err := h.repo.Create(c.Request.Context(), leadUUID, sellerID, at, req.Type, notes)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	if h.reminders != nil {
		if err := h.reminders.ScheduleFollowUpReminder(c.Request.Context(), schedule.UUID.String(), schedule.ScheduledAt); err != nil {
			// The schedule row exists either way and still shows in
			// listings; only the reminder is lost.
			h.log.Error("enqueue follow-up reminder failed", "schedule", schedule.UUID.String(), "error", err)
		}
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{"schedule": scheduleResponse{
		UUID:        schedule.UUID.String(),
		LeadUUID:    req.LeadUUID,
		ScheduledAt: schedule.ScheduledAt.Format(time.RFC3339),
		Type:        schedule.Type,
		Status:      schedule.Status,
		Notes:       schedule.Notes,
	}})
}

// List handles GET /schedules. Sellers see their own bookings.
func (h *Handler) List(c *gin.Context) {
	var sellerID *int64
	if httpkit.Role(c) != httpkit.RoleAdmin {
		id, ok := httpkit.UserID(c)
		if !ok {
			httpkit.Error(c, http.StatusUnauthorized, "missing authentication context")
			return
		}
		sellerID = &id
	}

	items, err := h.repo.ListUpcoming(c.Request.Context(), sellerID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]scheduleResponse, 0, len(items))
	for _, d := range items {
		out = append(out, scheduleResponse{
			UUID:        d.UUID.String(),
			LeadUUID:    d.LeadUUID.String(),
			LeadName:    d.LeadName,
			LeadPhone:   d.LeadPhone,
			ScheduledAt: d.ScheduledAt.Format(time.RFC3339),
			Type:        d.Type,
			Status:      d.Status,
			Notes:       d.Notes,
		})
	}
	httpkit.OK(c, gin.H{"schedules": out})
}

// SetStatus handles PATCH /schedules/:uuid.
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid schedule id")
		return
	}
	var req statusScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	if httpkit.Role(c) != httpkit.RoleAdmin {
		owner, err := h.repo.OwnerID(c.Request.Context(), id)
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
		userID, ok := httpkit.UserID(c)
		if !ok || owner == nil || *owner != userID {
			httpkit.HandleError(c, apperr.Forbidden("schedule belongs to another seller"))
			return
		}
	}

	if err := h.repo.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"updated": true})
}
