package pipeline

import (
	"net/http"

	"recovery_crm_backend/platform/apperr"
	"recovery_crm_backend/platform/httpkit"
	"recovery_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes status and campaign endpoints.
type Handler struct {
	repo     *Repository
	validate *validator.Validator
}

// NewHandler creates a new pipeline handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo, validate: validator.New()}
}

type statusRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=60"`
	Color        string `json:"color" validate:"omitempty,hexcolor"`
	IsConversion bool   `json:"is_conversion"`
}

type reorderStatusesRequest struct {
	Entries []struct {
		UUID  string `json:"uuid" validate:"required,uuid"`
		Order int    `json:"order" validate:"min=0"`
	} `json:"entries" validate:"required,min=1,dive"`
}

type campaignRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type statusResponse struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	DisplayOrder int    `json:"display_order"`
	IsConversion bool   `json:"is_conversion"`
	IsSystem     bool   `json:"is_system"`
	LeadCount    int64  `json:"lead_count"`
}

func toStatusResponse(s Status) statusResponse {
	return statusResponse{
		UUID:         s.UUID.String(),
		Name:         s.Name,
		Color:        s.Color,
		DisplayOrder: s.DisplayOrder,
		IsConversion: s.IsConversion,
		IsSystem:     s.IsSystem,
		LeadCount:    s.LeadCount,
	}
}

// ListStatuses handles GET /statuses, readable by every authenticated user.
func (h *Handler) ListStatuses(c *gin.Context) {
	statuses, err := h.repo.ListStatuses(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]statusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, toStatusResponse(s))
	}
	httpkit.OK(c, gin.H{"statuses": out})
}

// CreateStatus handles POST /statuses (admin).
func (h *Handler) CreateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Color == "" {
		req.Color = "#6b7280"
	}

	status, err := h.repo.CreateStatus(c.Request.Context(), req.Name, req.Color, req.IsConversion)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, gin.H{"status": toStatusResponse(status)})
}

// UpdateStatus handles PUT /statuses/:uuid (admin).
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid status id")
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Color == "" {
		req.Color = "#6b7280"
	}

	status, err := h.repo.UpdateStatus(c.Request.Context(), id, req.Name, req.Color, req.IsConversion)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"status": toStatusResponse(status)})
}

// DeleteStatus handles DELETE /statuses/:uuid (admin).
func (h *Handler) DeleteStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid status id")
		return
	}
	if err := h.repo.DeleteStatus(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

// ReorderStatuses handles PUT /statuses/order (admin).
func (h *Handler) ReorderStatuses(c *gin.Context) {
	var req reorderStatusesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	entries := make([]StatusOrderEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		id, err := uuid.Parse(e.UUID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid status id in entries")
			return
		}
		entries = append(entries, StatusOrderEntry{UUID: id, Order: e.Order})
	}
	if err := h.repo.ReorderStatuses(c.Request.Context(), entries); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"updated": len(entries)})
}

// ListCampaigns handles GET /campaigns.
func (h *Handler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.repo.ListCampaigns(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	type campaignResponse struct {
		UUID      string `json:"uuid"`
		Name      string `json:"name"`
		IsActive  bool   `json:"is_active"`
		LeadCount int64  `json:"lead_count"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]campaignResponse, 0, len(campaigns))
	for _, cp := range campaigns {
		out = append(out, campaignResponse{
			UUID:      cp.UUID.String(),
			Name:      cp.Name,
			IsActive:  cp.IsActive,
			LeadCount: cp.LeadCount,
			CreatedAt: cp.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	httpkit.OK(c, gin.H{"campaigns": out})
}

// CreateCampaign handles POST /campaigns (admin).
func (h *Handler) CreateCampaign(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	campaign, err := h.repo.CreateCampaign(c.Request.Context(), req.Name)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, gin.H{"campaign": gin.H{
		"uuid": campaign.UUID.String(), "name": campaign.Name, "is_active": campaign.IsActive,
	}})
}

// RenameCampaign handles PATCH /campaigns/:uuid (admin).
func (h *Handler) RenameCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign id")
		return
	}
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	campaign, err := h.repo.RenameCampaign(c.Request.Context(), id, req.Name)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"campaign": gin.H{
		"uuid": campaign.UUID.String(), "name": campaign.Name, "is_active": campaign.IsActive,
	}})
}

// ActivateCampaign handles POST /campaigns/:uuid/activate (admin).
func (h *Handler) ActivateCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign id")
		return
	}
	if err := h.repo.ActivateCampaign(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"activated": true})
}

// DeleteCampaign handles DELETE /campaigns/:uuid (admin).
func (h *Handler) DeleteCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign id")
		return
	}
	if err := h.repo.DeleteCampaign(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}
