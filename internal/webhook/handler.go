package webhook

import (
	"net/http"
	"strings"

	"recovery_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the public webhook endpoint and admin settings.
type Handler struct {
	service *Service
	repo    *Repository
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, repo *Repository) *Handler {
	return &Handler{service: service, repo: repo}
}

// ReceiveHotmart handles POST /webhook/hotmart. Duplicate notifications get a
// 200 with the existing lead so the platform stops retrying.
func (h *Handler) ReceiveHotmart(c *gin.Context) {
	var payload hotmartPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	result, err := h.service.Receive(c.Request.Context(), token, payload)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	if result.Existing {
		httpkit.OK(c, gin.H{"message": "lead already exists", "lead_uuid": result.Lead.UUID.String()})
		return
	}
	httpkit.JSON(c, http.StatusCreated, gin.H{"message": "lead created", "lead_uuid": result.Lead.UUID.String()})
}

type updateSettingsRequest struct {
	WebhookEnabled *bool `json:"webhook_enabled"`
	RequireToken   *bool `json:"require_token"`
	RotateToken    bool  `json:"rotate_token"`
}

// GetSettings handles GET /settings/webhook (admin).
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.repo.GetSettings(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"settings": settings})
}

// UpdateSettings handles PATCH /settings/webhook (admin).
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var token *string
	if req.RotateToken {
		fresh := newToken()
		token = &fresh
	}
	settings, err := h.repo.UpdateSettings(c.Request.Context(), req.WebhookEnabled, req.RequireToken, token)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"settings": settings})
}
