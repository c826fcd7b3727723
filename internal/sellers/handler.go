package sellers

import (
	"net/http"

	"recovery_crm_backend/platform/apperr"
	"recovery_crm_backend/platform/httpkit"
	"recovery_crm_backend/platform/logger"
	"recovery_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Handler exposes user and seller management endpoints.
type Handler struct {
	repo     *Repository
	log      *logger.Logger
	validate *validator.Validator
}

// NewHandler creates a new sellers handler.
func NewHandler(repo *Repository, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: log, validate: validator.New()}
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin seller"`
}

type updateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	IsActive *bool  `json:"is_active" validate:"required"`
}

type setDistributionRequest struct {
	InDistribution *bool `json:"in_distribution" validate:"required"`
	Order          *int  `json:"order" validate:"omitempty,min=0"`
}

type reorderRequest struct {
	Entries []struct {
		UUID  string `json:"uuid" validate:"required,uuid"`
		Order int    `json:"order" validate:"min=0"`
	} `json:"entries" validate:"required,min=1,dive"`
}

type userResponse struct {
	UUID              string `json:"uuid"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	IsActive          bool   `json:"is_active"`
	InDistribution    bool   `json:"in_distribution"`
	DistributionOrder int    `json:"distribution_order"`
	CreatedAt         string `json:"created_at"`
}

func toUserResponse(s Seller) userResponse {
	return userResponse{
		UUID:              s.UUID.String(),
		Name:              s.Name,
		Email:             s.Email,
		Role:              s.Role,
		IsActive:          s.IsActive,
		InDistribution:    s.InDistribution,
		DistributionOrder: s.DistributionOrder,
		CreatedAt:         s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// List handles GET /users.
func (h *Handler) List(c *gin.Context) {
	users, err := h.repo.ListUsers(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpkit.OK(c, gin.H{"users": out})
}

// ListSellers handles GET /sellers, the roster view with lead counters.
func (h *Handler) ListSellers(c *gin.Context) {
	sellers, err := h.repo.ListSellersWithStats(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	type sellerRow struct {
		userResponse
		TotalLeads  int64 `json:"total_leads"`
		Conversions int64 `json:"conversions"`
	}
	out := make([]sellerRow, 0, len(sellers))
	for _, s := range sellers {
		out = append(out, sellerRow{userResponse: toUserResponse(s.Seller), TotalLeads: s.TotalLeads, Conversions: s.Conversions})
	}
	httpkit.OK(c, gin.H{"sellers": out})
}

// Create handles POST /users.
func (h *Handler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "could not hash password", err))
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Name, req.Email, string(hash), req.Role)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

// Update handles PUT /users/:uuid.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	user, err := h.repo.Update(c.Request.Context(), id, req.Name, req.Email, *req.IsActive)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"user": toUserResponse(user)})
}

// SetDistribution handles PATCH /sellers/:uuid/distribution.
func (h *Handler) SetDistribution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid seller id")
		return
	}
	var req setDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	seller, err := h.repo.SetDistribution(c.Request.Context(), id, *req.InDistribution, req.Order)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"seller": toUserResponse(seller)})
}

// Reorder handles PUT /sellers/distribution-order.
func (h *Handler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	entries := make([]OrderEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		id, err := uuid.Parse(e.UUID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid seller id in entries")
			return
		}
		entries = append(entries, OrderEntry{UUID: id, Order: e.Order})
	}

	if err := h.repo.ReorderDistribution(c.Request.Context(), entries); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"updated": len(entries)})
}

// Deactivate handles DELETE /users/:uuid.
func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"deactivated": true})
}
