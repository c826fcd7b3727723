package auth

import (
	"net/http"

	"recovery_crm_backend/platform/apperr"
	"recovery_crm_backend/platform/httpkit"
	"recovery_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the authentication endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validator
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type profileResponse struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("email and password are required"))
		return
	}

	pair, account, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{
		"tokens": pair,
		"user": profileResponse{
			UUID:  account.UUID.String(),
			Name:  account.Name,
			Email: account.Email,
			Role:  account.Role,
		},
	})
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("refresh_token is required"))
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"tokens": pair})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	subject, ok := httpkit.UserUUID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing authentication context")
		return
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		httpkit.Error(c, http.StatusUnauthorized, "invalid authentication context")
		return
	}

	account, err := h.service.Me(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"user": profileResponse{
		UUID:  account.UUID.String(),
		Name:  account.Name,
		Email: account.Email,
		Role:  account.Role,
	}})
}
