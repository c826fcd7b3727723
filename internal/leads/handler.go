package leads

import (
	"context"
	"net/http"
	"strconv"

	"recovery_crm_backend/platform/apperr"
	"recovery_crm_backend/platform/httpkit"
	"recovery_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SellerDirectory validates reassignment targets without importing the
// sellers package into the request path.
type SellerDirectory interface {
	ActiveSellerID(ctx context.Context, sellerUUID uuid.UUID) (int64, error)
}

// Handler exposes lead endpoints for admins and sellers.
type Handler struct {
	repo     *Repository
	service  *Service
	sellers  SellerDirectory
	validate *validator.Validator
}

// NewHandler creates a new leads handler.
func NewHandler(repo *Repository, service *Service, sellers SellerDirectory) *Handler {
	return &Handler{repo: repo, service: service, sellers: sellers, validate: validator.New()}
}

type createLeadRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	Product    string `json:"product" validate:"omitempty,max=200"`
	CampaignID *int64 `json:"campaign_id"`
	StatusID   *int64 `json:"status_id"`
	InGroup    bool   `json:"in_group"`
	Distribute *bool  `json:"distribute"`
}

type statusRequest struct {
	StatusID int64 `json:"status_id" validate:"required,min=1"`
}

type noteRequest struct {
	Note string `json:"note" validate:"required,min=1,max=2000"`
}

type reassignRequest struct {
	SellerUUID string `json:"seller_uuid" validate:"required,uuid"`
}

type inGroupRequest struct {
	InGroup *bool `json:"in_group" validate:"required"`
}

type bulkRequest struct {
	UUIDs   []string `json:"uuids" validate:"required,min=1,max=500,dive,uuid"`
	InGroup *bool    `json:"in_group"`
}

type leadResponse struct {
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Product     *string `json:"product"`
	Source      string  `json:"source"`
	Seller      *string `json:"seller"`
	SellerUUID  *string `json:"seller_uuid"`
	Status      *string `json:"status"`
	Campaign    *string `json:"campaign"`
	InGroup     bool    `json:"in_group"`
	Notes       *string `json:"notes"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toLeadResponse(d LeadDetail) leadResponse {
	resp := leadResponse{
		UUID:      d.UUID.String(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Product:   d.ProductName,
		Source:    d.Source,
		Seller:    d.SellerName,
		Status:    d.StatusName,
		Campaign:  d.CampaignName,
		InGroup:   d.InGroup,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: d.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if d.SellerUUID != nil {
		s := d.SellerUUID.String()
		resp.SellerUUID = &s
	}
	return resp
}

// scopedFilter restricts the listing to the caller's own leads unless the
// caller is an admin.
func scopedFilter(c *gin.Context) (ListFilter, bool) {
	var f ListFilter
	if httpkit.Role(c) != httpkit.RoleAdmin {
		id, ok := httpkit.UserID(c)
		if !ok {
			return f, false
		}
		f.SellerID = &id
	}
	return f, true
}

// List handles GET /leads.
func (h *Handler) List(c *gin.Context) {
	filter, ok := scopedFilter(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing authentication context")
		return
	}

	if v := c.Query("status_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.StatusID = &id
		}
	}
	if v := c.Query("campaign_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.CampaignID = &id
		}
	}
	if v := c.Query("in_group"); v != "" {
		b := v == "true" || v == "1"
		filter.InGroup = &b
	}
	filter.Search = c.Query("search")
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "25"))

	items, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]leadResponse, 0, len(items))
	for _, d := range items {
		out = append(out, toLeadResponse(d))
	}
	httpkit.OK(c, gin.H{
		"leads": out,
		"pagination": gin.H{
			"page":     filter.Page,
			"per_page": filter.PerPage,
			"total":    total,
		},
	})
}

// Get handles GET /leads/:uuid.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id")
		return
	}
	detail, err := h.repo.GetByUUID(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	if !h.canAccess(c, detail) {
		httpkit.HandleError(c, apperr.Forbidden("lead belongs to another seller"))
		return
	}
	httpkit.OK(c, gin.H{"lead": toLeadResponse(detail)})
}

// Create handles POST /leads, the manual entry channel. It runs the same
// intake flow as webhook and import, so duplicates collapse there too.
func (h *Handler) Create(c *gin.Context) {
	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Email == "" && req.Phone == "" {
		httpkit.HandleError(c, apperr.Validation("email or phone is required"))
		return
	}

	distribute := req.Distribute == nil || *req.Distribute
	result, err := h.service.Intake(c.Request.Context(), IntakeRequest{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		ProductName: req.Product,
		Source:      "manual",
		CampaignID:  req.CampaignID,
		StatusID:    req.StatusID,
		InGroup:     req.InGroup,
		Distribute:  distribute,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Existing {
		status = http.StatusOK
	}
	httpkit.JSON(c, status, gin.H{
		"lead":     gin.H{"uuid": result.Lead.UUID.String(), "name": result.Lead.Name},
		"existing": result.Existing,
	})
}

// bindOwned parses the lead uuid, binds and validates the body, and rejects
// sellers touching leads they do not own.
func bindOwned[T any](h *Handler, c *gin.Context) (uuid.UUID, T, bool) {
	var req T
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id")
		return uuid.Nil, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return uuid.Nil, req, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return uuid.Nil, req, false
	}
	if httpkit.Role(c) != httpkit.RoleAdmin {
		detail, err := h.repo.GetByUUID(c.Request.Context(), id)
		if err != nil {
			httpkit.HandleError(c, err)
			return uuid.Nil, req, false
		}
		if !h.canAccess(c, detail) {
			httpkit.HandleError(c, apperr.Forbidden("lead belongs to another seller"))
			return uuid.Nil, req, false
		}
	}
	return id, req, true
}

// UpdateStatus handles PATCH /leads/:uuid/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, req, ok := bindOwned[statusRequest](h, c)
	if !ok {
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), id, req.StatusID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"updated": true})
}

// AddNote handles POST /leads/:uuid/notes.
func (h *Handler) AddNote(c *gin.Context) {
	id, req, ok := bindOwned[noteRequest](h, c)
	if !ok {
		return
	}
	if err := h.repo.AppendNote(c.Request.Context(), id, httpkit.UserName(c), req.Note); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"added": true})
}

// Reassign handles PATCH /leads/:uuid/seller. Admin-only: manual handoff is
// the one path that may change ownership after assignment.
func (h *Handler) Reassign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id")
		return
	}
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}
	sellerUUID, err := uuid.Parse(req.SellerUUID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid seller id")
		return
	}

	sellerID, err := h.sellers.ActiveSellerID(c.Request.Context(), sellerUUID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	if err := h.repo.Reassign(c.Request.Context(), id, sellerID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"reassigned": true})
}

// SetInGroup handles PATCH /leads/:uuid/in-group.
func (h *Handler) SetInGroup(c *gin.Context) {
	id, req, ok := bindOwned[inGroupRequest](h, c)
	if !ok {
		return
	}
	if err := h.repo.SetInGroup(c.Request.Context(), id, *req.InGroup); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"updated": true})
}

// BulkInGroup handles POST /leads/bulk/in-group (admin).
func (h *Handler) BulkInGroup(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}
	if req.InGroup == nil {
		httpkit.HandleError(c, apperr.Validation("in_group is required"))
		return
	}
	ids, err := parseUUIDs(req.UUIDs)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id in uuids")
		return
	}
	updated, err := h.repo.BulkSetInGroup(c.Request.Context(), ids, *req.InGroup)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"updated": updated})
}

// BulkDelete handles POST /leads/bulk/delete (admin).
func (h *Handler) BulkDelete(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}
	ids, err := parseUUIDs(req.UUIDs)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id in uuids")
		return
	}
	deleted, err := h.repo.BulkDeactivate(c.Request.Context(), ids)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"deleted": deleted})
}

// Delete handles DELETE /leads/:uuid (admin).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id")
		return
	}
	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

func (h *Handler) canAccess(c *gin.Context, d LeadDetail) bool {
	if httpkit.Role(c) == httpkit.RoleAdmin {
		return true
	}
	id, ok := httpkit.UserID(c)
	return ok && d.SellerID != nil && *d.SellerID == id
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
