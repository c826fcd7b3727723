package imports

import (
	"net/http"

	"recovery_crm_backend/platform/apperr"
	"recovery_crm_backend/platform/httpkit"
	"recovery_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes import endpoints, all admin-only.
type Handler struct {
	service  *Service
	repo     *Repository
	validate *validator.Validator
}

// NewHandler creates a new imports handler.
func NewHandler(service *Service, repo *Repository) *Handler {
	return &Handler{service: service, repo: repo, validate: validator.New()}
}

type importRequest struct {
	BatchName string `json:"batch_name" validate:"omitempty,max=200"`
	CSV       string `json:"csv"`
	Rows      []struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Product string `json:"product"`
		Status  string `json:"status"`
	} `json:"rows"`
	CampaignID     *int64 `json:"campaign_id"`
	StatusID       *int64 `json:"status_id"`
	SellerID       *int64 `json:"seller_id"`
	Distribute     bool   `json:"distribute"`
	InGroup        bool   `json:"in_group"`
	UpdateExisting *bool  `json:"update_existing"`
}

type batchResponse struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	TotalRows  int    `json:"total_rows"`
	Imported   int    `json:"imported"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	LiveLeads  int64  `json:"live_leads"`
	IsReverted bool   `json:"is_reverted"`
	CreatedAt  string `json:"created_at"`
}

// Run handles POST /imports. The body carries either a raw CSV string or
// pre-parsed rows.
func (h *Handler) Run(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	var rows []Row
	switch {
	case req.CSV != "":
		parsed, err := ParseCSV(req.CSV)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("could not parse csv: "+err.Error()))
			return
		}
		rows = parsed
	case len(req.Rows) > 0:
		for _, r := range req.Rows {
			if r.Name == "" && r.Email == "" {
				continue
			}
			rows = append(rows, Row{Name: r.Name, Email: r.Email, Phone: r.Phone, Product: r.Product, StatusName: r.Status})
		}
	}
	if len(rows) == 0 {
		httpkit.HandleError(c, apperr.Validation("no importable rows found"))
		return
	}

	var createdBy *int64
	if id, ok := httpkit.UserID(c); ok {
		createdBy = &id
	}
	updateExisting := req.UpdateExisting == nil || *req.UpdateExisting

	result, err := h.service.Run(c.Request.Context(), Request{
		BatchName:      req.BatchName,
		Rows:           rows,
		CampaignID:     req.CampaignID,
		StatusID:       req.StatusID,
		SellerID:       req.SellerID,
		Distribute:     req.Distribute,
		InGroup:        req.InGroup,
		UpdateExisting: updateExisting,
		CreatedBy:      createdBy,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"result": result})
}

// ListBatches handles GET /imports.
func (h *Handler) ListBatches(c *gin.Context) {
	batches, err := h.repo.ListBatches(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]batchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, batchResponse{
			UUID:       b.UUID.String(),
			Name:       b.Name,
			Source:     b.Source,
			TotalRows:  b.TotalRows,
			Imported:   b.Imported,
			Updated:    b.Updated,
			Skipped:    b.Skipped,
			LiveLeads:  b.LiveLeads,
			IsReverted: b.IsReverted,
			CreatedAt:  b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	httpkit.OK(c, gin.H{"batches": out})
}

// Revert handles POST /imports/:uuid/revert.
func (h *Handler) Revert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid batch id")
		return
	}
	removed, err := h.repo.RevertBatch(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"reverted": true, "leads_removed": removed})
}

// Delete handles DELETE /imports/:uuid.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid batch id")
		return
	}
	if err := h.repo.DeleteBatch(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}
