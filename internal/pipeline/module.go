package pipeline

import (
	apphttp "recovery_crm_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the pipeline bounded context.
type Module struct {
	Repo    *Repository
	handler *Handler
}

// NewModule builds the pipeline module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	return &Module{Repo: repo, handler: NewHandler(repo)}
}

// Name implements http.Module.
func (m *Module) Name() string { return "pipeline" }

// RegisterRoutes mounts status and campaign endpoints. Listings are available
// to every authenticated user; mutations are admin-only.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.Protected.GET("/statuses", m.handler.ListStatuses)
	rc.Protected.GET("/campaigns", m.handler.ListCampaigns)

	rc.Admin.POST("/statuses", m.handler.CreateStatus)
	rc.Admin.PUT("/statuses/order", m.handler.ReorderStatuses)
	rc.Admin.PUT("/statuses/:uuid", m.handler.UpdateStatus)
	rc.Admin.DELETE("/statuses/:uuid", m.handler.DeleteStatus)

	rc.Admin.POST("/campaigns", m.handler.CreateCampaign)
	rc.Admin.PATCH("/campaigns/:uuid", m.handler.RenameCampaign)
	rc.Admin.POST("/campaigns/:uuid/activate", m.handler.ActivateCampaign)
	rc.Admin.DELETE("/campaigns/:uuid", m.handler.DeleteCampaign)
}
