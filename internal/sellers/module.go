package sellers

import (
	apphttp "recovery_crm_backend/internal/http"
	"recovery_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the sellers bounded context.
type Module struct {
	Repo    *Repository
	handler *Handler
}

// NewModule builds the sellers module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		Repo:    repo,
		handler: NewHandler(repo, log),
	}
}

// Name implements http.Module.
func (m *Module) Name() string { return "sellers" }

// RegisterRoutes mounts user and seller management under the admin group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	admin := rc.Admin
	admin.GET("/users", m.handler.List)
	admin.POST("/users", m.handler.Create)
	admin.PUT("/users/:uuid", m.handler.Update)
	admin.DELETE("/users/:uuid", m.handler.Deactivate)

	admin.GET("/sellers", m.handler.ListSellers)
	admin.PATCH("/sellers/:uuid/distribution", m.handler.SetDistribution)
	admin.PUT("/sellers/distribution-order", m.handler.Reorder)
}
