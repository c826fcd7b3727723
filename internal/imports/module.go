package imports

import (
	"recovery_crm_backend/internal/events"
	apphttp "recovery_crm_backend/internal/http"
	"recovery_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the imports bounded context.
type Module struct {
	handler *Handler
}

// NewModule builds the imports module on top of the leads intake service.
func NewModule(pool *pgxpool.Pool, intake Intaker, bus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, intake, bus, log)
	return &Module{handler: NewHandler(service, repo)}
}

// Name implements http.Module.
func (m *Module) Name() string { return "imports" }

// RegisterRoutes mounts import endpoints under the admin group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	admin := rc.Admin.Group("/imports")
	admin.POST("", m.handler.Run)
	admin.GET("", m.handler.ListBatches)
	admin.POST("/:uuid/revert", m.handler.Revert)
	admin.DELETE("/:uuid", m.handler.Delete)
}
