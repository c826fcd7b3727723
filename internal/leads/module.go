package leads

import (
	"recovery_crm_backend/internal/events"
	apphttp "recovery_crm_backend/internal/http"
	"recovery_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the leads bounded context.
type Module struct {
	Repo    *Repository
	Service *Service
	handler *Handler
}

// NewModule builds the leads module. The assigner comes from the
// distribution module; the directory from the sellers module.
func NewModule(pool *pgxpool.Pool, assigner SellerPicker, directory SellerDirectory, bus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, assigner, bus, log)
	return &Module{
		Repo:    repo,
		Service: service,
		handler: NewHandler(repo, service, directory),
	}
}

// Name implements http.Module.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts lead endpoints. Sellers operate on their own leads;
// bulk operations, deletes and reassignment are admin-only.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	leads := rc.Protected.Group("/leads")
	leads.GET("", m.handler.List)
	leads.POST("", m.handler.Create)
	leads.GET("/:uuid", m.handler.Get)
	leads.PATCH("/:uuid/status", m.handler.UpdateStatus)
	leads.POST("/:uuid/notes", m.handler.AddNote)
	leads.PATCH("/:uuid/in-group", m.handler.SetInGroup)

	admin := rc.Admin.Group("/leads")
	admin.PATCH("/:uuid/seller", m.handler.Reassign)
	admin.POST("/bulk/in-group", m.handler.BulkInGroup)
	admin.POST("/bulk/delete", m.handler.BulkDelete)
	admin.DELETE("/:uuid", m.handler.Delete)
}
