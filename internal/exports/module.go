package exports

import (
	apphttp "recovery_crm_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the exports bounded context.
type Module struct {
	handler *Handler
}

// NewModule builds the exports module.
func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{handler: NewHandler(NewExporter(pool))}
}

// Name implements http.Module.
func (m *Module) Name() string { return "exports" }

// RegisterRoutes mounts the export endpoints under the admin group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.Admin.GET("/exports/leads.csv", m.handler.LeadsCSV)
}
