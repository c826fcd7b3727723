package distribution

import (
	apphttp "recovery_crm_backend/internal/http"
	"recovery_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the distribution engine.
type Module struct {
	Assigner *Assigner
	Store    *PGStore
	handler  *Handler
}

// NewModule builds the distribution module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	store := NewPGStore(pool)
	assigner := NewAssigner(store, log)
	return &Module{
		Assigner: assigner,
		Store:    store,
		handler:  NewHandler(assigner, store),
	}
}

// Name implements http.Module.
func (m *Module) Name() string { return "distribution" }

// RegisterRoutes mounts the distribution admin endpoints.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.Admin.GET("/distribution/stats", m.handler.Stats)
	rc.Admin.POST("/distribution/advance", m.handler.Advance)
}
