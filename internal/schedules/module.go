package schedules

import (
	apphttp "recovery_crm_backend/internal/http"
	"recovery_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the schedules bounded context.
type Module struct {
	Repo    *Repository
	handler *Handler
}

// NewModule builds the schedules module. reminders may be nil when redis is
// not configured; schedules then surface through listing only.
func NewModule(pool *pgxpool.Pool, reminders ReminderScheduler, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		Repo:    repo,
		handler: NewHandler(repo, reminders, log),
	}
}

// Name implements http.Module.
func (m *Module) Name() string { return "schedules" }

// RegisterRoutes mounts schedule endpoints for authenticated users.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	group := rc.Protected.Group("/schedules")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.PATCH("/:uuid", m.handler.SetStatus)
}
