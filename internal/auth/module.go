package auth

import (
	apphttp "recovery_crm_backend/internal/http"
	"recovery_crm_backend/platform/config"
	"recovery_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the auth bounded context.
type Module struct {
	Repo    *Repository
	Service *Service
	handler *Handler
}

// NewModule builds the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, cfg, log)
	return &Module{
		Repo:    repo,
		Service: service,
		handler: NewHandler(service),
	}
}

// Name implements http.Module.
func (m *Module) Name() string { return "auth" }

// RegisterRoutes mounts the public auth endpoints and the profile endpoint.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	group := rc.V1.Group("/auth")
	group.POST("/login", rc.AuthRateLimiter.RateLimit(), m.handler.Login)
	group.POST("/refresh", rc.AuthRateLimiter.RateLimit(), m.handler.Refresh)

	rc.Protected.GET("/auth/me", m.handler.Me)
}
