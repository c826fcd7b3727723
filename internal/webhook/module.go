package webhook

import (
	"crypto/rand"
	"encoding/hex"

	apphttp "recovery_crm_backend/internal/http"
	"recovery_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the webhook bounded context.
type Module struct {
	handler *Handler
}

// NewModule builds the webhook module on top of the leads intake service.
func NewModule(pool *pgxpool.Pool, intake Intaker, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, intake, log)
	return &Module{handler: NewHandler(service, repo)}
}

// Name implements http.Module.
func (m *Module) Name() string { return "webhook" }

// RegisterRoutes mounts the public receiver and the admin settings endpoints.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.V1.POST("/webhook/hotmart", m.handler.ReceiveHotmart)

	rc.Admin.GET("/settings/webhook", m.handler.GetSettings)
	rc.Admin.PATCH("/settings/webhook", m.handler.UpdateSettings)
}

// newToken generates a fresh webhook bearer token.
func newToken() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
