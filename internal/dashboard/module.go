package dashboard

import (
	"net/http"

	apphttp "recovery_crm_backend/internal/http"
	"recovery_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the dashboard bounded context.
type Module struct {
	service *Service
}

// NewModule builds the dashboard module.
func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{service: NewService(pool)}
}

// Name implements http.Module.
func (m *Module) Name() string { return "dashboard" }

// RegisterRoutes mounts GET /dashboard. Sellers see their own numbers;
// admins see everything plus the leaderboard.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.Protected.GET("/dashboard", func(c *gin.Context) {
		var sellerID *int64
		if httpkit.Role(c) != httpkit.RoleAdmin {
			id, ok := httpkit.UserID(c)
			if !ok {
				httpkit.Error(c, http.StatusUnauthorized, "missing authentication context")
				return
			}
			sellerID = &id
		}

		overview, err := m.service.Overview(c.Request.Context(), sellerID)
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
		httpkit.OK(c, gin.H{"dashboard": overview})
	})
}
