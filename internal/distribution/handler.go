package distribution

import (
	"recovery_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes distribution administration endpoints.
type Handler struct {
	assigner *Assigner
	store    *PGStore
}

// NewHandler creates a new distribution handler.
func NewHandler(assigner *Assigner, store *PGStore) *Handler {
	return &Handler{assigner: assigner, store: store}
}

// Stats handles GET /distribution/stats. It is a read-only view and does not
// move the rotation.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.store.ReadStats(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"distribution": stats})
}

// Advance handles POST /distribution/advance. It consumes one rotation turn
// and returns the chosen seller, letting an admin skip a seller manually.
func (h *Handler) Advance(c *gin.Context) {
	seller, err := h.assigner.Next(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	if seller == nil {
		httpkit.OK(c, gin.H{"seller": nil, "message": "no eligible sellers"})
		return
	}
	httpkit.OK(c, gin.H{"seller": gin.H{
		"uuid":  seller.UUID.String(),
		"name":  seller.Name,
		"email": seller.Email,
	}})
}
