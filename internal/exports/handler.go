package exports

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler exposes the export endpoints.
type Handler struct {
	exporter *Exporter
}

// NewHandler creates a new exports handler.
func NewHandler(exporter *Exporter) *Handler {
	return &Handler{exporter: exporter}
}

// LeadsCSV handles GET /exports/leads.csv.
func (h *Handler) LeadsCSV(c *gin.Context) {
	var sellerID, statusID *int64
	if v := c.Query("seller_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			sellerID = &id
		}
	}
	if v := c.Query("status_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			statusID = &id
		}
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := h.exporter.WriteLeadsCSV(c.Request.Context(), c.Writer, sellerID, statusID); err != nil {
		// Headers are already out; record the error for the request log.
		_ = c.Error(err)
	}
}
