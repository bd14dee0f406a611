package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler answers liveness checks
type SystemHandler struct {
	BaseHandler
	name    string
	started time.Time
}

// NewSystemHandler creates a SystemHandler
func NewSystemHandler(name string) *SystemHandler {
	return &SystemHandler{name: name, started: time.Now()}
}

// Health godoc
// @Summary      Health check
// @Description  Report that the desk is up and how long it has been running
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.name,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
