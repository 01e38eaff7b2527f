package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookqueue-go/internal/app"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	poller *app.Poller
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(poller *app.Poller) *HealthHandler {
	return &HealthHandler{
		poller: poller,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Poller  struct {
		Running bool `json:"running"`
	} `json:"poller"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}
	response.Poller.Running = h.poller.IsRunning()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.poller.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "status poller not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
