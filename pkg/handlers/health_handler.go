package handlers

import (
	"net/http"
	"sync/atomic"

	"demand-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// isMaintenanceMode marks the server as intentionally unavailable.
// atomic.Bool keeps reads and writes thread-safe.
var isMaintenanceMode atomic.Bool

// HealthHandler answers readiness probes. External pollers gate traffic on
// this endpoint, so it must not report ok before the model is loaded.
type HealthHandler struct {
	modelService *services.ModelService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(modelService *services.ModelService) *HealthHandler {
	return &HealthHandler{
		modelService: modelService,
	}
}

// HealthCheck reports ok only once the model gateway holds a valid handle.
func (hh *HealthHandler) HealthCheck(c *gin.Context) {
	if isMaintenanceMode.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"message": "Server is in maintenance mode",
		})
		return
	}

	if !hh.modelService.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "loading",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_loaded": true,
	})
}

// StartMaintenance puts the server into maintenance mode.
func (hh *HealthHandler) StartMaintenance(c *gin.Context) {
	isMaintenanceMode.Store(true)
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode started"})
}

// StopMaintenance takes the server out of maintenance mode.
func (hh *HealthHandler) StopMaintenance(c *gin.Context) {
	isMaintenanceMode.Store(false)
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode stopped"})
}
