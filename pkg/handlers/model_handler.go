package handlers

import (
	"net/http"

	"demand-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ModelHandler serves model metadata and the operator reload.
type ModelHandler struct {
	modelService *services.ModelService
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(modelService *services.ModelService) *ModelHandler {
	return &ModelHandler{
		modelService: modelService,
	}
}

// GetVersion returns the loaded artifact's version metadata.
func (mh *ModelHandler) GetVersion(c *gin.Context) {
	version, err := mh.modelService.Version()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, version)
}

// Reload re-reads the artifact from disk and swaps it in atomically.
// In-flight predictions finish against the handle they started with.
func (mh *ModelHandler) Reload(c *gin.Context) {
	if err := mh.modelService.Reload(); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	version, err := mh.modelService.Version()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "reloaded",
		"version": version,
	})
}
