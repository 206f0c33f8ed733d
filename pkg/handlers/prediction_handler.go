package handlers

import (
	"errors"
	"net/http"

	"demand-forecast-api/pkg/models"
	"demand-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// PredictionHandler serves POST /predict.
type PredictionHandler struct {
	predictionService *services.PredictionService
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictionService *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
	}
}

// Predict runs the feature-reconstruction + prediction pipeline over the
// submitted batch and returns one forecast per record, in input order.
func (ph *PredictionHandler) Predict(c *gin.Context) {
	var request models.PredictionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "failed to parse request body: " + err.Error(),
		})
		return
	}

	predictions, err := ph.predictionService.Predict(request.Records)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PredictionResponse{
		Predictions: predictions,
		N:           len(predictions),
	})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// client faults are 4xx, a missing model is 503, feature drift is 500.
func respondServiceError(c *gin.Context, err error) {
	var invalidErr *services.InvalidRequestError
	var missingErr *services.MissingFeatureError
	var loadErr *services.ModelLoadError
	var predictionErr *services.PredictionError

	switch {
	case errors.As(err, &invalidErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidErr.Error()})
	case errors.As(err, &missingErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  missingErr.Error(),
			"column": missingErr.Column,
			"record": missingErr.Record,
		})
	case errors.As(err, &loadErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not available"})
	case errors.As(err, &predictionErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed: " + predictionErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
