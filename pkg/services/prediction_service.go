package services

import (
	"demand-forecast-api/pkg/models"

	"github.com/rs/zerolog"
)

// PredictionService orchestrates feature engineering and the model gateway
// for one prediction request.
type PredictionService struct {
	modelService *ModelService
	logger       zerolog.Logger
}

// NewPredictionService creates a new PredictionService.
func NewPredictionService(modelService *ModelService, logger zerolog.Logger) *PredictionService {
	return &PredictionService{
		modelService: modelService,
		logger:       logger.With().Str("component", "prediction").Logger(),
	}
}

// Predict produces one forecast per input record, in input order. A single
// bad record fails the whole batch; there are no partial results.
func (ps *PredictionService) Predict(records []models.RawRecord) ([]models.ForecastResult, error) {
	if len(records) == 0 {
		return nil, &InvalidRequestError{Reason: "`records` is empty"}
	}

	// Snapshot the handle once so the whole batch is engineered and scored
	// against the same model, even across a concurrent reload.
	handle, err := ps.modelService.Handle()
	if err != nil {
		return nil, err
	}

	engineer := NewFeatureEngineer(handle.Schema())
	features, err := engineer.Engineer(records)
	if err != nil {
		return nil, err
	}

	predictions, err := handle.Predict(features)
	if err != nil {
		if perr, ok := err.(*PredictionError); ok {
			ps.logger.Error().
				Int("record", perr.Record).
				Int("got_width", perr.Got).
				Int("expected_width", perr.Expected).
				Int("batch", len(records)).
				Msg("feature shape mismatch against loaded model")
		}
		return nil, err
	}

	results := make([]models.ForecastResult, len(records))
	for i, predicted := range predictions {
		// Demand is a unit count; the ensemble can dip below zero.
		if predicted < 0 {
			predicted = 0
		}
		results[i] = models.ForecastResult{Index: i, PredictedDemand: predicted}
	}

	ps.logger.Debug().Int("n", len(results)).Msg("batch predicted")
	return results, nil
}
