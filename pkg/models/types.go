package models

import (
	"time"
)

// Dataset column names. These match the headers the model was trained on
// and the keys accepted in prediction requests.
const (
	ColDate              = "Date"
	ColStoreID           = "Store ID"
	ColProductID         = "Product ID"
	ColCategory          = "Category"
	ColRegion            = "Region"
	ColWeatherCondition  = "Weather Condition"
	ColHolidayPromotion  = "Holiday/Promotion"
	ColSeasonality       = "Seasonality"
	ColInventoryLevel    = "Inventory Level"
	ColUnitsOrdered      = "Units Ordered"
	ColUnitsSold         = "Units Sold"
	ColDemandForecast    = "Demand Forecast"
	ColPrice             = "Price"
	ColDiscount          = "Discount"
	ColCompetitorPricing = "Competitor Pricing"
)

// RawRecord represents one observation as submitted by a caller or read
// from the historical data source. Keys are dataset column names; optional
// columns may be absent.
type RawRecord map[string]any

// Has reports whether the record carries a non-nil value for the column.
func (r RawRecord) Has(column string) bool {
	v, ok := r[column]
	return ok && v != nil
}

// String returns the column as a string. Numeric JSON values are not
// converted; absent columns yield "".
func (r RawRecord) String(column string) string {
	if v, ok := r[column].(string); ok {
		return v
	}
	return ""
}

// Float returns the column as a float64. JSON numbers decode as float64;
// integer and boolean values are widened. The second result reports
// whether a usable value was present.
func (r RawRecord) Float(column string) (float64, bool) {
	switch v := r[column].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// FeatureVector is the dense encoding of one RawRecord in the model's
// feature order. Created per request, discarded after prediction.
type FeatureVector []float64

// PredictionRequest represents the body of POST /predict.
type PredictionRequest struct {
	Records []RawRecord `json:"records"`
}

// ForecastResult is one point forecast, ordered identically to the input
// batch.
type ForecastResult struct {
	Index           int     `json:"index"`
	PredictedDemand float64 `json:"predicted_demand"`
}

// PredictionResponse represents the body returned by POST /predict.
type PredictionResponse struct {
	Predictions []ForecastResult `json:"predictions"`
	N           int              `json:"n"`
}

// SeasonSummary aggregates stored history for one Seasonality label.
type SeasonSummary struct {
	Season       string  `json:"season"`
	Count        int     `json:"count"`
	MeanDemand   float64 `json:"mean_demand"`
	MeanForecast float64 `json:"mean_forecast"`
	MeanAbsError float64 `json:"mean_abs_error"`
	HasActuals   bool    `json:"has_actuals"`
}

// ModelVersion describes the currently loaded model artifact.
type ModelVersion struct {
	Version  string    `json:"version"`
	Path     string    `json:"path"`
	LoadedAt time.Time `json:"loaded_at"`
}
