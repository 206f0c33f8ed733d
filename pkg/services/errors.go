package services

import "fmt"

// InvalidRequestError reports malformed or empty client input.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// MissingFeatureError reports a column the model requires that is absent
// from a record and has no configured default.
type MissingFeatureError struct {
	Column string
	Record int
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("record %d is missing required column %q and no default is configured", e.Record, e.Column)
}

// ModelLoadError reports a model artifact that could not be loaded or
// validated. It is fatal at startup: the process must not serve traffic.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model from %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// PredictionError reports a mismatch between engineered features and the
// loaded model's schema. This indicates server-side feature drift, not a
// client input problem.
type PredictionError struct {
	Expected int
	Got      int
	Record   int
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("feature vector for record %d has width %d, model expects %d", e.Record, e.Got, e.Expected)
}
