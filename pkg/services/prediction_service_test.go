package services

import (
	"testing"

	"demand-forecast-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func newTestPredictionService(t *testing.T, artifact *ModelArtifact) *PredictionService {
	t.Helper()

	path := writeArtifact(t, artifact)
	ms := NewModelService(path, testLogger())
	if err := ms.Load(); err != nil {
		t.Fatal(err)
	}
	return NewPredictionService(ms, testLogger())
}

func TestPredictPreservesOrderAndLength(t *testing.T) {
	ps := newTestPredictionService(t, testArtifact())

	cheap := testRecord()
	expensive := testRecord()
	expensive[models.ColPrice] = 200.0
	expensive[models.ColRegion] = "West"

	results, err := ps.Predict([]models.RawRecord{cheap, expensive, cheap})
	assert.NoError(t, err)
	assert.Len(t, results, 3)

	for i, result := range results {
		assert.Equal(t, i, result.Index)
	}

	assert.Equal(t, 125.0, results[0].PredictedDemand)
	assert.Equal(t, 90.0, results[1].PredictedDemand)
	assert.Equal(t, results[0].PredictedDemand, results[2].PredictedDemand,
		"duplicate records must produce identical independent predictions")
}

func TestPredictEmptyBatch(t *testing.T) {
	ps := newTestPredictionService(t, testArtifact())

	_, err := ps.Predict(nil)
	assert.IsType(t, &InvalidRequestError{}, err)

	_, err = ps.Predict([]models.RawRecord{})
	assert.IsType(t, &InvalidRequestError{}, err)
}

func TestPredictSingleRecordBatch(t *testing.T) {
	ps := newTestPredictionService(t, testArtifact())

	results, err := ps.Predict([]models.RawRecord{testRecord()})
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Index)
	assert.GreaterOrEqual(t, results[0].PredictedDemand, 0.0)
}

func TestPredictDeterministic(t *testing.T) {
	ps := newTestPredictionService(t, testArtifact())
	batch := []models.RawRecord{testRecord(), testRecord()}

	first, err := ps.Predict(batch)
	assert.NoError(t, err)
	second, err := ps.Predict(batch)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredictClampsNegativeForecasts(t *testing.T) {
	artifact := testArtifact()
	artifact.BaseScore = -40
	artifact.Trees = nil
	ps := newTestPredictionService(t, artifact)

	results, err := ps.Predict([]models.RawRecord{testRecord()})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, results[0].PredictedDemand)
}

func TestPredictSurfacesMissingFeature(t *testing.T) {
	ps := newTestPredictionService(t, testArtifact())

	record := testRecord()
	delete(record, models.ColSeasonality)

	_, err := ps.Predict([]models.RawRecord{record})
	assert.Error(t, err)

	missing, ok := err.(*MissingFeatureError)
	assert.True(t, ok)
	assert.Equal(t, models.ColSeasonality, missing.Column)
}

func TestPredictBeforeModelLoad(t *testing.T) {
	ms := NewModelService("unused.json", testLogger())
	ps := NewPredictionService(ms, testLogger())

	_, err := ps.Predict([]models.RawRecord{testRecord()})
	assert.IsType(t, &ModelLoadError{}, err)
}
