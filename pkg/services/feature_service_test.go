package services

import (
	"testing"

	"demand-forecast-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func testRecord() models.RawRecord {
	return models.RawRecord{
		models.ColDate:        "2022-01-01", // a Saturday
		models.ColRegion:      "East",
		models.ColSeasonality: "Winter",
		models.ColPrice:       50.0,
		models.ColDiscount:    5.0,
	}
}

func TestEngineerLayout(t *testing.T) {
	schema := &testArtifact().Schema
	engineer := NewFeatureEngineer(schema)

	vectors, err := engineer.Engineer([]models.RawRecord{testRecord()})
	assert.NoError(t, err)
	assert.Len(t, vectors, 1)

	vector := vectors[0]
	assert.Len(t, []float64(vector), schema.Width())

	// One-hot blocks: Region [East, West], Seasonality [Summer, Winter].
	assert.Equal(t, 1.0, vector[0], "East")
	assert.Equal(t, 0.0, vector[1], "West")
	assert.Equal(t, 0.0, vector[2], "Summer")
	assert.Equal(t, 1.0, vector[3], "Winter")

	// Numerics: standardized price, raw discount, calendar features.
	assert.Equal(t, -1.0, vector[4], "(50-100)/50")
	assert.Equal(t, 5.0, vector[5], "Discount")
	assert.Equal(t, 1.0, vector[6], "Month of 2022-01-01")
	assert.Equal(t, 1.0, vector[7], "2022-01-01 is a Saturday")
}

func TestEngineerAppliesDefaults(t *testing.T) {
	schema := &testArtifact().Schema
	engineer := NewFeatureEngineer(schema)

	record := testRecord()
	delete(record, models.ColDiscount)

	vectors, err := engineer.Engineer([]models.RawRecord{record})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, vectors[0][5], "Discount should back-fill to its configured default")
}

func TestEngineerMissingColumnWithoutDefault(t *testing.T) {
	schema := &testArtifact().Schema
	engineer := NewFeatureEngineer(schema)

	record := testRecord()
	delete(record, models.ColPrice)

	_, err := engineer.Engineer([]models.RawRecord{testRecord(), record})
	assert.Error(t, err)

	missing, ok := err.(*MissingFeatureError)
	assert.True(t, ok, "error should be a MissingFeatureError")
	assert.Equal(t, models.ColPrice, missing.Column)
	assert.Equal(t, 1, missing.Record)
}

func TestEngineerUnknownCategoryEncodesToZeros(t *testing.T) {
	schema := &testArtifact().Schema
	engineer := NewFeatureEngineer(schema)

	record := testRecord()
	record[models.ColRegion] = "Central"

	vectors, err := engineer.Engineer([]models.RawRecord{record})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, vectors[0][0])
	assert.Equal(t, 0.0, vectors[0][1])
}

func TestEngineerDeterministic(t *testing.T) {
	schema := &testArtifact().Schema
	engineer := NewFeatureEngineer(schema)
	records := []models.RawRecord{testRecord()}

	first, err := engineer.Engineer(records)
	assert.NoError(t, err)
	second, err := engineer.Engineer(records)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngineerNumericStrings(t *testing.T) {
	schema := &testArtifact().Schema
	engineer := NewFeatureEngineer(schema)

	record := testRecord()
	record[models.ColPrice] = "150"

	vectors, err := engineer.Engineer([]models.RawRecord{record})
	assert.NoError(t, err)
	assert.Equal(t, 1.0, vectors[0][4], "(150-100)/50")
}

func TestEngineerRejectsNonNumericValue(t *testing.T) {
	schema := &testArtifact().Schema
	engineer := NewFeatureEngineer(schema)

	record := testRecord()
	record[models.ColPrice] = "expensive"

	_, err := engineer.Engineer([]models.RawRecord{record})
	assert.IsType(t, &InvalidRequestError{}, err)
}

func TestEngineerRejectsBadDate(t *testing.T) {
	schema := &testArtifact().Schema
	engineer := NewFeatureEngineer(schema)

	record := testRecord()
	record[models.ColDate] = "first of May"

	_, err := engineer.Engineer([]models.RawRecord{record})
	assert.IsType(t, &InvalidRequestError{}, err)
}

func TestEngineerMissingDateUsesToday(t *testing.T) {
	schema := &testArtifact().Schema
	engineer := NewFeatureEngineer(schema)

	record := testRecord()
	delete(record, models.ColDate)

	vectors, err := engineer.Engineer([]models.RawRecord{record})
	assert.NoError(t, err)
	assert.Len(t, []float64(vectors[0]), schema.Width())
}
