package services

import (
	"fmt"
	"strconv"
	"time"

	"demand-forecast-api/pkg/models"
)

// Calendar columns are derived from Date at serving time rather than taken
// from the request.
const (
	ColMonth      = "Month"
	ColDayOfWeek  = "Day Of Week"
	ColDayOfMonth = "Day Of Month"
	ColDayOfYear  = "Day Of Year"
	ColIsWeekend  = "Is Weekend"
)

var calendarColumns = map[string]func(time.Time) float64{
	ColMonth:      func(t time.Time) float64 { return float64(t.Month()) },
	ColDayOfWeek:  func(t time.Time) float64 { return float64(t.Weekday()) },
	ColDayOfMonth: func(t time.Time) float64 { return float64(t.Day()) },
	ColDayOfYear:  func(t time.Time) float64 { return float64(t.YearDay()) },
	ColIsWeekend: func(t time.Time) float64 {
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			return 1
		}
		return 0
	},
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006/01/02"}

// FeatureEngineer reconstructs the feature vectors the model was trained
// on from raw records. It is pure: the vocabulary, scaler parameters and
// default table all come from the loaded artifact, never from traffic.
type FeatureEngineer struct {
	schema *FeatureSchema
}

// NewFeatureEngineer creates an engineer bound to one model schema.
func NewFeatureEngineer(schema *FeatureSchema) *FeatureEngineer {
	return &FeatureEngineer{schema: schema}
}

// Engineer maps records to dense feature vectors in schema order:
// categorical one-hot blocks first, then standardized numerics. A column
// that is absent and has no default fails the whole batch with a
// MissingFeatureError naming the column and record index.
func (fe *FeatureEngineer) Engineer(records []models.RawRecord) ([]models.FeatureVector, error) {
	vectors := make([]models.FeatureVector, len(records))
	for i, record := range records {
		vector, err := fe.engineerOne(record, i)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func (fe *FeatureEngineer) engineerOne(record models.RawRecord, index int) (models.FeatureVector, error) {
	date, err := fe.recordDate(record, index)
	if err != nil {
		return nil, err
	}

	vector := make(models.FeatureVector, 0, fe.schema.Width())

	for _, column := range fe.schema.Categorical {
		value, err := fe.categoricalValue(record, column.Name, index)
		if err != nil {
			return nil, err
		}
		// Unseen values encode to an all-zero block, matching the
		// train-time handle_unknown="ignore" behavior.
		for _, known := range column.Values {
			if value == known {
				vector = append(vector, 1)
			} else {
				vector = append(vector, 0)
			}
		}
	}

	for _, column := range fe.schema.Numeric {
		value, err := fe.numericValue(record, column.Name, date, index)
		if err != nil {
			return nil, err
		}
		std := column.Std
		if std <= 0 {
			std = 1
		}
		vector = append(vector, (value-column.Mean)/std)
	}

	return vector, nil
}

// recordDate parses the record's Date column. A missing date falls back to
// the current day, which mirrors how the model was served historically.
func (fe *FeatureEngineer) recordDate(record models.RawRecord, index int) (time.Time, error) {
	if !record.Has(models.ColDate) {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	raw := record.String(models.ColDate)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidRequestError{
		Reason: fmt.Sprintf("record %d has unparseable %s value %q", index, models.ColDate, raw),
	}
}

func (fe *FeatureEngineer) categoricalValue(record models.RawRecord, column string, index int) (string, error) {
	value, ok := fe.resolve(record, column)
	if !ok {
		return "", &MissingFeatureError{Column: column, Record: index}
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func (fe *FeatureEngineer) numericValue(record models.RawRecord, column string, date time.Time, index int) (float64, error) {
	if derive, ok := calendarColumns[column]; ok {
		return derive(date), nil
	}

	value, ok := fe.resolve(record, column)
	if !ok {
		return 0, &MissingFeatureError{Column: column, Record: index}
	}

	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, &InvalidRequestError{
				Reason: fmt.Sprintf("record %d has non-numeric value %q for column %q", index, v, column),
			}
		}
		return parsed, nil
	default:
		return 0, &InvalidRequestError{
			Reason: fmt.Sprintf("record %d has unsupported value type for column %q", index, column),
		}
	}
}

// resolve returns the record's value for a column, falling back to the
// schema's enumerated default table.
func (fe *FeatureEngineer) resolve(record models.RawRecord, column string) (any, bool) {
	if record.Has(column) {
		return record[column], true
	}
	if def, ok := fe.schema.Defaults[column]; ok {
		return def, true
	}
	return nil, false
}
