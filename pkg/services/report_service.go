package services

import (
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"demand-forecast-api/pkg/models"

	"github.com/rs/zerolog"
)

// ReportService computes read-only aggregates over the stored historical
// records. It never mutates the underlying source.
type ReportService struct {
	history  HistoryReader
	plotsDir string
	logger   zerolog.Logger
}

// NewReportService creates a new ReportService over a history source.
func NewReportService(history HistoryReader, plotsDir string, logger zerolog.Logger) *ReportService {
	return &ReportService{
		history:  history,
		plotsDir: plotsDir,
		logger:   logger.With().Str("component", "reports").Logger(),
	}
}

// Detail returns at most rows of the most recent stored records, newest
// first. A non-positive rows value is a client error.
func (rs *ReportService) Detail(rows int) ([]models.RawRecord, error) {
	if rows <= 0 {
		return nil, &InvalidRequestError{Reason: "`rows` must be a positive integer"}
	}

	records, err := rs.history.ListRecords(0)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return recordTime(records[i]).After(recordTime(records[j]))
	})

	if rows < len(records) {
		records = records[:rows]
	}
	return records, nil
}

// Season groups stored records by the Seasonality column and computes
// per-group aggregates. Groups come back sorted lexicographically by
// season label, so repeated calls against unchanged data are identical.
func (rs *ReportService) Season() ([]models.SeasonSummary, error) {
	records, err := rs.history.ListRecords(0)
	if err != nil {
		return nil, err
	}

	type accumulator struct {
		count         int
		demandSum     float64
		demandCount   int
		forecastSum   float64
		forecastCount int
		absErrorSum   float64
		absErrorCount int
	}

	groups := make(map[string]*accumulator)
	for _, record := range records {
		label := record.String(models.ColSeasonality)
		if label == "" {
			label = "Unknown"
		}
		acc := groups[label]
		if acc == nil {
			acc = &accumulator{}
			groups[label] = acc
		}
		acc.count++

		demand, hasDemand := record.Float(models.ColUnitsSold)
		if hasDemand {
			acc.demandSum += demand
			acc.demandCount++
		}
		forecast, hasForecast := record.Float(models.ColDemandForecast)
		if hasForecast {
			acc.forecastSum += forecast
			acc.forecastCount++
		}
		if hasDemand && hasForecast {
			acc.absErrorSum += math.Abs(forecast - demand)
			acc.absErrorCount++
		}
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	summaries := make([]models.SeasonSummary, 0, len(labels))
	for _, label := range labels {
		acc := groups[label]
		summary := models.SeasonSummary{
			Season:     label,
			Count:      acc.count,
			HasActuals: acc.demandCount > 0,
		}
		if acc.demandCount > 0 {
			summary.MeanDemand = acc.demandSum / float64(acc.demandCount)
		}
		if acc.forecastCount > 0 {
			summary.MeanForecast = acc.forecastSum / float64(acc.forecastCount)
		}
		if acc.absErrorCount > 0 {
			summary.MeanAbsError = acc.absErrorSum / float64(acc.absErrorCount)
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// PlotsPayload is the visualization payload for GET /plots: rendered chart
// files plus the seasonal series for clients that draw their own.
type PlotsPayload struct {
	Plots        []string               `json:"plots"`
	SeasonSeries []models.SeasonSummary `json:"season_series"`
}

// PlotData lists rendered PNG plots and attaches the seasonal aggregates.
// A missing plots directory yields an empty listing, not an error.
func (rs *ReportService) PlotData() (*PlotsPayload, error) {
	plots := make([]string, 0)
	err := filepath.WalkDir(rs.plotsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".png") {
			plots = append(plots, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		rs.logger.Debug().Str("dir", rs.plotsDir).Err(err).Msg("plots directory not readable")
		plots = plots[:0]
	}
	sort.Strings(plots)

	series, err := rs.Season()
	if err != nil {
		// Plots are best-effort; the listing is still useful without the
		// seasonal series.
		series = nil
	}

	return &PlotsPayload{Plots: plots, SeasonSeries: series}, nil
}

func recordTime(record models.RawRecord) time.Time {
	raw := record.String(models.ColDate)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
