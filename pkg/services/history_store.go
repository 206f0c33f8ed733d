package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"demand-forecast-api/pkg/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// HistoryReader is the minimal contract the report aggregator needs from
// the external historical data source. The source is read-only from this
// service's perspective.
type HistoryReader interface {
	ListRecords(limit int) ([]models.RawRecord, error)
}

// FileHistoryStore reads historical records from a CSV or XLSX file
// written by the offline pipeline.
type FileHistoryStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileHistoryStore creates a store backed by the file at path.
func NewFileHistoryStore(path string, logger zerolog.Logger) *FileHistoryStore {
	return &FileHistoryStore{
		path:   path,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Columns parsed as numbers when reading history rows.
var historyNumericColumns = map[string]bool{
	models.ColInventoryLevel:    true,
	models.ColUnitsOrdered:      true,
	models.ColUnitsSold:         true,
	models.ColDemandForecast:    true,
	models.ColPrice:             true,
	models.ColDiscount:          true,
	models.ColCompetitorPricing: true,
	models.ColHolidayPromotion:  true,
}

// canonicalColumns maps normalized header names to dataset column names,
// so "store_id", "Store ID" and "STORE ID" all resolve the same way.
var canonicalColumns = func() map[string]string {
	names := []string{
		models.ColDate,
		models.ColStoreID,
		models.ColProductID,
		models.ColCategory,
		models.ColRegion,
		models.ColWeatherCondition,
		models.ColHolidayPromotion,
		models.ColSeasonality,
		models.ColInventoryLevel,
		models.ColUnitsOrdered,
		models.ColUnitsSold,
		models.ColDemandForecast,
		models.ColPrice,
		models.ColDiscount,
		models.ColCompetitorPricing,
	}
	m := make(map[string]string, len(names))
	for _, name := range names {
		m[normalizeHeader(name)] = name
	}
	return m
}()

func normalizeHeader(header string) string {
	replacer := strings.NewReplacer(" ", "", "_", "", "/", "", "-", "")
	return replacer.Replace(strings.ToLower(strings.TrimSpace(header)))
}

// ListRecords returns up to limit records from the source file, in file
// order. A non-positive limit returns every record.
func (hs *FileHistoryStore) ListRecords(limit int) ([]models.RawRecord, error) {
	rows, err := hs.readRows()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("history file %s has no data rows", hs.path)
	}

	header := rows[0]
	columns := make([]string, len(header))
	for i, cell := range header {
		if canonical, ok := canonicalColumns[normalizeHeader(cell)]; ok {
			columns[i] = canonical
		} else {
			columns[i] = strings.TrimSpace(cell)
		}
	}

	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		record := make(models.RawRecord, len(columns))
		for i, column := range columns {
			if i >= len(row) || column == "" {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			if historyNumericColumns[column] {
				if value, err := strconv.ParseFloat(cell, 64); err == nil {
					record[column] = value
					continue
				}
			}
			record[column] = cell
		}
		records = append(records, record)
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	hs.logger.Debug().Int("records", len(records)).Str("path", hs.path).Msg("history read")
	return records, nil
}

func (hs *FileHistoryStore) readRows() ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(hs.path), ".xlsx") {
		f, err := excelize.OpenFile(hs.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open history workbook %s: %w", hs.path, err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("failed to read history sheet from %s: %w", hs.path, err)
		}
		return rows, nil
	}

	file, err := os.Open(hs.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file %s: %w", hs.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", hs.path, err)
	}
	return rows, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
