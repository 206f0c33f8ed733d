package services

import (
	"os"
	"path/filepath"
	"testing"

	"demand-forecast-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

const historyCSV = `Date,store_id,Product ID,Category,Region,Seasonality,Units Sold,Demand Forecast,Price
2022-01-01,S001,P0001,Groceries,North,Winter,127,135.5,33.5
2022-01-02,S001,P0001,Groceries,North,Winter,150,148.2,33.5
2022-06-15,S002,P0002,Clothing,South,Summer,90,84,19.99
`

func writeHistoryCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileHistoryStoreReadsCSV(t *testing.T) {
	store := NewFileHistoryStore(writeHistoryCSV(t, historyCSV), testLogger())

	records, err := store.ListRecords(0)
	assert.NoError(t, err)
	assert.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "2022-01-01", first.String(models.ColDate))
	// store_id in the header resolves to the canonical column name.
	assert.Equal(t, "S001", first.String(models.ColStoreID))
	assert.Equal(t, "Winter", first.String(models.ColSeasonality))

	sold, ok := first.Float(models.ColUnitsSold)
	assert.True(t, ok, "Units Sold should parse as a number")
	assert.Equal(t, 127.0, sold)

	forecast, ok := first.Float(models.ColDemandForecast)
	assert.True(t, ok)
	assert.Equal(t, 135.5, forecast)
}

func TestFileHistoryStoreLimit(t *testing.T) {
	store := NewFileHistoryStore(writeHistoryCSV(t, historyCSV), testLogger())

	records, err := store.ListRecords(2)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFileHistoryStoreMissingFile(t *testing.T) {
	store := NewFileHistoryStore(filepath.Join(t.TempDir(), "absent.csv"), testLogger())

	_, err := store.ListRecords(0)
	assert.Error(t, err)
}

func TestFileHistoryStoreHeaderOnly(t *testing.T) {
	store := NewFileHistoryStore(writeHistoryCSV(t, "Date,Units Sold\n"), testLogger())

	_, err := store.ListRecords(0)
	assert.Error(t, err)
}

func TestFileHistoryStoreReadsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	assert.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Date", "Store ID", "Seasonality", "Units Sold", "Demand Forecast"}))
	assert.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2022-01-01", "S001", "Winter", 127, 135.5}))
	assert.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2022-06-15", "S002", "Summer", 90, 84}))
	assert.NoError(t, f.SaveAs(path))
	assert.NoError(t, f.Close())

	store := NewFileHistoryStore(path, testLogger())
	records, err := store.ListRecords(0)
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	sold, ok := records[0].Float(models.ColUnitsSold)
	assert.True(t, ok)
	assert.Equal(t, 127.0, sold)
	assert.Equal(t, "Summer", records[1].String(models.ColSeasonality))
}
