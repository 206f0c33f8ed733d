package handlers

import (
	"net/http"
	"strconv"

	"demand-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the reporting endpoints over stored history.
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GetDetail returns the most recent stored records, newest first.
// GET /reports/detail?rows=N (default 100).
func (rh *ReportHandler) GetDetail(c *gin.Context) {
	rows := 100
	if rowsStr := c.Query("rows"); rowsStr != "" {
		parsed, err := strconv.Atoi(rowsStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "`rows` must be an integer"})
			return
		}
		rows = parsed
	}

	records, err := rh.reportService.Detail(rows)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows": len(records),
		"data": records,
	})
}

// GetSeason returns per-season aggregates in stable lexicographic order.
func (rh *ReportHandler) GetSeason(c *gin.Context) {
	summaries, err := rh.reportService.Season()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows": len(summaries),
		"data": summaries,
	})
}

// GetPlots returns the visualization payload: rendered plot files plus the
// seasonal series.
func (rh *ReportHandler) GetPlots(c *gin.Context) {
	payload, err := rh.reportService.PlotData()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}
