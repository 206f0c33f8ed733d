package services

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogEntry records one handled HTTP request.
type RequestLogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
}

// MonitoringService keeps an in-memory log of handled requests for the
// operator dashboard.
type MonitoringService struct {
	logs   []RequestLogEntry
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewMonitoringService creates a new MonitoringService.
func NewMonitoringService(logger zerolog.Logger) *MonitoringService {
	return &MonitoringService{
		logs:   make([]RequestLogEntry, 0),
		logger: logger.With().Str("component", "http").Logger(),
	}
}

// LogRequest appends one entry to the request log.
func (s *MonitoringService) LogRequest(entry RequestLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
}

// RecentLogs returns the newest limit entries, newest first.
func (s *MonitoringService) RecentLogs(limit int) []RequestLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.logs) {
		limit = len(s.logs)
	}
	out := make([]RequestLogEntry, 0, limit)
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.logs[i])
	}
	return out
}

// LoggingMiddleware records request metadata and emits one access-log line
// per request. Monitoring's own routes are excluded from the stored log.
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		elapsed := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", elapsed).
			Msg("request")

		if strings.HasPrefix(path, "/monitoring") {
			return
		}

		s.LogRequest(RequestLogEntry{
			Timestamp:    start.UTC(),
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: elapsed,
		})
	}
}

// DashboardData aggregates the request log for the operator dashboard.
type DashboardData struct {
	Endpoints        map[string]int    `json:"endpoints"`
	StatusCodes      map[string]int    `json:"statusCodes"`
	AvgResponseTimes map[string]int64  `json:"avgResponseTimes"`
	RecentErrors     []RequestLogEntry `json:"recentErrors"`
}

// GetDashboardData aggregates requests from the trailing period.
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := time.Now().UTC().Add(-time.Duration(periodHours) * time.Hour)

	filtered := make([]RequestLogEntry, 0, len(s.logs))
	for _, entry := range s.logs {
		if entry.Timestamp.After(since) {
			filtered = append(filtered, entry)
		}
	}

	endpoints := make(map[string]int)
	statusCodes := map[string]int{
		"2xx Success":      0,
		"4xx Client Error": 0,
		"5xx Server Error": 0,
	}
	responseTimeSum := make(map[string]time.Duration)
	responseCount := make(map[string]int)

	for _, entry := range filtered {
		endpoints[entry.Path]++
		switch {
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			statusCodes["2xx Success"]++
		case entry.StatusCode >= 400 && entry.StatusCode < 500:
			statusCodes["4xx Client Error"]++
		case entry.StatusCode >= 500:
			statusCodes["5xx Server Error"]++
		}
		responseTimeSum[entry.Path] += entry.ResponseTime
		responseCount[entry.Path]++
	}

	avgResponseTimes := make(map[string]int64)
	for path, total := range responseTimeSum {
		avgResponseTimes[path] = total.Milliseconds() / int64(responseCount[path])
	}

	recentErrors := make([]RequestLogEntry, 0)
	for i := len(filtered) - 1; i >= 0 && len(recentErrors) < 10; i-- {
		if filtered[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filtered[i])
		}
	}

	return DashboardData{
		Endpoints:        endpoints,
		StatusCodes:      statusCodes,
		AvgResponseTimes: avgResponseTimes,
		RecentErrors:     recentErrors,
	}
}
