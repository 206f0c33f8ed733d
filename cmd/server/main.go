package main

import (
	"net/http"
	"os"
	"strings"

	config "demand-forecast-api/configs"
	"demand-forecast-api/pkg/handlers"
	"demand-forecast-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Not fatal: production deployments configure the environment
		// directly.
		bootLogger := zerolog.New(os.Stdout)
		bootLogger.Warn().Err(err).Msg(".env file not found or could not be loaded")
	}

	cfg := config.LoadConfig()
	logger := newLogger(cfg.LogLevel)

	// Startup barrier: the model must be loaded before the API accepts
	// traffic. A broken artifact means the process refuses to serve.
	modelService := services.NewModelService(cfg.ModelPath, logger)
	if err := modelService.Load(); err != nil {
		logger.Fatal().Err(err).Msg("model load failed, refusing to serve")
	}

	predictionService := services.NewPredictionService(modelService, logger)
	historyStore := services.NewFileHistoryStore(cfg.HistoryPath, logger)
	reportService := services.NewReportService(historyStore, cfg.PlotsDir, logger)
	monitoringService := services.NewMonitoringService(logger)

	predictionHandler := handlers.NewPredictionHandler(predictionService)
	reportHandler := handlers.NewReportHandler(reportService)
	modelHandler := handlers.NewModelHandler(modelService)
	healthHandler := handlers.NewHealthHandler(modelService)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.Default())

	authMiddleware := func(apiKey string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if apiKey == "" {
				c.Next()
				return
			}
			if c.GetHeader("X-API-KEY") != apiKey {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		}
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Demand Forecast API",
			"endpoints": []string{
				"/health",
				"/predict (POST)",
				"/model/version",
				"/model/reload (POST)",
				"/reports/detail?rows=N",
				"/reports/season",
				"/plots",
				"/monitoring/dashboard",
				"/monitoring/logs",
			},
		})
	})

	r.GET("/health", healthHandler.HealthCheck)
	r.POST("/predict", authMiddleware(cfg.APIKey), predictionHandler.Predict)

	model := r.Group("/model")
	{
		model.GET("/version", modelHandler.GetVersion)
		model.POST("/reload", authMiddleware(cfg.APIKey), modelHandler.Reload)
	}

	reports := r.Group("/reports")
	{
		reports.GET("/detail", reportHandler.GetDetail)
		reports.GET("/season", reportHandler.GetSeason)
	}

	r.GET("/plots", reportHandler.GetPlots)

	admin := r.Group("/admin", authMiddleware(cfg.APIKey))
	{
		admin.POST("/maintenance/start", healthHandler.StartMaintenance)
		admin.POST("/maintenance/stop", healthHandler.StopMaintenance)
	}

	monitoring := r.Group("/monitoring")
	{
		monitoring.GET("/dashboard", monitoringHandler.GetDashboard)
		monitoring.GET("/logs", monitoringHandler.GetLogs)
	}

	logger.Info().Str("port", cfg.Port).Msg("starting demand forecast server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

// newLogger builds the process logger. LOG_LEVEL is case-insensitive and
// falls back to info when unset or invalid.
func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(parsed).With().Timestamp().Logger()
}
