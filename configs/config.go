package config

import (
	"os"
)

// Config holds the application configuration
type Config struct {
	Port        string
	ModelPath   string
	HistoryPath string
	PlotsDir    string
	LogLevel    string
	APIKey      string
	Environment string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		ModelPath:   getEnv("MODEL_PATH", "models/modelo_demanda_v1.json"),
		HistoryPath: getEnv("HISTORY_PATH", "data/history.csv"),
		PlotsDir:    getEnv("PLOTS_DIR", "outputs/plots"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		APIKey:      getEnv("API_KEY", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
