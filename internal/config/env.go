package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required for the AI assistant
	GeminiAPIKey string

	// Required for Google sign-in
	GoogleClientID     string
	GoogleClientSecret string

	// Optional with defaults
	DBPath      string
	HTTPPort    int
	BaseURL     string
	FrontendURL string
	GeminiModel string

	// Email notifications (optional)
	ResendAPIKey string
	EmailFrom    string
}

func LoadFromEnv() *Config {
	cfg := &Config{
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		DBPath:      getEnvOrDefault("EVENTSYNC_DB_PATH", "./eventsync.db"),
		HTTPPort:    getEnvAsIntOrDefault("EVENTSYNC_HTTP_PORT", 3001),
		BaseURL:     getEnvOrDefault("EVENTSYNC_BASE_URL", "http://localhost:3001"),
		FrontendURL: getEnvOrDefault("EVENTSYNC_FRONTEND_URL", "http://localhost:5173"),
		GeminiModel: getEnvOrDefault("EVENTSYNC_GEMINI_MODEL", "gemini-2.0-flash"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnvOrDefault("EVENTSYNC_EMAIL_FROM", "EventSync <noreply@eventsync.app>"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
