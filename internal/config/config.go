package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port             string
	AllowedOrigins   []string
	LogLevel         string
	Environment      string
	DatabaseURL      string
	DatabaseSSLCA    string
	RedisURL         string
	AnalyticsAPIKey  string
	TelegramBotToken string
	TelegramChatID   string
	ContactRelayURL  string
	GeminiAPIKey     string
	RetentionDays    int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Environment:      getEnv("ENVIRONMENT", "production"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseSSLCA:    getEnv("DATABASE_SSL_CA", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		AnalyticsAPIKey:  getEnv("ANALYTICS_API_KEY", ""),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		ContactRelayURL:  getEnv("CONTACT_RELAY_URL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		RetentionDays:    getIntEnv("RETENTION_DAYS", 90),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
