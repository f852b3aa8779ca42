package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    string

	// ViewConfigPath points to the optional YAML file with calendar
	// display preferences (see view.go). Empty means built-in defaults.
	ViewConfigPath string

	// AssistantURL/AssistantKey configure the natural-language event
	// parser endpoint. Empty AssistantURL disables the feature.
	AssistantURL string
	AssistantKey string

	// TelegramToken/TelegramChatID configure the session reminder
	// notifier. Empty token disables it.
	TelegramToken  string
	TelegramChatID int64

	// DigestCron is the cron expression for the daily agenda digest.
	DigestCron string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		ViewConfigPath: os.Getenv("VIEW_CONFIG_PATH"),
		AssistantURL:   os.Getenv("ASSISTANT_URL"),
		AssistantKey:   os.Getenv("ASSISTANT_API_KEY"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DigestCron:     getEnvOrDefault("DIGEST_CRON", "0 7 * * *"),
	}

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &cfg.TelegramChatID); err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
