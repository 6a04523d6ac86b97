// Package config loads chatline settings from the environment and sets up logging.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds all configuration values.
type Config struct {
	// Conversation service
	ServerURL     string
	UserID        string
	ClientTimeout time.Duration // zero means requests never time out

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		ServerURL:     getEnv("CHATLINE_SERVER_URL", "http://localhost:8000"),
		UserID:        getEnv("CHATLINE_USER_ID", "1"),
		ClientTimeout: parseDuration(getEnv("CHATLINE_CLIENT_TIMEOUT", "")),

		LogFile:  getEnv("CHATLINE_LOG_FILE", "/tmp/chatline.log"),
		LogLevel: parseLogLevel(getEnv("CHATLINE_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration returns zero for empty or invalid values.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
