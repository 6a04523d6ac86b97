package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"CHATLINE_SERVER_URL", "CHATLINE_USER_ID", "CHATLINE_CLIENT_TIMEOUT",
		"CHATLINE_LOG_FILE", "CHATLINE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
	assert.Equal(t, "1", cfg.UserID)
	assert.Zero(t, cfg.ClientTimeout)
	assert.Equal(t, "/tmp/chatline.log", cfg.LogFile)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHATLINE_SERVER_URL", "http://chat:9000")
	t.Setenv("CHATLINE_USER_ID", "17")
	t.Setenv("CHATLINE_CLIENT_TIMEOUT", "30s")
	t.Setenv("CHATLINE_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "http://chat:9000", cfg.ServerURL)
	assert.Equal(t, "17", cfg.UserID)
	assert.Equal(t, 30*time.Second, cfg.ClientTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"0", 0},
		{"2m", 2 * time.Minute},
		{"bogus", 0},
		{"-5s", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDuration(tt.in))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("conversation started", "conversation_id", "42")

	assert.Contains(t, stderr.String(), "conversation started")
	assert.NotContains(t, stderr.String(), "hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &record))
	assert.Equal(t, "conversation started", record["msg"])
	assert.Equal(t, "42", record["conversation_id"])
}

func TestSetupFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatline.log")

	logger, cleanup := SetupFileLogger(path, slog.LevelDebug)
	logger.Debug("request completed", "op", "send_message")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"op":"send_message"`)
}

func TestSetupFileLoggerUnwritablePath(t *testing.T) {
	logger, cleanup := SetupFileLogger(filepath.Join(t.TempDir(), "missing", "x.log"), slog.LevelInfo)
	require.NotNil(t, logger)
	logger.Info("dropped")
	assert.NoError(t, cleanup())
}
