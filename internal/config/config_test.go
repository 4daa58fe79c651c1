package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 環境変数をクリア
	envVars := []string{
		"PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"STORAGE_PATH",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"CALENDAR_BACKEND", "CALENDAR_PLATFORM", "CALENDAR_TIMEZONE", "CALENDAR_LOCATION",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_EVENTS_URL", "GOOGLE_TOKEN_TTL",
	}
	for _, env := range envVars {
		os.Unsetenv(env)
	}

	cfg := Load()

	// Server defaults
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)

	// Storage defaults
	assert.Equal(t, "maintenance.db", cfg.Storage.Path)

	// Redis defaults（ホスト未設定なら無効）
	assert.Equal(t, "", cfg.Redis.Host)
	assert.False(t, cfg.Redis.Enabled())

	// Calendar defaults
	assert.Equal(t, "auto", cfg.Calendar.Backend)
	assert.NotEmpty(t, cfg.Calendar.Platform)
	assert.Equal(t, "UTC", cfg.Calendar.TimeZone)
	assert.Equal(t, "Rouen", cfg.Calendar.Location)

	// Google defaults
	assert.Equal(t, "https://www.googleapis.com/calendar/v3/calendars/primary/events", cfg.Google.EventsURL)
	assert.Equal(t, 55*time.Minute, cfg.Google.TokenTTL)
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("SERVER_READ_TIMEOUT", "60s")
	os.Setenv("STORAGE_PATH", "/var/lib/maintenance/events.db")
	os.Setenv("REDIS_HOST", "redis.example.com")
	os.Setenv("REDIS_PORT", "6380")
	os.Setenv("REDIS_DB", "1")
	os.Setenv("CALENDAR_BACKEND", "native")
	os.Setenv("CALENDAR_PLATFORM", "android")
	os.Setenv("CALENDAR_TIMEZONE", "Europe/Paris")
	os.Setenv("GOOGLE_CLIENT_ID", "client-123")
	defer func() {
		for _, env := range []string{
			"PORT", "SERVER_READ_TIMEOUT", "STORAGE_PATH",
			"REDIS_HOST", "REDIS_PORT", "REDIS_DB",
			"CALENDAR_BACKEND", "CALENDAR_PLATFORM", "CALENDAR_TIMEZONE",
			"GOOGLE_CLIENT_ID",
		} {
			os.Unsetenv(env)
		}
	}()

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/var/lib/maintenance/events.db", cfg.Storage.Path)
	assert.Equal(t, "redis.example.com", cfg.Redis.Host)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis.example.com:6380", cfg.Redis.Addr())
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, "native", cfg.Calendar.Backend)
	assert.Equal(t, "android", cfg.Calendar.Platform)
	assert.Equal(t, "Europe/Paris", cfg.Calendar.TimeZone)
	assert.Equal(t, "client-123", cfg.Google.ClientID)
}

func TestStorageConfig_DSN(t *testing.T) {
	t.Run("通常のファイルパス", func(t *testing.T) {
		cfg := &StorageConfig{Path: "maintenance.db"}
		assert.Equal(t, "file:maintenance.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DSN())
	})

	t.Run("インメモリはそのまま", func(t *testing.T) {
		cfg := &StorageConfig{Path: ":memory:"}
		assert.Equal(t, ":memory:", cfg.DSN())
	})
}

func TestLoad_InvalidDuration(t *testing.T) {
	os.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")
	defer os.Unsetenv("SERVER_READ_TIMEOUT")

	cfg := Load()

	// 不正な値はデフォルトにフォールバック
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}
