package config

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Calendar CalendarConfig
	Google   GoogleConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig はローカル永続化（SQLite）の設定
type StorageConfig struct {
	Path string
}

// RedisConfig はRedis設定（アクセストークンキャッシュ用、ホスト未設定なら無効）
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CalendarConfig はカレンダーバックエンドの選択設定
type CalendarConfig struct {
	// Backend は "auto" / "google" / "native" のいずれか
	Backend string
	// Platform は実行プラットフォーム（既定は runtime.GOOS）
	Platform string
	// TimeZone は外部カレンダーに渡すIANAタイムゾーン名
	TimeZone string
	// Location は端末カレンダーの予定に付ける固定の場所ラベル
	Location string
}

// GoogleConfig はGoogle Calendar連携の設定
type GoogleConfig struct {
	ClientID      string
	ClientSecret  string
	EventsURL     string
	AuthURL       string
	TokenURL      string
	DeviceAuthURL string
	RevokeURL     string
	TokenTTL      time.Duration
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Path: getEnv("STORAGE_PATH", "maintenance.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Calendar: CalendarConfig{
			Backend:  getEnv("CALENDAR_BACKEND", "auto"),
			Platform: getEnv("CALENDAR_PLATFORM", runtime.GOOS),
			TimeZone: getEnv("CALENDAR_TIMEZONE", "UTC"),
			Location: getEnv("CALENDAR_LOCATION", "Rouen"),
		},
		Google: GoogleConfig{
			ClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
			EventsURL:     getEnv("GOOGLE_EVENTS_URL", "https://www.googleapis.com/calendar/v3/calendars/primary/events"),
			AuthURL:       getEnv("GOOGLE_AUTH_URL", "https://accounts.google.com/o/oauth2/auth"),
			TokenURL:      getEnv("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			DeviceAuthURL: getEnv("GOOGLE_DEVICE_AUTH_URL", "https://oauth2.googleapis.com/device/code"),
			RevokeURL:     getEnv("GOOGLE_REVOKE_URL", "https://oauth2.googleapis.com/revoke"),
			TokenTTL:      getDurationEnv("GOOGLE_TOKEN_TTL", 55*time.Minute),
		},
	}
}

// DSN はSQLite接続文字列を返す
func (c *StorageConfig) DSN() string {
	if c.Path == ":memory:" {
		return c.Path
	}
	return "file:" + c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Enabled はRedisが設定されているかを返す
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
