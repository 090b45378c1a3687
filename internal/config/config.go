package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	// DBDriver selects the store implementation: "sqlite" or "postgres".
	DBDriver    string
	SQLitePath  string
	PostgresURL string

	JWTSecret          string
	AccessTokenMinutes int
	EncryptKey         string
	LegacyEncryptKeys  []string

	CORSOrigins []string
	Debug       bool

	// Rate limiting for the message-send path, per authenticated caller.
	SendRateLimit  int
	SendRateWindow time.Duration

	// Buffer size of the fan-out notifier queue.
	NotifyQueueSize int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppName: getEnv("APP_NAME", "Messenger API"),
		Env:     getEnv("APP_ENV", "development"),
		Host:    getEnv("HTTP_HOST", "0.0.0.0"),
		Port:    getEnvAsInt("HTTP_PORT", 8000),

		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		SQLitePath:  getEnv("SQLITE_PATH", "messenger.db"),
		PostgresURL: postgresURLFromEnv(),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),
		EncryptKey:         os.Getenv("ENCRYPTION_KEY"),
		LegacyEncryptKeys:  splitAndTrim(os.Getenv("LEGACY_ENCRYPTION_KEYS")),

		Debug: getEnvAsBool("DEBUG", true),

		SendRateLimit:   getEnvAsInt("SEND_RATE_LIMIT", 30),
		SendRateWindow:  time.Duration(getEnvAsInt("SEND_RATE_WINDOW_SECONDS", 60)) * time.Second,
		NotifyQueueSize: getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
	}

	if origins := splitAndTrim(os.Getenv("CORS_ORIGINS")); len(origins) > 0 {
		cfg.CORSOrigins = origins
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EncryptKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func postgresURLFromEnv() string {
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		return raw
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "postgres"), getEnv("POSTGRES_PASSWORD", "postgres")),
		Host:     fmt.Sprintf("%s:%s", getEnv("POSTGRES_HOST", "localhost"), getEnv("POSTGRES_PORT", "5432")),
		Path:     getEnv("POSTGRES_DB", "messenger"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
