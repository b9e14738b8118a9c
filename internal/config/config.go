package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Session (signed cookie)
	SessionSecret string
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool

	// Bootstrap admin
	AdminUsername string
	AdminPassword string

	// Server
	Port           string
	CORSOrigins    string
	RequestTimeout time.Duration
	LoginRateLimit int

	// Logging
	LogFormat    string
	LogLevel     string
	LogRetention time.Duration

	// Error tracking
	SentryDSN string
	AppEnv    string
}

var defaults = map[string]any{
	"DB_DRIVER":        "postgres",
	"DB_HOST":          "localhost",
	"DB_PORT":          "5432",
	"DB_USER":          "postgres",
	"DB_PASSWORD":      "",
	"DB_NAME":          "agency_portal",
	"DB_SSLMODE":       "disable",
	"SQLITE_PATH":      "data/portal.db",
	"SESSION_SECRET":   "",
	"SESSION_TTL":      "24h",
	"SESSION_COOKIE":   "portal_session",
	"COOKIE_SECURE":    false,
	"ADMIN_USERNAME":   "",
	"ADMIN_PASSWORD":   "",
	"PORT":             "8080",
	"CORS_ORIGINS":     "*",
	"REQUEST_TIMEOUT":  "10s",
	"LOGIN_RATE_LIMIT": 10,
	"LOG_FORMAT":       "json",
	"LOG_LEVEL":        "info",
	"LOG_RETENTION":    "720h",
	"SENTRY_DSN":       "",
	"APP_ENV":          "development",
}

// Load reads configuration from the environment, optionally layered over
// the file named by CONFIG_FILE.
func Load() *Config {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		_ = v.ReadInConfig()
	}

	return &Config{
		DBDriver:   v.GetString("DB_DRIVER"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		SessionSecret: v.GetString("SESSION_SECRET"),
		SessionTTL:    parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		SessionCookie: v.GetString("SESSION_COOKIE"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),

		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),

		Port:           v.GetString("PORT"),
		CORSOrigins:    v.GetString("CORS_ORIGINS"),
		RequestTimeout: parseDuration(v.GetString("REQUEST_TIMEOUT"), 10*time.Second),
		LoginRateLimit: v.GetInt("LOGIN_RATE_LIMIT"),

		LogFormat:    v.GetString("LOG_FORMAT"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogRetention: parseDuration(v.GetString("LOG_RETENTION"), 30*24*time.Hour),

		SentryDSN: v.GetString("SENTRY_DSN"),
		AppEnv:    v.GetString("APP_ENV"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// SQLiteDSN enables foreign keys and a busy timeout on every pooled connection.
func (c *Config) SQLiteDSN() string {
	return c.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}

func (c *Config) UsesSQLite() bool {
	return c.DBDriver == "sqlite"
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
