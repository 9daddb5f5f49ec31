package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	developmentBaseURL = "http://localhost:8000/api"
	productionBaseURL  = "https://business-system.onrender.com/api"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to a documented env var.
type Config struct {
	// Backend
	APIBaseURL            string `mapstructure:"API_BASE_URL"`
	Env                   string `mapstructure:"APP_ENV"`       // development | production
	FallbackMode          string `mapstructure:"FALLBACK_MODE"` // enabled | strict
	RequestTimeoutSeconds int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`

	// Session
	SessionBackend  string `mapstructure:"SESSION_BACKEND"` // memory | file | redis
	SessionFile     string `mapstructure:"SESSION_FILE"`
	RedisURL        string `mapstructure:"REDIS_URL"`
	SessionKey      string `mapstructure:"SESSION_KEY"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`

	// Circuit breaker
	BreakerFailureThreshold int `mapstructure:"BREAKER_FAILURE_THRESHOLD"`
	BreakerOpenSeconds      int `mapstructure:"BREAKER_OPEN_SECONDS"`

	// Console
	RefreshIntervalSeconds int    `mapstructure:"REFRESH_INTERVAL_SECONDS"`
	ReceiptStoragePath     string `mapstructure:"RECEIPT_STORAGE_PATH"`
	MetricsAddr            string `mapstructure:"METRICS_ADDR"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`

	// Dev backend
	DevPort            int    `mapstructure:"DEV_PORT"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	DevDisabledRoutes  string `mapstructure:"DEV_DISABLED_ROUTES"`

	// bcrypt hash shared by the seeded accounts; see cmd/genhash
	DevSeedPasswordHash string `mapstructure:"DEV_SEED_PASSWORD_HASH"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("FALLBACK_MODE", "enabled")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 10)
	v.SetDefault("SESSION_BACKEND", "file")
	v.SetDefault("SESSION_FILE", defaultSessionFile())
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("SESSION_KEY", "bizconsole:session")
	v.SetDefault("SESSION_TTL_HOURS", 8)
	v.SetDefault("BREAKER_FAILURE_THRESHOLD", 5)
	v.SetDefault("BREAKER_OPEN_SECONDS", 30)
	v.SetDefault("REFRESH_INTERVAL_SECONDS", 30)
	v.SetDefault("RECEIPT_STORAGE_PATH", "/tmp/bizconsole/receipts")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("DEV_PORT", 8000)
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_EXPIRATION_HOURS", 8)
	v.SetDefault("DEV_DISABLED_ROUTES", "reports,users")
	v.SetDefault("DEV_SEED_PASSWORD_HASH", "")

	// Optional .env file for local development, does not fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "bizconsole", "session.json")
	}
	return filepath.Join(home, ".bizconsole", "session.json")
}

// BaseURL resolves the explicit override, then the per-environment default.
func (c *Config) BaseURL() string {
	if u := strings.TrimSpace(c.APIBaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if strings.EqualFold(c.Env, "production") {
		return productionBaseURL
	}
	return developmentBaseURL
}

// FallbackEnabled reports whether 404s on reads are absorbed into synthesized data.
func (c *Config) FallbackEnabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.FallbackMode), "strict")
}

func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	if c.RefreshIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// DisabledRouteGroups returns the devserver route groups left undeployed.
func (c *Config) DisabledRouteGroups() map[string]bool {
	out := map[string]bool{}
	for _, g := range strings.Split(c.DevDisabledRoutes, ",") {
		if g = strings.TrimSpace(strings.ToLower(g)); g != "" {
			out[g] = true
		}
	}
	return out
}
