// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// ServiceName is used for logs, traces, and metrics labels.
	ServiceName string `mapstructure:"SERVICE_NAME"`
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret signs access tokens (HS256). Required before serving traffic.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTRefreshSecret signs refresh tokens (HS256). Required before serving traffic.
	JWTRefreshSecret string `mapstructure:"JWT_REFRESH_SECRET"`
	// JWTIssuer is the iss claim set on and required from every token.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTLShort is the refresh token lifetime for a normal login (e.g. "168h").
	JWTRefreshTTLShort string `mapstructure:"JWT_REFRESH_TTL_SHORT"`
	// JWTRefreshTTLLong is the refresh token lifetime for a remember-me login (e.g. "720h").
	JWTRefreshTTLLong string `mapstructure:"JWT_REFRESH_TTL_LONG"`
	// BcryptCost is the bcrypt cost factor for password hashes (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	// Cookies are marked Secure when Env is production.
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the zerolog level (trace, debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// TracingEnabled turns on the OTLP trace exporter.
	TracingEnabled bool `mapstructure:"TRACING_ENABLED"`
	// TracingEndpoint is the OTLP HTTP collector endpoint (host:port).
	TracingEndpoint string `mapstructure:"TRACING_ENDPOINT"`
	// ShutdownTimeout bounds graceful HTTP shutdown (e.g. "10s").
	ShutdownTimeout string `mapstructure:"SHUTDOWN_TIMEOUT"`
	// ReadinessDrainDelay is how long /ready fails before shutdown begins (e.g. "5s").
	ReadinessDrainDelay string `mapstructure:"READINESS_DRAIN_DELAY"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
// Signing secrets are not checked here; cmd/server calls ValidateSecrets before
// serving so that migrate and seed can run without them.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("SERVICE_NAME", "personnel-api")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_REFRESH_SECRET", "")
	v.SetDefault("JWT_ISSUER", "personnel-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL_SHORT", "168h") // 7d
	v.SetDefault("JWT_REFRESH_TTL_LONG", "720h")  // 30d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_ENDPOINT", "localhost:4318")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("READINESS_DRAIN_DELAY", "0s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// ValidateSecrets ensures the token signing secrets are present. The server
// must refuse to start without them; there is no fallback secret.
func (c *Config) ValidateSecrets() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.JWTRefreshSecret == "" {
		return errors.New("config: JWT_REFRESH_SECRET must be set")
	}
	return nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWTAccessTTL, 15*time.Minute)
}

// RefreshTTLShort parses JWTRefreshTTLShort. Returns 168h if unset or invalid.
func (c *Config) RefreshTTLShort() time.Duration {
	return parseDuration(c.JWTRefreshTTLShort, 168*time.Hour)
}

// RefreshTTLLong parses JWTRefreshTTLLong. Returns 720h if unset or invalid.
func (c *Config) RefreshTTLLong() time.Duration {
	return parseDuration(c.JWTRefreshTTLLong, 720*time.Hour)
}

// ShutdownTimeoutDuration parses ShutdownTimeout. Returns 10s if unset or invalid.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(c.ShutdownTimeout, 10*time.Second)
}

// ReadinessDrainDelayDuration parses ReadinessDrainDelay. Returns 0 if unset or invalid.
func (c *Config) ReadinessDrainDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.ReadinessDrainDelay)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
