package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

const (
	BackendSQL  = "sql"
	BackendREST = "rest"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "realty.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTAccessTTL     = "24h"
	defaultLeadRelayTimeout = "10s"
	defaultSessionIdleTTL   = "2h"
	defaultShutdownTimeout  = "10s"
	defaultStoplist         = "brasília,brasilia,df,distrito federal"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL   string
	RemoteBackend string
	RemoteURL     string
	RemoteAnonKey string

	JWTSecret       string
	JWTAccessTTL    time.Duration
	AuthAutoConfirm bool
	AdminEmails     []string

	LeadRelayURL     string
	LeadRelayTimeout time.Duration

	CORSAllowedOrigins  []string
	SessionIdleTTL      time.Duration
	QuickFilterStoplist []string

	RedisAddr     string
	RedisPassword string

	ShutdownTimeout time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.RemoteBackend = strings.ToLower(strings.TrimSpace(getEnv("REMOTE_BACKEND", BackendSQL)))
	cfg.RemoteURL = strings.TrimSpace(os.Getenv("REMOTE_URL"))
	cfg.RemoteAnonKey = strings.TrimSpace(os.Getenv("REMOTE_ANON_KEY"))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	autoConfirmDefault := "true"
	if isProdLike(cfg.AppEnv) {
		autoConfirmDefault = "false"
	}
	cfg.AuthAutoConfirm = parseBoolEnv("AUTH_AUTO_CONFIRM", autoConfirmDefault)
	cfg.AdminEmails = parseListEnv("ADMIN_EMAILS", "")
	for i, e := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(e)
	}

	cfg.LeadRelayURL = strings.TrimSpace(os.Getenv("LEAD_RELAY_URL"))
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS", "")
	cfg.QuickFilterStoplist = parseListEnv("QUICK_FILTER_STOPLIST", defaultStoplist)
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	var err error
	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL); err != nil {
		return nil, err
	}
	if cfg.LeadRelayTimeout, err = parseDurationEnv("LEAD_RELAY_TIMEOUT", defaultLeadRelayTimeout); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = parseDurationEnv("SESSION_IDLE_TTL", defaultSessionIdleTTL); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	glog.Infof("config: env=%s backend=%s addr=%s admins=%d relay=%t redis=%t",
		cfg.AppEnv, cfg.RemoteBackend, cfg.HTTPAddr, len(cfg.AdminEmails), cfg.LeadRelayURL != "", cfg.RedisAddr != "")

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.RemoteBackend {
	case BackendSQL:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must not be empty")
		}
	case BackendREST:
		if cfg.RemoteURL == "" || cfg.RemoteAnonKey == "" {
			return fmt.Errorf("REMOTE_URL and REMOTE_ANON_KEY are required when REMOTE_BACKEND=rest")
		}
	default:
		return fmt.Errorf("REMOTE_BACKEND must be one of: sql, rest")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.LeadRelayTimeout <= 0 {
		return fmt.Errorf("LEAD_RELAY_TIMEOUT must be > 0")
	}
	if cfg.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if cfg.RemoteBackend == BackendSQL && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if len(cfg.AdminEmails) == 0 {
			return fmt.Errorf("in prod/release ADMIN_EMAILS must list at least one address")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

// parseListEnv splits a comma separated value, dropping empty items.
func parseListEnv(name, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(name, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
