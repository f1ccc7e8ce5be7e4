package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the daylist service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowAnyOrigin   bool

	DatabaseURL     string
	TasksCollection string

	AuthBaseURL      string
	AuthPollInterval time.Duration
	LoginPath        string
	LocalUserID      string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "daylist"),
		AllowAnyOrigin:   false,
		DatabaseURL:      envTrimmed("DATABASE_URL"),
		TasksCollection:  envOrDefault("TASKS_COLLECTION", "todos"),
		AuthBaseURL:      envTrimmed("AUTH_BASE_URL"),
		LoginPath:        envOrDefault("APP_LOGIN_PATH", "/login"),
		// Used only when no AUTH_BASE_URL is configured: the service runs
		// as a single pre-admitted local user.
		LocalUserID:      envOrDefault("APP_LOCAL_USER", "local"),
		ShutdownTimeout:  15 * time.Second,
		AuthPollInterval: 2 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AuthPollInterval, err = durationFromEnv("AUTH_POLL_INTERVAL", cfg.AuthPollInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.AuthPollInterval < 100*time.Millisecond {
		return Config{}, fmt.Errorf("AUTH_POLL_INTERVAL must be at least 100ms")
	}
	if !strings.HasPrefix(cfg.LoginPath, "/") {
		return Config{}, fmt.Errorf("APP_LOGIN_PATH must be an absolute path")
	}
	if strings.TrimSpace(cfg.TasksCollection) == "" {
		return Config{}, fmt.Errorf("TASKS_COLLECTION must not be blank")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
