// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	GeminiAPIKey string
	GeminiModel  string

	RateLimit RateLimitConfig
	Agent     AgentConfig
	AuditLog  AuditLogConfig
}

// RateLimitConfig controls per-user agent request throttling.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// AgentConfig controls conversation context handling.
type AgentConfig struct {
	HistoryLimit     int
	SummaryThreshold int
	// SummaryRefreshEvery is how many new messages may accumulate before the
	// cached conversation summary is recomputed.
	SummaryRefreshEvery int
	SessionTTL          time.Duration
}

// AuditLogConfig controls NDJSON audit logging of agent queries.
type AuditLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("AUDIT_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		FrontendURL:  getEnv("FRONTEND_URL", ""),
		DBPath:       getEnv("DB_PATH", "./data/hirelane.db"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		RateLimit: RateLimitConfig{
			MaxRequests: getEnvInt("RATE_LIMIT_MAX_REQUESTS", 50),
			Window:      time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 3600)) * time.Second,
		},
		Agent: AgentConfig{
			HistoryLimit:        getEnvInt("AGENT_HISTORY_LIMIT", 12),
			SummaryThreshold:    getEnvInt("AGENT_SUMMARY_THRESHOLD", 6),
			SummaryRefreshEvery: getEnvInt("AGENT_SUMMARY_REFRESH_EVERY", 10),
			SessionTTL:          time.Duration(getEnvInt("AGENT_SESSION_TTL_MINUTES", 720)) * time.Minute,
		},
		AuditLog: AuditLogConfig{
			Enabled:   getEnvBool("AUDIT_LOG_ENABLED", true),
			Dir:       getEnv("AUDIT_LOG_DIR", "./data/logs/audit"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be > 0")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be > 0")
	}
	if c.Agent.HistoryLimit <= 0 {
		return fmt.Errorf("AGENT_HISTORY_LIMIT must be > 0")
	}
	if c.Agent.SummaryRefreshEvery <= 0 {
		return fmt.Errorf("AGENT_SUMMARY_REFRESH_EVERY must be > 0")
	}
	if c.AuditLog.Enabled && c.AuditLog.Dir == "" {
		return fmt.Errorf("AUDIT_LOG_DIR cannot be empty")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AIEnabled returns true when a completion service is configured.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
