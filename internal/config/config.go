package config

import (
	"encoding/json"
	"os"
	"time"
)

// Supported SCHEMADOC_STORE_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the process-level configuration for schemadoc.
// Values are loaded from environment variables. Notification channels
// and monitored databases live in the settings file instead, because
// they are editable at runtime; see LoadSettings.
type Config struct {
	StoreDriver string `json:"store_driver"`
	StoreDSN    string `json:"store_dsn"`
	HTTPAddr    string `json:"http_addr"`
	MetricsAddr string `json:"metrics_addr,omitempty"`
	RedisAddr   string `json:"redis_addr,omitempty"`
	ConfigFile  string `json:"config_file"`
	DocsDir     string `json:"docs_dir"`

	SchedulerTick    time.Duration `json:"-"`
	SchedulerTickStr string        `json:"scheduler_tick"`

	HTTPTimeout    time.Duration `json:"-"`
	HTTPTimeoutStr string        `json:"http_timeout"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	cfg := Config{
		StoreDriver:      os.Getenv("SCHEMADOC_STORE_DRIVER"),
		StoreDSN:         os.Getenv("SCHEMADOC_STORE_DSN"),
		HTTPAddr:         os.Getenv("SCHEMADOC_HTTP_ADDR"),
		MetricsAddr:      os.Getenv("SCHEMADOC_METRICS_ADDR"),
		RedisAddr:        os.Getenv("SCHEMADOC_REDIS_ADDR"),
		ConfigFile:       os.Getenv("SCHEMADOC_CONFIG_FILE"),
		DocsDir:          os.Getenv("SCHEMADOC_DOCS_DIR"),
		SchedulerTickStr: os.Getenv("SCHEMADOC_SCHEDULER_TICK"),
		HTTPTimeoutStr:   os.Getenv("SCHEMADOC_HTTP_TIMEOUT"),
	}

	if cfg.StoreDriver == "" {
		cfg.StoreDriver = DriverSQLite
	}
	// A postgres DSN has no sensible default; Validate reports it missing.
	if cfg.StoreDSN == "" && cfg.StoreDriver == DriverSQLite {
		cfg.StoreDSN = "schemadoc.db"
	}

	// Support the PORT variable common on container platforms as a
	// fallback for SCHEMADOC_HTTP_ADDR.
	if cfg.HTTPAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTPAddr = ":" + port
		} else {
			cfg.HTTPAddr = ":8080"
		}
	}
	if cfg.ConfigFile == "" {
		cfg.ConfigFile = "schemadoc.json"
	}
	if cfg.DocsDir == "" {
		cfg.DocsDir = "docs-output"
	}
	if cfg.SchedulerTickStr == "" {
		cfg.SchedulerTickStr = "1m"
	}
	if cfg.HTTPTimeoutStr == "" {
		cfg.HTTPTimeoutStr = "15s"
	}

	// Parse durations; validation is handled separately by Validate().
	if d, err := time.ParseDuration(cfg.SchedulerTickStr); err == nil {
		cfg.SchedulerTick = d
	}
	if d, err := time.ParseDuration(cfg.HTTPTimeoutStr); err == nil {
		cfg.HTTPTimeout = d
	}

	return cfg
}

// MaskedJSON returns the configuration as JSON with secrets masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := struct {
		StoreDriver   string `json:"store_driver"`
		StoreDSN      string `json:"store_dsn"`
		HTTPAddr      string `json:"http_addr"`
		MetricsAddr   string `json:"metrics_addr,omitempty"`
		RedisAddr     string `json:"redis_addr,omitempty"`
		ConfigFile    string `json:"config_file"`
		DocsDir       string `json:"docs_dir"`
		SchedulerTick string `json:"scheduler_tick"`
		HTTPTimeout   string `json:"http_timeout"`
	}{
		StoreDriver:   c.StoreDriver,
		StoreDSN:      c.StoreDSN,
		HTTPAddr:      c.HTTPAddr,
		MetricsAddr:   c.MetricsAddr,
		RedisAddr:     c.RedisAddr,
		ConfigFile:    c.ConfigFile,
		DocsDir:       c.DocsDir,
		SchedulerTick: c.SchedulerTickStr,
		HTTPTimeout:   c.HTTPTimeoutStr,
	}
	// A sqlite DSN is a file path; only server DSNs can embed credentials.
	if c.StoreDriver != DriverSQLite {
		masked.StoreDSN = maskSecret(c.StoreDSN)
	}
	return json.MarshalIndent(masked, "", "  ")
}

// maskSecret masks a secret value, preserving only the URI scheme if present.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if len(s) >= len(scheme) && s[:len(scheme)] == scheme {
			return scheme + "***"
		}
	}
	return "***"
}
