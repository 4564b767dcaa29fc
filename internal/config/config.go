// Package config provides configuration management for the sale process
// service. It loads settings from environment variables with the SALEFLOW_
// prefix and provides sensible defaults for all configuration options.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration settings for the saleflow service.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Security SecurityConfig
	Audit    AuditConfig
	Catalog  CatalogConfig
	Breaker  BreakerConfig
	Engine   EngineConfig
	Backup   BackupConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 7373)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to the sqlite data directory (default: ./data)
	PostgresDSN   string // PostgreSQL connection string (used when engine is postgres)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token
}

// AuditConfig contains transition audit settings.
type AuditConfig struct {
	// Policy is "best_effort" (audit write failures never block a
	// transition) or "strict" (they are surfaced to the caller).
	Policy string
}

// CatalogConfig contains stage catalog settings.
type CatalogConfig struct {
	// Path points to a YAML catalog override file. Empty means the built-in
	// Portuguese pipeline.
	Path string
}

// BreakerConfig contains persistence circuit breaker settings.
type BreakerConfig struct {
	Enabled     bool          // Wrap the process store in a circuit breaker (default: true)
	MaxFailures int           // Consecutive failures before the circuit trips (default: 3)
	Timeout     time.Duration // Open-state duration before half-open probes (default: 30s)
}

// EngineConfig contains state machine engine settings.
type EngineConfig struct {
	CommitTimeout time.Duration // Per-commit timeout (default: 5s)
}

// BackupConfig contains automated database backup settings. Backups only
// apply to the sqlite storage engine.
type BackupConfig struct {
	Enabled  bool          // Run scheduled backups (default: false)
	Dir      string        // Backup directory (default: {DataPath}/backups)
	Interval time.Duration // Time between backups (default: 1h)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the SALEFLOW_ prefix.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("SALEFLOW_PORT", 7373),
			Host: getEnv("SALEFLOW_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("SALEFLOW_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("SALEFLOW_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("SALEFLOW_POSTGRES_DSN", ""),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("SALEFLOW_SECURITY_MODE", "development"),
			APIToken:     getEnv("SALEFLOW_API_TOKEN", ""),
		},
		Audit: AuditConfig{
			Policy: getEnv("SALEFLOW_AUDIT_POLICY", "best_effort"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("SALEFLOW_CATALOG_PATH", ""),
		},
		Breaker: BreakerConfig{
			Enabled:     getEnvBool("SALEFLOW_BREAKER_ENABLED", true),
			MaxFailures: getEnvInt("SALEFLOW_BREAKER_MAX_FAILURES", 3),
			Timeout:     getEnvDuration("SALEFLOW_BREAKER_TIMEOUT", 30*time.Second),
		},
		Engine: EngineConfig{
			CommitTimeout: getEnvDuration("SALEFLOW_COMMIT_TIMEOUT", 5*time.Second),
		},
		Backup: BackupConfig{
			Enabled:  getEnvBool("SALEFLOW_BACKUP_ENABLED", false),
			Dir:      getEnv("SALEFLOW_BACKUP_DIR", ""),
			Interval: getEnvDuration("SALEFLOW_BACKUP_INTERVAL", time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.StorageEngine {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown storage engine %q", c.Storage.StorageEngine)
	}

	if c.Storage.StorageEngine == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("config: SALEFLOW_POSTGRES_DSN is required when the storage engine is postgres")
	}

	switch c.Audit.Policy {
	case "best_effort", "strict":
	default:
		return fmt.Errorf("config: unknown audit policy %q", c.Audit.Policy)
	}

	return nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as an
// integer, it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. It recognizes "true", "1", "yes" as true and "false", "0", "no" as
// false (case-insensitive).
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "30s") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
