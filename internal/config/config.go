package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	// Server
	Port            int
	Environment     string
	ShutdownTimeout time.Duration

	// Database
	StoreDriver         string
	DatabaseURL         string
	DBMaxConnections    int
	DBConnectionTimeout time.Duration

	// Display
	CurrencySymbol string

	// S3 export archive
	ExportBucket           string
	S3Region               string
	AWSEndpoint            string // For LocalStack in development
	ExportURLExpiryMinutes int
}

// LoadFromEnv reads configuration from environment variables and, when
// PAYLEDGER_CONFIG names one, a config file. Environment wins over the file.
func LoadFromEnv() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("environment", "development")
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("store_driver", DriverPostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("db_max_connections", 5)
	v.SetDefault("db_connection_timeout", 30*time.Second)
	v.SetDefault("currency_symbol", "$")
	v.SetDefault("export_bucket", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("aws_endpoint", "")
	v.SetDefault("export_url_expiry_minutes", 15)

	if path := os.Getenv("PAYLEDGER_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Port:                   v.GetInt("port"),
		Environment:            v.GetString("environment"),
		ShutdownTimeout:        v.GetDuration("shutdown_timeout"),
		StoreDriver:            strings.ToLower(v.GetString("store_driver")),
		DatabaseURL:            v.GetString("database_url"),
		DBMaxConnections:       v.GetInt("db_max_connections"),
		DBConnectionTimeout:    v.GetDuration("db_connection_timeout"),
		CurrencySymbol:         v.GetString("currency_symbol"),
		ExportBucket:           v.GetString("export_bucket"),
		S3Region:               v.GetString("s3_region"),
		AWSEndpoint:            v.GetString("aws_endpoint"),
		ExportURLExpiryMinutes: v.GetInt("export_url_expiry_minutes"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.StoreDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.DBMaxConnections <= 0 {
		return fmt.Errorf("DB_MAX_CONNECTIONS must be positive")
	}
	if c.ExportURLExpiryMinutes <= 0 {
		return fmt.Errorf("EXPORT_URL_EXPIRY_MINUTES must be positive")
	}
	return nil
}

// ExportsEnabled reports whether an S3 bucket is configured for register exports.
func (c *Config) ExportsEnabled() bool {
	return c.ExportBucket != ""
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
