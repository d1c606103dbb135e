package config

import (
	"fmt"
	"time"

	"github.com/trailhead/service-bookings/internal/platform/config"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// ServiceConfig holds all configuration for the bookings service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	StoreDriver string
	PageSize    int
	SessionTTL  time.Duration
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	KafkaConfig config.KafkaConfig
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("DB_NAME", "bookings")

	cfg := &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		StoreDriver: v.GetString("STORE_DRIVER"),
		PageSize:    v.GetInt("PAGE_SIZE"),
		SessionTTL:  v.GetDuration("SESSION_TTL"),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *ServiceConfig) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.PageSize < 1 || c.PageSize > 50 {
		return fmt.Errorf("page size must be between 1 and 50, got %d", c.PageSize)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session TTL must not be negative, got %s", c.SessionTTL)
	}
	if c.JWTConfig.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	return nil
}
