package main

import (
	"fmt"
	"strings"

	"github.com/kbukum/authkit/config"
	"github.com/kbukum/authkit/database"
	"github.com/kbukum/authkit/observability"
	"github.com/kbukum/authkit/password"
	"github.com/kbukum/authkit/redis"
	"github.com/kbukum/authkit/server"
	"github.com/kbukum/authkit/settings"
	"github.com/kbukum/authkit/storage/postgres"
)

// Storage backends.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the authkitd configuration file shape.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Auth     settings.Config            `yaml:"auth" mapstructure:"auth"`
	Password password.Config            `yaml:"password" mapstructure:"password"`
	Storage  string                     `yaml:"storage" mapstructure:"storage"`
	Database database.Config            `yaml:"database" mapstructure:"database"`
	Postgres postgres.Config            `yaml:"postgres" mapstructure:"postgres"`
	Redis    redis.Config               `yaml:"redis" mapstructure:"redis"`
	Server   server.Config              `yaml:"server" mapstructure:"server"`
	Tracing  observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics  observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
	HTTP     HTTPConfig                 `yaml:"http" mapstructure:"http"`
}

// HTTPConfig configures the auth router.
type HTTPConfig struct {
	// Prefix is the route group the auth endpoints are mounted on.
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	// Async serves the routes from the suspending service variant.
	Async bool `yaml:"async" mapstructure:"async"`
}

// ApplyDefaults fills defaults for every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	c.Metrics.ApplyDefaults()
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Name
	}
	if c.Metrics.Environment == "" {
		c.Metrics.Environment = c.Environment
	}
	if c.Storage == "" {
		c.Storage = StorageSQLite
	}
	c.Storage = strings.ToLower(c.Storage)
	switch c.Storage {
	case StorageSQLite:
		c.Database.Enabled = true
		if c.Database.DSN == "" {
			c.Database.DSN = "authkit.db"
		}
	case StoragePostgres:
		c.Postgres.Enabled = true
	}
	if c.HTTP.Prefix == "" {
		c.HTTP.Prefix = "/auth"
	}
}

// Validate checks every section. The auth section is validated when it is
// converted to settings.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	switch c.Storage {
	case StorageSQLite, StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("storage must be one of sqlite, postgres, memory (got: %s)", c.Storage)
	}
	if err := c.Password.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Postgres.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if _, err := c.Auth.Settings(); err != nil {
		return err
	}
	return nil
}
