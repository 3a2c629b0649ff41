package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbukum/authkit/component"
	"github.com/kbukum/authkit/logger"
)

// Config configures the pgx pool behind the repository.
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
	// Migrate applies Schema on Start.
	Migrate bool `mapstructure:"migrate"`
}

// Validate checks the configuration. A disabled config is always valid.
func (c *Config) Validate() error {
	if c.Enabled && c.DSN == "" {
		return fmt.Errorf("postgres.dsn is required when postgres is enabled")
	}
	return nil
}

// Component owns the pool and the repository on top of it.
type Component struct {
	cfg  Config
	log  *logger.Logger
	pool *pgxpool.Pool
	repo *Repository
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a postgres component for the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	return &Component{cfg: cfg, log: log.WithComponent("postgres")}
}

// Name returns the component name.
func (c *Component) Name() string { return "postgres" }

// Repository returns the repository, or nil before Start.
func (c *Component) Repository() *Repository { return c.repo }

// Start opens the pool and optionally applies the schema.
func (c *Component) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	pool, err := Connect(ctx, c.cfg.DSN)
	if err != nil {
		return err
	}
	repo := New(pool)
	if c.cfg.Migrate {
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return err
		}
	}
	c.pool, c.repo = pool, repo
	c.log.Info("postgres connected", logger.Fields("migrate", c.cfg.Migrate))
	return nil
}

// Stop closes the pool.
func (c *Component) Stop(_ context.Context) error {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
	return nil
}

// Health pings the pool.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.pool == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "postgres not connected"}
	}
	if err := c.pool.Ping(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}
