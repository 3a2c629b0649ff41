// Command authkitd serves the authkit HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kbukum/authkit/authn"
	"github.com/kbukum/authkit/bootstrap"
	"github.com/kbukum/authkit/config"
	"github.com/kbukum/authkit/database"
	"github.com/kbukum/authkit/httpapi"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/observability"
	"github.com/kbukum/authkit/password"
	"github.com/kbukum/authkit/redis"
	"github.com/kbukum/authkit/revocation"
	"github.com/kbukum/authkit/server"
	"github.com/kbukum/authkit/settings"
	"github.com/kbukum/authkit/storage/gormrepo"
	"github.com/kbukum/authkit/storage/memory"
	"github.com/kbukum/authkit/storage/postgres"
	"github.com/kbukum/authkit/user"
	"github.com/kbukum/authkit/version"
)

const serviceName = "authkitd"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	d, err := newDaemon(cfg)
	if err != nil {
		return err
	}
	return d.app.Run(ctx)
}

func loadConfig(args []string) (*Config, error) {
	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to config.yml")
	envFile := flags.String("env-file", "", "path to a .env file")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().String()
	}
	return cfg, nil
}

// daemon is the assembled application before Run.
type daemon struct {
	app *bootstrap.App[*Config]
	srv *server.Server

	db       *database.Component
	pg       *postgres.Component
	redis    *redis.Component
	mem      *memory.Store
	denylist revocation.Denylist
}

func newDaemon(cfg *Config, opts ...bootstrap.Option) (*daemon, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	d := &daemon{app: app}
	app.Logger.Info("Build", version.Get().Fields())

	if cfg.Tracing.Enabled {
		app.OnStart(func(ctx context.Context) error {
			tp, err := observability.InitTracer(ctx, cfg.Tracing)
			if err != nil {
				return err
			}
			app.OnStop(tp.Shutdown)
			return nil
		})
	}
	if cfg.Metrics.Enabled {
		app.OnStart(func(ctx context.Context) error {
			mp, err := observability.InitMeter(ctx, cfg.Metrics)
			if err != nil {
				return err
			}
			app.OnStop(mp.Shutdown)
			return nil
		})
	}

	switch cfg.Storage {
	case StorageSQLite:
		d.db = database.NewComponent(cfg.Database, app.Logger).WithAutoMigrate(&gormrepo.UserModel{})
		if err := app.RegisterComponent(d.db); err != nil {
			return nil, err
		}
	case StoragePostgres:
		d.pg = postgres.NewComponent(cfg.Postgres, app.Logger)
		if err := app.RegisterComponent(d.pg); err != nil {
			return nil, err
		}
	default:
		d.mem = memory.New()
	}

	if cfg.Redis.Enabled {
		d.redis = redis.NewComponent(cfg.Redis, app.Logger)
		if err := app.RegisterComponent(d.redis); err != nil {
			return nil, err
		}
	}

	d.srv = server.New(cfg.Server, app.Logger)
	d.srv.ApplyDefaults(app.Name, app.Components.HealthAll)

	app.OnConfigure(d.configure)
	app.OnStop(d.srv.Stop)
	return d, nil
}

// configure builds the auth service on the started infrastructure, mounts the
// router and starts serving.
func (d *daemon) configure(ctx context.Context, app *bootstrap.App[*Config]) error {
	cfg := app.Cfg
	log := app.Logger.WithComponent("authn")

	s, err := cfg.Auth.Settings()
	if err != nil {
		return err
	}
	for _, w := range s.Warnings() {
		log.Warn(w)
	}

	svcOpts := []authn.Option{
		authn.WithHasher(password.NewHasher(cfg.Password)),
		authn.WithLogger(log),
	}
	if d.redis != nil {
		d.denylist = revocation.NewRedis(d.redis.Client())
	} else {
		d.denylist = revocation.NewMemory()
	}
	svcOpts = append(svcOpts, authn.WithDenylist(d.denylist))

	auth, err := d.authenticator(cfg, s, svcOpts)
	if err != nil {
		return err
	}

	routes := httpapi.New(auth, s,
		httpapi.WithLogger(app.Logger),
	)
	routes.Register(d.srv.GinEngine().Group(cfg.HTTP.Prefix))

	if err := d.srv.Start(ctx); err != nil {
		return err
	}
	app.Logger.Info("Auth API mounted", logger.Fields(
		"prefix", cfg.HTTP.Prefix,
		"addr", d.srv.Addr(),
		"storage", cfg.Storage,
		"async", cfg.HTTP.Async,
	))
	return nil
}

func (d *daemon) authenticator(cfg *Config, s settings.Settings, opts []authn.Option) (httpapi.Authenticator, error) {
	repo := d.repository()
	if cfg.HTTP.Async {
		svc, err := authn.NewAsync(s, user.Suspend(repo), opts...)
		if err != nil {
			return nil, err
		}
		return svc.Blocking(), nil
	}
	return authn.New(s, repo, opts...)
}

func (d *daemon) repository() user.Repository {
	switch {
	case d.db != nil:
		return gormrepo.New(d.db.DB())
	case d.pg != nil:
		return d.pg.Repository()
	default:
		return d.mem
	}
}
