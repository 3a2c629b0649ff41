// Package bootstrap runs authkit binaries with uniform lifecycle management:
// config validation, logger setup, component start and stop, and signal
// handling.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(db)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error { ... })
//	return app.Run(ctx)
package bootstrap
