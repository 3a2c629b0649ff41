// Package database provides the GORM connection used by the SQL user
// repository and the csu command.
//
// It adds connect retries with backoff, pool configuration, a GORM logger
// backed by zerolog, transaction helpers, and the component lifecycle
// (Start/Stop/Health). The driver defaults to sqlite; use WithDriver for
// another gorm.Dialector.
//
//	comp := database.NewComponent(database.Config{Enabled: true, DSN: "authkit.db", AutoMigrate: true}, log).
//	    WithAutoMigrate(&gormrepo.UserModel{})
//	if err := comp.Start(ctx); err != nil { ... }
package database
