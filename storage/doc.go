// Package storage holds the user.Repository adapters:
//
//   - storage/memory: in-process maps, for tests and single-instance use
//   - storage/gormrepo: GORM models over the database component (sqlite by default)
//   - storage/postgres: a pgx/v5 pool against PostgreSQL
//
// Every adapter creates a user atomically and reports a uniqueness violation
// as an IDENTITY_ALREADY_EXISTS error; this package holds the shared
// translation of driver messages into that error.
package storage
