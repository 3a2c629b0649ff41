package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/authkit/component"
	apperrors "github.com/kbukum/authkit/errors"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

func memoryConfig() Config {
	return Config{Enabled: true, DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, AutoMigrate: true, LogLevel: "silent"}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{Enabled: true, DSN: "x.db"}
	cfg.ApplyDefaults()
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 || cfg.MaxRetries != 5 {
		t.Errorf("unexpected pool defaults %+v", cfg)
	}
	if cfg.ConnMaxLifetime != time.Hour || cfg.SlowQueryThreshold != 200*time.Millisecond {
		t.Errorf("unexpected duration defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing dsn", Config{Enabled: true, MaxOpenConns: 1, MaxRetries: 1}},
		{"idle above open", Config{Enabled: true, DSN: "x", MaxOpenConns: 1, MaxIdleConns: 2, MaxRetries: 1}},
		{"no retries", Config{Enabled: true, DSN: "x", MaxOpenConns: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := (&Config{}).Validate(); err != nil {
		t.Errorf("disabled config should validate, got %v", err)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent(memoryConfig(), nil).WithAutoMigrate(&widget{})
	ctx := context.Background()

	var _ component.Component = comp
	if comp.Name() != "database" {
		t.Errorf("unexpected name %q", comp.Name())
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}
	if !comp.DB().GormDB.Migrator().HasTable(&widget{}) {
		t.Error("expected auto-migrated table")
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := comp.DB().Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestComponent_StartRejectsInvalidConfig(t *testing.T) {
	comp := NewComponent(Config{Enabled: true}, nil)
	if err := comp.Start(context.Background()); err == nil {
		t.Fatal("expected error for missing DSN")
	}
}

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), sqlite.Open(":memory:"), memoryConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func TestDB_DuplicateIsTranslated(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	if err := db.WithContext(ctx).Create(&widget{Name: "a"}).Error; err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := db.WithContext(ctx).Create(&widget{Name: "a"}).Error
	if !IsDuplicateError(err) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestDB_WithTransaction(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Name: "rolled-back"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	var n int64
	db.WithContext(ctx).Model(&widget{}).Count(&n)
	if n != 0 {
		t.Errorf("expected rollback, found %d rows", n)
	}

	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&widget{Name: "kept"}).Error
	})
	if err != nil {
		t.Fatalf("WithTransaction: %v", err)
	}
	db.WithContext(ctx).Model(&widget{}).Count(&n)
	if n != 1 {
		t.Errorf("expected commit, found %d rows", n)
	}
}

func TestNew_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(ctx, sqlite.Open(":memory:"), memoryConfig(), nil); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestFromDatabase(t *testing.T) {
	if FromDatabase(nil) != nil {
		t.Error("expected nil")
	}
	conn := FromDatabase(fmt.Errorf("dial tcp: connection refused"))
	if conn.Code != apperrors.ErrCodeServiceUnavailable || !conn.Retryable {
		t.Errorf("expected retryable SERVICE_UNAVAILABLE, got %+v", conn)
	}
	generic := FromDatabase(errors.New("syntax error"))
	if generic.Code != apperrors.ErrCodeDatabaseError {
		t.Errorf("expected DATABASE_ERROR, got %s", generic.Code)
	}
	if !IsNotFoundError(fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound)) {
		t.Error("expected wrapped not-found to match")
	}
}
