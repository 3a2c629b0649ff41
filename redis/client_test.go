package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/authkit/component"
)

func startMini(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func TestNew_Disabled(t *testing.T) {
	if _, err := New(Config{Addr: "localhost:6379"}, nil); err == nil {
		t.Fatal("expected error for disabled client")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing addr")
	}
	if cfg.KeyPrefix != "authkit:" {
		t.Errorf("unexpected default prefix %q", cfg.KeyPrefix)
	}
}

func TestClient_SetGetExists(t *testing.T) {
	mr := startMini(t)
	c, err := New(Config{Enabled: true, Addr: mr.Addr()}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := c.Key("k")
	if key != "authkit:k" {
		t.Errorf("unexpected key %q", key)
	}
	if _, err := c.Get(ctx, key); !IsNil(err) {
		t.Fatalf("expected nil reply, got %v", err)
	}
	if err := c.Set(ctx, key, "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, key)
	if err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	n, err := c.Exists(ctx, key)
	if err != nil || n != 1 {
		t.Fatalf("Exists = %d, %v", n, err)
	}

	mr.FastForward(2 * time.Minute)
	if n, _ := c.Exists(ctx, key); n != 0 {
		t.Error("expected key to expire")
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	mr := startMini(t)
	comp := NewComponent(Config{Enabled: true, Addr: mr.Addr()}, nil)
	ctx := context.Background()

	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}
	if comp.Client() == nil {
		t.Fatal("expected client after start")
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
