package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/authkit/component"
	"github.com/kbukum/authkit/config"
	"github.com/kbukum/authkit/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	health   component.Health
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	*m.events = append(*m.events, "start:"+m.name)
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	*m.events = append(*m.events, "stop:"+m.name)
	return nil
}
func (m *mockComponent) Health(context.Context) component.Health { return m.health }

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "test-svc", Version: "1.0.0"}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func healthy(name string, events *[]string) *mockComponent {
	return &mockComponent{
		name:   name,
		health: component.Health{Name: name, Status: component.StatusHealthy},
		events: events,
	}
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Error("expected defaults to be applied")
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	_, err := NewApp(&testConfig{})
	if err == nil || !strings.Contains(err.Error(), "config.name") {
		t.Errorf("expected name validation error, got %v", err)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t)
	var events []string
	if err := app.RegisterComponent(healthy("db", &events)); err != nil {
		t.Fatal(err)
	}
	if err := app.RegisterComponent(healthy("db", &events)); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRunTaskLifecycle(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(healthy("db", &events))
	_ = app.RegisterComponent(healthy("redis", &events))
	app.OnStart(func(context.Context) error { events = append(events, "on_start"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events = append(events, "configure:"+a.Cfg.Name)
		return nil
	})
	app.OnReady(func(context.Context) error { events = append(events, "on_ready"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "on_stop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := "start:db,start:redis,on_start,configure:test-svc,on_ready,task,on_stop,stop:redis,stop:db"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRunTaskReturnsTaskError(t *testing.T) {
	app := newTestApp(t)
	boom := errors.New("boom")
	if err := app.RunTask(context.Background(), func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestStartupFailureStopsStartedComponents(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(healthy("db", &events))
	app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("wiring failed") })

	err := app.RunTask(context.Background(), func(context.Context) error {
		t.Error("task must not run")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "configuration failed") {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if got := strings.Join(events, ","); got != "start:db,stop:db" {
		t.Errorf("unexpected events %s", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(healthy("http-server", &events))

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(events, ","); got != "start:http-server,stop:http-server" {
		t.Errorf("unexpected events %s", got)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(healthy("db", &events))
	_ = app.RegisterComponent(&mockComponent{
		name:   "redis",
		health: component.Health{Name: "redis", Status: component.StatusUnhealthy, Message: "down"},
		events: &events,
	})

	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis=unhealthy(down)") {
		t.Errorf("unexpected ready check result %v", err)
	}
}
