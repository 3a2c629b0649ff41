package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestStartAndEndSpan(t *testing.T) {
	rec := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "authn.Login")
	SetSpanAttribute(ctx, AttrUserID, int64(7))
	SetSpanAttribute(ctx, AttrTokenKind, "access")
	SetSpanAttribute(ctx, "ignored", 1.5)
	EndSpan(span, errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "authn.Login" {
		t.Errorf("unexpected span name %q", s.Name())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status())
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrUserID].AsInt64() != 7 {
		t.Errorf("expected user.id=7, got %v", attrs[AttrUserID])
	}
	if _, ok := attrs["ignored"]; ok {
		t.Error("unsupported attribute types should be skipped")
	}
}

func TestEndSpan_NoError(t *testing.T) {
	rec := installRecorder(t)
	_, span := StartSpan(context.Background(), "ok")
	EndSpan(span, nil)
	if got := rec.Ended()[0].Status().Code; got == codes.Error {
		t.Error("span without error should not carry error status")
	}
}

func TestSetSpanAttribute_NoSpan(t *testing.T) {
	SetSpanAttribute(context.Background(), "k", "v")
}

func TestTracerConfig(t *testing.T) {
	cfg := TracerConfig{}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("unexpected endpoint %q", cfg.Endpoint)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled config should validate: %v", err)
	}
	cfg.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without service name")
	}
	cfg.ServiceName = "svc"
	cfg.SampleRate = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample rate above 1")
	}
	if d := DefaultTracerConfig("svc"); d.SampleRate != 1.0 || !d.Enabled {
		t.Errorf("unexpected defaults %+v", d)
	}
}

func TestSampler(t *testing.T) {
	if sampler(1).Description() != sdktrace.AlwaysSample().Description() {
		t.Error("rate 1 should always sample")
	}
	if sampler(0).Description() != sdktrace.NeverSample().Description() {
		t.Error("rate 0 should never sample")
	}
}

func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	tp, err := InitTracer(context.Background(), DefaultTracerConfig("test"))
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = tp.Shutdown(ctx)
}
