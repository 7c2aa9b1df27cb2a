package otelx

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")
	cfg := ConfigFromEnv("frontdesk-service")
	if cfg.Enabled {
		t.Fatal("tracing must stay off without a collector endpoint")
	}
	if cfg.SampleRatio != 0.25 || cfg.ServiceName != "frontdesk-service" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_SAMPLING_RATIO", "7")
	cfg = ConfigFromEnv("frontdesk-service")
	if !cfg.Enabled || cfg.OTLPEndpoint != "collector:4317" || cfg.SampleRatio != 1 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("OTEL_ENABLED", "false")
	if ConfigFromEnv("frontdesk-service").Enabled {
		t.Fatal("OTEL_ENABLED=false must win")
	}
}

func TestTraceContextStringsRoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	tp, ts := TraceContextStrings(ctx)
	if tp == "" {
		t.Fatal("expected a traceparent")
	}
	got := trace.SpanContextFromContext(ContextWithTraceContext(context.Background(), tp, ts))
	if got.TraceID() != traceID {
		t.Fatalf("trace id lost: %v", got.TraceID())
	}

	empty := context.Background()
	if ContextWithTraceContext(empty, "", "") != empty {
		t.Fatal("empty trace strings must return ctx unchanged")
	}
	if ContextWithTraceContext(empty, "", "vendor=1") != empty {
		t.Fatal("tracestate alone must be ignored")
	}
}
