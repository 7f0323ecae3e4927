package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"rosterlink/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type otlpConnConfig struct {
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

type config struct {
	Otlp struct {
		Traces otlpConnConfig `json:"traces"`
	} `json:"otlp"`
}

// Shutdown flushes and stops whatever SetupFromEnv started.
type Shutdown func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// SetupFromEnv searches up the filesystem from the cwd to find a file called
// telemetry.json5, once found it exports traces to the configured OTLP/HTTP
// endpoint. Without the file the global no-op tracer provider stays in place.
func SetupFromEnv(ctx context.Context, serviceName string) (Shutdown, error) {
	cfg, err := configutil.ReadRecursively[config]("telemetry.json5")
	if errors.Is(err, os.ErrNotExist) {
		return noopShutdown, nil
	}
	if err != nil {
		return noopShutdown, err
	}
	if cfg.Otlp.Traces.HttpEndpoint == "" {
		return noopShutdown, nil
	}
	return setup(ctx, serviceName, cfg)
}

func setup(ctx context.Context, serviceName string, cfg config) (Shutdown, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noopShutdown, err
	}

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(cfg.Otlp.Traces.HttpEndpoint),
		otlptracehttp.WithHeaders(cfg.Otlp.Traces.Headers),
	)
	if err != nil {
		return noopShutdown, err
	}
	slog.Info(
		"tracer export initialized",
		"type", "http",
		"endpoint", cfg.Otlp.Traces.HttpEndpoint,
		"headers", len(cfg.Otlp.Traces.Headers) > 0,
	)

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
