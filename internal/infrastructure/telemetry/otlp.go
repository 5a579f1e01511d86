// Package telemetry wires OpenTelemetry traces, metrics and logs, the
// Pyroscope profiler, and the trámite-specific instruments.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Exporter is the OTLP collector target shared by the trace, metric and
// log pipelines. A disabled pipeline keeps the global no-op provider.
type Exporter struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
	Version     string
}

func (e Exporter) resource() (*resource.Resource, error) {
	version := e.Version
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(e.ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}
	return res, nil
}

// shutdownWithin runs a provider shutdown bounded by shutdownTimeout
func shutdownWithin(ctx context.Context, log *zap.Logger, pipeline string, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Error("Telemetry shutdown failed", zap.String("pipeline", pipeline), zap.Error(err))
		return fmt.Errorf("shutdown %s provider: %w", pipeline, err)
	}
	log.Info("Telemetry pipeline stopped", zap.String("pipeline", pipeline))
	return nil
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
