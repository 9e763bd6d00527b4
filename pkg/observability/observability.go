// Package observability initialises structured logging and the Prometheus
// metrics endpoint, and exposes the engine's operational counters.
package observability

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "text"
}

// InitLogger initialises a structured slog.Logger and installs it as the
// default.
func InitLogger(cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EngineMetrics are the engine's operational counters.
type EngineMetrics struct {
	PaymentsApplied metric.Int64Counter
	BatchProcessed  metric.Int64Counter
	BatchFailed     metric.Int64Counter
	AccrualsWritten metric.Int64Counter
}

// InitMetrics initialises the Prometheus exporter and registers the engine
// counters. Returns the provider, the /metrics handler and the counters.
func InitMetrics(serviceName string) (*sdkmetric.MeterProvider, http.Handler, *EngineMetrics, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	m := &EngineMetrics{}
	if m.PaymentsApplied, err = meter.Int64Counter("lms_payments_applied_total"); err != nil {
		return nil, nil, nil, err
	}
	if m.BatchProcessed, err = meter.Int64Counter("lms_batch_accounts_processed_total"); err != nil {
		return nil, nil, nil, err
	}
	if m.BatchFailed, err = meter.Int64Counter("lms_batch_accounts_failed_total"); err != nil {
		return nil, nil, nil, err
	}
	if m.AccrualsWritten, err = meter.Int64Counter("lms_accruals_written_total"); err != nil {
		return nil, nil, nil, err
	}

	return provider, promhttp.Handler(), m, nil
}
