package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/config"
)

const (
	ServiceName = "passenger-forecast"
	MeterName   = "github.com/Zakintaliban/indonesia-train-passenger-forecasting"
)

// OTelProviders holds the OpenTelemetry providers for one run
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *promclient.Registry
	Metrics        *ForecastMetrics
	Runtime        *RuntimeMetrics
	Logger         *slog.Logger

	metricsFile string
}

// InitializeOTel sets up tracing and metrics for a run. Spans go to traceOut
// when the stdout exporter is selected; metrics are always collected into a
// private Prometheus registry and can be written with WriteMetrics.
func InitializeOTel(cfg config.TelemetryConfig, traceOut io.Writer, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = GetLogger()
	}
	if traceOut == nil {
		traceOut = os.Stderr
	}
	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger:      logger.With("component", "telemetry"),
		metricsFile: cfg.MetricsFile,
	}

	if err := initializeTracing(cfg, traceOut, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	providers.Logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))

	return providers, nil
}

func createResource(cfg config.TelemetryConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

func initializeTracing(cfg config.TelemetryConfig, out io.Writer, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(out),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
		otel.SetTracerProvider(tp)
	case "none", "":
		providers.Tracer = noop.NewTracerProvider().Tracer(MeterName)
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	return nil
}

func initializeMetrics(res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))

	metrics, err := CreateForecastMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create forecast metrics: %w", err)
	}
	providers.Metrics = metrics

	rt, err := NewRuntimeMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create runtime metrics: %w", err)
	}
	providers.Runtime = rt
	return nil
}

// ForecastMetrics holds the instruments recorded by the pipeline
type ForecastMetrics struct {
	ObservationsLoaded metric.Int64Counter
	CategoriesForecast metric.Int64Counter
	CategoriesSkipped  metric.Int64Counter
	TrendR2            metric.Float64Histogram
	StageDuration      metric.Float64Histogram
}

// CreateForecastMetrics creates the pipeline instruments on meter
func CreateForecastMetrics(meter metric.Meter) (*ForecastMetrics, error) {
	observations, err := meter.Int64Counter(
		"passenger_observations_loaded",
		metric.WithDescription("Observed monthly values read from input tables"),
	)
	if err != nil {
		return nil, err
	}

	forecast, err := meter.Int64Counter(
		"passenger_categories_forecast",
		metric.WithDescription("Categories that received a forecast"),
	)
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter(
		"passenger_categories_skipped",
		metric.WithDescription("Categories skipped, by reason"),
	)
	if err != nil {
		return nil, err
	}

	r2, err := meter.Float64Histogram(
		"passenger_trend_r2",
		metric.WithDescription("Coefficient of determination of fitted trends"),
		metric.WithExplicitBucketBoundaries(0, 0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 0.99, 1),
	)
	if err != nil {
		return nil, err
	}

	stage, err := meter.Float64Histogram(
		"passenger_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ForecastMetrics{
		ObservationsLoaded: observations,
		CategoriesForecast: forecast,
		CategoriesSkipped:  skipped,
		TrendR2:            r2,
		StageDuration:      stage,
	}, nil
}

// StartStage opens a span for a pipeline stage. The returned func ends the
// span, records the stage duration and marks the span failed when err is
// non-nil.
func (p *OTelProviders) StartStage(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	start := time.Now()
	ctx, span := p.Tracer.Start(ctx, stage, trace.WithAttributes(attrs...))
	if runID := GetRunID(ctx); runID != "" {
		span.SetAttributes(attribute.String("run.id", runID))
	}

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		p.Metrics.StageDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("stage", stage)))
		span.End()
	}
}

// WriteMetrics writes the collected metrics in the Prometheus text format to
// the configured metrics file, for a node_exporter textfile collector. It is a
// no-op when no file is configured.
func (p *OTelProviders) WriteMetrics() error {
	if p.metricsFile == "" {
		return nil
	}
	if err := promclient.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", p.metricsFile, err)
	}
	return nil
}

// Shutdown flushes pending spans and releases the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
