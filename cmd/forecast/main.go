package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/archive"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/config"
	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/exporter"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/files"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/infrastructure"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/passenger"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/validation"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = infrastructure.EnsureRunID(ctx)

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		infrastructure.WithError(infrastructure.WithComponent(logger, "cli"), err).ErrorContext(ctx, "Forecast run failed",
			slog.String("error_type", string(apperrors.TypeOf(err))))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}

// loadConfig loads file and environment configuration, applies the command
// line on top and validates the result
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run executes the pipeline: discover, load, reshape, forecast, report and
// optionally archive. The console summary goes to stdout.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) (err error) {
	started := time.Now()
	runID := infrastructure.GetRunID(ctx)

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, os.Stderr, logger)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		if werr := otelProviders.WriteMetrics(); werr != nil {
			logger.WarnContext(ctx, "Failed to write metrics", "error", werr)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := otelProviders.Shutdown(shutdownCtx); serr != nil {
			logger.WarnContext(ctx, "Telemetry shutdown failed", "error", serr)
		}
	}()
	metrics := otelProviders.Metrics

	ctx, endRun := otelProviders.StartStage(ctx, "forecast.run")
	defer func() { endRun(err) }()

	logger.InfoContext(ctx, "Starting passenger forecast",
		slog.String("version", config.AppVersion),
		slog.Int("horizon", cfg.Forecast.Horizon),
		slog.String("output_dir", cfg.Report.OutputDir))

	// Inputs
	discovery := files.NewDiscovery("", logger)
	found, err := discovery.Expand(cfg.Input.Files)
	if err != nil {
		return err
	}
	paths := files.Paths(found)

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputs(paths); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(cfg.Report.OutputDir); err != nil {
		return err
	}

	years, err := files.ResolveYears(paths, cfg.Input.Years, cfg.Input.DefaultYear)
	if err != nil {
		return err
	}

	// Load
	tables, err := loadTables(ctx, otelProviders, cfg.Input, paths, years, logger)
	if err != nil {
		return err
	}

	// Reshape
	stageCtx, endStage := otelProviders.StartStage(ctx, "forecast.reshape")
	ds, err := passenger.Reshape(tables, passenger.ReshapeOptions{
		Schema:  passenger.SchemaPolicy(cfg.Forecast.SchemaPolicy),
		Missing: passenger.MissingPolicy(cfg.Forecast.MissingPolicy),
	})
	endStage(err)
	if err != nil {
		return err
	}
	metrics.ObservationsLoaded.Add(stageCtx, int64(ds.Observations()))
	for _, d := range ds.Dropped {
		logger.WarnContext(ctx, "Category dropped",
			slog.String("category", d.Category),
			slog.Any("missing_from", d.MissingFrom))
	}

	// Forecast
	forecaster, err := passenger.NewForecaster(cfg.Forecast.Horizon, cfg.Forecast.Workers, logger)
	if err != nil {
		return err
	}
	stageCtx, endStage = otelProviders.StartStage(ctx, "forecast.fit",
		attribute.Int("categories", len(ds.Series)))
	result, err := forecaster.Forecast(stageCtx, ds)
	endStage(err)
	if err != nil {
		return err
	}
	metrics.CategoriesForecast.Add(stageCtx, int64(len(result.Records)))
	for _, rec := range result.Records {
		metrics.TrendR2.Record(stageCtx, rec.R2)
	}
	for _, sk := range result.Skipped {
		metrics.CategoriesSkipped.Add(stageCtx, 1, metric.WithAttributes(attribute.String("reason", sk.Reason)))
	}

	info := exporter.RunInfo{
		RunID:         runID,
		App:           config.AppName,
		Version:       config.AppVersion,
		GeneratedAt:   time.Now().UTC(),
		Sources:       ds.Sources,
		Horizon:       result.Horizon,
		SchemaPolicy:  cfg.Forecast.SchemaPolicy,
		MissingPolicy: cfg.Forecast.MissingPolicy,
		Observations:  ds.Observations(),
	}

	// Report
	stageCtx, endStage = otelProviders.StartStage(ctx, "forecast.report")
	outputs, err := exporter.NewReporter(cfg.Report, logger).Write(stageCtx, info, result)
	endStage(err)
	if err != nil {
		return err
	}

	// Archive
	if cfg.Archive.Path != "" {
		stageCtx, endStage = otelProviders.StartStage(ctx, "forecast.archive")
		err = archiveRun(stageCtx, cfg.Archive.Path, info, result, logger)
		endStage(err)
		if err != nil {
			return err
		}
	}

	if err := exporter.WriteConsoleSummary(stdout, result, cfg.Report.Language, cfg.Report.Precision); err != nil {
		return fmt.Errorf("write console summary: %w", err)
	}

	stats := otelProviders.Runtime.Collect(ctx, started)
	logger.DebugContext(ctx, "Runtime statistics", stats.LogAttrs()...)

	logger.InfoContext(ctx, "Forecast run completed",
		slog.Int("forecast", len(result.Records)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("outputs", len(outputs.Files())),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func loadTables(ctx context.Context, p *infrastructure.OTelProviders, in config.InputConfig, paths []string, years []int, logger *slog.Logger) ([]*passenger.Table, error) {
	opts := passenger.ReadOptions{
		Decimal:   in.Decimal(),
		Thousands: in.Thousands(),
		Sheet:     in.Sheet,
	}

	tables := make([]*passenger.Table, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, end := p.StartStage(ctx, "forecast.load",
			attribute.String("file", path),
			attribute.Int("year", years[i]))
		table, err := passenger.LoadTable(path, years[i], opts)
		end(err)
		if err != nil {
			return nil, err
		}

		logger.InfoContext(ctx, "Table loaded",
			slog.String("file", path),
			slog.Int("year", years[i]),
			slog.Int("categories", len(table.Rows)),
			slog.Int("months", len(table.Months)))
		tables = append(tables, table)
	}
	return tables, nil
}

func archiveRun(ctx context.Context, path string, info exporter.RunInfo, result *passenger.Result, logger *slog.Logger) error {
	store, err := archive.NewStore(path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.SaveRun(ctx, archive.Run{
		ID:            info.RunID,
		CreatedAt:     info.GeneratedAt,
		AppVersion:    info.Version,
		Horizon:       info.Horizon,
		Sources:       info.Sources,
		SchemaPolicy:  info.SchemaPolicy,
		MissingPolicy: info.MissingPolicy,
		Observations:  info.Observations,
		Records:       result.Records,
		Skipped:       result.Skipped,
	})
}
