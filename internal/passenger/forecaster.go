package passenger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
)

// Result is the outcome of forecasting a dataset
type Result struct {
	Horizon int               `json:"horizon"`
	Records []ForecastRecord  `json:"records"`
	Skipped []Skipped         `json:"skipped"`
	Dropped []DroppedCategory `json:"dropped,omitempty"`
}

// Forecaster fits and projects every category of a dataset
type Forecaster struct {
	horizon int
	workers int
	logger  *slog.Logger
}

// NewForecaster creates a forecaster projecting horizon periods ahead using
// up to workers goroutines
func NewForecaster(horizon, workers int, logger *slog.Logger) (*Forecaster, error) {
	if horizon <= 0 {
		return nil, apperrors.NewInvalidHorizonError(horizon)
	}
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Forecaster{
		horizon: horizon,
		workers: workers,
		logger:  logger.With("component", "forecaster"),
	}, nil
}

// Horizon returns the number of periods projected
func (f *Forecaster) Horizon() int {
	return f.horizon
}

type outcome struct {
	record  ForecastRecord
	skipped *Skipped
}

// Forecast fits a trend to each series and projects it. Categories with too
// few observations are skipped and listed in the result; any other failure
// aborts. Records follow report order whatever the worker count.
func (f *Forecaster) Forecast(ctx context.Context, ds *Dataset) (*Result, error) {
	start := time.Now()

	series := make([]CategorySeries, len(ds.Series))
	copy(series, ds.Series)
	names := make([]string, len(series))
	byName := make(map[string]CategorySeries, len(series))
	for i, s := range series {
		names[i] = s.Category
		byName[s.Category] = s
	}
	SortCategories(names)

	f.logger.InfoContext(ctx, "starting forecast",
		"categories", len(names),
		"horizon", f.horizon,
		"workers", f.workers,
	)

	outcomes := make([]outcome, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := f.forecastOne(gctx, byName[name])
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forecast categories: %w", err)
	}

	result := &Result{
		Horizon: f.horizon,
		Records: make([]ForecastRecord, 0, len(outcomes)),
		Dropped: ds.Dropped,
	}
	result.Skipped = append(result.Skipped, ds.Skipped...)
	for _, out := range outcomes {
		if out.skipped != nil {
			result.Skipped = append(result.Skipped, *out.skipped)
			continue
		}
		result.Records = append(result.Records, out.record)
	}
	sortSkipped(result.Skipped)

	f.logger.InfoContext(ctx, "forecast completed",
		"duration", time.Since(start),
		"forecast", len(result.Records),
		"skipped", len(result.Skipped),
		"dropped", len(result.Dropped),
	)

	return result, nil
}

func (f *Forecaster) forecastOne(ctx context.Context, series CategorySeries) (outcome, error) {
	model, err := FitTrend(series)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientData) {
			f.logger.WarnContext(ctx, "skipping category",
				"category", series.Category,
				"n_obs", series.NObs(),
				"error", err,
			)
			return outcome{skipped: &Skipped{
				Category: series.Category,
				Reason:   ReasonInsufficientData,
				Detail:   fmt.Sprintf("%d observation(s), need at least %d", series.NObs(), MinObservations),
			}}, nil
		}
		return outcome{}, fmt.Errorf("fit %s: %w", series.Category, err)
	}

	rec, err := Project(series, model, f.horizon)
	if err != nil {
		return outcome{}, fmt.Errorf("project %s: %w", series.Category, err)
	}

	f.logger.DebugContext(ctx, "category forecast",
		"category", rec.Category,
		"n_obs", rec.NObs,
		"slope", rec.Slope,
		"r2", rec.R2,
		"direction", string(rec.Direction),
	)

	return outcome{record: rec}, nil
}

// sortSkipped puts skips in report order whichever stage produced them
func sortSkipped(skipped []Skipped) {
	sort.SliceStable(skipped, func(i, j int) bool {
		return categoryLess(skipped[i].Category, skipped[j].Category)
	})
}
