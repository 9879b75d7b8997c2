package exporter

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/passenger"
)

func series(category string, start passenger.Period, values ...float64) passenger.CategorySeries {
	s := passenger.CategorySeries{Category: category}
	for i, v := range values {
		s.Points = append(s.Points, passenger.ObservedPoint{
			Category:    category,
			PeriodIndex: i + 1,
			Period:      start.Add(i),
			Value:       v,
		})
	}
	return s
}

// testResult forecasts three categories three months ahead from Oct-Dec 2024:
// Total flat at 5000, Jabodetabek rising by 100 and Lokal falling by 50.
// Ekonomi is skipped.
func testResult(t *testing.T) *passenger.Result {
	t.Helper()
	oct := passenger.Period{Year: 2024, Month: time.October}
	ds := &passenger.Dataset{
		Series: []passenger.CategorySeries{
			series("Lokal", oct, 900, 850, 800),
			series("Jabodetabek", oct, 1000, 1100, 1200),
			series("Total", oct, 5000, 5000, 5000),
			series("Ekonomi", oct, 75),
		},
	}

	f, err := passenger.NewForecaster(3, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	result, err := f.Forecast(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	return result
}

func testRunInfo() RunInfo {
	return RunInfo{
		RunID:         "7f1c2d4e-0000-4000-8000-000000000001",
		App:           "passenger-forecast",
		Version:       "test",
		GeneratedAt:   time.Date(2025, time.January, 15, 9, 30, 0, 0, time.UTC),
		Sources:       []string{"kai_2024.csv"},
		Horizon:       3,
		SchemaPolicy:  "fail",
		MissingPolicy: "compact",
		Observations:  10,
	}
}
