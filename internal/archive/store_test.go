package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/passenger"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/shared/testutil"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	store, err := NewStore(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id string, createdAt time.Time) Run {
	last := passenger.Period{Year: 2024, Month: time.December}
	points := func(base, slope float64) []passenger.ForecastPoint {
		var out []passenger.ForecastPoint
		for k := 1; k <= 2; k++ {
			p := last.Add(k)
			out = append(out, passenger.ForecastPoint{
				PeriodIndex: 12 + k,
				Period:      p,
				Label:       p.Label(),
				Value:       base + slope*float64(k),
			})
		}
		return out
	}

	return Run{
		ID:            id,
		CreatedAt:     createdAt,
		AppVersion:    "1.2.0",
		Horizon:       2,
		Sources:       []string{"kai_2024.csv"},
		SchemaPolicy:  "fail",
		MissingPolicy: "compact",
		Observations:  25,
		Records: []passenger.ForecastRecord{
			{
				Category: "Total", NObs: 12, LastActual: 5000, LastPeriod: last,
				Slope: 0, Intercept: 5000, R2: 1, Tolerance: 25,
				Direction: passenger.DirectionFlat, Forecasts: points(5000, 0),
			},
			{
				Category: "Jabodetabek", NObs: 12, LastActual: 2100, LastPeriod: last,
				Slope: 100.25, Intercept: 1000.5, R2: 0.9731, Tolerance: 10.5,
				Direction: passenger.DirectionUp, Forecasts: points(2100, 100.25),
			},
		},
		Skipped: []passenger.Skipped{
			{Category: "Lokal", Reason: passenger.ReasonInsufficientData, Detail: "1 observation(s), need at least 2"},
		},
	}
}

func TestStore_SaveAndGetRun(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "archive.db"))
	ctx := context.Background()

	created := time.Date(2025, time.March, 4, 10, 30, 0, 0, time.UTC)
	want := sampleRun("run-1", created)
	require.NoError(t, store.SaveRun(ctx, want))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)

	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, want.AppVersion, got.AppVersion)
	assert.Equal(t, want.Horizon, got.Horizon)
	assert.Equal(t, want.Sources, got.Sources)
	assert.Equal(t, want.SchemaPolicy, got.SchemaPolicy)
	assert.Equal(t, want.MissingPolicy, got.MissingPolicy)
	assert.Equal(t, want.Observations, got.Observations)
	assert.Equal(t, want.Records, got.Records)
	assert.Equal(t, want.Skipped, got.Skipped)
}

func TestStore_SaveRun_DuplicateID(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "archive.db"))
	ctx := context.Background()

	run := sampleRun("run-1", time.Now())
	require.NoError(t, store.SaveRun(ctx, run))

	err := store.SaveRun(ctx, run)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
}

func TestStore_LatestRun(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "archive.db"))
	ctx := context.Background()

	_, err := store.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)

	older := sampleRun("older", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	newer := sampleRun("newer", time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	newer.Skipped = nil
	require.NoError(t, store.SaveRun(ctx, newer))
	require.NoError(t, store.SaveRun(ctx, older))

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", latest.ID)
	assert.Empty(t, latest.Skipped)
	assert.Len(t, latest.Records, 2)
}

func TestStore_GetRun_NotFound(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "archive.db"))

	_, err := store.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "archive.db")
	ctx := context.Background()

	first := openStore(t, path)
	require.NoError(t, first.SaveRun(ctx, sampleRun("run-1", time.Now())))
	require.NoError(t, first.Close())

	second := openStore(t, path)
	got, err := second.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
}
