package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/passenger"
)

func TestSummaryHeaders(t *testing.T) {
	assert.Equal(t, []string{
		"category", "n_obs", "last_actual", "slope", "intercept", "r2", "direction",
		"pred_next_1", "pred_next_1_label", "pred_next_2", "pred_next_2_label",
	}, SummaryHeaders(2))
}

func TestSummaryRows(t *testing.T) {
	result := testResult(t)

	rows := SummaryRows(result.Records, result.Horizon, 2)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Total", "3", "5000.00", "0.00", "5000.00", "1.00", "flat",
		"5000.00", "2025-Jan", "5000.00", "2025-Feb", "5000.00", "2025-Mar",
	}, rows[0])
	assert.Equal(t, []string{
		"Jabodetabek", "3", "1200.00", "100.00", "900.00", "1.00", "up",
		"1300.00", "2025-Jan", "1400.00", "2025-Feb", "1500.00", "2025-Mar",
	}, rows[1])
	assert.Equal(t, []string{
		"Lokal", "3", "800.00", "-50.00", "950.00", "1.00", "down",
		"750.00", "2025-Jan", "700.00", "2025-Feb", "650.00", "2025-Mar",
	}, rows[2])
}

func TestSummaryRows_PadsShortForecasts(t *testing.T) {
	rec := passenger.ForecastRecord{Category: "Lokal", NObs: 2, Direction: passenger.DirectionFlat}
	rows := SummaryRows([]passenger.ForecastRecord{rec}, 1, 0)
	assert.Equal(t, []string{"Lokal", "2", "0", "0", "0", "0", "flat", "", ""}, rows[0])
}

func TestSaveSummaryJSON(t *testing.T) {
	result := testResult(t)
	path := filepath.Join(t.TempDir(), "out", "forecast_summary.json")

	require.NoError(t, SaveSummaryJSON(testRunInfo(), result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	meta := doc["metadata"].(map[string]interface{})
	assert.Equal(t, "7f1c2d4e-0000-4000-8000-000000000001", meta["run_id"])
	assert.Equal(t, float64(3), meta["horizon"])
	assert.Equal(t, "2025-01-15T09:30:00Z", meta["generated_at"])

	records := doc["records"].([]interface{})
	require.Len(t, records, 3)
	first := records[0].(map[string]interface{})
	assert.Equal(t, "Total", first["category"])
	assert.Equal(t, "flat", first["direction"])
	assert.NotContains(t, first, "History")
	assert.Len(t, first["forecasts"], 3)

	skipped := doc["skipped"].([]interface{})
	require.Len(t, skipped, 1)
	assert.Equal(t, "insufficient_data", skipped[0].(map[string]interface{})["reason"])

	assert.Equal(t, []interface{}{}, doc["dropped"])
}

func TestCalculateSummaryStatistics(t *testing.T) {
	s := CalculateSummaryStatistics(testResult(t))

	assert.Equal(t, 3, s.Forecast)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Directions[passenger.DirectionUp])
	assert.Equal(t, 1, s.Directions[passenger.DirectionDown])
	assert.Equal(t, 1, s.Directions[passenger.DirectionFlat])
	assert.InDelta(t, 1.0, s.MeanR2, 1e-9)
	require.NotNil(t, s.StrongestRise)
	assert.Equal(t, "Jabodetabek", s.StrongestRise.Category)
	require.NotNil(t, s.StrongestDecay)
	assert.Equal(t, "Lokal", s.StrongestDecay.Category)

	empty := CalculateSummaryStatistics(&passenger.Result{})
	assert.Zero(t, empty.Forecast)
	assert.Nil(t, empty.StrongestRise)
}

func TestWriteSummaryReport(t *testing.T) {
	result := testResult(t)
	result.Dropped = []passenger.DroppedCategory{{Category: "Eksekutif", MissingFrom: []string{"kai_2023.csv"}}}

	var b strings.Builder
	require.NoError(t, WriteSummaryReport(&b, testRunInfo(), result, "id", 2))
	report := b.String()

	for _, want := range []string{
		"passenger-forecast - Ringkasan Tren & Prediksi",
		"Generated: 2025-01-15 09:30:00",
		"Sources: kai_2024.csv",
		"Categories forecast: 3",
		"naik: 1",
		"Strongest rise: Jabodetabek (100.00 per month)",
		"Strongest decline: Lokal (-50.00 per month)",
		"Jabodetabek: naik, last 1200.00 (2024-Des), slope 100.00, r2 1.00",
		"    2025-Jan: 1300.00",
		"Ekonomi: insufficient_data",
		"Eksekutif: missing from kai_2023.csv",
		"Keterangan arah: naik/turun/tetap",
	} {
		assert.Contains(t, report, want)
	}
}

func TestSaveSummaryReport_English(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast_summary.txt")
	require.NoError(t, SaveSummaryReport(testRunInfo(), testResult(t), "en", 2, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Lokal: down")
	assert.Contains(t, string(data), "Direction: up/down/flat")
}
