package exporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConsoleSummary(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteConsoleSummary(&b, testResult(t), "id", 2))
	out := b.String()

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 8)
	assert.Equal(t, "Ringkasan Tren & Prediksi:", lines[1])

	header := strings.Fields(lines[3])
	assert.Equal(t, []string{
		"category", "n_obs", "last_actual", "slope", "r2", "direction",
		"pred_next_1", "pred_next_2", "pred_next_3",
		"pred_next_1_label", "pred_next_2_label", "pred_next_3_label",
	}, header)

	assert.Equal(t, []string{
		"Jabodetabek", "3", "1200.00", "100.00", "1.00", "naik",
		"1300.00", "1400.00", "1500.00", "2025-Jan", "2025-Feb", "2025-Mar",
	}, strings.Fields(lines[5]))

	assert.Contains(t, out, "skipped Ekonomi: insufficient_data")
	assert.True(t, strings.HasSuffix(out, "Keterangan arah: naik/turun/tetap dibanding bulan aktual terakhir.\n"))
}

func TestWriteConsoleSummary_English(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteConsoleSummary(&b, testResult(t), "en", 1))

	assert.Contains(t, b.String(), "Trend & Forecast Summary:")
	assert.Contains(t, b.String(), " down ")
	assert.Contains(t, b.String(), "-50.0")
}
