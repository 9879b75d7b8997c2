package exporter

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/config"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/shared/testutil"
)

func TestReporter_WritesEnabledArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	cfg := config.Default().Report
	cfg.OutputDir = dir
	cfg.CSVBOM = true

	logger, handler := testutil.NewTestLogger(t)
	out, err := NewReporter(cfg, logger).Write(context.Background(), testRunInfo(), testResult(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, config.SummaryCSVFile),
		filepath.Join(dir, config.SummaryJSONFile),
		filepath.Join(dir, config.SummaryTextFile),
		filepath.Join(dir, config.ChartsWorkbookFile),
	}, out.Files())
	for _, f := range out.Files() {
		assert.FileExists(t, f)
	}

	csv, err := os.ReadFile(out.SummaryCSV)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(csv, []byte("\xEF\xBB\xBFcategory,n_obs,last_actual")))

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "reports written")
	testutil.AssertLogAttr(t, handler, "component", "reporter")
}

func TestReporter_OnlyCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := config.ReportConfig{OutputDir: dir, WriteCSV: true, Precision: 2, Language: "en"}

	out, err := NewReporter(cfg, nil).Write(context.Background(), testRunInfo(), testResult(t))
	require.NoError(t, err)

	assert.Len(t, out.Files(), 1)
	assert.NoFileExists(t, filepath.Join(dir, config.SummaryJSONFile))
	assert.NoFileExists(t, filepath.Join(dir, config.ChartsWorkbookFile))

	lines := readLines(t, out.SummaryCSV)
	assert.Len(t, lines, 4)
	assert.Equal(t, "category,n_obs,last_actual,slope,intercept,r2,direction,pred_next_1,pred_next_1_label,pred_next_2,pred_next_2_label,pred_next_3,pred_next_3_label", lines[0])
}

func TestReporter_UnwritableOutputDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	cfg := config.Default().Report
	cfg.OutputDir = file
	_, err := NewReporter(cfg, nil).Write(context.Background(), testRunInfo(), testResult(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output directory")
}
