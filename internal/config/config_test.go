package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
)

// chdirTemp moves the test into an empty directory so no stray forecast.yaml
// or .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		wantField   string
		wantIs      error
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.Forecast.Horizon)
				assert.Equal(t, 1, cfg.Forecast.Workers)
				assert.Equal(t, "fail", cfg.Forecast.SchemaPolicy)
				assert.Equal(t, "compact", cfg.Forecast.MissingPolicy)
				assert.Equal(t, "output", cfg.Report.OutputDir)
				assert.Equal(t, 2, cfg.Report.Precision)
				assert.True(t, cfg.Report.WriteCSV)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.Empty(t, cfg.Archive.Path)
			},
		},
		{
			name: "file overrides defaults",
			file: `
forecast:
  horizon: 6
  schema_policy: intersect
input:
  years: [2024, 2025]
report:
  output_dir: reports
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6, cfg.Forecast.Horizon)
				assert.Equal(t, "intersect", cfg.Forecast.SchemaPolicy)
				assert.Equal(t, "compact", cfg.Forecast.MissingPolicy)
				assert.Equal(t, []int{2024, 2025}, cfg.Input.Years)
				assert.Equal(t, "reports", cfg.Report.OutputDir)
				assert.True(t, cfg.Report.WriteJSON)
			},
		},
		{
			name: "env overrides file",
			file: "forecast:\n  horizon: 6\n",
			env: map[string]string{
				"PASSENGER_FORECAST_HORIZON": "12",
				"PASSENGER_ARCHIVE_DB_PATH":  "runs.db",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 12, cfg.Forecast.Horizon)
				assert.Equal(t, "runs.db", cfg.Archive.Path)
			},
		},
		{
			name:      "zero horizon rejected",
			env:       map[string]string{"PASSENGER_FORECAST_HORIZON": "0"},
			wantErr:   true,
			wantIs:    apperrors.ErrInvalidHorizon,
			wantField: "forecast.horizon",
		},
		{
			name:      "unknown schema policy rejected",
			file:      "forecast:\n  schema_policy: merge\n",
			wantErr:   true,
			wantField: "forecast.schema_policy",
		},
		{
			name:      "year out of range rejected",
			file:      "input:\n  default_year: 1800\n",
			wantErr:   true,
			wantField: "input.default_year",
		},
		{
			name:      "identical separators rejected",
			file:      "input:\n  decimal_separator: comma\n  thousands_separator: comma\n",
			wantErr:   true,
			wantField: "input.thousands_separator",
		},
		{
			name:    "malformed yaml",
			file:    "forecast: [horizon\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = filepath.Join(dir, "forecast.yaml")
				writeFile(t, path, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				wantIs := tt.wantIs
				if wantIs == nil {
					wantIs = apperrors.ErrConfig
				}
				assert.True(t, errors.Is(err, wantIs), "got %v", err)
				if tt.wantField != "" {
					var appErr *apperrors.AppError
					require.True(t, errors.As(err, &appErr))
					assert.Equal(t, tt.wantField, appErr.Context["field"])
				}
				return
			}

			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_DiscoversDefaultFileAndDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, filepath.Join(dir, "forecast.yaml"), "forecast:\n  workers: 4\n")
	writeFile(t, filepath.Join(dir, ".env"), "PASSENGER_REPORT_LABEL_LANGUAGE=en\n")
	t.Cleanup(func() { os.Unsetenv("PASSENGER_REPORT_LABEL_LANGUAGE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Forecast.Workers)
	assert.Equal(t, "en", cfg.Report.Language)
}

func TestInputConfig_Separators(t *testing.T) {
	tests := []struct {
		name      string
		cfg       InputConfig
		decimal   rune
		thousands rune
	}{
		{name: "defaults", cfg: InputConfig{DecimalSeparator: "dot", ThousandsSeparator: "none"}, decimal: '.', thousands: 0},
		{name: "indonesian", cfg: InputConfig{DecimalSeparator: "comma", ThousandsSeparator: "dot"}, decimal: ',', thousands: '.'},
		{name: "space grouping", cfg: InputConfig{DecimalSeparator: "dot", ThousandsSeparator: "space"}, decimal: '.', thousands: ' '},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.decimal, tt.cfg.Decimal())
			assert.Equal(t, tt.thousands, tt.cfg.Thousands())
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}
