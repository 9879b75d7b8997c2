package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Forecast  ForecastConfig  `yaml:"forecast" envconfig:"FORECAST"`
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Archive   ArchiveConfig   `yaml:"archive" envconfig:"ARCHIVE"`
}

// ForecastConfig controls fitting and projection
type ForecastConfig struct {
	Horizon       int    `yaml:"horizon" envconfig:"HORIZON" validate:"min=1,max=120"`
	Workers       int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	SchemaPolicy  string `yaml:"schema_policy" envconfig:"SCHEMA_POLICY" validate:"oneof=fail intersect union"`
	MissingPolicy string `yaml:"missing_policy" envconfig:"MISSING_POLICY" validate:"oneof=compact exclude fail"`
}

// InputConfig describes where tables come from and how their cells are read
type InputConfig struct {
	Files              []string `yaml:"files" envconfig:"FILES"`
	Years              []int    `yaml:"years" envconfig:"YEARS" validate:"dive,min=1900,max=2100"`
	DefaultYear        int      `yaml:"default_year" envconfig:"DEFAULT_YEAR" validate:"omitempty,min=1900,max=2100"`
	Sheet              string   `yaml:"sheet" envconfig:"SHEET"`
	DecimalSeparator   string   `yaml:"decimal_separator" envconfig:"DECIMAL_SEPARATOR" validate:"oneof=dot comma"`
	ThousandsSeparator string   `yaml:"thousands_separator" envconfig:"THOUSANDS_SEPARATOR" validate:"oneof=none dot comma space"`
}

// ReportConfig controls which artifacts are written
type ReportConfig struct {
	OutputDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	WriteCSV      bool   `yaml:"write_csv" envconfig:"WRITE_CSV"`
	WriteJSON     bool   `yaml:"write_json" envconfig:"WRITE_JSON"`
	WriteSummary  bool   `yaml:"write_summary" envconfig:"WRITE_SUMMARY"`
	WriteWorkbook bool   `yaml:"write_workbook" envconfig:"WRITE_WORKBOOK"`
	CSVBOM        bool   `yaml:"csv_bom" envconfig:"CSV_BOM"`
	Precision     int    `yaml:"precision" envconfig:"PRECISION" validate:"min=0,max=6"`
	Language      string `yaml:"language" envconfig:"LABEL_LANGUAGE" validate:"oneof=id en"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig controls span export and the metrics textfile
type TelemetryConfig struct {
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
	MetricsFile   string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	Environment   string  `yaml:"environment" envconfig:"DEPLOYMENT_ENVIRONMENT"`
}

// ArchiveConfig points at the optional SQLite run archive. An empty path
// disables archiving.
type ArchiveConfig struct {
	Path string `yaml:"path" envconfig:"DB_PATH"`
}

// Load builds the configuration from defaults, an optional YAML file and
// PASSENGER_* environment variables, in increasing order of precedence.
// A .env file in the working directory is loaded into the environment first.
// When path is empty the usual locations are searched.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext("file", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile decodes YAML over the values already present in cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"forecast.yaml",
		"configs/forecast.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Validate checks the configuration against its struct tags. The first
// failing field is reported by its YAML name.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// A non-positive horizon is reported as such, not as a generic config error
	if c.Forecast.Horizon < 1 {
		return apperrors.NewInvalidHorizonError(c.Forecast.Horizon).
			WithContext("field", "forecast.horizon")
	}

	err := v.Struct(c)
	if err == nil {
		if c.Input.Thousands() == c.Input.Decimal() {
			return apperrors.NewConfigError("thousands_separator must differ from decimal_separator", nil).
				WithContext("field", "input.thousands_separator")
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewConfigError("config validation failed", err)
	}

	fe := verrs[0]
	return apperrors.NewConfigError(formatValidationError(fe), nil).
		WithContext("field", strings.TrimPrefix(fe.Namespace(), "Config."))
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Forecast: ForecastConfig{
			Horizon:       DefaultHorizon,
			Workers:       1,
			SchemaPolicy:  "fail",
			MissingPolicy: "compact",
		},
		Input: InputConfig{
			DecimalSeparator:   "dot",
			ThousandsSeparator: "none",
		},
		Report: ReportConfig{
			OutputDir:     DefaultOutputDir,
			WriteCSV:      true,
			WriteJSON:     true,
			WriteSummary:  true,
			WriteWorkbook: true,
			CSVBOM:        false,
			Precision:     2,
			Language:      "id",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/forecast.log",
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			SampleRatio:   1.0,
			Environment:   "development",
		},
	}
}

// Decimal returns the decimal separator rune
func (c InputConfig) Decimal() rune {
	if c.DecimalSeparator == "comma" {
		return ','
	}
	return '.'
}

// Thousands returns the thousands separator rune, or 0 when none is used
func (c InputConfig) Thousands() rune {
	switch c.ThousandsSeparator {
	case "dot":
		return '.'
	case "comma":
		return ','
	case "space":
		return ' '
	default:
		return 0
	}
}
