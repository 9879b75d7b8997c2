package config

// Application constants
const (
	AppName    = "passenger-forecast"
	AppVersion = "1.2.0"

	// EnvPrefix namespaces every environment variable, e.g. PASSENGER_FORECAST_HORIZON.
	EnvPrefix = "PASSENGER"

	DefaultHorizon   = 3
	DefaultOutputDir = "output"

	// Output file names inside the output directory
	SummaryCSVFile     = "forecast_summary.csv"
	SummaryJSONFile    = "forecast_summary.json"
	SummaryTextFile    = "forecast_summary.txt"
	ChartsWorkbookFile = "forecast_charts.xlsx"
)
