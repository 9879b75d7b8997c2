// Package config loads and validates the forecaster configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//  1. Built-in defaults (Default)
//  2. A YAML file (forecast.yaml or configs/forecast.yaml, or an explicit path)
//  3. Environment variables, optionally seeded from a .env file
//
// # Environment Variables
//
// All variables use the PASSENGER_ prefix followed by the section and key:
//
//	PASSENGER_FORECAST_HORIZON=6
//	PASSENGER_FORECAST_SCHEMA_POLICY=intersect
//	PASSENGER_INPUT_YEARS=2024,2025
//	PASSENGER_REPORT_OUTPUT_DIR=out
//	PASSENGER_ARCHIVE_DB_PATH=data/runs.db
//
// # Validation
//
// Load validates the result with struct tags and returns a CONFIG AppError
// naming the offending field, e.g. forecast.horizon.
package config
