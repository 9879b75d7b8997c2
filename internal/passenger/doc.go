// Package passenger turns monthly railway passenger tables into short-horizon
// linear trend forecasts per vehicle category.
//
// # Pipeline
//
// The package covers the computational core of a single batch run:
//
//  1. LoadTable / ReadCSV / ReadWorkbook parse one wide table per year. The
//     first column is the category, month columns are recognised by their
//     Indonesian or English names and the annual total column is ignored.
//  2. Reshape merges the tables into long-form CategorySeries whose period
//     indices run 1..n across all years, applying a SchemaPolicy when years
//     disagree on categories and a MissingPolicy to empty cells.
//  3. FitTrend fits an ordinary least squares line to each series.
//  4. Project extends the line H periods and Classify labels the next period
//     up, down or flat against a tolerance of max(0.5% of the last value, 10).
//
// Forecaster runs steps 3 and 4 over a Dataset, optionally in parallel, and
// returns records in report order: Total first, then by category name.
//
// # Usage Example
//
//	tables := make([]*passenger.Table, 0, len(inputs))
//	for _, in := range inputs {
//	    t, err := passenger.LoadTable(in.Path, in.Year, passenger.ReadOptions{})
//	    if err != nil {
//	        return err
//	    }
//	    tables = append(tables, t)
//	}
//
//	ds, err := passenger.Reshape(tables, passenger.ReshapeOptions{})
//	if err != nil {
//	    return err
//	}
//
//	f, err := passenger.NewForecaster(3, 1, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := f.Forecast(ctx, ds)
//
// # Errors
//
// Structural problems are reported as MALFORMED_INPUT or SCHEMA_MISMATCH
// AppErrors carrying file, row, category and month context. A series with
// fewer than two observations is not an error for the run: the category is
// listed in Result.Skipped.
package passenger
