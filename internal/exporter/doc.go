// Package exporter writes forecast results for people and spreadsheets.
//
// Reporter writes the enabled artifacts into the configured output directory:
//
//   - forecast_summary.csv: one row per category with n_obs, last_actual,
//     slope, intercept, r2, direction and pred_next_k / pred_next_k_label
//     pairs, rounded to the configured precision. An optional UTF-8 BOM helps
//     Excel detect the encoding.
//   - forecast_summary.json: records, skipped and dropped categories plus run
//     metadata.
//   - forecast_summary.txt: a plain text summary report.
//   - forecast_charts.xlsx: a summary sheet and one sheet per category with
//     actual values, the fitted trend and the forecast drawn as a line chart.
//
// WriteConsoleSummary prints the table shown at the end of a run. Direction
// labels in the console, text and workbook follow the report language; the
// CSV and JSON always use up, down and flat.
//
// Example usage:
//
//	reporter := exporter.NewReporter(cfg.Report, logger)
//	outputs, err := reporter.Write(ctx, info, result)
//	if err != nil {
//	    return err
//	}
//	exporter.WriteConsoleSummary(os.Stdout, result, cfg.Report.Language, cfg.Report.Precision)
package exporter
