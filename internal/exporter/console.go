package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/passenger"
)

// WriteConsoleSummary prints the trend table and direction legend shown at
// the end of a run. Predictions come first, then their labels.
func WriteConsoleSummary(w io.Writer, result *passenger.Result, lang string, precision int) error {
	l := labelsFor(lang)
	rule := strings.Repeat("-", 60)

	headers := []string{"category", "n_obs", "last_actual", "slope", "r2", "direction"}
	for k := 1; k <= result.Horizon; k++ {
		headers = append(headers, fmt.Sprintf("pred_next_%d", k))
	}
	for k := 1; k <= result.Horizon; k++ {
		headers = append(headers, fmt.Sprintf("pred_next_%d_label", k))
	}

	if _, err := fmt.Fprintf(w, "\n%s:\n%s\n", l.SummaryTitle, rule); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(headers, "\t")+"\t")
	for _, rec := range result.Records {
		cells := []string{
			rec.Category,
			formatInt(rec.NObs),
			formatFloat(rec.LastActual, precision),
			formatFloat(rec.Slope, precision),
			formatFloat(rec.R2, precision),
			rec.Direction.Label(lang),
		}
		for k := 0; k < result.Horizon; k++ {
			cells = append(cells, forecastValue(rec, k, precision))
		}
		for k := 0; k < result.Horizon; k++ {
			cells = append(cells, forecastLabel(rec, k))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, s := range result.Skipped {
		if _, err := fmt.Fprintf(w, "skipped %s: %s (%s)\n", s.Category, s.Reason, s.Detail); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n", rule, l.Legend)
	return err
}

func forecastValue(rec passenger.ForecastRecord, k, precision int) string {
	if k >= len(rec.Forecasts) {
		return ""
	}
	return formatFloat(rec.Forecasts[k].Value, precision)
}

func forecastLabel(rec passenger.ForecastRecord, k int) string {
	if k >= len(rec.Forecasts) {
		return ""
	}
	return rec.Forecasts[k].Label
}
