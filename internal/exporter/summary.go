package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/passenger"
)

// RunInfo describes the run a report belongs to
type RunInfo struct {
	RunID         string    `json:"run_id"`
	App           string    `json:"app"`
	Version       string    `json:"version"`
	GeneratedAt   time.Time `json:"generated_at"`
	Sources       []string  `json:"sources"`
	Horizon       int       `json:"horizon"`
	SchemaPolicy  string    `json:"schema_policy"`
	MissingPolicy string    `json:"missing_policy"`
	Observations  int       `json:"observations"`
}

// SummaryHeaders returns the summary table columns for horizon h
func SummaryHeaders(h int) []string {
	headers := []string{"category", "n_obs", "last_actual", "slope", "intercept", "r2", "direction"}
	for k := 1; k <= h; k++ {
		headers = append(headers, fmt.Sprintf("pred_next_%d", k), fmt.Sprintf("pred_next_%d_label", k))
	}
	return headers
}

// SummaryRows converts records to summary table rows with numbers rounded to
// precision decimals
func SummaryRows(records []passenger.ForecastRecord, horizon, precision int) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := []string{
			rec.Category,
			formatInt(rec.NObs),
			formatFloat(rec.LastActual, precision),
			formatFloat(rec.Slope, precision),
			formatFloat(rec.Intercept, precision),
			formatFloat(rec.R2, precision),
			string(rec.Direction),
		}
		for k := 0; k < horizon; k++ {
			row = append(row, forecastValue(rec, k, precision), forecastLabel(rec, k))
		}
		rows = append(rows, row)
	}
	return rows
}

// summaryDocument is the JSON summary layout
type summaryDocument struct {
	Metadata RunInfo                     `json:"metadata"`
	Records  []passenger.ForecastRecord  `json:"records"`
	Skipped  []passenger.Skipped         `json:"skipped"`
	Dropped  []passenger.DroppedCategory `json:"dropped"`
}

// SaveSummaryJSON writes records, skipped categories and run metadata as
// indented JSON
func SaveSummaryJSON(info RunInfo, result *passenger.Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	doc := summaryDocument{
		Metadata: info,
		Records:  result.Records,
		Skipped:  result.Skipped,
		Dropped:  result.Dropped,
	}
	if doc.Records == nil {
		doc.Records = []passenger.ForecastRecord{}
	}
	if doc.Skipped == nil {
		doc.Skipped = []passenger.Skipped{}
	}
	if doc.Dropped == nil {
		doc.Dropped = []passenger.DroppedCategory{}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// SummaryStatistics aggregates a result for the text report
type SummaryStatistics struct {
	Forecast       int
	Skipped        int
	Dropped        int
	Directions     map[passenger.Direction]int
	MeanR2         float64
	StrongestRise  *passenger.ForecastRecord
	StrongestDecay *passenger.ForecastRecord
}

// CalculateSummaryStatistics summarises a result
func CalculateSummaryStatistics(result *passenger.Result) SummaryStatistics {
	s := SummaryStatistics{
		Forecast:   len(result.Records),
		Skipped:    len(result.Skipped),
		Dropped:    len(result.Dropped),
		Directions: make(map[passenger.Direction]int),
	}
	if len(result.Records) == 0 {
		return s
	}

	r2 := make([]float64, len(result.Records))
	for i := range result.Records {
		rec := &result.Records[i]
		r2[i] = rec.R2
		s.Directions[rec.Direction]++
		if rec.Slope > 0 && (s.StrongestRise == nil || rec.Slope > s.StrongestRise.Slope) {
			s.StrongestRise = rec
		}
		if rec.Slope < 0 && (s.StrongestDecay == nil || rec.Slope < s.StrongestDecay.Slope) {
			s.StrongestDecay = rec
		}
	}
	s.MeanR2 = stat.Mean(r2, nil)
	return s
}

// WriteSummaryReport writes the human-readable run summary
func WriteSummaryReport(w io.Writer, info RunInfo, result *passenger.Result, lang string, precision int) error {
	l := labelsFor(lang)
	summary := CalculateSummaryStatistics(result)
	title := fmt.Sprintf("%s - %s", info.App, l.SummaryTitle)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", len([]rune(title))))
	fmt.Fprintf(&b, "Generated: %s\n", info.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Run ID: %s\n\n", info.RunID)

	fmt.Fprintf(&b, "DATASET OVERVIEW\n")
	fmt.Fprintf(&b, "----------------\n")
	fmt.Fprintf(&b, "Sources: %s\n", strings.Join(info.Sources, ", "))
	fmt.Fprintf(&b, "Observations: %d\n", info.Observations)
	fmt.Fprintf(&b, "Horizon: %d\n", info.Horizon)
	fmt.Fprintf(&b, "Schema policy: %s\n", info.SchemaPolicy)
	fmt.Fprintf(&b, "Missing policy: %s\n\n", info.MissingPolicy)

	fmt.Fprintf(&b, "TREND STATISTICS\n")
	fmt.Fprintf(&b, "----------------\n")
	fmt.Fprintf(&b, "Categories forecast: %d\n", summary.Forecast)
	fmt.Fprintf(&b, "Categories skipped: %d\n", summary.Skipped)
	fmt.Fprintf(&b, "Categories dropped: %d\n", summary.Dropped)
	if summary.Forecast > 0 {
		fmt.Fprintf(&b, "Mean R2: %.4f\n", summary.MeanR2)
		for _, d := range []passenger.Direction{passenger.DirectionUp, passenger.DirectionDown, passenger.DirectionFlat} {
			fmt.Fprintf(&b, "%s: %d\n", d.Label(lang), summary.Directions[d])
		}
		if summary.StrongestRise != nil {
			fmt.Fprintf(&b, "Strongest rise: %s (%s per month)\n",
				summary.StrongestRise.Category, formatFloat(summary.StrongestRise.Slope, precision))
		}
		if summary.StrongestDecay != nil {
			fmt.Fprintf(&b, "Strongest decline: %s (%s per month)\n",
				summary.StrongestDecay.Category, formatFloat(summary.StrongestDecay.Slope, precision))
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "FORECASTS\n")
	fmt.Fprintf(&b, "---------\n")
	for _, rec := range result.Records {
		fmt.Fprintf(&b, "%s: %s, last %s (%s), slope %s, r2 %s\n",
			rec.Category, rec.Direction.Label(lang),
			formatFloat(rec.LastActual, precision), rec.LastPeriod.Label(),
			formatFloat(rec.Slope, precision), formatFloat(rec.R2, precision))
		for _, fp := range rec.Forecasts {
			fmt.Fprintf(&b, "    %s: %s\n", fp.Label, formatFloat(fp.Value, precision))
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSKIPPED CATEGORIES\n")
		fmt.Fprintf(&b, "------------------\n")
		for _, s := range result.Skipped {
			fmt.Fprintf(&b, "%s: %s (%s)\n", s.Category, s.Reason, s.Detail)
		}
	}

	if len(result.Dropped) > 0 {
		dropped := make([]passenger.DroppedCategory, len(result.Dropped))
		copy(dropped, result.Dropped)
		sort.Slice(dropped, func(i, j int) bool { return dropped[i].Category < dropped[j].Category })

		fmt.Fprintf(&b, "\nDROPPED CATEGORIES\n")
		fmt.Fprintf(&b, "------------------\n")
		for _, d := range dropped {
			fmt.Fprintf(&b, "%s: missing from %s\n", d.Category, strings.Join(d.MissingFrom, ", "))
		}
	}

	b.WriteString("\n" + l.Legend + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// SaveSummaryReport writes the text summary to outputPath
func SaveSummaryReport(info RunInfo, result *passenger.Result, lang string, precision int, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer file.Close()

	if err := WriteSummaryReport(file, info, result, lang, precision); err != nil {
		return fmt.Errorf("write summary report: %w", err)
	}
	return nil
}
