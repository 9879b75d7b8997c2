package exporter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/passenger"
)

// maxSheetName is the longest sheet name Excel accepts
const maxSheetName = 31

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// SheetName turns a category into a sheet name: lower case, runs of other
// characters collapsed to a hyphen, "kategori" when nothing is left.
func SheetName(category string) string {
	name := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(category)), "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "kategori"
	}
	if len(name) > maxSheetName {
		name = strings.TrimRight(name[:maxSheetName], "-")
	}
	return name
}

// sheetNamer hands out unique sheet names. Excel compares them without case.
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer(reserved ...string) *sheetNamer {
	n := &sheetNamer{used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[strings.ToLower(r)] = true
	}
	return n
}

func (n *sheetNamer) next(category string) string {
	base := SheetName(category)
	name := base
	for i := 2; n.used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("-%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		name = trimmed + suffix
	}
	n.used[strings.ToLower(name)] = true
	return name
}

// Workbook builds the chart workbook: a summary sheet and one sheet per
// forecast category holding its history, fitted trend and forecast with a
// line chart
type Workbook struct {
	lang      string
	precision int
}

// NewWorkbook creates a workbook builder
func NewWorkbook(lang string, precision int) *Workbook {
	return &Workbook{lang: lang, precision: precision}
}

// Build renders result into a new excelize file. The caller owns the file.
func (wb *Workbook) Build(result *passenger.Result) (*excelize.File, error) {
	l := labelsFor(wb.lang)
	f := excelize.NewFile()

	summarySheet := l.SummarySheet
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := wb.writeSummary(f, summarySheet, headerStyle, result); err != nil {
		f.Close()
		return nil, err
	}

	namer := newSheetNamer(summarySheet, l.SkippedSheet)
	for _, rec := range result.Records {
		sheet := namer.next(rec.Category)
		if err := wb.writeCategory(f, sheet, headerStyle, rec, l); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet for %s: %w", rec.Category, err)
		}
	}

	if len(result.Skipped) > 0 {
		if err := wb.writeSkipped(f, l.SkippedSheet, headerStyle, result.Skipped, l); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Save builds the workbook and writes it to path
func (wb *Workbook) Save(result *passenger.Result, path string) error {
	f, err := wb.Build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (wb *Workbook) writeSummary(f *excelize.File, sheet string, headerStyle int, result *passenger.Result) error {
	headers := SummaryHeaders(result.Horizon)
	if err := setRow(f, sheet, 1, toRow(headers)); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}

	for i, rec := range result.Records {
		row := []interface{}{
			rec.Category,
			rec.NObs,
			roundTo(rec.LastActual, wb.precision),
			roundTo(rec.Slope, wb.precision),
			roundTo(rec.Intercept, wb.precision),
			roundTo(rec.R2, wb.precision),
			rec.Direction.Label(wb.lang),
		}
		for k := 0; k < result.Horizon; k++ {
			if k < len(rec.Forecasts) {
				row = append(row, roundTo(rec.Forecasts[k].Value, wb.precision), rec.Forecasts[k].Label)
			} else {
				row = append(row, nil, nil)
			}
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return fmt.Errorf("set summary column width: %w", err)
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", last, 14)
}

func (wb *Workbook) writeCategory(f *excelize.File, sheet string, headerStyle int, rec passenger.ForecastRecord, l labels) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, []interface{}{l.AxisPeriod, l.Actual, l.Trend, l.Forecast}); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	model := rec.Model()
	row := 2
	for _, p := range rec.History {
		trend := roundTo(model.Predict(p.PeriodIndex), wb.precision)
		if err := setRow(f, sheet, row, []interface{}{p.Period.Label(), p.Value, trend}); err != nil {
			return err
		}
		row++
	}
	for _, fp := range rec.Forecasts {
		if err := setRow(f, sheet, row, []interface{}{fp.Label, nil, nil, roundTo(fp.Value, wb.precision)}); err != nil {
			return err
		}
		row++
	}
	lastRow := row - 1

	if err := f.SetColWidth(sheet, "A", "D", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	ref := func(col string) string {
		return fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, lastRow)
	}
	series := []excelize.ChartSeries{
		{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: ref("A"),
			Values:     ref("B"),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 5},
		},
		{
			Name:       fmt.Sprintf("'%s'!$C$1", sheet),
			Categories: ref("A"),
			Values:     ref("C"),
			Marker:     excelize.ChartMarker{Symbol: "none"},
		},
		{
			Name:       fmt.Sprintf("'%s'!$D$1", sheet),
			Categories: ref("A"),
			Values:     ref("D"),
			Marker:     excelize.ChartMarker{Symbol: "x", Size: 7},
		},
	}

	return f.AddChart(sheet, "F2", &excelize.Chart{
		Type:         excelize.Line,
		Series:       series,
		Title:        []excelize.RichTextRun{{Text: fmt.Sprintf(l.ChartTitle, rec.Category)}},
		Legend:       excelize.ChartLegend{Position: "bottom"},
		XAxis:        excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: l.AxisPeriod}}},
		YAxis:        excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: l.AxisValue}}, MajorGridLines: true},
		Dimension:    excelize.ChartDimension{Width: 720, Height: 360},
		ShowBlanksAs: "gap",
	})
}

func (wb *Workbook) writeSkipped(f *excelize.File, sheet string, headerStyle int, skipped []passenger.Skipped, l labels) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create skipped sheet: %w", err)
	}
	if err := setRow(f, sheet, 1, []interface{}{l.Category, l.Reason, l.Detail}); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style skipped header: %w", err)
	}
	for i, s := range skipped {
		if err := setRow(f, sheet, i+2, []interface{}{s.Category, s.Reason, s.Detail}); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "C", 24)
}

// setRow writes values from column A of row. Nil values leave the cell empty.
func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
