package passenger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
)

// ReadOptions controls how table cells are read
type ReadOptions struct {
	// Decimal is the decimal separator, '.' when zero
	Decimal rune
	// Thousands is the digit grouping separator removed before parsing, none when zero
	Thousands rune
	// Sheet selects the workbook sheet; the first sheet when empty
	Sheet string
}

var missingSentinels = map[string]bool{
	"":     true,
	"-":    true,
	"–":    true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// LoadTable reads the wide table at path, tagging it with year. The format
// is chosen by extension: .csv, or .xlsx/.xlsm.
func LoadTable(path string, year int, opts ReadOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewMalformedInputError("cannot open table", err).WithContext("file", path)
		}
		defer f.Close()
		return ReadCSV(f, path, year, opts)
	case ".xlsx", ".xlsm":
		return ReadWorkbook(path, year, opts)
	default:
		return nil, apperrors.NewMalformedInputError("unsupported table format", nil).
			WithContext("file", path)
	}
}

// ReadCSV parses a CSV wide table. Comma, semicolon and tab delimiters are
// detected from the header line.
func ReadCSV(r io.Reader, source string, year int, opts ReadOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewMalformedInputError("cannot read table", err).WithContext("file", source)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		appErr := apperrors.NewMalformedInputError("invalid CSV", err).WithContext("file", source)
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			appErr.WithContext("row", pe.Line)
		}
		return nil, appErr
	}

	return parseRecords(records, source, year, opts, true)
}

// ReadWorkbook parses the wide table on one sheet of an Excel workbook.
// Raw cell values are used so number formats do not affect parsing.
func ReadWorkbook(path string, year int, opts ReadOptions) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewMalformedInputError("cannot open workbook", err).WithContext("file", path)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewMalformedInputError("workbook has no sheets", nil).WithContext("file", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewMalformedInputError("cannot read sheet", err).
			WithContext("file", path).
			WithContext("sheet", sheet)
	}

	// Trailing empty cells are not returned, so short rows are expected
	return parseRecords(rows, path, year, opts, false)
}

// parseRecords turns header plus data records into a Table. With strict set
// a data row narrower than a month column is malformed; otherwise the absent
// cells are empty.
func parseRecords(records [][]string, source string, year int, opts ReadOptions, strict bool) (*Table, error) {
	if len(records) == 0 {
		return nil, apperrors.NewMalformedInputError("table is empty", nil).WithContext("file", source)
	}

	var monthCol [12]int
	for i := range monthCol {
		monthCol[i] = -1
	}
	annualCol := -1

	header := records[0]
	for c := 1; c < len(header); c++ {
		if m, ok := ParseMonthHeader(header[c]); ok {
			if monthCol[m-1] >= 0 {
				return nil, apperrors.NewMalformedInputError("duplicate month column", nil).
					WithContext("file", source).
					WithContext("month", IndonesianMonths[m-1])
			}
			monthCol[m-1] = c
			continue
		}
		if annualCol < 0 && IsAnnualHeader(header[c]) {
			annualCol = c
		}
	}

	first, last := -1, -1
	for m, c := range monthCol {
		if c < 0 {
			continue
		}
		if first < 0 {
			first = m
		}
		last = m
	}
	if first < 0 {
		return nil, apperrors.NewMalformedInputError("header has no month columns", nil).
			WithContext("file", source)
	}
	for m := first + 1; m < last; m++ {
		if monthCol[m] < 0 {
			return nil, apperrors.NewMalformedInputError("missing month column", nil).
				WithContext("file", source).
				WithContext("month", IndonesianMonths[m])
		}
	}

	table := &Table{Source: source, Year: year}
	seen := make(map[string]int)

	for i := 1; i < len(records); i++ {
		rec := records[i]
		line := i + 1
		if isBlankRecord(rec) {
			continue
		}

		category := NormalizeCategory(rec[0])
		if category == "" {
			return nil, apperrors.NewMalformedInputError("row has no category", nil).
				WithContext("file", source).
				WithContext("row", line)
		}
		if firstLine, dup := seen[category]; dup {
			return nil, apperrors.NewMalformedInputError(
				fmt.Sprintf("category appears twice (first on row %d)", firstLine), nil).
				WithContext("file", source).
				WithContext("row", line).
				WithContext("category", category)
		}
		seen[category] = line

		row := RawRow{Category: category, Line: line}
		for m := 0; m < 12; m++ {
			c := monthCol[m]
			if c < 0 {
				row.Values[m].Missing = true
				continue
			}

			cell := ""
			if c < len(rec) {
				cell = rec[c]
			} else if strict {
				return nil, apperrors.NewMalformedInputError("row is shorter than the header", nil).
					WithContext("file", source).
					WithContext("row", line).
					WithContext("category", category).
					WithContext("month", IndonesianMonths[m])
			}

			v, missing, err := parseCell(cell, opts)
			if err != nil {
				return nil, apperrors.NewMalformedInputError(fmt.Sprintf("non-numeric value %q", cleanCell(cell)), err).
					WithContext("file", source).
					WithContext("row", line).
					WithContext("category", category).
					WithContext("month", IndonesianMonths[m])
			}
			row.Values[m] = MonthValue{Value: v, Missing: missing}
		}

		if annualCol >= 0 && annualCol < len(rec) {
			if v, missing, err := parseCell(rec[annualCol], opts); err == nil && !missing {
				row.Annual = &v
			}
		}

		table.Rows = append(table.Rows, row)
	}

	// The reporting range ends at the last month anyone reported
	reported := -1
	for m := last; m >= first && reported < 0; m-- {
		for _, r := range table.Rows {
			if !r.Values[m].Missing {
				reported = m
				break
			}
		}
	}
	for m := first; m <= reported; m++ {
		table.Months = append(table.Months, time.Month(m+1))
	}

	return table, nil
}

// parseCell converts a cell to a number. Missing sentinels report missing
// with no error.
func parseCell(raw string, opts ReadOptions) (float64, bool, error) {
	s := cleanCell(raw)
	if missingSentinels[strings.ToLower(s)] {
		return 0, true, nil
	}

	if opts.Thousands != 0 {
		s = strings.ReplaceAll(s, string(opts.Thousands), "")
	}
	if opts.Decimal != 0 && opts.Decimal != '.' {
		s = strings.Replace(s, string(opts.Decimal), ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("not a finite number")
	}
	return v, false, nil
}

func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if cleanCell(cell) != "" {
			return false
		}
	}
	return true
}

// detectDelimiter picks the most frequent of comma, semicolon and tab on the
// first line
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
