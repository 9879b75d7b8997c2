package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// IndonesianHeader is a wide-table header: category, twelve Indonesian
// month names and the annual total.
var IndonesianHeader = []string{
	"Tipe Kendaraan",
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	"Tahunan",
}

// WideRow builds a CSV row for category with one cell per month value.
// Months beyond len(values) are left empty and the annual cell holds the
// sum of the given values.
func WideRow(category string, values ...float64) []string {
	row := make([]string, 14)
	row[0] = category
	sum := 0.0
	for i, v := range values {
		row[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
		sum += v
	}
	row[13] = strconv.FormatFloat(sum, 'f', -1, 64)
	return row
}

// Ramp returns n values start, start+step, ...
func Ramp(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// WriteCSVTable writes header and rows as a comma separated file under dir
// and returns its path. A UTF-8 byte order mark is prepended when bom is set.
func WriteCSVTable(t *testing.T, dir, name string, bom bool, header []string, rows ...[]string) string {
	t.Helper()

	var b strings.Builder
	if bom {
		b.WriteString("\uFEFF")
	}
	b.WriteString(strings.Join(header, ","))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(strings.Join(r, ","))
		b.WriteString("\n")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}
