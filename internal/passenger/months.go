package passenger

import (
	"strings"
	"time"
)

var monthAbbrevs = [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// IndonesianMonths are the full month names used as wide-table headers
var IndonesianMonths = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var monthHeaders = buildMonthHeaders()

// annualHeaders name the yearly total column, which is never an observation
var annualHeaders = map[string]bool{
	"tahunan": true,
	"total":   true,
	"annual":  true,
	"jumlah":  true,
}

func buildMonthHeaders() map[string]time.Month {
	m := make(map[string]time.Month, 48)
	for i := 0; i < 12; i++ {
		month := time.Month(i + 1)
		m[strings.ToLower(IndonesianMonths[i])] = month
		m[strings.ToLower(month.String())] = month
		m[strings.ToLower(monthAbbrevs[i])] = month
		m[strings.ToLower(month.String()[:3])] = month
	}
	// Common alternative spellings
	m["pebruari"] = time.February
	m["nopember"] = time.November
	m["agt"] = time.August
	m["ags"] = time.August
	return m
}

// MonthAbbrev returns the Indonesian three-letter abbreviation for m
func MonthAbbrev(m time.Month) string {
	return monthAbbrevs[m-1]
}

// ParseMonthHeader recognises a month column header in Indonesian or
// English, full or abbreviated, ignoring case.
func ParseMonthHeader(header string) (time.Month, bool) {
	m, ok := monthHeaders[strings.ToLower(cleanCell(header))]
	return m, ok
}

// IsAnnualHeader reports whether header names the yearly total column
func IsAnnualHeader(header string) bool {
	return annualHeaders[strings.ToLower(cleanCell(header))]
}

// cleanCell strips a UTF-8 byte order mark and surrounding whitespace
func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF"))
}

// NormalizeCategory trims a category name and collapses inner whitespace so
// the same category matches across files.
func NormalizeCategory(s string) string {
	return strings.Join(strings.Fields(cleanCell(s)), " ")
}

// IsTotal reports whether category is the aggregate row
func IsTotal(category string) bool {
	return strings.EqualFold(category, "total")
}
