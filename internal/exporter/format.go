package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats a value with a fixed number of decimals, so 13.4 is
// written as 13.40 at precision 2
func formatFloat(f float64, precision int) string {
	return strconv.FormatFloat(roundTo(f, precision), 'f', precision, 64)
}

// roundTo rounds half away from zero to precision decimals
func roundTo(f float64, precision int) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	p := math.Pow(10, float64(precision))
	r := math.Round(f*p) / p
	if r == 0 {
		// no negative zero
		return 0
	}
	return r
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}
