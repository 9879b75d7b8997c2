package passenger

import (
	"fmt"
	"time"
)

// MinObservations is the smallest series a trend can be fitted to
const MinObservations = 2

// MinTolerance is the absolute floor of the direction tolerance band
const MinTolerance = 10.0

// RelativeTolerance is the share of the last actual value used as tolerance
const RelativeTolerance = 0.005

// Period is a calendar month
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Add returns the period n months later (earlier for negative n)
func (p Period) Add(n int) Period {
	idx := p.Year*12 + int(p.Month-1) + n
	year, month := idx/12, idx%12
	if month < 0 {
		year--
		month += 12
	}
	return Period{Year: year, Month: time.Month(month + 1)}
}

// Before reports whether p is earlier than o
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Label formats the period as YYYY-Mon using Indonesian month abbreviations,
// e.g. 2025-Agu.
func (p Period) Label() string {
	return fmt.Sprintf("%d-%s", p.Year, MonthAbbrev(p.Month))
}

func (p Period) String() string {
	return p.Label()
}

// MonthValue is one cell of a wide table
type MonthValue struct {
	Value   float64
	Missing bool
}

// RawRow is one category row of a wide table. Values is indexed by
// calendar month (January at 0); months absent from the table are Missing.
type RawRow struct {
	Category string
	Values   [12]MonthValue
	Annual   *float64
	Line     int
}

// Value returns the cell for month m
func (r RawRow) Value(m time.Month) MonthValue {
	return r.Values[m-1]
}

// Table is a parsed wide table for one year. Months lists the reporting
// range in calendar order; trailing months that nobody reported are not part
// of it.
type Table struct {
	Source string
	Year   int
	Months []time.Month
	Rows   []RawRow
}

// Categories returns the category names in row order
func (t *Table) Categories() []string {
	names := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		names[i] = r.Category
	}
	return names
}

// Row returns the row for category, if present
func (t *Table) Row(category string) (RawRow, bool) {
	for _, r := range t.Rows {
		if r.Category == category {
			return r, true
		}
	}
	return RawRow{}, false
}

// ObservedPoint is one observation in long form
type ObservedPoint struct {
	Category    string  `json:"category"`
	PeriodIndex int     `json:"period_index"`
	Period      Period  `json:"period"`
	Value       float64 `json:"value"`
}

// CategorySeries is the ordered observations of one category. Period
// indices start at 1 and increase by exactly 1.
type CategorySeries struct {
	Category string          `json:"category"`
	Points   []ObservedPoint `json:"points"`
}

// NObs returns the number of observations
func (s CategorySeries) NObs() int {
	return len(s.Points)
}

// Last returns the final observation. It panics on an empty series.
func (s CategorySeries) Last() ObservedPoint {
	return s.Points[len(s.Points)-1]
}

// TrendModel is a fitted straight line value = Intercept + Slope*t
type TrendModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
	NObs      int     `json:"n_obs"`
}

// Predict evaluates the trend at period index t
func (m TrendModel) Predict(t int) float64 {
	return m.Intercept + m.Slope*float64(t)
}

// Direction classifies the next forecast against the last actual
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Label returns the display label for lang ("id" or "en")
func (d Direction) Label(lang string) string {
	if lang != "id" {
		return string(d)
	}
	switch d {
	case DirectionUp:
		return "naik"
	case DirectionDown:
		return "turun"
	default:
		return "tetap"
	}
}

// ForecastPoint is one projected period
type ForecastPoint struct {
	PeriodIndex int     `json:"period_index"`
	Period      Period  `json:"period"`
	Label       string  `json:"label"`
	Value       float64 `json:"value"`
}

// ForecastRecord is the per-category result of a run
type ForecastRecord struct {
	Category   string          `json:"category"`
	NObs       int             `json:"n_obs"`
	LastActual float64         `json:"last_actual"`
	LastPeriod Period          `json:"last_period"`
	Slope      float64         `json:"slope"`
	Intercept  float64         `json:"intercept"`
	R2         float64         `json:"r2"`
	Tolerance  float64         `json:"tolerance"`
	Direction  Direction       `json:"direction"`
	Forecasts  []ForecastPoint `json:"forecasts"`

	// History is the series the trend was fitted to, for charts
	History []ObservedPoint `json:"-"`
}

// Model returns the trend the record was produced from
func (r ForecastRecord) Model() TrendModel {
	return TrendModel{Slope: r.Slope, Intercept: r.Intercept, R2: r.R2, NObs: r.NObs}
}

// Skip reasons
const (
	ReasonInsufficientData = "insufficient_data"
	ReasonMissingData      = "missing_data"
)

// Skipped records a category that received no forecast
type Skipped struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
	Detail   string `json:"detail"`
}

// DroppedCategory records a category removed by the intersect schema policy
type DroppedCategory struct {
	Category    string   `json:"category"`
	MissingFrom []string `json:"missing_from"`
}
