package passenger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
)

// SchemaPolicy decides what happens when years disagree on categories
type SchemaPolicy string

const (
	SchemaFail      SchemaPolicy = "fail"
	SchemaIntersect SchemaPolicy = "intersect"
	SchemaUnion     SchemaPolicy = "union"
)

// MissingPolicy decides what happens to missing cells inside a table's
// reporting range
type MissingPolicy string

const (
	// MissingCompact omits the cell; indices stay consecutive over observed points
	MissingCompact MissingPolicy = "compact"
	// MissingExclude skips the whole category
	MissingExclude MissingPolicy = "exclude"
	// MissingFail aborts the run
	MissingFail MissingPolicy = "fail"
)

// ReshapeOptions configures Reshape
type ReshapeOptions struct {
	Schema  SchemaPolicy
	Missing MissingPolicy
}

// Dataset is the long-form result of reshaping one or more tables
type Dataset struct {
	Series  []CategorySeries
	Dropped []DroppedCategory
	Skipped []Skipped
	Sources []string
}

// Observations returns the total number of observed points
func (d *Dataset) Observations() int {
	n := 0
	for _, s := range d.Series {
		n += s.NObs()
	}
	return n
}

// Reshape converts wide tables to per-category long-form series. Tables are
// ordered by year and period indices run consecutively across all of them.
// Series come back in report order.
func Reshape(tables []*Table, opts ReshapeOptions) (*Dataset, error) {
	if opts.Schema == "" {
		opts.Schema = SchemaFail
	}
	if opts.Missing == "" {
		opts.Missing = MissingCompact
	}

	ordered := make([]*Table, len(tables))
	copy(ordered, tables)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Year < ordered[j].Year })

	ds := &Dataset{}
	for i, t := range ordered {
		if i > 0 && ordered[i-1].Year == t.Year {
			return nil, apperrors.NewSchemaMismatchError("two tables cover the same year").
				WithContext("year", t.Year).
				WithContext("files", ordered[i-1].Source+", "+t.Source)
		}
		ds.Sources = append(ds.Sources, t.Source)
	}
	ordered = fillCalendar(ordered)

	categories, err := resolveCategories(ordered, opts.Schema, ds)
	if err != nil {
		return nil, err
	}

	for _, category := range categories {
		series, skip, err := buildSeries(category, ordered, opts.Missing)
		if err != nil {
			return nil, err
		}
		if skip != nil {
			ds.Skipped = append(ds.Skipped, *skip)
			continue
		}
		ds.Series = append(ds.Series, series)
	}

	return ds, nil
}

// fillCalendar returns year-ordered tables whose reporting ranges leave no
// calendar gap between years: every table but the first starts in January
// and every table but the last runs through December. Months added this way
// are missing cells for the missing policy to handle. Inputs are not
// modified.
func fillCalendar(tables []*Table) []*Table {
	out := make([]*Table, len(tables))
	for i, t := range tables {
		last := i == len(tables)-1
		if last && len(t.Months) == 0 {
			// nothing reported yet in the latest year
			out[i] = t
			continue
		}

		from, to := time.January, time.December
		if len(t.Months) > 0 {
			if i == 0 {
				from = t.Months[0]
			}
			if last {
				to = t.Months[len(t.Months)-1]
			}
		}

		filled := *t
		filled.Months = make([]time.Month, 0, int(to-from)+1)
		for m := from; m <= to; m++ {
			filled.Months = append(filled.Months, m)
		}
		out[i] = &filled
	}
	return out
}

// resolveCategories applies the schema policy and returns the categories to
// reshape in report order.
func resolveCategories(tables []*Table, policy SchemaPolicy, ds *Dataset) ([]string, error) {
	presence := make(map[string]map[int]bool)
	for i, t := range tables {
		for _, c := range t.Categories() {
			if presence[c] == nil {
				presence[c] = make(map[int]bool)
			}
			presence[c][i] = true
		}
	}

	all := make([]string, 0, len(presence))
	for c := range presence {
		all = append(all, c)
	}
	SortCategories(all)

	var partial []string
	for _, c := range all {
		if len(presence[c]) < len(tables) {
			partial = append(partial, c)
		}
	}
	if len(partial) == 0 {
		return all, nil
	}

	missingFrom := func(c string) []string {
		var files []string
		for i, t := range tables {
			if !presence[c][i] {
				files = append(files, t.Source)
			}
		}
		return files
	}

	switch policy {
	case SchemaUnion:
		return all, nil
	case SchemaIntersect:
		kept := make([]string, 0, len(all)-len(partial))
		for _, c := range all {
			if len(presence[c]) == len(tables) {
				kept = append(kept, c)
				continue
			}
			ds.Dropped = append(ds.Dropped, DroppedCategory{Category: c, MissingFrom: missingFrom(c)})
		}
		return kept, nil
	default:
		details := make([]string, 0, len(partial))
		for _, c := range partial {
			details = append(details, fmt.Sprintf("%s missing from %s", c, strings.Join(missingFrom(c), ", ")))
		}
		return nil, apperrors.NewSchemaMismatchError("category sets differ between tables").
			WithContext("categories", strings.Join(details, "; "))
	}
}

// buildSeries collects one category's observations across tables. A
// non-nil Skipped means the category was excluded by the missing policy.
func buildSeries(category string, tables []*Table, policy MissingPolicy) (CategorySeries, *Skipped, error) {
	series := CategorySeries{Category: category}

	for _, t := range tables {
		row, ok := t.Row(category)
		if !ok {
			continue
		}
		for _, m := range t.Months {
			cell := row.Value(m)
			if cell.Missing {
				switch policy {
				case MissingFail:
					return series, nil, apperrors.NewMalformedInputError("missing value inside reporting range", nil).
						WithContext("file", t.Source).
						WithContext("row", row.Line).
						WithContext("category", category).
						WithContext("month", IndonesianMonths[m-1])
				case MissingExclude:
					return series, &Skipped{
						Category: category,
						Reason:   ReasonMissingData,
						Detail:   fmt.Sprintf("no value for %s in %s", Period{Year: t.Year, Month: m}.Label(), t.Source),
					}, nil
				default:
					continue
				}
			}
			series.Points = append(series.Points, ObservedPoint{
				Category:    category,
				PeriodIndex: len(series.Points) + 1,
				Period:      Period{Year: t.Year, Month: m},
				Value:       cell.Value,
			})
		}
	}

	return series, nil, nil
}

// Widen converts series back to one wide table per year. Months between the
// first and last observation of a year that have no point are missing.
func Widen(series []CategorySeries) []*Table {
	byYear := make(map[int]*Table)
	rows := make(map[int]map[string]*RawRow)
	span := make(map[int][2]time.Month)

	for _, s := range series {
		for _, p := range s.Points {
			y := p.Period.Year
			t, ok := byYear[y]
			if !ok {
				t = &Table{Year: y}
				byYear[y] = t
				rows[y] = make(map[string]*RawRow)
				span[y] = [2]time.Month{p.Period.Month, p.Period.Month}
			}
			r, ok := rows[y][s.Category]
			if !ok {
				r = &RawRow{Category: s.Category}
				for i := range r.Values {
					r.Values[i].Missing = true
				}
				rows[y][s.Category] = r
			}
			r.Values[p.Period.Month-1] = MonthValue{Value: p.Value}

			sp := span[y]
			if p.Period.Month < sp[0] {
				sp[0] = p.Period.Month
			}
			if p.Period.Month > sp[1] {
				sp[1] = p.Period.Month
			}
			span[y] = sp
		}
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	tables := make([]*Table, 0, len(years))
	for _, y := range years {
		t := byYear[y]
		for m := span[y][0]; m <= span[y][1]; m++ {
			t.Months = append(t.Months, m)
		}
		names := make([]string, 0, len(rows[y]))
		for c := range rows[y] {
			names = append(names, c)
		}
		SortCategories(names)
		for i, c := range names {
			r := rows[y][c]
			r.Line = i + 2
			t.Rows = append(t.Rows, *r)
		}
		tables = append(tables, t)
	}
	return tables
}

// SortCategories orders names for reporting: Total first, then by name
func SortCategories(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return categoryLess(names[i], names[j]) })
}

func categoryLess(a, b string) bool {
	ta, tb := IsTotal(a), IsTotal(b)
	if ta != tb {
		return ta
	}
	return a < b
}
