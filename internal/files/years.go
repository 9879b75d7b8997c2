package files

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
)

// Year bounds accepted from any source
const (
	MinYear = 1900
	MaxYear = 2100
)

var yearInName = regexp.MustCompile(`(?:^|[^0-9])(20[0-9]{2})(?:[^0-9]|$)`)

// YearFromName returns the first 20xx year embedded in the base name of
// path, e.g. 2024 for "Jumlah Penumpang Kereta Api, 2024.csv"
func YearFromName(path string) (int, bool) {
	m := yearInName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || year < MinYear || year > MaxYear {
		return 0, false
	}
	return year, true
}

// ResolveYears assigns a calendar year to every path. Explicit years win:
// a single value applies to all paths, otherwise there must be one per path.
// Without explicit years the year is read from the file name, then
// defaultYear (0 means none) is used.
func ResolveYears(paths []string, years []int, defaultYear int) ([]int, error) {
	if len(years) > 0 && len(years) != 1 && len(years) != len(paths) {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("got %d years for %d inputs", len(years), len(paths)), nil)
	}
	for _, y := range years {
		if y < MinYear || y > MaxYear {
			return nil, apperrors.NewConfigError("year out of range", nil).WithContext("year", y)
		}
	}

	resolved := make([]int, len(paths))
	for i, p := range paths {
		switch {
		case len(years) == 1:
			resolved[i] = years[0]
		case len(years) > 1:
			resolved[i] = years[i]
		default:
			if y, ok := YearFromName(p); ok {
				resolved[i] = y
			} else if defaultYear != 0 {
				resolved[i] = defaultYear
			} else {
				return nil, apperrors.NewConfigError("cannot determine year for input; pass -y or -default-year", nil).
					WithContext("file", p)
			}
		}
	}
	return resolved, nil
}
