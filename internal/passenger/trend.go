package passenger

import (
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
)

// FitTrend fits value = intercept + slope*period_index by ordinary least
// squares. A series whose values are all equal has slope 0, intercept equal
// to the value and r2 of 1.
func FitTrend(series CategorySeries) (TrendModel, error) {
	n := series.NObs()
	if n < MinObservations {
		return TrendModel{}, apperrors.NewInsufficientDataError(series.Category, n, MinObservations)
	}

	x := make([]float64, n)
	y := make([]float64, n)
	constant := true
	for i, p := range series.Points {
		x[i] = float64(p.PeriodIndex)
		y[i] = p.Value
		if p.Value != series.Points[0].Value {
			constant = false
		}
	}

	if constant {
		return TrendModel{Slope: 0, Intercept: y[0], R2: 1, NObs: n}, nil
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, intercept, slope)

	return TrendModel{Slope: slope, Intercept: intercept, R2: r2, NObs: n}, nil
}
