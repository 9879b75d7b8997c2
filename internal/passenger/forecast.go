package passenger

import (
	"math"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
)

// Tolerance is the half-width of the flat band around the last actual value
func Tolerance(lastActual float64) float64 {
	return math.Max(RelativeTolerance*lastActual, MinTolerance)
}

// Classify compares the next forecast with the last actual value
func Classify(next, lastActual float64) Direction {
	tol := Tolerance(lastActual)
	switch {
	case next > lastActual+tol:
		return DirectionUp
	case next < lastActual-tol:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// Project extends model horizon periods past the end of series and
// classifies the first projected value. Labels continue the calendar from
// the last observed month.
func Project(series CategorySeries, model TrendModel, horizon int) (ForecastRecord, error) {
	if horizon <= 0 {
		return ForecastRecord{}, apperrors.NewInvalidHorizonError(horizon)
	}
	if series.NObs() == 0 {
		return ForecastRecord{}, apperrors.NewInsufficientDataError(series.Category, 0, MinObservations)
	}

	last := series.Last()
	n := series.NObs()

	rec := ForecastRecord{
		Category:   series.Category,
		NObs:       n,
		LastActual: last.Value,
		LastPeriod: last.Period,
		Slope:      model.Slope,
		Intercept:  model.Intercept,
		R2:         model.R2,
		Tolerance:  Tolerance(last.Value),
		Forecasts:  make([]ForecastPoint, horizon),
		History:    series.Points,
	}

	for k := 1; k <= horizon; k++ {
		period := last.Period.Add(k)
		rec.Forecasts[k-1] = ForecastPoint{
			PeriodIndex: n + k,
			Period:      period,
			Label:       period.Label(),
			Value:       model.Predict(n + k),
		}
	}

	rec.Direction = Classify(rec.Forecasts[0].Value, last.Value)
	return rec, nil
}
