package forecast

import (
	"math"

	"github.com/capstone-itrack/backend-go/internal/domain"
)

// DefaultHorizonMonths is how far ahead forecasts and restock plans look
// unless the caller asks otherwise.
const DefaultHorizonMonths = 6

// Forecaster turns monthly series into integer demand forecasts, using the
// cached fitted model when one exists and the heuristic otherwise.
type Forecaster struct {
	cache *ModelCache
}

func NewForecaster(cache *ModelCache) *Forecaster {
	return &Forecaster{cache: cache}
}

// ForecastSeries projects the next horizon months for a series. The bool
// reports whether a fitted model (rather than the heuristic) produced it.
func (f *Forecaster) ForecastSeries(series domain.MonthlySeries, horizon int) ([]domain.MonthForecast, bool, error) {
	if horizon <= 0 {
		horizon = DefaultHorizonMonths
	}
	if len(series.Points) == 0 {
		return nil, false, ErrNoHistory
	}

	var (
		raw    []float64
		fitted bool
	)
	if entry, ok := f.cache.Get(series.Key); ok {
		raw = entry.Model.Predict(horizon)
		fitted = true
	} else {
		base, ok := FallbackEstimate(series)
		if !ok {
			return nil, false, ErrNoHistory
		}
		raw = make([]float64, horizon)
		for i := range raw {
			raw[i] = base
		}
	}

	months := NextMonths(series.LastMonth(), horizon)
	out := make([]domain.MonthForecast, horizon)
	for i, v := range raw {
		out[i] = domain.MonthForecast{
			Month:       MonthLabel(months[i]),
			ForecastQty: clampQty(v),
		}
	}
	return out, fitted, nil
}

// NextMonthSafe projects a single month and is guaranteed to succeed for
// any series with at least one populated month.
func (f *Forecaster) NextMonthSafe(series domain.MonthlySeries) (int, error) {
	forecasts, _, err := f.ForecastSeries(series, 1)
	if err != nil {
		return 0, err
	}
	return forecasts[0].ForecastQty, nil
}

// clampQty postprocesses one raw model output: round to a whole unit,
// floor at zero. Demand is never fractional or negative.
func clampQty(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	return n
}
