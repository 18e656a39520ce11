package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ExpSmoothingModel is the fitted state of the exponential-smoothing
// family: additive Holt-Winters when Period > 0, damped-trend Holt
// otherwise. All fields are exported so snapshots round-trip through JSON.
type ExpSmoothingModel struct {
	Family   string    `json:"family"`
	Level    float64   `json:"level"`
	Trend    float64   `json:"trend"`
	Phi      float64   `json:"phi"`
	Period   int       `json:"period,omitempty"`
	Seasonal []float64 `json:"seasonal,omitempty"`
	Alpha    float64   `json:"alpha"`
	Beta     float64   `json:"beta"`
	Gamma    float64   `json:"gamma,omitempty"`
	SSE      float64   `json:"sse"`
	Months   int       `json:"months"`
}

func (m *ExpSmoothingModel) Kind() string {
	if m.Family != "" {
		return m.Family
	}
	if m.Period > 0 {
		return KindHoltWinters
	}
	return KindHoltDamped
}

// Predict extrapolates level and (damped) trend, adding the seasonal index
// when the model carries one. Seasonal[j] holds the index for the j+1'th
// month after the end of the fitted sample.
func (m *ExpSmoothingModel) Predict(horizon int) []float64 {
	if horizon <= 0 {
		return nil
	}

	out := make([]float64, horizon)
	phiSum := 0.0
	phiPow := 1.0
	for h := 1; h <= horizon; h++ {
		if m.Phi >= 1 {
			phiSum = float64(h)
		} else {
			phiPow *= m.Phi
			phiSum += phiPow
		}

		y := m.Level + phiSum*m.Trend
		if m.Period > 0 && len(m.Seasonal) == m.Period {
			y += m.Seasonal[(h-1)%m.Period]
		}
		out[h-1] = y
	}
	return out
}

// HoltWintersFitter fits the exponential-smoothing family with a small
// grid search over smoothing constants, scored by one-step-ahead SSE.
// Series shorter than two full seasons fall back to damped-trend Holt,
// which only needs level and slope.
type HoltWintersFitter struct {
	Period    int
	MinPoints int
}

// NewFitter returns the production fitter: yearly seasonality over monthly
// buckets, minimum fit length matching the eligibility floor.
func NewFitter(minMonths int) *HoltWintersFitter {
	if minMonths <= 0 {
		minMonths = DefaultMinTrainMonths
	}
	return &HoltWintersFitter{Period: 12, MinPoints: minMonths}
}

func (f *HoltWintersFitter) Fit(values []float64) (Model, error) {
	minPoints := f.MinPoints
	if minPoints <= 0 {
		minPoints = DefaultMinTrainMonths
	}

	if len(values) < minPoints {
		return nil, ErrSeriesTooShort
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrBadSeriesValue
		}
	}
	if stat.Variance(values, nil) <= 0 {
		return nil, ErrSeriesDegenerate
	}

	if f.Period > 0 && len(values) >= 2*f.Period {
		return f.fitSeasonal(values)
	}
	return f.fitDamped(values)
}

var (
	alphaGrid = []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	betaGrid  = []float64{0.05, 0.1, 0.2, 0.3}
	gammaGrid = []float64{0.05, 0.1, 0.3}
)

func (f *HoltWintersFitter) fitSeasonal(values []float64) (Model, error) {
	var best *ExpSmoothingModel
	for _, alpha := range alphaGrid {
		for _, beta := range betaGrid {
			for _, gamma := range gammaGrid {
				m := runSeasonal(values, f.Period, alpha, beta, gamma)
				if best == nil || m.SSE < best.SSE {
					best = m
				}
			}
		}
	}
	best.Months = len(values)
	return best, nil
}

// runSeasonal is one additive Holt-Winters pass: classic init from the
// first two seasons, then the standard recursions from t = period onward.
func runSeasonal(values []float64, period int, alpha, beta, gamma float64) *ExpSmoothingModel {
	n := len(values)

	level := stat.Mean(values[:period], nil)
	trend := (stat.Mean(values[period:2*period], nil) - level) / float64(period)

	seasonal := make([]float64, n)
	for t := 0; t < period; t++ {
		seasonal[t] = values[t] - level
	}

	sse := 0.0
	for t := period; t < n; t++ {
		pred := level + trend + seasonal[t-period]
		diff := values[t] - pred
		sse += diff * diff

		newLevel := alpha*(values[t]-seasonal[t-period]) + (1-alpha)*(level+trend)
		trend = beta*(newLevel-level) + (1-beta)*trend
		seasonal[t] = gamma*(values[t]-newLevel) + (1-gamma)*seasonal[t-period]
		level = newLevel
	}

	// Seasonal indices for the next period months, in forecast order.
	tail := make([]float64, period)
	copy(tail, seasonal[n-period:])

	return &ExpSmoothingModel{
		Family:   KindHoltWinters,
		Level:    level,
		Trend:    trend,
		Phi:      1,
		Period:   period,
		Seasonal: tail,
		Alpha:    alpha,
		Beta:     beta,
		Gamma:    gamma,
		SSE:      sse,
	}
}

const dampingFactor = 0.98

func (f *HoltWintersFitter) fitDamped(values []float64) (Model, error) {
	var best *ExpSmoothingModel
	for _, alpha := range alphaGrid {
		for _, beta := range betaGrid {
			m := runDamped(values, alpha, beta, dampingFactor)
			if best == nil || m.SSE < best.SSE {
				best = m
			}
		}
	}
	best.Months = len(values)
	return best, nil
}

// runDamped is one damped-trend Holt pass. Damping keeps short-history
// trends from running away over a six-month horizon.
func runDamped(values []float64, alpha, beta, phi float64) *ExpSmoothingModel {
	level := values[0]
	trend := values[1] - values[0]

	sse := 0.0
	for t := 1; t < len(values); t++ {
		pred := level + phi*trend
		diff := values[t] - pred
		sse += diff * diff

		newLevel := alpha*values[t] + (1-alpha)*(level+phi*trend)
		trend = beta*(newLevel-level) + (1-beta)*phi*trend
		level = newLevel
	}

	return &ExpSmoothingModel{
		Family: KindHoltDamped,
		Level:  level,
		Trend:  trend,
		Phi:    phi,
		Alpha:  alpha,
		Beta:   beta,
		SSE:    sse,
	}
}
