package forecast

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ModelCache {
	t.Helper()
	return NewModelCache(filepath.Join(t.TempDir(), "models.json"), nil)
}

func TestForecastSeriesHeuristicFallback(t *testing.T) {
	f := NewForecaster(newTestCache(t))
	series := seriesOf("Rare Widget", day(2025, time.April, 1), 5, 7)

	forecasts, fitted, err := f.ForecastSeries(series, 6)
	require.NoError(t, err)
	assert.False(t, fitted)
	require.Len(t, forecasts, 6)

	// Mean of the last populated months, replicated, starting right after
	// the last month of history.
	assert.Equal(t, "2025-06", forecasts[0].Month)
	assert.Equal(t, "2025-11", forecasts[5].Month)
	for _, fc := range forecasts {
		assert.Equal(t, 6, fc.ForecastQty)
	}
}

func TestForecastSeriesHeuristicUsesTrailingWindow(t *testing.T) {
	f := NewForecaster(newTestCache(t))
	// Only the last three months (10, 20, 30) should feed the mean.
	series := seriesOf("Folder", day(2025, time.January, 1), 500, 500, 10, 20, 30)

	forecasts, _, err := f.ForecastSeries(series, 2)
	require.NoError(t, err)
	for _, fc := range forecasts {
		assert.Equal(t, 20, fc.ForecastQty)
	}
}

func TestForecastSeriesUsesCachedModel(t *testing.T) {
	cache := newTestCache(t)
	cache.Swap(map[string]CachedModel{
		"bond paper": {Name: "Bond Paper", Model: stubModel{preds: []float64{-3.2, 0.4, 2.6}}},
	}, domain.TrainStatus{})

	f := NewForecaster(cache)
	series := seriesOf("Bond Paper", day(2025, time.January, 1), 50, 60)

	forecasts, fitted, err := f.ForecastSeries(series, 3)
	require.NoError(t, err)
	assert.True(t, fitted)
	require.Len(t, forecasts, 3)

	// Raw model output is rounded and floored at zero.
	assert.Equal(t, 0, forecasts[0].ForecastQty)
	assert.Equal(t, 0, forecasts[1].ForecastQty)
	assert.Equal(t, 3, forecasts[2].ForecastQty)
}

func TestForecastSeriesEmptyHistory(t *testing.T) {
	f := NewForecaster(newTestCache(t))

	_, _, err := f.ForecastSeries(domain.MonthlySeries{Key: "ghost", Name: "Ghost"}, 6)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestNextMonthSafe(t *testing.T) {
	f := NewForecaster(newTestCache(t))

	qty, err := f.NextMonthSafe(seriesOf("Rare Widget", day(2025, time.April, 1), 5, 7))
	require.NoError(t, err)
	assert.Equal(t, 6, qty)

	qty, err = f.NextMonthSafe(seriesOf("Lone Month", day(2025, time.April, 1), 9))
	require.NoError(t, err)
	assert.Equal(t, 9, qty)

	_, err = f.NextMonthSafe(domain.MonthlySeries{Key: "ghost"})
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestClampQty(t *testing.T) {
	cases := map[float64]int{
		2.5:   3,
		2.4:   2,
		-0.4:  0,
		-12.0: 0,
		0:     0,
	}
	for in, want := range cases {
		assert.Equal(t, want, clampQty(in), "input %v", in)
	}
}

// End-to-end over the fitted path: a year of varying bond paper demand gets
// a real model, integer forecasts and a restock plan that nets out current
// stock in the first month.
func TestBondPaperForecastAndPlan(t *testing.T) {
	series := seriesOf("Bond Paper", day(2024, time.July, 1), 50, 60, 55, 70, 65, 58, 62, 59, 64, 61, 66, 63)
	require.True(t, Eligible(series, DefaultMinTrainMonths))

	model, err := NewFitter(DefaultMinTrainMonths).Fit(series.Values())
	require.NoError(t, err)

	cache := newTestCache(t)
	cache.Swap(map[string]CachedModel{
		series.Key: {Name: series.Name, FittedAt: time.Now().UTC(), Months: len(series.Points), Model: model},
	}, domain.TrainStatus{})

	forecasts, fitted, err := NewForecaster(cache).ForecastSeries(series, 6)
	require.NoError(t, err)
	assert.True(t, fitted)
	require.Len(t, forecasts, 6)

	assert.Equal(t, "2025-07", forecasts[0].Month)
	assert.Equal(t, "2025-12", forecasts[5].Month)
	for _, fc := range forecasts {
		assert.GreaterOrEqual(t, fc.ForecastQty, 0)
	}

	const stock = 40
	plan := BuildRestockPlan(forecasts, stock)
	require.Len(t, plan, 6)

	wantFirst := forecasts[0].ForecastQty - stock
	if wantFirst < 0 {
		wantFirst = 0
	}
	assert.Equal(t, wantFirst, plan[0].RecommendedRestock)

	totalForecast, totalRestock := PlanTotals(plan)
	assert.Equal(t, sumForecasts(forecasts), totalForecast)
	assert.GreaterOrEqual(t, totalForecast, totalRestock)
}

func sumForecasts(forecasts []domain.MonthForecast) int {
	total := 0
	for _, fc := range forecasts {
		total += fc.ForecastQty
	}
	return total
}
