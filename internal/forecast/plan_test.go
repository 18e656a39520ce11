package forecast

import (
	"testing"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthForecasts(qtys ...int) []domain.MonthForecast {
	out := make([]domain.MonthForecast, len(qtys))
	for i, q := range qtys {
		out[i] = domain.MonthForecast{Month: MonthLabel(day(2025, time.July, 1).AddDate(0, i, 0)), ForecastQty: q}
	}
	return out
}

func TestBuildRestockPlanConsumesStockFirst(t *testing.T) {
	plan := BuildRestockPlan(monthForecasts(10, 20, 30), 15)
	require.Len(t, plan, 3)

	// Month 1: 15 on hand covers the 10 forecast, 5 carries over.
	assert.Equal(t, 0, plan[0].RecommendedRestock)
	assert.Equal(t, 5, plan[0].RunningStock)

	// Month 2: 5 left, 20 needed, order the 15 shortfall.
	assert.Equal(t, 15, plan[1].RecommendedRestock)
	assert.Equal(t, 0, plan[1].RunningStock)

	// Month 3: nothing carried, order the full forecast.
	assert.Equal(t, 30, plan[2].RecommendedRestock)
	assert.Equal(t, 0, plan[2].RunningStock)
}

func TestBuildRestockPlanSurplusCarriesForward(t *testing.T) {
	plan := BuildRestockPlan(monthForecasts(10, 20, 30), 100)

	for i, row := range plan {
		assert.Equal(t, 0, row.RecommendedRestock, "month %d", i)
	}
	assert.Equal(t, 90, plan[0].RunningStock)
	assert.Equal(t, 70, plan[1].RunningStock)
	assert.Equal(t, 40, plan[2].RunningStock)
}

func TestBuildRestockPlanClampsNegativeStock(t *testing.T) {
	plan := BuildRestockPlan(monthForecasts(10, 20), -8)
	require.Len(t, plan, 2)

	assert.Equal(t, 10, plan[0].RecommendedRestock)
	assert.Equal(t, 20, plan[1].RecommendedRestock)
	for _, row := range plan {
		assert.GreaterOrEqual(t, row.RecommendedRestock, 0)
		assert.GreaterOrEqual(t, row.RunningStock, 0)
	}
}

func TestBuildRestockPlanHigherDemandNeverOrdersLess(t *testing.T) {
	base := BuildRestockPlan(monthForecasts(10, 20, 30), 15)
	bumped := BuildRestockPlan(monthForecasts(10, 25, 30), 15)

	_, baseRestock := PlanTotals(base)
	_, bumpedRestock := PlanTotals(bumped)
	assert.GreaterOrEqual(t, bumpedRestock, baseRestock)
}

func TestBuildRestockPlanEmptyForecast(t *testing.T) {
	plan := BuildRestockPlan(nil, 50)
	assert.Empty(t, plan)

	totalForecast, totalRestock := PlanTotals(plan)
	assert.Zero(t, totalForecast)
	assert.Zero(t, totalRestock)
}

func TestPlanTotals(t *testing.T) {
	plan := BuildRestockPlan(monthForecasts(10, 20, 30), 15)

	totalForecast, totalRestock := PlanTotals(plan)
	assert.Equal(t, 60, totalForecast)
	assert.Equal(t, 45, totalRestock)
}
