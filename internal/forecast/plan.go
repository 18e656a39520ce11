package forecast

import "github.com/capstone-itrack/backend-go/internal/domain"

// BuildRestockPlan walks the forecast horizon month by month, recommending
// exactly the quantity needed to cover each month's forecast demand after
// consuming whatever stock carries over from earlier months.
func BuildRestockPlan(forecasts []domain.MonthForecast, currentStock int) []domain.RestockPlanRow {
	if currentStock < 0 {
		currentStock = 0
	}

	plan := make([]domain.RestockPlanRow, 0, len(forecasts))
	leftover := currentStock

	for _, fc := range forecasts {
		// 1. Order whatever the leftover stock cannot cover
		restock := fc.ForecastQty - leftover
		if restock < 0 {
			restock = 0
		}

		// 2. Consume the month's demand; surplus carries forward
		leftover -= fc.ForecastQty
		if leftover < 0 {
			leftover = 0
		}

		plan = append(plan, domain.RestockPlanRow{
			Month:              fc.Month,
			ForecastQty:        fc.ForecastQty,
			RecommendedRestock: restock,
			RunningStock:       leftover,
		})
	}

	return plan
}

// PlanTotals sums the plan's forecast and restock columns.
func PlanTotals(plan []domain.RestockPlanRow) (totalForecast, totalRestock int) {
	for _, row := range plan {
		totalForecast += row.ForecastQty
		totalRestock += row.RecommendedRestock
	}
	return totalForecast, totalRestock
}
