package domain

import "time"

// HistoryRecord is a single issuance observation: on a given day, some
// quantity of an item went out the door.
type HistoryRecord struct {
	Date     time.Time `json:"date" db:"date"`
	ItemName string    `json:"item_name" db:"item_name"`
	Quantity int       `json:"quantity" db:"quantity"`
}

// MonthPoint is one populated calendar-month bucket of an item's history.
type MonthPoint struct {
	Month    time.Time `json:"month"`
	Quantity float64   `json:"quantity"`
}

// MonthlySeries is an item's demand history bucketed by calendar month,
// chronologically ordered, containing only months that had at least one
// record.
type MonthlySeries struct {
	Key    string       `json:"key"`
	Name   string       `json:"name"`
	Points []MonthPoint `json:"points"`
}

// Values returns the quantities in month order.
func (s MonthlySeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Quantity
	}
	return out
}

// LastMonth returns the most recent populated month, or the zero time for
// an empty series.
func (s MonthlySeries) LastMonth() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Month
}

// StockLevel pairs an item's catalog spelling with its on-hand quantity.
// Lookups key these by normalized (lowercased, trimmed) name and treat a
// missing entry as zero stock.
type StockLevel struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// TrainStatus describes the most recent training run.
type TrainStatus struct {
	LastTrainedUTC time.Time `json:"last_trained_utc"`
	Trained        []string  `json:"trained"`
	Skipped        []string  `json:"skipped"`
	Source         string    `json:"source"`
	ModelCount     int       `json:"model_count"`
}

// Training sources recorded in TrainStatus and snapshots.
const (
	TrainSourceDB       = "db"
	TrainSourceXLSX     = "xlsx_manual"
	TrainSourceSnapshot = "snapshot"
)

// TrainRunResult is the payload a manual training run answers with.
type TrainRunResult struct {
	Status       string   `json:"status"`
	Trained      []string `json:"trained"`
	TrainedCount int      `json:"trained_count"`
	Skipped      []string `json:"skipped"`
	SkippedCount int      `json:"skipped_count"`
	CacheSize    int      `json:"cache_size"`
}

// MonthForecast is one forecasted month for an item.
type MonthForecast struct {
	Month       string `json:"month"`
	ForecastQty int    `json:"forecast_qty"`
}

// RestockPlanRow is one month of the restock plan: what demand is expected,
// how much to order given projected leftover stock, and the stock carried
// into the next month.
type RestockPlanRow struct {
	Month              string `json:"month"`
	ForecastQty        int    `json:"forecast_qty"`
	RecommendedRestock int    `json:"recommended_restock"`
	RunningStock       int    `json:"running_stock"`
}

// ItemForecast is the full per-item forecast response.
type ItemForecast struct {
	ItemName                string           `json:"item_name"`
	CurrentStock            int              `json:"current_stock"`
	MonthlyForecast         []MonthForecast  `json:"monthly_forecast"`
	RestockPlan             []RestockPlanRow `json:"restock_plan"`
	TotalForecast           int              `json:"total_6mo_forecast"`
	TotalRecommendedRestock int              `json:"total_recommended_restock"`
}

// ItemForecastSummary is one row of the all-items restock summary.
type ItemForecastSummary struct {
	ItemName                string `json:"item_name"`
	CurrentStock            int    `json:"current_stock"`
	TotalForecast           int    `json:"total_6mo_forecast"`
	TotalRecommendedRestock int    `json:"total_recommended_restock"`
}

// NextMonthForecast is the single-month projection for an item.
type NextMonthForecast struct {
	ItemName          string `json:"item_name"`
	NextMonthForecast int    `json:"next_month_forecast"`
	CurrentStock      int    `json:"current_stock"`
}

// HistoryValidation is the dry-run training report for a loaded history
// file: what was parsed and which items qualify for model fits.
type HistoryValidation struct {
	Status              string   `json:"status"`
	RowsLoaded          int      `json:"rows_loaded"`
	UniqueItems         int      `json:"unique_items"`
	DateMin             string   `json:"date_min"`
	DateMax             string   `json:"date_max"`
	EligibleItemsCount  int      `json:"eligible_items_count"`
	EligibleItemsSample []string `json:"eligible_items_sample"`
	DataFile            string   `json:"data_file"`
}
