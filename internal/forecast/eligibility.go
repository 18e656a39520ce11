package forecast

import (
	"sort"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// DefaultMinTrainMonths is the populated-month floor below which an item
// gets the heuristic instead of a fitted model.
const DefaultMinTrainMonths = 12

// Eligible reports whether a series carries enough signal to fit a model:
// at least minMonths populated months and a non-degenerate variance. A
// flat series, however long, stays on the heuristic path.
func Eligible(series domain.MonthlySeries, minMonths int) bool {
	if minMonths <= 0 {
		minMonths = DefaultMinTrainMonths
	}
	values := series.Values()
	if len(values) < minMonths {
		return false
	}
	return stat.Variance(values, nil) > 0
}

// EligibleItems filters an aggregate down to the sorted display names of
// items that qualify for model training.
func EligibleItems(agg Aggregate, minMonths int) []string {
	var names []string
	for _, key := range agg.Keys() {
		if Eligible(agg.Items[key], minMonths) {
			names = append(names, agg.Items[key].Name)
		}
	}
	sort.Strings(names)
	return names
}
