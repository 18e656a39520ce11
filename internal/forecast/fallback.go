package forecast

import (
	"github.com/capstone-itrack/backend-go/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// fallbackWindow caps how many trailing months feed the heuristic.
const fallbackWindow = 3

// FallbackEstimate is the heuristic used when no fitted model exists: the
// mean of the last few populated months, replicated across the horizon.
// It needs at least one populated month.
func FallbackEstimate(series domain.MonthlySeries) (float64, bool) {
	values := series.Values()
	if len(values) == 0 {
		return 0, false
	}

	start := len(values) - fallbackWindow
	if start < 0 {
		start = 0
	}
	return stat.Mean(values[start:], nil), true
}
