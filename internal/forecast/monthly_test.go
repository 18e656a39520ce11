package forecast

import (
	"testing"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seriesOf builds a MonthlySeries with one populated month per value,
// starting at the given month.
func seriesOf(name string, start time.Time, values ...float64) domain.MonthlySeries {
	s := domain.MonthlySeries{Key: NormalizeName(name), Name: name}
	for i, v := range values {
		s.Points = append(s.Points, domain.MonthPoint{
			Month:    start.AddDate(0, i, 0),
			Quantity: v,
		})
	}
	return s
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Bond Paper":    "bond paper",
		"  bond PAPER ": "bond paper",
		"BOND PAPER":    "bond paper",
		"":              "",
		"  ":            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}

func TestAggregateMonthlyBucketsAndSums(t *testing.T) {
	records := []domain.HistoryRecord{
		{Date: day(2025, time.February, 1), ItemName: "BOND PAPER", Quantity: 7},
		{Date: day(2025, time.January, 3), ItemName: "Bond Paper", Quantity: 10},
		{Date: day(2025, time.January, 20), ItemName: "bond paper ", Quantity: 5},
		{Date: day(2025, time.January, 10), ItemName: "Stapler", Quantity: 2},
	}

	agg := AggregateMonthly(records)

	require.Len(t, agg.Items, 2)
	assert.Equal(t, 4, agg.Rows)
	assert.Equal(t, day(2025, time.January, 3), agg.DateMin)
	assert.Equal(t, day(2025, time.February, 1), agg.DateMax)

	series, ok := agg.Series("  bond PAPER ")
	require.True(t, ok, "lookup must be case-insensitive")
	require.Len(t, series.Points, 2)

	// Spelling variants collapse into one series, months are chronological
	// even though the input was not.
	assert.Equal(t, day(2025, time.January, 1), series.Points[0].Month)
	assert.Equal(t, float64(15), series.Points[0].Quantity)
	assert.Equal(t, day(2025, time.February, 1), series.Points[1].Month)
	assert.Equal(t, float64(7), series.Points[1].Quantity)

	_, ok = agg.Series("No Such Item")
	assert.False(t, ok)
}

func TestAggregateMonthlySkipsBlankNames(t *testing.T) {
	records := []domain.HistoryRecord{
		{Date: day(2025, time.March, 1), ItemName: "   ", Quantity: 4},
		{Date: day(2025, time.March, 2), ItemName: "Pencil", Quantity: 1},
	}

	agg := AggregateMonthly(records)

	assert.Len(t, agg.Items, 1)
	assert.Equal(t, 1, agg.Rows)
}

func TestAggregateKeysSorted(t *testing.T) {
	records := []domain.HistoryRecord{
		{Date: day(2025, time.January, 1), ItemName: "Stapler", Quantity: 1},
		{Date: day(2025, time.January, 1), ItemName: "Bond Paper", Quantity: 1},
		{Date: day(2025, time.January, 1), ItemName: "Pencil", Quantity: 1},
	}

	agg := AggregateMonthly(records)
	assert.Equal(t, []string{"bond paper", "pencil", "stapler"}, agg.Keys())
}

func TestNextMonthsCrossYearBoundary(t *testing.T) {
	months := NextMonths(day(2025, time.November, 17), 3)

	require.Len(t, months, 3)
	assert.Equal(t, "2025-12", MonthLabel(months[0]))
	assert.Equal(t, "2026-01", MonthLabel(months[1]))
	assert.Equal(t, "2026-02", MonthLabel(months[2]))
}
