package forecast

import (
	"sort"
	"strings"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
)

// NormalizeName produces the key used everywhere an item name indexes a
// map: model cache, stock lookups, history aggregation. Lookups must agree
// on this or "Bond Paper" and "bond paper " become different items.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Aggregate is the monthly view of a history load: one MonthlySeries per
// item, keyed by normalized name, plus the figures the validation report
// wants.
type Aggregate struct {
	Items   map[string]domain.MonthlySeries
	Rows    int
	DateMin time.Time
	DateMax time.Time
}

// Series fetches an item's monthly series by any spelling of its name.
func (a Aggregate) Series(name string) (domain.MonthlySeries, bool) {
	s, ok := a.Items[NormalizeName(name)]
	return s, ok
}

// Keys returns the normalized item keys in sorted order.
func (a Aggregate) Keys() []string {
	keys := make([]string, 0, len(a.Items))
	for k := range a.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AggregateMonthly buckets history records into calendar months (UTC) per
// item. Records with empty names or non-positive quantities were already
// dropped by the loaders; this only sums and orders what it is given.
func AggregateMonthly(records []domain.HistoryRecord) Aggregate {
	agg := Aggregate{Items: make(map[string]domain.MonthlySeries)}

	type bucket struct {
		name   string
		months map[time.Time]float64
	}
	buckets := make(map[string]*bucket)

	for _, rec := range records {
		key := NormalizeName(rec.ItemName)
		if key == "" {
			continue
		}

		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: strings.TrimSpace(rec.ItemName), months: make(map[time.Time]float64)}
			buckets[key] = b
		}

		month := monthStart(rec.Date)
		b.months[month] += float64(rec.Quantity)

		agg.Rows++
		if agg.DateMin.IsZero() || rec.Date.Before(agg.DateMin) {
			agg.DateMin = rec.Date
		}
		if rec.Date.After(agg.DateMax) {
			agg.DateMax = rec.Date
		}
	}

	for key, b := range buckets {
		series := domain.MonthlySeries{Key: key, Name: b.name}
		months := make([]time.Time, 0, len(b.months))
		for m := range b.months {
			months = append(months, m)
		}
		sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
		for _, m := range months {
			series.Points = append(series.Points, domain.MonthPoint{Month: m, Quantity: b.months[m]})
		}
		agg.Items[key] = series
	}

	return agg
}

func monthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel renders a bucket the way responses and exports show months.
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}

// NextMonths lists the h month starts following from (exclusive of) last.
func NextMonths(last time.Time, h int) []time.Time {
	out := make([]time.Time, h)
	cur := monthStart(last)
	for i := 0; i < h; i++ {
		cur = cur.AddDate(0, 1, 0)
		out[i] = cur
	}
	return out
}
