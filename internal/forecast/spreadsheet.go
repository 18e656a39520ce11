package forecast

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Header spellings accepted for each workbook column, lowercased.
var (
	dateHeaders = []string{"date", "transaction_date", "transaction date"}
	itemHeaders = []string{"items", "item", "item_name", "item name", "description"}
	qtyHeaders  = []string{"quantity", "qty", "quantity issued", "qty_issued"}
)

// ReadHistoryWorkbook parses the curated history workbook: first sheet,
// one header row, then one issuance record per row. Rows that fail to
// parse are skipped and counted; a file with no parsable rows is an error.
func ReadHistoryWorkbook(path string) ([]domain.HistoryRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("history workbook %s has no sheets", path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	var (
		records []domain.HistoryRecord
		colMap  map[string]int
		skipped int
	)

	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}

		if colMap == nil {
			colMap = mapHeader(cols)
			if colMap == nil {
				return nil, fmt.Errorf("history workbook %s is missing date/items/quantity headers", path)
			}
			continue
		}

		rec, ok := parseHistoryRow(cols, colMap)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}

	if skipped > 0 {
		logger.Log.Warn().Int("skipped", skipped).Str("file", path).Msg("skipped unparsable history rows")
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("history workbook %s contains no parsable records", path)
	}

	return records, nil
}

// mapHeader resolves the column index of each required field, or nil when
// the row is not a usable header.
func mapHeader(cols []string) map[string]int {
	idx := make(map[string]int, 3)
	for i, raw := range cols {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case matchesHeader(name, dateHeaders):
			idx["date"] = i
		case matchesHeader(name, itemHeaders):
			idx["item"] = i
		case matchesHeader(name, qtyHeaders):
			idx["qty"] = i
		}
	}
	if len(idx) < 3 {
		return nil
	}
	return idx
}

func matchesHeader(name string, candidates []string) bool {
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

func parseHistoryRow(cols []string, colMap map[string]int) (domain.HistoryRecord, bool) {
	get := func(key string) string {
		i := colMap[key]
		if i >= len(cols) {
			return ""
		}
		return strings.TrimSpace(cols[i])
	}

	name := get("item")
	if name == "" {
		return domain.HistoryRecord{}, false
	}

	date, ok := parseCellDate(get("date"))
	if !ok {
		return domain.HistoryRecord{}, false
	}

	qty, ok := parseCellQty(get("qty"))
	if !ok || qty <= 0 {
		return domain.HistoryRecord{}, false
	}

	return domain.HistoryRecord{Date: date, ItemName: name, Quantity: qty}, true
}

var cellDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01-02-06",
	"Jan 2, 2006",
}

// parseCellDate accepts the formats the workbook has shipped with over
// time, plus raw Excel serial numbers.
func parseCellDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range cellDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

func parseCellQty(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	// Quantity cells occasionally carry float formatting ("12.0").
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v), true
	}
	return 0, false
}
