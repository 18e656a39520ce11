package forecast

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook drops a single-sheet xlsx fixture into a temp dir.
func writeWorkbook(t *testing.T, headers []string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &headers))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "history.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadHistoryWorkbookParsesRows(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Date", "Items", "Quantity"},
		[][]interface{}{
			{"2025-01-03", "  Bond Paper ", "10"},
			{"2025-01-20", "bond paper", "5"},
			{"1/7/2025", "Stapler", "3"},
		},
	)

	records, err := ReadHistoryWorkbook(path)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Bond Paper", records[0].ItemName)
	assert.Equal(t, 10, records[0].Quantity)
	assert.Equal(t, day(2025, time.January, 3), records[0].Date)

	assert.Equal(t, day(2025, time.January, 7), records[2].Date)
	assert.Equal(t, "Stapler", records[2].ItemName)
}

func TestReadHistoryWorkbookSkipsBadRows(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Date", "Items", "Quantity"},
		[][]interface{}{
			{"2025-01-03", "Bond Paper", "10"},
			{"not a date", "Bond Paper", "4"},
			{"2025-01-05", "", "4"},
			{"2025-01-06", "Bond Paper", "0"},
			{"2025-01-07", "Bond Paper", "-2"},
			{"2025-01-08", "Bond Paper", "oops"},
			{"2025-01-09", "Stapler", "12.0"},
		},
	)

	records, err := ReadHistoryWorkbook(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Bond Paper", records[0].ItemName)
	assert.Equal(t, "Stapler", records[1].ItemName)
	assert.Equal(t, 12, records[1].Quantity)
}

func TestReadHistoryWorkbookExcelSerialDates(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Date", "Items", "Quantity"},
		[][]interface{}{
			{45658, "Bond Paper", 10},
		},
	)

	records, err := ReadHistoryWorkbook(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	// Serial 45658 is 2025-01-01.
	assert.Equal(t, day(2025, time.January, 1), records[0].Date)
	assert.Equal(t, 10, records[0].Quantity)
}

func TestReadHistoryWorkbookHeaderSynonyms(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"transaction_date", "item_name", "qty"},
		[][]interface{}{
			{"2025-02-14", "Folder Long White", "7"},
		},
	)

	records, err := ReadHistoryWorkbook(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Folder Long White", records[0].ItemName)

	path = writeWorkbook(t,
		[]string{"Transaction Date", "Description", "Quantity Issued"},
		[][]interface{}{
			{"2025-02-14", "Ink Cartridge 680", "2"},
		},
	)

	records, err = ReadHistoryWorkbook(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ink Cartridge 680", records[0].ItemName)
}

func TestReadHistoryWorkbookMissingFile(t *testing.T) {
	_, err := ReadHistoryWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestReadHistoryWorkbookUnusableHeader(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"when", "what", "how many"},
		[][]interface{}{
			{"2025-01-03", "Bond Paper", "10"},
		},
	)

	_, err := ReadHistoryWorkbook(path)
	assert.ErrorContains(t, err, "headers")
}

func TestReadHistoryWorkbookNoParsableRecords(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Date", "Items", "Quantity"},
		[][]interface{}{
			{"junk", "", "zero"},
		},
	)

	_, err := ReadHistoryWorkbook(path)
	assert.ErrorContains(t, err, "no parsable records")
}
