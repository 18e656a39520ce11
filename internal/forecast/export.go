package forecast

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"item_name", "month", "forecast_qty", "recommended_restock", "running_stock"}

// WritePlanCSV renders a restock plan as CSV.
func WritePlanCSV(w io.Writer, itemName string, plan []domain.RestockPlanRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range plan {
		record := []string{
			itemName,
			row.Month,
			strconv.Itoa(row.ForecastQty),
			strconv.Itoa(row.RecommendedRestock),
			strconv.Itoa(row.RunningStock),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WritePlanXLSX renders a restock plan as a single-sheet workbook.
func WritePlanXLSX(w io.Writer, itemName string, plan []domain.RestockPlanRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Restock Plan"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, name := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i, row := range plan {
		values := []interface{}{itemName, row.Month, row.ForecastQty, row.RecommendedRestock, row.RunningStock}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
