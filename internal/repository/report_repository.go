package repository

import (
	"context"
	"fmt"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type ReportRepository interface {
	MonthlyReport(ctx context.Context, year, month int) ([]domain.MonthlyReportRow, error)
}

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

// MonthlyReport lists the month's issuances that either carry a valid
// official receipt number or belong to the Souvenir category, which is
// sold without one.
func (r *reportRepository) MonthlyReport(ctx context.Context, year, month int) ([]domain.MonthlyReportRow, error) {
	query := `
		SELECT
			o.transaction_date AS date,
			o.customer_name AS payer,
			ol.quantity AS qty_sold,
			i.unit,
			i.name AS description,
			i.price AS unit_cost,
			(ol.quantity * i.price) AS total_cost,
			CASE
				WHEN COALESCE(NULLIF(TRIM(o.or_number), ''), '-') <> '-' THEN o.or_number
				ELSE '-'
			END AS or_number
		FROM orders o
		JOIN order_line ol ON ol.order_id = o.order_id
		JOIN item i ON i.item_id = ol.item_id
		WHERE EXTRACT(YEAR FROM o.transaction_date) = $1
		  AND EXTRACT(MONTH FROM o.transaction_date) = $2
		  AND (
			COALESCE(NULLIF(TRIM(o.or_number), ''), '-') <> '-'
			OR i.category = 'Souvenir'
		  )
		ORDER BY o.transaction_date, or_number
	`

	var rows []domain.MonthlyReportRow
	if err := r.db.SelectContext(ctx, &rows, query, year, month); err != nil {
		return nil, fmt.Errorf("error building monthly report %d-%02d: %w", year, month, err)
	}

	return rows, nil
}
