package repository

import (
	"context"
	"fmt"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

// HistoryRepository exposes the issuance history the forecasting pipeline
// trains on. An empty result is not an error; callers decide whether to
// fall back to the curated workbook.
type HistoryRepository interface {
	LoadHistory(ctx context.Context) ([]domain.HistoryRecord, error)
}

type historyRepository struct {
	db *sqlx.DB
}

func NewHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) LoadHistory(ctx context.Context) ([]domain.HistoryRecord, error) {
	query := `
		SELECT
			o.transaction_date AS date,
			i.name AS item_name,
			ol.quantity
		FROM order_line ol
		JOIN orders o ON o.order_id = ol.order_id
		JOIN item i ON i.item_id = ol.item_id
		WHERE ol.quantity > 0
		ORDER BY o.transaction_date
	`

	var records []domain.HistoryRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("error loading order history: %w", err)
	}

	return records, nil
}
