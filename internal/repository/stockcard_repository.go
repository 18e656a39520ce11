package repository

import (
	"context"
	"fmt"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type StockCardRepository interface {
	Movements(ctx context.Context, itemID int64) ([]domain.StockCardMovement, error)
	UpdateLine(ctx context.Context, itemID int64, upd domain.StockCardLineUpdate) error
}

type stockCardRepository struct {
	db *sqlx.DB
}

func NewStockCardRepository(db *sqlx.DB) StockCardRepository {
	return &stockCardRepository{db: db}
}

func (r *stockCardRepository) Movements(ctx context.Context, itemID int64) ([]domain.StockCardMovement, error) {
	query := `
		SELECT
			ol.order_line_id,
			o.transaction_date AS date,
			ol.office,
			ol.reference_no,
			ol.quantity AS issued_qty,
			ol.receipt_qty,
			ol.days_to_consume
		FROM order_line ol
		JOIN orders o ON o.order_id = ol.order_id
		WHERE ol.item_id = $1
		ORDER BY o.transaction_date, ol.order_line_id
	`

	var movements []domain.StockCardMovement
	if err := r.db.SelectContext(ctx, &movements, query, itemID); err != nil {
		return nil, fmt.Errorf("error loading stock card movements for item %d: %w", itemID, err)
	}

	return movements, nil
}

// UpdateLine patches only the columns the caller supplied. The line must
// belong to the item, so a card for one item can never edit another's rows.
func (r *stockCardRepository) UpdateLine(ctx context.Context, itemID int64, upd domain.StockCardLineUpdate) error {
	query := `
		UPDATE order_line
		SET
			reference_no = COALESCE($1, reference_no),
			office = COALESCE($2, office),
			days_to_consume = COALESCE($3, days_to_consume),
			receipt_qty = COALESCE($4, receipt_qty)
		WHERE order_line_id = $5 AND item_id = $6
	`

	res, err := r.db.ExecContext(ctx, query,
		upd.ReferenceNo, upd.Office, upd.DaysToConsume, upd.ReceiptQty,
		upd.OrderLineID, itemID)
	if err != nil {
		return fmt.Errorf("error updating stock card line %d: %w", upd.OrderLineID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error updating stock card line %d: %w", upd.OrderLineID, err)
	}
	if affected == 0 {
		return ErrOrderLineNotFound
	}

	return nil
}
