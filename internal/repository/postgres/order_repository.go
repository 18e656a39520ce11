// backend-go/internal/repository/postgres/order_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/repository"
)

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateWithLines(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	created := *order
	created.Lines = nil

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		// 1. Insert the order header
		var orderID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (customer_name, transaction_date, or_number)
			VALUES ($1, $2, $3)
			RETURNING order_id
		`, order.CustomerName, order.TransactionDate, order.ORNumber).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		created.OrderID = orderID

		lineStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO order_line (order_id, item_id, quantity, reference_no, office, days_to_consume, receipt_qty)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING order_line_id
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare line statement: %w", err)
		}
		defer lineStmt.Close()

		stockStmt, err := tx.PrepareContext(ctx, `
			UPDATE item
			SET stock_quantity = stock_quantity - $1
			WHERE item_id = $2 AND stock_quantity >= $1
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare stock statement: %w", err)
		}
		defer stockStmt.Close()

		// 2. Insert lines, consuming stock as we go
		for _, line := range order.Lines {
			res, err := stockStmt.ExecContext(ctx, line.Quantity, line.ItemID)
			if err != nil {
				return fmt.Errorf("failed to decrement stock for item %d: %w", line.ItemID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to decrement stock for item %d: %w", line.ItemID, err)
			}
			if affected == 0 {
				return fmt.Errorf("item %d: %w", line.ItemID, repository.ErrInsufficientStock)
			}

			saved := line
			saved.OrderID = orderID
			err = lineStmt.QueryRowContext(ctx,
				orderID, line.ItemID, line.Quantity,
				line.ReferenceNo, line.Office, line.DaysToConsume, line.ReceiptQty,
			).Scan(&saved.OrderLineID)
			if err != nil {
				return fmt.Errorf("failed to insert order line: %w", err)
			}
			created.Lines = append(created.Lines, saved)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *orderRepository) List(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			o.order_id, o.customer_name, o.transaction_date, o.or_number,
			COUNT(ol.order_line_id) AS line_count,
			COALESCE(SUM(ol.quantity), 0) AS total_quantity
		FROM orders o
		LEFT JOIN order_line ol ON ol.order_id = o.order_id
		GROUP BY o.order_id, o.customer_name, o.transaction_date, o.or_number
		ORDER BY o.transaction_date DESC, o.order_id DESC
		LIMIT $1
	`

	var orders []domain.OrderSummary
	if err := r.db.SelectContext(ctx, &orders, query, limit); err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := r.db.GetContext(ctx, &order, `
		SELECT order_id, customer_name, transaction_date, or_number
		FROM orders
		WHERE order_id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, fmt.Errorf("error getting order %d: %w", id, err)
	}

	err = r.db.SelectContext(ctx, &order.Lines, `
		SELECT
			ol.order_line_id, ol.order_id, ol.item_id, i.name AS item_name,
			ol.quantity, ol.reference_no, ol.office, ol.days_to_consume, ol.receipt_qty
		FROM order_line ol
		JOIN item i ON i.item_id = ol.item_id
		WHERE ol.order_id = $1
		ORDER BY ol.order_line_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("error getting lines for order %d: %w", id, err)
	}

	return &order, nil
}
