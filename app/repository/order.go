package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fooddelivery/ms-go-checkout/app/entity"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) conn(ctx context.Context) DBTX {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Create inserts the order together with its items. Callers that need the
// pair to be atomic run it under TxManager.InTx.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (
			payer_email, total_amount_paise, status, payment_method,
			delivery_address, order_date, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.conn(ctx).ExecContext(ctx, query,
		order.PayerEmail,
		order.TotalAmountPaise,
		order.Status,
		order.PaymentMethod,
		order.DeliveryAddress,
		order.OrderDate,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return err
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = uint64(orderID)

	itemQuery := `
		INSERT INTO order_items (
			order_id, name, quantity, unit_price_paise, subtotal_paise
		)
		VALUES (?, ?, ?, ?, ?)
	`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		itemResult, err := r.conn(ctx).ExecContext(ctx, itemQuery,
			item.OrderID,
			item.Name,
			item.Quantity,
			item.UnitPricePaise,
			item.SubtotalPaise,
		)
		if err != nil {
			return err
		}
		itemID, err := itemResult.LastInsertId()
		if err != nil {
			return err
		}
		item.ID = uint64(itemID)
	}

	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint64) (*entity.Order, error) {
	query := `
		SELECT id, payer_email, total_amount_paise, status, payment_method,
			delivery_address, order_date, created_at, updated_at
		FROM orders
		WHERE id = ?
	`

	order := &entity.Order{}
	err := scanOrder(r.conn(ctx).QueryRowContext(ctx, query, id), order)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, []uint64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return order, nil
}

// UpdateStatus moves an order out of PENDING. The WHERE clause re-checks the
// current status so two concurrent settlements cannot both win.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint64, fromStatus, toStatus string, updatedAt time.Time) error {
	query := `
		UPDATE orders SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.conn(ctx).ExecContext(ctx, query, toStatus, updatedAt, id, fromStatus)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepository) ListByPayerEmail(ctx context.Context, payerEmail string) ([]*entity.Order, error) {
	query := `
		SELECT id, payer_email, total_amount_paise, status, payment_method,
			delivery_address, order_date, created_at, updated_at
		FROM orders
		WHERE payer_email = ?
		ORDER BY id DESC
	`

	rows, err := r.conn(ctx).QueryContext(ctx, query, payerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*entity.Order, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		order := &entity.Order{}
		if err := scanOrder(rows, order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Items = items[order.ID]
	}

	return orders, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []uint64) (map[uint64][]entity.OrderItem, error) {
	items := make(map[uint64][]entity.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}

	query := `
		SELECT id, order_id, name, quantity, unit_price_paise, subtotal_paise
		FROM order_items
		WHERE order_id IN (` + placeholders(len(orderIDs)) + `)
		ORDER BY id ASC
	`

	args := make([]interface{}, 0, len(orderIDs))
	for _, id := range orderIDs {
		args = append(args, id)
	}

	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Name,
			&item.Quantity,
			&item.UnitPricePaise,
			&item.SubtotalPaise,
		); err != nil {
			return nil, err
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanOrder(scan rowScanner, order *entity.Order) error {
	return scan.Scan(
		&order.ID,
		&order.PayerEmail,
		&order.TotalAmountPaise,
		&order.Status,
		&order.PaymentMethod,
		&order.DeliveryAddress,
		&order.OrderDate,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}
