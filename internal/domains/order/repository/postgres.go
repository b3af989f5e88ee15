package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/domains/order/model"
	"shop-backend/pkg/logger"
)

type postgresOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{
		pool: pool,
	}
}

// =====================================================
// TRANSACTION MANAGEMENT
// =====================================================

func (r *postgresOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *postgresOrderRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (r *postgresOrderRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.Error("failed to rollback transaction", err)
		return err
	}
	return nil
}

// =====================================================
// WRITES (inside the checkout transaction)
// =====================================================

func (r *postgresOrderRepository) CreateOrderWithTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, user_id, coupon_id,
			subtotal, discount_amount, total,
			payment_method, payment_status, status,
			shipping_address, phone, customer_note, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.CouponID,
		order.Subtotal,
		order.DiscountAmount,
		order.Total,
		order.PaymentMethod,
		order.PaymentStatus,
		order.Status,
		order.ShippingAddress,
		order.Phone,
		order.CustomerNote,
		order.Version,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (r *postgresOrderRepository) CreateOrderItemsWithTx(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	query := `
		INSERT INTO order_items (
			id, order_id, product_id, variant_id,
			product_name, variant_name, quantity, unit_price, subtotal, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.ProductName,
			item.VariantName,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

// =====================================================
// READS
// =====================================================

const orderColumns = `
	id, order_number, user_id, coupon_id,
	subtotal, discount_amount, total,
	payment_method, payment_status, status,
	shipping_address, phone, customer_note,
	version, created_at, updated_at, cancelled_at
`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.CouponID,
		&o.Subtotal,
		&o.DiscountAmount,
		&o.Total,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.Status,
		&o.ShippingAddress,
		&o.Phone,
		&o.CustomerNote,
		&o.Version,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.CancelledAt,
	)
}

func (r *postgresOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order model.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, orderID), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}

	return &order, nil
}

func (r *postgresOrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	var order model.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, orderNumber), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by number: %w", err)
	}

	return &order, nil
}

func (r *postgresOrderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	var order model.Order
	if err := scanOrder(tx.QueryRow(ctx, query, orderID), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return &order, nil
}

const orderItemColumns = `
	id, order_id, product_id, variant_id,
	product_name, variant_name, quantity, unit_price, subtotal, created_at
`

func scanOrderItems(rows pgx.Rows) ([]model.OrderItem, error) {
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.ProductName,
			&item.VariantName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *postgresOrderRepository) GetItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	return scanOrderItems(rows)
}

func (r *postgresOrderRepository) GetItemsByOrderIDWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items in tx: %w", err)
	}

	return scanOrderItems(rows)
}

func (r *postgresOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]model.Order, int, error) {
	countQuery := `SELECT COUNT(*) FROM orders WHERE user_id = $1 AND ($2 = '' OR status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, userID, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id ASC
		LIMIT $3 OFFSET $4
	`

	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx, query, userID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0, limit)
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating order rows: %w", err)
	}

	return orders, total, nil
}

// =====================================================
// STATUS UPDATES
// =====================================================

func (r *postgresOrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, version int) error {
	query := `
		UPDATE orders
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`

	result, err := r.pool.Exec(ctx, query, status, orderID, version)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrVersionMismatch
	}

	return nil
}

func (r *postgresOrderRepository) MarkCancelledWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, version int) error {
	query := `
		UPDATE orders
		SET status = $1, cancelled_at = NOW(), version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`

	result, err := tx.Exec(ctx, query, model.OrderStatusCancelled, orderID, version)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrVersionMismatch
	}

	return nil
}

func (r *postgresOrderRepository) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, paymentStatus string) error {
	query := `
		UPDATE orders
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, paymentStatus, orderID)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}
