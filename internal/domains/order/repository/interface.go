package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/order/model"
)

// OrderRepository owns the checkout transaction handles: the service
// begins a tx here and threads it through the other domains' WithTx
// methods so everything lands or rolls back together.
type OrderRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error

	CreateOrderWithTx(ctx context.Context, tx pgx.Tx, order *model.Order) error
	CreateOrderItemsWithTx(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	GetItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]model.Order, int, error)

	// GetByIDForUpdate locks the order row for a status change inside a
	// transaction (cancellation restores stock in the same tx).
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Order, error)
	GetItemsByOrderIDWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// UpdateStatus is version-conditional: zero affected rows means the
	// caller lost an optimistic-concurrency race.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, version int) error
	MarkCancelledWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, version int) error

	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, paymentStatus string) error
}
