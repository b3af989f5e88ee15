package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/catalog/model"
)

// ServiceInterface resolves requested line items to price snapshots and
// serves public catalog reads.
type ServiceInterface interface {
	// Resolve validates a cart against the live catalog: existence,
	// active flag, variant ownership and an advisory stock check. The
	// returned items carry the effective unit price snapshots.
	Resolve(ctx context.Context, items []model.ResolveRequest) ([]model.PricedItem, error)

	// ResolveForUpdate repeats the resolution inside an open transaction
	// with row locks held, so the caller can decrement stock against the
	// same row state it just checked.
	ResolveForUpdate(ctx context.Context, tx pgx.Tx, items []model.ResolveRequest) ([]model.PricedItem, error)

	// DecrementStock applies the conditional stock decrements for already
	// locked rows inside the caller's transaction.
	DecrementStock(ctx context.Context, tx pgx.Tx, items []model.PricedItem) error

	// RestoreStock adds quantities back inside the caller's transaction,
	// used when an order is cancelled.
	RestoreStock(ctx context.Context, tx pgx.Tx, items []model.PricedItem) error

	// InvalidateProducts evicts cached product state after a stock
	// mutation has committed. Best-effort; never returns an error.
	InvalidateProducts(ctx context.Context, items []model.PricedItem)

	GetProduct(ctx context.Context, productID uuid.UUID) (*model.ProductDetailResponse, error)
	ListProducts(ctx context.Context, req model.ListProductsRequest) ([]model.Product, int, error)
}
