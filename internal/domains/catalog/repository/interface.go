package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/catalog/model"
)

// CatalogRepository is the data-access surface for products and variants.
//
// The plain methods read through the pool and serve validation-phase
// pricing and public endpoints. The WithTx variants operate inside the
// order transaction: the ...ForUpdate reads take a row lock, and the
// stock mutations are conditional updates whose affected-row count the
// caller must trust (zero rows means insufficient stock).
type CatalogRepository interface {
	GetActiveProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error)
	GetVariant(ctx context.Context, productID, variantID uuid.UUID) (*model.ProductVariant, error)
	GetVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error)
	ListActiveProducts(ctx context.Context, page, limit int) ([]model.Product, int, error)

	GetActiveProductForUpdate(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (*model.Product, error)
	GetVariantForUpdate(ctx context.Context, tx pgx.Tx, productID, variantID uuid.UUID) (*model.ProductVariant, error)

	DecrementProductStockWithTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error
	DecrementVariantStockWithTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, quantity int) error
	RestoreProductStockWithTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error
	RestoreVariantStockWithTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, quantity int) error
}
