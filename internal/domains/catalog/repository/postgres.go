package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/domains/catalog/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresCatalogRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &postgresCatalogRepository{
		pool: pool,
	}
}

const productColumns = `
	id, name, slug, description, price, stock, is_active, created_at, updated_at
`

const variantColumns = `
	id, product_id, name, price_adjustment, stock, created_at, updated_at
`

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func scanVariant(row pgx.Row, v *model.ProductVariant) error {
	return row.Scan(
		&v.ID,
		&v.ProductID,
		&v.Name,
		&v.PriceAdjustment,
		&v.Stock,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
}

// =====================================================
// POOL READS (validation phase, public endpoints)
// =====================================================

func (r *postgresCatalogRepository) GetActiveProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_active = true`

	var product model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, productID), &product)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	return &product, nil
}

func (r *postgresCatalogRepository) GetVariant(ctx context.Context, productID, variantID uuid.UUID) (*model.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1 AND product_id = $2`

	var variant model.ProductVariant
	err := scanVariant(r.pool.QueryRow(ctx, query, variantID, productID), &variant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to get variant by id: %w", err)
	}

	return &variant, nil
}

func (r *postgresCatalogRepository) GetVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1 ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var variants []model.ProductVariant
	for rows.Next() {
		var v model.ProductVariant
		if err := scanVariant(rows, &v); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variant rows: %w", err)
	}

	return variants, nil
}

func (r *postgresCatalogRepository) ListActiveProducts(ctx context.Context, page, limit int) ([]model.Product, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active = true`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`

	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0, limit)
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, total, nil
}

// =====================================================
// TRANSACTION-SCOPED READS (commit-time re-check)
// =====================================================

// GetActiveProductForUpdate re-reads the product row under FOR UPDATE so
// the stock check and the decrement that follows see the same row state.
func (r *postgresCatalogRepository) GetActiveProductForUpdate(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND is_active = true
		FOR UPDATE
	`

	var product model.Product
	err := scanProduct(tx.QueryRow(ctx, query, productID), &product)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	return &product, nil
}

func (r *postgresCatalogRepository) GetVariantForUpdate(ctx context.Context, tx pgx.Tx, productID, variantID uuid.UUID) (*model.ProductVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE id = $1 AND product_id = $2
		FOR UPDATE
	`

	var variant model.ProductVariant
	err := scanVariant(tx.QueryRow(ctx, query, variantID, productID), &variant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to lock variant: %w", err)
	}

	return &variant, nil
}

// =====================================================
// STOCK MUTATIONS (inside the order transaction only)
// =====================================================

// DecrementProductStockWithTx performs a conditional decrement. Zero
// affected rows means the stock guard failed, never a silent success.
func (r *postgresCatalogRepository) DecrementProductStockWithTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	result, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement product stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrOutOfStock
	}

	return nil
}

func (r *postgresCatalogRepository) DecrementVariantStockWithTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, quantity int) error {
	query := `
		UPDATE product_variants
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	result, err := tx.Exec(ctx, query, variantID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement variant stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrOutOfStock
	}

	return nil
}

func (r *postgresCatalogRepository) RestoreProductStockWithTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to restore product stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

func (r *postgresCatalogRepository) RestoreVariantStockWithTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, quantity int) error {
	query := `
		UPDATE product_variants
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, variantID, quantity)
	if err != nil {
		return fmt.Errorf("failed to restore variant stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrVariantNotFound
	}

	return nil
}
