package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domains/catalog/model"
)

// =====================================================
// FAKES
// =====================================================

type fakeCatalogRepo struct {
	products    map[uuid.UUID]*model.Product
	variants    map[uuid.UUID]*model.ProductVariant
	forUpdate   int // counts locking reads
	decremented map[uuid.UUID]int
	restored    map[uuid.UUID]int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		products:    make(map[uuid.UUID]*model.Product),
		variants:    make(map[uuid.UUID]*model.ProductVariant),
		decremented: make(map[uuid.UUID]int),
		restored:    make(map[uuid.UUID]int),
	}
}

func (f *fakeCatalogRepo) addProduct(price string, stock int) *model.Product {
	p := &model.Product{
		ID:       uuid.New(),
		Name:     "test product",
		Slug:     "test-product",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	f.products[p.ID] = p
	return p
}

func (f *fakeCatalogRepo) addVariant(productID uuid.UUID, adjustment string, stock int) *model.ProductVariant {
	v := &model.ProductVariant{
		ID:              uuid.New(),
		ProductID:       productID,
		Name:            "test variant",
		PriceAdjustment: decimal.RequireFromString(adjustment),
		Stock:           stock,
	}
	f.variants[v.ID] = v
	return v
}

func (f *fakeCatalogRepo) GetActiveProduct(_ context.Context, productID uuid.UUID) (*model.Product, error) {
	p, ok := f.products[productID]
	if !ok || !p.IsActive {
		return nil, model.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalogRepo) GetVariant(_ context.Context, productID, variantID uuid.UUID) (*model.ProductVariant, error) {
	v, ok := f.variants[variantID]
	if !ok || v.ProductID != productID {
		return nil, model.ErrVariantNotFound
	}
	return v, nil
}

func (f *fakeCatalogRepo) GetVariantsByProduct(_ context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	var out []model.ProductVariant
	for _, v := range f.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListActiveProducts(_ context.Context, page, limit int) ([]model.Product, int, error) {
	var out []model.Product
	for _, p := range f.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (f *fakeCatalogRepo) GetActiveProductForUpdate(ctx context.Context, _ pgx.Tx, productID uuid.UUID) (*model.Product, error) {
	f.forUpdate++
	return f.GetActiveProduct(ctx, productID)
}

func (f *fakeCatalogRepo) GetVariantForUpdate(ctx context.Context, _ pgx.Tx, productID, variantID uuid.UUID) (*model.ProductVariant, error) {
	f.forUpdate++
	return f.GetVariant(ctx, productID, variantID)
}

func (f *fakeCatalogRepo) DecrementProductStockWithTx(_ context.Context, _ pgx.Tx, productID uuid.UUID, quantity int) error {
	p, ok := f.products[productID]
	if !ok || p.Stock < quantity {
		return model.ErrOutOfStock
	}
	p.Stock -= quantity
	f.decremented[productID] += quantity
	return nil
}

func (f *fakeCatalogRepo) DecrementVariantStockWithTx(_ context.Context, _ pgx.Tx, variantID uuid.UUID, quantity int) error {
	v, ok := f.variants[variantID]
	if !ok || v.Stock < quantity {
		return model.ErrOutOfStock
	}
	v.Stock -= quantity
	f.decremented[variantID] += quantity
	return nil
}

func (f *fakeCatalogRepo) RestoreProductStockWithTx(_ context.Context, _ pgx.Tx, productID uuid.UUID, quantity int) error {
	p, ok := f.products[productID]
	if !ok {
		return model.ErrProductNotFound
	}
	p.Stock += quantity
	f.restored[productID] += quantity
	return nil
}

func (f *fakeCatalogRepo) RestoreVariantStockWithTx(_ context.Context, _ pgx.Tx, variantID uuid.UUID, quantity int) error {
	v, ok := f.variants[variantID]
	if !ok {
		return model.ErrVariantNotFound
	}
	v.Stock += quantity
	f.restored[variantID] += quantity
	return nil
}

type noopCache struct{}

func (noopCache) Get(_ context.Context, _ string, _ interface{}) (bool, error) { return false, nil }
func (noopCache) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	return nil
}
func (noopCache) Delete(_ context.Context, _ ...string) error     { return nil }
func (noopCache) DeletePattern(_ context.Context, _ string) error { return nil }
func (noopCache) Ping(_ context.Context) error                    { return nil }

// =====================================================
// TESTS
// =====================================================

func TestResolve_ProductPricing(t *testing.T) {
	repo := newFakeCatalogRepo()
	product := repo.addProduct("19.99", 10)
	svc := NewService(repo, noopCache{})

	items, err := svc.Resolve(context.Background(), []model.ResolveRequest{
		{ProductID: product.ID, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, product.ID, items[0].ProductID)
	assert.Nil(t, items[0].VariantID)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))
	assert.True(t, items[0].Subtotal().Equal(decimal.RequireFromString("59.97")))
}

func TestResolve_VariantPricing(t *testing.T) {
	repo := newFakeCatalogRepo()
	product := repo.addProduct("50.00", 0) // product stock must not matter
	svc := NewService(repo, noopCache{})

	t.Run("positive adjustment", func(t *testing.T) {
		variant := repo.addVariant(product.ID, "5.50", 4)

		items, err := svc.Resolve(context.Background(), []model.ResolveRequest{
			{ProductID: product.ID, VariantID: &variant.ID, Quantity: 2},
		})
		require.NoError(t, err)
		require.Len(t, items, 1)

		assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("55.50")))
		require.NotNil(t, items[0].VariantID)
		assert.Equal(t, variant.ID, *items[0].VariantID)
	})

	t.Run("negative adjustment", func(t *testing.T) {
		variant := repo.addVariant(product.ID, "-10.00", 4)

		items, err := svc.Resolve(context.Background(), []model.ResolveRequest{
			{ProductID: product.ID, VariantID: &variant.ID, Quantity: 1},
		})
		require.NoError(t, err)
		assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("40.00")))
	})

	t.Run("variant stock gates even when product stock is zero", func(t *testing.T) {
		variant := repo.addVariant(product.ID, "0.00", 3)

		_, err := svc.Resolve(context.Background(), []model.ResolveRequest{
			{ProductID: product.ID, VariantID: &variant.ID, Quantity: 3},
		})
		assert.NoError(t, err)
	})
}

func TestResolve_Errors(t *testing.T) {
	repo := newFakeCatalogRepo()
	product := repo.addProduct("10.00", 5)
	variant := repo.addVariant(product.ID, "0.00", 2)
	other := repo.addProduct("10.00", 5)
	svc := NewService(repo, noopCache{})

	tests := []struct {
		name    string
		req     model.ResolveRequest
		wantErr error
	}{
		{
			name:    "unknown product",
			req:     model.ResolveRequest{ProductID: uuid.New(), Quantity: 1},
			wantErr: model.ErrProductNotFound,
		},
		{
			name:    "variant belongs to another product",
			req:     model.ResolveRequest{ProductID: other.ID, VariantID: &variant.ID, Quantity: 1},
			wantErr: model.ErrVariantNotFound,
		},
		{
			name:    "quantity exceeds product stock",
			req:     model.ResolveRequest{ProductID: product.ID, Quantity: 6},
			wantErr: model.ErrOutOfStock,
		},
		{
			name:    "quantity exceeds variant stock",
			req:     model.ResolveRequest{ProductID: product.ID, VariantID: &variant.ID, Quantity: 3},
			wantErr: model.ErrOutOfStock,
		},
		{
			name:    "zero quantity",
			req:     model.ResolveRequest{ProductID: product.ID, Quantity: 0},
			wantErr: model.ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			req:     model.ResolveRequest{ProductID: product.ID, Quantity: -2},
			wantErr: model.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Resolve(context.Background(), []model.ResolveRequest{tt.req})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolve_InactiveProduct(t *testing.T) {
	repo := newFakeCatalogRepo()
	product := repo.addProduct("10.00", 5)
	product.IsActive = false
	svc := NewService(repo, noopCache{})

	_, err := svc.Resolve(context.Background(), []model.ResolveRequest{
		{ProductID: product.ID, Quantity: 1},
	})
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestResolveForUpdate_UsesLockingReads(t *testing.T) {
	repo := newFakeCatalogRepo()
	product := repo.addProduct("10.00", 5)
	variant := repo.addVariant(product.ID, "1.00", 5)
	svc := NewService(repo, noopCache{})

	items, err := svc.ResolveForUpdate(context.Background(), nil, []model.ResolveRequest{
		{ProductID: product.ID, VariantID: &variant.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// one locking read for the product row, one for the variant row
	assert.Equal(t, 2, repo.forUpdate)
}

func TestDecrementStock(t *testing.T) {
	repo := newFakeCatalogRepo()
	product := repo.addProduct("10.00", 5)
	variant := repo.addVariant(product.ID, "0.00", 3)
	svc := NewService(repo, noopCache{})

	items := []model.PricedItem{
		{ProductID: product.ID, Quantity: 2, UnitPrice: product.Price},
		{ProductID: product.ID, VariantID: &variant.ID, Quantity: 3, UnitPrice: product.Price},
	}

	err := svc.DecrementStock(context.Background(), nil, items)
	require.NoError(t, err)

	assert.Equal(t, 3, repo.products[product.ID].Stock)
	assert.Equal(t, 0, repo.variants[variant.ID].Stock)
}

func TestDecrementStock_Insufficient(t *testing.T) {
	repo := newFakeCatalogRepo()
	product := repo.addProduct("10.00", 1)
	svc := NewService(repo, noopCache{})

	err := svc.DecrementStock(context.Background(), nil, []model.PricedItem{
		{ProductID: product.ID, Quantity: 2, UnitPrice: product.Price},
	})
	assert.ErrorIs(t, err, model.ErrOutOfStock)
	assert.Equal(t, 1, repo.products[product.ID].Stock)
}

func TestRestoreStock(t *testing.T) {
	repo := newFakeCatalogRepo()
	product := repo.addProduct("10.00", 0)
	variant := repo.addVariant(product.ID, "0.00", 0)
	svc := NewService(repo, noopCache{})

	err := svc.RestoreStock(context.Background(), nil, []model.PricedItem{
		{ProductID: product.ID, Quantity: 2, UnitPrice: product.Price},
		{ProductID: product.ID, VariantID: &variant.ID, Quantity: 1, UnitPrice: product.Price},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.products[product.ID].Stock)
	assert.Equal(t, 1, repo.variants[variant.ID].Stock)
}
