package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/catalog/model"
	"shop-backend/internal/domains/catalog/repository"
	"shop-backend/pkg/cache"
	"shop-backend/pkg/logger"
)

const (
	productCacheTTL  = 5 * time.Minute
	listCacheTTL     = 1 * time.Minute
	productCachePref = "catalog:product:"
	listCachePref    = "catalog:list:"
)

type CatalogService struct {
	repo  repository.CatalogRepository
	cache cache.Cache
}

func NewService(repo repository.CatalogRepository, cache cache.Cache) ServiceInterface {
	return &CatalogService{
		repo:  repo,
		cache: cache,
	}
}

// =====================================================
// PRICE RESOLUTION
// =====================================================

// Resolve checks each requested line against the live catalog and builds
// price snapshots. Stock here is advisory only: the authoritative check
// happens again under row locks in ResolveForUpdate.
func (s *CatalogService) Resolve(ctx context.Context, items []model.ResolveRequest) ([]model.PricedItem, error) {
	priced := make([]model.PricedItem, 0, len(items))

	for _, req := range items {
		if err := req.Validate(); err != nil {
			return nil, model.NewCatalogError(model.ErrCodeInvalidQuantity, err.Error(), model.ErrInvalidQuantity)
		}

		product, err := s.repo.GetActiveProduct(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}

		item, err := s.priceItem(ctx, nil, product, req)
		if err != nil {
			return nil, err
		}
		priced = append(priced, *item)
	}

	return priced, nil
}

// ResolveForUpdate is the commit-time variant: rows are read FOR UPDATE so
// the subsequent decrement sees exactly the stock that was checked.
func (s *CatalogService) ResolveForUpdate(ctx context.Context, tx pgx.Tx, items []model.ResolveRequest) ([]model.PricedItem, error) {
	priced := make([]model.PricedItem, 0, len(items))

	for _, req := range items {
		if err := req.Validate(); err != nil {
			return nil, model.NewCatalogError(model.ErrCodeInvalidQuantity, err.Error(), model.ErrInvalidQuantity)
		}

		product, err := s.repo.GetActiveProductForUpdate(ctx, tx, req.ProductID)
		if err != nil {
			return nil, err
		}

		item, err := s.priceItem(ctx, tx, product, req)
		if err != nil {
			return nil, err
		}
		priced = append(priced, *item)
	}

	return priced, nil
}

// priceItem resolves the variant (if any), gates on the relevant stock
// figure and snapshots the effective unit price. A non-nil tx routes the
// variant read through the locking path.
func (s *CatalogService) priceItem(ctx context.Context, tx pgx.Tx, product *model.Product, req model.ResolveRequest) (*model.PricedItem, error) {
	item := model.PricedItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    req.Quantity,
		UnitPrice:   product.Price,
	}

	available := product.Stock

	if req.VariantID != nil {
		var (
			variant *model.ProductVariant
			err     error
		)
		if tx != nil {
			variant, err = s.repo.GetVariantForUpdate(ctx, tx, product.ID, *req.VariantID)
		} else {
			variant, err = s.repo.GetVariant(ctx, product.ID, *req.VariantID)
		}
		if err != nil {
			return nil, err
		}

		item.VariantID = &variant.ID
		item.VariantName = &variant.Name
		item.UnitPrice = variant.EffectivePrice(product.Price)
		available = variant.Stock
	}

	if available < req.Quantity {
		return nil, model.NewOutOfStockError(product.ID, req.Quantity, available)
	}

	return &item, nil
}

// =====================================================
// STOCK MUTATIONS
// =====================================================

func (s *CatalogService) DecrementStock(ctx context.Context, tx pgx.Tx, items []model.PricedItem) error {
	for _, item := range items {
		var err error
		if item.VariantID != nil {
			err = s.repo.DecrementVariantStockWithTx(ctx, tx, *item.VariantID, item.Quantity)
		} else {
			err = s.repo.DecrementProductStockWithTx(ctx, tx, item.ProductID, item.Quantity)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *CatalogService) RestoreStock(ctx context.Context, tx pgx.Tx, items []model.PricedItem) error {
	for _, item := range items {
		var err error
		if item.VariantID != nil {
			err = s.repo.RestoreVariantStockWithTx(ctx, tx, *item.VariantID, item.Quantity)
		} else {
			err = s.repo.RestoreProductStockWithTx(ctx, tx, item.ProductID, item.Quantity)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// InvalidateProducts drops the cached entries for the given products. Call
// it after the owning transaction commits: invalidating earlier lets a
// concurrent read repopulate the cache with pre-commit stock.
func (s *CatalogService) InvalidateProducts(ctx context.Context, items []model.PricedItem) {
	keys := make([]string, 0, len(items)+1)
	for _, item := range items {
		keys = append(keys, productCachePref+item.ProductID.String())
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("failed to invalidate product cache", map[string]interface{}{"error": err.Error()})
	}
	if err := s.cache.DeletePattern(ctx, listCachePref+"*"); err != nil {
		logger.Warn("failed to invalidate product list cache", map[string]interface{}{"error": err.Error()})
	}
}

// =====================================================
// PUBLIC CATALOG READS
// =====================================================

func (s *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*model.ProductDetailResponse, error) {
	cacheKey := productCachePref + productID.String()

	var cached model.ProductDetailResponse
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		// Cache failures degrade to the database, never surface.
		logger.Warn("product cache read failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}
	if found {
		return &cached, nil
	}

	product, err := s.repo.GetActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	variants, err := s.repo.GetVariantsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	detail := model.BuildProductDetail(product, variants)

	if err := s.cache.Set(ctx, cacheKey, detail, productCacheTTL); err != nil {
		logger.Warn("product cache write failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}

	return detail, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, req model.ListProductsRequest) ([]model.Product, int, error) {
	req.Normalize()

	type listCache struct {
		Products []model.Product `json:"products"`
		Total    int             `json:"total"`
	}

	cacheKey := fmt.Sprintf("%sp%d:l%d", listCachePref, req.Page, req.Limit)

	var cached listCache
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warn("product list cache read failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}
	if found {
		return cached.Products, cached.Total, nil
	}

	products, total, err := s.repo.ListActiveProducts(ctx, req.Page, req.Limit)
	if err != nil {
		return nil, 0, err
	}

	if err := s.cache.Set(ctx, cacheKey, listCache{Products: products, Total: total}, listCacheTTL); err != nil {
		logger.Warn("product list cache write failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}

	return products, total, nil
}
