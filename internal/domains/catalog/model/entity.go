package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ENTITY: Product
// =====================================================
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// =====================================================
// ENTITY: ProductVariant
// =====================================================
// A variant carries its own stock; when a variant is selected its stock,
// not the product's, gates purchasability.
type ProductVariant struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	Stock           int             `json:"stock"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EffectivePrice returns the variant price: base product price plus the
// signed adjustment.
func (v *ProductVariant) EffectivePrice(base decimal.Decimal) decimal.Decimal {
	return base.Add(v.PriceAdjustment)
}

// =====================================================
// PRICED ITEM
// =====================================================
// PricedItem is the resolver's output for one requested line item: the
// effective unit price snapshot plus display fields, after the stock check
// passed.
type PricedItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	VariantName *string         `json:"variant_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal returns unit price times quantity.
func (p *PricedItem) Subtotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
