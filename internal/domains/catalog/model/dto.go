package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// RESOLVE PRICE REQUEST
// =====================================================
// ResolveRequest is one requested line item: product, optional variant,
// and a positive quantity.
type ResolveRequest struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity"`
}

func (r ResolveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

func notNilUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

// =====================================================
// PRODUCT RESPONSES
// =====================================================
type ProductDetailResponse struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Slug        string                  `json:"slug"`
	Description *string                 `json:"description,omitempty"`
	Price       decimal.Decimal         `json:"price"`
	Stock       int                     `json:"stock"`
	IsActive    bool                    `json:"is_active"`
	Variants    []ProductVariantSummary `json:"variants,omitempty"`
}

type ProductVariantSummary struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Stock          int             `json:"stock"`
}

// =====================================================
// LIST PRODUCTS REQUEST
// =====================================================
type ListProductsRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (req *ListProductsRequest) Normalize() {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
}

// BuildProductDetail assembles the public product view.
func BuildProductDetail(p *Product, variants []ProductVariant) *ProductDetailResponse {
	resp := &ProductDetailResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
	}
	for _, v := range variants {
		resp.Variants = append(resp.Variants, ProductVariantSummary{
			ID:             v.ID,
			Name:           v.Name,
			EffectivePrice: v.EffectivePrice(p.Price),
			Stock:          v.Stock,
		})
	}
	return resp
}
