package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// =====================================================
// PREVIEW COUPON REQUEST
// =====================================================
// PreviewRequest asks what a coupon would take off a given subtotal
// without redeeming anything.
type PreviewRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func (r PreviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Subtotal, validation.By(nonNegativeDecimal)),
	)
}

func nonNegativeDecimal(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if d.IsNegative() {
		return validation.NewError("validation_min", "must be no less than 0")
	}
	return nil
}

type PreviewResponse struct {
	Code     string          `json:"code"`
	Type     string          `json:"type"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}
