package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentRequest carries what the gateway needs to build a redirect URL.
type PaymentRequest struct {
	TransactionRef string // order number, echoed back in the callback
	Amount         decimal.Decimal
	OrderInfo      string
	ClientIP       string
}

// CallbackResult is the verified outcome of a gateway callback.
type CallbackResult struct {
	TransactionRef string
	ResponseCode   string
	Success        bool
}

// VNPayGateway builds signed payment URLs and verifies callbacks.
type VNPayGateway interface {
	CreatePaymentURL(ctx context.Context, req PaymentRequest) (string, error)
	VerifyCallback(rawQuery string) (*CallbackResult, error)
}
