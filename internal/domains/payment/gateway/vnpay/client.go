package vnpay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/payment/gateway"
)

// =====================================================
// VNPAY CLIENT
// =====================================================

var ErrInvalidSignature = errors.New("vnpay callback signature mismatch")

type Client struct {
	config *Config
}

func NewClient(config *Config) (gateway.VNPayGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid VNPay config: %w", err)
	}
	return &Client{config: config}, nil
}

func (c *Client) CreatePaymentURL(_ context.Context, req gateway.PaymentRequest) (string, error) {
	if req.TransactionRef == "" {
		return "", fmt.Errorf("transaction_ref is required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("amount must be positive")
	}

	clientIP := req.ClientIP
	if clientIP == "" || clientIP == "::1" {
		// VNPay requires an IPv4 address
		clientIP = "127.0.0.1"
	}

	now := time.Now()
	params := map[string]string{
		"vnp_Version":    c.config.Version,
		"vnp_Command":    c.config.Command,
		"vnp_TmnCode":    c.config.TmnCode,
		"vnp_Amount":     formatAmount(req.Amount),
		"vnp_CurrCode":   c.config.CurrCode,
		"vnp_TxnRef":     req.TransactionRef,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     c.config.Locale,
		"vnp_ReturnUrl":  c.config.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format("20060102150405"),
		"vnp_ExpireDate": now.Add(30 * time.Minute).Format("20060102150405"),
	}

	return BuildPaymentURL(c.config.GetPaymentURL(), params, c.config.HashSecret), nil
}

func (c *Client) VerifyCallback(rawQuery string) (*gateway.CallbackResult, error) {
	params, err := ParseCallbackParams(rawQuery)
	if err != nil {
		return nil, err
	}

	if !VerifySignature(params, c.config.HashSecret) {
		return nil, ErrInvalidSignature
	}

	code := params["vnp_ResponseCode"]
	return &gateway.CallbackResult{
		TransactionRef: params["vnp_TxnRef"],
		ResponseCode:   code,
		Success:        code == ResponseCodeSuccess,
	}, nil
}

// formatAmount renders the amount the way VNPay wants it: whole VND
// multiplied by 100, no decimal point.
func formatAmount(amount decimal.Decimal) string {
	return amount.Round(0).Mul(decimal.NewFromInt(100)).StringFixed(0)
}
