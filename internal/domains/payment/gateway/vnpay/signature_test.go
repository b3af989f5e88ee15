package vnpay

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domains/payment/gateway"
)

const testSecret = "TESTHASHSECRET"

func TestGenerateSignature_Deterministic(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef":       "ORD-20260829-ABCD1234",
		"vnp_Amount":       "10000000",
		"vnp_ResponseCode": "00",
	}

	first := GenerateSignature(params, testSecret)
	second := GenerateSignature(params, testSecret)

	assert.Equal(t, first, second)
	assert.Len(t, first, 128, "HMAC-SHA512 hex digest")
	assert.Equal(t, strings.ToUpper(first), first)
}

func TestGenerateSignature_IgnoresSignatureFields(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef": "REF",
		"vnp_Amount": "100",
	}
	withHash := map[string]string{
		"vnp_TxnRef":         "REF",
		"vnp_Amount":         "100",
		"vnp_SecureHash":     "deadbeef",
		"vnp_SecureHashType": "HmacSHA512",
	}

	assert.Equal(t, GenerateSignature(params, testSecret), GenerateSignature(withHash, testSecret))
}

func TestVerifySignature_RoundTrip(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef":       "ORD-20260829-ABCD1234",
		"vnp_Amount":       "10000000",
		"vnp_ResponseCode": "00",
	}
	params["vnp_SecureHash"] = GenerateSignature(params, testSecret)

	assert.True(t, VerifySignature(params, testSecret))

	t.Run("tampered parameter fails", func(t *testing.T) {
		tampered := make(map[string]string)
		for k, v := range params {
			tampered[k] = v
		}
		tampered["vnp_Amount"] = "1"
		assert.False(t, VerifySignature(tampered, testSecret))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		assert.False(t, VerifySignature(params, "OTHERSECRET"))
	})

	t.Run("missing hash fails", func(t *testing.T) {
		assert.False(t, VerifySignature(map[string]string{"vnp_TxnRef": "REF"}, testSecret))
	})
}

func TestBuildPaymentURL(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef":    "ORD-1",
		"vnp_Amount":    "5000000",
		"vnp_OrderInfo": "Payment for order ORD-1",
	}

	raw := BuildPaymentURL("https://sandbox.vnpayment.vn/paymentv2/vpcpay.html", params, testSecret)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "ORD-1", q.Get("vnp_TxnRef"))
	assert.Equal(t, "5000000", q.Get("vnp_Amount"))
	assert.Equal(t, "Payment for order ORD-1", q.Get("vnp_OrderInfo"))
	assert.NotEmpty(t, q.Get("vnp_SecureHash"))

	// spaces are PHP-urlencoded in the raw string
	assert.Contains(t, raw, "Payment+for+order")
}

func TestClient_EndToEnd(t *testing.T) {
	cfg := NewConfig("TMN01", testSecret, "https://sandbox.vnpayment.vn/paymentv2", "https://shop.example.com/return")
	client, err := NewClient(cfg)
	require.NoError(t, err)

	paymentURL, err := client.CreatePaymentURL(context.Background(), gateway.PaymentRequest{
		TransactionRef: "ORD-20260829-ABCD1234",
		Amount:         decimal.NewFromInt(150000),
		OrderInfo:      "Order ORD-20260829-ABCD1234",
		ClientIP:       "203.0.113.7",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "15000000", q.Get("vnp_Amount"), "VND x100")
	assert.Equal(t, "203.0.113.7", q.Get("vnp_IpAddr"))
	assert.Equal(t, "TMN01", q.Get("vnp_TmnCode"))

	t.Run("callback verifies against the same secret", func(t *testing.T) {
		cbParams := map[string]string{
			"vnp_TxnRef":       "ORD-20260829-ABCD1234",
			"vnp_ResponseCode": "00",
			"vnp_Amount":       "15000000",
		}
		cbParams["vnp_SecureHash"] = GenerateSignature(cbParams, testSecret)

		values := url.Values{}
		for k, v := range cbParams {
			values.Set(k, v)
		}

		result, err := client.VerifyCallback(values.Encode())
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "ORD-20260829-ABCD1234", result.TransactionRef)
	})

	t.Run("failed response code is not success", func(t *testing.T) {
		cbParams := map[string]string{
			"vnp_TxnRef":       "ORD-20260829-ABCD1234",
			"vnp_ResponseCode": "24",
		}
		cbParams["vnp_SecureHash"] = GenerateSignature(cbParams, testSecret)

		values := url.Values{}
		for k, v := range cbParams {
			values.Set(k, v)
		}

		result, err := client.VerifyCallback(values.Encode())
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "24", result.ResponseCode)
	})

	t.Run("forged callback rejected", func(t *testing.T) {
		_, err := client.VerifyCallback("vnp_TxnRef=ORD-1&vnp_ResponseCode=00&vnp_SecureHash=FORGED")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestClient_CreatePaymentURL_Validation(t *testing.T) {
	cfg := NewConfig("TMN01", testSecret, "https://sandbox.vnpayment.vn/paymentv2", "https://shop.example.com/return")
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = client.CreatePaymentURL(context.Background(), gateway.PaymentRequest{
		Amount: decimal.NewFromInt(100),
	})
	assert.Error(t, err, "missing transaction ref")

	_, err = client.CreatePaymentURL(context.Background(), gateway.PaymentRequest{
		TransactionRef: "ORD-1",
		Amount:         decimal.Zero,
	})
	assert.Error(t, err, "non-positive amount")
}
