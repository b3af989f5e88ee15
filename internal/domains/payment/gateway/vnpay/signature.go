package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// =====================================================
// VNPAY SIGNATURE
// =====================================================

// GenerateSignature computes the HMAC-SHA512 signature over all vnp_*
// parameters except the signature fields themselves. Keys are sorted
// ascending, values are URL-decoded, and the hex digest is upper-cased,
// exactly as the gateway expects.
func GenerateSignature(params map[string]string, secretKey string) string {
	filtered := make(map[string]string)
	for key, value := range params {
		if key != "vnp_SecureHash" && key != "vnp_SecureHashType" && value != "" {
			filtered[key] = value
		}
	}

	keys := make([]string, 0, len(filtered))
	for key := range filtered {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := filtered[key]
		// callback values arrive URL-encoded
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		parts = append(parts, key+"="+value)
	}

	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write([]byte(strings.Join(parts, "&")))

	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// VerifySignature checks the vnp_SecureHash of a callback against the
// signature recomputed from the other parameters.
func VerifySignature(params map[string]string, secretKey string) bool {
	received := params["vnp_SecureHash"]
	if received == "" {
		return false
	}
	return strings.EqualFold(received, GenerateSignature(params, secretKey))
}

// BuildPaymentURL assembles the signed redirect URL. The hash is computed
// over the PHP-urlencode form of every parameter, matching VNPay's
// reference implementation.
func BuildPaymentURL(baseURL string, params map[string]string, hashSecret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "vnp_SecureHash" && k != "vnp_SecureHashType" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := params[k]; v != "" {
			parts = append(parts, phpURLEncode(k)+"="+phpURLEncode(v))
		}
	}
	query := strings.Join(parts, "&")

	h := hmac.New(sha512.New, []byte(hashSecret))
	h.Write([]byte(query))
	secureHash := strings.ToUpper(hex.EncodeToString(h.Sum(nil)))

	return baseURL + "?" + query + "&vnp_SecureHash=" + secureHash
}

// phpURLEncode encodes like PHP's urlencode: spaces become '+', everything
// else follows %XX escaping.
func phpURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%20", "+")
}

// ParseCallbackParams extracts the vnp_* parameters from a callback query
// string and checks the fields the verification needs.
func ParseCallbackParams(rawQuery string) (map[string]string, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("invalid query string: %w", err)
	}

	params := make(map[string]string)
	for key, vals := range values {
		if strings.HasPrefix(key, "vnp_") && len(vals) > 0 {
			params[key] = vals[0]
		}
	}

	for _, field := range []string{"vnp_TxnRef", "vnp_ResponseCode", "vnp_SecureHash"} {
		if params[field] == "" {
			return nil, fmt.Errorf("missing required field: %s", field)
		}
	}

	return params, nil
}
