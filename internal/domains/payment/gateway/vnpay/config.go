package vnpay

import "fmt"

// =====================================================
// VNPAY CONFIGURATION
// =====================================================

type Config struct {
	TmnCode    string // merchant code issued by VNPay
	HashSecret string // secret key for the HMAC-SHA512 signature
	APIUrl     string // payment gateway base URL
	ReturnURL  string // where VNPay redirects the customer afterwards
	Version    string
	Command    string
	CurrCode   string
	Locale     string
}

func NewConfig(tmnCode, hashSecret, apiURL, returnURL string) *Config {
	return &Config{
		TmnCode:    tmnCode,
		HashSecret: hashSecret,
		APIUrl:     apiURL,
		ReturnURL:  returnURL,
		Version:    "2.1.0",
		Command:    "pay",
		CurrCode:   "VND",
		Locale:     "vn",
	}
}

func (c *Config) Validate() error {
	if c.TmnCode == "" {
		return fmt.Errorf("VNPay TmnCode is required")
	}
	if c.HashSecret == "" {
		return fmt.Errorf("VNPay HashSecret is required")
	}
	if c.APIUrl == "" {
		return fmt.Errorf("VNPay APIUrl is required")
	}
	if c.ReturnURL == "" {
		return fmt.Errorf("VNPay ReturnURL is required")
	}
	return nil
}

func (c *Config) GetPaymentURL() string {
	return c.APIUrl + "/vpcpay.html"
}

// ResponseCodeSuccess is the only code that marks a transaction paid;
// everything else is a failure of one flavor or another.
const ResponseCodeSuccess = "00"
