package vnpay

import (
	"errors"
	"time"
)

var ErrNotConfigured = errors.New("vnpay configuration missing")

type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	Locale     string        // "vn" or "en"
	ExpireIn   time.Duration // how long the gateway keeps the payment page open
}

func (c Config) Validate() error {
	if c.TmnCode == "" || c.HashSecret == "" || c.PayURL == "" {
		return ErrNotConfigured
	}
	return nil
}

func (c Config) expireIn() time.Duration {
	if c.ExpireIn <= 0 {
		return 15 * time.Minute
	}
	return c.ExpireIn
}

func (c Config) locale() string {
	if c.Locale == "" {
		return "vn"
	}
	return c.Locale
}
