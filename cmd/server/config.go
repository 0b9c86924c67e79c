package main

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/churchbilling/pkg/clientip"
)

// appConfig holds the settings of the billing endpoint itself.
type appConfig struct {
	WebhookPath        string        `env:"BILLING_WEBHOOK_PATH" envDefault:"/webhooks/billing"`
	WebhookToken       string        `env:"BILLING_WEBHOOK_TOKEN"`
	WebhookAllowedIPs  []string      `env:"BILLING_WEBHOOK_ALLOWED_IPS" envSeparator:","`
	TrustedProxies     []string      `env:"BILLING_TRUSTED_PROXIES" envSeparator:","`
	WebhookRateLimit   int           `env:"BILLING_WEBHOOK_RATE_LIMIT" envDefault:"120"`
	NotifyTimeout      time.Duration `env:"BILLING_NOTIFY_TIMEOUT" envDefault:"10s"`
	Dedup              bool          `env:"BILLING_DEDUP" envDefault:"true"`
	ClaimTTL           time.Duration `env:"BILLING_CLAIM_TTL" envDefault:"72h"`
	ClaimPurgeInterval time.Duration `env:"BILLING_CLAIM_PURGE_INTERVAL" envDefault:"1h"`
	ReadinessTimeout   time.Duration `env:"READINESS_TIMEOUT" envDefault:"2s"`
}

// Validate implements config.Validator.
func (c *appConfig) Validate() error {
	if len(c.WebhookPath) == 0 || c.WebhookPath[0] != '/' {
		return fmt.Errorf("BILLING_WEBHOOK_PATH must start with '/', got %q", c.WebhookPath)
	}
	if c.WebhookRateLimit < 0 {
		return fmt.Errorf("BILLING_WEBHOOK_RATE_LIMIT must not be negative, got %d", c.WebhookRateLimit)
	}
	if _, err := clientip.ParsePrefixes(c.WebhookAllowedIPs); err != nil {
		return err
	}
	if _, err := clientip.ParsePrefixes(c.TrustedProxies); err != nil {
		return fmt.Errorf("BILLING_TRUSTED_PROXIES: %w", err)
	}
	return nil
}
