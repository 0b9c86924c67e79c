package notify

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/churchbilling/pkg/billing"
	"github.com/dmitrymomot/churchbilling/pkg/webhook"
)

// FunctionMailer hands notifications to an HTTP mail function that renders and
// sends them. The body is the billing.Notification JSON.
type FunctionMailer struct {
	sender *webhook.Sender
}

// NewFunctionMailer creates a FunctionMailer for cfg.FunctionURL.
// Extra options are applied after the ones derived from cfg.
func NewFunctionMailer(cfg Config, opts ...webhook.Option) (*FunctionMailer, error) {
	breaker := webhook.NewCircuitBreaker(
		webhook.WithFailureThreshold(cfg.FailureThreshold),
		webhook.WithRecoveryTimeout(cfg.RecoveryTimeout),
	)
	base := []webhook.Option{
		webhook.WithTimeout(cfg.Timeout),
		webhook.WithSecret(cfg.SigningSecret),
		webhook.WithCircuitBreaker(breaker),
	}
	if cfg.FunctionKey != "" {
		base = append(base, webhook.WithHeader("Authorization", "Bearer "+cfg.FunctionKey))
	}

	sender, err := webhook.NewSender(cfg.FunctionURL, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &FunctionMailer{sender: sender}, nil
}

// Send implements billing.Mailer.
func (m *FunctionMailer) Send(ctx context.Context, n billing.Notification) error {
	if err := m.sender.Send(ctx, n); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}
