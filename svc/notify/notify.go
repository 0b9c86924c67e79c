package notify

import (
	"fmt"

	"github.com/dmitrymomot/churchbilling/pkg/billing"
	"github.com/dmitrymomot/churchbilling/pkg/email"
)

// New returns the mailer selected by cfg.Mode. sender is only used in email mode.
func New(cfg Config, sender email.EmailSender, opts ...EmailOption) (billing.Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == ModeFunction {
		m, err := NewFunctionMailer(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	if sender == nil {
		return nil, fmt.Errorf("%w: email mode needs an email sender", ErrInvalidConfig)
	}
	return NewEmailMailer(sender, opts...), nil
}
