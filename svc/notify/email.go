package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/churchbilling/pkg/billing"
	"github.com/dmitrymomot/churchbilling/pkg/email"
	"github.com/dmitrymomot/churchbilling/pkg/email/templates"
)

// EmailMailer renders billing notifications and sends them as transactional email.
type EmailMailer struct {
	sender       email.EmailSender
	catalog      *Catalog
	supportEmail string
	template     func(EmailParams) templ.Component
}

// EmailOption configures an EmailMailer.
type EmailOption func(*EmailMailer)

// WithCatalog replaces the embedded plan catalog.
func WithCatalog(c *Catalog) EmailOption {
	return func(m *EmailMailer) {
		if c != nil {
			m.catalog = c
		}
	}
}

// WithSupportEmail adds a support address to the footer.
func WithSupportEmail(addr string) EmailOption {
	return func(m *EmailMailer) {
		m.supportEmail = addr
	}
}

// WithTemplate replaces DefaultTemplate as the HTML layout.
func WithTemplate(fn func(EmailParams) templ.Component) EmailOption {
	return func(m *EmailMailer) {
		if fn != nil {
			m.template = fn
		}
	}
}

// NewEmailMailer creates an EmailMailer.
// Panics if sender is nil to fail fast during initialization.
func NewEmailMailer(sender email.EmailSender, opts ...EmailOption) *EmailMailer {
	if sender == nil {
		panic("notify: EmailSender is required")
	}
	m := &EmailMailer{
		sender:   sender,
		catalog:  DefaultCatalog(),
		template: DefaultTemplate,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send implements billing.Mailer.
func (m *EmailMailer) Send(ctx context.Context, n billing.Notification) error {
	msg, err := buildMessage(n, m.catalog, m.supportEmail)
	if err != nil {
		return err
	}

	html, err := templates.Render(ctx, m.template(msg))
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	if err := m.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   n.To,
		Subject:  msg.Subject,
		BodyHTML: html,
		BodyText: msg.Text(),
		Tag:      string(n.Type),
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}
