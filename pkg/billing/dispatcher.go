package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/churchbilling/pkg/logger"
)

// Dispatcher delivers notification intents through a Mailer.
// Delivery is best effort: failures and panics are logged and swallowed so they
// never reach the webhook response or the committed billing state.
type Dispatcher struct {
	mailer   Mailer
	contacts ContactResolver
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher.
// Panics if mailer or contacts is nil to fail fast during initialization.
func NewDispatcher(mailer Mailer, contacts ContactResolver, opts ...DispatcherOption) *Dispatcher {
	if mailer == nil {
		panic("billing: Mailer is required")
	}
	if contacts == nil {
		panic("billing: ContactResolver is required")
	}
	d := &Dispatcher{
		mailer:   mailer,
		contacts: contacts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch resolves the tenant owner once and sends every intent in order.
// It returns how many notifications were accepted by the mailer.
func (d *Dispatcher) Dispatch(ctx context.Context, t *Tenant, intents []Intent) int {
	if t == nil || len(intents) == 0 {
		return 0
	}

	contact, err := d.resolve(ctx, t)
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "Billing contact lookup failed",
			logger.TenantID(t.ID),
			logger.Error(err),
		)
	}

	sent := 0
	for _, in := range intents {
		if d.Notify(ctx, in, contact, t.Name) {
			sent++
		}
	}
	return sent
}

// Notify sends one intent to contact. A nil contact is skipped silently.
// Returns true when the mailer accepted the notification.
func (d *Dispatcher) Notify(ctx context.Context, in Intent, contact *Contact, churchName string) (ok bool) {
	if contact == nil || contact.Email == "" {
		d.logger.LogAttrs(ctx, slog.LevelDebug, "No billing contact, notification skipped",
			logger.Intent(string(in.Kind)),
		)
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
			d.logger.LogAttrs(ctx, slog.LevelError, "Billing notification panicked",
				logger.Intent(string(in.Kind)),
				logger.Error(fmt.Errorf("panic: %v", r)),
			)
		}
	}()

	if err := d.mailer.Send(ctx, newNotification(in, *contact, churchName)); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelError, "Failed to send billing notification",
			logger.Intent(string(in.Kind)),
			logger.Error(err),
		)
		return false
	}

	d.logger.LogAttrs(ctx, slog.LevelInfo, "Billing notification sent",
		logger.Intent(string(in.Kind)),
	)
	return true
}

func (d *Dispatcher) resolve(ctx context.Context, t *Tenant) (c *Contact, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("contact resolver panic: %v", r)
		}
	}()
	return d.contacts.Resolve(ctx, t)
}
