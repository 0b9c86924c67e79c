package billing

import (
	"log/slog"
	"time"
)

const (
	// DefaultNotifyTimeout bounds background delivery of one event's notifications.
	DefaultNotifyTimeout = 10 * time.Second
	// DefaultClaimTTL is how long a provider event id suppresses duplicate notifications.
	DefaultClaimTTL = 72 * time.Hour
)

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used by transitions.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifyTimeout bounds background notification delivery per event.
func WithNotifyTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// WithClaimStore enables notification dedup by provider event id.
// A non-positive ttl keeps DefaultClaimTTL.
func WithClaimStore(store ClaimStore, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.claims = store
		if ttl > 0 {
			s.claimTTL = ttl
		}
	}
}
