package billing

import "errors"

var (
	ErrInvalidPlan   = errors.New("invalid billing plan")
	ErrInvalidStatus = errors.New("invalid billing status")

	// ErrMalformedEvent marks a webhook without an extractable tenant reference.
	// Such events are acknowledged and dropped.
	ErrMalformedEvent = errors.New("billing event has no tenant reference")
	// ErrUnknownTenant marks a webhook whose tenant reference does not resolve.
	// Such events are acknowledged and dropped.
	ErrUnknownTenant = errors.New("billing event references an unknown tenant")
	// ErrPersistence wraps store read and write failures; the provider is expected to retry.
	ErrPersistence = errors.New("billing state persistence failed")

	ErrTenantNotFound   = errors.New("tenant not found")
	ErrOwnerNotFound    = errors.New("tenant owner membership not found")
	ErrIdentityNotFound = errors.New("identity not found")

	ErrUnauthorizedWebhook = errors.New("billing webhook access token mismatch")
)

// IsAcknowledged reports whether err describes an event that must be acked without retry.
func IsAcknowledged(err error) bool {
	return errors.Is(err, ErrMalformedEvent) || errors.Is(err, ErrUnknownTenant)
}
