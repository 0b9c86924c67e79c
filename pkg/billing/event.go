package billing

import "strings"

// EventKind is the normalized payment provider event.
type EventKind uint8

const (
	EventUnknown EventKind = iota
	EventPaymentConfirmed
	EventPaymentReceived
	EventPaymentOverdue
	EventPaymentDeleted
	EventSubscriptionDeleted
	EventSubscriptionInactivated
)

var eventNames = map[string]EventKind{
	"PAYMENT_CONFIRMED":        EventPaymentConfirmed,
	"PAYMENT_RECEIVED":         EventPaymentReceived,
	"PAYMENT_OVERDUE":          EventPaymentOverdue,
	"PAYMENT_DELETED":          EventPaymentDeleted,
	"SUBSCRIPTION_DELETED":     EventSubscriptionDeleted,
	"SUBSCRIPTION_INACTIVATED": EventSubscriptionInactivated,
}

// ParseEventKind maps a provider event name to its kind.
// Unrecognized names map to EventUnknown.
func ParseEventKind(name string) EventKind {
	if k, ok := eventNames[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return k
	}
	return EventUnknown
}

func (k EventKind) String() string {
	switch k {
	case EventPaymentConfirmed:
		return "payment_confirmed"
	case EventPaymentReceived:
		return "payment_received"
	case EventPaymentOverdue:
		return "payment_overdue"
	case EventPaymentDeleted:
		return "payment_deleted"
	case EventSubscriptionDeleted:
		return "subscription_deleted"
	case EventSubscriptionInactivated:
		return "subscription_inactivated"
	default:
		return "unknown"
	}
}

// IsKnown reports whether the reconciler handles this kind.
func (k EventKind) IsKnown() bool {
	return k != EventUnknown
}

// Event is an inbound webhook notification. It is never persisted.
type Event struct {
	ID             string    // provider event id, optional
	Kind           EventKind // normalized kind
	Name           string    // raw provider event name, for logs
	TenantRef      string    // external reference pointing at a tenant id
	SubscriptionID string    // provider subscription id, optional
}
