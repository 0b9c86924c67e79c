package billing

import "time"

// GracePeriod is how long an overdue tenant keeps access before suspension.
const GracePeriod = 7 * 24 * time.Hour

const day = 24 * time.Hour

// Decision is the outcome of applying an event to a billing state.
type Decision struct {
	State   State
	Changed bool // false when State equals the input and nothing needs to be written
	Intents []Intent
}

// Transition applies ev to current and returns the resulting state together with
// the owner notifications it implies. It performs no I/O; now is the only clock.
//
// Every transition is idempotent: applying the same event to the resulting state
// yields that state again.
func Transition(current State, ev Event, now time.Time) Decision {
	next := current.clone()
	var intents []Intent

	switch ev.Kind {
	case EventPaymentConfirmed, EventPaymentReceived:
		next.PaymentOverdueSince = nil
		next.Status = StatusActive
		if next.HasPendingPlan() {
			next.Plan = next.PendingPlan
			next.PendingPlan = ""
		}
		if ev.SubscriptionID != "" {
			next.ExternalSubscriptionID = ev.SubscriptionID
		}
		intents = append(intents, Intent{Kind: IntentPaymentConfirmed, Plan: next.Plan})

	case EventPaymentOverdue:
		if next.Plan == PlanFree && !next.HasPendingPlan() {
			// Late dunning for a cancelled subscription. The free tier is never suspended.
			break
		}
		if next.PaymentOverdueSince == nil {
			since := now.UTC()
			next.PaymentOverdueSince = &since
			intents = append(intents, Intent{Kind: IntentPaymentOverdue, DaysOverdue: 0})
			break
		}
		days := DaysOverdue(*next.PaymentOverdueSince, now)
		if days >= int(GracePeriod/day) && next.Status != StatusSuspended {
			next.Status = StatusSuspended
			intents = append(intents, Intent{Kind: IntentChurchSuspended, DaysOverdue: days})
			break
		}
		intents = append(intents, Intent{Kind: IntentPaymentOverdue, DaysOverdue: days})

	case EventSubscriptionDeleted, EventSubscriptionInactivated:
		next = State{
			Plan:   PlanFree,
			Status: StatusActive,
		}
		intents = append(intents, Intent{Kind: IntentSubscriptionCancelled})

	case EventPaymentDeleted:
		// A deleted payment does not settle the obligation on its own.

	default:
	}

	return Decision{
		State:   next,
		Changed: !next.Equal(current),
		Intents: intents,
	}
}

// DaysOverdue returns the number of whole days elapsed since the overdue episode began.
// Clock skew that puts since in the future yields 0.
func DaysOverdue(since, now time.Time) int {
	elapsed := now.Sub(since)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / day)
}
