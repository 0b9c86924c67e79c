package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Plan is a billing tier controlling feature access.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanSilver  Plan = "silver"
	PlanGold    Plan = "gold"
	PlanDiamond Plan = "diamond"
)

// IsValid reports whether p is one of the known plans.
func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanSilver, PlanGold, PlanDiamond:
		return true
	}
	return false
}

// IsPaid reports whether the plan is billed by the payment provider.
func (p Plan) IsPaid() bool {
	return p.IsValid() && p != PlanFree
}

// ParsePlan normalizes a stored or user supplied plan name.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", ErrInvalidPlan
	}
	return p, nil
}

// Status governs tenant site and admin availability.
type Status string

const (
	StatusActive         Status = "active"
	StatusSuspended      Status = "suspended"
	StatusPendingPayment Status = "pending_payment"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusPendingPayment:
		return true
	}
	return false
}

// ParseStatus normalizes a stored status value.
// The camel-case spelling used by older rows is accepted as well.
func ParseStatus(s string) (Status, error) {
	v := strings.TrimSpace(s)
	if v == "pendingPayment" {
		return StatusPendingPayment, nil
	}
	st := Status(strings.ToLower(v))
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// State is the subset of the tenant record owned by the billing reconciler.
// Empty PendingPlan and ExternalSubscriptionID mean "not set".
type State struct {
	Plan                   Plan       `json:"plan"`
	PendingPlan            Plan       `json:"pending_plan,omitempty"`
	Status                 Status     `json:"status"`
	PaymentOverdueSince    *time.Time `json:"payment_overdue_since,omitempty"`
	ExternalSubscriptionID string     `json:"external_subscription_id,omitempty"`
}

// HasPendingPlan reports whether a plan change awaits payment confirmation.
func (s State) HasPendingPlan() bool {
	return s.PendingPlan != ""
}

// IsOverdue reports whether an overdue episode is being tracked.
func (s State) IsOverdue() bool {
	return s.PaymentOverdueSince != nil
}

// Equal compares two states field by field, including the overdue timestamp value.
func (s State) Equal(o State) bool {
	if s.Plan != o.Plan ||
		s.PendingPlan != o.PendingPlan ||
		s.Status != o.Status ||
		s.ExternalSubscriptionID != o.ExternalSubscriptionID {
		return false
	}
	switch {
	case s.PaymentOverdueSince == nil && o.PaymentOverdueSince == nil:
		return true
	case s.PaymentOverdueSince == nil || o.PaymentOverdueSince == nil:
		return false
	default:
		return s.PaymentOverdueSince.Equal(*o.PaymentOverdueSince)
	}
}

// clone returns a copy that does not share the overdue timestamp pointer.
func (s State) clone() State {
	if s.PaymentOverdueSince != nil {
		t := *s.PaymentOverdueSince
		s.PaymentOverdueSince = &t
	}
	return s
}

// Tenant is the part of a church record the reconciler reads.
type Tenant struct {
	ID           uuid.UUID
	Name         string
	BillingEmail string
	BillingName  string
	OwnerID      uuid.UUID // uuid.Nil when the legacy owner column is empty
	Billing      State
}

// Contact is a best-effort billing contact.
type Contact struct {
	Email string
	Name  string
}

// Identity is an account as seen by the identity collaborator.
type Identity struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
}
