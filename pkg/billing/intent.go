package billing

// IntentKind identifies an owner notification.
type IntentKind string

const (
	IntentPaymentConfirmed      IntentKind = "payment_confirmed"
	IntentPaymentOverdue        IntentKind = "payment_overdue"
	IntentChurchSuspended       IntentKind = "church_suspended"
	IntentSubscriptionCancelled IntentKind = "subscription_cancelled"
)

// Intent asks the dispatcher to notify the tenant owner.
type Intent struct {
	Kind        IntentKind
	Plan        Plan // set for payment_confirmed
	DaysOverdue int  // set for payment_overdue and church_suspended
}

// Notification is the outbound call handed to the mail collaborator.
type Notification struct {
	Type        IntentKind `json:"type"`
	To          string     `json:"to"`
	ChurchName  string     `json:"churchName"`
	OwnerName   string     `json:"ownerName"`
	PlanName    string     `json:"planName,omitempty"`
	DaysOverdue *int       `json:"daysOverdue,omitempty"`
}

// newNotification builds the mail payload for an intent and a resolved contact.
func newNotification(in Intent, to Contact, churchName string) Notification {
	n := Notification{
		Type:       in.Kind,
		To:         to.Email,
		ChurchName: churchName,
		OwnerName:  to.Name,
	}
	switch in.Kind {
	case IntentPaymentConfirmed:
		n.PlanName = string(in.Plan)
	case IntentPaymentOverdue, IntentChurchSuspended:
		days := in.DaysOverdue
		n.DaysOverdue = &days
	}
	return n
}
