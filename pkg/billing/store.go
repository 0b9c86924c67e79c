package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the tenant billing read/write collaborator.
type Store interface {
	// GetTenant loads the tenant snapshot.
	// Returns ErrTenantNotFound if no tenant has this id.
	GetTenant(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// UpdateBilling writes every billing field of state in a single atomic operation.
	// Returns ErrTenantNotFound if the tenant disappeared meanwhile.
	UpdateBilling(ctx context.Context, id uuid.UUID, state State) error
}

// MembershipLookup finds the canonical current owner of a tenant.
type MembershipLookup interface {
	// ActiveOwner returns the user id of the active membership with role owner.
	// Returns ErrOwnerNotFound when there is none.
	ActiveOwner(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error)
}

// IdentityLookup resolves account email and profile display name for a user.
type IdentityLookup interface {
	// Identity returns ErrIdentityNotFound when the user does not exist.
	Identity(ctx context.Context, userID uuid.UUID) (*Identity, error)
}

// ClaimStore records that a key has been handled, for notification dedup.
type ClaimStore interface {
	// Claim returns true if the key was not claimed before and is now owned by the caller.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Mailer delivers owner notifications. Implementations live outside this package.
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, n Notification) error

func (f MailerFunc) Send(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
