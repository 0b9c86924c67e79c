package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ContactResolver finds who should receive billing notifications for a tenant.
// A nil contact with a nil error means nobody can be reached, which is not a failure.
type ContactResolver interface {
	Resolve(ctx context.Context, t *Tenant) (*Contact, error)
}

// OwnerResolver walks the ownership representations in order and stops at the first hit:
// the tenant's own billing contact, the active owner membership, then the legacy owner column.
type OwnerResolver struct {
	tenants    Store
	members    MembershipLookup
	identities IdentityLookup
}

// NewOwnerResolver creates a resolver. Any collaborator may be nil, which skips its step.
func NewOwnerResolver(tenants Store, members MembershipLookup, identities IdentityLookup) *OwnerResolver {
	return &OwnerResolver{
		tenants:    tenants,
		members:    members,
		identities: identities,
	}
}

// ResolveByID loads the tenant and resolves its billing contact.
func (r *OwnerResolver) ResolveByID(ctx context.Context, tenantID uuid.UUID) (*Contact, error) {
	if r.tenants == nil {
		return nil, ErrTenantNotFound
	}
	t, err := r.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.Resolve(ctx, t)
}

// Resolve returns the billing contact for t.
// Lookup failures do not stop the chain; they are reported only when no contact was found.
func (r *OwnerResolver) Resolve(ctx context.Context, t *Tenant) (*Contact, error) {
	if t == nil {
		return nil, nil
	}

	if email := strings.TrimSpace(t.BillingEmail); email != "" {
		return &Contact{Email: email, Name: firstNonEmpty(t.BillingName, t.Name)}, nil
	}

	var errs []error

	if r.members != nil {
		userID, err := r.members.ActiveOwner(ctx, t.ID)
		switch {
		case err == nil:
			c, err := r.identityContact(ctx, userID, t)
			if c != nil {
				return c, nil
			}
			if err != nil {
				errs = append(errs, err)
			}
		case !errors.Is(err, ErrOwnerNotFound):
			errs = append(errs, err)
		}
	}

	if t.OwnerID != uuid.Nil {
		c, err := r.identityContact(ctx, t.OwnerID, t)
		if c != nil {
			return c, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	return nil, errors.Join(errs...)
}

func (r *OwnerResolver) identityContact(ctx context.Context, userID uuid.UUID, t *Tenant) (*Contact, error) {
	if r.identities == nil {
		return nil, nil
	}
	id, err := r.identities.Identity(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, nil
		}
		return nil, err
	}
	email := strings.TrimSpace(id.Email)
	if email == "" {
		return nil, nil
	}
	return &Contact{Email: email, Name: firstNonEmpty(id.DisplayName, t.Name)}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
