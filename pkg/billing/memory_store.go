package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RoleOwner is the membership role that marks the current owner of a tenant.
const RoleOwner = "owner"

// Membership associates a user with a tenant and a role.
type Membership struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     string
	Active   bool
}

// MemoryStore is an in-memory Store, MembershipLookup and IdentityLookup.
// Suitable for development and testing.
type MemoryStore struct {
	mu          sync.RWMutex
	tenants     map[uuid.UUID]Tenant
	memberships []Membership
	identities  map[uuid.UUID]Identity
	writes      int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:    make(map[uuid.UUID]Tenant),
		identities: make(map[uuid.UUID]Identity),
	}
}

// PutTenant inserts or replaces a tenant record.
func (s *MemoryStore) PutTenant(t Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Billing = t.Billing.clone()
	s.tenants[t.ID] = t
}

// PutMembership appends a membership row.
func (s *MemoryStore) PutMembership(m Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = append(s.memberships, m)
}

// PutIdentity inserts or replaces an identity.
func (s *MemoryStore) PutIdentity(i Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[i.UserID] = i
}

// Writes returns how many billing updates were committed.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryStore) GetTenant(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	// Return a copy to prevent external mutation of stored data
	t.Billing = t.Billing.clone()
	return &t, nil
}

func (s *MemoryStore) UpdateBilling(ctx context.Context, id uuid.UUID, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return ErrTenantNotFound
	}
	t.Billing = state.clone()
	s.tenants[id] = t
	s.writes++
	return nil
}

func (s *MemoryStore) ActiveOwner(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships {
		if m.TenantID == tenantID && m.Role == RoleOwner && m.Active {
			return m.UserID, nil
		}
	}
	return uuid.Nil, ErrOwnerNotFound
}

func (s *MemoryStore) Identity(ctx context.Context, userID uuid.UUID) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.identities[userID]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return &i, nil
}

// MemoryClaimStore is a process-local ClaimStore.
type MemoryClaimStore struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

// NewMemoryClaimStore creates an empty claim store.
func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{
		claims: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryClaimStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.claims[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.claims[key] = now.Add(ttl)
	return true, nil
}
