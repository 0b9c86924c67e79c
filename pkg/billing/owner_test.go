package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/churchbilling/pkg/billing"
)

type mockIdentities struct {
	mock.Mock
}

func (m *mockIdentities) Identity(ctx context.Context, userID uuid.UUID) (*billing.Identity, error) {
	args := m.Called(ctx, userID)
	if id := args.Get(0); id != nil {
		return id.(*billing.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMembers struct {
	mock.Mock
}

func (m *mockMembers) ActiveOwner(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestOwnerResolver_Resolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("billing email wins", func(t *testing.T) {
		t.Parallel()
		store := billing.NewMemoryStore()
		r := billing.NewOwnerResolver(store, store, store)

		c, err := r.Resolve(ctx, &billing.Tenant{ID: uuid.New(), Name: "Grace Chapel", BillingEmail: " treasurer@grace.org "})
		require.NoError(t, err)
		assert.Equal(t, &billing.Contact{Email: "treasurer@grace.org", Name: "Grace Chapel"}, c)

		c, err = r.Resolve(ctx, &billing.Tenant{ID: uuid.New(), Name: "Grace Chapel", BillingEmail: "t@grace.org", BillingName: "Ana"})
		require.NoError(t, err)
		assert.Equal(t, "Ana", c.Name)
	})

	t.Run("active owner membership", func(t *testing.T) {
		t.Parallel()
		store := billing.NewMemoryStore()
		tenantID, ownerID, formerID := uuid.New(), uuid.New(), uuid.New()
		store.PutMembership(billing.Membership{TenantID: tenantID, UserID: formerID, Role: billing.RoleOwner, Active: false})
		store.PutMembership(billing.Membership{TenantID: tenantID, UserID: ownerID, Role: billing.RoleOwner, Active: true})
		store.PutIdentity(billing.Identity{UserID: ownerID, Email: "pastor@hope.org", DisplayName: "Pastor João"})
		store.PutIdentity(billing.Identity{UserID: formerID, Email: "old@hope.org"})

		r := billing.NewOwnerResolver(store, store, store)
		c, err := r.Resolve(ctx, &billing.Tenant{ID: tenantID, Name: "Hope", OwnerID: formerID})
		require.NoError(t, err)
		assert.Equal(t, &billing.Contact{Email: "pastor@hope.org", Name: "Pastor João"}, c)
	})

	t.Run("legacy owner column", func(t *testing.T) {
		t.Parallel()
		store := billing.NewMemoryStore()
		ownerID := uuid.New()
		store.PutIdentity(billing.Identity{UserID: ownerID, Email: "legacy@faith.org"})

		r := billing.NewOwnerResolver(store, store, store)
		c, err := r.Resolve(ctx, &billing.Tenant{ID: uuid.New(), Name: "Faith", OwnerID: ownerID})
		require.NoError(t, err)
		assert.Equal(t, &billing.Contact{Email: "legacy@faith.org", Name: "Faith"}, c)
	})

	t.Run("membership without email falls back to legacy owner", func(t *testing.T) {
		t.Parallel()
		store := billing.NewMemoryStore()
		tenantID, memberID, legacyID := uuid.New(), uuid.New(), uuid.New()
		store.PutMembership(billing.Membership{TenantID: tenantID, UserID: memberID, Role: billing.RoleOwner, Active: true})
		store.PutIdentity(billing.Identity{UserID: memberID, Email: ""})
		store.PutIdentity(billing.Identity{UserID: legacyID, Email: "legacy@faith.org", DisplayName: "Maria"})

		r := billing.NewOwnerResolver(store, store, store)
		c, err := r.Resolve(ctx, &billing.Tenant{ID: tenantID, OwnerID: legacyID})
		require.NoError(t, err)
		assert.Equal(t, "legacy@faith.org", c.Email)
	})

	t.Run("nobody reachable is not an error", func(t *testing.T) {
		t.Parallel()
		store := billing.NewMemoryStore()
		r := billing.NewOwnerResolver(store, store, store)

		c, err := r.Resolve(ctx, &billing.Tenant{ID: uuid.New(), Name: "Empty"})
		assert.NoError(t, err)
		assert.Nil(t, c)

		c, err = r.Resolve(ctx, &billing.Tenant{ID: uuid.New(), OwnerID: uuid.New()})
		assert.NoError(t, err)
		assert.Nil(t, c)

		c, err = r.Resolve(ctx, nil)
		assert.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("lookup error does not stop the chain", func(t *testing.T) {
		t.Parallel()
		tenantID, legacyID := uuid.New(), uuid.New()
		members := &mockMembers{}
		members.On("ActiveOwner", mock.Anything, tenantID).Return(uuid.Nil, errors.New("db down"))
		identities := &mockIdentities{}
		identities.On("Identity", mock.Anything, legacyID).Return(&billing.Identity{UserID: legacyID, Email: "a@b.org"}, nil)

		r := billing.NewOwnerResolver(nil, members, identities)
		c, err := r.Resolve(ctx, &billing.Tenant{ID: tenantID, OwnerID: legacyID})
		require.NoError(t, err)
		assert.Equal(t, "a@b.org", c.Email)
		members.AssertExpectations(t)
		identities.AssertExpectations(t)
	})

	t.Run("lookup errors reported when nothing found", func(t *testing.T) {
		t.Parallel()
		tenantID, legacyID := uuid.New(), uuid.New()
		dbErr := errors.New("db down")
		members := &mockMembers{}
		members.On("ActiveOwner", mock.Anything, tenantID).Return(uuid.Nil, dbErr)
		identities := &mockIdentities{}
		identities.On("Identity", mock.Anything, legacyID).Return(nil, billing.ErrIdentityNotFound)

		r := billing.NewOwnerResolver(nil, members, identities)
		c, err := r.Resolve(ctx, &billing.Tenant{ID: tenantID, OwnerID: legacyID})
		assert.ErrorIs(t, err, dbErr)
		assert.Nil(t, c)
	})
}

func TestOwnerResolver_ResolveByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := billing.NewMemoryStore()
	tenantID := uuid.New()
	store.PutTenant(billing.Tenant{ID: tenantID, Name: "Grace", BillingEmail: "g@grace.org"})
	r := billing.NewOwnerResolver(store, store, store)

	c, err := r.ResolveByID(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "g@grace.org", c.Email)

	c, err = r.ResolveByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, c)
}
