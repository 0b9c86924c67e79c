// Package billingstore is the Postgres persistence adapter for church billing.
//
// Store implements billing.Store, billing.MembershipLookup and billing.IdentityLookup
// over the churches, church_members, users and profiles tables. ClaimStore
// implements billing.ClaimStore over billing_event_claims.
package billingstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dmitrymomot/churchbilling/pkg/billing"
	"github.com/dmitrymomot/churchbilling/pkg/pg"
)

// DB is the subset of *pgxpool.Pool and pgx.Tx the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads church snapshots and commits billing state.
type Store struct {
	db DB
}

// New creates a Store. Panics if db is nil.
func New(db DB) *Store {
	if db == nil {
		panic("billingstore: DB is required")
	}
	return &Store{db: db}
}

const selectChurch = `
	SELECT name, COALESCE(billing_email, ''), COALESCE(billing_name, ''), owner_id,
	       plan, COALESCE(pending_plan, ''), status, payment_overdue_since,
	       COALESCE(external_subscription_id, '')
	FROM churches
	WHERE id = $1`

func (s *Store) GetTenant(ctx context.Context, id uuid.UUID) (*billing.Tenant, error) {
	var (
		t                     billing.Tenant
		owner                 pgtype.UUID
		plan, pending, status string
		overdue               *time.Time
	)
	err := s.db.QueryRow(ctx, selectChurch, id).Scan(
		&t.Name, &t.BillingEmail, &t.BillingName, &owner,
		&plan, &pending, &status, &overdue,
		&t.Billing.ExternalSubscriptionID,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, billing.ErrTenantNotFound
		}
		return nil, fmt.Errorf("get church: %w", err)
	}

	t.ID = id
	if owner.Valid {
		t.OwnerID = uuid.UUID(owner.Bytes)
	}
	if t.Billing.Plan, err = billing.ParsePlan(plan); err != nil {
		return nil, fmt.Errorf("church %s plan %q: %w", id, plan, err)
	}
	if pending != "" {
		if t.Billing.PendingPlan, err = billing.ParsePlan(pending); err != nil {
			return nil, fmt.Errorf("church %s pending plan %q: %w", id, pending, err)
		}
	}
	if t.Billing.Status, err = billing.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("church %s status %q: %w", id, status, err)
	}
	if overdue != nil {
		utc := overdue.UTC()
		t.Billing.PaymentOverdueSince = &utc
	}
	return &t, nil
}

// UpdateBilling writes every billing column in one statement so readers never
// observe a partially applied transition. Empty strings are stored as NULL.
func (s *Store) UpdateBilling(ctx context.Context, id uuid.UUID, st billing.State) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE churches
		SET plan = $2,
		    pending_plan = NULLIF($3, ''),
		    status = $4,
		    payment_overdue_since = $5,
		    external_subscription_id = NULLIF($6, ''),
		    updated_at = NOW()
		WHERE id = $1`,
		id, string(st.Plan), string(st.PendingPlan), string(st.Status),
		st.PaymentOverdueSince, st.ExternalSubscriptionID,
	)
	if err != nil {
		return fmt.Errorf("update church billing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrTenantNotFound
	}
	return nil
}

func (s *Store) ActiveOwner(ctx context.Context, tenantID uuid.UUID) (uuid.UUID, error) {
	var userID pgtype.UUID
	err := s.db.QueryRow(ctx, `
		SELECT user_id
		FROM church_members
		WHERE church_id = $1 AND role = $2 AND status = 'active'
		ORDER BY created_at
		LIMIT 1`,
		tenantID, billing.RoleOwner,
	).Scan(&userID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return uuid.Nil, billing.ErrOwnerNotFound
		}
		return uuid.Nil, fmt.Errorf("get church owner: %w", err)
	}
	return uuid.UUID(userID.Bytes), nil
}

func (s *Store) Identity(ctx context.Context, userID uuid.UUID) (*billing.Identity, error) {
	id := billing.Identity{UserID: userID}
	err := s.db.QueryRow(ctx, `
		SELECT u.email, COALESCE(p.display_name, '')
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1`,
		userID,
	).Scan(&id.Email, &id.DisplayName)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, billing.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return &id, nil
}

// ClaimStore records handled provider event ids in billing_event_claims.
type ClaimStore struct {
	db DB
}

// NewClaimStore creates a ClaimStore. Panics if db is nil.
func NewClaimStore(db DB) *ClaimStore {
	if db == nil {
		panic("billingstore: DB is required")
	}
	return &ClaimStore{db: db}
}

// Claim inserts key, or takes over an expired claim. It returns false while
// another claim on key is still live.
func (s *ClaimStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, errors.New("billingstore: claim key is required")
	}
	tag, err := s.db.Exec(ctx, `
		INSERT INTO billing_event_claims (key, claimed_at, expires_at)
		VALUES ($1, NOW(), NOW() + make_interval(secs => $2))
		ON CONFLICT (key) DO UPDATE
		SET claimed_at = EXCLUDED.claimed_at, expires_at = EXCLUDED.expires_at
		WHERE billing_event_claims.expires_at <= NOW()`,
		key, ttl.Seconds(),
	)
	if err != nil {
		return false, fmt.Errorf("claim billing event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Purge deletes expired claims and returns how many were removed.
func (s *ClaimStore) Purge(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM billing_event_claims WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge billing event claims: %w", err)
	}
	return tag.RowsAffected(), nil
}
