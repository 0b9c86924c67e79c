package billing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/churchbilling/pkg/async"
	"github.com/dmitrymomot/churchbilling/pkg/logger"
)

// Outcome summarizes what Handle did with an event.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"   // state changed and was committed
	OutcomeUnchanged Outcome = "unchanged" // event re-derived the stored state
	OutcomeIgnored   Outcome = "ignored"   // unrecognized event kind
)

// Result describes a handled event.
type Result struct {
	Outcome  Outcome
	TenantID uuid.UUID
	State    State
	Intents  []Intent

	notified *async.Future[int]
}

// AwaitNotifications blocks until background delivery for this event finishes
// and returns how many notifications were sent. It never affects the billing state.
func (r *Result) AwaitNotifications() int {
	if r == nil || r.notified == nil {
		return 0
	}
	n, _ := r.notified.Await()
	return n
}

// Service reconciles webhook events into tenant billing state.
type Service struct {
	store         Store
	dispatcher    *Dispatcher
	claims        ClaimStore
	claimTTL      time.Duration
	notifyTimeout time.Duration
	now           func() time.Time
	logger        *slog.Logger

	inflight sync.WaitGroup
}

// NewService creates a Service.
// Panics if store or dispatcher is nil to fail fast during initialization.
func NewService(store Store, dispatcher *Dispatcher, opts ...ServiceOption) *Service {
	if store == nil {
		panic("billing: Store is required")
	}
	if dispatcher == nil {
		panic("billing: Dispatcher is required")
	}
	s := &Service{
		store:         store,
		dispatcher:    dispatcher,
		claimTTL:      DefaultClaimTTL,
		notifyTimeout: DefaultNotifyTimeout,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle applies ev to the referenced tenant.
//
// ErrMalformedEvent and ErrUnknownTenant mean the event was dropped and must be acknowledged.
// Errors wrapping ErrPersistence mean nothing or everything was committed and the provider
// should re-deliver. Notifications run in the background after the commit and never
// influence the returned error.
func (s *Service) Handle(ctx context.Context, ev Event) (*Result, error) {
	log := s.logger.With(logger.EventType(ev.Name), logger.EventID(ev.ID))

	ref := strings.TrimSpace(ev.TenantRef)
	if ref == "" {
		log.WarnContext(ctx, "Billing event without tenant reference dropped")
		return nil, ErrMalformedEvent
	}

	tenantID, err := uuid.Parse(ref)
	if err != nil {
		log.WarnContext(ctx, "Billing event references a malformed tenant id", slog.String("tenant_ref", ref))
		return nil, ErrUnknownTenant
	}
	log = log.With(logger.TenantID(tenantID))

	if !ev.Kind.IsKnown() {
		log.InfoContext(ctx, "Unrecognized billing event ignored")
		return &Result{Outcome: OutcomeIgnored, TenantID: tenantID}, nil
	}

	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			log.WarnContext(ctx, "Billing event references an unknown tenant")
			return nil, ErrUnknownTenant
		}
		log.ErrorContext(ctx, "Failed to load billing snapshot", logger.Error(err))
		return nil, errors.Join(ErrPersistence, err)
	}

	decision := Transition(tenant.Billing, ev, s.now())

	switch {
	case ev.Kind == EventPaymentDeleted:
		log.InfoContext(ctx, "Payment deleted, billing state left untouched")
	case ev.Kind == EventPaymentOverdue && len(decision.Intents) == 0:
		log.InfoContext(ctx, "Payment overdue for free tier ignored")
	}

	res := &Result{
		Outcome:  OutcomeUnchanged,
		TenantID: tenantID,
		State:    decision.State,
		Intents:  decision.Intents,
	}

	if decision.Changed {
		if err := s.store.UpdateBilling(ctx, tenantID, decision.State); err != nil {
			if errors.Is(err, ErrTenantNotFound) {
				log.WarnContext(ctx, "Tenant removed before billing update")
				return nil, ErrUnknownTenant
			}
			log.ErrorContext(ctx, "Failed to commit billing state", logger.Error(err))
			return nil, errors.Join(ErrPersistence, err)
		}
		res.Outcome = OutcomeApplied
		log.InfoContext(ctx, "Billing state updated",
			logger.Plan(string(decision.State.Plan)),
			logger.Status(string(decision.State.Status)),
		)
	}

	if len(decision.Intents) > 0 && s.shouldNotify(ctx, ev, log) {
		tenant.Billing = decision.State
		res.notified = s.notify(ctx, tenant, decision.Intents)
	}

	return res, nil
}

// Wait blocks until every background notification finished or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shouldNotify claims the provider event id so a re-delivered event does not email twice.
// Claim errors fail open.
func (s *Service) shouldNotify(ctx context.Context, ev Event, log *slog.Logger) bool {
	if s.claims == nil || ev.ID == "" {
		return true
	}
	ok, err := s.claims.Claim(ctx, "billing:event:"+ev.ID+":notify", s.claimTTL)
	if err != nil {
		log.WarnContext(ctx, "Notification dedup unavailable", logger.Error(err))
		return true
	}
	if !ok {
		log.InfoContext(ctx, "Duplicate billing event, notifications skipped")
	}
	return ok
}

// notify runs the dispatcher detached from the request so the acknowledgement is not delayed.
func (s *Service) notify(ctx context.Context, tenant *Tenant, intents []Intent) *async.Future[int] {
	s.inflight.Add(1)
	bg := context.WithoutCancel(ctx)
	return async.Async(bg, intents, func(ctx context.Context, intents []Intent) (int, error) {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()
		return s.dispatcher.Dispatch(ctx, tenant, intents), nil
	})
}
