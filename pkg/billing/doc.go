// Package billing reconciles payment provider webhooks into church billing state.
//
// Each church (tenant) carries a plan, an optional pending plan awaiting payment,
// a status that gates site and admin availability, the start of the current overdue
// episode and the provider subscription id. The provider delivers notifications at
// least once and possibly out of order; this package turns them into authoritative
// state and fires best-effort emails to the church owner.
//
// # Architecture
//
//   - Transition: pure function (state, event, now) -> (state, intents). No I/O.
//   - Store: loads the tenant snapshot and commits every billing field in one write.
//   - OwnerResolver: finds a billing contact via the tenant's own billing email,
//     the active owner membership, or the legacy owner column, in that order.
//   - Dispatcher: sends intents through a Mailer; failures are logged and swallowed.
//   - Service: orchestrates load, transition, commit and background dispatch.
//   - WebhookHandler: HTTP boundary; 200 for anything handled safely, 500 only
//     for persistence failures so the provider re-delivers.
//
// # Transitions
//
//	PAYMENT_CONFIRMED / PAYMENT_RECEIVED   active, overdue cleared, pending plan applied
//	PAYMENT_OVERDUE (first)                overdue clock starts, reminder with 0 days
//	PAYMENT_OVERDUE (>= GracePeriod)       suspended once, then reminders
//	PAYMENT_DELETED                        logged only
//	SUBSCRIPTION_DELETED / _INACTIVATED    back to free and active, subscription cleared
//
// Every transition is idempotent, which is what makes provider retries safe and removes
// the need for per-tenant locks.
//
// # Usage
//
//	store := billing.NewMemoryStore()
//	owners := billing.NewOwnerResolver(store, store, store)
//	dispatcher := billing.NewDispatcher(mailer, owners)
//	svc := billing.NewService(store, dispatcher,
//		billing.WithNotifyTimeout(10*time.Second),
//	)
//
//	r := chi.NewRouter()
//	r.Method(http.MethodPost, "/webhooks/billing", billing.NewWebhookHandler(svc,
//		billing.WithAccessToken(os.Getenv("BILLING_WEBHOOK_TOKEN")),
//	))
//
// On shutdown call svc.Wait to drain in-flight notifications.
package billing
