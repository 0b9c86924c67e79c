// Package webhook posts signed JSON payloads to an HTTP receiver.
//
// A Sender targets one URL and makes exactly one attempt per Send. Payloads can be
// signed with HMAC-SHA256 over "timestamp.payload"; the receiver checks them with
// Verify. A shared CircuitBreaker stops calling a receiver that keeps failing and
// probes it again after a recovery timeout.
//
// # Usage
//
//	cb := webhook.NewCircuitBreaker(webhook.WithFailureThreshold(5))
//	sender, err := webhook.NewSender(cfg.FunctionURL,
//		webhook.WithSecret(cfg.SigningSecret),
//		webhook.WithTimeout(5*time.Second),
//		webhook.WithCircuitBreaker(cb),
//	)
//	if err != nil {
//		return err
//	}
//	if err := sender.Send(ctx, payload); webhook.IsCircuitOpen(err) {
//		// receiver is known to be down
//	}
//
// # Errors
//
// ErrInvalidURL and ErrInvalidPayload report caller mistakes. ErrRejected wraps 4xx
// responses, ErrDeliveryFailed wraps network errors and 5xx responses, ErrTimeout
// wraps requests that hit the deadline and ErrCircuitOpen means nothing was sent.
package webhook
