// Package ratelimiter implements a token bucket limiter and HTTP middleware.
//
// The billing webhook uses it keyed by client ip so that a flood of forged
// requests cannot tie up the database. A denied request does not drain the
// bucket further, and a failing Store never blocks traffic.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//	bucket, err := ratelimiter.NewBucket(store, ratelimiter.PerMinute(120))
//	if err != nil {
//		return err
//	}
//	r.With(ratelimiter.Middleware(bucket, clientip.GetIP)).Post("/webhooks/billing", h)
package ratelimiter
