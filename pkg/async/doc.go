// Package async runs a function in its own goroutine and hands back a typed Future.
//
// Async starts the computation immediately; callers wait with Await, bound the wait
// with AwaitWithTimeout, select on Done, or poll IsComplete. WaitAll collects a
// batch of futures in order.
//
// A context canceled before the goroutine starts completes the Future with the
// context error without calling the function. Panics inside the function are
// recovered and surface as errors wrapping ErrPanic, so a faulty background task
// cannot take the process down.
//
// # Usage
//
//	f := async.Async(context.WithoutCancel(ctx), intents, func(ctx context.Context, in []billing.Intent) (int, error) {
//		return dispatcher.Dispatch(ctx, tenant, in), nil
//	})
//	sent, err := f.AwaitWithTimeout(5 * time.Second)
package async
