// Package httpserver runs an http.Server with graceful shutdown and health probes.
//
// Run blocks until its context is cancelled, typically by signal.NotifyContext in
// main. Shutdown stops accepting connections, waits for in-flight requests and
// then runs the registered shutdown hooks under the same deadline, which is where
// background work such as pending notifications is drained.
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.New(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithShutdownHook("notifications", svc.Wait),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// LivenessHandler and ReadinessHandler provide the /health endpoints. Readiness
// runs named checks and answers 503 with the failing names when any of them fails.
package httpserver
