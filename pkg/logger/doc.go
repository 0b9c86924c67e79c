// Package logger builds slog loggers for the billing service and provides
// attribute helpers that keep key names consistent across components.
//
// New creates a *slog.Logger from functional options; NewFromConfig does the
// same from the env-loaded Config (SERVICE_NAME, APP_ENV, LOG_LEVEL). Development
// gets text output at debug level, staging and production get JSON at info.
//
// Every logger is wrapped in LogHandlerDecorator, which runs registered
// ContextExtractor callbacks on each record so values like the request id are
// attached without passing them around explicitly.
//
// # Usage
//
//	log, err := logger.NewFromConfig(cfg,
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	if err != nil {
//		return err
//	}
//	log.InfoContext(ctx, "Billing state updated",
//		logger.TenantID(tenantID),
//		logger.Plan("gold"),
//		logger.Error(err),
//	)
//
// Helpers that receive a nil error, zero UUID or empty id return an empty
// slog.Attr, which slog drops, so callers need no nil checks.
package logger
