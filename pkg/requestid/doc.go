// Package requestid attaches a correlation id to every HTTP request.
//
// Middleware accepts a client supplied X-Request-ID when it is at most 128
// characters of [a-zA-Z0-9_-]; anything else is replaced with a fresh UUIDv7.
// The id is echoed in the response header and stored in the request context.
// Register LoggerExtractor with logger.WithContextExtractors so that every log
// record written with the request context carries request_id.
package requestid
