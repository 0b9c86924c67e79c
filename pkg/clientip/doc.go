// Package clientip determines the client address of an HTTP request behind
// Cloudflare, DigitalOcean or a generic reverse proxy.
//
// Middleware stores the address in the request context and LoggerExtractor
// exposes it to the logger as client_ip. Allowlist restricts an endpoint to a
// set of CIDRs, which is how the billing webhook can be limited to the payment
// provider's published ranges.
//
// The package-level functions use RemoteAddr only. A Resolver built with
// NewResolver honours CF-Connecting-IP, DO-Connecting-IP, X-Forwarded-For and
// X-Real-IP only when the peer is one of the configured trusted proxies, and
// takes the right-most untrusted X-Forwarded-For hop.
package clientip
