package clientip

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// Middleware stores the peer address in the request context.
func Middleware(next http.Handler) http.Handler {
	return direct.Middleware(next)
}

// Middleware stores the resolved client ip in the request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), res.GetIP(r))))
	})
}

// ParsePrefixes parses a list of CIDRs or single addresses.
func ParsePrefixes(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !strings.Contains(v, "/") {
			addr, err := netip.ParseAddr(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, v)
			}
			out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, v)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// Allowlist rejects requests whose peer address is outside prefixes with 403.
// An empty list allows everything.
func Allowlist(prefixes []netip.Prefix) func(http.Handler) http.Handler {
	return direct.Allowlist(prefixes)
}

// Allowlist is the package Allowlist matching the address resolved by res.
func (res *Resolver) Allowlist(prefixes []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(prefixes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := res.Addr(r)
			if ok && contains(prefixes, addr) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func contains(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
