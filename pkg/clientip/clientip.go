package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Single-value headers set by an edge proxy, in priority order.
var edgeHeaders = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
}

// Resolver determines the client address of a request. Forwarding headers are
// honoured only when the immediate peer (RemoteAddr) is a trusted proxy.
type Resolver struct {
	trusted []netip.Prefix
}

// NewResolver returns a Resolver that trusts forwarding headers from peers inside
// trusted. With no trusted prefixes only RemoteAddr is used.
func NewResolver(trusted []netip.Prefix) *Resolver {
	return &Resolver{trusted: trusted}
}

var direct = NewResolver(nil)

// GetIP returns the normalized peer address of r, ignoring forwarding headers.
func GetIP(r *http.Request) string {
	return direct.GetIP(r)
}

// Addr is GetIP returning a netip.Addr.
func Addr(r *http.Request) (netip.Addr, bool) {
	return direct.Addr(r)
}

// GetIP returns the normalized client address of r or an empty string.
func (res *Resolver) GetIP(r *http.Request) string {
	if addr, ok := res.Addr(r); ok {
		return addr.String()
	}
	return ""
}

// Addr returns the client address of r. IPv4-mapped IPv6 addresses are unmapped.
//
// For a trusted peer, CF-Connecting-IP and DO-Connecting-IP win, then the
// right-most untrusted hop of X-Forwarded-For, then X-Real-IP. Anything else
// resolves to the peer itself.
func (res *Resolver) Addr(r *http.Request) (netip.Addr, bool) {
	peer, ok := remoteAddr(r)
	if !ok || !res.isTrusted(peer) {
		return peer, ok
	}

	for _, h := range edgeHeaders {
		if addr, ok := parse(r.Header.Get(h)); ok {
			return addr, true
		}
	}
	if addr, ok := res.forwardedFor(r); ok {
		return addr, true
	}
	if addr, ok := parse(r.Header.Get("X-Real-IP")); ok {
		return addr, true
	}
	return peer, true
}

// forwardedFor walks X-Forwarded-For from the right and returns the first hop that
// is not a trusted proxy. An unparsable hop stops the walk at the last valid one.
func (res *Resolver) forwardedFor(r *http.Request) (netip.Addr, bool) {
	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for part := range strings.SplitSeq(v, ",") {
			hops = append(hops, part)
		}
	}

	var last netip.Addr
	found := false
	for i := len(hops) - 1; i >= 0; i-- {
		addr, ok := parse(hops[i])
		if !ok {
			break
		}
		last, found = addr, true
		if !res.isTrusted(addr) {
			return addr, true
		}
	}
	return last, found
}

func (res *Resolver) isTrusted(addr netip.Addr) bool {
	return contains(res.trusted, addr)
}

func remoteAddr(r *http.Request) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return parse(host)
}

func parse(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap().WithZone(""), true
}
