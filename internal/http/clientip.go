package http

import (
	"net/http"
	"net/netip"
	"strings"
)

// Peers in these ranges may set X-Forwarded-For and X-Real-IP.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
}

func peerAddr(remote string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr().Unmap(), true
	}
	a, err := netip.ParseAddr(remote)
	return a.Unmap(), err == nil
}

func trusted(a netip.Addr) bool {
	for _, p := range trustedProxies {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// forwardedFor returns the first valid address from the proxy headers.
func forwardedFor(h http.Header) (string, bool) {
	first, _, _ := strings.Cut(h.Get("X-Forwarded-For"), ",")
	for _, v := range []string{first, h.Get("X-Real-IP")} {
		v = strings.TrimSpace(v)
		if _, err := netip.ParseAddr(v); err == nil {
			return v, true
		}
	}
	return "", false
}

// extractClientIP keys rate limiting and request logs. Proxy headers count
// only when the direct peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	peer, ok := peerAddr(r.RemoteAddr)
	if !ok {
		return r.RemoteAddr
	}
	if trusted(peer) {
		if fwd, ok := forwardedFor(r.Header); ok {
			return fwd
		}
	}
	return peer.String()
}
