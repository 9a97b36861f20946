package server

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// CallerKeys derives the rate-limit key for a request from the peer
// address. X-Forwarded-For is read only when the peer is a trusted proxy,
// and request headers such as Origin never pick the key. A nil CallerKeys
// trusts no proxy.
type CallerKeys struct {
	trusted []netip.Prefix
}

// NewCallerKeys parses trusted proxy entries, each a single address or a
// CIDR range.
func NewCallerKeys(trustedProxies []string) (*CallerKeys, error) {
	k := &CallerKeys{}
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
			}
			k.trusted = append(k.trusted, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		k.trusted = append(k.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return k, nil
}

// Key returns the client IP. Behind trusted proxies it walks
// X-Forwarded-For from the right and returns the first untrusted hop.
func (k *CallerKeys) Key(r *http.Request) string {
	peer := remoteIP(r)
	addr, err := netip.ParseAddr(peer)
	if err != nil || !k.isTrusted(addr.Unmap()) {
		return peer
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		a, err := netip.ParseAddr(hop)
		if err != nil {
			// A malformed hop was written by the client, not a proxy.
			return peer
		}
		if a = a.Unmap(); !k.isTrusted(a) {
			return a.String()
		}
	}
	return peer
}

func (k *CallerKeys) isTrusted(addr netip.Addr) bool {
	if k == nil {
		return false
	}
	for _, p := range k.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteIP returns the host part of the connection's remote address.
func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
