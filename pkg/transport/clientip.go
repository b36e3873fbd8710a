package transport

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns middleware that restores the visitor's address when the
// service runs behind Cloudflare or a reverse proxy. When trustProxy is
// set, CF-Connecting-IP wins, then the first X-Forwarded-For hop. The
// connection's remote address is the fallback. The result is available via
// ClientIPFromContext. It is client-supplied when trustProxy is set and
// only fit for logging; rate limiting keys on PeerIP.
func ClientIP(trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := resolveClientIP(r, trustProxy)
			next.ServeHTTP(w, r.WithContext(ContextWithClientIP(r.Context(), ip)))
		})
	}
}

func resolveClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if v := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); v != "" {
			return v
		}
		if v := r.Header.Get("X-Forwarded-For"); v != "" {
			first, _, _ := strings.Cut(v, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}

	return PeerIP(r)
}

// PeerIP returns the host part of the connection's remote address.
func PeerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
