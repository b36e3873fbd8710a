package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote address",
			trustProxy: true,
			remoteAddr: "192.0.2.10:5555",
			want:       "192.0.2.10",
		},
		{
			name:       "cloudflare header wins",
			trustProxy: true,
			remoteAddr: "10.0.0.1:443",
			headers: map[string]string{
				"CF-Connecting-IP": "203.0.113.7",
				"X-Forwarded-For":  "198.51.100.1",
			},
			want: "203.0.113.7",
		},
		{
			name:       "first forwarded hop",
			trustProxy: true,
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Forwarded-For": " 198.51.100.1 , 10.0.0.2"},
			want:       "198.51.100.1",
		},
		{
			name:       "proxy headers ignored when untrusted",
			trustProxy: false,
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"CF-Connecting-IP": "203.0.113.7"},
			want:       "10.0.0.1",
		},
		{
			name:       "remote address without port",
			trustProxy: true,
			remoteAddr: "unix-socket",
			want:       "unix-socket",
		},
		{
			name:       "ipv6 remote address",
			trustProxy: true,
			remoteAddr: "[2001:db8::1]:8080",
			want:       "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := ClientIP(tt.trustProxy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIPFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("client IP = %q, want %q", got, tt.want)
			}
		})
	}
}
