package auth

import (
	"net/http"
	"strings"
)

// DefaultTokenCookie is the cookie consulted when no bearer header is sent.
const DefaultTokenCookie = "token"

// ExtractToken pulls a candidate token out of the request. A header that
// starts with "Bearer" wins and the token is everything after its first
// space. Otherwise the named cookie is used. The boolean is false when
// neither yields a non-empty value.
func ExtractToken(r *http.Request, cookieName string) (string, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer") {
		_, token, _ := strings.Cut(header, " ")
		return token, token != ""
	}

	if cookieName == "" {
		cookieName = DefaultTokenCookie
	}
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	return "", false
}
