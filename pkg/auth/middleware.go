package auth

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/gatehouse/pkg/observability"
	"github.com/rhuss/gatehouse/pkg/transport"
)

// Gate is the HTTP form of the authenticator and authorizer.
type Gate struct {
	authn      *Authenticator
	cookieName string
	logger     *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithCookieName sets the cookie consulted when no bearer header is sent.
func WithCookieName(name string) GateOption {
	return func(g *Gate) {
		if name != "" {
			g.cookieName = name
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate creates a Gate around an Authenticator.
func NewGate(authn *Authenticator, opts ...GateOption) *Gate {
	g := &Gate{
		authn:      authn,
		cookieName: DefaultTokenCookie,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Protect returns middleware that authenticates the request and binds the
// resulting Identity to its context. Rejected requests never reach next.
func (g *Gate) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, present := ExtractToken(r, g.cookieName)

		id, err := g.authn.Authenticate(r.Context(), token, present)
		if err != nil {
			g.reject(w, r, err)
			return
		}

		observability.AuthDecisionsTotal.WithLabelValues("authenticated").Inc()
		g.logger.Debug("authentication succeeded",
			"subject", id.ID,
			"role", id.Role,
			"path", r.URL.Path,
		)

		next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), id)))
	})
}

// Require returns middleware that authenticates the request and then
// authorizes it against roles. It is Protect followed by RequireRoles.
func (g *Gate) Require(roles RoleSet) func(http.Handler) http.Handler {
	authz := RequireRoles(roles)
	return func(next http.Handler) http.Handler {
		return g.Protect(authz(next))
	}
}

// reject logs the internal cause and writes the client-facing error.
func (g *Gate) reject(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := ToAPIError(err)

	switch {
	case IsUnauthorized(err):
		observability.AuthDecisionsTotal.WithLabelValues("unauthorized").Inc()
		g.logger.Warn("authentication failed",
			"path", r.URL.Path,
			"client_ip", transport.ClientIPFromContext(r.Context()),
			"request_id", transport.RequestIDFromContext(r.Context()),
			"error", err,
		)
	default:
		observability.AuthDecisionsTotal.WithLabelValues("error").Inc()
		g.logger.Error("authentication could not complete",
			"path", r.URL.Path,
			"request_id", transport.RequestIDFromContext(r.Context()),
			"error", err,
		)
	}

	transport.WriteAPIError(w, apiErr)
}

// RequireRoles returns middleware that admits only requests whose bound
// Identity has a role in roles. It must be chained after Protect; a request
// without an Identity is a wiring error and is refused with a server error.
func RequireRoles(roles RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				slog.Error("authorization reached without authentication",
					"path", r.URL.Path,
					"required_roles", roles.String(),
				)
				observability.AuthDecisionsTotal.WithLabelValues("error").Inc()
				transport.WriteAPIError(w, ToAPIError(nil))
				return
			}

			if err := Authorize(id, roles); err != nil {
				observability.AuthDecisionsTotal.WithLabelValues("forbidden").Inc()
				slog.Warn("authorization denied",
					"subject", id.ID,
					"role", id.Role,
					"required_roles", roles.String(),
					"path", r.URL.Path,
				)
				transport.WriteAPIError(w, ToAPIError(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
