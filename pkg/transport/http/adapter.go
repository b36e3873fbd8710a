package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/gatehouse/pkg/api"
	"github.com/rhuss/gatehouse/pkg/auth"
	"github.com/rhuss/gatehouse/pkg/observability"
	"github.com/rhuss/gatehouse/pkg/storage"
	"github.com/rhuss/gatehouse/pkg/transport"
)

// adminOnly guards the user administration routes.
var adminOnly = auth.NewRoleSet(auth.RoleAdmin)

// Adapter serves the gatehouse API over HTTP.
type Adapter struct {
	store  transport.UserStore
	gate   *auth.Gate
	router chi.Router
	config Config
	logger *slog.Logger
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	// MetricsPath is where Prometheus metrics are served. Empty disables
	// the endpoint.
	MetricsPath string

	// Started is the process start time reported by the status route.
	Started time.Time

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MetricsPath: "/metrics",
		Started:     time.Now(),
		Now:         time.Now,
		Logger:      slog.Default(),
	}
}

// NewAdapter creates an HTTP adapter serving store behind gate. The given
// middleware wraps every route in order, outermost first.
func NewAdapter(store transport.UserStore, gate *auth.Gate, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Started.IsZero() {
		cfg.Started = cfg.Now()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	a := &Adapter{
		store:  store,
		gate:   gate,
		router: chi.NewRouter(),
		config: cfg,
		logger: cfg.Logger,
	}

	for _, mw := range middlewares {
		a.router.Use(mw)
	}
	a.router.Use(observability.MetricsMiddleware)

	a.router.NotFound(a.handleNotFound)
	a.router.MethodNotAllowed(a.handleMethodNotAllowed)

	a.router.Get("/healthz", a.handleHealthz)
	a.router.Get("/readyz", a.handleReadyz)
	if cfg.MetricsPath != "" {
		a.router.Method(http.MethodGet, cfg.MetricsPath, promhttp.Handler())
	}

	// Subrouters do not inherit the root catch-all, so every level repeats
	// it. Under /users the gate still runs first.
	a.router.Route("/api/v1", func(r chi.Router) {
		r.With(gate.Protect).Get("/auth/me", a.handleMe)

		r.Route("/users", func(r chi.Router) {
			r.Use(gate.Require(adminOnly))
			r.Get("/", a.handleListUsers)
			r.Get("/{id}", a.handleGetUser)
			r.Get("/*", a.handleStatus)
		})

		r.Get("/*", a.handleStatus)
	})

	a.router.Get("/*", a.handleStatus)

	return a
}

// Handler returns the http.Handler for this adapter.
func (a *Adapter) Handler() http.Handler {
	return a.router
}

// handleHealthz reports liveness.
func (a *Adapter) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReadyz reports whether the user store is reachable.
func (a *Adapter) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.store.HealthCheck(r.Context()); err != nil {
		a.logger.Warn("readiness check failed", "error", err)
		transport.WriteErrorResponse(w, api.NewServerError(api.MessageStoreFailure), http.StatusServiceUnavailable)
		return
	}
	transport.WriteJSON(w, http.StatusOK, api.NewDataResponse(map[string]string{"status": "ready"}))
}

// handleMe handles GET /api/v1/auth/me.
func (a *Adapter) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteAPIError(w, api.NewServerError(api.MessageServerError))
		return
	}
	a.writeUser(w, r, id.ID)
}

// handleListUsers handles GET /api/v1/users.
func (a *Adapter) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.ListUsers(r.Context())
	if err != nil {
		a.storeFailure(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, api.NewListResponse(users))
}

// handleGetUser handles GET /api/v1/users/{id}.
func (a *Adapter) handleGetUser(w http.ResponseWriter, r *http.Request) {
	a.writeUser(w, r, chi.URLParam(r, "id"))
}

func (a *Adapter) writeUser(w http.ResponseWriter, r *http.Request, id string) {
	user, err := a.store.GetUser(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		transport.WriteAPIError(w, api.NewNotFoundError(fmt.Sprintf("User not found with id of %s", id)))
		return
	}
	if err != nil {
		a.storeFailure(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, api.NewDataResponse(user))
}

func (a *Adapter) storeFailure(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("user store request failed",
		"path", r.URL.Path,
		"request_id", transport.RequestIDFromContext(r.Context()),
		"error", err,
	)
	transport.WriteAPIError(w, api.NewServerError(api.MessageStoreFailure))
}

// handleStatus answers every unmatched GET with the process uptime.
func (a *Adapter) handleStatus(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, api.NewDataResponse(statusAt(a.config.Started, a.config.Now())))
}

func (a *Adapter) handleNotFound(w http.ResponseWriter, r *http.Request) {
	transport.WriteAPIError(w, api.NewNotFoundError("Route "+r.URL.Path+" not found"))
}

func (a *Adapter) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	transport.WriteAPIError(w, api.NewMethodNotAllowedError(r.Method, r.URL.Path))
}
