// Command server runs the gatehouse API.
//
// Configuration is read from a YAML file (see -config) and GATEHOUSE_*
// environment variables. JWT_SECRET, PORT and ENVIRONMENT are honored as
// well.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/cors"

	"github.com/rhuss/gatehouse/pkg/api"
	"github.com/rhuss/gatehouse/pkg/auth"
	"github.com/rhuss/gatehouse/pkg/auth/jwt"
	"github.com/rhuss/gatehouse/pkg/config"
	"github.com/rhuss/gatehouse/pkg/debug"
	"github.com/rhuss/gatehouse/pkg/storage"
	"github.com/rhuss/gatehouse/pkg/storage/memory"
	"github.com/rhuss/gatehouse/pkg/storage/postgres"
	"github.com/rhuss/gatehouse/pkg/storage/sqlite"
	"github.com/rhuss/gatehouse/pkg/transport"
	transporthttp "github.com/rhuss/gatehouse/pkg/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	started := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := createStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("creating user store: %w", err)
	}
	defer store.Close()

	if err := seedUsers(ctx, store, cfg.Storage.Memory.Users, logger); err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}

	verifier, err := jwt.New(jwt.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
		Leeway: cfg.Auth.Leeway,
	})
	if err != nil {
		return fmt.Errorf("creating token verifier: %w", err)
	}

	gate := auth.NewGate(
		auth.NewAuthenticator(verifier, store),
		auth.WithCookieName(cfg.Auth.CookieName),
		auth.WithLogger(logger),
	)

	middlewares := buildMiddlewares(cfg, logger)

	adapterCfg := transporthttp.DefaultConfig()
	adapterCfg.Started = started
	adapterCfg.Logger = logger
	adapterCfg.MetricsPath = ""
	if cfg.Observability.Metrics.Enabled {
		adapterCfg.MetricsPath = cfg.Observability.Metrics.Path
	}
	adapter := transporthttp.NewAdapter(store, gate, adapterCfg, middlewares...)

	srv := transporthttp.NewServer(adapter.Handler(),
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
	)

	logger.Info(fmt.Sprintf("server running in %s mode on port %d", cfg.Environment, cfg.Server.Port),
		"storage", cfg.Storage.Type,
		"rate_limit", cfg.RateLimit.Enabled,
		"metrics", adapterCfg.MetricsPath,
	)

	return srv.ListenAndServe(ctx)
}

// buildMiddlewares returns the middleware applied to every route, outermost
// first. RequestID runs before Recovery so panic logs carry the request ID.
func buildMiddlewares(cfg *config.Config, logger *slog.Logger) []transport.Middleware {
	middlewares := []transport.Middleware{
		transport.RequestID(),
		transport.Recovery(logger),
		transport.ClientIP(cfg.Server.TrustProxy),
		transport.Logging(logger),
		transport.SecurityHeaders(),
		cors.Handler(corsOptions(cfg.CORS)),
	}
	if cfg.RateLimit.Enabled {
		middlewares = append(middlewares, transport.RateLimit(transport.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)))
	}
	return middlewares
}

// corsOptions allows any origin unless cors.allowed_origins is set.
func corsOptions(cfg config.CORSConfig) cors.Options {
	return cors.Options{
		AllowedOrigins:       cfg.AllowedOrigins,
		AllowedMethods:       []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowedHeaders:       []string{"Accept", "Authorization", "Content-Type", transport.RequestIDHeader},
		ExposedHeaders:       []string{transport.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:               86400,
		OptionsSuccessStatus: http.StatusNoContent,
	}
}

func createStore(ctx context.Context, cfg config.StorageConfig) (transport.UserStore, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			LookupTimeout:  cfg.Postgres.LookupTimeout,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
	case "sqlite":
		return sqlite.New(ctx, sqlite.Config{
			Path:           cfg.SQLite.Path,
			BusyTimeout:    cfg.SQLite.BusyTimeout,
			LookupTimeout:  cfg.SQLite.LookupTimeout,
			MigrateOnStart: cfg.SQLite.MigrateOnStart,
		})
	case "memory", "":
		return memory.New()
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// userSaver is implemented by every store that accepts seed records.
type userSaver interface {
	SaveUser(ctx context.Context, u *api.User) error
}

// seedUsers writes the configured users into store. Records that already
// exist are left untouched.
func seedUsers(ctx context.Context, store transport.UserStore, seeds []config.UserSeed, logger *slog.Logger) error {
	if len(seeds) == 0 {
		return nil
	}
	saver, ok := store.(userSaver)
	if !ok {
		return errors.New("store does not accept seed users")
	}

	now := time.Now().UTC()
	for _, s := range seeds {
		err := saver.SaveUser(ctx, &api.User{
			ID:        s.ID,
			Name:      s.Name,
			Email:     s.Email,
			Role:      s.Role,
			CreatedAt: now,
		})
		if errors.Is(err, storage.ErrConflict) {
			logger.Debug("seed user already present", "id", s.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("saving user %s: %w", s.ID, err)
		}
	}
	logger.Info("seeded users", "count", len(seeds))
	return nil
}
