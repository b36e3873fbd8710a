// Package config provides unified configuration for the gatehouse server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (GATEHOUSE_ prefix)
//  4. Legacy variable names (JWT_SECRET, PORT, ENVIRONMENT)
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import "time"

// Config holds all configuration for the gatehouse server.
type Config struct {
	// Environment is a free-form deployment label such as "production".
	Environment   string              `yaml:"environment"`
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	CORS          CORSConfig          `yaml:"cors"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 5000
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
	// TrustProxy honors CF-Connecting-IP and X-Forwarded-For.
	TrustProxy bool `yaml:"trust_proxy"` // default: true
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`      // required
	JWTSecretFile string        `yaml:"jwt_secret_file"` // _file variant for jwt_secret
	Issuer        string        `yaml:"issuer"`          // optional, checked when set
	Leeway        time.Duration `yaml:"leeway"`          // default: 0
	CookieName    string        `yaml:"cookie_name"`     // default: "token"
}

// StorageConfig selects and configures the user store.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory", "postgres", or "sqlite", default: "memory"
	Memory   MemoryConfig   `yaml:"memory"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// MemoryConfig holds the users the in-memory store starts with.
type MemoryConfig struct {
	Users []UserSeed `yaml:"users"`
}

// UserSeed describes a single user record loaded at startup.
type UserSeed struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
	Role  string `yaml:"role" json:"role"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string        `yaml:"dsn"`
	DSNFile        string        `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32         `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool          `yaml:"migrate_on_start"` // default: false
	LookupTimeout  time.Duration `yaml:"lookup_timeout"`   // default: 5s
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path           string        `yaml:"path"`             // default: "gatehouse.db"
	BusyTimeout    time.Duration `yaml:"busy_timeout"`     // default: 5s
	MigrateOnStart bool          `yaml:"migrate_on_start"` // default: true
	LookupTimeout  time.Duration `yaml:"lookup_timeout"`   // default: 5s
}

// RateLimitConfig holds the per-client request budget.
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`  // default: true
	Requests int           `yaml:"requests"` // default: 480
	Window   time.Duration `yaml:"window"`   // default: 1m
}

// CORSConfig holds Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"` // empty allows any origin
}

// LoggingConfig holds slog setup.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // ERROR, WARN, INFO, DEBUG, TRACE; default: INFO
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Environment: "development",
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			TrustProxy:      true,
		},
		Auth: AuthConfig{
			CookieName: "token",
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:      25,
				LookupTimeout: 5 * time.Second,
			},
			SQLite: SQLiteConfig{
				Path:           "gatehouse.db",
				BusyTimeout:    5 * time.Second,
				MigrateOnStart: true,
				LookupTimeout:  5 * time.Second,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 480,
			Window:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
