package sqlite

import "time"

// Config holds SQLite file and behavior settings.
type Config struct {
	// Path is the filesystem path to the database file. The directory is
	// created if it does not exist.
	Path string

	// BusyTimeout is how long a connection waits for a lock (default: 5s).
	BusyTimeout time.Duration

	// LookupTimeout bounds each user lookup (default: 5s).
	LookupTimeout time.Duration

	// MigrateOnStart applies the embedded schema at startup.
	MigrateOnStart bool
}

func (c *Config) defaults() {
	if c.BusyTimeout == 0 {
		c.BusyTimeout = 5 * time.Second
	}
	if c.LookupTimeout == 0 {
		c.LookupTimeout = 5 * time.Second
	}
}
