// Package config assembles runtime settings from defaults, an optional JSON
// file and command-line flags, in that order of precedence.
package config

import "time"

// Config holds runtime settings for the car record book.
//
// Sync is considered configured only when RemoteBaseURL, SyncID and
// SyncSecret are all set and pass the checks in the remote package; until
// then the app runs purely offline.
type Config struct {
	// StorePath is the primary JSON key-value store file.
	StorePath string
	// DatabasePath is the SQLite mirror of the record snapshot.
	DatabasePath string

	// RemoteBaseURL is the document store origin, e.g. "https://host".
	RemoteBaseURL string
	// RemoteNamespace is the path segment records live under.
	RemoteNamespace string
	// SyncID identifies this record book across devices.
	SyncID string
	// SyncSecret guards the remote path. Minimum 16 characters.
	SyncSecret string

	// PollInterval is the background sync cadence.
	PollInterval time.Duration
	// RequestTimeout bounds each remote request.
	RequestTimeout time.Duration
	// TombstoneRetention is how long soft-deleted records are kept.
	TombstoneRetention time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StorePath = "carlog.json"
	c.DatabasePath = "carlog.db"
	c.RemoteNamespace = "car-records"
	c.PollInterval = 15 * time.Second
	c.RequestTimeout = 12 * time.Second
	c.TombstoneRetention = 30 * 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
