package config

import (
	"encoding/json"
	"os"

	"carlog/internal/flagx"
	"carlog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be given either as strings like "15s" or as integer nanoseconds.
type JsonConfig struct {
	StorePath          string         `json:"store_path"`
	DatabasePath       string         `json:"database_path"`
	RemoteBaseURL      string         `json:"remote_base_url"`
	RemoteNamespace    string         `json:"remote_namespace"`
	SyncID             string         `json:"sync_id"`
	SyncSecret         string         `json:"sync_secret"`
	PollInterval       timex.Duration `json:"poll_interval"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	TombstoneRetention timex.Duration `json:"tombstone_retention"`
}

// parseJson overlays cfg with values from the file named by -c/-config.
// Absent file path means no JSON source; fields left at their zero value in
// the file do not override earlier sources.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.StorePath != "" {
		cfg.StorePath = jc.StorePath
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RemoteBaseURL != "" {
		cfg.RemoteBaseURL = jc.RemoteBaseURL
	}
	if jc.RemoteNamespace != "" {
		cfg.RemoteNamespace = jc.RemoteNamespace
	}
	if jc.SyncID != "" {
		cfg.SyncID = jc.SyncID
	}
	if jc.SyncSecret != "" {
		cfg.SyncSecret = jc.SyncSecret
	}
	if jc.PollInterval.Duration > 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.TombstoneRetention.Duration > 0 {
		cfg.TombstoneRetention = jc.TombstoneRetention.Duration
	}
}
