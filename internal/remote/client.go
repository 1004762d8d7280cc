// Package remote talks to the shared document store: one JSON blob at a
// fixed path, read and replaced wholesale. There is no per-record remote
// addressing and no transaction; the merge layer above absorbs conflicts.
package remote

import (
	"context"
	"errors"
	"fmt"

	"carlog/internal/config"
	"carlog/internal/logging"
	"carlog/internal/models"
)

// Client fetches and replaces the remote document.
type Client interface {
	// Fetch returns the current remote document, or nil when none exists.
	Fetch(ctx context.Context) (*models.RemoteDocument, error)

	// Push replaces the remote document.
	Push(ctx context.Context, doc *models.RemoteDocument) error
}

var (
	// ErrTimeout marks a request abandoned for exceeding the request
	// timeout, distinguishable from other I/O failures.
	ErrTimeout = errors.New("remote request timed out")

	// ErrNotConfigured means sync cannot run with the current settings.
	// The wrapping error carries the user-visible reason.
	ErrNotConfigured = errors.New("sync not configured")
)

const (
	// MinSecretLen is the minimum sync secret length. A shorter secret
	// disables syncing entirely.
	MinSecretLen = 16

	// MinSyncIDLen is the advisory minimum sync identifier length.
	// Shorter ids sync anyway but draw a warning.
	MinSyncIDLen = 8
)

// CheckConfig validates the sync settings. A nil return means remote calls
// may proceed. The returned error wraps ErrNotConfigured and states the
// reason; a short-but-present sync id is only warned about.
func CheckConfig(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	if cfg.RemoteBaseURL == "" {
		return fmt.Errorf("%w: no remote address set", ErrNotConfigured)
	}
	if !secureScheme(cfg.RemoteBaseURL) {
		return fmt.Errorf("%w: remote address must use https", ErrNotConfigured)
	}
	if cfg.SyncID == "" {
		return fmt.Errorf("%w: no sync id set", ErrNotConfigured)
	}
	if len(cfg.SyncSecret) < MinSecretLen {
		return fmt.Errorf("%w: sync secret must be at least %d characters", ErrNotConfigured, MinSecretLen)
	}
	if len(cfg.SyncID) < MinSyncIDLen {
		log.Warn(ctx, "sync id is shorter than recommended", "min", MinSyncIDLen)
	}
	return nil
}

func secureScheme(baseURL string) bool {
	return len(baseURL) >= 8 && baseURL[:8] == "https://"
}
