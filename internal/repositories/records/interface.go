// Package records persists the full record set as one snapshot. Two
// implementations exist: a JSON file (primary, always written) and a SQLite
// mirror (secondary, more durable). Startup reads prefer the mirror and fall
// back to the file, migrating one way when only the file holds data.
package records

import (
	"context"

	"carlog/internal/models"
)

// Repository stores and loads the whole record array atomically. There is no
// per-record addressing; the snapshot is the unit of persistence.
type Repository interface {
	// Load returns the stored snapshot. The second result is false when
	// the store holds nothing to start from.
	Load(ctx context.Context) ([]models.Record, bool, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, recs []models.Record) error
}
