// Package metadata persists the per-replica sync state as four scalar
// entries in the primary key-value store, alongside the record snapshot.
package metadata

import (
	"context"
	"fmt"

	"carlog/internal/models"
	"carlog/internal/repositories/filekv"
)

// Repository loads and saves the sync metadata as one unit.
type Repository interface {
	Load(ctx context.Context) (models.SyncMeta, error)
	Save(ctx context.Context, meta models.SyncMeta) error
}

const (
	keyLastSyncUpdatedAt = "car-sync-last-updated-v1"
	keyRev               = "car-sync-rev-v1"
	keyDirty             = "car-sync-dirty-v1"
	keyLastSuccessAt     = "car-sync-last-success-v1"
)

// FileRepository keeps the metadata in the shared JSON file store.
type FileRepository struct {
	kv *filekv.Store
}

func NewFileRepository(kv *filekv.Store) *FileRepository {
	return &FileRepository{kv: kv}
}

func (r *FileRepository) Load(ctx context.Context) (models.SyncMeta, error) {
	var meta models.SyncMeta

	if _, err := r.kv.Get(keyLastSyncUpdatedAt, &meta.LastSyncUpdatedAt); err != nil {
		return meta, fmt.Errorf("failed to load sync metadata: %w", err)
	}
	if _, err := r.kv.Get(keyRev, &meta.Rev); err != nil {
		return meta, fmt.Errorf("failed to load sync metadata: %w", err)
	}
	// The dirty flag is a boolean-like marker: present and "1" means dirty.
	var dirty string
	if _, err := r.kv.Get(keyDirty, &dirty); err != nil {
		return meta, fmt.Errorf("failed to load sync metadata: %w", err)
	}
	meta.Dirty = dirty == "1"
	if _, err := r.kv.Get(keyLastSuccessAt, &meta.LastSuccessAt); err != nil {
		return meta, fmt.Errorf("failed to load sync metadata: %w", err)
	}

	return meta, nil
}

func (r *FileRepository) Save(ctx context.Context, meta models.SyncMeta) error {
	if err := r.kv.Set(keyLastSyncUpdatedAt, meta.LastSyncUpdatedAt); err != nil {
		return fmt.Errorf("failed to save sync metadata: %w", err)
	}
	if err := r.kv.Set(keyRev, meta.Rev); err != nil {
		return fmt.Errorf("failed to save sync metadata: %w", err)
	}
	dirty := ""
	if meta.Dirty {
		dirty = "1"
	}
	if err := r.kv.Set(keyDirty, dirty); err != nil {
		return fmt.Errorf("failed to save sync metadata: %w", err)
	}
	if err := r.kv.Set(keyLastSuccessAt, meta.LastSuccessAt); err != nil {
		return fmt.Errorf("failed to save sync metadata: %w", err)
	}
	return nil
}
