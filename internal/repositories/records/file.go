package records

import (
	"context"

	"carlog/internal/models"
	"carlog/internal/repositories/filekv"
)

// SnapshotKey is the fixed key the record array lives under in the file
// store. The suffix versions the stored shape.
const SnapshotKey = "car-records-v1"

// FileRepository keeps the snapshot in the shared JSON file store.
type FileRepository struct {
	kv *filekv.Store
}

func NewFileRepository(kv *filekv.Store) *FileRepository {
	return &FileRepository{kv: kv}
}

func (r *FileRepository) Load(ctx context.Context) ([]models.Record, bool, error) {
	var recs []models.Record
	ok, err := r.kv.Get(SnapshotKey, &recs)
	if err != nil || !ok {
		return nil, false, err
	}
	return recs, true, nil
}

func (r *FileRepository) Save(ctx context.Context, recs []models.Record) error {
	if recs == nil {
		recs = []models.Record{}
	}
	return r.kv.Set(SnapshotKey, recs)
}
