package records

import (
	"context"

	"carlog/internal/logging"
	"carlog/internal/models"
)

// LoadInitial reads the startup snapshot: the durable mirror is tried first,
// falling back to the file store. When only the file store holds data, it is
// opportunistically copied into the mirror so later startups find it there.
// Failures along the way are logged, never fatal; the worst case is starting
// with an empty record set.
func LoadInitial(ctx context.Context, mirror, file Repository, log logging.Logger) []models.Record {
	if mirror != nil {
		recs, ok, err := mirror.Load(ctx)
		if err != nil {
			log.Warn(ctx, "failed to load records from mirror, falling back", "error", err)
		} else if ok {
			return recs
		}
	}

	recs, ok, err := file.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load records from file store", "error", err)
		return []models.Record{}
	}
	if !ok {
		return []models.Record{}
	}

	if mirror != nil && len(recs) > 0 {
		if err := mirror.Save(ctx, recs); err != nil {
			log.Warn(ctx, "failed to migrate records into mirror", "error", err)
		}
	}
	return recs
}
