package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"carlog/internal/models"
	"carlog/internal/timex"
)

// ExportBackup renders the live records as a backup payload and suggests a
// date-stamped file name. Tombstones are not exported; a restored backup
// should not resurrect deletions elsewhere.
func (s *Service) ExportBackup() (data []byte, filename string, err error) {
	now := s.now()
	active := s.Active()

	raws := make([]models.RawRecord, len(active))
	for i, r := range active {
		raws[i] = models.RawFromRecord(r)
	}

	payload := models.BackupPayload{
		Version:    models.BackupVersion,
		ExportedAt: models.FormatInstant(now),
		Records:    raws,
	}
	data, err = json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode backup: %w", err)
	}

	filename = "car-record-backup-" + timex.DateString(now) + ".json"
	return data, filename, nil
}

// ImportBackup replaces the entire local record set with the backup's
// contents, normalized entry by entry. The replica is marked dirty; when
// sync is configured the caller force-pushes so the restored data becomes
// authoritative. Returns the number of records imported.
func (s *Service) ImportBackup(ctx context.Context, data []byte) (int, error) {
	raws, err := models.DecodeBackup(data)
	if err != nil {
		return 0, err
	}

	now := s.now()
	imported := make([]models.Record, len(raws))
	for i, raw := range raws {
		imported[i] = models.Normalize(raw, now)
	}

	s.mu.Lock()
	s.records = imported
	s.markDirtyLocked()
	s.mu.Unlock()

	s.persist(ctx)
	return len(imported), nil
}
