// Package merge reconciles two replicas of the record set. Both functions
// are pure: they never touch storage and never mutate their inputs.
package merge

import (
	"time"

	"carlog/internal/models"
)

// DefaultRetention is how long tombstones are kept before physical removal.
// Long enough for every device that saw the record to also see the delete.
const DefaultRetention = 30 * 24 * time.Hour

// Merge reconciles local and remote record sets with per-record
// last-write-wins on the effective timestamp (updatedAt falling back to
// createdAt). The result starts from local; remote-only records are
// appended; where both replicas hold an id, the remote record replaces the
// local one when its timestamp is greater than or equal.
//
// Equal timestamps select the remote record. That is deliberate policy, not
// an accident: the replica we just fetched is treated as the later writer.
//
// No ordering beyond insertion is guaranteed; presentation re-sorts.
func Merge(local, remote []models.Record) []models.Record {
	result := make([]models.Record, len(local))
	copy(result, local)

	index := make(map[string]int, len(result))
	for i, r := range result {
		index[r.ID] = i
	}

	for _, rr := range remote {
		i, ok := index[rr.ID]
		if !ok {
			index[rr.ID] = len(result)
			result = append(result, rr)
			continue
		}
		if models.CompareInstants(rr.EffectiveTimestamp(), result[i].EffectiveTimestamp()) >= 0 {
			result[i] = rr
		}
	}

	return result
}

// PruneTombstones drops records whose deletion is older than the retention
// window, measured from now. Live records pass through untouched, and a
// tombstone whose deletedAt cannot be parsed is conservatively retained: a
// record we cannot age must not be destroyed.
func PruneTombstones(records []models.Record, now time.Time, retention time.Duration) []models.Record {
	result := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.Deleted() {
			deletedAt, err := models.ParseInstant(*r.DeletedAt)
			if err == nil && now.Sub(deletedAt) > retention {
				continue
			}
		}
		result = append(result, r)
	}
	return result
}
