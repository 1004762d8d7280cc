package models

// RemoteDocument is the single shared blob kept at the remote path. There is
// no per-record remote addressing: every sync reads or replaces the whole
// collection.
type RemoteDocument struct {
	Records   []Record `json:"records"`
	UpdatedAt string   `json:"updatedAt"`
	Rev       int64    `json:"rev"`
}

// Empty reports whether the document is absent or holds no records.
func (d *RemoteDocument) Empty() bool {
	return d == nil || len(d.Records) == 0
}

// SyncMeta is the per-replica synchronization state. It describes the local
// replica as a whole, not individual records.
type SyncMeta struct {
	// LastSyncUpdatedAt is the latest remote document timestamp known to
	// have been reconciled into this replica.
	LastSyncUpdatedAt string `json:"lastSyncUpdatedAt"`

	// Rev is a monotonic revision counter, incremented on every local
	// mutation and compared against the remote document's rev.
	Rev int64 `json:"rev"`

	// Dirty marks unpushed local changes. Cleared only after a confirmed
	// push.
	Dirty bool `json:"dirty"`

	// LastSuccessAt records the last successful sync, display-only.
	LastSuccessAt string `json:"lastSuccessAt"`
}
