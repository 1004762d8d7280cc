package models

import (
	"encoding/json"
	"errors"
)

// BackupPayload is the export file format. Import additionally accepts a
// bare record array, the shape written by early versions.
type BackupPayload struct {
	Version    int         `json:"version"`
	ExportedAt string      `json:"exportedAt"`
	Records    []RawRecord `json:"records"`
}

// BackupVersion is the current export format version.
const BackupVersion = 1

var ErrBadBackup = errors.New("backup file format not recognized")

// DecodeBackup parses backup file contents in either supported shape and
// returns the raw records it carries. The records are not yet normalized.
func DecodeBackup(data []byte) ([]RawRecord, error) {
	var payload BackupPayload
	if err := json.Unmarshal(data, &payload); err == nil && payload.Records != nil {
		return payload.Records, nil
	}

	var bare []RawRecord
	if err := json.Unmarshal(data, &bare); err == nil && bare != nil {
		return bare, nil
	}

	return nil, ErrBadBackup
}
