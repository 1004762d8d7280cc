package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"carlog/internal/dbx"
	"carlog/internal/models"
)

// SQLiteRepository mirrors the record set one row per record. Save replaces
// the whole set inside a transaction, so a crash mid-write never leaves a mix
// of old and new rows behind.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]models.Record, bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM records ORDER BY id`)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load records: %w", err)
	}
	defer rows.Close()

	var recs []models.Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, false, fmt.Errorf("failed to load records: %w", err)
		}
		var rec models.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, false, fmt.Errorf("failed to decode record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to load records: %w", err)
	}
	if len(recs) == 0 {
		return nil, false, nil
	}
	return recs, true, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, recs []models.Record) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
		for _, rec := range recs {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO records (id, data) VALUES (?, ?)`, rec.ID, data)
			if err != nil {
				return fmt.Errorf("failed to save record %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}
