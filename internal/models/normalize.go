package models

import (
	"encoding/json"
	"strconv"
	"time"

	"carlog/internal/timex"
)

// RawRecord is the permissive decode target for record data of unknown
// provenance: remote payloads, imported backups, or freshly loaded storage.
// Every field is `any` so no input shape can fail to unmarshal.
type RawRecord struct {
	ID         any `json:"id"`
	Date       any `json:"date"`
	Category   any `json:"category"`
	Amount     any `json:"amount"`
	Mileage    any `json:"mileage"`
	FuelVolume any `json:"fuelVolume"`
	Memo       any `json:"memo"`
	CreatedAt  any `json:"createdAt"`
	UpdatedAt  any `json:"updatedAt"`
	DeletedAt  any `json:"deletedAt"`
}

// RawFromRecord converts a well-formed Record back to its raw shape,
// mainly for re-normalizing and for backup payloads.
func RawFromRecord(r Record) RawRecord {
	raw := RawRecord{
		ID:        r.ID,
		Date:      r.Date,
		Category:  string(r.Category),
		Amount:    r.Amount,
		Memo:      r.Memo,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Mileage != nil {
		raw.Mileage = *r.Mileage
	}
	if r.FuelVolume != nil {
		raw.FuelVolume = *r.FuelVolume
	}
	if r.DeletedAt != nil {
		raw.DeletedAt = *r.DeletedAt
	}
	return raw
}

// Normalize coerces an arbitrary raw object into a well-formed Record,
// applying defaults for every missing or invalid field. It is total: it
// never fails, and the result is always usable. "now" supplies the clock so
// callers (and tests) control freshly generated timestamps.
func Normalize(raw RawRecord, now time.Time) Record {
	nowInstant := FormatInstant(now)

	createdAt := asString(raw.CreatedAt)
	if createdAt == "" {
		createdAt = nowInstant
	}
	updatedAt := asString(raw.UpdatedAt)
	if updatedAt == "" {
		// A record written before updatedAt existed is as old as its creation.
		updatedAt = createdAt
	}

	id := asString(raw.ID)
	if id == "" {
		id = NewID()
	}

	date := asString(raw.Date)
	if date == "" {
		date = timex.DateString(now)
	}

	category := Category(asString(raw.Category))
	if !category.Valid() {
		category = CategoryOther
	}

	amount, ok := asNumber(raw.Amount)
	if !ok {
		amount = 0
	}

	r := Record{
		ID:        id,
		Date:      date,
		Category:  category,
		Amount:    amount,
		Memo:      asString(raw.Memo),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}

	if v, ok := asNumber(raw.Mileage); ok {
		r.Mileage = &v
	}
	if v, ok := asNumber(raw.FuelVolume); ok {
		r.FuelVolume = &v
	}
	if s := asString(raw.DeletedAt); s != "" {
		r.DeletedAt = &s
	}

	return r
}

func asString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	default:
		return ""
	}
}

func asNumber(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		return f, err == nil
	case string:
		if value == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(value, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
