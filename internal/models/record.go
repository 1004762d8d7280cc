// Package models defines the vehicle-expense record, the remote document it
// syncs through, and the per-replica sync metadata.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies an expense record.
type Category string

const (
	CategoryFuel        Category = "fuel"
	CategoryToll        Category = "toll"
	CategoryMaintenance Category = "maintenance"
	CategoryParking     Category = "parking"
	CategoryWash        Category = "wash"
	CategoryInsurance   Category = "insurance"
	CategoryOther       Category = "other"
)

// Categories lists all valid categories in display order.
var Categories = []Category{
	CategoryFuel, CategoryToll, CategoryMaintenance, CategoryParking,
	CategoryWash, CategoryInsurance, CategoryOther,
}

// CategoryLabels maps categories to human-readable names for listings.
var CategoryLabels = map[Category]string{
	CategoryFuel:        "Fuel",
	CategoryToll:        "Toll",
	CategoryMaintenance: "Maintenance",
	CategoryParking:     "Parking",
	CategoryWash:        "Wash",
	CategoryInsurance:   "Insurance",
	CategoryOther:       "Other",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := CategoryLabels[c]
	return ok
}

// Label returns the display name for c, falling back to the raw value.
func (c Category) Label() string {
	if l, ok := CategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Record is one vehicle-expense entry. Timestamps are kept as the ISO
// strings they travel as on the wire; records coming from other replicas may
// carry values we cannot parse, and those must survive a round trip intact.
type Record struct {
	// ID is a globally unique identifier, immutable after creation.
	ID string `json:"id"`

	// Date is the user-supplied calendar date (YYYY-MM-DD).
	Date string `json:"date"`

	Category Category `json:"category"`

	// Amount is a non-negative value in the currency unit.
	Amount float64 `json:"amount"`

	// Mileage is an optional odometer reading.
	Mileage *float64 `json:"mileage"`

	// FuelVolume is an optional fill-up volume; set only for fuel records.
	FuelVolume *float64 `json:"fuelVolume"`

	Memo string `json:"memo"`

	// CreatedAt is the creation instant, immutable.
	CreatedAt string `json:"createdAt"`

	// UpdatedAt is the instant of the last mutation and the
	// last-write-wins key during merge.
	UpdatedAt string `json:"updatedAt"`

	// DeletedAt, when set, marks the record as a tombstone: hidden from
	// listings and totals but still propagated by sync until pruned.
	DeletedAt *string `json:"deletedAt"`
}

// Deleted reports whether the record is a tombstone.
func (r Record) Deleted() bool {
	return r.DeletedAt != nil && *r.DeletedAt != ""
}

// EffectiveTimestamp returns UpdatedAt, falling back to CreatedAt, as the
// merge comparison key.
func (r Record) EffectiveTimestamp() string {
	if r.UpdatedAt != "" {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// UnitPrice derives price per volume unit for fuel fill-ups.
// The second result is false when no volume is recorded.
func (r Record) UnitPrice() (float64, bool) {
	if r.FuelVolume == nil || *r.FuelVolume <= 0 {
		return 0, false
	}
	return r.Amount / *r.FuelVolume, true
}

// NewID generates a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// FormatInstant renders t as the ISO instant used across storage and sync.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseInstant parses an ISO instant produced by this or another replica.
func ParseInstant(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// CompareInstants orders two instant strings: -1, 0 or 1 as a is before,
// equal to or after b. When either side does not parse, both are compared
// lexically so the ordering stays total and deterministic.
func CompareInstants(a, b string) int {
	ta, errA := ParseInstant(a)
	tb, errB := ParseInstant(b)
	if errA == nil && errB == nil {
		return ta.Compare(tb)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
