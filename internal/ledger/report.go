package ledger

import (
	"sort"
	"strings"

	"carlog/internal/models"
	"carlog/internal/timex"
)

// Stats summarizes the live records for display.
type Stats struct {
	// Total is the sum over all live records.
	Total float64
	// Month is the YYYY-MM filter MonthTotal was computed for.
	Month string
	// MonthTotal is the sum over live records within Month.
	MonthTotal float64
	// Count is the number of live records.
	Count int
}

// EfficiencyPoint is one segment of the fuel-efficiency series: the distance
// covered between one fill-up and the next.
type EfficiencyPoint struct {
	// Date is the date of the later fill-up.
	Date string
	// Distance is the odometer delta since the previous fill-up.
	Distance float64
}

// Stats computes totals for the given month filter; an empty month defaults
// to the current calendar month. Tombstones are excluded.
func (s *Service) Stats(month string) Stats {
	if month == "" {
		month = timex.MonthString(s.now())
	}

	stats := Stats{Month: month}
	for _, r := range s.Active() {
		stats.Total += r.Amount
		stats.Count++
		if strings.HasPrefix(r.Date, month) {
			stats.MonthTotal += r.Amount
		}
	}
	return stats
}

// EfficiencyPoints derives the fuel-efficiency series: fuel records carrying
// a mileage reading, ordered oldest first, yield one point per consecutive
// pair with a positive odometer delta. Decreasing or equal readings produce
// no point; an odometer can be corrected backwards.
func (s *Service) EfficiencyPoints() []EfficiencyPoint {
	fuel := make([]models.Record, 0)
	for _, r := range s.Active() {
		if r.Category == models.CategoryFuel && r.Mileage != nil {
			fuel = append(fuel, r)
		}
	}
	sort.SliceStable(fuel, func(i, j int) bool {
		if fuel[i].Date != fuel[j].Date {
			return fuel[i].Date < fuel[j].Date
		}
		return fuel[i].CreatedAt < fuel[j].CreatedAt
	})

	points := make([]EfficiencyPoint, 0, len(fuel))
	for i := 1; i < len(fuel); i++ {
		delta := *fuel[i].Mileage - *fuel[i-1].Mileage
		if delta > 0 {
			points = append(points, EfficiencyPoint{Date: fuel[i].Date, Distance: delta})
		}
	}
	return points
}
