package domain

import "sort"

// FieldSchedule is one field's ordered, non-overlapping list of crop
// allocations plus their aggregates.
type FieldSchedule struct {
	Field           Field
	Allocations     []CropAllocation
	TotalCost       float64
	TotalRevenue    float64
	TotalProfit     float64
	TotalAreaUsed   float64
	UtilizationRate float64
}

// NewFieldSchedule sorts allocations by start date and computes aggregates.
func NewFieldSchedule(field Field, allocations []CropAllocation) FieldSchedule {
	sorted := make([]CropAllocation, len(allocations))
	copy(sorted, allocations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })

	fs := FieldSchedule{Field: field, Allocations: sorted}
	for _, a := range sorted {
		fs.TotalCost += a.Cost
		fs.TotalRevenue += a.Revenue
		fs.TotalProfit += a.Profit
		fs.TotalAreaUsed += a.AreaUsed
	}
	if field.AreaSqM > 0 {
		fs.UtilizationRate = fs.TotalAreaUsed / field.AreaSqM
	}
	return fs
}
