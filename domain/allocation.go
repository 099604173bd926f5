package domain

import (
	"time"

	"github.com/google/uuid"
)

// AllocationCandidate is a hypothetical (field, crop, start, completion,
// area) tuple that has been simulated but not yet selected into a
// solution. Produced by the candidate generator (candidates package).
type AllocationCandidate struct {
	Field          Field
	Crop           Crop
	StartDate      time.Time
	CompletionDate time.Time
	GrowthDays     int
	AccumulatedGDD float64
	AreaUsed       float64
	Cost           float64
	Revenue        float64
	Profit         float64
	ProfitRate     float64
	YieldFactor    float64
}

// Promote turns a selected candidate into a CropAllocation, minting a new
// allocation id.
func (c AllocationCandidate) Promote() CropAllocation {
	return CropAllocation{
		AllocationID:   uuid.NewString(),
		Field:          c.Field,
		Crop:           c.Crop,
		StartDate:      c.StartDate,
		CompletionDate: c.CompletionDate,
		GrowthDays:     c.GrowthDays,
		AccumulatedGDD: c.AccumulatedGDD,
		AreaUsed:       c.AreaUsed,
		Cost:           c.Cost,
		Revenue:        c.Revenue,
		Profit:         c.Profit,
		ProfitRate:     c.ProfitRate,
		YieldFactor:    c.YieldFactor,
	}
}

// CropAllocation is a selected candidate promoted into a solution.
type CropAllocation struct {
	AllocationID   string
	Field          Field
	Crop           Crop
	StartDate      time.Time
	CompletionDate time.Time
	GrowthDays     int
	AccumulatedGDD float64
	AreaUsed       float64
	Cost           float64
	Revenue        float64
	Profit         float64
	ProfitRate     float64
	YieldFactor    float64
}

// AsCandidate views this allocation as a candidate again, useful when a
// move operator needs to re-evaluate it.
func (a CropAllocation) AsCandidate() AllocationCandidate {
	return AllocationCandidate{
		Field:          a.Field,
		Crop:           a.Crop,
		StartDate:      a.StartDate,
		CompletionDate: a.CompletionDate,
		GrowthDays:     a.GrowthDays,
		AccumulatedGDD: a.AccumulatedGDD,
		AreaUsed:       a.AreaUsed,
		Cost:           a.Cost,
		Revenue:        a.Revenue,
		Profit:         a.Profit,
		ProfitRate:     a.ProfitRate,
		YieldFactor:    a.YieldFactor,
	}
}

// OverlapsWithFallow reports whether this allocation starts before the
// previous allocation's fallow period (on the same field) has elapsed.
// Forward-only semantics per spec.md §9: only the previous allocation's
// completion date plus the field's fallow period bounds the next start.
func (a CropAllocation) OverlapsWithFallow(previous CropAllocation) bool {
	required := previous.CompletionDate.AddDate(0, 0, a.Field.FallowPeriodDays)
	return a.StartDate.Before(required)
}

// Overlaps reports whether the two allocations' [start, completion)
// intervals intersect, ignoring fallow. Intervals that only touch (one
// completes on the day the other starts) do not overlap.
func (a CropAllocation) Overlaps(other CropAllocation) bool {
	return a.StartDate.Before(other.CompletionDate) && other.StartDate.Before(a.CompletionDate)
}

// CoversDate reports whether d falls within [StartDate, CompletionDate).
func (a CropAllocation) CoversDate(d time.Time) bool {
	return !d.Before(a.StartDate) && d.Before(a.CompletionDate)
}
