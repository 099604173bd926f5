// Package domain holds the immutable value objects shared across the
// allocation engine: fields, crops, weather, schedules and the violations
// raised while validating them. Entities never mutate in place — a new
// version is constructed whenever a change is required.
package domain

import "fmt"

// Field is a piece of land that can host a sequence of crop allocations,
// separated by a fallow rest period.
type Field struct {
	FieldID         string
	Name            string
	AreaSqM         float64
	DailyFixedCost  float64
	Location        string
	FallowPeriodDays int
	Groups          []string
}

// DefaultFallowPeriodDays is used when a Field is constructed without an
// explicit fallow period.
const DefaultFallowPeriodDays = 28

// NewField validates and constructs a Field. FallowPeriodDays defaults to
// DefaultFallowPeriodDays when left at zero value is NOT assumed here —
// callers that want the default must pass it explicitly; this keeps the
// constructor's behavior predictable for fields that genuinely want 0.
func NewField(fieldID, name string, areaSqM, dailyFixedCost float64, fallowPeriodDays int, location string, groups []string) (Field, error) {
	if fieldID == "" {
		return Field{}, fmt.Errorf("field: field_id must not be empty")
	}
	if areaSqM <= 0 {
		return Field{}, fmt.Errorf("field %s: area must be positive, got %f", fieldID, areaSqM)
	}
	if dailyFixedCost < 0 {
		return Field{}, fmt.Errorf("field %s: daily_fixed_cost must be non-negative, got %f", fieldID, dailyFixedCost)
	}
	if fallowPeriodDays < 0 {
		return Field{}, fmt.Errorf("field %s: fallow_period_days must be >= 0, got %d", fieldID, fallowPeriodDays)
	}
	return Field{
		FieldID:          fieldID,
		Name:             name,
		AreaSqM:          areaSqM,
		DailyFixedCost:   dailyFixedCost,
		Location:         location,
		FallowPeriodDays: fallowPeriodDays,
		Groups:           groups,
	}, nil
}

// HasGroup reports whether the field carries the given tag.
func (f Field) HasGroup(group string) bool {
	for _, g := range f.Groups {
		if g == group {
			return true
		}
	}
	return false
}
