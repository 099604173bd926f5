package domain

import "time"

// MultiFieldOptimizationResult is the top-level output of the allocation
// solver: one FieldSchedule per field plus global aggregates.
type MultiFieldOptimizationResult struct {
	OptimizationID   string
	Schedules        []FieldSchedule
	TotalCost        float64
	TotalRevenue     float64
	TotalProfit      float64
	AreaByCrop       map[string]float64
	AlgorithmUsed    string
	OptimizationTime time.Duration
	IsOptimal        bool
}

// NewMultiFieldOptimizationResult assembles the result from per-field
// schedules, computing global aggregates.
func NewMultiFieldOptimizationResult(optimizationID string, schedules []FieldSchedule, algorithmUsed string, optimizationTime time.Duration, isOptimal bool) MultiFieldOptimizationResult {
	r := MultiFieldOptimizationResult{
		OptimizationID:   optimizationID,
		Schedules:        schedules,
		AlgorithmUsed:    algorithmUsed,
		OptimizationTime: optimizationTime,
		IsOptimal:        isOptimal,
		AreaByCrop:       make(map[string]float64),
	}
	for _, fs := range schedules {
		r.TotalCost += fs.TotalCost
		r.TotalRevenue += fs.TotalRevenue
		r.TotalProfit += fs.TotalProfit
		for _, a := range fs.Allocations {
			r.AreaByCrop[a.Crop.CropID] += a.AreaUsed
		}
	}
	return r
}

// AllAllocations flattens every field schedule's allocations into one slice.
func (r MultiFieldOptimizationResult) AllAllocations() []CropAllocation {
	var all []CropAllocation
	for _, fs := range r.Schedules {
		all = append(all, fs.Allocations...)
	}
	return all
}
