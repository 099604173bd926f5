// Package candidates implements the C5 candidate generator: it
// cross-products fields × crop varieties × admissible starts × quantity
// levels into the full AllocationCandidate pool, optionally in parallel and
// optionally filtered.
package candidates

import (
	"sort"
	"sync"
	"time"

	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/period"
)

// Accessor is the subset of weather.Accessor the generator needs.
type Accessor interface {
	GetRange(start, end time.Time) ([]domain.WeatherDay, error)
}

// Generate builds the candidate pool for every (field, crop profile) pair
// across [horizonStart, horizonEnd].
func Generate(fields []domain.Field, profiles []domain.CropProfile, accessor Accessor, horizonStart, horizonEnd time.Time, cfg config.OptimizationConfig) []domain.AllocationCandidate {
	type pair struct {
		field   domain.Field
		profile domain.CropProfile
	}
	var pairs []pair
	for _, f := range fields {
		for _, p := range profiles {
			pairs = append(pairs, pair{f, p})
		}
	}

	results := make([][]domain.AllocationCandidate, len(pairs))

	fetch := func(from, horizonEnd time.Time) ([]domain.WeatherDay, error) {
		return accessor.GetRange(from, horizonEnd)
	}

	work := func(i int) {
		p := pairs[i]
		results[i] = candidatesFor(p.field, p.profile, horizonStart, horizonEnd, cfg, fetch)
	}

	if cfg.EnableParallelCandidateGeneration && len(pairs) > 1 {
		var wg sync.WaitGroup
		for i := range pairs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				work(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range pairs {
			work(i)
		}
	}

	var all []domain.AllocationCandidate
	for _, r := range results {
		all = append(all, r...)
	}

	// Stable lexicographic order on (field_id, crop_id, start_date, area_used)
	// per spec.md §5, so a given RNG seed yields an identical trajectory
	// downstream.
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Field.FieldID != b.Field.FieldID {
			return a.Field.FieldID < b.Field.FieldID
		}
		if a.Crop.CropID != b.Crop.CropID {
			return a.Crop.CropID < b.Crop.CropID
		}
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.AreaUsed < b.AreaUsed
	})

	return all
}

func candidatesFor(field domain.Field, profile domain.CropProfile, horizonStart, horizonEnd time.Time, cfg config.OptimizationConfig, fetch period.WeatherLookup) []domain.AllocationCandidate {
	levels := cfg.QuantityLevels
	if len(levels) == 0 {
		levels = []float64{1.0}
	}

	window := period.Window{Start: horizonStart, End: horizonEnd}
	maxQuantity := field.AreaSqM / profile.Crop.AreaPerUnit

	var out []domain.AllocationCandidate
	for _, level := range levels {
		quantity := level * maxQuantity
		areaUsed := quantity * profile.Crop.AreaPerUnit
		if areaUsed > field.AreaSqM {
			areaUsed = field.AreaSqM
		}
		if areaUsed <= 0 {
			continue
		}

		result, err := period.Optimize(field, profile, window, horizonEnd, areaUsed, fetch)
		if err != nil {
			continue
		}
		for _, eval := range result.Evaluations {
			out = append(out, domain.AllocationCandidate{
				Field:          field,
				Crop:           profile.Crop,
				StartDate:      eval.StartDate,
				CompletionDate: eval.CompletionDate,
				GrowthDays:     eval.GrowthDays,
				AccumulatedGDD: eval.AccumulatedGDD,
				AreaUsed:       areaUsed,
				Cost:           eval.Cost,
				Revenue:        eval.Revenue,
				Profit:         eval.Profit,
				ProfitRate:     profitRate(eval.Profit, eval.Cost),
				YieldFactor:    eval.YieldFactor,
			})
		}
	}

	if cfg.EnableCandidateFiltering {
		out = filter(out, cfg)
	}
	return out
}

func profitRate(profit, cost float64) float64 {
	if cost > 0 {
		return profit / cost
	}
	if profit > 0 {
		return profit
	}
	return 0
}

func revenueCostRatio(revenue, cost float64) float64 {
	if cost > 0 {
		return revenue / cost
	}
	if revenue > 0 {
		return revenue
	}
	return 0
}

// filter drops candidates below quality thresholds, then caps the
// remaining group to MaxCandidatesPerFieldCrop by profit_rate descending.
// Since filter is called per (field, crop) group already, this operates
// on a single group's candidates.
func filter(group []domain.AllocationCandidate, cfg config.OptimizationConfig) []domain.AllocationCandidate {
	var kept []domain.AllocationCandidate
	for _, c := range group {
		if cfg.MinProfitRateThreshold != 0 && c.ProfitRate < cfg.MinProfitRateThreshold {
			continue
		}
		if cfg.MinRevenueCostRatio != 0 && revenueCostRatio(c.Revenue, c.Cost) < cfg.MinRevenueCostRatio {
			continue
		}
		kept = append(kept, c)
	}

	if cfg.MaxCandidatesPerFieldCrop > 0 && len(kept) > cfg.MaxCandidatesPerFieldCrop {
		sort.Slice(kept, func(i, j int) bool { return kept[i].ProfitRate > kept[j].ProfitRate })
		kept = kept[:cfg.MaxCandidatesPerFieldCrop]
	}
	return kept
}
