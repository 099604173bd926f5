// Package period implements the C4 period optimiser: for one
// (field, crop) pair it simulates every admissible start date inside an
// evaluation window and picks the start that maximises profit.
package period

import (
	"fmt"
	"sort"
	"time"

	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/simulate"
)

// Window is an inclusive evaluation window of candidate start dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// WeatherLookup returns a gap-free weather series beginning at the given
// date and extending to (at least) horizonEnd, as produced by
// weather.Accessor.GetRange.
type WeatherLookup func(from, horizonEnd time.Time) ([]domain.WeatherDay, error)

// Evaluation is one evaluated start date: the raw simulation plus the
// profit-relevant figures the period optimiser layers on top.
type Evaluation struct {
	simulate.Result
	Field      domain.Field
	Crop       domain.Crop
	AreaUsed   float64
	Cost       float64
	Revenue    float64
	HasRevenue bool
	Profit     float64
}

// Result is the ranked outcome of optimising one (field, crop) pair.
type Result struct {
	Evaluations []Evaluation
	Best        Evaluation
	HasBest     bool
}

// Optimize evaluates every day in window as a candidate start, simulating
// growth via simulate.Run and scoring by profit = revenue - cost (or -cost
// when the crop carries no revenue_per_area). horizonEnd bounds how far the
// simulator may look for completion. areaUsed determines cost/revenue
// scale for this (field, crop, quantity) combination.
func Optimize(field domain.Field, profile domain.CropProfile, window Window, horizonEnd time.Time, areaUsed float64, fetchWeather WeatherLookup) (Result, error) {
	if window.End.Before(window.Start) {
		return Result{}, fmt.Errorf("period: evaluation window end %s before start %s", window.End, window.Start)
	}
	baseTemperature := profile.BaseTemperature()

	var evaluations []Evaluation
	for start := window.Start; !start.After(window.End); start = start.AddDate(0, 0, 1) {
		days, err := fetchWeather(start, horizonEnd)
		if err != nil {
			// Insufficient weather aborts only this start's simulation.
			continue
		}
		simResult, err := simulate.Run(profile, days, start, baseTemperature)
		if err != nil {
			continue
		}
		if !simResult.HasCompletionDate {
			continue
		}
		eval := score(field, profile.Crop, simResult, areaUsed)
		evaluations = append(evaluations, eval)
	}

	evaluations = dedupeRedundant(evaluations)

	result := Result{Evaluations: evaluations}
	if len(evaluations) == 0 {
		return result, nil
	}

	best := evaluations[0]
	for _, e := range evaluations[1:] {
		if better(e, best) {
			best = e
		}
	}
	result.Best = best
	result.HasBest = true
	return result, nil
}

func score(field domain.Field, crop domain.Crop, sim simulate.Result, areaUsed float64) Evaluation {
	cost := float64(sim.GrowthDays) * field.DailyFixedCost

	eval := Evaluation{
		Result:   sim,
		Field:    field,
		Crop:     crop,
		AreaUsed: areaUsed,
		Cost:     cost,
	}

	if crop.HasRevenue {
		revenue := areaUsed * crop.RevenuePerArea * sim.YieldFactor
		revenue = crop.CapRevenue(revenue)
		eval.Revenue = revenue
		eval.HasRevenue = true
		eval.Profit = revenue - cost
	} else {
		eval.Profit = -cost
	}
	return eval
}

// better implements the tie-break order from spec.md §4.2: maximise
// profit; ties broken by earlier completion, then shorter growth span.
func better(a, b Evaluation) bool {
	if a.Profit != b.Profit {
		return a.Profit > b.Profit
	}
	if !a.CompletionDate.Equal(b.CompletionDate) {
		return a.CompletionDate.Before(b.CompletionDate)
	}
	return a.GrowthDays < b.GrowthDays
}

// dedupeRedundant collapses starts within 1 day of each other that share
// an identical completion date and near-identical cost, keeping the
// earlier start (spec.md §4.2).
func dedupeRedundant(evals []Evaluation) []Evaluation {
	if len(evals) < 2 {
		return evals
	}
	sorted := make([]Evaluation, len(evals))
	copy(sorted, evals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })

	out := sorted[:0:0]
	out = append(out, sorted[0])
	for _, e := range sorted[1:] {
		last := out[len(out)-1]
		within1Day := e.StartDate.Sub(last.StartDate) <= 24*time.Hour
		sameCompletion := e.CompletionDate.Equal(last.CompletionDate)
		sameCostNoise := absFloat(e.Cost-last.Cost) < 1e-6
		if within1Day && sameCompletion && sameCostNoise {
			continue // redundant; keep the earlier one already in out
		}
		out = append(out, e)
	}
	return out
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
