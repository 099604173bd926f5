// Package simulate implements the C3 growth simulator: given a crop
// profile and a day-by-day weather series starting at a candidate start
// date, it accumulates growing-degree-days and daily stress impacts until
// the crop's thermal requirement is met or the horizon runs out.
package simulate

import (
	"fmt"
	"time"

	"github.com/oleamind/agroalloc/agroerr"
	"github.com/oleamind/agroalloc/domain"
)

// Result is the outcome of simulating one candidate start date.
type Result struct {
	StartDate time.Time

	CompletionDate    time.Time
	HasCompletionDate bool

	EarliestHarvestDate    time.Time
	HasEarliestHarvestDate bool

	GrowthDays     int
	AccumulatedGDD float64
	YieldFactor    float64
}

// Run simulates growth from startDate using days, a sorted, gap-free
// weather series whose first element's date equals startDate and which
// extends at least to the evaluation horizon. baseTemperature is the GDD
// base the caller resolved (spec.md §4.1: "defaults to first stage's" —
// resolving that default is the period optimiser's job, not this one's).
//
// Returns agroerr.ErrInsufficientWeather if days is empty or doesn't start
// at startDate.
func Run(profile domain.CropProfile, days []domain.WeatherDay, startDate time.Time, baseTemperature float64) (Result, error) {
	if len(days) == 0 {
		return Result{}, fmt.Errorf("%w: no weather days supplied for simulation starting %s", agroerr.ErrInsufficientWeather, startDate)
	}
	if !sameDay(days[0].Date, startDate) {
		return Result{}, fmt.Errorf("%w: weather series must start at the candidate start date %s", agroerr.ErrInsufficientWeather, startDate)
	}

	totalRequiredGDD := profile.TotalRequiredGDD()
	finalStage := profile.FinalStage()

	result := Result{StartDate: startDate}
	acc := domain.NewYieldImpactAccumulator()

	var accumulatedGDD float64
	for i, day := range days {
		tMean := day.TMean
		if !day.HasTMean {
			tMean = day.TMin + (day.TMax-day.TMin)/2
		}

		dailyGDD := tMean - baseTemperature
		if dailyGDD < 0 {
			dailyGDD = 0
		}
		accumulatedGDD += dailyGDD

		stage := profile.StageAt(accumulatedGDD)
		applyStageStress(acc, stage.Temperature, day)

		if finalStage.Thermal.HasHarvestStart && !result.HasEarliestHarvestDate && finalStage.Thermal.IsHarvestStarted(accumulatedGDD) {
			result.EarliestHarvestDate = day.Date
			result.HasEarliestHarvestDate = true
		}

		if accumulatedGDD >= totalRequiredGDD {
			result.CompletionDate = day.Date
			result.HasCompletionDate = true
			result.GrowthDays = i + 1
			result.AccumulatedGDD = accumulatedGDD
			result.YieldFactor = acc.Factor()
			return result, nil
		}
	}

	// Horizon exhausted without reaching the thermal requirement: infeasible
	// for this start date, not an error (spec.md §7).
	result.AccumulatedGDD = accumulatedGDD
	result.YieldFactor = acc.Factor()
	return result, nil
}

func applyStageStress(acc *domain.YieldImpactAccumulator, profile domain.TemperatureProfile, day domain.WeatherDay) {
	if day.HasTMax && profile.IsHighTempStress(day.TMax) {
		acc.Apply(profile.HighTempDailyImpact)
	}
	if day.HasTMean && profile.IsLowTempStress(day.TMean) {
		acc.Apply(profile.LowTempDailyImpact)
	}
	if day.HasTMin && profile.IsFrostRisk(day.TMin) {
		acc.Apply(profile.FrostDailyImpact)
	}
	if day.HasTMax && profile.IsSterilityRisk(day.TMax) {
		acc.Apply(profile.SterilityDailyImpact)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
