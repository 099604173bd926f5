// Package engine wires the candidate generator, the interval-scheduling
// DP and the ALNS/local-search driver into the two operations the outer
// adapters (httpapi, cmd/agroalloc) both need: running a full optimisation
// end to end, and evaluating a single field/crop/window in isolation. It
// is the one place that owns gateway loading and metrics recording so
// neither adapter has to duplicate that glue.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/oleamind/agroalloc/agroerr"
	"github.com/oleamind/agroalloc/alns"
	"github.com/oleamind/agroalloc/candidates"
	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/gateway"
	"github.com/oleamind/agroalloc/metrics"
	"github.com/oleamind/agroalloc/period"
	"github.com/oleamind/agroalloc/schedule"
	"github.com/oleamind/agroalloc/violations"
	"github.com/oleamind/agroalloc/weather"
)

// Dependencies bundles the gateways an optimisation run reads from.
type Dependencies struct {
	Fields   gateway.FieldSource
	Profiles gateway.CropProfileSource
	Weather  gateway.WeatherSource
	Rules    gateway.InteractionRuleSource
	Sink     gateway.OptimizationResultSink // optional, may be nil
}

// Clock abstracts wall-clock measurement, so tests can supply a fixed
// sequence instead of depending on real elapsed time.
type Clock func() time.Time

// Run executes one full optimisation: load fields/profiles, generate
// candidates, solve the DP, then optionally improve with local search or
// ALNS per cfg, and save the result if deps.Sink is set. optimizationID
// should already be assigned by the caller (spec.md §6: deterministic
// within a run).
func Run(ctx context.Context, optimizationID string, horizonStart, horizonEnd time.Time, cfg config.OptimizationConfig, deps Dependencies, m *metrics.Metrics, now Clock) (domain.MultiFieldOptimizationResult, error) {
	started := now()

	fields, err := deps.Fields.GetAll()
	if err != nil {
		return domain.MultiFieldOptimizationResult{}, fmt.Errorf("engine: load fields: %w", err)
	}
	profiles, err := deps.Profiles.GetAll()
	if err != nil {
		return domain.MultiFieldOptimizationResult{}, fmt.Errorf("engine: load crop profiles: %w", err)
	}

	// Interaction rules are not loaded here: neither schedule.Solve nor
	// alns.Driver accepts a rule set today, so the DP/search stages only
	// enforce fallow, area and revenue-cap constraints. Interaction rules
	// are enforced where the codebase does wire them through — adjust.Apply
	// and suggest.Suggest, both of which take deps.Rules directly.
	accessor := weather.New(deps.Weather)

	genStart := now()
	pool := candidates.Generate(fields, profiles, accessor, horizonStart, horizonEnd, cfg)
	if m != nil {
		m.RecordCandidateGeneration(len(pool), now().Sub(genStart).Seconds())
	}

	dpStart := now()
	dpSolution := schedule.Solve(pool)
	if m != nil {
		m.RecordDP(alns.TotalProfit(dpSolution), now().Sub(dpStart).Seconds())
	}

	checker := violations.NewChecker(nil)
	driver := alns.NewDriver(checker, cfg, m)
	final := driver.Run(ctx, dpSolution, pool)
	if m != nil {
		m.RecordSearchProfit(alns.TotalProfit(final))
	}

	result := buildResult(optimizationID, fields, final, cfg, now().Sub(started))

	if deps.Sink != nil {
		if err := deps.Sink.Save(result); err != nil {
			return result, fmt.Errorf("engine: save result: %w", err)
		}
	}

	if m != nil {
		outcome := "ok"
		if len(result.AllAllocations()) == 0 && len(fields) > 0 && len(profiles) > 0 {
			outcome = "infeasible"
		}
		m.RecordOptimization(outcome, now().Sub(started).Seconds())
	}

	return result, nil
}

// buildResult groups allocations by field (including fields left empty by
// the solve) into the final MultiFieldOptimizationResult.
func buildResult(optimizationID string, fields []domain.Field, allocations []domain.CropAllocation, cfg config.OptimizationConfig, elapsed time.Duration) domain.MultiFieldOptimizationResult {
	byField := make(map[string][]domain.CropAllocation)
	for _, a := range allocations {
		byField[a.Field.FieldID] = append(byField[a.Field.FieldID], a)
	}

	algorithm := "dp"
	switch {
	case cfg.EnableALNS:
		algorithm = "alns"
	case cfg.EnableLocalSearch:
		algorithm = "hill_climb"
	}

	schedules := make([]domain.FieldSchedule, 0, len(fields))
	for _, f := range fields {
		schedules = append(schedules, domain.NewFieldSchedule(f, byField[f.FieldID]))
	}

	isOptimal := algorithm == "dp"
	return domain.NewMultiFieldOptimizationResult(optimizationID, schedules, algorithm, elapsed, isOptimal)
}

// GenerateCandidates loads every field/profile and runs the candidate
// generator over [horizonStart, horizonEnd], the thin wrapper behind
// `optimize candidates`.
func GenerateCandidates(horizonStart, horizonEnd time.Time, cfg config.OptimizationConfig, deps Dependencies) ([]domain.AllocationCandidate, error) {
	fields, err := deps.Fields.GetAll()
	if err != nil {
		return nil, fmt.Errorf("engine: load fields: %w", err)
	}
	profiles, err := deps.Profiles.GetAll()
	if err != nil {
		return nil, fmt.Errorf("engine: load crop profiles: %w", err)
	}
	accessor := weather.New(deps.Weather)
	return candidates.Generate(fields, profiles, accessor, horizonStart, horizonEnd, cfg), nil
}

// EvaluatePeriodFor resolves fieldID and cropID/variety through deps and
// runs the period optimiser over window, bounding completion at
// horizonEnd and evaluating the given areaUsed.
func EvaluatePeriodFor(fieldID, cropID, variety string, window period.Window, horizonEnd time.Time, areaUsed float64, deps Dependencies) (period.Result, error) {
	field, ok, err := deps.Fields.Get(fieldID)
	if err != nil {
		return period.Result{}, fmt.Errorf("engine: resolve field %s: %w", fieldID, err)
	}
	if !ok {
		return period.Result{}, fmt.Errorf("%w: field %s not found", agroerr.ErrValidation, fieldID)
	}

	profile, ok, err := deps.Profiles.Get(cropID, variety)
	if err != nil {
		return period.Result{}, fmt.Errorf("engine: resolve crop profile %s/%s: %w", cropID, variety, err)
	}
	if !ok {
		return period.Result{}, fmt.Errorf("%w: crop profile %s/%s not found", agroerr.ErrValidation, cropID, variety)
	}

	accessor := weather.New(deps.Weather)
	fetch := func(from, horizonEnd time.Time) ([]domain.WeatherDay, error) {
		return accessor.GetRange(from, horizonEnd)
	}

	return period.Optimize(field, profile, window, horizonEnd, areaUsed, fetch)
}

// WallClock is the production Clock, reading real time.
func WallClock() time.Time { return time.Now() }

// KindOf exposes agroerr.KindOf for adapters that only import engine.
func KindOf(err error) agroerr.Kind { return agroerr.KindOf(err) }
