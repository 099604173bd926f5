// Package suggest implements the C11 candidate-suggestion interactor: for
// a single target crop, find the most profitable insertable slot on each
// field of an existing solution, honouring fallow against that field's
// current allocations and its remaining area capacity. Unlike adjust, this
// never mutates a solution — it only proposes MoveInstructions a caller may
// later hand to adjust.Apply.
package suggest

import (
	"fmt"
	"sort"
	"time"

	"github.com/oleamind/agroalloc/agroerr"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/gateway"
	"github.com/oleamind/agroalloc/period"
	"github.com/oleamind/agroalloc/violations"
	"github.com/oleamind/agroalloc/weather"
)

// Dependencies bundles the gateways and checker Suggest needs.
type Dependencies struct {
	Fields   gateway.FieldSource
	Profiles gateway.CropProfileSource
	Weather  gateway.WeatherSource
	Rules    gateway.InteractionRuleSource
	Checker  *violations.Checker
}

// Suggestion is one field's best insertion opportunity for the requested
// crop, expressed as a ready-to-apply MoveInstruction.
type Suggestion struct {
	FieldID                string
	Instruction            domain.MoveInstruction
	ExpectedAreaUsed       float64
	ExpectedProfit         float64
	ExpectedCompletionDate time.Time
}

// Suggest evaluates every start date in window (bounded for completion by
// horizonEnd) on every field the caller's gateway knows about, and returns
// at most one Suggestion per field: the feasible slot with the highest
// marginal profit. Fields already fully used, or with no feasible slot in
// window, are simply omitted — this is not an error.
func Suggest(result domain.MultiFieldOptimizationResult, cropID string, window period.Window, horizonEnd time.Time, deps Dependencies) ([]Suggestion, error) {
	profile, ok, err := deps.Profiles.Get(cropID, "")
	if err != nil {
		return nil, fmt.Errorf("suggest: resolve crop profile %s: %w", cropID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: crop %s not found", agroerr.ErrValidation, cropID)
	}

	fields, err := deps.Fields.GetAll()
	if err != nil {
		return nil, fmt.Errorf("suggest: list fields: %w", err)
	}
	rules, err := rulesOf(deps.Rules)
	if err != nil {
		return nil, fmt.Errorf("suggest: load interaction rules: %w", err)
	}

	existingByField := make(map[string][]domain.CropAllocation)
	for _, a := range result.AllAllocations() {
		existingByField[a.Field.FieldID] = append(existingByField[a.Field.FieldID], a)
	}

	accessor := weather.New(deps.Weather)
	fetch := func(from, horizonEnd time.Time) ([]domain.WeatherDay, error) {
		return accessor.GetRange(from, horizonEnd)
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].FieldID < fields[j].FieldID })

	var suggestions []Suggestion
	for _, field := range fields {
		existing := existingByField[field.FieldID]

		// Only allocations that could actually coexist with a trial insertion
		// somewhere in [window.Start, horizonEnd) count against the budget;
		// an allocation entirely outside that span never shares a calendar
		// day with the candidate, so it must not shrink its area headroom.
		var used float64
		for _, a := range existing {
			if a.StartDate.Before(horizonEnd) && window.Start.Before(a.CompletionDate) {
				used += a.AreaUsed
			}
		}
		remaining := field.AreaSqM - used
		if remaining <= 0 {
			continue
		}

		evalResult, err := period.Optimize(field, profile, window, horizonEnd, remaining, fetch)
		if err != nil {
			return nil, fmt.Errorf("suggest: evaluate field %s: %w", field.FieldID, err)
		}
		if len(evalResult.Evaluations) == 0 {
			continue
		}

		// Evaluations already come sorted by start date (period.Optimize);
		// a stable sort by profit descending keeps the earliest start as the
		// tie-break among equally profitable slots.
		evals := append([]period.Evaluation{}, evalResult.Evaluations...)
		sort.SliceStable(evals, func(i, j int) bool { return evals[i].Profit > evals[j].Profit })

		for _, eval := range evals {
			trial := domain.AllocationCandidate{
				Field:          field,
				Crop:           profile.Crop,
				StartDate:      eval.StartDate,
				CompletionDate: eval.CompletionDate,
				GrowthDays:     eval.GrowthDays,
				AccumulatedGDD: eval.AccumulatedGDD,
				AreaUsed:       remaining,
				Cost:           eval.Cost,
				Revenue:        eval.Revenue,
				Profit:         eval.Profit,
				YieldFactor:    eval.YieldFactor,
			}.Promote()

			feasible, err := feasibleInsertion(deps.Checker, existing, trial, rules)
			if err != nil {
				return nil, fmt.Errorf("suggest: check field %s: %w", field.FieldID, err)
			}
			if !feasible {
				continue
			}

			suggestions = append(suggestions, Suggestion{
				FieldID: field.FieldID,
				Instruction: domain.MoveInstruction{
					Action:         domain.MoveActionInsert,
					ToFieldID:      field.FieldID,
					HasToFieldID:   true,
					ToCropID:       cropID,
					HasToCropID:    true,
					ToStartDate:    eval.StartDate,
					HasToStartDate: true,
					ToAreaUsed:     remaining,
					HasToAreaUsed:  true,
				},
				ExpectedAreaUsed:       remaining,
				ExpectedProfit:         eval.Profit,
				ExpectedCompletionDate: eval.CompletionDate,
			})
			break
		}
	}

	return suggestions, nil
}

// feasibleInsertion re-validates every allocation that would sit on the
// field once trial is inserted (fallow against both its predecessor and
// successor), plus area and revenue-cap constraints across the combined
// solution. Checking the whole sequence, not just trial, matters because
// inserting between two existing allocations can break the next one's
// fallow boundary against trial's new completion date.
func feasibleInsertion(checker *violations.Checker, existing []domain.CropAllocation, trial domain.CropAllocation, rules []domain.InteractionRule) (bool, error) {
	onField := append(append([]domain.CropAllocation{}, existing...), trial)
	sort.Slice(onField, func(i, j int) bool { return onField[i].StartDate.Before(onField[j].StartDate) })

	for i, a := range onField {
		var previous *domain.CropAllocation
		if i > 0 {
			p := onField[i-1]
			previous = &p
		}
		found, err := checker.Check(a, violations.Context{
			PreviousAllocation: previous,
			AllAllocations:     onField,
			InteractionRules:   rules,
			EnforceRevenueCap:  true,
		})
		if err != nil {
			return false, err
		}
		if !violations.IsFeasible(found) {
			return false, nil
		}
	}
	return true, nil
}

func rulesOf(source gateway.InteractionRuleSource) ([]domain.InteractionRule, error) {
	if source == nil {
		return nil, nil
	}
	return source.GetRules()
}
