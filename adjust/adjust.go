// Package adjust implements the C10 adjust interactor: it replays a
// caller-supplied list of MoveInstructions against an existing
// MultiFieldOptimizationResult, one at a time and in order, re-simulating
// and re-checking each touched allocation rather than re-running ALNS.
// Every instruction either lands in applied_moves or rejected_moves; a
// rejection never aborts the remaining instructions.
package adjust

import (
	"fmt"
	"sort"
	"time"

	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/gateway"
	"github.com/oleamind/agroalloc/simulate"
	"github.com/oleamind/agroalloc/violations"
	"github.com/oleamind/agroalloc/weather"
)

// Dependencies bundles the gateways and checker Apply needs to resolve and
// re-validate touched allocations.
type Dependencies struct {
	Fields   gateway.FieldSource
	Profiles gateway.CropProfileSource
	Weather  gateway.WeatherSource
	Rules    gateway.InteractionRuleSource
	Checker  *violations.Checker
}

// AppliedMove records one instruction that took effect, paired with the
// allocation state after it was applied (for REMOVE, the allocation that
// was removed).
type AppliedMove struct {
	Instruction domain.MoveInstruction
	Allocation  domain.CropAllocation
}

// RejectedMove records one instruction that could not be applied, and why.
type RejectedMove struct {
	Instruction domain.MoveInstruction
	Reason      string
}

// Outcome is the result of replaying a batch of instructions.
type Outcome struct {
	Result   domain.MultiFieldOptimizationResult
	Applied  []AppliedMove
	Rejected []RejectedMove
}

// Apply replays instructions in order against result's working solution.
// horizonEnd bounds how far the simulator may look for completion when an
// instruction changes an allocation's start date. Constraint violations
// during a single instruction are recovered locally (recorded as a
// RejectedMove); only a gateway failure (field/profile/weather lookup
// erroring out, as opposed to returning "not found") propagates, since that
// indicates the adapter itself is broken rather than the instruction being
// infeasible.
func Apply(result domain.MultiFieldOptimizationResult, instructions []domain.MoveInstruction, horizonEnd time.Time, deps Dependencies) (Outcome, error) {
	rules, err := rulesOf(deps.Rules)
	if err != nil {
		return Outcome{}, fmt.Errorf("adjust: load interaction rules: %w", err)
	}
	accessor := weather.New(deps.Weather)

	working := result.AllAllocations()
	var applied []AppliedMove
	var rejected []RejectedMove

	for _, instr := range instructions {
		switch instr.Action {
		case domain.MoveActionRemove:
			idx := indexOfAllocation(working, instr.AllocationID)
			if idx < 0 {
				rejected = append(rejected, RejectedMove{instr, "allocation not found"})
				continue
			}
			removed := working[idx]
			working = append(append([]domain.CropAllocation{}, working[:idx]...), working[idx+1:]...)
			applied = append(applied, AppliedMove{Instruction: instr, Allocation: removed})

		case domain.MoveActionMove:
			updated, reason, err := applyMove(working, instr, horizonEnd, deps, accessor, rules)
			if err != nil {
				return Outcome{}, err
			}
			if reason != "" {
				rejected = append(rejected, RejectedMove{instr, reason})
				continue
			}
			idx := indexOfAllocation(working, instr.AllocationID)
			working[idx] = updated
			applied = append(applied, AppliedMove{Instruction: instr, Allocation: updated})

		case domain.MoveActionInsert:
			inserted, reason, err := applyInsert(working, instr, horizonEnd, deps, accessor, rules)
			if err != nil {
				return Outcome{}, err
			}
			if reason != "" {
				rejected = append(rejected, RejectedMove{instr, reason})
				continue
			}
			working = append(working, inserted)
			applied = append(applied, AppliedMove{Instruction: instr, Allocation: inserted})

		default:
			rejected = append(rejected, RejectedMove{instr, fmt.Sprintf("unknown move action %q", instr.Action)})
		}
	}

	return Outcome{
		Result:   rebuild(result, working),
		Applied:  applied,
		Rejected: rejected,
	}, nil
}

func applyMove(working []domain.CropAllocation, instr domain.MoveInstruction, horizonEnd time.Time, deps Dependencies, accessor *weather.Accessor, rules []domain.InteractionRule) (domain.CropAllocation, string, error) {
	idx := indexOfAllocation(working, instr.AllocationID)
	if idx < 0 {
		return domain.CropAllocation{}, "allocation not found", nil
	}
	existing := working[idx]

	field := existing.Field
	if instr.HasToFieldID && instr.ToFieldID != existing.Field.FieldID {
		f, ok, err := deps.Fields.Get(instr.ToFieldID)
		if err != nil {
			return domain.CropAllocation{}, "", fmt.Errorf("adjust: resolve field %s: %w", instr.ToFieldID, err)
		}
		if !ok {
			return domain.CropAllocation{}, fmt.Sprintf("field %s not found", instr.ToFieldID), nil
		}
		field = f
	}

	startDate := existing.StartDate
	if instr.HasToStartDate {
		startDate = instr.ToStartDate
	}

	areaUsed := existing.AreaUsed
	if instr.HasToAreaUsed {
		areaUsed = instr.ToAreaUsed
	}
	if areaUsed > field.AreaSqM {
		areaUsed = field.AreaSqM
	}

	profile, ok, err := deps.Profiles.Get(existing.Crop.CropID, existing.Crop.Variety)
	if err != nil {
		return domain.CropAllocation{}, "", fmt.Errorf("adjust: resolve crop profile %s: %w", existing.Crop.CropID, err)
	}
	if !ok {
		return domain.CropAllocation{}, fmt.Sprintf("crop profile %s not found", existing.Crop.CropID), nil
	}

	days, err := accessor.GetRange(startDate, horizonEnd)
	if err != nil {
		return domain.CropAllocation{}, fmt.Sprintf("insufficient weather data from %s: %v", startDate.Format("2006-01-02"), err), nil
	}
	sim, err := simulate.Run(profile, days, startDate, profile.BaseTemperature())
	if err != nil {
		return domain.CropAllocation{}, fmt.Sprintf("simulation failed: %v", err), nil
	}
	if !sim.HasCompletionDate {
		return domain.CropAllocation{}, "crop does not reach maturity within the evaluation horizon at the requested start date", nil
	}

	candidate := domain.AllocationCandidate{
		Field:          field,
		Crop:           existing.Crop,
		StartDate:      startDate,
		CompletionDate: sim.CompletionDate,
		GrowthDays:     sim.GrowthDays,
		AccumulatedGDD: sim.AccumulatedGDD,
		AreaUsed:       areaUsed,
		YieldFactor:    sim.YieldFactor,
	}
	score(&candidate)

	updated := existing
	updated.Field = field
	updated.StartDate = candidate.StartDate
	updated.CompletionDate = candidate.CompletionDate
	updated.GrowthDays = candidate.GrowthDays
	updated.AccumulatedGDD = candidate.AccumulatedGDD
	updated.AreaUsed = candidate.AreaUsed
	updated.Cost = candidate.Cost
	updated.Revenue = candidate.Revenue
	updated.Profit = candidate.Profit
	updated.ProfitRate = candidate.ProfitRate
	updated.YieldFactor = candidate.YieldFactor

	rest := withoutIndex(working, idx)
	rest = append(rest, updated)
	ok, reason, err := feasible(deps.Checker, rest, updated.Field.FieldID, rules)
	if err != nil {
		return domain.CropAllocation{}, "", err
	}
	if !ok {
		return domain.CropAllocation{}, reason, nil
	}
	return updated, "", nil
}

func applyInsert(working []domain.CropAllocation, instr domain.MoveInstruction, horizonEnd time.Time, deps Dependencies, accessor *weather.Accessor, rules []domain.InteractionRule) (domain.CropAllocation, string, error) {
	if !instr.HasToFieldID || !instr.HasToCropID || !instr.HasToStartDate {
		return domain.CropAllocation{}, "insert requires a target field, crop and start date", nil
	}

	field, ok, err := deps.Fields.Get(instr.ToFieldID)
	if err != nil {
		return domain.CropAllocation{}, "", fmt.Errorf("adjust: resolve field %s: %w", instr.ToFieldID, err)
	}
	if !ok {
		return domain.CropAllocation{}, fmt.Sprintf("field %s not found", instr.ToFieldID), nil
	}

	profile, ok, err := deps.Profiles.Get(instr.ToCropID, "")
	if err != nil {
		return domain.CropAllocation{}, "", fmt.Errorf("adjust: resolve crop profile %s: %w", instr.ToCropID, err)
	}
	if !ok {
		return domain.CropAllocation{}, fmt.Sprintf("crop profile %s not found", instr.ToCropID), nil
	}

	areaUsed := instr.ToAreaUsed
	if !instr.HasToAreaUsed || areaUsed <= 0 {
		areaUsed = field.AreaSqM
	}
	if areaUsed > field.AreaSqM {
		areaUsed = field.AreaSqM
	}

	days, err := accessor.GetRange(instr.ToStartDate, horizonEnd)
	if err != nil {
		return domain.CropAllocation{}, fmt.Sprintf("insufficient weather data from %s: %v", instr.ToStartDate.Format("2006-01-02"), err), nil
	}
	sim, err := simulate.Run(profile, days, instr.ToStartDate, profile.BaseTemperature())
	if err != nil {
		return domain.CropAllocation{}, fmt.Sprintf("simulation failed: %v", err), nil
	}
	if !sim.HasCompletionDate {
		return domain.CropAllocation{}, "crop does not reach maturity within the evaluation horizon at the requested start date", nil
	}

	candidate := domain.AllocationCandidate{
		Field:          field,
		Crop:           profile.Crop,
		StartDate:      instr.ToStartDate,
		CompletionDate: sim.CompletionDate,
		GrowthDays:     sim.GrowthDays,
		AccumulatedGDD: sim.AccumulatedGDD,
		AreaUsed:       areaUsed,
		YieldFactor:    sim.YieldFactor,
	}
	score(&candidate)

	inserted := candidate.Promote()
	rest := append(append([]domain.CropAllocation{}, working...), inserted)
	ok, reason, err := feasible(deps.Checker, rest, field.FieldID, rules)
	if err != nil {
		return domain.CropAllocation{}, "", err
	}
	if !ok {
		return domain.CropAllocation{}, reason, nil
	}
	return inserted, "", nil
}

// score fills cost/revenue/profit/profit_rate on candidate, the same way
// period.Optimize scores a freshly simulated start date.
func score(candidate *domain.AllocationCandidate) {
	candidate.Cost = float64(candidate.GrowthDays) * candidate.Field.DailyFixedCost
	if candidate.Crop.HasRevenue {
		revenue := candidate.AreaUsed * candidate.Crop.RevenuePerArea * candidate.YieldFactor
		candidate.Revenue = candidate.Crop.CapRevenue(revenue)
		candidate.Profit = candidate.Revenue - candidate.Cost
	} else {
		candidate.Profit = -candidate.Cost
	}
	if candidate.Cost > 0 {
		candidate.ProfitRate = candidate.Profit / candidate.Cost
	} else if candidate.Profit > 0 {
		candidate.ProfitRate = candidate.Profit
	}
}

// feasible re-validates every allocation on fieldID (in start-date order)
// plus the whole-solution area and revenue-cap constraints, mirroring
// neighbors.Generator's gate so a manual adjustment can never silently
// break what the automated search already enforces.
func feasible(checker *violations.Checker, solution []domain.CropAllocation, fieldID string, rules []domain.InteractionRule) (bool, string, error) {
	var onField []domain.CropAllocation
	for _, a := range solution {
		if a.Field.FieldID == fieldID {
			onField = append(onField, a)
		}
	}
	sort.Slice(onField, func(i, j int) bool { return onField[i].StartDate.Before(onField[j].StartDate) })

	for i, a := range onField {
		var previous *domain.CropAllocation
		if i > 0 {
			p := onField[i-1]
			previous = &p
		}
		found, err := checker.Check(a, violations.Context{
			PreviousAllocation: previous,
			AllAllocations:     solution,
			InteractionRules:   rules,
			EnforceRevenueCap:  true,
		})
		if err != nil {
			return false, "", fmt.Errorf("adjust: check feasibility: %w", err)
		}
		if !violations.IsFeasible(found) {
			return false, firstErrorMessage(found), nil
		}
	}
	return true, "", nil
}

func firstErrorMessage(found []domain.Violation) string {
	for _, v := range found {
		if v.IsError() {
			return v.Message
		}
	}
	return "constraint violated"
}

func rulesOf(source gateway.InteractionRuleSource) ([]domain.InteractionRule, error) {
	if source == nil {
		return nil, nil
	}
	return source.GetRules()
}

func indexOfAllocation(allocations []domain.CropAllocation, id string) int {
	for i, a := range allocations {
		if a.AllocationID == id {
			return i
		}
	}
	return -1
}

func withoutIndex(allocations []domain.CropAllocation, idx int) []domain.CropAllocation {
	out := make([]domain.CropAllocation, 0, len(allocations)-1)
	out = append(out, allocations[:idx]...)
	out = append(out, allocations[idx+1:]...)
	return out
}

// rebuild regroups working's allocations into field schedules, preserving
// each allocation's own Field value, and recomputes the result's aggregates.
func rebuild(orig domain.MultiFieldOptimizationResult, working []domain.CropAllocation) domain.MultiFieldOptimizationResult {
	byField := make(map[string][]domain.CropAllocation)
	fieldOf := make(map[string]domain.Field)
	for _, a := range working {
		byField[a.Field.FieldID] = append(byField[a.Field.FieldID], a)
		fieldOf[a.Field.FieldID] = a.Field
	}
	// Preserve every field the original result knew about, even ones that
	// lost all their allocations, so an all-REMOVE batch doesn't drop a
	// field from the schedule list entirely.
	for _, fs := range orig.Schedules {
		if _, ok := fieldOf[fs.Field.FieldID]; !ok {
			fieldOf[fs.Field.FieldID] = fs.Field
			byField[fs.Field.FieldID] = nil
		}
	}

	fieldIDs := make([]string, 0, len(fieldOf))
	for id := range fieldOf {
		fieldIDs = append(fieldIDs, id)
	}
	sort.Strings(fieldIDs)

	schedules := make([]domain.FieldSchedule, 0, len(fieldIDs))
	for _, id := range fieldIDs {
		schedules = append(schedules, domain.NewFieldSchedule(fieldOf[id], byField[id]))
	}

	return domain.NewMultiFieldOptimizationResult(orig.OptimizationID, schedules, orig.AlgorithmUsed, orig.OptimizationTime, orig.IsOptimal)
}
