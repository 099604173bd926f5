// Package neighbors implements the C8 neighbourhood move operators: eight
// structural transformations of a solution, each re-validated against
// fallow, overlap and area-capacity constraints before being offered to the
// search driver. Grounded on spec.md §4.6 and on the fallow-respecting
// semantics original_source's neighbor_operations package was missing (see
// original_source/tests/test_usecase/test_services/test_neighbor_operations_fallow.py).
package neighbors

import (
	"math/rand"
	"sort"

	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/violations"
)

// Move is one generated neighbour: the operator that produced it and the
// full resulting solution.
type Move struct {
	Operator string
	Solution []domain.CropAllocation
}

const (
	OpFieldSwap     = "field_swap"
	OpFieldMove     = "field_move"
	OpFieldReplace  = "field_replace"
	OpFieldRemove   = "field_remove"
	OpCropInsert    = "crop_insert"
	OpCropChange    = "crop_change"
	OpPeriodReplace = "period_replace"
	OpAreaAdjust    = "area_adjust"
)

// Generator produces neighbour solutions from a checker shared across every
// operator so fallow/overlap/area rejection is applied consistently.
type Generator struct {
	checker *violations.Checker
}

// NewGenerator constructs a Generator. checker must not be nil.
func NewGenerator(checker *violations.Checker) *Generator {
	return &Generator{checker: checker}
}

// Generate returns the union of every operator's neighbours for solution,
// given the full candidate pool the operators may draw replacements from.
// When cfg.EnableNeighborSampling is set, the result is capped to
// cfg.MaxNeighborsPerIteration uniformly random entries.
func (g *Generator) Generate(solution []domain.CropAllocation, pool []domain.AllocationCandidate, cfg config.OptimizationConfig, rng *rand.Rand) []Move {
	var moves []Move
	moves = append(moves, g.fieldSwap(solution)...)
	moves = append(moves, g.fieldMove(solution, pool)...)
	moves = append(moves, g.fieldReplace(solution, pool)...)
	moves = append(moves, g.fieldRemove(solution)...)
	moves = append(moves, g.cropInsert(solution, pool)...)
	moves = append(moves, g.cropChange(solution, pool)...)
	moves = append(moves, g.periodReplace(solution, pool)...)
	moves = append(moves, g.areaAdjust(solution, cfg)...)

	if cfg.EnableNeighborSampling && cfg.MaxNeighborsPerIteration > 0 && len(moves) > cfg.MaxNeighborsPerIteration {
		if rng == nil {
			rng = rand.New(rand.NewSource(cfg.RandomSeed))
		}
		rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
		moves = moves[:cfg.MaxNeighborsPerIteration]
	}
	return moves
}

// fieldSwap tries, for every pair of allocations on different fields,
// exchanging their fields (dates and crop unchanged).
func (g *Generator) fieldSwap(solution []domain.CropAllocation) []Move {
	var moves []Move
	for i := 0; i < len(solution); i++ {
		for j := i + 1; j < len(solution); j++ {
			if solution[i].Field.FieldID == solution[j].Field.FieldID {
				continue
			}
			candidate := cloneSolution(solution)
			candidate[i] = reassignField(candidate[i], solution[j].Field)
			candidate[j] = reassignField(candidate[j], solution[i].Field)

			ok, err := g.fieldsFeasible(candidate, solution[i].Field.FieldID, solution[j].Field.FieldID)
			if err != nil || !ok {
				continue
			}
			moves = append(moves, Move{Operator: OpFieldSwap, Solution: candidate})
		}
	}
	return moves
}

// fieldMove tries relocating each allocation, unchanged otherwise, onto
// every other field that appears in the candidate pool.
func (g *Generator) fieldMove(solution []domain.CropAllocation, pool []domain.AllocationCandidate) []Move {
	var moves []Move
	fields := distinctFields(pool)
	for i := range solution {
		for _, field := range fields {
			if field.FieldID == solution[i].Field.FieldID {
				continue
			}
			candidate := cloneSolution(solution)
			candidate[i] = reassignField(candidate[i], field)

			ok, err := g.fieldFeasible(candidate, field.FieldID)
			if err != nil || !ok {
				continue
			}
			moves = append(moves, Move{Operator: OpFieldMove, Solution: candidate})
		}
	}
	return moves
}

// fieldReplace swaps an existing allocation out for a same-crop candidate
// on a different field entirely (dates and area come from the candidate).
func (g *Generator) fieldReplace(solution []domain.CropAllocation, pool []domain.AllocationCandidate) []Move {
	var moves []Move
	for i := range solution {
		for _, c := range pool {
			if c.Crop.CropID != solution[i].Crop.CropID {
				continue
			}
			if c.Field.FieldID == solution[i].Field.FieldID {
				continue
			}
			candidate := cloneSolution(solution)
			candidate[i] = c.Promote()

			ok, err := g.fieldFeasible(candidate, c.Field.FieldID)
			if err != nil || !ok {
				continue
			}
			moves = append(moves, Move{Operator: OpFieldReplace, Solution: candidate})
		}
	}
	return moves
}

// fieldRemove deletes one allocation. Removal can never introduce a
// violation, so no re-validation is needed.
func (g *Generator) fieldRemove(solution []domain.CropAllocation) []Move {
	var moves []Move
	for i := range solution {
		candidate := make([]domain.CropAllocation, 0, len(solution)-1)
		candidate = append(candidate, solution[:i]...)
		candidate = append(candidate, solution[i+1:]...)
		moves = append(moves, Move{Operator: OpFieldRemove, Solution: candidate})
	}
	return moves
}

// cropInsert adds a pool candidate to the solution outright.
func (g *Generator) cropInsert(solution []domain.CropAllocation, pool []domain.AllocationCandidate) []Move {
	var moves []Move
	for _, c := range pool {
		candidate := cloneSolution(solution)
		candidate = append(candidate, c.Promote())

		ok, err := g.fieldFeasible(candidate, c.Field.FieldID)
		if err != nil || !ok {
			continue
		}
		moves = append(moves, Move{Operator: OpCropInsert, Solution: candidate})
	}
	return moves
}

// cropChange replaces an allocation's crop with another candidate on the
// same field.
func (g *Generator) cropChange(solution []domain.CropAllocation, pool []domain.AllocationCandidate) []Move {
	var moves []Move
	for i := range solution {
		for _, c := range pool {
			if c.Field.FieldID != solution[i].Field.FieldID {
				continue
			}
			if c.Crop.CropID == solution[i].Crop.CropID {
				continue
			}
			candidate := cloneSolution(solution)
			candidate[i] = c.Promote()

			ok, err := g.fieldFeasible(candidate, c.Field.FieldID)
			if err != nil || !ok {
				continue
			}
			moves = append(moves, Move{Operator: OpCropChange, Solution: candidate})
		}
	}
	return moves
}

// periodReplace swaps an allocation's (start, completion) for another
// candidate's, keeping the field and crop fixed.
func (g *Generator) periodReplace(solution []domain.CropAllocation, pool []domain.AllocationCandidate) []Move {
	var moves []Move
	for i := range solution {
		for _, c := range pool {
			if c.Field.FieldID != solution[i].Field.FieldID || c.Crop.CropID != solution[i].Crop.CropID {
				continue
			}
			if c.StartDate.Equal(solution[i].StartDate) && c.CompletionDate.Equal(solution[i].CompletionDate) {
				continue
			}
			candidate := cloneSolution(solution)
			candidate[i] = c.Promote()

			ok, err := g.fieldFeasible(candidate, c.Field.FieldID)
			if err != nil || !ok {
				continue
			}
			moves = append(moves, Move{Operator: OpPeriodReplace, Solution: candidate})
		}
	}
	return moves
}

// areaAdjust scales an allocation's area_used by one of
// cfg.AreaAdjustmentMultipliers, clamped to the field's capacity, and
// recomputes revenue/profit at the new area.
func (g *Generator) areaAdjust(solution []domain.CropAllocation, cfg config.OptimizationConfig) []Move {
	var moves []Move
	multipliers := cfg.AreaAdjustmentMultipliers
	if len(multipliers) == 0 {
		return nil
	}
	for i := range solution {
		for _, m := range multipliers {
			newArea := solution[i].AreaUsed * m
			if newArea > solution[i].Field.AreaSqM {
				newArea = solution[i].Field.AreaSqM
			}
			if newArea <= 0 || newArea == solution[i].AreaUsed {
				continue
			}
			candidate := cloneSolution(solution)
			candidate[i] = reassignArea(candidate[i], newArea)

			ok, err := g.fieldFeasible(candidate, solution[i].Field.FieldID)
			if err != nil || !ok {
				continue
			}
			moves = append(moves, Move{Operator: OpAreaAdjust, Solution: candidate})
		}
	}
	return moves
}

// fieldFeasible validates every allocation on fieldID (fallow, in
// start-date order) plus area capacity and the revenue cap across the
// whole solution. Per spec.md §9's resolution, the mutating search loop
// enforces the revenue cap as a hard error up front rather than trimming
// it post-hoc the way the DP stage (schedule package) does.
func (g *Generator) fieldFeasible(solution []domain.CropAllocation, fieldID string) (bool, error) {
	onField := allocationsOnField(solution, fieldID)
	sort.Slice(onField, func(i, j int) bool { return onField[i].StartDate.Before(onField[j].StartDate) })

	for i, a := range onField {
		var previous *domain.CropAllocation
		if i > 0 {
			p := onField[i-1]
			previous = &p
		}
		found, err := g.checker.Check(a, violations.Context{
			PreviousAllocation: previous,
			AllAllocations:     solution,
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

// fieldsFeasible validates both fields involved in a two-field move.
func (g *Generator) fieldsFeasible(solution []domain.CropAllocation, fieldA, fieldB string) (bool, error) {
	ok, err := g.fieldFeasible(solution, fieldA)
	if err != nil || !ok {
		return ok, err
	}
	return g.fieldFeasible(solution, fieldB)
}

func allocationsOnField(solution []domain.CropAllocation, fieldID string) []domain.CropAllocation {
	var out []domain.CropAllocation
	for _, a := range solution {
		if a.Field.FieldID == fieldID {
			out = append(out, a)
		}
	}
	return out
}

func distinctFields(pool []domain.AllocationCandidate) []domain.Field {
	seen := make(map[string]bool)
	var fields []domain.Field
	for _, c := range pool {
		if seen[c.Field.FieldID] {
			continue
		}
		seen[c.Field.FieldID] = true
		fields = append(fields, c.Field)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].FieldID < fields[j].FieldID })
	return fields
}

func cloneSolution(solution []domain.CropAllocation) []domain.CropAllocation {
	out := make([]domain.CropAllocation, len(solution))
	copy(out, solution)
	return out
}

// reassignField moves an allocation onto a different field, recomputing
// cost (field daily fixed cost differs) and profit; area and revenue are
// left for the caller/checker to accept or reject.
func reassignField(a domain.CropAllocation, field domain.Field) domain.CropAllocation {
	a.Field = field
	a.Cost = float64(a.GrowthDays) * field.DailyFixedCost
	a.Profit = a.Revenue - a.Cost
	a.ProfitRate = profitRate(a.Profit, a.Cost)
	return a
}

// reassignArea scales an allocation's area and the revenue/profit that
// follow from it; cost is unaffected since it is a function of growth
// duration, not area.
func reassignArea(a domain.CropAllocation, newArea float64) domain.CropAllocation {
	if a.Crop.HasRevenue {
		a.Revenue = a.Crop.CapRevenue(newArea * a.Crop.RevenuePerArea * yieldFactorOrOne(a.YieldFactor))
	}
	a.AreaUsed = newArea
	a.Profit = a.Revenue - a.Cost
	a.ProfitRate = profitRate(a.Profit, a.Cost)
	return a
}

func yieldFactorOrOne(f float64) float64 {
	if f <= 0 {
		return 1
	}
	return f
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
