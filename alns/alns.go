// Package alns implements the C9 search driver: hill-climb local search
// when enable_alns is false, full Adaptive Large Neighborhood Search
// (destroy/repair with adaptive operator weights and simulated-annealing
// acceptance) when it is true. Both modes start from the DP solution and
// never return a solution worse than it.
package alns

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/metrics"
	"github.com/oleamind/agroalloc/neighbors"
	"github.com/oleamind/agroalloc/violations"
)

// invariantAreaToleranceFactor is the stricter end-of-run bound spec.md §8
// invariant 2 states (1+1e-6), tighter than violations.Checker's per-move
// areaToleranceFactor (1.01). AssertInvariants checks the final solution
// against it once search finishes.
const invariantAreaToleranceFactor = 1 + 1e-6

// Standard ALNS weight-update multipliers (Ropke & Pisinger), not exposed
// as config knobs since spec.md §3 does not list them among the tunables.
const (
	sigmaNewBest       = 33.0
	sigmaBetterThanCur = 9.0
	sigmaAcceptedWorse = 3.0
	sigmaRejected      = 1.0
	weightSmoothing    = 0.8
)

const (
	removalRandom = "random"
	removalWorst  = "worst"
	repairGreedy  = "greedy"
	repairRegret  = "regret"
)

// Driver runs the local-search / ALNS loop over one field's or the whole
// solution's candidate pool.
type Driver struct {
	checker   *violations.Checker
	generator *neighbors.Generator
	rng       *rand.Rand
	cfg       config.OptimizationConfig
	metrics   *metrics.Metrics
}

// NewDriver constructs a Driver seeded from cfg.RandomSeed so a run is
// reproducible. m may be nil, in which case iteration/acceptance counters
// are simply not recorded.
func NewDriver(checker *violations.Checker, cfg config.OptimizationConfig, m *metrics.Metrics) *Driver {
	return &Driver{
		checker:   checker,
		generator: neighbors.NewGenerator(checker),
		rng:       rand.New(rand.NewSource(cfg.RandomSeed)),
		cfg:       cfg,
		metrics:   m,
	}
}

// TotalProfit sums the profit of every allocation in solution.
func TotalProfit(solution []domain.CropAllocation) float64 {
	var total float64
	for _, a := range solution {
		total += a.Profit
	}
	return total
}

// Run improves initial starting from the DP solution, using hill-climb or
// ALNS depending on cfg.EnableALNS/EnableLocalSearch, polling ctx for
// cooperative cancellation between iterations. It never returns a solution
// with lower total profit than initial (spec.md §8 invariants 9-10).
func (d *Driver) Run(ctx context.Context, initial []domain.CropAllocation, pool []domain.AllocationCandidate) []domain.CropAllocation {
	var final []domain.CropAllocation
	switch {
	case d.cfg.EnableALNS:
		final = d.runALNS(ctx, initial, pool)
	case d.cfg.EnableLocalSearch:
		final = d.runHillClimb(ctx, initial, pool)
	default:
		final = initial
	}
	AssertInvariants(final)
	return final
}

// AssertInvariants re-checks solution's area usage against spec.md §8
// invariant 2's stricter end-of-run tolerance, tighter than the per-move
// feasibility bound violations.Checker enforces during search. It never
// rejects solution — by the time search finishes, a breach here points at
// a latent bug in a move operator's feasibility gate, not a result worth
// discarding — so it only logs.
func AssertInvariants(solution []domain.CropAllocation) {
	for i, a := range solution {
		used := a.AreaUsed
		for j, b := range solution {
			if i == j {
				continue
			}
			if b.Field.FieldID == a.Field.FieldID && b.Overlaps(a) {
				used += b.AreaUsed
			}
		}
		if used > a.Field.AreaSqM*invariantAreaToleranceFactor {
			slog.Warn("alns: area invariant breached",
				"field", a.Field.FieldID, "allocation", a.AllocationID,
				"used", used, "capacity", a.Field.AreaSqM)
		}
	}
}

func (d *Driver) runHillClimb(ctx context.Context, initial []domain.CropAllocation, pool []domain.AllocationCandidate) []domain.CropAllocation {
	current := initial
	currentProfit := TotalProfit(current)
	noImprovement := 0

	for iter := 0; iter < d.cfg.MaxLocalSearchIterations; iter++ {
		select {
		case <-ctx.Done():
			return current
		default:
		}

		if d.metrics != nil {
			d.metrics.RecordSearchIteration("hill_climb")
		}

		moves := d.generator.Generate(current, pool, d.cfg, d.rng)
		bestNeighbor, bestProfit, found := bestStrictlyImproving(moves, currentProfit)
		if !found {
			break
		}

		improvement := bestProfit - currentProfit
		current = bestNeighbor
		currentProfit = bestProfit

		if d.cfg.EnableAdaptiveEarlyStopping {
			if currentProfit > 0 && improvement < d.cfg.ImprovementThresholdRatio*currentProfit {
				noImprovement++
			} else {
				noImprovement = 0
			}
			if noImprovement >= d.cfg.MaxNoImprovement {
				break
			}
		}
	}
	return current
}

func bestStrictlyImproving(moves []neighbors.Move, currentProfit float64) ([]domain.CropAllocation, float64, bool) {
	bestProfit := currentProfit
	var best []domain.CropAllocation
	found := false
	for _, m := range moves {
		p := TotalProfit(m.Solution)
		if p > bestProfit {
			bestProfit = p
			best = m.Solution
			found = true
		}
	}
	return best, bestProfit, found
}

func (d *Driver) runALNS(ctx context.Context, initial []domain.CropAllocation, pool []domain.AllocationCandidate) []domain.CropAllocation {
	current := cloneAllocations(initial)
	currentProfit := TotalProfit(current)
	best := cloneAllocations(current)
	bestProfit := currentProfit

	removalWeights := map[string]float64{removalRandom: 1, removalWorst: 1}
	repairWeights := map[string]float64{repairGreedy: 1, repairRegret: 1}

	for iter := 0; iter < d.cfg.ALNSIterations; iter++ {
		select {
		case <-ctx.Done():
			return best
		default:
		}

		if d.metrics != nil {
			d.metrics.RecordSearchIteration("alns")
		}

		removalOp := chooseWeighted(removalWeights, d.rng)
		repairOp := chooseWeighted(repairWeights, d.rng)

		remaining, removedCount := d.destroy(current, removalOp)
		repaired := d.repair(remaining, pool, removedCount, repairOp)
		profit := TotalProfit(repaired)

		var score float64
		var reason string
		accept := false
		switch {
		case profit > bestProfit:
			score, reason, accept = sigmaNewBest, "new_best", true
		case profit > currentProfit:
			score, reason, accept = sigmaBetterThanCur, "better", true
		default:
			pAccept := d.cfg.ALNSAcceptWorseProbabilityInitial * math.Pow(d.cfg.ALNSCoolingRate, float64(iter))
			if d.rng.Float64() < pAccept {
				score, reason, accept = sigmaAcceptedWorse, "worse", true
			} else {
				score, reason, accept = sigmaRejected, "rejected", false
			}
		}
		if d.metrics != nil {
			d.metrics.RecordAcceptance(reason)
		}

		removalWeights[removalOp] = weightSmoothing*removalWeights[removalOp] + (1-weightSmoothing)*score
		repairWeights[repairOp] = weightSmoothing*repairWeights[repairOp] + (1-weightSmoothing)*score

		if accept {
			current = repaired
			currentProfit = profit
		}
		if profit > bestProfit {
			best = cloneAllocations(repaired)
			bestProfit = profit
		}
	}
	return best
}

// chooseWeighted picks a key from weights proportionally, with a
// deterministic fallback (first key, in sorted order) when every weight
// has decayed to zero or below.
func chooseWeighted(weights map[string]float64, rng *rand.Rand) string {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var total float64
	for _, k := range keys {
		if weights[k] > 0 {
			total += weights[k]
		}
	}
	if total <= 0 {
		return keys[0]
	}

	roll := rng.Float64() * total
	for _, k := range keys {
		if weights[k] <= 0 {
			continue
		}
		roll -= weights[k]
		if roll <= 0 {
			return k
		}
	}
	return keys[len(keys)-1]
}

// destroy removes a fraction of current's allocations (random or worst by
// profit_rate) and returns what remains plus how many were removed.
func (d *Driver) destroy(current []domain.CropAllocation, op string) ([]domain.CropAllocation, int) {
	n := len(current)
	if n == 0 {
		return nil, 0
	}
	count := int(d.cfg.ALNSRemovalRate * float64(n))
	if count < 1 {
		count = 1
	}
	if count > n {
		count = n
	}

	sorted := cloneAllocations(current)
	if op == removalWorst {
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProfitRate < sorted[j].ProfitRate })
	} else {
		d.rng.Shuffle(len(sorted), func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })
	}
	return sorted[count:], count
}

func (d *Driver) repair(remaining []domain.CropAllocation, pool []domain.AllocationCandidate, count int, op string) []domain.CropAllocation {
	if op == repairRegret {
		return d.regretReinsert(remaining, pool, count)
	}
	return d.greedyReinsert(remaining, pool, count)
}

// greedyReinsert fills up to count slots, each time picking the single
// highest-profit feasible candidate from pool not already used this pass.
func (d *Driver) greedyReinsert(remaining []domain.CropAllocation, pool []domain.AllocationCandidate, count int) []domain.CropAllocation {
	solution := cloneAllocations(remaining)
	used := make(map[int]bool)

	for i := 0; i < count; i++ {
		bestIdx := -1
		var bestProfit float64
		for idx, c := range pool {
			if used[idx] {
				continue
			}
			candidateSolution := append(cloneAllocations(solution), c.Promote())
			ok, err := d.fieldFeasible(candidateSolution, c.Field.FieldID)
			if err != nil || !ok {
				continue
			}
			if bestIdx == -1 || c.Profit > bestProfit {
				bestIdx = idx
				bestProfit = c.Profit
			}
		}
		if bestIdx == -1 {
			break
		}
		used[bestIdx] = true
		solution = append(solution, pool[bestIdx].Promote())
	}
	return solution
}

// regretReinsert groups feasible insertions by field and, each round,
// inserts the field whose best candidate most exceeds its second-best —
// the field most urgently needing its top pick before another operation
// claims the slot.
func (d *Driver) regretReinsert(remaining []domain.CropAllocation, pool []domain.AllocationCandidate, count int) []domain.CropAllocation {
	solution := cloneAllocations(remaining)
	excludedFields := make(map[string]bool)

	for i := 0; i < count; i++ {
		byField := make(map[string][]domain.AllocationCandidate)
		for _, c := range pool {
			if excludedFields[c.Field.FieldID] {
				continue
			}
			candidateSolution := append(cloneAllocations(solution), c.Promote())
			ok, err := d.fieldFeasible(candidateSolution, c.Field.FieldID)
			if err != nil || !ok {
				continue
			}
			byField[c.Field.FieldID] = append(byField[c.Field.FieldID], c)
		}
		if len(byField) == 0 {
			break
		}

		var fieldIDs []string
		for id := range byField {
			fieldIDs = append(fieldIDs, id)
		}
		sort.Strings(fieldIDs)

		bestFieldID := ""
		var bestRegret float64 = -1
		var bestCandidate domain.AllocationCandidate
		for _, id := range fieldIDs {
			cands := byField[id]
			sort.Slice(cands, func(i, j int) bool { return cands[i].Profit > cands[j].Profit })
			regret := cands[0].Profit
			if len(cands) > 1 {
				regret = cands[0].Profit - cands[1].Profit
			}
			if regret > bestRegret {
				bestRegret = regret
				bestFieldID = id
				bestCandidate = cands[0]
			}
		}
		if bestFieldID == "" {
			break
		}
		solution = append(solution, bestCandidate.Promote())
		excludedFields[bestFieldID] = true
	}
	return solution
}

// fieldFeasible validates every allocation on fieldID (fallow order) plus
// area and revenue-cap constraints across the whole solution, mirroring
// neighbors.Generator's own feasibility gate.
func (d *Driver) fieldFeasible(solution []domain.CropAllocation, fieldID string) (bool, error) {
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
		found, err := d.checker.Check(a, violations.Context{
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

func cloneAllocations(solution []domain.CropAllocation) []domain.CropAllocation {
	out := make([]domain.CropAllocation, len(solution))
	copy(out, solution)
	return out
}
