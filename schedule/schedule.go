// Package schedule implements the C7 interval-scheduling dynamic program:
// per field, the maximum-profit subset of non-overlapping (fallow-respecting)
// candidates, assembled into the initial global solution.
package schedule

import (
	"sort"

	"github.com/oleamind/agroalloc/domain"
)

// FieldResult is one field's optimal weighted-interval-scheduling solution.
type FieldResult struct {
	Allocations []domain.CropAllocation
	TotalProfit float64
}

// SolveField runs the DP over candidates restricted to a single field.
// Candidates for other fields in the slice are ignored by the caller's
// responsibility — callers normally pre-group by field via Solve.
func SolveField(candidates []domain.AllocationCandidate) FieldResult {
	sorted := sortForDP(candidates)
	n := len(sorted)
	if n == 0 {
		return FieldResult{}
	}

	pred := make([]int, n)
	for i := range sorted {
		pred[i] = predecessorIndex(sorted, i)
	}

	profitUpTo := make([]float64, n+1)
	include := make([]bool, n)
	for i := 0; i < n; i++ {
		withCandidate := sorted[i].Profit + profitUpTo[pred[i]]
		without := profitUpTo[i]
		if withCandidate >= without {
			profitUpTo[i+1] = withCandidate
			include[i] = true
		} else {
			profitUpTo[i+1] = without
			include[i] = false
		}
	}

	var selected []domain.AllocationCandidate
	for i := n; i > 0; {
		if include[i-1] {
			selected = append(selected, sorted[i-1])
			i = pred[i-1]
		} else {
			i--
		}
	}
	// selected was built back-to-front; restore chronological order.
	for l, r := 0, len(selected)-1; l < r; l, r = l+1, r-1 {
		selected[l], selected[r] = selected[r], selected[l]
	}

	allocations := make([]domain.CropAllocation, len(selected))
	for i, c := range selected {
		allocations[i] = c.Promote()
	}

	return FieldResult{Allocations: allocations, TotalProfit: profitUpTo[n]}
}

// Solve groups candidates by field, runs SolveField per field, and applies
// the post-hoc max_revenue greedy trim across the assembled global
// solution (spec.md §4.4, §9 open question 3 — this stage's enforcement
// stays post-hoc; the search stage tightens it up front instead).
func Solve(candidates []domain.AllocationCandidate) []domain.CropAllocation {
	byField := make(map[string][]domain.AllocationCandidate)
	var fieldOrder []string
	for _, c := range candidates {
		if _, ok := byField[c.Field.FieldID]; !ok {
			fieldOrder = append(fieldOrder, c.Field.FieldID)
		}
		byField[c.Field.FieldID] = append(byField[c.Field.FieldID], c)
	}
	sort.Strings(fieldOrder)

	var all []domain.CropAllocation
	for _, fieldID := range fieldOrder {
		result := SolveField(byField[fieldID])
		all = append(all, result.Allocations...)
	}
	return trimToRevenueCap(all)
}

// predecessorIndex returns the largest k in [0, i] such that k == 0 or
// sorted[k-1]'s completion date plus the field's fallow period does not
// exceed sorted[i]'s start date. sorted must be ordered by completion date
// ascending, which makes compatibility monotonic in k so a binary search
// applies (the classical weighted-interval-scheduling predecessor).
func predecessorIndex(sorted []domain.AllocationCandidate, i int) int {
	target := sorted[i].StartDate
	compatible := func(k int) bool {
		if k == 0 {
			return true
		}
		required := sorted[k-1].CompletionDate.AddDate(0, 0, sorted[i].Field.FallowPeriodDays)
		return !required.After(target)
	}
	firstIncompatible := sort.Search(i+1, func(k int) bool { return !compatible(k) })
	return firstIncompatible - 1
}

// sortForDP returns candidates ordered by completion date ascending, then
// lexicographically by (field_id, crop_id, start_date, area_used) so ties
// resolve deterministically per spec.md §5.
func sortForDP(candidates []domain.AllocationCandidate) []domain.AllocationCandidate {
	sorted := make([]domain.AllocationCandidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.CompletionDate.Equal(b.CompletionDate) {
			return a.CompletionDate.Before(b.CompletionDate)
		}
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
	return sorted
}

// trimToRevenueCap removes, for each crop with a max_revenue cap, the
// least-profit allocation of that crop repeatedly until the crop's total
// revenue across the whole solution no longer exceeds the cap. Grounded on
// original_source's violation_checker_service.py description of the
// post-hoc greedy trim.
func trimToRevenueCap(allocations []domain.CropAllocation) []domain.CropAllocation {
	byCrop := make(map[string][]int)
	for i, a := range allocations {
		if a.Crop.HasMaxRevenue {
			byCrop[a.Crop.CropID] = append(byCrop[a.Crop.CropID], i)
		}
	}

	removed := make(map[int]bool)
	var cropIDs []string
	for cropID := range byCrop {
		cropIDs = append(cropIDs, cropID)
	}
	sort.Strings(cropIDs)

	for _, cropID := range cropIDs {
		idxs := byCrop[cropID]
		limit := allocations[idxs[0]].Crop.MaxRevenue
		total := 0.0
		for _, idx := range idxs {
			total += allocations[idx].Revenue
		}
		for total > limit {
			leastIdx := -1
			for _, idx := range idxs {
				if removed[idx] {
					continue
				}
				if leastIdx == -1 || allocations[idx].Profit < allocations[leastIdx].Profit {
					leastIdx = idx
				}
			}
			if leastIdx == -1 {
				break
			}
			removed[leastIdx] = true
			total -= allocations[leastIdx].Revenue
		}
	}

	var out []domain.CropAllocation
	for i, a := range allocations {
		if !removed[i] {
			out = append(out, a)
		}
	}
	return out
}
