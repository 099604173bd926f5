package schedule

import (
	"testing"
	"time"

	"github.com/oleamind/agroalloc/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func cand(field domain.Field, crop domain.Crop, start, completion time.Time, profit float64) domain.AllocationCandidate {
	return domain.AllocationCandidate{Field: field, Crop: crop, StartDate: start, CompletionDate: completion, Profit: profit, Revenue: profit}
}

func TestSolveField_EmptyInputReturnsEmptySolution(t *testing.T) {
	result := SolveField(nil)
	assert.Empty(t, result.Allocations)
	assert.Equal(t, 0.0, result.TotalProfit)
}

func TestSolveField_SingleCandidateIsSelected(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)

	only := cand(field, crop, d(2026, 1, 1), d(2026, 5, 31), 500)
	result := SolveField([]domain.AllocationCandidate{only})
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, 500.0, result.TotalProfit)
}

// S2 — DP selects more profitable overlap.
func TestSolveField_SelectsMoreProfitableOverlap(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	rice, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	tomato, err := domain.NewCrop("tomato", "Tomato", "", 1, nil)
	require.NoError(t, err)

	riceCand := cand(field, rice, d(2026, 4, 1), d(2026, 8, 31), 1_000_000)
	tomatoCand := cand(field, tomato, d(2026, 5, 1), d(2026, 9, 30), 1_200_000)

	result := SolveField([]domain.AllocationCandidate{riceCand, tomatoCand})
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, "tomato", result.Allocations[0].Crop.CropID)
	assert.Equal(t, 1_200_000.0, result.TotalProfit)
}

// S3 — DP picks the non-overlapping pair over the single higher-duration
// overlap when their combined profit wins.
func TestSolveField_PicksNonOverlappingPair(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	cropA, err := domain.NewCrop("a", "A", "", 1, nil)
	require.NoError(t, err)
	cropB, err := domain.NewCrop("b", "B", "", 1, nil)
	require.NoError(t, err)
	cropC, err := domain.NewCrop("c", "C", "", 1, nil)
	require.NoError(t, err)

	a := cand(field, cropA, d(2026, 1, 1), d(2026, 5, 31), 1510)
	b := cand(field, cropB, d(2026, 2, 1), d(2026, 7, 31), 1810)
	c := cand(field, cropC, d(2026, 6, 1), d(2026, 10, 31), 1530)

	result := SolveField([]domain.AllocationCandidate{a, b, c})
	require.Len(t, result.Allocations, 2)
	assert.Equal(t, "a", result.Allocations[0].Crop.CropID)
	assert.Equal(t, "c", result.Allocations[1].Crop.CropID)
	assert.InDelta(t, 3040.0, result.TotalProfit, 1e-9)
}

func TestSolveField_RespectsFallowGap(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 30, "", nil)
	require.NoError(t, err)
	cropA, err := domain.NewCrop("a", "A", "", 1, nil)
	require.NoError(t, err)
	cropB, err := domain.NewCrop("b", "B", "", 1, nil)
	require.NoError(t, err)

	a := cand(field, cropA, d(2026, 1, 1), d(2026, 3, 1), 100)
	tooSoon := cand(field, cropB, d(2026, 3, 10), d(2026, 6, 1), 90)
	respectsFallow := cand(field, cropB, d(2026, 3, 31), d(2026, 6, 1), 90)

	result := SolveField([]domain.AllocationCandidate{a, tooSoon})
	require.Len(t, result.Allocations, 1, "fallow-incompatible candidate must not both be selected")
	assert.Equal(t, 100.0, result.TotalProfit)

	result2 := SolveField([]domain.AllocationCandidate{a, respectsFallow})
	require.Len(t, result2.Allocations, 2)
	assert.Equal(t, 190.0, result2.TotalProfit)
}

func TestSolve_GroupsByFieldAndTrimsRevenueCap(t *testing.T) {
	fieldA, err := domain.NewField("fa", "A", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	fieldB, err := domain.NewField("fb", "B", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	rice, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	rice = rice.WithMaxRevenue(150)

	onA := cand(fieldA, rice, d(2026, 1, 1), d(2026, 4, 1), 100)
	onB := cand(fieldB, rice, d(2026, 1, 1), d(2026, 4, 1), 80)

	allocations := Solve([]domain.AllocationCandidate{onA, onB})
	var total float64
	for _, a := range allocations {
		total += a.Revenue
	}
	assert.LessOrEqual(t, total, 150.0)
	require.Len(t, allocations, 1, "least-profit allocation exceeding the cap is trimmed")
	assert.Equal(t, "fa", allocations[0].Field.FieldID)
}
