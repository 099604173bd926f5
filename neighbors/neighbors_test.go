package neighbors

import (
	"testing"
	"time"

	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/violations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hasOperator(moves []Move, op string) bool {
	for _, m := range moves {
		if m.Operator == op {
			return true
		}
	}
	return false
}

// S1 — fallow respect: CropInsert must reject a too-early start and accept
// one landing exactly on the fallow boundary.
func TestCropInsert_RespectsFallowBoundary(t *testing.T) {
	field, err := domain.NewField("field_01", "Test Field", 1000, 5000, 28, "", nil)
	require.NoError(t, err)
	cropA, err := domain.NewCrop("crop_a", "Crop A", "", 1, nil)
	require.NoError(t, err)
	cropB, err := domain.NewCrop("crop_b", "Crop B", "", 1, nil)
	require.NoError(t, err)

	existing := domain.AllocationCandidate{Field: field, Crop: cropA, StartDate: date(2024, 4, 1), CompletionDate: date(2024, 6, 30), AreaUsed: 1000}.Promote()
	solution := []domain.CropAllocation{existing}

	g := NewGenerator(violations.NewChecker(nil))

	tooEarly := domain.AllocationCandidate{Field: field, Crop: cropB, StartDate: date(2024, 7, 1), CompletionDate: date(2024, 9, 30), AreaUsed: 400}
	moves := g.cropInsert(solution, []domain.AllocationCandidate{tooEarly})
	assert.Empty(t, moves, "insert before the fallow boundary must be rejected")

	onBoundary := domain.AllocationCandidate{Field: field, Crop: cropB, StartDate: date(2024, 7, 28), CompletionDate: date(2024, 9, 30), AreaUsed: 400}
	moves = g.cropInsert(solution, []domain.AllocationCandidate{onBoundary})
	require.Len(t, moves, 1, "insert exactly on the fallow boundary must be accepted")
	assert.Len(t, moves[0].Solution, 2)
}

func TestFieldRemove_AlwaysFeasible(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	a := domain.AllocationCandidate{Field: field, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1)}.Promote()
	b := domain.AllocationCandidate{Field: field, Crop: crop, StartDate: date(2026, 5, 1), CompletionDate: date(2026, 8, 1)}.Promote()

	g := NewGenerator(violations.NewChecker(nil))
	moves := g.fieldRemove([]domain.CropAllocation{a, b})
	require.Len(t, moves, 2)
	for _, m := range moves {
		assert.Len(t, m.Solution, 1)
	}
}

func TestFieldSwap_RejectsWhenTargetFieldFallowViolated(t *testing.T) {
	fieldA, err := domain.NewField("fa", "A", 1000, 10, 28, "", nil)
	require.NoError(t, err)
	fieldB, err := domain.NewField("fb", "B", 1000, 10, 28, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)

	onA := domain.AllocationCandidate{Field: fieldA, Crop: crop, StartDate: date(2026, 3, 5), CompletionDate: date(2026, 6, 1)}.Promote()
	onB := domain.AllocationCandidate{Field: fieldB, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 3, 1)}.Promote()
	// stay is a third allocation on fieldB. Swapping onA with onB puts onA on
	// fieldB fewer than 28 days before stay starts; swapping onA with stay
	// puts onA on fieldB fewer than 28 days after onB completes. Either way
	// fieldB's fallow check fails.
	stay := domain.AllocationCandidate{Field: fieldB, Crop: crop, StartDate: date(2026, 6, 10), CompletionDate: date(2026, 8, 1)}.Promote()

	g := NewGenerator(violations.NewChecker(nil))
	moves := g.fieldSwap([]domain.CropAllocation{onA, onB, stay})
	assert.Empty(t, moves, "every swap breaks a fallow boundary on fb")
}

func TestAreaAdjust_ClampsToFieldCapacity(t *testing.T) {
	field, err := domain.NewField("f1", "North", 500, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	crop = crop.WithRevenue(2.0)

	a := domain.AllocationCandidate{Field: field, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), AreaUsed: 400, Revenue: 800, YieldFactor: 1.0}.Promote()

	cfg := config.Fast()
	cfg.AreaAdjustmentMultipliers = []float64{1.5}

	g := NewGenerator(violations.NewChecker(nil))
	moves := g.areaAdjust([]domain.CropAllocation{a}, cfg)
	require.Len(t, moves, 1)
	assert.Equal(t, 500.0, moves[0].Solution[0].AreaUsed, "600 requested but clamped to field capacity")
	assert.Equal(t, 1000.0, moves[0].Solution[0].Revenue)
}

func TestGenerate_SamplesWhenOverLimit(t *testing.T) {
	field, err := domain.NewField("f1", "North", 10000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)

	var pool []domain.AllocationCandidate
	for i := 0; i < 10; i++ {
		pool = append(pool, domain.AllocationCandidate{Field: field, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), AreaUsed: float64(100 + i)})
	}

	cfg := config.Fast()
	cfg.EnableNeighborSampling = true
	cfg.MaxNeighborsPerIteration = 3

	g := NewGenerator(violations.NewChecker(nil))
	moves := g.Generate(nil, pool, cfg, nil)
	assert.Len(t, moves, 3, "10 feasible crop-insert neighbours must be sampled down to the configured cap")
}
