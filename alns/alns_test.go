package alns

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/metrics"
	"github.com/oleamind/agroalloc/violations"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRunHillClimb_InsertsProfitableCandidate(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)

	pool := []domain.AllocationCandidate{
		{Field: field, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), AreaUsed: 500, Profit: 800, Revenue: 800},
	}

	cfg := config.Fast()
	cfg.EnableLocalSearch = true
	cfg.MaxLocalSearchIterations = 10

	driver := NewDriver(violations.NewChecker(nil), cfg, nil)
	result := driver.Run(context.Background(), nil, pool)

	require.Len(t, result, 1)
	assert.Equal(t, 800.0, TotalProfit(result))
}

func TestRunHillClimb_StopsWhenNoImprovement(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)

	existing := domain.AllocationCandidate{Field: field, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), AreaUsed: 500, Profit: 800, Revenue: 800}.Promote()

	cfg := config.Fast()
	cfg.EnableLocalSearch = true
	cfg.MaxLocalSearchIterations = 10

	driver := NewDriver(violations.NewChecker(nil), cfg, nil)
	result := driver.Run(context.Background(), []domain.CropAllocation{existing}, nil)

	require.Len(t, result, 1)
	assert.Equal(t, 800.0, TotalProfit(result))
}

func TestRun_DisabledReturnsInitialUnchanged(t *testing.T) {
	cfg := config.Fast()
	cfg.EnableLocalSearch = false
	cfg.EnableALNS = false

	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	existing := domain.AllocationCandidate{Field: field, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), Profit: 500}.Promote()

	driver := NewDriver(violations.NewChecker(nil), cfg, nil)
	result := driver.Run(context.Background(), []domain.CropAllocation{existing}, nil)
	assert.Equal(t, []domain.CropAllocation{existing}, result)
}

func TestRunHillClimb_CancelledContextReturnsInitialImmediately(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	existing := domain.AllocationCandidate{Field: field, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), Profit: 500}.Promote()

	pool := []domain.AllocationCandidate{
		{Field: field, Crop: crop, StartDate: date(2027, 1, 1), CompletionDate: date(2027, 4, 1), Profit: 5000},
	}

	cfg := config.Fast()
	cfg.EnableLocalSearch = true
	cfg.MaxLocalSearchIterations = 10

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := NewDriver(violations.NewChecker(nil), cfg, nil)
	result := driver.Run(ctx, []domain.CropAllocation{existing}, pool)
	assert.Equal(t, 500.0, TotalProfit(result), "a cancelled context must short-circuit before any iteration runs")
}

// invariant: enabling ALNS never decreases total profit versus the DP-only
// starting solution (spec.md §8 invariant 10).
func TestRunALNS_NeverDecreasesProfitBelowInitial(t *testing.T) {
	fieldA, err := domain.NewField("fa", "A", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	fieldB, err := domain.NewField("fb", "B", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)

	initial := []domain.CropAllocation{
		domain.AllocationCandidate{Field: fieldA, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), AreaUsed: 500, Profit: 600, Revenue: 600}.Promote(),
	}
	initialProfit := TotalProfit(initial)

	pool := []domain.AllocationCandidate{
		{Field: fieldA, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), AreaUsed: 500, Profit: 600, Revenue: 600},
		{Field: fieldB, Crop: crop, StartDate: date(2026, 2, 1), CompletionDate: date(2026, 5, 1), AreaUsed: 500, Profit: 900, Revenue: 900},
		{Field: fieldB, Crop: crop, StartDate: date(2026, 6, 1), CompletionDate: date(2026, 9, 1), AreaUsed: 500, Profit: 400, Revenue: 400},
	}

	cfg := config.Fast()
	cfg.EnableALNS = true
	cfg.ALNSIterations = 30
	cfg.ALNSRemovalRate = 0.5
	cfg.ALNSAcceptWorseProbabilityInitial = 0.3
	cfg.ALNSCoolingRate = 0.95
	cfg.RandomSeed = 42

	driver := NewDriver(violations.NewChecker(nil), cfg, nil)
	result := driver.Run(context.Background(), initial, pool)

	assert.GreaterOrEqual(t, TotalProfit(result), initialProfit)
}

func TestRunHillClimb_RecordsIterationMetrics(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)

	pool := []domain.AllocationCandidate{
		{Field: field, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), AreaUsed: 500, Profit: 800, Revenue: 800},
	}

	cfg := config.Fast()
	cfg.EnableLocalSearch = true
	cfg.MaxLocalSearchIterations = 3

	m := metrics.New("alns-test-hillclimb")
	driver := NewDriver(violations.NewChecker(nil), cfg, m)
	driver.Run(context.Background(), nil, pool)

	assert.Greater(t, testutil.ToFloat64(m.SearchIterationsTotal.WithLabelValues("hill_climb")), 0.0)
}

func TestRunALNS_RecordsIterationAndAcceptanceMetrics(t *testing.T) {
	fieldA, err := domain.NewField("fa", "A", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	fieldB, err := domain.NewField("fb", "B", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)

	initial := []domain.CropAllocation{
		domain.AllocationCandidate{Field: fieldA, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), AreaUsed: 500, Profit: 600, Revenue: 600}.Promote(),
	}
	pool := []domain.AllocationCandidate{
		{Field: fieldA, Crop: crop, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 4, 1), AreaUsed: 500, Profit: 600, Revenue: 600},
		{Field: fieldB, Crop: crop, StartDate: date(2026, 2, 1), CompletionDate: date(2026, 5, 1), AreaUsed: 500, Profit: 900, Revenue: 900},
		{Field: fieldB, Crop: crop, StartDate: date(2026, 6, 1), CompletionDate: date(2026, 9, 1), AreaUsed: 500, Profit: 400, Revenue: 400},
	}

	cfg := config.Fast()
	cfg.EnableALNS = true
	cfg.ALNSIterations = 10
	cfg.ALNSRemovalRate = 0.5
	cfg.ALNSAcceptWorseProbabilityInitial = 0.3
	cfg.ALNSCoolingRate = 0.95
	cfg.RandomSeed = 42

	m := metrics.New("alns-test-alns")
	driver := NewDriver(violations.NewChecker(nil), cfg, m)
	driver.Run(context.Background(), initial, pool)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.SearchIterationsTotal.WithLabelValues("alns")))

	var totalAccepted float64
	for _, reason := range []string{"new_best", "better", "worse", "rejected"} {
		totalAccepted += testutil.ToFloat64(m.SearchAcceptedTotal.WithLabelValues(reason))
	}
	assert.Equal(t, 10.0, totalAccepted, "every iteration records exactly one acceptance reason")
}

func TestAssertInvariants_LogsOnlyWhenAreaCapacityBreached(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)

	overlapping := []domain.CropAllocation{
		domain.AllocationCandidate{Field: field, Crop: crop, AreaUsed: 700, StartDate: date(2026, 4, 1), CompletionDate: date(2026, 7, 1)}.Promote(),
		domain.AllocationCandidate{Field: field, Crop: crop, AreaUsed: 400, StartDate: date(2026, 6, 1), CompletionDate: date(2026, 9, 1)}.Promote(),
	}
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	AssertInvariants(overlapping)
	assert.Contains(t, buf.String(), "area invariant breached")

	nonOverlapping := []domain.CropAllocation{
		domain.AllocationCandidate{Field: field, Crop: crop, AreaUsed: 700, StartDate: date(2026, 1, 1), CompletionDate: date(2026, 3, 1)}.Promote(),
		domain.AllocationCandidate{Field: field, Crop: crop, AreaUsed: 400, StartDate: date(2026, 6, 1), CompletionDate: date(2026, 9, 1)}.Promote(),
	}
	buf.Reset()
	AssertInvariants(nonOverlapping)
	assert.Empty(t, buf.String())
}
