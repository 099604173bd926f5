package store

import (
	"os"
	"testing"
	"time"

	"github.com/oleamind/agroalloc/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB connects to a real Postgres instance for round-trip testing.
// Skipped unless TEST_DB_DSN is set, since this package has no in-memory
// substitute for gorm/postgres (the gateway/memory.go doubles cover that
// role for every other package).
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("Skipping test: TEST_DB_DSN not set")
	}
	db, err := Connect(dsn)
	require.NoError(t, err)

	db.Exec("DELETE FROM optimization_result_rows")
	db.Exec("DELETE FROM interaction_rule_rows")
	db.Exec("DELETE FROM weather_day_rows")
	db.Exec("DELETE FROM crop_profile_rows")
	db.Exec("DELETE FROM field_rows")

	return db
}

func TestFieldStore_SaveAndGetRoundTrips(t *testing.T) {
	db := setupTestDB(t)
	store := NewFieldStore(db)

	field, err := domain.NewField("f1", "North Forty", 4000, 12.5, 30, "POINT(0 0)", []string{"brassica"})
	require.NoError(t, err)

	require.NoError(t, store.Save(field))

	got, ok, err := store.Get("f1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, field.Name, got.Name)
	assert.Equal(t, field.AreaSqM, got.AreaSqM)
	assert.Equal(t, field.FallowPeriodDays, got.FallowPeriodDays)
	assert.ElementsMatch(t, field.Groups, got.Groups)

	_, ok, err = store.Get("does_not_exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCropProfileStore_SaveAndGetPreservesStages(t *testing.T) {
	db := setupTestDB(t)
	store := NewCropProfileStore(db)

	crop, err := domain.NewCrop("rice", "Rice", "paddy", 1, nil)
	require.NoError(t, err)
	crop = crop.WithRevenue(3.2)

	profile, err := domain.NewCropProfile(crop, []domain.StageRequirement{
		{
			Stage:       domain.GrowthStage{Name: "vegetative", Order: 1},
			Temperature: domain.TemperatureProfile{HighStressThreshold: 38, LowStressThreshold: 5, FrostThreshold: 0},
			Thermal:     domain.ThermalRequirement{RequiredGDD: 500},
		},
		{
			Stage:       domain.GrowthStage{Name: "reproductive", Order: 2},
			Temperature: domain.TemperatureProfile{HighStressThreshold: 35, LowStressThreshold: 8, FrostThreshold: 0},
			Thermal:     domain.ThermalRequirement{RequiredGDD: 900, HasHarvestStart: true, HarvestStartGDD: 850},
		},
	})
	require.NoError(t, err)

	require.NoError(t, store.Save(profile))

	got, ok, err := store.Get("rice", "paddy")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Stages, 2)
	assert.Equal(t, "vegetative", got.Stages[0].Stage.Name)
	assert.Equal(t, 900.0, got.Stages[1].Thermal.RequiredGDD)
	assert.True(t, got.Stages[1].Thermal.HasHarvestStart)
	assert.True(t, got.Crop.HasRevenue)
}

func TestWeatherStore_SaveAndGetRange(t *testing.T) {
	db := setupTestDB(t)
	store := NewWeatherStore(db)

	days := []domain.WeatherDay{
		{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), TMax: 10, HasTMax: true, TMean: 5, HasTMean: true},
		{Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), TMax: 11, HasTMax: true, TMean: 6, HasTMean: true},
	}
	require.NoError(t, store.Save(days))

	got, err := store.GetRange(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].TMax)
	assert.Equal(t, 11.0, got[1].TMax)
}

func TestResultSink_SaveAndLoadRoundTrips(t *testing.T) {
	db := setupTestDB(t)
	fieldStore := NewFieldStore(db)
	profileStore := NewCropProfileStore(db)
	sink := NewResultSink(db)

	field, err := domain.NewField("f1", "North", 1000, 10, 28, "", nil)
	require.NoError(t, err)
	require.NoError(t, fieldStore.Save(field))

	crop, err := domain.NewCrop("wheat", "Wheat", "", 1, nil)
	require.NoError(t, err)
	crop = crop.WithRevenue(1.8)
	profile, err := domain.NewCropProfile(crop, []domain.StageRequirement{
		{Stage: domain.GrowthStage{Name: "grow", Order: 1}, Thermal: domain.ThermalRequirement{RequiredGDD: 600}},
	})
	require.NoError(t, err)
	require.NoError(t, profileStore.Save(profile))

	allocation := domain.AllocationCandidate{
		Field: field, Crop: crop,
		StartDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CompletionDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		AreaUsed:       1000,
		Revenue:        1800,
		Profit:         1500,
	}.Promote()

	result := domain.NewMultiFieldOptimizationResult("opt-1",
		[]domain.FieldSchedule{domain.NewFieldSchedule(field, []domain.CropAllocation{allocation})},
		"alns", 2500*time.Millisecond, false)

	require.NoError(t, sink.Save(result))

	loaded, ok, err := sink.Load("opt-1", fieldStore, profileStore)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result.AlgorithmUsed, loaded.AlgorithmUsed)
	assert.Equal(t, result.IsOptimal, loaded.IsOptimal)
	assert.InDelta(t, result.TotalProfit, loaded.TotalProfit, 0.001)
	require.Len(t, loaded.AllAllocations(), 1)
	assert.Equal(t, allocation.AllocationID, loaded.AllAllocations()[0].AllocationID)
}
