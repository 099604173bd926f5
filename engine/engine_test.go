package engine

import (
	"context"
	"testing"
	"time"

	"github.com/oleamind/agroalloc/agroerr"
	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/gateway"
	"github.com/oleamind/agroalloc/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func wholeYearWeather(year int) []domain.WeatherDay {
	var days []domain.WeatherDay
	for d := date(year, 1, 1); d.Year() == year; d = d.AddDate(0, 0, 1) {
		days = append(days, domain.WeatherDay{
			Date: d,
			TMax: 20, HasTMax: true,
			TMin: 5, HasTMin: true,
			TMean: 10, HasTMean: true,
		})
	}
	return days
}

func riceProfile(t *testing.T) (domain.Crop, domain.CropProfile) {
	t.Helper()
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	crop = crop.WithRevenue(2.0)

	profile, err := domain.NewCropProfile(crop, []domain.StageRequirement{
		{
			Stage:       domain.GrowthStage{Name: "grow", Order: 1},
			Temperature: domain.TemperatureProfile{HighStressThreshold: 100, LowStressThreshold: -100, FrostThreshold: -100},
			Thermal:     domain.ThermalRequirement{RequiredGDD: 100},
		},
	})
	require.NoError(t, err)
	return crop, profile
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestRun_ProducesAllocationsAndMarksDPOptimal(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 28, "", nil)
	require.NoError(t, err)
	_, profile := riceProfile(t)

	deps := Dependencies{
		Fields:   gateway.NewMemoryFieldSource([]domain.Field{field}),
		Profiles: gateway.NewMemoryCropProfileSource([]domain.CropProfile{profile}),
		Weather:  gateway.NewMemoryWeatherSource(wholeYearWeather(2026)),
		Rules:    gateway.NewMemoryInteractionRuleSource(nil),
	}

	cfg := config.Fast()
	result, err := Run(context.Background(), "opt-1", date(2026, 1, 1), date(2026, 12, 31), cfg, deps, nil, fixedClock(date(2026, 1, 1)))
	require.NoError(t, err)
	assert.Equal(t, "opt-1", result.OptimizationID)
	assert.Equal(t, "dp", result.AlgorithmUsed)
	assert.True(t, result.IsOptimal)
	assert.NotEmpty(t, result.AllAllocations())
	assert.Len(t, result.Schedules, 1, "every known field gets a schedule entry, even an unused one")
}

func TestRun_SavesToSinkWhenProvided(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 28, "", nil)
	require.NoError(t, err)
	_, profile := riceProfile(t)

	sink := &recordingSink{}
	deps := Dependencies{
		Fields:   gateway.NewMemoryFieldSource([]domain.Field{field}),
		Profiles: gateway.NewMemoryCropProfileSource([]domain.CropProfile{profile}),
		Weather:  gateway.NewMemoryWeatherSource(wholeYearWeather(2026)),
		Rules:    gateway.NewMemoryInteractionRuleSource(nil),
		Sink:     sink,
	}

	_, err = Run(context.Background(), "opt-2", date(2026, 1, 1), date(2026, 12, 31), config.Fast(), deps, nil, fixedClock(date(2026, 1, 1)))
	require.NoError(t, err)
	require.NotNil(t, sink.saved)
	assert.Equal(t, "opt-2", sink.saved.OptimizationID)
}

func TestGenerateCandidates_ReturnsNonEmptyPool(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 28, "", nil)
	require.NoError(t, err)
	_, profile := riceProfile(t)

	deps := Dependencies{
		Fields:   gateway.NewMemoryFieldSource([]domain.Field{field}),
		Profiles: gateway.NewMemoryCropProfileSource([]domain.CropProfile{profile}),
		Weather:  gateway.NewMemoryWeatherSource(wholeYearWeather(2026)),
	}

	pool, err := GenerateCandidates(date(2026, 1, 1), date(2026, 12, 31), config.Fast(), deps)
	require.NoError(t, err)
	assert.NotEmpty(t, pool)
}

func TestEvaluatePeriodFor_UnknownFieldIsValidationError(t *testing.T) {
	_, profile := riceProfile(t)
	deps := Dependencies{
		Fields:   gateway.NewMemoryFieldSource(nil),
		Profiles: gateway.NewMemoryCropProfileSource([]domain.CropProfile{profile}),
		Weather:  gateway.NewMemoryWeatherSource(wholeYearWeather(2026)),
	}

	_, err := EvaluatePeriodFor("does_not_exist", "rice", "", period.Window{Start: date(2026, 1, 1), End: date(2026, 3, 1)}, date(2026, 12, 31), 500, deps)
	assert.Error(t, err)
	assert.Equal(t, agroerr.KindValidation, KindOf(err))
}

type recordingSink struct {
	saved *domain.MultiFieldOptimizationResult
}

func (s *recordingSink) Save(result domain.MultiFieldOptimizationResult) error {
	s.saved = &result
	return nil
}
