package simulate

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

func flatProfile(t *testing.T, requiredGDD float64) domain.CropProfile {
	t.Helper()
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	profile, err := domain.NewCropProfile(crop, []domain.StageRequirement{
		{
			Stage:       domain.GrowthStage{Name: "whole-season", Order: 1},
			Temperature: domain.TemperatureProfile{BaseTemperature: 10, HighStressThreshold: 35, HighTempDailyImpact: 0.05, LowStressThreshold: -100, FrostThreshold: -100, SterilityRiskThreshold: 38, HasSterilityRisk: true, SterilityDailyImpact: 0.20},
			Thermal:     domain.ThermalRequirement{RequiredGDD: requiredGDD},
		},
	})
	require.NoError(t, err)
	return profile
}

func flatDays(start time.Time, n int, tMean float64) []domain.WeatherDay {
	days := make([]domain.WeatherDay, n)
	for i := 0; i < n; i++ {
		days[i] = domain.WeatherDay{
			Date: start.AddDate(0, 0, i),
			TMax: tMean, HasTMax: true,
			TMin: tMean, HasTMin: true,
			TMean: tMean, HasTMean: true,
		}
	}
	return days
}

func TestRun_CompletesWhenGDDMet(t *testing.T) {
	profile := flatProfile(t, 100)
	days := flatDays(d(2026, 4, 1), 30, 20) // 10 GDD/day above base 10
	res, err := Run(profile, days, d(2026, 4, 1), 10)
	require.NoError(t, err)
	assert.True(t, res.HasCompletionDate)
	assert.Equal(t, 10, res.GrowthDays)
	assert.Equal(t, d(2026, 4, 10), res.CompletionDate)
}

func TestRun_InfeasibleWhenHorizonExhausted(t *testing.T) {
	profile := flatProfile(t, 10000)
	days := flatDays(d(2026, 4, 1), 30, 20)
	res, err := Run(profile, days, d(2026, 4, 1), 10)
	require.NoError(t, err)
	assert.False(t, res.HasCompletionDate)
}

func TestRun_NegativeGDDClampedToZero(t *testing.T) {
	profile := flatProfile(t, 10)
	days := flatDays(d(2026, 4, 1), 5, 5) // below base temp of 10: 0 GDD/day
	res, err := Run(profile, days, d(2026, 4, 1), 10)
	require.NoError(t, err)
	assert.False(t, res.HasCompletionDate)
	assert.Equal(t, 0.0, res.AccumulatedGDD)
}

func TestRun_HighTempStressReducesYield(t *testing.T) {
	profile := flatProfile(t, 1000) // never completes inside the window
	days := flatDays(d(2026, 4, 1), 100, 20)
	for i := 0; i < 3; i++ {
		days[i].TMax = 36 // above HighStressThreshold(35), below SterilityRiskThreshold(38)
	}
	res, err := Run(profile, days, d(2026, 4, 1), 10)
	require.NoError(t, err)
	assert.False(t, res.HasCompletionDate)
	assert.InDelta(t, 0.95*0.95*0.95, res.YieldFactor, 1e-9)
}
