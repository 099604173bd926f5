package candidates

import (
	"testing"
	"time"

	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flatAccessor struct{ tMean float64 }

func (f flatAccessor) GetRange(start, end time.Time) ([]domain.WeatherDay, error) {
	n := int(end.Sub(start).Hours()/24) + 1
	days := make([]domain.WeatherDay, n)
	for i := 0; i < n; i++ {
		days[i] = domain.WeatherDay{Date: start.AddDate(0, 0, i), TMax: f.tMean, HasTMax: true, TMin: f.tMean, HasTMin: true, TMean: f.tMean, HasTMean: true}
	}
	return days, nil
}

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_ProducesSortedCandidates(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 28, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	crop = crop.WithRevenue(2.0)
	profile, err := domain.NewCropProfile(crop, []domain.StageRequirement{
		{Stage: domain.GrowthStage{Name: "season", Order: 1}, Temperature: domain.TemperatureProfile{BaseTemperature: 10, HighStressThreshold: 100, LowStressThreshold: -100, FrostThreshold: -100}, Thermal: domain.ThermalRequirement{RequiredGDD: 50}},
	})
	require.NoError(t, err)

	cfg := config.Fast()
	cands := Generate([]domain.Field{field}, []domain.CropProfile{profile}, flatAccessor{tMean: 20}, d(2026, 4, 1), d(2026, 4, 10), cfg)
	require.NotEmpty(t, cands)
	for i := 1; i < len(cands); i++ {
		assert.False(t, cands[i].StartDate.Before(cands[i-1].StartDate))
	}
}

func TestGenerate_FilterCapsPerFieldCrop(t *testing.T) {
	field, err := domain.NewField("f1", "North", 1000, 10, 0, "", nil)
	require.NoError(t, err)
	crop, err := domain.NewCrop("rice", "Rice", "", 1, nil)
	require.NoError(t, err)
	crop = crop.WithRevenue(2.0)
	profile, err := domain.NewCropProfile(crop, []domain.StageRequirement{
		{Stage: domain.GrowthStage{Name: "season", Order: 1}, Temperature: domain.TemperatureProfile{BaseTemperature: 10, HighStressThreshold: 100, LowStressThreshold: -100, FrostThreshold: -100}, Thermal: domain.ThermalRequirement{RequiredGDD: 30}},
	})
	require.NoError(t, err)

	cfg := config.Fast()
	cfg.MaxCandidatesPerFieldCrop = 2
	cfg.MinProfitRateThreshold = 0
	cfg.MinRevenueCostRatio = 0
	cands := Generate([]domain.Field{field}, []domain.CropProfile{profile}, flatAccessor{tMean: 20}, d(2026, 4, 1), d(2026, 4, 20), cfg)
	assert.LessOrEqual(t, len(cands), 2)
}
