package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewField_Validation(t *testing.T) {
	_, err := NewField("f1", "North", 1000, 5000, 28, "", nil)
	require.NoError(t, err)

	_, err = NewField("", "North", 1000, 5000, 28, "", nil)
	assert.Error(t, err)

	_, err = NewField("f1", "North", -1, 5000, 28, "", nil)
	assert.Error(t, err)

	_, err = NewField("f1", "North", 1000, -1, 28, "", nil)
	assert.Error(t, err)
}

func TestCropProfile_StageOrdering(t *testing.T) {
	crop, err := NewCrop("rice", "Rice", "", 1.0, nil)
	require.NoError(t, err)

	_, err = NewCropProfile(crop, []StageRequirement{
		{Stage: GrowthStage{Name: "seedling", Order: 1}, Thermal: ThermalRequirement{RequiredGDD: 100}},
		{Stage: GrowthStage{Name: "vegetative", Order: 3}, Thermal: ThermalRequirement{RequiredGDD: 200}},
	})
	assert.Error(t, err, "non-contiguous stage orders must be rejected")

	profile, err := NewCropProfile(crop, []StageRequirement{
		{Stage: GrowthStage{Name: "seedling", Order: 1}, Thermal: ThermalRequirement{RequiredGDD: 100}},
		{Stage: GrowthStage{Name: "vegetative", Order: 2}, Thermal: ThermalRequirement{RequiredGDD: 200}},
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, profile.TotalRequiredGDD())
}

func TestCropAllocation_OverlapsWithFallow(t *testing.T) {
	field, err := NewField("f1", "North", 1000, 5000, 28, "", nil)
	require.NoError(t, err)
	crop, err := NewCrop("a", "A", "", 1, nil)
	require.NoError(t, err)

	prev := CropAllocation{Field: field, Crop: crop, CompletionDate: date(2026, 6, 30)}

	touching := CropAllocation{Field: field, Crop: crop, StartDate: date(2026, 7, 28)}
	assert.False(t, touching.OverlapsWithFallow(prev), "start exactly at completion+fallow must be allowed")

	tooEarly := CropAllocation{Field: field, Crop: crop, StartDate: date(2026, 7, 27)}
	assert.True(t, tooEarly.OverlapsWithFallow(prev))
}

func TestCropAllocation_ZeroFallowBackToBack(t *testing.T) {
	field, err := NewField("f1", "North", 1000, 5000, 0, "", nil)
	require.NoError(t, err)
	crop, _ := NewCrop("a", "A", "", 1, nil)

	prev := CropAllocation{Field: field, Crop: crop, CompletionDate: date(2026, 6, 30)}
	next := CropAllocation{Field: field, Crop: crop, StartDate: date(2026, 6, 30)}
	assert.False(t, next.OverlapsWithFallow(prev))
}

func TestYieldImpactAccumulator_Composes(t *testing.T) {
	acc := NewYieldImpactAccumulator()
	for i := 0; i < 3; i++ {
		acc.Apply(0.05)
	}
	for i := 0; i < 2; i++ {
		acc.Apply(0.20)
	}
	assert.InDelta(t, 0.5488, acc.Factor(), 1e-4)
}

func TestInteractionRule_Directionality(t *testing.T) {
	r := InteractionRule{SourceGroup: "brassica", TargetGroup: "brassica", ImpactRatio: 0.8, IsDirectional: true}
	assert.True(t, r.Matches([]string{"brassica"}, []string{"brassica"}))

	r2 := InteractionRule{SourceGroup: "legume", TargetGroup: "cereal", ImpactRatio: 1.1, IsDirectional: false}
	assert.True(t, r2.Matches([]string{"cereal"}, []string{"legume"}), "non-directional rule should match either order")
	assert.Equal(t, 1.1, r2.GetImpact([]string{"cereal"}, []string{"legume"}))
	assert.Equal(t, 1.0, r2.GetImpact([]string{"cereal"}, []string{"cereal"}))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
