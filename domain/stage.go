package domain

import "fmt"

// ThermalRequirement is the growing-degree-day budget a stage (or a whole
// crop, when summed) needs to accumulate before it is considered complete.
type ThermalRequirement struct {
	RequiredGDD     float64
	HarvestStartGDD float64
	HasHarvestStart bool
}

// IsMet reports whether the accumulated GDD satisfies this requirement.
func (t ThermalRequirement) IsMet(accumulated float64) bool {
	return accumulated >= t.RequiredGDD
}

// IsHarvestStarted reports whether harvesting may begin, given the
// accumulated GDD. Returns false when HarvestStartGDD was never set.
func (t ThermalRequirement) IsHarvestStarted(accumulated float64) bool {
	if !t.HasHarvestStart {
		return false
	}
	return accumulated >= t.HarvestStartGDD
}

// GrowthStage names one ordered phase of a crop's life cycle.
type GrowthStage struct {
	Name  string
	Order int
}

// StageRequirement bundles one stage's thermal, temperature-stress and
// sunshine requirements.
type StageRequirement struct {
	Stage       GrowthStage
	Temperature TemperatureProfile
	Sunshine    SunshineProfile
	Thermal     ThermalRequirement
}

// CropProfile is a crop paired with its ordered stage requirements.
type CropProfile struct {
	Crop   Crop
	Stages []StageRequirement
}

// NewCropProfile validates stage ordering (consecutive orders 1, 2, 3, …
// with no gaps, in slice order) and returns the assembled profile.
func NewCropProfile(crop Crop, stages []StageRequirement) (CropProfile, error) {
	if len(stages) == 0 {
		return CropProfile{}, fmt.Errorf("crop profile %s: at least one stage is required", crop.CropID)
	}
	for i, s := range stages {
		want := i + 1
		if s.Stage.Order != want {
			return CropProfile{}, fmt.Errorf("crop profile %s: stage %q has order %d, expected %d (orders must be consecutive from 1)", crop.CropID, s.Stage.Name, s.Stage.Order, want)
		}
	}
	return CropProfile{Crop: crop, Stages: stages}, nil
}

// TotalRequiredGDD sums the required GDD of every stage.
func (p CropProfile) TotalRequiredGDD() float64 {
	var total float64
	for _, s := range p.Stages {
		total += s.Thermal.RequiredGDD
	}
	return total
}

// BaseTemperature is the first stage's base temperature, used by the
// simulator as the default when none is supplied explicitly.
func (p CropProfile) BaseTemperature() float64 {
	if len(p.Stages) == 0 {
		return 0
	}
	return p.Stages[0].Temperature.BaseTemperature
}

// StageAt returns the stage whose cumulative required-GDD prefix first
// exceeds accumulated, i.e. the stage currently in progress. Returns the
// final stage once all prior thresholds have been passed.
func (p CropProfile) StageAt(accumulated float64) StageRequirement {
	var cumulative float64
	for _, s := range p.Stages {
		cumulative += s.Thermal.RequiredGDD
		if accumulated < cumulative {
			return s
		}
	}
	return p.Stages[len(p.Stages)-1]
}

// FinalStage returns the last stage in the profile, the one whose
// HarvestStartGDD (if any) governs earliest-harvest reporting.
func (p CropProfile) FinalStage() StageRequirement {
	return p.Stages[len(p.Stages)-1]
}
