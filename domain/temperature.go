package domain

// TemperatureProfile holds the thermal thresholds and daily stress impacts
// for a single growth stage. Thresholds are in degrees Celsius; impacts are
// fractional daily yield losses in [0, 1] that the YieldImpactAccumulator
// composes multiplicatively.
type TemperatureProfile struct {
	BaseTemperature        float64
	OptimalMin             float64
	OptimalMax             float64
	LowStressThreshold     float64
	HighStressThreshold    float64
	FrostThreshold         float64
	SterilityRiskThreshold float64
	HasSterilityRisk       bool
	MaxTemperature         float64
	HasMaxTemperature      bool

	HighTempDailyImpact  float64
	LowTempDailyImpact   float64
	FrostDailyImpact     float64
	SterilityDailyImpact float64
}

// IsHighTempStress reports whether the day's max temperature breaches the
// stage's high-stress threshold.
func (p TemperatureProfile) IsHighTempStress(tMax float64) bool {
	return tMax > p.HighStressThreshold
}

// IsLowTempStress reports whether the day's mean temperature falls below
// the stage's low-stress threshold.
func (p TemperatureProfile) IsLowTempStress(tMean float64) bool {
	return tMean < p.LowStressThreshold
}

// IsFrostRisk reports whether the day's minimum temperature is at or below
// the frost threshold.
func (p TemperatureProfile) IsFrostRisk(tMin float64) bool {
	return tMin <= p.FrostThreshold
}

// IsSterilityRisk reports whether the day's max temperature breaches the
// sterility risk threshold, when one is configured for this stage.
func (p TemperatureProfile) IsSterilityRisk(tMax float64) bool {
	if !p.HasSterilityRisk {
		return false
	}
	return tMax > p.SterilityRiskThreshold
}

// SunshineProfile defines the sunshine-hour requirement for a growth stage.
type SunshineProfile struct {
	MinimumSunshineHours float64
	TargetSunshineHours  float64
}
