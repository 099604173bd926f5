package domain

// YieldImpactAccumulator composes daily stress impacts multiplicatively
// into a yield factor in [0, 1]:
//
//	yield_factor = clamp(Π_d Π_k (1 − daily_impact_k(d)), 0, 1)
//
// It is stateful: call Apply once per (day, impact) pair encountered during
// simulation, then read Factor.
type YieldImpactAccumulator struct {
	factor float64
}

// NewYieldImpactAccumulator returns an accumulator starting at yield 1.0
// (no loss).
func NewYieldImpactAccumulator() *YieldImpactAccumulator {
	return &YieldImpactAccumulator{factor: 1.0}
}

// Apply folds in one daily impact ratio (a fraction in [0,1] representing
// the loss, not the retained fraction).
func (a *YieldImpactAccumulator) Apply(dailyImpact float64) {
	if dailyImpact <= 0 {
		return
	}
	if dailyImpact > 1 {
		dailyImpact = 1
	}
	a.factor *= 1 - dailyImpact
}

// Factor returns the current yield factor, clamped to [0, 1].
func (a *YieldImpactAccumulator) Factor() float64 {
	if a.factor < 0 {
		return 0
	}
	if a.factor > 1 {
		return 1
	}
	return a.factor
}

// YieldLossPercentage returns (1 - factor) * 100.
func (a *YieldImpactAccumulator) YieldLossPercentage() float64 {
	return (1 - a.Factor()) * 100
}
