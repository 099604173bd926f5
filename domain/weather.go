package domain

import "time"

// WeatherDay is one day of weather observations. Any numeric field may be
// missing (Has* false); callers must interpolate before the value reaches
// the growth simulator.
type WeatherDay struct {
	Date time.Time

	TMax    float64
	HasTMax bool
	TMin    float64
	HasTMin bool
	TMean   float64
	HasTMean bool

	PrecipitationSum   float64
	HasPrecipitation   bool
	SunshineDuration   time.Duration
	HasSunshineDuration bool
	WindSpeed          float64
	HasWindSpeed       bool
	WeatherCode        int
	HasWeatherCode     bool
}

// IsComplete reports whether the three temperature fields the simulator
// depends on (TMax, TMin, TMean) are all present.
func (w WeatherDay) IsComplete() bool {
	return w.HasTMax && w.HasTMin && w.HasTMean
}
