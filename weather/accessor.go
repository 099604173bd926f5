// Package weather provides the C2 weather accessor: it queries a
// gateway.WeatherSource by date range and linear-interpolates missing days
// so every downstream consumer (the growth simulator) sees a complete
// daily series.
package weather

import (
	"fmt"
	"sort"
	"time"

	"github.com/oleamind/agroalloc/agroerr"
	"github.com/oleamind/agroalloc/domain"
)

// Source is the minimal dependency the accessor needs; satisfied by
// gateway.WeatherSource.
type Source interface {
	GetRange(start, end time.Time) ([]domain.WeatherDay, error)
}

// Accessor wraps a Source, filling gaps via linear interpolation with
// forward-fill at the start of the window and backward-fill at the end.
type Accessor struct {
	source Source
}

// New constructs an Accessor over the given gateway source.
func New(source Source) *Accessor {
	return &Accessor{source: source}
}

// GetRange returns one WeatherDay per calendar day in [start, end]
// (inclusive), with TMax/TMin/TMean/Precipitation/SunshineDuration/
// WindSpeed interpolated where missing. Returns agroerr.ErrInsufficientWeather
// when every day in the window lacks all temperature fields.
func (a *Accessor) GetRange(start, end time.Time) ([]domain.WeatherDay, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: weather range end %s before start %s", agroerr.ErrValidation, end, start)
	}

	raw, err := a.source.GetRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch weather range: %w", err)
	}

	byDate := make(map[string]domain.WeatherDay, len(raw))
	for _, d := range raw {
		byDate[dateKey(d.Date)] = d
	}

	days := make([]domain.WeatherDay, 0, daysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		w, ok := byDate[dateKey(d)]
		if !ok {
			w = domain.WeatherDay{Date: d}
		} else {
			w.Date = d
		}
		days = append(days, w)
	}

	if !anyComplete(days) {
		return nil, fmt.Errorf("%w: no usable temperature data in [%s, %s]", agroerr.ErrInsufficientWeather, start, end)
	}

	interpolateField(days,
		func(w domain.WeatherDay) (float64, bool) { return w.TMax, w.HasTMax },
		func(w *domain.WeatherDay, v float64) { w.TMax, w.HasTMax = v, true })
	interpolateField(days,
		func(w domain.WeatherDay) (float64, bool) { return w.TMin, w.HasTMin },
		func(w *domain.WeatherDay, v float64) { w.TMin, w.HasTMin = v, true })
	interpolateField(days,
		func(w domain.WeatherDay) (float64, bool) { return w.TMean, w.HasTMean },
		func(w *domain.WeatherDay, v float64) { w.TMean, w.HasTMean = v, true })
	interpolateField(days,
		func(w domain.WeatherDay) (float64, bool) { return w.PrecipitationSum, w.HasPrecipitation },
		func(w *domain.WeatherDay, v float64) { w.PrecipitationSum, w.HasPrecipitation = v, true })
	interpolateField(days,
		func(w domain.WeatherDay) (float64, bool) { return float64(w.SunshineDuration), w.HasSunshineDuration },
		func(w *domain.WeatherDay, v float64) { w.SunshineDuration, w.HasSunshineDuration = time.Duration(v), true })
	interpolateField(days,
		func(w domain.WeatherDay) (float64, bool) { return w.WindSpeed, w.HasWindSpeed },
		func(w *domain.WeatherDay, v float64) { w.WindSpeed, w.HasWindSpeed = v, true })

	return days, nil
}

func anyComplete(days []domain.WeatherDay) bool {
	for _, d := range days {
		if d.HasTMax || d.HasTMin || d.HasTMean {
			return true
		}
	}
	return false
}

// interpolateField fills gaps for one numeric field in place. Known values
// partition the series into segments; within each internal gap the value is
// linearly interpolated by day-index distance to the neighbouring known
// values. A gap before the first known value, or after the last, is
// filled flat (forward/backward-fill) with the nearest known value. When
// only one day is known overall, every other day gets that single value.
func interpolateField(days []domain.WeatherDay, get func(domain.WeatherDay) (float64, bool), set func(*domain.WeatherDay, float64)) {
	n := len(days)
	knownIdx := make([]int, 0, n)
	knownVal := make([]float64, 0, n)
	for i, d := range days {
		if v, ok := get(d); ok {
			knownIdx = append(knownIdx, i)
			knownVal = append(knownVal, v)
		}
	}
	if len(knownIdx) == 0 {
		return
	}
	if len(knownIdx) == 1 {
		for i := range days {
			if i != knownIdx[0] {
				set(&days[i], knownVal[0])
			}
		}
		return
	}

	for i := 0; i < knownIdx[0]; i++ {
		set(&days[i], knownVal[0])
	}
	for i := knownIdx[len(knownIdx)-1] + 1; i < n; i++ {
		set(&days[i], knownVal[len(knownVal)-1])
	}

	for seg := 0; seg < len(knownIdx)-1; seg++ {
		lo, hi := knownIdx[seg], knownIdx[seg+1]
		loVal, hiVal := knownVal[seg], knownVal[seg+1]
		span := hi - lo
		for i := lo + 1; i < hi; i++ {
			frac := float64(i-lo) / float64(span)
			set(&days[i], loVal+frac*(hiVal-loVal))
		}
	}
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// ByDate indexes a slice of WeatherDay by calendar date for O(1) lookup.
func ByDate(days []domain.WeatherDay) map[string]domain.WeatherDay {
	m := make(map[string]domain.WeatherDay, len(days))
	for _, d := range days {
		m[dateKey(d.Date)] = d
	}
	return m
}

// SortByDate returns a copy of days sorted ascending by date.
func SortByDate(days []domain.WeatherDay) []domain.WeatherDay {
	out := make([]domain.WeatherDay, len(days))
	copy(out, days)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
