package weather

import (
	"testing"
	"time"

	"github.com/oleamind/agroalloc/agroerr"
	"github.com/oleamind/agroalloc/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	days []domain.WeatherDay
}

func (f fakeSource) GetRange(start, end time.Time) ([]domain.WeatherDay, error) {
	return f.days, nil
}

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestAccessor_SingleValidDayFillsWindow(t *testing.T) {
	src := fakeSource{days: []domain.WeatherDay{
		{Date: d(2026, 4, 2), TMax: 20, HasTMax: true, TMin: 10, HasTMin: true, TMean: 15, HasTMean: true},
	}}
	a := New(src)
	days, err := a.GetRange(d(2026, 4, 1), d(2026, 4, 5))
	require.NoError(t, err)
	for _, day := range days {
		assert.Equal(t, 15.0, day.TMean)
		assert.True(t, day.HasTMean)
	}
}

func TestAccessor_LinearInterpolationBetweenKnownDays(t *testing.T) {
	src := fakeSource{days: []domain.WeatherDay{
		{Date: d(2026, 4, 1), TMean: 10, HasTMean: true, TMax: 15, HasTMax: true, TMin: 5, HasTMin: true},
		{Date: d(2026, 4, 5), TMean: 20, HasTMean: true, TMax: 25, HasTMax: true, TMin: 15, HasTMin: true},
	}}
	a := New(src)
	days, err := a.GetRange(d(2026, 4, 1), d(2026, 4, 5))
	require.NoError(t, err)
	assert.InDelta(t, 12.5, days[1].TMean, 1e-9)
	assert.InDelta(t, 15.0, days[2].TMean, 1e-9)
	assert.InDelta(t, 17.5, days[3].TMean, 1e-9)
}

func TestAccessor_AllMissingReturnsInsufficientWeather(t *testing.T) {
	src := fakeSource{days: nil}
	a := New(src)
	_, err := a.GetRange(d(2026, 4, 1), d(2026, 4, 3))
	assert.ErrorIs(t, err, agroerr.ErrInsufficientWeather)
}
