package store

import (
	"fmt"
	"time"

	"github.com/oleamind/agroalloc/domain"
	"gorm.io/gorm"
)

// WeatherStore implements gateway.WeatherSource against Postgres.
type WeatherStore struct {
	db *gorm.DB
}

func NewWeatherStore(db *gorm.DB) *WeatherStore {
	return &WeatherStore{db: db}
}

func (s *WeatherStore) GetRange(start, end time.Time) ([]domain.WeatherDay, error) {
	var rows []WeatherDayRow
	err := s.db.Where("date >= ? AND date <= ?", start, end).Order("date ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: get weather range %s..%s: %w", start.Format("2006-01-02"), end.Format("2006-01-02"), err)
	}
	days := make([]domain.WeatherDay, 0, len(rows))
	for _, row := range rows {
		days = append(days, weatherDayFromRow(row))
	}
	return days, nil
}

// Save upserts a batch of weather days, one row per day.
func (s *WeatherStore) Save(days []domain.WeatherDay) error {
	if len(days) == 0 {
		return nil
	}
	rows := make([]WeatherDayRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, weatherDayToRow(d))
	}
	return s.db.Save(&rows).Error
}

func weatherDayToRow(d domain.WeatherDay) WeatherDayRow {
	return WeatherDayRow{
		Date:                d.Date,
		TMax:                d.TMax,
		HasTMax:             d.HasTMax,
		TMin:                d.TMin,
		HasTMin:             d.HasTMin,
		TMean:               d.TMean,
		HasTMean:            d.HasTMean,
		PrecipitationSum:    d.PrecipitationSum,
		HasPrecipitation:    d.HasPrecipitation,
		SunshineDurationSec: d.SunshineDuration.Seconds(),
		HasSunshineDuration: d.HasSunshineDuration,
		WindSpeed:           d.WindSpeed,
		HasWindSpeed:        d.HasWindSpeed,
		WeatherCode:         d.WeatherCode,
		HasWeatherCode:      d.HasWeatherCode,
	}
}

func weatherDayFromRow(row WeatherDayRow) domain.WeatherDay {
	return domain.WeatherDay{
		Date:                 row.Date,
		TMax:                 row.TMax,
		HasTMax:              row.HasTMax,
		TMin:                 row.TMin,
		HasTMin:              row.HasTMin,
		TMean:                row.TMean,
		HasTMean:             row.HasTMean,
		PrecipitationSum:     row.PrecipitationSum,
		HasPrecipitation:     row.HasPrecipitation,
		SunshineDuration:     time.Duration(row.SunshineDurationSec) * time.Second,
		HasSunshineDuration:  row.HasSunshineDuration,
		WindSpeed:            row.WindSpeed,
		HasWindSpeed:         row.HasWindSpeed,
		WeatherCode:          row.WeatherCode,
		HasWeatherCode:       row.HasWeatherCode,
	}
}
