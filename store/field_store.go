package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/oleamind/agroalloc/domain"
	"gorm.io/gorm"
)

// FieldStore implements gateway.FieldSource against Postgres.
type FieldStore struct {
	db *gorm.DB
}

func NewFieldStore(db *gorm.DB) *FieldStore {
	return &FieldStore{db: db}
}

func (s *FieldStore) Get(fieldID string) (domain.Field, bool, error) {
	var row FieldRow
	err := s.db.Where("field_id = ?", fieldID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Field{}, false, nil
	}
	if err != nil {
		return domain.Field{}, false, fmt.Errorf("store: get field %s: %w", fieldID, err)
	}
	field, err := fieldFromRow(row)
	if err != nil {
		return domain.Field{}, false, err
	}
	return field, true, nil
}

func (s *FieldStore) GetAll() ([]domain.Field, error) {
	var rows []FieldRow
	if err := s.db.Order("field_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list fields: %w", err)
	}
	fields := make([]domain.Field, 0, len(rows))
	for _, row := range rows {
		field, err := fieldFromRow(row)
		if err != nil {
			slog.Warn("store: skipping malformed field row", "field_id", row.FieldID, "error", err)
			continue
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// Save upserts a field. Not part of gateway.FieldSource (that interface is
// read-only) but used by whatever admin surface seeds/updates field data.
func (s *FieldStore) Save(field domain.Field) error {
	row := FieldRow{
		FieldID:          field.FieldID,
		Name:             field.Name,
		AreaSqM:          field.AreaSqM,
		DailyFixedCost:   field.DailyFixedCost,
		Location:         field.Location,
		FallowPeriodDays: field.FallowPeriodDays,
		Groups:           StringList(field.Groups),
	}
	return s.db.Save(&row).Error
}

func fieldFromRow(row FieldRow) (domain.Field, error) {
	return domain.NewField(row.FieldID, row.Name, row.AreaSqM, row.DailyFixedCost, row.FallowPeriodDays, row.Location, []string(row.Groups))
}
