package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/gateway"
	"gorm.io/gorm"
)

// ResultSink implements gateway.OptimizationResultSink against Postgres,
// denormalising the allocation list into a single jsonb column rather than
// a join table, since a saved result is always read back whole.
type ResultSink struct {
	db *gorm.DB
}

func NewResultSink(db *gorm.DB) *ResultSink {
	return &ResultSink{db: db}
}

func (s *ResultSink) Save(result domain.MultiFieldOptimizationResult) error {
	allocations := result.AllAllocations()
	rows := make(AllocationList, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, AllocationRow{
			AllocationID:   a.AllocationID,
			FieldID:        a.Field.FieldID,
			CropID:         a.Crop.CropID,
			Variety:        a.Crop.Variety,
			StartDate:      a.StartDate,
			CompletionDate: a.CompletionDate,
			GrowthDays:     a.GrowthDays,
			AccumulatedGDD: a.AccumulatedGDD,
			AreaUsed:       a.AreaUsed,
			Cost:           a.Cost,
			Revenue:        a.Revenue,
			Profit:         a.Profit,
			ProfitRate:     a.ProfitRate,
			YieldFactor:    a.YieldFactor,
		})
	}

	row := OptimizationResultRow{
		OptimizationID:     result.OptimizationID,
		AlgorithmUsed:      result.AlgorithmUsed,
		OptimizationTimeMS: result.OptimizationTime.Milliseconds(),
		IsOptimal:          result.IsOptimal,
		Allocations:        rows,
	}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("store: save optimization result %s: %w", result.OptimizationID, err)
	}
	return nil
}

// Load reconstructs a saved result, resolving each allocation's field and
// crop profile through the supplied gateways so the rebuilt
// domain.CropAllocation carries live objects rather than the row's
// flattened IDs.
func (s *ResultSink) Load(optimizationID string, fields gateway.FieldSource, profiles gateway.CropProfileSource) (domain.MultiFieldOptimizationResult, bool, error) {
	var row OptimizationResultRow
	err := s.db.Where("optimization_id = ?", optimizationID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.MultiFieldOptimizationResult{}, false, nil
	}
	if err != nil {
		return domain.MultiFieldOptimizationResult{}, false, fmt.Errorf("store: load optimization result %s: %w", optimizationID, err)
	}

	byField := make(map[string][]domain.CropAllocation)
	fieldByID := make(map[string]domain.Field)
	for _, ar := range row.Allocations {
		field, ok := fieldByID[ar.FieldID]
		if !ok {
			f, found, ferr := fields.Get(ar.FieldID)
			if ferr != nil {
				return domain.MultiFieldOptimizationResult{}, false, fmt.Errorf("store: resolve field %s: %w", ar.FieldID, ferr)
			}
			if !found {
				return domain.MultiFieldOptimizationResult{}, false, fmt.Errorf("store: field %s referenced by saved result not found", ar.FieldID)
			}
			field = f
			fieldByID[ar.FieldID] = field
		}

		profile, found, perr := profiles.Get(ar.CropID, ar.Variety)
		if perr != nil {
			return domain.MultiFieldOptimizationResult{}, false, fmt.Errorf("store: resolve crop profile %s/%s: %w", ar.CropID, ar.Variety, perr)
		}
		if !found {
			return domain.MultiFieldOptimizationResult{}, false, fmt.Errorf("store: crop profile %s/%s referenced by saved result not found", ar.CropID, ar.Variety)
		}

		allocation := domain.AllocationCandidate{
			Field:          field,
			Crop:           profile.Crop,
			StartDate:      ar.StartDate,
			CompletionDate: ar.CompletionDate,
			GrowthDays:     ar.GrowthDays,
			AccumulatedGDD: ar.AccumulatedGDD,
			AreaUsed:       ar.AreaUsed,
			Cost:           ar.Cost,
			Revenue:        ar.Revenue,
			Profit:         ar.Profit,
			ProfitRate:     ar.ProfitRate,
			YieldFactor:    ar.YieldFactor,
		}.Promote()
		allocation.AllocationID = ar.AllocationID

		byField[ar.FieldID] = append(byField[ar.FieldID], allocation)
	}

	fieldIDs := make([]string, 0, len(byField))
	for id := range byField {
		fieldIDs = append(fieldIDs, id)
	}
	sort.Strings(fieldIDs)

	schedules := make([]domain.FieldSchedule, 0, len(fieldIDs))
	for _, id := range fieldIDs {
		schedules = append(schedules, domain.NewFieldSchedule(fieldByID[id], byField[id]))
	}

	result := domain.NewMultiFieldOptimizationResult(
		row.OptimizationID,
		schedules,
		row.AlgorithmUsed,
		time.Duration(row.OptimizationTimeMS)*time.Millisecond,
		row.IsOptimal,
	)
	return result, true, nil
}
