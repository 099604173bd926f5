package store

import (
	"errors"
	"fmt"

	"github.com/oleamind/agroalloc/domain"
	"gorm.io/gorm"
)

// CropProfileStore implements gateway.CropProfileSource against Postgres.
type CropProfileStore struct {
	db *gorm.DB
}

func NewCropProfileStore(db *gorm.DB) *CropProfileStore {
	return &CropProfileStore{db: db}
}

func (s *CropProfileStore) Get(cropID, variety string) (domain.CropProfile, bool, error) {
	var row CropProfileRow
	err := s.db.Where("crop_id = ? AND variety = ?", cropID, variety).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CropProfile{}, false, nil
	}
	if err != nil {
		return domain.CropProfile{}, false, fmt.Errorf("store: get crop profile %s/%s: %w", cropID, variety, err)
	}
	profile, err := profileFromRow(row)
	if err != nil {
		return domain.CropProfile{}, false, err
	}
	return profile, true, nil
}

func (s *CropProfileStore) GetAll() ([]domain.CropProfile, error) {
	var rows []CropProfileRow
	if err := s.db.Order("crop_id ASC, variety ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list crop profiles: %w", err)
	}
	profiles := make([]domain.CropProfile, 0, len(rows))
	for _, row := range rows {
		profile, err := profileFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("store: crop profile %s/%s: %w", row.CropID, row.Variety, err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Save upserts a crop profile, stages included.
func (s *CropProfileStore) Save(profile domain.CropProfile) error {
	row := CropProfileRow{
		CropID:         profile.Crop.CropID,
		Variety:        profile.Crop.Variety,
		Name:           profile.Crop.Name,
		AreaPerUnit:    profile.Crop.AreaPerUnit,
		RevenuePerArea: profile.Crop.RevenuePerArea,
		HasRevenue:     profile.Crop.HasRevenue,
		MaxRevenue:     profile.Crop.MaxRevenue,
		HasMaxRevenue:  profile.Crop.HasMaxRevenue,
		Groups:         StringList(profile.Crop.Groups),
		Stages:         stagesToRows(profile.Stages),
	}
	return s.db.Save(&row).Error
}

func stagesToRows(stages []domain.StageRequirement) StageRequirementList {
	rows := make(StageRequirementList, 0, len(stages))
	for _, st := range stages {
		rows = append(rows, StageRequirementRow{
			StageName:              st.Stage.Name,
			StageOrder:             st.Stage.Order,
			BaseTemperature:        st.Temperature.BaseTemperature,
			OptimalMin:             st.Temperature.OptimalMin,
			OptimalMax:             st.Temperature.OptimalMax,
			LowStressThreshold:     st.Temperature.LowStressThreshold,
			HighStressThreshold:    st.Temperature.HighStressThreshold,
			FrostThreshold:         st.Temperature.FrostThreshold,
			SterilityRiskThreshold: st.Temperature.SterilityRiskThreshold,
			HasSterilityRisk:       st.Temperature.HasSterilityRisk,
			MaxTemperature:         st.Temperature.MaxTemperature,
			HasMaxTemperature:      st.Temperature.HasMaxTemperature,
			HighTempDailyImpact:    st.Temperature.HighTempDailyImpact,
			LowTempDailyImpact:     st.Temperature.LowTempDailyImpact,
			FrostDailyImpact:       st.Temperature.FrostDailyImpact,
			SterilityDailyImpact:   st.Temperature.SterilityDailyImpact,
			MinimumSunshineHours:   st.Sunshine.MinimumSunshineHours,
			TargetSunshineHours:    st.Sunshine.TargetSunshineHours,
			RequiredGDD:            st.Thermal.RequiredGDD,
			HarvestStartGDD:        st.Thermal.HarvestStartGDD,
			HasHarvestStart:        st.Thermal.HasHarvestStart,
		})
	}
	return rows
}

func profileFromRow(row CropProfileRow) (domain.CropProfile, error) {
	crop, err := domain.NewCrop(row.CropID, row.Name, row.Variety, row.AreaPerUnit, []string(row.Groups))
	if err != nil {
		return domain.CropProfile{}, err
	}
	if row.HasRevenue {
		crop = crop.WithRevenue(row.RevenuePerArea)
	}
	if row.HasMaxRevenue {
		crop = crop.WithMaxRevenue(row.MaxRevenue)
	}

	stages := make([]domain.StageRequirement, 0, len(row.Stages))
	for _, st := range row.Stages {
		stages = append(stages, domain.StageRequirement{
			Stage: domain.GrowthStage{Name: st.StageName, Order: st.StageOrder},
			Temperature: domain.TemperatureProfile{
				BaseTemperature:        st.BaseTemperature,
				OptimalMin:             st.OptimalMin,
				OptimalMax:             st.OptimalMax,
				LowStressThreshold:     st.LowStressThreshold,
				HighStressThreshold:    st.HighStressThreshold,
				FrostThreshold:         st.FrostThreshold,
				SterilityRiskThreshold: st.SterilityRiskThreshold,
				HasSterilityRisk:       st.HasSterilityRisk,
				MaxTemperature:         st.MaxTemperature,
				HasMaxTemperature:      st.HasMaxTemperature,
				HighTempDailyImpact:    st.HighTempDailyImpact,
				LowTempDailyImpact:     st.LowTempDailyImpact,
				FrostDailyImpact:       st.FrostDailyImpact,
				SterilityDailyImpact:   st.SterilityDailyImpact,
			},
			Sunshine: domain.SunshineProfile{
				MinimumSunshineHours: st.MinimumSunshineHours,
				TargetSunshineHours:  st.TargetSunshineHours,
			},
			Thermal: domain.ThermalRequirement{
				RequiredGDD:     st.RequiredGDD,
				HarvestStartGDD: st.HarvestStartGDD,
				HasHarvestStart: st.HasHarvestStart,
			},
		})
	}

	return domain.NewCropProfile(crop, stages)
}
