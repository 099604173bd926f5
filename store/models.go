// Package store provides gorm/Postgres-backed implementations of the
// gateway interfaces, plus a Redis read-through cache for weather lookups.
// Row types are used only within this package; conversions to/from domain types
// live next to the store that owns them.
package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList persists a []string as a JSON array column, the same
// raw-JSON-column approach the teacher uses for PostGISGeoJSON.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	return string(b), err
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("store: cannot scan %T into StringList", value)
	}
	if len(bytes) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(bytes, (*[]string)(s))
}

// FieldRow is the Postgres row backing domain.Field.
type FieldRow struct {
	FieldID          string `gorm:"primaryKey;column:field_id"`
	Name             string
	AreaSqM          float64
	DailyFixedCost   float64
	Location         string
	FallowPeriodDays int
	Groups           StringList `gorm:"type:jsonb"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StageRequirementRow is the JSON-serialisable shape of one
// domain.StageRequirement, stored inline in CropProfileRow.Stages rather
// than as a separate table — a crop profile's stage list is always read
// and written as a whole, never queried by stage.
type StageRequirementRow struct {
	StageName              string  `json:"stage_name"`
	StageOrder              int     `json:"stage_order"`
	BaseTemperature         float64 `json:"base_temperature"`
	OptimalMin              float64 `json:"optimal_min"`
	OptimalMax              float64 `json:"optimal_max"`
	LowStressThreshold      float64 `json:"low_stress_threshold"`
	HighStressThreshold     float64 `json:"high_stress_threshold"`
	FrostThreshold          float64 `json:"frost_threshold"`
	SterilityRiskThreshold  float64 `json:"sterility_risk_threshold"`
	HasSterilityRisk        bool    `json:"has_sterility_risk"`
	MaxTemperature          float64 `json:"max_temperature"`
	HasMaxTemperature       bool    `json:"has_max_temperature"`
	HighTempDailyImpact     float64 `json:"high_temp_daily_impact"`
	LowTempDailyImpact      float64 `json:"low_temp_daily_impact"`
	FrostDailyImpact        float64 `json:"frost_daily_impact"`
	SterilityDailyImpact    float64 `json:"sterility_daily_impact"`
	MinimumSunshineHours    float64 `json:"minimum_sunshine_hours"`
	TargetSunshineHours     float64 `json:"target_sunshine_hours"`
	RequiredGDD             float64 `json:"required_gdd"`
	HarvestStartGDD         float64 `json:"harvest_start_gdd"`
	HasHarvestStart         bool    `json:"has_harvest_start"`
}

// StageRequirementList persists []StageRequirementRow as a JSON column.
type StageRequirementList []StageRequirementRow

func (s StageRequirementList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]StageRequirementRow(s))
	return string(b), err
}

func (s *StageRequirementList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("store: cannot scan %T into StageRequirementList", value)
	}
	if len(bytes) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(bytes, (*[]StageRequirementRow)(s))
}

// CropProfileRow is the Postgres row backing domain.CropProfile. Keyed by
// (crop_id, variety) since that is how gateway.CropProfileSource.Get looks
// profiles up.
type CropProfileRow struct {
	CropID         string `gorm:"primaryKey;column:crop_id"`
	Variety        string `gorm:"primaryKey;column:variety"`
	Name           string
	AreaPerUnit    float64
	RevenuePerArea float64
	HasRevenue     bool
	MaxRevenue     float64
	HasMaxRevenue  bool
	Groups         StringList            `gorm:"type:jsonb"`
	Stages         StageRequirementList  `gorm:"type:jsonb"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WeatherDayRow is the Postgres row backing domain.WeatherDay, one row per
// calendar day.
type WeatherDayRow struct {
	Date                time.Time `gorm:"primaryKey;column:date"`
	TMax                float64
	HasTMax             bool
	TMin                float64
	HasTMin             bool
	TMean               float64
	HasTMean            bool
	PrecipitationSum    float64
	HasPrecipitation    bool
	SunshineDurationSec float64
	HasSunshineDuration bool
	WindSpeed           float64
	HasWindSpeed        bool
	WeatherCode         int
	HasWeatherCode      bool
}

// InteractionRuleRow is the Postgres row backing domain.InteractionRule.
type InteractionRuleRow struct {
	RuleID        string `gorm:"primaryKey;column:rule_id"`
	RuleType      string
	SourceGroup   string
	TargetGroup   string
	ImpactRatio   float64
	IsDirectional bool
	Description   string
	Expression    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AllocationRow is the JSON-serialisable shape of one domain.CropAllocation,
// stored inline in OptimizationResultRow.
type AllocationRow struct {
	AllocationID   string    `json:"allocation_id"`
	FieldID        string    `json:"field_id"`
	CropID         string    `json:"crop_id"`
	Variety        string    `json:"variety"`
	StartDate      time.Time `json:"start_date"`
	CompletionDate time.Time `json:"completion_date"`
	GrowthDays     int       `json:"growth_days"`
	AccumulatedGDD float64   `json:"accumulated_gdd"`
	AreaUsed       float64   `json:"area_used"`
	Cost           float64   `json:"cost"`
	Revenue        float64   `json:"revenue"`
	Profit         float64   `json:"profit"`
	ProfitRate     float64   `json:"profit_rate"`
	YieldFactor    float64   `json:"yield_factor"`
}

// AllocationList persists []AllocationRow as a JSON column.
type AllocationList []AllocationRow

func (a AllocationList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]AllocationRow(a))
	return string(b), err
}

func (a *AllocationList) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("store: cannot scan %T into AllocationList", value)
	}
	if len(bytes) == 0 {
		*a = nil
		return nil
	}
	return json.Unmarshal(bytes, (*[]AllocationRow)(a))
}

// OptimizationResultRow is the Postgres row backing one saved
// domain.MultiFieldOptimizationResult. The per-field schedule breakdown is
// reconstructed from AllocationRow.FieldID on load rather than persisted
// separately, since FieldSchedule's aggregates are always recomputed from
// its allocations anyway (domain.NewFieldSchedule).
type OptimizationResultRow struct {
	OptimizationID    string `gorm:"primaryKey;column:optimization_id"`
	AlgorithmUsed     string
	OptimizationTimeMS int64
	IsOptimal         bool
	Allocations       AllocationList `gorm:"type:jsonb"`
	CreatedAt         time.Time
}
