// Package gateway defines the boundary traits (§6) that adapters
// implement. Algorithms in the rest of the module depend only on these
// interfaces, never on a concrete adapter, so storage, transport and
// synthesis concerns stay outside the core.
package gateway

import (
	"time"

	"github.com/oleamind/agroalloc/domain"
)

// FieldSource resolves fields by id, or lists all of them.
type FieldSource interface {
	Get(fieldID string) (domain.Field, bool, error)
	GetAll() ([]domain.Field, error)
}

// CropProfileSource resolves crop profiles by crop id (and optional
// variety), or lists all of them.
type CropProfileSource interface {
	Get(cropID, variety string) (domain.CropProfile, bool, error)
	GetAll() ([]domain.CropProfile, error)
}

// WeatherSource supplies daily-resolution weather for a date range. Callers
// are expected to run it through weather.Accessor before use, so gaps get
// interpolated.
type WeatherSource interface {
	GetRange(start, end time.Time) ([]domain.WeatherDay, error)
}

// InteractionRuleSource lists the interaction rules governing crop/field
// rotation compatibility.
type InteractionRuleSource interface {
	GetRules() ([]domain.InteractionRule, error)
}

// OptimizationResultSink optionally persists a finished optimisation
// result. Implementations may no-op.
type OptimizationResultSink interface {
	Save(result domain.MultiFieldOptimizationResult) error
}
