package gateway

import (
	"sort"
	"time"

	"github.com/oleamind/agroalloc/domain"
)

// MemoryFieldSource is an in-memory FieldSource, mainly used by tests and
// the CLI's file-backed mode.
type MemoryFieldSource struct {
	fields map[string]domain.Field
}

// NewMemoryFieldSource indexes the given fields by id.
func NewMemoryFieldSource(fields []domain.Field) *MemoryFieldSource {
	m := make(map[string]domain.Field, len(fields))
	for _, f := range fields {
		m[f.FieldID] = f
	}
	return &MemoryFieldSource{fields: m}
}

func (s *MemoryFieldSource) Get(fieldID string) (domain.Field, bool, error) {
	f, ok := s.fields[fieldID]
	return f, ok, nil
}

func (s *MemoryFieldSource) GetAll() ([]domain.Field, error) {
	out := make([]domain.Field, 0, len(s.fields))
	for _, f := range s.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldID < out[j].FieldID })
	return out, nil
}

// MemoryCropProfileSource is an in-memory CropProfileSource.
type MemoryCropProfileSource struct {
	profiles map[string]domain.CropProfile
}

// NewMemoryCropProfileSource indexes profiles by "cropID/variety".
func NewMemoryCropProfileSource(profiles []domain.CropProfile) *MemoryCropProfileSource {
	m := make(map[string]domain.CropProfile, len(profiles))
	for _, p := range profiles {
		m[profileKey(p.Crop.CropID, p.Crop.Variety)] = p
	}
	return &MemoryCropProfileSource{profiles: m}
}

func profileKey(cropID, variety string) string { return cropID + "/" + variety }

func (s *MemoryCropProfileSource) Get(cropID, variety string) (domain.CropProfile, bool, error) {
	p, ok := s.profiles[profileKey(cropID, variety)]
	return p, ok, nil
}

func (s *MemoryCropProfileSource) GetAll() ([]domain.CropProfile, error) {
	out := make([]domain.CropProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Crop.CropID < out[j].Crop.CropID })
	return out, nil
}

// MemoryWeatherSource serves weather from an in-memory slice, sorted by
// date; GetRange returns the days that fall within [start, end].
type MemoryWeatherSource struct {
	days []domain.WeatherDay
}

// NewMemoryWeatherSource constructs a MemoryWeatherSource over days.
func NewMemoryWeatherSource(days []domain.WeatherDay) *MemoryWeatherSource {
	sorted := make([]domain.WeatherDay, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return &MemoryWeatherSource{days: sorted}
}

func (s *MemoryWeatherSource) GetRange(start, end time.Time) ([]domain.WeatherDay, error) {
	out := make([]domain.WeatherDay, 0, len(s.days))
	for _, d := range s.days {
		if !d.Date.Before(start) && !d.Date.After(end) {
			out = append(out, d)
		}
	}
	return out, nil
}

// MemoryInteractionRuleSource serves a fixed set of rules.
type MemoryInteractionRuleSource struct {
	rules []domain.InteractionRule
}

// NewMemoryInteractionRuleSource constructs a MemoryInteractionRuleSource.
func NewMemoryInteractionRuleSource(rules []domain.InteractionRule) *MemoryInteractionRuleSource {
	return &MemoryInteractionRuleSource{rules: rules}
}

func (s *MemoryInteractionRuleSource) GetRules() ([]domain.InteractionRule, error) {
	return s.rules, nil
}

// NoopResultSink discards the result; the default when no OptimizationResultSink is configured.
type NoopResultSink struct{}

func (NoopResultSink) Save(domain.MultiFieldOptimizationResult) error { return nil }
