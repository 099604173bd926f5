package domain

import "fmt"

// Crop is a variety of plant that can be grown on a Field. Revenue fields
// are optional: when RevenuePerArea is zero the objective falls back to
// cost minimisation (see period.Optimize).
type Crop struct {
	CropID         string
	Name           string
	Variety        string
	AreaPerUnit    float64
	RevenuePerArea float64
	HasRevenue     bool
	MaxRevenue     float64
	HasMaxRevenue  bool
	Groups         []string
}

// NewCrop validates and constructs a Crop.
func NewCrop(cropID, name, variety string, areaPerUnit float64, groups []string) (Crop, error) {
	if cropID == "" {
		return Crop{}, fmt.Errorf("crop: crop_id must not be empty")
	}
	if areaPerUnit <= 0 {
		return Crop{}, fmt.Errorf("crop %s: area_per_unit must be positive, got %f", cropID, areaPerUnit)
	}
	return Crop{
		CropID:      cropID,
		Name:        name,
		Variety:     variety,
		AreaPerUnit: areaPerUnit,
		Groups:      groups,
	}, nil
}

// WithRevenue returns a copy of the crop with revenue_per_area set.
func (c Crop) WithRevenue(revenuePerArea float64) Crop {
	c.RevenuePerArea = revenuePerArea
	c.HasRevenue = true
	return c
}

// WithMaxRevenue returns a copy of the crop with max_revenue set.
func (c Crop) WithMaxRevenue(maxRevenue float64) Crop {
	c.MaxRevenue = maxRevenue
	c.HasMaxRevenue = true
	return c
}

// HasGroup reports whether the crop carries the given tag (botanical
// family, functional group, ...).
func (c Crop) HasGroup(group string) bool {
	for _, g := range c.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// CapRevenue clamps revenue to the crop's max_revenue when set.
func (c Crop) CapRevenue(revenue float64) float64 {
	if c.HasMaxRevenue && revenue > c.MaxRevenue {
		return c.MaxRevenue
	}
	return revenue
}
