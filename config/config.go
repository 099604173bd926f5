// Package config defines OptimizationConfig (spec.md §3) and the
// fast/balanced/quality presets, loadable from TOML via
// github.com/BurntSushi/toml the way NikeGunn-tutu loads ~/.tutu/config.toml.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// OptimizationConfig recognises the options described in spec.md §3.
type OptimizationConfig struct {
	EnableParallelCandidateGeneration bool `toml:"enable_parallel_candidate_generation"`

	EnableCandidateFiltering  bool    `toml:"enable_candidate_filtering"`
	MinProfitRateThreshold    float64 `toml:"min_profit_rate_threshold"`
	MinRevenueCostRatio       float64 `toml:"min_revenue_cost_ratio"`
	MaxCandidatesPerFieldCrop int     `toml:"max_candidates_per_field_crop"`

	EnableLocalSearch         bool `toml:"enable_local_search"`
	MaxLocalSearchIterations  int  `toml:"max_local_search_iterations"`
	EnableNeighborSampling    bool `toml:"enable_neighbor_sampling"`
	MaxNeighborsPerIteration  int  `toml:"max_neighbors_per_iteration"`

	EnableALNS                        bool    `toml:"enable_alns"`
	ALNSIterations                    int     `toml:"alns_iterations"`
	ALNSRemovalRate                   float64 `toml:"alns_removal_rate"`
	ALNSAcceptWorseProbabilityInitial float64 `toml:"alns_accept_worse_probability_initial"`
	ALNSCoolingRate                   float64 `toml:"alns_cooling_rate"`

	EnableAdaptiveEarlyStopping bool    `toml:"enable_adaptive_early_stopping"`
	MaxNoImprovement            int     `toml:"max_no_improvement"`
	ImprovementThresholdRatio    float64 `toml:"improvement_threshold_ratio"`

	QuantityLevels           []float64 `toml:"quantity_levels"`
	AreaAdjustmentMultipliers []float64 `toml:"area_adjustment_multipliers"`

	// RandomSeed seeds the single RNG threaded through candidate sampling
	// and the ALNS driver so a run is reproducible (spec.md §5).
	RandomSeed int64 `toml:"random_seed"`

	// DebugLogging is the one process-wide knob spec.md §6/§9 allows; it
	// must be passed at construction, never read from the environment by
	// the core itself.
	DebugLogging bool `toml:"debug_logging"`
}

// Fast favours speed: DP only, aggressive filtering, no local search.
func Fast() OptimizationConfig {
	return OptimizationConfig{
		EnableParallelCandidateGeneration: true,
		EnableCandidateFiltering:          true,
		MinProfitRateThreshold:            0.05,
		MinRevenueCostRatio:               1.1,
		MaxCandidatesPerFieldCrop:         5,
		EnableLocalSearch:                 false,
		MaxLocalSearchIterations:          0,
		EnableALNS:                        false,
		QuantityLevels:                    []float64{1.0},
		AreaAdjustmentMultipliers:         []float64{1.0},
		RandomSeed:                        1,
	}
}

// Balanced runs DP followed by a bounded hill-climb.
func Balanced() OptimizationConfig {
	return OptimizationConfig{
		EnableParallelCandidateGeneration: true,
		EnableCandidateFiltering:          true,
		MinProfitRateThreshold:            0.0,
		MinRevenueCostRatio:               1.0,
		MaxCandidatesPerFieldCrop:         20,
		EnableLocalSearch:                 true,
		MaxLocalSearchIterations:          200,
		EnableNeighborSampling:            true,
		MaxNeighborsPerIteration:          50,
		EnableAdaptiveEarlyStopping:       true,
		MaxNoImprovement:                  15,
		ImprovementThresholdRatio:         0.001,
		QuantityLevels:                    []float64{0.5, 1.0, 1.5},
		AreaAdjustmentMultipliers:         []float64{0.75, 1.0, 1.25},
		RandomSeed:                        1,
	}
}

// Quality runs DP followed by a full ALNS search.
func Quality() OptimizationConfig {
	return OptimizationConfig{
		EnableParallelCandidateGeneration: true,
		EnableCandidateFiltering:          false,
		MaxCandidatesPerFieldCrop:         0,
		EnableLocalSearch:                 true,
		MaxLocalSearchIterations:          1000,
		EnableALNS:                        true,
		ALNSIterations:                    500,
		ALNSRemovalRate:                   0.2,
		ALNSAcceptWorseProbabilityInitial: 0.3,
		ALNSCoolingRate:                   0.995,
		EnableAdaptiveEarlyStopping:       true,
		MaxNoImprovement:                  50,
		ImprovementThresholdRatio:         0.0001,
		QuantityLevels:                    []float64{0.25, 0.5, 0.75, 1.0, 1.25, 1.5},
		AreaAdjustmentMultipliers:         []float64{0.5, 0.75, 1.0, 1.25, 1.5},
		RandomSeed:                        1,
	}
}

// Profile resolves a named preset ("fast" | "balanced" | "quality").
func Profile(name string) (OptimizationConfig, error) {
	switch name {
	case "fast":
		return Fast(), nil
	case "balanced":
		return Balanced(), nil
	case "quality":
		return Quality(), nil
	default:
		return OptimizationConfig{}, fmt.Errorf("config: unknown profile %q", name)
	}
}

// Load reads an OptimizationConfig from a TOML file, starting from the
// balanced preset's defaults and overlaying whatever the file sets.
func Load(path string) (OptimizationConfig, error) {
	cfg := Balanced()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return OptimizationConfig{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}
