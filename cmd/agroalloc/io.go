package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/oleamind/agroalloc/agroerr"
	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/gateway"
)

// inputBundle is the JSON shape every subcommand reads its --input file
// as: spec.md §6 says "File format: JSON for all inputs and outputs",
// without prescribing a schema, so this is the one this CLI settles on.
type inputBundle struct {
	Fields           []domain.Field           `json:"fields"`
	CropProfiles     []domain.CropProfile     `json:"crop_profiles"`
	Weather          []domain.WeatherDay      `json:"weather"`
	InteractionRules []domain.InteractionRule `json:"interaction_rules"`
}

func loadBundle(path string) (inputBundle, error) {
	var bundle inputBundle
	data, err := os.ReadFile(path)
	if err != nil {
		return bundle, fmt.Errorf("%w: read input file: %v", agroerr.ErrValidation, err)
	}
	if err := json.Unmarshal(data, &bundle); err != nil {
		return bundle, fmt.Errorf("%w: parse input file: %v", agroerr.ErrValidation, err)
	}
	return bundle, nil
}

func (b inputBundle) fieldSource() gateway.FieldSource {
	return gateway.NewMemoryFieldSource(b.Fields)
}

func (b inputBundle) profileSource() gateway.CropProfileSource {
	return gateway.NewMemoryCropProfileSource(b.CropProfiles)
}

func (b inputBundle) weatherSource() gateway.WeatherSource {
	return gateway.NewMemoryWeatherSource(b.Weather)
}

func (b inputBundle) ruleSource() gateway.InteractionRuleSource {
	return gateway.NewMemoryInteractionRuleSource(b.InteractionRules)
}

// resultFile is the on-disk shape of a previously saved optimisation
// result, as read back by `optimize adjust` and `optimize progress`.
type resultFile struct {
	Result domain.MultiFieldOptimizationResult `json:"result"`
}

func loadResult(path string) (domain.MultiFieldOptimizationResult, error) {
	var rf resultFile
	data, err := os.ReadFile(path)
	if err != nil {
		return rf.Result, fmt.Errorf("%w: read result file: %v", agroerr.ErrValidation, err)
	}
	if err := json.Unmarshal(data, &rf); err != nil {
		return rf.Result, fmt.Errorf("%w: parse result file: %v", agroerr.ErrValidation, err)
	}
	return rf.Result, nil
}

func loadInstructions(path string) ([]domain.MoveInstruction, error) {
	var instructions []domain.MoveInstruction
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read instructions file: %v", agroerr.ErrValidation, err)
	}
	if err := json.Unmarshal(data, &instructions); err != nil {
		return nil, fmt.Errorf("%w: parse instructions file: %v", agroerr.ErrValidation, err)
	}
	return instructions, nil
}

// resolveConfig applies --profile then --algorithm/--local-search/--alns
// overrides on top of it, in that order, so an explicit toggle always
// wins over whatever the named profile sets.
func resolveConfig(profileName, algorithm string, localSearch, alns *bool) (config.OptimizationConfig, error) {
	cfg, err := config.Profile(profileName)
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", agroerr.ErrValidation, err)
	}

	switch algorithm {
	case "", "dp":
		cfg.EnableLocalSearch = false
		cfg.EnableALNS = false
	case "greedy":
		// keep the profile's own local-search/ALNS defaults
	default:
		return cfg, fmt.Errorf("%w: unknown algorithm %q, want dp or greedy", agroerr.ErrValidation, algorithm)
	}

	if localSearch != nil {
		cfg.EnableLocalSearch = *localSearch
	}
	if alns != nil {
		cfg.EnableALNS = *alns
	}
	return cfg, nil
}

// writeOutput renders v as JSON or a minimal table to outputPath (stdout
// when empty), per the --format flag.
func writeOutput(outputPath, format string, v any) error {
	w := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("%w: open output file: %v", agroerr.ErrInternalInvariant, err)
		}
		defer f.Close()
		return encodeTo(f, format, v)
	}
	return encodeTo(w, format, v)
}

func encodeTo(w *os.File, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("%w: encode output: %v", agroerr.ErrInternalInvariant, err)
		}
		return nil
	case "table":
		return writeTable(w, v)
	default:
		return fmt.Errorf("%w: unknown format %q, want table or json", agroerr.ErrValidation, format)
	}
}

// writeTable renders a best-effort tabular view. Only the shapes this CLI
// actually produces are handled; anything else falls back to JSON so the
// command never errors out over a cosmetic formatting gap.
func writeTable(w *os.File, v any) error {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	defer tw.Flush()

	switch val := v.(type) {
	case domain.MultiFieldOptimizationResult:
		fmt.Fprintf(tw, "optimization_id\talgorithm\toptimal\ttotal_profit\n")
		fmt.Fprintf(tw, "%s\t%s\t%t\t%.2f\n", val.OptimizationID, val.AlgorithmUsed, val.IsOptimal, val.TotalProfit)
		fmt.Fprintf(tw, "\nfield_id\tcrop_id\tstart_date\tcompletion_date\tarea_used\tprofit\n")
		for _, alloc := range val.AllAllocations() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.2f\n",
				alloc.Field.FieldID, alloc.Crop.CropID,
				alloc.StartDate.Format("2006-01-02"), alloc.CompletionDate.Format("2006-01-02"),
				alloc.AreaUsed, alloc.Profit)
		}
		return nil
	case []domain.AllocationCandidate:
		fmt.Fprintf(tw, "field_id\tcrop_id\tstart_date\tcompletion_date\tprofit_rate\n")
		for _, c := range val {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.4f\n",
				c.Field.FieldID, c.Crop.CropID,
				c.StartDate.Format("2006-01-02"), c.CompletionDate.Format("2006-01-02"),
				c.ProfitRate)
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
