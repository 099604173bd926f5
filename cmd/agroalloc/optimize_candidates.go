package main

import (
	"time"

	"github.com/oleamind/agroalloc/engine"
	"github.com/spf13/cobra"
)

func init() {
	optimizeCmd.AddCommand(candidatesCmd)

	candidatesCmd.Flags().String("input", "", "input JSON bundle (fields, crop_profiles, weather)")
	candidatesCmd.Flags().String("output", "", "output file (defaults to stdout)")
	candidatesCmd.Flags().String("format", "json", "output format: table or json")
	candidatesCmd.Flags().String("profile", "balanced", "config profile: fast, balanced or quality")
	candidatesCmd.Flags().String("horizon-start", "", "planning horizon start, YYYY-MM-DD")
	candidatesCmd.Flags().String("horizon-end", "", "planning horizon end, YYYY-MM-DD")
	for _, name := range []string{"input", "horizon-start", "horizon-end"} {
		_ = candidatesCmd.MarkFlagRequired(name)
	}
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Enumerate the raw candidate pool without solving",
	RunE:  runCandidates,
}

func runCandidates(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	profileName, _ := cmd.Flags().GetString("profile")
	horizonStartStr, _ := cmd.Flags().GetString("horizon-start")
	horizonEndStr, _ := cmd.Flags().GetString("horizon-end")

	horizonStart, err := time.Parse("2006-01-02", horizonStartStr)
	if err != nil {
		return wrapValidation("parse horizon-start", err)
	}
	horizonEnd, err := time.Parse("2006-01-02", horizonEndStr)
	if err != nil {
		return wrapValidation("parse horizon-end", err)
	}

	cfg, err := resolveConfig(profileName, "dp", nil, nil)
	if err != nil {
		return err
	}

	bundle, err := loadBundle(input)
	if err != nil {
		return err
	}

	deps := engine.Dependencies{
		Fields:   bundle.fieldSource(),
		Profiles: bundle.profileSource(),
		Weather:  bundle.weatherSource(),
	}

	pool, err := engine.GenerateCandidates(horizonStart, horizonEnd, cfg, deps)
	if err != nil {
		return err
	}

	if len(pool) == 0 && len(bundle.Fields) > 0 && len(bundle.CropProfiles) > 0 {
		lastExitCode = exitInfeasible
	}

	return writeOutput(output, format, pool)
}
