package main

import (
	"context"
	"time"

	"github.com/oleamind/agroalloc/engine"
	"github.com/oleamind/agroalloc/gateway"
	"github.com/spf13/cobra"
)

func init() {
	optimizeCmd.AddCommand(allocateCmd)

	allocateCmd.Flags().String("input", "", "input JSON bundle (fields, crop_profiles, weather, interaction_rules)")
	allocateCmd.Flags().String("output", "", "output file (defaults to stdout)")
	allocateCmd.Flags().String("format", "json", "output format: table or json")
	allocateCmd.Flags().String("profile", "balanced", "config profile: fast, balanced or quality")
	allocateCmd.Flags().String("algorithm", "dp", "algorithm: dp or greedy")
	allocateCmd.Flags().Bool("local-search", false, "force local search on or off, overriding the profile")
	allocateCmd.Flags().Bool("alns", false, "force ALNS on or off, overriding the profile")
	allocateCmd.Flags().String("optimization-id", "", "id to assign to this run (required)")
	allocateCmd.Flags().String("horizon-start", "", "planning horizon start, YYYY-MM-DD")
	allocateCmd.Flags().String("horizon-end", "", "planning horizon end, YYYY-MM-DD")
	_ = allocateCmd.MarkFlagRequired("input")
	_ = allocateCmd.MarkFlagRequired("optimization-id")
	_ = allocateCmd.MarkFlagRequired("horizon-start")
	_ = allocateCmd.MarkFlagRequired("horizon-end")
}

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Run a full field/crop optimisation over a planning horizon",
	RunE:  runAllocate,
}

func runAllocate(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	profileName, _ := cmd.Flags().GetString("profile")
	algorithm, _ := cmd.Flags().GetString("algorithm")
	optimizationID, _ := cmd.Flags().GetString("optimization-id")
	horizonStartStr, _ := cmd.Flags().GetString("horizon-start")
	horizonEndStr, _ := cmd.Flags().GetString("horizon-end")

	var localSearch, alns *bool
	if cmd.Flags().Changed("local-search") {
		v, _ := cmd.Flags().GetBool("local-search")
		localSearch = &v
	}
	if cmd.Flags().Changed("alns") {
		v, _ := cmd.Flags().GetBool("alns")
		alns = &v
	}

	horizonStart, err := time.Parse("2006-01-02", horizonStartStr)
	if err != nil {
		return wrapValidation("parse horizon-start", err)
	}
	horizonEnd, err := time.Parse("2006-01-02", horizonEndStr)
	if err != nil {
		return wrapValidation("parse horizon-end", err)
	}

	cfg, err := resolveConfig(profileName, algorithm, localSearch, alns)
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
		Rules:    bundle.ruleSource(),
		Sink:     gateway.NoopResultSink{},
	}

	result, err := engine.Run(context.Background(), optimizationID, horizonStart, horizonEnd, cfg, deps, nil, engine.WallClock)
	if err != nil {
		return err
	}

	if len(result.AllAllocations()) == 0 && len(bundle.Fields) > 0 && len(bundle.CropProfiles) > 0 {
		lastExitCode = exitInfeasible
	}

	return writeOutput(output, format, result)
}
