package main

import (
	"time"

	"github.com/oleamind/agroalloc/period"
	"github.com/oleamind/agroalloc/suggest"
	"github.com/spf13/cobra"
)

func init() {
	optimizeCmd.AddCommand(progressCmd)

	progressCmd.Flags().String("input", "", "input JSON bundle (fields, crop_profiles, weather, interaction_rules)")
	progressCmd.Flags().String("result", "", "previously saved optimisation result, as {\"result\": ...}")
	progressCmd.Flags().String("output", "", "output file (defaults to stdout)")
	progressCmd.Flags().String("format", "json", "output format: table or json")
	progressCmd.Flags().String("crop-id", "", "crop to find an insertion slot for")
	progressCmd.Flags().String("window-start", "", "earliest allowed start date, YYYY-MM-DD")
	progressCmd.Flags().String("window-end", "", "latest allowed start date, YYYY-MM-DD")
	progressCmd.Flags().String("horizon-end", "", "latest date completion may occur by, YYYY-MM-DD")
	for _, name := range []string{"input", "result", "crop-id", "window-start", "window-end", "horizon-end"} {
		_ = progressCmd.MarkFlagRequired(name)
	}
}

// progressCmd implements `optimize progress`: spec.md §6 names this
// command for the candidate-suggestion interactor (C11) — given a target
// crop and an existing solution, it reports the best insertable slot per
// field, the next move a caller could feed to `optimize adjust`.
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Suggest the best insertion slot per field for a target crop",
	RunE:  runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	resultPath, _ := cmd.Flags().GetString("result")
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	cropID, _ := cmd.Flags().GetString("crop-id")
	windowStartStr, _ := cmd.Flags().GetString("window-start")
	windowEndStr, _ := cmd.Flags().GetString("window-end")
	horizonEndStr, _ := cmd.Flags().GetString("horizon-end")

	windowStart, err := time.Parse("2006-01-02", windowStartStr)
	if err != nil {
		return wrapValidation("parse window-start", err)
	}
	windowEnd, err := time.Parse("2006-01-02", windowEndStr)
	if err != nil {
		return wrapValidation("parse window-end", err)
	}
	horizonEnd, err := time.Parse("2006-01-02", horizonEndStr)
	if err != nil {
		return wrapValidation("parse horizon-end", err)
	}

	bundle, err := loadBundle(input)
	if err != nil {
		return err
	}
	result, err := loadResult(resultPath)
	if err != nil {
		return err
	}

	suggestions, err := suggest.Suggest(result, cropID, period.Window{Start: windowStart, End: windowEnd}, horizonEnd, suggest.Dependencies{
		Fields:   bundle.fieldSource(),
		Profiles: bundle.profileSource(),
		Weather:  bundle.weatherSource(),
		Rules:    bundle.ruleSource(),
		Checker:  newChecker(),
	})
	if err != nil {
		return err
	}

	if len(suggestions) == 0 {
		lastExitCode = exitInfeasible
	}

	return writeOutput(output, format, suggestions)
}
