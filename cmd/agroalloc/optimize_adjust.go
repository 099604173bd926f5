package main

import (
	"time"

	"github.com/oleamind/agroalloc/adjust"
	"github.com/spf13/cobra"
)

func init() {
	optimizeCmd.AddCommand(adjustCmd)

	adjustCmd.Flags().String("input", "", "input JSON bundle (fields, crop_profiles, weather, interaction_rules)")
	adjustCmd.Flags().String("result", "", "previously saved optimisation result, as {\"result\": ...}")
	adjustCmd.Flags().String("instructions", "", "JSON file holding an array of MoveInstructions")
	adjustCmd.Flags().String("output", "", "output file (defaults to stdout)")
	adjustCmd.Flags().String("format", "json", "output format: table or json")
	adjustCmd.Flags().String("horizon-end", "", "latest date completion may occur by, YYYY-MM-DD")
	for _, name := range []string{"input", "result", "instructions", "horizon-end"} {
		_ = adjustCmd.MarkFlagRequired(name)
	}
}

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Replay move instructions against a saved solution",
	RunE:  runAdjust,
}

func runAdjust(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	resultPath, _ := cmd.Flags().GetString("result")
	instructionsPath, _ := cmd.Flags().GetString("instructions")
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	horizonEndStr, _ := cmd.Flags().GetString("horizon-end")

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
	instructions, err := loadInstructions(instructionsPath)
	if err != nil {
		return err
	}

	outcome, err := adjust.Apply(result, instructions, horizonEnd, adjust.Dependencies{
		Fields:   bundle.fieldSource(),
		Profiles: bundle.profileSource(),
		Weather:  bundle.weatherSource(),
		Rules:    bundle.ruleSource(),
		Checker:  newChecker(),
	})
	if err != nil {
		return err
	}

	if len(outcome.Rejected) > 0 && len(outcome.Applied) == 0 {
		lastExitCode = exitInfeasible
	}

	return writeOutput(output, format, outcome)
}
