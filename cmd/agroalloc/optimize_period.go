package main

import (
	"time"

	"github.com/oleamind/agroalloc/engine"
	"github.com/oleamind/agroalloc/period"
	"github.com/spf13/cobra"
)

func init() {
	optimizeCmd.AddCommand(periodCmd)

	periodCmd.Flags().String("input", "", "input JSON bundle (fields, crop_profiles, weather)")
	periodCmd.Flags().String("output", "", "output file (defaults to stdout)")
	periodCmd.Flags().String("format", "json", "output format: table or json")
	periodCmd.Flags().String("field-id", "", "field to evaluate")
	periodCmd.Flags().String("crop-id", "", "crop to evaluate")
	periodCmd.Flags().String("variety", "", "crop variety, if any")
	periodCmd.Flags().String("window-start", "", "earliest allowed start date, YYYY-MM-DD")
	periodCmd.Flags().String("window-end", "", "latest allowed start date, YYYY-MM-DD")
	periodCmd.Flags().String("horizon-end", "", "latest date completion may occur by, YYYY-MM-DD")
	periodCmd.Flags().Float64("area-used", 0, "area to allocate, in the field's area unit")
	for _, name := range []string{"input", "field-id", "crop-id", "window-start", "window-end", "horizon-end"} {
		_ = periodCmd.MarkFlagRequired(name)
	}
}

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Find the best start date for one field/crop pair inside a window",
	RunE:  runPeriod,
}

func runPeriod(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	fieldID, _ := cmd.Flags().GetString("field-id")
	cropID, _ := cmd.Flags().GetString("crop-id")
	variety, _ := cmd.Flags().GetString("variety")
	windowStartStr, _ := cmd.Flags().GetString("window-start")
	windowEndStr, _ := cmd.Flags().GetString("window-end")
	horizonEndStr, _ := cmd.Flags().GetString("horizon-end")
	areaUsed, _ := cmd.Flags().GetFloat64("area-used")

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

	deps := engine.Dependencies{
		Fields:   bundle.fieldSource(),
		Profiles: bundle.profileSource(),
		Weather:  bundle.weatherSource(),
	}

	result, err := engine.EvaluatePeriodFor(fieldID, cropID, variety, period.Window{Start: windowStart, End: windowEnd}, horizonEnd, areaUsed, deps)
	if err != nil {
		return err
	}

	if !result.HasBest {
		lastExitCode = exitInfeasible
	}

	return writeOutput(output, format, result)
}
