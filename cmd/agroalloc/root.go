package main

import (
	"github.com/oleamind/agroalloc/agroerr"
	"github.com/spf13/cobra"
)

// lastExitCode lets a RunE that returns nil (no Go error) still signal a
// non-zero exit, the way the infeasible-inputs case does: spec.md §7 is
// explicit that infeasibility is "not an error", so it can't be reported
// by returning an error from RunE, but it still needs exit code 2.
var lastExitCode = exitSuccess

func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch agroerr.KindOf(err) {
	case agroerr.KindValidation, agroerr.KindInsufficientWeather:
		return exitValidation
	case agroerr.KindInternalInvariant:
		return exitInternal
	default:
		return exitInternal
	}
}

var rootCmd = &cobra.Command{
	Use:   "agroalloc",
	Short: "Multi-field seasonal crop allocation optimiser",
	Long: `agroalloc plans which crop goes on which field and when, maximising
total profit across a planning horizon while respecting fallow periods,
area capacity, per-crop revenue caps and field/crop rotation rules.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run or inspect a crop allocation optimisation",
}
