// Command agroalloc is the CLI adapter for the optimisation engine: a
// thin outer layer over the domain/engine packages, following the same
// one-command-per-file layout as the teacher's agent CLI.
package main

import (
	"fmt"
	"os"
)

// Exit codes per spec.md §6: 0 success, 1 validation error, 2 infeasible
// inputs, 3 internal error.
const (
	exitSuccess    = 0
	exitValidation = 1
	exitInfeasible = 2
	exitInternal   = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}
	return lastExitCode
}
