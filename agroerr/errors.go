// Package agroerr defines the typed error kinds from spec.md §7: input
// validation, insufficient weather and internal invariant breaches.
// Infeasibility is not an error and has no kind here. Callers use errors.Is against the sentinels below; wrapped
// errors carry additional context via fmt.Errorf("...: %w", ...).
package agroerr

import "errors"

// Kind identifies which branch of the §7 taxonomy an error belongs to.
type Kind string

const (
	// KindValidation covers malformed input: missing fields, negative
	// area/cost, non-monotone stage orders, an evaluation window outside
	// weather coverage. Surfaced to the caller; never enters the optimiser.
	KindValidation Kind = "validation"

	// KindInsufficientWeather is raised when every day in a simulation
	// window is missing all temperature data. Aborts only the affected
	// simulation, not the whole run.
	KindInsufficientWeather Kind = "insufficient_weather"

	// KindInternalInvariant marks a bug: the solver produced a state that
	// should be provably impossible (e.g. overlapping intervals out of the
	// DP). Never recovered locally.
	KindInternalInvariant Kind = "internal_invariant"
)

// Sentinels usable with errors.Is. Wrap them with fmt.Errorf("...: %w", Err...)
// to add context while preserving the kind.
var (
	ErrValidation            = errors.New("input validation error")
	ErrInsufficientWeather   = errors.New("insufficient weather data")
	ErrInternalInvariant     = errors.New("internal invariant breach")
)

// KindOf maps a sentinel to its Kind; used by adapters translating errors
// into CLI/HTTP exit codes (1 validation, 3 internal per spec.md §6).
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInsufficientWeather):
		return KindInsufficientWeather
	case errors.Is(err, ErrInternalInvariant):
		return KindInternalInvariant
	default:
		return ""
	}
}
