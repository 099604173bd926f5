package httpapi

import (
	"fmt"
	"time"

	"github.com/oleamind/agroalloc/agroerr"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/gateway"
	"github.com/oleamind/agroalloc/period"
	"github.com/oleamind/agroalloc/rules"
	"github.com/oleamind/agroalloc/violations"
)

// errNoResultLoader is returned when deps.Sink does not implement
// resultLoader, so /optimize/adjust and /optimize/suggest have nothing to
// read a prior result back from (the in-memory reference sink has no
// durable store to load from, for instance).
var errNoResultLoader = fmt.Errorf("%w: optimization result sink does not support reloading a saved result", agroerr.ErrInternalInvariant)

// resultLoader is satisfied by store.ResultSink; declared locally so
// httpapi depends only on the gateway.OptimizationResultSink interface
// plus this optional capability, not on the store package directly.
type resultLoader interface {
	Load(optimizationID string, fields gateway.FieldSource, profiles gateway.CropProfileSource) (domain.MultiFieldOptimizationResult, bool, error)
}

// agroerrWrap marks a request-binding failure as a validation error so
// errorResponse maps it to 400 instead of 500.
func agroerrWrap(err error) error {
	return fmt.Errorf("%w: %v", agroerr.ErrValidation, err)
}

func periodWindow(start, end time.Time) period.Window {
	return period.Window{Start: start, End: end}
}

// violationsChecker builds a checker with no interaction rules wired in
// beyond what deps.Rules supplies at call time; adjust.Apply and
// suggest.Suggest both pass rules through their own Dependencies.Rules
// field, so the checker itself only needs the built-in matcher.
func violationsChecker() *violations.Checker {
	return violations.NewChecker(rules.NewMatcher(0))
}
