package main

import (
	"fmt"

	"github.com/oleamind/agroalloc/agroerr"
)

// wrapValidation marks a CLI-layer error (a bad flag, an unparsable date)
// as a validation error so it maps to exit code 1, the same family as the
// core's own input-validation errors.
func wrapValidation(action string, err error) error {
	return fmt.Errorf("%w: %s: %v", agroerr.ErrValidation, action, err)
}
