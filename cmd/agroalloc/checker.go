package main

import (
	"github.com/oleamind/agroalloc/rules"
	"github.com/oleamind/agroalloc/violations"
)

// newChecker builds the violations.Checker adjust and progress share, backed
// by a rules.Matcher with the default expression-cache capacity (0 selects
// 128). Rules without an Expression use the built-in group matching; rules
// with one are compiled and evaluated by the matcher.
func newChecker() *violations.Checker {
	return violations.NewChecker(rules.NewMatcher(0))
}
