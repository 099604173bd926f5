package rules

import (
	"testing"

	"github.com/oleamind/agroalloc/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_DefaultGroupMatch(t *testing.T) {
	m := NewMatcher(0)
	rule := domain.InteractionRule{SourceGroup: "brassica", TargetGroup: "brassica", ImpactRatio: 0.8, IsDirectional: true}
	matched, err := m.Matches(rule, []string{"brassica"}, []string{"brassica"})
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestMatcher_CustomExpression(t *testing.T) {
	m := NewMatcher(0)
	rule := domain.InteractionRule{RuleID: "r1", ImpactRatio: 0.7, Expression: `"legume" in source_groups && "cereal" in target_groups`}

	matched, err := m.Matches(rule, []string{"legume"}, []string{"cereal"})
	require.NoError(t, err)
	assert.True(t, matched)

	impact, err := m.GetImpact(rule, []string{"legume"}, []string{"root"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, impact)

	// Second call exercises the compiled-program cache path.
	matched2, err := m.Matches(rule, []string{"legume"}, []string{"cereal"})
	require.NoError(t, err)
	assert.True(t, matched2)
}
