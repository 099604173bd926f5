// Package rules resolves domain.InteractionRule matches. The default path
// is the built-in group-membership matching on domain.InteractionRule
// itself; when a rule carries a free-form Expression, Matcher compiles and
// caches it with expr-lang/expr instead, the way mbflow's engine package
// caches compiled condition programs per condition string.
package rules

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/oleamind/agroalloc/domain"
)

// env is the variable environment exposed to a rule's Expression.
type env struct {
	SourceGroups []string `expr:"source_groups"`
	TargetGroups []string `expr:"target_groups"`
}

// Matcher evaluates InteractionRule.Matches, falling back to a compiled
// expr-lang program when a rule supplies a custom Expression. Compiled
// programs are cached in an LRU keyed by expression text so repeated
// evaluations against the same rule set (once per candidate, per move) do
// not recompile.
type Matcher struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.RWMutex
}

type cacheEntry struct {
	key     string
	program *vm.Program
}

// NewMatcher constructs a Matcher with the given LRU capacity for compiled
// expressions (0 defaults to 128).
func NewMatcher(capacity int) *Matcher {
	if capacity <= 0 {
		capacity = 128
	}
	return &Matcher{capacity: capacity, cache: make(map[string]*list.Element), lru: list.New()}
}

// Matches reports whether rule applies to the ordered (source, target)
// group pair, using the rule's custom Expression when present.
func (m *Matcher) Matches(rule domain.InteractionRule, sourceGroups, targetGroups []string) (bool, error) {
	if rule.Expression == "" {
		return rule.Matches(sourceGroups, targetGroups), nil
	}

	program, err := m.compile(rule.Expression)
	if err != nil {
		return false, fmt.Errorf("rules: compile expression for rule %s: %w", rule.RuleID, err)
	}

	out, err := expr.Run(program, env{SourceGroups: sourceGroups, TargetGroups: targetGroups})
	if err != nil {
		return false, fmt.Errorf("rules: evaluate expression for rule %s: %w", rule.RuleID, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("rules: expression for rule %s must evaluate to a bool, got %T", rule.RuleID, out)
	}
	return matched, nil
}

// GetImpact returns the rule's impact ratio when it matches, 1.0 otherwise.
func (m *Matcher) GetImpact(rule domain.InteractionRule, sourceGroups, targetGroups []string) (float64, error) {
	matched, err := m.Matches(rule, sourceGroups, targetGroups)
	if err != nil {
		return 1.0, err
	}
	if matched {
		return rule.ImpactRatio, nil
	}
	return 1.0, nil
}

func (m *Matcher) compile(expression string) (*vm.Program, error) {
	m.mu.RLock()
	if el, ok := m.cache[expression]; ok {
		m.mu.RUnlock()
		m.mu.Lock()
		m.lru.MoveToFront(el)
		m.mu.Unlock()
		return el.Value.(*cacheEntry).program, nil
	}
	m.mu.RUnlock()

	program, err := expr.Compile(expression, expr.Env(env{}), expr.AsBool())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.cache[expression]; ok {
		m.lru.MoveToFront(el)
		return el.Value.(*cacheEntry).program, nil
	}
	el := m.lru.PushFront(&cacheEntry{key: expression, program: program})
	m.cache[expression] = el
	if m.lru.Len() > m.capacity {
		oldest := m.lru.Back()
		if oldest != nil {
			m.lru.Remove(oldest)
			delete(m.cache, oldest.Value.(*cacheEntry).key)
		}
	}
	return program, nil
}
