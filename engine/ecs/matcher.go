package ecs

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Matcher is an immutable predicate over component indices. Fluent methods return new matchers.
// Two matchers with the same four index sets and filter mode share an ID.
type Matcher struct {
	allOf   []int
	anyOf   []int
	noneOf  []int
	extraOf []int

	componentEnabledFilter bool

	id         string
	components []int
}

// AllOf creates a matcher requiring every listed type.
func AllOf(types ...*ComponentType) *Matcher {
	m := &Matcher{componentEnabledFilter: true, allOf: indices(types)}
	m.finish()
	return m
}

// AnyOf creates a matcher requiring at least one of the listed types.
func AnyOf(types ...*ComponentType) *Matcher {
	m := &Matcher{componentEnabledFilter: true, anyOf: indices(types)}
	m.finish()
	return m
}

func (m *Matcher) clone() *Matcher {
	return &Matcher{
		allOf:                  m.allOf,
		anyOf:                  m.anyOf,
		noneOf:                 m.noneOf,
		extraOf:                m.extraOf,
		componentEnabledFilter: m.componentEnabledFilter,
	}
}

// AnyOf returns a copy that also requires at least one of types.
func (m *Matcher) AnyOf(types ...*ComponentType) *Matcher {
	c := m.clone()
	c.anyOf = union(c.anyOf, indices(types))
	c.finish()
	return c
}

// NoneOf returns a copy that rejects entities carrying any of types.
func (m *Matcher) NoneOf(types ...*ComponentType) *Matcher {
	c := m.clone()
	c.noneOf = union(c.noneOf, indices(types))
	c.finish()
	return c
}

// ExtraOf returns a copy that routes events for types without requiring them.
func (m *Matcher) ExtraOf(types ...*ComponentType) *Matcher {
	c := m.clone()
	c.extraOf = union(c.extraOf, indices(types))
	c.finish()
	return c
}

// WithComponentEnabledFilter returns a copy that evaluates membership against enabled components
// (true, the default) or against existing components regardless of enabled state (false).
func (m *Matcher) WithComponentEnabledFilter(enabled bool) *Matcher {
	c := m.clone()
	c.componentEnabledFilter = enabled
	c.finish()
	return c
}

func (m *Matcher) ID() string                   { return m.id }
func (m *Matcher) AllOfIndices() []int          { return m.allOf }
func (m *Matcher) AnyOfIndices() []int          { return m.anyOf }
func (m *Matcher) NoneOfIndices() []int         { return m.noneOf }
func (m *Matcher) ExtraOfIndices() []int        { return m.extraOf }
func (m *Matcher) ComponentEnabledFilter() bool { return m.componentEnabledFilter }

// Components returns every index named by the matcher, the set of types whose events the group must see.
func (m *Matcher) Components() []int {
	return m.components
}

// Matches reports whether entity's live component set satisfies the matcher.
func (m *Matcher) Matches(entity *Entity) bool {
	if entity == nil {
		return false
	}
	live := m.componentEnabledFilter
	for _, idx := range m.allOf {
		if !entity.hasLive(idx, live) {
			return false
		}
	}
	if len(m.anyOf) > 0 {
		found := false
		for _, idx := range m.anyOf {
			if entity.hasLive(idx, live) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, idx := range m.noneOf {
		if entity.hasLive(idx, live) {
			return false
		}
	}
	return true
}

func (m *Matcher) String() string {
	return m.canonical()
}

func (m *Matcher) canonical() string {
	var b strings.Builder
	write := func(tag byte, set []int) {
		b.WriteByte(tag)
		b.WriteByte(':')
		for i, idx := range set {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(idx))
		}
		b.WriteByte('|')
	}
	write('a', m.allOf)
	write('y', m.anyOf)
	write('n', m.noneOf)
	write('x', m.extraOf)
	if m.componentEnabledFilter {
		b.WriteString("e")
	} else {
		b.WriteString("c")
	}
	return b.String()
}

func (m *Matcher) finish() {
	m.id = fmt.Sprintf("%016x", xxhash.Sum64String(m.canonical()))
	all := union(nil, m.allOf)
	all = union(all, m.anyOf)
	all = union(all, m.noneOf)
	m.components = union(all, m.extraOf)
}

func indices(types []*ComponentType) []int {
	out := make([]int, 0, len(types))
	for _, t := range types {
		out = append(out, t.index)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// union returns a new sorted, de-duplicated slice; inputs are not modified.
func union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}
