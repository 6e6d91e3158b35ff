// Package extend implements @extend: the subset map the expander registers
// extensions in, and the pass that rewrites rule selectors once expansion has
// finished.
package extend

import (
	"sort"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

// Extension records that Extender extends the compound selector Target.
type Extension struct {
	Extender *ast.ComplexSelector
	Target   *ast.CompoundSelector
	Optional bool
	Loc      ast.SourceLocation

	matched bool
}

// SubsetMap stores extensions keyed by the simple selectors of their target.
// Get returns the extensions whose key is a subset of a compound selector.
type SubsetMap struct {
	entries []entry
	index   map[string][]int
}

type entry struct {
	key []string
	ext *Extension
}

// NewSubsetMap creates an empty map.
func NewSubsetMap() *SubsetMap {
	return &SubsetMap{index: map[string][]int{}}
}

// Put registers ext under the simple selectors of its target.
func (m *SubsetMap) Put(ext *Extension) {
	key := ext.Target.Strings()
	at := len(m.entries)
	m.entries = append(m.entries, entry{key: key, ext: ext})
	seen := map[string]bool{}
	for _, k := range key {
		if seen[k] {
			continue
		}
		seen[k] = true
		m.index[k] = append(m.index[k], at)
	}
}

// Get returns, in registration order, every extension whose target is made
// only of simple selectors that also appear in c.
func (m *SubsetMap) Get(c *ast.CompoundSelector) []*Extension {
	have := map[string]bool{}
	for _, s := range c.Strings() {
		have[s] = true
	}

	candidates := map[int]bool{}
	for s := range have {
		for _, i := range m.index[s] {
			candidates[i] = true
		}
	}
	order := make([]int, 0, len(candidates))
	for i := range candidates {
		if subset(m.entries[i].key, have) {
			order = append(order, i)
		}
	}
	sort.Ints(order)

	out := make([]*Extension, len(order))
	for n, i := range order {
		out[n] = m.entries[i].ext
	}
	return out
}

// Len returns the number of registered extensions.
func (m *SubsetMap) Len() int {
	return len(m.entries)
}

// Empty reports whether nothing was registered.
func (m *SubsetMap) Empty() bool {
	return len(m.entries) == 0
}

// Extensions returns every registered extension in registration order.
func (m *SubsetMap) Extensions() []*Extension {
	out := make([]*Extension, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.ext
	}
	return out
}

func subset(key []string, have map[string]bool) bool {
	for _, k := range key {
		if !have[k] {
			return false
		}
	}
	return true
}
