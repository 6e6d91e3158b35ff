package ast

import (
	"sort"
	"strings"
)

// Selector is any selector node
type Selector interface {
	Node
	selectorNode()
	String() string
}

// SimpleSelector is a single selector component with no combinator
type SimpleSelector interface {
	Selector
	simpleNode()
	Specificity() int
}

// Specificity weights. Compound, complex and list specificity is the plain sum.
const (
	SpecificityUniversal = 0
	SpecificityType      = 1
	SpecificityAttr      = 100
	SpecificityClass     = 1000
	SpecificityPseudo    = 10000
	SpecificityID        = 1000000
)

// TypeSelector is an element name or `*`, optionally namespaced
type TypeSelector struct {
	Name string
	Loc  SourceLocation
}

func (t *TypeSelector) node()         {}
func (t *TypeSelector) selectorNode() {}
func (t *TypeSelector) simpleNode()   {}

// Location returns the source location of the type selector node in the AST.
func (t *TypeSelector) Location() SourceLocation {
	return t.Loc
}

func (t *TypeSelector) String() string {
	return t.Name
}

// Specificity returns the weight of the selector.
func (t *TypeSelector) Specificity() int {
	if t.Name == "*" || strings.HasSuffix(t.Name, "|*") {
		return SpecificityUniversal
	}
	return SpecificityType
}

// QualifierSelector is a class (`.name`) or id (`#name`)
type QualifierSelector struct {
	Name string // includes the `.` or `#`
	Loc  SourceLocation
}

func (q *QualifierSelector) node()         {}
func (q *QualifierSelector) selectorNode() {}
func (q *QualifierSelector) simpleNode()   {}

// Location returns the source location of the qualifier selector node in the AST.
func (q *QualifierSelector) Location() SourceLocation {
	return q.Loc
}

func (q *QualifierSelector) String() string {
	return q.Name
}

// IsID reports whether the qualifier is an id selector.
func (q *QualifierSelector) IsID() bool {
	return strings.HasPrefix(q.Name, "#")
}

// Specificity returns the weight of the selector.
func (q *QualifierSelector) Specificity() int {
	if q.IsID() {
		return SpecificityID
	}
	return SpecificityClass
}

// AttributeSelector is `[name]` or `[name op value]`
type AttributeSelector struct {
	Name    string
	Matcher string
	Value   string // as written, including quotes
	Loc     SourceLocation
}

func (a *AttributeSelector) node()         {}
func (a *AttributeSelector) selectorNode() {}
func (a *AttributeSelector) simpleNode()   {}

// Location returns the source location of the attribute selector node in the AST.
func (a *AttributeSelector) Location() SourceLocation {
	return a.Loc
}

func (a *AttributeSelector) String() string {
	return "[" + a.Name + a.Matcher + a.Value + "]"
}

// Specificity returns the weight of the selector.
func (a *AttributeSelector) Specificity() int {
	return SpecificityAttr
}

// legacyPseudoElements may be written with a single colon.
var legacyPseudoElements = map[string]bool{
	":before":       true,
	":after":        true,
	":first-line":   true,
	":first-letter": true,
}

// PseudoSelector is `:name`, `::name` or `:name(argument)`
type PseudoSelector struct {
	Name     string // includes the colons
	Argument string // raw text between the parentheses, empty when absent
	HasArg   bool
	Loc      SourceLocation
}

func (p *PseudoSelector) node()         {}
func (p *PseudoSelector) selectorNode() {}
func (p *PseudoSelector) simpleNode()   {}

// Location returns the source location of the pseudo selector node in the AST.
func (p *PseudoSelector) Location() SourceLocation {
	return p.Loc
}

func (p *PseudoSelector) String() string {
	if p.HasArg {
		return p.Name + "(" + p.Argument + ")"
	}
	return p.Name
}

// IsPseudoElement reports whether the selector targets a pseudo-element.
func (p *PseudoSelector) IsPseudoElement() bool {
	return strings.HasPrefix(p.Name, "::") || legacyPseudoElements[strings.ToLower(p.Name)]
}

// Specificity returns the weight of the selector.
func (p *PseudoSelector) Specificity() int {
	if p.IsPseudoElement() {
		return SpecificityType
	}
	return SpecificityPseudo
}

// WrappedSelector is a pseudo-class that takes a selector list, like `:not(...)`
type WrappedSelector struct {
	Name     string // includes the colon
	Selector *SelectorList
	Loc      SourceLocation
}

func (w *WrappedSelector) node()         {}
func (w *WrappedSelector) selectorNode() {}
func (w *WrappedSelector) simpleNode()   {}

// Location returns the source location of the wrapped selector node in the AST.
func (w *WrappedSelector) Location() SourceLocation {
	return w.Loc
}

func (w *WrappedSelector) String() string {
	return w.Name + "(" + w.Selector.String() + ")"
}

// Specificity returns the weight of the selector.
func (w *WrappedSelector) Specificity() int {
	return SpecificityPseudo
}

// PlaceholderSelector is `%name`, which only exists to be extended
type PlaceholderSelector struct {
	Name string // includes the `%`
	Loc  SourceLocation
}

func (p *PlaceholderSelector) node()         {}
func (p *PlaceholderSelector) selectorNode() {}
func (p *PlaceholderSelector) simpleNode()   {}

// Location returns the source location of the placeholder selector node in the AST.
func (p *PlaceholderSelector) Location() SourceLocation {
	return p.Loc
}

func (p *PlaceholderSelector) String() string {
	return p.Name
}

// Specificity returns the weight of the selector.
func (p *PlaceholderSelector) Specificity() int {
	return SpecificityClass
}

// ParentSelector is `&`, optionally followed by a suffix as in `&-item`
type ParentSelector struct {
	Suffix string
	Loc    SourceLocation
}

func (p *ParentSelector) node()         {}
func (p *ParentSelector) selectorNode() {}
func (p *ParentSelector) simpleNode()   {}

// Location returns the source location of the parent selector node in the AST.
func (p *ParentSelector) Location() SourceLocation {
	return p.Loc
}

func (p *ParentSelector) String() string {
	return "&" + p.Suffix
}

// Specificity returns the weight of the selector.
func (p *ParentSelector) Specificity() int {
	return 0
}

// CompoundSelector is a sequence of simple selectors with no combinator
type CompoundSelector struct {
	Items        []SimpleSelector
	Sources      SourceSet
	HasLineBreak bool
	Loc          SourceLocation
}

func (c *CompoundSelector) node()         {}
func (c *CompoundSelector) selectorNode() {}

// Location returns the source location of the compound selector node in the AST.
func (c *CompoundSelector) Location() SourceLocation {
	return c.Loc
}

func (c *CompoundSelector) String() string {
	var b strings.Builder
	for _, s := range c.Items {
		b.WriteString(s.String())
	}
	return b.String()
}

// Len returns the number of simple selectors.
func (c *CompoundSelector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Base returns the leading type selector, or nil.
func (c *CompoundSelector) Base() *TypeSelector {
	if c.Len() > 0 {
		if t, ok := c.Items[0].(*TypeSelector); ok {
			return t
		}
	}
	return nil
}

// HasPlaceholder reports whether any component is a placeholder.
func (c *CompoundSelector) HasPlaceholder() bool {
	for _, s := range c.Items {
		if _, ok := s.(*PlaceholderSelector); ok {
			return true
		}
	}
	return false
}

// HasParentRef reports whether any component is `&`.
func (c *CompoundSelector) HasParentRef() bool {
	for _, s := range c.Items {
		if _, ok := s.(*ParentSelector); ok {
			return true
		}
	}
	return false
}

// Strings returns the text of each component, in order.
func (c *CompoundSelector) Strings() []string {
	out := make([]string, len(c.Items))
	for i, s := range c.Items {
		out[i] = s.String()
	}
	return out
}

// Specificity returns the summed weight of the components.
func (c *CompoundSelector) Specificity() int {
	sum := 0
	for _, s := range c.Items {
		sum += s.Specificity()
	}
	return sum
}

// Clone returns a copy with its own item slice and sources set.
func (c *CompoundSelector) Clone() *CompoundSelector {
	if c == nil {
		return nil
	}
	return &CompoundSelector{
		Items:        append([]SimpleSelector(nil), c.Items...),
		Sources:      c.Sources.Clone(),
		HasLineBreak: c.HasLineBreak,
		Loc:          c.Loc,
	}
}

// Combinator joins the compound selectors of a complex selector
type Combinator int

const (
	// AncestorOf is the descendant combinator (whitespace)
	AncestorOf Combinator = iota
	// ParentOf is `>`
	ParentOf
	// Precedes is `~`
	Precedes
	// AdjacentTo is `+`
	AdjacentTo
)

// String returns the combinator symbol, a space for the descendant combinator.
func (c Combinator) String() string {
	switch c {
	case ParentOf:
		return ">"
	case Precedes:
		return "~"
	case AdjacentTo:
		return "+"
	default:
		return " "
	}
}

// ComplexSelector is a linked chain of compound selectors. Combinator joins
// Head to Tail. Head is nil for a selector that starts with a combinator.
type ComplexSelector struct {
	Combinator   Combinator
	Head         *CompoundSelector
	Tail         *ComplexSelector
	HasLineBreak bool
	Loc          SourceLocation
}

func (c *ComplexSelector) node()         {}
func (c *ComplexSelector) selectorNode() {}

// Location returns the source location of the complex selector node in the AST.
func (c *ComplexSelector) Location() SourceLocation {
	return c.Loc
}

func (c *ComplexSelector) String() string {
	return c.Text(false)
}

// Text renders the selector, dropping spaces around combinators when compact.
func (c *ComplexSelector) Text(compact bool) string {
	var b strings.Builder
	for cur := c; cur != nil; cur = cur.Tail {
		head := ""
		if cur.Head != nil {
			head = cur.Head.String()
		}
		b.WriteString(head)
		if cur.Combinator != AncestorOf {
			if head != "" && !compact {
				b.WriteByte(' ')
			}
			b.WriteString(cur.Combinator.String())
			if cur.Tail != nil && !compact {
				b.WriteByte(' ')
			}
		} else if cur.Tail != nil && head != "" {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Len returns the number of links in the chain.
func (c *ComplexSelector) Len() int {
	n := 0
	for cur := c; cur != nil; cur = cur.Tail {
		n++
	}
	return n
}

// Innermost returns the last link of the chain.
func (c *ComplexSelector) Innermost() *ComplexSelector {
	cur := c
	for cur.Tail != nil {
		cur = cur.Tail
	}
	return cur
}

// Base returns the compound selector of the last link.
func (c *ComplexSelector) Base() *CompoundSelector {
	return c.Innermost().Head
}

// Context returns a copy of the chain without its last link, or nil when the
// chain has a single link.
func (c *ComplexSelector) Context() *ComplexSelector {
	if c.Tail == nil {
		return nil
	}
	return &ComplexSelector{
		Combinator:   c.Combinator,
		Head:         c.Head,
		Tail:         c.Tail.Context(),
		HasLineBreak: c.HasLineBreak,
		Loc:          c.Loc,
	}
}

// SetInnermost appends val after the last link, joined by comb. The receiver
// is modified in place.
func (c *ComplexSelector) SetInnermost(val *ComplexSelector, comb Combinator) {
	last := c.Innermost()
	last.Tail = val
	last.Combinator = comb
}

// Clone copies the chain links but shares the compound selector heads.
// Mutating a head through the clone is visible through the original.
func (c *ComplexSelector) Clone() *ComplexSelector {
	if c == nil {
		return nil
	}
	cpy := *c
	cpy.Tail = c.Tail.Clone()
	return &cpy
}

// CloneFully copies the chain links and every compound selector head.
func (c *ComplexSelector) CloneFully() *ComplexSelector {
	if c == nil {
		return nil
	}
	cpy := *c
	cpy.Head = c.Head.Clone()
	cpy.Tail = c.Tail.CloneFully()
	return &cpy
}

// Sources returns the union of every head's sources.
func (c *ComplexSelector) Sources() SourceSet {
	out := SourceSet{}
	for cur := c; cur != nil; cur = cur.Tail {
		if cur.Head != nil {
			out.Merge(cur.Head.Sources)
		}
	}
	return out
}

// AddSources records extension provenance on the base compound selector.
func (c *ComplexSelector) AddSources(s SourceSet) {
	if base := c.Base(); base != nil {
		if base.Sources == nil {
			base.Sources = SourceSet{}
		}
		base.Sources.Merge(s)
	}
}

// HasPlaceholder reports whether any compound selector has a placeholder.
func (c *ComplexSelector) HasPlaceholder() bool {
	for cur := c; cur != nil; cur = cur.Tail {
		if cur.Head != nil && cur.Head.HasPlaceholder() {
			return true
		}
	}
	return false
}

// HasParentRef reports whether any compound selector contains `&`.
func (c *ComplexSelector) HasParentRef() bool {
	for cur := c; cur != nil; cur = cur.Tail {
		if cur.Head != nil && cur.Head.HasParentRef() {
			return true
		}
	}
	return false
}

// Specificity returns the summed weight of every compound selector.
func (c *ComplexSelector) Specificity() int {
	sum := 0
	for cur := c; cur != nil; cur = cur.Tail {
		if cur.Head != nil {
			sum += cur.Head.Specificity()
		}
	}
	return sum
}

// SelectorList is a comma-separated group of complex selectors
type SelectorList struct {
	Items    []*ComplexSelector
	Optional bool // `!optional` on an @extend target
	Loc      SourceLocation
}

func (s *SelectorList) node()         {}
func (s *SelectorList) selectorNode() {}

// Location returns the source location of the selector list node in the AST.
func (s *SelectorList) Location() SourceLocation {
	return s.Loc
}

func (s *SelectorList) String() string {
	return s.Text(false)
}

// Text renders the list, dropping optional whitespace when compact.
func (s *SelectorList) Text(compact bool) string {
	parts := make([]string, 0, len(s.Items))
	for _, c := range s.Items {
		parts = append(parts, c.Text(compact))
	}
	if compact {
		return strings.Join(parts, ",")
	}
	return strings.Join(parts, ", ")
}

// Specificity returns the summed weight of every complex selector.
func (s *SelectorList) Specificity() int {
	sum := 0
	for _, c := range s.Items {
		sum += c.Specificity()
	}
	return sum
}

// HasParentRef reports whether any complex selector contains `&`.
func (s *SelectorList) HasParentRef() bool {
	for _, c := range s.Items {
		if c.HasParentRef() {
			return true
		}
	}
	return false
}

// CloneFully deep-copies every complex selector.
func (s *SelectorList) CloneFully() *SelectorList {
	cpy := &SelectorList{Optional: s.Optional, Loc: s.Loc}
	for _, c := range s.Items {
		cpy.Items = append(cpy.Items, c.CloneFully())
	}
	return cpy
}

// SelectorSchema is selector text with interpolants, parsed after evaluation
type SelectorSchema struct {
	Contents Expression
	Loc      SourceLocation
}

func (s *SelectorSchema) node()         {}
func (s *SelectorSchema) selectorNode() {}

// Location returns the source location of the selector schema node in the AST.
func (s *SelectorSchema) Location() SourceLocation {
	return s.Loc
}

func (s *SelectorSchema) String() string {
	return Inspect(s.Contents)
}

// SourceSet records which complex selectors an extended selector came from,
// keyed by their text.
type SourceSet map[string]*ComplexSelector

// Add records a source selector.
func (s SourceSet) Add(c *ComplexSelector) {
	s[c.String()] = c
}

// Has reports whether a selector with the same text is recorded.
func (s SourceSet) Has(c *ComplexSelector) bool {
	_, ok := s[c.String()]
	return ok
}

// Merge adds every entry of other.
func (s SourceSet) Merge(other SourceSet) {
	for k, v := range other {
		s[k] = v
	}
}

// Clone returns a copy of the set.
func (s SourceSet) Clone() SourceSet {
	if s == nil {
		return nil
	}
	out := make(SourceSet, len(s))
	out.Merge(s)
	return out
}

// Keys returns the recorded selector texts in sorted order.
func (s SourceSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
