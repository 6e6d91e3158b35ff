package ast

import "strings"

// UnifyWith returns the compound selector matching the elements both c and
// rhs match, or nil when no element can match both. Neither operand is modified.
func (c *CompoundSelector) UnifyWith(rhs *CompoundSelector) *CompoundSelector {
	unified := rhs
	for _, s := range c.Items {
		if unified == nil {
			break
		}
		unified = unifySimple(s, unified)
	}
	return unified
}

func unifySimple(s SimpleSelector, rhs *CompoundSelector) *CompoundSelector {
	switch v := s.(type) {
	case *TypeSelector:
		return unifyType(v, rhs)
	case *QualifierSelector:
		if v.IsID() {
			for _, r := range rhs.Items {
				if q, ok := r.(*QualifierSelector); ok && q.IsID() && q.Name != v.Name {
					return nil
				}
			}
		}
	case *PseudoSelector:
		if v.IsPseudoElement() {
			for _, r := range rhs.Items {
				if p, ok := r.(*PseudoSelector); ok && p.IsPseudoElement() && p.Name != v.Name {
					return nil
				}
			}
		}
	}
	return insertSimple(s, rhs)
}

func unifyType(t *TypeSelector, rhs *CompoundSelector) *CompoundSelector {
	if rhs.Len() == 0 {
		return &CompoundSelector{Items: []SimpleSelector{t}, Loc: rhs.Loc}
	}
	if t.Name == "*" {
		return rhs.Clone()
	}
	if first, ok := rhs.Items[0].(*TypeSelector); ok {
		switch first.Name {
		case "*":
			out := rhs.Clone()
			out.Items[0] = t
			return out
		case t.Name:
			return rhs.Clone()
		default:
			return nil
		}
	}
	out := rhs.Clone()
	out.Items = append([]SimpleSelector{t}, out.Items...)
	return out
}

func isPseudoLike(s SimpleSelector) bool {
	switch s.(type) {
	case *PseudoSelector, *WrappedSelector:
		return true
	default:
		return false
	}
}

func isPseudoElement(s SimpleSelector) bool {
	p, ok := s.(*PseudoSelector)
	return ok && p.IsPseudoElement()
}

// insertSimple adds s to rhs unless rhs already has it. Pseudo selectors stay
// at the end so a pseudo-element remains last.
func insertSimple(s SimpleSelector, rhs *CompoundSelector) *CompoundSelector {
	text := s.String()
	for _, r := range rhs.Items {
		if r.String() == text {
			return rhs
		}
	}

	at := -1
	n := len(rhs.Items)
	for i, r := range rhs.Items {
		if !isPseudoLike(r) {
			continue
		}
		if isPseudoLike(s) && !isPseudoElement(rhs.Items[n-1]) {
			continue
		}
		at = i
		break
	}

	out := rhs.Clone()
	if at < 0 {
		out.Items = append(out.Items, s)
		return out
	}
	items := make([]SimpleSelector, 0, n+1)
	items = append(items, rhs.Items[:at]...)
	items = append(items, s)
	items = append(items, rhs.Items[at:]...)
	out.Items = items
	return out
}

// Minus returns the components of c whose text does not appear in rhs,
// preserving order.
func (c *CompoundSelector) Minus(rhs *CompoundSelector) *CompoundSelector {
	drop := map[string]bool{}
	for _, s := range rhs.Items {
		drop[s.String()] = true
	}
	out := &CompoundSelector{Sources: c.Sources.Clone(), HasLineBreak: c.HasLineBreak, Loc: c.Loc}
	for _, s := range c.Items {
		if !drop[s.String()] {
			out.Items = append(out.Items, s)
		}
	}
	return out
}

func pseudoElementSet(c *CompoundSelector) map[string]bool {
	set := map[string]bool{}
	for _, s := range c.Items {
		if isPseudoElement(s) {
			// :after and ::after name the same element
			set[strings.TrimLeft(s.String(), ":")] = true
		}
	}
	return set
}

func textSet(items []SimpleSelector) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s.String()] = true
	}
	return set
}

func subset(sub, super map[string]bool) bool {
	for k := range sub {
		if !super[k] {
			return false
		}
	}
	return true
}

func sameSet(a, b map[string]bool) bool {
	return len(a) == len(b) && subset(a, b)
}

// IsSuperselectorOf reports whether c matches every element rhs matches.
func (c *CompoundSelector) IsSuperselectorOf(rhs *CompoundSelector) bool {
	if rhs == nil {
		return false
	}
	if !sameSet(pseudoElementSet(c), pseudoElementSet(rhs)) {
		return false
	}

	lbase, rbase := c.Base(), rhs.Base()
	if lbase == nil {
		for _, s := range c.Items {
			if w, ok := s.(*WrappedSelector); ok && matchesAny(w, rhs) {
				return true
			}
		}
		return subset(textSet(c.Items), textSet(rhs.Items))
	}
	if rbase == nil || lbase.Name != rbase.Name {
		return false
	}
	return subset(textSet(c.Items[1:]), textSet(rhs.Items[1:]))
}

// matchesAny reports whether a `:matches()` or `:-moz-any()` selector has an
// alternative whose last compound is a superselector of rhs.
func matchesAny(w *WrappedSelector, rhs *CompoundSelector) bool {
	name := strings.ToLower(w.Name)
	if (name != ":matches" && name != ":-moz-any") || w.Selector == nil {
		return false
	}
	for _, alt := range w.Selector.Items {
		if base := alt.Base(); base != nil && base.IsSuperselectorOf(rhs) {
			return true
		}
	}
	return false
}

// IsSuperselectorOf reports whether c matches every element rhs matches,
// respecting combinators.
func (c *ComplexSelector) IsSuperselectorOf(rhs *ComplexSelector) bool {
	lhs := c
	if lhs.Head == nil || rhs.Head == nil {
		return false
	}
	if l := lhs.Innermost(); l.Combinator != AncestorOf && l.Tail == nil {
		return false
	}
	if r := rhs.Innermost(); r.Combinator != AncestorOf && r.Tail == nil {
		return false
	}

	lLen, rLen := lhs.Len(), rhs.Len()
	if lLen > rLen {
		return false
	}
	if lLen == 1 {
		return lhs.Head.IsSuperselectorOf(rhs.Base())
	}

	// the combinator lives on the link before its operand, so compare one
	// link deeper when lhs starts with a non-descendant combinator
	if rhs.Tail != nil && lhs.Tail != nil && lhs.Combinator != AncestorOf {
		if lhs.Tail.Combinator != rhs.Tail.Combinator {
			return false
		}
		if !lhs.Tail.Head.IsSuperselectorOf(rhs.Tail.Head) {
			return false
		}
	}

	var marker *ComplexSelector
	cur := rhs
	for i := 0; i < rLen-1; i++ {
		if lhs.Head.IsSuperselectorOf(cur.Head) {
			marker = cur
			break
		}
		cur = cur.Tail
	}
	if marker == nil {
		return false
	}

	switch {
	case lhs.Combinator != AncestorOf:
		if marker.Combinator == AncestorOf {
			return false
		}
		if lhs.Combinator == Precedes {
			if marker.Combinator == ParentOf {
				return false
			}
		} else if lhs.Combinator != marker.Combinator {
			return false
		}
	case marker.Combinator != AncestorOf:
		if marker.Combinator != ParentOf {
			return false
		}
	}
	return lhs.Tail.IsSuperselectorOf(marker.Tail)
}

// IsSuperselectorOf reports whether some selector in s is a superselector of c.
func (s *SelectorList) IsSuperselectorOf(c *ComplexSelector) bool {
	for _, item := range s.Items {
		if item.IsSuperselectorOf(c) {
			return true
		}
	}
	return false
}

// IsSuperselectorOfList reports whether every selector of sub is matched by
// some selector in s.
func (s *SelectorList) IsSuperselectorOfList(sub *SelectorList) bool {
	for _, c := range sub.Items {
		if !s.IsSuperselectorOf(c) {
			return false
		}
	}
	return true
}
