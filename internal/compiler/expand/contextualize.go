package expand

import (
	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

// link is one compound selector of a complex selector together with the
// combinator that follows it.
type link struct {
	head         *ast.CompoundSelector
	comb         ast.Combinator
	hasLineBreak bool
	loc          ast.SourceLocation
}

func links(c *ast.ComplexSelector) []link {
	var out []link
	for cur := c; cur != nil; cur = cur.Tail {
		out = append(out, link{head: cur.Head, comb: cur.Combinator, hasLineBreak: cur.HasLineBreak, loc: cur.Loc})
	}
	return out
}

// chain rebuilds a complex selector from its links. A link without a head
// merges its combinator into the link before it.
func chain(ls []link) *ast.ComplexSelector {
	var compact []link
	for _, l := range ls {
		if l.head.Len() == 0 && len(compact) > 0 {
			prev := &compact[len(compact)-1]
			if l.comb != ast.AncestorOf {
				prev.comb = l.comb
			}
			continue
		}
		compact = append(compact, l)
	}
	var out *ast.ComplexSelector
	for i := len(compact) - 1; i >= 0; i-- {
		l := compact[i]
		out = &ast.ComplexSelector{
			Combinator:   l.comb,
			Head:         l.head,
			Tail:         out,
			HasLineBreak: l.hasLineBreak,
			Loc:          l.loc,
		}
	}
	return out
}

// Contextualize resolves a nested selector against the selector of the rule
// it is nested in. Every combination of parent and child is produced, parent
// major. A child without `&` is joined to the parent with a descendant
// combinator; otherwise each `&` is replaced by the parent. An `&` inside a
// wrapped selector such as `:not(&)` is replaced by the whole parent list and
// suppresses the implicit descendant join.
func Contextualize(sel, parent *ast.SelectorList) (*ast.SelectorList, error) {
	if parent == nil || len(parent.Items) == 0 {
		if hasAnyParentRef(sel) {
			return nil, errors.Evalf(errors.ErrInvalidParent, sel.Loc, nil,
				"Base-level rules cannot contain the parent-selector-referencing character '&'.")
		}
		return sel, nil
	}

	children := make([]*ast.ComplexSelector, len(sel.Items))
	wrappedOnly := make([]bool, len(sel.Items))
	for i, c := range sel.Items {
		resolved, wrapped, err := resolveWrapped(c, parent)
		if err != nil {
			return nil, err
		}
		children[i] = resolved
		wrappedOnly[i] = wrapped && !resolved.HasParentRef()
	}

	out := &ast.SelectorList{Optional: sel.Optional, Loc: sel.Loc}
	for pi, p := range parent.Items {
		for i, c := range children {
			if wrappedOnly[i] {
				if pi == 0 {
					out.Items = append(out.Items, c)
				}
				continue
			}
			combined, err := resolve(c, p)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, combined)
		}
	}
	return out, nil
}

// resolveWrapped replaces wrapped selectors that reference `&` with copies
// resolved against parent. It reports whether any were replaced.
func resolveWrapped(c *ast.ComplexSelector, parent *ast.SelectorList) (*ast.ComplexSelector, bool, error) {
	if !hasWrappedParentRef(c) {
		return c, false, nil
	}
	var ls []link
	for _, l := range links(c) {
		head := l.head.Clone()
		if head != nil {
			for i, s := range head.Items {
				w, ok := s.(*ast.WrappedSelector)
				if !ok || w.Selector == nil || !hasAnyParentRef(w.Selector) {
					continue
				}
				inner, err := Contextualize(w.Selector, parent)
				if err != nil {
					return nil, false, err
				}
				head.Items[i] = &ast.WrappedSelector{Name: w.Name, Selector: inner, Loc: w.Loc}
			}
		}
		ls = append(ls, link{head: head, comb: l.comb, hasLineBreak: l.hasLineBreak, loc: l.loc})
	}
	out := chain(ls)
	out.HasLineBreak = c.HasLineBreak
	return out, true, nil
}

func hasAnyParentRef(sel *ast.SelectorList) bool {
	for _, c := range sel.Items {
		if c.HasParentRef() || hasWrappedParentRef(c) {
			return true
		}
	}
	return false
}

func hasWrappedParentRef(c *ast.ComplexSelector) bool {
	for cur := c; cur != nil; cur = cur.Tail {
		if cur.Head == nil {
			continue
		}
		for _, s := range cur.Head.Items {
			if w, ok := s.(*ast.WrappedSelector); ok && w.Selector != nil && hasAnyParentRef(w.Selector) {
				return true
			}
		}
	}
	return false
}

func resolve(c, parent *ast.ComplexSelector) (*ast.ComplexSelector, error) {
	if !c.HasParentRef() {
		// A trailing combinator on the parent is kept.
		ls := append(links(parent.CloneFully()), links(c.CloneFully())...)
		out := chain(ls)
		out.HasLineBreak = c.HasLineBreak
		return out, nil
	}

	var ls []link
	for _, l := range links(c) {
		if l.head == nil || !l.head.HasParentRef() {
			ls = append(ls, link{head: l.head.Clone(), comb: l.comb, hasLineBreak: l.hasLineBreak, loc: l.loc})
			continue
		}
		expanded, err := substitute(l, parent)
		if err != nil {
			return nil, err
		}
		ls = append(ls, expanded...)
	}
	out := chain(ls)
	out.HasLineBreak = c.HasLineBreak
	return out, nil
}

// substitute replaces the `&` at the start of l with the links of parent.
// Whatever follows `&` in the compound is appended to the parent's last
// compound; a suffix such as `&-item` extends its last simple selector.
func substitute(l link, parent *ast.ComplexSelector) ([]link, error) {
	ref, ok := l.head.Items[0].(*ast.ParentSelector)
	if !ok {
		return nil, errors.Evalf(errors.ErrInvalidParent, l.head.Loc, nil,
			"Invalid CSS after \"%s\": \"&\" may only be used at the beginning of a compound selector.", l.head.Items[0])
	}
	for _, s := range l.head.Items[1:] {
		if _, nested := s.(*ast.ParentSelector); nested {
			return nil, errors.Evalf(errors.ErrInvalidParent, l.head.Loc, nil,
				"\"&\" may only be used at the beginning of a compound selector.")
		}
	}

	ls := links(parent.CloneFully())
	last := &ls[len(ls)-1]
	if last.head == nil {
		last.head = &ast.CompoundSelector{Loc: l.head.Loc}
	}
	if ref.Suffix != "" {
		n := len(last.head.Items)
		if n == 0 {
			return nil, errors.Evalf(errors.ErrInvalidParent, ref.Loc, nil, "Invalid parent selector for \"%s\"", ref)
		}
		suffixed, ok := withSuffix(last.head.Items[n-1], ref.Suffix)
		if !ok {
			return nil, errors.Evalf(errors.ErrInvalidParent, ref.Loc, nil, "Invalid parent selector for \"%s\"", ref)
		}
		last.head.Items[n-1] = suffixed
	}
	last.head.Items = append(last.head.Items, l.head.Items[1:]...)
	last.head.HasLineBreak = l.head.HasLineBreak
	if l.comb != ast.AncestorOf {
		last.comb = l.comb
	}
	return ls, nil
}

func withSuffix(s ast.SimpleSelector, suffix string) (ast.SimpleSelector, bool) {
	switch v := s.(type) {
	case *ast.TypeSelector:
		cpy := *v
		cpy.Name += suffix
		return &cpy, true
	case *ast.QualifierSelector:
		cpy := *v
		cpy.Name += suffix
		return &cpy, true
	case *ast.PlaceholderSelector:
		cpy := *v
		cpy.Name += suffix
		return &cpy, true
	}
	return nil, false
}
