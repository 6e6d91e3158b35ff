package extend

import (
	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

// Apply rewrites the selector of every rule in root so that it also matches
// the selectors registered as extending it. It fails when a target that is
// not `!optional` never matched any rule.
func Apply(root *ast.Block, m *SubsetMap) error {
	if m == nil || m.Empty() {
		return nil
	}
	walk(root, m)
	for _, ext := range m.Extensions() {
		if ext.matched || ext.Optional {
			continue
		}
		target := ext.Target.String()
		return errors.Evalf(errors.ErrExtend, ext.Loc, nil,
			"\"%s\" failed to @extend \"%s\".\nThe selector \"%s\" was not found.\nUse \"@extend %s !optional\" if the extend should be able to fail.",
			ext.Extender, target, target, target)
	}
	return nil
}

func walk(b *ast.Block, m *SubsetMap) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		switch st := s.(type) {
		case *ast.Ruleset:
			if list, ok := st.Selector.(*ast.SelectorList); ok {
				st.Selector = ExtendList(list, m)
			}
			walk(st.Block, m)
		case *ast.MediaBlock:
			walk(st.Block, m)
		case *ast.SupportsBlock:
			walk(st.Block, m)
		case *ast.AtRule:
			walk(st.Block, m)
		case *ast.AtRootBlock:
			walk(st.Block, m)
		}
	}
}

// ExtendList returns list followed by every selector the registered
// extensions derive from it. Derived selectors are themselves extended until
// nothing new appears.
func ExtendList(list *ast.SelectorList, m *SubsetMap) *ast.SelectorList {
	out := &ast.SelectorList{Items: append([]*ast.ComplexSelector(nil), list.Items...), Optional: list.Optional, Loc: list.Loc}
	seen := map[string]bool{}
	for _, c := range list.Items {
		seen[c.String()] = true
	}

	queue := append([]*ast.ComplexSelector(nil), list.Items...)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, r := range extendComplex(c, m) {
			text := r.String()
			if seen[text] || covered(out.Items, r) {
				continue
			}
			seen[text] = true
			out.Items = append(out.Items, r)
			queue = append(queue, r)
		}
	}
	return out
}

func covered(existing []*ast.ComplexSelector, c *ast.ComplexSelector) bool {
	for _, e := range existing {
		if e.IsSuperselectorOf(c) {
			return true
		}
	}
	return false
}

type link struct {
	head *ast.CompoundSelector
	comb ast.Combinator
}

func links(c *ast.ComplexSelector) []link {
	var out []link
	for cur := c; cur != nil; cur = cur.Tail {
		out = append(out, link{head: cur.Head.Clone(), comb: cur.Combinator})
	}
	return out
}

func cloneLinks(ls []link) []link {
	out := make([]link, len(ls))
	for i, l := range ls {
		out[i] = link{head: l.head.Clone(), comb: l.comb}
	}
	return out
}

func chain(ls []link, loc ast.SourceLocation) *ast.ComplexSelector {
	var out *ast.ComplexSelector
	for i := len(ls) - 1; i >= 0; i-- {
		out = &ast.ComplexSelector{Combinator: ls[i].comb, Head: ls[i].head, Tail: out, Loc: loc}
	}
	return out
}

func concat(parts ...[]link) []link {
	var out []link
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// extendComplex derives the selectors produced by extending each compound
// selector of c.
func extendComplex(c *ast.ComplexSelector, m *SubsetMap) []*ast.ComplexSelector {
	var out []*ast.ComplexSelector
	ls := links(c)
	sources := c.Sources()

	for i, l := range ls {
		if l.head.Len() == 0 {
			continue
		}
		for _, ext := range m.Get(l.head) {
			if sources.Has(ext.Extender) || ext.Extender.String() == c.String() {
				continue
			}
			ext.matched = true

			base := ext.Extender.Base()
			if base == nil {
				continue
			}
			unified := base.UnifyWith(l.head.Minus(ext.Target))
			if unified == nil {
				continue
			}
			unified = unified.Clone()
			unified.Sources = nil

			prefix := ls[:i]
			suffix := cloneLinks(ls[i+1:])
			replaced := []link{{head: unified, comb: l.comb}}
			context := links(ext.Extender.Context())

			var orders [][]link
			switch {
			case len(prefix) == 0:
				orders = append(orders, concat(context, replaced, suffix))
			case len(context) == 0:
				orders = append(orders, concat(cloneLinks(prefix), replaced, suffix))
			default:
				if prefix[len(prefix)-1].comb == ast.AncestorOf {
					orders = append(orders, concat(cloneLinks(prefix), context, replaced, suffix))
				}
				outer := links(ext.Extender.Context())
				outer[len(outer)-1].comb = ast.AncestorOf
				orders = append(orders, concat(outer, cloneLinks(prefix), replaced, suffix))
			}

			for _, ord := range orders {
				derived := chain(ord, c.Loc)
				src := sources.Clone()
				if src == nil {
					src = ast.SourceSet{}
				}
				src.Add(ext.Extender)
				derived.AddSources(src)
				out = append(out, derived)
			}
		}
	}
	return out
}
