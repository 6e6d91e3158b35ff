package output

import (
	"bytes"
	"strings"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

// Options configures an Emitter.
type Options struct {
	Style     Style
	Precision int       // decimal digits for numbers; 0 means ast.DefaultPrecision
	SourceMap SourceMap // optional
}

// Emitter writes an expanded stylesheet as CSS. Rules nested in the expanded
// tree are written after their parent; @import directives go first.
type Emitter struct {
	buf    *bytes.Buffer
	style  Style
	format ast.Format
	smap   SourceMap

	line    int
	column  int
	pending bool // a line break is owed before the next write
}

// NewEmitter creates an emitter for the given options.
func NewEmitter(opts Options) *Emitter {
	precision := opts.Precision
	if precision <= 0 {
		precision = ast.DefaultPrecision
	}
	return &Emitter{
		buf:    &bytes.Buffer{},
		style:  opts.Style,
		format: ast.Format{Precision: precision, Compressed: opts.Style == Compressed},
		smap:   opts.SourceMap,
	}
}

// Emit serializes root with opts.
func Emit(root *ast.Block, opts Options) string {
	return NewEmitter(opts).Emit(root)
}

// Emit serializes root. The emitter can be reused; each call starts fresh.
func (e *Emitter) Emit(root *ast.Block) string {
	e.buf.Reset()
	e.line, e.column, e.pending = 0, 0, false

	var rest []ast.Statement
	for _, s := range root.Statements {
		if imp, ok := s.(*ast.Import); ok {
			e.importRule(imp)
			continue
		}
		rest = append(rest, s)
	}
	for _, s := range rest {
		if !e.visible(s) {
			continue
		}
		e.separate()
		e.statement(s, 0)
	}

	if e.buf.Len() == 0 {
		return ""
	}
	e.pending = false
	e.raw("\n")
	return e.buf.String()
}

// writing

func (e *Emitter) raw(s string) {
	e.buf.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		e.line += strings.Count(s, "\n")
		e.column = len(s) - i - 1
	} else {
		e.column += len(s)
	}
}

func (e *Emitter) flush() {
	if e.pending && e.buf.Len() > 0 {
		e.raw("\n")
	}
	e.pending = false
}

func (e *Emitter) write(s string) {
	e.flush()
	e.raw(s)
}

func (e *Emitter) endLine() {
	if e.style != Compressed {
		e.pending = true
	}
}

// separate leaves a blank line between top-level statements.
func (e *Emitter) separate() {
	if e.style == Compressed || e.buf.Len() == 0 {
		return
	}
	e.raw("\n")
	e.pending = true
}

func (e *Emitter) indent(depth int) string {
	if e.style == Compressed {
		return ""
	}
	return strings.Repeat("  ", depth)
}

func (e *Emitter) pos() Position {
	return Position{Line: e.line, Column: e.column}
}

func (e *Emitter) open(n ast.Node) {
	if e.smap != nil {
		e.flush()
		e.smap.OpenMapping(n, e.pos())
	}
}

func (e *Emitter) close(n ast.Node) {
	if e.smap != nil {
		e.smap.CloseMapping(n, e.pos())
	}
}

func (e *Emitter) css(v ast.Expression) string {
	return ast.ToCSS(v, e.format)
}

// visibility

func (e *Emitter) visible(s ast.Statement) bool {
	switch st := s.(type) {
	case *ast.Ruleset:
		return (len(e.selectors(st)) > 0 && e.hasContent(st.Block)) || e.anyVisible(st.Block, true)
	case *ast.KeyframeRule:
		return e.hasContent(st.Block)
	case *ast.MediaBlock:
		return e.hasContent(st.Block) || e.anyVisible(st.Block, true)
	case *ast.SupportsBlock:
		return e.hasContent(st.Block) || e.anyVisible(st.Block, true)
	case *ast.AtRule:
		return st.Block == nil || e.hasContent(st.Block) || e.anyVisible(st.Block, true)
	case *ast.AtRootBlock:
		return e.anyVisible(st.Block, false)
	case *ast.Comment:
		return e.style != Compressed || st.Important
	case *ast.Declaration, *ast.Import:
		return true
	default:
		return false
	}
}

// hasContent reports whether b holds declarations or comments that will be
// written inside its braces.
func (e *Emitter) hasContent(b *ast.Block) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Statements {
		switch s.(type) {
		case *ast.Declaration:
			return true
		case *ast.Comment:
			if e.visible(s) {
				return true
			}
		}
	}
	return false
}

func (e *Emitter) anyVisible(b *ast.Block, hoistedOnly bool) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Statements {
		if hoistedOnly && !ast.IsHoistable(s) {
			continue
		}
		if e.visible(s) {
			return true
		}
	}
	return false
}

// selectors returns the complex selectors of r that can appear in CSS.
// Selectors that still contain a placeholder are dropped.
func (e *Emitter) selectors(r *ast.Ruleset) []*ast.ComplexSelector {
	list, ok := r.Selector.(*ast.SelectorList)
	if !ok {
		return nil
	}
	var out []*ast.ComplexSelector
	for _, c := range list.Items {
		if !c.HasPlaceholder() {
			out = append(out, c)
		}
	}
	return out
}

// statements

func (e *Emitter) statement(s ast.Statement, depth int) {
	switch st := s.(type) {
	case *ast.Ruleset:
		e.ruleset(st, depth)
	case *ast.KeyframeRule:
		e.open(st)
		e.block(e.css(st.Selector), st.Block, depth)
		e.close(st)
	case *ast.MediaBlock:
		e.open(st)
		e.block("@media "+e.css(st.Query), st.Block, depth)
		e.close(st)
	case *ast.SupportsBlock:
		e.open(st)
		e.block("@supports "+e.css(st.Condition), st.Block, depth)
		e.close(st)
	case *ast.AtRule:
		e.atRule(st, depth)
	case *ast.AtRootBlock:
		for _, c := range st.Block.Statements {
			if e.visible(c) {
				e.statement(c, depth)
			}
		}
	case *ast.Declaration:
		e.endLine()
		e.write(e.indent(depth))
		e.declaration(st)
		if e.style != Compressed {
			e.raw(";")
		}
		e.endLine()
	case *ast.Comment:
		e.endLine()
		e.write(e.indent(depth))
		e.comment(st)
		e.endLine()
	case *ast.Import:
		e.importRule(st)
	}
}

func (e *Emitter) ruleset(r *ast.Ruleset, depth int) {
	items := e.selectors(r)
	printed := len(items) > 0 && e.hasContent(r.Block)
	if printed {
		list := &ast.SelectorList{Items: items}
		e.open(r)
		e.braces(list.Text(e.style == Compressed), r.Block, depth, false)
		e.close(r)
	}

	inner := depth
	if printed && e.style == Nested {
		inner++
	}
	for _, s := range r.Block.Statements {
		if ast.IsHoistable(s) && e.visible(s) {
			e.statement(s, inner)
		}
	}
}

func (e *Emitter) atRule(a *ast.AtRule, depth int) {
	head := a.Keyword
	if a.Value != nil {
		if v := e.css(a.Value); v != "" {
			head += " " + v
		}
	}
	e.open(a)
	if a.Block == nil {
		e.endLine()
		e.write(e.indent(depth) + head + ";")
		e.endLine()
	} else {
		e.block(head, a.Block, depth)
	}
	e.close(a)
}

// block writes a directive: its declarations and nested statements all go
// inside the braces.
func (e *Emitter) block(head string, b *ast.Block, depth int) {
	e.braces(head, b, depth, true)
}

// braces writes head followed by the declarations and comments of b. When
// nested is set, the remaining visible statements of b are written inside the
// braces one level deeper.
func (e *Emitter) braces(head string, b *ast.Block, depth int, nested bool) {
	e.endLine()
	if e.style == Compressed {
		e.write(head + "{")
	} else {
		e.write(e.indent(depth) + head + " {")
	}

	wrote := false
	for _, s := range b.Statements {
		switch st := s.(type) {
		case *ast.Declaration:
			switch e.style {
			case Compressed:
				if wrote {
					e.raw(";")
				}
				e.declaration(st)
			case Compact:
				e.raw(" ")
				e.declaration(st)
				e.raw(";")
			default:
				e.endLine()
				e.write(e.indent(depth + 1))
				e.declaration(st)
				e.raw(";")
			}
			wrote = true
		case *ast.Comment:
			if !e.visible(st) {
				continue
			}
			switch e.style {
			case Compressed:
				e.comment(st)
			case Compact:
				e.raw(" ")
				e.comment(st)
			default:
				e.endLine()
				e.write(e.indent(depth + 1))
				e.comment(st)
			}
		}
	}

	if nested {
		for _, s := range b.Statements {
			if ast.IsHoistable(s) && e.visible(s) {
				e.statement(s, depth+1)
			}
		}
	}

	switch e.style {
	case Compressed:
		e.raw("}")
	case Expanded:
		e.endLine()
		e.write(e.indent(depth) + "}")
	default:
		e.raw(" }")
	}
	e.endLine()
}

func (e *Emitter) declaration(d *ast.Declaration) {
	e.open(d)
	sep := ": "
	if e.style == Compressed {
		sep = ":"
	}
	e.raw(e.css(d.Property) + sep + e.css(d.Value))
	if d.Important {
		if e.style == Compressed {
			e.raw("!important")
		} else {
			e.raw(" !important")
		}
	}
	e.close(d)
}

func (e *Emitter) comment(c *ast.Comment) {
	e.open(c)
	e.raw(e.css(c.Text))
	e.close(c)
}

func (e *Emitter) importRule(imp *ast.Import) {
	for _, u := range imp.URLs {
		e.open(imp)
		text := "@import " + e.css(u)
		if imp.Media != nil {
			if m := e.css(imp.Media); m != "" {
				text += " " + m
			}
		}
		e.write(text + ";")
		e.close(imp)
		e.endLine()
	}
}
