// Package expand turns a parsed stylesheet into the tree the emitter prints.
//
// Expansion runs every statement once: variables are assigned, control
// directives and mixins are unrolled, imports are inlined and every rule gets
// its selector resolved against the rules it is nested in. The result keeps
// nested rules inside their parents; the emitter hoists them.
package expand

import (
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/eval"
	"github.com/conduit-lang/gosass/internal/compiler/extend"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
)

// contentKey is where a mixin call stores the block passed to it.
const contentKey = "@content[m]"

// Importer loads the stylesheet an @import resolved to.
type Importer interface {
	Import(path string) (*ast.Block, error)
}

// ImporterFunc adapts an ordinary function to the Importer interface.
type ImporterFunc func(path string) (*ast.Block, error)

// Import calls f(path).
func (f ImporterFunc) Import(path string) (*ast.Block, error) {
	return f(path)
}

// frame is one level of output nesting. Wrapper frames (media, supports and
// other directives) keep their node so @at-root and media merging can reopen
// them elsewhere.
type frame struct {
	kind     string // "root", "rule", "media", "supports", "keyframes" or a directive name
	block    *ast.Block
	selector *ast.SelectorList
	query    []string
	node     ast.Statement
}

// reopen returns an empty copy of a wrapper frame.
func (f *frame) reopen() *frame {
	cpy := &frame{kind: f.kind, query: f.query}
	switch n := f.node.(type) {
	case *ast.MediaBlock:
		m := *n
		m.Block = &ast.Block{Loc: n.Block.Loc}
		cpy.node, cpy.block = &m, m.Block
	case *ast.SupportsBlock:
		s := *n
		s.Block = &ast.Block{Loc: n.Block.Loc}
		cpy.node, cpy.block = &s, s.Block
	case *ast.AtRule:
		a := *n
		a.Block = &ast.Block{Loc: n.Block.Loc}
		cpy.node, cpy.block = &a, a.Block
	}
	return cpy
}

// Expander expands one stylesheet. It is not safe for concurrent use.
type Expander struct {
	ev        *eval.Evaluator
	root      *ast.Block
	frames    []*frame
	props     []string
	extends   *extend.SubsetMap
	importer  Importer
	importing []string
}

// New creates an expander that evaluates in e.
func New(ctx *eval.Context, e *env.Env, bt *errors.Backtrace) *Expander {
	return &Expander{
		ev:      eval.New(ctx, e, bt),
		extends: extend.NewSubsetMap(),
	}
}

// WithImporter sets the importer @import loads Sass files through.
func (x *Expander) WithImporter(imp Importer) *Expander {
	x.importer = imp
	return x
}

// Extensions returns the @extend registrations collected so far.
func (x *Expander) Extensions() *extend.SubsetMap {
	return x.extends
}

// Expand expands a whole stylesheet.
func Expand(block *ast.Block, e *env.Env, bt *errors.Backtrace) (*ast.Block, error) {
	return New(nil, e, bt).Expand(block)
}

// Expand expands block, which is treated as the root of the output.
func (x *Expander) Expand(block *ast.Block) (*ast.Block, error) {
	x.root = &ast.Block{IsRoot: true, Loc: block.Loc}
	x.frames = []*frame{{kind: "root", block: x.root}}
	if err := x.statements(block.Statements); err != nil {
		return nil, err
	}
	return x.root, nil
}

func (x *Expander) logger() *zap.Logger {
	return x.ev.Context().Logger
}

func (x *Expander) top() *frame {
	return x.frames[len(x.frames)-1]
}

func (x *Expander) emit(s ast.Statement) {
	x.top().block.Append(s)
}

// selector returns the selector `&` refers to, nil outside of rules.
func (x *Expander) selector() *ast.SelectorList {
	for i := len(x.frames) - 1; i >= 0; i-- {
		switch x.frames[i].kind {
		case "rule":
			return x.frames[i].selector
		case "keyframes":
			return nil
		}
	}
	return nil
}

// depth counts the rules enclosing the current position.
func (x *Expander) depth() int {
	n := 0
	for _, f := range x.frames {
		if f.kind == "rule" {
			n++
		}
	}
	return n
}

func (x *Expander) eval() *eval.Evaluator {
	return x.ev.WithParent(x.selector())
}

// within expands body in a new block scope with frames as the output stack.
func (x *Expander) within(frames []*frame, body *ast.Block) error {
	savedFrames, savedEv := x.frames, x.ev
	x.frames = frames
	x.ev = x.ev.With(x.ev.Env().NewFrame(), x.ev.Backtrace())
	defer func() {
		x.frames, x.ev = savedFrames, savedEv
	}()
	if body == nil {
		return nil
	}
	return x.statements(body.Statements)
}

func (x *Expander) push(f *frame) []*frame {
	out := make([]*frame, 0, len(x.frames)+1)
	out = append(out, x.frames...)
	return append(out, f)
}

// wrap adds a rule for sel inside the last frame so declarations that bubble
// out of a rule keep their selector.
func wrap(frames []*frame, sel *ast.SelectorList, tabs int, loc ast.SourceLocation) []*frame {
	if sel == nil {
		return frames
	}
	rule := &ast.Ruleset{Selector: sel, Block: &ast.Block{Loc: loc}, Tabs: tabs, Loc: loc}
	frames[len(frames)-1].block.Append(rule)
	return append(frames, &frame{kind: "rule", block: rule.Block, selector: sel})
}

// reopen appends to frames a copy of every wrapper in skipped that keep
// accepts, each nested in the one before.
func reopen(frames, skipped []*frame, keep func(*frame) bool) []*frame {
	out := append([]*frame(nil), frames...)
	for _, f := range skipped {
		if f.node == nil || !keep(f) {
			continue
		}
		cpy := f.reopen()
		out[len(out)-1].block.Append(cpy.node)
		out = append(out, cpy)
	}
	return out
}

func (x *Expander) statements(stmts []ast.Statement) error {
	for _, s := range stmts {
		if err := x.statement(s); err != nil {
			return err
		}
	}
	return nil
}

func (x *Expander) statement(s ast.Statement) error {
	switch st := s.(type) {
	case *ast.Ruleset:
		return x.ruleset(st)
	case *ast.KeyframeRule:
		return x.keyframeRule(st)
	case *ast.Declaration:
		return x.declaration(st)
	case *ast.Propset:
		return x.propset(st)
	case *ast.Assignment:
		return x.eval().Assign(st)
	case *ast.If:
		block, err := x.eval().Branch(st)
		if err != nil || block == nil {
			return err
		}
		return x.statements(block.Statements)
	case *ast.For, *ast.Each, *ast.While:
		body := loopBody(st)
		return x.eval().Loop(st, func() (bool, error) {
			return false, x.statements(body.Statements)
		})
	case *ast.MediaBlock:
		return x.media(st)
	case *ast.SupportsBlock:
		return x.supports(st)
	case *ast.AtRule:
		return x.directive(st)
	case *ast.AtRootBlock:
		return x.atRoot(st)
	case *ast.Import:
		return x.importRule(st)
	case *ast.Warning:
		return x.eval().Warn(st.Message, st.Loc)
	case *ast.Error:
		return x.eval().Fail(st.Message, st.Loc)
	case *ast.Debug:
		return x.eval().Debug(st.Value, st.Loc)
	case *ast.Comment:
		return x.comment(st)
	case *ast.MixinCall:
		return x.mixinCall(st)
	case *ast.Content:
		return x.content(st)
	case *ast.Definition:
		e := x.ev.Env()
		e.SetLocal(st.Key(), st.Closure(e))
		return nil
	case *ast.Extension:
		return x.extension(st)
	case *ast.Return:
		return errors.Evalf(errors.ErrInvalidControl, st.Loc, x.ev.Backtrace(), "@return may only be used within a function")
	case *ast.Block:
		return x.within(x.frames, st)
	}
	return errors.Evalf(errors.ErrInvalidControl, s.Location(), x.ev.Backtrace(), "unexpected %T", s)
}

func loopBody(s ast.Statement) *ast.Block {
	switch st := s.(type) {
	case *ast.For:
		return st.Body
	case *ast.Each:
		return st.Body
	case *ast.While:
		return st.Body
	}
	return &ast.Block{}
}

// selectorOf parses an interpolated selector once its interpolants are
// evaluated.
func (x *Expander) selectorOf(sel ast.Selector) (*ast.SelectorList, error) {
	switch s := sel.(type) {
	case *ast.SelectorList:
		return s, nil
	case *ast.SelectorSchema:
		text, err := x.eval().Interpolate(s.Contents)
		if err != nil {
			return nil, err
		}
		return parser.ParseSelector(strings.TrimSpace(text), s.Loc)
	}
	return nil, errors.Evalf(errors.ErrInvalidParent, sel.Location(), x.ev.Backtrace(), "unexpected selector %T", sel)
}

func (x *Expander) ruleset(r *ast.Ruleset) error {
	sel, err := x.selectorOf(r.Selector)
	if err != nil {
		return err
	}
	resolved, err := Contextualize(sel, x.selector())
	if err != nil {
		return err
	}
	out := &ast.Ruleset{Selector: resolved, Block: &ast.Block{Loc: r.Block.Loc}, Tabs: x.depth(), Loc: r.Loc}
	x.emit(out)
	return x.within(x.push(&frame{kind: "rule", block: out.Block, selector: resolved}), r.Block)
}

func (x *Expander) keyframeRule(k *ast.KeyframeRule) error {
	text, err := x.eval().Interpolate(k.Selector)
	if err != nil {
		return err
	}
	out := &ast.KeyframeRule{
		Selector: &ast.String{Value: strings.TrimSpace(text), Loc: k.Loc},
		Block:    &ast.Block{Loc: k.Block.Loc},
		Loc:      k.Loc,
	}
	x.emit(out)
	return x.within(x.push(&frame{kind: "rule", block: out.Block}), k.Block)
}

func (x *Expander) declaration(d *ast.Declaration) error {
	ev := x.eval()
	name, err := ev.Interpolate(d.Property)
	if err != nil {
		return err
	}
	if n := len(x.props); n > 0 {
		name = x.props[n-1] + "-" + name
	}
	value, err := ev.Evaluate(d.Value)
	if err != nil {
		return err
	}
	if ast.IsInvisible(value) {
		return nil
	}
	if err := x.checkCSSValue(value); err != nil {
		return err
	}
	x.emit(&ast.Declaration{
		Property:  &ast.String{Value: name, Loc: d.Loc},
		Value:     value,
		Important: d.Important,
		Tabs:      x.depth(),
		Loc:       d.Loc,
	})
	return nil
}

// checkCSSValue rejects numbers whose units have no CSS spelling.
func (x *Expander) checkCSSValue(v ast.Expression) error {
	switch v := v.(type) {
	case *ast.Number:
		if !v.IsValidCSSUnit() {
			return errors.Evalf(errors.ErrInvalidValue, v.Loc, x.ev.Backtrace(), "%s isn't a valid CSS value.", ast.Inspect(v))
		}
	case *ast.List:
		for _, e := range v.Elements {
			if err := x.checkCSSValue(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *Expander) propset(p *ast.Propset) error {
	prefix, err := x.eval().Interpolate(p.Property)
	if err != nil {
		return err
	}
	if n := len(x.props); n > 0 {
		prefix = x.props[n-1] + "-" + prefix
	}
	x.props = append(x.props, prefix)
	defer func() { x.props = x.props[:len(x.props)-1] }()
	return x.statements(p.Block.Statements)
}

func (x *Expander) comment(c *ast.Comment) error {
	text, err := x.eval().Interpolate(c.Text)
	if err != nil {
		return err
	}
	x.emit(&ast.Comment{Text: &ast.String{Value: text, Loc: c.Loc}, Important: c.Important, Loc: c.Loc})
	return nil
}

// Directives

func (x *Expander) mediaQueries(q ast.Expression) ([]string, error) {
	ev := x.eval()
	items := []ast.Expression{q}
	if list, ok := q.(*ast.List); ok && list.Separator == ast.CommaSeparator {
		items = list.Elements
	}
	var out []string
	for _, item := range items {
		text, err := ev.Interpolate(item)
		if err != nil {
			return nil, err
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}

// mergeQueries combines the queries of nested media blocks: every outer
// query is joined with every inner one.
func mergeQueries(outer, inner []string) []string {
	out := make([]string, 0, len(outer)*len(inner))
	for _, o := range outer {
		for _, i := range inner {
			out = append(out, o+" and "+i)
		}
	}
	return out
}

func queryList(qs []string, loc ast.SourceLocation) *ast.List {
	list := &ast.List{Separator: ast.CommaSeparator, Loc: loc}
	for _, q := range qs {
		list.Elements = append(list.Elements, &ast.String{Value: q, Loc: loc})
	}
	return list
}

// media expands @media. Inside a rule the block is wrapped in that rule's
// selector; inside another media block the queries are merged and the result
// is placed beside the outer block.
func (x *Expander) media(m *ast.MediaBlock) error {
	queries, err := x.mediaQueries(m.Query)
	if err != nil {
		return err
	}
	sel := x.selector()

	outer := -1
	for i := len(x.frames) - 1; i >= 0; i-- {
		if x.frames[i].kind == "media" {
			outer = i
			break
		}
	}
	base, skipped := x.frames, []*frame(nil)
	if outer >= 0 {
		queries = mergeQueries(x.frames[outer].query, queries)
		base, skipped = x.frames[:outer], x.frames[outer+1:]
	}

	node := &ast.MediaBlock{Query: queryList(queries, m.Loc), Block: &ast.Block{Loc: m.Block.Loc}, Tabs: x.depth(), Loc: m.Loc}
	frames := append([]*frame(nil), base...)
	frames[len(frames)-1].block.Append(node)
	frames = append(frames, &frame{kind: "media", block: node.Block, query: queries, node: node})
	frames = reopen(frames, skipped, func(*frame) bool { return true })
	return x.within(wrap(frames, sel, x.depth(), m.Loc), m.Block)
}

func (x *Expander) supports(s *ast.SupportsBlock) error {
	cond, err := x.eval().Interpolate(s.Condition)
	if err != nil {
		return err
	}
	node := &ast.SupportsBlock{
		Condition: &ast.String{Value: strings.TrimSpace(cond), Loc: s.Loc},
		Block:     &ast.Block{Loc: s.Block.Loc},
		Tabs:      x.depth(),
		Loc:       s.Loc,
	}
	x.emit(node)
	frames := x.push(&frame{kind: "supports", block: node.Block, node: node})
	return x.within(wrap(frames, x.selector(), x.depth(), s.Loc), s.Block)
}

// directive expands at-rules the compiler passes through. @keyframes resets
// selector nesting; other directives with blocks bubble like @media.
func (x *Expander) directive(a *ast.AtRule) error {
	node := &ast.AtRule{Keyword: a.Keyword, Tabs: x.depth(), Loc: a.Loc}
	if a.Value != nil {
		text, err := x.eval().Interpolate(a.Value)
		if err != nil {
			return err
		}
		node.Value = &ast.String{Value: strings.TrimSpace(text), Loc: a.Loc}
	}
	x.emit(node)
	if a.Block == nil {
		return nil
	}
	node.Block = &ast.Block{Loc: a.Block.Loc}

	if a.IsKeyframes() {
		return x.within(x.push(&frame{kind: "keyframes", block: node.Block, node: node}), a.Block)
	}
	kind := strings.ToLower(strings.TrimPrefix(a.Keyword, "@"))
	frames := x.push(&frame{kind: kind, block: node.Block, node: node})
	return x.within(wrap(frames, x.selector(), x.depth(), a.Loc), a.Block)
}

// atRoot expands @at-root. Output goes to the innermost enclosing block none
// of whose wrappers the query excludes; wrappers it keeps that sit inside an
// excluded one are reopened there.
func (x *Expander) atRoot(a *ast.AtRootBlock) error {
	q := a.Query
	sel := x.selector()

	frames := []*frame{x.frames[0]}
	i := 1
	for ; i < len(x.frames); i++ {
		if q.Exclude(x.frames[i].kind) {
			break
		}
		frames = append(frames, x.frames[i])
	}
	frames = reopen(frames, x.frames[i:], func(f *frame) bool { return !q.Exclude(f.kind) })

	if !q.Exclude("rule") && sel != nil {
		inRule := false
		for _, f := range frames {
			if f.kind == "rule" && f.selector == sel {
				inRule = true
			}
		}
		if !inRule {
			frames = wrap(frames, sel, 0, a.Loc)
		}
	}
	return x.within(frames, a.Block)
}

// Imports

func (x *Expander) importRule(imp *ast.Import) error {
	for _, path := range imp.Files {
		if err := x.importFile(path, imp.Loc); err != nil {
			return err
		}
	}
	if len(imp.URLs) == 0 {
		return nil
	}

	ev := x.eval()
	out := &ast.Import{Loc: imp.Loc}
	for _, u := range imp.URLs {
		v, err := ev.Evaluate(u)
		if err != nil {
			return err
		}
		out.URLs = append(out.URLs, v)
	}
	if imp.Media != nil {
		queries, err := x.mediaQueries(imp.Media)
		if err != nil {
			return err
		}
		out.Media = &ast.String{Value: strings.Join(queries, ", "), Loc: imp.Loc}
	}
	x.root.Append(out)
	return nil
}

// importFile expands an imported stylesheet in place, in the current scope.
func (x *Expander) importFile(path string, loc ast.SourceLocation) error {
	bt := x.ev.Backtrace()
	if x.importer == nil {
		return errors.Evalf(errors.ErrImportNotFound, loc, bt, "File to import not found or unreadable: %s.", path)
	}
	for _, p := range x.importing {
		if p == path {
			return errors.Evalf(errors.ErrImportRead, loc, bt, "An @import loop has been found: %s imports itself", path)
		}
	}

	x.logger().Debug("importing stylesheet", zap.String("path", path), zap.Stringer("from", loc))
	block, err := x.importer.Import(path)
	if err != nil {
		return errors.Wrap(err, errors.EvaluationError, errors.ErrImportRead, loc, bt)
	}

	x.importing = append(x.importing, path)
	defer func() { x.importing = x.importing[:len(x.importing)-1] }()
	return x.statements(block.Statements)
}

// Mixins

func (x *Expander) mixinCall(c *ast.MixinCall) error {
	ev := x.eval()
	if err := ev.CheckDepth(c.Loc); err != nil {
		return err
	}
	def, ok := ev.Env().Definition(eval.MixinKey(c.Name))
	if !ok {
		return errors.Evalf(errors.ErrUndefinedMixin, c.Loc, ev.Backtrace(), "no mixin named %s", c.Name)
	}
	args, err := ev.Arguments(c.Args)
	if err != nil {
		return err
	}

	defining, ok := def.Environment.(*env.Env)
	if !ok || defining == nil {
		defining = ev.Env().Global()
	}
	frame := env.NewFunctionFrame(defining)
	if err := ev.Bind("mixin "+c.Name, def.Params, args, frame); err != nil {
		return err
	}
	if c.Content != nil {
		frame.SetLocal(contentKey, &ast.Definition{
			Name:        "@content",
			Body:        c.Content,
			Kind:        ast.MixinDefinition,
			Environment: ev.Env(),
			Loc:         c.Loc,
		})
	}

	saved := x.ev
	x.ev = ev.With(frame, ev.Backtrace().Push(c.Loc, ", in mixin `"+c.Name+"`"))
	defer func() { x.ev = saved }()
	if def.Body == nil {
		return nil
	}
	return x.statements(def.Body.Statements)
}

// content expands the block passed to the running mixin in the scope of the
// code that included it.
func (x *Expander) content(c *ast.Content) error {
	def, ok := x.ev.Env().Definition(contentKey)
	if !ok {
		return nil
	}
	caller, ok := def.Environment.(*env.Env)
	if !ok {
		return nil
	}
	saved := x.ev
	x.ev = x.ev.With(caller, x.ev.Backtrace().Push(c.Loc, ", in mixin `@content`"))
	defer func() { x.ev = saved }()
	return x.within(x.frames, def.Body)
}

// Extensions

func (x *Expander) extension(e *ast.Extension) error {
	bt := x.ev.Backtrace()
	extender := x.selector()
	if extender == nil {
		return errors.Evalf(errors.ErrExtend, e.Loc, bt, "Extend directives may only be used within rules.")
	}
	target, err := x.selectorOf(e.Selector)
	if err != nil {
		return err
	}
	for _, c := range target.Items {
		if c.Tail != nil || c.Head.Len() == 0 {
			return errors.Evalf(errors.ErrExtend, e.Loc, bt, "nested selectors may not be extended")
		}
		for _, from := range extender.Items {
			x.extends.Put(&extend.Extension{
				Extender: from,
				Target:   c.Head,
				Optional: target.Optional,
				Loc:      e.Loc,
			})
		}
	}
	return nil
}
