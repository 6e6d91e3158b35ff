// Package eval reduces SassScript expressions to values.
//
// An Evaluator carries the frame expressions are looked up in and the chain
// of call sites that led to it. Evaluators are cheap to derive: With returns a
// copy bound to another frame, which is how function calls, mixin calls and
// nested blocks get their own scope without mutating the caller.
package eval

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

// MaxCallStack bounds the depth of nested function and mixin calls.
const MaxCallStack = 1024

// Context is the configuration shared by every evaluator of one compilation.
type Context struct {
	Precision   int
	Compressed  bool
	Logger      *zap.Logger
	Diagnostics io.Writer // destination of @warn and @debug output
	Warnings    []string  // messages of every @warn, in order
}

// NewContext returns a context with the default precision that logs nowhere
// and writes diagnostics to stderr.
func NewContext() *Context {
	return &Context{
		Precision:   ast.DefaultPrecision,
		Logger:      zap.NewNop(),
		Diagnostics: os.Stderr,
	}
}

func (c *Context) format() ast.Format {
	return ast.Format{Precision: c.Precision, Compressed: c.Compressed}
}

// Evaluator evaluates expressions in one frame.
type Evaluator struct {
	ctx    *Context
	env    *env.Env
	bt     *errors.Backtrace
	parent *ast.SelectorList // selector `&` refers to, nil at the root
}

// New creates an evaluator for the given frame and call chain.
func New(ctx *Context, e *env.Env, bt *errors.Backtrace) *Evaluator {
	if ctx == nil {
		ctx = NewContext()
	}
	return &Evaluator{ctx: ctx, env: e, bt: bt}
}

// Evaluate reduces expr in frame e.
func Evaluate(ctx *Context, expr ast.Expression, e *env.Env, bt *errors.Backtrace) (ast.Expression, error) {
	return New(ctx, e, bt).Evaluate(expr)
}

// With returns a copy of ev bound to another frame and call chain.
func (ev *Evaluator) With(e *env.Env, bt *errors.Backtrace) *Evaluator {
	cpy := *ev
	cpy.env = e
	cpy.bt = bt
	return &cpy
}

// WithParent returns a copy of ev in which `&` evaluates to sel.
func (ev *Evaluator) WithParent(sel *ast.SelectorList) *Evaluator {
	cpy := *ev
	cpy.parent = sel
	return &cpy
}

// Env returns the frame ev evaluates in.
func (ev *Evaluator) Env() *env.Env { return ev.env }

// Backtrace returns the current call chain.
func (ev *Evaluator) Backtrace() *errors.Backtrace { return ev.bt }

// Context returns the compilation settings.
func (ev *Evaluator) Context() *Context { return ev.ctx }

func (ev *Evaluator) errorf(code string, loc ast.SourceLocation, format string, args ...interface{}) error {
	return errors.Evalf(code, loc, ev.bt, format, args...)
}

// Evaluate reduces expr to a value. A delayed division comes back unchanged
// so it still prints as written.
func (ev *Evaluator) Evaluate(expr ast.Expression) (ast.Expression, error) {
	switch e := expr.(type) {
	case *ast.Boolean, *ast.Null, *ast.Color, *ast.String, *ast.Number:
		return e, nil
	case *ast.Variable:
		return ev.variable(e)
	case *ast.List:
		return ev.list(e)
	case *ast.Map:
		return ev.evalMap(e)
	case *ast.StringSchema:
		return ev.schema(e)
	case *ast.BinaryExpr:
		return ev.binary(e)
	case *ast.UnaryExpr:
		return ev.unary(e)
	case *ast.FunctionCall:
		return ev.call(e)
	case *ast.ParentRef:
		return ev.parentRef(e), nil
	case *ast.Argument:
		return ev.Evaluate(e.Value)
	case nil:
		return &ast.Null{}, nil
	default:
		return nil, ev.errorf(errors.ErrInvalidOperands, expr.Location(), "cannot evaluate %T", expr)
	}
}

// force evaluates expr and turns a delayed division into a real one.
func (ev *Evaluator) force(expr ast.Expression) (ast.Expression, error) {
	v, err := ev.Evaluate(expr)
	if err != nil {
		return nil, err
	}
	if b, ok := v.(*ast.BinaryExpr); ok {
		return ev.binary(b.WithPolicy(ast.Forced))
	}
	return v, nil
}

// EvaluateForced is Evaluate for contexts where `/` always divides, such as
// assignments and control directives.
func (ev *Evaluator) EvaluateForced(expr ast.Expression) (ast.Expression, error) {
	return ev.force(expr)
}

func (ev *Evaluator) variable(v *ast.Variable) (ast.Expression, error) {
	n, ok := ev.env.Lookup(v.Name)
	if !ok {
		return nil, ev.errorf(errors.ErrUndefinedVariable, v.Loc, "Undefined variable: \"%s\".", v.Name)
	}
	if a, ok := n.(*ast.Argument); ok {
		n = a.Value
	}
	value, ok := n.(ast.Expression)
	if !ok {
		return nil, ev.errorf(errors.ErrUndefinedVariable, v.Loc, "Undefined variable: \"%s\".", v.Name)
	}
	if num, ok := value.(*ast.Number); ok {
		cpy := num.Clone()
		cpy.Zero = true
		return cpy, nil
	}
	return value, nil
}

func (ev *Evaluator) list(l *ast.List) (ast.Expression, error) {
	out := &ast.List{
		Elements:  make([]ast.Expression, 0, len(l.Elements)),
		Separator: l.Separator,
		IsArglist: l.IsArglist,
		Keywords:  l.Keywords,
		Loc:       l.Loc,
	}
	for _, el := range l.Elements {
		v, err := ev.Evaluate(el)
		if err != nil {
			return nil, err
		}
		out.Elements = append(out.Elements, v)
	}
	return out, nil
}

func (ev *Evaluator) evalMap(m *ast.Map) (ast.Expression, error) {
	out := &ast.Map{Loc: m.Loc}
	seen := &ast.Map{Loc: m.Loc}
	for i, k := range m.Keys {
		key, err := ev.force(k)
		if err != nil {
			return nil, err
		}
		value, err := ev.force(m.Values[i])
		if err != nil {
			return nil, err
		}
		out.Set(key, value)
		seen.Append(key, value)
	}
	if dup := out.Duplicate(); dup != nil {
		return nil, ev.errorf(errors.ErrDuplicateKey, m.Loc, "Duplicate key \"%s\" in map %s.",
			ast.Inspect(dup), ast.Inspect(seen))
	}
	return out, nil
}

func (ev *Evaluator) schema(s *ast.StringSchema) (ast.Expression, error) {
	var b strings.Builder
	for _, part := range s.Parts {
		text, err := ev.Interpolate(part)
		if err != nil {
			return nil, err
		}
		b.WriteString(text)
	}
	return &ast.String{Value: b.String(), Quote: s.Quote, Loc: s.Loc}, nil
}

// Interpolate renders expr the way `#{}` does: strings lose their quotes,
// everything else is evaluated and written as CSS.
func (ev *Evaluator) Interpolate(expr ast.Expression) (string, error) {
	if s, ok := expr.(*ast.String); ok {
		return s.Value, nil
	}
	v, err := ev.force(expr)
	if err != nil {
		return "", err
	}
	return ev.render(v), nil
}

func (ev *Evaluator) render(v ast.Expression) string {
	switch x := v.(type) {
	case *ast.String:
		return x.Value
	case *ast.Null:
		return ""
	case *ast.List:
		sep := " "
		if x.Separator == ast.CommaSeparator {
			sep = ", "
			if ev.ctx.Compressed {
				sep = ","
			}
		}
		parts := make([]string, 0, len(x.Elements))
		for _, el := range x.Elements {
			if ast.IsInvisible(el) {
				continue
			}
			parts = append(parts, ev.render(el))
		}
		return strings.Join(parts, sep)
	default:
		return ast.ToCSS(v, ev.ctx.format())
	}
}

// ToCSS renders a value as it appears in a declaration.
func (ev *Evaluator) ToCSS(v ast.Expression) string {
	return ast.ToCSS(v, ev.ctx.format())
}

// Text renders a value the way @warn, @error and @debug print messages.
func (ev *Evaluator) Text(v ast.Expression) string {
	if s, ok := v.(*ast.String); ok {
		return s.Value
	}
	return ast.FormatValue(v, ast.Format{Precision: ev.ctx.Precision, Inspect: true})
}

// parentRef turns the enclosing selector into a comma list of space lists.
func (ev *Evaluator) parentRef(p *ast.ParentRef) ast.Expression {
	if ev.parent == nil {
		return &ast.Null{Loc: p.Loc}
	}
	out := &ast.List{Separator: ast.CommaSeparator, Loc: p.Loc}
	for _, c := range ev.parent.Items {
		link := &ast.List{Separator: ast.SpaceSeparator, Loc: p.Loc}
		for cur := c; cur != nil; cur = cur.Tail {
			if cur.Head != nil && cur.Head.Len() > 0 {
				link.Elements = append(link.Elements, &ast.String{Value: cur.Head.String(), Loc: p.Loc})
			}
			if cur.Combinator != ast.AncestorOf {
				link.Elements = append(link.Elements, &ast.String{Value: cur.Combinator.String(), Loc: p.Loc})
			}
		}
		out.Elements = append(out.Elements, link)
	}
	return out
}

// Arguments evaluates every argument of a call. A rest argument that is not
// a list becomes a one element arglist; one holding a map turns into keyword
// arguments.
func (ev *Evaluator) Arguments(args *ast.Arguments) (*ast.Arguments, error) {
	out := &ast.Arguments{}
	if args == nil {
		return out, nil
	}
	out.Loc = args.Loc
	for _, a := range args.Items {
		v, err := ev.force(a.Value)
		if err != nil {
			return nil, err
		}
		arg := &ast.Argument{Value: v, Name: a.Name, IsRest: a.IsRest, IsKeyword: a.IsKeyword, Loc: a.Loc}
		if a.IsRest {
			switch l := v.(type) {
			case *ast.Map:
				arg.IsRest, arg.IsKeyword = false, true
			case *ast.List:
				if l.Keywords != nil && l.Keywords.Len() > 0 {
					out.Items = append(out.Items, arg)
					out.HasRest = true
					arg = &ast.Argument{Value: l.Keywords, IsKeyword: true, Loc: a.Loc}
				}
			default:
				arg.Value = &ast.List{
					Elements:  []ast.Expression{v},
					Separator: ast.CommaSeparator,
					IsArglist: true,
					Loc:       v.Location(),
				}
			}
		}
		if arg.Name != "" {
			out.HasNamed = true
		}
		if arg.IsRest {
			out.HasRest = true
		}
		if arg.IsKeyword {
			out.HasKeyword = true
		}
		out.Items = append(out.Items, arg)
	}
	return out, nil
}

// callText renders a call the compiler does not know as plain CSS.
func (ev *Evaluator) callText(name string, args *ast.Arguments) string {
	sep := ", "
	if ev.ctx.Compressed {
		sep = ","
	}
	parts := make([]string, 0, args.Len())
	for _, a := range args.Items {
		text := ev.ToCSS(a.Value)
		if a.Name != "" {
			text = a.Name + ": " + text
		}
		if a.IsRest || a.IsKeyword {
			text += "..."
		}
		parts = append(parts, text)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, sep))
}
