package eval

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

// Run executes a function body. It returns the value of the first @return
// reached, or nil when the block finishes without one.
func (ev *Evaluator) Run(b *ast.Block) (ast.Expression, error) {
	if b == nil {
		return nil, nil
	}
	for _, s := range b.Statements {
		result, err := ev.exec(s)
		if err != nil || result != nil {
			return result, err
		}
	}
	return nil, nil
}

func (ev *Evaluator) exec(s ast.Statement) (ast.Expression, error) {
	switch st := s.(type) {
	case *ast.Assignment:
		return nil, ev.Assign(st)
	case *ast.If:
		block, err := ev.Branch(st)
		if err != nil {
			return nil, err
		}
		return ev.Run(block)
	case *ast.For, *ast.Each, *ast.While:
		var result ast.Expression
		err := ev.Loop(st, func() (bool, error) {
			r, err := ev.Run(loopBody(st))
			result = r
			return r != nil, err
		})
		return result, err
	case *ast.Return:
		return ev.force(st.Value)
	case *ast.Warning:
		return nil, ev.Warn(st.Message, st.Loc)
	case *ast.Error:
		return nil, ev.Fail(st.Message, st.Loc)
	case *ast.Debug:
		return nil, ev.Debug(st.Value, st.Loc)
	case *ast.Comment:
		return nil, nil
	default:
		return nil, ev.errorf(errors.ErrInvalidControl, s.Location(),
			"Functions can only contain variable declarations and control directives.")
	}
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
	return nil
}

// Assign performs a variable assignment in the current frame.
func (ev *Evaluator) Assign(a *ast.Assignment) error {
	return ev.env.Assign(a.Name, a.IsGlobal, a.IsDefault, func() (ast.Expression, error) {
		return ev.force(a.Value)
	})
}

// Branch evaluates the predicate of an @if and returns the block to run, nil
// when the predicate is false and there is no @else.
func (ev *Evaluator) Branch(i *ast.If) (*ast.Block, error) {
	pred, err := ev.force(i.Predicate)
	if err != nil {
		return nil, err
	}
	if ast.IsTruthy(pred) {
		return i.Consequent, nil
	}
	return i.Alternative, nil
}

// Loop drives @for, @each and @while. Loop variables are bound in the current
// frame for each iteration and restored afterwards. body returning true stops
// the loop.
func (ev *Evaluator) Loop(s ast.Statement, body func() (bool, error)) error {
	switch st := s.(type) {
	case *ast.For:
		return ev.loopFor(st, body)
	case *ast.Each:
		return ev.loopEach(st, body)
	case *ast.While:
		for {
			pred, err := ev.force(st.Predicate)
			if err != nil {
				return err
			}
			if !ast.IsTruthy(pred) {
				return nil
			}
			stop, err := body()
			if err != nil || stop {
				return err
			}
		}
	}
	return ev.errorf(errors.ErrInvalidControl, s.Location(), "%T is not a loop", s)
}

// saved remembers the local bindings a loop overwrites.
type saved struct {
	frame *env.Env
	names []string
	old   []ast.Node
}

func save(frame *env.Env, names ...string) *saved {
	s := &saved{frame: frame, names: names, old: make([]ast.Node, len(names))}
	for i, n := range names {
		if v, ok := frame.GetLocal(n); ok {
			s.old[i] = v
		}
	}
	return s
}

func (s *saved) restore() {
	for i, n := range s.names {
		if s.old[i] == nil {
			s.frame.DelLocal(n)
		} else {
			s.frame.SetLocal(n, s.old[i])
		}
	}
}

func (ev *Evaluator) loopFor(f *ast.For, body func() (bool, error)) error {
	low, err := ev.force(f.Lower)
	if err != nil {
		return err
	}
	start, ok := low.(*ast.Number)
	if !ok {
		return ev.errorf(errors.ErrInvalidControl, low.Location(), "lower bound of `@for` directive must be numeric")
	}
	high, err := ev.force(f.Upper)
	if err != nil {
		return err
	}
	end, ok := high.(*ast.Number)
	if !ok {
		return ev.errorf(errors.ErrInvalidControl, high.Location(), "upper bound of `@for` directive must be numeric")
	}
	if start.Unit() != end.Unit() {
		return ev.errorf(errors.ErrIncompatibleUnits, low.Location(), "Incompatible units: '%s' and '%s'.", start.Unit(), end.Unit())
	}

	defer save(ev.env, f.Variable).restore()
	step, last := 1.0, end.Value
	if start.Value >= end.Value {
		step = -1
	}
	if f.Inclusive {
		last += step
	}
	for i := start.Value; (step > 0 && i < last) || (step < 0 && i > last); i += step {
		it := ast.NewNumber(low.Location(), i, end.Unit())
		ev.env.SetLocal(f.Variable, it)
		stop, err := body()
		if err != nil || stop {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) loopEach(e *ast.Each, body func() (bool, error)) error {
	v, err := ev.force(e.List)
	if err != nil {
		return err
	}
	defer save(ev.env, e.Variables...).restore()

	if m, ok := v.(*ast.Map); ok {
		for i, key := range m.Keys {
			value := m.Values[i]
			if len(e.Variables) == 1 {
				pair := &ast.List{Elements: []ast.Expression{key, value}, Separator: ast.SpaceSeparator, Loc: m.Loc}
				ev.env.SetLocal(e.Variables[0], pair)
			} else {
				ev.env.SetLocal(e.Variables[0], key)
				ev.env.SetLocal(e.Variables[1], value)
				for _, name := range e.Variables[2:] {
					ev.env.SetLocal(name, &ast.Null{Loc: m.Loc})
				}
			}
			stop, err := body()
			if err != nil || stop {
				return err
			}
		}
		return nil
	}

	list, ok := v.(*ast.List)
	if !ok {
		list = &ast.List{Elements: []ast.Expression{v}, Separator: ast.CommaSeparator, Loc: v.Location()}
	}
	for _, item := range list.Elements {
		parts := []ast.Expression{item}
		if inner, ok := item.(*ast.List); ok && len(e.Variables) > 1 {
			parts = inner.Elements
		}
		for j, name := range e.Variables {
			if j < len(parts) {
				ev.env.SetLocal(name, parts[j])
			} else {
				ev.env.SetLocal(name, &ast.Null{Loc: item.Location()})
			}
		}
		stop, err := body()
		if err != nil || stop {
			return err
		}
	}
	return nil
}

// Warn implements @warn. A function registered as `@warn` receives the
// message instead of the diagnostics stream.
func (ev *Evaluator) Warn(msg ast.Expression, loc ast.SourceLocation) error {
	v, err := ev.force(msg)
	if err != nil {
		return err
	}
	if _, found, err := ev.CallFunction("@warn", loc, v); found {
		return err
	}
	text := ev.Text(v)
	ev.ctx.Warnings = append(ev.ctx.Warnings, text)
	fmt.Fprintf(ev.ctx.Diagnostics, "WARNING: %s%s\n\n", text, ev.bt.Push(loc, "").Format(true))
	ev.ctx.Logger.Warn(text, zap.Stringer("location", loc))
	return nil
}

// Fail implements @error.
func (ev *Evaluator) Fail(msg ast.Expression, loc ast.SourceLocation) error {
	v, err := ev.force(msg)
	if err != nil {
		return err
	}
	if _, found, err := ev.CallFunction("@error", loc, v); found {
		return err
	}
	return ev.errorf(errors.ErrUserError, loc, "%s", ev.Text(v))
}

// Debug implements @debug.
func (ev *Evaluator) Debug(msg ast.Expression, loc ast.SourceLocation) error {
	v, err := ev.force(msg)
	if err != nil {
		return err
	}
	if _, found, err := ev.CallFunction("@debug", loc, v); found {
		return err
	}
	text := ev.Text(v)
	path := loc.Path
	if path == "" {
		path = "stdin"
	}
	fmt.Fprintf(ev.ctx.Diagnostics, "%s:%d DEBUG: %s\n", path, loc.Line+1, text)
	ev.ctx.Logger.Debug(text, zap.Stringer("location", loc))
	return nil
}
