package eval

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

// CatchAll is the key of the function that receives calls to functions
// nobody defined. Its first argument is the name of the called function.
const CatchAll = "*[f]"

// FunctionKey returns the environment key of the function called name.
func FunctionKey(name string) string {
	return strings.ReplaceAll(name, "_", "-") + "[f]"
}

// MixinKey returns the environment key of the mixin called name.
func MixinKey(name string) string {
	return strings.ReplaceAll(name, "_", "-") + "[m]"
}

// CheckDepth fails once the call chain is deeper than MaxCallStack.
func (ev *Evaluator) CheckDepth(loc ast.SourceLocation) error {
	if ev.bt != nil && ev.bt.Parent != nil && ev.bt.Depth() > MaxCallStack {
		return ev.errorf(errors.ErrStackDepth, loc, "Stack depth exceeded max of %d", MaxCallStack)
	}
	return nil
}

// definingFrame returns the frame a definition closes over.
func (ev *Evaluator) definingFrame(def *ast.Definition) *env.Env {
	if e, ok := def.Environment.(*env.Env); ok && e != nil {
		return e
	}
	return ev.env.Global()
}

func (ev *Evaluator) call(c *ast.FunctionCall) (ast.Expression, error) {
	if err := ev.CheckDepth(c.Loc); err != nil {
		return nil, err
	}
	key := FunctionKey(c.Name)
	if key == "if[f]" {
		if def, ok := ev.env.Definition(key); ok && def.Native != nil {
			return ev.lazyIf(c, def)
		}
	}

	args, err := ev.Arguments(c.Args)
	if err != nil {
		return nil, err
	}

	if !ev.env.Has(key) && ev.env.Has(CatchAll) {
		key = CatchAll
	}
	def, ok := ev.env.Definition(key)
	if !ok {
		return &ast.String{Value: ev.callText(c.Name, args), Loc: c.Loc}, nil
	}
	if key == CatchAll {
		named := &ast.Arguments{Loc: args.Loc}
		named.Items = append([]*ast.Argument{{Value: &ast.String{Value: c.Name, Quote: '"', Loc: c.Loc}, Loc: c.Loc}}, args.Items...)
		named.HasNamed, named.HasRest, named.HasKeyword = args.HasNamed, args.HasRest, args.HasKeyword
		args = named
	}
	return ev.Invoke(def, c.Name, args, c.Loc)
}

// Invoke calls a function definition with evaluated arguments.
func (ev *Evaluator) Invoke(def *ast.Definition, name string, args *ast.Arguments, loc ast.SourceLocation) (ast.Expression, error) {
	if def.OverloadStub {
		resolved := fmt.Sprintf("%s%d", def.Key(), args.Len())
		target, ok := ev.env.Definition(resolved)
		if !ok {
			return nil, ev.errorf(errors.ErrArgumentBinding, loc, "overloaded function `%s` given wrong number of arguments", name)
		}
		def = target
	}

	frame := env.NewFunctionFrame(ev.definingFrame(def))
	callee := "function " + name
	if err := ev.Bind(callee, def.Params, args, frame); err != nil {
		return nil, err
	}
	inner := ev.With(frame, ev.bt.Push(loc, ", in function `"+name+"`"))

	if def.Body != nil {
		result, err := inner.Run(def.Body)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, ev.errorf(errors.ErrMissingReturn, loc, "function %s did not return a value", name)
		}
		return result, nil
	}
	if def.Native == nil {
		return nil, ev.errorf(errors.ErrInvalidArgument, loc, "function %s has no implementation", name)
	}

	call := &ast.NativeCall{
		Name:      name,
		Args:      make(map[string]ast.Expression, def.Params.Len()),
		Params:    def.Params,
		Loc:       loc,
		Env:       ev.env,
		Precision: ev.ctx.Precision,
	}
	if def.Params != nil {
		for _, p := range def.Params.Items {
			if v, ok := frame.GetLocal(p.Name); ok {
				if e, ok := v.(ast.Expression); ok {
					call.Args[p.Name] = e
				}
			}
		}
	}
	result, err := def.Native(call)
	if err != nil {
		return nil, errors.Wrap(err, errors.EvaluationError, errors.ErrInvalidArgument, loc, inner.bt)
	}
	if result == nil {
		return &ast.Null{Loc: loc}, nil
	}
	return result, nil
}

// lazyIf evaluates only the branch of if() its condition selects.
func (ev *Evaluator) lazyIf(c *ast.FunctionCall, def *ast.Definition) (ast.Expression, error) {
	frame := env.NewFunctionFrame(ev.definingFrame(def))
	if err := ev.Bind("function if", def.Params, c.Args, frame); err != nil {
		return nil, err
	}
	branch := func(name string) ast.Expression {
		v, _ := frame.GetLocal(name)
		e, _ := v.(ast.Expression)
		return e
	}
	cond, err := ev.force(branch("$condition"))
	if err != nil {
		return nil, err
	}
	if ast.IsTruthy(cond) {
		return ev.force(branch("$if-true"))
	}
	return ev.force(branch("$if-false"))
}

// CallFunction calls the function stored under name with already evaluated
// values as positional arguments. It reports false when no such function
// exists.
func (ev *Evaluator) CallFunction(name string, loc ast.SourceLocation, values ...ast.Expression) (ast.Expression, bool, error) {
	def, ok := ev.env.Definition(FunctionKey(name))
	if !ok {
		return nil, false, nil
	}
	args := &ast.Arguments{Loc: loc}
	for _, v := range values {
		args.Items = append(args.Items, &ast.Argument{Value: v, Loc: loc})
	}
	result, err := ev.Invoke(def, name, args, loc)
	return result, true, err
}
