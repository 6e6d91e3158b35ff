package stdlib

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/eval"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
)

// features lists what feature-exists() reports as supported.
var features = map[string]bool{
	"global-variable-shadowing": true,
	"at-error":                  true,
	"units-level-3":             true,
}

func typeOf(l *library, a args) (ast.Expression, error) {
	v := a.value("$value")
	if s, ok := v.(*ast.String); ok && !s.IsQuoted() {
		if _, isColor := ast.ColorByName(s.Loc, s.Value); isColor {
			return a.unquoted("color"), nil
		}
	}
	return a.unquoted(ast.TypeName(v)), nil
}

func unit(l *library, a args) (ast.Expression, error) {
	n, err := a.number("$number")
	if err != nil {
		return nil, err
	}
	return &ast.String{Value: n.Unit(), Quote: '"', Loc: a.loc()}, nil
}

func unitless(l *library, a args) (ast.Expression, error) {
	n, err := a.number("$number")
	if err != nil {
		return nil, err
	}
	return a.boolean(n.IsUnitless()), nil
}

func comparable(l *library, a args) (ast.Expression, error) {
	n1, err := a.number("$number-1")
	if err != nil {
		return nil, err
	}
	n2, err := a.number("$number-2")
	if err != nil {
		return nil, err
	}
	_, err = eval.LessThan(n1, n2)
	return a.boolean(err == nil), nil
}

func inspect(l *library, a args) (ast.Expression, error) {
	v := a.value("$value")
	if s, ok := v.(*ast.String); ok {
		return s, nil
	}
	return a.unquoted(ast.FormatValue(v, ast.Format{Precision: l.ctx.Precision, Inspect: true})), nil
}

// callerEnv is the environment of the stylesheet code that called the
// built-in.
func callerEnv(a args) (*env.Env, error) {
	e, ok := a.call.Env.(*env.Env)
	if !ok {
		return nil, fmt.Errorf("`%s` needs a calling environment", a.sig)
	}
	return e, nil
}

func nameArg(a args) (string, error) {
	s, err := a.str("$name")
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(s.Value, "_", "-"), nil
}

func variableExists(l *library, a args) (ast.Expression, error) {
	n, err := nameArg(a)
	if err != nil {
		return nil, err
	}
	e, err := callerEnv(a)
	if err != nil {
		return nil, err
	}
	return a.boolean(e.Has("$" + n)), nil
}

func globalVariableExists(l *library, a args) (ast.Expression, error) {
	n, err := nameArg(a)
	if err != nil {
		return nil, err
	}
	e, err := callerEnv(a)
	if err != nil {
		return nil, err
	}
	return a.boolean(e.HasGlobal("$" + n)), nil
}

func definitionExists(suffix string) builtin {
	return func(l *library, a args) (ast.Expression, error) {
		n, err := nameArg(a)
		if err != nil {
			return nil, err
		}
		e, err := callerEnv(a)
		if err != nil {
			return nil, err
		}
		return a.boolean(e.HasGlobal(n + suffix)), nil
	}
}

func featureExists(l *library, a args) (ast.Expression, error) {
	s, err := a.str("$name")
	if err != nil {
		return nil, err
	}
	return a.boolean(features[s.Value]), nil
}

func isSuperselector(l *library, a args) (ast.Expression, error) {
	super, err := parser.ParseSelector(l.selectorText(a.value("$super")), a.loc())
	if err != nil {
		return nil, err
	}
	sub, err := parser.ParseSelector(l.selectorText(a.value("$sub")), a.loc())
	if err != nil {
		return nil, err
	}
	return a.boolean(super.IsSuperselectorOfList(sub)), nil
}

func (l *library) selectorText(v ast.Expression) string {
	if s, ok := v.(*ast.String); ok {
		return s.Value
	}
	return l.text(v)
}

// call invokes a function by name with the values of $args, in the scope of
// the caller.
func call(l *library, a args) (ast.Expression, error) {
	s, err := a.str("$name")
	if err != nil {
		return nil, err
	}
	e, err := callerEnv(a)
	if err != nil {
		return nil, err
	}
	fc := &ast.FunctionCall{Name: s.Value, Args: &ast.Arguments{Loc: a.loc()}, Loc: a.loc()}
	rest := a.list("$args")
	for _, v := range rest.Elements {
		fc.Args.Items = append(fc.Args.Items, &ast.Argument{Value: v, Loc: a.loc()})
	}
	if rest.Keywords != nil {
		for i, k := range rest.Keywords.Keys {
			key, ok := k.(*ast.String)
			if !ok {
				continue
			}
			fc.Args.Items = append(fc.Args.Items, &ast.Argument{Name: "$" + key.Value, Value: rest.Keywords.Values[i], Loc: a.loc()})
			fc.Args.HasNamed = true
		}
	}
	return eval.New(l.ctx, e, nil).Evaluate(fc)
}

func not(l *library, a args) (ast.Expression, error) {
	return a.boolean(!ast.IsTruthy(a.value("$value"))), nil
}

// ifFunction backs if() when it is reached through call(); direct calls are
// short-circuited by the evaluator.
func ifFunction(l *library, a args) (ast.Expression, error) {
	if ast.IsTruthy(a.value("$condition")) {
		return a.value("$if-true"), nil
	}
	return a.value("$if-false"), nil
}
