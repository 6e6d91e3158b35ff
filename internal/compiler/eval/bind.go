package eval

import (
	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

type namedValue struct {
	name  string
	value ast.Expression
	loc   ast.SourceLocation
}

// flatArgs is an argument list with rest and keyword arguments spread out.
type flatArgs struct {
	positional []ast.Expression
	named      []namedValue
	separator  ast.Separator
}

func (ev *Evaluator) flatten(args *ast.Arguments) flatArgs {
	flat := flatArgs{separator: ast.CommaSeparator}
	if args == nil {
		return flat
	}
	addKeywords := func(m *ast.Map, loc ast.SourceLocation) {
		for i, k := range m.Keys {
			name := ev.operandText(k)
			flat.named = append(flat.named, namedValue{name: "$" + name, value: m.Values[i], loc: loc})
		}
	}
	for _, a := range args.Items {
		switch {
		case a.Name != "":
			flat.named = append(flat.named, namedValue{name: a.Name, value: a.Value, loc: a.Loc})
		case a.IsKeyword:
			if m, ok := a.Value.(*ast.Map); ok {
				addKeywords(m, a.Loc)
			}
		case a.IsRest:
			l, ok := a.Value.(*ast.List)
			if !ok {
				flat.positional = append(flat.positional, a.Value)
				continue
			}
			flat.positional = append(flat.positional, l.Elements...)
			flat.separator = l.Separator
			if l.Keywords != nil {
				addKeywords(l.Keywords, a.Loc)
			}
		default:
			flat.positional = append(flat.positional, a.Value)
		}
	}
	return flat
}

// Bind matches evaluated arguments against params and binds every parameter
// in frame. Positional values fill parameters left to right, named values
// bind by name, a rest parameter collects what is left into an arglist and
// unbound parameters take their defaults, evaluated in frame so they can
// refer to earlier parameters. callee names the function or mixin in errors,
// e.g. "mixin foo".
func (ev *Evaluator) Bind(callee string, params *ast.Parameters, args *ast.Arguments, frame *env.Env) error {
	var ps []*ast.Parameter
	if params != nil {
		ps = params.Items
	}
	var loc ast.SourceLocation
	if args != nil {
		loc = args.Loc
	}
	flat := ev.flatten(args)

	byName := make(map[string]*ast.Parameter, len(ps))
	for _, p := range ps {
		byName[p.Name] = p
	}

	var rest *ast.List
	ip := 0
	for i, v := range flat.positional {
		if ip >= len(ps) {
			return ev.errorf(errors.ErrArgumentBinding, loc, "%s only takes %d arguments; given %d",
				callee, len(ps), len(flat.positional)+len(flat.named))
		}
		p := ps[ip]
		if p.IsRest {
			rest = &ast.List{
				Elements:  append([]ast.Expression(nil), flat.positional[i:]...),
				Separator: flat.separator,
				IsArglist: true,
				Loc:       p.Loc,
			}
			frame.SetLocal(p.Name, rest)
			ip++
			break
		}
		frame.SetLocal(p.Name, v)
		ip++
	}

	for _, n := range flat.named {
		p, ok := byName[n.name]
		if !ok {
			if restParam := restParameter(ps); restParam != nil {
				if rest == nil {
					rest = &ast.List{Separator: ast.CommaSeparator, IsArglist: true, Loc: restParam.Loc}
					frame.SetLocal(restParam.Name, rest)
				}
				if rest.Keywords == nil {
					rest.Keywords = &ast.Map{Loc: n.loc}
				}
				rest.Keywords.Set(&ast.String{Value: n.name[1:], Loc: n.loc}, n.value)
				continue
			}
			return ev.errorf(errors.ErrArgumentBinding, n.loc, "%s has no parameter named %s", callee, n.name)
		}
		if p.IsRest {
			return ev.errorf(errors.ErrArgumentBinding, n.loc, "argument %s of %s cannot be used as named argument", n.name, callee)
		}
		if frame.HasLocal(n.name) {
			return ev.errorf(errors.ErrArgumentBinding, n.loc, "parameter %s provided more than once in call to %s", n.name, callee)
		}
		frame.SetLocal(n.name, n.value)
	}

	defaults := ev.With(frame, ev.bt)
	for _, p := range ps {
		if frame.HasLocal(p.Name) {
			continue
		}
		switch {
		case p.IsRest:
			frame.SetLocal(p.Name, &ast.List{Separator: ast.CommaSeparator, IsArglist: true, Loc: p.Loc})
		case p.Default != nil:
			v, err := defaults.force(p.Default)
			if err != nil {
				return err
			}
			frame.SetLocal(p.Name, v)
		default:
			return ev.errorf(errors.ErrArgumentBinding, loc, "required parameter %s is missing in call to %s", p.Name, callee)
		}
	}
	return nil
}

func restParameter(ps []*ast.Parameter) *ast.Parameter {
	if len(ps) > 0 && ps[len(ps)-1].IsRest {
		return ps[len(ps)-1]
	}
	return nil
}
