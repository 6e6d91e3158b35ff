package host

import (
	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

// ToHost converts an evaluated expression to a host value. Values with no
// host representation are passed as their CSS text in an unquoted String.
func ToHost(e ast.Expression) Value {
	switch v := e.(type) {
	case nil, *ast.Null:
		return Null{}
	case *ast.Boolean:
		return Boolean{Value: v.Value}
	case *ast.Number:
		return Number{Value: v.Value, Unit: v.Unit()}
	case *ast.Color:
		return Color{R: v.R, G: v.G, B: v.B, A: v.A}
	case *ast.String:
		return String{Value: v.Value, Quoted: v.IsQuoted()}
	case *ast.List:
		out := List{Values: make([]Value, len(v.Elements))}
		if v.Separator == ast.CommaSeparator {
			out.Separator = Comma
		}
		for i, el := range v.Elements {
			out.Values[i] = ToHost(el)
		}
		return out
	case *ast.Map:
		out := Map{Keys: make([]Value, len(v.Keys)), Values: make([]Value, len(v.Values))}
		for i := range v.Keys {
			out.Keys[i] = ToHost(v.Keys[i])
			out.Values[i] = ToHost(v.Values[i])
		}
		return out
	default:
		return String{Value: ast.ToCSS(e, ast.Format{Precision: ast.DefaultPrecision})}
	}
}

// FromHost converts a host value back to an expression. Error and Warning
// values become a HostError located at loc.
func FromHost(v Value, loc ast.SourceLocation) (ast.Expression, error) {
	switch h := v.(type) {
	case nil, Null:
		return &ast.Null{Loc: loc}, nil
	case Boolean:
		return &ast.Boolean{Value: h.Value, Loc: loc}, nil
	case Number:
		return ast.NewNumber(loc, h.Value, h.Unit), nil
	case Color:
		return &ast.Color{R: h.R, G: h.G, B: h.B, A: h.A, Loc: loc}, nil
	case String:
		s := &ast.String{Value: h.Value, Loc: loc}
		if h.Quoted {
			s.Quote = '"'
		}
		return s, nil
	case List:
		out := &ast.List{Elements: make([]ast.Expression, len(h.Values)), Loc: loc}
		if h.Separator == Comma {
			out.Separator = ast.CommaSeparator
		}
		for i, el := range h.Values {
			e, err := FromHost(el, loc)
			if err != nil {
				return nil, err
			}
			out.Elements[i] = e
		}
		return out, nil
	case Map:
		if len(h.Keys) != len(h.Values) {
			return nil, errors.Host(loc, nil, "host map has mismatched keys and values")
		}
		out := &ast.Map{Loc: loc}
		for i := range h.Keys {
			k, err := FromHost(h.Keys[i], loc)
			if err != nil {
				return nil, err
			}
			val, err := FromHost(h.Values[i], loc)
			if err != nil {
				return nil, err
			}
			out.Keys = append(out.Keys, k)
			out.Values = append(out.Values, val)
		}
		return out, nil
	case Error:
		return nil, errors.Host(loc, nil, h.Message)
	case Warning:
		return nil, errors.New(errors.HostError, errors.ErrHostWarning, h.Message, loc)
	default:
		return nil, errors.Host(loc, nil, "unsupported host value "+v.String())
	}
}
