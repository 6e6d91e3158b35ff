package stdlib

import (
	"fmt"
	"math"
	"strconv"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

// args reads the bound parameters of a native call. Its accessors fail with
// the messages stylesheets have come to expect from the built-ins.
type args struct {
	call *ast.NativeCall
	sig  string
}

func (a args) loc() ast.SourceLocation { return a.call.Loc }

func (a args) value(name string) ast.Expression { return a.call.Arg(name) }

func (a args) typeError(name, want string) error {
	return fmt.Errorf("argument `%s` of `%s` must be a %s", name, a.sig, want)
}

func (a args) rangeError(name string, lo, hi float64) error {
	return fmt.Errorf("argument `%s` of `%s` must be between %s and %s", name, a.sig, num(lo), num(hi))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// given reports whether an optional parameter defaulting to false was passed.
func (a args) given(name string) bool {
	if b, ok := a.value(name).(*ast.Boolean); ok && !b.Value {
		return false
	}
	_, isNull := a.value(name).(*ast.Null)
	return !isNull
}

func (a args) number(name string) (*ast.Number, error) {
	n, ok := a.value(name).(*ast.Number)
	if !ok {
		return nil, a.typeError(name, "number")
	}
	return n, nil
}

// ranged returns the value of a numeric argument, which must lie within
// [lo, hi]. Units are ignored.
func (a args) ranged(name string, lo, hi float64) (float64, error) {
	n, err := a.number(name)
	if err != nil {
		return 0, err
	}
	if n.Value < lo || n.Value > hi {
		return 0, a.rangeError(name, lo, hi)
	}
	return n.Value, nil
}

// color accepts a color or an unquoted color keyword.
func (a args) color(name string) (*ast.Color, error) {
	switch v := a.value(name).(type) {
	case *ast.Color:
		return v, nil
	case *ast.String:
		if !v.IsQuoted() {
			if c, ok := ast.ColorByName(v.Loc, v.Value); ok {
				return c, nil
			}
		}
	}
	return nil, a.typeError(name, "color")
}

func (a args) str(name string) (*ast.String, error) {
	s, ok := a.value(name).(*ast.String)
	if !ok {
		return nil, a.typeError(name, "string")
	}
	return s, nil
}

// mapping accepts a map, or an empty list standing for the empty map.
func (a args) mapping(name string) (*ast.Map, error) {
	switch v := a.value(name).(type) {
	case *ast.Map:
		return v, nil
	case *ast.List:
		if len(v.Elements) == 0 {
			return &ast.Map{Loc: v.Loc}, nil
		}
	}
	return nil, a.typeError(name, "map")
}

// list returns the argument as a list. Maps become comma lists of pairs and
// any other value a list of one.
func (a args) list(name string) *ast.List {
	return asList(a.value(name))
}

func asList(v ast.Expression) *ast.List {
	switch x := v.(type) {
	case *ast.List:
		return x
	case *ast.Map:
		out := &ast.List{Separator: ast.CommaSeparator, Loc: x.Loc}
		for i, k := range x.Keys {
			out.Elements = append(out.Elements, pair(k, x.Values[i]))
		}
		return out
	default:
		return &ast.List{Elements: []ast.Expression{v}, Separator: ast.SpaceSeparator, Loc: v.Location()}
	}
}

func pair(k, v ast.Expression) *ast.List {
	return &ast.List{Elements: []ast.Expression{k, v}, Separator: ast.SpaceSeparator, Loc: k.Location()}
}

// text renders a value for the functions that pass CSS through unchanged.
func (l *library) text(v ast.Expression) string {
	return ast.ToCSS(v, ast.Format{Precision: l.ctx.Precision, Compressed: l.ctx.Compressed})
}

func (a args) boolean(v bool) *ast.Boolean {
	return &ast.Boolean{Value: v, Loc: a.loc()}
}

func (a args) unquoted(s string) *ast.String {
	return &ast.String{Value: s, Loc: a.loc()}
}

func (a args) newNumber(v float64, unit string) *ast.Number {
	return ast.NewNumber(a.loc(), v, unit)
}

func floor(v float64) float64 { return math.Floor(v) }
func ceil(v float64) float64  { return math.Ceil(v) }
func abs(v float64) float64   { return math.Abs(v) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
