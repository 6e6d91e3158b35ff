package eval

import (
	stderrors "errors"
	"math"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

var (
	// ErrNotNumbers is returned by LessThan when an operand is not a number.
	ErrNotNumbers = stderrors.New("may only compare numbers")
	// ErrIncomparableUnits is returned by LessThan for numbers whose units
	// do not convert into each other.
	ErrIncomparableUnits = stderrors.New("cannot compare numbers with incompatible units")
)

// LessThan implements `<`. The right operand is converted to the left
// operand's unit before comparing.
func LessThan(lhs, rhs ast.Expression) (bool, error) {
	l, lok := lhs.(*ast.Number)
	r, rok := rhs.(*ast.Number)
	if !lok || !rok {
		return false, ErrNotNumbers
	}
	tmp := r.Clone()
	tmp.Normalize(l.FindConvertibleUnit())
	lu, ru := l.Unit(), tmp.Unit()
	if lu != "" && ru != "" && lu != ru {
		return false, ErrIncomparableUnits
	}
	return l.Value < tmp.Value, nil
}

func (ev *Evaluator) lessThan(lhs, rhs ast.Expression, loc ast.SourceLocation) (bool, error) {
	lt, err := LessThan(lhs, rhs)
	switch {
	case stderrors.Is(err, ErrNotNumbers):
		return false, ev.errorf(errors.ErrInvalidOperands, loc, "%s", err.Error())
	case err != nil:
		return false, ev.errorf(errors.ErrIncompatibleUnits, loc, "%s", err.Error())
	}
	return lt, nil
}

func (ev *Evaluator) equal(lhs, rhs ast.Expression, loc ast.SourceLocation) (bool, error) {
	eq, err := ast.Equal(lhs, rhs)
	if err != nil {
		return false, ev.errorf(errors.ErrIncompatibleUnits, loc, "%s", err.Error())
	}
	return eq, nil
}

func (ev *Evaluator) binary(b *ast.BinaryExpr) (ast.Expression, error) {
	if b.Op == ast.OpDiv && b.Policy == ast.Delayed {
		return b, nil
	}
	lhs, err := ev.force(b.Left)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case ast.OpAnd:
		if !ast.IsTruthy(lhs) {
			return lhs, nil
		}
		return ev.force(b.Right)
	case ast.OpOr:
		if ast.IsTruthy(lhs) {
			return lhs, nil
		}
		return ev.force(b.Right)
	}

	rhs, err := ev.force(b.Right)
	if err != nil {
		return nil, err
	}

	var result bool
	switch b.Op {
	case ast.OpEq, ast.OpNeq:
		eq, err := ev.equal(lhs, rhs, b.Loc)
		if err != nil {
			return nil, err
		}
		result = eq == (b.Op == ast.OpEq)
	case ast.OpLt, ast.OpGte:
		lt, err := ev.lessThan(lhs, rhs, b.Loc)
		if err != nil {
			return nil, err
		}
		result = lt == (b.Op == ast.OpLt)
	case ast.OpLte, ast.OpGt:
		lt, err := ev.lessThan(lhs, rhs, b.Loc)
		if err != nil {
			return nil, err
		}
		eq, err := ev.equal(lhs, rhs, b.Loc)
		if err != nil {
			return nil, err
		}
		result = (lt || eq) == (b.Op == ast.OpLte)
	default:
		return ev.arithmetic(b.Op, lhs, rhs, b.Loc)
	}
	return &ast.Boolean{Value: result, Loc: b.Loc}, nil
}

func (ev *Evaluator) arithmetic(op ast.Operator, lhs, rhs ast.Expression, loc ast.SourceLocation) (ast.Expression, error) {
	switch l := lhs.(type) {
	case *ast.Number:
		switch r := rhs.(type) {
		case *ast.Number:
			return ev.numbers(op, l, r, loc)
		case *ast.Color:
			return ev.numberColor(op, l, r, loc)
		}
	case *ast.Color:
		switch r := rhs.(type) {
		case *ast.Number:
			return ev.colorNumber(op, l, r, loc)
		case *ast.Color:
			return ev.colors(op, l, r, loc)
		}
	}
	return ev.concat(op, lhs, rhs, loc)
}

func apply(op ast.Operator, x, y float64) float64 {
	switch op {
	case ast.OpAdd:
		return x + y
	case ast.OpSub:
		return x - y
	case ast.OpMul:
		return x * y
	case ast.OpDiv:
		return x / y
	default:
		return math.Mod(x, y)
	}
}

func (ev *Evaluator) numbers(op ast.Operator, l, r *ast.Number, loc ast.SourceLocation) (ast.Expression, error) {
	if (op == ast.OpDiv || op == ast.OpMod) && r.Value == 0 {
		return nil, ev.errorf(errors.ErrDivisionByZero, r.Loc, "division by zero")
	}

	tmp := r.Clone()
	tmp.Normalize(l.FindConvertibleUnit())
	lu, ru := l.Unit(), tmp.Unit()
	additive := op == ast.OpAdd || op == ast.OpSub
	if additive && lu != ru && lu != "" && ru != "" {
		return nil, ev.errorf(errors.ErrIncompatibleUnits, loc, "Incompatible units: '%s' and '%s'.", ru, lu)
	}

	v := l.Clone()
	v.Loc = loc
	v.Zero = true
	if lu == "" && (additive || op == ast.OpMod) {
		v.Numerators = append([]string(nil), r.Numerators...)
		v.Denominators = append([]string(nil), r.Denominators...)
	}
	switch op {
	case ast.OpMul:
		v.Value = l.Value * r.Value
		v.Numerators = append(v.Numerators, r.Numerators...)
		v.Denominators = append(v.Denominators, r.Denominators...)
	case ast.OpDiv:
		v.Value = l.Value / r.Value
		v.Denominators = append(v.Denominators, r.Numerators...)
		v.Numerators = append(v.Numerators, r.Denominators...)
	default:
		v.Value = apply(op, l.Value, tmp.Value)
	}
	v.Normalize("")
	return v, nil
}

func (ev *Evaluator) numberColor(op ast.Operator, l *ast.Number, r *ast.Color, loc ast.SourceLocation) (ast.Expression, error) {
	switch op {
	case ast.OpAdd, ast.OpMul:
		return &ast.Color{
			R:   apply(op, l.Value, r.R),
			G:   apply(op, l.Value, r.G),
			B:   apply(op, l.Value, r.B),
			A:   r.A,
			Loc: loc,
		}, nil
	case ast.OpSub, ast.OpDiv:
		plain := &ast.Color{R: r.R, G: r.G, B: r.B, A: r.A}
		text := ev.ToCSS(l) + op.String() + ast.FormatColor(plain, ev.ctx.Compressed)
		return &ast.String{Value: text, Loc: loc}, nil
	default:
		return nil, ev.errorf(errors.ErrInvalidOperands, r.Loc, "cannot divide a number by a color")
	}
}

func (ev *Evaluator) colorNumber(op ast.Operator, l *ast.Color, r *ast.Number, loc ast.SourceLocation) (ast.Expression, error) {
	if op == ast.OpDiv && r.Value == 0 {
		return nil, ev.errorf(errors.ErrDivisionByZero, r.Loc, "division by zero")
	}
	return &ast.Color{
		R:   apply(op, l.R, r.Value),
		G:   apply(op, l.G, r.Value),
		B:   apply(op, l.B, r.Value),
		A:   l.A,
		Loc: loc,
	}, nil
}

func (ev *Evaluator) colors(op ast.Operator, l, r *ast.Color, loc ast.SourceLocation) (ast.Expression, error) {
	if l.A != r.A {
		return nil, ev.errorf(errors.ErrInvalidOperands, r.Loc, "alpha channels must be equal when combining colors")
	}
	if (op == ast.OpDiv || op == ast.OpMod) && (r.R == 0 || r.G == 0 || r.B == 0) {
		return nil, ev.errorf(errors.ErrDivisionByZero, r.Loc, "division by zero")
	}
	return &ast.Color{
		R:   apply(op, l.R, r.R),
		G:   apply(op, l.G, r.G),
		B:   apply(op, l.B, r.B),
		A:   l.A,
		Loc: loc,
	}, nil
}

// keywordColor returns the color an unquoted color keyword names.
func keywordColor(e ast.Expression) *ast.Color {
	s, ok := e.(*ast.String)
	if !ok || s.IsQuoted() {
		return nil
	}
	c, ok := ast.ColorByName(s.Loc, s.Value)
	if !ok {
		return nil
	}
	return c
}

// concat joins the text of two operands. `-` and `/` keep their symbol
// between the parts, every other operator joins them directly.
func (ev *Evaluator) concat(op ast.Operator, lhs, rhs ast.Expression, loc ast.SourceLocation) (ast.Expression, error) {
	lc, rc := keywordColor(lhs), keywordColor(rhs)
	switch {
	case lc != nil && rc != nil:
		return ev.colors(op, lc, rc, loc)
	case lc != nil:
		switch r := rhs.(type) {
		case *ast.Color:
			return ev.colors(op, lc, r, loc)
		case *ast.Number:
			return ev.colorNumber(op, lc, r, loc)
		}
	case rc != nil:
		switch l := lhs.(type) {
		case *ast.Color:
			return ev.colors(op, l, rc, loc)
		case *ast.Number:
			return ev.numberColor(op, l, rc, loc)
		}
	}

	switch op {
	case ast.OpMul:
		return nil, ev.errorf(errors.ErrInvalidOperands, loc, "invalid operands for multiplication")
	case ast.OpMod:
		return nil, ev.errorf(errors.ErrInvalidOperands, loc, "invalid operands for modulo")
	}

	ltext, rtext := ev.operandText(lhs), ev.operandText(rhs)
	if _, ok := lhs.(*ast.Null); ok {
		return nil, ev.errorf(errors.ErrInvalidOperands, loc, "invalid null operation: \"null plus %s\".", ast.QuoteString(rtext, '"'))
	}
	if _, ok := rhs.(*ast.Null); ok {
		return nil, ev.errorf(errors.ErrInvalidOperands, loc, "invalid null operation: \"%s plus null\".", ast.QuoteString(ltext, '"'))
	}

	sep := ""
	if op == ast.OpSub || op == ast.OpDiv {
		sep = op.String()
	}
	out := &ast.String{Value: ltext + sep + rtext, Loc: loc}
	if s, ok := lhs.(*ast.String); ok {
		out.Quote = s.Quote
	} else if s, ok := rhs.(*ast.String); ok {
		out.Quote = s.Quote
	}
	return out, nil
}

func (ev *Evaluator) operandText(e ast.Expression) string {
	if s, ok := e.(*ast.String); ok {
		return s.Value
	}
	return ev.ToCSS(e)
}

func (ev *Evaluator) unary(u *ast.UnaryExpr) (ast.Expression, error) {
	operand, err := ev.force(u.Operand)
	if err != nil {
		return nil, err
	}
	if u.Op == ast.UnaryNot {
		return &ast.Boolean{Value: !ast.IsTruthy(operand), Loc: u.Loc}, nil
	}
	if n, ok := operand.(*ast.Number); ok {
		v := n.Clone()
		v.Loc = u.Loc
		if u.Op == ast.UnaryMinus {
			v.Value = -v.Value
		}
		return v, nil
	}
	text := ev.ToCSS(operand)
	if _, ok := operand.(*ast.Null); ok {
		text = "null"
		if _, ok := u.Operand.(*ast.Variable); ok {
			text = ""
		}
	}
	return &ast.String{Value: u.Op.String() + text, Loc: u.Loc}, nil
}
