package ast

// Expression is a SassScript expression. Evaluated expressions are values:
// *Boolean, *Number, *Color, *String, *List, *Map, *Null, or a delayed
// *BinaryExpr division that still prints as `a/b`.
type Expression interface {
	Node
	exprNode()
}

// Boolean is true or false
type Boolean struct {
	Value bool
	Loc   SourceLocation
}

func (b *Boolean) node()     {}
func (b *Boolean) exprNode() {}

// Location returns the source location of the boolean node in the AST.
func (b *Boolean) Location() SourceLocation {
	return b.Loc
}

// Null is the null value
type Null struct {
	Loc SourceLocation
}

func (n *Null) node()     {}
func (n *Null) exprNode() {}

// Location returns the source location of the null node in the AST.
func (n *Null) Location() SourceLocation {
	return n.Loc
}

// Number is a numeric value with numerator and denominator units
type Number struct {
	Value        float64
	Numerators   []string
	Denominators []string
	Zero         bool // print the leading zero of values between -1 and 1
	Loc          SourceLocation
}

func (n *Number) node()     {}
func (n *Number) exprNode() {}

// Location returns the source location of the number node in the AST.
func (n *Number) Location() SourceLocation {
	return n.Loc
}

// NewNumber creates a number with an optional single numerator unit.
func NewNumber(loc SourceLocation, value float64, unit string) *Number {
	n := &Number{Value: value, Zero: true, Loc: loc}
	if unit != "" {
		n.Numerators = parseUnit(unit, &n.Denominators)
	}
	return n
}

// Color is an RGBA color. Disp caches the text the color was written as.
type Color struct {
	R, G, B, A float64
	Disp       string
	Loc        SourceLocation
}

func (c *Color) node()     {}
func (c *Color) exprNode() {}

// Location returns the source location of the color node in the AST.
func (c *Color) Location() SourceLocation {
	return c.Loc
}

// String is a quoted or unquoted string constant. Quote is 0 for unquoted strings.
type String struct {
	Value string
	Quote byte
	Loc   SourceLocation
}

func (s *String) node()     {}
func (s *String) exprNode() {}

// Location returns the source location of the string node in the AST.
func (s *String) Location() SourceLocation {
	return s.Loc
}

// IsQuoted reports whether the string carries quotes.
func (s *String) IsQuoted() bool {
	return s.Quote != 0
}

// StringSchema is text with interpolants. Literal runs are unquoted *String
// parts, every other part is an interpolated expression.
type StringSchema struct {
	Parts []Expression
	Quote byte
	Loc   SourceLocation
}

func (s *StringSchema) node()     {}
func (s *StringSchema) exprNode() {}

// Location returns the source location of the string schema node in the AST.
func (s *StringSchema) Location() SourceLocation {
	return s.Loc
}

// Separator is the separator of a list
type Separator int

const (
	// SpaceSeparator separates items with whitespace
	SpaceSeparator Separator = iota
	// CommaSeparator separates items with commas
	CommaSeparator
)

// String returns the Sass name of the separator.
func (s Separator) String() string {
	if s == CommaSeparator {
		return "comma"
	}
	return "space"
}

// List is an ordered sequence of expressions
type List struct {
	Elements  []Expression
	Separator Separator
	IsArglist bool
	Keywords  *Map // keyword arguments captured by an arglist
	Loc       SourceLocation
}

func (l *List) node()     {}
func (l *List) exprNode() {}

// Location returns the source location of the list node in the AST.
func (l *List) Location() SourceLocation {
	return l.Loc
}

// Map is an insertion-ordered set of key/value pairs
type Map struct {
	Keys      []Expression
	Values    []Expression
	duplicate Expression
	Loc       SourceLocation
}

func (m *Map) node()     {}
func (m *Map) exprNode() {}

// Location returns the source location of the map node in the AST.
func (m *Map) Location() SourceLocation {
	return m.Loc
}

// Len returns the number of pairs.
func (m *Map) Len() int {
	return len(m.Keys)
}

// Append adds a pair without checking for an equal key. The parser uses it for
// literal maps whose keys are not evaluated yet.
func (m *Map) Append(key, value Expression) {
	m.Keys = append(m.Keys, key)
	m.Values = append(m.Values, value)
}

// Set inserts or replaces the value for key. Replacing records the first key
// that was inserted twice so callers can report it.
func (m *Map) Set(key, value Expression) {
	if i := m.index(key); i >= 0 {
		if m.duplicate == nil {
			m.duplicate = key
		}
		m.Values[i] = value
		return
	}
	m.Append(key, value)
}

// Get returns the value stored for key.
func (m *Map) Get(key Expression) (Expression, bool) {
	if i := m.index(key); i >= 0 {
		return m.Values[i], true
	}
	return nil, false
}

// Has reports whether key is present.
func (m *Map) Has(key Expression) bool {
	return m.index(key) >= 0
}

// Duplicate returns the first key that was inserted twice, or nil.
func (m *Map) Duplicate() Expression {
	return m.duplicate
}

func (m *Map) index(key Expression) int {
	for i, k := range m.Keys {
		if eq, err := Equal(k, key); err == nil && eq {
			return i
		}
	}
	return -1
}

// Variable is a $name reference
type Variable struct {
	Name string // Includes the leading `$`
	Loc  SourceLocation
}

func (v *Variable) node()     {}
func (v *Variable) exprNode() {}

// Location returns the source location of the variable node in the AST.
func (v *Variable) Location() SourceLocation {
	return v.Loc
}

// ParentRef is `&` used as a SassScript value
type ParentRef struct {
	Loc SourceLocation
}

func (p *ParentRef) node()     {}
func (p *ParentRef) exprNode() {}

// Location returns the source location of the parent reference node in the AST.
func (p *ParentRef) Location() SourceLocation {
	return p.Loc
}

// Operator is a binary SassScript operator
type Operator int

const (
	// OpAnd is `and`
	OpAnd Operator = iota
	// OpOr is `or`
	OpOr
	// OpEq is `==`
	OpEq
	// OpNeq is `!=`
	OpNeq
	// OpGt is `>`
	OpGt
	// OpGte is `>=`
	OpGte
	// OpLt is `<`
	OpLt
	// OpLte is `<=`
	OpLte
	// OpAdd is `+`
	OpAdd
	// OpSub is `-`
	OpSub
	// OpMul is `*`
	OpMul
	// OpDiv is `/`
	OpDiv
	// OpMod is `%`
	OpMod
)

var operatorSymbols = [...]string{"and", "or", "==", "!=", ">", ">=", "<", "<=", "+", "-", "*", "/", "%"}

// String returns the source form of the operator.
func (o Operator) String() string {
	return operatorSymbols[o]
}

// IsArithmetic reports whether o is one of + - * / %.
func (o Operator) IsArithmetic() bool {
	return o >= OpAdd
}

// EvalPolicy decides whether a `/` is division or a literal separator.
type EvalPolicy int

const (
	// Eager evaluates the operation normally
	Eager EvalPolicy = iota
	// Delayed keeps `a/b` as text, as in `font: 12px/1.5`
	Delayed
	// Forced overrides a delay for the next evaluation, as when the delayed
	// expression becomes an operand of arithmetic
	Forced
)

// BinaryExpr is a binary operation
type BinaryExpr struct {
	Op     Operator
	Left   Expression
	Right  Expression
	Policy EvalPolicy
	Loc    SourceLocation
}

func (b *BinaryExpr) node()     {}
func (b *BinaryExpr) exprNode() {}

// Location returns the source location of the binary expression node in the AST.
func (b *BinaryExpr) Location() SourceLocation {
	return b.Loc
}

// WithPolicy returns a copy of b carrying policy p.
func (b *BinaryExpr) WithPolicy(p EvalPolicy) *BinaryExpr {
	cpy := *b
	cpy.Policy = p
	return &cpy
}

// UnaryOperator is a prefix operator
type UnaryOperator int

const (
	// UnaryPlus is `+`
	UnaryPlus UnaryOperator = iota
	// UnaryMinus is `-`
	UnaryMinus
	// UnaryNot is `not`
	UnaryNot
)

// String returns the source form of the operator.
func (o UnaryOperator) String() string {
	switch o {
	case UnaryPlus:
		return "+"
	case UnaryMinus:
		return "-"
	default:
		return "not"
	}
}

// UnaryExpr is a prefix operation
type UnaryExpr struct {
	Op      UnaryOperator
	Operand Expression
	Loc     SourceLocation
}

func (u *UnaryExpr) node()     {}
func (u *UnaryExpr) exprNode() {}

// Location returns the source location of the unary expression node in the AST.
func (u *UnaryExpr) Location() SourceLocation {
	return u.Loc
}

// FunctionCall is name(args)
type FunctionCall struct {
	Name string
	Args *Arguments
	Loc  SourceLocation
}

func (f *FunctionCall) node()     {}
func (f *FunctionCall) exprNode() {}

// Location returns the source location of the function call node in the AST.
func (f *FunctionCall) Location() SourceLocation {
	return f.Loc
}

// TypeName returns the name type-of() reports for a value.
func TypeName(e Expression) string {
	switch v := e.(type) {
	case *Boolean:
		return "bool"
	case *Number:
		return "number"
	case *Color:
		return "color"
	case *String, *StringSchema:
		return "string"
	case *List:
		if v.IsArglist {
			return "arglist"
		}
		return "list"
	case *Map:
		return "map"
	case *Null:
		return "null"
	case *BinaryExpr:
		if v.Policy == Delayed {
			return "number"
		}
		return "expression"
	default:
		return "expression"
	}
}

// IsTruthy reports the truthiness of a value. Only false and null are falsy.
func IsTruthy(e Expression) bool {
	switch v := e.(type) {
	case *Boolean:
		return v.Value
	case *Null:
		return false
	default:
		return true
	}
}
