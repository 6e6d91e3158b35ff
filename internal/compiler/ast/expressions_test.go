package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(v string) *String { return &String{Value: v} }
func quoted(v string) *String { return &String{Value: v, Quote: '"'} }
func num(v float64, u string) *Number { return NewNumber(SourceLocation{}, v, u) }

func TestMapSetRecordsDuplicates(t *testing.T) {
	m := &Map{}
	m.Set(str("a"), num(1, ""))
	m.Set(num(1, "in"), num(2, ""))
	assert.Nil(t, m.Duplicate())

	m.Set(quoted("a"), num(3, ""))
	require.NotNil(t, m.Duplicate())
	assert.Equal(t, 2, m.Len())

	v, ok := m.Get(str("a"))
	require.True(t, ok)
	assert.Equal(t, 3.0, v.(*Number).Value)

	m.Set(num(96, "px"), num(4, ""))
	assert.Equal(t, 2, m.Len(), "1in and 96px are the same key")
	assert.True(t, m.Has(num(2.54, "cm")))
	assert.False(t, m.Has(str("b")))
}

func TestMapAppendKeepsEveryPair(t *testing.T) {
	m := &Map{}
	m.Append(str("a"), num(1, ""))
	m.Append(str("a"), num(2, ""))
	assert.Equal(t, 2, m.Len())
	assert.Nil(t, m.Duplicate())
}

func TestParametersOrder(t *testing.T) {
	tests := []struct {
		name   string
		params []*Parameter
		err    string
	}{
		{"required then optional", []*Parameter{{Name: "$a"}, {Name: "$b", Default: num(1, "")}}, ""},
		{"required then rest", []*Parameter{{Name: "$a"}, {Name: "$rest", IsRest: true}}, ""},
		{"optional then required", []*Parameter{{Name: "$a", Default: num(1, "")}, {Name: "$b"}}, "required parameters must precede optional parameters"},
		{"rest then required", []*Parameter{{Name: "$a", IsRest: true}, {Name: "$b"}}, "required parameters must precede variable-length parameters"},
		{"rest then optional", []*Parameter{{Name: "$a", IsRest: true}, {Name: "$b", Default: num(1, "")}}, "optional parameters may not be combined with variable-length parameters"},
		{"two rests", []*Parameter{{Name: "$a", IsRest: true}, {Name: "$b", IsRest: true}}, "functions and mixins cannot have more than one variable-length parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var params Parameters
			var err error
			for _, p := range tt.params {
				if err = params.Append(p); err != nil {
					break
				}
			}
			if tt.err == "" {
				require.NoError(t, err)
				assert.Equal(t, len(tt.params), params.Len())
				return
			}
			var orderErr *OrderError
			require.ErrorAs(t, err, &orderErr)
			assert.Equal(t, tt.err, err.Error())
		})
	}
}

func TestArgumentsOrder(t *testing.T) {
	tests := []struct {
		name string
		args []*Argument
		err  string
	}{
		{"positional then named", []*Argument{{Value: num(1, "")}, {Name: "$b", Value: num(2, "")}}, ""},
		{"rest then keyword", []*Argument{{Value: str("x"), IsRest: true}, {Value: &Map{}, IsKeyword: true}}, ""},
		{"named then positional", []*Argument{{Name: "$a", Value: num(1, "")}, {Value: num(2, "")}}, "ordinal arguments must precede named arguments"},
		{"rest then positional", []*Argument{{Value: str("x"), IsRest: true}, {Value: num(2, "")}}, "ordinal arguments must precede variable-length arguments"},
		{"rest then named", []*Argument{{Value: str("x"), IsRest: true}, {Name: "$a", Value: num(2, "")}}, "named arguments must precede variable-length argument"},
		{"two rests", []*Argument{{Value: str("x"), IsRest: true}, {Value: str("y"), IsRest: true}}, "functions and mixins may only be called with one variable-length argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args Arguments
			var err error
			for _, a := range tt.args {
				if err = args.Append(a); err != nil {
					break
				}
			}
			if tt.err == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.err, err.Error())
		})
	}

	var nilArgs *Arguments
	assert.Equal(t, 0, nilArgs.Len())
}

func TestTypeNameAndTruthiness(t *testing.T) {
	assert.Equal(t, "number", TypeName(num(1, "px")))
	assert.Equal(t, "string", TypeName(str("a")))
	assert.Equal(t, "arglist", TypeName(&List{IsArglist: true}))
	assert.Equal(t, "map", TypeName(&Map{}))
	assert.Equal(t, "null", TypeName(&Null{}))
	assert.Equal(t, "number", TypeName(&BinaryExpr{Op: OpDiv, Left: num(1, ""), Right: num(2, ""), Policy: Delayed}))

	assert.False(t, IsTruthy(&Null{}))
	assert.False(t, IsTruthy(&Boolean{Value: false}))
	assert.True(t, IsTruthy(num(0, "")))
	assert.True(t, IsTruthy(str("")))
	assert.True(t, IsTruthy(&List{}))
}

func TestEqual(t *testing.T) {
	eq, err := Equal(str("a"), quoted("a"))
	require.NoError(t, err)
	assert.True(t, eq)

	a := &List{Elements: []Expression{num(1, ""), num(2, "")}, Separator: CommaSeparator}
	b := &List{Elements: []Expression{num(1, ""), num(2, "")}, Separator: SpaceSeparator}
	eq, err = Equal(a, b)
	require.NoError(t, err)
	assert.False(t, eq, "separators differ")

	eq, err = Equal(&Null{}, &Boolean{})
	require.NoError(t, err)
	assert.False(t, eq)

	_, err = Equal(&List{Elements: []Expression{num(1, "s")}}, &List{Elements: []Expression{num(1, "Hz")}})
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	tests := []struct {
		value Expression
		want  string
	}{
		{&Null{}, "null"},
		{&List{}, "()"},
		{&List{Elements: []Expression{num(1, "")}, Separator: CommaSeparator}, "1,"},
		{&List{Elements: []Expression{num(1, "px"), str("solid")}}, "1px solid"},
		{&List{Elements: []Expression{
			&List{Elements: []Expression{num(1, ""), num(2, "")}},
			num(3, ""),
		}}, "(1 2) 3"},
		{&List{Elements: []Expression{
			&List{Elements: []Expression{num(1, ""), num(2, "")}},
			num(3, ""),
		}, Separator: CommaSeparator}, "1 2, 3"},
		{&Map{Keys: []Expression{str("a")}, Values: []Expression{num(1, "")}}, "(a: 1)"},
		{&BinaryExpr{Op: OpDiv, Left: num(12, "px"), Right: num(1.5, ""), Policy: Delayed}, "12px/1.5"},
		{quoted(`say "hi"`), `'say "hi"'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Inspect(tt.value))
	}

	list := &List{Elements: []Expression{str("a"), &Null{}, str("b")}}
	assert.Equal(t, "a b", ToCSS(list, Format{}))
}

func TestFormatColor(t *testing.T) {
	red, ok := ColorByName(SourceLocation{}, "Red")
	require.True(t, ok)
	assert.Equal(t, "Red", FormatColor(red, false))
	assert.Equal(t, "red", FormatColor(red.Clone(), false))

	white := &Color{R: 255, G: 255, B: 255, A: 1}
	assert.Equal(t, "white", FormatColor(white, false))
	assert.Equal(t, "#fff", FormatColor(white, true))

	odd := &Color{R: 18, G: 52, B: 86, A: 1}
	assert.Equal(t, "#123456", FormatColor(odd, false))

	half := &Color{R: 255, A: 0.5}
	assert.Equal(t, "rgba(255, 0, 0, 0.5)", FormatColor(half, false))
	assert.Equal(t, "rgba(255,0,0,.5)", FormatColor(half, true))

	assert.Equal(t, "transparent", FormatColor(&Color{}, false))

	c, ok := ParseHexColor(SourceLocation{}, "#abc")
	require.True(t, ok)
	assert.Equal(t, 0xaa, int(c.R))
	assert.Equal(t, "#abc", FormatColor(c, false))

	h, s, l := (&Color{R: 255, A: 1}).HSL()
	assert.InDelta(t, 0, h, 1e-9)
	assert.InDelta(t, 100, s, 1e-9)
	assert.InDelta(t, 50, l, 1e-9)
	back := ColorFromHSL(SourceLocation{}, 120, 100, 50, 1)
	assert.Equal(t, "#00ff00", back.Hex())
}
