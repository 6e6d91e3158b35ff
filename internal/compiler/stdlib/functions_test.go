package stdlib

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/eval"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
)

type fixture struct {
	t      *testing.T
	global *env.Env
	ctx    *eval.Context
}

func setup(t *testing.T, source string) *fixture {
	t.Helper()
	f := &fixture{t: t, global: env.New(), ctx: eval.NewContext()}
	require.NoError(t, Register(f.global, f.ctx))
	root, err := parser.Parse(source, "test.scss", nil)
	require.NoError(t, err)
	ev := eval.New(f.ctx, f.global, nil)
	for _, s := range root.Statements {
		switch st := s.(type) {
		case *ast.Definition:
			f.global.SetLocal(st.Key(), st.Closure(f.global))
		case *ast.Assignment:
			require.NoError(t, ev.Assign(st))
		}
	}
	return f
}

func (f *fixture) eval(source string) (ast.Expression, error) {
	f.t.Helper()
	expr, err := parser.ParseExpression(source, ast.SourceLocation{Path: "test.scss"})
	require.NoError(f.t, err, source)
	return eval.New(f.ctx, f.global, nil).Evaluate(expr)
}

func (f *fixture) css(source string) string {
	f.t.Helper()
	v, err := f.eval(source)
	require.NoError(f.t, err, source)
	return ast.ToCSS(v, ast.Format{Precision: f.ctx.Precision})
}

func (f *fixture) inspect(source string) string {
	f.t.Helper()
	v, err := f.eval(source)
	require.NoError(f.t, err, source)
	return ast.Inspect(v)
}

func (f *fixture) fails(source string) string {
	f.t.Helper()
	_, err := f.eval(source)
	require.Error(f.t, err, source)
	var ce *errors.CompilerError
	require.ErrorAs(f.t, err, &ce)
	assert.Equal(f.t, errors.ErrInvalidArgument, ce.Code, source)
	return ce.Message
}

type testCase struct {
	expr string
	want string
}

func run(t *testing.T, f *fixture, tests []testCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, f.css(tt.expr))
		})
	}
}

func TestColorFunctions(t *testing.T) {
	run(t, setup(t, ""), []testCase{
		{"rgb(10, 20, 30)", "#0a141e"},
		{"rgb(100%, 0%, 0%)", "red"},
		{"rgb(300, -5, 0)", "red"},
		{"rgba(10, 20, 30, 0.5)", "rgba(10, 20, 30, 0.5)"},
		{"rgba(#0a141e, 0.5)", "rgba(10, 20, 30, 0.5)"},
		{"red(#0a141e)", "10"},
		{"green(#0a141e)", "20"},
		{"blue(#0a141e)", "30"},
		{"mix(#0a141e, #1e140a)", "#141414"},
		{"mix(#0a141e, #1e140a, 100%)", "#0a141e"},
		{"hsl(0, 100%, 50%)", "red"},
		{"hsla(0, 100%, 50%, 0.5)", "rgba(255, 0, 0, 0.5)"},
		{"hue(#ff0000)", "0deg"},
		{"saturation(#ff0000)", "100%"},
		{"lightness(#ff0000)", "50%"},
		{"lighten(#800000, 20%)", "#e60000"},
		{"invert(#0a141e)", "#f5ebe1"},
		{"invert(10%)", "invert(10%)"},
		{"saturate(50%)", "saturate(50%)"},
		{"grayscale(2)", "grayscale(2)"},
		{"alpha(#0a141e)", "1"},
		{"opacity(rgba(10, 20, 30, 0.5))", "0.5"},
		{"opacity(50%)", "opacity(50%)"},
		{"opacify(rgba(10, 20, 30, 0.5), 0.2)", "rgba(10, 20, 30, 0.7)"},
		{"transparentize(#0a141e, 0.25)", "rgba(10, 20, 30, 0.75)"},
		{"fade-out(#0a141e, 0.25)", "rgba(10, 20, 30, 0.75)"},
		{"adjust-color(#0a141e, $red: 5)", "#0f141e"},
		{"adjust-color(#0a141e, $alpha: -0.5)", "rgba(10, 20, 30, 0.5)"},
		{"change-color(#0a141e, $blue: 0)", "#0a1400"},
		{"scale-color(#0a141e, $red: 100%)", "#ff141e"},
		{"ie-hex-str(#0a141e)", "#FF0A141E"},
		{"ie-hex-str(rgba(10, 20, 30, 0.5))", "#800A141E"},
		{"red(red)", "255"},
	})
}

func TestColorFunctionErrors(t *testing.T) {
	f := setup(t, "")
	assert.Equal(t, "argument `$amount` of `lighten($color, $amount)` must be between 0 and 100",
		f.fails("lighten(#0a141e, 120%)"))
	assert.Equal(t, "argument `$color` of `lighten($color, $amount)` must be a color",
		f.fails("lighten(1, 10%)"))
	assert.Equal(t, "cannot specify both RGB and HSL values for `adjust-color`",
		f.fails("adjust-color(#0a141e, $red: 5, $hue: 10)"))
	assert.Equal(t, "not enough arguments for `adjust-color`",
		f.fails("adjust-color(#0a141e)"))
	assert.Equal(t, "argument `$amount` of `transparentize($color, $amount)` must be between 0 and 1",
		f.fails("transparentize(#0a141e, 2)"))
}

func TestStringFunctions(t *testing.T) {
	run(t, setup(t, ""), []testCase{
		{`unquote("foo")`, "foo"},
		{`quote(foo)`, `"foo"`},
		{`str-length("héllo")`, "5"},
		{`str-insert("abcd", "X", 1)`, `"Xabcd"`},
		{`str-insert("abcd", "X", 3)`, `"abXcd"`},
		{`str-insert("abcd", "X", -1)`, `"abcdX"`},
		{`str-insert("abcd", "X", 10)`, `"abcdX"`},
		{`str-insert(abcd, X, 0)`, "Xabcd"},
		{`str-index("abcd", "c")`, "3"},
		{`str-slice("abcd", 2)`, `"bcd"`},
		{`str-slice("abcd", 2, 3)`, `"bc"`},
		{`str-slice("abcd", -2)`, `"cd"`},
		{`str-slice("abcd", 3, 2)`, `""`},
		{`to-upper-case(abc)`, "ABC"},
		{`to-lower-case("ÀBC")`, `"Àbc"`},
	})

	f := setup(t, "")
	assert.Equal(t, "null", f.inspect(`str-index("abcd", "z")`))
	assert.Equal(t, "null", f.inspect(`unquote(null)`))
	assert.Regexp(t, regexp.MustCompile(`^u[0-9a-f]{8}$`), f.css("unique-id()"))
	assert.NotEqual(t, f.css("unique-id()"), f.css("unique-id()"))
	assert.Equal(t, "argument `$string` of `quote($string)` must be a string", f.fails("quote(1)"))
}

func TestNumberFunctions(t *testing.T) {
	run(t, setup(t, ""), []testCase{
		{"percentage(0.25)", "25%"},
		{"round(1.5px)", "2px"},
		{"round(1.4)", "1"},
		{"ceil(1.2)", "2"},
		{"floor(1.8em)", "1em"},
		{"abs(-3em)", "3em"},
		{"min(3px, 1px, 2px)", "1px"},
		{"max(3px, 1px, 2px)", "3px"},
		{"max(1cm, 20mm)", "20mm"},
	})

	f := setup(t, "")
	assert.Equal(t, "argument $number of `percentage($number)` must be unitless", f.fails("percentage(1px)"))
	assert.Equal(t, "`min($numbers...)` only takes numeric arguments", f.fails("min(1px, a)"))
	assert.Contains(t, f.fails("max(1px, 1s)"), "Incompatible units")
	assert.Equal(t, "argument $limit of `random($limit: false)` must be a positive integer", f.fails("random(1.5)"))

	for i := 0; i < 20; i++ {
		v, err := strconv.ParseFloat(f.css("random(3)"), 64)
		require.NoError(t, err)
		assert.Contains(t, []float64{1, 2, 3}, v)

		r, err := f.eval("random()")
		require.NoError(t, err)
		n := r.(*ast.Number)
		assert.True(t, n.Value >= 0 && n.Value < 1)
	}
}

func TestListFunctions(t *testing.T) {
	run(t, setup(t, ""), []testCase{
		{"length(a b c)", "3"},
		{"length((a: 1, b: 2))", "2"},
		{"length(foo)", "1"},
		{"length(())", "0"},
		{"nth(a b c, 2)", "b"},
		{"nth(a b c, -1)", "c"},
		{"nth((a: 1, b: 2), 2)", "b 2"},
		{"set-nth(a b c, 2, x)", "a x c"},
		{"index(a b c, c)", "3"},
		{"join(a b, c d)", "a b c d"},
		{"join((a, b), c)", "a, b, c"},
		{"join(a, b, comma)", "a, b"},
		{"append(a b, c)", "a b c"},
		{"append((a, b), c)", "a, b, c"},
		{"append(a, b, $separator: comma)", "a, b"},
		{"zip(1 2 3, a b)", "1 a, 2 b"},
		{"list-separator((a, b))", "comma"},
		{"list-separator(a b)", "space"},
		{"list-separator(a)", "space"},
	})

	f := setup(t, "")
	assert.Equal(t, "null", f.inspect("index(a b, z)"))
	assert.Equal(t, "argument `$n` of `nth($list, $n)` must be non-zero", f.fails("nth(a b, 0)"))
	assert.Equal(t, "index out of bounds for `nth($list, $n)`", f.fails("nth(a b, 5)"))
	assert.Equal(t, "argument `$list` of `nth($list, $n)` must not be empty", f.fails("nth((), 1)"))
	assert.Equal(t, "argument `$separator` of `join($list1, $list2, $separator: auto)` must be `space`, `comma`, or `auto`",
		f.fails("join(a, b, $separator: x)"))
}

func TestMapFunctions(t *testing.T) {
	f := setup(t, `
@function kw($args...) { @return keywords($args); }
`)
	assert.Equal(t, "2", f.css("map-get((a: 1, b: 2), b)"))
	assert.Equal(t, "null", f.inspect("map-get((a: 1), z)"))
	assert.Equal(t, "null", f.inspect("map-get((), z)"))
	assert.Equal(t, "(a: 1, b: 3, c: 4)", f.inspect("map-merge((a: 1, b: 2), (b: 3, c: 4))"))
	assert.Equal(t, "(b: 2)", f.inspect("map-remove((a: 1, b: 2, c: 3), a, c)"))
	assert.Equal(t, "a, b", f.css("map-keys((a: 1, b: 2))"))
	assert.Equal(t, "1, 2", f.css("map-values((a: 1, b: 2))"))
	assert.Equal(t, "true", f.css("map-has-key((a: 1), a)"))
	assert.Equal(t, "false", f.css("map-has-key((a: 1), b)"))
	assert.Equal(t, "(a: 1, b: 2)", f.inspect("kw($a: 1, $b: 2)"))
	assert.Equal(t, "()", f.inspect("kw(1, 2)"))

	assert.Equal(t, "argument `$map` of `map-get($map, $key)` must be a map", f.fails("map-get(1, a)"))
}

func TestIntrospectionFunctions(t *testing.T) {
	f := setup(t, `
$x: 1;
@function twice($n) { @return $n * 2; }
`)
	run(t, f, []testCase{
		{"type-of(1px)", "number"},
		{"type-of(red)", "color"},
		{`type-of("red")`, "string"},
		{"type-of(a b)", "list"},
		{"type-of((a: 1))", "map"},
		{"type-of(null)", "null"},
		{"type-of(true)", "bool"},
		{"unit(1px)", `"px"`},
		{"unit(1)", `""`},
		{"unitless(1)", "true"},
		{"unitless(1px)", "false"},
		{"comparable(1px, 1in)", "true"},
		{"comparable(1px, 1s)", "false"},
		{"inspect(null)", "null"},
		{"inspect(())", "()"},
		{`inspect("a")`, `"a"`},
		{"variable-exists(x)", "true"},
		{"variable-exists(nope)", "false"},
		{"global-variable-exists(x)", "true"},
		{"function-exists(twice)", "true"},
		{"function-exists(lighten)", "true"},
		{"function-exists(rgba)", "true"},
		{"function-exists(nope)", "false"},
		{"mixin-exists(twice)", "false"},
		{"feature-exists(at-error)", "true"},
		{"feature-exists(teleport)", "false"},
		{`is-superselector(".a", ".a.b")`, "true"},
		{`is-superselector(".a.b", ".a")`, "false"},
		{"call(twice, 3)", "6"},
		{"call(lighten, #800000, 20%)", "#e60000"},
		{"call(rgba, 10, 20, 30, 0.5)", "rgba(10, 20, 30, 0.5)"},
		{"call(mix, #0a141e, #1e140a, $weight: 100%)", "#0a141e"},
		{"call(if, true, 1, 2)", "1"},
		{"not(null)", "true"},
		{"not(1)", "false"},
	})
}
