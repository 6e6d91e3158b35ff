package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

func TestForDirective(t *testing.T) {
	f := load(t, `
@function count-up($from, $to) {
  $out: ();
  @for $i from $from through $to { $out: $out $i; }
  @return $out;
}
@function count-down($from, $to) {
  $out: ();
  @for $i from $from to $to { $out: $out $i; }
  @return $out;
}
`)
	assert.Equal(t, "1 2 3", f.css("count-up(1, 3)"))
	assert.Equal(t, "3 2", f.css("count-down(3, 1)"))
	assert.Equal(t, "1px 2px", f.css("count-up(1px, 2px)"))

	err := f.fails("count-up(1px, 3em)")
	assert.Equal(t, errors.ErrIncompatibleUnits, err.Code)

	err = f.fails("count-up(a, 3)")
	assert.Equal(t, "lower bound of `@for` directive must be numeric", err.Message)
}

func TestLoopVariablesAreRestored(t *testing.T) {
	f := load(t, `
$i: outer;
@for $i from 1 through 2 { $seen: $i; }
`)
	assert.Equal(t, "outer", f.css("$i"))
	assert.Equal(t, "2", f.css("$seen"))
}

func TestEachDirective(t *testing.T) {
	f := load(t, `
@function keys($map) {
  $out: ();
  @each $k, $v in $map { $out: $out $k; }
  @return $out;
}
@function pairs($map) {
  $out: ();
  @each $pair in $map { $out: $out, $pair; }
  @return $out;
}
@function seconds($list) {
  $out: ();
  @each $a, $b in $list { $out: $out $b; }
  @return $out;
}
`)
	assert.Equal(t, "a b", f.css("keys((a: 1, b: 2))"))
	assert.Equal(t, "a 1, b 2", f.css("pairs((a: 1, b: 2))"))
	assert.Equal(t, "2 4", f.css("seconds((1 2, 3 4))"))
	assert.Equal(t, "1", f.css("keys(1)"))
}

func TestWhileDirective(t *testing.T) {
	f := load(t, `
@function halve($n) {
  @while $n > 1 { $n: $n / 2; }
  @return $n;
}
`)
	assert.Equal(t, "1", f.css("halve(16)"))
}

func TestReturnInsideLoopStopsFunction(t *testing.T) {
	f := load(t, `
@function first-over($list, $limit) {
  @each $n in $list {
    @if $n > $limit { @return $n; }
  }
  @return null;
}
`)
	assert.Equal(t, "5", f.css("first-over(1 5 9, 3)"))
	v, err := f.eval("first-over(1 2, 3)")
	require.NoError(t, err)
	assert.IsType(t, &ast.Null{}, v)
}

func TestIfElse(t *testing.T) {
	f := load(t, `
@function sign($n) {
  @if $n < 0 { @return negative; }
  @else if $n == 0 { @return zero; }
  @else { @return positive; }
}
`)
	assert.Equal(t, "negative", f.css("sign(-2)"))
	assert.Equal(t, "zero", f.css("sign(0)"))
	assert.Equal(t, "positive", f.css("sign(2)"))
}

func TestWarnAndDebug(t *testing.T) {
	f := load(t, `
@warn "careful";
@debug 1 + 1;
`)
	assert.Equal(t, "WARNING: careful\n         on line 2 of test.scss\n\ntest.scss:3 DEBUG: 2\n", f.out.String())
}

func TestWarnHook(t *testing.T) {
	f := load(t, "")
	var got string
	f.global.SetLocal(FunctionKey("@warn"), &ast.Definition{
		Name:   "@warn",
		Kind:   ast.FunctionDefinition,
		Params: &ast.Parameters{Items: []*ast.Parameter{{Name: "$message"}}},
		Native: func(call *ast.NativeCall) (ast.Expression, error) {
			got = call.Arg("$message").(*ast.String).Value
			return nil, nil
		},
	})
	ev := New(f.ctx, f.global, nil)
	require.NoError(t, ev.Warn(&ast.String{Value: "hooked", Quote: '"'}, ast.SourceLocation{}))
	assert.Equal(t, "hooked", got)
	assert.Empty(t, f.out.String())
}

func TestErrorDirective(t *testing.T) {
	f := load(t, `@function fail($why) { @error "bad #{$why}"; }`)
	err := f.fails("fail(input)")
	assert.Equal(t, errors.ErrUserError, err.Code)
	assert.Equal(t, "bad input", err.Message)
	require.NotNil(t, err.Backtrace)
	assert.Equal(t, 1, err.Backtrace.Depth())
}

func TestFunctionBodyRejectsDeclarations(t *testing.T) {
	def := &ast.Definition{
		Name: "bad",
		Kind: ast.FunctionDefinition,
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Declaration{Property: &ast.String{Value: "color"}, Value: &ast.String{Value: "red"}},
		}},
	}
	f := load(t, "")
	f.global.SetLocal(def.Key(), def.Closure(f.global))
	err := f.fails("bad()")
	assert.Equal(t, errors.ErrInvalidControl, err.Code)
	assert.Equal(t, "Functions can only contain variable declarations and control directives.", err.Message)
}
