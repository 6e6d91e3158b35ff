package env

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

func num(v float64) *ast.Number {
	return ast.NewNumber(ast.SourceLocation{}, v, "")
}

func value(e ast.Expression) func() (ast.Expression, error) {
	return func() (ast.Expression, error) { return e, nil }
}

func lookupNumber(t *testing.T, e *Env, name string) float64 {
	t.Helper()
	n, ok := e.Lookup(name)
	require.True(t, ok, "%s is unbound", name)
	return n.(*ast.Number).Value
}

func TestLookupWalksParents(t *testing.T) {
	global := New()
	global.SetLocal("$a", num(1))
	inner := global.NewFrame().NewFrame()

	assert.Equal(t, 1.0, lookupNumber(t, inner, "$a"))
	assert.False(t, inner.HasLocal("$a"))
	assert.True(t, inner.HasGlobal("$a"))
	assert.Same(t, global, inner.Global())
	assert.True(t, global.IsGlobal())
	assert.False(t, inner.IsGlobal())

	_, ok := inner.Lookup("$missing")
	assert.False(t, ok)
}

func TestInnerBindingShadows(t *testing.T) {
	global := New()
	global.SetLocal("$a", num(1))
	inner := global.NewFrame()
	inner.SetLocal("$a", num(2))

	assert.Equal(t, 2.0, lookupNumber(t, inner, "$a"))
	assert.Equal(t, 1.0, lookupNumber(t, global, "$a"))
}

func TestSetLexicalUpdatesNearestDefiningFrame(t *testing.T) {
	global := New()
	global.SetLocal("$a", num(1))
	outer := global.NewFrame()
	outer.SetLocal("$b", num(1))
	inner := outer.NewFrame()

	inner.SetLexical("$b", num(2))
	assert.False(t, inner.HasLocal("$b"))
	assert.Equal(t, 2.0, lookupNumber(t, outer, "$b"))

	inner.SetLexical("$a", num(3))
	assert.Equal(t, 3.0, lookupNumber(t, global, "$a"))

	inner.SetLexical("$c", num(4))
	assert.True(t, inner.HasLocal("$c"))
	assert.False(t, outer.HasLocal("$c"))
}

func TestFunctionFrameIsABoundary(t *testing.T) {
	global := New()
	global.SetLocal("$a", num(1))
	call := NewFunctionFrame(global)
	block := call.NewFrame()

	assert.False(t, call.IsLexical())
	assert.True(t, block.IsLexical())
	assert.False(t, block.HasLexical("$a"))
	assert.True(t, block.Has("$a"))

	block.SetLexical("$a", num(2))
	assert.Equal(t, 1.0, lookupNumber(t, global, "$a"))
	assert.Equal(t, 2.0, lookupNumber(t, block, "$a"))

	call.SetLocal("$p", num(5))
	block.SetLexical("$p", num(6))
	assert.Equal(t, 6.0, lookupNumber(t, call, "$p"))
}

func TestAssignDefault(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(global *Env) *Env
		global bool
		want   float64
		where  func(global, scope *Env) *Env
	}{
		{
			name:  "unbound defines locally",
			setup: func(g *Env) *Env { return g.NewFrame() },
			want:  9,
			where: func(g, s *Env) *Env { return s },
		},
		{
			name: "bound value is kept",
			setup: func(g *Env) *Env {
				g.SetLocal("$x", num(1))
				return g.NewFrame()
			},
			want:  1,
			where: func(g, s *Env) *Env { return g },
		},
		{
			name: "null is replaced in the defining frame",
			setup: func(g *Env) *Env {
				outer := g.NewFrame()
				outer.SetLocal("$x", &ast.Null{})
				return outer.NewFrame()
			},
			want:  9,
			where: func(g, s *Env) *Env { return s.Parent() },
		},
		{
			name: "global flag targets the root",
			setup: func(g *Env) *Env {
				s := g.NewFrame()
				s.SetLocal("$x", num(1))
				return s
			},
			global: true,
			want:   9,
			where:  func(g, s *Env) *Env { return g },
		},
		{
			name: "function frame does not see caller bindings",
			setup: func(g *Env) *Env {
				caller := g.NewFrame()
				caller.SetLocal("$x", num(1))
				return NewFunctionFrame(g)
			},
			want:  9,
			where: func(g, s *Env) *Env { return s },
		},
		{
			name: "function frame falls back to a bound global",
			setup: func(g *Env) *Env {
				g.SetLocal("$x", num(1))
				return NewFunctionFrame(g)
			},
			want:  1,
			where: func(g, s *Env) *Env { return g },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			global := New()
			scope := tt.setup(global)
			require.NoError(t, scope.Assign("$x", tt.global, true, value(num(9))))
			frame := tt.where(global, scope)
			v, ok := frame.GetLocal("$x")
			require.True(t, ok)
			assert.Equal(t, tt.want, v.(*ast.Number).Value)
		})
	}
}

func TestAssignDefaultSkipsEvaluation(t *testing.T) {
	global := New()
	global.SetLocal("$x", num(1))
	called := false
	err := global.Assign("$x", false, true, func() (ast.Expression, error) {
		called = true
		return num(2), nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestAssignPropagatesError(t *testing.T) {
	global := New()
	err := global.Assign("$x", false, false, func() (ast.Expression, error) {
		return nil, fmt.Errorf("boom")
	})
	require.EqualError(t, err, "boom")
	assert.False(t, global.HasLocal("$x"))
}

func TestPlainAssignUsesLexicalFrame(t *testing.T) {
	global := New()
	global.SetLocal("$x", num(1))
	inner := global.NewFrame()
	require.NoError(t, inner.Assign("$x", false, false, value(num(2))))
	assert.Equal(t, 2.0, lookupNumber(t, global, "$x"))
	assert.False(t, inner.HasLocal("$x"))
}

func TestDefinitionsAndDelete(t *testing.T) {
	global := New()
	def := &ast.Definition{Name: "double", Kind: ast.FunctionDefinition}
	global.SetLocal(def.Key(), def)
	global.SetLocal("$v", num(1))

	got, ok := global.NewFrame().Definition("double[f]")
	require.True(t, ok)
	assert.Same(t, def, got)

	_, ok = global.Definition("$v")
	assert.False(t, ok)

	assert.Equal(t, []string{"$v", "double[f]"}, global.LocalNames())
	global.DelLocal("$v")
	assert.False(t, global.Has("$v"))
}
