package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/eval"
	"github.com/conduit-lang/gosass/internal/compiler/expand"
	"github.com/conduit-lang/gosass/internal/compiler/extend"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
)

func expanded(t *testing.T, source string) *ast.Block {
	t.Helper()
	root, err := parser.Parse(source, "test.scss", nil)
	require.NoError(t, err)
	x := expand.New(eval.NewContext(), env.New(), nil)
	out, err := x.Expand(root)
	require.NoError(t, err)
	require.NoError(t, extend.Apply(out, x.Extensions()))
	return out
}

func render(t *testing.T, source string, style Style) string {
	t.Helper()
	return Emit(expanded(t, source), Options{Style: style})
}

const nestedSource = `
.a {
  width: 10px;
  .b { color: red; }
}
.c { height: 0.5em; }
`

func TestStyles(t *testing.T) {
	tests := []struct {
		style Style
		want  string
	}{
		{Nested, ".a {\n  width: 10px; }\n  .a .b {\n    color: red; }\n\n.c {\n  height: 0.5em; }\n"},
		{Expanded, ".a {\n  width: 10px;\n}\n.a .b {\n  color: red;\n}\n\n.c {\n  height: 0.5em;\n}\n"},
		{Compact, ".a { width: 10px; }\n.a .b { color: red; }\n\n.c { height: 0.5em; }\n"},
		{Compressed, ".a{width:10px}.a .b{color:red}.c{height:.5em}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, nestedSource, tt.style))
		})
	}
}

func TestMultipleDeclarations(t *testing.T) {
	src := `.a { width: 1px; height: 2px !important; }`
	assert.Equal(t, ".a {\n  width: 1px;\n  height: 2px !important; }\n", render(t, src, Nested))
	assert.Equal(t, ".a { width: 1px; height: 2px !important; }\n", render(t, src, Compact))
	assert.Equal(t, ".a{width:1px;height:2px!important}\n", render(t, src, Compressed))
}

func TestEmptyRulesAreSkipped(t *testing.T) {
	assert.Equal(t, "", render(t, `.a { }`, Expanded))
	assert.Equal(t, ".a .b {\n  width: 1px;\n}\n", render(t, `.a { .b { width: 1px; } }`, Expanded))
}

func TestPlaceholdersAreNotEmitted(t *testing.T) {
	src := `%p { width: 1px; } .a { @extend %p; }`
	assert.Equal(t, ".a {\n  width: 1px;\n}\n", render(t, src, Expanded))
	assert.Equal(t, "", render(t, `%p { width: 1px; }`, Expanded))
}

func TestMedia(t *testing.T) {
	src := `.a { width: 1px; @media screen { width: 2px; } }`
	assert.Equal(t,
		".a {\n  width: 1px; }\n  @media screen {\n    .a {\n      width: 2px; } }\n",
		render(t, src, Nested))
	assert.Equal(t,
		".a {\n  width: 1px;\n}\n@media screen {\n  .a {\n    width: 2px;\n  }\n}\n",
		render(t, src, Expanded))
	assert.Equal(t,
		".a{width:1px}@media screen{.a{width:2px}}\n",
		render(t, src, Compressed))
}

func TestEmptyMediaIsSkipped(t *testing.T) {
	assert.Equal(t, "", render(t, `@media print { .a { } }`, Expanded))
}

func TestDirectiveWithDeclarations(t *testing.T) {
	src := `@font-face { font-family: x; }`
	assert.Equal(t, "@font-face {\n  font-family: x; }\n", render(t, src, Nested))
	assert.Equal(t, "@font-face{font-family:x}\n", render(t, src, Compressed))
}

func TestBlocklessDirective(t *testing.T) {
	assert.Equal(t, "@namespace svg;\n", render(t, `@namespace svg;`, Expanded))
}

func TestImportsComeFirst(t *testing.T) {
	src := `.a { width: 1px; } @import "theme.css";`
	got := render(t, src, Expanded)
	assert.Equal(t, "@import url(theme.css);\n\n.a {\n  width: 1px;\n}\n", got)
}

func TestComments(t *testing.T) {
	src := `/* keep */ .a { /*! legal */ width: 1px; }`
	assert.Equal(t, "/* keep */\n\n.a {\n  /*! legal */\n  width: 1px;\n}\n", render(t, src, Expanded))
	assert.Equal(t, ".a{/*! legal */width:1px}\n", render(t, src, Compressed))
}

func TestSelectorListCompression(t *testing.T) {
	src := `.a > .b, .c + .d { width: 1px; }`
	assert.Equal(t, ".a > .b, .c + .d {\n  width: 1px;\n}\n", render(t, src, Expanded))
	assert.Equal(t, ".a>.b,.c+.d{width:1px}\n", render(t, src, Compressed))
}

func TestPrecision(t *testing.T) {
	root := expanded(t, `.a { width: (1 / 3) * 1px; }`)
	assert.Equal(t, ".a {\n  width: 0.333px;\n}\n", Emit(root, Options{Style: Expanded, Precision: 3}))
	assert.Equal(t, ".a {\n  width: 0.33333px;\n}\n", Emit(root, Options{Style: Expanded}))
}

func TestEmitterIsReusable(t *testing.T) {
	e := NewEmitter(Options{Style: Compressed})
	root := expanded(t, `.a { width: 1px; }`)
	assert.Equal(t, e.Emit(root), e.Emit(root))
}

func TestParseStyle(t *testing.T) {
	for _, name := range StyleNames() {
		s, err := ParseStyle(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.String())
	}
	s, err := ParseStyle(" Compressed ")
	require.NoError(t, err)
	assert.Equal(t, Compressed, s)

	_, err = ParseStyle("pretty")
	assert.Error(t, err)
}
