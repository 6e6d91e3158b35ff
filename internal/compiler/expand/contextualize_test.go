package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
)

func selector(t *testing.T, text string) *ast.SelectorList {
	t.Helper()
	sel, err := parser.ParseSelector(text, ast.SourceLocation{Path: "test.scss"})
	require.NoError(t, err, text)
	return sel
}

func TestContextualize(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		child  string
		want   string
	}{
		{"implicit descendant", ".a", ".b", ".a .b"},
		{"explicit parent", ".a", "& .b", ".a .b"},
		{"qualified parent", ".a", "&:hover", ".a:hover"},
		{"compound parent", ".a", "&.b", ".a.b"},
		{"suffix", ".a", "&-item", ".a-item"},
		{"suffix on type", "div", "&__el", "div__el"},
		{"leading combinator", ".a", "> .b", ".a > .b"},
		{"sibling combinator", ".a", "+ .b", ".a + .b"},
		{"parent after", ".a", ".b &", ".b .a"},
		{"parent in middle", ".a .x", ".b & > .c", ".b .a .x > .c"},
		{"complex parent", ".a > .x", "&:first-child", ".a > .x:first-child"},
		{"cartesian product", ".a, .b", ".c, .d", ".a .c, .a .d, .b .c, .b .d"},
		{"bare parent", ".a, .b", "&", ".a, .b"},
		{"parent with trailing combinator", ".a >", ".b", ".a > .b"},
		{"trailing combinator with parent ref", ".a +", "& .b", ".a + .b"},
		{"trailing combinator on compound parent", ".x .a ~", ".b .c", ".x .a ~ .b .c"},
		{"parent inside negation", ".a", ":not(&)", ":not(.a)"},
		{"parent inside negation after compound", ".a", ".b:not(&)", ".b:not(.a)"},
		{"parent list inside negation", ".a, .b", ":not(&)", ":not(.a, .b)"},
		{"parent inside and outside negation", ".a", "&:not(&.b)", ".a:not(.a.b)"},
		{"parent inside matches", ".a .x", ":matches(& > .c)", ":matches(.a .x > .c)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Contextualize(selector(t, tt.child), selector(t, tt.parent))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestContextualizeTopLevel(t *testing.T) {
	sel := selector(t, ".a > .b, .c")
	got, err := Contextualize(sel, nil)
	require.NoError(t, err)
	assert.Same(t, sel, got)

	_, err = Contextualize(selector(t, "& .b"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsEvaluation(err))
	assert.Contains(t, err.Error(), "Base-level rules cannot contain the parent-selector-referencing character '&'.")

	_, err = Contextualize(selector(t, ".b:not(&)"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsEvaluation(err))
}

func TestContextualizeDoesNotShareParent(t *testing.T) {
	parent := selector(t, ".a")
	got, err := Contextualize(selector(t, "&.b"), parent)
	require.NoError(t, err)
	assert.Equal(t, ".a.b", got.String())
	assert.Equal(t, ".a", parent.String())
}

func TestContextualizeInvalidSuffix(t *testing.T) {
	_, err := Contextualize(selector(t, "&-x"), selector(t, ":hover"))
	require.Error(t, err)
	var ce *errors.CompilerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.ErrInvalidParent, ce.Code)
}
