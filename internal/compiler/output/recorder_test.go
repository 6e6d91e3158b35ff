package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderTracksGeneratedPositions(t *testing.T) {
	rec := NewRecorder()
	root := expanded(t, "\n.a {\n  width: 1px;\n}")
	css := Emit(root, Options{Style: Expanded, SourceMap: rec})
	require.Equal(t, ".a {\n  width: 1px;\n}\n", css)

	m := rec.Mappings()
	require.Len(t, m, 2)

	assert.Equal(t, 1, m[0].Original.Line)
	assert.Equal(t, Position{Line: 0, Column: 0}, m[0].Start)
	assert.Equal(t, Position{Line: 2, Column: 1}, m[0].End)

	assert.Equal(t, 2, m[1].Original.Line)
	assert.Equal(t, Position{Line: 1, Column: 2}, m[1].Start)
	assert.Equal(t, Position{Line: 1, Column: 12}, m[1].End)

	assert.Equal(t, []string{"test.scss"}, rec.Sources())
}

func TestRecorderIgnoresUnbalancedClose(t *testing.T) {
	rec := NewRecorder()
	rec.CloseMapping(nil, Position{})
	assert.Empty(t, rec.Mappings())
}

func TestMinify(t *testing.T) {
	css := Emit(expanded(t, `.a { width: 1px; color: #ffffff; }`), Options{Style: Expanded})
	got, err := Minify(css)
	require.NoError(t, err)
	assert.Equal(t, ".a{width:1px;color:#fff}\n", got)
}
