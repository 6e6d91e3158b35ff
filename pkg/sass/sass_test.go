package sass

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/host"
	"github.com/conduit-lang/gosass/internal/compiler/importer"
	"github.com/conduit-lang/gosass/internal/compiler/output"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompile(t *testing.T) {
	src := `
$w: 10px;
@mixin size($x) { width: $x; }
.a {
  @include size($w * 2);
  .b { color: red; }
}`
	res, err := Compile(context.Background(), src, "", Options{Style: output.Expanded})
	require.NoError(t, err)
	assert.Equal(t, ".a {\n  width: 20px;\n}\n.a .b {\n  color: red;\n}\n", res.CSS)
	assert.NotEmpty(t, res.ID)
	assert.Empty(t, res.Warnings)
}

func TestCompileExtend(t *testing.T) {
	src := `%btn { padding: 1px; } .save { @extend %btn; color: green; }`
	res, err := Compile(context.Background(), src, "", Options{Style: output.Compressed})
	require.NoError(t, err)
	assert.Equal(t, ".save{padding:1px}.save{color:green}\n", res.CSS)
}

func TestCompileFileWithImports(t *testing.T) {
	dir := t.TempDir()
	vars := writeFile(t, dir, "_vars.scss", "$c: red;")
	main := writeFile(t, dir, "main.scss", `@import "vars"; .a { color: $c; }`)

	res, err := CompileFile(context.Background(), main, Options{Style: output.Compact})
	require.NoError(t, err)
	assert.Equal(t, ".a { color: red; }\n", res.CSS)
	assert.Equal(t, []string{main, vars}, res.Includes)
}

func TestCompileFileIncludePaths(t *testing.T) {
	dir, lib := t.TempDir(), t.TempDir()
	writeFile(t, lib, "_grid.scss", "@mixin grid { display: grid; }")
	main := writeFile(t, dir, "main.scss", `@import "grid"; .a { @include grid; }`)

	_, err := CompileFile(context.Background(), main, Options{})
	require.Error(t, err)

	res, err := CompileFile(context.Background(), main, Options{Style: output.Compressed, IncludePaths: []string{lib}})
	require.NoError(t, err)
	assert.Equal(t, ".a{display:grid}\n", res.CSS)
}

func TestCompileFileIndentedSyntax(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.sass", ".a\n  width: 1px\n  .b\n    height: 2px")

	res, err := CompileFile(context.Background(), path, Options{Style: output.Compressed})
	require.NoError(t, err)
	assert.Equal(t, ".a{width:1px}.a .b{height:2px}\n", res.CSS)
}

func TestCompileFileMissing(t *testing.T) {
	_, err := CompileFile(context.Background(), filepath.Join(t.TempDir(), "none.scss"), Options{})
	require.Error(t, err)
	var ce *errors.CompilerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.ErrImportRead, ce.Code)
}

func TestCompileSharedFileCache(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.scss", ".a { width: 1px; }")
	files, err := importer.NewFileCache(8)
	require.NoError(t, err)

	opts := Options{Style: output.Compressed, Files: files}
	_, err = CompileFile(context.Background(), main, opts)
	require.NoError(t, err)

	writeFile(t, dir, "main.scss", ".a { width: 2px; }")
	res, err := CompileFile(context.Background(), main, opts)
	require.NoError(t, err)
	assert.Equal(t, ".a{width:1px}\n", res.CSS)

	files.Invalidate(main)
	res, err = CompileFile(context.Background(), main, opts)
	require.NoError(t, err)
	assert.Equal(t, ".a{width:2px}\n", res.CSS)
}

func TestCompileHostFunctions(t *testing.T) {
	double := func(args []host.Value) host.Value {
		n := args[0].(host.Number)
		return host.Number{Value: n.Value * 2, Unit: n.Unit}
	}
	exec := host.NewExecutor()
	defer exec.Close()

	res, err := Compile(context.Background(), `.a { width: double(3px); }`, "", Options{
		Style:     output.Compressed,
		Functions: map[string]host.Callback{"double($n)": double},
		Executor:  exec,
	})
	require.NoError(t, err)
	assert.Equal(t, ".a{width:6px}\n", res.CSS)
}

func TestCompileWarnings(t *testing.T) {
	var diag bytes.Buffer
	res, err := Compile(context.Background(), `@warn "careful"; .a { width: 1px; }`, "main.scss", Options{Diagnostics: &diag})
	require.NoError(t, err)
	assert.Equal(t, []string{"careful"}, res.Warnings)
	assert.Contains(t, diag.String(), "WARNING: careful")
}

func TestCompileEvaluationErrorHasContext(t *testing.T) {
	src := ".a {\n  color: $missing;\n}"
	_, err := Compile(context.Background(), src, "main.scss", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsEvaluation(err))

	var ce *errors.CompilerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, `Undefined variable: "$missing".`, ce.Message)
	assert.Equal(t, 1, ce.Location.Line)
	assert.NotEmpty(t, ce.Context.SourceLines)
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := Compile(context.Background(), "$x: f($a: 1, 2);", "main.scss", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsSyntax(err))
}

func TestCompileMinify(t *testing.T) {
	res, err := Compile(context.Background(), `.a { width: 1px; color: #ffffff; }`, "", Options{Minify: true})
	require.NoError(t, err)
	assert.Equal(t, ".a{width:1px;color:#fff}\n", res.CSS)
}

func TestCompileSourceMap(t *testing.T) {
	res, err := Compile(context.Background(), ".a {\n  width: 1px;\n}", "main.scss", Options{Style: output.Expanded, SourceMap: true})
	require.NoError(t, err)
	require.Len(t, res.Mappings, 2)
	assert.Equal(t, "main.scss", res.Mappings[0].Original.Path)

	res, err = Compile(context.Background(), ".a { width: 1px; }", "main.scss", Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Mappings)
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, ".a { width: 1px; }", "", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
