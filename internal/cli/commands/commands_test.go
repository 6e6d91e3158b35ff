package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/gosass/internal/cli/config"
	"github.com/conduit-lang/gosass/internal/compiler/cache"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the CLI with args and stdin, always without color.
func run(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

// inTempDir changes into a fresh directory for the rest of the test.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "gosass", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, expected := range []string{"version", "compile", "watch", "check", "init", "functions", "completion"} {
		assert.Contains(t, names, expected)
	}
}

func TestVersionCommand(t *testing.T) {
	Version, GitCommit = "1.2.3", "abc123"
	t.Cleanup(func() { Version, GitCommit = "dev", "unknown" })

	res := run(t, "", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "gosass version: 1.2.3")
	assert.Contains(t, res.stdout, "abc123")
}

func TestCompileFileToStdout(t *testing.T) {
	inTempDir(t)
	writeFile(t, "main.scss", `.a { .b { width: 1px; } }`)

	res := run(t, "", "compile", "main.scss", "--style", "compressed")
	require.NoError(t, res.err)
	assert.Equal(t, ".a .b{width:1px}\n", res.stdout)
}

func TestCompileStdin(t *testing.T) {
	inTempDir(t)
	res := run(t, ".a { color: red; }", "compile", "--style", "expanded")
	require.NoError(t, res.err)
	assert.Equal(t, ".a {\n  color: red;\n}\n", res.stdout)
}

func TestCompileUsesConfigFile(t *testing.T) {
	inTempDir(t)
	writeFile(t, "gosass.yml", "style: compressed\n")
	writeFile(t, "main.scss", `.a { color: red; }`)

	res := run(t, "", "compile", "main.scss")
	require.NoError(t, res.err)
	assert.Equal(t, ".a{color:red}\n", res.stdout)

	res = run(t, "", "compile", "main.scss", "--style", "compact")
	require.NoError(t, res.err)
	assert.Equal(t, ".a { color: red; }\n", res.stdout)
}

func TestCompileRejectsInvalidConfig(t *testing.T) {
	inTempDir(t)
	writeFile(t, "gosass.yml", "style: pretty\n")
	writeFile(t, "main.scss", `.a { color: red; }`)

	res := run(t, "", "compile", "main.scss")
	assert.ErrorIs(t, res.err, errReported)
	assert.Contains(t, res.stderr, "CONFIGURATION ERROR")
}

func TestCompileToFileWithMappings(t *testing.T) {
	dir := inTempDir(t)
	writeFile(t, "main.scss", ".a {\n  width: 1px;\n}\n")

	res := run(t, "", "compile", "main.scss", "-o", "out/main.css", "--source-map", "-s", "compressed")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "✓ main.scss → out/main.css")

	css, err := os.ReadFile(filepath.Join(dir, "out", "main.css"))
	require.NoError(t, err)
	assert.Equal(t, ".a{width:1px}\n", string(css))

	data, err := os.ReadFile(filepath.Join(dir, "out", "main.css.map"))
	require.NoError(t, err)
	var records []mappingRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.NotEmpty(t, records)
	assert.Equal(t, "main.scss", records[0].Source)
	assert.Equal(t, 1, records[0].GeneratedLine)
}

func TestCompileDirectory(t *testing.T) {
	dir := inTempDir(t)
	writeFile(t, "scss/_vars.scss", "$w: 2px;")
	writeFile(t, "scss/main.scss", `@import "vars"; .a { width: $w; }`)
	writeFile(t, "scss/pages/home.scss", `.home { width: 1px; }`)

	res := run(t, "", "compile", "scss", "-o", "public", "--style", "compressed")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "SOURCE")
	assert.Contains(t, res.stderr, "Compiled 2 file(s)")

	css, err := os.ReadFile(filepath.Join(dir, "public", "main.css"))
	require.NoError(t, err)
	assert.Equal(t, ".a{width:2px}\n", string(css))
	assert.FileExists(t, filepath.Join(dir, "public", "pages", "home.css"))
	assert.NoFileExists(t, filepath.Join(dir, "public", "_vars.css"))
}

func TestCompileEmptyDirectory(t *testing.T) {
	inTempDir(t)
	require.NoError(t, os.Mkdir("scss", 0755))
	res := run(t, "", "compile", "scss")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "no entry stylesheets")
}

func TestCompileReportsErrors(t *testing.T) {
	inTempDir(t)
	writeFile(t, "main.scss", ".a {\n  color: $missing;\n}\n")

	res := run(t, "", "compile", "main.scss")
	assert.ErrorIs(t, res.err, errReported)
	assert.Contains(t, res.stderr, `Undefined variable: "$missing".`)
	assert.Contains(t, res.stderr, "main.scss:2:")
}

func TestCompileReportsErrorsAsJSON(t *testing.T) {
	inTempDir(t)
	writeFile(t, "main.scss", ".a {\n  color: $missing;\n}\n")

	res := run(t, "", "compile", "main.scss", "--json")
	assert.ErrorIs(t, res.err, errReported)

	var out struct {
		Status string `json:"status"`
		Errors []struct {
			Code     string `json:"code"`
			Kind     string `json:"kind"`
			Location struct {
				Line int `json:"line"`
			} `json:"location"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "error", out.Status)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "E200", out.Errors[0].Code)
	assert.Equal(t, "evaluation", out.Errors[0].Kind)
	assert.Equal(t, 2, out.Errors[0].Location.Line)
}

func TestCompileMissingInput(t *testing.T) {
	inTempDir(t)
	res := run(t, "", "compile", "nope.scss")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "input not found")
}

func TestCheck(t *testing.T) {
	inTempDir(t)
	writeFile(t, "main.scss", ".a { width: 1px; }\n.b { width: 2px; }\n")
	writeFile(t, "main.css", ".a {\n  width: 1px; }\n\n.b {\n  width: 2px; }\n")

	res := run(t, "", "check", "main.scss", "main.css")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "main.css is up to date")

	writeFile(t, "main.scss", ".a { width: 1px; }\n.b { width: 3px; }\n")
	res = run(t, "", "check", "main.scss", "main.css")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "out of date")
	assert.Contains(t, res.stdout, " .a {\n")
	assert.Contains(t, res.stdout, "-  width: 2px; }\n")
	assert.Contains(t, res.stdout, "+  width: 3px; }\n")
}

func TestCheckMissingCSS(t *testing.T) {
	inTempDir(t)
	writeFile(t, "main.scss", ".a { width: 1px; }")
	res := run(t, "", "check", "main.scss", "main.css")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "failed to read main.css")
}

func TestWriteDiff(t *testing.T) {
	var buf bytes.Buffer
	writeDiff(&buf, "a\nb\nc\n", "a\nx\nc\n")
	assert.Equal(t, " a\n-b\n+x\n c\n", buf.String())
}

func TestInit(t *testing.T) {
	dir := inTempDir(t)

	res := run(t, "", "init", "site", "--yes")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Created "+filepath.Join("site", "gosass.yml"))

	cfg, err := config.LoadFrom(filepath.Join(dir, "site"))
	require.NoError(t, err)
	assert.Equal(t, "nested", cfg.Style)
	assert.Equal(t, "scss", cfg.InputDir)
	assert.FileExists(t, filepath.Join(dir, "site", "scss", "main.scss"))

	res = run(t, "", "init", "site", "--yes")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--force")

	res = run(t, "", "init", "site", "--yes", "--force")
	require.NoError(t, res.err)
}

func TestInitReportsBadEnvironment(t *testing.T) {
	inTempDir(t)
	t.Setenv("GOSASS_PRECISION", "lots")

	res := run(t, "", "init", "--yes")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "CONFIGURATION ERROR")
	assert.NoFileExists(t, "gosass.yml")
}

func TestInitStarterCompiles(t *testing.T) {
	inTempDir(t)
	require.NoError(t, run(t, "", "init", "--yes").err)

	res := run(t, "", "compile", "scss", "-o", "css")
	require.NoError(t, res.err)
	css, err := os.ReadFile(filepath.Join("css", "main.css"))
	require.NoError(t, err)
	assert.Equal(t, "body {\n  color: #336699; }\n", string(css))
}

func TestValidateRedisURL(t *testing.T) {
	assert.NoError(t, validateRedisURL(""))
	assert.NoError(t, validateRedisURL("redis://localhost:6379/0"))
	assert.Error(t, validateRedisURL("http://localhost"))
}

func TestFunctions(t *testing.T) {
	res := run(t, "", "functions")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "BUILT-IN FUNCTIONS")
	assert.Contains(t, res.stdout, "map-get($map, $key)")

	res = run(t, "", "functions", "color")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "mix($color-1, $color-2, $weight: 50%)")
	assert.NotContains(t, res.stdout, "map-get")
}

func TestFunctionsJSON(t *testing.T) {
	res := run(t, "", "functions", "rgba", "--format", "json")
	require.NoError(t, res.err)

	var out struct {
		TotalCount int `json:"total_count"`
		Namespaces []struct {
			Namespace string `json:"namespace"`
		} `json:"namespaces"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, 2, out.TotalCount)
	require.Len(t, out.Namespaces, 1)
	assert.Equal(t, "Color", out.Namespaces[0].Namespace)
}

func TestFunctionsUnknown(t *testing.T) {
	res := run(t, "", "functions", "mapget")
	assert.ErrorIs(t, res.err, errReported)
	assert.Contains(t, res.stderr, "UNKNOWN FUNCTION: mapget")
	assert.Contains(t, res.stderr, "map-get")

	res = run(t, "", "functions", "--format", "xml")
	require.Error(t, res.err)
}

func TestWatchRejectsMissingDirectory(t *testing.T) {
	inTempDir(t)
	res := run(t, "", "watch", "nope")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "not a directory")
}

func TestOpenStore(t *testing.T) {
	store, closeStore, err := openStore(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, store)
	closeStore()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, closeStore, err = openStore(&config.Config{Cache: config.CacheConfig{RedisURL: "redis://" + mr.Addr() + "/0"}})
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &cache.RedisStore{}, store)
}

func TestCompletion(t *testing.T) {
	res := run(t, "", "completion", "bash")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "gosass")

	res = run(t, "", "completion", "tcsh")
	require.Error(t, res.err)
}
