package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// fakeCompiler "compiles" a file by upper-casing it and treats every line
// `import NAME` as reading the file NAME next to it.
type fakeCompiler struct {
	calls atomic.Int32
}

func (f *fakeCompiler) compile(_ context.Context, path string) (string, []string, error) {
	f.calls.Add(1)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	includes := []string{path}
	var css strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		if name, ok := strings.CutPrefix(line, "import "); ok {
			includes = append(includes, filepath.Join(filepath.Dir(path), name))
			continue
		}
		if strings.HasPrefix(line, "error") {
			return "", includes, fmt.Errorf("%s: bad input", path)
		}
		css.WriteString(strings.ToUpper(line))
	}
	return css.String(), includes, nil
}

func TestCoordinatorCompileFiles(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "_vars.scss", "vars")
	main := createTestFile(t, dir, "main.scss", "import _vars.scss\nmain")
	printFile := createTestFile(t, dir, "print.scss", "print")

	fc := &fakeCompiler{}
	c := NewCoordinator(fc.compile, NewMemoryStore(16, Config{}), WithConcurrency(2))

	results, metrics, err := c.CompileFiles(context.Background(), []string{main, printFile})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "MAIN", results[0].CSS)
	assert.Equal(t, "PRINT", results[1].CSS)
	assert.False(t, results[0].Cached)
	assert.Equal(t, 2, metrics.CacheMisses)
	assert.Equal(t, 2, metrics.FilesCompiled)
	assert.Equal(t, 0.0, metrics.CacheHitRate())

	results, metrics, err = c.CompileFiles(context.Background(), []string{main, printFile})
	require.NoError(t, err)
	assert.True(t, results[0].Cached)
	assert.True(t, results[1].Cached)
	assert.Equal(t, "MAIN", results[0].CSS)
	assert.Equal(t, 2, metrics.CacheHits)
	assert.Equal(t, 100.0, metrics.CacheHitRate())
	assert.Equal(t, int32(2), fc.calls.Load())
}

func TestCoordinatorReportsProgress(t *testing.T) {
	dir := t.TempDir()
	a := createTestFile(t, dir, "a.scss", "a")
	b := createTestFile(t, dir, "b.scss", "error")

	var done atomic.Int32
	fc := &fakeCompiler{}
	c := NewCoordinator(fc.compile, nil, WithProgress(func(r *CompilationResult) { done.Add(1) }))
	_, _, err := c.CompileFiles(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, int32(2), done.Load())
}

func TestCoordinatorRecompilesWhenAnImportChanges(t *testing.T) {
	dir := t.TempDir()
	vars := createTestFile(t, dir, "_vars.scss", "v1")
	main := createTestFile(t, dir, "main.scss", "import _vars.scss\nmain")

	fc := &fakeCompiler{}
	c := NewCoordinator(fc.compile, NewMemoryStore(16, Config{}))
	_, _, err := c.CompileFiles(context.Background(), []string{main})
	require.NoError(t, err)

	createTestFile(t, dir, "_vars.scss", "v2")
	results, _, err := c.CompileFiles(context.Background(), []string{main})
	require.NoError(t, err)
	assert.False(t, results[0].Cached)
	assert.Equal(t, int32(2), fc.calls.Load())

	assert.Equal(t, []string{filepath.Clean(main)}, c.Dependencies().GetDependents(vars))
}

func TestCoordinatorReportsFailures(t *testing.T) {
	dir := t.TempDir()
	bad := createTestFile(t, dir, "bad.scss", "error")
	good := createTestFile(t, dir, "good.scss", "good")

	c := NewCoordinator((&fakeCompiler{}).compile, NewMemoryStore(16, Config{}))
	results, metrics, err := c.CompileFiles(context.Background(), []string{bad, good})
	require.NoError(t, err)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, metrics.Failures)
	assert.Equal(t, 1, metrics.FilesCompiled)
}

func TestCoordinatorWithoutStore(t *testing.T) {
	dir := t.TempDir()
	main := createTestFile(t, dir, "main.scss", "main")

	fc := &fakeCompiler{}
	c := NewCoordinator(fc.compile, nil)
	for i := 0; i < 2; i++ {
		results, _, err := c.CompileFiles(context.Background(), []string{main})
		require.NoError(t, err)
		assert.False(t, results[0].Cached)
	}
	assert.Equal(t, int32(2), fc.calls.Load())
}

func TestCoordinatorCancelledContext(t *testing.T) {
	dir := t.TempDir()
	main := createTestFile(t, dir, "main.scss", "main")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewCoordinator((&fakeCompiler{}).compile, nil)
	results, _, err := c.CompileFiles(ctx, []string{main})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestCoordinatorWatchModeCompile(t *testing.T) {
	dir := t.TempDir()
	vars := createTestFile(t, dir, "_vars.scss", "v1")
	main := createTestFile(t, dir, "main.scss", "import _vars.scss\nmain")
	other := createTestFile(t, dir, "other.scss", "other")

	fc := &fakeCompiler{}
	c := NewCoordinator(fc.compile, NewMemoryStore(16, Config{}))
	_, _, err := c.CompileFiles(context.Background(), []string{main, other})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Clean(main)}, c.Affected([]string{vars}))
	assert.Equal(t, []string{filepath.Clean(other)}, c.Affected([]string{other}))

	results, metrics, err := c.WatchModeCompile(context.Background(), []string{vars})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Clean(main), results[0].Path)
	assert.False(t, results[0].Cached)
	assert.Equal(t, 1, metrics.TotalFiles)
	assert.Equal(t, int32(3), fc.calls.Load())
}

func TestCoordinatorInvalidateAndClear(t *testing.T) {
	dir := t.TempDir()
	vars := createTestFile(t, dir, "_vars.scss", "v")
	main := createTestFile(t, dir, "main.scss", "import _vars.scss\nmain")

	store := NewMemoryStore(16, Config{})
	c := NewCoordinator((&fakeCompiler{}).compile, store)
	_, _, err := c.CompileFiles(context.Background(), []string{main})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	invalidated := c.InvalidateFile(context.Background(), vars)
	assert.Equal(t, []string{filepath.Clean(vars), filepath.Clean(main)}, invalidated)
	assert.Equal(t, 0, store.Len())

	_, _, err = c.CompileFiles(context.Background(), []string{main})
	require.NoError(t, err)
	require.NoError(t, c.Clear(context.Background()))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, c.Dependencies().Size())
	assert.Equal(t, 0, c.GetMetrics().TotalFiles)
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "main.scss", "")
	createTestFile(t, dir, "_partial.scss", "")
	createTestFile(t, dir, "sub/theme.sass", "")
	createTestFile(t, dir, "sub/plain.css", "")
	createTestFile(t, dir, ".hidden/skip.scss", "")

	files, err := ScanDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "main.scss"),
		filepath.Join(dir, "sub", "theme.sass"),
	}, files)

	_, err = ScanDirectory(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
