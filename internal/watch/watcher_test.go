package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDebouncerBatchesChanges(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	batches := make(chan []string, 4)
	d.SetCallback(func(files []string) { batches <- files })

	d.Add("b.scss")
	d.Add("a.scss")
	d.Add("b.scss")

	select {
	case files := <-batches:
		assert.Equal(t, []string{"a.scss", "b.scss"}, files)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never fired")
	}

	select {
	case files := <-batches:
		t.Fatalf("unexpected second batch %v", files)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var mu sync.Mutex
	called := false
	d.SetCallback(func([]string) {
		mu.Lock()
		called = true
		mu.Unlock()
	})

	d.Add("a.scss")
	d.Stop()
	d.Add("b.scss")
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called)
}

func TestFileWatcherFilters(t *testing.T) {
	root := t.TempDir()
	fw, err := NewFileWatcher(WatcherConfig{
		Root:     root,
		Patterns: []string{"*.scss", "*.sass"},
		Ignored:  []string{"node_modules", "*.swp"},
	}, func([]string) error { return nil })
	require.NoError(t, err)
	defer fw.Stop()

	assert.True(t, fw.matchesPattern(filepath.Join(root, "a.scss")))
	assert.True(t, fw.matchesPattern(filepath.Join(root, "sub", "_b.sass")))
	assert.False(t, fw.matchesPattern(filepath.Join(root, "a.css")))

	assert.True(t, fw.shouldIgnore(filepath.Join(root, "node_modules", "x", "a.scss")))
	assert.True(t, fw.shouldIgnore(filepath.Join(root, ".git", "HEAD")))
	assert.True(t, fw.shouldIgnore(filepath.Join(root, "a.scss.swp")))
	assert.False(t, fw.shouldIgnore(filepath.Join(root, "sub", "a.scss")))
}

func TestFileWatcherReportsChanges(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "sub/main.scss", ".a { x: y; }")

	changes := make(chan []string, 8)
	fw, err := NewFileWatcher(WatcherConfig{Root: root, Patterns: []string{"*.scss"}, Debounce: 20 * time.Millisecond}, func(files []string) error {
		changes <- files
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	writeFile(t, root, "sub/main.scss", ".a { x: z; }")
	writeFile(t, root, "notes.txt", "ignored")

	select {
	case files := <-changes:
		assert.Equal(t, []string{file}, files)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestFileWatcherStopIsIdempotent(t *testing.T) {
	fw, err := NewFileWatcher(WatcherConfig{Root: t.TempDir()}, func([]string) error { return nil })
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	assert.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop())
}
