package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/gosass/internal/compiler/cache"
	"github.com/conduit-lang/gosass/internal/compiler/output"
	"github.com/conduit-lang/gosass/pkg/sass"
)

func newBuilder(t *testing.T, store cache.Store) (*Builder, string, string) {
	t.Helper()
	in, out := t.TempDir(), t.TempDir()
	b, err := NewBuilder(BuilderConfig{
		InputDir:  in,
		OutputDir: out,
		Options:   sass.Options{Style: output.Compressed},
		Store:     store,
	})
	require.NoError(t, err)
	return b, in, out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBuilderBuild(t *testing.T) {
	b, in, out := newBuilder(t, nil)
	writeFile(t, in, "_vars.scss", "$c: red;")
	writeFile(t, in, "main.scss", `@import "vars"; .a { color: $c; }`)
	writeFile(t, in, "pages/home.scss", `.home { width: 1px; }`)

	res, err := b.Build(context.Background())
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, []string{
		filepath.Join(out, "main.css"),
		filepath.Join(out, "pages", "home.css"),
	}, res.Written)
	assert.Equal(t, ".a{color:red}\n", readFile(t, filepath.Join(out, "main.css")))
	assert.Equal(t, ".home{width:1px}\n", readFile(t, filepath.Join(out, "pages", "home.css")))

	res, err = b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Metrics.CacheHits)
}

func TestBuilderProgress(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "a.scss", `.a { x: y; }`)
	writeFile(t, in, "b.scss", `.b { x: $nope; }`)

	var mu sync.Mutex
	seen := map[string]bool{}
	b, err := NewBuilder(BuilderConfig{
		InputDir:  in,
		OutputDir: out,
		Progress: func(path string, err error) {
			mu.Lock()
			defer mu.Unlock()
			seen[filepath.Base(path)] = err == nil
		},
	})
	require.NoError(t, err)

	entries, err := b.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a.scss": true, "b.scss": false}, seen)
}

func TestBuilderRebuildAfterPartialChange(t *testing.T) {
	b, in, out := newBuilder(t, nil)
	vars := writeFile(t, in, "_vars.scss", "$c: red;")
	writeFile(t, in, "main.scss", `@import "vars"; .a { color: $c; }`)
	writeFile(t, in, "other.scss", `.o { width: 1px; }`)

	_, err := b.Build(context.Background())
	require.NoError(t, err)

	writeFile(t, in, "_vars.scss", "$c: blue;")
	res, err := b.Rebuild(context.Background(), []string{vars})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, []string{filepath.Join(out, "main.css")}, res.Written)
	assert.Equal(t, ".a{color:#00f}\n", readFile(t, filepath.Join(out, "main.css")))
}

func TestBuilderRebuildUnknownPartialBuildsEverything(t *testing.T) {
	b, in, out := newBuilder(t, nil)
	writeFile(t, in, "main.scss", `.a { width: 1px; }`)
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	// main starts importing a partial the builder has never seen.
	part := writeFile(t, in, "_new.scss", "$w: 2px;")
	main := writeFile(t, in, "main.scss", `@import "new"; .a { width: $w; }`)
	res, err := b.Rebuild(context.Background(), []string{part, main})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, []string{filepath.Join(out, "main.css")}, res.Written)
	assert.Equal(t, ".a{width:2px}\n", readFile(t, filepath.Join(out, "main.css")))
}

func TestBuilderRebuildRemovedEntry(t *testing.T) {
	b, in, out := newBuilder(t, nil)
	main := writeFile(t, in, "main.scss", `.a { width: 1px; }`)
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(main))
	res, err := b.Rebuild(context.Background(), []string{main})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "main.css")}, res.Removed)
	assert.Empty(t, res.Written)
	assert.NoFileExists(t, filepath.Join(out, "main.css"))
}

func TestBuilderReportsErrors(t *testing.T) {
	b, in, out := newBuilder(t, nil)
	bad := writeFile(t, in, "bad.scss", `.a { color: $missing; }`)
	writeFile(t, in, "good.scss", `.g { width: 1px; }`)

	res, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.False(t, res.OK())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, bad, res.Errors[0].Path)
	assert.Equal(t, []string{filepath.Join(out, "good.css")}, res.Written)
}

func TestBuilderSharedRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := cache.NewRedisStoreWithClient(client, cache.Config{Prefix: "gosass:"})

	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "main.scss", `.a { width: 1px; }`)
	cfg := BuilderConfig{InputDir: in, OutputDir: out, Options: sass.Options{Style: output.Compressed}, Store: store}

	first, err := NewBuilder(cfg)
	require.NoError(t, err)
	_, err = first.Build(context.Background())
	require.NoError(t, err)

	second, err := NewBuilder(cfg)
	require.NoError(t, err)
	res, err := second.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Metrics.CacheHits)
	assert.Equal(t, ".a{width:1px}\n", readFile(t, filepath.Join(out, "main.css")))
}

func TestFingerprintDependsOnOptions(t *testing.T) {
	a := Fingerprint(sass.Options{Style: output.Nested})
	b := Fingerprint(sass.Options{Style: output.Compressed})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Fingerprint(sass.Options{Style: output.Nested}))
}

func TestOutputPath(t *testing.T) {
	b, in, out := newBuilder(t, nil)
	assert.Equal(t, filepath.Join(out, "a", "b.css"), b.OutputPath(filepath.Join(in, "a", "b.scss")))
	assert.Equal(t, filepath.Join(out, "x.css"), b.OutputPath("/elsewhere/x.sass"))
}
