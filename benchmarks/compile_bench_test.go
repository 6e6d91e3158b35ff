package benchmarks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/cache"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/eval"
	"github.com/conduit-lang/gosass/internal/compiler/expand"
	"github.com/conduit-lang/gosass/internal/compiler/extend"
	"github.com/conduit-lang/gosass/internal/compiler/output"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
	"github.com/conduit-lang/gosass/internal/compiler/stdlib"
	"github.com/conduit-lang/gosass/pkg/sass"
)

func expanded(b *testing.B, source string) *ast.Block {
	b.Helper()
	root, err := parser.Parse(source, "bench.scss", nil)
	if err != nil {
		b.Fatal(err)
	}
	ctx := eval.NewContext()
	global := env.New()
	if err := stdlib.Register(global, ctx); err != nil {
		b.Fatal(err)
	}
	x := expand.New(ctx, global, nil)
	out, err := x.Expand(root)
	if err != nil {
		b.Fatal(err)
	}
	if err := extend.Apply(out, x.Extensions()); err != nil {
		b.Fatal(err)
	}
	return out
}

// BenchmarkSelectorParser benchmarks parsing evaluated selector text
func BenchmarkSelectorParser(b *testing.B) {
	selectors := []string{
		".nav > li:hover, .nav > li.active",
		"a[href^=\"http\"]:not(.internal)::after",
		"#main .card + .card ~ p:nth-child(2n + 1)",
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := parser.ParseSelector(selectors[i%len(selectors)], ast.SourceLocation{}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParser_100Components benchmarks parsing a generated stylesheet
func BenchmarkParser_100Components(b *testing.B) {
	source := GenerateStylesheet(100)
	b.Logf("Benchmarking parser with %d LOC", CountLOC(source))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := parser.Parse(source, "bench.scss", nil); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEmit compares the output styles on one expanded tree
func BenchmarkEmit(b *testing.B) {
	root := expanded(b, GenerateStylesheet(100))
	for _, name := range output.StyleNames() {
		style, _ := output.ParseStyle(name)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = output.Emit(root, output.Options{Style: style})
			}
		})
	}
}

// BenchmarkCompile benchmarks the whole pipeline at several sizes
func BenchmarkCompile(b *testing.B) {
	for _, n := range []int{10, 100, 500} {
		source := GenerateStylesheet(n)
		b.Run(fmt.Sprintf("%d_components", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := sass.Compile(context.Background(), source, "bench.scss", sass.Options{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkCoordinator_50Files benchmarks compiling many entries concurrently,
// cold and from the compiled-CSS cache.
func BenchmarkCoordinator_50Files(b *testing.B) {
	dir := b.TempDir()
	var paths []string
	for i := 0; i < 50; i++ {
		path := filepath.Join(dir, fmt.Sprintf("entry%d.scss", i))
		if err := os.WriteFile(path, []byte(GenerateStylesheet(10)), 0644); err != nil {
			b.Fatal(err)
		}
		paths = append(paths, path)
	}

	compile := func(ctx context.Context, path string) (string, []string, error) {
		res, err := sass.CompileFile(ctx, path, sass.Options{Style: output.Compressed})
		if err != nil {
			return "", nil, err
		}
		return res.CSS, res.Includes, nil
	}

	b.Run("cold", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			c := cache.NewCoordinator(compile, nil)
			if _, _, err := c.CompileFiles(context.Background(), paths); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("cached", func(b *testing.B) {
		c := cache.NewCoordinator(compile, cache.NewMemoryStore(len(paths), cache.Config{}))
		if _, _, err := c.CompileFiles(context.Background(), paths); err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, metrics, err := c.CompileFiles(context.Background(), paths)
			if err != nil {
				b.Fatal(err)
			}
			if metrics.CacheHits != len(paths) {
				b.Fatalf("expected %d cache hits, got %d", len(paths), metrics.CacheHits)
			}
		}
	})
}
