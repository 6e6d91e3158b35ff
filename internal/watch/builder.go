package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/gosass/internal/compiler/cache"
	"github.com/conduit-lang/gosass/internal/compiler/importer"
	"github.com/conduit-lang/gosass/pkg/sass"
)

// BuilderConfig configures a Builder
type BuilderConfig struct {
	InputDir    string
	OutputDir   string
	Options     sass.Options
	Store       cache.Store // nil keeps compiled CSS in memory
	CacheSize   int
	Concurrency int
	Logger      *zap.Logger
	Progress    func(path string, err error) // called as each entry finishes
}

// FileError is a failed entry stylesheet
type FileError struct {
	Path string
	Err  error
}

// BuildResult holds the result of a build
type BuildResult struct {
	Written  []string // output files, in entry order
	Removed  []string // outputs of deleted entries
	Errors   []FileError
	Metrics  *cache.CompilationMetrics
	Duration time.Duration
}

// OK reports whether every entry compiled
func (r *BuildResult) OK() bool {
	return len(r.Errors) == 0
}

// Builder compiles every entry stylesheet below InputDir into OutputDir and
// recompiles only the entries a change affects.
type Builder struct {
	inputDir  string
	outputDir string
	opts      sass.Options
	files     *importer.FileCache
	coord     *cache.Coordinator
	logger    *zap.Logger
}

// NewBuilder creates a builder
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	files, err := importer.NewFileCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := cfg.Store
	if store == nil {
		store = cache.NewMemoryStore(cfg.CacheSize, cache.Config{})
	}

	b := &Builder{
		inputDir:  filepath.Clean(cfg.InputDir),
		outputDir: filepath.Clean(cfg.OutputDir),
		opts:      cfg.Options,
		files:     files,
		logger:    logger,
	}
	b.opts.Files = files
	if b.opts.Logger == nil {
		b.opts.Logger = logger
	}
	opts := []cache.Option{
		cache.WithLogger(logger),
		cache.WithConcurrency(cfg.Concurrency),
		cache.WithFingerprint(Fingerprint(cfg.Options)),
	}
	if cfg.Progress != nil {
		opts = append(opts, cache.WithProgress(func(r *cache.CompilationResult) { cfg.Progress(r.Path, r.Err) }))
	}
	b.coord = cache.NewCoordinator(b.compile, store, opts...)
	return b, nil
}

// Fingerprint summarizes the options that change compiled output.
func Fingerprint(opts sass.Options) string {
	return fmt.Sprintf("style=%s precision=%d minify=%t include=%s",
		opts.Style, opts.Precision, opts.Minify, strings.Join(opts.IncludePaths, string(os.PathListSeparator)))
}

func (b *Builder) compile(ctx context.Context, path string) (string, []string, error) {
	res, err := sass.CompileFile(ctx, path, b.opts)
	if err != nil {
		return "", nil, err
	}
	return res.CSS, res.Includes, nil
}

// OutputPath returns the CSS file an entry compiles to.
func (b *Builder) OutputPath(entry string) string {
	rel, err := filepath.Rel(b.inputDir, entry)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(entry)
	}
	return filepath.Join(b.outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".css")
}

// OutputDir returns the directory compiled CSS is written to
func (b *Builder) OutputDir() string {
	return b.outputDir
}

// Logger returns the logger builds report to.
func (b *Builder) Logger() *zap.Logger {
	return b.logger
}

// Entries lists the entry stylesheets below the input directory
func (b *Builder) Entries() ([]string, error) {
	entries, err := cache.ScanDirectory(b.inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", b.inputDir, err)
	}
	return entries, nil
}

// Build compiles every entry stylesheet
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	entries, err := b.Entries()
	if err != nil {
		return nil, err
	}
	return b.run(ctx, entries, nil)
}

// Rebuild recompiles what changed affects. A changed partial that no
// compiled entry is known to import triggers a full build.
func (b *Builder) Rebuild(ctx context.Context, changed []string) (*BuildResult, error) {
	var removed []string
	var relevant []string
	for _, path := range changed {
		b.files.Invalidate(path)
	}
	for _, path := range changed {
		path = filepath.Clean(path)
		if !cache.IsStylesheet(path) {
			continue
		}
		relevant = append(relevant, path)
		if cache.IsPartial(path) {
			if len(b.coord.Dependencies().GetTransitiveDependents(path)) == 0 {
				b.logger.Debug("unknown partial changed, rebuilding everything", zap.String("path", path))
				b.files.Purge()
				return b.Build(ctx)
			}
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			out := b.OutputPath(path)
			if err := os.Remove(out); err == nil {
				removed = append(removed, out)
			}
		}
	}

	var entries []string
	for _, path := range relevant {
		b.coord.InvalidateFile(ctx, path)
	}
	for _, entry := range b.coord.Affected(relevant) {
		if _, err := os.Stat(entry); err != nil {
			b.coord.Dependencies().RemoveFile(entry)
			continue
		}
		entries = append(entries, entry)
	}
	return b.run(ctx, entries, removed)
}

func (b *Builder) run(ctx context.Context, entries, removed []string) (*BuildResult, error) {
	start := time.Now()
	results, metrics, err := b.coord.CompileFiles(ctx, entries)
	if err != nil {
		return nil, err
	}

	out := &BuildResult{Removed: removed, Metrics: metrics}
	for _, r := range results {
		if r.Err != nil {
			out.Errors = append(out.Errors, FileError{Path: r.Path, Err: r.Err})
			continue
		}
		dest := b.OutputPath(r.Path)
		if err := writeCSS(dest, r.CSS); err != nil {
			out.Errors = append(out.Errors, FileError{Path: r.Path, Err: err})
			continue
		}
		out.Written = append(out.Written, dest)
	}
	out.Duration = time.Since(start)
	b.logger.Debug("build finished",
		zap.Int("entries", len(entries)),
		zap.Int("written", len(out.Written)),
		zap.Int("errors", len(out.Errors)),
		zap.Int("cache_hits", metrics.CacheHits),
		zap.Duration("duration", out.Duration))
	return out, nil
}

func writeCSS(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
