package cache

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CompileFunc compiles one entry stylesheet and reports its CSS and every
// file the compilation read.
type CompileFunc func(ctx context.Context, path string) (css string, includes []string, err error)

// CompilationMetrics tracks performance metrics for compilation
type CompilationMetrics struct {
	TotalFiles    int
	CacheHits     int
	CacheMisses   int
	FilesCompiled int
	Failures      int
	TotalDuration time.Duration
	StartTime     time.Time
	EndTime       time.Time
}

// CacheHitRate returns the cache hit rate as a percentage
func (cm *CompilationMetrics) CacheHitRate() float64 {
	if cm.TotalFiles == 0 {
		return 0.0
	}
	return float64(cm.CacheHits) / float64(cm.TotalFiles) * 100.0
}

// CompilationResult represents the result of compiling a single file
type CompilationResult struct {
	Path     string
	CSS      string
	Includes []string
	Digest   string
	Err      error
	Cached   bool
}

// Coordinator compiles entry stylesheets concurrently, reusing stored CSS
// while none of the files an entry read have changed.
type Coordinator struct {
	compile     CompileFunc
	store       Store
	depGraph    *DependencyGraph
	hasher      *FileHasher
	fingerprint string
	limit       int
	logger      *zap.Logger
	progress    func(*CompilationResult)

	mu      sync.Mutex
	metrics *CompilationMetrics
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithConcurrency bounds the number of compilations running at once
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithFingerprint separates entries compiled with different options.
func WithFingerprint(fingerprint string) Option {
	return func(c *Coordinator) { c.fingerprint = fingerprint }
}

// WithProgress calls fn after each file of a batch finishes. fn may be
// called concurrently.
func WithProgress(fn func(*CompilationResult)) Option {
	return func(c *Coordinator) { c.progress = fn }
}

// NewCoordinator creates a coordinator. A nil store disables caching.
func NewCoordinator(compile CompileFunc, store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		compile:  compile,
		store:    store,
		depGraph: NewDependencyGraph(),
		hasher:   NewFileHasher(),
		limit:    runtime.GOMAXPROCS(0),
		logger:   zap.NewNop(),
		metrics:  &CompilationMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileFiles compiles paths, at most limit at a time. Per-file failures are
// reported in the results; the error is only set when ctx ends.
func (c *Coordinator) CompileFiles(ctx context.Context, paths []string) ([]*CompilationResult, *CompilationMetrics, error) {
	c.mu.Lock()
	c.metrics = &CompilationMetrics{
		TotalFiles: len(paths),
		StartTime:  time.Now(),
	}
	c.mu.Unlock()

	results := make([]*CompilationResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = &CompilationResult{Path: path, Err: err}
				return err
			}
			results[i] = c.compileFile(gctx, path)
			if c.progress != nil {
				c.progress(results[i])
			}
			return nil
		})
	}
	err := g.Wait()

	c.mu.Lock()
	c.metrics.EndTime = time.Now()
	c.metrics.TotalDuration = c.metrics.EndTime.Sub(c.metrics.StartTime)
	metrics := *c.metrics
	c.mu.Unlock()

	return results, &metrics, err
}

func (c *Coordinator) compileFile(ctx context.Context, path string) *CompilationResult {
	path = filepath.Clean(path)
	key := c.hasher.Key(path, c.fingerprint)

	if c.store != nil {
		if entry, err := c.store.Get(ctx, key); err == nil {
			digest, derr := c.hasher.Digest(withEntry(path, entry.Includes))
			if derr == nil && digest == entry.Digest {
				c.depGraph.Record(path, entry.Includes)
				c.count(func(m *CompilationMetrics) { m.CacheHits++ })
				c.logger.Debug("cache hit", zap.String("path", path))
				return &CompilationResult{
					Path:     path,
					CSS:      entry.CSS,
					Includes: entry.Includes,
					Digest:   digest,
					Cached:   true,
				}
			}
		} else if !IsCacheMiss(err) {
			c.logger.Warn("cache read failed", zap.String("path", path), zap.Error(err))
		}
	}

	c.count(func(m *CompilationMetrics) { m.CacheMisses++ })
	css, includes, err := c.compile(ctx, path)
	if err != nil {
		c.count(func(m *CompilationMetrics) { m.Failures++ })
		return &CompilationResult{Path: path, Includes: includes, Err: err}
	}
	c.count(func(m *CompilationMetrics) { m.FilesCompiled++ })
	c.depGraph.Record(path, includes)

	digest, err := c.hasher.Digest(withEntry(path, includes))
	if err != nil {
		return &CompilationResult{Path: path, Err: fmt.Errorf("failed to hash inputs: %w", err)}
	}

	if c.store != nil {
		entry := &Entry{
			Path:       path,
			CSS:        css,
			Includes:   includes,
			Digest:     digest,
			CompiledAt: time.Now(),
		}
		if err := c.store.Set(ctx, key, entry); err != nil {
			c.logger.Warn("cache write failed", zap.String("path", path), zap.Error(err))
		}
	}

	return &CompilationResult{
		Path:     path,
		CSS:      css,
		Includes: includes,
		Digest:   digest,
	}
}

func (c *Coordinator) count(update func(*CompilationMetrics)) {
	c.mu.Lock()
	update(c.metrics)
	c.mu.Unlock()
}

// withEntry returns path followed by includes, without repeating path.
func withEntry(path string, includes []string) []string {
	out := []string{path}
	for _, inc := range includes {
		if filepath.Clean(inc) != path {
			out = append(out, inc)
		}
	}
	return out
}

// Affected returns the entry files that must be recompiled after changed
// were modified: every file importing them, plus the changed files that are
// not partials.
func (c *Coordinator) Affected(changed []string) []string {
	set := make(map[string]bool)
	for _, path := range changed {
		path = filepath.Clean(path)
		if !IsPartial(path) {
			set[path] = true
		}
		for _, dep := range c.depGraph.GetTransitiveDependents(path) {
			set[dep] = true
		}
	}

	affected := make([]string, 0, len(set))
	for path := range set {
		affected = append(affected, path)
	}
	sort.Strings(affected)
	return affected
}

// InvalidateFile drops the stored CSS of path and of every file importing
// it, returning the invalidated paths.
func (c *Coordinator) InvalidateFile(ctx context.Context, path string) []string {
	path = filepath.Clean(path)
	invalidated := append([]string{path}, c.depGraph.GetTransitiveDependents(path)...)
	if c.store != nil {
		for _, p := range invalidated {
			if err := c.store.Delete(ctx, c.hasher.Key(p, c.fingerprint)); err != nil {
				c.logger.Warn("cache delete failed", zap.String("path", p), zap.Error(err))
			}
		}
	}
	return invalidated
}

// WatchModeCompile recompiles the entries affected by changedFiles.
func (c *Coordinator) WatchModeCompile(ctx context.Context, changedFiles []string) ([]*CompilationResult, *CompilationMetrics, error) {
	for _, path := range changedFiles {
		c.InvalidateFile(ctx, path)
	}
	return c.CompileFiles(ctx, c.Affected(changedFiles))
}

// Dependencies returns the dependency graph built from compilations so far
func (c *Coordinator) Dependencies() *DependencyGraph {
	return c.depGraph
}

// GetMetrics returns the metrics of the last CompileFiles call
func (c *Coordinator) GetMetrics() *CompilationMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	metrics := *c.metrics
	return &metrics
}

// Clear clears the store and dependency graph
func (c *Coordinator) Clear(ctx context.Context) error {
	c.depGraph.Clear()
	c.mu.Lock()
	c.metrics = &CompilationMetrics{}
	c.mu.Unlock()
	if c.store != nil {
		return c.store.Clear(ctx)
	}
	return nil
}

// IsPartial reports whether path names a partial, which is only compiled
// through imports.
func IsPartial(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "_")
}

// IsStylesheet reports whether path has a stylesheet extension.
func IsStylesheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".scss", ".sass":
		return true
	}
	return false
}

// ScanDirectory returns the entry stylesheets below dir, sorted.
func ScanDirectory(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsStylesheet(path) && !IsPartial(path) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
