// Package watch rebuilds stylesheets when their sources change and serves
// the results with live reload.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before collected changes are handled.
const DefaultDebounce = 100 * time.Millisecond

// changeOps are the events that can alter a stylesheet.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// WatcherConfig describes what a FileWatcher watches.
type WatcherConfig struct {
	Root string
	// Patterns are matched against base names; empty matches everything.
	Patterns []string
	// Ignored are matched against every path segment below Root. Dot
	// segments are always ignored.
	Ignored  []string
	Debounce time.Duration
	Logger   *zap.Logger
}

// FileWatcher monitors a directory tree and reports batches of changed
// stylesheets.
type FileWatcher struct {
	cfg       WatcherConfig
	logger    *zap.Logger
	fsw       *fsnotify.Watcher
	debouncer *Debouncer

	stopOnce sync.Once
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewFileWatcher creates a watcher. onChange receives each settled batch of
// changed files; an error it returns is logged.
func NewFileWatcher(cfg WatcherConfig, onChange func([]string) error) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fw := &FileWatcher{
		cfg:       cfg,
		logger:    logger.Named("watch"),
		fsw:       fsw,
		debouncer: NewDebouncer(cfg.Debounce),
		quit:      make(chan struct{}),
	}
	fw.debouncer.SetCallback(func(files []string) {
		if err := onChange(files); err != nil {
			fw.logger.Warn("change handler failed", zap.Strings("files", files), zap.Error(err))
		}
	})
	return fw, nil
}

// Start watches Root and every directory below it, then reports changes in
// the background until Stop.
func (fw *FileWatcher) Start() error {
	if err := fw.addTree(fw.cfg.Root); err != nil {
		return fmt.Errorf("watch %s: %w", fw.cfg.Root, err)
	}
	fw.wg.Add(1)
	go fw.loop()
	return nil
}

// Stop ends watching. Pending changes are dropped. It is safe to call more
// than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.quit)
		err = fw.fsw.Close()
		fw.wg.Wait()
		fw.debouncer.Stop()
	})
	return err
}

func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case !d.IsDir():
			return nil
		case path != dir && fw.shouldIgnore(path):
			return filepath.SkipDir
		}
		fw.logger.Debug("watching directory", zap.String("dir", path))
		return fw.fsw.Add(path)
	})
}

func (fw *FileWatcher) loop() {
	defer fw.wg.Done()
	for {
		select {
		case <-fw.quit:
			return
		case err, ok := <-fw.fsw.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))
		case ev, ok := <-fw.fsw.Events:
			if !ok {
				return
			}
			fw.handle(ev)
		}
	}
}

func (fw *FileWatcher) handle(ev fsnotify.Event) {
	if ev.Op&changeOps == 0 || fw.shouldIgnore(ev.Name) {
		return
	}
	// New directories are watched too; their files arrive as separate events.
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := fw.addTree(ev.Name); err != nil {
				fw.logger.Warn("watch new directory", zap.String("dir", ev.Name), zap.Error(err))
			}
			return
		}
	}
	if fw.matchesPattern(ev.Name) {
		fw.logger.Debug("file changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
		fw.debouncer.Add(ev.Name)
	}
}

func (fw *FileWatcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(fw.cfg.Root, path)
	if err != nil {
		rel = path
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == "" || seg == "." {
			continue
		}
		if seg[0] == '.' || matchAny(fw.cfg.Ignored, seg) {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) matchesPattern(path string) bool {
	return len(fw.cfg.Patterns) == 0 || matchAny(fw.cfg.Patterns, filepath.Base(path))
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Debouncer collects changed files and hands them over once no new change
// has arrived for its duration.
type Debouncer struct {
	duration time.Duration

	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration, pending: map[string]struct{}{}}
}

// SetCallback sets the function receiving each batch, sorted.
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mu.Lock()
	d.callback = callback
	d.mu.Unlock()
}

// Add records a change and restarts the quiet period.
func (d *Debouncer) Add(file string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[file] = struct{}{}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.duration, d.flush)
		return
	}
	d.timer.Reset(d.duration)
}

// flush runs the callback without holding the lock.
func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(d.pending))
	for f := range d.pending {
		batch = append(batch, f)
	}
	d.pending = map[string]struct{}{}
	callback := d.callback
	d.mu.Unlock()

	sort.Strings(batch)
	if callback != nil {
		callback(batch)
	}
}

// Stop cancels a pending batch and ignores later changes.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
