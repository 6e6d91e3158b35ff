package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
)

const bom = "\ufeff"

// DefaultCacheSize is the number of files a FileCache keeps when no size is
// configured.
const DefaultCacheSize = 256

// FileCache keeps the text of recently read stylesheets. It is safe to share
// between concurrent compilations.
type FileCache struct {
	files *lru.Cache[string, string]
}

// NewFileCache creates a cache holding at most size files.
func NewFileCache(size int) (*FileCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	files, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &FileCache{files: files}, nil
}

// Invalidate drops path from the cache.
func (c *FileCache) Invalidate(path string) {
	c.files.Remove(filepath.Clean(path))
}

// Purge empties the cache.
func (c *FileCache) Purge() {
	c.files.Purge()
}

// Len returns the number of cached files.
func (c *FileCache) Len() int {
	return c.files.Len()
}

// Loader resolves and loads the stylesheets imported during one compilation
// and records every file it loaded. A Loader must not be shared between
// compilations; its FileCache can be.
type Loader struct {
	includePaths []string
	files        *FileCache
	logger       *zap.Logger

	mu       sync.Mutex
	includes []string
	seen     map[string]bool
}

// NewLoader creates a loader. files may be nil, in which case nothing is
// cached.
func NewLoader(includePaths []string, files *FileCache, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		includePaths: includePaths,
		files:        files,
		logger:       logger,
		seen:         map[string]bool{},
	}
}

// Resolve implements parser.Resolver. Relative names are looked up next to
// the importing file first.
func (l *Loader) Resolve(requested, from string) (string, bool) {
	dir := "."
	if from != "" && from != "stdin" {
		dir = filepath.Dir(from)
	}
	path, ok := Resolve(requested, dir, l.includePaths)
	l.logger.Debug("resolve import",
		zap.String("requested", requested),
		zap.String("from", from),
		zap.String("resolved", path),
		zap.Bool("found", ok))
	return path, ok
}

// Read returns the text of path with any byte order mark removed. Indented
// syntax files are converted to SCSS.
func (l *Loader) Read(path string) (string, error) {
	path = filepath.Clean(path)
	if l.files != nil {
		if text, ok := l.files.files.Get(path); ok {
			l.logger.Debug("file cache hit", zap.String("path", path))
			l.record(path)
			return text, nil
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text := strings.TrimPrefix(string(raw), bom)
	if strings.EqualFold(filepath.Ext(path), ".sass") {
		text = Indented2SCSS(text)
	}
	if l.files != nil {
		l.files.files.Add(path, text)
	}
	l.record(path)
	return text, nil
}

// Import implements expand.Importer: it reads and parses the resolved path.
func (l *Loader) Import(path string) (*ast.Block, error) {
	text, err := l.Read(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.EvaluationError, errors.ErrImportRead, ast.SourceLocation{Path: path}, nil)
	}
	return parser.Parse(text, path, l)
}

// Includes returns every file loaded so far, in load order.
func (l *Loader) Includes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.includes...)
}

func (l *Loader) record(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.seen[path] {
		l.seen[path] = true
		l.includes = append(l.includes, path)
	}
}
