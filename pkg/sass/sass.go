// Package sass compiles SCSS and indented-syntax stylesheets to CSS.
//
// A compilation runs the full pipeline: the entry source is parsed (resolving
// @import targets as it goes), built-in and host functions are registered in
// a fresh global environment, the tree is expanded into flat CSS rules,
// @extend is applied, and the result is serialized in the requested style.
//
//	res, err := sass.CompileFile(ctx, "styles/main.scss", sass.Options{
//		Style:        output.Expanded,
//		IncludePaths: []string{"vendor"},
//	})
package sass

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/eval"
	"github.com/conduit-lang/gosass/internal/compiler/expand"
	"github.com/conduit-lang/gosass/internal/compiler/extend"
	"github.com/conduit-lang/gosass/internal/compiler/host"
	"github.com/conduit-lang/gosass/internal/compiler/importer"
	"github.com/conduit-lang/gosass/internal/compiler/output"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
	"github.com/conduit-lang/gosass/internal/compiler/stdlib"
)

// Options configures a compilation. The zero value compiles to nested style
// with the default precision.
type Options struct {
	Style        output.Style
	Precision    int
	IncludePaths []string

	// Functions are host callbacks keyed by signature, e.g.
	// "double($n)". The signature "*" handles calls to unknown functions.
	Functions map[string]host.Callback
	// Executor runs host callbacks; nil runs them on the compiling goroutine.
	Executor *host.Executor

	SourceMap bool // record output mappings in Result.Mappings
	Minify    bool // pass the output through the CSS minifier

	// Files caches file contents across compilations.
	Files *importer.FileCache

	Logger      *zap.Logger
	Diagnostics io.Writer // @warn and @debug output; defaults to stderr
}

// Result is the outcome of a successful compilation.
type Result struct {
	ID       string
	CSS      string
	Mappings []output.Mapping
	Includes []string // every file read, in load order
	Warnings []string
}

// CompileFile compiles the stylesheet at path.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	return compile(ctx, "", path, true, opts)
}

// Compile compiles source. path is used for error positions and to resolve
// relative imports; an empty path compiles as "stdin".
func Compile(ctx context.Context, source, path string, opts Options) (*Result, error) {
	return compile(ctx, source, path, false, opts)
}

func compile(ctx context.Context, source, path string, fromFile bool, opts Options) (*Result, error) {
	if path == "" {
		path = "stdin"
	}
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("compilation", id), zap.String("path", path))
	start := time.Now()

	loader := importer.NewLoader(opts.IncludePaths, opts.Files, logger)
	if fromFile {
		text, err := loader.Read(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.EvaluationError, errors.ErrImportRead, ast.SourceLocation{Path: path}, nil)
		}
		source = text
	}

	phase := time.Now()
	root, err := parser.Parse(source, path, loader)
	if err != nil {
		return nil, enrich(err, path, source)
	}
	logger.Debug("parsed", zap.Duration("duration", time.Since(phase)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ectx := eval.NewContext()
	if opts.Precision > 0 {
		ectx.Precision = opts.Precision
	}
	ectx.Compressed = opts.Style == output.Compressed
	ectx.Logger = logger
	if opts.Diagnostics != nil {
		ectx.Diagnostics = opts.Diagnostics
	}

	global := env.New()
	if err := stdlib.Register(global, ectx); err != nil {
		return nil, fmt.Errorf("register built-in functions: %w", err)
	}
	if err := host.Register(ctx, global, host.Functions(opts.Functions), opts.Executor); err != nil {
		return nil, fmt.Errorf("register host functions: %w", err)
	}

	phase = time.Now()
	x := expand.New(ectx, global, nil).WithImporter(loader)
	tree, err := x.Expand(root)
	if err != nil {
		return nil, enrich(err, path, source)
	}
	if err := extend.Apply(tree, x.Extensions()); err != nil {
		return nil, enrich(err, path, source)
	}
	logger.Debug("expanded",
		zap.Duration("duration", time.Since(phase)),
		zap.Int("extensions", x.Extensions().Len()))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *output.Recorder
	emitOpts := output.Options{Style: opts.Style, Precision: ectx.Precision}
	if opts.SourceMap {
		rec = output.NewRecorder()
		emitOpts.SourceMap = rec
	}
	css := output.Emit(tree, emitOpts)
	if opts.Minify {
		if css, err = output.Minify(css); err != nil {
			return nil, err
		}
	}

	res := &Result{
		ID:       id,
		CSS:      css,
		Includes: loader.Includes(),
		Warnings: ectx.Warnings,
	}
	if rec != nil {
		res.Mappings = rec.Mappings()
	}
	logger.Debug("compiled",
		zap.Duration("duration", time.Since(start)),
		zap.Int("bytes", len(css)),
		zap.Int("includes", len(res.Includes)))
	return res, nil
}

// enrich attaches the source lines around a compiler error.
func enrich(err error, path, source string) error {
	var ce *errors.CompilerError
	if !stderrors.As(err, &ce) {
		return err
	}
	if ce.Location.File == path || ce.Location.File == "" {
		errors.EnrichError(ce, source)
	} else {
		errors.EnrichErrorFromFile(ce)
	}
	return err
}
