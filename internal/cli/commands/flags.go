package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/gosass/internal/cli/config"
	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/output"
	"github.com/conduit-lang/gosass/pkg/sass"
)

// compileFlags are the output options shared by compile, watch and check.
// Flags the user set win over gosass.yml.
type compileFlags struct {
	style        string
	precision    int
	includePaths []string
	sourceMap    bool
	minify       bool
}

func (f *compileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.style, "style", "s", "", fmt.Sprintf("Output style %v", output.StyleNames()))
	cmd.Flags().IntVar(&f.precision, "precision", 0, "Decimal places kept in numbers")
	cmd.Flags().StringSliceVarP(&f.includePaths, "include-path", "I", nil, "Additional import lookup directory (repeatable)")
	cmd.Flags().BoolVar(&f.sourceMap, "source-map", false, "Write recorded source mappings next to the output")
	cmd.Flags().BoolVar(&f.minify, "minify", false, "Minify the generated CSS")
}

// options merges the flags the user set into cfg and returns compiler
// options.
func (f *compileFlags) options(cmd *cobra.Command, cfg *config.Config) (sass.Options, error) {
	flags := cmd.Flags()
	if flags.Changed("style") {
		cfg.Style = f.style
	}
	if flags.Changed("precision") {
		cfg.Precision = f.precision
	}
	if flags.Changed("include-path") {
		cfg.IncludePaths = append(append([]string(nil), f.includePaths...), cfg.IncludePaths...)
	}
	if flags.Changed("source-map") {
		cfg.SourceMap = f.sourceMap
	}
	if flags.Changed("minify") {
		cfg.Minify = f.minify
	}

	style, err := output.ParseStyle(cfg.Style)
	if err != nil {
		return sass.Options{}, err
	}
	if cfg.Precision < 0 {
		return sass.Options{}, fmt.Errorf("precision must not be negative, got: %d", cfg.Precision)
	}
	return sass.Options{
		Style:        style,
		Precision:    cfg.Precision,
		IncludePaths: cfg.IncludePaths,
		SourceMap:    cfg.SourceMap,
		Minify:       cfg.Minify,
		Logger:       newLogger(),
		Diagnostics:  cmd.ErrOrStderr(),
	}, nil
}

// mappingRecord is one recorded mapping as written by --source-map.
type mappingRecord struct {
	Source          string `json:"source"`
	OriginalLine    int    `json:"original_line"`
	OriginalColumn  int    `json:"original_column"`
	GeneratedLine   int    `json:"generated_line"`
	GeneratedColumn int    `json:"generated_column"`
	GeneratedEnd    [2]int `json:"generated_end"`
}

// writeMappings writes the recorded mappings of res as JSON, 1-based.
func writeMappings(w io.Writer, res *sass.Result) error {
	records := make([]mappingRecord, 0, len(res.Mappings))
	for _, m := range res.Mappings {
		records = append(records, mappingRecord{
			Source:          m.Original.Path,
			OriginalLine:    m.Original.Line + 1,
			OriginalColumn:  m.Original.Column + 1,
			GeneratedLine:   m.Start.Line + 1,
			GeneratedColumn: m.Start.Column + 1,
			GeneratedEnd:    [2]int{m.End.Line + 1, m.End.Column + 1},
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// compilerError converts any compile failure of path into a CompilerError.
func compilerError(path string, err error) *errors.CompilerError {
	return errors.Wrap(err, errors.EvaluationError, errors.ErrImportRead, ast.SourceLocation{Path: path}, nil)
}
