package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/gosass/internal/cli/config"
	"github.com/conduit-lang/gosass/internal/cli/ui"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/watch"
	"github.com/conduit-lang/gosass/pkg/sass"
)

type compileOptions struct {
	compileFlags
	output string
	json   bool
}

// NewCompileCommand creates the compile command
func NewCompileCommand() *cobra.Command {
	opts := &compileOptions{}
	cmd := &cobra.Command{
		Use:   "compile [input]",
		Short: "Compile Sass to CSS",
		Long: `Compile a stylesheet, or every entry stylesheet in a directory, to CSS.

A file input is written to --output, or to stdout when no output is given.
Without an input (or with "-") the source is read from stdin.

A directory input compiles every .scss and .sass file whose name does not
start with an underscore into --output (default: output_dir from gosass.yml),
keeping the directory layout.`,
		Example: `  # Compile one file to stdout
  gosass compile scss/main.scss

  # Compile with compressed output to a file
  gosass compile scss/main.scss -o css/main.css --style compressed

  # Compile a directory
  gosass compile scss -o css

  # Compile stdin and report errors as JSON
  cat main.scss | gosass compile --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file or directory")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output errors in JSON format")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string, opts *compileOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sassOpts, err := opts.options(cmd, cfg)
	if err != nil {
		return err
	}

	input := "-"
	if len(args) > 0 {
		input = args[0]
	}
	if input != "-" {
		info, err := os.Stat(input)
		if err != nil {
			return fmt.Errorf("input not found: %s", input)
		}
		if info.IsDir() {
			return compileDir(cmd, input, cfg, sassOpts, opts)
		}
	}
	return compileOne(cmd, input, sassOpts, opts)
}

func compileOne(cmd *cobra.Command, input string, sassOpts sass.Options, opts *compileOptions) error {
	var (
		res *sass.Result
		err error
	)
	if input == "-" {
		src, rerr := io.ReadAll(cmd.InOrStdin())
		if rerr != nil {
			return fmt.Errorf("failed to read stdin: %w", rerr)
		}
		input = "stdin"
		res, err = sass.Compile(cmd.Context(), string(src), input, sassOpts)
	} else {
		res, err = sass.CompileFile(cmd.Context(), input, sassOpts)
	}
	if err != nil {
		return reportFailures(cmd, opts.json, []watch.FileError{{Path: input, Err: err}})
	}

	if opts.output == "" {
		fmt.Fprint(cmd.OutOrStdout(), res.CSS)
		if sassOpts.SourceMap {
			fmt.Fprint(cmd.ErrOrStderr(), ui.Warning("source mappings are only written together with --output", noColor))
		}
		return nil
	}

	if err := writeOutput(opts.output, res.CSS); err != nil {
		return err
	}
	if sassOpts.SourceMap {
		f, err := os.Create(opts.output + ".map")
		if err != nil {
			return fmt.Errorf("failed to write source mappings: %w", err)
		}
		defer f.Close()
		if err := writeMappings(f, res); err != nil {
			return fmt.Errorf("failed to write source mappings: %w", err)
		}
	}
	ui.WriteSuccess(cmd.ErrOrStderr(), fmt.Sprintf("%s → %s", input, opts.output), noColor)
	return nil
}

func compileDir(cmd *cobra.Command, input string, cfg *config.Config, sassOpts sass.Options, opts *compileOptions) error {
	start := time.Now()
	outDir := opts.output
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	if sassOpts.SourceMap {
		fmt.Fprint(cmd.ErrOrStderr(), ui.Warning("source mappings are not written for directory builds", noColor))
	}

	var bar *ui.ProgressBar
	builder, err := watch.NewBuilder(watch.BuilderConfig{
		InputDir:  input,
		OutputDir: outDir,
		Options:   sassOpts,
		CacheSize: cfg.Cache.Size,
		Logger:    sassOpts.Logger,
		Progress: func(string, error) {
			if bar != nil {
				bar.Add(1)
			}
		},
	})
	if err != nil {
		return err
	}

	entries, err := builder.Entries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no entry stylesheets found in %s", input)
	}
	if !opts.json {
		bar = ui.NewProgressBar(cmd.ErrOrStderr(), len(entries), "compiling", noColor)
	}

	result, err := builder.Build(cmd.Context())
	if err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}
	if !result.OK() {
		return reportFailures(cmd, opts.json, result.Errors)
	}

	if opts.json {
		return nil
	}
	table := ui.NewTable(cmd.OutOrStdout(), noColor, "SOURCE", "OUTPUT")
	for _, entry := range entries {
		table.AddRow(entry, builder.OutputPath(entry))
	}
	table.Render()
	ui.WriteSuccess(cmd.ErrOrStderr(),
		fmt.Sprintf("Compiled %d file(s) in %s", len(result.Written), time.Since(start).Round(time.Millisecond)), noColor)
	return nil
}

// reportFailures prints failed compilations, as JSON on stdout when asJSON
// is set, and returns errReported.
func reportFailures(cmd *cobra.Command, asJSON bool, failures []watch.FileError) error {
	if asJSON {
		errs := make([]*errors.CompilerError, 0, len(failures))
		for _, f := range failures {
			errs = append(errs, compilerError(f.Path, f.Err))
		}
		out, err := errors.FormatErrorsAsJSON(errs)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return errReported
	}

	for _, f := range failures {
		fmt.Fprint(cmd.ErrOrStderr(), ui.CompileError(f.Path, f.Err, noColor))
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	return errReported
}

func writeOutput(path, css string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(css), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
