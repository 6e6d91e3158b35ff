package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/gosass/internal/cli/ui"
	"github.com/conduit-lang/gosass/internal/watch"
	"github.com/conduit-lang/gosass/pkg/sass"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	flags := &compileFlags{}
	cmd := &cobra.Command{
		Use:   "check <input> <css>",
		Short: "Verify that a CSS file is up to date",
		Long: `Compile a stylesheet and compare the result with an existing CSS file.

Differences are printed as a line diff and the command exits non-zero, which
makes it suitable for CI checks that committed CSS matches its sources.`,
		Example: `  gosass check scss/main.scss css/main.css --style compressed`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}

			existing, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			res, err := sass.CompileFile(cmd.Context(), args[0], opts)
			if err != nil {
				return reportFailures(cmd, false, []watch.FileError{{Path: args[0], Err: err}})
			}

			if res.CSS == string(existing) {
				ui.WriteSuccess(cmd.OutOrStdout(), args[1]+" is up to date", noColor)
				return nil
			}
			writeDiff(cmd.OutOrStdout(), string(existing), res.CSS)
			return fmt.Errorf("%s is out of date with %s", args[1], args[0])
		},
	}
	flags.bind(cmd)
	return cmd
}

// writeDiff writes a line diff from before to after. Removed lines start with
// "-", added lines with "+".
func writeDiff(w io.Writer, before, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	removed, added := color.New(color.FgRed), color.New(color.FgGreen)
	if noColor {
		removed.DisableColor()
		added.DisableColor()
	}
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				removed.Fprintf(w, "-%s\n", line)
			case diffmatchpatch.DiffInsert:
				added.Fprintf(w, "+%s\n", line)
			default:
				fmt.Fprintf(w, " %s\n", line)
			}
		}
	}
}
