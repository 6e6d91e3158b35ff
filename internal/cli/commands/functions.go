package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/gosass/internal/cli/ui"
	"github.com/conduit-lang/gosass/internal/compiler/stdlib"
)

// NewFunctionsCommand creates the functions command
func NewFunctionsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "functions [namespace|function]",
		Short: "List built-in Sass functions",
		Long: `List the built-in functions grouped by namespace (Color, String,
Number, List, Map, Introspection, Boolean).

Pass a namespace to list only its functions, or a function name to show its
signature. Unknown names get spelling suggestions.`,
		Example: `  # List every built-in function
  gosass functions

  # List the color functions
  gosass functions color

  # Show one function as JSON
  gosass functions map-get --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := stdlib.GetNamespaces()
			selected := make(map[string][]stdlib.FunctionDef, len(groups))
			for _, ns := range groups {
				selected[ns] = stdlib.GetFunctions(ns)
			}

			if len(args) > 0 {
				groups, selected = filterFunctions(args[0])
				if len(groups) == 0 {
					fmt.Fprint(cmd.ErrOrStderr(),
						ui.UnknownFunction(args[0], ui.Suggest(args[0], functionNames(), 3), noColor))
					return errReported
				}
			}

			switch format {
			case "json":
				return writeFunctionsJSON(cmd.OutOrStdout(), groups, selected)
			case "table", "":
				writeFunctionsTable(cmd.OutOrStdout(), groups, selected)
				return nil
			default:
				return fmt.Errorf("unknown format %q (use table or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")

	return cmd
}

// filterFunctions matches query against namespaces first, then function
// names, ignoring case.
func filterFunctions(query string) ([]string, map[string][]stdlib.FunctionDef) {
	for _, ns := range stdlib.GetNamespaces() {
		if strings.EqualFold(ns, query) {
			return []string{ns}, map[string][]stdlib.FunctionDef{ns: stdlib.GetFunctions(ns)}
		}
	}

	var groups []string
	selected := map[string][]stdlib.FunctionDef{}
	for _, ns := range stdlib.GetNamespaces() {
		for _, fn := range stdlib.GetFunctions(ns) {
			if strings.EqualFold(fn.Name, query) {
				if selected[ns] == nil {
					groups = append(groups, ns)
				}
				selected[ns] = append(selected[ns], fn)
			}
		}
	}
	return groups, selected
}

func functionNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, ns := range stdlib.GetNamespaces() {
		for _, fn := range stdlib.GetFunctions(ns) {
			if !seen[fn.Name] {
				seen[fn.Name] = true
				names = append(names, fn.Name)
			}
		}
	}
	return names
}

func writeFunctionsTable(w io.Writer, groups []string, selected map[string][]stdlib.FunctionDef) {
	bold := color.New(color.Bold)
	if noColor {
		bold.DisableColor()
	}

	total := 0
	for _, ns := range groups {
		total += len(selected[ns])
	}
	bold.Fprintf(w, "BUILT-IN FUNCTIONS (%d)\n\n", total)

	table := ui.NewTable(w, noColor, "NAMESPACE", "SIGNATURE", "DESCRIPTION")
	for _, ns := range groups {
		for _, fn := range selected[ns] {
			table.AddRow(ns, fn.Signature, fn.Description)
		}
	}
	table.Render()
}

func writeFunctionsJSON(w io.Writer, groups []string, selected map[string][]stdlib.FunctionDef) error {
	type functionJSON struct {
		Name        string `json:"name"`
		Signature   string `json:"signature"`
		Description string `json:"description"`
	}
	type namespaceJSON struct {
		Namespace string         `json:"namespace"`
		Functions []functionJSON `json:"functions"`
	}
	type outputJSON struct {
		TotalCount int             `json:"total_count"`
		Namespaces []namespaceJSON `json:"namespaces"`
	}

	out := outputJSON{Namespaces: []namespaceJSON{}}
	for _, ns := range groups {
		nsJSON := namespaceJSON{Namespace: ns}
		for _, fn := range selected[ns] {
			nsJSON.Functions = append(nsJSON.Functions, functionJSON{
				Name:        fn.Name,
				Signature:   fn.Signature,
				Description: fn.Description,
			})
			out.TotalCount++
		}
		out.Namespaces = append(out.Namespaces, nsJSON)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
