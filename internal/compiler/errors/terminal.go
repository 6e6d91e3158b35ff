package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	headerColor  = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	arrowColor   = color.New(color.FgCyan)
	gutterColor  = color.New(color.FgBlue)
	contextColor = color.New(color.FgHiBlack)
	markerColor  = color.New(color.FgRed)
	traceColor   = color.New(color.FgHiBlack)
)

// FormatForTerminal formats a CompilerError for terminal output with colors.
// Colors are dropped automatically when stdout is not a terminal.
func (e *CompilerError) FormatForTerminal() string {
	var sb strings.Builder

	title := "Error"
	c := headerColor
	if e.IsWarning() {
		title = "Warning"
		c = warnColor
	}
	sb.WriteString(c.Sprintf("%s [%s]", title, e.Code))
	fmt.Fprintf(&sb, ": %s\n", e.Message)

	fmt.Fprintf(&sb, "  %s %s\n", arrowColor.Sprint("-->"), e.Location)

	if len(e.Context.SourceLines) > 0 {
		sb.WriteString(formatSourceContext(e.Context))
	}

	if frames := e.Backtrace.Frames(); len(frames) > 0 {
		sb.WriteString(traceColor.Sprint("Backtrace:") + "\n")
		for _, f := range frames {
			fmt.Fprintf(&sb, "  %s\n", traceColor.Sprint(f.String()))
		}
	}

	return sb.String()
}

// formatSourceContext formats the source code context with highlighting
func formatSourceContext(ctx ErrorContext) string {
	var sb strings.Builder

	width := len(fmt.Sprint(ctx.FirstLine + len(ctx.SourceLines)))
	pad := strings.Repeat(" ", width)
	bar := gutterColor.Sprint("|")

	fmt.Fprintf(&sb, " %s %s\n", pad, bar)
	for i, line := range ctx.SourceLines {
		num := fmt.Sprintf("%*d", width, ctx.FirstLine+i+1)
		if i != ctx.Highlight.Line {
			fmt.Fprintf(&sb, " %s %s %s\n", contextColor.Sprint(num), bar, line)
			continue
		}
		fmt.Fprintf(&sb, " %s %s %s\n", gutterColor.Sprint(num), bar, line)

		n := ctx.Highlight.End - ctx.Highlight.Start
		if n <= 0 {
			n = 1
		}
		fmt.Fprintf(&sb, " %s %s %s%s\n", pad, bar,
			strings.Repeat(" ", ctx.Highlight.Start),
			markerColor.Sprint(strings.Repeat("^", n)))
	}
	fmt.Fprintf(&sb, " %s %s\n", pad, bar)

	return sb.String()
}

// FormatSummary formats a summary of errors and warnings
func FormatSummary(errorCount, warningCount int) string {
	var parts []string
	if errorCount > 0 {
		parts = append(parts, headerColor.Sprintf("%d error(s)", errorCount))
	}
	if warningCount > 0 {
		parts = append(parts, warnColor.Sprintf("%d warning(s)", warningCount))
	}
	if len(parts) == 0 {
		return "No errors or warnings\n"
	}
	return fmt.Sprintf("\nCompilation failed with %s\n", strings.Join(parts, " and "))
}
