// Package ui formats gosass command output for the terminal.
package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// Message is a headline with optional detail lines, suggestions and hints.
//
//	✗ UNKNOWN FUNCTION: lighter
//	   Did you mean: lighten?
//	   → List functions: gosass functions
type Message struct {
	Level       Level
	Context     string
	Problem     string
	Details     []string
	Suggestions []string
	Hints       []string
	NoColor     bool
}

func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// Format renders m
func (m Message) Format() string {
	var b strings.Builder

	var head, body *color.Color
	var symbol string
	switch m.Level {
	case LevelWarning:
		head, body, symbol = paint(m.NoColor, color.FgYellow, color.Bold), paint(m.NoColor, color.FgYellow), "!"
	case LevelInfo:
		head, body, symbol = paint(m.NoColor, color.FgCyan, color.Bold), paint(m.NoColor, color.FgCyan), "i"
	default:
		head, body, symbol = paint(m.NoColor, color.FgRed, color.Bold), paint(m.NoColor, color.FgRed), "✗"
	}

	if m.Context != "" {
		head.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), m.Problem)
	} else {
		head.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}
	for _, d := range m.Details {
		body.Fprintf(&b, "   %s\n", d)
	}
	if len(m.Suggestions) > 0 {
		paint(m.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}
	hint := paint(m.NoColor, color.FgCyan)
	for _, h := range m.Hints {
		hint.Fprintf(&b, "   → %s\n", h)
	}
	return b.String()
}

// Write writes the formatted message to w
func (m Message) Write(w io.Writer) {
	fmt.Fprint(w, m.Format())
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// CompileError renders a failed compilation. Compiler errors keep their
// source excerpt and backtrace, colored unless color.NoColor is set.
func CompileError(path string, err error, noColor bool) string {
	var ce *errors.CompilerError
	if stderrors.As(err, &ce) {
		return ce.FormatForTerminal()
	}
	return Message{
		Level:   LevelError,
		Context: "compile failed",
		Problem: path,
		Details: []string{err.Error()},
		Hints:   []string{"Get help: gosass compile --help"},
		NoColor: noColor,
	}.Format()
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return Message{
		Level:   LevelError,
		Context: "configuration error",
		Problem: message,
		Hints: []string{
			"View config: cat gosass.yml",
			"Create one: gosass init",
		},
		NoColor: noColor,
	}.Format()
}

// UnknownFunction reports a function name that is not built in.
func UnknownFunction(name string, suggestions []string, noColor bool) string {
	return Message{
		Level:       LevelError,
		Context:     "unknown function",
		Problem:     name,
		Suggestions: suggestions,
		Hints:       []string{"List functions: gosass functions"},
		NoColor:     noColor,
	}.Format()
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return Message{Level: LevelWarning, Problem: message, NoColor: noColor}.Format()
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return Message{Level: LevelInfo, Problem: message, NoColor: noColor}.Format()
}
