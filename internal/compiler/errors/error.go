// Package errors provides structured error handling for the Sass compiler.
// Every failure of a compilation is a *CompilerError carrying its kind, a
// stable code, the source position and, when raised inside a function or mixin
// call, the chain of call sites that led to it.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

// Kind classifies where a compilation failed
type Kind int

const (
	// SyntaxError is raised while parsing
	SyntaxError Kind = iota
	// EvaluationError is raised while evaluating or expanding
	EvaluationError
	// HostError is raised by a host-registered function
	HostError
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax"
	case EvaluationError:
		return "evaluation"
	case HostError:
		return "host"
	default:
		return "unknown"
	}
}

// Severity represents the severity level of an error
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// SourceLocation represents a location in source code. Line and Column are
// 0-based and rendered 1-based.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Length int    `json:"length"` // For multi-character tokens
}

// LocationOf converts an AST position into an error location.
func LocationOf(loc ast.SourceLocation) SourceLocation {
	return SourceLocation{File: loc.Path, Line: loc.Line, Column: loc.Column}
}

// String renders the location as file:line:column using 1-based numbers.
func (l SourceLocation) String() string {
	file := l.File
	if file == "" {
		file = "stdin"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line+1, l.Column+1)
}

// ErrorContext contains surrounding code for an error
type ErrorContext struct {
	SourceLines []string  `json:"source_lines"` // 3 lines before, error line, 3 lines after
	FirstLine   int       `json:"first_line"`   // 0-based line number of SourceLines[0]
	Highlight   Highlight `json:"highlight"`    // Which part to highlight
}

// Highlight specifies which part of the context to highlight
type Highlight struct {
	Line  int `json:"line"`  // Which line in SourceLines array
	Start int `json:"start"` // Column start
	End   int `json:"end"`   // Column end
}

// CompilerError represents a failed compilation
type CompilerError struct {
	Kind      Kind
	Code      string         // "E100", "E201", etc.
	Message   string         // Human-readable message
	Location  SourceLocation // File, line, column
	Severity  Severity
	Context   ErrorContext // Surrounding code
	Backtrace *Backtrace   // Call sites, innermost first
	Cause     error        // Underlying Go error, if any
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// Unwrap returns the underlying error
func (e *CompilerError) Unwrap() error {
	return e.Cause
}

// New creates a CompilerError at an AST position
func New(kind Kind, code, message string, loc ast.SourceLocation) *CompilerError {
	return &CompilerError{
		Kind:     kind,
		Code:     code,
		Message:  message,
		Location: LocationOf(loc),
		Severity: Error,
	}
}

// Syntaxf creates a syntax error with a formatted message
func Syntaxf(code string, loc ast.SourceLocation, format string, args ...interface{}) *CompilerError {
	return New(SyntaxError, code, fmt.Sprintf(format, args...), loc)
}

// Evalf creates an evaluation error with a formatted message
func Evalf(code string, loc ast.SourceLocation, bt *Backtrace, format string, args ...interface{}) *CompilerError {
	return New(EvaluationError, code, fmt.Sprintf(format, args...), loc).WithBacktrace(bt)
}

// Host creates an error reported by a host function
func Host(loc ast.SourceLocation, bt *Backtrace, message string) *CompilerError {
	return New(HostError, ErrHostFunction, message, loc).WithBacktrace(bt)
}

// Wrap converts err into a CompilerError. Errors that already are one are
// returned unchanged so the innermost position wins.
func Wrap(err error, kind Kind, code string, loc ast.SourceLocation, bt *Backtrace) *CompilerError {
	if err == nil {
		return nil
	}
	var ce *CompilerError
	if stderrors.As(err, &ce) {
		return ce
	}
	e := New(kind, code, err.Error(), loc).WithBacktrace(bt)
	e.Cause = err
	return e
}

// WithBacktrace attaches the call chain to the error
func (e *CompilerError) WithBacktrace(bt *Backtrace) *CompilerError {
	e.Backtrace = bt
	return e
}

// WithContext adds context to the error
func (e *CompilerError) WithContext(ctx ErrorContext) *CompilerError {
	e.Context = ctx
	return e
}

// WithLength sets how many characters the error spans
func (e *CompilerError) WithLength(n int) *CompilerError {
	e.Location.Length = n
	return e
}

// MarshalJSON implements json.Marshaler. Positions are written 1-based.
func (e *CompilerError) MarshalJSON() ([]byte, error) {
	loc := e.Location
	loc.Line++
	loc.Column++
	var trace []string
	for _, frame := range e.Backtrace.Frames() {
		trace = append(trace, frame.String())
	}
	return json.Marshal(struct {
		Kind      string         `json:"kind"`
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Severity  Severity       `json:"severity"`
		Location  SourceLocation `json:"location"`
		Context   ErrorContext   `json:"context"`
		Backtrace []string       `json:"backtrace,omitempty"`
	}{
		Kind:      e.Kind.String(),
		Code:      e.Code,
		Message:   e.Message,
		Severity:  e.Severity,
		Location:  loc,
		Context:   e.Context,
		Backtrace: trace,
	})
}

// IsError returns true if the error is at Error or Fatal severity
func (e *CompilerError) IsError() bool {
	return e.Severity == Error || e.Severity == Fatal
}

// IsWarning returns true if the error is at Warning severity
func (e *CompilerError) IsWarning() bool {
	return e.Severity == Warning
}

func hasKind(err error, kind Kind) bool {
	var ce *CompilerError
	return stderrors.As(err, &ce) && ce.Kind == kind
}

func hasCode(err error, code string) bool {
	var ce *CompilerError
	return stderrors.As(err, &ce) && ce.Code == code
}

// IsSyntax reports whether err is a parse failure
func IsSyntax(err error) bool { return hasKind(err, SyntaxError) }

// IsEvaluation reports whether err was raised while evaluating
func IsEvaluation(err error) bool { return hasKind(err, EvaluationError) }

// IsHost reports whether err came from a host function
func IsHost(err error) bool { return hasKind(err, HostError) }

// IsStackDepth reports whether err is a call stack overflow
func IsStackDepth(err error) bool { return hasCode(err, ErrStackDepth) }

// IsDuplicateKey reports whether err is a map with a repeated key
func IsDuplicateKey(err error) bool { return hasCode(err, ErrDuplicateKey) }
