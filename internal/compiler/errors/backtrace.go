package errors

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

// Backtrace is one call site in the chain of function and mixin calls that is
// active during evaluation. Caller describes the frame the site belongs to,
// e.g. ", in mixin `foo`". A nil *Backtrace is the empty chain.
type Backtrace struct {
	Parent   *Backtrace
	Location ast.SourceLocation
	Caller   string
}

// Push records a new call site on top of b.
func (b *Backtrace) Push(loc ast.SourceLocation, caller string) *Backtrace {
	return &Backtrace{Parent: b, Location: loc, Caller: caller}
}

// Depth returns the number of call sites in the chain.
func (b *Backtrace) Depth() int {
	n := 0
	for ; b != nil; b = b.Parent {
		n++
	}
	return n
}

// Frame is one rendered call site
type Frame struct {
	Location ast.SourceLocation
	Caller   string // frame the call site is in, empty at top level
}

func (f Frame) String() string {
	return fmt.Sprintf("%s:%d%s", displayPath(f.Location.Path), f.Location.Line+1, f.Caller)
}

// Frames lists the call sites innermost first.
func (b *Backtrace) Frames() []Frame {
	var frames []Frame
	for ; b != nil; b = b.Parent {
		f := Frame{Location: b.Location}
		if b.Parent != nil {
			f.Caller = b.Parent.Caller
		}
		frames = append(frames, f)
	}
	return frames
}

// Format renders the chain. Warnings use the "on line N of path" form that
// follows a @warn message; errors list path:line entries under a header.
func (b *Backtrace) Format(warning bool) string {
	var sb strings.Builder
	if !warning && b != nil {
		sb.WriteString("\nBacktrace:")
	}
	for i, f := range b.Frames() {
		if warning {
			word := "from"
			if i == 0 {
				word = "on"
			}
			fmt.Fprintf(&sb, "\n         %s line %d of %s%s", word, f.Location.Line+1, displayPath(f.Location.Path), f.Caller)
			continue
		}
		fmt.Fprintf(&sb, "\n\t%s", f)
	}
	return sb.String()
}

func displayPath(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}
