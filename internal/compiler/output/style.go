// Package output serializes an expanded and extended stylesheet to CSS text.
package output

import (
	"fmt"
	"strings"
)

// Style selects the layout of the generated CSS.
type Style int

const (
	// Nested indents rules by their nesting depth in the source and closes
	// blocks on the last declaration line.
	Nested Style = iota
	// Expanded writes one declaration per line with braces on their own lines.
	Expanded
	// Compact writes each rule on a single line.
	Compact
	// Compressed drops all optional whitespace.
	Compressed
)

var styleNames = []string{"nested", "expanded", "compact", "compressed"}

func (s Style) String() string {
	if int(s) < len(styleNames) && s >= 0 {
		return styleNames[s]
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle maps a style name to its Style. Names are case-insensitive.
func ParseStyle(name string) (Style, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range styleNames {
		if s == n {
			return Style(i), nil
		}
	}
	return Nested, fmt.Errorf("unknown output style %q (want one of %s)", name, strings.Join(styleNames, ", "))
}

// StyleNames returns the accepted style names in declaration order.
func StyleNames() []string {
	return append([]string(nil), styleNames...)
}
