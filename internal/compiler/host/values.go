// Package host lets an embedding program register Sass functions written in
// Go. Arguments and results cross the boundary as host values, a small value
// model independent of the compiler's syntax tree.
package host

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a host-side Sass value.
type Value interface {
	hostValue()
	String() string
}

// Null is the Sass null value.
type Null struct{}

// Boolean is true or false.
type Boolean struct{ Value bool }

// Number is a number with an optional unit such as "px" or "px*em/s".
type Number struct {
	Value float64
	Unit  string
}

// Color is an RGBA color with 0-255 channels and alpha in [0, 1].
type Color struct{ R, G, B, A float64 }

// String is a quoted or unquoted string.
type String struct {
	Value  string
	Quoted bool
}

// Separator is the separator of a List.
type Separator int

const (
	Space Separator = iota
	Comma
)

// List is an ordered list of values.
type List struct {
	Values    []Value
	Separator Separator
}

// Map holds keys and values as parallel slices, in insertion order.
type Map struct {
	Keys   []Value
	Values []Value
}

// Error reports a failure from a host function. It aborts the compilation.
type Error struct{ Message string }

// Warning reports a host function warning. It aborts the compilation too.
type Warning struct{ Message string }

func (Null) hostValue()    {}
func (Boolean) hostValue() {}
func (Number) hostValue()  {}
func (Color) hostValue()   {}
func (String) hostValue()  {}
func (List) hostValue()    {}
func (Map) hostValue()     {}
func (Error) hostValue()   {}
func (Warning) hostValue() {}

func (Null) String() string { return "null" }

func (b Boolean) String() string { return strconv.FormatBool(b.Value) }

func (n Number) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64) + n.Unit
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}

func (s String) String() string {
	if s.Quoted {
		return strconv.Quote(s.Value)
	}
	return s.Value
}

func (l List) String() string {
	sep := " "
	if l.Separator == Comma {
		sep = ", "
	}
	parts := make([]string, len(l.Values))
	for i, v := range l.Values {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func (m Map) String() string {
	parts := make([]string, len(m.Keys))
	for i := range m.Keys {
		parts[i] = m.Keys[i].String() + ": " + m.Values[i].String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (e Error) String() string { return "error: " + e.Message }

func (w Warning) String() string { return "warning: " + w.Message }
