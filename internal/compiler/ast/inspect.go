package ast

import (
	"math"
	"strconv"
	"strings"
)

// DefaultPrecision is the number of decimal digits numbers are rounded to.
const DefaultPrecision = 5

// Format controls how values are written as text.
type Format struct {
	Compressed bool
	Precision  int
	Inspect    bool // render null and empty lists the way inspect() does
}

// Inspect renders a value the way inspect() reports it.
func Inspect(e Expression) string {
	return FormatValue(e, Format{Precision: DefaultPrecision, Inspect: true})
}

// ToCSS renders a value as it appears in a declaration.
func ToCSS(e Expression, f Format) string {
	f.Inspect = false
	return FormatValue(e, f)
}

// FormatValue renders a value with the given options.
func FormatValue(e Expression, f Format) string {
	var b strings.Builder
	writeValue(&b, e, f)
	return b.String()
}

func writeValue(b *strings.Builder, e Expression, f Format) {
	switch v := e.(type) {
	case *Null:
		if f.Inspect {
			b.WriteString("null")
		}
	case *Boolean:
		b.WriteString(strconv.FormatBool(v.Value))
	case *Number:
		b.WriteString(FormatNumber(v, f))
	case *Color:
		b.WriteString(FormatColor(v, f.Compressed))
	case *String:
		if v.IsQuoted() {
			b.WriteString(QuoteString(v.Value, v.Quote))
		} else {
			b.WriteString(v.Value)
		}
	case *List:
		writeList(b, v, f)
	case *Map:
		b.WriteByte('(')
		for i, k := range v.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, k, f)
			b.WriteString(": ")
			writeValue(b, v.Values[i], f)
		}
		b.WriteByte(')')
	case *BinaryExpr:
		writeValue(b, v.Left, f)
		b.WriteString(v.Op.String())
		writeValue(b, v.Right, f)
	case *Argument:
		writeValue(b, v.Value, f)
	}
}

func writeList(b *strings.Builder, l *List, f Format) {
	if len(l.Elements) == 0 {
		if f.Inspect {
			b.WriteString("()")
		}
		return
	}
	sep := " "
	if l.Separator == CommaSeparator {
		sep = ", "
		if f.Compressed {
			sep = ","
		}
	}
	first := true
	for _, el := range l.Elements {
		if IsInvisible(el) && !f.Inspect {
			continue
		}
		if !first {
			b.WriteString(sep)
		}
		first = false
		if inner, ok := el.(*List); ok && f.Inspect && len(inner.Elements) > 1 && inner.Separator >= l.Separator {
			b.WriteByte('(')
			writeList(b, inner, f)
			b.WriteByte(')')
			continue
		}
		writeValue(b, el, f)
	}
	if l.Separator == CommaSeparator && len(l.Elements) == 1 && f.Inspect {
		b.WriteByte(',')
	}
}

// IsInvisible reports whether a value prints as nothing in CSS.
func IsInvisible(e Expression) bool {
	switch v := e.(type) {
	case *Null:
		return true
	case *List:
		for _, el := range v.Elements {
			if !IsInvisible(el) {
				return false
			}
		}
		return true
	case *String:
		return !v.IsQuoted() && v.Value == ""
	default:
		return false
	}
}

// FormatNumber rounds a number to the configured precision and appends its units.
func FormatNumber(n *Number, f Format) string {
	precision := f.Precision
	if precision <= 0 {
		precision = DefaultPrecision
	}
	var s string
	switch {
	case math.IsNaN(n.Value):
		s = "NaN"
	case math.IsInf(n.Value, 1):
		s = "Infinity"
	case math.IsInf(n.Value, -1):
		s = "-Infinity"
	default:
		scale := math.Pow(10, float64(precision))
		rounded := math.Round(n.Value*scale) / scale
		if rounded == 0 {
			rounded = 0 // drop the sign of -0
		}
		s = strconv.FormatFloat(rounded, 'f', -1, 64)
		if f.Compressed || !n.Zero {
			if strings.HasPrefix(s, "0.") {
				s = s[1:]
			} else if strings.HasPrefix(s, "-0.") {
				s = "-" + s[2:]
			}
		}
	}
	return s + n.Unit()
}

// FormatColor writes a color as a keyword, hex or rgba() notation.
func FormatColor(c *Color, compressed bool) string {
	if c.Disp != "" && !compressed {
		return c.Disp
	}
	if c.A < 1 {
		name, ok := ColorName(c)
		if ok && name == "transparent" {
			return name
		}
		sep := ", "
		if compressed {
			sep = ","
		}
		return "rgba(" +
			strconv.Itoa(int(clampChannel(c.R))) + sep +
			strconv.Itoa(int(clampChannel(c.G))) + sep +
			strconv.Itoa(int(clampChannel(c.B))) + sep +
			FormatNumber(&Number{Value: c.A, Zero: !compressed}, Format{Precision: DefaultPrecision, Compressed: compressed}) + ")"
	}
	name, hasName := ColorName(c)
	if compressed {
		short := c.ShortHex()
		if hasName && len(name) < len(short) {
			return name
		}
		return short
	}
	if hasName {
		return name
	}
	return c.Hex()
}

// QuoteString wraps s in quotes, switching to the other quote character when
// s contains an unescaped q.
func QuoteString(s string, q byte) string {
	if q == 0 {
		q = '"'
	}
	if containsUnescaped(s, q) {
		other := byte('\'')
		if q == '\'' {
			other = '"'
		}
		if !containsUnescaped(s, other) {
			q = other
		} else {
			s = strings.ReplaceAll(s, string(q), `\`+string(q))
		}
	}
	return string(q) + s + string(q)
}

func containsUnescaped(s string, q byte) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return true
		}
	}
	return false
}
