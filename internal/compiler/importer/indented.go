package importer

import "strings"

type sassLine struct {
	idx    int // line number in the source
	indent int
	text   string // trimmed content
}

// Indented2SCSS converts indented-syntax source to SCSS. Each source line
// stays on the same output line so positions in errors still point at the
// original file.
func Indented2SCSS(src string) string {
	raw := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	out := make([]string, len(raw))

	var lines []sassLine
	for i, r := range raw {
		text := strings.TrimRight(r, " \t\r")
		trimmed := strings.TrimLeft(text, " \t")
		if trimmed == "" {
			continue
		}
		lines = append(lines, sassLine{idx: i, indent: len(text) - len(trimmed), text: trimmed})
	}

	var stack []int
	lastCode := -1
	for k := 0; k < len(lines); k++ {
		ln := lines[k]
		pad := strings.Repeat(" ", ln.indent)

		switch {
		case strings.HasPrefix(ln.text, "//"), strings.HasPrefix(ln.text, "/*"):
			loud := strings.HasPrefix(ln.text, "/*")
			out[ln.idx] = pad + ln.text
			last := ln.idx
			for k+1 < len(lines) && lines[k+1].indent > ln.indent {
				k++
				body := lines[k]
				if loud {
					out[body.idx] = strings.Repeat(" ", body.indent) + body.text
				} else {
					out[body.idx] = strings.Repeat(" ", body.indent) + "//" + strings.TrimPrefix(body.text, "//")
				}
				last = body.idx
			}
			if loud {
				if !strings.Contains(out[last], "*/") {
					out[last] += " */"
				}
				lastCode = last
			}

		default:
			next := -1
			if k+1 < len(lines) {
				next = lines[k+1].indent
			}
			children := next > ln.indent
			text := convertLine(ln.text, children)
			switch {
			case children:
				text += " {"
				stack = append(stack, ln.indent)
			case strings.HasSuffix(text, ","):
			default:
				text += ";"
			}
			out[ln.idx] = pad + text
			lastCode = ln.idx
		}

		next := -1
		if k+1 < len(lines) {
			next = lines[k+1].indent
		}
		for len(stack) > 0 && stack[len(stack)-1] >= next {
			stack = stack[:len(stack)-1]
			if lastCode >= 0 {
				out[lastCode] += " }"
			}
		}
	}

	return strings.Join(out, "\n")
}

// convertLine rewrites the indented-syntax shorthands of a single line.
func convertLine(text string, children bool) string {
	switch {
	case strings.HasPrefix(text, "="):
		return "@mixin " + strings.TrimSpace(text[1:])
	case len(text) > 1 && text[0] == '+' && text[1] != ' ':
		return "@include " + strings.TrimSpace(text[1:])
	case strings.HasPrefix(text, "@import ") && !strings.ContainsAny(text, `"'(`):
		names := strings.Split(strings.TrimPrefix(text, "@import "), ",")
		for i, n := range names {
			names[i] = `"` + strings.TrimSpace(n) + `"`
		}
		return "@import " + strings.Join(names, ", ")
	case !children && len(text) > 1 && text[0] == ':' && isNameStart(text[1]):
		prop, value, ok := strings.Cut(text[1:], " ")
		if !ok {
			return text
		}
		return prop + ": " + strings.TrimSpace(value)
	}
	return text
}

func isNameStart(c byte) bool {
	return c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
