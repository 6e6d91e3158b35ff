package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchers(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		input   string
		want    int
	}{
		{"identifier", Identifier, "foo-bar baz", 7},
		{"vendor identifier", Identifier, "-moz-box;", 8},
		{"custom property", Identifier, "--main:", 6},
		{"lone hyphen is not an identifier", Identifier, "- x", NoMatch},
		{"integer", Number, "42px", 2},
		{"decimal", Number, "1.5;", 3},
		{"leading dot", Number, ".5em", 2},
		{"signed", Number, "-3", 2},
		{"percentage", Percentage, "50%;", 3},
		{"dimension", Dimension, "12px/1.5", 4},
		{"dimension stops before hyphen digit", Dimension, "10px-2px", 4},
		{"hyphenated unit", Dimension, "3my-unit", 8},
		{"short hex", HexColor, "#fff;", 4},
		{"long hex", HexColor, "#A0b1C2 ", 7},
		{"hex needs 3 or 6 digits", HexColor, "#abcd", NoMatch},
		{"id is not hex", HexColor, "#fade-in", NoMatch},
		{"variable", Variable, "$my_var: 1", 7},
		{"at keyword", AtKeyword, "@include foo", 8},
		{"class", ClassName, ".btn-primary{", 12},
		{"id", IDName, "#main .x", 5},
		{"placeholder", Placeholder, "%base;", 5},
		{"pseudo element prefix", PseudoPrefix, "::before", 2},
		{"namespaced type", TypeSelector, "svg|rect", 8},
		{"universal", TypeSelector, "*.a", 1},
		{"binomial", Binomial, "2n+1)", 4},
		{"binomial spaced", Binomial, "-n + 3)", 6},
		{"double quoted", QuotedString, `"a\"b" c`, 6},
		{"single quoted", QuotedString, `'it' x`, 4},
		{"quoted with interpolant", QuotedString, `"a#{"}"}b"`, 10},
		{"unterminated string", QuotedString, `"abc`, NoMatch},
		{"interpolant", Interpolant, "#{$a + {b}}x", 11},
		{"important", Important, "! important;", 11},
		{"default", Default, "!default;", 8},
		{"global is a word", Global, "!globally", NoMatch},
		{"url", URL, "url(foo.png) no-repeat", 12},
		{"url with interpolant", URL, "url(#{$base}/a.png)", 19},
		{"functional name", FunctionalName, "rgba(0,0,0,0)", 4},
		{"line comment", LineComment, "// hi\nx", 5},
		{"block comment", BlockComment, "/* a */b", 7},
		{"attribute matcher", AttributeMatcher, "^=foo", 2},
		{"keyword boundary", Keyword("and"), "android", NoMatch},
		{"keyword", Keyword("and"), "AND (", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher(tt.input, 0))
		})
	}
}

func TestSpacesAndComments(t *testing.T) {
	src := "  /* c */ // line\n\t x"
	assert.Equal(t, len(src)-1, SpacesAndComments(src, 0))
	assert.Equal(t, 0, SpacesAndComments("x", 0))
}

func TestFindMatchingScope(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  byte
		close byte
		want  int
	}{
		{"flat", "a, b) c", '(', ')', 4},
		{"nested", "a(b)c) d", '(', ')', 5},
		{"skips quoted close", `")" ) x`, '(', ')', 4},
		{"skips interpolant", `#{")"}) x`, '(', ')', 6},
		{"unterminated", "a(b", '(', ')', NoMatch},
		{"braces", "a {b} }", '{', '}', 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindMatchingScope(tt.input, 0, tt.open, tt.close))
		})
	}
}

func TestLineColumn(t *testing.T) {
	src := "a\nbc\ndef"
	line, col := LineColumn(src, 0)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, col)

	line, col = LineColumn(src, 4)
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col)

	line, col = LineColumn(src, 7)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
}

func TestCombinators(t *testing.T) {
	m := Sequence(Exactly("a"), Optional(Char('b')), OnePlus(Char('c')))
	assert.Equal(t, 3, m("acc", 0))
	assert.Equal(t, 4, m("abcc", 0))
	assert.Equal(t, NoMatch, m("ab", 0))

	assert.Equal(t, 0, Negate(Char('x'))("y", 0))
	assert.Equal(t, NoMatch, Negate(Char('x'))("x", 0))
	assert.Equal(t, 0, Lookahead(Char('x'))("x", 0))
	assert.Equal(t, 2, Until(Char(';'))("ab;", 0))
}
