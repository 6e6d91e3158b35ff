// Package lexer provides the character-level matchers the Sass parser is built on.
//
// Every matcher is a pure function of (source, offset) that reports where a match
// starting at offset would end, or NoMatch. Matchers hold no state and never
// allocate, so the parser is free to look ahead as far as it needs before
// committing to a production.
package lexer

import "strings"

// NoMatch is returned by a Matcher that did not match at the given offset.
const NoMatch = -1

// Matcher reports the end offset of a match beginning at pos, or NoMatch.
type Matcher func(src string, pos int) int

// Exactly matches the literal text s.
func Exactly(s string) Matcher {
	return func(src string, pos int) int {
		if strings.HasPrefix(src[pos:], s) {
			return pos + len(s)
		}
		return NoMatch
	}
}

// ExactlyFold matches the literal text s ignoring ASCII case.
func ExactlyFold(s string) Matcher {
	return func(src string, pos int) int {
		if len(src)-pos >= len(s) && strings.EqualFold(src[pos:pos+len(s)], s) {
			return pos + len(s)
		}
		return NoMatch
	}
}

// Char matches a single byte c.
func Char(c byte) Matcher {
	return func(src string, pos int) int {
		if pos < len(src) && src[pos] == c {
			return pos + 1
		}
		return NoMatch
	}
}

// Class matches a single byte accepted by pred.
func Class(pred func(byte) bool) Matcher {
	return func(src string, pos int) int {
		if pos < len(src) && pred(src[pos]) {
			return pos + 1
		}
		return NoMatch
	}
}

// AnyChar matches any single byte.
func AnyChar(src string, pos int) int {
	if pos < len(src) {
		return pos + 1
	}
	return NoMatch
}

// Sequence matches every matcher in order.
func Sequence(ms ...Matcher) Matcher {
	return func(src string, pos int) int {
		for _, m := range ms {
			if pos = m(src, pos); pos == NoMatch {
				return NoMatch
			}
		}
		return pos
	}
}

// Alternatives returns the first matcher that succeeds.
func Alternatives(ms ...Matcher) Matcher {
	return func(src string, pos int) int {
		for _, m := range ms {
			if end := m(src, pos); end != NoMatch {
				return end
			}
		}
		return NoMatch
	}
}

// Optional always succeeds, consuming m when it matches.
func Optional(m Matcher) Matcher {
	return func(src string, pos int) int {
		if end := m(src, pos); end != NoMatch {
			return end
		}
		return pos
	}
}

// ZeroPlus matches m as many times as possible.
func ZeroPlus(m Matcher) Matcher {
	return func(src string, pos int) int {
		for {
			end := m(src, pos)
			if end == NoMatch || end == pos {
				return pos
			}
			pos = end
		}
	}
}

// OnePlus matches m at least once.
func OnePlus(m Matcher) Matcher {
	return func(src string, pos int) int {
		end := m(src, pos)
		if end == NoMatch {
			return NoMatch
		}
		return ZeroPlus(m)(src, end)
	}
}

// Negate is a zero-width assertion that m does not match at pos.
func Negate(m Matcher) Matcher {
	return func(src string, pos int) int {
		if m(src, pos) != NoMatch {
			return NoMatch
		}
		return pos
	}
}

// Lookahead is a zero-width assertion that m matches at pos.
func Lookahead(m Matcher) Matcher {
	return func(src string, pos int) int {
		if m(src, pos) == NoMatch {
			return NoMatch
		}
		return pos
	}
}

// Until consumes bytes up to, but not including, the first match of m.
func Until(m Matcher) Matcher {
	return func(src string, pos int) int {
		for i := pos; i < len(src); i++ {
			if m(src, i) != NoMatch {
				return i
			}
		}
		return NoMatch
	}
}

// Character classes.

func IsSpace(c byte) bool     { return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' }
func IsDigit(c byte) bool     { return c >= '0' && c <= '9' }
func IsHexDigit(c byte) bool  { return IsDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func IsAlpha(c byte) bool     { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func IsNameStart(c byte) bool { return IsAlpha(c) || c == '_' || c >= 0x80 }
func IsNameChar(c byte) bool  { return IsNameStart(c) || IsDigit(c) || c == '-' }

var (
	// Whitespace matches one or more whitespace characters.
	Whitespace = OnePlus(Class(IsSpace))

	// LineComment matches a `//` comment up to the end of the line.
	LineComment = Sequence(Exactly("//"), ZeroPlus(Class(func(c byte) bool { return c != '\n' })))

	// BlockComment matches a `/* ... */` comment.
	BlockComment = Sequence(Exactly("/*"), Until(Exactly("*/")), Exactly("*/"))

	// SpacesAndComments skips any run of whitespace and comments.
	SpacesAndComments = ZeroPlus(Alternatives(Whitespace, LineComment, BlockComment))

	// OptionalSpaces skips whitespace only.
	OptionalSpaces = ZeroPlus(Class(IsSpace))

	escape = Sequence(Char('\\'), AnyChar)

	nameStart = Alternatives(Class(IsNameStart), escape)
	nameChar  = Alternatives(Class(IsNameChar), escape)

	// Hyphens matches one or more `-`.
	Hyphens = OnePlus(Char('-'))

	// Identifier matches a CSS identifier, optionally led by hyphens.
	Identifier = Sequence(ZeroPlus(Char('-')), nameStart, ZeroPlus(nameChar))

	// Name matches one or more name characters, such as the part after `#` in an id.
	Name = OnePlus(nameChar)

	// IdentifierAlnums matches the trailing name characters of a suffixed parent reference.
	IdentifierAlnums = OnePlus(Alternatives(Class(IsNameChar), escape))

	sign = Class(func(c byte) bool { return c == '+' || c == '-' })

	// Number matches an unsigned or signed decimal number.
	Number = Sequence(
		Optional(sign),
		Alternatives(
			Sequence(OnePlus(Class(IsDigit)), Optional(Sequence(Char('.'), OnePlus(Class(IsDigit))))),
			Sequence(Char('.'), OnePlus(Class(IsDigit))),
		),
	)

	// Percentage matches a number followed by `%`.
	Percentage = Sequence(Number, Char('%'))

	// Unit matches a unit name. A hyphen followed by a digit ends the unit, so
	// `10px-2px` stays a subtraction.
	Unit = Sequence(nameStart, ZeroPlus(Alternatives(
		Class(func(c byte) bool { return IsNameChar(c) && c != '-' }),
		Sequence(Char('-'), Negate(Class(func(c byte) bool { return IsDigit(c) || c == '.' || c == '-' }))),
		escape,
	)))

	// Dimension matches a number followed directly by a unit identifier.
	Dimension = Sequence(Number, Unit)

	// HexColor matches `#` followed by exactly three or six hex digits.
	HexColor = Sequence(
		Char('#'),
		Alternatives(
			Sequence(repeat(Class(IsHexDigit), 6), Negate(Class(IsNameChar))),
			Sequence(repeat(Class(IsHexDigit), 3), Negate(Class(IsNameChar))),
		),
	)

	// Interpolant matches `#{ ... }` with balanced braces and quotes.
	Interpolant = func(src string, pos int) int {
		if !strings.HasPrefix(src[pos:], "#{") {
			return NoMatch
		}
		end := FindMatchingScope(src, pos+2, '{', '}')
		if end == NoMatch {
			return NoMatch
		}
		return end + 1
	}

	// QuotedString matches a single- or double-quoted string that may contain interpolants.
	QuotedString = Alternatives(quoted('"'), quoted('\''))

	// Variable matches `$name`.
	Variable = Sequence(Char('$'), Identifier)

	// AtKeyword matches `@name`.
	AtKeyword = Sequence(Char('@'), Identifier)

	// ClassName matches `.name`.
	ClassName = Sequence(Char('.'), Identifier)

	// IDName matches `#name`.
	IDName = Sequence(Char('#'), Name)

	// Placeholder matches `%name`.
	Placeholder = Sequence(Char('%'), Identifier)

	// PseudoPrefix matches `:` or `::`.
	PseudoPrefix = Sequence(Char(':'), Optional(Char(':')))

	// TypeSelector matches an element name with an optional namespace prefix.
	TypeSelector = Sequence(
		Optional(Sequence(Alternatives(Identifier, Char('*')), Char('|'), Negate(Char('=')))),
		Alternatives(Identifier, Char('*')),
	)

	// Binomial matches an+b syntax inside :nth-child and friends.
	Binomial = Sequence(
		Optional(sign),
		ZeroPlus(Class(IsDigit)),
		Char('n'),
		OptionalSpaces,
		Optional(Sequence(sign, OptionalSpaces, OnePlus(Class(IsDigit)))),
	)

	// AttributeMatcher matches one of `=`, `~=`, `|=`, `^=`, `$=`, `*=`.
	AttributeMatcher = Alternatives(
		Exactly("~="), Exactly("|="), Exactly("^="), Exactly("$="), Exactly("*="), Exactly("="),
	)

	// Combinator matches one of `>`, `+`, `~`.
	Combinator = Class(func(c byte) bool { return c == '>' || c == '+' || c == '~' })

	// Important matches `!important` with optional inner space.
	Important = flag("important")
	// Default matches `!default`.
	Default = flag("default")
	// Global matches `!global`.
	Global = flag("global")
	// OptionalFlag matches `!optional`.
	OptionalFlag = flag("optional")

	// URL matches an unquoted `url(...)` token.
	URL = Sequence(
		ExactlyFold("url("),
		OptionalSpaces,
		ZeroPlus(Alternatives(escape, Interpolant, Class(func(c byte) bool {
			return c != ')' && c != '"' && c != '\'' && !IsSpace(c)
		}))),
		OptionalSpaces,
		Char(')'),
	)

	// FunctionalName matches an identifier immediately followed by `(`.
	FunctionalName = Sequence(Identifier, Lookahead(Char('(')))

	// Ellipsis matches `...`.
	Ellipsis = Exactly("...")
)

func flag(word string) Matcher {
	return Sequence(Char('!'), OptionalSpaces, ExactlyFold(word), Negate(Class(IsNameChar)))
}

func repeat(m Matcher, n int) Matcher {
	return func(src string, pos int) int {
		for i := 0; i < n; i++ {
			if pos = m(src, pos); pos == NoMatch {
				return NoMatch
			}
		}
		return pos
	}
}

func quoted(q byte) Matcher {
	return func(src string, pos int) int {
		if pos >= len(src) || src[pos] != q {
			return NoMatch
		}
		for i := pos + 1; i < len(src); {
			switch c := src[i]; {
			case c == '\\':
				i += 2
			case c == q:
				return i + 1
			case c == '\n':
				return NoMatch
			case c == '#' && i+1 < len(src) && src[i+1] == '{':
				end := FindMatchingScope(src, i+2, '{', '}')
				if end == NoMatch {
					return NoMatch
				}
				i = end + 1
			default:
				i++
			}
		}
		return NoMatch
	}
}

// Keyword matches word case-insensitively when it is not followed by a name character.
func Keyword(word string) Matcher {
	return Sequence(ExactlyFold(word), Negate(Class(IsNameChar)))
}

// FindMatchingScope returns the offset of the close delimiter that balances an
// already consumed open delimiter, starting the search at pos. Quoted strings and
// nested interpolants are skipped. It returns NoMatch when the scope is unterminated.
func FindMatchingScope(src string, pos int, open, close byte) int {
	depth := 0
	for i := pos; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\':
			i++
		case c == '"' || c == '\'':
			end := quoted(c)(src, i)
			if end == NoMatch {
				return NoMatch
			}
			i = end - 1
		case c == '#' && i+1 < len(src) && src[i+1] == '{' && open != '{':
			end := FindMatchingScope(src, i+2, '{', '}')
			if end == NoMatch {
				return NoMatch
			}
			i = end
		case c == open:
			depth++
		case c == close:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return NoMatch
}

// LineColumn converts a byte offset into a 0-based line and column.
func LineColumn(src string, offset int) (line, column int) {
	if offset > len(src) {
		offset = len(src)
	}
	line = strings.Count(src[:offset], "\n")
	column = offset - (strings.LastIndexByte(src[:offset], '\n') + 1)
	return line, column
}
