package parser

import (
	"github.com/conduit-lang/gosass/internal/compiler/lexer"
)

// lookahead is the outcome of scanning ahead over a run of tokens without
// consuming them.
type lookahead struct {
	found        bool
	end          int  // offset just past the last token of the run
	interpolated bool // the run contains `#{...}`
}

var (
	optSign       = lexer.Optional(lexer.Class(func(c byte) bool { return c == '+' || c == '-' }))
	digits        = lexer.OnePlus(lexer.Class(lexer.IsDigit))
	signedDigits  = lexer.Sequence(optSign, digits)
	digitsN       = lexer.Sequence(optSign, lexer.ZeroPlus(lexer.Class(lexer.IsDigit)), lexer.Char('n'))
	parentRefName = lexer.Sequence(lexer.Char('&'), lexer.IdentifierAlnums)

	// The prefixes a selector or value part can glue to an interpolant.
	interpolants = lexer.Alternatives(
		lexer.Sequence(lexer.Char('.'), lexer.Interpolant),
		lexer.Sequence(lexer.Char('#'), lexer.Interpolant),
		lexer.Sequence(lexer.Hyphens, lexer.Interpolant),
		lexer.Sequence(lexer.PseudoPrefix, lexer.Interpolant),
		lexer.Interpolant,
	)

	selectorTokens = lexer.Alternatives(
		lexer.TypeSelector,
		lexer.Sequence(lexer.Hyphens, lexer.Name),
		lexer.IDName,
		lexer.ClassName,
		lexer.Sequence(lexer.PseudoPrefix, lexer.Identifier),
		lexer.Percentage,
		lexer.Variable,
		lexer.Dimension,
		lexer.QuotedString,
		lexer.Exactly("/deep/"),
		lexer.Class(func(c byte) bool {
			switch c {
			case '*', '(', ')', '[', ']', '+', '~', '>', ',':
				return true
			}
			return false
		}),
		lexer.Binomial,
		lexer.BlockComment,
		digitsN,
		signedDigits,
		lexer.Number,
		parentRefName,
		lexer.Char('&'),
		lexer.Char('%'),
		lexer.AttributeMatcher,
		interpolants,
	)

	extensionTokens = lexer.Alternatives(
		lexer.TypeSelector,
		lexer.IDName,
		lexer.ClassName,
		lexer.Sequence(lexer.PseudoPrefix, lexer.Identifier),
		lexer.Percentage,
		lexer.Dimension,
		lexer.QuotedString,
		lexer.Class(func(c byte) bool {
			switch c {
			case '*', '(', ')', '[', ']', '+', '~', '>', ',':
				return true
			}
			return false
		}),
		lexer.Binomial,
		lexer.BlockComment,
		digitsN,
		signedDigits,
		lexer.Number,
		parentRefName,
		lexer.Char('&'),
		lexer.Char('%'),
		lexer.AttributeMatcher,
		interpolants,
		lexer.OptionalFlag,
	)

	valueTokens = lexer.Alternatives(
		lexer.Identifier,
		lexer.Percentage,
		lexer.Dimension,
		lexer.QuotedString,
		lexer.Variable,
		lexer.Class(func(c byte) bool {
			return c == '*' || c == '+' || c == '~' || c == '>' || c == ','
		}),
		lexer.Sequence(parenScope, lexer.Interpolant),
		lexer.Binomial,
		lexer.BlockComment,
		digitsN,
		signedDigits,
		lexer.Number,
		parentRefName,
		lexer.Char('&'),
		lexer.Char('%'),
		interpolants,
		lexer.OptionalFlag,
	)
)

// parenScope matches a balanced parenthesised run.
func parenScope(src string, pos int) int {
	if pos >= len(src) || src[pos] != '(' {
		return lexer.NoMatch
	}
	end := lexer.FindMatchingScope(src, pos+1, '(', ')')
	if end == lexer.NoMatch {
		return lexer.NoMatch
	}
	return end + 1
}

// scanAhead walks over tokens from pos. A lone `-` is accepted once some
// other token has been seen.
func (p *Parser) scanAhead(pos int, tokens lexer.Matcher) lookahead {
	var la lookahead
	la.end = pos
	saw := false
	for {
		at := p.skipped(la.end)
		next := tokens(p.src, at)
		if next == lexer.NoMatch && saw && at < len(p.src) && p.src[at] == '-' {
			next = at + 1
		}
		if next == lexer.NoMatch || next == at {
			break
		}
		if p.src[next-1] == '}' {
			la.interpolated = true
		}
		la.end = next
		saw = true
	}
	if !saw {
		la.end = pos
	}
	la.found = saw
	return la
}

// nextAfter returns the first character after la ends, or 0 at EOF.
func (p *Parser) nextAfter(la lookahead) byte {
	at := p.skipped(la.end)
	if at >= len(p.src) {
		return 0
	}
	return p.src[at]
}

// lookaheadSelector reports whether a selector followed by `{` starts at
// the current position.
func (p *Parser) lookaheadSelector() lookahead {
	la := p.scanAhead(p.pos, selectorTokens)
	la.found = la.found && p.nextAfter(la) == '{'
	return la
}

// lookaheadExtension scans an @extend target or a plain at-rule prelude.
func (p *Parser) lookaheadExtension() lookahead {
	la := p.scanAhead(p.pos, extensionTokens)
	switch p.nextAfter(la) {
	case ';', '}', '{':
	default:
		la.found = false
	}
	return la
}

// lookaheadValue scans a declaration or assignment value.
func (p *Parser) lookaheadValue() lookahead {
	la := p.scanAhead(p.pos, valueTokens)
	switch p.nextAfter(la) {
	case ';', '}', '{':
	default:
		la.found = false
	}
	return la
}
