package parser

import (
	"strings"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/lexer"
)

var (
	groupEnd    = oneOf("{});")
	complexEnd  = lexer.Alternatives(oneOf(",){};"), lexer.OptionalFlag)
	compoundEnd = lexer.Alternatives(oneOf("+~>,){};!"), lexer.Exactly("/*"))
	pseudoNot   = lexer.ExactlyFold(":not(")

	typeSelectorStart = lexer.Sequence(
		lexer.Negate(lexer.FunctionalName),
		lexer.Alternatives(
			lexer.TypeSelector, lexer.QuotedString, lexer.Dimension, lexer.Percentage, lexer.Number,
		),
	)
)

// parseSelectorGroup parses a comma separated selector list.
func (p *Parser) parseSelectorGroup() *ast.SelectorList {
	list := &ast.SelectorList{Loc: p.here()}
	lineBreak := false
	for !p.atEnd() && p.peek(groupEnd) == lexer.NoMatch {
		c := p.parseComplexSelector()
		c.HasLineBreak = lineBreak
		list.Items = append(list.Items, c)
		if !p.peekChar(',') {
			break
		}
		for p.lex(lexer.Char(',')) {
		}
		lineBreak = strings.Contains(p.src[p.pos:p.skipped(p.pos)], "\n")
	}
	for p.lex(lexer.OptionalFlag) {
		list.Optional = true
	}
	return list
}

func (p *Parser) parseComplexSelector() *ast.ComplexSelector {
	c := &ast.ComplexSelector{Loc: p.here()}
	if p.peek(lexer.Combinator) == lexer.NoMatch {
		c.Head = p.parseCompoundSelector()
	}
	switch {
	case p.lex(lexer.Char('+')):
		c.Combinator = ast.AdjacentTo
	case p.lex(lexer.Char('~')):
		c.Combinator = ast.Precedes
	case p.lex(lexer.Char('>')):
		c.Combinator = ast.ParentOf
	default:
		c.Combinator = ast.AncestorOf
	}
	if p.atEnd() || p.peek(complexEnd) != lexer.NoMatch {
		return c
	}
	c.Tail = p.parseComplexSelector()
	return c
}

func (p *Parser) compoundEnds() bool {
	if p.pos >= len(p.src) || lexer.IsSpace(p.src[p.pos]) {
		return true
	}
	return compoundEnd(p.src, p.pos) != lexer.NoMatch
}

func (p *Parser) parseCompoundSelector() *ast.CompoundSelector {
	p.pos = p.skipped(p.pos)
	c := &ast.CompoundSelector{Loc: p.here()}
	switch {
	case p.scan(lexer.Char('&')):
		ref := &ast.ParentSelector{Loc: p.locAt(p.start)}
		c.Items = append(c.Items, ref)
		if p.compoundEnds() {
			return c
		}
		if lexer.FunctionalName(p.src, p.pos) == lexer.NoMatch && p.scan(lexer.IdentifierAlnums) {
			ref.Suffix = p.lexed
		}
	case p.scan(typeSelectorStart):
		name := p.lexed
		if name[0] == '"' || name[0] == '\'' {
			name = name[1 : len(name)-1]
		}
		c.Items = append(c.Items, &ast.TypeSelector{Name: name, Loc: p.locAt(p.start)})
	default:
		c.Items = append(c.Items, p.parseSimpleSelector())
	}
	for !p.compoundEnds() {
		c.Items = append(c.Items, p.parseSimpleSelector())
	}
	c.HasLineBreak = strings.Contains(p.src[p.pos:p.skipped(p.pos)], "\n")
	return c
}

func (p *Parser) parseSimpleSelector() ast.SimpleSelector {
	loc := p.here()
	switch {
	case p.lex(lexer.Alternatives(lexer.IDName, lexer.ClassName)):
		return &ast.QualifierSelector{Name: p.lexed, Loc: loc}
	case p.lex(lexer.QuotedString):
		return &ast.TypeSelector{Name: p.lexed[1 : len(p.lexed)-1], Loc: loc}
	case p.lex(lexer.Alternatives(lexer.Number, lexer.Exactly("/deep/"))):
		return &ast.TypeSelector{Name: p.lexed, Loc: loc}
	case p.lex(pseudoNot):
		inner := p.parseSelectorGroup()
		if !p.lex(lexer.Char(')')) {
			p.fail(errors.ErrInvalidSelector, "negated selector is missing ')'")
		}
		return &ast.WrappedSelector{Name: ":not", Selector: inner, Loc: loc}
	case p.peekChar(':') || p.peek(lexer.FunctionalName) != lexer.NoMatch:
		return p.parsePseudoSelector()
	case p.peekChar('['):
		return p.parseAttributeSelector()
	case p.lex(lexer.Placeholder):
		return &ast.PlaceholderSelector{Name: p.lexed, Loc: loc}
	}
	p.fail(errors.ErrInvalidSelector, "invalid selector after %s", p.lexed)
	return nil
}

var (
	nthKeyword   = lexer.Alternatives(word("even"), word("odd"))
	closingParen = lexer.Sequence(lexer.SpacesAndComments, lexer.Char(')'))
)

func (p *Parser) parsePseudoSelector() ast.SimpleSelector {
	loc := p.here()
	if p.lex(lexer.Sequence(lexer.PseudoPrefix, lexer.FunctionalName, lexer.Char('('))) ||
		p.lex(lexer.Sequence(lexer.FunctionalName, lexer.Char('('))) {
		name := strings.TrimSuffix(p.lexed, "(")
		pseudo := &ast.PseudoSelector{Name: name, HasArg: true, Loc: loc}
		var wrapped *ast.SelectorList
		switch {
		case p.lex(nthKeyword):
			pseudo.Argument = p.lexed
		case p.peek(lexer.Sequence(lexer.Binomial, closingParen)) != lexer.NoMatch:
			p.lex(lexer.Binomial)
			pseudo.Argument = strings.Join(strings.Fields(p.lexed), "")
		case p.peek(lexer.Sequence(digitsN, closingParen)) != lexer.NoMatch:
			p.lex(digitsN)
			pseudo.Argument = p.lexed
		case p.peek(lexer.Sequence(signedDigits, closingParen)) != lexer.NoMatch:
			p.lex(signedDigits)
			pseudo.Argument = p.lexed
		case p.peek(lexer.Sequence(lexer.Identifier, closingParen)) != lexer.NoMatch:
			p.lex(lexer.Identifier)
			pseudo.Argument = p.lexed
		case p.lex(lexer.QuotedString):
			pseudo.Argument = p.lexed
		case p.peekChar(')'):
		default:
			wrapped = p.parseSelectorGroup()
		}
		if !p.lex(lexer.Char(')')) {
			p.fail(errors.ErrUnterminated, "unterminated argument to %s...)", name)
		}
		if wrapped != nil {
			return &ast.WrappedSelector{Name: name, Selector: wrapped, Loc: loc}
		}
		return pseudo
	}
	if p.lex(lexer.Sequence(lexer.PseudoPrefix, lexer.Identifier)) {
		return &ast.PseudoSelector{Name: p.lexed, Loc: loc}
	}
	p.fail(errors.ErrInvalidSelector, "unrecognized pseudo-class or pseudo-element")
	return nil
}

func (p *Parser) parseAttributeSelector() ast.SimpleSelector {
	loc := p.here()
	p.lex(lexer.Char('['))
	if !p.lex(lexer.TypeSelector) {
		p.fail(errors.ErrInvalidSelector, "invalid attribute name in attribute selector")
	}
	attr := &ast.AttributeSelector{Name: p.lexed, Loc: loc}
	if p.lex(lexer.Char(']')) {
		return attr
	}
	if !p.lex(lexer.AttributeMatcher) {
		p.fail(errors.ErrInvalidSelector, "invalid operator in attribute selector for %s", attr.Name)
	}
	attr.Matcher = p.lexed
	if !p.lex(lexer.Alternatives(lexer.Identifier, lexer.QuotedString)) {
		p.fail(errors.ErrInvalidSelector, "expected a string constant or identifier in attribute selector for %s", attr.Name)
	}
	attr.Value = p.lexed
	if !p.lex(lexer.Char(']')) {
		p.fail(errors.ErrUnterminated, "unterminated attribute selector for %s", attr.Name)
	}
	return attr
}

// parseSelectorSchema keeps an interpolated selector as text to be parsed
// again once the interpolants are evaluated.
func (p *Parser) parseSelectorSchema(end int) *ast.SelectorSchema {
	start := p.skipped(p.pos)
	loc := p.locAt(start)
	for end > start && lexer.IsSpace(p.src[end-1]) {
		end--
	}
	contents := p.chunk(start, end, 0)
	p.pos = end
	return &ast.SelectorSchema{Contents: contents, Loc: loc}
}
