package parser

import (
	"strings"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/lexer"
)

var (
	semicolons = lexer.OnePlus(lexer.Char(';'))
	elseIf     = lexer.Sequence(lexer.Exactly("@else"), lexer.SpacesAndComments, word("if"))

	declarationAhead = lexer.Sequence(
		lexer.Alternatives(identifierSchema, lexer.Identifier),
		lexer.SpacesAndComments,
		lexer.Char(':'),
	)
)

// parseComments turns the block comments in front of the next statement into
// Comment nodes. Line comments are dropped.
func (p *Parser) parseComments(block *ast.Block) {
	for {
		p.pos = spacesAndLineComments(p.src, p.pos)
		if !strings.HasPrefix(p.src[p.pos:], "/*") {
			return
		}
		end := lexer.BlockComment(p.src, p.pos)
		if end == lexer.NoMatch {
			p.failAt(p.pos, errors.ErrUnterminated, "unterminated comment")
		}
		block.Append(&ast.Comment{
			Text:      p.chunk(p.pos, end, 0),
			Important: p.src[p.pos+2] == '!',
			Loc:       p.locAt(p.pos),
		})
		p.pos = end
	}
}

// parseStatements fills block until EOF (root) or the closing brace, which
// is left for the caller.
func (p *Parser) parseStatements(block *ast.Block, root bool) {
	for {
		p.parseComments(block)
		if p.pos >= len(p.src) {
			if root {
				return
			}
			p.cssError(`"}"`)
		}
		if !root && p.src[p.pos] == '}' {
			return
		}
		if p.lex(semicolons) {
			continue
		}
		msg := p.parseStatement(block, root)
		if msg == "" || p.lex(semicolons) {
			continue
		}
		if root && p.atEnd() || !root && p.peekChar('}') {
			continue
		}
		if !root {
			msg = "non-terminal statement or declaration must end with ';'"
		}
		p.fail(errors.ErrMissingSemicolon, "%s", msg)
	}
}

func (p *Parser) parseBlock() *ast.Block {
	if !p.lex(lexer.Char('{')) {
		p.cssError(`"{"`)
	}
	block := &ast.Block{Loc: p.locAt(p.start)}
	p.parseStatements(block, false)
	p.lex(lexer.Char('}'))
	return block
}

// parseStatement parses one statement into block. It returns the message to
// report when the statement needs a terminating `;` and none follows.
func (p *Parser) parseStatement(block *ast.Block, root bool) string {
	loc := p.here()
	switch {
	case p.lex(word("@import")):
		if len(p.defs) > 0 {
			p.failLoc(loc, errors.ErrInvalidNesting, "@import directives are not allowed inside mixins and functions")
		}
		block.Append(p.parseImport(loc))
		return "top-level @import directive must be terminated by ';'"

	case p.peek(lexer.Variable) != lexer.NoMatch:
		block.Append(p.parseAssignment())
		return "top-level variable binding must be terminated by ';'"

	case p.lex(word("@if")):
		block.Append(p.parseIf(loc))
		return ""
	case p.lex(word("@for")):
		block.Append(p.parseFor(loc))
		return ""
	case p.lex(word("@each")):
		block.Append(p.parseEach(loc))
		return ""
	case p.lex(word("@while")):
		block.Append(p.parseWhile(loc))
		return ""

	case p.lex(word("@return")):
		if !p.inDefinition(ast.FunctionDefinition) {
			p.failLoc(loc, errors.ErrInvalidNesting, "@return may only be used within a function")
		}
		value := p.parseList()
		p.undelay(value)
		block.Append(&ast.Return{Value: value, Loc: loc})
		return "@return directive must be terminated by ';'"

	case p.lex(lexer.Alternatives(word("@warn"), word("@error"), word("@debug"))):
		keyword := p.lexed
		value := p.parseList()
		p.undelay(value)
		switch keyword {
		case "@warn":
			block.Append(&ast.Warning{Message: value, Loc: loc})
		case "@error":
			block.Append(&ast.Error{Message: value, Loc: loc})
		default:
			block.Append(&ast.Debug{Value: value, Loc: loc})
		}
		return "top-level " + keyword + " directive must be terminated by ';'"

	case p.inDefinition(ast.FunctionDefinition):
		p.failLoc(loc, errors.ErrInvalidNesting, "only variable declarations and control directives are allowed inside functions")

	case p.lex(word("@mixin")):
		block.Append(p.parseDefinition(ast.MixinDefinition, loc))
		return ""
	case p.lex(word("@function")):
		block.Append(p.parseDefinition(ast.FunctionDefinition, loc))
		return ""

	case p.lex(word("@include")):
		call := p.parseInclude(loc)
		block.Append(call)
		if call.Content != nil {
			return ""
		}
		return "top-level @include directive must be terminated by ';'"

	case p.lex(word("@content")):
		if !p.inDefinition(ast.MixinDefinition) {
			p.failLoc(loc, errors.ErrInvalidNesting, "@content may only be used within a mixin")
		}
		block.Append(&ast.Content{Loc: loc})
		return "top-level @content directive must be terminated by ';'"

	case p.lex(word("@extend")):
		la := p.lookaheadExtension()
		if !la.found {
			p.failLoc(loc, errors.ErrInvalidSelector, "invalid selector for @extend")
		}
		var sel ast.Selector
		if la.interpolated {
			sel = p.parseSelectorSchema(la.end)
		} else {
			sel = p.parseSelectorGroup()
		}
		block.Append(&ast.Extension{Selector: sel, Loc: loc})
		return "top-level @extend directive must be terminated by ';'"

	case p.lex(word("@media")):
		query := p.parseMediaQueries()
		if !p.peekChar('{') {
			p.fail(errors.ErrExpectedToken, "expected '{' in media query")
		}
		block.Append(&ast.MediaBlock{Query: query, Block: p.parseBlock(), Loc: loc})
		return ""

	case p.lex(word("@supports")):
		block.Append(p.parseSupports(loc))
		return ""

	case p.lex(word("@at-root")):
		block.Append(p.parseAtRoot(loc))
		return ""

	case p.lex(word("@charset")):
		p.lex(lexer.QuotedString)
		return "top-level @charset directive must be terminated by ';'"

	case p.peek(lexer.AtKeyword) != lexer.NoMatch:
		rule := p.parseAtRule(loc)
		block.Append(rule)
		if rule.Block != nil {
			return ""
		}
		return "top-level directive must be terminated by ';'"
	}

	if la := p.lookaheadSelector(); la.found {
		block.Append(p.parseRuleset(la, loc))
		return ""
	}
	if root {
		p.fail(errors.ErrInvalidSyntax, "invalid top-level expression")
	}
	return p.parseDeclaration(block)
}

// Rules and declarations

func (p *Parser) parseRuleset(la lookahead, loc ast.SourceLocation) ast.Statement {
	if p.inKeyframes() {
		start := p.skipped(p.pos)
		sel := p.chunk(start, la.end, 0)
		p.pos = la.end
		p.keyframe = append(p.keyframe, false)
		block := p.parseBlock()
		p.keyframe = p.keyframe[:len(p.keyframe)-1]
		return &ast.KeyframeRule{Selector: sel, Block: block, Loc: loc}
	}

	var sel ast.Selector
	if la.interpolated {
		sel = p.parseSelectorSchema(la.end)
	} else {
		sel = p.parseSelectorGroup()
	}
	if !p.peekChar('{') {
		p.fail(errors.ErrInvalidSelector, "expected a '{' after the selector")
	}
	p.keyframe = append(p.keyframe, false)
	block := p.parseBlock()
	p.keyframe = p.keyframe[:len(p.keyframe)-1]
	return &ast.Ruleset{Selector: sel, Block: block, Loc: loc}
}

func (p *Parser) parseDeclaration(block *ast.Block) string {
	loc := p.here()
	var prop ast.Expression
	switch {
	case p.lex(lexer.Sequence(lexer.Optional(lexer.Char('*')), identifierSchema)):
		prop = p.chunk(p.start, p.pos, 0)
	case p.lex(lexer.Sequence(lexer.Optional(lexer.Char('*')), lexer.Identifier)):
		prop = &ast.String{Value: p.lexed, Loc: loc}
	default:
		p.fail(errors.ErrInvalidSyntax, "invalid property name")
	}
	name := p.lexed
	if !p.lex(lexer.OnePlus(lexer.Char(':'))) {
		p.fail(errors.ErrExpectedToken, "property \"%s\" must be followed by a ':'", name)
	}
	if p.peekChar(';') {
		p.fail(errors.ErrInvalidExpression, "style declaration must contain a value")
	}

	decl := &ast.Declaration{Property: prop, Loc: loc}
	la := p.lookaheadValue()
	if la.found && la.interpolated {
		decl.Value = p.parseValueSchema(la.end)
	} else {
		decl.Value = p.parseList()
		if !la.found && isEmptyList(decl.Value) && !p.peekChar('{') {
			p.cssError("expression (e.g. 1px, bold)")
		}
	}
	stripImportant(decl)

	if !isEmptyList(decl.Value) {
		block.Append(decl)
	}
	if p.peekChar('{') {
		block.Append(&ast.Propset{Property: prop, Block: p.parseBlock(), Loc: loc})
		return ""
	}
	return "non-terminal statement or declaration must end with ';'"
}

func isEmptyList(e ast.Expression) bool {
	l, ok := e.(*ast.List)
	return ok && len(l.Elements) == 0
}

// stripImportant moves a trailing `!important` off a space separated value
// onto the declaration.
func stripImportant(decl *ast.Declaration) {
	if s, ok := decl.Value.(*ast.String); ok && s.Quote == 0 && s.Value == "!important" {
		decl.Important = true
		decl.Value = &ast.List{Separator: ast.SpaceSeparator, Loc: s.Loc}
		return
	}
	l, ok := decl.Value.(*ast.List)
	if !ok || l.Separator != ast.SpaceSeparator || len(l.Elements) < 2 {
		return
	}
	last, ok := l.Elements[len(l.Elements)-1].(*ast.String)
	if !ok || last.Quote != 0 || last.Value != "!important" {
		return
	}
	decl.Important = true
	l.Elements = l.Elements[:len(l.Elements)-1]
	if len(l.Elements) == 1 {
		decl.Value = l.Elements[0]
	}
}

func (p *Parser) parseAssignment() *ast.Assignment {
	loc := p.here()
	p.lex(lexer.Variable)
	name := normalize(p.lexed)
	if !p.lex(lexer.Char(':')) {
		p.fail(errors.ErrExpectedToken, "expected ':' after %s in assignment statement", name)
	}
	var value ast.Expression
	if la := p.lookaheadValue(); la.found && la.interpolated {
		value = p.parseValueSchema(la.end)
	} else {
		value = p.parseList()
	}
	p.undelay(value)
	a := &ast.Assignment{Name: name, Value: value, Loc: loc}
	for {
		if p.lex(lexer.Default) {
			a.IsDefault = true
		} else if p.lex(lexer.Global) {
			a.IsGlobal = true
		} else {
			return a
		}
	}
}

// Definitions and calls

func (p *Parser) parseDefinition(kind ast.DefinitionKind, loc ast.SourceLocation) *ast.Definition {
	keyword, noun := "@mixin", "mixin"
	if kind == ast.FunctionDefinition {
		keyword, noun = "@function", "function"
	}
	if !p.lex(lexer.Identifier) {
		p.fail(errors.ErrInvalidSyntax, "invalid name in %s definition", keyword)
	}
	name := normalize(p.lexed)
	if kind == ast.FunctionDefinition && (name == "and" || name == "or" || name == "not") {
		p.failAt(p.start, errors.ErrInvalidSyntax, "Invalid function name \"%s\".", name)
	}
	params := p.parseParameters(name)
	if !p.peekChar('{') {
		p.fail(errors.ErrExpectedToken, "body for %s %s must begin with a '{'", noun, name)
	}
	p.pushDef(kind)
	body := p.parseBlock()
	p.popDef()
	return &ast.Definition{Name: name, Params: params, Body: body, Kind: kind, Loc: loc}
}

func (p *Parser) parseInclude(loc ast.SourceLocation) *ast.MixinCall {
	if !p.lex(lexer.Identifier) {
		p.fail(errors.ErrInvalidSyntax, "invalid name in @include directive")
	}
	name := normalize(p.lexed)
	call := &ast.MixinCall{Name: name, Args: p.parseArguments(name), Loc: loc}
	if p.peekChar('{') {
		call.Content = p.parseBlock()
	}
	return call
}

// Control directives

func (p *Parser) parseIf(loc ast.SourceLocation) *ast.If {
	predicate := p.parseList()
	p.undelay(predicate)
	if !p.peekChar('{') {
		p.fail(errors.ErrExpectedToken, "expected '{' after the predicate for @if")
	}
	n := &ast.If{Predicate: predicate, Consequent: p.parseBlock(), Loc: loc}
	switch {
	case p.lex(elseIf):
		elseLoc := p.locAt(p.start)
		n.Alternative = &ast.Block{Statements: []ast.Statement{p.parseIf(elseLoc)}, Loc: elseLoc}
	case p.lex(word("@else")):
		if !p.peekChar('{') {
			p.fail(errors.ErrExpectedToken, "expected '{' after @else")
		}
		n.Alternative = p.parseBlock()
	}
	return n
}

func (p *Parser) parseFor(loc ast.SourceLocation) *ast.For {
	if !p.lex(lexer.Variable) {
		p.fail(errors.ErrExpectedToken, "@for directive requires an iteration variable")
	}
	n := &ast.For{Variable: normalize(p.lexed), Loc: loc}
	if !p.lex(word("from")) {
		p.fail(errors.ErrExpectedToken, "expected 'from' keyword in @for directive")
	}
	n.Lower = p.parseExpression()
	p.undelay(n.Lower)
	switch {
	case p.lex(word("through")):
		n.Inclusive = true
	case p.lex(word("to")):
	default:
		p.fail(errors.ErrExpectedToken, "expected 'through' or 'to' keyword in @for directive")
	}
	n.Upper = p.parseExpression()
	p.undelay(n.Upper)
	if !p.peekChar('{') {
		p.fail(errors.ErrExpectedToken, "expected '{' after the upper bound in @for directive")
	}
	n.Body = p.parseBlock()
	return n
}

func (p *Parser) parseEach(loc ast.SourceLocation) *ast.Each {
	n := &ast.Each{Loc: loc}
	for {
		if !p.lex(lexer.Variable) {
			p.fail(errors.ErrExpectedToken, "@each directive requires an iteration variable")
		}
		n.Variables = append(n.Variables, normalize(p.lexed))
		if !p.lex(lexer.Char(',')) {
			break
		}
	}
	if !p.lex(word("in")) {
		p.fail(errors.ErrExpectedToken, "expected 'in' keyword in @each directive")
	}
	n.List = p.parseList()
	p.undelay(n.List)
	if l, ok := n.List.(*ast.List); ok {
		for _, e := range l.Elements {
			p.undelay(e)
		}
	}
	if !p.peekChar('{') {
		p.fail(errors.ErrExpectedToken, "expected '{' after the upper bound in @each directive")
	}
	n.Body = p.parseBlock()
	return n
}

func (p *Parser) parseWhile(loc ast.SourceLocation) *ast.While {
	predicate := p.parseList()
	p.undelay(predicate)
	if !p.peekChar('{') {
		p.fail(errors.ErrExpectedToken, "expected '{' after the predicate for @while")
	}
	return &ast.While{Predicate: predicate, Body: p.parseBlock(), Loc: loc}
}

// Directives

// parseMediaQueries reads a comma separated list of media queries. Each
// query is kept as an interpolated string.
func (p *Parser) parseMediaQueries() ast.Expression {
	list := &ast.List{Separator: ast.CommaSeparator, Loc: p.here()}
	for {
		list.Elements = append(list.Elements, p.parseMediaQuery())
		if !p.lex(lexer.Char(',')) {
			return list
		}
	}
}

func (p *Parser) parseMediaQuery() ast.Expression {
	b := newSchemaBuilder(p.here(), 0)
	if p.lex(lexer.Keyword("not")) {
		b.text("not ")
	} else if p.lex(lexer.Keyword("only")) {
		b.text("only ")
	}
	switch {
	case p.lex(identifierSchema):
		b.add(p.chunk(p.start, p.pos, 0))
	case p.lex(lexer.Identifier):
		b.text(p.lexed)
	case p.lex(lexer.Variable):
		b.expr(&ast.Variable{Name: normalize(p.lexed), Loc: p.locAt(p.start)})
	default:
		p.parseMediaExpression(b)
	}
	for p.lex(lexer.Keyword("and")) {
		b.text(" and ")
		p.parseMediaExpression(b)
	}
	if p.lex(identifierSchema) {
		b.text(" ")
		b.add(p.chunk(p.start, p.pos, 0))
	}
	for p.lex(lexer.Keyword("and")) {
		b.text(" and ")
		p.parseMediaExpression(b)
	}
	return b.build()
}

func (p *Parser) parseMediaExpression(b *schemaBuilder) {
	if p.lex(identifierSchema) {
		b.add(p.chunk(p.start, p.pos, 0))
		return
	}
	if !p.lex(lexer.Char('(')) {
		p.fail(errors.ErrExpectedToken, "media query expression must begin with '('")
	}
	if p.peekChar(')') {
		p.fail(errors.ErrExpectedToken, "media feature required in media query expression")
	}
	b.text("(")
	feature := p.parseExpression()
	p.undelay(feature)
	b.add(feature)
	if p.lex(lexer.Char(':')) {
		b.text(": ")
		b.add(p.parseList())
	}
	if !p.lex(lexer.Char(')')) {
		p.fail(errors.ErrUnterminated, "unclosed parenthesis in media query expression")
	}
	b.text(")")
}

func (p *Parser) parseSupports(loc ast.SourceLocation) *ast.SupportsBlock {
	b := newSchemaBuilder(p.here(), 0)
	p.parseSupportsCondition(b)
	if len(b.parts) == 0 {
		p.fail(errors.ErrExpectedToken, "expected @supports condition (e.g. (display: flexbox))")
	}
	if !p.peekChar('{') {
		p.fail(errors.ErrExpectedToken, "expected '{' in feature query")
	}
	return &ast.SupportsBlock{Condition: b.build(), Block: p.parseBlock(), Loc: loc}
}

var supportsOperator = lexer.Alternatives(lexer.Keyword("not"), lexer.Keyword("and"), lexer.Keyword("or"))

func (p *Parser) parseSupportsCondition(b *schemaBuilder) {
	for n := 0; ; n++ {
		if n > 0 && (p.peek(supportsOperator) != lexer.NoMatch || p.peekChar('(') || p.peek(lexer.Interpolant) != lexer.NoMatch) {
			b.text(" ")
		}
		switch {
		case p.lex(supportsOperator):
			b.text(strings.ToLower(p.lexed))
		case p.lex(lexer.Char('(')):
			b.text("(")
			if p.peek(declarationAhead) != lexer.NoMatch {
				if p.lex(identifierSchema) {
					b.add(p.chunk(p.start, p.pos, 0))
				} else {
					p.lex(lexer.Identifier)
					b.text(p.lexed)
				}
				p.lex(lexer.Char(':'))
				b.text(": ")
				b.add(p.parseList())
			} else {
				p.parseSupportsCondition(b)
			}
			if !p.lex(lexer.Char(')')) {
				p.fail(errors.ErrUnterminated, "unclosed parenthesis in @supports declaration")
			}
			b.text(")")
		case p.lex(lexer.Interpolant):
			b.expr(p.interpolant(p.start, p.pos))
		default:
			return
		}
	}
}

func (p *Parser) parseAtRoot(loc ast.SourceLocation) *ast.AtRootBlock {
	n := &ast.AtRootBlock{Loc: loc}
	if p.lex(lexer.Char('(')) {
		n.Query = p.parseAtRootQuery()
	}
	if p.peekChar('{') {
		n.Block = p.parseBlock()
		return n
	}
	la := p.lookaheadSelector()
	if !la.found {
		p.cssError(`"{"`)
	}
	inner := p.here()
	n.Block = &ast.Block{Statements: []ast.Statement{p.parseRuleset(la, inner)}, Loc: inner}
	return n
}

func (p *Parser) parseAtRootQuery() *ast.AtRootQuery {
	if p.peekChar(')') {
		p.fail(errors.ErrExpectedToken, "at-root feature required in at-root expression")
	}
	if !p.lex(lexer.Alternatives(lexer.Keyword("with"), lexer.Keyword("without"))) {
		p.cssError(`"with" or "without"`)
	}
	keyword := strings.ToLower(p.lexed)
	q := &ast.AtRootQuery{With: keyword == "with"}
	if !p.lex(lexer.Char(':')) {
		p.fail(errors.ErrExpectedToken, "property \"%s\" must be followed by a ':'", keyword)
	}
	for {
		if p.lex(lexer.Identifier) {
			q.Features = append(q.Features, strings.ToLower(p.lexed))
		} else if p.lex(lexer.QuotedString) {
			q.Features = append(q.Features, strings.ToLower(p.lexed[1:len(p.lexed)-1]))
		} else {
			break
		}
	}
	if len(q.Features) == 0 {
		p.fail(errors.ErrExpectedToken, "at-root feature required in at-root expression")
	}
	if !p.lex(lexer.Char(')')) {
		p.fail(errors.ErrUnterminated, "unclosed parenthesis in @at-root expression")
	}
	return q
}

// parseAtRule handles directives the compiler does not interpret. The
// prelude is kept as text when it reads like a selector.
func (p *Parser) parseAtRule(loc ast.SourceLocation) *ast.AtRule {
	p.lex(lexer.AtKeyword)
	rule := &ast.AtRule{Keyword: p.lexed, Loc: loc}
	if la := p.lookaheadExtension(); la.found {
		rule.Value = p.chunk(p.skipped(p.pos), la.end, 0)
		p.pos = la.end
	} else if !p.atEnd() && !p.peekChar('{') && !p.peekChar('}') && !p.peekChar(';') {
		rule.Value = p.parseList()
	}
	if p.peekChar('{') {
		p.keyframe = append(p.keyframe, rule.IsKeyframes())
		rule.Block = p.parseBlock()
		p.keyframe = p.keyframe[:len(p.keyframe)-1]
	}
	return rule
}

// Imports

type importEntry struct {
	start, end int            // span of a quoted path
	url        ast.Expression // set for url(...) entries
	loc        ast.SourceLocation
}

func (p *Parser) parseImport(loc ast.SourceLocation) *ast.Import {
	imp := &ast.Import{Loc: loc}
	var entries []importEntry
	for {
		at := p.here()
		switch {
		case p.lex(lexer.QuotedString):
			entries = append(entries, importEntry{start: p.start, end: p.pos, loc: at})
		case p.peek(lexer.ExactlyFold("url(")) != lexer.NoMatch:
			entries = append(entries, importEntry{url: p.parseImportURL(), loc: at})
		case len(entries) == 0:
			p.fail(errors.ErrExpectedToken, "@import directive requires a url or quoted path")
		default:
			p.fail(errors.ErrExpectedToken, "expecting another url or quoted path in @import list")
		}
		if !p.lex(lexer.Char(',')) {
			break
		}
	}

	if !p.atEnd() && !p.peekChar(';') && !p.peekChar('}') {
		imp.Media = p.parseMediaQueries()
		for _, e := range entries {
			if e.url != nil {
				imp.URLs = append(imp.URLs, e.url)
			} else {
				imp.URLs = append(imp.URLs, p.chunk(e.start+1, e.end-1, p.src[e.start]))
			}
		}
		return imp
	}

	for _, e := range entries {
		if e.url != nil {
			imp.URLs = append(imp.URLs, e.url)
			continue
		}
		quote := p.src[e.start]
		inner := p.src[e.start+1 : e.end-1]
		switch {
		case strings.Contains(inner, "#{") || isRemote(inner):
			imp.URLs = append(imp.URLs, p.chunk(e.start+1, e.end-1, quote))
		case strings.HasSuffix(inner, ".css"):
			arg := &ast.String{Value: unescape(inner, quote), Loc: e.loc}
			imp.URLs = append(imp.URLs, &ast.FunctionCall{
				Name: "url",
				Args: &ast.Arguments{Items: []*ast.Argument{{Value: arg, Loc: e.loc}}, Loc: e.loc},
				Loc:  e.loc,
			})
		case p.resolver == nil:
			imp.Files = append(imp.Files, unescape(inner, quote))
		default:
			name := unescape(inner, quote)
			resolved, ok := p.resolver.Resolve(name, p.path)
			if !ok {
				p.failLoc(e.loc, errors.ErrImportNotFound, "file to import not found or unreadable: %s\nCurrent dir: %s", name, currentDir(p.path))
			}
			imp.Files = append(imp.Files, resolved)
		}
	}
	return imp
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "//")
}

func (p *Parser) parseImportURL() ast.Expression {
	loc := p.here()
	if p.lex(lexer.URL) {
		return p.chunk(p.start, p.pos, 0)
	}
	p.lex(lexer.ExactlyFold("url("))
	if !p.lex(lexer.QuotedString) {
		p.fail(errors.ErrInvalidSyntax, "malformed URL")
	}
	arg := p.parseQuoted(p.start, p.pos)
	p.undelay(arg)
	if !p.lex(lexer.Char(')')) {
		p.fail(errors.ErrUnterminated, "URI is missing ')'")
	}
	return &ast.FunctionCall{
		Name: "url",
		Args: &ast.Arguments{Items: []*ast.Argument{{Value: arg, Loc: loc}}, Loc: loc},
		Loc:  loc,
	}
}
