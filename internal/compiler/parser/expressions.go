package parser

import (
	"strconv"
	"strings"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/lexer"
)

// SassScript, loosest binding first:
//
//	list     := space-list (',' space-list)*
//	space    := or+
//	or       := and ('or' and)*
//	and      := relation ('and' relation)*
//	relation := additive (relop additive)?
//	additive := term (('+' | '-') term)*
//	term     := factor (('*' | '/' | '%') factor)*

// word matches a case-sensitive keyword that ends at a name boundary.
func word(s string) lexer.Matcher {
	return lexer.Sequence(lexer.Exactly(s), lexer.Negate(lexer.Class(lexer.IsNameChar)))
}

func oneOf(chars string) lexer.Matcher {
	return lexer.Class(func(c byte) bool { return strings.IndexByte(chars, c) >= 0 })
}

var (
	unsignedNumber = lexer.Alternatives(
		lexer.Sequence(digits, lexer.Optional(lexer.Sequence(lexer.Char('.'), digits))),
		lexer.Sequence(lexer.Char('.'), digits),
	)

	commaListEnd  = lexer.Alternatives(oneOf(";}{)"), lexer.Ellipsis)
	commaListTail = lexer.Alternatives(oneOf(";}{):"), lexer.Ellipsis)
	spaceListEnd  = lexer.Alternatives(oneOf(";}{),:"), lexer.Ellipsis, lexer.Default, lexer.Global)

	relationalOp = lexer.Alternatives(
		lexer.Exactly("=="), lexer.Exactly("!="), lexer.Exactly(">="), lexer.Exactly("<="),
		lexer.Char('>'), lexer.Char('<'),
	)

	numberPrefix = lexer.Sequence(
		lexer.OnePlus(lexer.Class(func(c byte) bool { return c == '-' || c == '+' || lexer.IsSpace(c) })),
		lexer.Number,
	)

	namedArgument = lexer.Sequence(lexer.Variable, lexer.SpacesAndComments, lexer.Char(':'))

	calcFunction = lexer.Sequence(
		lexer.Alternatives(
			lexer.ExactlyFold("calc"), lexer.ExactlyFold("-moz-calc"),
			lexer.ExactlyFold("-webkit-calc"), lexer.ExactlyFold("-ms-calc"),
		),
		lexer.Lookahead(lexer.Char('(')),
	)

	ieProperty = lexer.Alternatives(
		lexer.Sequence(
			lexer.ExactlyFold("progid:"),
			lexer.ZeroPlus(lexer.Alternatives(lexer.Class(lexer.IsNameChar), lexer.Char('.'))),
			parenScope,
		),
		lexer.Sequence(lexer.ExactlyFold("expression"), parenScope),
	)

	ieKeywordArg = lexer.Sequence(
		lexer.Alternatives(lexer.Variable, identifierSchema, lexer.Identifier),
		lexer.OptionalSpaces,
		lexer.Char('='),
		lexer.Negate(lexer.Char('=')),
	)

	functionalSchema = lexer.Sequence(identifierSchema, lexer.Lookahead(lexer.Char('(')))

	// Literal text inside an interpolated value.
	schemaText = lexer.Alternatives(
		lexer.Identifier,
		lexer.Hyphens,
		lexer.Char('%'),
		lexer.Sequence(lexer.Char('!'), lexer.Identifier),
		lexer.IDName,
		oneOf(",/+*~>=:"),
	)
)

// identifierSchema matches a run of name characters glued to at least one
// interpolant, such as `col-#{$i}` or `#{$prefix}-box`.
func identifierSchema(src string, pos int) int {
	if pos >= len(src) {
		return lexer.NoMatch
	}
	if c := src[pos]; c != '-' && c != '#' && !lexer.IsNameStart(c) && c != '\\' {
		return lexer.NoMatch
	}
	return gluedSchema(src, pos, lexer.Class(lexer.IsNameChar))
}

// valueSchema is like identifierSchema but also lets numbers and `%` glue on.
func valueSchema(src string, pos int) int {
	return gluedSchema(src, pos, lexer.Alternatives(lexer.Class(lexer.IsNameChar), lexer.Char('%'), lexer.Char('.')))
}

func gluedSchema(src string, pos int, part lexer.Matcher) int {
	i, interpolated := pos, false
	for i < len(src) {
		if end := lexer.Interpolant(src, i); end != lexer.NoMatch {
			i, interpolated = end, true
			continue
		}
		if src[i] == '\\' && i+1 < len(src) {
			i += 2
			continue
		}
		if end := part(src, i); end != lexer.NoMatch && end > i {
			i = end
			continue
		}
		break
	}
	if !interpolated {
		return lexer.NoMatch
	}
	return i
}

// Delayed division

func (p *Parser) markDelayed(e ast.Expression) {
	p.delayed[e] = true
}

func (p *Parser) isDelayed(e ast.Expression) bool {
	if b, ok := e.(*ast.BinaryExpr); ok {
		return b.Policy == ast.Delayed
	}
	return p.delayed[e]
}

// undelay makes a slash inside e a real division.
func (p *Parser) undelay(e ast.Expression) {
	if b, ok := e.(*ast.BinaryExpr); ok && b.Policy == ast.Delayed {
		b.Policy = ast.Eager
	}
	delete(p.delayed, e)
}

// fold builds a left-leaning chain of binary expressions. A slash between
// two literals stays undivided.
func (p *Parser) fold(base ast.Expression, ops []ast.Operator, operands []ast.Expression) ast.Expression {
	for i, rhs := range operands {
		b := &ast.BinaryExpr{Op: ops[i], Left: base, Right: rhs, Loc: base.Location()}
		if ops[i] == ast.OpDiv && p.isDelayed(base) && p.isDelayed(rhs) {
			b.Policy = ast.Delayed
		} else {
			p.undelay(base)
			p.undelay(rhs)
		}
		base = b
	}
	return base
}

// Lists

func (p *Parser) parseList() ast.Expression {
	return p.parseCommaList()
}

func (p *Parser) parseCommaList() ast.Expression {
	loc := p.here()
	if p.atEnd() || p.peek(commaListEnd) != lexer.NoMatch {
		return &ast.List{Separator: ast.SpaceSeparator, Loc: loc}
	}
	first := p.parseSpaceList()
	if !p.peekChar(',') {
		return first
	}
	list := &ast.List{Elements: []ast.Expression{first}, Separator: ast.CommaSeparator, Loc: loc}
	for p.lex(lexer.Char(',')) {
		if p.atEnd() || p.peek(commaListTail) != lexer.NoMatch {
			break
		}
		list.Elements = append(list.Elements, p.parseSpaceList())
	}
	return list
}

func (p *Parser) spaceListEnds() bool {
	return p.atEnd() || p.peek(spaceListEnd) != lexer.NoMatch
}

func (p *Parser) parseSpaceList() ast.Expression {
	loc := p.here()
	first := p.parseDisjunction()
	if p.spaceListEnds() {
		return first
	}
	list := &ast.List{Elements: []ast.Expression{first}, Separator: ast.SpaceSeparator, Loc: loc}
	for !p.spaceListEnds() {
		list.Elements = append(list.Elements, p.parseDisjunction())
	}
	return list
}

// Operators

func (p *Parser) parseDisjunction() ast.Expression {
	lhs := p.parseConjunction()
	for p.lex(word("or")) {
		rhs := p.parseConjunction()
		lhs = &ast.BinaryExpr{Op: ast.OpOr, Left: lhs, Right: rhs, Loc: lhs.Location()}
	}
	return lhs
}

func (p *Parser) parseConjunction() ast.Expression {
	lhs := p.parseRelation()
	for p.lex(word("and")) {
		rhs := p.parseRelation()
		lhs = &ast.BinaryExpr{Op: ast.OpAnd, Left: lhs, Right: rhs, Loc: lhs.Location()}
	}
	return lhs
}

func (p *Parser) parseRelation() ast.Expression {
	lhs := p.parseExpression()
	if !p.lex(relationalOp) {
		return lhs
	}
	var op ast.Operator
	switch p.lexed {
	case "==":
		op = ast.OpEq
	case "!=":
		op = ast.OpNeq
	case ">=":
		op = ast.OpGte
	case "<=":
		op = ast.OpLte
	case ">":
		op = ast.OpGt
	default:
		op = ast.OpLt
	}
	rhs := p.parseExpression()
	return &ast.BinaryExpr{Op: op, Left: lhs, Right: rhs, Loc: lhs.Location()}
}

// atAdditive decides whether an upcoming `+` or `-` is an operator. `a -1`
// is a list of two values while `a - 1` and `a-1` subtract.
func (p *Parser) atAdditive() bool {
	at := p.skipped(p.pos)
	if at >= len(p.src) {
		return false
	}
	switch p.src[at] {
	case '+':
	case '-':
		glued := at == p.pos && at+1 < len(p.src) && !lexer.IsSpace(p.src[at+1])
		if !glued && unsignedNumber(p.src, at+1) != lexer.NoMatch {
			return false
		}
	default:
		return false
	}
	return lexer.Identifier(p.src, at) == lexer.NoMatch
}

func (p *Parser) parseExpression() ast.Expression {
	lhs := p.parseTerm()
	if !p.atAdditive() {
		return lhs
	}
	var ops []ast.Operator
	var operands []ast.Expression
	for {
		if p.lex(lexer.Char('+')) {
			ops = append(ops, ast.OpAdd)
		} else if p.lex(lexer.Char('-')) {
			ops = append(ops, ast.OpSub)
		} else {
			break
		}
		operands = append(operands, p.parseTerm())
	}
	return p.fold(lhs, ops, operands)
}

func (p *Parser) parseTerm() ast.Expression {
	lhs := p.parseFactor()
	var ops []ast.Operator
	var operands []ast.Expression
	for {
		if s, ok := lhs.(*ast.StringSchema); ok && len(s.Parts) > 0 && p.peekChar('%') {
			break
		}
		switch {
		case p.lex(lexer.Char('*')):
			ops = append(ops, ast.OpMul)
		case p.lex(lexer.Char('/')):
			ops = append(ops, ast.OpDiv)
		case p.lex(lexer.Char('%')):
			ops = append(ops, ast.OpMod)
		default:
			return p.fold(lhs, ops, operands)
		}
		operands = append(operands, p.parseFactor())
	}
	return p.fold(lhs, ops, operands)
}

// Factors

func (p *Parser) parseFactor() ast.Expression {
	loc := p.here()
	switch {
	case p.lex(lexer.Char('(')):
		value := p.parseMap()
		if !p.lex(lexer.Char(')')) {
			p.fail(errors.ErrUnterminated, "unclosed parenthesis")
		}
		p.undelay(value)
		switch v := value.(type) {
		case *ast.List:
			if len(v.Elements) > 0 {
				p.undelay(v.Elements[0])
			}
		case *ast.BinaryExpr:
			if l, ok := v.Left.(*ast.BinaryExpr); ok && l.Op == ast.OpDiv {
				p.undelay(l)
			}
		}
		return value

	case p.lex(ieProperty):
		return p.chunk(p.start, p.pos, 0)

	case p.peek(ieKeywordArg) != lexer.NoMatch:
		return p.parseIEKeywordArg()

	case p.peek(calcFunction) != lexer.NoMatch:
		return p.parseCalc()

	case p.lex(lexer.URL):
		return p.chunk(p.start, p.pos, 0)

	case p.peek(functionalSchema) != lexer.NoMatch:
		return p.parseFunctionalSchema()

	case p.peek(lexer.Sequence(identifierSchema, lexer.Negate(lexer.Char('%')))) != lexer.NoMatch:
		p.lex(identifierSchema)
		return p.chunk(p.start, p.pos, 0)

	case p.lex(lexer.FunctionalName):
		name := p.lexed
		return &ast.FunctionCall{Name: name, Args: p.parseArguments(name), Loc: loc}

	case p.lex(lexer.Sequence(lexer.Char('+'), lexer.OptionalSpaces, lexer.Negate(lexer.Number))):
		return &ast.UnaryExpr{Op: ast.UnaryPlus, Operand: p.parseFactor(), Loc: loc}

	case p.lex(lexer.Sequence(lexer.Char('-'), lexer.OptionalSpaces, lexer.Negate(lexer.Number))):
		return &ast.UnaryExpr{Op: ast.UnaryMinus, Operand: p.parseFactor(), Loc: loc}

	case p.lex(lexer.Sequence(word("not"), lexer.OptionalSpaces)):
		return &ast.UnaryExpr{Op: ast.UnaryNot, Operand: p.parseFactor(), Loc: loc}

	case p.peek(numberPrefix) != lexer.NoMatch:
		negative := false
		at := p.skipped(p.pos)
		for ; at < len(p.src); at++ {
			c := p.src[at]
			if c == '-' {
				negative = !negative
			} else if c != '+' && !lexer.IsSpace(c) {
				break
			}
		}
		p.pos = at
		value := p.parseValue()
		if !negative {
			return value
		}
		if n, ok := value.(*ast.Number); ok {
			n.Value = -n.Value
			n.Loc = loc
			return n
		}
		return &ast.UnaryExpr{Op: ast.UnaryMinus, Operand: value, Loc: loc}
	}
	return p.parseValue()
}

func (p *Parser) parseValue() ast.Expression {
	loc := p.here()
	switch {
	case p.lex(lexer.Char('&')):
		return &ast.ParentRef{Loc: loc}

	case p.lex(lexer.Important):
		return &ast.String{Value: "!important", Loc: loc}

	case p.peek(valueSchema) != lexer.NoMatch:
		end := p.peek(valueSchema)
		return p.parseValueSchema(end)

	case p.lex(word("true")):
		return &ast.Boolean{Value: true, Loc: loc}
	case p.lex(word("false")):
		return &ast.Boolean{Value: false, Loc: loc}
	case p.lex(word("null")):
		return &ast.Null{Loc: loc}

	case p.lex(lexer.Identifier):
		if c, ok := ast.ColorByName(loc, p.lexed); ok {
			return c
		}
		s := &ast.String{Value: p.lexed, Loc: loc}
		p.markDelayed(s)
		return s

	case p.lex(lexer.Percentage), p.lex(lexer.Dimension), p.lex(lexer.Number):
		n := p.number(loc, p.lexed)
		p.markDelayed(n)
		return n

	case p.lex(lexer.HexColor):
		c, _ := ast.ParseHexColor(loc, p.lexed)
		p.markDelayed(c)
		return c

	case p.lex(lexer.QuotedString):
		return p.parseQuoted(p.start, p.pos)

	case p.lex(lexer.Variable):
		return &ast.Variable{Name: normalize(p.lexed), Loc: loc}

	case p.lex(lexer.Sequence(lexer.Char('%'), lexer.Optional(lexer.Percentage))):
		return &ast.String{Value: p.lexed, Loc: loc}

	case p.lex(lexer.IDName):
		return &ast.String{Value: p.lexed, Loc: loc}
	}
	p.fail(errors.ErrInvalidExpression, "error reading values after %s", p.lexed)
	return nil
}

// number converts a numeric token with an optional unit.
func (p *Parser) number(loc ast.SourceLocation, text string) *ast.Number {
	end := lexer.Number(text, 0)
	v, err := strconv.ParseFloat(text[:end], 64)
	if err != nil {
		p.failLoc(loc, errors.ErrInvalidExpression, "invalid number %s", text)
	}
	n := ast.NewNumber(loc, v, text[end:])
	n.Zero = !strings.HasPrefix(text, ".") && !strings.HasPrefix(text, "-.") && !strings.HasPrefix(text, "+.")
	return n
}

func (p *Parser) parseQuoted(start, end int) ast.Expression {
	e := p.chunk(start+1, end-1, p.src[start])
	if s, ok := e.(*ast.String); ok {
		p.markDelayed(s)
	}
	return e
}

func (p *Parser) parseMap() ast.Expression {
	loc := p.here()
	key := p.parseList()
	if !p.lex(lexer.Char(':')) {
		return key
	}
	m := &ast.Map{Loc: loc}
	m.Append(key, p.parseSpaceList())
	for p.lex(lexer.Char(',')) {
		if p.peekChar(')') {
			break
		}
		key = p.parseSpaceList()
		if !p.lex(lexer.Char(':')) {
			p.fail(errors.ErrInvalidSyntax, "invalid syntax")
		}
		m.Append(key, p.parseSpaceList())
	}
	return m
}

// parseCalc keeps the inside of calc() as text so the browser sees it
// unchanged. Interpolants are still evaluated.
func (p *Parser) parseCalc() ast.Expression {
	loc := p.here()
	p.lex(calcFunction)
	name := p.lexed
	open := p.pos
	closing := lexer.FindMatchingScope(p.src, open+1, '(', ')')
	if closing == lexer.NoMatch {
		p.fail(errors.ErrUnterminated, "unclosed parenthesis in %s", name)
	}
	start, end := open+1, closing
	for start < end && lexer.IsSpace(p.src[start]) {
		start++
	}
	for end > start && lexer.IsSpace(p.src[end-1]) {
		end--
	}
	inner := p.chunk(start, end, 0)
	p.pos = closing + 1
	args := &ast.Arguments{Items: []*ast.Argument{{Value: inner, Loc: inner.Location()}}, Loc: loc}
	return &ast.FunctionCall{Name: name, Args: args, Loc: loc}
}

// parseIEKeywordArg reads the `opacity=50` of old IE filters.
func (p *Parser) parseIEKeywordArg() ast.Expression {
	loc := p.here()
	b := newSchemaBuilder(loc, 0)
	switch {
	case p.lex(lexer.Variable):
		b.expr(&ast.Variable{Name: normalize(p.lexed), Loc: loc})
	case p.lex(identifierSchema):
		b.add(p.chunk(p.start, p.pos, 0))
	default:
		p.lex(lexer.Identifier)
		b.text(p.lexed)
	}
	p.lex(lexer.Char('='))
	b.text("=")
	switch {
	case p.peek(lexer.Variable) != lexer.NoMatch:
		b.expr(p.parseList())
	case p.lex(identifierSchema):
		b.add(p.chunk(p.start, p.pos, 0))
	case p.lex(lexer.Alternatives(lexer.Identifier, lexer.Number, lexer.HexColor)):
		b.text(p.lexed)
	case p.lex(lexer.QuotedString):
		b.text(p.lexed)
	}
	return b.build()
}

// parseFunctionalSchema handles calls with an interpolated name. The call is
// not dispatched; it is rendered as text with its evaluated arguments.
func (p *Parser) parseFunctionalSchema() ast.Expression {
	loc := p.here()
	p.lex(identifierSchema)
	b := newSchemaBuilder(loc, 0)
	b.add(p.chunk(p.start, p.pos, 0))
	args := p.parseArguments(p.lexed)
	b.text("(")
	for i, arg := range args.Items {
		if i > 0 {
			b.text(", ")
		}
		if arg.Name != "" {
			b.text(arg.Name + ": ")
		}
		b.expr(arg.Value)
	}
	b.text(")")
	b.interpolated = true
	return b.build()
}

// parseValueSchema reads an interpolated value up to stop as one string.
func (p *Parser) parseValueSchema(stop int) ast.Expression {
	loc := p.here()
	if p.peekChar('}') {
		p.cssError("expression (e.g. 1px, bold)")
	}
	b := newSchemaBuilder(loc, 0)
	for p.pos < stop {
		at := p.skipped(p.pos)
		if at >= stop {
			p.pos = stop
			break
		}
		if at > p.pos {
			if len(b.parts) > 0 && strings.IndexFunc(p.src[p.pos:at], func(r rune) bool { return r < 0x80 && lexer.IsSpace(byte(r)) }) >= 0 {
				b.text(" ")
			}
			p.pos = at
		}
		tokenLoc := p.locAt(at)
		switch {
		case p.scan(lexer.Interpolant):
			b.expr(p.interpolant(p.start, p.pos))
		case p.scan(lexer.QuotedString):
			q := string(p.src[p.start])
			b.text(q)
			b.add(p.chunk(p.start+1, p.pos-1, 0))
			b.text(q)
		case p.scan(lexer.Percentage), p.scan(lexer.Dimension), p.scan(lexer.Number):
			b.expr(p.number(tokenLoc, p.lexed))
		case p.scan(lexer.HexColor):
			c, _ := ast.ParseHexColor(tokenLoc, p.lexed)
			b.expr(c)
		case p.scan(lexer.Variable):
			b.expr(&ast.Variable{Name: normalize(p.lexed), Loc: tokenLoc})
		case p.pos < len(p.src) && p.src[p.pos] == '(':
			b.expr(p.parseFactor())
		case p.scan(schemaText):
			b.text(p.lexed)
		default:
			p.fail(errors.ErrInvalidExpression, "error parsing interpolated value")
		}
	}
	return b.build()
}

// Strings

// chunk turns src[start:end] into a String, or a StringSchema when the text
// contains interpolants. quote is the delimiter the text was written with.
func (p *Parser) chunk(start, end int, quote byte) ast.Expression {
	b := newSchemaBuilder(p.locAt(start), quote)
	i := start
	for {
		rel := strings.Index(p.src[i:end], "#{")
		if rel < 0 {
			break
		}
		open := i + rel
		if open > start && p.src[open-1] == '\\' {
			b.text(unescape(p.src[i:open-1]+"#{", quote))
			i = open + 2
			continue
		}
		closing := lexer.FindMatchingScope(p.src[:end], open+2, '{', '}')
		if closing == lexer.NoMatch {
			p.failAt(open, errors.ErrUnterminated, "unterminated interpolant inside string constant %s", p.src[start:end])
		}
		b.text(unescape(p.src[i:open], quote))
		b.expr(p.interpolant(open, closing+1))
		i = closing + 1
	}
	b.text(unescape(p.src[i:end], quote))
	return b.build()
}

// interpolant parses the expression inside `#{...}` spanning src[start:end].
func (p *Parser) interpolant(start, end int) ast.Expression {
	if strings.TrimSpace(p.src[start+2:end-1]) == "" {
		p.pos = start + 2
		p.cssError("expression (e.g. 1px, bold)")
	}
	w := p.window(start+2, end-1)
	e := w.parseList()
	w.expectEnd("error reading values after %s")
	return e
}

// unescape drops the backslash in front of an escaped quote character.
func unescape(s string, quote byte) string {
	if quote == 0 || strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if s[i+1] == quote {
				sb.WriteByte(quote)
				i++
				continue
			}
			sb.WriteByte(s[i])
			sb.WriteByte(s[i+1])
			i++
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// schemaBuilder accumulates literal text and expressions into a string
// schema, merging adjacent text.
type schemaBuilder struct {
	parts        []ast.Expression
	quote        byte
	loc          ast.SourceLocation
	interpolated bool
}

func newSchemaBuilder(loc ast.SourceLocation, quote byte) *schemaBuilder {
	return &schemaBuilder{quote: quote, loc: loc}
}

func (b *schemaBuilder) text(s string) {
	if s == "" {
		return
	}
	if n := len(b.parts); n > 0 {
		if prev, ok := b.parts[n-1].(*ast.String); ok && prev.Quote == 0 {
			b.parts[n-1] = &ast.String{Value: prev.Value + s, Loc: prev.Loc}
			return
		}
	}
	b.parts = append(b.parts, &ast.String{Value: s, Loc: b.loc})
}

func (b *schemaBuilder) expr(e ast.Expression) {
	b.parts = append(b.parts, e)
	b.interpolated = true
}

// add appends e, splicing in the parts of a schema.
func (b *schemaBuilder) add(e ast.Expression) {
	switch v := e.(type) {
	case *ast.StringSchema:
		for _, part := range v.Parts {
			if s, ok := part.(*ast.String); ok && s.Quote == 0 {
				b.text(s.Value)
			} else {
				b.expr(part)
			}
		}
	case *ast.String:
		if v.Quote == 0 {
			b.text(v.Value)
			return
		}
		b.expr(v)
	default:
		b.expr(e)
	}
}

func (b *schemaBuilder) build() ast.Expression {
	if !b.interpolated {
		value := ""
		if len(b.parts) == 1 {
			value = b.parts[0].(*ast.String).Value
		}
		return &ast.String{Value: value, Quote: b.quote, Loc: b.loc}
	}
	return &ast.StringSchema{Parts: b.parts, Quote: b.quote, Loc: b.loc}
}

// Calls

func (p *Parser) parseArguments(name string) *ast.Arguments {
	args := &ast.Arguments{Loc: p.here()}
	if !p.lex(lexer.Char('(')) {
		return args
	}
	for !p.peekChar(')') {
		if p.atEnd() {
			break
		}
		arg := p.parseArgument(args)
		if err := args.Append(arg); err != nil {
			p.failLoc(arg.Loc, errors.ErrArgumentOrder, "%s", err.Error())
		}
		if !p.lex(lexer.Char(',')) {
			break
		}
	}
	if !p.lex(lexer.Char(')')) {
		p.fail(errors.ErrUnterminated, "unclosed parenthesis in argument list for %s", name)
	}
	return args
}

func (p *Parser) parseArgument(args *ast.Arguments) *ast.Argument {
	loc := p.here()
	if p.peek(namedArgument) != lexer.NoMatch {
		p.lex(lexer.Variable)
		name := normalize(p.lexed)
		p.lex(lexer.Char(':'))
		value := p.parseSpaceList()
		p.undelay(value)
		return &ast.Argument{Value: value, Name: name, Loc: loc}
	}
	value := p.parseSpaceList()
	p.undelay(value)
	arg := &ast.Argument{Value: value, Loc: loc}
	if p.lex(lexer.Ellipsis) {
		if _, isMap := value.(*ast.Map); isMap || args.HasRest {
			arg.IsKeyword = true
		} else {
			arg.IsRest = true
		}
	}
	return arg
}

func (p *Parser) parseParameters(name string) *ast.Parameters {
	params := &ast.Parameters{Loc: p.here()}
	if !p.lex(lexer.Char('(')) {
		return params
	}
	for !p.peekChar(')') {
		loc := p.here()
		if !p.lex(lexer.Variable) {
			p.fail(errors.ErrExpectedToken, "expected a variable name (e.g. $x) or ')' for the parameter list for %s", name)
		}
		param := &ast.Parameter{Name: normalize(p.lexed), Loc: loc}
		if p.lex(lexer.Char(':')) {
			param.Default = p.parseSpaceList()
			p.undelay(param.Default)
		} else if p.lex(lexer.Ellipsis) {
			param.IsRest = true
		}
		if err := params.Append(param); err != nil {
			p.failLoc(loc, errors.ErrParameterOrder, "%s", err.Error())
		}
		if !p.lex(lexer.Char(',')) {
			break
		}
	}
	if !p.lex(lexer.Char(')')) {
		p.fail(errors.ErrExpectedToken, "expected a variable name (e.g. $x) or ')' for the parameter list for %s", name)
	}
	return params
}
