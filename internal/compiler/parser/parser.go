// Package parser builds the AST of an SCSS stylesheet by recursive descent.
//
// The parser works directly on the source text with the matchers from the
// lexer package. Where the grammar is ambiguous (a selector versus a
// declaration, a plain value versus one with interpolation) it scans ahead
// without consuming anything and only then commits to a production.
package parser

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
	"github.com/conduit-lang/gosass/internal/compiler/lexer"
)

// Resolver locates the stylesheet an @import refers to. from is the path of
// the importing file.
type Resolver interface {
	Resolve(requested, from string) (string, bool)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(requested, from string) (string, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(requested, from string) (string, bool) {
	return f(requested, from)
}

// Parser holds the state of a single parse. When parsing the inside of an
// interpolant, src is cut off at the closing brace but offsets stay relative
// to the whole file.
type Parser struct {
	src      string
	path     string
	pos      int
	start    int    // offset of the last lexed token
	lexed    string // text of the last lexed token
	lines    []int  // offsets of line starts
	fixed    *ast.SourceLocation
	defs     []ast.DefinitionKind
	keyframe []bool
	resolver Resolver

	// delayed holds the literals a `/` between them leaves undivided.
	// Binary expressions carry the flag in their Policy instead.
	delayed map[ast.Expression]bool
}

func newParser(source, path string, resolver Resolver) *Parser {
	lines := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Parser{
		src:      source,
		path:     path,
		lines:    lines,
		resolver: resolver,
		delayed:  make(map[ast.Expression]bool),
	}
}

// Parse parses an SCSS stylesheet and returns its root block. Imports are
// resolved through resolver; with a nil resolver the requested names are
// kept as written.
func Parse(source, path string, resolver Resolver) (block *ast.Block, err error) {
	p := newParser(source, path, resolver)
	defer p.recover(&err)
	return p.parseRoot(), nil
}

// ParseSelector parses selector text, typically the result of evaluating an
// interpolated selector. Every node reports loc as its position.
func ParseSelector(source string, loc ast.SourceLocation) (list *ast.SelectorList, err error) {
	p := newParser(source, loc.Path, nil)
	p.fixed = &loc
	defer p.recover(&err)
	list = p.parseSelectorGroup()
	p.expectEnd("invalid selector after %s")
	return list, nil
}

// ParseExpression parses a complete SassScript expression.
func ParseExpression(source string, loc ast.SourceLocation) (expr ast.Expression, err error) {
	p := newParser(source, loc.Path, nil)
	p.fixed = &loc
	defer p.recover(&err)
	expr = p.parseList()
	p.undelay(expr)
	p.expectEnd("error reading values after %s")
	return expr, nil
}

// ParseSignature parses a function signature such as `rgba($color, $alpha)`
// into the function name and its parameters.
func ParseSignature(signature string) (name string, params *ast.Parameters, err error) {
	p := newParser(signature, "[built-in function]", nil)
	p.fixed = &ast.SourceLocation{Path: "[built-in function]"}
	defer p.recover(&err)
	if !p.lex(lexer.Identifier) {
		p.fail(errors.ErrInvalidSyntax, "invalid function signature %q", signature)
	}
	name = normalize(p.lexed)
	params = p.parseParameters(name)
	p.expectEnd("invalid function signature after %s")
	return name, params, nil
}

func (p *Parser) recover(errp *error) {
	if r := recover(); r != nil {
		e, ok := r.(*errors.CompilerError)
		if !ok {
			panic(r)
		}
		*errp = e
	}
}

// window returns a parser over src[start:end] that shares the position
// tables of p.
func (p *Parser) window(start, end int) *Parser {
	return &Parser{
		src:      p.src[:end],
		path:     p.path,
		pos:      start,
		start:    start,
		lines:    p.lines,
		fixed:    p.fixed,
		defs:     p.defs,
		keyframe: p.keyframe,
		resolver: p.resolver,
		delayed:  p.delayed,
	}
}

// Positions

func (p *Parser) locAt(offset int) ast.SourceLocation {
	if p.fixed != nil {
		return *p.fixed
	}
	line := sort.SearchInts(p.lines, offset+1) - 1
	return ast.SourceLocation{Path: p.path, Line: line, Column: offset - p.lines[line], Offset: offset}
}

// here is the location of the next token.
func (p *Parser) here() ast.SourceLocation {
	return p.locAt(p.skipped(p.pos))
}

// Scanning

var spacesAndLineComments = lexer.ZeroPlus(lexer.Alternatives(lexer.Whitespace, lexer.LineComment))

func (p *Parser) skipped(pos int) int {
	return lexer.SpacesAndComments(p.src, pos)
}

func (p *Parser) atEnd() bool {
	return p.skipped(p.pos) >= len(p.src)
}

// peek reports where m would end if matched after the upcoming whitespace
// and comments, or NoMatch. Nothing is consumed.
func (p *Parser) peek(m lexer.Matcher) int {
	return m(p.src, p.skipped(p.pos))
}

func (p *Parser) peekChar(c byte) bool {
	at := p.skipped(p.pos)
	return at < len(p.src) && p.src[at] == c
}

// lex consumes m after the upcoming whitespace and comments.
func (p *Parser) lex(m lexer.Matcher) bool {
	start := p.skipped(p.pos)
	end := m(p.src, start)
	if end == lexer.NoMatch {
		return false
	}
	p.consume(start, end)
	return true
}

// scan consumes m at the current position without skipping anything.
func (p *Parser) scan(m lexer.Matcher) bool {
	end := m(p.src, p.pos)
	if end == lexer.NoMatch {
		return false
	}
	p.consume(p.pos, end)
	return true
}

func (p *Parser) consume(start, end int) {
	p.start, p.pos, p.lexed = start, end, p.src[start:end]
}

func (p *Parser) expectEnd(format string) {
	if !p.atEnd() {
		p.fail(errors.ErrInvalidSyntax, format, p.lexed)
	}
}

// Errors

func (p *Parser) fail(code, format string, args ...interface{}) {
	panic(errors.Syntaxf(code, p.here(), format, args...))
}

func (p *Parser) failAt(offset int, code, format string, args ...interface{}) {
	panic(errors.Syntaxf(code, p.locAt(offset), format, args...))
}

func (p *Parser) failLoc(loc ast.SourceLocation, code, format string, args ...interface{}) {
	panic(errors.Syntaxf(code, loc, format, args...))
}

// cssError reports the text around the current position:
// `Invalid CSS after "a: ": expected expression (e.g. 1px, bold), was ";"`.
func (p *Parser) cssError(expected string) {
	const maxLen = 14
	at := p.skipped(p.pos)

	left := at
	for left > 0 && at-left < maxLen && p.src[left-1] != '\n' && p.src[left-1] != '\r' {
		left--
	}
	before := p.src[left:at]
	if left > 0 && at-left >= maxLen {
		before = "..." + before
	}

	right := at
	for right < len(p.src) && right-at < maxLen && p.src[right] != '\n' && p.src[right] != '\r' {
		right++
	}
	after := p.src[at:right]
	if right < len(p.src) && right-at >= maxLen {
		after += "..."
	}

	p.fail(errors.ErrInvalidSyntax, "Invalid CSS after %q: expected %s, was %q", before, expected, after)
}

// Definition context

func (p *Parser) pushDef(kind ast.DefinitionKind) { p.defs = append(p.defs, kind) }
func (p *Parser) popDef()                         { p.defs = p.defs[:len(p.defs)-1] }

func (p *Parser) inDefinition(kind ast.DefinitionKind) bool {
	return len(p.defs) > 0 && p.defs[len(p.defs)-1] == kind
}

func (p *Parser) inKeyframes() bool {
	return len(p.keyframe) > 0 && p.keyframe[len(p.keyframe)-1]
}

// Root

func (p *Parser) parseRoot() *ast.Block {
	p.readBOM()
	root := &ast.Block{IsRoot: true, Loc: p.locAt(0)}
	p.parseStatements(root, true)
	return root
}

var byteOrderMarks = []struct {
	mark     string
	encoding string
}{
	{"\x00\x00\xfe\xff", "UTF-32 (big endian)"},
	{"\xff\xfe\x00\x00", "UTF-32 (little endian)"},
	{"\xfe\xff", "UTF-16 (big endian)"},
	{"\xff\xfe", "UTF-16 (little endian)"},
	{"\x2b\x2f\x76", "UTF-7"},
	{"\xf7\x64\x4c", "UTF-1"},
	{"\xdd\x73\x66\x73", "UTF-EBCDIC"},
	{"\x0e\xfe\xff", "SCSU"},
	{"\xfb\xee\x28", "BOCU-1"},
	{"\x84\x31\x95\x33", "GB-18030"},
}

func (p *Parser) readBOM() {
	if strings.HasPrefix(p.src, "\xef\xbb\xbf") {
		p.pos = 3
		return
	}
	for _, bom := range byteOrderMarks {
		if strings.HasPrefix(p.src, bom.mark) {
			p.failAt(0, errors.ErrInvalidSyntax, "only UTF-8 documents are currently supported; your document appears to be %s", bom.encoding)
		}
	}
}

func normalize(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func currentDir(path string) string {
	if path == "" {
		return "./"
	}
	return filepath.Dir(path) + string(filepath.Separator)
}
