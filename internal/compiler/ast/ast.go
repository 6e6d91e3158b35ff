// Package ast defines the Abstract Syntax Tree (AST) node types for Sass stylesheets.
// It provides structures for representing statements, SassScript expressions and
// values, and selectors, along with the selector algebra used by @extend.
//
// Every node kind set is closed: the unexported marker methods keep outside
// packages from adding variants, so type switches over Statement, Expression and
// SimpleSelector can be exhaustive.
package ast

import "fmt"

// SourceLocation tracks the position of an AST node in source code
type SourceLocation struct {
	Path   string // Originating file path
	Line   int    // Line number (0-indexed)
	Column int    // Column number (0-indexed)
	Offset int    // Byte offset into the source
}

// String renders the location as path:line:column using 1-indexed numbers.
func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line+1, l.Column+1)
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// Statement is a node that can appear in a Block
type Statement interface {
	Node
	stmtNode()
}

// Block is an ordered sequence of statements
type Block struct {
	Statements []Statement
	IsRoot     bool
	Loc        SourceLocation
}

func (b *Block) node()     {}
func (b *Block) stmtNode() {}

// Location returns the source location of the block node in the AST.
func (b *Block) Location() SourceLocation {
	return b.Loc
}

// Append adds a statement to the end of the block.
func (b *Block) Append(s Statement) {
	b.Statements = append(b.Statements, s)
}

// HasHoistable reports whether the block contains statements that bubble out
// of a rule when emitted (nested rules and directives with blocks).
func (b *Block) HasHoistable() bool {
	for _, s := range b.Statements {
		if IsHoistable(s) {
			return true
		}
	}
	return false
}

// HasNonHoistable reports whether the block contains statements that stay
// inside their rule (declarations and comments).
func (b *Block) HasNonHoistable() bool {
	for _, s := range b.Statements {
		if !IsHoistable(s) {
			return true
		}
	}
	return false
}

// IsHoistable reports whether s is a statement that bubbles out of its
// enclosing rule during emission.
func IsHoistable(s Statement) bool {
	switch s.(type) {
	case *Ruleset, *MediaBlock, *SupportsBlock, *AtRule, *KeyframeRule, *AtRootBlock:
		return true
	case *Import:
		return true
	default:
		return false
	}
}

// Ruleset is a selector followed by a block of declarations and nested rules
type Ruleset struct {
	Selector Selector // *SelectorList, or *SelectorSchema before expansion
	Block    *Block
	Tabs     int // Nesting depth, used by the nested output style
	Loc      SourceLocation
}

func (r *Ruleset) node()     {}
func (r *Ruleset) stmtNode() {}

// Location returns the source location of the ruleset node in the AST.
func (r *Ruleset) Location() SourceLocation {
	return r.Loc
}

// KeyframeRule is a block inside @keyframes whose selector is a keyframe offset
// such as `from`, `to` or `50%`.
type KeyframeRule struct {
	Selector Expression
	Block    *Block
	Loc      SourceLocation
}

func (k *KeyframeRule) node()     {}
func (k *KeyframeRule) stmtNode() {}

// Location returns the source location of the keyframe rule node in the AST.
func (k *KeyframeRule) Location() SourceLocation {
	return k.Loc
}

// Declaration is a property/value pair
type Declaration struct {
	Property  Expression // *String or *StringSchema
	Value     Expression
	Important bool
	Tabs      int
	Loc       SourceLocation
}

func (d *Declaration) node()     {}
func (d *Declaration) stmtNode() {}

// Location returns the source location of the declaration node in the AST.
func (d *Declaration) Location() SourceLocation {
	return d.Loc
}

// Propset is a nested property block such as `font: { family: x; size: y; }`.
// Every declaration inside it is prefixed with Property and a hyphen.
type Propset struct {
	Property Expression
	Block    *Block
	Loc      SourceLocation
}

func (p *Propset) node()     {}
func (p *Propset) stmtNode() {}

// Location returns the source location of the propset node in the AST.
func (p *Propset) Location() SourceLocation {
	return p.Loc
}

// Assignment binds a variable
type Assignment struct {
	Name      string // Includes the leading `$`
	Value     Expression
	IsDefault bool
	IsGlobal  bool
	Loc       SourceLocation
}

func (a *Assignment) node()     {}
func (a *Assignment) stmtNode() {}

// Location returns the source location of the assignment node in the AST.
func (a *Assignment) Location() SourceLocation {
	return a.Loc
}

// If is @if with an optional @else chain
type If struct {
	Predicate   Expression
	Consequent  *Block
	Alternative *Block // nil when there is no @else
	Loc         SourceLocation
}

func (i *If) node()     {}
func (i *If) stmtNode() {}

// Location returns the source location of the if node in the AST.
func (i *If) Location() SourceLocation {
	return i.Loc
}

// For is @for $var from x through|to y
type For struct {
	Variable  string
	Lower     Expression
	Upper     Expression
	Inclusive bool // `through` rather than `to`
	Body      *Block
	Loc       SourceLocation
}

func (f *For) node()     {}
func (f *For) stmtNode() {}

// Location returns the source location of the for node in the AST.
func (f *For) Location() SourceLocation {
	return f.Loc
}

// Each is @each $a, $b in list
type Each struct {
	Variables []string
	List      Expression
	Body      *Block
	Loc       SourceLocation
}

func (e *Each) node()     {}
func (e *Each) stmtNode() {}

// Location returns the source location of the each node in the AST.
func (e *Each) Location() SourceLocation {
	return e.Loc
}

// While is @while predicate
type While struct {
	Predicate Expression
	Body      *Block
	Loc       SourceLocation
}

func (w *While) node()     {}
func (w *While) stmtNode() {}

// Location returns the source location of the while node in the AST.
func (w *While) Location() SourceLocation {
	return w.Loc
}

// Return is @return inside a function body
type Return struct {
	Value Expression
	Loc   SourceLocation
}

func (r *Return) node()     {}
func (r *Return) stmtNode() {}

// Location returns the source location of the return node in the AST.
func (r *Return) Location() SourceLocation {
	return r.Loc
}

// MediaBlock is @media query { ... }
type MediaBlock struct {
	Query Expression
	Block *Block
	Tabs  int
	Loc   SourceLocation
}

func (m *MediaBlock) node()     {}
func (m *MediaBlock) stmtNode() {}

// Location returns the source location of the media block node in the AST.
func (m *MediaBlock) Location() SourceLocation {
	return m.Loc
}

// SupportsBlock is @supports condition { ... }
type SupportsBlock struct {
	Condition Expression
	Block     *Block
	Tabs      int
	Loc       SourceLocation
}

func (s *SupportsBlock) node()     {}
func (s *SupportsBlock) stmtNode() {}

// Location returns the source location of the supports block node in the AST.
func (s *SupportsBlock) Location() SourceLocation {
	return s.Loc
}

// AtRule is any directive the compiler passes through, such as @font-face,
// @page or @keyframes. Block is nil for directives terminated by `;`.
type AtRule struct {
	Keyword string // Includes the leading `@`
	Value   Expression
	Block   *Block
	Tabs    int
	Loc     SourceLocation
}

func (a *AtRule) node()     {}
func (a *AtRule) stmtNode() {}

// Location returns the source location of the at-rule node in the AST.
func (a *AtRule) Location() SourceLocation {
	return a.Loc
}

// IsKeyframes reports whether the directive is @keyframes or a vendor-prefixed variant.
func (a *AtRule) IsKeyframes() bool {
	return hasSuffixFold(a.Keyword, "keyframes")
}

// AtRootQuery is the parenthesized (with: ...) or (without: ...) part of @at-root.
type AtRootQuery struct {
	With     bool
	Features []string
}

// Exclude reports whether a statement of the given kind is removed from the
// nesting context. Kinds are "rule", "media", "supports", "keyframes" or a bare
// at-rule keyword without the `@`. A nil query excludes rules only.
func (q *AtRootQuery) Exclude(kind string) bool {
	if q == nil {
		return kind == "rule"
	}
	listed := false
	for _, f := range q.Features {
		if f == kind || f == "all" {
			listed = true
			break
		}
	}
	if q.With {
		return !listed
	}
	return listed
}

// AtRootBlock is @at-root [query] { ... } or @at-root selector { ... }
type AtRootBlock struct {
	Query *AtRootQuery
	Block *Block
	Loc   SourceLocation
}

func (a *AtRootBlock) node()     {}
func (a *AtRootBlock) stmtNode() {}

// Location returns the source location of the at-root block node in the AST.
func (a *AtRootBlock) Location() SourceLocation {
	return a.Loc
}

// Import is @import. Files are resolved Sass sources that get inlined during
// expansion; URLs are plain CSS imports that pass through to the output.
type Import struct {
	Files []string
	URLs  []Expression
	Media Expression
	Loc   SourceLocation
}

func (i *Import) node()     {}
func (i *Import) stmtNode() {}

// Location returns the source location of the import node in the AST.
func (i *Import) Location() SourceLocation {
	return i.Loc
}

// Warning is @warn
type Warning struct {
	Message Expression
	Loc     SourceLocation
}

func (w *Warning) node()     {}
func (w *Warning) stmtNode() {}

// Location returns the source location of the warning node in the AST.
func (w *Warning) Location() SourceLocation {
	return w.Loc
}

// Error is @error
type Error struct {
	Message Expression
	Loc     SourceLocation
}

func (e *Error) node()     {}
func (e *Error) stmtNode() {}

// Location returns the source location of the error node in the AST.
func (e *Error) Location() SourceLocation {
	return e.Loc
}

// Debug is @debug
type Debug struct {
	Value Expression
	Loc   SourceLocation
}

func (d *Debug) node()     {}
func (d *Debug) stmtNode() {}

// Location returns the source location of the debug node in the AST.
func (d *Debug) Location() SourceLocation {
	return d.Loc
}

// Comment is a preserved /* */ comment. Important comments (/*! */) survive
// compressed output.
type Comment struct {
	Text      Expression
	Important bool
	Loc       SourceLocation
}

func (c *Comment) node()     {}
func (c *Comment) stmtNode() {}

// Location returns the source location of the comment node in the AST.
func (c *Comment) Location() SourceLocation {
	return c.Loc
}

// MixinCall is @include name(args) with an optional content block
type MixinCall struct {
	Name    string
	Args    *Arguments
	Content *Block
	Loc     SourceLocation
}

func (m *MixinCall) node()     {}
func (m *MixinCall) stmtNode() {}

// Location returns the source location of the mixin call node in the AST.
func (m *MixinCall) Location() SourceLocation {
	return m.Loc
}

// DefinitionKind distinguishes mixins from functions
type DefinitionKind int

const (
	// MixinDefinition is declared with @mixin
	MixinDefinition DefinitionKind = iota
	// FunctionDefinition is declared with @function or registered natively
	FunctionDefinition
)

// Scope is the lexical environment a definition closes over.
type Scope interface {
	Lookup(name string) (Node, bool)
}

// NativeCall carries the bound arguments of a call into a native function.
type NativeCall struct {
	Name      string
	Args      map[string]Expression
	Params    *Parameters
	Loc       SourceLocation
	Env       Scope
	Precision int
}

// Arg returns the bound value of the named parameter, including its `$`.
func (c *NativeCall) Arg(name string) Expression {
	if v, ok := c.Args[name]; ok {
		return v
	}
	return &Null{Loc: c.Loc}
}

// NativeFunction implements a function in Go rather than in Sass.
type NativeFunction func(call *NativeCall) (Expression, error)

// Definition is a mixin or function. Body is nil for native definitions.
type Definition struct {
	Name         string
	Params       *Parameters
	Body         *Block
	Kind         DefinitionKind
	Native       NativeFunction
	Signature    string
	OverloadStub bool  // resolves to `name[f]<arity>` at call time
	Environment  Scope // captured defining frame
	Loc          SourceLocation
}

func (d *Definition) node()     {}
func (d *Definition) stmtNode() {}

// Location returns the source location of the definition node in the AST.
func (d *Definition) Location() SourceLocation {
	return d.Loc
}

// Key returns the environment key the definition is stored under.
func (d *Definition) Key() string {
	if d.Kind == MixinDefinition {
		return d.Name + "[m]"
	}
	return d.Name + "[f]"
}

// Closure returns a copy of d bound to the given environment.
func (d *Definition) Closure(env Scope) *Definition {
	cpy := *d
	cpy.Environment = env
	return &cpy
}

// Extension is @extend selector [!optional]
type Extension struct {
	Selector Selector
	Loc      SourceLocation
}

func (e *Extension) node()     {}
func (e *Extension) stmtNode() {}

// Location returns the source location of the extension node in the AST.
func (e *Extension) Location() SourceLocation {
	return e.Loc
}

// Content is @content inside a mixin body
type Content struct {
	Loc SourceLocation
}

func (c *Content) node()     {}
func (c *Content) stmtNode() {}

// Location returns the source location of the content node in the AST.
func (c *Content) Location() SourceLocation {
	return c.Loc
}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	for i := 0; i < len(tail); i++ {
		a, b := tail[i], suffix[i]
		if a >= 'A' && a <= 'Z' {
			a += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
