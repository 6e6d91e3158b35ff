// Package env implements the chain of lexical frames that hold variables,
// functions and mixins during one compilation.
//
// Keys follow one convention: variables keep their `$`, functions are stored
// as `name[f]` and mixins as `name[m]`. The root frame is the global scope.
package env

import (
	"sort"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

// Env is one frame of the scope chain.
type Env struct {
	vars    map[string]ast.Node
	parent  *Env
	lexical bool
}

// New creates an empty global frame.
func New() *Env {
	return &Env{vars: make(map[string]ast.Node)}
}

// NewFrame opens a nested block scope below e. Assignments made in it reach
// the nearest enclosing frame that already defines the variable.
func (e *Env) NewFrame() *Env {
	return &Env{vars: make(map[string]ast.Node), parent: e, lexical: true}
}

// NewFunctionFrame opens the frame a function call binds its parameters in.
// The frame is linked to the scope the function was defined in and is not
// lexical, so plain and `!default` assignments inside the call stay local
// instead of walking out into the defining scope.
func NewFunctionFrame(defining *Env) *Env {
	return &Env{vars: make(map[string]ast.Node), parent: defining}
}

// Link makes parent the enclosing frame of e.
func (e *Env) Link(parent *Env) {
	e.parent = parent
}

// Parent returns the enclosing frame, nil for the global frame.
func (e *Env) Parent() *Env {
	return e.parent
}

// IsGlobal reports whether e is the root frame.
func (e *Env) IsGlobal() bool {
	return e.parent == nil
}

// IsLexical reports whether lexical lookups continue past e into its parent.
func (e *Env) IsLexical() bool {
	return e.lexical
}

// Global returns the root frame of the chain.
func (e *Env) Global() *Env {
	cur := e
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Lookup finds name in e or any enclosing frame.
func (e *Env) Lookup(name string) (ast.Node, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether name is bound anywhere in the chain.
func (e *Env) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// Definition returns the function or mixin stored under key.
func (e *Env) Definition(key string) (*ast.Definition, bool) {
	n, ok := e.Lookup(key)
	if !ok {
		return nil, false
	}
	def, ok := n.(*ast.Definition)
	return def, ok
}

// GetLocal returns the binding of name in e itself.
func (e *Env) GetLocal(name string) (ast.Node, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// HasLocal reports whether e itself binds name.
func (e *Env) HasLocal(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// SetLocal binds name in e.
func (e *Env) SetLocal(name string, value ast.Node) {
	e.vars[name] = value
}

// DelLocal removes the binding of name from e.
func (e *Env) DelLocal(name string) {
	delete(e.vars, name)
}

// HasGlobal reports whether the global frame binds name.
func (e *Env) HasGlobal(name string) bool {
	return e.Global().HasLocal(name)
}

// GetGlobal returns the global binding of name.
func (e *Env) GetGlobal(name string) (ast.Node, bool) {
	return e.Global().GetLocal(name)
}

// SetGlobal binds name in the global frame.
func (e *Env) SetGlobal(name string, value ast.Node) {
	e.Global().SetLocal(name, value)
}

// lexicalFrame returns the nearest frame binding name, searching e and then
// its parents for as long as the frames are lexical.
func (e *Env) lexicalFrame(name string) *Env {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.HasLocal(name) {
			return cur
		}
		if !cur.lexical {
			break
		}
	}
	return nil
}

// HasLexical reports whether name is visible through lexical frames.
func (e *Env) HasLexical(name string) bool {
	return e.lexicalFrame(name) != nil
}

// SetLexical rebinds name in the nearest lexical frame that defines it, or
// defines it in e when no such frame exists.
func (e *Env) SetLexical(name string, value ast.Node) {
	if f := e.lexicalFrame(name); f != nil {
		f.SetLocal(name, value)
		return
	}
	e.SetLocal(name, value)
}

// Assign binds a variable the way an assignment statement does. value is
// only called when the assignment takes effect, which for `!default` means
// the target is unbound or null.
//
// With global the target is the global frame. A `!default` assignment
// otherwise targets the nearest lexical frame that binds the name, then the
// global frame, then e.
func (e *Env) Assign(name string, global, deflt bool, value func() (ast.Expression, error)) error {
	var target *Env
	switch {
	case global:
		target = e.Global()
	case !deflt:
		target = e.lexicalFrame(name)
		if target == nil {
			target = e
		}
	default:
		target = e.lexicalFrame(name)
		if target == nil && e.HasGlobal(name) {
			target = e.Global()
		}
		if target == nil {
			target = e
		}
	}

	if deflt {
		if cur, ok := target.GetLocal(name); ok && !isNull(cur) {
			return nil
		}
	}
	v, err := value()
	if err != nil {
		return err
	}
	target.SetLocal(name, v)
	return nil
}

func isNull(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.Null:
		return true
	case *ast.Argument:
		return isNull(v.Value)
	}
	return false
}

// LocalNames returns the names bound in e, sorted.
func (e *Env) LocalNames() []string {
	names := make([]string, 0, len(e.vars))
	for k := range e.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
