package host

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
)

// Function is a host function with its Sass signature, e.g.
// "double($n)" or "join-all($items...)". The signature "*" registers a
// catch-all that receives the name of any undefined function followed by
// its arguments.
type Function struct {
	Signature string
	Callback  Callback
}

const catchAllSignature = "catch-all($name, $args...)"

// Definition builds the native definition that marshals arguments, runs the
// callback through exec and converts its result.
func (f Function) Definition(ctx context.Context, global *env.Env, exec *Executor) (*ast.Definition, error) {
	sig := strings.TrimSpace(f.Signature)
	catchAll := sig == "*"
	if catchAll {
		sig = catchAllSignature
	}
	name, params, err := parser.ParseSignature(sig)
	if err != nil {
		return nil, fmt.Errorf("host function %q: %w", f.Signature, err)
	}
	name = strings.ReplaceAll(name, "_", "-")
	if catchAll {
		name = "*"
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cb := f.Callback
	return &ast.Definition{
		Name:        name,
		Params:      params,
		Kind:        ast.FunctionDefinition,
		Signature:   f.Signature,
		Environment: global,
		Loc:         ast.SourceLocation{Path: "[host function]"},
		Native: func(call *ast.NativeCall) (ast.Expression, error) {
			args := make([]Value, 0, call.Params.Len())
			if call.Params != nil {
				for _, p := range call.Params.Items {
					args = append(args, ToHost(call.Args[p.Name]))
				}
			}
			result, err := exec.Call(ctx, cb, args)
			if err != nil {
				return nil, err
			}
			return FromHost(result, call.Loc)
		},
	}, nil
}

// Register defines every function in fns in the global frame. Functions are
// registered in signature order.
func Register(ctx context.Context, global *env.Env, fns []Function, exec *Executor) error {
	sorted := append([]Function(nil), fns...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Signature < sorted[j].Signature })
	for _, f := range sorted {
		if f.Callback == nil {
			return fmt.Errorf("host function %q has no callback", f.Signature)
		}
		def, err := f.Definition(ctx, global, exec)
		if err != nil {
			return err
		}
		global.SetLocal(def.Key(), def)
	}
	return nil
}

// Functions converts a signature-to-callback map into a slice.
func Functions(m map[string]Callback) []Function {
	out := make([]Function, 0, len(m))
	for sig, cb := range m {
		out = append(out, Function{Signature: sig, Callback: cb})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Signature < out[j].Signature })
	return out
}
