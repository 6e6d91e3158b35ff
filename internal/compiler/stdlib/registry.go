// Package stdlib provides the built-in Sass functions. Every function is
// listed in a static registry grouped by namespace, which the CLI uses for
// introspection, and Register installs the implementations into the global
// environment of a compilation.
package stdlib

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/env"
	"github.com/conduit-lang/gosass/internal/compiler/eval"
	"github.com/conduit-lang/gosass/internal/compiler/parser"
)

// builtin is the implementation of one registry entry.
type builtin func(l *library, a args) (ast.Expression, error)

// FunctionDef represents a function signature in the standard library
type FunctionDef struct {
	Name        string // Function name as called from Sass
	Signature   string // Full signature, parsed with the stylesheet parser
	Description string // One-line description of what the function does
	impl        builtin
}

// StdlibRegistry contains all built-in functions organized by namespace.
// Names that appear more than once are overloads selected by argument count.
var StdlibRegistry = map[string][]FunctionDef{
	"Color": {
		{"rgb", "rgb($red, $green, $blue)", "Creates an opaque color from red, green and blue channels", rgb},
		{"rgba", "rgba($red, $green, $blue, $alpha)", "Creates a color from channels and an alpha value", rgba4},
		{"rgba", "rgba($color, $alpha)", "Returns the color with a different alpha value", rgba2},
		{"red", "red($color)", "Returns the red channel of a color", channel(func(c *ast.Color) float64 { return c.R })},
		{"green", "green($color)", "Returns the green channel of a color", channel(func(c *ast.Color) float64 { return c.G })},
		{"blue", "blue($color)", "Returns the blue channel of a color", channel(func(c *ast.Color) float64 { return c.B })},
		{"mix", "mix($color-1, $color-2, $weight: 50%)", "Mixes two colors, weighting the first by $weight", mix},
		{"hsl", "hsl($hue, $saturation, $lightness)", "Creates an opaque color from hue, saturation and lightness", hsl},
		{"hsla", "hsla($hue, $saturation, $lightness, $alpha)", "Creates a color from hue, saturation, lightness and alpha", hsla},
		{"hue", "hue($color)", "Returns the hue of a color in degrees", hue},
		{"saturation", "saturation($color)", "Returns the saturation of a color as a percentage", saturation},
		{"lightness", "lightness($color)", "Returns the lightness of a color as a percentage", lightness},
		{"adjust-hue", "adjust-hue($color, $degrees)", "Rotates the hue of a color", adjustHue},
		{"lighten", "lighten($color, $amount)", "Increases the lightness of a color", lighten},
		{"darken", "darken($color, $amount)", "Decreases the lightness of a color", darken},
		{"saturate", "saturate($color, $amount: false)", "Increases the saturation of a color", saturate},
		{"desaturate", "desaturate($color, $amount)", "Decreases the saturation of a color", desaturate},
		{"grayscale", "grayscale($color)", "Removes all saturation from a color", grayscale},
		{"complement", "complement($color)", "Rotates the hue of a color by 180 degrees", complement},
		{"invert", "invert($color)", "Inverts each channel of a color", invert},
		{"alpha", "alpha($color)", "Returns the alpha channel of a color", alpha},
		{"opacity", "opacity($color)", "Returns the alpha channel of a color", alpha},
		{"opacify", "opacify($color, $amount)", "Makes a color more opaque", opacify},
		{"fade-in", "fade-in($color, $amount)", "Makes a color more opaque", opacify},
		{"transparentize", "transparentize($color, $amount)", "Makes a color more transparent", transparentize},
		{"fade-out", "fade-out($color, $amount)", "Makes a color more transparent", transparentize},
		{"adjust-color", "adjust-color($color, $red: false, $green: false, $blue: false, $hue: false, $saturation: false, $lightness: false, $alpha: false)", "Adds to channels of a color", adjustColor},
		{"scale-color", "scale-color($color, $red: false, $green: false, $blue: false, $hue: false, $saturation: false, $lightness: false, $alpha: false)", "Scales channels of a color towards their limits", scaleColor},
		{"change-color", "change-color($color, $red: false, $green: false, $blue: false, $hue: false, $saturation: false, $lightness: false, $alpha: false)", "Sets channels of a color", changeColor},
		{"ie-hex-str", "ie-hex-str($color)", "Formats a color as #AARRGGBB for Internet Explorer filters", ieHexStr},
	},
	"String": {
		{"unquote", "unquote($string)", "Removes the quotes of a string", unquote},
		{"quote", "quote($string)", "Adds quotes to a string", quote},
		{"str-length", "str-length($string)", "Returns the number of characters in a string", strLength},
		{"str-insert", "str-insert($string, $insert, $index)", "Inserts $insert into $string at $index", strInsert},
		{"str-index", "str-index($string, $substring)", "Returns the first index of $substring in $string, or null", strIndex},
		{"str-slice", "str-slice($string, $start-at, $end-at: -1)", "Extracts a substring between two 1-based indices", strSlice},
		{"to-upper-case", "to-upper-case($string)", "Converts ASCII letters to upper case", changeCase(true)},
		{"to-lower-case", "to-lower-case($string)", "Converts ASCII letters to lower case", changeCase(false)},
		{"unique-id", "unique-id()", "Returns a random unquoted identifier", uniqueID},
	},
	"Number": {
		{"percentage", "percentage($number)", "Converts a unitless number to a percentage", percentage},
		{"round", "round($number)", "Rounds a number to the nearest whole number", rounding(func(v float64) float64 { return floor(v + 0.5) })},
		{"ceil", "ceil($number)", "Rounds a number up", rounding(ceil)},
		{"floor", "floor($number)", "Rounds a number down", rounding(floor)},
		{"abs", "abs($number)", "Returns the absolute value of a number", rounding(abs)},
		{"min", "min($numbers...)", "Returns the smallest of several numbers", extremum(true)},
		{"max", "max($numbers...)", "Returns the largest of several numbers", extremum(false)},
		{"random", "random($limit: false)", "Returns a random number, or an integer from 1 to $limit", random},
	},
	"List": {
		{"length", "length($list)", "Returns the number of elements in a list or map", length},
		{"nth", "nth($list, $n)", "Returns the element at a 1-based index, negative from the end", nth},
		{"set-nth", "set-nth($list, $n, $value)", "Returns a copy of the list with one element replaced", setNth},
		{"index", "index($list, $value)", "Returns the 1-based index of a value in a list, or null", index},
		{"join", "join($list1, $list2, $separator: auto)", "Concatenates two lists", join},
		{"append", "append($list, $val, $separator: auto)", "Adds a value to the end of a list", appendValue},
		{"zip", "zip($lists...)", "Combines several lists into a list of lists", zip},
		{"list-separator", "list-separator($list)", "Returns the separator of a list", listSeparator},
	},
	"Map": {
		{"map-get", "map-get($map, $key)", "Returns the value for a key, or null", mapGet},
		{"map-merge", "map-merge($map1, $map2)", "Merges two maps, the second taking precedence", mapMerge},
		{"map-remove", "map-remove($map, $keys...)", "Returns a copy of the map without the given keys", mapRemove},
		{"map-keys", "map-keys($map)", "Returns the keys of a map", mapKeys},
		{"map-values", "map-values($map)", "Returns the values of a map", mapValues},
		{"map-has-key", "map-has-key($map, $key)", "Reports whether a map contains a key", mapHasKey},
		{"keywords", "keywords($args)", "Returns the keyword arguments captured by an argument list", keywords},
	},
	"Introspection": {
		{"type-of", "type-of($value)", "Returns the type of a value", typeOf},
		{"unit", "unit($number)", "Returns the units of a number as a quoted string", unit},
		{"unitless", "unitless($number)", "Reports whether a number has no units", unitless},
		{"comparable", "comparable($number-1, $number-2)", "Reports whether two numbers can be added or compared", comparable},
		{"inspect", "inspect($value)", "Returns the Sass representation of a value", inspect},
		{"variable-exists", "variable-exists($name)", "Reports whether a variable is visible in the current scope", variableExists},
		{"global-variable-exists", "global-variable-exists($name)", "Reports whether a global variable exists", globalVariableExists},
		{"function-exists", "function-exists($name)", "Reports whether a function is defined", definitionExists("[f]")},
		{"mixin-exists", "mixin-exists($name)", "Reports whether a mixin is defined", definitionExists("[m]")},
		{"feature-exists", "feature-exists($name)", "Reports whether the compiler supports a language feature", featureExists},
		{"is-superselector", "is-superselector($super, $sub)", "Reports whether $super matches every element $sub matches", isSuperselector},
		{"call", "call($name, $args...)", "Calls a function by name", call},
	},
	"Boolean": {
		{"not", "not($value)", "Returns the logical negation of a value", not},
		{"if", "if($condition, $if-true, $if-false)", "Returns one of two values depending on a condition", ifFunction},
	},
}

// GetNamespaces returns all namespace names in sorted order
func GetNamespaces() []string {
	namespaces := make([]string, 0, len(StdlibRegistry))
	for namespace := range StdlibRegistry {
		namespaces = append(namespaces, namespace)
	}
	sort.Strings(namespaces)
	return namespaces
}

// GetFunctions returns all functions for a given namespace
// Returns nil if the namespace doesn't exist
func GetFunctions(namespace string) []FunctionDef {
	return StdlibRegistry[namespace]
}

// TotalFunctionCount returns the total number of functions across all namespaces
func TotalFunctionCount() int {
	total := 0
	for _, funcs := range StdlibRegistry {
		total += len(funcs)
	}
	return total
}

// library is the state shared by the built-ins of one compilation.
type library struct {
	ctx  *eval.Context
	rand *rand.Rand
}

// Register defines every built-in function in global. Overloaded names get a
// dispatching stub under their plain key and one definition per arity.
func Register(global *env.Env, ctx *eval.Context) error {
	if ctx == nil {
		ctx = eval.NewContext()
	}
	l := &library{ctx: ctx, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}

	byName := map[string][]*ast.Definition{}
	var order []string
	for _, ns := range GetNamespaces() {
		for _, fn := range StdlibRegistry[ns] {
			def, err := l.define(fn, global)
			if err != nil {
				return err
			}
			if _, seen := byName[def.Name]; !seen {
				order = append(order, def.Name)
			}
			byName[def.Name] = append(byName[def.Name], def)
		}
	}

	for _, name := range order {
		defs := byName[name]
		if len(defs) == 1 {
			global.SetLocal(defs[0].Key(), defs[0])
			continue
		}
		stub := &ast.Definition{
			Name:         name,
			Kind:         ast.FunctionDefinition,
			OverloadStub: true,
			Signature:    name,
			Environment:  global,
			Loc:          defs[0].Loc,
		}
		global.SetLocal(stub.Key(), stub)
		for _, def := range defs {
			global.SetLocal(fmt.Sprintf("%s%d", def.Key(), def.Params.Len()), def)
		}
	}
	return nil
}

func (l *library) define(fn FunctionDef, global *env.Env) (*ast.Definition, error) {
	name, params, err := parser.ParseSignature(fn.Signature)
	if err != nil {
		return nil, fmt.Errorf("built-in %s: %w", fn.Name, err)
	}
	sig, impl := fn.Signature, fn.impl
	return &ast.Definition{
		Name:        name,
		Params:      params,
		Kind:        ast.FunctionDefinition,
		Signature:   sig,
		Environment: global,
		Loc:         ast.SourceLocation{Path: "[built-in function]"},
		Native: func(call *ast.NativeCall) (ast.Expression, error) {
			return impl(l, args{call: call, sig: sig})
		},
	}, nil
}
