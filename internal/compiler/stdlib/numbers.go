package stdlib

import (
	"fmt"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/eval"
)

func percentage(l *library, a args) (ast.Expression, error) {
	n, err := a.number("$number")
	if err != nil {
		return nil, err
	}
	if !n.IsUnitless() {
		return nil, fmt.Errorf("argument $number of `%s` must be unitless", a.sig)
	}
	return a.newNumber(n.Value*100, "%"), nil
}

// rounding applies fn to the value of $number, keeping its units.
func rounding(fn func(float64) float64) builtin {
	return func(l *library, a args) (ast.Expression, error) {
		n, err := a.number("$number")
		if err != nil {
			return nil, err
		}
		out := n.Clone()
		out.Value = fn(n.Value)
		out.Loc = a.loc()
		return out, nil
	}
}

func extremum(smallest bool) builtin {
	name := "max"
	if smallest {
		name = "min"
	}
	return func(l *library, a args) (ast.Expression, error) {
		items := a.list("$numbers").Elements
		if len(items) == 0 {
			return nil, fmt.Errorf("At least one argument must be passed to `%s($numbers...)`", name)
		}
		var best *ast.Number
		for _, item := range items {
			n, ok := item.(*ast.Number)
			if !ok {
				return nil, fmt.Errorf("`%s($numbers...)` only takes numeric arguments", name)
			}
			if best == nil {
				best = n
				continue
			}
			var better bool
			var err error
			if smallest {
				better, err = eval.LessThan(n, best)
			} else {
				better, err = eval.LessThan(best, n)
			}
			if err != nil {
				return nil, fmt.Errorf("Incompatible units: '%s' and '%s'.", n.Unit(), best.Unit())
			}
			if better {
				best = n
			}
		}
		return best, nil
	}
}

func random(l *library, a args) (ast.Expression, error) {
	if !a.given("$limit") {
		return a.newNumber(l.rand.Float64(), ""), nil
	}
	n, err := a.number("$limit")
	if err != nil {
		return nil, err
	}
	limit := int64(n.Value)
	if float64(limit) != n.Value || limit < 1 {
		return nil, fmt.Errorf("argument $limit of `%s` must be a positive integer", a.sig)
	}
	return a.newNumber(float64(l.rand.Int63n(limit)+1), ""), nil
}
