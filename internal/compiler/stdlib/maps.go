package stdlib

import (
	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

func copyMap(m *ast.Map, loc ast.SourceLocation) *ast.Map {
	return &ast.Map{
		Keys:   append([]ast.Expression(nil), m.Keys...),
		Values: append([]ast.Expression(nil), m.Values...),
		Loc:    loc,
	}
}

func mapGet(l *library, a args) (ast.Expression, error) {
	m, err := a.mapping("$map")
	if err != nil {
		return nil, err
	}
	if v, ok := m.Get(a.value("$key")); ok {
		return v, nil
	}
	return &ast.Null{Loc: a.loc()}, nil
}

func mapMerge(l *library, a args) (ast.Expression, error) {
	m1, err := a.mapping("$map1")
	if err != nil {
		return nil, err
	}
	m2, err := a.mapping("$map2")
	if err != nil {
		return nil, err
	}
	out := copyMap(m1, a.loc())
	for i, k := range m2.Keys {
		if out.Has(k) {
			for j, existing := range out.Keys {
				if eq, err := ast.Equal(existing, k); err == nil && eq {
					out.Values[j] = m2.Values[i]
				}
			}
			continue
		}
		out.Append(k, m2.Values[i])
	}
	return out, nil
}

func mapRemove(l *library, a args) (ast.Expression, error) {
	m, err := a.mapping("$map")
	if err != nil {
		return nil, err
	}
	drop := a.list("$keys").Elements
	out := &ast.Map{Loc: a.loc()}
	for i, k := range m.Keys {
		removed := false
		for _, d := range drop {
			if eq, err := ast.Equal(k, d); err == nil && eq {
				removed = true
				break
			}
		}
		if !removed {
			out.Append(k, m.Values[i])
		}
	}
	return out, nil
}

func mapKeys(l *library, a args) (ast.Expression, error) {
	m, err := a.mapping("$map")
	if err != nil {
		return nil, err
	}
	return &ast.List{Elements: append([]ast.Expression(nil), m.Keys...), Separator: ast.CommaSeparator, Loc: a.loc()}, nil
}

func mapValues(l *library, a args) (ast.Expression, error) {
	m, err := a.mapping("$map")
	if err != nil {
		return nil, err
	}
	return &ast.List{Elements: append([]ast.Expression(nil), m.Values...), Separator: ast.CommaSeparator, Loc: a.loc()}, nil
}

func mapHasKey(l *library, a args) (ast.Expression, error) {
	m, err := a.mapping("$map")
	if err != nil {
		return nil, err
	}
	return a.boolean(m.Has(a.value("$key"))), nil
}

func keywords(l *library, a args) (ast.Expression, error) {
	list, ok := a.value("$args").(*ast.List)
	if !ok || !list.IsArglist {
		return nil, a.typeError("$args", "argument list")
	}
	if list.Keywords == nil {
		return &ast.Map{Loc: a.loc()}, nil
	}
	return copyMap(list.Keywords, a.loc()), nil
}
