package stdlib

import (
	"fmt"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

func length(l *library, a args) (ast.Expression, error) {
	if m, ok := a.value("$list").(*ast.Map); ok {
		return a.newNumber(float64(m.Len()), ""), nil
	}
	return a.newNumber(float64(len(a.list("$list").Elements)), ""), nil
}

// position converts the 1-based, possibly negative $n into a slice index.
func position(a args, list *ast.List) (int, error) {
	n, err := a.number("$n")
	if err != nil {
		return 0, err
	}
	if n.Value == 0 {
		return 0, fmt.Errorf("argument `$n` of `%s` must be non-zero", a.sig)
	}
	size := len(list.Elements)
	if size == 0 {
		return 0, fmt.Errorf("argument `$list` of `%s` must not be empty", a.sig)
	}
	i := int(n.Value)
	if i > 0 {
		i--
	} else {
		i += size
	}
	if i < 0 || i >= size {
		return 0, fmt.Errorf("index out of bounds for `%s`", a.sig)
	}
	return i, nil
}

func nth(l *library, a args) (ast.Expression, error) {
	list := a.list("$list")
	i, err := position(a, list)
	if err != nil {
		return nil, err
	}
	return list.Elements[i], nil
}

func setNth(l *library, a args) (ast.Expression, error) {
	list := a.list("$list")
	i, err := position(a, list)
	if err != nil {
		return nil, err
	}
	out := &ast.List{
		Elements:  append([]ast.Expression(nil), list.Elements...),
		Separator: list.Separator,
		Loc:       a.loc(),
	}
	out.Elements[i] = a.value("$value")
	return out, nil
}

func index(l *library, a args) (ast.Expression, error) {
	want := a.value("$value")
	for i, el := range a.list("$list").Elements {
		if eq, err := ast.Equal(el, want); err == nil && eq {
			return a.newNumber(float64(i+1), ""), nil
		}
	}
	return &ast.Null{Loc: a.loc()}, nil
}

// separator resolves $separator. auto keeps the separator of the first list,
// or a space when the first argument is not a list.
func separator(a args, first string) (ast.Separator, error) {
	s, err := a.str("$separator")
	if err != nil {
		return 0, err
	}
	switch s.Value {
	case "space":
		return ast.SpaceSeparator, nil
	case "comma":
		return ast.CommaSeparator, nil
	case "auto":
		switch v := a.value(first).(type) {
		case *ast.List:
			return v.Separator, nil
		case *ast.Map:
			return ast.CommaSeparator, nil
		}
		return ast.SpaceSeparator, nil
	}
	return 0, fmt.Errorf("argument `$separator` of `%s` must be `space`, `comma`, or `auto`", a.sig)
}

func join(l *library, a args) (ast.Expression, error) {
	sep, err := separator(a, "$list1")
	if err != nil {
		return nil, err
	}
	l1, l2 := a.list("$list1"), a.list("$list2")
	out := &ast.List{Separator: sep, Loc: a.loc()}
	out.Elements = append(out.Elements, l1.Elements...)
	out.Elements = append(out.Elements, l2.Elements...)
	return out, nil
}

func appendValue(l *library, a args) (ast.Expression, error) {
	sep, err := separator(a, "$list")
	if err != nil {
		return nil, err
	}
	list := a.list("$list")
	out := &ast.List{Separator: sep, Loc: a.loc()}
	out.Elements = append(out.Elements, list.Elements...)
	out.Elements = append(out.Elements, a.value("$val"))
	return out, nil
}

func zip(l *library, a args) (ast.Expression, error) {
	var lists []*ast.List
	shortest := -1
	for _, el := range a.list("$lists").Elements {
		list := asList(el)
		lists = append(lists, list)
		if shortest < 0 || len(list.Elements) < shortest {
			shortest = len(list.Elements)
		}
	}
	out := &ast.List{Separator: ast.CommaSeparator, Loc: a.loc()}
	for i := 0; i < shortest; i++ {
		row := &ast.List{Separator: ast.SpaceSeparator, Loc: a.loc()}
		for _, list := range lists {
			row.Elements = append(row.Elements, list.Elements[i])
		}
		out.Elements = append(out.Elements, row)
	}
	return out, nil
}

func listSeparator(l *library, a args) (ast.Expression, error) {
	switch v := a.value("$list").(type) {
	case *ast.List:
		return a.unquoted(v.Separator.String()), nil
	case *ast.Map:
		return a.unquoted(ast.CommaSeparator.String()), nil
	}
	return a.unquoted(ast.SpaceSeparator.String()), nil
}
