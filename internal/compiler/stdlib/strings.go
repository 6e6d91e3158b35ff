package stdlib

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

func unquote(l *library, a args) (ast.Expression, error) {
	switch v := a.value("$string").(type) {
	case *ast.String:
		return &ast.String{Value: v.Value, Loc: a.loc()}, nil
	default:
		return v, nil
	}
}

func quote(l *library, a args) (ast.Expression, error) {
	s, err := a.str("$string")
	if err != nil {
		return nil, err
	}
	return &ast.String{Value: s.Value, Quote: '"', Loc: a.loc()}, nil
}

// withValue keeps the quoting of orig.
func withValue(orig *ast.String, value string, loc ast.SourceLocation) *ast.String {
	return &ast.String{Value: value, Quote: orig.Quote, Loc: loc}
}

func strLength(l *library, a args) (ast.Expression, error) {
	s, err := a.str("$string")
	if err != nil {
		return nil, err
	}
	return a.newNumber(float64(utf8.RuneCountInString(s.Value)), ""), nil
}

func strInsert(l *library, a args) (ast.Expression, error) {
	s, err := a.str("$string")
	if err != nil {
		return nil, err
	}
	ins, err := a.str("$insert")
	if err != nil {
		return nil, err
	}
	n, err := a.number("$index")
	if err != nil {
		return nil, err
	}

	runes := []rune(s.Value)
	size := len(runes)
	i := int(n.Value)
	var at int
	switch {
	case i > 0 && i <= size:
		at = i - 1
	case i > size:
		at = size
	case i == 0:
		at = 0
	case -i <= size:
		at = size + i + 1
	default:
		at = 0
	}
	out := string(runes[:at]) + ins.Value + string(runes[at:])
	return withValue(s, out, a.loc()), nil
}

func strIndex(l *library, a args) (ast.Expression, error) {
	s, err := a.str("$string")
	if err != nil {
		return nil, err
	}
	sub, err := a.str("$substring")
	if err != nil {
		return nil, err
	}
	i := strings.Index(s.Value, sub.Value)
	if i < 0 {
		return &ast.Null{Loc: a.loc()}, nil
	}
	return a.newNumber(float64(utf8.RuneCountInString(s.Value[:i])+1), ""), nil
}

func strSlice(l *library, a args) (ast.Expression, error) {
	s, err := a.str("$string")
	if err != nil {
		return nil, err
	}
	from, err := a.number("$start-at")
	if err != nil {
		return nil, err
	}
	to, err := a.number("$end-at")
	if err != nil {
		return nil, err
	}

	runes := []rune(s.Value)
	size := len(runes)
	start, end := int(from.Value), int(to.Value)
	if start < 0 {
		start += size + 1
	}
	if start < 1 {
		start = 1
	}
	if end < 0 {
		end += size + 1
	}
	if end > size {
		end = size
	}
	if start > end {
		return withValue(s, "", a.loc()), nil
	}
	return withValue(s, string(runes[start-1:end]), a.loc()), nil
}

func changeCase(upper bool) builtin {
	return func(l *library, a args) (ast.Expression, error) {
		s, err := a.str("$string")
		if err != nil {
			return nil, err
		}
		b := []byte(s.Value)
		for i, c := range b {
			switch {
			case upper && c >= 'a' && c <= 'z':
				b[i] = c - 'a' + 'A'
			case !upper && c >= 'A' && c <= 'Z':
				b[i] = c - 'A' + 'a'
			}
		}
		return withValue(s, string(b), a.loc()), nil
	}
}

func uniqueID(l *library, a args) (ast.Expression, error) {
	id := uuid.New()
	return a.unquoted("u" + hex.EncodeToString(id[:4])), nil
}
