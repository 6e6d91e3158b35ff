package ast

// Equal implements SassScript `==`. Values of different types are unequal,
// numbers compare after unit conversion, and lists and maps compare
// element-wise. Numbers with units from different groups are an error.
func Equal(a, b Expression) (bool, error) {
	if d, ok := a.(*BinaryExpr); ok && d.Policy == Delayed {
		return Inspect(a) == Inspect(b), nil
	}
	switch l := a.(type) {
	case *Null:
		_, ok := b.(*Null)
		return ok, nil
	case *Boolean:
		r, ok := b.(*Boolean)
		return ok && l.Value == r.Value, nil
	case *Number:
		r, ok := b.(*Number)
		if !ok {
			return false, nil
		}
		return l.Equivalent(r)
	case *Color:
		r, ok := b.(*Color)
		return ok && l.R == r.R && l.G == r.G && l.B == r.B && l.A == r.A, nil
	case *String:
		r, ok := b.(*String)
		return ok && l.Value == r.Value, nil
	case *List:
		r, ok := b.(*List)
		if !ok || len(l.Elements) != len(r.Elements) || l.Separator != r.Separator {
			return false, nil
		}
		for i := range l.Elements {
			if eq, err := Equal(l.Elements[i], r.Elements[i]); err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case *Map:
		r, ok := b.(*Map)
		if !ok || l.Len() != r.Len() {
			return false, nil
		}
		for i, k := range l.Keys {
			v, found := r.Get(k)
			if !found {
				return false, nil
			}
			if eq, err := Equal(l.Values[i], v); err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	default:
		return false, nil
	}
}
