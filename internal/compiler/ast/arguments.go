package ast

// OrderError reports a parameter or argument list whose items are in an order
// the language does not allow.
type OrderError struct {
	Message string
	Loc     SourceLocation
}

func (e *OrderError) Error() string {
	return e.Message
}

// Argument is one value passed to a function or mixin call
type Argument struct {
	Value     Expression
	Name      string // `$name` for named arguments
	IsRest    bool   // trailing `...`
	IsKeyword bool   // second `...`, a map of keyword arguments
	Loc       SourceLocation
}

func (a *Argument) node()     {}
func (a *Argument) exprNode() {}

// Location returns the source location of the argument node in the AST.
func (a *Argument) Location() SourceLocation {
	return a.Loc
}

// Arguments is the argument list of a call
type Arguments struct {
	Items      []*Argument
	HasNamed   bool
	HasRest    bool
	HasKeyword bool
	Loc        SourceLocation
}

func (a *Arguments) node()     {}
func (a *Arguments) exprNode() {}

// Location returns the source location of the arguments node in the AST.
func (a *Arguments) Location() SourceLocation {
	return a.Loc
}

// Append adds an argument, enforcing positional, named, rest, keyword order.
func (a *Arguments) Append(arg *Argument) error {
	switch {
	case arg.Name != "":
		if a.HasRest || a.HasKeyword {
			return &OrderError{"named arguments must precede variable-length argument", arg.Loc}
		}
		a.HasNamed = true
	case arg.IsRest:
		if a.HasRest {
			return &OrderError{"functions and mixins may only be called with one variable-length argument", arg.Loc}
		}
		if a.HasKeyword {
			return &OrderError{"only keyword arguments may follow variable arguments", arg.Loc}
		}
		a.HasRest = true
	case arg.IsKeyword:
		if a.HasKeyword {
			return &OrderError{"functions and mixins may only be called with one keyword argument", arg.Loc}
		}
		a.HasKeyword = true
	default:
		if a.HasRest {
			return &OrderError{"ordinal arguments must precede variable-length arguments", arg.Loc}
		}
		if a.HasNamed {
			return &OrderError{"ordinal arguments must precede named arguments", arg.Loc}
		}
	}
	a.Items = append(a.Items, arg)
	return nil
}

// Len returns the number of arguments.
func (a *Arguments) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Items)
}

// Parameter is one declared parameter of a function or mixin
type Parameter struct {
	Name    string // Includes the leading `$`
	Default Expression
	IsRest  bool
	Loc     SourceLocation
}

func (p *Parameter) node() {}

// Location returns the source location of the parameter node in the AST.
func (p *Parameter) Location() SourceLocation {
	return p.Loc
}

// Parameters is the declared parameter list of a function or mixin
type Parameters struct {
	Items       []*Parameter
	HasOptional bool
	HasRest     bool
	Loc         SourceLocation
}

func (p *Parameters) node() {}

// Location returns the source location of the parameters node in the AST.
func (p *Parameters) Location() SourceLocation {
	return p.Loc
}

// Append adds a parameter, enforcing required, optional, rest order.
func (p *Parameters) Append(param *Parameter) error {
	switch {
	case param.Default != nil:
		if p.HasRest {
			return &OrderError{"optional parameters may not be combined with variable-length parameters", param.Loc}
		}
		p.HasOptional = true
	case param.IsRest:
		if p.HasRest {
			return &OrderError{"functions and mixins cannot have more than one variable-length parameter", param.Loc}
		}
		p.HasRest = true
	default:
		if p.HasRest {
			return &OrderError{"required parameters must precede variable-length parameters", param.Loc}
		}
		if p.HasOptional {
			return &OrderError{"required parameters must precede optional parameters", param.Loc}
		}
	}
	p.Items = append(p.Items, param)
	return nil
}

// Len returns the number of parameters.
func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}
