package idl

import "github.com/funvibe/webidl/internal/diagnostics"

// Callback is a named function type.
type Callback struct {
	Scope
	loc                    diagnostics.Location
	ident                  *Identifier
	returnType             Type
	arguments              []*Argument
	treatNonCallableAsNull bool
	treatNonObjectAsNull   bool
}

func NewCallback(loc diagnostics.Location, parentScope *Scope, id *Identifier, returnType Type, args []*Argument) (*Callback, error) {
	cb := &Callback{loc: loc, ident: id, returnType: returnType, arguments: append([]*Argument(nil), args...)}
	if err := id.Resolve(parentScope, cb); err != nil {
		return nil, err
	}
	cb.Scope.init(parentScope, id)
	for _, arg := range cb.arguments {
		if err := arg.resolve(&cb.Scope); err != nil {
			return nil, err
		}
	}
	return cb, nil
}

func (c *Callback) isDefinition()                  {}
func (c *Callback) Location() diagnostics.Location { return c.loc }
func (c *Callback) Identifier() *Identifier        { return c.ident }
func (c *Callback) ReturnType() Type               { return c.returnType }
func (c *Callback) Arguments() []*Argument         { return c.arguments }
func (c *Callback) TreatNonCallableAsNull() bool   { return c.treatNonCallableAsNull }
func (c *Callback) TreatNonObjectAsNull() bool     { return c.treatNonObjectAsNull }
func (c *Callback) Validate() error                { return nil }

func (c *Callback) dependentObjects() []Dependent {
	deps := []Dependent{c.returnType}
	for _, arg := range c.arguments {
		deps = append(deps, arg)
	}
	return deps
}

func (c *Callback) Finish(scope *Scope) error {
	if !c.returnType.IsComplete() {
		t, err := c.returnType.Complete(scope)
		if err != nil {
			return err
		}
		c.returnType = t
	}
	for _, arg := range c.arguments {
		if err := arg.Complete(scope); err != nil {
			return err
		}
	}
	return nil
}

func (c *Callback) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	var unhandled []*ExtendedAttribute
	for _, attr := range attrs {
		switch attr.name {
		case "TreatNonCallableAsNull":
			c.treatNonCallableAsNull = true
		case "TreatNonObjectAsNull":
			c.treatNonObjectAsNull = true
		default:
			unhandled = append(unhandled, attr)
		}
	}
	if c.treatNonCallableAsNull && c.treatNonObjectAsNull {
		return diagnostics.NewError("Cannot specify both [TreatNonCallableAsNull] and [TreatNonObjectAsNull]", c.loc)
	}
	if len(unhandled) > 0 {
		return diagnostics.NewError("There are no extended attributes that are allowed on types, for now "+
			"(but this is changing; expect that to stop being true at some point)", unhandled[0].loc)
	}
	return nil
}
