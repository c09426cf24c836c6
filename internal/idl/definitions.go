package idl

import (
	"fmt"

	"github.com/funvibe/webidl/internal/diagnostics"
)

func rejectExtendedAttributes(attrs []*ExtendedAttribute, on string) error {
	if len(attrs) > 0 {
		return diagnostics.NewError(fmt.Sprintf("Unknown extended attribute %s on %s", attrs[0].name, on), attrs[0].loc)
	}
	return nil
}

// ExternalInterface is "interface Foo;": a name known to be an interface
// whose definition lives elsewhere.
type ExternalInterface struct {
	loc   diagnostics.Location
	ident *Identifier
}

func NewExternalInterface(loc diagnostics.Location, parentScope *Scope, id *Identifier) (*ExternalInterface, error) {
	ext := &ExternalInterface{loc: loc, ident: id}
	if err := id.Resolve(parentScope, ext); err != nil {
		return nil, err
	}
	return ext, nil
}

func (e *ExternalInterface) isDefinition()                  {}
func (e *ExternalInterface) Location() diagnostics.Location { return e.loc }
func (e *ExternalInterface) Identifier() *Identifier        { return e.ident }
func (e *ExternalInterface) Finish(*Scope) error            { return nil }
func (e *ExternalInterface) Validate() error                { return nil }
func (e *ExternalInterface) dependentObjects() []Dependent  { return nil }

func (e *ExternalInterface) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	return rejectExtendedAttributes(attrs, "external interface")
}

// Enum is an enumeration of distinct strings.
type Enum struct {
	loc    diagnostics.Location
	ident  *Identifier
	values []string
}

func NewEnum(loc diagnostics.Location, parentScope *Scope, id *Identifier, values []string) (*Enum, error) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return nil, diagnostics.NewError(fmt.Sprintf("Enum %s has multiple identical strings", id.Name), loc)
		}
		seen[v] = true
	}
	e := &Enum{loc: loc, ident: id, values: values}
	if err := id.Resolve(parentScope, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Enum) isDefinition()                  {}
func (e *Enum) Location() diagnostics.Location { return e.loc }
func (e *Enum) Identifier() *Identifier        { return e.ident }
func (e *Enum) Values() []string               { return append([]string(nil), e.values...) }
func (e *Enum) Finish(*Scope) error            { return nil }
func (e *Enum) Validate() error                { return nil }
func (e *Enum) dependentObjects() []Dependent  { return nil }

func (e *Enum) HasValue(v string) bool {
	for _, have := range e.values {
		if have == v {
			return true
		}
	}
	return false
}

func (e *Enum) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	return rejectExtendedAttributes(attrs, "enum")
}

// Typedef names another type. Uses of the name complete to the aliased
// type directly.
type Typedef struct {
	loc        diagnostics.Location
	ident      *Identifier
	inner      Type
	completing bool
}

func NewTypedef(loc diagnostics.Location, parentScope *Scope, inner Type, name string) (*Typedef, error) {
	id, err := NewUnresolvedIdentifier(loc, name)
	if err != nil {
		return nil, err
	}
	td := &Typedef{loc: loc, ident: id, inner: inner}
	if err := id.Resolve(parentScope, td); err != nil {
		return nil, err
	}
	return td, nil
}

func (t *Typedef) isDefinition()                  {}
func (t *Typedef) Location() diagnostics.Location { return t.loc }
func (t *Typedef) Identifier() *Identifier        { return t.ident }
func (t *Typedef) InnerType() Type                { return t.inner }
func (t *Typedef) Validate() error                { return nil }
func (t *Typedef) dependentObjects() []Dependent  { return t.inner.dependentObjects() }

func (t *Typedef) Finish(scope *Scope) error {
	if t.inner.IsComplete() {
		return nil
	}
	t.completing = true
	inner, err := t.inner.Complete(scope)
	t.completing = false
	if err != nil {
		return err
	}
	t.inner = inner
	return nil
}

// completeUse completes a reference to the typedef at loc. A typedef whose
// aliased type leads back to itself is an error.
func (t *Typedef) completeUse(loc diagnostics.Location, scope *Scope) (Type, error) {
	if t.completing {
		return nil, diagnostics.NewError(fmt.Sprintf("Typedef %s is recursive", t.ident.Name), loc, t.loc)
	}
	t.completing = true
	defer func() { t.completing = false }()
	return NewTypedefType(loc, t.inner, t.ident.Name).Complete(scope)
}

func (t *Typedef) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	return rejectExtendedAttributes(attrs, "typedef")
}

// ImplementsStatement is "A implements B;". Finishing it records B as a
// mixin of A; it must run before any interface finishes.
type ImplementsStatement struct {
	loc         diagnostics.Location
	implementor *Placeholder
	implementee *Placeholder
}

func NewImplementsStatement(loc diagnostics.Location, implementor, implementee *Placeholder) *ImplementsStatement {
	return &ImplementsStatement{loc: loc, implementor: implementor, implementee: implementee}
}

func (s *ImplementsStatement) isDefinition()                  {}
func (s *ImplementsStatement) Location() diagnostics.Location { return s.loc }
func (s *ImplementsStatement) Validate() error                { return nil }
func (s *ImplementsStatement) dependentObjects() []Dependent  { return nil }

func (s *ImplementsStatement) Finish(scope *Scope) error {
	left, err := s.implementor.Resolve(scope)
	if err != nil {
		return err
	}
	right, err := s.implementee.Resolve(scope)
	if err != nil {
		return err
	}
	implementor, ok := left.(*Interface)
	if !ok {
		return diagnostics.NewError("Left-hand side of 'implements' is not an interface", s.implementor.loc)
	}
	if implementor.callback {
		return diagnostics.NewError("Left-hand side of 'implements' is a callback interface", s.implementor.loc)
	}
	implementee, ok := right.(*Interface)
	if !ok {
		return diagnostics.NewError("Right-hand side of 'implements' is not an interface", s.implementee.loc)
	}
	if implementee.callback {
		return diagnostics.NewError("Right-hand side of 'implements' is a callback interface", s.implementee.loc)
	}
	implementor.addImplementedInterface(implementee)
	return nil
}

func (s *ImplementsStatement) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	return rejectExtendedAttributes(attrs, "implements statement")
}
