package idl

import (
	"fmt"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// MemberTag says which kind of interface member a Member is.
type MemberTag int

const (
	MemberConst MemberTag = iota
	MemberAttr
	MemberMethod
)

func (t MemberTag) String() string {
	switch t {
	case MemberConst:
		return "const"
	case MemberAttr:
		return "attribute"
	}
	return "method"
}

// Member is a constant, attribute or operation of an interface.
type Member interface {
	Object
	Dependent
	MemberTag() MemberTag
	IsStatic() bool
	ExtendedAttribute(name string) ([]string, bool)
	AddExtendedAttributes(attrs []*ExtendedAttribute) error
	Finish(scope *Scope) error
	Validate() error
	resolve(parent *Scope) error
}

type memberBase struct {
	loc      diagnostics.Location
	ident    *Identifier
	extAttrs extAttrDict
}

func newMemberBase(loc diagnostics.Location, id *Identifier) memberBase {
	return memberBase{loc: loc, ident: id, extAttrs: make(extAttrDict)}
}

func (m *memberBase) Location() diagnostics.Location { return m.loc }
func (m *memberBase) Identifier() *Identifier        { return m.ident }

// ExtendedAttribute returns the values recorded for name; an attribute
// given without a value yields an empty list and true.
func (m *memberBase) ExtendedAttribute(name string) ([]string, bool) {
	return m.extAttrs.get(name)
}

func (m *memberBase) HasExtendedAttribute(name string) bool { return m.extAttrs.has(name) }

// ExtendedAttributes returns every recorded attribute by name.
func (m *memberBase) ExtendedAttributes() map[string][]string { return m.extAttrs.copy() }

// Const is "const T name = value;".
type Const struct {
	memberBase
	typ   Type
	value *Value
}

func NewConst(loc diagnostics.Location, id *Identifier, typ Type, value *Value) (*Const, error) {
	if typ.IsDictionary() {
		return nil, diagnostics.NewError("A constant cannot be of a dictionary type", loc)
	}
	if id.Name == "prototype" {
		return nil, diagnostics.NewError("The identifier of a constant must not be 'prototype'", loc)
	}
	return &Const{memberBase: newMemberBase(loc, id), typ: typ, value: value}, nil
}

func (c *Const) Type() Type                  { return c.typ }
func (c *Const) Value() *Value               { return c.value }
func (c *Const) MemberTag() MemberTag        { return MemberConst }
func (c *Const) IsStatic() bool              { return false }
func (c *Const) resolve(parent *Scope) error { return c.ident.Resolve(parent, c) }

func (c *Const) dependentObjects() []Dependent { return []Dependent{c.typ, c.value} }

func (c *Const) Finish(scope *Scope) error {
	if !c.typ.IsComplete() {
		t, err := c.typ.Complete(scope)
		if err != nil {
			return err
		}
		if !t.IsPrimitive() && !t.IsString() {
			return diagnostics.NewError("Incorrect type for constant", c.typ.Location(), t.Location())
		}
		c.typ = t
	}
	coerced, err := c.value.CoerceToType(c.typ, c.loc)
	if err != nil {
		return err
	}
	c.value = coerced
	return nil
}

func (c *Const) Validate() error { return nil }

func (c *Const) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	for _, attr := range attrs {
		switch attr.name {
		case "Pref", "ChromeOnly", "Func", "AvailableIn", "CheckPermissions":
		default:
			return diagnostics.NewError(fmt.Sprintf("Unknown extended attribute %s on constant", attr.name), attr.loc)
		}
		c.extAttrs.set(attr)
	}
	return nil
}

// stringHandling holds the [TreatNullAs] setting shared by attributes and
// arguments.
type stringHandling struct {
	treatNullAs string
}

// TreatNullAs is "Default" unless [TreatNullAs=EmptyString] was given.
func (s *stringHandling) TreatNullAs() string {
	if s.treatNullAs == "" {
		return "Default"
	}
	return s.treatNullAs
}

// takeTreatNullAs consumes [TreatNullAs] from attrs and returns the rest.
func (s *stringHandling) takeTreatNullAs(loc diagnostics.Location, typ Type, attrs []*ExtendedAttribute, dictionaryMember bool) ([]*ExtendedAttribute, error) {
	var rest []*ExtendedAttribute
	for _, attr := range attrs {
		if !attr.hasValue || attr.name != "TreatNullAs" {
			rest = append(rest, attr)
			continue
		}
		if !typ.IsDOMString() || typ.Nullable() {
			return nil, diagnostics.NewError("[TreatNullAs] is only allowed on arguments or attributes whose type is DOMString", loc)
		}
		if dictionaryMember {
			return nil, diagnostics.NewError("[TreatNullAs] is not allowed for dictionary members", loc)
		}
		if attr.value != "EmptyString" {
			return nil, diagnostics.NewError(fmt.Sprintf(
				"[TreatNullAs] must take the identifier 'EmptyString', not '%s'", attr.value), loc)
		}
		s.treatNullAs = attr.value
	}
	return rest, nil
}
