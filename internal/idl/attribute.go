package idl

import (
	"fmt"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// AttributeFlags are the qualifiers written before "attribute".
type AttributeFlags struct {
	Readonly    bool
	Inherit     bool
	Static      bool
	Stringifier bool
}

// Attribute is an interface attribute.
type Attribute struct {
	memberBase
	stringHandling
	typ          Type
	flags        AttributeFlags
	lenientThis  bool
	unforgeable  bool
	enforceRange bool
	clamp        bool
	slotIndex    int
}

func NewAttribute(loc diagnostics.Location, id *Identifier, typ Type, flags AttributeFlags) (*Attribute, error) {
	if flags.Static && id.Name == "prototype" {
		return nil, diagnostics.NewError("The identifier of a static attribute must not be 'prototype'", loc)
	}
	if flags.Readonly && flags.Inherit {
		return nil, diagnostics.NewError("An attribute cannot be both 'readonly' and 'inherit'", loc)
	}
	return &Attribute{memberBase: newMemberBase(loc, id), typ: typ, flags: flags, slotIndex: -1}, nil
}

func (a *Attribute) Type() Type            { return a.typ }
func (a *Attribute) MemberTag() MemberTag  { return MemberAttr }
func (a *Attribute) IsStatic() bool        { return a.flags.Static }
func (a *Attribute) Readonly() bool        { return a.flags.Readonly }
func (a *Attribute) Inherit() bool         { return a.flags.Inherit }
func (a *Attribute) Stringifier() bool     { return a.flags.Stringifier }
func (a *Attribute) HasLenientThis() bool  { return a.lenientThis }
func (a *Attribute) IsUnforgeable() bool   { return a.unforgeable }
func (a *Attribute) EnforceRange() bool    { return a.enforceRange }
func (a *Attribute) Clamp() bool           { return a.clamp }

// SlotIndex is the reserved slot of a [StoreInSlot] or [Cached] attribute,
// or -1.
func (a *Attribute) SlotIndex() int { return a.slotIndex }

func (a *Attribute) resolve(parent *Scope) error { return a.ident.Resolve(parent, a) }

func (a *Attribute) dependentObjects() []Dependent { return []Dependent{a.typ} }

func (a *Attribute) Finish(scope *Scope) error {
	if !a.typ.IsComplete() {
		t, err := a.typ.Complete(scope)
		if err != nil {
			return err
		}
		a.typ = t
	}
	cached := a.extAttrs.has("Cached")
	switch {
	case a.typ.IsDictionary() && !cached:
		return diagnostics.NewError("An attribute cannot be of a dictionary type", a.loc)
	case a.typ.IsSequence() && !cached:
		return diagnostics.NewError("A non-cached attribute cannot be of a sequence type", a.loc)
	case a.typ.IsMozMap() && !cached:
		return diagnostics.NewError("A non-cached attribute cannot be of a MozMap type", a.loc)
	}
	if u, ok := a.typ.Unroll().(*UnionType); ok && a.typ.IsUnion() {
		for _, f := range u.flatMemberTypes {
			var what string
			switch {
			case f.IsDictionary():
				what = "dictionary"
			case f.IsSequence():
				what = "sequence"
			case f.IsMozMap():
				what = "MozMap"
			default:
				continue
			}
			return diagnostics.NewError(fmt.Sprintf("An attribute cannot be of a union type if one of its "+
				"member types (or one of its member types's member types, and so on) is a %s type", what),
				a.loc, f.Location())
		}
	}
	if !a.typ.IsInterface() && a.extAttrs.has("PutForwards") {
		return diagnostics.NewError("An attribute with [PutForwards] must have an interface type as its type", a.loc)
	}
	if !a.typ.IsInterface() && a.extAttrs.has("SameObject") {
		return diagnostics.NewError("An attribute with [SameObject] must have an interface type as its type", a.loc)
	}
	return nil
}

func (a *Attribute) Validate() error {
	if (a.extAttrs.has("Cached") || a.extAttrs.has("StoreInSlot")) &&
		!a.extAttrs.has("Constant") && !a.extAttrs.has("Pure") {
		return diagnostics.NewError("Cached attributes and attributes stored in slots must be constant or pure, "+
			"since the getter won't always be called.", a.loc)
	}
	if a.extAttrs.has("Frozen") && !a.typ.IsSequence() && !a.typ.IsDictionary() && !a.typ.IsMozMap() {
		return diagnostics.NewError("[Frozen] is only allowed on sequence-valued, dictionary-valued, "+
			"and MozMap-valued attributes", a.loc)
	}
	return nil
}

func (a *Attribute) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	attrs, err := a.takeTreatNullAs(a.loc, a.typ, attrs, false)
	if err != nil {
		return err
	}
	for _, attr := range attrs {
		if err := a.handleExtendedAttribute(attr); err != nil {
			return err
		}
		a.extAttrs.set(attr)
	}
	return nil
}

func (a *Attribute) handleExtendedAttribute(attr *ExtendedAttribute) error {
	name := attr.name
	fail := func(format string, args ...interface{}) error {
		return diagnostics.NewError(fmt.Sprintf(format, args...), attr.loc, a.loc)
	}
	switch name {
	case "SetterThrows":
		if a.flags.Readonly {
			return fail("Readonly attributes must not be flagged as [SetterThrows]")
		}
	case "Throws", "GetterThrows":
		if a.extAttrs.has("StoreInSlot") {
			return fail("Throwing things can't be [StoreInSlot]")
		}
	case "LenientThis":
		if !attr.NoArguments() {
			return fail("[LenientThis] must take no arguments")
		}
		if a.flags.Static {
			return fail("[LenientThis] is only allowed on non-static attributes")
		}
		for _, other := range []string{"CrossOriginReadable", "CrossOriginWritable"} {
			if a.extAttrs.has(other) {
				return fail("[LenientThis] is not allowed in combination with [%s]", other)
			}
		}
		a.lenientThis = true
	case "Unforgeable":
		if a.flags.Static {
			return fail("[Unforgeable] is only allowed on non-static attributes")
		}
		if !a.flags.Readonly {
			return fail("[Unforgeable] is only allowed on readonly attributes")
		}
		a.unforgeable = true
	case "SameObject", "Constant":
		if !a.flags.Readonly {
			return fail("[%s] only allowed on readonly attributes", name)
		}
	case "PutForwards":
		if !a.flags.Readonly {
			return fail("[PutForwards] is only allowed on readonly attributes")
		}
		if a.flags.Static {
			return fail("[PutForwards] is only allowed on non-static attributes")
		}
		if a.extAttrs.has("Replaceable") {
			return fail("[PutForwards] and [Replaceable] can't both appear on the same attribute")
		}
		if !attr.hasValue {
			return fail("[PutForwards] takes an identifier")
		}
	case "Replaceable":
		if a.extAttrs.has("PutForwards") {
			return fail("[PutForwards] and [Replaceable] can't both appear on the same attribute")
		}
	case "LenientFloat":
		if a.flags.Readonly {
			return fail("[LenientFloat] used on a readonly attribute")
		}
		if !a.typ.IncludesRestrictedFloat() {
			return fail("[LenientFloat] used on an attribute with a non-restricted-float type")
		}
	case "EnforceRange", "Clamp":
		if a.flags.Readonly {
			return fail("[%s] used on a readonly attribute", name)
		}
		if name == "Clamp" {
			a.clamp = true
		} else {
			a.enforceRange = true
		}
	case "StoreInSlot":
		if a.extAttrs.has("Cached") {
			return fail("[StoreInSlot] and [Cached] must not be specified on the same attribute")
		}
		if a.extAttrs.has("Throws") || a.extAttrs.has("GetterThrows") {
			return fail("Throwing things can't be [StoreInSlot]")
		}
	case "Cached":
		if a.extAttrs.has("StoreInSlot") {
			return fail("[Cached] and [StoreInSlot] must not be specified on the same attribute")
		}
	case "CrossOriginReadable", "CrossOriginWritable":
		if !attr.NoArguments() {
			return fail("[%s] must take no arguments", name)
		}
		if a.flags.Static {
			return fail("[%s] is only allowed on non-static attributes", name)
		}
		if a.extAttrs.has("LenientThis") {
			return fail("[LenientThis] is not allowed in combination with [%s]", name)
		}
	case "Pref", "Pure", "ChromeOnly", "Func", "Frozen", "AvailableIn",
		"NewObject", "CheckPermissions", "BinaryName":
	default:
		return diagnostics.NewError(fmt.Sprintf("Unknown extended attribute %s on attribute", name), attr.loc)
	}
	return nil
}
