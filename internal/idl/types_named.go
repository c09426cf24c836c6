package idl

import (
	"fmt"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// WrapperType is a type that names a definition: an interface, external
// interface, dictionary, enum or callback.
type WrapperType struct {
	typeBase
	inner Definition
}

func NewWrapperType(loc diagnostics.Location, inner Definition) *WrapperType {
	var name string
	switch d := inner.(type) {
	case *Interface:
		name = d.ident.Name
	case *ExternalInterface:
		name = d.ident.Name
	case *Dictionary:
		name = d.ident.Name
	case *Enum:
		name = d.ident.Name
	case *Callback:
		name = d.ident.Name
	default:
		assert(false, "cannot wrap %T in a type", inner)
	}
	return &WrapperType{typeBase: typeBase{loc: loc, name: name}, inner: inner}
}

// Inner returns the wrapped definition.
func (t *WrapperType) Inner() Definition { return t.inner }

func (t *WrapperType) Complete(*Scope) (Type, error) { return t, nil }
func (t *WrapperType) Unroll() Type                  { return t }

func (t *WrapperType) Tag() Tag {
	switch t.inner.(type) {
	case *Dictionary:
		return TagDictionary
	case *Enum:
		return TagEnum
	case *Callback:
		return TagCallback
	}
	return TagInterface
}

func (t *WrapperType) IsDictionary() bool {
	_, ok := t.inner.(*Dictionary)
	return ok
}

func (t *WrapperType) IsEnum() bool {
	_, ok := t.inner.(*Enum)
	return ok
}

func (t *WrapperType) IsCallback() bool {
	_, ok := t.inner.(*Callback)
	return ok
}

func (t *WrapperType) IsInterface() bool {
	switch t.inner.(type) {
	case *Interface, *ExternalInterface:
		return true
	}
	return false
}

func (t *WrapperType) IsCallbackInterface() bool {
	iface, ok := t.inner.(*Interface)
	return ok && iface.callback
}

func (t *WrapperType) IsNonCallbackInterface() bool {
	return t.IsInterface() && !t.IsCallbackInterface()
}

func (t *WrapperType) dependentObjects() []Dependent {
	// Interface types deliberately carry no dependency on the interface.
	switch t.inner.(type) {
	case *Dictionary, *Enum, *Callback:
		return []Dependent{t.inner}
	}
	return nil
}

func (t *WrapperType) IsDistinguishableFrom(other Type) bool {
	if other.IsPromise() {
		return false
	}
	if other.IsUnion() {
		return other.IsDistinguishableFrom(t)
	}
	if t.IsCallback() {
		return isPrimitiveOrStringOrEnum(other) || other.IsNonCallbackInterface() || other.IsDate()
	}
	if t.IsEnum() {
		return other.IsPrimitive() || isObjectLike(other) || other.IsDate()
	}
	if t.IsDictionary() && other.Nullable() {
		return false
	}
	if isPrimitiveOrStringOrEnum(other) || other.IsDate() {
		return true
	}
	if t.IsDictionary() {
		return other.IsNonCallbackInterface()
	}

	if other.IsInterface() {
		if other.IsSpiderMonkeyInterface() {
			return other.IsDistinguishableFrom(t)
		}
		otherWrapper, ok := other.Unroll().(*WrapperType)
		assert(ok, "interface type %s is not a wrapper", other)
		_, selfExternal := t.inner.(*ExternalInterface)
		_, otherExternal := otherWrapper.inner.(*ExternalInterface)
		if selfExternal || otherExternal {
			return t.Name() != other.Name()
		}
		self := t.inner.(*Interface)
		them := otherWrapper.inner.(*Interface)
		for iface := range self.basedOnSelf {
			if _, shared := them.basedOnSelf[iface]; shared {
				return false
			}
		}
		return t.IsNonCallbackInterface() || other.IsNonCallbackInterface()
	}
	if other.IsDictionary() || other.IsCallback() || other.IsSequence() || other.IsMozMap() || other.IsArray() {
		return t.IsNonCallbackInterface()
	}
	assert(other.IsObject() || other.IsAny() || other.IsVoid(), "unexpected type %s", other)
	return false
}

// UnresolvedType is a named type reference awaiting Complete.
type UnresolvedType struct {
	typeBase
	ident *Identifier
}

func NewUnresolvedType(loc diagnostics.Location, id *Identifier) *UnresolvedType {
	return &UnresolvedType{typeBase: typeBase{loc: loc, name: id.Name}, ident: id}
}

func (t *UnresolvedType) Identifier() *Identifier { return t.ident }
func (t *UnresolvedType) Tag() Tag                { panic(&AssertionError{Message: "tag of unresolved type " + t.name}) }
func (t *UnresolvedType) IsComplete() bool        { return false }
func (t *UnresolvedType) Unroll() Type            { return t }

func (t *UnresolvedType) IsDistinguishableFrom(Type) bool {
	panic(&AssertionError{Message: "distinguishability asked of unresolved type " + t.name})
}

func (t *UnresolvedType) Complete(scope *Scope) (Type, error) {
	obj, ok := scope.Lookup(t.ident.Name)
	if !ok {
		return nil, diagnostics.NewError(fmt.Sprintf("Unresolved type '%s'.", t.ident), t.loc)
	}
	t.ident.scope = scope
	switch d := obj.(type) {
	case *Typedef:
		return d.completeUse(t.loc, scope)
	case *Interface, *ExternalInterface, *Dictionary, *Enum, *Callback:
		return NewWrapperType(t.loc, d.(Definition)), nil
	}
	return nil, diagnostics.NewError(fmt.Sprintf("Unresolved type '%s'.", t.ident), t.loc, obj.Location())
}
