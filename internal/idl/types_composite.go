package idl

import (
	"fmt"
	"strings"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// NullableType is T?. It answers every predicate the way its inner type
// does, except nullability itself.
type NullableType struct {
	Type
	loc diagnostics.Location
}

func NewNullableType(loc diagnostics.Location, inner Type) *NullableType {
	assert(!inner.IsVoid(), "nullable void")
	assert(!inner.IsAny(), "nullable any")
	return &NullableType{Type: inner, loc: loc}
}

// Inner returns the type T of T?.
func (t *NullableType) Inner() Type                    { return t.Type }
func (t *NullableType) Location() diagnostics.Location { return t.loc }
func (t *NullableType) Name() string                   { return t.Type.Name() + "OrNull" }
func (t *NullableType) String() string                 { return t.Name() }
func (t *NullableType) Nullable() bool                 { return true }
func (t *NullableType) Unroll() Type                   { return t.Type.Unroll() }
func (t *NullableType) dependentObjects() []Dependent  { return []Dependent{t.Type} }

func (t *NullableType) Complete(scope *Scope) (Type, error) {
	inner, err := t.Type.Complete(scope)
	if err != nil {
		return nil, err
	}
	t.Type = inner
	if inner.Nullable() {
		return nil, diagnostics.NewError("The inner type of a nullable type must not be a nullable type", t.loc, inner.Location())
	}
	if u, ok := inner.(*UnionType); ok && u.hasNullableType {
		return nil, diagnostics.NewError("The inner type of a nullable type must not be a union "+
			"type that itself has a nullable type as a member type", t.loc)
	}
	return t, nil
}

func (t *NullableType) IsDistinguishableFrom(other Type) bool {
	if other.Nullable() || unionHasNullable(other) || other.IsDictionary() {
		return false
	}
	return t.Type.IsDistinguishableFrom(other)
}

// SequenceType is sequence<T>.
type SequenceType struct {
	typeBase
	inner Type
}

func NewSequenceType(loc diagnostics.Location, inner Type) *SequenceType {
	assert(!inner.IsVoid(), "sequence of void")
	return &SequenceType{typeBase: typeBase{loc: loc}, inner: inner}
}

func (t *SequenceType) Inner() Type                   { return t.inner }
func (t *SequenceType) Name() string                  { return t.inner.Name() + "Sequence" }
func (t *SequenceType) String() string                { return t.Name() }
func (t *SequenceType) Tag() Tag                      { return TagSequence }
func (t *SequenceType) IsSequence() bool              { return true }
func (t *SequenceType) IsComplete() bool              { return t.inner.IsComplete() }
func (t *SequenceType) IncludesRestrictedFloat() bool { return t.inner.IncludesRestrictedFloat() }
func (t *SequenceType) Unroll() Type                  { return t.inner.Unroll() }
func (t *SequenceType) dependentObjects() []Dependent { return []Dependent{t.inner} }

func (t *SequenceType) Complete(scope *Scope) (Type, error) {
	inner, err := t.inner.Complete(scope)
	if err != nil {
		return nil, err
	}
	t.inner = inner
	return t, nil
}

func (t *SequenceType) IsDistinguishableFrom(other Type) bool {
	if other.IsPromise() {
		return false
	}
	if other.IsUnion() {
		return other.IsDistinguishableFrom(t)
	}
	return isPrimitiveOrStringOrEnum(other) || other.IsDate() || other.IsNonCallbackInterface() || other.IsMozMap()
}

// MozMapType is MozMap<T>, a string-keyed record. Unroll stops at the
// MozMap itself instead of reaching the inner type.
type MozMapType struct {
	typeBase
	inner Type
}

func NewMozMapType(loc diagnostics.Location, inner Type) *MozMapType {
	assert(!inner.IsVoid(), "MozMap of void")
	return &MozMapType{typeBase: typeBase{loc: loc}, inner: inner}
}

func (t *MozMapType) Inner() Type                   { return t.inner }
func (t *MozMapType) Name() string                  { return t.inner.Name() + "MozMap" }
func (t *MozMapType) String() string                { return t.Name() }
func (t *MozMapType) Tag() Tag                      { return TagMozMap }
func (t *MozMapType) IsMozMap() bool                { return true }
func (t *MozMapType) IsComplete() bool              { return t.inner.IsComplete() }
func (t *MozMapType) IncludesRestrictedFloat() bool { return t.inner.IncludesRestrictedFloat() }
func (t *MozMapType) Unroll() Type                  { return t }
func (t *MozMapType) dependentObjects() []Dependent { return []Dependent{t.inner} }

func (t *MozMapType) Complete(scope *Scope) (Type, error) {
	inner, err := t.inner.Complete(scope)
	if err != nil {
		return nil, err
	}
	t.inner = inner
	return t, nil
}

func (t *MozMapType) IsDistinguishableFrom(other Type) bool {
	if other.IsPromise() {
		return false
	}
	if other.IsUnion() {
		return other.IsDistinguishableFrom(t)
	}
	return isPrimitiveOrStringOrEnum(other) || other.IsDate() || other.IsNonCallbackInterface() || other.IsSequence()
}

// ArrayType is the legacy T[] form.
type ArrayType struct {
	typeBase
	inner Type
}

func NewArrayType(loc diagnostics.Location, inner Type) (*ArrayType, error) {
	assert(!inner.IsVoid(), "array of void")
	if err := checkArrayElement(loc, inner); err != nil {
		return nil, err
	}
	return &ArrayType{typeBase: typeBase{loc: loc}, inner: inner}, nil
}

func checkArrayElement(loc diagnostics.Location, inner Type) error {
	switch {
	case inner.IsSequence():
		return diagnostics.NewError("Array type cannot parameterize over a sequence type", loc)
	case inner.IsMozMap():
		return diagnostics.NewError("Array type cannot parameterize over a MozMap type", loc)
	case inner.IsDictionary():
		return diagnostics.NewError("Array type cannot parameterize over a dictionary type", loc)
	}
	return nil
}

func (t *ArrayType) Inner() Type                   { return t.inner }
func (t *ArrayType) Name() string                  { return t.inner.Name() + "Array" }
func (t *ArrayType) String() string                { return t.Name() }
func (t *ArrayType) Tag() Tag                      { return TagArray }
func (t *ArrayType) IsArray() bool                 { return true }
func (t *ArrayType) IsComplete() bool              { return t.inner.IsComplete() }
func (t *ArrayType) IncludesRestrictedFloat() bool { return t.inner.IncludesRestrictedFloat() }
func (t *ArrayType) Unroll() Type                  { return t.inner.Unroll() }
func (t *ArrayType) dependentObjects() []Dependent { return []Dependent{t.inner} }

func (t *ArrayType) Complete(scope *Scope) (Type, error) {
	inner, err := t.inner.Complete(scope)
	if err != nil {
		return nil, err
	}
	t.inner = inner
	// Typedefs can hide a forbidden element type until now.
	if err := checkArrayElement(t.loc, inner); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *ArrayType) IsDistinguishableFrom(other Type) bool {
	if other.IsPromise() {
		return false
	}
	if other.IsUnion() {
		return other.IsDistinguishableFrom(t)
	}
	return isPrimitiveOrStringOrEnum(other) || other.IsDate() || other.IsNonCallbackInterface()
}

// UnionType is (A or B or ...). Completion flattens nested unions into
// FlatMemberTypes and moves a nullable member's "?" to the union.
type UnionType struct {
	typeBase
	memberTypes       []Type
	flatMemberTypes   []Type
	hasNullableType   bool
	hasDictionaryType bool
}

func NewUnionType(loc diagnostics.Location, members []Type) *UnionType {
	return &UnionType{typeBase: typeBase{loc: loc, name: "Union"}, memberTypes: members}
}

func (t *UnionType) MemberTypes() []Type     { return t.memberTypes }
func (t *UnionType) FlatMemberTypes() []Type { return t.flatMemberTypes }
func (t *UnionType) HasNullableType() bool   { return t.hasNullableType }
func (t *UnionType) HasDictionaryType() bool { return t.hasDictionaryType }
func (t *UnionType) Tag() Tag                { return TagUnion }
func (t *UnionType) IsUnion() bool           { return true }
func (t *UnionType) IsComplete() bool        { return t.flatMemberTypes != nil }
func (t *UnionType) Unroll() Type            { return t }

func (t *UnionType) IncludesRestrictedFloat() bool {
	for _, m := range t.memberTypes {
		if m.IncludesRestrictedFloat() {
			return true
		}
	}
	return false
}

func (t *UnionType) dependentObjects() []Dependent {
	deps := make([]Dependent, len(t.memberTypes))
	for i, m := range t.memberTypes {
		deps[i] = m
	}
	return deps
}

func (t *UnionType) Complete(scope *Scope) (Type, error) {
	if t.IsComplete() {
		return t, nil
	}
	names := make([]string, len(t.memberTypes))
	for i, m := range t.memberTypes {
		if !m.IsComplete() {
			done, err := m.Complete(scope)
			if err != nil {
				return nil, err
			}
			t.memberTypes[i] = done
		}
		names[i] = t.memberTypes[i].Name()
	}
	t.name = strings.Join(names, "Or")

	flat := append([]Type(nil), t.memberTypes...)
	var nullableType, dictionaryType Type
	for i := 0; i < len(flat); {
		member := flat[i]
		if member.Nullable() {
			if t.hasNullableType {
				return nil, diagnostics.NewError("Can't have more than one nullable types in a union",
					nullableType.Location(), member.Location())
			}
			if t.hasDictionaryType {
				return nil, diagnostics.NewError("Can't have a nullable type and a dictionary type in a union",
					dictionaryType.Location(), member.Location())
			}
			t.hasNullableType = true
			nullableType = member
			flat[i] = member.(*NullableType).Inner()
			continue
		}
		if member.IsDictionary() {
			if t.hasNullableType {
				return nil, diagnostics.NewError("Can't have a nullable type and a dictionary type in a union",
					nullableType.Location(), member.Location())
			}
			t.hasDictionaryType = true
			dictionaryType = member
		} else if nested, ok := member.(*UnionType); ok {
			spliced := append([]Type(nil), flat[:i]...)
			spliced = append(spliced, nested.memberTypes...)
			flat = append(spliced, flat[i+1:]...)
			continue
		}
		i++
	}

	for i, a := range flat {
		for _, b := range flat[i+1:] {
			if !a.IsDistinguishableFrom(b) {
				return nil, diagnostics.NewError(fmt.Sprintf(
					"Flat member types of a union should be distinguishable, %s is not distinguishable from %s", a, b),
					t.loc, a.Location(), b.Location())
			}
		}
	}
	t.flatMemberTypes = flat
	return t, nil
}

func (t *UnionType) IsDistinguishableFrom(other Type) bool {
	if t.hasNullableType && other.Nullable() {
		return false
	}
	others := []Type{other}
	if other.IsUnion() {
		if u, ok := other.Unroll().(*UnionType); ok {
			others = u.memberTypes
		}
	}
	for _, o := range others {
		for _, m := range t.memberTypes {
			if !m.IsDistinguishableFrom(o) {
				return false
			}
		}
	}
	return true
}

func unionHasNullable(t Type) bool {
	u, ok := t.(*UnionType)
	return ok && u.hasNullableType
}

// TypedefType is a use of a typedef name before completion. Completing it
// yields the aliased type, so no TypedefType survives Finish.
type TypedefType struct {
	Type
	loc  diagnostics.Location
	name string
}

func NewTypedefType(loc diagnostics.Location, inner Type, name string) *TypedefType {
	return &TypedefType{Type: inner, loc: loc, name: name}
}

func (t *TypedefType) Location() diagnostics.Location { return t.loc }
func (t *TypedefType) Name() string                   { return t.name }
func (t *TypedefType) String() string                 { return t.name }
func (t *TypedefType) IsComplete() bool               { return false }
func (t *TypedefType) dependentObjects() []Dependent  { return []Dependent{t.Type} }

func (t *TypedefType) Complete(scope *Scope) (Type, error) {
	if t.Type.IsComplete() {
		return t.Type, nil
	}
	return t.Type.Complete(scope)
}

// PromiseType is Promise<T>. It is never distinguishable from anything.
type PromiseType struct {
	typeBase
	inner Type
}

func NewPromiseType(loc diagnostics.Location, inner Type) *PromiseType {
	return &PromiseType{typeBase: typeBase{loc: loc, name: "Promise"}, inner: inner}
}

func (t *PromiseType) Inner() Type                           { return t.inner }
func (t *PromiseType) Tag() Tag                              { return TagPromise }
func (t *PromiseType) IsPromise() bool                       { return true }
func (t *PromiseType) IsComplete() bool                      { return t.inner.IsComplete() }
func (t *PromiseType) Unroll() Type                          { return t }
func (t *PromiseType) IsDistinguishableFrom(other Type) bool { return false }
func (t *PromiseType) dependentObjects() []Dependent         { return []Dependent{t.inner} }

func (t *PromiseType) Complete(scope *Scope) (Type, error) {
	inner, err := t.inner.Complete(scope)
	if err != nil {
		return nil, err
	}
	t.inner = inner
	return t, nil
}
