package idl

import (
	"github.com/funvibe/webidl/internal/diagnostics"
)

// Tag is the coarse classification of a completed type.
type Tag int

const (
	TagInt8 Tag = iota
	TagUint8
	TagInt16
	TagUint16
	TagInt32
	TagUint32
	TagInt64
	TagUint64
	TagBool
	TagUnrestrictedFloat
	TagFloat
	TagUnrestrictedDouble
	TagDouble
	TagAny
	TagDOMString
	TagByteString
	TagObject
	TagDate
	TagVoid
	TagInterface
	TagDictionary
	TagEnum
	TagCallback
	TagUnion
	TagSequence
	TagMozMap
	TagArray
	TagPromise
)

var tagNames = [...]string{
	"int8", "uint8", "int16", "uint16", "int32", "uint32", "int64", "uint64",
	"bool", "unrestricted_float", "float", "unrestricted_double", "double",
	"any", "domstring", "bytestring", "object", "date", "void",
	"interface", "dictionary", "enum", "callback", "union", "sequence",
	"mozmap", "array", "promise",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// Type is a WebIDL type expression. Types start out possibly incomplete
// and are replaced by the value Complete returns once names resolve.
type Type interface {
	Dependent
	Name() string
	String() string
	Tag() Tag
	Nullable() bool
	IsComplete() bool
	Complete(scope *Scope) (Type, error)
	// Unroll strips nullable, sequence and array layers.
	Unroll() Type
	IsDistinguishableFrom(other Type) bool

	IsPrimitive() bool
	IsBoolean() bool
	IsNumeric() bool
	IsInteger() bool
	IsFloat() bool
	IsUnrestricted() bool
	IncludesRestrictedFloat() bool
	IsString() bool
	IsDOMString() bool
	IsByteString() bool
	IsVoid() bool
	IsAny() bool
	IsObject() bool
	IsDate() bool
	IsSequence() bool
	IsMozMap() bool
	IsArray() bool
	IsUnion() bool
	IsDictionary() bool
	IsEnum() bool
	IsCallback() bool
	IsInterface() bool
	IsCallbackInterface() bool
	IsNonCallbackInterface() bool
	IsPromise() bool
	IsArrayBuffer() bool
	IsArrayBufferView() bool
	IsTypedArray() bool
	IsSpiderMonkeyInterface() bool
}

// typeBase supplies the all-false predicate defaults.
type typeBase struct {
	loc  diagnostics.Location
	name string
}

func (b *typeBase) Location() diagnostics.Location { return b.loc }
func (b *typeBase) Name() string                   { return b.name }
func (b *typeBase) String() string                 { return b.name }
func (b *typeBase) Nullable() bool                 { return false }
func (b *typeBase) IsComplete() bool               { return true }
func (b *typeBase) IsPrimitive() bool              { return false }
func (b *typeBase) IsBoolean() bool                { return false }
func (b *typeBase) IsNumeric() bool                { return false }
func (b *typeBase) IsInteger() bool                { return false }
func (b *typeBase) IsFloat() bool                  { return false }
func (b *typeBase) IsUnrestricted() bool           { return false }
func (b *typeBase) IncludesRestrictedFloat() bool  { return false }
func (b *typeBase) IsString() bool                 { return false }
func (b *typeBase) IsDOMString() bool              { return false }
func (b *typeBase) IsByteString() bool             { return false }
func (b *typeBase) IsVoid() bool                   { return false }
func (b *typeBase) IsAny() bool                    { return false }
func (b *typeBase) IsObject() bool                 { return false }
func (b *typeBase) IsDate() bool                   { return false }
func (b *typeBase) IsSequence() bool               { return false }
func (b *typeBase) IsMozMap() bool                 { return false }
func (b *typeBase) IsArray() bool                  { return false }
func (b *typeBase) IsUnion() bool                  { return false }
func (b *typeBase) IsDictionary() bool             { return false }
func (b *typeBase) IsEnum() bool                   { return false }
func (b *typeBase) IsCallback() bool               { return false }
func (b *typeBase) IsInterface() bool              { return false }
func (b *typeBase) IsCallbackInterface() bool      { return false }
func (b *typeBase) IsNonCallbackInterface() bool   { return false }
func (b *typeBase) IsPromise() bool                { return false }
func (b *typeBase) IsArrayBuffer() bool            { return false }
func (b *typeBase) IsArrayBufferView() bool        { return false }
func (b *typeBase) IsTypedArray() bool             { return false }
func (b *typeBase) IsSpiderMonkeyInterface() bool  { return false }
func (b *typeBase) dependentObjects() []Dependent  { return nil }

// TypesEqual compares completed types by kind, name and nullability.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Tag() == b.Tag() && a.Name() == b.Name() && a.Nullable() == b.Nullable()
}

// isPrimitiveOrStringOrEnum groups the types that convert from plain JS
// values; most distinguishability rules treat them alike.
func isPrimitiveOrStringOrEnum(t Type) bool {
	return t.IsPrimitive() || t.IsString() || t.IsEnum()
}

// isObjectLike matches the types a JS caller passes as an object.
func isObjectLike(t Type) bool {
	return t.IsInterface() || t.IsObject() || t.IsCallback() || t.IsDictionary() ||
		t.IsSequence() || t.IsMozMap() || t.IsArray()
}
