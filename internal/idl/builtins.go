package idl

import "github.com/funvibe/webidl/internal/diagnostics"

// BuiltinKind enumerates the types the language predefines.
type BuiltinKind int

const (
	Byte BuiltinKind = iota
	Octet
	Short
	UnsignedShort
	Long
	UnsignedLong
	LongLong
	UnsignedLongLong
	Boolean
	UnrestrictedFloat
	Float
	UnrestrictedDouble
	Double
	Any
	DOMString
	ByteString
	ObjectKind
	Date
	Void
	ArrayBuffer
	ArrayBufferView
	Int8Array
	Uint8Array
	Uint8ClampedArray
	Int16Array
	Uint16Array
	Int32Array
	Uint32Array
	Float32Array
	Float64Array
)

var builtinInfo = [...]struct {
	name string
	tag  Tag
}{
	Byte:               {"Byte", TagInt8},
	Octet:              {"Octet", TagUint8},
	Short:              {"Short", TagInt16},
	UnsignedShort:      {"UnsignedShort", TagUint16},
	Long:               {"Long", TagInt32},
	UnsignedLong:       {"UnsignedLong", TagUint32},
	LongLong:           {"LongLong", TagInt64},
	UnsignedLongLong:   {"UnsignedLongLong", TagUint64},
	Boolean:            {"Boolean", TagBool},
	UnrestrictedFloat:  {"UnrestrictedFloat", TagUnrestrictedFloat},
	Float:              {"Float", TagFloat},
	UnrestrictedDouble: {"UnrestrictedDouble", TagUnrestrictedDouble},
	Double:             {"Double", TagDouble},
	Any:                {"Any", TagAny},
	DOMString:          {"String", TagDOMString},
	ByteString:         {"ByteString", TagByteString},
	ObjectKind:         {"Object", TagObject},
	Date:               {"Date", TagDate},
	Void:               {"Void", TagVoid},
	ArrayBuffer:        {"ArrayBuffer", TagInterface},
	ArrayBufferView:    {"ArrayBufferView", TagInterface},
	Int8Array:          {"Int8Array", TagInterface},
	Uint8Array:         {"Uint8Array", TagInterface},
	Uint8ClampedArray:  {"Uint8ClampedArray", TagInterface},
	Int16Array:         {"Int16Array", TagInterface},
	Uint16Array:        {"Uint16Array", TagInterface},
	Int32Array:         {"Int32Array", TagInterface},
	Uint32Array:        {"Uint32Array", TagInterface},
	Float32Array:       {"Float32Array", TagInterface},
	Float64Array:       {"Float64Array", TagInterface},
}

// BuiltinType is one of the predefined types. Each kind has exactly one
// instance, obtained with Builtin.
type BuiltinType struct {
	typeBase
	kind BuiltinKind
}

var builtinTypes = func() map[BuiltinKind]*BuiltinType {
	m := make(map[BuiltinKind]*BuiltinType, len(builtinInfo))
	loc := diagnostics.BuiltinLocation("<builtin type>")
	for k, info := range builtinInfo {
		m[BuiltinKind(k)] = &BuiltinType{typeBase: typeBase{loc: loc, name: info.name}, kind: BuiltinKind(k)}
	}
	return m
}()

// Builtin returns the singleton for kind.
func Builtin(kind BuiltinKind) *BuiltinType {
	t, ok := builtinTypes[kind]
	assert(ok, "unknown builtin kind %d", kind)
	return t
}

// TypedArrayKinds lists the builtins the global scope exposes by name.
func TypedArrayKinds() []BuiltinKind {
	return []BuiltinKind{ArrayBuffer, ArrayBufferView, Int8Array, Uint8Array, Uint8ClampedArray,
		Int16Array, Uint16Array, Int32Array, Uint32Array, Float32Array, Float64Array}
}

func (t *BuiltinType) Kind() BuiltinKind { return t.kind }
func (t *BuiltinType) Tag() Tag          { return builtinInfo[t.kind].tag }

func (t *BuiltinType) Complete(*Scope) (Type, error) { return t, nil }
func (t *BuiltinType) Unroll() Type                  { return t }

func (t *BuiltinType) IsPrimitive() bool { return t.kind <= Double }
func (t *BuiltinType) IsBoolean() bool   { return t.kind == Boolean }
func (t *BuiltinType) IsNumeric() bool   { return t.IsPrimitive() && !t.IsBoolean() }
func (t *BuiltinType) IsInteger() bool   { return t.kind <= UnsignedLongLong }
func (t *BuiltinType) IsFloat() bool {
	return t.kind >= UnrestrictedFloat && t.kind <= Double
}
func (t *BuiltinType) IsUnrestricted() bool {
	return t.kind == UnrestrictedFloat || t.kind == UnrestrictedDouble
}
func (t *BuiltinType) IncludesRestrictedFloat() bool { return t.IsFloat() && !t.IsUnrestricted() }
func (t *BuiltinType) IsString() bool                { return t.kind == DOMString || t.kind == ByteString }
func (t *BuiltinType) IsDOMString() bool             { return t.kind == DOMString }
func (t *BuiltinType) IsByteString() bool            { return t.kind == ByteString }
func (t *BuiltinType) IsVoid() bool                  { return t.kind == Void }
func (t *BuiltinType) IsAny() bool                   { return t.kind == Any }
func (t *BuiltinType) IsObject() bool                { return t.kind == ObjectKind }
func (t *BuiltinType) IsDate() bool                  { return t.kind == Date }
func (t *BuiltinType) IsArrayBuffer() bool           { return t.kind == ArrayBuffer }
func (t *BuiltinType) IsArrayBufferView() bool       { return t.kind == ArrayBufferView }
func (t *BuiltinType) IsTypedArray() bool            { return t.kind >= Int8Array && t.kind <= Float64Array }
func (t *BuiltinType) IsInterface() bool {
	return t.IsArrayBuffer() || t.IsArrayBufferView() || t.IsTypedArray()
}
func (t *BuiltinType) IsNonCallbackInterface() bool  { return t.IsInterface() }
func (t *BuiltinType) IsSpiderMonkeyInterface() bool { return t.IsInterface() }

func (t *BuiltinType) IsDistinguishableFrom(other Type) bool {
	if other.IsPromise() {
		return false
	}
	if other.IsUnion() {
		return other.IsDistinguishableFrom(t)
	}
	switch {
	case t.IsBoolean():
		return other.IsNumeric() || other.IsString() || other.IsEnum() || isObjectLike(other) || other.IsDate()
	case t.IsNumeric():
		return other.IsBoolean() || other.IsString() || other.IsEnum() || isObjectLike(other) || other.IsDate()
	case t.IsString():
		return other.IsPrimitive() || isObjectLike(other) || other.IsDate()
	case t.IsAny():
		return false
	case t.IsObject():
		return isPrimitiveOrStringOrEnum(other)
	case t.IsDate():
		return isPrimitiveOrStringOrEnum(other) || other.IsInterface() || other.IsCallback() ||
			other.IsDictionary() || other.IsSequence() || other.IsMozMap() || other.IsArray()
	case t.IsVoid():
		return !other.IsVoid()
	}
	assert(t.IsSpiderMonkeyInterface(), "unexpected builtin %s", t.name)
	if isPrimitiveOrStringOrEnum(other) || other.IsCallback() || other.IsDictionary() ||
		other.IsSequence() || other.IsMozMap() || other.IsArray() || other.IsDate() {
		return true
	}
	if !other.IsInterface() {
		return false
	}
	switch {
	case t.IsArrayBuffer():
		return !other.IsArrayBuffer()
	case t.IsArrayBufferView():
		return !other.IsArrayBufferView() && !other.IsTypedArray()
	default:
		return !other.IsArrayBufferView() && !(other.IsTypedArray() && other.Name() == t.name)
	}
}
