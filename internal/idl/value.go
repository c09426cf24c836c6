package idl

import (
	"fmt"
	"math"
	"math/big"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// ValueKind distinguishes the shapes a constant or default value can take.
type ValueKind int

const (
	LiteralValue ValueKind = iota
	NullValue
	UndefinedValue
	EmptySequenceValue
)

// Value is a literal in IDL source. Literal holds *big.Int for integers,
// float64 for floats, bool or string.
type Value struct {
	loc     diagnostics.Location
	Kind    ValueKind
	Type    Type
	Literal interface{}
}

var (
	maxInt64  = new(big.Int).SetInt64(math.MaxInt64)
	minInt64  = new(big.Int).SetInt64(math.MinInt64)
	maxUint64 = new(big.Int).SetUint64(math.MaxUint64)
)

// NewIntegerValue types an integer literal as long long when it fits and
// unsigned long long otherwise.
func NewIntegerValue(loc diagnostics.Location, v *big.Int) (*Value, error) {
	switch {
	case v.Cmp(minInt64) >= 0 && v.Cmp(maxInt64) <= 0:
		return &Value{loc: loc, Type: Builtin(LongLong), Literal: v}, nil
	case v.Sign() >= 0 && v.Cmp(maxUint64) <= 0:
		return &Value{loc: loc, Type: Builtin(UnsignedLongLong), Literal: v}, nil
	}
	return nil, diagnostics.NewError("Integer literal out of range", loc)
}

func NewFloatValue(loc diagnostics.Location, v float64) *Value {
	return &Value{loc: loc, Type: Builtin(UnrestrictedDouble), Literal: v}
}

func NewBooleanValue(loc diagnostics.Location, v bool) *Value {
	return &Value{loc: loc, Type: Builtin(Boolean), Literal: v}
}

func NewStringValue(loc diagnostics.Location, v string) *Value {
	return &Value{loc: loc, Type: Builtin(DOMString), Literal: v}
}

func NewNullValue(loc diagnostics.Location) *Value {
	return &Value{loc: loc, Kind: NullValue}
}

func NewUndefinedValue(loc diagnostics.Location) *Value {
	return &Value{loc: loc, Kind: UndefinedValue, Type: Builtin(Any)}
}

func NewEmptySequenceValue(loc diagnostics.Location) *Value {
	return &Value{loc: loc, Kind: EmptySequenceValue}
}

func (v *Value) Location() diagnostics.Location { return v.loc }

func (v *Value) String() string {
	switch v.Kind {
	case NullValue:
		return "null"
	case UndefinedValue:
		return "undefined"
	case EmptySequenceValue:
		return "[]"
	}
	switch lit := v.Literal.(type) {
	case *big.Int:
		return lit.String()
	case float64:
		return formatFloat(lit)
	case string:
		return lit
	}
	return fmt.Sprint(v.Literal)
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	return fmt.Sprint(f)
}

type intRange struct{ min, max *big.Int }

var integerRanges = map[Tag]intRange{
	TagInt8:   {big.NewInt(-128), big.NewInt(127)},
	TagUint8:  {big.NewInt(0), big.NewInt(255)},
	TagInt16:  {big.NewInt(-32768), big.NewInt(32767)},
	TagUint16: {big.NewInt(0), big.NewInt(65535)},
	TagInt32:  {big.NewInt(math.MinInt32), big.NewInt(math.MaxInt32)},
	TagUint32: {big.NewInt(0), big.NewInt(math.MaxUint32)},
	TagInt64:  {minInt64, maxInt64},
	TagUint64: {big.NewInt(0), maxUint64},
}

// exactFloatLimit is the largest integer magnitude every float type holds
// exactly (2^24, the float mantissa).
var exactFloatLimit = big.NewInt(1 << 24)

// CoerceToType converts v to a value of type t, or explains why it cannot.
func (v *Value) CoerceToType(t Type, loc diagnostics.Location) (*Value, error) {
	switch v.Kind {
	case NullValue:
		return v.coerceNull(t, loc)
	case UndefinedValue:
		if !t.IsAny() {
			return nil, diagnostics.NewError(fmt.Sprintf(
				"Cannot coerce undefined value of type %s to type %s.", v.Type, t), loc)
		}
		return v, nil
	case EmptySequenceValue:
		if u, ok := t.(*UnionType); ok {
			for _, sub := range u.flatMemberTypes {
				if coerced, err := v.CoerceToType(sub, loc); err == nil {
					return coerced, nil
				}
			}
		}
		if !t.IsSequence() {
			return nil, diagnostics.NewError(fmt.Sprintf(
				"Cannot coerce empty sequence value to type %s.", t), loc)
		}
		return &Value{loc: v.loc, Kind: EmptySequenceValue, Type: t}, nil
	}

	if TypesEqual(v.Type, t) {
		return v, nil
	}
	if n, ok := t.(*NullableType); ok {
		inner, err := v.CoerceToType(n.Inner(), loc)
		if err != nil {
			return nil, err
		}
		return &Value{loc: inner.loc, Type: t, Literal: inner.Literal}, nil
	}
	if u, ok := t.(*UnionType); ok {
		for _, sub := range u.flatMemberTypes {
			if coerced, err := v.CoerceToType(sub, loc); err == nil {
				return coerced, nil
			}
		}
		return nil, v.cannotCoerce(t, loc)
	}

	switch lit := v.Literal.(type) {
	case *big.Int:
		if t.IsInteger() {
			r := integerRanges[t.Tag()]
			if lit.Cmp(r.min) < 0 || lit.Cmp(r.max) > 0 {
				return nil, diagnostics.NewError(fmt.Sprintf(
					"Value %s is out of range for type %s.", lit, t), loc)
			}
			return &Value{loc: v.loc, Type: t, Literal: lit}, nil
		}
		if t.IsFloat() {
			if new(big.Int).Abs(lit).Cmp(exactFloatLimit) > 0 {
				return nil, diagnostics.NewError(fmt.Sprintf(
					"Converting value %s to %s will lose precision.", lit, t), loc)
			}
			f, _ := new(big.Float).SetInt(lit).Float64()
			return &Value{loc: v.loc, Type: t, Literal: f}, nil
		}
	case float64:
		if t.IsFloat() {
			if !t.IsUnrestricted() && (math.IsInf(lit, 0) || math.IsNaN(lit)) {
				return nil, diagnostics.NewError(fmt.Sprintf(
					"Trying to convert unrestricted value %s to non-unrestricted", formatFloat(lit)), loc)
			}
			return &Value{loc: v.loc, Type: t, Literal: lit}, nil
		}
	case string:
		if w, ok := t.(*WrapperType); ok && t.IsEnum() {
			enum := w.inner.(*Enum)
			if !enum.HasValue(lit) {
				return nil, diagnostics.NewError(fmt.Sprintf(
					"'%s' is not a valid default value for enum %s", lit, enum.ident.Name), loc, enum.Location())
			}
			return &Value{loc: v.loc, Type: t, Literal: lit}, nil
		}
		if t.IsByteString() {
			for _, r := range lit {
				if r > 0xFF {
					return nil, diagnostics.NewError(fmt.Sprintf(
						"Converting string literal '%s' to ByteString will lose data", lit), loc)
				}
			}
			return &Value{loc: v.loc, Type: t, Literal: lit}, nil
		}
	}
	return nil, v.cannotCoerce(t, loc)
}

func (v *Value) cannotCoerce(t Type, loc diagnostics.Location) error {
	return diagnostics.NewError(fmt.Sprintf("Cannot coerce type %s to type %s.", v.Type, t), loc)
}

func (v *Value) coerceNull(t Type, loc diagnostics.Location) (*Value, error) {
	if !t.Nullable() && !unionHasNullable(t) && !unionHasDictionary(t) && !t.IsDictionary() && !t.IsAny() {
		return nil, diagnostics.NewError(fmt.Sprintf("Cannot coerce null value to type %s.", t), loc)
	}
	return &Value{loc: v.loc, Kind: NullValue, Type: t}, nil
}

func unionHasDictionary(t Type) bool {
	u, ok := t.(*UnionType)
	return ok && u.hasDictionaryType
}

func (v *Value) dependentObjects() []Dependent { return nil }
