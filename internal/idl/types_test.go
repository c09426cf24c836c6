package idl

import (
	"math"
	"math/big"
	"testing"

	"github.com/funvibe/webidl/internal/diagnostics"
)

var testLoc = diagnostics.BuiltinLocation("<test>")

func TestDistinguishability(t *testing.T) {
	long := Builtin(Long)
	str := Builtin(DOMString)
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"long/short", long, Builtin(Short), false},
		{"long/boolean", long, Builtin(Boolean), true},
		{"long/DOMString", long, str, true},
		{"DOMString/ByteString", str, Builtin(ByteString), false},
		{"any/long", Builtin(Any), long, false},
		{"object/long", Builtin(ObjectKind), long, true},
		{"object/sequence", Builtin(ObjectKind), NewSequenceType(testLoc, long), false},
		{"Date/DOMString", Builtin(Date), str, true},
		{"sequence/DOMString", NewSequenceType(testLoc, long), str, true},
		{"sequence/sequence", NewSequenceType(testLoc, long), NewSequenceType(testLoc, str), false},
		{"nullable/nullable", NewNullableType(testLoc, long), NewNullableType(testLoc, str), false},
		{"nullable/plain", NewNullableType(testLoc, long), str, true},
		{"Uint8Array/ArrayBuffer", Builtin(Uint8Array), Builtin(ArrayBuffer), true},
		{"ArrayBufferView/Uint8Array", Builtin(ArrayBufferView), Builtin(Uint8Array), false},
		{"Uint8Array/Int8Array", Builtin(Uint8Array), Builtin(Int8Array), true},
		{"promise/long", NewPromiseType(testLoc, long), long, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.IsDistinguishableFrom(tt.b); got != tt.want {
				t.Errorf("%s.IsDistinguishableFrom(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.IsDistinguishableFrom(tt.a); got != tt.want {
				t.Errorf("%s.IsDistinguishableFrom(%s) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestUnionFlattening(t *testing.T) {
	inner := NewUnionType(testLoc, []Type{Builtin(Long), Builtin(DOMString)})
	outer := NewUnionType(testLoc, []Type{inner, Builtin(Boolean)})
	completed, err := outer.Complete(NewGlobalScope())
	if err != nil {
		t.Fatal(err)
	}
	u := completed.(*UnionType)
	var names []string
	for _, m := range u.FlatMemberTypes() {
		names = append(names, m.Name())
	}
	want := []string{"Long", "String", "Boolean"}
	if len(names) != len(want) {
		t.Fatalf("flat members %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("flat member %d = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestUnionRejectsTwoNullables(t *testing.T) {
	u := NewUnionType(testLoc, []Type{NewNullableType(testLoc, Builtin(Long)), NewNullableType(testLoc, Builtin(DOMString))})
	if _, err := u.Complete(NewGlobalScope()); err == nil {
		t.Error("union with two nullable members completed without error")
	}
}

func TestCoerceToType(t *testing.T) {
	intValue := func(v int64) *Value {
		val, err := NewIntegerValue(testLoc, big.NewInt(v))
		if err != nil {
			t.Fatal(err)
		}
		return val
	}
	tests := []struct {
		name    string
		value   *Value
		typ     Type
		wantErr string
	}{
		{"octet in range", intValue(255), Builtin(Octet), ""},
		{"octet overflow", intValue(300), Builtin(Octet), "Value 300 is out of range for type Octet."},
		{"byte underflow", intValue(-129), Builtin(Byte), "Value -129 is out of range for type Byte."},
		{"exact float", intValue(1 << 24), Builtin(Float), ""},
		{"lossy float", intValue(1<<24 + 1), Builtin(Float), "Converting value 16777217 to Float will lose precision."},
		{"restricted infinity", NewFloatValue(testLoc, math.Inf(1)), Builtin(Double),
			"Trying to convert unrestricted value Infinity to non-unrestricted"},
		{"unrestricted infinity", NewFloatValue(testLoc, math.Inf(1)), Builtin(UnrestrictedDouble), ""},
		{"null to long", NewNullValue(testLoc), Builtin(Long), "Cannot coerce null value to type Long."},
		{"null to nullable", NewNullValue(testLoc), NewNullableType(testLoc, Builtin(Long)), ""},
		{"null to any", NewNullValue(testLoc), Builtin(Any), ""},
		{"empty sequence", NewEmptySequenceValue(testLoc), NewSequenceType(testLoc, Builtin(Long)), ""},
		{"empty sequence to long", NewEmptySequenceValue(testLoc), Builtin(Long), "Cannot coerce empty sequence value to type Long."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.value.CoerceToType(tt.typ, testLoc)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			derr, ok := err.(*diagnostics.Error)
			if !ok {
				t.Fatalf("got %v, want error %q", err, tt.wantErr)
			}
			if derr.Message != tt.wantErr {
				t.Errorf("message %q, want %q", derr.Message, tt.wantErr)
			}
		})
	}
}

func TestIntegerLiteralRange(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 64)
	if _, err := NewIntegerValue(testLoc, tooBig); err == nil {
		t.Error("2^64 accepted as an integer literal")
	}
	v, err := NewIntegerValue(testLoc, new(big.Int).Sub(tooBig, big.NewInt(1)))
	if err != nil {
		t.Fatal(err)
	}
	if v.Type.Tag() != TagUint64 {
		t.Errorf("2^64-1 typed as %s, want uint64", v.Type.Tag())
	}
}

func TestIdentifierRules(t *testing.T) {
	tests := []struct {
		name     string
		opts     []IdentifierOption
		wantName string
		wantErr  bool
	}{
		{"_foo", nil, "foo", false},
		{"__foo", nil, "", true},
		{"__content", nil, "_content", false},
		{"__foo", []IdentifierOption{AllowDoubleUnderscore}, "__foo", false},
		{"constructor", nil, "", true},
		{"toString", []IdentifierOption{AllowForbidden}, "toString", false},
		{"__noSuchMethod__", []IdentifierOption{AllowDoubleUnderscore}, "", true},
	}
	for _, tt := range tests {
		id, err := NewUnresolvedIdentifier(testLoc, tt.name, tt.opts...)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: accepted as %q, want error", tt.name, id.Name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if id.Name != tt.wantName {
			t.Errorf("%s: name %q, want %q", tt.name, id.Name, tt.wantName)
		}
	}
}
