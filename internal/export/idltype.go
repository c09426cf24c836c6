// Package export renders a finished definition list for downstream
// generators: a text summary, a YAML model dump, a .proto schema and a
// binary FileDescriptorSet.
package export

import (
	"fmt"
	"strings"

	"github.com/funvibe/webidl/internal/idl"
)

var builtinKeywords = map[idl.BuiltinKind]string{
	idl.Byte:               "byte",
	idl.Octet:              "octet",
	idl.Short:              "short",
	idl.UnsignedShort:      "unsigned short",
	idl.Long:               "long",
	idl.UnsignedLong:       "unsigned long",
	idl.LongLong:           "long long",
	idl.UnsignedLongLong:   "unsigned long long",
	idl.Boolean:            "boolean",
	idl.UnrestrictedFloat:  "unrestricted float",
	idl.Float:              "float",
	idl.UnrestrictedDouble: "unrestricted double",
	idl.Double:             "double",
	idl.Any:                "any",
	idl.DOMString:          "DOMString",
	idl.ByteString:         "ByteString",
	idl.ObjectKind:         "object",
	idl.Date:               "Date",
	idl.Void:               "void",
}

// TypeString spells a completed type the way IDL source would.
func TypeString(t idl.Type) string {
	switch t := t.(type) {
	case *idl.BuiltinType:
		if kw, ok := builtinKeywords[t.Kind()]; ok {
			return kw
		}
		return t.Name()
	case *idl.NullableType:
		return TypeString(t.Inner()) + "?"
	case *idl.SequenceType:
		return "sequence<" + TypeString(t.Inner()) + ">"
	case *idl.MozMapType:
		return "MozMap<" + TypeString(t.Inner()) + ">"
	case *idl.ArrayType:
		return TypeString(t.Inner()) + "[]"
	case *idl.PromiseType:
		return "Promise<" + TypeString(t.Inner()) + ">"
	case *idl.UnionType:
		parts := make([]string, len(t.MemberTypes()))
		for i, m := range t.MemberTypes() {
			parts[i] = TypeString(m)
		}
		return "(" + strings.Join(parts, " or ") + ")"
	case *idl.WrapperType:
		return t.Name()
	}
	return t.Name()
}

// ValueString spells a constant or default value.
func ValueString(v *idl.Value) string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case idl.NullValue:
		return "null"
	case idl.UndefinedValue:
		return "undefined"
	case idl.EmptySequenceValue:
		return "[]"
	}
	switch lit := v.Literal.(type) {
	case string:
		return fmt.Sprintf("%q", lit)
	case float64:
		return fmt.Sprintf("%g", lit)
	}
	return fmt.Sprint(v.Literal)
}

func argumentString(a *idl.Argument) string {
	var sb strings.Builder
	if a.Optional() && !a.Variadic() && !a.DictionaryMember() {
		sb.WriteString("optional ")
	}
	sb.WriteString(TypeString(a.Type()))
	if a.Variadic() {
		sb.WriteString("...")
	}
	sb.WriteString(" ")
	sb.WriteString(a.Identifier().Name)
	if d := a.DefaultValue(); d != nil && d.Kind != idl.UndefinedValue {
		sb.WriteString(" = ")
		sb.WriteString(ValueString(d))
	}
	return sb.String()
}

func signatureString(ret idl.Type, args []*idl.Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = argumentString(a)
	}
	return TypeString(ret) + " (" + strings.Join(parts, ", ") + ")"
}
