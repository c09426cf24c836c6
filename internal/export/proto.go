package export

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/golang/glog"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/builder"
	"github.com/jhump/protoreflect/desc/protoprint"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/funvibe/webidl/internal/idl"
)

// ProtoOptions name the generated file.
type ProtoOptions struct {
	File      string
	Package   string
	GoPackage string
}

// BuildProto maps the definitions onto a proto3 file:
//
//	enum        -> enum with an UNSPECIFIED zero value
//	dictionary  -> message, inherited fields first
//	interface   -> message of its attributes plus a service of its
//	               regular operations
//
// Callback interfaces, callbacks and external interfaces have no proto
// form; references to them become strings.
func BuildProto(defs []idl.Definition, opts ProtoOptions) (*desc.FileDescriptor, error) {
	pb := &protoBuilder{
		file:     builder.NewFile(opts.File).SetPackageName(opts.Package).SetProto3(true),
		messages: make(map[idl.Definition]*builder.MessageBuilder),
		enums:    make(map[*idl.Enum]*builder.EnumBuilder),
	}
	if opts.GoPackage != "" {
		pb.file.SetOptions(&descriptorpb.FileOptions{GoPackage: proto.String(opts.GoPackage)})
	}
	if err := pb.loadWellKnown(); err != nil {
		return nil, err
	}

	// Declare first so fields can refer to any message or enum.
	for _, def := range defs {
		if err := pb.declare(def); err != nil {
			return nil, err
		}
	}
	for _, def := range defs {
		if err := pb.define(def); err != nil {
			return nil, err
		}
	}
	fd, err := pb.file.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", opts.File, err)
	}
	return fd, nil
}

// WriteProto prints the .proto source for defs.
func WriteProto(w io.Writer, defs []idl.Definition, opts ProtoOptions) error {
	fd, err := BuildProto(defs, opts)
	if err != nil {
		return err
	}
	printer := protoprint.Printer{Indent: "  "}
	if err := printer.PrintProtoFile(fd, w); err != nil {
		return fmt.Errorf("printing %s: %w", opts.File, err)
	}
	return nil
}

// WriteDescriptorSet writes a binary FileDescriptorSet holding the
// generated file and everything it imports.
func WriteDescriptorSet(w io.Writer, defs []idl.Definition, opts ProtoOptions) error {
	fd, err := BuildProto(defs, opts)
	if err != nil {
		return err
	}
	set := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]bool)
	var add func(*desc.FileDescriptor)
	add = func(f *desc.FileDescriptor) {
		if seen[f.GetName()] {
			return
		}
		seen[f.GetName()] = true
		for _, dep := range f.GetDependencies() {
			add(dep)
		}
		set.File = append(set.File, f.AsFileDescriptorProto())
	}
	add(fd)
	data, err := proto.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshaling descriptor set: %w", err)
	}
	_, err = w.Write(data)
	return err
}

type protoBuilder struct {
	file     *builder.FileBuilder
	messages map[idl.Definition]*builder.MessageBuilder
	enums    map[*idl.Enum]*builder.EnumBuilder

	timestamp *desc.MessageDescriptor
	value     *desc.MessageDescriptor
	listValue *desc.MessageDescriptor
}

func (pb *protoBuilder) loadWellKnown() error {
	var err error
	if pb.timestamp, err = desc.LoadMessageDescriptorForMessage(&timestamppb.Timestamp{}); err != nil {
		return err
	}
	if pb.value, err = desc.LoadMessageDescriptorForMessage(&structpb.Value{}); err != nil {
		return err
	}
	pb.listValue, err = desc.LoadMessageDescriptorForMessage(&structpb.ListValue{})
	return err
}

func (pb *protoBuilder) declare(def idl.Definition) error {
	switch def := def.(type) {
	case *idl.Enum:
		eb := builder.NewEnum(def.Identifier().Name)
		prefix := screamingSnake(def.Identifier().Name) + "_"
		if err := eb.TryAddValue(builder.NewEnumValue(prefix + "UNSPECIFIED").SetNumber(0)); err != nil {
			return err
		}
		used := map[string]bool{prefix + "UNSPECIFIED": true}
		for i, v := range def.Values() {
			name := prefix + enumValueName(v)
			for n := 2; used[name]; n++ {
				name = fmt.Sprintf("%s%s_%d", prefix, enumValueName(v), n)
			}
			used[name] = true
			evb := builder.NewEnumValue(name).SetNumber(int32(i + 1)).
				SetComments(builder.Comments{LeadingComment: fmt.Sprintf(" %q", v)})
			if err := eb.TryAddValue(evb); err != nil {
				return err
			}
		}
		pb.enums[def] = eb
		return pb.file.TryAddEnum(eb)
	case *idl.Dictionary:
		mb := builder.NewMessage(def.Identifier().Name)
		pb.messages[def] = mb
		return pb.file.TryAddMessage(mb)
	case *idl.Interface:
		if def.IsCallback() {
			return nil
		}
		mb := builder.NewMessage(def.Identifier().Name)
		pb.messages[def] = mb
		return pb.file.TryAddMessage(mb)
	}
	glog.V(2).Infof("proto: no declaration for %T", def)
	return nil
}

func (pb *protoBuilder) define(def idl.Definition) error {
	switch def := def.(type) {
	case *idl.Dictionary:
		return pb.defineDictionary(def)
	case *idl.Interface:
		if def.IsCallback() {
			return nil
		}
		return pb.defineInterface(def)
	}
	return nil
}

func (pb *protoBuilder) defineDictionary(d *idl.Dictionary) error {
	var chain []*idl.Dictionary
	for cur := d; cur != nil; cur = cur.Parent() {
		chain = append([]*idl.Dictionary{cur}, chain...)
	}
	fields := &fieldList{mb: pb.messages[d]}
	for _, dict := range chain {
		for _, m := range dict.Members() {
			if err := fields.add(pb, m.Identifier().Name, m.Type()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (pb *protoBuilder) defineInterface(iface *idl.Interface) error {
	mb := pb.messages[iface]
	fields := &fieldList{mb: mb}
	ancestors := iface.InheritedInterfaces()
	for i := len(ancestors) - 1; i >= 0; i-- {
		if err := pb.addAttributes(fields, ancestors[i]); err != nil {
			return err
		}
	}
	if err := pb.addAttributes(fields, iface); err != nil {
		return err
	}

	sb := builder.NewService(iface.Identifier().Name + "Service")
	added := 0
	for _, m := range iface.Members() {
		method, ok := m.(*idl.Method)
		if !ok || method.IsSpecial() || method.IsStatic() || method.IsIdentifierLess() {
			continue
		}
		for i, o := range method.Overloads() {
			name := upperFirst(method.Identifier().Name)
			if i > 0 {
				name = fmt.Sprintf("%s%d", name, i+1)
			}
			if err := pb.addRPC(sb, iface.Identifier().Name+name, name, o); err != nil {
				return err
			}
			added++
		}
	}
	if added == 0 {
		return nil
	}
	return pb.file.TryAddService(sb)
}

func (pb *protoBuilder) addAttributes(fields *fieldList, iface *idl.Interface) error {
	for _, m := range iface.Members() {
		attr, ok := m.(*idl.Attribute)
		if !ok || attr.IsStatic() {
			continue
		}
		if err := fields.add(pb, attr.Identifier().Name, attr.Type()); err != nil {
			return err
		}
	}
	return nil
}

func (pb *protoBuilder) addRPC(sb *builder.ServiceBuilder, prefix, name string, o *idl.Overload) error {
	req := builder.NewMessage(prefix + "Request")
	reqFields := &fieldList{mb: req}
	for _, arg := range o.Arguments {
		if err := reqFields.add(pb, arg.Identifier().Name, arg.Type()); err != nil {
			return err
		}
	}
	resp := builder.NewMessage(prefix + "Response")
	ret := o.ReturnType
	if p, ok := ret.(*idl.PromiseType); ok {
		ret = p.Inner()
	}
	if !ret.IsVoid() {
		if err := (&fieldList{mb: resp}).add(pb, "result", ret); err != nil {
			return err
		}
	}
	for _, mb := range []*builder.MessageBuilder{req, resp} {
		if err := pb.file.TryAddMessage(mb); err != nil {
			return err
		}
	}
	return sb.TryAddMethod(builder.NewMethod(name, builder.RpcTypeMessage(req, false), builder.RpcTypeMessage(resp, false)))
}

// fieldList numbers fields in the order they are added and skips names
// already present, as happens with attributes imported from a parent.
type fieldList struct {
	mb    *builder.MessageBuilder
	next  int32
	names map[string]bool
}

func (fl *fieldList) add(pb *protoBuilder, idlName string, t idl.Type) error {
	name := snakeCase(idlName)
	if fl.names == nil {
		fl.names = make(map[string]bool)
	}
	if fl.names[name] {
		return nil
	}
	fl.names[name] = true
	fl.next++

	var field *builder.FieldBuilder
	if mm, ok := unwrapNullable(t).(*idl.MozMapType); ok {
		val, repeated := pb.fieldType(mm.Inner())
		if repeated {
			val = builder.FieldTypeImportedMessage(pb.listValue)
		}
		field = builder.NewMapField(name, builder.FieldTypeString(), val)
	} else {
		ft, repeated := pb.fieldType(t)
		field = builder.NewField(name, ft)
		if repeated {
			field.SetRepeated()
		}
	}
	field.SetNumber(fl.next).SetComments(builder.Comments{LeadingComment: " " + TypeString(t)})
	return fl.mb.TryAddField(field)
}

func unwrapNullable(t idl.Type) idl.Type {
	if n, ok := t.(*idl.NullableType); ok {
		return n.Inner()
	}
	return t
}

// fieldType maps an IDL type to a proto field type and reports whether the
// field is repeated.
func (pb *protoBuilder) fieldType(t idl.Type) (*builder.FieldType, bool) {
	switch t := unwrapNullable(t).(type) {
	case *idl.SequenceType:
		return pb.elementType(t.Inner()), true
	case *idl.ArrayType:
		return pb.elementType(t.Inner()), true
	case *idl.PromiseType:
		return pb.fieldType(t.Inner())
	case *idl.WrapperType:
		switch inner := t.Inner().(type) {
		case *idl.Enum:
			return builder.FieldTypeEnum(pb.enums[inner]), false
		case *idl.Dictionary:
			return builder.FieldTypeMessage(pb.messages[inner]), false
		case *idl.Interface:
			if mb, ok := pb.messages[inner]; ok {
				return builder.FieldTypeMessage(mb), false
			}
		}
		return builder.FieldTypeString(), false
	case *idl.BuiltinType:
		return pb.builtinType(t), false
	}
	// Unions, MozMaps nested in other types and anything else dynamic.
	return builder.FieldTypeImportedMessage(pb.value), false
}

func (pb *protoBuilder) elementType(t idl.Type) *builder.FieldType {
	ft, repeated := pb.fieldType(t)
	if repeated {
		return builder.FieldTypeImportedMessage(pb.listValue)
	}
	return ft
}

func (pb *protoBuilder) builtinType(t *idl.BuiltinType) *builder.FieldType {
	switch t.Kind() {
	case idl.Boolean:
		return builder.FieldTypeBool()
	case idl.Byte, idl.Short, idl.Long:
		return builder.FieldTypeInt32()
	case idl.Octet, idl.UnsignedShort, idl.UnsignedLong:
		return builder.FieldTypeUInt32()
	case idl.LongLong:
		return builder.FieldTypeInt64()
	case idl.UnsignedLongLong:
		return builder.FieldTypeUInt64()
	case idl.Float, idl.UnrestrictedFloat:
		return builder.FieldTypeFloat()
	case idl.Double, idl.UnrestrictedDouble:
		return builder.FieldTypeDouble()
	case idl.DOMString:
		return builder.FieldTypeString()
	case idl.Date:
		return builder.FieldTypeImportedMessage(pb.timestamp)
	case idl.Any, idl.ObjectKind:
		return builder.FieldTypeImportedMessage(pb.value)
	}
	// ByteString and the buffer types.
	return builder.FieldTypeBytes()
}

func snakeCase(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		if r == '-' {
			r = '_'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func screamingSnake(s string) string { return strings.ToUpper(snakeCase(s)) }

// enumValueName turns an arbitrary enum string into an identifier.
func enumValueName(v string) string {
	if v == "" {
		return "EMPTY"
	}
	var sb strings.Builder
	for _, r := range strings.ToUpper(v) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
