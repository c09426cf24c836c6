package idl

import (
	"fmt"
	"strings"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// NamedOrIndexed qualifies a special operation by the key it takes.
type NamedOrIndexed int

const (
	Neither NamedOrIndexed = iota
	Named
	Indexed
)

// MethodFlags are the qualifiers of an operation.
type MethodFlags struct {
	Static       bool
	Getter       bool
	Setter       bool
	Creator      bool
	Deleter      bool
	LegacyCaller bool
	Stringifier  bool
	Jsonifier    bool
	Special      NamedOrIndexed
}

// Overload is one signature of an operation.
type Overload struct {
	loc        diagnostics.Location
	ReturnType Type
	Arguments  []*Argument
}

func (o *Overload) Location() diagnostics.Location { return o.loc }

func (o *Overload) dependentObjects() []Dependent {
	deps := []Dependent{o.ReturnType}
	for _, arg := range o.Arguments {
		deps = append(deps, arg)
	}
	return deps
}

// Method is an operation. Same-named operations in one interface merge into
// a single Method with several overloads.
type Method struct {
	memberBase
	Scope
	overloads        []*Overload
	hasOverloads     bool
	flags            MethodFlags
	maxArgCount      int
	allowedArgCounts []int
}

func NewMethod(loc diagnostics.Location, id *Identifier, returnType Type, args []*Argument, flags MethodFlags) (*Method, error) {
	if flags.Static && id.Name == "prototype" {
		return nil, diagnostics.NewError("The identifier of a static operation must not be 'prototype'", loc)
	}
	m := &Method{
		memberBase: newMemberBase(loc, id),
		overloads:  []*Overload{{loc: loc, ReturnType: returnType, Arguments: args}},
		flags:      flags,
	}
	m.assertSignatureConstraints()
	return m, nil
}

func isKeyType(t Type) bool {
	return TypesEqual(t, Builtin(DOMString)) || TypesEqual(t, Builtin(UnsignedLong))
}

func (m *Method) assertSignatureConstraints() {
	f := m.flags
	if f.Getter || f.Deleter {
		assert(len(m.overloads) == 1, "special operation %s overloaded", m.ident.Name)
		o := m.overloads[0]
		assert(len(o.Arguments) == 1, "getter or deleter %s needs one argument", m.ident.Name)
		assert(isKeyType(o.Arguments[0].typ), "getter or deleter %s key type", m.ident.Name)
		assert(!o.Arguments[0].optional && !o.Arguments[0].variadic, "optional key on %s", m.ident.Name)
		assert(!f.Getter || !o.ReturnType.IsVoid(), "void getter %s", m.ident.Name)
	}
	if f.Setter || f.Creator {
		assert(len(m.overloads) == 1, "special operation %s overloaded", m.ident.Name)
		args := m.overloads[0].Arguments
		assert(len(args) == 2, "setter or creator %s needs two arguments", m.ident.Name)
		assert(isKeyType(args[0].typ), "setter or creator %s key type", m.ident.Name)
		for _, arg := range args {
			assert(!arg.optional && !arg.variadic, "optional argument on %s", m.ident.Name)
		}
	}
	if f.Stringifier {
		assert(len(m.overloads) == 1 && len(m.overloads[0].Arguments) == 0, "stringifier %s signature", m.ident.Name)
		assert(TypesEqual(m.overloads[0].ReturnType, Builtin(DOMString)), "stringifier %s return type", m.ident.Name)
	}
	if f.Jsonifier {
		assert(len(m.overloads) == 1 && len(m.overloads[0].Arguments) == 0, "jsonifier %s signature", m.ident.Name)
		assert(TypesEqual(m.overloads[0].ReturnType, Builtin(ObjectKind)), "jsonifier %s return type", m.ident.Name)
	}
}

func (m *Method) MemberTag() MemberTag   { return MemberMethod }
func (m *Method) Flags() MethodFlags     { return m.flags }
func (m *Method) IsStatic() bool         { return m.flags.Static }
func (m *Method) IsGetter() bool         { return m.flags.Getter }
func (m *Method) IsSetter() bool         { return m.flags.Setter }
func (m *Method) IsCreator() bool        { return m.flags.Creator }
func (m *Method) IsDeleter() bool        { return m.flags.Deleter }
func (m *Method) IsLegacyCaller() bool   { return m.flags.LegacyCaller }
func (m *Method) IsStringifier() bool    { return m.flags.Stringifier }
func (m *Method) IsJsonifier() bool      { return m.flags.Jsonifier }
func (m *Method) HasOverloads() bool     { return m.hasOverloads }
func (m *Method) Overloads() []*Overload { return m.overloads }
func (m *Method) MaxArgCount() int       { return m.maxArgCount }
func (m *Method) AllowedArgCounts() []int {
	return append([]int(nil), m.allowedArgCounts...)
}

func (m *Method) IsNamed() bool {
	assert(m.flags.Special != Neither, "IsNamed on non-keyed operation %s", m.ident.Name)
	return m.flags.Special == Named
}

func (m *Method) IsIndexed() bool {
	assert(m.flags.Special != Neither, "IsIndexed on non-keyed operation %s", m.ident.Name)
	return m.flags.Special == Indexed
}

func (m *Method) IsSpecial() bool {
	f := m.flags
	return f.Getter || f.Setter || f.Creator || f.Deleter || f.LegacyCaller || f.Stringifier || f.Jsonifier
}

// IsIdentifierLess reports an operation whose name was synthesized.
func (m *Method) IsIdentifierLess() bool {
	return strings.HasPrefix(m.ident.Name, "__") && m.ident.Name != "__noSuchMethod__"
}

// ReturnsPromise reports whether the operation returns a Promise.
func (m *Method) ReturnsPromise() bool { return m.overloads[0].ReturnType.IsPromise() }

func (m *Method) dependentObjects() []Dependent {
	var deps []Dependent
	for _, o := range m.overloads {
		deps = append(deps, o)
	}
	return deps
}

func (m *Method) resolve(parent *Scope) error {
	if err := m.ident.Resolve(parent, m); err != nil {
		return err
	}
	m.Scope.init(parent, m.ident)
	for _, o := range m.overloads {
		for _, arg := range o.Arguments {
			if err := arg.resolve(&m.Scope); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Method) addOverload(other *Method) (*Method, error) {
	assert(len(other.overloads) == 1, "merging an already overloaded method")
	if !sameExtAttrs(m.extAttrs, other.extAttrs) {
		return nil, diagnostics.NewError(fmt.Sprintf(
			"Extended attributes differ on different overloads of %s", other.ident), m.loc, other.loc)
	}
	m.overloads = append(m.overloads, other.overloads...)
	m.hasOverloads = true
	if m.IsStatic() != other.IsStatic() {
		return nil, diagnostics.NewError(fmt.Sprintf(
			"Overloaded identifier %s appears with different values of the 'static' attribute", other.ident), other.loc)
	}
	if m.IsLegacyCaller() != other.IsLegacyCaller() {
		return nil, diagnostics.NewError(fmt.Sprintf(
			"Overloaded identifier %s appears with different values of the 'legacycaller' attribute", other.ident), other.loc)
	}
	assert(!m.flags.Getter && !other.flags.Getter, "overloaded getter %s", m.ident.Name)
	assert(!m.flags.Setter && !other.flags.Setter, "overloaded setter %s", m.ident.Name)
	assert(!m.flags.Creator && !other.flags.Creator, "overloaded creator %s", m.ident.Name)
	assert(!m.flags.Deleter && !other.flags.Deleter, "overloaded deleter %s", m.ident.Name)
	assert(!m.flags.Stringifier && !other.flags.Stringifier, "overloaded stringifier %s", m.ident.Name)
	assert(!m.flags.Jsonifier && !other.flags.Jsonifier, "overloaded jsonifier %s", m.ident.Name)
	return m, nil
}

func sameExtAttrs(a, b extAttrDict) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if va[i] != vb[i] {
				return false
			}
		}
	}
	return true
}

func (m *Method) Finish(scope *Scope) error {
	var withPromise, withoutPromise *Overload
	for _, o := range m.overloads {
		var variadic *Argument
		for idx, arg := range o.Arguments {
			if !arg.IsComplete() {
				if err := arg.Complete(scope); err != nil {
					return err
				}
			}
			if arg.typ.IsDictionary() || arg.typ.IsUnion() && unionHasDictionary(arg.typ.Unroll()) {
				if !arg.optional && allOptional(o.Arguments[idx+1:]) {
					return diagnostics.NewError("Dictionary argument or union argument containing a dictionary "+
						"not followed by a required argument must be optional", arg.loc)
				}
				if arg.typ.Nullable() {
					return diagnostics.NewError("An argument cannot be a nullable dictionary or nullable union "+
						"containing a dictionary", arg.loc)
				}
			}
			if variadic != nil {
				return diagnostics.NewError("Variadic argument is not last argument", variadic.loc)
			}
			if arg.variadic {
				variadic = arg
			}
		}
		if !o.ReturnType.IsComplete() {
			t, err := o.ReturnType.Complete(scope)
			if err != nil {
				return err
			}
			o.ReturnType = t
		}
		if o.ReturnType.IsPromise() {
			withPromise = o
		} else {
			withoutPromise = o
		}
	}
	if withPromise != nil && withoutPromise != nil {
		return diagnostics.NewError("We have overloads with both Promise and non-Promise return types",
			withPromise.loc, withoutPromise.loc)
	}
	if withPromise != nil && m.flags.LegacyCaller {
		return diagnostics.NewError("May not have a Promise return type for a legacycaller.", withPromise.loc)
	}

	m.maxArgCount = 0
	for _, o := range m.overloads {
		if len(o.Arguments) > m.maxArgCount {
			m.maxArgCount = len(o.Arguments)
		}
	}
	m.allowedArgCounts = m.allowedArgCounts[:0]
	for argc := 0; argc <= m.maxArgCount; argc++ {
		if len(m.SignaturesForArgCount(argc)) > 0 {
			m.allowedArgCounts = append(m.allowedArgCounts, argc)
		}
	}
	return nil
}

func allOptional(args []*Argument) bool {
	for _, arg := range args {
		if !arg.optional {
			return false
		}
	}
	return true
}

// SignaturesForArgCount returns the overloads a call with argc arguments
// could select.
func (m *Method) SignaturesForArgCount(argc int) []*Overload {
	var out []*Overload
	for _, o := range m.overloads {
		n := len(o.Arguments)
		switch {
		case n == argc:
			out = append(out, o)
		case n > argc && allOptional(o.Arguments[argc:]):
			out = append(out, o)
		case n < argc && n > 0 && o.Arguments[n-1].variadic:
			out = append(out, o)
		}
	}
	return out
}

func argTypeAt(o *Overload, idx int) Type {
	if idx < len(o.Arguments) {
		return o.Arguments[idx].typ
	}
	last := o.Arguments[len(o.Arguments)-1]
	assert(last.variadic, "argument index %d past a non-variadic signature", idx)
	return last.typ
}

// DistinguishingIndexForArgCount returns the first argument position at
// which every pair of candidate overloads for argc has distinguishable
// types.
func (m *Method) DistinguishingIndexForArgCount(argc int) (int, error) {
	candidates := m.SignaturesForArgCount(argc)
	valid := func(idx int) bool {
		for i, first := range candidates {
			for _, second := range candidates[i+1:] {
				if !argTypeAt(first, idx).IsDistinguishableFrom(argTypeAt(second, idx)) {
					return false
				}
			}
		}
		return true
	}
	for idx := 0; idx < argc; idx++ {
		if valid(idx) {
			return idx, nil
		}
	}
	locs := make([]diagnostics.Location, len(candidates))
	for i, o := range candidates {
		locs[i] = o.loc
	}
	return 0, diagnostics.NewError(fmt.Sprintf(
		"Signatures with %d arguments for method '%s' are not distinguishable", argc, m.ident.Name), locs...)
}

func (m *Method) Validate() error {
	for _, argc := range m.allowedArgCounts {
		candidates := m.SignaturesForArgCount(argc)
		if len(candidates) == 1 {
			continue
		}
		index, err := m.DistinguishingIndexForArgCount(argc)
		if err != nil {
			return err
		}
		for idx := 0; idx < index; idx++ {
			first := argTypeAt(candidates[0], idx)
			for _, o := range candidates[1:] {
				if !TypesEqual(argTypeAt(o, idx), first) {
					return diagnostics.NewError(fmt.Sprintf(
						"Signatures for method '%s' with %d arguments have different types of arguments "+
							"at index %d, which is before distinguishing index %d", m.ident.Name, argc, idx, index),
						m.loc, o.loc)
				}
			}
		}
	}
	return nil
}

func (m *Method) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	for _, attr := range attrs {
		if err := m.handleExtendedAttribute(attr); err != nil {
			return err
		}
		m.extAttrs.set(attr)
	}
	return nil
}

func (m *Method) handleExtendedAttribute(attr *ExtendedAttribute) error {
	switch attr.name {
	case "GetterThrows", "SetterThrows", "Unforgeable", "SameObject", "Constant":
		return diagnostics.NewError(fmt.Sprintf("Methods must not be flagged as [%s]", attr.name), attr.loc, m.loc)
	case "PutForwards":
		return diagnostics.NewError("Only attributes support [PutForwards]", attr.loc, m.loc)
	case "LenientFloat":
		assert(len(m.overloads) == 1, "[LenientFloat] applied after overload merging")
		o := m.overloads[0]
		if !o.ReturnType.IsVoid() {
			return diagnostics.NewError("[LenientFloat] used on a non-void method", attr.loc, m.loc)
		}
		restricted := false
		for _, arg := range o.Arguments {
			restricted = restricted || arg.typ.IncludesRestrictedFloat()
		}
		if !restricted {
			return diagnostics.NewError("[LenientFloat] used on an operation with no restricted float type arguments",
				attr.loc, m.loc)
		}
	case "Pure", "CrossOriginCallable", "WebGLHandlesContextLoss":
		if !attr.NoArguments() {
			return noArgsError(attr, "[%s] must take no arguments")
		}
	case "Throws", "NewObject", "ChromeOnly", "Pref", "Func", "AvailableIn", "CheckPermissions",
		"BinaryName", "MethodIdentityTestable", "StaticClassOverride":
	default:
		return diagnostics.NewError(fmt.Sprintf("Unknown extended attribute %s on method", attr.name), attr.loc)
	}
	return nil
}
