package idl_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/webidl/internal/diagnostics"
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/parser"
)

func finish(t *testing.T, sources ...string) []idl.Definition {
	t.Helper()
	defs, err := tryFinish(sources...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return defs
}

func tryFinish(sources ...string) ([]idl.Definition, error) {
	p, err := parser.New()
	if err != nil {
		return nil, err
	}
	for i, src := range sources {
		if err := p.Parse(src, "file"+string(rune('0'+i))+".webidl"); err != nil {
			return nil, err
		}
	}
	return p.Finish()
}

func lookup(t *testing.T, defs []idl.Definition, name string) idl.Definition {
	t.Helper()
	for _, d := range defs {
		switch d := d.(type) {
		case *idl.Interface:
			if d.Identifier().Name == name {
				return d
			}
		case *idl.Dictionary:
			if d.Identifier().Name == name {
				return d
			}
		case *idl.Enum:
			if d.Identifier().Name == name {
				return d
			}
		case *idl.Callback:
			if d.Identifier().Name == name {
				return d
			}
		}
	}
	t.Fatalf("no definition named %s", name)
	return nil
}

func memberNames(iface *idl.Interface) []string {
	var out []string
	for _, m := range iface.Members() {
		out = append(out, m.Identifier().Name)
	}
	return out
}

func method(t *testing.T, iface *idl.Interface, name string) *idl.Method {
	t.Helper()
	for _, m := range iface.Members() {
		if mm, ok := m.(*idl.Method); ok && m.Identifier().Name == name {
			return mm
		}
	}
	t.Fatalf("%s has no method %s", iface.Identifier().Name, name)
	return nil
}

func TestPartialMergeOrder(t *testing.T) {
	for _, tc := range []struct {
		name    string
		sources []string
	}{
		{"interface first", []string{"interface A { attribute long x; };", "partial interface A { attribute long y; };"}},
		{"partial first", []string{"partial interface A { attribute long y; };", "interface A { attribute long x; };"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			defs := finish(t, tc.sources...)
			if len(defs) != 1 {
				t.Fatalf("got %d definitions, want 1", len(defs))
			}
			iface := defs[0].(*idl.Interface)
			if diff := cmp.Diff([]string{"x", "y"}, memberNames(iface)); diff != "" {
				t.Errorf("members (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPartialWithoutInterface(t *testing.T) {
	_, err := tryFinish("partial interface A { attribute long y; };")
	assertMessage(t, err, "Interface A does not have a non-partial declaration")
}

func TestOverloadMerge(t *testing.T) {
	defs := finish(t, `
interface A {
  void f(long a);
  void f(DOMString s, optional long b);
  void g(long... rest);
};`)
	iface := defs[0].(*idl.Interface)
	if diff := cmp.Diff([]string{"f", "g"}, memberNames(iface)); diff != "" {
		t.Errorf("members (-want +got):\n%s", diff)
	}

	f := method(t, iface, "f")
	if !f.HasOverloads() || len(f.Overloads()) != 2 {
		t.Fatalf("f has %d overloads, want 2", len(f.Overloads()))
	}
	if got := f.MaxArgCount(); got != 2 {
		t.Errorf("MaxArgCount = %d, want 2", got)
	}
	if diff := cmp.Diff([]int{1, 2}, f.AllowedArgCounts()); diff != "" {
		t.Errorf("AllowedArgCounts (-want +got):\n%s", diff)
	}
	counts := map[int]int{}
	for argc := 0; argc <= 3; argc++ {
		counts[argc] = len(f.SignaturesForArgCount(argc))
	}
	if diff := cmp.Diff(map[int]int{0: 0, 1: 2, 2: 1, 3: 0}, counts); diff != "" {
		t.Errorf("signature counts (-want +got):\n%s", diff)
	}
	idx, err := f.DistinguishingIndexForArgCount(1)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 {
		t.Errorf("distinguishing index = %d, want 0", idx)
	}

	g := method(t, iface, "g")
	if diff := cmp.Diff([]int{0, 1}, g.AllowedArgCounts()); diff != "" {
		t.Errorf("variadic AllowedArgCounts (-want +got):\n%s", diff)
	}
	if n := len(g.SignaturesForArgCount(5)); n != 1 {
		t.Errorf("variadic g has %d signatures for 5 arguments, want 1", n)
	}
}

func TestIndistinguishableOverloads(t *testing.T) {
	_, err := tryFinish(`
interface A {
  void f(long a);
  void f(short b);
};`)
	assertMessage(t, err, "Signatures with 1 arguments for method 'f' are not distinguishable")
}

func TestDuplicateArgumentNames(t *testing.T) {
	_, err := tryFinish("interface A { void f(long x, long x); };")
	assertMessage(t, err, "Multiple unresolvable definitions of identifier 'x' in scope '::A::f::'")
}

func TestDictionarySorting(t *testing.T) {
	defs := finish(t, `
dictionary Base { long zeta; long alpha; };
dictionary Derived : Base { DOMString mid; boolean beta = false; };
`)
	derived := lookup(t, defs, "Derived").(*idl.Dictionary)
	var names []string
	for _, m := range derived.Members() {
		names = append(names, m.Identifier().Name)
	}
	if diff := cmp.Diff([]string{"beta", "mid"}, names); diff != "" {
		t.Errorf("members (-want +got):\n%s", diff)
	}
	if derived.Parent() != lookup(t, defs, "Base") {
		t.Error("Derived's parent is not Base")
	}
}

func TestDictionaryErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"shadowed member", "dictionary P { long a; }; dictionary C : P { long a; };",
			"Dictionary C has two members with name a"},
		{"self containment", "dictionary D { D inner; };",
			"Dictionary D has member with itself as type."},
		{"non-dictionary parent", "interface I {}; dictionary D : I {};",
			"Dictionary D has parent that is not a dictionary"},
		{"nullable dictionary member", "dictionary E {}; dictionary D { E? e; };",
			"Dictionary D has member with nullable dictionary type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tryFinish(tt.src)
			assertMessagePrefix(t, err, tt.want)
		})
	}
}

func TestInheritanceCycle(t *testing.T) {
	_, err := tryFinish("interface A : B {}; interface B : C {}; interface C : A {};")
	assertMessageContains(t, err, "has itself as ancestor or implemented interface")
}

func TestImplementsCycle(t *testing.T) {
	_, err := tryFinish("interface A {}; interface B {}; A implements B; B implements A;")
	assertMessageContains(t, err, "has itself as ancestor or implemented interface")
}

func TestConsequentialInterfaces(t *testing.T) {
	defs := finish(t, `
interface Target { attribute long t; };
interface Mixin : MixinBase { attribute long m; };
interface MixinBase { attribute long b; };
Target implements Mixin;
`)
	target := lookup(t, defs, "Target").(*idl.Interface)
	var names []string
	for _, c := range target.ConsequentialInterfaces() {
		names = append(names, c.Identifier().Name)
	}
	if diff := cmp.Diff([]string{"Mixin", "MixinBase"}, names); diff != "" {
		t.Errorf("consequential (-want +got):\n%s", diff)
	}
	if !lookup(t, defs, "Mixin").(*idl.Interface).IsConsequential() {
		t.Error("Mixin is not marked consequential")
	}
	if diff := cmp.Diff([]string{"t", "m", "b"}, memberNames(target)); diff != "" {
		t.Errorf("members (-want +got):\n%s", diff)
	}
}

func TestImplementsNameClash(t *testing.T) {
	_, err := tryFinish(`
interface Target { attribute long x; };
interface Mixin { attribute long x; };
Target implements Mixin;
`)
	assertMessagePrefix(t, err, "Multiple definitions of x on Interface 'Target' coming from 'implements' statements")
}

func TestSpecialOperationLimits(t *testing.T) {
	_, err := tryFinish(`
interface A {
  getter long (unsigned long i);
  getter long item(unsigned long j);
};`)
	assertMessagePrefix(t, err, "Multiple indexed getters on Interface 'A'")
}

func TestTypedefResolution(t *testing.T) {
	defs := finish(t, `
typedef sequence<DOMString> Names;
typedef Names NameList;
interface A { attribute NameList names; };
`)
	iface := defs[0].(*idl.Interface)
	attr := iface.Members()[0].(*idl.Attribute)
	if !attr.Type().IsSequence() {
		t.Errorf("attribute type %s is not a sequence", attr.Type())
	}
	if _, ok := attr.Type().(*idl.SequenceType); !ok {
		t.Errorf("typedef survived completion as %T", attr.Type())
	}
}

func TestUnresolvedType(t *testing.T) {
	_, err := tryFinish("interface A { attribute Missing m; };")
	assertMessage(t, err, "Unresolved type 'Missing'.")
}

func TestCallbackInterface(t *testing.T) {
	defs := finish(t, `
callback interface Listener { void handle(long code); };
interface Target { void add(Listener l); };
`)
	listener := lookup(t, defs, "Listener").(*idl.Interface)
	if !listener.IsCallback() {
		t.Error("Listener is not a callback interface")
	}
	if !listener.IsSingleOperationInterface() {
		t.Error("Listener is not a single-operation interface")
	}
}

func TestSlotIndices(t *testing.T) {
	defs := finish(t, `
interface Base { [StoreInSlot, Pure] readonly attribute long a; };
interface Child : Base {
  [Cached, Pure] readonly attribute long b;
  [StoreInSlot, Constant] readonly attribute long c;
};
`)
	child := lookup(t, defs, "Child").(*idl.Interface)
	if got := child.TotalMembersInSlots(); got != 3 {
		t.Errorf("TotalMembersInSlots = %d, want 3", got)
	}
	if got := child.OwnMembersInSlots(); got != 1 {
		t.Errorf("OwnMembersInSlots = %d, want 1", got)
	}
	var slots []int
	for _, m := range child.Members() {
		slots = append(slots, m.(*idl.Attribute).SlotIndex())
	}
	if diff := cmp.Diff([]int{1, 2}, slots); diff != "" {
		t.Errorf("slots (-want +got):\n%s", diff)
	}
}

func TestDepsFollowReferencedFiles(t *testing.T) {
	defs := finish(t,
		"interface A { void f(optional Opts o); };",
		"dictionary Opts { Mode mode = \"fast\"; };",
		"enum Mode { \"fast\", \"slow\" };",
	)
	if diff := cmp.Diff([]string{"file0.webidl", "file1.webidl", "file2.webidl"}, idl.Deps(defs[0])); diff != "" {
		t.Errorf("deps (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"file2.webidl"}, idl.Deps(lookup(t, defs, "Mode"))); diff != "" {
		t.Errorf("enum deps (-want +got):\n%s", diff)
	}
}

func TestInterfaceTypesCarryNoDeps(t *testing.T) {
	defs := finish(t,
		"interface A { attribute B other; };",
		"interface B {};",
	)
	if diff := cmp.Diff([]string{"file0.webidl"}, idl.Deps(defs[0])); diff != "" {
		t.Errorf("deps (-want +got):\n%s", diff)
	}
}

func diagnostic(t *testing.T, err error) *diagnostics.Error {
	t.Helper()
	var derr *diagnostics.Error
	if !errors.As(err, &derr) {
		t.Fatalf("got %v, want a diagnostics error", err)
	}
	return derr
}

func assertMessage(t *testing.T, err error, want string) {
	t.Helper()
	if got := diagnostic(t, err).Message; got != want {
		t.Errorf("message %q, want %q", got, want)
	}
}

func assertMessagePrefix(t *testing.T, err error, want string) {
	t.Helper()
	if got := diagnostic(t, err).Message; !strings.HasPrefix(got, want) {
		t.Errorf("message %q, want prefix %q", got, want)
	}
}

func assertMessageContains(t *testing.T, err error, want string) {
	t.Helper()
	if got := diagnostic(t, err).Message; !strings.Contains(got, want) {
		t.Errorf("message %q, want it to contain %q", got, want)
	}
}

func TestVariadicOverloadBeforeDistinguishingIndex(t *testing.T) {
	defs := finish(t, `
interface A {
  void f(long... a);
  void f(long x, long y, DOMString z);
};`)
	f := method(t, defs[0].(*idl.Interface), "f")
	if n := len(f.SignaturesForArgCount(3)); n != 2 {
		t.Fatalf("f has %d signatures for 3 arguments, want 2", n)
	}
	idx, err := f.DistinguishingIndexForArgCount(3)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 2 {
		t.Errorf("distinguishing index = %d, want 2", idx)
	}

	_, err = tryFinish(`
interface A {
  void f(long... a);
  void f(long x, short y, DOMString z);
};`)
	assertMessage(t, err, "Signatures for method 'f' with 3 arguments have different types of arguments "+
		"at index 1, which is before distinguishing index 2")
}

func TestRecursiveTypedef(t *testing.T) {
	for _, src := range []string{
		`typedef B A; typedef A B; interface I { attribute A x; };`,
		`typedef sequence<A> A; interface I { void f(A x); };`,
	} {
		_, err := tryFinish(src)
		assertMessageContains(t, err, "is recursive")
	}
}

func TestNamedConstructorsMergeOnOneInterface(t *testing.T) {
	defs := finish(t, `
[NamedConstructor=Audio(), NamedConstructor=Audio(DOMString src)]
interface AudioElement {
};`)
	ctors := defs[0].(*idl.Interface).NamedConstructors()
	if len(ctors) != 1 {
		t.Fatalf("%d named constructors, want 1", len(ctors))
	}
	if n := len(ctors[0].Overloads()); n != 2 {
		t.Errorf("Audio has %d overloads, want 2", n)
	}

	_, err := tryFinish(`
[NamedConstructor=Widget()] interface Button {};
[NamedConstructor=Widget()] interface Slider {};`)
	assertMessage(t, err, "NamedConstructor conflicts with a NamedConstructor of a different interface")
}

func TestGlobalInterfaceRules(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"named setter", `[Global] interface W { getter any (DOMString n); setter void (DOMString n, any v); };`,
			"Interface with [Global] has a named setter"},
		{"named creator", `[Global] interface W { creator void (DOMString n, any v); };`,
			"Interface with [Global] has a named creator"},
		{"named deleter", `[Global] interface W { deleter void (DOMString n); };`,
			"Interface with [Global] has a named deleter"},
		{"override builtins", `[Global, OverrideBuiltins] interface W {};`,
			"Interface with [Global] also has [OverrideBuiltins]"},
		{"ancestor override builtins", `[OverrideBuiltins] interface P {}; [Global] interface W : P {};`,
			"Interface with [Global] inherits from interface with [OverrideBuiltins]"},
		{"inherited", `[Global] interface W {}; interface C : W {};`,
			"[Global] interface has another interface inheriting from it"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tryFinish(tt.src)
			assertMessage(t, err, tt.want)
		})
	}

	defs := finish(t, `interface P {}; [Global] interface W : P { getter any (DOMString n); };`)
	if !lookup(t, defs, "P").(*idl.Interface).IsOnGlobalProtoChain() {
		t.Error("ancestor of a [Global] interface is not on the global prototype chain")
	}
}

func TestUnforgeableShadowing(t *testing.T) {
	_, err := tryFinish(`
interface Location { [Unforgeable] readonly attribute DOMString href; };
interface SubLocation : Location { readonly attribute DOMString href; };`)
	assertMessage(t, err, "Interface SubLocation shadows [Unforgeable] members of Location")

	defs := finish(t, `
interface Location { [Unforgeable] readonly attribute DOMString href; };
interface SubLocation : Location { readonly attribute DOMString host; };`)
	sub := lookup(t, defs, "SubLocation").(*idl.Interface)
	if diff := cmp.Diff([]string{"host", "href"}, memberNames(sub)); diff != "" {
		t.Errorf("members (-want +got):\n%s", diff)
	}
}

func TestPutForwards(t *testing.T) {
	finish(t, `
interface Style { attribute DOMString cssText; };
interface Element { [PutForwards=cssText] readonly attribute Style style; };`)

	_, err := tryFinish(`
interface A { [PutForwards=y] readonly attribute B x; };
interface B { [PutForwards=x] readonly attribute A y; };`)
	assertMessage(t, err, "Cycle detected in forwarded assignments for attribute x on Interface 'A'")

	_, err = tryFinish(`
interface B { attribute long z; };
interface A { [PutForwards=w] readonly attribute B x; };`)
	assertMessage(t, err, "Attribute x on Interface 'A' forwards to missing attribute w")
}

func TestDefinitionTypeDistinguishability(t *testing.T) {
	defs := finish(t, `
enum Mode { "fast", "slow" };
callback Handler = void (long x);
callback interface Listener { void handle(); };
dictionary Options { long depth; };
interface Node {};
interface Element : Node {};
interface Text : Node {};
interface Mixin {};
interface Widget {};
Widget implements Mixin;`)
	loc := diagnostics.BuiltinLocation("<test>")
	wrap := func(name string) idl.Type { return idl.NewWrapperType(loc, lookup(t, defs, name)) }
	long, str := idl.Builtin(idl.Long), idl.Builtin(idl.DOMString)

	tests := []struct {
		name string
		a, b idl.Type
		want bool
	}{
		{"enum/long", wrap("Mode"), long, true},
		{"enum/DOMString", wrap("Mode"), str, false},
		{"enum/enum", wrap("Mode"), wrap("Mode"), false},
		{"enum/interface", wrap("Mode"), wrap("Node"), true},
		{"callback/interface", wrap("Handler"), wrap("Node"), true},
		{"callback/callback interface", wrap("Handler"), wrap("Listener"), false},
		{"callback/dictionary", wrap("Handler"), wrap("Options"), false},
		{"callback/enum", wrap("Handler"), wrap("Mode"), true},
		{"dictionary/interface", wrap("Options"), wrap("Node"), true},
		{"dictionary/callback interface", wrap("Options"), wrap("Listener"), false},
		{"dictionary/nullable interface", wrap("Options"), idl.NewNullableType(loc, wrap("Node")), false},
		{"dictionary/long", wrap("Options"), long, true},
		{"callback interface/interface", wrap("Listener"), wrap("Node"), true},
		{"interface/object", wrap("Node"), idl.Builtin(idl.ObjectKind), false},
		{"ancestor/descendant", wrap("Node"), wrap("Element"), false},
		{"siblings", wrap("Element"), wrap("Text"), true},
		{"implemented/implementor", wrap("Mixin"), wrap("Widget"), false},
		{"unrelated", wrap("Mixin"), wrap("Text"), true},
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

func TestDoubleUnderscoreIdentifiers(t *testing.T) {
	defs := finish(t, `interface A { attribute long __content; };`)
	if diff := cmp.Diff([]string{"_content"}, memberNames(defs[0].(*idl.Interface))); diff != "" {
		t.Errorf("members (-want +got):\n%s", diff)
	}

	_, err := tryFinish(`interface A { attribute long __hidden; };`)
	assertMessage(t, err, "Identifiers beginning with __ are reserved")
}

func TestClampAndEnforceRange(t *testing.T) {
	defs := finish(t, `interface A { void f([Clamp, Clamp] octet x); };`)
	f := method(t, defs[0].(*idl.Interface), "f")
	if arg := f.Overloads()[0].Arguments[0]; !arg.Clamp() || arg.EnforceRange() {
		t.Errorf("Clamp() = %v, EnforceRange() = %v, want true, false", arg.Clamp(), arg.EnforceRange())
	}

	for _, attrs := range []string{"Clamp, EnforceRange", "EnforceRange, Clamp"} {
		_, err := tryFinish(`interface A { void f([` + attrs + `] long x); };`)
		assertMessage(t, err, "[EnforceRange] and [Clamp] are mutually exclusive")
	}
}
