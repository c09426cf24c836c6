package idl

import (
	"fmt"
	"sort"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// Interface is a (possibly callback) interface. Partial declarations merge
// into the one Interface bound under the name in the global scope.
type Interface struct {
	Scope
	loc      diagnostics.Location
	ident    *Identifier
	extAttrs extAttrDict

	parentRef *Placeholder
	parent    *Interface
	callback  bool

	members           []Member
	originalMembers   []Member
	namedConstructors []*Method
	implemented       []*Interface

	finished           bool
	knownNonPartial    bool
	consequential      bool
	noInterfaceObject  bool
	hasChildren        bool
	onGlobalProtoChain bool

	basedOnSelf      map[*Interface]bool
	implementingSelf map[*Interface]bool

	totalMembersInSlots int
	ownMembersInSlots   int
}

// NewInterface binds a new interface in parentScope. A partial declaration
// seen before the real one passes knownNonPartial=false.
func NewInterface(loc diagnostics.Location, parentScope *Scope, id *Identifier, parent *Placeholder, members []Member, knownNonPartial bool) (*Interface, error) {
	iface := &Interface{
		loc:              loc,
		ident:            id,
		extAttrs:         make(extAttrDict),
		implementingSelf: make(map[*Interface]bool),
	}
	iface.basedOnSelf = map[*Interface]bool{iface: true}
	if err := id.Resolve(parentScope, iface); err != nil {
		return nil, err
	}
	iface.Scope.init(parentScope, id)
	iface.Scope.resolver = iface.resolveIdentifierConflict
	if knownNonPartial {
		if err := iface.SetNonPartial(loc, parent, members); err != nil {
			return nil, err
		}
	} else {
		iface.members = append(iface.members, members...)
	}
	return iface, nil
}

func (i *Interface) isDefinition() {}

func (i *Interface) Location() diagnostics.Location { return i.loc }
func (i *Interface) Identifier() *Identifier        { return i.ident }
func (i *Interface) String() string                 { return fmt.Sprintf("Interface '%s'", i.ident.Name) }

// SetNonPartial records the canonical declaration. Its members go before
// any collected from partial declarations.
func (i *Interface) SetNonPartial(loc diagnostics.Location, parent *Placeholder, members []Member) error {
	if i.knownNonPartial {
		return diagnostics.NewError("Two non-partial definitions for the same interface", loc, i.loc)
	}
	i.knownNonPartial = true
	i.loc = loc
	assert(i.parentRef == nil, "interface %s already has a parent", i.ident.Name)
	i.parentRef = parent
	i.members = append(append([]Member(nil), members...), i.members...)
	return nil
}

// AddPartialMembers appends the members of a partial declaration.
func (i *Interface) AddPartialMembers(members []Member) {
	i.members = append(i.members, members...)
}

func (i *Interface) SetCallback(callback bool) { i.callback = callback }

func (i *Interface) Parent() *Interface            { return i.parent }
func (i *Interface) IsCallback() bool              { return i.callback }
func (i *Interface) IsFinished() bool              { return i.finished }
func (i *Interface) Members() []Member             { return i.members }
func (i *Interface) OriginalMembers() []Member     { return i.originalMembers }
func (i *Interface) NamedConstructors() []*Method  { return i.namedConstructors }
func (i *Interface) IsConsequential() bool         { return i.consequential }
func (i *Interface) HasChildInterfaces() bool      { return i.hasChildren }
func (i *Interface) IsOnGlobalProtoChain() bool    { return i.onGlobalProtoChain }
func (i *Interface) TotalMembersInSlots() int      { return i.totalMembersInSlots }
func (i *Interface) OwnMembersInSlots() int        { return i.ownMembersInSlots }

// ImplementedInterfaces lists the interfaces named on the right of
// "implements" statements with this interface on the left.
func (i *Interface) ImplementedInterfaces() []*Interface {
	return append([]*Interface(nil), i.implemented...)
}

// ExtendedAttribute returns the values recorded for name.
func (i *Interface) ExtendedAttribute(name string) ([]string, bool) {
	return i.extAttrs.get(name)
}

// ExtendedAttributes returns every recorded attribute by name, merged
// across all declarations of the interface.
func (i *Interface) ExtendedAttributes() map[string][]string { return i.extAttrs.copy() }

// Ctor returns the synthesized constructor operation, if any.
func (i *Interface) Ctor() *Method {
	obj, ok := i.Scope.Lookup("constructor")
	if !ok {
		return nil
	}
	m, _ := obj.(*Method)
	return m
}

func (i *Interface) HasInterfaceObject() bool {
	if i.callback {
		return i.HasConstants()
	}
	return !i.noInterfaceObject
}

func (i *Interface) HasConstants() bool {
	for _, m := range i.members {
		if m.MemberTag() == MemberConst {
			return true
		}
	}
	return false
}

func (i *Interface) InheritanceDepth() int {
	depth := 0
	for p := i.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// JSImplementation returns the [JSImplementation] contract id.
func (i *Interface) JSImplementation() (string, bool) {
	v, ok := i.extAttrs.get("JSImplementation")
	if !ok || len(v) == 0 {
		return "", false
	}
	assert(len(v) == 1, "[JSImplementation] with %d values", len(v))
	return v[0], true
}

// IsSingleOperationInterface reports a callback interface whose only
// regular operations share one name and that has no attributes.
func (i *Interface) IsSingleOperationInterface() bool {
	_, jsImpl := i.JSImplementation()
	assert(i.callback || jsImpl, "single-operation query on %s", i.ident.Name)
	if jsImpl || i.parent != nil || len(i.ConsequentialInterfaces()) > 0 {
		return false
	}
	names := make(map[string]bool)
	for _, m := range i.members {
		switch m.MemberTag() {
		case MemberAttr:
			return false
		case MemberMethod:
			if !m.IsStatic() {
				names[m.Identifier().Name] = true
			}
		}
	}
	return len(names) == 1
}

// InheritedInterfaces returns the ancestors, most derived first.
func (i *Interface) InheritedInterfaces() []*Interface {
	assert(i.finished, "ancestors of unfinished interface %s", i.ident.Name)
	var out []*Interface
	seen := map[*Interface]bool{i: true}
	for p := i.parent; p != nil && !seen[p]; p = p.parent {
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// ConsequentialInterfaces returns everything mixed in through
// "implements", transitively, sorted by name.
func (i *Interface) ConsequentialInterfaces() []*Interface {
	assert(i.finished, "consequential interfaces of unfinished interface %s", i.ident.Name)
	set := make(map[*Interface]bool)
	i.collectConsequential(set, make(map[*Interface]bool))
	out := make([]*Interface, 0, len(set))
	for iface := range set {
		out = append(out, iface)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ident.Name < out[b].ident.Name })
	return out
}

func (i *Interface) collectConsequential(set, visiting map[*Interface]bool) {
	if visiting[i] {
		return
	}
	visiting[i] = true
	for _, impl := range i.implemented {
		set[impl] = true
		for _, anc := range impl.InheritedInterfaces() {
			set[anc] = true
		}
	}
	for iface := range copySet(set) {
		iface.collectConsequential(set, visiting)
	}
}

func copySet(s map[*Interface]bool) map[*Interface]bool {
	out := make(map[*Interface]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (i *Interface) addImplementedInterface(other *Interface) {
	for _, existing := range i.implemented {
		if existing == other {
			return
		}
	}
	i.implemented = append(i.implemented, other)
}

// findInterfaceLoopPoint finds an ancestor or consequential interface that
// inherits from or implements target directly.
func (i *Interface) findInterfaceLoopPoint(target *Interface, visited map[*Interface]bool) *Interface {
	if visited[i] {
		return nil
	}
	visited[i] = true
	if i.parent != nil {
		if i.parent == target {
			return i
		}
		if loop := i.parent.findInterfaceLoopPoint(target, visited); loop != nil {
			return loop
		}
	}
	for _, impl := range i.implemented {
		if impl == target {
			return i
		}
	}
	for _, impl := range i.implemented {
		if loop := impl.findInterfaceLoopPoint(target, visited); loop != nil {
			return loop
		}
	}
	return nil
}

func (i *Interface) resolveIdentifierConflict(id *Identifier, original, replacement Object) (Object, error) {
	result, err := i.Scope.resolveIdentifierConflict(id, original, replacement)
	if err != nil {
		return nil, err
	}
	// A constructor is not in the member list.
	if m, ok := replacement.(Member); ok {
		for idx, member := range i.members {
			if member == m {
				i.members = append(i.members[:idx:idx], i.members[idx+1:]...)
				break
			}
		}
	}
	return result, nil
}

func (i *Interface) dependentObjects() []Dependent {
	var deps []Dependent
	for _, m := range i.members {
		deps = append(deps, m)
	}
	for _, impl := range i.implemented {
		deps = append(deps, impl)
	}
	if i.parent != nil {
		deps = append(deps, i.parent)
	}
	return deps
}

func (i *Interface) Finish(scope *Scope) error {
	if i.finished {
		return nil
	}
	i.finished = true

	if !i.knownNonPartial {
		return diagnostics.NewError(fmt.Sprintf(
			"Interface %s does not have a non-partial declaration", i.ident.Name), i.loc)
	}

	if i.parentRef != nil {
		obj, err := i.parentRef.Resolve(scope)
		if err != nil {
			return err
		}
		switch p := obj.(type) {
		case *Interface:
			i.parent = p
		case *ExternalInterface:
			return diagnostics.NewError(fmt.Sprintf("%s inherits from %s which does not have a definition",
				i.ident.Name, i.parentRef.ident.Name), i.loc)
		default:
			return diagnostics.NewError(fmt.Sprintf("%s inherits from %s which is not an interface",
				i.ident.Name, i.parentRef.ident.Name), i.loc, obj.Location())
		}
	}

	if i.parent != nil {
		if err := i.parent.Finish(scope); err != nil {
			return err
		}
		i.parent.hasChildren = true
		i.totalMembersInSlots = i.parent.totalMembersInSlots
		if i.parent.extAttrs.has("Global") {
			return diagnostics.NewError("[Global] interface has another interface inheriting from it",
				i.loc, i.parent.loc)
		}
		if i.callback && !i.parent.callback {
			return diagnostics.NewError(fmt.Sprintf("Callback interface %s inheriting from non-callback interface %s",
				i.ident.Name, i.parent.ident.Name), i.loc, i.parent.loc)
		}
		if !i.callback && i.parent.callback {
			return diagnostics.NewError(fmt.Sprintf("Non-callback interface %s inheriting from callback interface %s",
				i.ident.Name, i.parent.ident.Name), i.loc, i.parent.loc)
		}
	}

	for _, impl := range i.implemented {
		if err := impl.Finish(scope); err != nil {
			return err
		}
	}

	if loop := i.findInterfaceLoopPoint(i, make(map[*Interface]bool)); loop != nil {
		return diagnostics.NewError(fmt.Sprintf(
			"Interface %s has itself as ancestor or implemented interface", i.ident.Name), i.loc, loop.loc)
	}

	if i.callback {
		assert(len(i.ConsequentialInterfaces()) == 0, "callback interface %s has consequential interfaces", i.ident.Name)
		assert(!i.consequential, "callback interface %s is consequential", i.ident.Name)
	}

	// Resolution can merge overloads out of the list, so walk a copy.
	for _, m := range append([]Member(nil), i.members...) {
		if err := m.resolve(&i.Scope); err != nil {
			return err
		}
	}
	for _, m := range i.members {
		if err := m.Finish(scope); err != nil {
			return err
		}
	}
	if ctor := i.Ctor(); ctor != nil {
		if err := ctor.Finish(scope); err != nil {
			return err
		}
	}
	for _, ctor := range i.namedConstructors {
		if err := ctor.Finish(scope); err != nil {
			return err
		}
	}

	i.originalMembers = append([]Member(nil), i.members...)

	for _, iface := range i.ConsequentialInterfaces() {
		iface.consequential = true
		iface.basedOnSelf[i] = true
		for _, extra := range iface.originalMembers {
			for _, m := range i.members {
				if extra.Identifier().Name == m.Identifier().Name {
					return diagnostics.NewError(fmt.Sprintf(
						"Multiple definitions of %s on %s coming from 'implements' statements",
						m.Identifier().Name, i), extra.Location(), m.Location())
				}
			}
		}
		i.members = append(i.members, iface.originalMembers...)
		iface.implementingSelf[i] = true
	}

	for _, ancestor := range i.InheritedInterfaces() {
		ancestor.basedOnSelf[i] = true
		for _, c := range ancestor.ConsequentialInterfaces() {
			c.basedOnSelf[i] = true
		}
	}

	for _, m := range i.members {
		attr, ok := m.(*Attribute)
		if !ok {
			continue
		}
		_, store := attr.extAttrs.get("StoreInSlot")
		if store || attr.extAttrs.has("Cached") {
			attr.slotIndex = i.totalMembersInSlots
			i.totalMembersInSlots++
			if store {
				i.ownMembersInSlots++
			}
		}
	}

	if i.parent != nil {
		for _, pm := range i.parent.members {
			unforgeable, ok := pm.(*Attribute)
			if !ok || unforgeable.IsStatic() || !unforgeable.unforgeable {
				continue
			}
			locs := []diagnostics.Location{unforgeable.loc}
			for _, m := range i.members {
				if m.MemberTag() != MemberConst && !m.IsStatic() && m.Identifier().Name == unforgeable.ident.Name {
					locs = append(locs, m.Location())
				}
			}
			if len(locs) > 1 {
				return diagnostics.NewError(fmt.Sprintf("Interface %s shadows [Unforgeable] members of %s",
					i.ident.Name, i.parent.ident.Name), locs...)
			}
			i.members = append(i.members, unforgeable)
		}
	}

	seen, err := i.checkSpecialMembers()
	if err != nil {
		return err
	}

	if i.onGlobalProtoChain {
		for _, kind := range []string{"setter", "creator", "deleter"} {
			if m, ok := seen["named "+kind+"s"]; ok {
				return diagnostics.NewError("Interface with [Global] has a named "+kind, i.loc, m.loc)
			}
		}
		if i.extAttrs.has("OverrideBuiltins") {
			return diagnostics.NewError("Interface with [Global] also has [OverrideBuiltins]", i.loc)
		}
		for p := i.parent; p != nil; p = p.parent {
			if p.extAttrs.has("OverrideBuiltins") {
				return diagnostics.NewError("Interface with [Global] inherits from interface with [OverrideBuiltins]",
					i.loc, p.loc)
			}
			p.onGlobalProtoChain = true
		}
	}
	return nil
}

// checkSpecialMembers enforces at most one of each keyed special operation
// and at most one stringifier, jsonifier and legacycaller.
func (i *Interface) checkSpecialMembers() (map[string]*Method, error) {
	seen := make(map[string]*Method)
	for _, member := range i.members {
		m, ok := member.(*Method)
		if !ok {
			continue
		}
		var kind string
		switch {
		case m.flags.Getter:
			kind = "getters"
		case m.flags.Setter:
			kind = "setters"
		case m.flags.Creator:
			kind = "creators"
		case m.flags.Deleter:
			kind = "deleters"
		case m.flags.Stringifier:
			kind = "stringifiers"
		case m.flags.Jsonifier:
			kind = "jsonifiers"
		case m.flags.LegacyCaller:
			kind = "legacycallers"
		default:
			continue
		}
		switch kind {
		case "stringifiers", "jsonifiers", "legacycallers":
		default:
			if m.IsNamed() {
				kind = "named " + kind
			} else {
				kind = "indexed " + kind
			}
		}
		if prev, dup := seen[kind]; dup {
			return nil, diagnostics.NewError(fmt.Sprintf("Multiple %s on %s", kind, i), i.loc, prev.loc, m.loc)
		}
		seen[kind] = m
	}
	return seen, nil
}

func (i *Interface) Validate() error {
	if i.extAttrs.has("Unforgeable") && i.consequential {
		locs := []diagnostics.Location{i.loc}
		for other := range i.basedOnSelf {
			if other != i {
				locs = append(locs, other.loc)
			}
		}
		return diagnostics.NewError(fmt.Sprintf("%s is an unforgeable consequential interface", i.ident.Name), locs...)
	}
	if i.extAttrs.has("Unforgeable") && i.hasChildren {
		locs := []diagnostics.Location{i.loc}
		for other := range i.basedOnSelf {
			if other.parent == i {
				locs = append(locs, other.loc)
			}
		}
		return diagnostics.NewError(fmt.Sprintf("%s is an unforgeable ancestor interface", i.ident.Name), locs...)
	}

	for _, member := range i.members {
		if err := member.Validate(); err != nil {
			return err
		}
		attr, ok := member.(*Attribute)
		if !ok {
			continue
		}
		forward, ok := attr.extAttrs.get("PutForwards")
		if !ok {
			continue
		}
		if i.callback {
			return diagnostics.NewError(fmt.Sprintf(
				"[PutForwards] used on an attribute on interface %s which is a callback interface", i.ident.Name),
				i.loc, member.Location())
		}
		if err := i.checkForwardChain(attr, forward); err != nil {
			return err
		}
	}
	return nil
}

// checkForwardChain follows [PutForwards] from start until it reaches an
// attribute without one.
func (i *Interface) checkForwardChain(start *Attribute, forward []string) error {
	var holder fmt.Stringer = i
	attr := start
	visited := map[*Attribute]bool{start: true}
	for {
		var target *Attribute
		if w, ok := attr.typ.Unroll().(*WrapperType); ok {
			if next, ok := w.inner.(*Interface); ok {
				for _, m := range next.members {
					a, ok := m.(*Attribute)
					if !ok || a.ident.Name != forward[0] {
						continue
					}
					if visited[a] {
						return diagnostics.NewError(fmt.Sprintf("Cycle detected in forwarded assignments for attribute %s on %s",
							start.ident.Name, i), start.loc)
					}
					target = a
					holder = next
					break
				}
			}
		}
		if target == nil {
			return diagnostics.NewError(fmt.Sprintf("Attribute %s on %s forwards to missing attribute %s",
				attr.ident.Name, holder, forward[0]), attr.loc)
		}
		visited[target] = true
		attr = target
		var ok bool
		if forward, ok = attr.extAttrs.get("PutForwards"); !ok {
			return nil
		}
	}
}
