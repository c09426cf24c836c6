package idl

import (
	"fmt"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// ExtendedAttribute is one bracketed annotation, in any of the five
// syntactic forms: [A], [A=B], [A(args)], [A=(x,y)] and [A=B(args)].
type ExtendedAttribute struct {
	loc      diagnostics.Location
	name     string
	value    string
	hasValue bool
	list     []string
	hasList  bool
	args     []*Argument
	hasArgs  bool
}

func NewExtendedAttribute(loc diagnostics.Location, name string) *ExtendedAttribute {
	return &ExtendedAttribute{loc: loc, name: name}
}

// WithValue sets the "=Ident" or "=String" part.
func (a *ExtendedAttribute) WithValue(v string) *ExtendedAttribute {
	a.value, a.hasValue = v, true
	return a
}

// WithList sets the "=(a, b)" part.
func (a *ExtendedAttribute) WithList(l []string) *ExtendedAttribute {
	a.list, a.hasList = l, true
	return a
}

// WithArgs sets the "(args)" part.
func (a *ExtendedAttribute) WithArgs(args []*Argument) *ExtendedAttribute {
	a.args, a.hasArgs = args, true
	return a
}

func (a *ExtendedAttribute) Location() diagnostics.Location { return a.loc }
func (a *ExtendedAttribute) Name() string                   { return a.name }
func (a *ExtendedAttribute) Value() string                  { return a.value }
func (a *ExtendedAttribute) HasValue() bool                 { return a.hasValue }
func (a *ExtendedAttribute) HasArgs() bool                  { return a.hasArgs }
func (a *ExtendedAttribute) Args() []*Argument              { return a.args }
func (a *ExtendedAttribute) NoArguments() bool              { return !a.hasValue && !a.hasArgs && !a.hasList }

// ListValue flattens the value forms to a list.
func (a *ExtendedAttribute) ListValue() []string {
	switch {
	case a.hasList:
		return append([]string(nil), a.list...)
	case a.hasValue:
		return []string{a.value}
	}
	return []string{}
}

func (a *ExtendedAttribute) String() string {
	s := a.name
	switch {
	case a.hasValue:
		s += "=" + a.value
	case a.hasList:
		s += fmt.Sprintf("=%v", a.list)
	}
	if a.hasArgs {
		s += fmt.Sprintf("(%d args)", len(a.args))
	}
	return s
}

// extAttrDict keeps attribute name to value list; an attribute without a
// value maps to an empty, non-nil list.
type extAttrDict map[string][]string

func (d extAttrDict) get(name string) ([]string, bool) {
	v, ok := d[name]
	return v, ok
}

func (d extAttrDict) has(name string) bool {
	_, ok := d[name]
	return ok
}

// copy returns an independent copy for callers outside the package.
func (d extAttrDict) copy() map[string][]string {
	out := make(map[string][]string, len(d))
	for k, v := range d {
		out[k] = append([]string{}, v...)
	}
	return out
}

func (d extAttrDict) set(attr *ExtendedAttribute) {
	d[attr.name] = attr.ListValue()
}

func noArgsError(attr *ExtendedAttribute, format string) error {
	return diagnostics.NewError(fmt.Sprintf(format, attr.name), attr.loc)
}
