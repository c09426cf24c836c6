package idl

import (
	"fmt"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// Argument is an operation or callback argument. Dictionary members are
// Arguments too, always optional.
type Argument struct {
	stringHandling
	loc                   diagnostics.Location
	ident                 *Identifier
	typ                   Type
	optional              bool
	variadic              bool
	dictionaryMember      bool
	defaultValue          *Value
	complete              bool
	enforceRange          bool
	clamp                 bool
	allowTreatNonCallable bool
}

// ArgumentOptions are the qualifiers an argument can carry.
type ArgumentOptions struct {
	Optional         bool
	Variadic         bool
	DictionaryMember bool
	Default          *Value
}

func NewArgument(loc diagnostics.Location, id *Identifier, typ Type, opts ArgumentOptions) *Argument {
	assert(!opts.Variadic || opts.Optional, "variadic argument %s must be optional", id.Name)
	return &Argument{
		loc:              loc,
		ident:            id,
		typ:              typ,
		optional:         opts.Optional,
		variadic:         opts.Variadic,
		dictionaryMember: opts.DictionaryMember,
		defaultValue:     opts.Default,
	}
}

func (a *Argument) Location() diagnostics.Location { return a.loc }
func (a *Argument) Identifier() *Identifier        { return a.ident }
func (a *Argument) Type() Type                     { return a.typ }
func (a *Argument) Optional() bool                 { return a.optional }
func (a *Argument) Variadic() bool                 { return a.variadic }
func (a *Argument) DictionaryMember() bool         { return a.dictionaryMember }
func (a *Argument) DefaultValue() *Value           { return a.defaultValue }
func (a *Argument) IsComplete() bool               { return a.complete }
func (a *Argument) EnforceRange() bool             { return a.enforceRange }
func (a *Argument) Clamp() bool                    { return a.clamp }

// AllowTreatNonCallableAsNull reports a [TreatNonCallableAsNull] argument.
func (a *Argument) AllowTreatNonCallableAsNull() bool { return a.allowTreatNonCallable }

func (a *Argument) resolve(scope *Scope) error { return a.ident.Resolve(scope, a) }

func (a *Argument) dependentObjects() []Dependent {
	if a.defaultValue != nil {
		return []Dependent{a.typ, a.defaultValue}
	}
	return []Dependent{a.typ}
}

func (a *Argument) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	attrs, err := a.takeTreatNullAs(a.loc, a.typ, attrs, a.dictionaryMember)
	if err != nil {
		return err
	}
	for _, attr := range attrs {
		switch attr.name {
		case "Clamp", "EnforceRange":
			if !attr.NoArguments() {
				return noArgsError(attr, "[%s] must take no arguments")
			}
			if attr.name == "Clamp" {
				if a.enforceRange {
					return diagnostics.NewError("[EnforceRange] and [Clamp] are mutually exclusive", a.loc)
				}
				a.clamp = true
			} else {
				if a.clamp {
					return diagnostics.NewError("[EnforceRange] and [Clamp] are mutually exclusive", a.loc)
				}
				a.enforceRange = true
			}
		case "TreatNonCallableAsNull":
			a.allowTreatNonCallable = true
		default:
			return diagnostics.NewError("Unhandled extended attribute on an argument", attr.loc)
		}
	}
	return nil
}

// Complete resolves the argument type, fills in implied defaults and
// coerces the default value. It runs once.
func (a *Argument) Complete(scope *Scope) error {
	if a.complete {
		return nil
	}
	a.complete = true
	if !a.typ.IsComplete() {
		t, err := a.typ.Complete(scope)
		if err != nil {
			return err
		}
		a.typ = t
	}

	implied := a.optional && a.defaultValue == nil && !a.variadic
	if a.typ.IsDictionary() || unionHasDictionary(a.typ.Unroll()) && a.typ.IsUnion() {
		if implied {
			a.defaultValue = NewNullValue(a.loc)
		}
	} else if a.typ.IsAny() {
		if a.defaultValue != nil && a.defaultValue.Kind != NullValue {
			return diagnostics.NewError(fmt.Sprintf(
				"Argument %s of type any can only default to null", a.ident.Name), a.loc)
		}
		if implied {
			a.defaultValue = NewUndefinedValue(a.loc)
		}
	}

	if a.defaultValue != nil {
		coerced, err := a.defaultValue.CoerceToType(a.typ, a.loc)
		if err != nil {
			return err
		}
		a.defaultValue = coerced
	}
	return nil
}
