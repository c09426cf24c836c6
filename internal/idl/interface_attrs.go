package idl

import (
	"fmt"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// AddExtendedAttributes applies interface-level attributes. Attributes
// from every declaration of the interface accumulate.
func (i *Interface) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	for _, attr := range attrs {
		if err := i.handleExtendedAttribute(attr); err != nil {
			return err
		}
		i.extAttrs.set(attr)
	}
	return nil
}

func (i *Interface) handleExtendedAttribute(attr *ExtendedAttribute) error {
	switch name := attr.name; name {
	case "TreatNonCallableAsNull", "TreatNonObjectAsNull":
		return diagnostics.NewError(name+" cannot be specified on interfaces", attr.loc, i.loc)
	case "NoInterfaceObject":
		if !attr.NoArguments() {
			return noArgsError(attr, "[%s] must take no arguments")
		}
		if i.Ctor() != nil {
			return diagnostics.NewError("Constructor and NoInterfaceObject are incompatible", i.loc)
		}
		i.noInterfaceObject = true
	case "Constructor", "NamedConstructor", "ChromeConstructor":
		return i.addConstructor(attr)
	case "ArrayClass":
		if !attr.hasValue {
			return diagnostics.NewError("ArrayClass must take an identifier", attr.loc)
		}
		if i.parentRef != nil {
			return diagnostics.NewError("ArrayClass must not be specified on an interface with inherited interfaces",
				attr.loc, i.loc)
		}
	case "Global":
		if !attr.NoArguments() {
			return noArgsError(attr, "[%s] must take no arguments")
		}
		i.onGlobalProtoChain = true
	case "NeedNewResolve", "OverrideBuiltins", "ChromeOnly", "Unforgeable", "LegacyEventInit":
		if !attr.NoArguments() {
			return noArgsError(attr, "[%s] must take no arguments")
		}
	case "Pref", "JSImplementation", "HeaderFile", "NavigatorProperty", "AvailableIn", "Func", "CheckPermissions":
		if !attr.hasValue {
			return noArgsError(attr, "[%s] must have a value")
		}
	default:
		return diagnostics.NewError(fmt.Sprintf("Unknown extended attribute %s on interface", name), attr.loc)
	}
	return nil
}

// addConstructor synthesizes the static operation a constructor
// attribute describes.
func (i *Interface) addConstructor(attr *ExtendedAttribute) error {
	name := attr.name
	if name != "NamedConstructor" && !i.HasInterfaceObject() {
		return diagnostics.NewError(name+" and NoInterfaceObject are incompatible", i.loc)
	}
	if name == "NamedConstructor" && !attr.hasValue {
		return diagnostics.NewError("NamedConstructor must either take an identifier or take a named argument list", attr.loc)
	}

	var args []*Argument
	if attr.hasArgs {
		args = attr.args
	}
	methodName, opts := attr.value, []IdentifierOption(nil)
	if name != "NamedConstructor" {
		methodName, opts = "constructor", []IdentifierOption{AllowForbidden}
	}
	id, err := NewUnresolvedIdentifier(i.loc, methodName, opts...)
	if err != nil {
		return err
	}
	method, err := NewMethod(i.loc, id, NewWrapperType(i.loc, i), args, MethodFlags{Static: true})
	if err != nil {
		return err
	}
	implied := []*ExtendedAttribute{NewExtendedAttribute(i.loc, "NewObject"), NewExtendedAttribute(i.loc, "Throws")}
	if name == "ChromeConstructor" {
		implied = append(implied, NewExtendedAttribute(i.loc, "ChromeOnly"))
	}
	if err := method.AddExtendedAttributes(implied); err != nil {
		return err
	}

	if name != "NamedConstructor" {
		return method.resolve(&i.Scope)
	}

	// Named constructors live in the global scope, so same-named ones on
	// different interfaces merge there and can be told apart afterwards.
	global := i.Scope.ParentScope()
	if err := method.resolve(global); err != nil {
		return err
	}
	obj, _ := global.LookupIdentifier(method.ident)
	merged, ok := obj.(*Method)
	assert(ok, "named constructor %s bound to %T", methodName, obj)
	if merged == method {
		i.namedConstructors = append(i.namedConstructors, method)
		return nil
	}
	for _, own := range i.namedConstructors {
		if own == merged {
			return nil
		}
	}
	return diagnostics.NewError("NamedConstructor conflicts with a NamedConstructor of a different interface",
		method.loc, merged.loc)
}
