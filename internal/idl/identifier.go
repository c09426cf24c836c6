package idl

import (
	"strings"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// IdentifierOption relaxes the naming rules of NewUnresolvedIdentifier.
type IdentifierOption int

const (
	// AllowDoubleUnderscore keeps a leading underscore and permits the
	// reserved "__" prefix used by synthesized special operations.
	AllowDoubleUnderscore IdentifierOption = iota
	// AllowForbidden permits "constructor" and "toString".
	AllowForbidden
)

// Identifier is a name that starts out unresolved and becomes bound to a
// Scope when Resolve succeeds.
type Identifier struct {
	loc   diagnostics.Location
	Name  string
	scope *Scope
}

func NewUnresolvedIdentifier(loc diagnostics.Location, name string, opts ...IdentifierOption) (*Identifier, error) {
	assert(len(name) > 0, "empty identifier")
	allowDoubleUnderscore, allowForbidden := false, false
	for _, opt := range opts {
		switch opt {
		case AllowDoubleUnderscore:
			allowDoubleUnderscore = true
		case AllowForbidden:
			allowForbidden = true
		}
	}

	if name == "__noSuchMethod__" {
		return nil, diagnostics.NewError("__noSuchMethod__ is deprecated", loc)
	}
	if strings.HasPrefix(name, "__") && name != "__content" && !allowDoubleUnderscore {
		return nil, diagnostics.NewError("Identifiers beginning with __ are reserved", loc)
	}
	if name[0] == '_' && !allowDoubleUnderscore {
		name = name[1:]
	}
	if (name == "constructor" || name == "toString") && !allowForbidden {
		return nil, diagnostics.NewError("Cannot use reserved identifier '"+name+"'", loc)
	}
	return &Identifier{loc: loc, Name: name}, nil
}

// mustIdentifier builds identifiers for names the model synthesizes itself.
func mustIdentifier(loc diagnostics.Location, name string, opts ...IdentifierOption) *Identifier {
	id, err := NewUnresolvedIdentifier(loc, name, opts...)
	assert(err == nil, "synthesized identifier %q rejected: %v", name, err)
	return id
}

func (id *Identifier) Location() diagnostics.Location { return id.loc }

// IsResolved reports whether the identifier has been bound to a scope.
func (id *Identifier) IsResolved() bool { return id.scope != nil }

func (id *Identifier) Scope() *Scope { return id.scope }

// Resolve binds obj under this name in scope. A nil obj only probes: it
// succeeds when the name is already bound.
func (id *Identifier) Resolve(scope *Scope, obj Object) error {
	assert(obj == nil || obj.Identifier() == id, "object does not own identifier %s", id.Name)
	if err := scope.EnsureUnique(id, obj); err != nil {
		return err
	}
	id.scope = scope
	return nil
}

// QName is the scope-qualified name, e.g. "::Node::appendChild".
func (id *Identifier) QName() string {
	assert(id.scope != nil, "QName of unresolved identifier %s", id.Name)
	return id.scope.QName() + id.Name
}

func (id *Identifier) String() string {
	if id.scope == nil {
		return id.Name
	}
	return id.QName()
}
