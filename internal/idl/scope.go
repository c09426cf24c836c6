package idl

import (
	"fmt"

	"github.com/funvibe/webidl/internal/diagnostics"
)

type conflictResolver func(id *Identifier, original, replacement Object) (Object, error)

// Scope is a flat name table. Lookups never walk to the parent; the parent
// link only feeds qualified names and the scope owner's own logic.
type Scope struct {
	parent   *Scope
	owner    *Identifier
	dict     map[string]Object
	resolver conflictResolver
}

// NewGlobalScope returns an empty root scope.
func NewGlobalScope() *Scope {
	return &Scope{dict: make(map[string]Object)}
}

func (s *Scope) init(parent *Scope, owner *Identifier) {
	s.parent = parent
	s.owner = owner
	if s.dict == nil {
		s.dict = make(map[string]Object)
	}
}

// ParentScope returns the enclosing scope, nil for the global scope.
func (s *Scope) ParentScope() *Scope { return s.parent }

func (s *Scope) QName() string {
	if s.owner != nil {
		return s.owner.QName() + "::"
	}
	return "::"
}

func (s *Scope) String() string { return s.QName() }

// Lookup returns the object bound to name in this scope only.
func (s *Scope) Lookup(name string) (Object, bool) {
	obj, ok := s.dict[name]
	return obj, ok
}

// LookupIdentifier looks up an identifier that was resolved in s.
func (s *Scope) LookupIdentifier(id *Identifier) (Object, bool) {
	assert(id.scope == s, "identifier %s belongs to another scope", id.Name)
	return s.Lookup(id.Name)
}

// Names returns the number of bound names.
func (s *Scope) Len() int { return len(s.dict) }

// EnsureUnique binds obj to id's name, merging with an existing binding
// where the language allows it.
func (s *Scope) EnsureUnique(id *Identifier, obj Object) error {
	existing, ok := s.dict[id.Name]
	if ok {
		if obj == nil {
			return nil
		}
		assert(existing != obj, "identifier %s resolved twice for the same object", id.Name)
		resolve := s.resolver
		if resolve == nil {
			resolve = s.resolveIdentifierConflict
		}
		replacement, err := resolve(id, existing, obj)
		if err != nil {
			return err
		}
		s.dict[id.Name] = replacement
		return nil
	}
	assert(obj != nil, "probe of unbound identifier %s", id.Name)
	s.dict[id.Name] = obj
	return nil
}

func (s *Scope) resolveIdentifierConflict(id *Identifier, original, replacement Object) (Object, error) {
	origExt, origIsExt := original.(*ExternalInterface)
	newExt, newIsExt := replacement.(*ExternalInterface)
	if origIsExt && newIsExt && origExt.Identifier().Name == newExt.Identifier().Name {
		return original, nil
	}
	if origIsExt || newIsExt {
		return nil, diagnostics.NewError(fmt.Sprintf(
			"Name '%s' used as an interface both with and without a known definition", id.Name),
			original.Location(), replacement.Location())
	}

	_, origIsDict := original.(*Dictionary)
	_, newIsDict := replacement.(*Dictionary)
	if origIsDict || newIsDict {
		return nil, diagnostics.NewError(fmt.Sprintf(
			"Name collision between dictionary declarations for identifier '%s'", id.Name),
			original.Location(), replacement.Location())
	}

	origMethod, origIsMethod := original.(*Method)
	newMethod, newIsMethod := replacement.(*Method)
	if origIsMethod && newIsMethod {
		return origMethod.addOverload(newMethod)
	}

	return nil, diagnostics.NewError(fmt.Sprintf(
		"Multiple unresolvable definitions of identifier '%s' in scope '%s'", id.Name, s.QName()),
		original.Location(), replacement.Location())
}
