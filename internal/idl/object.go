package idl

import (
	"fmt"
	"sort"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// Dependent is anything that can report the source files it was built from.
type Dependent interface {
	Location() diagnostics.Location
	dependentObjects() []Dependent
}

// Object is a named entity that can be bound in a Scope.
type Object interface {
	Location() diagnostics.Location
	Identifier() *Identifier
}

// Definition is a top-level production: an interface, external interface,
// dictionary, enum, callback, typedef or implements statement.
type Definition interface {
	Dependent
	Finish(scope *Scope) error
	Validate() error
	AddExtendedAttributes(attrs []*ExtendedAttribute) error
	isDefinition()
}

// Deps returns the sorted non-builtin files d transitively depends on.
func Deps(d Dependent) []string {
	files := make(map[string]bool)
	collectDeps(d, make(map[Dependent]bool), files)
	out := make([]string, 0, len(files))
	for f := range files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func collectDeps(d Dependent, visited map[Dependent]bool, files map[string]bool) {
	if d == nil || visited[d] {
		return
	}
	visited[d] = true
	if loc := d.Location(); !loc.IsBuiltin() {
		files[loc.File()] = true
	}
	for _, dep := range d.dependentObjects() {
		collectDeps(dep, visited, files)
	}
}

// Placeholder stands in for a named definition that may not have been
// parsed yet, such as an inheritance parent.
type Placeholder struct {
	loc   diagnostics.Location
	ident *Identifier
}

func NewPlaceholder(loc diagnostics.Location, id *Identifier) *Placeholder {
	return &Placeholder{loc: loc, ident: id}
}

func (p *Placeholder) Location() diagnostics.Location { return p.loc }
func (p *Placeholder) Identifier() *Identifier        { return p.ident }

// Resolve finds the definition the placeholder names in scope.
func (p *Placeholder) Resolve(scope *Scope) (Object, error) {
	obj, ok := scope.Lookup(p.ident.Name)
	if !ok {
		return nil, diagnostics.NewError(fmt.Sprintf("Unresolved type '%s'.", p.ident), p.loc)
	}
	p.ident.scope = scope
	return obj, nil
}
