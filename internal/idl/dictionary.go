package idl

import (
	"fmt"
	"sort"

	"github.com/funvibe/webidl/internal/diagnostics"
)

// Dictionary is a dictionary definition. Its members are optional
// Arguments and are kept sorted by name once finished.
type Dictionary struct {
	Scope
	loc       diagnostics.Location
	ident     *Identifier
	parentRef *Placeholder
	parent    *Dictionary
	members   []*Argument
	finished  bool
}

func NewDictionary(loc diagnostics.Location, parentScope *Scope, id *Identifier, parent *Placeholder, members []*Argument) (*Dictionary, error) {
	d := &Dictionary{loc: loc, ident: id, parentRef: parent, members: append([]*Argument(nil), members...)}
	if err := id.Resolve(parentScope, d); err != nil {
		return nil, err
	}
	d.Scope.init(parentScope, id)
	return d, nil
}

func (d *Dictionary) isDefinition()                  {}
func (d *Dictionary) Location() diagnostics.Location { return d.loc }
func (d *Dictionary) Identifier() *Identifier        { return d.ident }
func (d *Dictionary) Parent() *Dictionary            { return d.parent }
func (d *Dictionary) Members() []*Argument           { return d.members }

func (d *Dictionary) dependentObjects() []Dependent {
	var deps []Dependent
	for _, m := range d.members {
		deps = append(deps, m)
	}
	if d.parent != nil {
		deps = append(deps, d.parent)
	}
	return deps
}

func (d *Dictionary) AddExtendedAttributes(attrs []*ExtendedAttribute) error {
	return rejectExtendedAttributes(attrs, "dictionary")
}

func (d *Dictionary) Finish(scope *Scope) error {
	if d.finished {
		return nil
	}
	d.finished = true

	if d.parentRef != nil {
		obj, err := d.parentRef.Resolve(scope)
		if err != nil {
			return err
		}
		parent, ok := obj.(*Dictionary)
		if !ok {
			return diagnostics.NewError(fmt.Sprintf("Dictionary %s has parent that is not a dictionary", d.ident.Name),
				d.parentRef.loc, obj.Location())
		}
		d.parent = parent
		if err := parent.Finish(scope); err != nil {
			return err
		}
	}

	for _, m := range d.members {
		if err := m.resolve(&d.Scope); err != nil {
			return err
		}
		if err := m.Complete(scope); err != nil {
			return err
		}
	}
	sort.SliceStable(d.members, func(a, b int) bool {
		return d.members[a].ident.Name < d.members[b].ident.Name
	})

	var inherited []*Argument
	seen := make(map[*Dictionary]bool)
	for ancestor := d.parent; ancestor != nil; ancestor = ancestor.parent {
		if ancestor == d || seen[ancestor] {
			return diagnostics.NewError(fmt.Sprintf("Dictionary %s has itself as an ancestor", d.ident.Name), d.ident.loc)
		}
		seen[ancestor] = true
		inherited = append(inherited, ancestor.members...)
	}
	for _, im := range inherited {
		for _, m := range d.members {
			if m.ident.Name == im.ident.Name {
				return diagnostics.NewError(fmt.Sprintf("Dictionary %s has two members with name %s",
					d.ident.Name, m.ident.Name), m.loc, im.loc)
			}
		}
	}
	return nil
}

func (d *Dictionary) Validate() error {
	for _, m := range d.members {
		if m.typ.IsDictionary() && m.typ.Nullable() {
			return diagnostics.NewError(fmt.Sprintf("Dictionary %s has member with nullable dictionary type", d.ident.Name), m.loc)
		}
		search := containmentSearch{target: d, visited: make(map[*Dictionary]bool)}
		if path, found := search.inType(m.typ); found {
			locs := append([]diagnostics.Location{m.loc}, path...)
			return diagnostics.NewError(fmt.Sprintf("Dictionary %s has member with itself as type.", d.ident.Name), locs...)
		}
	}
	return nil
}

// containmentSearch looks for target anywhere inside a type, through
// nullable, sequence, array, MozMap and union layers and the members and
// ancestors of other dictionaries.
type containmentSearch struct {
	target  *Dictionary
	visited map[*Dictionary]bool
}

func (s *containmentSearch) inType(t Type) ([]diagnostics.Location, bool) {
	switch tt := t.(type) {
	case *NullableType:
		return s.inType(tt.Inner())
	case *SequenceType:
		return s.inType(tt.inner)
	case *ArrayType:
		return s.inType(tt.inner)
	case *MozMapType:
		return s.inType(tt.inner)
	case *UnionType:
		for _, m := range tt.flatMemberTypes {
			if path, found := s.inType(m); found {
				return path, true
			}
		}
	case *WrapperType:
		dict, ok := tt.inner.(*Dictionary)
		if !ok {
			return nil, false
		}
		if dict == s.target {
			return []diagnostics.Location{tt.loc}, true
		}
		if path, found := s.inDictionary(dict); found {
			return append([]diagnostics.Location{tt.loc}, path...), true
		}
	}
	return nil, false
}

func (s *containmentSearch) inDictionary(d *Dictionary) ([]diagnostics.Location, bool) {
	if s.visited[d] {
		return nil, false
	}
	s.visited[d] = true
	for _, m := range d.members {
		if path, found := s.inType(m.typ); found {
			return append([]diagnostics.Location{m.loc}, path...), true
		}
	}
	if d.parent != nil {
		if d.parent == s.target {
			return []diagnostics.Location{d.loc}, true
		}
		if path, found := s.inDictionary(d.parent); found {
			return append([]diagnostics.Location{d.loc}, path...), true
		}
	}
	return nil, false
}
