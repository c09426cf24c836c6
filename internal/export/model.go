package export

import (
	"fmt"

	"github.com/funvibe/webidl/internal/idl"
)

// Document is the serializable form of a finished definition list.
type Document struct {
	Definitions []Definition `yaml:"definitions"`
}

// Definition is one top-level entry of a Document.
type Definition struct {
	Kind               string              `yaml:"kind"`
	Name               string              `yaml:"name"`
	Location           string              `yaml:"location"`
	Parent             string              `yaml:"parent,omitempty"`
	Callback           bool                `yaml:"callback,omitempty"`
	Implements         []string            `yaml:"implements,omitempty"`
	ExtendedAttributes map[string][]string `yaml:"extended_attributes,omitempty"`
	Members            []Member            `yaml:"members,omitempty"`
	Values             []string            `yaml:"values,omitempty"`
	Signature          string              `yaml:"signature,omitempty"`
	Deps               []string            `yaml:"deps,omitempty"`
}

// Member is an interface member or dictionary member.
type Member struct {
	Kind               string              `yaml:"kind"`
	Name               string              `yaml:"name"`
	Type               string              `yaml:"type,omitempty"`
	Value              string              `yaml:"value,omitempty"`
	Static             bool                `yaml:"static,omitempty"`
	Readonly           bool                `yaml:"readonly,omitempty"`
	Special            []string            `yaml:"special,omitempty"`
	Overloads          []string            `yaml:"overloads,omitempty"`
	SlotIndex          *int                `yaml:"slot,omitempty"`
	ExtendedAttributes map[string][]string `yaml:"extended_attributes,omitempty"`
}

// Build converts definitions into a Document. withDeps adds each
// definition's dependency files.
func Build(defs []idl.Definition, withDeps bool) (*Document, error) {
	doc := &Document{}
	for _, def := range defs {
		d, err := buildDefinition(def)
		if err != nil {
			return nil, err
		}
		if withDeps {
			d.Deps = idl.Deps(def)
		}
		doc.Definitions = append(doc.Definitions, d)
	}
	return doc, nil
}

func buildDefinition(def idl.Definition) (Definition, error) {
	switch def := def.(type) {
	case *idl.Interface:
		d := Definition{
			Kind:               "interface",
			Name:               def.Identifier().Name,
			Location:           def.Location().Short(),
			Callback:           def.IsCallback(),
			ExtendedAttributes: nonEmpty(def.ExtendedAttributes()),
		}
		if p := def.Parent(); p != nil {
			d.Parent = p.Identifier().Name
		}
		for _, impl := range def.ImplementedInterfaces() {
			d.Implements = append(d.Implements, impl.Identifier().Name)
		}
		for _, m := range def.Members() {
			d.Members = append(d.Members, buildMember(m))
		}
		return d, nil
	case *idl.ExternalInterface:
		return Definition{Kind: "external", Name: def.Identifier().Name, Location: def.Location().Short()}, nil
	case *idl.Dictionary:
		d := Definition{Kind: "dictionary", Name: def.Identifier().Name, Location: def.Location().Short()}
		if p := def.Parent(); p != nil {
			d.Parent = p.Identifier().Name
		}
		for _, m := range def.Members() {
			d.Members = append(d.Members, Member{
				Kind:  "field",
				Name:  m.Identifier().Name,
				Type:  TypeString(m.Type()),
				Value: ValueString(m.DefaultValue()),
			})
		}
		return d, nil
	case *idl.Enum:
		return Definition{Kind: "enum", Name: def.Identifier().Name, Location: def.Location().Short(), Values: def.Values()}, nil
	case *idl.Callback:
		return Definition{
			Kind:      "callback",
			Name:      def.Identifier().Name,
			Location:  def.Location().Short(),
			Signature: signatureString(def.ReturnType(), def.Arguments()),
		}, nil
	}
	return Definition{}, fmt.Errorf("export: unexpected definition %T", def)
}

func buildMember(m idl.Member) Member {
	out := Member{Name: m.Identifier().Name, Static: m.IsStatic()}
	switch m := m.(type) {
	case *idl.Const:
		out.Kind = "const"
		out.Type = TypeString(m.Type())
		out.Value = ValueString(m.Value())
		out.ExtendedAttributes = nonEmpty(m.ExtendedAttributes())
	case *idl.Attribute:
		out.Kind = "attribute"
		out.Type = TypeString(m.Type())
		out.Readonly = m.Readonly()
		if idx := m.SlotIndex(); idx >= 0 {
			out.SlotIndex = &idx
		}
		out.ExtendedAttributes = nonEmpty(m.ExtendedAttributes())
	case *idl.Method:
		out.Kind = "operation"
		out.Special = specials(m)
		for _, o := range m.Overloads() {
			out.Overloads = append(out.Overloads, signatureString(o.ReturnType, o.Arguments))
		}
		out.ExtendedAttributes = nonEmpty(m.ExtendedAttributes())
	}
	return out
}

func specials(m *idl.Method) []string {
	var out []string
	f := m.Flags()
	for _, s := range []struct {
		on   bool
		name string
	}{
		{f.Getter, "getter"},
		{f.Setter, "setter"},
		{f.Creator, "creator"},
		{f.Deleter, "deleter"},
		{f.LegacyCaller, "legacycaller"},
		{f.Stringifier, "stringifier"},
		{f.Jsonifier, "jsonifier"},
	} {
		if s.on {
			out = append(out, s.name)
		}
	}
	return out
}

func nonEmpty(m map[string][]string) map[string][]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
