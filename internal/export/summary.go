package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/funvibe/webidl/internal/idl"
)

// WriteSummary prints one block per definition in a compact IDL-like form.
func WriteSummary(w io.Writer, defs []idl.Definition) error {
	doc, err := Build(defs, false)
	if err != nil {
		return err
	}
	for _, d := range doc.Definitions {
		if _, err := io.WriteString(w, summarize(d)); err != nil {
			return err
		}
	}
	return nil
}

func summarize(d Definition) string {
	var sb strings.Builder
	head := d.Kind + " " + d.Name
	if d.Callback && d.Kind == "interface" {
		head = "callback " + head
	}
	if d.Parent != "" {
		head += " : " + d.Parent
	}
	sb.WriteString(extAttrPrefix(d.ExtendedAttributes))
	sb.WriteString(head)
	switch d.Kind {
	case "enum":
		quoted := make([]string, len(d.Values))
		for i, v := range d.Values {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&sb, " { %s }\n", strings.Join(quoted, ", "))
		return sb.String()
	case "callback":
		fmt.Fprintf(&sb, " = %s\n", d.Signature)
		return sb.String()
	case "external":
		sb.WriteString("\n")
		return sb.String()
	}
	sb.WriteString("\n")
	for _, m := range d.Members {
		sb.WriteString("  ")
		sb.WriteString(extAttrPrefix(m.ExtendedAttributes))
		sb.WriteString(memberLine(m))
		sb.WriteString("\n")
	}
	return sb.String()
}

func memberLine(m Member) string {
	var quals []string
	if m.Static {
		quals = append(quals, "static")
	}
	quals = append(quals, m.Special...)
	if m.Readonly {
		quals = append(quals, "readonly")
	}
	prefix := strings.Join(append(quals, ""), " ")
	switch m.Kind {
	case "const":
		return fmt.Sprintf("const %s %s = %s", m.Type, m.Name, m.Value)
	case "attribute":
		return fmt.Sprintf("%sattribute %s %s", prefix, m.Type, m.Name)
	case "field":
		if m.Value != "" {
			return fmt.Sprintf("%s %s = %s", m.Type, m.Name, m.Value)
		}
		return fmt.Sprintf("%s %s", m.Type, m.Name)
	}
	lines := make([]string, len(m.Overloads))
	for i, o := range m.Overloads {
		lines[i] = prefix + m.Name + ": " + o
	}
	return strings.Join(lines, "\n  ")
}

func extAttrPrefix(attrs map[string][]string) string {
	if len(attrs) == 0 {
		return ""
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		switch vals := attrs[name]; len(vals) {
		case 0:
			parts[i] = name
		case 1:
			parts[i] = name + "=" + vals[0]
		default:
			parts[i] = name + "=(" + strings.Join(vals, ",") + ")"
		}
	}
	return "[" + strings.Join(parts, ", ") + "] "
}
