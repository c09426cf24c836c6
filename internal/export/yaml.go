package export

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/webidl/internal/idl"
)

// WriteYAML dumps the model of defs as YAML.
func WriteYAML(w io.Writer, defs []idl.Definition, withDeps bool) error {
	doc, err := Build(defs, withDeps)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
