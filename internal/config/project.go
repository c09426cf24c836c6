package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Project represents a webidl.yaml file.
type Project struct {
	// Inputs lists IDL files or glob patterns, relative to the project file.
	Inputs []string `yaml:"inputs"`

	// Output selects what the CLI writes after a successful parse.
	Output Output `yaml:"output,omitempty"`

	// Cache is the path of the sqlite dependency cache. Empty disables it.
	Cache string `yaml:"cache,omitempty"`

	// Proto configures the proto and descriptor outputs.
	Proto Proto `yaml:"proto,omitempty"`

	dir string
}

// Output describes the generated artifact.
type Output struct {
	// Format is one of Formats. Defaults to "summary".
	Format string `yaml:"format,omitempty"`

	// Path is the output file. Empty means stdout.
	Path string `yaml:"path,omitempty"`
}

// Proto holds options for the proto schema export.
type Proto struct {
	Package   string `yaml:"package,omitempty"`
	GoPackage string `yaml:"go_package,omitempty"`
	// File is the name recorded in the descriptor. Defaults to <package>.proto.
	File string `yaml:"file,omitempty"`
}

// LoadProject reads and parses a webidl.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", path, err)
	}
	return ParseProject(data, path)
}

// ParseProject parses webidl.yaml content from bytes.
// The path argument is used for error messages and to anchor relative inputs.
func ParseProject(data []byte, path string) (*Project, error) {
	var proj Project
	if err := yaml.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	proj.setDefaults()
	if err := proj.validate(path); err != nil {
		return nil, err
	}
	proj.dir = filepath.Dir(path)
	return &proj, nil
}

// FindProject searches for a project file starting from dir and walking up
// to parent directories. It returns "" and a nil error when none exists.
func FindProject(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range ProjectFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (p *Project) setDefaults() {
	if p.Output.Format == "" {
		p.Output.Format = FormatSummary
	}
	if p.Proto.Package == "" {
		p.Proto.Package = DefaultProtoPackage
	}
	if p.Proto.File == "" {
		p.Proto.File = p.Proto.Package + ".proto"
	}
}

func (p *Project) validate(path string) error {
	if len(p.Inputs) == 0 {
		return fmt.Errorf("%s: no inputs defined", path)
	}
	for i, in := range p.Inputs {
		if strings.TrimSpace(in) == "" {
			return fmt.Errorf("%s: inputs[%d]: empty path", path, i)
		}
		if _, err := filepath.Match(in, ""); err != nil {
			return fmt.Errorf("%s: inputs[%d]: bad pattern %q: %w", path, i, in, err)
		}
	}
	if err := ValidateFormat(p.Output.Format); err != nil {
		return fmt.Errorf("%s: output: %w", path, err)
	}
	if strings.ContainsAny(p.Proto.Package, " /-") {
		return fmt.Errorf("%s: proto: invalid package name %q", path, p.Proto.Package)
	}
	return nil
}

// ValidateFormat reports whether format is one of Formats.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ResolveInputs expands the input patterns relative to the project file and
// returns the matching files in a stable order, without duplicates.
// A pattern without glob characters must name an existing file.
func (p *Project) ResolveInputs() ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, in := range p.Inputs {
		pattern := in
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(p.dir, pattern)
		}
		var matches []string
		if strings.ContainsAny(in, "*?[") {
			m, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("expanding %q: %w", in, err)
			}
			matches = m
		} else {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("input %q: %w", in, err)
			}
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// IsSourceFile reports whether path has a recognized IDL extension.
func IsSourceFile(path string) bool {
	return slices.Contains(SourceFileExtensions, filepath.Ext(path))
}
