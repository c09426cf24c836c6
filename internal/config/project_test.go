package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseProject_Defaults(t *testing.T) {
	yaml := `
inputs:
  - dom.webidl
`
	proj, err := ParseProject([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proj.Output.Format != FormatSummary {
		t.Errorf("format = %q, want %q", proj.Output.Format, FormatSummary)
	}
	if proj.Proto.Package != DefaultProtoPackage {
		t.Errorf("proto package = %q, want %q", proj.Proto.Package, DefaultProtoPackage)
	}
	if proj.Proto.File != "webidl.proto" {
		t.Errorf("proto file = %q, want webidl.proto", proj.Proto.File)
	}
}

func TestParseProject_Full(t *testing.T) {
	yaml := `
inputs:
  - "idl/*.webidl"
  - extra.idl
output:
  format: proto
  path: out/dom.proto
cache: .webidl/cache.db
proto:
  package: dom
  go_package: example.com/dom
`
	proj, err := ParseProject([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Project{
		Inputs: []string{"idl/*.webidl", "extra.idl"},
		Output: Output{Format: FormatProto, Path: "out/dom.proto"},
		Cache:  ".webidl/cache.db",
		Proto:  Proto{Package: "dom", GoPackage: "example.com/dom", File: "dom.proto"},
	}
	if diff := cmp.Diff(want, proj, cmp.AllowUnexported(Project{}), cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".dir"
	}, cmp.Ignore())); diff != "" {
		t.Errorf("project mismatch (-want +got):\n%s", diff)
	}
}

func TestParseProject_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no inputs", "output:\n  format: yaml\n", "no inputs defined"},
		{"empty input", "inputs: ['  ']\n", "inputs[0]: empty path"},
		{"bad pattern", "inputs: ['[']\n", "bad pattern"},
		{"bad format", "inputs: [a.webidl]\noutput:\n  format: json\n", `unknown format "json"`},
		{"bad package", "inputs: [a.webidl]\nproto:\n  package: my-pkg\n", "invalid package name"},
		{"bad yaml", "inputs: [\n", "parsing test.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProject([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestResolveInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.webidl", "b.webidl", "c.idl"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, "webidl.yaml")
	if err := os.WriteFile(path, []byte("inputs: ['*.webidl', a.webidl, c.idl]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	proj, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	got, err := proj.ResolveInputs()
	if err != nil {
		t.Fatalf("ResolveInputs: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.webidl"),
		filepath.Join(dir, "b.webidl"),
		filepath.Join(dir, "c.idl"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveInputs_Missing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webidl.yaml")
	if err := os.WriteFile(path, []byte("inputs: [missing.webidl]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	proj, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if _, err := proj.ResolveInputs(); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestFindProject(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "webidl.yml")
	if err := os.WriteFile(want, []byte("inputs: [x.webidl]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindProject(nested)
	if err != nil {
		t.Fatalf("FindProject: %v", err)
	}
	wantAbs, _ := filepath.EvalSymlinks(want)
	gotAbs, _ := filepath.EvalSymlinks(got)
	if gotAbs != wantAbs {
		t.Errorf("FindProject = %q, want %q", got, want)
	}
}

func TestIsSourceFile(t *testing.T) {
	for path, want := range map[string]bool{
		"dom.webidl": true,
		"x/y.idl":    true,
		"dom.yaml":   false,
		"webidl":     false,
	} {
		if got := IsSourceFile(path); got != want {
			t.Errorf("IsSourceFile(%q) = %v, want %v", path, got, want)
		}
	}
}
