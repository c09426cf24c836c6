package parser_test

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/funvibe/webidl/internal/diagnostics"
	"github.com/funvibe/webidl/internal/export"
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/parser"
)

var update = flag.Bool("update", false, "update snapshot files")

// Each testdata archive holds an input.webidl file and either a summary
// of the finished definitions or the message of the expected error.
func TestParserSnapshots(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no snapshot files in testdata")
	}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txtar")
		t.Run(name, func(t *testing.T) {
			arc, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			var input []byte
			want := map[string]string{}
			for _, f := range arc.Files {
				if f.Name == "input.webidl" {
					input = f.Data
					continue
				}
				want[f.Name] = string(f.Data)
			}
			if input == nil {
				t.Fatalf("%s has no input.webidl section", file)
			}

			got := map[string]string{}
			defs, err := parseAndFinish(string(input), name+".webidl")
			if err != nil {
				var derr *diagnostics.Error
				if !errors.As(err, &derr) {
					t.Fatalf("unexpected error type %T: %v", err, err)
				}
				got["error"] = derr.Message + "\n"
			} else {
				var buf bytes.Buffer
				if err := export.WriteSummary(&buf, defs); err != nil {
					t.Fatal(err)
				}
				got["summary"] = buf.String()
			}

			if *update {
				arc.Files = []txtar.File{{Name: "input.webidl", Data: input}}
				for _, section := range []string{"summary", "error"} {
					if data, ok := got[section]; ok {
						arc.Files = append(arc.Files, txtar.File{Name: section, Data: []byte(data)})
					}
				}
				if err := os.WriteFile(file, txtar.Format(arc), 0644); err != nil {
					t.Fatalf("failed to update snapshot: %v", err)
				}
				return
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func parseAndFinish(text, filename string) ([]idl.Definition, error) {
	p, err := parser.New()
	if err != nil {
		return nil, err
	}
	if err := p.Parse(text, filename); err != nil {
		return nil, err
	}
	return p.Finish()
}

func TestFinishIsIdempotent(t *testing.T) {
	p, err := parser.New()
	if err != nil {
		t.Fatal(err)
	}
	src := `
interface A { attribute long x; };
partial interface A { void f(); };
dictionary D { long a; };
`
	if err := p.Parse(src, "a.webidl"); err != nil {
		t.Fatal(err)
	}
	first, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("Finish returned %d then %d definitions, want 2 both times", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("definition %d differs between Finish calls", i)
		}
	}
	iface := first[0].(*idl.Interface)
	if got := len(iface.Members()); got != 2 {
		t.Errorf("interface A has %d members after two Finish calls, want 2", got)
	}
}

func TestParseAcrossFiles(t *testing.T) {
	p, err := parser.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Parse("partial interface Node { attribute long late; };", "late.webidl"); err != nil {
		t.Fatal(err)
	}
	if err := p.Parse("interface Node { attribute long early; };", "node.webidl"); err != nil {
		t.Fatal(err)
	}
	defs, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	var names []string
	for _, m := range defs[0].(*idl.Interface).Members() {
		names = append(names, m.Identifier().Name)
	}
	if diff := cmp.Diff([]string{"early", "late"}, names); diff != "" {
		t.Errorf("member order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"late.webidl", "node.webidl"}, idl.Deps(defs[0])); diff != "" {
		t.Errorf("deps (-want +got):\n%s", diff)
	}
}

func TestBuiltinTypedefs(t *testing.T) {
	p, err := parser.New()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"DOMTimeStamp", "Uint8Array", "Float64Array"} {
		if _, ok := p.GlobalScope().Lookup(name); !ok {
			t.Errorf("builtin %s is not bound in the global scope", name)
		}
	}
	defs, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 0 {
		t.Errorf("builtins leaked into the result: %d definitions", len(defs))
	}
}

func TestSyntaxErrorLocation(t *testing.T) {
	p, err := parser.New()
	if err != nil {
		t.Fatal(err)
	}
	err = p.Parse("interface A {\n  attribute long;\n};\n", "bad.webidl")
	var derr *diagnostics.Error
	if !errors.As(err, &derr) {
		t.Fatalf("got %v, want a diagnostics error", err)
	}
	want := []string{"bad.webidl line 2:16\n  attribute long;\n                ^"}
	if diff := cmp.Diff(want, derr.Locations); diff != "" {
		t.Errorf("locations (-want +got):\n%s", diff)
	}
}
