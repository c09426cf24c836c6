package webidl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseAcrossCalls(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Parse("interface B : A { attribute long y; };", "b.webidl"); err != nil {
		t.Fatal(err)
	}
	if err := p.Parse("interface A { attribute long x; };", "a.webidl"); err != nil {
		t.Fatal(err)
	}
	defs, err := p.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	b := defs[0].(*Interface)
	if b.Parent() == nil || b.Parent().Identifier().Name != "A" {
		t.Errorf("B parent = %v, want A", b.Parent())
	}
	if diff := cmp.Diff([]string{"a.webidl", "b.webidl"}, Deps(b)); diff != "" {
		t.Errorf("deps mismatch (-want +got):\n%s", diff)
	}
	if err := p.Parse("enum E { \"x\" };", "c.webidl"); err == nil {
		t.Error("Parse after Finish should fail")
	}
}

func TestErrorsAreTyped(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatal(err)
	}
	err = p.Parse("interface A { attribute long x }", "a.webidl")
	var idlErr *Error
	if !errors.As(err, &idlErr) {
		t.Fatalf("error %v is not *Error", err)
	}
	if idlErr.Warning {
		t.Error("syntax error reported as warning")
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.webidl")
	b := filepath.Join(dir, "b.webidl")
	if err := os.WriteFile(a, []byte(`dictionary D { long x = 1; };`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte(`interface I { void f(optional D d); };`), 0o644); err != nil {
		t.Fatal(err)
	}
	defs, err := ParseFiles(context.Background(), a, b)
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if _, err := ParseFiles(context.Background(), filepath.Join(dir, "missing.webidl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ParseFiles(ctx, "whatever.webidl"); !errors.Is(err, context.Canceled) {
		t.Errorf("ParseFiles error = %v, want context.Canceled", err)
	}
}
