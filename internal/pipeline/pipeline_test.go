package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/webidl/internal/parser"
	"github.com/funvibe/webidl/internal/pipeline"
)

func writeFiles(t *testing.T, files map[string]string) map[string]string {
	t.Helper()
	dir := t.TempDir()
	paths := make(map[string]string, len(files))
	for name, text := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
		paths[name] = path
	}
	return paths
}

func TestPipelineEndToEnd(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"node.webidl":  "interface Node { void visit(optional Opts o); };",
		"opts.webidl":  "dictionary Opts { long depth = 1; };",
		"extra.webidl": "partial interface Node { attribute long extra; };",
	})
	ctx := pipeline.NewContext(context.Background(), "run-1",
		paths["node.webidl"], paths["opts.webidl"], paths["extra.webidl"])
	ctx = pipeline.New(
		pipeline.LoadProcessor{},
		&parser.ParserProcessor{},
		pipeline.DepsProcessor{},
	).Run(ctx)
	if ctx.Err != nil {
		t.Fatal(ctx.Err)
	}
	if got := len(ctx.Sources); got != 3 {
		t.Errorf("loaded %d sources, want 3", got)
	}
	if got := len(ctx.Definitions); got != 2 {
		t.Errorf("got %d definitions, want 2", got)
	}
	want := map[string][]string{
		"Node": {paths["extra.webidl"], paths["node.webidl"], paths["opts.webidl"]},
		"Opts": {paths["opts.webidl"]},
	}
	for _, files := range want {
		sort.Strings(files)
	}
	if diff := cmp.Diff(want, ctx.Deps); diff != "" {
		t.Errorf("deps (-want +got):\n%s", diff)
	}
}

func TestPipelineStopsOnFirstError(t *testing.T) {
	reached := false
	ctx := pipeline.NewContext(context.Background(), "run-2")
	ctx.Sources = []pipeline.Source{{Path: "bad.webidl", Text: "interface {"}}
	ctx = pipeline.New(
		pipeline.LoadProcessor{},
		&parser.ParserProcessor{},
		pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
			reached = true
			return ctx
		}),
	).Run(ctx)
	if ctx.Err == nil {
		t.Fatal("bad input parsed without error")
	}
	if reached {
		t.Error("stage after the failing parser ran")
	}
}

func TestPipelineMissingFile(t *testing.T) {
	ctx := pipeline.NewContext(context.Background(), "run-3", filepath.Join(t.TempDir(), "missing.webidl"))
	ctx = pipeline.New(pipeline.LoadProcessor{}).Run(ctx)
	if ctx.Err == nil || !strings.Contains(ctx.Err.Error(), "missing.webidl") {
		t.Errorf("got %v, want a read error naming the file", ctx.Err)
	}
	if !errors.Is(ctx.Err, os.ErrNotExist) {
		t.Errorf("error %v does not wrap os.ErrNotExist", ctx.Err)
	}
}

func TestPipelineCancelled(t *testing.T) {
	cctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	ctx := pipeline.New(pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
		ran = true
		return ctx
	})).Run(pipeline.NewContext(cctx, "run-4"))
	if !errors.Is(ctx.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", ctx.Err)
	}
	if ran {
		t.Error("stage ran after cancellation")
	}
}

func TestDefinitionName(t *testing.T) {
	p, err := parser.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Parse(`enum E { "a" }; callback C = void ();`, "x.webidl"); err != nil {
		t.Fatal(err)
	}
	defs, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, d := range defs {
		names = append(names, pipeline.DefinitionName(d))
	}
	if diff := cmp.Diff([]string{"E", "C"}, names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}
