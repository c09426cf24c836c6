package depcache

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/webidl/internal/pipeline"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(context.Background(), filepath.Join(t.TempDir(), "sub", "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordAndRead(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	if _, ok, err := c.LatestRun(ctx); err != nil || ok {
		t.Fatalf("LatestRun on empty cache = %v, %v", ok, err)
	}

	deps := map[string][]string{
		"Node":    {"dom.webidl"},
		"Element": {"dom.webidl", "element.webidl"},
	}
	runID := NewRunID()
	if err := c.Record(ctx, runID, 2, deps); err != nil {
		t.Fatalf("Record: %v", err)
	}

	run, ok, err := c.LatestRun(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestRun = %v, %v", ok, err)
	}
	if run.ID != runID || run.Inputs != 2 {
		t.Errorf("LatestRun = %+v, want id %s with 2 inputs", run, runID)
	}

	got, err := c.Deps(ctx, runID)
	if err != nil {
		t.Fatalf("Deps: %v", err)
	}
	if diff := cmp.Diff(deps, got); diff != "" {
		t.Errorf("deps mismatch (-want +got):\n%s", diff)
	}
}

func TestAffectedUsesLatestRun(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	if err := c.Record(ctx, NewRunID(), 1, map[string][]string{"Old": {"a.webidl"}}); err != nil {
		t.Fatal(err)
	}
	if err := c.Record(ctx, NewRunID(), 2, map[string][]string{
		"A": {"a.webidl"},
		"B": {"a.webidl", "b.webidl"},
		"C": {"c.webidl"},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := c.Affected(ctx, []string{"a.webidl"})
	if err != nil {
		t.Fatalf("Affected: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B"}, got); diff != "" {
		t.Errorf("Affected mismatch (-want +got):\n%s", diff)
	}

	n, err := c.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune removed %d runs, want 1", n)
	}
}

func TestRecordRejectsBadRunID(t *testing.T) {
	c := openTestCache(t)
	err := c.Record(context.Background(), "not-a-uuid", 0, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid run id") {
		t.Fatalf("Record error = %v, want invalid run id", err)
	}
}

func TestRecordProcessor(t *testing.T) {
	c := openTestCache(t)
	pctx := pipeline.NewContext(context.Background(), NewRunID())
	pctx.Deps = map[string][]string{"X": {"x.webidl"}}

	out := (&RecordProcessor{Cache: c}).Process(pctx)
	if out.Err != nil {
		t.Fatalf("Process: %v", out.Err)
	}
	got, err := c.Deps(context.Background(), pctx.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string][]string{"X": {"x.webidl"}}, got); diff != "" {
		t.Errorf("deps mismatch (-want +got):\n%s", diff)
	}
}
