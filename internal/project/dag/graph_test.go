package dag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jmake/internal/diag"
	"jmake/internal/project"
	"jmake/internal/source"
)

func TestBuildGraphVisitsReachableModules(t *testing.T) {
	idx, insp := newFixture(t, map[string][]string{
		"app.Main":    {"svc.Service"},
		"svc.Service": {"model.User", "java.util.List"},
		"model.User":  nil,
		"unused.Dead": {"app.Main"},
	})

	g, err := BuildGraph(context.Background(), "app.Main", idx, insp, GraphOptions{Jobs: 2})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	if diff := cmp.Diff([]string{"app.Main", "svc.Service", "model.User"}, namesOf(idx, g.Order)); diff != "" {
		t.Fatalf("visit order (-want +got):\n%s", diff)
	}
	if g.Visited[mustID(t, idx, "unused.Dead")] {
		t.Fatalf("unreachable module visited")
	}
	if diff := cmp.Diff([]string{"java.util.List"}, g.External[mustID(t, idx, "svc.Service")]); diff != "" {
		t.Fatalf("external (-want +got):\n%s", diff)
	}
	if got := insp.calls.Load(); got != 3 {
		t.Fatalf("inspector calls = %d, want 3", got)
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("edges = %d, want 2", g.EdgeCount())
	}
}

func TestBuildGraphNoSelfEdges(t *testing.T) {
	idx, insp := newFixture(t, map[string][]string{
		"p.A": {"p.A", "p.*", "q.*"},
		"p.B": {"p.B"},
		"q.C": {"q.C", "p.A"},
	})
	g, err := BuildGraph(context.Background(), "p.A", idx, insp, GraphOptions{})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	for _, id := range g.Order {
		for _, d := range g.Edges[id] {
			if d == id {
				t.Fatalf("self edge on %s", idx.NameOf(id))
			}
			if !g.Visited[d] {
				t.Fatalf("edge %s -> %s leaves the visited set", idx.NameOf(id), idx.NameOf(d))
			}
		}
	}
}

func TestBuildGraphEntryNotIndexed(t *testing.T) {
	idx, insp := newFixture(t, map[string][]string{"a.A": nil})
	_, err := BuildGraph(context.Background(), "b.B", idx, insp, GraphOptions{})
	if !errors.Is(err, ErrEntryNotIndexed) {
		t.Fatalf("err = %v, want ErrEntryNotIndexed", err)
	}
}

func TestBuildGraphInspectFailureContinues(t *testing.T) {
	idx, insp := newFixture(t, map[string][]string{
		"app.Main":   {"bad.Broken", "io.Gone", "ok.Fine"},
		"bad.Broken": {"ok.Fine"},
		"io.Gone":    nil,
		"ok.Fine":    nil,
	})
	brokenPath := idx.PathOf(mustID(t, idx, "bad.Broken"))
	gonePath := idx.PathOf(mustID(t, idx, "io.Gone"))
	span := source.Span{File: 3, Start: 8, End: 12}
	insp.errs[brokenPath] = &project.HeaderError{Path: brokenPath, Span: span, Msg: "expected ';' after import"}
	insp.errs[gonePath] = errors.New("permission denied")

	bag := diag.NewBag(10)
	g, err := BuildGraph(context.Background(), "app.Main", idx, insp, GraphOptions{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	broken := mustID(t, idx, "bad.Broken")
	if !g.Visited[broken] || len(g.Edges[broken]) != 0 {
		t.Fatalf("broken module must be visited with no edges: visited=%v edges=%v", g.Visited[broken], g.Edges[broken])
	}
	if !g.Visited[mustID(t, idx, "ok.Fine")] {
		t.Fatalf("traversal stopped at the broken module")
	}

	bag.Sort()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("diagnostics = %v", items)
	}
	byPath := map[string]diag.Diagnostic{items[0].Path: items[0], items[1].Path: items[1]}
	if d := byPath[brokenPath]; d.Code != diag.SynMalformedHeader || !d.HasSpan || d.Primary != span || d.Severity != diag.SevWarning {
		t.Fatalf("broken diagnostic = %+v", d)
	}
	if d := byPath[gonePath]; d.Code != diag.IOInspectFailed || d.Severity != diag.SevWarning {
		t.Fatalf("io diagnostic = %+v", d)
	}
}

func TestBuildGraphPackageMismatch(t *testing.T) {
	idx, insp := newFixture(t, map[string][]string{"app.Main": nil})
	path := idx.PathOf(mustID(t, idx, "app.Main"))
	f := insp.facts[path]
	f.Package = "other"
	f.PackageAt = source.Span{Start: 0, End: 15}
	insp.facts[path] = f

	bag := diag.NewBag(10)
	if _, err := BuildGraph(context.Background(), "app.Main", idx, insp, GraphOptions{Reporter: diag.BagReporter{Bag: bag}}); err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.ProjPackageMismatch {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

func TestBuildGraphCancelled(t *testing.T) {
	idx, insp := newFixture(t, map[string][]string{"a.A": {"b.B"}, "b.B": nil})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildGraph(ctx, "a.A", idx, insp, GraphOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBuildGraphIsDeterministicAcrossJobCounts(t *testing.T) {
	imports := make(map[string][]string)
	for i := range 40 {
		name := fmt.Sprintf("m%02d.M", i)
		var deps []string
		for _, j := range []int{(i * 7) % 40, (i*13 + 5) % 40, (i + 1) % 40} {
			deps = append(deps, fmt.Sprintf("m%02d.M", j))
		}
		imports[name] = deps
	}
	idx, insp := newFixture(t, imports)

	var want *Graph
	for _, jobs := range []int{1, 3, 16} {
		g, err := BuildGraph(context.Background(), "m00.M", idx, insp, GraphOptions{Jobs: jobs})
		if err != nil {
			t.Fatalf("jobs=%d: %v", jobs, err)
		}
		if want == nil {
			want = g
			continue
		}
		if diff := cmp.Diff(want, g); diff != "" {
			t.Fatalf("jobs=%d differs (-want +got):\n%s", jobs, diff)
		}
	}
}
