package dag

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"jmake/internal/ctxlog"
	"jmake/internal/diag"
	"jmake/internal/project"
)

// ErrEntryNotIndexed is returned when the entry module is not part of the index.
var ErrEntryNotIndexed = errors.New("entry module not indexed")

// Inspector reads the package and import declarations of one source file.
// Implementations must be safe for concurrent use.
type Inspector interface {
	Inspect(ctx context.Context, path string) (project.SourceFacts, error)
}

// InspectorFunc adapts a function to Inspector.
type InspectorFunc func(ctx context.Context, path string) (project.SourceFacts, error)

func (f InspectorFunc) Inspect(ctx context.Context, path string) (project.SourceFacts, error) {
	return f(ctx, path)
}

type GraphOptions struct {
	Jobs     int // concurrent inspections per frontier; <= 0 means GOMAXPROCS
	Reporter diag.Reporter
}

// Graph is the dependency graph reachable from one entry module. Slices are
// indexed by ModuleID and sized to the whole index; only visited modules
// carry edges.
type Graph struct {
	Entry    ModuleID
	Edges    [][]ModuleID // Edges[from] = dependencies, ascending, never from
	Visited  []bool
	Order    []ModuleID // visit order
	External [][]string // unresolved import targets per module
}

// Nodes returns the visited modules in ascending order.
func (g *Graph) Nodes() []ModuleID {
	out := slices.Clone(g.Order)
	slices.Sort(out)
	return out
}

// EdgeCount counts edges between visited modules.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, id := range g.Order {
		n += len(g.Edges[int(id)])
	}
	return n
}

type inspectResult struct {
	facts project.SourceFacts
	err   error
}

// BuildGraph discovers every module reachable from entry by breadth-first
// traversal. Each BFS level is inspected concurrently; the visited set, the
// queue and the reporter are only touched by the calling goroutine, in
// ascending ID order within a level, so the result does not depend on
// scheduling.
//
// A file that cannot be inspected is kept as a visited module with no
// dependencies and reported as a warning.
func BuildGraph(ctx context.Context, entry string, idx *ModuleIndex, insp Inspector, opts GraphOptions) (*Graph, error) {
	entryID, ok := idx.Lookup(entry)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotIndexed, entry)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logger := ctxlog.FromContext(ctx)

	n := idx.Len()
	g := &Graph{
		Entry:    entryID,
		Edges:    make([][]ModuleID, n),
		Visited:  make([]bool, n),
		Order:    make([]ModuleID, 0, 16),
		External: make([][]string, n),
	}

	g.Visited[entryID] = true
	frontier := []ModuleID{entryID}
	for level := 0; len(frontier) > 0; level++ {
		results, err := inspectFrontier(ctx, idx, insp, frontier, jobs)
		if err != nil {
			return nil, err
		}
		logger.Debug("graph level inspected", "level", level, "modules", len(frontier))

		var next []ModuleID
		for i, id := range frontier {
			g.Order = append(g.Order, id)
			res := results[i]
			if res.err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				reportInspectFailure(reporter, idx.PathOf(id), res.err)
				continue
			}
			meta := idx.Meta(id)
			pkg := res.facts.Package
			if pkg != meta.Package {
				b := diag.ReportWarning(reporter, diag.ProjPackageMismatch, meta.Path,
					fmt.Sprintf("declared package %q does not match directory package %q", pkg, meta.Package))
				if res.facts.HasPackage {
					b.At(res.facts.PackageAt)
				}
				b.Emit()
			}
			r := ResolveDependencies(id, pkg, res.facts.Imports, idx)
			g.Edges[id] = r.Deps
			g.External[id] = r.External
			for _, dep := range r.Deps {
				if !g.Visited[dep] {
					g.Visited[dep] = true
					next = append(next, dep)
				}
			}
		}
		slices.Sort(next)
		frontier = next
	}
	logger.Debug("graph built", "entry", entry, "modules", len(g.Order), "edges", g.EdgeCount())
	return g, nil
}

func inspectFrontier(ctx context.Context, idx *ModuleIndex, insp Inspector, frontier []ModuleID, jobs int) ([]inspectResult, error) {
	results := make([]inspectResult, len(frontier))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(min(jobs, len(frontier)))
	for i, id := range frontier {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			facts, err := insp.Inspect(egctx, idx.PathOf(id))
			results[i] = inspectResult{facts: facts, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func reportInspectFailure(reporter diag.Reporter, path string, err error) {
	var herr *project.HeaderError
	if errors.As(err, &herr) {
		diag.ReportWarning(reporter, diag.SynMalformedHeader, path,
			fmt.Sprintf("%s; treating the file as having no dependencies", herr.Msg)).
			At(herr.Span).Emit()
		return
	}
	diag.ReportWarning(reporter, diag.IOInspectFailed, path,
		fmt.Sprintf("cannot inspect %s: %v; treating the file as having no dependencies", path, err)).Emit()
}
