// Package driver ties the planning phases together: project discovery,
// layout, module index, dependency graph and compilation plan.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jmake/internal/ctxlog"
	"jmake/internal/diag"
	"jmake/internal/javasrc"
	"jmake/internal/observ"
	"jmake/internal/project"
	"jmake/internal/project/dag"
	"jmake/internal/source"
)

// Options configures Open.
type Options struct {
	MaxRootDepth   int
	Jobs           int
	MaxDiagnostics int
	EnableTimings  bool
	// Inspector replaces the javasrc header scanner; tests use it.
	Inspector dag.Inspector
}

// Session owns everything computed for one project during one invocation:
// the layout, the module index, loaded files and diagnostics. Sessions do not
// share state, so several may run side by side.
type Session struct {
	Root   string
	Layout project.Layout
	Index  *dag.ModuleIndex
	Files  *source.FileSet
	Bag    *diag.Bag
	Timer  *observ.Timer

	reporter  diag.Reporter
	inspector dag.Inspector
	opts      Options
}

// Open discovers the project containing startPath and indexes its sources.
// Fatal problems (no project root, unreadable layout, duplicate modules)
// are returned as errors; everything else lands in Session.Bag.
func Open(ctx context.Context, startPath string, opts Options) (*Session, error) {
	logger := ctxlog.FromContext(ctx)
	s := &Session{
		Files: source.NewFileSet(),
		Bag:   diag.NewBag(opts.MaxDiagnostics),
		opts:  opts,
	}
	if opts.EnableTimings {
		s.Timer = observ.NewTimer()
	}
	s.reporter = diag.NewDedupReporter(diag.BagReporter{Bag: s.Bag})
	s.inspector = opts.Inspector
	if s.inspector == nil {
		s.inspector = javasrc.NewInspector(s.Files)
	}

	err := s.Timer.Measure("root", func() error {
		root, err := project.FindProjectRoot(startPath, opts.MaxRootDepth)
		s.Root = root
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("project root", "path", s.Root)

	err = s.Timer.Measure("layout", func() error {
		layout, err := project.LoadLayout(s.Root, s.reporter)
		s.Layout = layout
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("layout", "from", s.Layout.Source, "source_roots", s.Layout.SourceRoots, "output", s.Layout.OutputDir)

	var metas []project.ModuleMeta
	err = s.Timer.Measure("scan", func() error {
		var scanErr error
		metas, scanErr = project.ScanSourceRoots(ctx, s.Layout, s.reporter)
		return scanErr
	})
	if err != nil {
		return nil, err
	}

	err = s.Timer.Measure("index", func() error {
		idx, indexErr := dag.BuildIndex(metas)
		s.Index = idx
		return indexErr
	})
	if err != nil {
		return nil, err
	}
	logger.Info("modules indexed", "count", s.Index.Len(), "packages", len(s.Index.Packages))
	return s, nil
}

// Reporter returns the session's deduplicating reporter.
func (s *Session) Reporter() diag.Reporter {
	return s.reporter
}

// EntryModule maps a source file to its module.
func (s *Session) EntryModule(path string) (dag.ModuleID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if info, statErr := os.Stat(abs); statErr != nil {
		return 0, fmt.Errorf("entry file: %w", statErr)
	} else if info.IsDir() {
		return 0, fmt.Errorf("entry %s is a directory, not a %s file", abs, project.JavaExt)
	}
	id, ok := s.Index.LookupPath(abs)
	if !ok {
		if root, under := s.Layout.SourceRootOf(abs); under {
			return 0, fmt.Errorf("%w: %s is in source root %s but is not a module", dag.ErrEntryNotIndexed, abs, root)
		}
		return 0, fmt.Errorf("%w: %s is not under any source root (%v)", dag.ErrEntryNotIndexed, abs, s.Layout.SourceRoots)
	}
	return id, nil
}

// PlanResult is everything computed for one entry file.
type PlanResult struct {
	Entry dag.ModuleID
	Graph *dag.Graph
	Plan  *dag.Plan
}

// EntryName returns the module name of the entry file, which is also its main class.
func (r *PlanResult) EntryName(idx *dag.ModuleIndex) string {
	return idx.NameOf(r.Entry)
}

// Plan builds the dependency graph of the entry file and schedules it.
// The plan is verified against the graph before it is returned; a failed
// verification is an internal error.
func (s *Session) Plan(ctx context.Context, entryPath string) (*PlanResult, error) {
	logger := ctxlog.FromContext(ctx)
	entry, err := s.EntryModule(entryPath)
	if err != nil {
		return nil, err
	}
	res := &PlanResult{Entry: entry}

	err = s.Timer.Measure("graph", func() error {
		g, graphErr := dag.BuildGraph(ctx, s.Index.NameOf(entry), s.Index, s.inspector, dag.GraphOptions{
			Jobs:     s.opts.Jobs,
			Reporter: s.reporter,
		})
		res.Graph = g
		return graphErr
	})
	if err != nil {
		return nil, err
	}

	err = s.Timer.Measure("schedule", func() error {
		plan, schedErr := dag.Schedule(res.Graph)
		if schedErr != nil {
			return schedErr
		}
		if verr := plan.Verify(res.Graph); verr != nil {
			return verr
		}
		res.Plan = plan
		return nil
	})
	if err != nil {
		if errors.Is(err, dag.ErrInternalInvariant) {
			logger.Error("scheduler produced an invalid plan", "entry", s.Index.NameOf(entry), "err", err)
			return nil, fmt.Errorf("internal error, please report it: %w", err)
		}
		return nil, err
	}
	dag.ReportCycles(s.Index, res.Plan, s.reporter)
	logger.Info("plan ready", "entry", s.Index.NameOf(entry), "modules", res.Plan.ModuleCount(), "batches", res.Plan.Len())
	return res, nil
}
