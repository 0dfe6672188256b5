package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"jmake/internal/buildpipeline"
	"jmake/internal/diag"
	"jmake/internal/diagfmt"
	"jmake/internal/driver"
	"jmake/internal/project/dag"
)

func openSession(ctx context.Context, s *settings, start string) (*driver.Session, error) {
	return driver.Open(ctx, start, driver.Options{
		MaxRootDepth:   s.cfg.MaxRootDepth,
		Jobs:           s.cfg.Jobs,
		MaxDiagnostics: s.cfg.MaxDiagnostics,
		EnableTimings:  s.timings,
	})
}

// resolveEntry returns the entry file: the argument when given, otherwise
// the [run] main module of jmake.toml.
func resolveEntry(sess *driver.Session, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	name := sess.Layout.MainModule
	if name == "" {
		return "", errors.New("no entry file given and jmake.toml has no [run] main")
	}
	id, ok := sess.Index.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: [run] main %q is not a module of this project", dag.ErrEntryNotIndexed, name)
	}
	return sess.Index.PathOf(id), nil
}

// sessionStart picks the directory project discovery starts from.
func sessionStart(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

// printDiagnostics writes the session bag to w. Infos are hidden in quiet mode.
func printDiagnostics(w io.Writer, sess *driver.Session, s *settings) {
	if sess == nil || sess.Bag.Len() == 0 {
		return
	}
	bag := sess.Bag
	if s.quiet {
		filtered := diag.NewBag(bag.Cap())
		for _, d := range bag.Items() {
			if d.Severity > diag.SevInfo {
				filtered.Add(d)
			}
		}
		bag = filtered
	}
	bag.Sort()
	_ = diagfmt.Pretty(w, bag, sess.Files, diagfmt.PrettyOpts{
		Color:     s.color,
		BaseDir:   sess.Root,
		ShowNotes: true,
	})
}

// reportBatchError turns a failed compilation into a diagnostic and echoes
// the compiler output, which already points at the offending lines.
func reportBatchError(sess *driver.Session, err error, stderr io.Writer) error {
	var berr *buildpipeline.BatchError
	if !errors.As(err, &berr) {
		return err
	}
	code := diag.ExecCompileFailed
	if berr.Timeout > 0 {
		code = diag.ExecTimeout
	}
	b := diag.ReportError(sess.Reporter(), code, "", berr.Error())
	for _, f := range berr.Files {
		b = b.WithNote(diag.Note{Path: f, Msg: "compiled in this batch"})
	}
	b.Emit()
	if berr.Stderr != "" && stderr != nil {
		_, _ = io.WriteString(stderr, berr.Stderr)
	}
	return errReported
}
