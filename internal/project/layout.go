package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jmake/internal/diag"
)

const (
	DefaultSourceRoot = "src"
	DefaultOutputDir  = "bin"
)

// LayoutSource names where a Layout came from.
type LayoutSource uint8

const (
	LayoutDefault LayoutSource = iota
	LayoutClasspath
	LayoutManifest
)

func (s LayoutSource) String() string {
	switch s {
	case LayoutClasspath:
		return ClasspathFileName
	case LayoutManifest:
		return ManifestFileName
	default:
		return "default"
	}
}

// Layout is the resolved build path of a project. All paths are absolute.
type Layout struct {
	Root         string
	SourceRoots  []string
	OutputDir    string
	Libraries    []string
	CompileFlags []string
	MainModule   string
	RunArgs      []string
	Source       LayoutSource
}

// LoadLayout resolves the build path of the project rooted at root.
// jmake.toml takes precedence over .classpath, which takes precedence over
// the defaults (src, bin, no libraries). Libraries that do not exist on disk
// are reported as warnings and kept on the classpath.
func LoadLayout(root string, reporter diag.Reporter) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to resolve project root: %w", err)
	}
	layout := Layout{
		Root:        abs,
		SourceRoots: []string{filepath.Join(abs, DefaultSourceRoot)},
		OutputDir:   filepath.Join(abs, DefaultOutputDir),
		Source:      LayoutDefault,
	}

	cp, err := LoadClasspath(filepath.Join(abs, ClasspathFileName))
	switch {
	case err == nil:
		layout.Source = LayoutClasspath
		if len(cp.Sources) > 0 {
			layout.SourceRoots = layout.resolveAll(cp.Sources)
		}
		if cp.Output != "" {
			layout.OutputDir = layout.resolve(cp.Output)
		}
		layout.Libraries = layout.resolveAll(cp.Libraries)
	case errors.Is(err, os.ErrNotExist):
	default:
		return Layout{}, err
	}

	manifest, ok, err := LoadManifest(abs)
	if err != nil {
		return Layout{}, err
	}
	if ok {
		layout.Source = LayoutManifest
		cfg := manifest.Config
		if cfg.HasLayoutKey("source_roots") && len(cfg.Layout.SourceRoots) > 0 {
			layout.SourceRoots = layout.resolveAll(cfg.Layout.SourceRoots)
		}
		if cfg.HasLayoutKey("output") {
			layout.OutputDir = layout.resolve(cfg.Layout.Output)
		}
		if cfg.HasLayoutKey("libraries") {
			layout.Libraries = layout.resolveAll(cfg.Layout.Libraries)
		}
		layout.CompileFlags = append([]string(nil), cfg.Compile.Flags...)
		layout.MainModule = strings.TrimSpace(cfg.Run.Main)
		layout.RunArgs = append([]string(nil), cfg.Run.Args...)
	}

	layout.SourceRoots = dedupPaths(layout.SourceRoots)
	layout.Libraries = dedupPaths(layout.Libraries)
	if layout.Source == LayoutDefault && reporter != nil {
		diag.ReportInfo(reporter, diag.ProjLayoutFallback, abs,
			fmt.Sprintf("no %s or %s found; using %s and %s", ManifestFileName, ClasspathFileName, DefaultSourceRoot, DefaultOutputDir)).Emit()
	}
	layout.checkLibraries(reporter)
	return layout, nil
}

// Classpath returns the javac/java -cp value: the output directory followed by libraries.
func (l Layout) Classpath() string {
	parts := make([]string, 0, 1+len(l.Libraries))
	parts = append(parts, l.OutputDir)
	parts = append(parts, l.Libraries...)
	return strings.Join(parts, string(os.PathListSeparator))
}

// IsOutputPath reports whether path lies inside the output directory.
func (l Layout) IsOutputPath(path string) bool {
	return pathWithin(l.OutputDir, path)
}

// SourceRootOf returns the source root containing path, preferring the deepest match.
func (l Layout) SourceRootOf(path string) (string, bool) {
	best := ""
	for _, r := range l.SourceRoots {
		if pathWithin(r, path) && len(r) > len(best) {
			best = r
		}
	}
	return best, best != ""
}

func (l Layout) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(l.Root, p)
}

func (l Layout) resolveAll(ps []string) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, l.resolve(p))
	}
	return out
}

func (l Layout) checkLibraries(reporter diag.Reporter) {
	if reporter == nil {
		return
	}
	for _, lib := range l.Libraries {
		if _, err := os.Stat(lib); err != nil {
			diag.ReportWarning(reporter, diag.ProjMissingLibrary, lib,
				fmt.Sprintf("library %s does not exist", lib)).Emit()
		}
	}
}

func dedupPaths(ps []string) []string {
	if len(ps) < 2 {
		return ps
	}
	seen := make(map[string]struct{}, len(ps))
	out := ps[:0]
	for _, p := range ps {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
