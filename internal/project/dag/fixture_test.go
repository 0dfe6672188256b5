package dag

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"jmake/internal/project"
)

const fixtureRoot = "/proj/src"

func modulePath(name string) string {
	return filepath.Join(fixtureRoot, filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))+project.JavaExt)
}

func metaFor(name string) project.ModuleMeta {
	path := modulePath(name)
	return project.ModuleMeta{
		Name:       name,
		Path:       path,
		SourceRoot: fixtureRoot,
		Package:    project.PackageOf(name),
		Dir:        filepath.Dir(path),
	}
}

// memInspector serves facts from memory, keyed by file path.
type memInspector struct {
	facts map[string]project.SourceFacts
	errs  map[string]error
	calls atomic.Int32
}

func (m *memInspector) Inspect(ctx context.Context, path string) (project.SourceFacts, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return project.SourceFacts{}, err
	}
	if err, ok := m.errs[path]; ok {
		return project.SourceFacts{}, err
	}
	f, ok := m.facts[path]
	if !ok {
		return project.SourceFacts{}, errors.New("no such file")
	}
	return f, nil
}

// parseImport turns "a.b.C", "a.b.*", "static a.B.x" into an ImportMeta.
func parseImport(s string) project.ImportMeta {
	imp := project.ImportMeta{}
	if rest, ok := strings.CutPrefix(s, "static "); ok {
		imp.Static = true
		s = rest
	}
	if rest, ok := strings.CutSuffix(s, ".*"); ok {
		imp.Wildcard = true
		s = rest
	}
	imp.Target = s
	return imp
}

// newFixture indexes one module per key of imports; values are import
// declarations. Every file declares the package its directory implies.
func newFixture(t *testing.T, imports map[string][]string) (*ModuleIndex, *memInspector) {
	t.Helper()
	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	sort.Strings(names)

	metas := make([]project.ModuleMeta, 0, len(names))
	insp := &memInspector{facts: make(map[string]project.SourceFacts), errs: make(map[string]error)}
	for _, name := range names {
		meta := metaFor(name)
		metas = append(metas, meta)
		facts := project.SourceFacts{Package: meta.Package, HasPackage: meta.Package != ""}
		for _, s := range imports[name] {
			facts.Imports = append(facts.Imports, parseImport(s))
		}
		insp.facts[meta.Path] = facts
	}
	idx, err := BuildIndex(metas)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return idx, insp
}

func mustID(t *testing.T, idx *ModuleIndex, name string) ModuleID {
	t.Helper()
	id, ok := idx.Lookup(name)
	if !ok {
		t.Fatalf("module %q not indexed", name)
	}
	return id
}

func namesOf(idx *ModuleIndex, ids []ModuleID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.NameOf(id)
	}
	return out
}
