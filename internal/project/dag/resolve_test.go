package dag

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"jmake/internal/project"
)

func TestResolveDependencies(t *testing.T) {
	idx, _ := newFixture(t, map[string][]string{
		"app.Main":       nil,
		"app.Helper":     nil,
		"util.Strings":   nil,
		"util.Lists":     nil,
		"util.deep.Tree": nil,
		"consts.K":       nil,
	})

	tests := []struct {
		name     string
		imports  []string
		wantDeps []string
		wantExt  []string
	}{
		{
			name:     "siblings only",
			wantDeps: []string{"app.Helper"},
		},
		{
			name:     "single class",
			imports:  []string{"util.Strings", "java.util.List"},
			wantDeps: []string{"app.Helper", "util.Strings"},
			wantExt:  []string{"java.util.List"},
		},
		{
			name:     "wildcard is one level deep",
			imports:  []string{"util.*"},
			wantDeps: []string{"app.Helper", "util.Lists", "util.Strings"},
		},
		{
			name:     "wildcard on unknown package",
			imports:  []string{"java.io.*"},
			wantDeps: []string{"app.Helper"},
			wantExt:  []string{"java.io.*"},
		},
		{
			name:     "static member and static wildcard",
			imports:  []string{"static consts.K.MAX", "static util.Lists.*", "static org.junit.Assert.*"},
			wantDeps: []string{"app.Helper", "consts.K", "util.Lists"},
			wantExt:  []string{"static org.junit.Assert.*"},
		},
		{
			name:     "wildcard over a class brings the class",
			imports:  []string{"util.deep.Tree.*"},
			wantDeps: []string{"app.Helper", "util.deep.Tree"},
		},
		{
			name:     "self import and duplicates are dropped",
			imports:  []string{"app.Main", "app.*", "util.Strings", "util.Strings", "x.Y", "x.Y"},
			wantDeps: []string{"app.Helper", "util.Strings"},
			wantExt:  []string{"x.Y"},
		},
	}
	self := mustID(t, idx, "app.Main")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imports := make([]project.ImportMeta, 0, len(tt.imports))
			for _, s := range tt.imports {
				imports = append(imports, parseImport(s))
			}
			r := ResolveDependencies(self, "app", imports, idx)
			if diff := cmp.Diff(tt.wantDeps, namesOf(idx, r.Deps)); diff != "" {
				t.Errorf("deps (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantExt, r.External); diff != "" {
				t.Errorf("external (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveDoesNotAliasIndex(t *testing.T) {
	idx, _ := newFixture(t, map[string][]string{"p.A": nil, "p.B": nil, "p.C": nil})
	before := append([]ModuleID(nil), idx.PackageMembers("p")...)

	ResolveDependencies(mustID(t, idx, "p.B"), "p", nil, idx)

	if diff := cmp.Diff(before, idx.PackageMembers("p")); diff != "" {
		t.Fatalf("package members changed (-want +got):\n%s", diff)
	}
}
