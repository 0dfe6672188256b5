package dag

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jmake/internal/project"
)

func TestBuildIndexAssignsSortedIDs(t *testing.T) {
	metas := []project.ModuleMeta{metaFor("b.B"), metaFor("a.util.U"), metaFor("a.A"), metaFor("Main")}
	idx, err := BuildIndex(metas)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	want := []string{"Main", "a.A", "a.util.U", "b.B"}
	if diff := cmp.Diff(want, idx.IDToName); diff != "" {
		t.Fatalf("IDToName (-want +got):\n%s", diff)
	}
	for i, name := range want {
		if id, ok := idx.Lookup(name); !ok || int(id) != i {
			t.Fatalf("Lookup(%q) = %d,%v; want %d", name, id, ok, i)
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	idx, _ := newFixture(t, map[string][]string{"a.A": nil, "a.B": nil, "b.C": nil, "Top": nil})
	for _, name := range idx.IDToName {
		id := mustID(t, idx, name)
		path := idx.PathOf(id)
		back, ok := idx.LookupPath(path)
		if !ok || idx.NameOf(back) != name {
			t.Fatalf("round trip %q -> %q -> %q", name, path, idx.NameOf(back))
		}
	}
	if _, ok := idx.LookupPath("/elsewhere/X.java"); ok {
		t.Fatalf("unexpected hit for unknown path")
	}
	if _, ok := idx.LookupPath(fixtureRoot + "/a/../a/A.java"); !ok {
		t.Fatalf("LookupPath must clean its argument")
	}
}

func TestIndexPackageMembersAreOneLevel(t *testing.T) {
	idx, _ := newFixture(t, map[string][]string{"p.A": nil, "p.B": nil, "p.sub.C": nil, "Top": nil})

	if diff := cmp.Diff([]string{"p.A", "p.B"}, namesOf(idx, idx.PackageMembers("p"))); diff != "" {
		t.Fatalf("members of p (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Top"}, namesOf(idx, idx.PackageMembers(""))); diff != "" {
		t.Fatalf("members of default package (-want +got):\n%s", diff)
	}
	if idx.HasPackage("q") {
		t.Fatalf("q is not a package")
	}
}

func TestBuildIndexDuplicateModule(t *testing.T) {
	first := metaFor("app.Main")
	second := metaFor("app.Main")
	second.Path = "/proj/gen/app/Main.java"
	second.SourceRoot = "/proj/gen"

	_, err := BuildIndex([]project.ModuleMeta{first, metaFor("app.Util"), second})
	if !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("err = %v, want ErrDuplicateModule", err)
	}
	var dup *DuplicateModuleError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %T, want *DuplicateModuleError", err)
	}
	if dup.Name != "app.Main" || dup.First != first.Path || dup.Second != second.Path {
		t.Fatalf("dup = %+v", dup)
	}
}
