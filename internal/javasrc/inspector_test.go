package javasrc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jmake/internal/project"
	"jmake/internal/project/dag"
	"jmake/internal/source"
)

func TestInspectorLoadsIntoFileSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.java")
	if err := os.WriteFile(path, []byte("\ufeffpackage app;\r\nimport lib.Log;\r\nclass Main {}\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	files := source.NewFileSet()
	in := NewInspector(files)
	facts, err := in.Inspect(context.Background(), path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if facts.Package != "app" || len(facts.Imports) != 1 || facts.Imports[0].Target != "lib.Log" {
		t.Fatalf("facts = %+v", facts)
	}
	f := files.Get(facts.File)
	if f == nil || f.Flags&source.FileHadBOM == 0 {
		t.Fatalf("file not stored with BOM flag: %+v", f)
	}
	start, _ := files.Resolve(facts.Imports[0].Span)
	if start != (source.LineCol{Line: 2, Col: 1}) {
		t.Fatalf("import at %+v, want 2:1", start)
	}
}

func TestInspectorReusesLoadedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.java")
	if err := os.WriteFile(path, []byte("package a;\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	files := source.NewFileSet()
	in := NewInspector(files)
	first, err := in.Inspect(context.Background(), path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	second, err := in.Inspect(context.Background(), path)
	if err != nil {
		t.Fatalf("second Inspect: %v", err)
	}
	if second.File != first.File || second.Package != "a" || files.Len() != 1 {
		t.Fatalf("second inspect = %+v (files %d), want file %d reused", second, files.Len(), first.File)
	}
}

func TestInspectorMissingFile(t *testing.T) {
	in := NewInspector(nil)
	_, err := in.Inspect(context.Background(), filepath.Join(t.TempDir(), "Nope.java"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
	if errors.Is(err, project.ErrMalformedHeader) {
		t.Fatalf("I/O errors must not look like syntax errors")
	}
}

func TestInspectorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewInspector(nil).Inspect(ctx, "X.java"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

var _ dag.Inspector = (*Inspector)(nil)
