package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jmake/internal/diag"
	"jmake/internal/project"
	"jmake/internal/project/dag"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newProject writes an Eclipse-style project:
//
//	app.Main -> model.User -> model.Repo -> model.User (cycle)
//	app.Main -> util.Strings
//	tools.Unused imports app.Main but is never reached.
func newProject(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".classpath"), `<?xml version="1.0" encoding="UTF-8"?>
<classpath>
	<classpathentry kind="src" path="java"/>
	<classpathentry kind="con" path="org.eclipse.jdt.launching.JRE_CONTAINER"/>
	<classpathentry kind="output" path="classes"/>
</classpath>
`)
	main := filepath.Join(root, "java", "app", "Main.java")
	writeFile(t, main, `package app;

import model.*;
import static util.Strings.join;

public class Main {
	public static void main(String[] args) {}
}
`)
	writeFile(t, filepath.Join(root, "java", "model", "User.java"), "package model;\npublic class User {}\n")
	writeFile(t, filepath.Join(root, "java", "model", "Repo.java"), "package model;\nimport java.util.List;\npublic class Repo {}\n")
	writeFile(t, filepath.Join(root, "java", "util", "Strings.java"), "package util;\npublic class Strings {}\n")
	writeFile(t, filepath.Join(root, "java", "tools", "Unused.java"), "package tools;\nimport app.Main;\nclass Unused {}\n")
	return root, main
}

func TestOpenAndPlan(t *testing.T) {
	root, main := newProject(t)
	ctx := context.Background()

	sess, err := Open(ctx, main, Options{Jobs: 2, MaxDiagnostics: 50, EnableTimings: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sess.Root != root {
		t.Fatalf("Root = %q, want %q", sess.Root, root)
	}
	if sess.Layout.Source != project.LayoutClasspath || sess.Layout.OutputDir != filepath.Join(root, "classes") {
		t.Fatalf("layout = %+v", sess.Layout)
	}
	if sess.Index.Len() != 5 {
		t.Fatalf("indexed %d modules, want 5", sess.Index.Len())
	}

	res, err := sess.Plan(ctx, main)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := [][]string{{"model.Repo", "model.User"}, {"util.Strings"}, {"app.Main"}}
	if diff := cmp.Diff(want, res.Plan.Names(sess.Index)); diff != "" {
		t.Fatalf("plan (-want +got):\n%s", diff)
	}
	if res.EntryName(sess.Index) != "app.Main" {
		t.Fatalf("entry = %s", res.EntryName(sess.Index))
	}

	var cycles int
	for _, d := range sess.Bag.Items() {
		if d.Code == diag.ProjImportCycle {
			cycles++
		}
		if d.Severity == diag.SevError {
			t.Fatalf("unexpected error diagnostic %+v", d)
		}
	}
	if cycles != 1 {
		t.Fatalf("cycle infos = %d, want 1", cycles)
	}

	summary := sess.Timer.Summary()
	for _, phase := range []string{"root", "layout", "scan", "index", "graph", "schedule"} {
		if !strings.Contains(summary, phase) {
			t.Errorf("timings miss %s:\n%s", phase, summary)
		}
	}
}

func TestPlanMalformedHeaderIsWarning(t *testing.T) {
	root, main := newProject(t)
	writeFile(t, filepath.Join(root, "java", "model", "User.java"), "package model;\nimport model.;\nclass User {}\n")

	sess, err := Open(context.Background(), main, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := sess.Plan(context.Background(), main); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	found := false
	for _, d := range sess.Bag.Items() {
		if d.Code == diag.SynMalformedHeader && d.Severity == diag.SevWarning && d.HasSpan {
			found = true
		}
	}
	if !found {
		t.Fatalf("no malformed header warning in %+v", sess.Bag.Items())
	}
}

// A package-info unit belongs to its declared package and a module
// descriptor is not a module, so neither joins the default package.
func TestPlanPackageInfo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "jmake.toml"), "[layout]\nsource_roots = [\"src\"]\n")
	main := filepath.Join(root, "src", "Main.java")
	writeFile(t, main, "import model.User;\npublic class Main {}\n")
	writeFile(t, filepath.Join(root, "src", "Helper.java"), "class Helper {}\n")
	writeFile(t, filepath.Join(root, "src", "module-info.java"), "module app {}\n")
	writeFile(t, filepath.Join(root, "src", "model", "User.java"), "package model;\npublic class User {}\n")
	writeFile(t, filepath.Join(root, "src", "model", "package-info.java"),
		"@Deprecated\n@javax.annotation.ParametersAreNonnullByDefault\npackage model;\nimport javax.annotation.ParametersAreNonnullByDefault;\n")

	ctx := context.Background()
	sess, err := Open(ctx, main, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sess.Index.Len() != 4 {
		t.Fatalf("indexed %d modules, want 4", sess.Index.Len())
	}
	res, err := sess.Plan(ctx, main)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := [][]string{{"model.User", "model.package-info"}, {"Helper", "Main"}}
	if diff := cmp.Diff(want, res.Plan.Names(sess.Index)); diff != "" {
		t.Fatalf("plan (-want +got):\n%s", diff)
	}
	for _, d := range sess.Bag.Items() {
		if d.Severity >= diag.SevWarning {
			t.Fatalf("unexpected diagnostic %v %s", d.Code, d.Message)
		}
	}
	info, _ := sess.Index.Lookup("model.package-info")
	if diff := cmp.Diff([]string{"javax.annotation.ParametersAreNonnullByDefault"}, res.Graph.External[info]); diff != "" {
		t.Fatalf("package-info externals (-want +got):\n%s", diff)
	}
}

func TestEntryErrors(t *testing.T) {
	root, main := newProject(t)
	sess, err := Open(context.Background(), main, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	stray := filepath.Join(root, "Stray.java")
	writeFile(t, stray, "class Stray {}\n")
	_, err = sess.Plan(context.Background(), stray)
	if !errors.Is(err, dag.ErrEntryNotIndexed) || !strings.Contains(err.Error(), "not under any source root") {
		t.Fatalf("err = %v, want ErrEntryNotIndexed outside the source roots", err)
	}
	descriptor := filepath.Join(root, "java", "module-info.java")
	writeFile(t, descriptor, "module app {}\n")
	_, err = sess.EntryModule(descriptor)
	if !errors.Is(err, dag.ErrEntryNotIndexed) || !strings.Contains(err.Error(), "is in source root "+filepath.Join(root, "java")) {
		t.Fatalf("err = %v, want ErrEntryNotIndexed naming the source root", err)
	}
	if _, err := sess.EntryModule(filepath.Join(root, "java")); err == nil {
		t.Fatalf("expected error for a directory entry")
	}
	if _, err := sess.EntryModule(filepath.Join(root, "java", "Nope.java")); err == nil {
		t.Fatalf("expected error for a missing entry")
	}
}

func TestOpenFatalErrors(t *testing.T) {
	t.Run("no project root", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Open(context.Background(), dir, Options{MaxRootDepth: 1})
		if !errors.Is(err, project.ErrProjectRootNotFound) {
			t.Fatalf("err = %v, want ErrProjectRootNotFound", err)
		}
	})
	t.Run("duplicate module", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "jmake.toml"), "[layout]\nsource_roots = [\"a\", \"b\"]\n")
		writeFile(t, filepath.Join(root, "a", "p", "X.java"), "package p;\nclass X {}\n")
		writeFile(t, filepath.Join(root, "b", "p", "X.java"), "package p;\nclass X {}\n")
		_, err := Open(context.Background(), root, Options{})
		if !errors.Is(err, dag.ErrDuplicateModule) {
			t.Fatalf("err = %v, want ErrDuplicateModule", err)
		}
	})
}

func TestPlanCancelled(t *testing.T) {
	_, main := newProject(t)
	sess, err := Open(context.Background(), main, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sess.Plan(ctx, main); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
