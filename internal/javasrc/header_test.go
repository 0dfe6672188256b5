package javasrc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"jmake/internal/project"
	"jmake/internal/source"
)

func parse(t *testing.T, src string) (project.SourceFacts, error) {
	t.Helper()
	fs := source.NewFileSet()
	return ParseHeader(fs.Get(fs.AddVirtual("Test.java", []byte(src))))
}

func imports(facts project.SourceFacts) []project.ImportMeta {
	return facts.Imports
}

var ignoreSpans = cmpopts.IgnoreFields(project.ImportMeta{}, "Span")

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		pkg     string
		imports []project.ImportMeta
	}{
		{
			name: "package and imports",
			src: `package app.util;

import java.util.List;
import app.model.*;
import static app.Consts.MAX;
import static org.junit.Assert.*;

public class Strings {}
`,
			pkg: "app.util",
			imports: []project.ImportMeta{
				{Target: "java.util.List"},
				{Target: "app.model", Wildcard: true},
				{Target: "app.Consts.MAX", Static: true},
				{Target: "org.junit.Assert", Static: true, Wildcard: true},
			},
		},
		{
			name: "default package",
			src:  "import a.B;\nclass Main {}",
			imports: []project.ImportMeta{
				{Target: "a.B"},
			},
		},
		{
			name: "comments and odd spacing",
			src: `/* license
 * import fake.Import;
 */
// package wrong;
/** docs */ package   p . q ;
import /* inline */ a
    .b.C;;
import x.y. * ;
`,
			pkg: "p.q",
			imports: []project.ImportMeta{
				{Target: "a.b.C"},
				{Target: "x.y", Wildcard: true},
			},
		},
		{
			name: "header ends at first declaration",
			src: `package p;
import a.A;
@Deprecated
public final class C {
    String s = "import b.B;";
}
import c.C;
`,
			pkg:     "p",
			imports: []project.ImportMeta{{Target: "a.A"}},
		},
		{
			name: "package annotations",
			src: `@Generated(value = {"gen", "x)"}, date = ")")
@a.b.Marker
package p;
import q.Q;
`,
			pkg:     "p",
			imports: []project.ImportMeta{{Target: "q.Q"}},
		},
		{
			name:    "package-info with bare marker",
			src:     "@Deprecated\npackage a.b;\nimport c.D;\nclass X{}",
			pkg:     "a.b",
			imports: []project.ImportMeta{{Target: "c.D"}},
		},
		{
			name: "package-info with several bare markers",
			src:  "/** docs */\n@Marker\n@x.y.Other\npackage p;\n",
			pkg:  "p",
		},
		{
			name: "annotated type in default package",
			src:  "@Deprecated\n@a.Marker(1)\npublic class X {}\n",
		},
		{
			name:    "annotation type declaration",
			src:     "package p;\n@interface Marker {}\n",
			pkg:     "p",
			imports: nil,
		},
		{
			name: "module import is skipped",
			src:  "import module java.base;\nimport module.sub.Type;\nclass A {}",
			imports: []project.ImportMeta{
				{Target: "module.sub.Type"},
			},
		},
		{
			name: "unicode identifiers",
			src:  "package café;\nimport über.Λ;\n",
			pkg:  "café",
			imports: []project.ImportMeta{
				{Target: "über.Λ"},
			},
		},
		{
			name: "empty file",
			src:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, err := parse(t, tt.src)
			if err != nil {
				t.Fatalf("ParseHeader: %v", err)
			}
			if facts.Package != tt.pkg || facts.HasPackage != (tt.pkg != "") {
				t.Fatalf("package = %q (%v), want %q", facts.Package, facts.HasPackage, tt.pkg)
			}
			if diff := cmp.Diff(tt.imports, imports(facts), ignoreSpans); diff != "" {
				t.Fatalf("imports (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHeaderSpans(t *testing.T) {
	src := "package a.b;\nimport c.D;\n"
	facts, err := parse(t, src)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if got := src[facts.PackageAt.Start:facts.PackageAt.End]; got != "package a.b;" {
		t.Fatalf("package span covers %q", got)
	}
	sp := facts.Imports[0].Span
	if got := src[sp.Start:sp.End]; got != "import c.D;" {
		t.Fatalf("import span covers %q", got)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string // text under the error span
	}{
		{"missing semicolon after package", "package a.b\nimport c.D;", "import"},
		{"missing semicolon after import", "package a;\nimport c.D\nclass X {}", "class"},
		{"wildcard package", "package a.*;", "*"},
		{"dangling dot", "import a.;", ";"},
		{"unterminated comment", "package a;\n/* never closed", "/* never closed"},
		{"package after import", "import a.B;\npackage c;", "package"},
		{"static import of a bare name", "import static Foo;", "import static Foo;"},
		{"unterminated annotation", "@A(\"x\"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.src)
			var herr *project.HeaderError
			if !errors.As(err, &herr) {
				t.Fatalf("err = %v, want *project.HeaderError", err)
			}
			if !errors.Is(err, project.ErrMalformedHeader) {
				t.Fatalf("err does not wrap ErrMalformedHeader")
			}
			if got := tt.src[herr.Span.Start:herr.Span.End]; got != tt.want {
				t.Fatalf("error span covers %q, want %q (%s)", got, tt.want, herr.Msg)
			}
		})
	}
}
