package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"jmake/internal/source"
)

// JavaExt is the extension of files treated as modules.
const JavaExt = ".java"

// Compilation units with reserved names. A package-info file is indexed as a
// member of its package; a module descriptor is not indexed at all.
const (
	PackageInfoClass = "package-info"
	ModuleInfoFile   = "module-info" + JavaExt
)

// ModuleMeta describes one Java source file found under a source root.
type ModuleMeta struct {
	Name       string // dot-separated logical name: "app.util.Strings"
	Path       string // absolute file path
	SourceRoot string // absolute path of the source root it was found under
	Package    string // package derived from the directory, "" for the root
	Dir        string // absolute directory holding the file
}

// ImportMeta is one import declaration as written in a source file.
type ImportMeta struct {
	Target   string // "a.b.C" or, for wildcards, the package/class "a.b"
	Wildcard bool
	Static   bool
	Span     source.Span
}

// SourceFacts is what the graph builder needs to know about a file.
type SourceFacts struct {
	Package    string
	HasPackage bool
	Imports    []ImportMeta
	File       source.FileID
	PackageAt  source.Span
}

var errEmptySegment = errors.New("empty name segment")

// ModuleNameFromRel converts a path relative to a source root into a module
// name: separators become dots and the .java extension is dropped. The name
// is NFC-normalised so that NFD file systems produce the same names.
func ModuleNameFromRel(rel string) (string, error) {
	rel = filepath.ToSlash(filepath.Clean(rel))
	rel = strings.TrimSuffix(rel, JavaExt)
	if rel == "" || rel == "." || strings.HasPrefix(rel, "../") || rel == ".." {
		return "", fmt.Errorf("invalid module path %q", rel)
	}
	parts := strings.Split(rel, "/")
	for _, p := range parts {
		if p == "" {
			return "", errEmptySegment
		}
	}
	return norm.NFC.String(strings.Join(parts, ".")), nil
}

// PackageOf returns the package part of a module name ("" for top-level modules).
func PackageOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// SimpleName returns the last segment of a dotted name.
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// IsValidJavaIdent reports whether s is a legal Java identifier.
func IsValidJavaIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// IsValidQualifiedName reports whether every dot-separated segment of name is an identifier.
func IsValidQualifiedName(name string) bool {
	if name == "" {
		return false
	}
	for seg := range strings.SplitSeq(name, ".") {
		if !IsValidJavaIdent(seg) {
			return false
		}
	}
	return true
}

// ErrMalformedHeader marks a file whose package or import section cannot be read.
var ErrMalformedHeader = errors.New("malformed source header")

// HeaderError locates a malformed package or import declaration.
type HeaderError struct {
	Path string
	Span source.Span
	Msg  string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func (e *HeaderError) Unwrap() error { return ErrMalformedHeader }
