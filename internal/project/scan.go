package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"jmake/internal/diag"
)

// ScanSourceRoots walks every source root of layout and returns one
// ModuleMeta per .java file, sorted by name. Hidden directories, the output
// directory and nested source roots are not descended into. Missing roots
// are reported and skipped.
func ScanSourceRoots(ctx context.Context, layout Layout, reporter diag.Reporter) ([]ModuleMeta, error) {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	var metas []ModuleMeta
	for _, root := range layout.SourceRoots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			diag.ReportWarning(reporter, diag.ProjMissingSourceRoot, root,
				fmt.Sprintf("source root %s does not exist", root)).Emit()
			continue
		}
		found, err := scanRoot(ctx, layout, root, reporter)
		if err != nil {
			return nil, err
		}
		metas = append(metas, found...)
	}
	slices.SortStableFunc(metas, func(a, b ModuleMeta) int {
		return strings.Compare(a.Name, b.Name)
	})
	return metas, nil
}

func scanRoot(ctx context.Context, layout Layout, root string, reporter diag.Reporter) ([]ModuleMeta, error) {
	var metas []ModuleMeta
	// an output directory enclosing the root itself must not hide it
	skipOutput := !layout.IsOutputPath(root)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			diag.ReportWarning(reporter, diag.IOWalkFailed, path,
				fmt.Sprintf("cannot read %s: %v", path, err)).Emit()
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || skipOutput && layout.IsOutputPath(path) || isOtherRoot(layout, root, path) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || filepath.Ext(d.Name()) != JavaExt || d.Name() == ModuleInfoFile {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %q: %w", path, err)
		}
		name, err := ModuleNameFromRel(rel)
		if err != nil {
			diag.ReportWarning(reporter, diag.ProjInvalidModuleName, path, err.Error()).Emit()
			return nil
		}
		if !isValidModuleName(name) {
			diag.ReportWarning(reporter, diag.ProjInvalidModuleName, path,
				fmt.Sprintf("%q is not a valid Java class name", name)).Emit()
		}
		metas = append(metas, ModuleMeta{
			Name:       name,
			Path:       path,
			SourceRoot: root,
			Package:    PackageOf(name),
			Dir:        filepath.Dir(path),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return metas, nil
}

// isValidModuleName accepts Java class names plus the package-info unit of
// a named package.
func isValidModuleName(name string) bool {
	if SimpleName(name) == PackageInfoClass {
		pkg := PackageOf(name)
		return pkg != "" && IsValidQualifiedName(pkg)
	}
	return IsValidQualifiedName(name)
}

func isOtherRoot(layout Layout, current, dir string) bool {
	for _, r := range layout.SourceRoots {
		if r != current && r == dir {
			return true
		}
	}
	return false
}
