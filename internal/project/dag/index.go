package dag

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"

	"jmake/internal/project"
)

type ModuleID uint32

// ErrDuplicateModule is wrapped by DuplicateModuleError.
var ErrDuplicateModule = errors.New("duplicate module")

// DuplicateModuleError names both files that map to the same module name.
type DuplicateModuleError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("duplicate module %q: defined by %s and %s", e.Name, e.First, e.Second)
}

func (e *DuplicateModuleError) Unwrap() error { return ErrDuplicateModule }

// ModuleIndex maps module names to files. IDs are dense and assigned in
// sorted-name order, so equal inputs always produce equal indexes.
// The index is immutable once built.
type ModuleIndex struct {
	NameToID map[string]ModuleID
	IDToName []string
	PathToID map[string]ModuleID
	Metas    []project.ModuleMeta
	Packages map[string][]ModuleID // package -> direct members, ascending
}

// BuildIndex indexes metas. Two metas with the same name abort construction.
func BuildIndex(metas []project.ModuleMeta) (*ModuleIndex, error) {
	sorted := slices.Clone(metas)
	slices.SortStableFunc(sorted, func(a, b project.ModuleMeta) int {
		return strings.Compare(a.Name, b.Name)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return nil, &DuplicateModuleError{
				Name:   sorted[i].Name,
				First:  sorted[i-1].Path,
				Second: sorted[i].Path,
			}
		}
	}

	idx := &ModuleIndex{
		NameToID: make(map[string]ModuleID, len(sorted)),
		IDToName: make([]string, len(sorted)),
		PathToID: make(map[string]ModuleID, len(sorted)),
		Metas:    sorted,
		Packages: make(map[string][]ModuleID),
	}
	for i, meta := range sorted {
		id, err := safecast.Conv[ModuleID](i)
		if err != nil {
			return nil, fmt.Errorf("module id overflow: %w", err)
		}
		if meta.Name == "" {
			return nil, fmt.Errorf("module at %s has no name", meta.Path)
		}
		idx.NameToID[meta.Name] = id
		idx.IDToName[i] = meta.Name
		if meta.Path != "" {
			idx.PathToID[filepath.Clean(meta.Path)] = id
		}
		// ids grow with i, so every member list stays sorted
		idx.Packages[meta.Package] = append(idx.Packages[meta.Package], id)
	}
	return idx, nil
}

// Len reports the number of indexed modules.
func (idx *ModuleIndex) Len() int {
	return len(idx.IDToName)
}

func (idx *ModuleIndex) Lookup(name string) (ModuleID, bool) {
	id, ok := idx.NameToID[name]
	return id, ok
}

// LookupPath finds the module defined by the file at path.
func (idx *ModuleIndex) LookupPath(path string) (ModuleID, bool) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	id, ok := idx.PathToID[filepath.Clean(path)]
	return id, ok
}

func (idx *ModuleIndex) NameOf(id ModuleID) string {
	return idx.IDToName[int(id)]
}

func (idx *ModuleIndex) PathOf(id ModuleID) string {
	return idx.Metas[int(id)].Path
}

func (idx *ModuleIndex) Meta(id ModuleID) project.ModuleMeta {
	return idx.Metas[int(id)]
}

// PackageMembers returns the modules directly inside pkg. Subpackages are not included.
// The returned slice must not be modified.
func (idx *ModuleIndex) PackageMembers(pkg string) []ModuleID {
	return idx.Packages[pkg]
}

// HasPackage reports whether any module lives directly in pkg.
func (idx *ModuleIndex) HasPackage(pkg string) bool {
	return len(idx.Packages[pkg]) > 0
}
