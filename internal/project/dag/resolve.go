package dag

import (
	"slices"

	"jmake/internal/project"
)

// Resolution is the outcome of resolving one module's imports.
type Resolution struct {
	Deps     []ModuleID // ascending, unique, never the module itself
	External []string   // import targets not found in the index, ascending, unique
}

// ResolveDependencies computes the project modules self depends on.
// Every other direct member of pkg is a dependency; Java makes same-package
// classes visible without an import. Explicit imports resolve as follows:
//
//	import a.b.C;         a.b.C if indexed
//	import a.b.*;         every direct member of a.b; a.b itself if it is a class
//	import static a.B.x;  the owning class a.B
//	import static a.B.*;  the class a.B
//
// Anything else is external and ends up in Resolution.External.
func ResolveDependencies(self ModuleID, pkg string, imports []project.ImportMeta, idx *ModuleIndex) Resolution {
	deps := make([]ModuleID, 0, len(imports)+len(idx.PackageMembers(pkg)))
	deps = append(deps, idx.PackageMembers(pkg)...)

	var external []string
	for _, imp := range imports {
		if imp.Target == "" {
			continue
		}
		switch {
		case imp.Static && imp.Wildcard:
			if id, ok := idx.Lookup(imp.Target); ok {
				deps = append(deps, id)
				continue
			}
		case imp.Static:
			if id, ok := idx.Lookup(project.PackageOf(imp.Target)); ok {
				deps = append(deps, id)
				continue
			}
		case imp.Wildcard:
			if idx.HasPackage(imp.Target) {
				deps = append(deps, idx.PackageMembers(imp.Target)...)
				continue
			}
			// import a.B.*; brings in nested types of class a.B
			if id, ok := idx.Lookup(imp.Target); ok {
				deps = append(deps, id)
				continue
			}
		default:
			if id, ok := idx.Lookup(imp.Target); ok {
				deps = append(deps, id)
				continue
			}
		}
		external = append(external, importString(imp))
	}

	slices.Sort(deps)
	deps = slices.Compact(deps)
	if i, found := slices.BinarySearch(deps, self); found {
		deps = slices.Delete(deps, i, i+1)
	}
	slices.Sort(external)
	external = slices.Compact(external)
	return Resolution{Deps: deps, External: external}
}

func importString(imp project.ImportMeta) string {
	s := imp.Target
	if imp.Wildcard {
		s += ".*"
	}
	if imp.Static {
		s = "static " + s
	}
	return s
}
