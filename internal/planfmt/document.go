// Package planfmt renders compilation plans for people and for other tools.
package planfmt

import (
	"jmake/internal/project"
	"jmake/internal/project/dag"
)

// Document is the serialisable form of a plan.
type Document struct {
	Entry     string   `json:"entry" msgpack:"entry"`
	Root      string   `json:"root" msgpack:"root"`
	Output    string   `json:"output" msgpack:"output"`
	Classpath string   `json:"classpath" msgpack:"classpath"`
	Batches   []Batch  `json:"batches" msgpack:"batches"`
	Modules   []Module `json:"modules,omitempty" msgpack:"modules,omitempty"`
}

// Batch is one javac invocation. Cycle is set for batches of more than one module.
type Batch struct {
	Index   int      `json:"index" msgpack:"index"`
	Cycle   bool     `json:"cycle,omitempty" msgpack:"cycle,omitempty"`
	Modules []string `json:"modules" msgpack:"modules"`
	Files   []string `json:"files" msgpack:"files"`
}

// Module describes one visited module; only present in verbose documents.
type Module struct {
	Name     string   `json:"name" msgpack:"name"`
	Path     string   `json:"path" msgpack:"path"`
	Batch    int      `json:"batch" msgpack:"batch"`
	Deps     []string `json:"deps,omitempty" msgpack:"deps,omitempty"`
	External []string `json:"external,omitempty" msgpack:"external,omitempty"`
}

// Build assembles a document. With verbose set, every visited module is
// listed with its edges and unresolved imports in ascending name order.
func Build(layout project.Layout, idx *dag.ModuleIndex, g *dag.Graph, plan *dag.Plan, verbose bool) Document {
	doc := Document{
		Entry:     idx.NameOf(g.Entry),
		Root:      layout.Root,
		Output:    layout.OutputDir,
		Classpath: layout.Classpath(),
		Batches:   make([]Batch, 0, plan.Len()),
	}
	for i, ids := range plan.Batches {
		b := Batch{
			Index:   i + 1,
			Cycle:   len(ids) > 1,
			Modules: make([]string, len(ids)),
			Files:   make([]string, len(ids)),
		}
		for j, id := range ids {
			b.Modules[j] = idx.NameOf(id)
			b.Files[j] = idx.PathOf(id)
		}
		doc.Batches = append(doc.Batches, b)
	}
	if !verbose {
		return doc
	}

	batchOf := plan.BatchOf()
	for _, id := range g.Nodes() {
		m := Module{
			Name:  idx.NameOf(id),
			Path:  idx.PathOf(id),
			Batch: batchOf[id] + 1,
		}
		for _, dep := range g.Edges[id] {
			m.Deps = append(m.Deps, idx.NameOf(dep))
		}
		if int(id) < len(g.External) {
			m.External = append(m.External, g.External[id]...)
		}
		doc.Modules = append(doc.Modules, m)
	}
	return doc
}
