// Package javasrc reads the package and import declarations of Java source
// files. It is not a Java parser: everything after the import section is
// ignored.
package javasrc

import (
	"context"

	"jmake/internal/project"
	"jmake/internal/source"
)

// Inspector loads files into a shared FileSet and parses their headers.
// It is safe for concurrent use.
type Inspector struct {
	files *source.FileSet
}

func NewInspector(files *source.FileSet) *Inspector {
	if files == nil {
		files = source.NewFileSet()
	}
	return &Inspector{files: files}
}

// Files returns the FileSet that loaded files are stored in.
func (in *Inspector) Files() *source.FileSet {
	return in.files
}

// Inspect parses the header of path. A file already in the FileSet is not
// read again, so repeated plans within one session see the same contents.
func (in *Inspector) Inspect(ctx context.Context, path string) (project.SourceFacts, error) {
	if err := ctx.Err(); err != nil {
		return project.SourceFacts{}, err
	}
	id, ok := in.files.GetLatest(path)
	if !ok {
		var err error
		if id, err = in.files.Load(path); err != nil {
			return project.SourceFacts{}, err
		}
	}
	return ParseHeader(in.files.Get(id))
}
