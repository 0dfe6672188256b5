package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxRootDepth bounds how many directories FindProjectRoot climbs.
const DefaultMaxRootDepth = 10

// RootMarkers are the entries whose presence marks a Java project root.
var RootMarkers = []string{
	ManifestFileName,
	".classpath",
	".project",
	"pom.xml",
	"build.gradle",
	"build.xml",
	".git",
}

// ErrProjectRootNotFound is returned when no marker is found within the search depth.
var ErrProjectRootNotFound = errors.New("project root not found")

// RootNotFoundError reports where the search started and how far it went.
type RootNotFoundError struct {
	Start string
	Depth int
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("no project root found within %d levels above %s (looked for %s)",
		e.Depth, e.Start, strings.Join(RootMarkers, ", "))
}

func (e *RootNotFoundError) Unwrap() error { return ErrProjectRootNotFound }

// FindProjectRoot walks up from startPath (a file or directory) looking for
// a directory that contains one of RootMarkers. At most maxDepth directories
// are examined; maxDepth <= 0 selects DefaultMaxRootDepth.
func FindProjectRoot(startPath string, maxDepth int) (string, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRootDepth
	}
	if startPath == "" {
		startPath = "."
	}
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start path: %w", err)
	}
	dir := abs
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(abs)
	}
	start := dir
	for range maxDepth {
		for _, marker := range RootMarkers {
			candidate := filepath.Join(dir, marker)
			if _, err := os.Stat(candidate); err == nil {
				return dir, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", &RootNotFoundError{Start: start, Depth: maxDepth}
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
