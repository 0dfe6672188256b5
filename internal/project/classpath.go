package project

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// ClasspathFileName is the Eclipse build-path descriptor read from the project root.
const ClasspathFileName = ".classpath"

// ClasspathEntry mirrors one <classpathentry> element.
type ClasspathEntry struct {
	Kind string `xml:"kind,attr"`
	Path string `xml:"path,attr"`
}

type classpathDoc struct {
	XMLName xml.Name         `xml:"classpath"`
	Entries []ClasspathEntry `xml:"classpathentry"`
}

// Classpath is the parsed content of a .classpath file.
type Classpath struct {
	Sources   []string
	Output    string
	Libraries []string
}

// LoadClasspath parses an Eclipse .classpath file. Container entries (kind="con")
// are ignored since they name the JRE, which javac already knows.
func LoadClasspath(path string) (Classpath, error) {
	// #nosec G304 -- path is <root>/.classpath
	data, err := os.ReadFile(path)
	if err != nil {
		return Classpath{}, err
	}
	var doc classpathDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Classpath{}, fmt.Errorf("%s: failed to parse XML: %w", path, err)
	}
	var cp Classpath
	for _, e := range doc.Entries {
		p := strings.TrimSpace(e.Path)
		if p == "" {
			return Classpath{}, fmt.Errorf("%s: classpathentry kind=%q has no path", path, e.Kind)
		}
		switch e.Kind {
		case "src":
			cp.Sources = append(cp.Sources, p)
		case "output":
			cp.Output = p
		case "lib":
			cp.Libraries = append(cp.Libraries, p)
		}
	}
	return cp, nil
}
