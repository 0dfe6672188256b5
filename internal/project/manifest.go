package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestFileName is the optional per-project settings file.
const ManifestFileName = "jmake.toml"

// Manifest is the decoded content of jmake.toml.
type Manifest struct {
	Path   string
	Root   string
	Config ManifestConfig
}

type ManifestConfig struct {
	Layout  LayoutConfig  `toml:"layout"`
	Run     RunConfig     `toml:"run"`
	Compile CompileConfig `toml:"compile"`

	// defined tracks which [layout] keys were present so that an empty
	// list can be told apart from a missing one.
	defined map[string]bool
}

type LayoutConfig struct {
	SourceRoots []string `toml:"source_roots"`
	Output      string   `toml:"output"`
	Libraries   []string `toml:"libraries"`
}

type RunConfig struct {
	Main string   `toml:"main"`
	Args []string `toml:"args"`
}

type CompileConfig struct {
	Flags []string `toml:"flags"`
}

// HasLayoutKey reports whether [layout].key was written in the manifest.
func (c ManifestConfig) HasLayoutKey(key string) bool {
	return c.defined[key]
}

// LoadManifest reads <root>/jmake.toml. The boolean is false when the file does not exist.
func LoadManifest(root string) (*Manifest, bool, error) {
	path := filepath.Join(root, ManifestFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	cfg, err := loadManifestConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: root, Config: cfg}, true, nil
}

func loadManifestConfig(path string) (ManifestConfig, error) {
	var cfg ManifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return ManifestConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return ManifestConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.defined = make(map[string]bool, 3)
	for _, key := range []string{"source_roots", "output", "libraries"} {
		cfg.defined[key] = meta.IsDefined("layout", key)
	}
	if cfg.defined["source_roots"] {
		for _, r := range cfg.Layout.SourceRoots {
			if strings.TrimSpace(r) == "" {
				return ManifestConfig{}, fmt.Errorf("%s: [layout].source_roots contains an empty entry", path)
			}
		}
	}
	if cfg.defined["output"] && strings.TrimSpace(cfg.Layout.Output) == "" {
		return ManifestConfig{}, fmt.Errorf("%s: [layout].output is empty", path)
	}
	if meta.IsDefined("run", "main") && strings.TrimSpace(cfg.Run.Main) == "" {
		return ManifestConfig{}, fmt.Errorf("%s: [run].main is empty", path)
	}
	return cfg, nil
}
