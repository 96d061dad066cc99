package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DescriptorName is the filename of the project descriptor.
const DescriptorName = "typst.toml"

// Document is one compilable document declared by a descriptor.
type Document struct {
	Entrypoint string `toml:"entrypoint"`
	RootDir    string `toml:"root_dir"`
}

// Package is publishing metadata. It is parsed for completeness but not
// consumed by the world subsystem.
type Package struct {
	Name       string `toml:"name"`
	Version    string `toml:"version"`
	Entrypoint string `toml:"entrypoint"`
}

// Project is a deserialized typst.toml descriptor.
type Project struct {
	Documents []Document `toml:"document"`
	Package   *Package   `toml:"package"`
}

// Target is one compilation target: an entrypoint file under a root
// directory.
type Target struct {
	RootDir  string
	MainFile string
}

// LoadTargets reads and parses the descriptor in dir and maps its document
// entries to targets. Entrypoints resolve relative to the descriptor's
// directory; a relative root override resolves the same way, defaulting to
// the descriptor's directory when absent.
func LoadTargets(dir string) ([]Target, error) {
	path := filepath.Join(dir, DescriptorName)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var project Project
	if err := toml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	targets := make([]Target, 0, len(project.Documents))
	for _, doc := range project.Documents {
		root := dir
		if doc.RootDir != "" {
			if filepath.IsAbs(doc.RootDir) {
				root = doc.RootDir
			} else {
				root = filepath.Join(dir, doc.RootDir)
			}
		}
		targets = append(targets, Target{
			RootDir:  filepath.Clean(root),
			MainFile: filepath.Join(dir, doc.Entrypoint),
		})
	}
	return targets, nil
}

// FindDescriptor searches dir and its ancestors for a descriptor file and
// returns the first directory containing one.
func FindDescriptor(startDir string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, DescriptorName)); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
