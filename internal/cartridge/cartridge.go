// Package cartridge resolves the mapping between remote cartridge names and
// their location in the local project tree.
package cartridge

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"b2ctail/internal/config"
)

// Mapping associates a remote cartridge name with its local source directory.
type Mapping struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// RelativePath returns Src with the first occurrence of base removed and any
// leading slash trimmed, using forward slashes.
func (m Mapping) RelativePath(base string) string {
	src := filepath.ToSlash(m.Src)
	if base != "" {
		src = strings.Replace(src, filepath.ToSlash(base), "", 1)
	}
	return strings.TrimPrefix(src, "/")
}

const projectMarker = ".project"

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
}

// Discover walks root and returns one mapping per directory that holds a
// .project marker. The mapping name is the directory name.
func Discover(root string) ([]Mapping, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("discover cartridges: empty root")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("discover cartridges: %w", err)
	}

	var mappings []Mapping
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == absRoot {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip && path != absRoot {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() != projectMarker {
			return nil
		}
		dir := filepath.Dir(path)
		mappings = append(mappings, Mapping{Name: filepath.Base(dir), Src: dir})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover cartridges in %s: %w", absRoot, err)
	}
	return mappings, nil
}

// FromConfig returns the explicit mappings declared in [project], or the
// discovered ones when none are declared.
func FromConfig(cfg *config.Config) ([]Mapping, error) {
	if cfg == nil {
		return nil, errors.New("cartridge mappings: config is required")
	}
	if len(cfg.Project.Cartridges) > 0 {
		mappings := make([]Mapping, 0, len(cfg.Project.Cartridges))
		for _, entry := range cfg.Project.Cartridges {
			mappings = append(mappings, Mapping{Name: entry.Name, Src: entry.Path})
		}
		return mappings, nil
	}
	return Discover(cfg.Project.Root)
}
