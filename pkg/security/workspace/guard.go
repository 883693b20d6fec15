// Package workspace provides the boundary checks that keep memory store file
// operations inside the project directory. Entry ids become file names, so
// every path the store touches is resolved and checked here first.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard enforces that resolved paths stay within a root directory.
// The root does not have to exist yet; the memory directory is created
// lazily on the first write.
type Guard struct {
	root string // Absolute, symlink-resolved root
}

// NewGuard creates a guard for the given directory. The path is made absolute
// and cleaned, and symlinks are evaluated for whatever part of it exists.
func NewGuard(root string) (*Guard, error) {
	if root == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}

	return &Guard{root: resolveSymlinks(filepath.Clean(absPath))}, nil
}

// IsWithin reports whether absPath is the root or one of its descendants.
func (g *Guard) IsWithin(absPath string) bool {
	evalPath := resolveSymlinks(absPath)
	return evalPath == g.root ||
		strings.HasPrefix(evalPath+string(filepath.Separator), g.root+string(filepath.Separator))
}

// Join resolves name inside the root and fails if the result escapes it,
// including through a symlink.
func (g *Guard) Join(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid name %q (contains path separator)", name)
	}
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}
	resolved := resolveSymlinks(filepath.Join(g.root, filepath.Clean(name)))
	if resolved == g.root || !g.IsWithin(resolved) {
		return "", fmt.Errorf("path traversal detected for %q", name)
	}
	return resolved, nil
}

// Root returns the absolute path of the guarded directory.
func (g *Guard) Root() string {
	return g.root
}

// resolveSymlinks resolves symlinks in a path, handling non-existent paths
// by resolving the deepest existing ancestor and re-appending the rest.
func resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	var components []string
	currentPath := path
	for {
		if resolved, err := filepath.EvalSymlinks(currentPath); err == nil {
			result := resolved
			for i := len(components) - 1; i >= 0; i-- {
				result = filepath.Join(result, components[i])
			}
			return result
		}

		dir := filepath.Dir(currentPath)
		if dir == currentPath || dir == "." || dir == string(os.PathSeparator) {
			return path
		}

		components = append(components, filepath.Base(currentPath))
		currentPath = dir
	}
}
