// Package config locates a mem project and loads its configuration record.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/mem/pkg/memory"
)

const (
	// DirName is the per-project state directory under the root.
	DirName = ".mem"
	// EntriesDirName holds one file per entry inside DirName.
	EntriesDirName = "entries"
	// FileName is the configuration record inside DirName.
	FileName = "config.yaml"

	// EnvRoot overrides the working directory as project root.
	EnvRoot = "MEM_ROOT"

	// DefaultPrefix is used when nothing usable can be derived from the root name.
	DefaultPrefix = "mem"
)

// Project is a resolved project root and its persisted configuration.
type Project struct {
	Root   string
	Prefix string
}

// ResolveRoot picks the project root with precedence:
// CLI flag > MEM_ROOT > working directory. The result is absolute.
func ResolveRoot(cliDir string) (string, error) {
	root := cliDir
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root %q: %w", root, err)
	}
	return abs, nil
}

// LoadProject reads root/.mem/config.yaml. On first use the prefix is
// derived from the root's base name and saved, so later runs never
// re-derive it.
func LoadProject(root string) (*Project, error) {
	p := &Project{Root: root}
	store, err := NewFileStore(p.ConfigPath())
	if err != nil {
		return nil, err
	}

	if store.Prefix() == "" {
		if err := store.SetPrefix(DerivePrefix(filepath.Base(root))); err != nil {
			return nil, err
		}
		if err := store.Save(); err != nil {
			return nil, err
		}
	}
	p.Prefix = store.Prefix()
	return p, nil
}

// Dir is root/.mem.
func (p *Project) Dir() string {
	return filepath.Join(p.Root, DirName)
}

func (p *Project) EntriesDir() string {
	return filepath.Join(p.Dir(), EntriesDirName)
}

func (p *Project) ConfigPath() string {
	return filepath.Join(p.Dir(), FileName)
}

// OpenStore returns the entry store for this project, generating ids with
// the project prefix.
func (p *Project) OpenStore() (*memory.FileStore, error) {
	ids, err := memory.NewGenerator(p.Prefix)
	if err != nil {
		return nil, err
	}
	return memory.NewFileStore(p.EntriesDir(), ids)
}

// DerivePrefix builds an id prefix from a directory name: the first
// character of each '-' or '_' separated segment, lowercased, keeping only
// [a-z0-9]. Under two characters it falls back to the first two usable
// characters of the whole name, then to DefaultPrefix.
func DerivePrefix(name string) string {
	name = strings.ToLower(name)

	var sb strings.Builder
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' }) {
		if r := []rune(seg)[0]; isPrefixRune(r) {
			sb.WriteRune(r)
		}
	}
	if sb.Len() >= 2 {
		return sb.String()
	}

	sb.Reset()
	for _, r := range name {
		if !isPrefixRune(r) {
			continue
		}
		sb.WriteRune(r)
		if sb.Len() == 2 {
			break
		}
	}
	if sb.Len() == 0 {
		return DefaultPrefix
	}
	return sb.String()
}

func isPrefixRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
