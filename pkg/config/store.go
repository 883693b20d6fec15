package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/mem/pkg/memory"
)

// ErrInvalidConfig is wrapped by every load or validation failure.
var ErrInvalidConfig = errors.New("config: invalid project configuration")

// File is the on-disk shape of .mem/config.yaml.
type File struct {
	Prefix string `yaml:"prefix"`
}

// FileStore persists a project configuration file as YAML.
type FileStore struct {
	path     string
	data     File
	mu       sync.RWMutex
	exists   bool
	modified bool
}

// NewFileStore opens the configuration at path. A missing file is not an
// error; Exists reports false until the first Save.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the file from disk, replacing any unsaved changes.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.data = File{}
		s.exists = false
		s.modified = false
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, s.path, err)
	}
	if f.Prefix != "" && !memory.ValidPrefix(f.Prefix) {
		return fmt.Errorf("%w: %s: prefix %q must match [a-z0-9]+", ErrInvalidConfig, s.path, f.Prefix)
	}

	s.data = f
	s.exists = true
	s.modified = false
	return nil
}

// Save writes the file atomically, creating its directory if needed.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	out, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(out)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	s.exists = true
	s.modified = false
	return nil
}

func (s *FileStore) Prefix() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Prefix
}

// SetPrefix changes the prefix in memory; call Save to persist it.
func (s *FileStore) SetPrefix(prefix string) error {
	if !memory.ValidPrefix(prefix) {
		return fmt.Errorf("%w: prefix %q must match [a-z0-9]+", ErrInvalidConfig, prefix)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Prefix != prefix {
		s.data.Prefix = prefix
		s.modified = true
	}
	return nil
}

// Exists reports whether the file was present at the last Load or Save.
func (s *FileStore) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists
}

// IsModified returns true if the store has unsaved changes.
func (s *FileStore) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

func (s *FileStore) Path() string {
	return s.path
}
