package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePrefix(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"dash segments", "my-cool-project", "mcp"},
		{"underscore segments", "data_pipeline", "dp"},
		{"mixed separators", "Big_fat-Repo", "bfr"},
		{"single segment falls back to first two", "forge", "fo"},
		{"digits kept", "2048-game", "2g"},
		{"punctuation in segment heads dropped", "my-.hidden", "my"},
		{"fallback skips punctuation", "x.y", "xy"},
		{"one usable character", "a", "a"},
		{"leading separators", "--app", "ap"},
		{"nothing usable", "日本", DefaultPrefix},
		{"empty", "", DefaultPrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePrefix(tt.dir))
		})
	}
}

func TestResolveRoot(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		flagDir := t.TempDir()
		t.Setenv(EnvRoot, t.TempDir())

		got, err := ResolveRoot(flagDir)
		require.NoError(t, err)
		assert.Equal(t, flagDir, got)
	})

	t.Run("env beats working directory", func(t *testing.T) {
		envDir := t.TempDir()
		t.Setenv(EnvRoot, envDir)

		got, err := ResolveRoot("")
		require.NoError(t, err)
		assert.Equal(t, envDir, got)
	})

	t.Run("working directory", func(t *testing.T) {
		t.Setenv(EnvRoot, "")
		chdir(t, t.TempDir())
		wd, err := os.Getwd()
		require.NoError(t, err)

		got, err := ResolveRoot("")
		require.NoError(t, err)
		assert.Equal(t, wd, got)
	})

	t.Run("relative flag made absolute", func(t *testing.T) {
		chdir(t, t.TempDir())
		wd, err := os.Getwd()
		require.NoError(t, err)

		got, err := ResolveRoot("sub")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, "sub"), got)
	})
}

func TestLoadProject(t *testing.T) {
	t.Run("derives and persists on first use", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "agent-memory-tool")

		p, err := LoadProject(root)
		require.NoError(t, err)
		assert.Equal(t, "amt", p.Prefix)
		assert.Equal(t, filepath.Join(root, ".mem", "entries"), p.EntriesDir())

		raw, err := os.ReadFile(p.ConfigPath())
		require.NoError(t, err)
		assert.Equal(t, "prefix: amt\n", string(raw))
	})

	t.Run("persisted prefix is never re-derived", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "renamed-later")
		require.NoError(t, os.MkdirAll(filepath.Join(root, DirName), 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(root, DirName, FileName), []byte("prefix: keep\n"), 0o600))

		p, err := LoadProject(root)
		require.NoError(t, err)
		assert.Equal(t, "keep", p.Prefix)
	})

	t.Run("invalid prefix on disk", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, DirName), 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(root, DirName, FileName), []byte("prefix: Not-OK\n"), 0o600))

		_, err := LoadProject(root)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("opens a store with the project prefix", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "my-proj")
		p, err := LoadProject(root)
		require.NoError(t, err)

		store, err := p.OpenStore()
		require.NoError(t, err)
		assert.Equal(t, p.EntriesDir(), store.Dir())
	})
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
