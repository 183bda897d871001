package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCommand_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.db")
	t.Setenv("DENTAL_DATABASE_DRIVER", "sqlite")
	t.Setenv("DENTAL_DATABASE_SQLITE_PATH", path)

	for range 2 {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--products", "3", "--orders", "2", "--rand-seed", "11", "--log-level", "error"})
		require.NoError(t, cmd.Execute())
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSeedCommand_FixturesFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--fixtures", filepath.Join(t.TempDir(), "nope.yaml"), "--log-level", "error"})
		assert.Error(t, cmd.Execute())
	})

	t.Run("invalid document", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(file, []byte("products:\n  - unknown: 1\n"), 0o644))
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--fixtures", file, "--log-level", "error"})
		assert.Error(t, cmd.Execute())
	})
}

func TestSeedCommand_RejectsArguments(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}
