package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "belenios.yaml"), []byte("workers: 3\nlog-level: warn\n"), 0o644))

	root := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	Bind(root)
	root.SetArgs([]string{"--dir", dir})
	require.NoError(t, root.Execute())

	t.Setenv("BELENIOS_LOG_LEVEL", "debug")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, 3, cfg.Workers)
	// the environment beats the file
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, ElectionFile), cfg.Path(ElectionFile))
	assert.Equal(t, "/abs/file", cfg.Path("/abs/file"))

	grp, err := cfg.LoadGroup()
	require.NoError(t, err)
	assert.Equal(t, 256, grp.Q.BitLen())
}

func TestJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.jsonl")
	require.NoError(t, AppendJSONLine(path, map[string]string{"a": "<1>"}))
	require.NoError(t, AppendJSONLine(path, []int{2}))

	var lines []string
	require.NoError(t, ReadJSONLines(path, func(_ int, data []byte) error {
		lines = append(lines, string(data))
		return nil
	}))
	assert.Equal(t, []string{`{"a":"<1>"}`, `[2]`}, lines)
}

func TestLoadGroupRelativeToDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteJSON(filepath.Join(dir, "group.json"), elgamal.Belenios2048()))

	cfg := &Config{Dir: dir, Group: "group.json"}
	grp, err := cfg.LoadGroup()
	require.NoError(t, err)
	assert.True(t, grp.Equals(elgamal.Belenios2048()))

	cfg.Group = "missing.json"
	_, err = cfg.LoadGroup()
	assert.Error(t, err)
}
