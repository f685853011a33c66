package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSetValue_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SetValue(path, "ui.mode", "plain"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# SPRS configuration")

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	require.Equal(t, ModePlain, cfg.UI.Mode)
	require.Equal(t, "dark", cfg.UI.MarkdownStyle)
}

func TestSetValue_CreatesMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.yaml")

	require.NoError(t, SetValue(path, "output.format", "json"))
	require.NoError(t, SetValue(path, "debug", "true"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	require.Equal(t, FormatJSON, cfg.Output.Format)
	require.True(t, cfg.Debug)
}

func TestSetValue_InvalidKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.Error(t, SetValue(path, "ui..mode", "plain"))
	require.Error(t, SetValue(path, "", "plain"))
}

func TestSetValue_RejectsNonMappingRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	require.ErrorContains(t, SetValue(path, "ui.mode", "plain"), "mapping")
}

func TestMarshal(t *testing.T) {
	data, err := Marshal(Defaults())
	require.NoError(t, err)
	require.Contains(t, string(data), "mode: tui")
	require.Contains(t, string(data), "format: table")
}
