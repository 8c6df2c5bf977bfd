package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsForCommandStreamDefaults(t *testing.T) {
	flags, err := ParseFlagsForCommandStream([]string{"-i", "model"})
	require.NoError(t, err)

	assert.Equal(t, "model", *flags.Input)
	assert.Equal(t, 400, *flags.Meshes)
	assert.Equal(t, 20, *flags.Jobs)
	assert.Equal(t, 100, *flags.Ticks)
	assert.Equal(t, 500.0, *flags.DistanceThreshold)
	assert.Equal(t, "OSM", *flags.Basemap)
	assert.False(t, *flags.Pick)
}

func TestParseFlagsForCommandStreamShorthands(t *testing.T) {
	flags, err := ParseFlagsForCommandStream([]string{"-m", "12", "-j", "3", "-l", "2.5", "-p", "-from", "1,2,3"})
	require.NoError(t, err)

	assert.Equal(t, 12, *flags.Meshes)
	assert.Equal(t, 3, *flags.Jobs)
	assert.Equal(t, 2.5, *flags.LodFactor)
	assert.True(t, *flags.Pick)
	assert.Equal(t, "1,2,3", *flags.From)
}

func TestConfigFileProvidesDefaults(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "stream.yaml")
	require.NoError(t, os.WriteFile(config, []byte("meshes: 50\njobs: 4\nfrom: [10, 20, 30]\nticks: 7\n"), 0o644))

	flags, err := ParseFlagsForCommandStream([]string{"-config", config, "-j", "9"})
	require.NoError(t, err)

	assert.Equal(t, 50, *flags.Meshes)
	assert.Equal(t, 9, *flags.Jobs, "command line wins over the config file")
	assert.Equal(t, "10,20,30", *flags.From)
	assert.Equal(t, 7, *flags.Ticks)
}

func TestConfigFileUnknownKey(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "inspect.yaml")
	require.NoError(t, os.WriteFile(config, []byte("ticks: 3\n"), 0o644))

	_, err := ParseFlagsForCommandInspect([]string{"-c", config})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticks")
}

func TestConfigFileRejectsMappings(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(config, []byte("input:\n  path: x\n"), 0o644))

	_, err := LoadConfigFile(config)
	assert.Error(t, err)
}

func TestParseFlagsForCommandDecode(t *testing.T) {
	flags, err := ParseFlagsForCommandDecode([]string{"-f", "Node_0.bin"})
	require.NoError(t, err)
	assert.Equal(t, "Node_0.bin", *flags.File)
	assert.Equal(t, "", *flags.Input)
}
