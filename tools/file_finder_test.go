package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestFindModelDirectory(t *testing.T) {
	root := t.TempDir()
	model := filepath.Join(root, "harbour")
	touch(t, filepath.Join(model, ModelDescriptorFile))

	finder := NewStandardFileFinder()

	dir, err := finder.FindModelDirectory(model)
	require.NoError(t, err)
	assert.Equal(t, model, dir)

	dir, err = finder.FindModelDirectory(filepath.Join(model, ModelDescriptorFile))
	require.NoError(t, err)
	assert.Equal(t, model, dir)

	dir, err = finder.FindModelDirectory(root)
	require.NoError(t, err)
	assert.Equal(t, model, dir)
}

func TestFindModelDirectoryErrors(t *testing.T) {
	root := t.TempDir()
	finder := NewStandardFileFinder()

	_, err := finder.FindModelDirectory(root)
	assert.Error(t, err)

	_, err = finder.FindModelDirectory(filepath.Join(root, "missing"))
	assert.True(t, os.IsNotExist(err))

	touch(t, filepath.Join(root, "a", ModelDescriptorFile))
	touch(t, filepath.Join(root, "b", ModelDescriptorFile))
	_, err = finder.FindModelDirectory(root)
	assert.Error(t, err)

	touch(t, filepath.Join(root, "other.json"))
	_, err = finder.FindModelDirectory(filepath.Join(root, "other.json"))
	assert.Error(t, err)
}

func TestFindPointFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ModelDescriptorFile))
	touch(t, filepath.Join(root, "Cell_0_0", "Node_0.bin"))
	touch(t, filepath.Join(root, "Cell_0_0", "Node_0_1.BYTES"))
	touch(t, filepath.Join(root, "Cell_0_0", "cell.json"))

	files, err := NewStandardFileFinder().FindPointFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("Cell_0_0", "Node_0.bin"),
		filepath.Join("Cell_0_0", "Node_0_1.BYTES"),
	}, files)
}
