package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoneforge/bgen/util"
)

func writeProjectFile(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, util.ProjectFileName), []byte(content), 0664))
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "name: tutorial\nversion: 1.0.0\nbackend: make\n")

	proj, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "tutorial", proj.Name)
	assert.Equal(t, "1.0.0", proj.Version)
	assert.Equal(t, "make", proj.Backend)
	assert.Equal(t, "BUILD.hcl", proj.BuildFile)
	assert.Equal(t, "tutorial-1.0.0", proj.ArchiveName())
}

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "name: tutorial\n")

	proj, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "", proj.Backend)
	assert.Equal(t, "BUILD.hcl", proj.BuildFile)
	assert.Equal(t, "tutorial", proj.ArchiveName())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "name: [unterminated\n")

	_, err := Load(root)
	require.Error(t, err)
}

func TestLoadRejectsMissingName(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "version: 1.0.0\n")

	_, err := Load(root)
	require.Error(t, err)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "name: tutorial\nbuildfiles: [a, b]\n")

	_, err := Load(root)
	require.Error(t, err)
}

func TestLoadRejectsInvalidVersion(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "name: tutorial\nversion: snapshot\n")

	_, err := Load(root)
	require.Error(t, err)
}
