package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDiscoverGoWork(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.work"), "go 1.22\n\nuse (\n\t./svc-a\n\t./svc-b\n)\n")
	writeFile(t, filepath.Join(root, "svc-a", "go.mod"), "module a\n")
	writeFile(t, filepath.Join(root, "svc-b", "go.mod"), "module b\n")

	result, err := DiscoverReferences(root)
	require.NoError(t, err)
	assert.Equal(t, TypeGoWork, result.ProjectType)
	assert.Len(t, result.References, 2)
	for _, r := range result.References {
		assert.False(t, r.IsExternal)
	}
}

func TestDiscoverNPMWorkspaceOnlyWhenDeclared(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name":"root","workspaces":["packages/*"]}`)
	writeFile(t, filepath.Join(root, "packages", "a", "package.json"), `{"name":"a"}`)
	writeFile(t, filepath.Join(root, "packages", "b", "package.json"), `{"name":"b"}`)

	result, err := DiscoverReferences(root)
	require.NoError(t, err)
	assert.Equal(t, TypeNPMWorkspace, result.ProjectType)
	assert.Len(t, result.References, 2)
}

func TestDiscoverNoManifestFallsBackUnknown(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name":"root"}`) // no workspaces key

	result, err := DiscoverReferences(root)
	require.NoError(t, err)
	assert.Equal(t, TypeUnknown, result.ProjectType)
	assert.Empty(t, result.References)
}

func TestDiscoverExternalDirectories(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(root, "root.code-workspace"), `{"folders":[{"path":"`+outside+`"}]}`)

	result, err := DiscoverReferences(root)
	require.NoError(t, err)
	require.Len(t, result.References, 1)
	assert.True(t, result.References[0].IsExternal)
	assert.Contains(t, result.ExternalDirectories, filepath.Clean(outside))
}

func TestDiscoverPriorityOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.sln"), `Project("{GUID}") = "App", "app\app.csproj", "{GUID2}"`)
	writeFile(t, filepath.Join(root, "go.work"), "go 1.22\nuse ./x\n")

	result, err := DiscoverReferences(root)
	require.NoError(t, err)
	assert.Equal(t, TypeSolution, result.ProjectType)
}

func TestDedupeByAbsolutePath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.work"), "go 1.22\nuse (\n\t./x\n\t./x\n)\n")
	result, err := DiscoverReferences(root)
	require.NoError(t, err)
	assert.Len(t, result.References, 1)
}
