package projectstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/kobold/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortableAndResolveRoundTrip(t *testing.T) {
	dir := "/home/user/projects"
	inside := filepath.Join(dir, "demo", "output")
	outside := "/var/data/demo"

	assert.Equal(t, "./demo/output", Portable(dir, inside))
	assert.Equal(t, outside, Portable(dir, outside))

	assert.Equal(t, inside, Resolve(dir, "./demo/output"))
	assert.Equal(t, outside, Resolve(dir, outside))
}

func TestUpsertGetListDelete(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	p := models.Project{ID: "p1", Name: "Demo", OutputDir: filepath.Join(dir, "p1", "out")}
	require.NoError(t, store.Upsert(p))

	got, ok, err := store.Get("p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.OutputDir, got.OutputDir)

	p.Name = "Demo Renamed"
	require.NoError(t, store.Upsert(p))
	got, _, _ = store.Get("p1")
	assert.Equal(t, "Demo Renamed", got.Name)

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.Delete("p1"))
	_, ok, err = store.Get("p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListOnMissingRegistryReturnsEmpty(t *testing.T) {
	store := New(t.TempDir())
	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoredPathsArePortableOnDisk(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	p := models.Project{ID: "p1", OutputDir: filepath.Join(dir, "p1", "out")}
	require.NoError(t, store.Upsert(p))

	data, err := filepath.Glob(filepath.Join(dir, "projects.json"))
	require.NoError(t, err)
	require.Len(t, data, 1)

	raw, err := os.ReadFile(data[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"./p1/out"`)
}
