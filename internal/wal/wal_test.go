package wal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/kobold/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/plans/task.wal", PathFor("/plans/task.json"))
	assert.Equal(t, "noext.wal", PathFor("noext"))
}

func TestAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	w := New(filepath.Join(dir, "task.json"))

	e1 := models.WalEntry{Timestamp: time.Now(), TaskID: "t1", PreviousStatus: models.PlanPlanning, NewStatus: models.PlanReady}
	e2 := models.WalEntry{Timestamp: time.Now(), TaskID: "t1", PreviousStatus: models.PlanReady, NewStatus: models.PlanInProgress}

	require.NoError(t, w.Append(e1))
	require.NoError(t, w.Append(e2))

	entries, warnings, err := w.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, entries, 2)
	assert.Equal(t, models.PlanReady, entries[0].NewStatus)
	assert.Equal(t, models.PlanInProgress, entries[1].NewStatus)
}

func TestReadAllMissingFile(t *testing.T) {
	dir := t.TempDir()
	w := New(filepath.Join(dir, "task.json"))

	entries, warnings, err := w.ReadAll()
	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Nil(t, warnings)
}

func TestReadAllSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "task.wal")
	require.NoError(t, writeRaw(path, "not json\n{\"taskId\":\"t1\",\"newStatus\":\"ready\"}\n"))

	w := New(filepath.Join(dir, "task.json"))
	entries, warnings, err := w.ReadAll()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Len(t, warnings, 1)
}

func TestCheckpointDeletesFile(t *testing.T) {
	dir := t.TempDir()
	w := New(filepath.Join(dir, "task.json"))

	require.NoError(t, w.Append(models.WalEntry{TaskID: "t1", NewStatus: models.PlanReady}))

	has, err := w.HasUncommittedChanges()
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, w.Checkpoint())

	has, err = w.HasUncommittedChanges()
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCheckpointOnMissingFileIsNoop(t *testing.T) {
	dir := t.TempDir()
	w := New(filepath.Join(dir, "task.json"))
	assert.NoError(t, w.Checkpoint())
}

func TestApplyIdempotent(t *testing.T) {
	entries := []models.WalEntry{
		{NewStatus: models.PlanReady},
		{NewStatus: models.PlanReady}, // duplicate, already applied
		{NewStatus: models.PlanInProgress},
	}
	final := ApplyIdempotent(models.PlanPlanning, entries)
	assert.Equal(t, models.PlanInProgress, final)
}

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
