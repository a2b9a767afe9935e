package planstore

import (
	"testing"

	"github.com/harrison/kobold/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() *models.Plan {
	return &models.Plan{
		TaskID:          "t1",
		ProjectID:       "p1",
		TaskDescription: "Build the login page",
		Status:          models.PlanInProgress,
		Steps: []models.Step{
			{Index: 1, Title: "scaffold", Status: models.StepCompleted, FilesToCreate: []string{"a.go"}},
			{Index: 2, Title: "wire up", Status: models.StepPending, FilesToModify: []string{"b.go"}},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	plan := samplePlan()
	require.NoError(t, store.Save(plan))
	assert.NotEmpty(t, plan.PlanFilename)

	loaded, err := store.Load("p1", "t1")
	require.NoError(t, err)
	assert.Equal(t, plan.TaskID, loaded.TaskID)
	assert.Equal(t, plan.PlanFilename, loaded.PlanFilename)
	assert.Len(t, loaded.Steps, 2)
}

func TestExistsAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	plan := samplePlan()
	require.NoError(t, store.Save(plan))

	exists, err := store.Exists("p1", "t1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete("p1", "t1"))

	exists, err = store.Exists("p1", "t1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListForProjectSortedByUpdatedAtDesc(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	p1 := samplePlan()
	p1.TaskID, p1.TaskDescription = "t1", "first task"
	require.NoError(t, store.Save(p1))

	p2 := samplePlan()
	p2.TaskID, p2.TaskDescription = "t2", "second task"
	require.NoError(t, store.Save(p2))

	plans, err := store.ListForProject("p1")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.False(t, plans[0].UpdatedAt.Before(plans[1].UpdatedAt))
}

func TestSaveConversationCheckpointTrimsTo50(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	plan := samplePlan()
	require.NoError(t, store.Save(plan))

	messages := make([]models.Message, 0, 60)
	for i := 0; i < 60; i++ {
		messages = append(messages, models.Message{Role: models.RoleUser, Content: models.NewTextContent("m")})
	}

	require.NoError(t, store.SaveConversationCheckpoint(plan, messages))

	cp, err := store.LoadConversationCheckpoint("p1", "t1")
	require.NoError(t, err)
	assert.Len(t, cp.Messages, 50)
}

func TestRestoreConversation(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	plan := samplePlan()
	require.NoError(t, store.Save(plan))

	original := []models.Message{
		{Role: models.RoleUser, Content: models.NewTextContent("hi")},
		{Role: models.RoleAssistant, Content: models.NewTextContent("hello")},
	}
	require.NoError(t, store.SaveConversationCheckpoint(plan, original))

	cp, err := store.LoadConversationCheckpoint("p1", "t1")
	require.NoError(t, err)
	restored := RestoreConversation(cp)
	require.Len(t, restored, 2)
	assert.Equal(t, "hi", restored[0].Content.Text())
}
