package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/kobold/internal/insights"
	"github.com/harrison/kobold/internal/models"
	"github.com/harrison/kobold/internal/planstore"
	"github.com/harrison/kobold/internal/projectstore"
	"github.com/harrison/kobold/internal/wal"
)

func newTestInsights(t *testing.T) func() (*insights.Store, error) {
	t.Helper()
	dir := t.TempDir()
	return func() (*insights.Store, error) {
		return insights.NewStore(filepath.Join(dir, "insights.db"))
	}
}

func newTestStore(t *testing.T) (*projectstore.Store, models.Project) {
	t.Helper()
	dir := t.TempDir()
	store := projectstore.New(dir)

	project := models.Project{
		ID:        "demo",
		Name:      "Demo",
		OutputDir: filepath.Join(dir, "demo", "out"),
		Status:    models.ProjectInProgress,
		Agents: models.RoleAgentConfigs{
			Kobold: models.RoleAgentConfig{Enabled: true, MaxParallel: 2, Provider: "echo"},
		},
	}
	require.NoError(t, store.Upsert(project))
	return store, project
}

func TestRootCommandRegistersFourSubcommands(t *testing.T) {
	root := NewRootCommand()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["status"])
	assert.True(t, names["resume"])
	assert.True(t, names["inspect"])
}

func TestStatusCommandReportsUnknownProject(t *testing.T) {
	store, _ := newTestStore(t)
	cmd := NewStatusCommand(func() *projectstore.Store { return store })
	cmd.SetArgs([]string{"missing-project"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	err := cmd.Execute()
	require.Error(t, err)
}

func TestStatusCommandReportsKnownProjectWithNoPlans(t *testing.T) {
	store, project := newTestStore(t)
	cmd := NewStatusCommand(func() *projectstore.Store { return store })
	cmd.SetArgs([]string{project.ID})
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Demo")
	assert.Contains(t, out.String(), "(none)")
}

func TestResumeCommandRejectsMissingPlan(t *testing.T) {
	store, project := newTestStore(t)
	cmd := NewResumeCommand(func() *projectstore.Store { return store }, newTestInsights(t))
	cmd.SetArgs([]string{project.ID, "--task", "nope"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	err := cmd.Execute()
	require.Error(t, err)
}

func TestResumeCommandRecoversUncommittedWAL(t *testing.T) {
	store, project := newTestStore(t)

	plans := planstore.New(project.OutputDir)
	plan := &models.Plan{
		TaskID:    "recover-me",
		ProjectID: project.ID,
		Status:    models.PlanInProgress,
		Steps:     []models.Step{{Index: 1, Title: "done already", Status: models.StepCompleted}},
	}
	require.NoError(t, plans.Save(plan))

	taskWAL := wal.New(filepath.Join(project.OutputDir, "kobold-plans", "recover-me-plan.json"))
	require.NoError(t, taskWAL.Append(models.WalEntry{TaskID: "recover-me", PreviousStatus: models.PlanInProgress, NewStatus: models.PlanFailed}))
	uncommitted, err := taskWAL.HasUncommittedChanges()
	require.NoError(t, err)
	require.True(t, uncommitted)

	cmd := NewResumeCommand(func() *projectstore.Store { return store }, newTestInsights(t))
	cmd.SetArgs([]string{project.ID, "--task", "recover-me"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())

	uncommitted, err = taskWAL.HasUncommittedChanges()
	require.NoError(t, err)
	assert.False(t, uncommitted, "resume must checkpoint the WAL once recovered")

	reloaded, err := plans.Load(project.ID, "recover-me")
	require.NoError(t, err)
	assert.Equal(t, models.PlanCompleted, reloaded.Status, "all steps already complete, so the run re-derives Completed regardless of the recovered transient status")
}

func TestRunCommandRequiresTaskFlag(t *testing.T) {
	store, project := newTestStore(t)
	cmd := NewRunCommand(func() *projectstore.Store { return store }, newTestInsights(t))
	cmd.SetArgs([]string{project.ID})
	var out bytes.Buffer
	cmd.SetOut(&out)
	err := cmd.Execute()
	require.Error(t, err)
}
