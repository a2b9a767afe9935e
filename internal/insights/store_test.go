package insights

import (
	"testing"
	"time"

	"github.com/harrison/kobold/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndCrossProjectInsights(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ins := models.PlanningInsight{
		InsightID: "i1", ProjectID: "p1", TaskID: "t1", AgentType: "wyrm",
		Timestamp: time.Now(), Success: true, DurationSeconds: 12.5,
		StepCount: 3, CompletedSteps: 3, TotalIterations: 5,
		FilesCreated: 2, FilesModified: 1,
	}
	require.NoError(t, store.Record(ins))

	all, err := store.CrossProjectInsights()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "i1", all[0].InsightID)
	assert.True(t, all[0].Success)
}

func TestBestPracticesFiltersByAgentTypeAndSuccess(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(models.PlanningInsight{InsightID: "a", AgentType: "wyrm", Success: true, TotalIterations: 2}))
	require.NoError(t, store.Record(models.PlanningInsight{InsightID: "b", AgentType: "wyrm", Success: false, TotalIterations: 1}))
	require.NoError(t, store.Record(models.PlanningInsight{InsightID: "c", AgentType: "drake", Success: true, TotalIterations: 1}))

	best, err := store.BestPractices("wyrm")
	require.NoError(t, err)
	require.Len(t, best, 1)
	assert.Equal(t, "a", best[0].InsightID)
}

func TestRecordUpsert(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ins := models.PlanningInsight{InsightID: "i1", Success: false, TotalIterations: 9}
	require.NoError(t, store.Record(ins))

	ins.Success = true
	ins.TotalIterations = 3
	require.NoError(t, store.Record(ins))

	all, err := store.CrossProjectInsights()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Success)
	assert.Equal(t, 3, all[0].TotalIterations)
}
