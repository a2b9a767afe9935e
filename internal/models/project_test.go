package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectStatusGraph(t *testing.T) {
	p := &Project{Status: ProjectPrototype}
	assert.True(t, p.CanTransitionTo(ProjectNew))
	assert.False(t, p.CanTransitionTo(ProjectAnalyzed))

	assert.True(t, p.TransitionTo(ProjectNew))
	assert.Equal(t, ProjectNew, p.Status)
	assert.False(t, p.TransitionTo(ProjectInProgress))
}

func TestProjectAnySpecChangeToSpecificationModified(t *testing.T) {
	for _, s := range []ProjectStatus{ProjectAnalyzed, ProjectInProgress, ProjectCompleted, ProjectFailed} {
		p := &Project{Status: s}
		assert.True(t, p.CanTransitionTo(ProjectSpecificationModified), "status %s should allow spec change", s)
	}
}

func TestProjectHasOutputDir(t *testing.T) {
	p := &Project{Status: ProjectPrototype}
	assert.False(t, p.HasOutputDir())
	p.Status = ProjectNew
	assert.True(t, p.HasOutputDir())
}

func TestExecutionStateGraph(t *testing.T) {
	p := &Project{Status: ProjectInProgress, ExecutionState: ExecutionRunning}
	assert.True(t, p.CanEnterExecutionState(ExecutionPaused))
	assert.True(t, p.CanEnterExecutionState(ExecutionSuspended))
	assert.True(t, p.CanEnterExecutionState(ExecutionCancelled))

	p.ExecutionState = ExecutionCancelled
	assert.False(t, p.CanEnterExecutionState(ExecutionRunning))
}

func TestExecutionStateForbiddenOnTerminalStatus(t *testing.T) {
	p := &Project{Status: ProjectCompleted, ExecutionState: ExecutionRunning}
	assert.False(t, p.CanEnterExecutionState(ExecutionPaused))
	assert.False(t, p.CanEnterExecutionState(ExecutionSuspended))
}
