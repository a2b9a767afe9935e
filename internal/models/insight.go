package models

import "time"

// FileMetadata tracks what a workspace file is for and which tasks touched
// it, accumulated across every agent that creates or modifies it.
type FileMetadata struct {
	Path            string    `json:"path"`
	Purpose         string    `json:"purpose"`
	Category        string    `json:"category"`
	FirstCreated    time.Time `json:"firstCreated"`
	LastModified    time.Time `json:"lastModified"`
	CreatedByTasks  []string  `json:"createdByTasks"`
	ModifiedByTasks []string  `json:"modifiedByTasks"`
}

// PlanningInsight summarizes one completed (or failed) agent run, recorded
// when the agent unregisters from the Shared Planning Context.
type PlanningInsight struct {
	InsightID       string    `json:"insightId"`
	ProjectID       string    `json:"projectId"`
	TaskID          string    `json:"taskId"`
	AgentType       string    `json:"agentType"`
	Timestamp       time.Time `json:"timestamp"`
	Success         bool      `json:"success"`
	DurationSeconds float64   `json:"durationSeconds"`
	StepCount       int       `json:"stepCount"`
	CompletedSteps  int       `json:"completedSteps"`
	TotalIterations int       `json:"totalIterations"`
	FilesCreated    int       `json:"filesCreated"`
	FilesModified   int       `json:"filesModified"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
}

// ReflectionSignal is a self-reported progress snapshot an agent may emit
// mid-run.
type ReflectionSignal struct {
	Timestamp        time.Time `json:"timestamp"`
	ProgressPercent  int       `json:"progressPercent"` // 0-100
	Confidence       int       `json:"confidence"`      // 0-100
	Decision         string    `json:"decision"`
	Narrative        string    `json:"narrative,omitempty"`
}
