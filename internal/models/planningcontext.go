package models

import "time"

// AgentPlanningContext is the live-registration record for one in-flight
// agent. It lives only in memory: created on RegisterAgent, removed on
// UnregisterAgent.
type AgentPlanningContext struct {
	AgentID        string     `json:"agentId"`
	ProjectID      string     `json:"projectId"`
	TaskID         string     `json:"taskId"`
	AgentType      string     `json:"agentType"`
	StartedAt      time.Time  `json:"startedAt"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Success        *bool      `json:"success,omitempty"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`

	// CurrentStepFiles lists the workspace paths the agent's in-progress
	// step declares (union of FilesToCreate/FilesToModify), used by
	// IsFileInUse/GetFilesInUse.
	CurrentStepFiles []string `json:"currentStepFiles,omitempty"`
}

// MaxInsightsPerProject bounds ProjectPlanningContext.Insights (spec §3).
const MaxInsightsPerProject = 100

// MaxReflectionsPerTask bounds one task's reflection list (spec §4.7).
const MaxReflectionsPerTask = 50

// ProjectPlanningContext is the per-project coordination state the Shared
// Planning Context persists to {output}/planning-context.json.
type ProjectPlanningContext struct {
	ProjectID          string `json:"projectId"`
	ActiveAgentCount    int    `json:"activeAgentCount"`
	CompletedTasksCount int    `json:"completedTasksCount"`
	FailedTasksCount    int    `json:"failedTasksCount"`

	ActiveAgents map[string]string `json:"activeAgents"` // agentId -> taskId

	Insights []PlanningInsight `json:"insights"`

	FileRegistry map[string]FileMetadata `json:"fileRegistry"`

	ReflectionsByTask map[string][]ReflectionSignal `json:"reflectionsByTask"`

	// LastAccessedAt drives the in-memory LRU eviction across projects; it
	// is not itself persisted to disk (process-local bookkeeping).
	LastAccessedAt time.Time `json:"-"`
}

// NewProjectPlanningContext returns an empty context ready for use.
func NewProjectPlanningContext(projectID string) *ProjectPlanningContext {
	return &ProjectPlanningContext{
		ProjectID:         projectID,
		ActiveAgents:      make(map[string]string),
		FileRegistry:      make(map[string]FileMetadata),
		ReflectionsByTask: make(map[string][]ReflectionSignal),
		LastAccessedAt:    time.Now(),
	}
}

// AppendInsight enforces the FIFO bound on Insights.
func (c *ProjectPlanningContext) AppendInsight(ins PlanningInsight) {
	c.Insights = append(c.Insights, ins)
	if len(c.Insights) > MaxInsightsPerProject {
		c.Insights = c.Insights[len(c.Insights)-MaxInsightsPerProject:]
	}
}

// AppendReflection enforces the per-task reflection bound, dropping the
// oldest entry first.
func (c *ProjectPlanningContext) AppendReflection(taskID string, r ReflectionSignal) {
	list := append(c.ReflectionsByTask[taskID], r)
	if len(list) > MaxReflectionsPerTask {
		list = list[len(list)-MaxReflectionsPerTask:]
	}
	c.ReflectionsByTask[taskID] = list
}
