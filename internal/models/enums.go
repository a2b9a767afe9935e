// Package models holds the core entities shared across the orchestrator:
// projects, plans, steps, conversation checkpoints, and the coordination
// state the planning context persists between agent runs.
package models

// ProjectStatus tracks a project through its analysis/execution lifecycle.
type ProjectStatus string

const (
	ProjectPrototype             ProjectStatus = "prototype"
	ProjectNew                   ProjectStatus = "new"
	ProjectWyrmAssigned          ProjectStatus = "wyrm_assigned"
	ProjectAnalyzed              ProjectStatus = "analyzed"
	ProjectSpecificationModified ProjectStatus = "specification_modified"
	ProjectInProgress            ProjectStatus = "in_progress"
	ProjectCompleted             ProjectStatus = "completed"
	ProjectFailed                ProjectStatus = "failed"
)

// ExecutionState is orthogonal to ProjectStatus: it tracks whether the
// scheduler is actively dispatching work for a project.
type ExecutionState string

const (
	ExecutionRunning   ExecutionState = "running"
	ExecutionPaused    ExecutionState = "paused"
	ExecutionSuspended ExecutionState = "suspended"
	ExecutionCancelled ExecutionState = "cancelled"
)

// SandboxMode controls how strictly a project's tools are confined to its
// workspace.
type SandboxMode string

const (
	SandboxWorkspace SandboxMode = "workspace"
	SandboxRelaxed   SandboxMode = "relaxed"
	SandboxStrict    SandboxMode = "strict"
)

// PlanStatus tracks a Plan's progress.
type PlanStatus string

const (
	PlanPlanning   PlanStatus = "planning"
	PlanReady      PlanStatus = "ready"
	PlanInProgress PlanStatus = "in_progress"
	PlanCompleted  PlanStatus = "completed"
	PlanFailed     PlanStatus = "failed"
)

// StepStatus tracks a single Step's progress.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepSkipped    StepStatus = "skipped"
	StepFailed     StepStatus = "failed"
)

// AgentRole names the agent types the scheduler admits, per project.
type AgentRole string

const (
	RoleWyrm          AgentRole = "wyrm"
	RoleWyvern        AgentRole = "wyvern"
	RoleDrake         AgentRole = "drake"
	RoleKoboldPlanner AgentRole = "kobold_planner"
	RoleKobold        AgentRole = "kobold"
)
