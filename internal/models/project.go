package models

// SecurityConfig controls how far a project's tools may reach outside its
// workspace.
type SecurityConfig struct {
	SandboxMode          SandboxMode `yaml:"sandbox_mode" json:"sandboxMode"`
	AllowedExternalPaths []string    `yaml:"allowed_external_paths" json:"allowedExternalPaths"`
}

// RoleAgentConfig configures one role's provider/model and parallelism for a
// project.
type RoleAgentConfig struct {
	MaxParallel int    `yaml:"max_parallel" json:"maxParallel"`
	TimeoutSecs int    `yaml:"timeout" json:"timeout"`
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Provider    string `yaml:"provider,omitempty" json:"provider,omitempty"`
	Model       string `yaml:"model,omitempty" json:"model,omitempty"`
}

// RoleAgentConfigs holds per-role configuration for every admitted role.
type RoleAgentConfigs struct {
	Wyrm          RoleAgentConfig `yaml:"wyrm" json:"wyrm"`
	Wyvern        RoleAgentConfig `yaml:"wyvern" json:"wyvern"`
	Drake         RoleAgentConfig `yaml:"drake" json:"drake"`
	KoboldPlanner RoleAgentConfig `yaml:"koboldPlanner" json:"koboldPlanner"`
	Kobold        RoleAgentConfig `yaml:"kobold" json:"kobold"`
}

// Get returns the configuration for a role, and whether the role is known.
func (c RoleAgentConfigs) Get(role AgentRole) (RoleAgentConfig, bool) {
	switch role {
	case RoleWyrm:
		return c.Wyrm, true
	case RoleWyvern:
		return c.Wyvern, true
	case RoleDrake:
		return c.Drake, true
	case RoleKoboldPlanner:
		return c.KoboldPlanner, true
	case RoleKobold:
		return c.Kobold, true
	default:
		return RoleAgentConfig{}, false
	}
}

// Project is the top-level unit of work: one workspace, one specification,
// one set of agent configurations and security constraints.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"` // sanitized folder name

	SpecificationPath string            `json:"specificationPath"`
	OutputDir         string            `json:"outputDir"`
	AnalysisReport    string            `json:"analysisReport"`
	Areas             map[string]string `json:"areas,omitempty"` // area name -> task-file path

	Status         ProjectStatus    `json:"status"`
	ExecutionState ExecutionState   `json:"executionState"`
	Agents         RoleAgentConfigs `json:"agents"`
	Security       SecurityConfig   `json:"security"`
}

// HasOutputDir reports whether the project has progressed far enough that
// its output directory is required to exist (invariant from spec §3).
func (p *Project) HasOutputDir() bool {
	return p.Status != ProjectPrototype
}

// projectTransitions enumerates the legal ProjectStatus graph from spec §4.9.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectPrototype:             {ProjectNew},
	ProjectNew:                   {ProjectWyrmAssigned},
	ProjectWyrmAssigned:          {ProjectAnalyzed},
	ProjectAnalyzed:              {ProjectInProgress, ProjectSpecificationModified},
	ProjectSpecificationModified: {ProjectWyrmAssigned},
	ProjectInProgress:            {ProjectCompleted, ProjectFailed, ProjectSpecificationModified},
	ProjectCompleted:             {ProjectSpecificationModified},
	ProjectFailed:                {ProjectSpecificationModified},
}

// CanTransitionTo reports whether moving from the project's current status
// to `next` is a legal edge in the status graph.
func (p *Project) CanTransitionTo(next ProjectStatus) bool {
	for _, allowed := range projectTransitions[p.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the project to `next` if legal, returning false
// otherwise. Execution-state transitions are handled separately by
// CanEnterExecutionState since the two dimensions are orthogonal.
func (p *Project) TransitionTo(next ProjectStatus) bool {
	if !p.CanTransitionTo(next) {
		return false
	}
	p.Status = next
	return true
}

// isTerminalStatus reports whether s is Completed or Failed, the statuses
// that forbid Paused/Suspended execution states (spec §4.9).
func isTerminalStatus(s ProjectStatus) bool {
	return s == ProjectCompleted || s == ProjectFailed
}

// CanEnterExecutionState validates the orthogonal execution-state graph:
// Running <-> Paused, Running -> Suspended -> Running, Running -> Cancelled
// (terminal). Completed/Failed projects may not be Paused or Suspended.
func (p *Project) CanEnterExecutionState(next ExecutionState) bool {
	if p.ExecutionState == ExecutionCancelled {
		return false // cancelled is terminal, no resume
	}
	if (next == ExecutionPaused || next == ExecutionSuspended) && isTerminalStatus(p.Status) {
		return false
	}
	switch p.ExecutionState {
	case ExecutionRunning:
		return next == ExecutionPaused || next == ExecutionSuspended || next == ExecutionCancelled || next == ExecutionRunning
	case ExecutionPaused:
		return next == ExecutionRunning
	case ExecutionSuspended:
		return next == ExecutionRunning
	default:
		return false
	}
}
