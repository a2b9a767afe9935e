// Package scheduler admits agents for execution subject to concurrency,
// circuit, and dependency constraints, then dispatches each dependency
// wave with bounded parallelism. It is grounded on
// internal/executor/wave.go's WaveExecutor.executeWave (semaphore-bounded
// goroutine fan-out, per-task result channel) and internal/executor/graph.go
// for wave ordering, generalized from budget/guard gates into the four
// admission rules of spec §4.9.
package scheduler

import (
	"sync"

	"github.com/harrison/kobold/internal/agenttype"
	"github.com/harrison/kobold/internal/circuit"
	"github.com/harrison/kobold/internal/models"
	"github.com/harrison/kobold/internal/planning"
)

// defaultCaps are the process-wide default per-role parallelism caps,
// overridable per project via SetProjectCap.
var defaultCaps = map[agenttype.Type]int{
	agenttype.Wyrm:          2,
	agenttype.Wyvern:        2,
	agenttype.Drake:         4,
	agenttype.KoboldPlanner: 1,
	agenttype.Kobold:        4,
}

// AdmitReason names the first admission rule that failed, or "" if admitted.
type AdmitReason string

const (
	AdmitOK               AdmitReason = ""
	ReasonCapacity        AdmitReason = "capacity"
	ReasonCircuitOpen     AdmitReason = "circuit_open"
	ReasonDependencyWave  AdmitReason = "dependency_wave"
	ReasonFileInUse       AdmitReason = "file_in_use"
)

// Scheduler tracks active-agent counts per project/role and checks the
// four admission rules of spec §4.9 before allowing a step to start.
type Scheduler struct {
	mu       sync.Mutex
	breaker  *circuit.Breaker
	planning *planning.Context
	caps     map[string]map[agenttype.Type]int // projectID -> role -> cap, overrides defaultCaps
	active   map[string]map[agenttype.Type]int // projectID -> role -> active count
}

// New constructs a Scheduler. breaker and planningCtx may be nil in tests
// that only exercise the capacity rule.
func New(breaker *circuit.Breaker, planningCtx *planning.Context) *Scheduler {
	return &Scheduler{
		breaker:  breaker,
		planning: planningCtx,
		caps:     make(map[string]map[agenttype.Type]int),
		active:   make(map[string]map[agenttype.Type]int),
	}
}

// SetProjectCap overrides the default per-role cap for one project.
func (s *Scheduler) SetProjectCap(projectID string, role agenttype.Type, cap int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.caps[projectID] == nil {
		s.caps[projectID] = make(map[agenttype.Type]int)
	}
	s.caps[projectID][role] = cap
}

func (s *Scheduler) maxParallelLocked(projectID string, role agenttype.Type) int {
	if perProject, ok := s.caps[projectID]; ok {
		if cap, ok := perProject[role]; ok {
			return cap
		}
	}
	if cap, ok := defaultCaps[role]; ok {
		return cap
	}
	return 1
}

func (s *Scheduler) activeCountLocked(projectID string, role agenttype.Type) int {
	if byRole, ok := s.active[projectID]; ok {
		return byRole[role]
	}
	return 0
}

// AdmitStep checks the four admission rules in order and returns the first
// failing reason, or AdmitOK if every rule passes. priorGroupsComplete must
// be computed by the caller from the Step Dependency Analyzer's grouping
// (rule 3: a step's group may start only once every earlier group is
// Completed or Skipped).
func (s *Scheduler) AdmitStep(projectID string, role agenttype.Type, provider string, priorGroupsComplete bool, step models.Step) AdmitReason {
	s.mu.Lock()
	capacityOK := s.activeCountLocked(projectID, role) < s.maxParallelLocked(projectID, role)
	s.mu.Unlock()
	if !capacityOK {
		return ReasonCapacity
	}

	if s.breaker != nil && !s.breaker.CanRetry(provider) {
		return ReasonCircuitOpen
	}

	if !priorGroupsComplete {
		return ReasonDependencyWave
	}

	if s.planning != nil {
		for _, f := range append(append([]string{}, step.FilesToCreate...), step.FilesToModify...) {
			if s.planning.IsFileInUse(projectID, f) {
				return ReasonFileInUse
			}
		}
	}

	return AdmitOK
}

// Acquire increments the active count for (project, role). Callers must
// call Release when the step's agent terminates.
func (s *Scheduler) Acquire(projectID string, role agenttype.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[projectID] == nil {
		s.active[projectID] = make(map[agenttype.Type]int)
	}
	s.active[projectID][role]++
}

// Release decrements the active count for (project, role); a no-op below zero.
func (s *Scheduler) Release(projectID string, role agenttype.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[projectID] == nil || s.active[projectID][role] <= 0 {
		return
	}
	s.active[projectID][role]--
}

// ActiveCount reports the current active-agent count for (project, role).
func (s *Scheduler) ActiveCount(projectID string, role agenttype.Type) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeCountLocked(projectID, role)
}
