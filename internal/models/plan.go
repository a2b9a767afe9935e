package models

import "time"

// KeyPoint is a structured implementation note an agent may attach to a
// Step, grounded on the teacher's Task.KeyPoints field.
type KeyPoint struct {
	Point     string `json:"point,omitempty"`
	Details   string `json:"details,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// WorktreeGroup is organizational metadata only: it groups steps for
// human-readable reporting and is never consulted by the scheduler or the
// dependency analyzer.
type WorktreeGroup struct {
	GroupID     string `json:"groupId"`
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
}

// Metrics records per-step resource consumption.
type Metrics struct {
	IterationsUsed int `json:"iterationsUsed"`
	TokensUsed     int `json:"tokensUsed"`
}

// Step is a single, transactional unit of work with declared file I/O sets.
type Step struct {
	Index       int      `json:"index"` // 1-based
	Title       string   `json:"title"`
	Description string   `json:"description"`

	FilesToCreate []string `json:"filesToCreate"`
	FilesToModify []string `json:"filesToModify"`

	Status      StepStatus `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Output    string     `json:"output,omitempty"`
	Metrics   Metrics    `json:"metrics"`
	KeyPoints []KeyPoint `json:"keyPoints,omitempty"`
}

// ValidateFileSets enforces the invariant that a single step never both
// creates and modifies the same path.
func (s *Step) ValidateFileSets() error {
	modify := make(map[string]bool, len(s.FilesToModify))
	for _, f := range s.FilesToModify {
		modify[f] = true
	}
	for _, f := range s.FilesToCreate {
		if modify[f] {
			return &FileSetOverlapError{Step: s.Index, Path: f}
		}
	}
	return nil
}

// FileSetOverlapError reports a step whose create/modify sets intersect.
type FileSetOverlapError struct {
	Step int
	Path string
}

func (e *FileSetOverlapError) Error() string {
	return "step " + itoa(e.Step) + ": " + e.Path + " listed in both FilesToCreate and FilesToModify"
}

// ExecutionLogEntry is one append-only line in a Plan's execution log.
type ExecutionLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Plan is the ordered list of Steps an agent intends to execute for one
// task, plus the bookkeeping needed to resume or audit that execution.
type Plan struct {
	TaskID          string `json:"taskId"`
	ProjectID       string `json:"projectId"`
	TaskDescription string `json:"taskDescription"`
	PlanFilename    string `json:"planFilename"` // immutable once assigned

	Status            PlanStatus `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CurrentStepIndex  int        `json:"currentStepIndex"`
	ErrorMessage      string     `json:"errorMessage,omitempty"`

	Steps          []Step              `json:"steps"`
	ExecutionLog   []ExecutionLogEntry `json:"executionLog"`
	WorktreeGroups []WorktreeGroup     `json:"worktreeGroups,omitempty"`
}

// CompletedStepsCount returns the number of steps with Status=Completed.
func (p *Plan) CompletedStepsCount() int {
	n := 0
	for _, s := range p.Steps {
		if s.Status == StepCompleted {
			n++
		}
	}
	return n
}

// ProgressPercentage returns completedSteps/totalSteps*100, or 0 for an
// empty plan.
func (p *Plan) ProgressPercentage() float64 {
	if len(p.Steps) == 0 {
		return 0
	}
	return float64(p.CompletedStepsCount()) / float64(len(p.Steps)) * 100
}

// AppendLog appends one execution-log entry with the current time.
func (p *Plan) AppendLog(message string) {
	p.ExecutionLog = append(p.ExecutionLog, ExecutionLogEntry{Timestamp: time.Now(), Message: message})
}

// itoa avoids importing strconv in this small file solely for error text.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
