// Package planstore implements the per-project persistent Plan Store: plan
// JSON + index + markdown rendering + conversation checkpoints, all written
// through internal/filelock (adapted from internal/filelock/filelock.go
// as used by the teacher's plan persistence). All writes route through a
// per-store mutex, generalizing the teacher's per-project-mutex approach to
// JSON round-tripped state rather than the teacher's input-format plans.
package planstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/harrison/kobold/internal/filelock"
	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/models"
)

const plansDirName = "kobold-plans"
const maxCheckpointMessages = 50

// Store persists Plans and ConversationCheckpoints for one project's output
// directory tree (one Store per project, callers keyed by projectId).
type Store struct {
	mu        sync.Mutex
	outputDir string
}

// New returns a Store rooted at outputDir (a project's configured output
// directory).
func New(outputDir string) *Store {
	return &Store{outputDir: outputDir}
}

func (s *Store) plansDir() string {
	return filepath.Join(s.outputDir, plansDirName)
}

func (s *Store) indexPath() string {
	return filepath.Join(s.plansDir(), "plan-index.json")
}

func (s *Store) planJSONPath(filename string) string {
	return filepath.Join(s.plansDir(), filename+"-plan.json")
}

func (s *Store) planMDPath(filename string) string {
	return filepath.Join(s.plansDir(), filename+"-plan.md")
}

func (s *Store) contextPath(filename string) string {
	return filepath.Join(s.plansDir(), filename+"-context.json")
}

func (s *Store) readIndexLocked() (map[string]string, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, kerrors.NewPersistenceError("plan_index_read", s.indexPath(), err)
	}
	var idx map[string]string
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, kerrors.NewPersistenceError("plan_index_read", s.indexPath(), err)
	}
	return idx, nil
}

func (s *Store) writeIndexLocked(idx map[string]string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return kerrors.NewPersistenceError("plan_index_write", s.indexPath(), err)
	}
	if err := filelock.LockAndWrite(s.indexPath(), data); err != nil {
		return kerrors.NewPersistenceError("plan_index_write", s.indexPath(), err)
	}
	return nil
}

// Save writes the plan's JSON and Markdown representations and updates the
// index, bumping UpdatedAt. If PlanFilename is unset, it is generated and
// fixed for the lifetime of the plan.
func (s *Store) Save(plan *models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if plan.PlanFilename == "" {
		plan.PlanFilename = GeneratePlanFilename(plan.TaskDescription, plan.TaskID)
	}
	plan.UpdatedAt = time.Now()

	jsonData, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return kerrors.NewPersistenceError("plan_save", plan.PlanFilename, err)
	}
	if err := filelock.LockAndWrite(s.planJSONPath(plan.PlanFilename), jsonData); err != nil {
		return kerrors.NewPersistenceError("plan_save", plan.PlanFilename, err)
	}

	md := RenderMarkdown(plan)
	if err := validateRenderedMarkdown(md); err != nil {
		return kerrors.NewPersistenceError("plan_save", plan.PlanFilename, err)
	}
	if err := filelock.LockAndWrite(s.planMDPath(plan.PlanFilename), []byte(md)); err != nil {
		return kerrors.NewPersistenceError("plan_save", plan.PlanFilename, err)
	}

	idx, err := s.readIndexLocked()
	if err != nil {
		return err
	}
	idx[plan.TaskID] = plan.PlanFilename
	return s.writeIndexLocked(idx)
}

// Load reads a plan by projectId+taskId. projectId is accepted for
// interface symmetry with the Shared Planning Context but is not part of
// the on-disk path, since a Store is already scoped to one project.
func (s *Store) Load(projectID, taskID string) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.readIndexLocked()
	if err != nil {
		return nil, err
	}
	filename, ok := idx[taskID]
	if !ok {
		return nil, kerrors.NewPersistenceError("plan_load", taskID, os.ErrNotExist)
	}

	data, err := os.ReadFile(s.planJSONPath(filename))
	if err != nil {
		return nil, kerrors.NewPersistenceError("plan_load", filename, err)
	}
	var plan models.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, kerrors.NewPersistenceError("plan_load", filename, err)
	}
	plan.ProjectID = projectID
	return &plan, nil
}

// Exists reports whether a plan is registered for taskId.
func (s *Store) Exists(projectID, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.readIndexLocked()
	if err != nil {
		return false, err
	}
	_, ok := idx[taskID]
	return ok, nil
}

// Delete removes a plan's JSON, Markdown, and index entry.
func (s *Store) Delete(projectID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.readIndexLocked()
	if err != nil {
		return err
	}
	filename, ok := idx[taskID]
	if !ok {
		return nil
	}
	delete(idx, taskID)
	if err := s.writeIndexLocked(idx); err != nil {
		return err
	}

	_ = os.Remove(s.planJSONPath(filename))
	_ = os.Remove(s.planMDPath(filename))
	return nil
}

// ListForProject scans *-plan.json files on disk and returns parsed plans
// sorted by UpdatedAt descending.
func (s *Store) ListForProject(projectID string) ([]*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.plansDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, kerrors.NewPersistenceError("plan_list", s.plansDir(), err)
	}

	var plans []*models.Plan
	for _, e := range entries {
		if e.IsDir() || !isPlanJSONFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.plansDir(), e.Name()))
		if err != nil {
			continue
		}
		var plan models.Plan
		if err := json.Unmarshal(data, &plan); err != nil {
			continue
		}
		plan.ProjectID = projectID
		plans = append(plans, &plan)
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].UpdatedAt.After(plans[j].UpdatedAt) })
	return plans, nil
}

func isPlanJSONFile(name string) bool {
	const suffix = "-plan.json"
	return len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix
}

// SaveConversationCheckpoint trims messages to the most recent 50 and
// persists the checkpoint for plan.
func (s *Store) SaveConversationCheckpoint(plan *models.Plan, messages []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if plan.PlanFilename == "" {
		return kerrors.NewConfigError("missing_plan_filename", "cannot save checkpoint before plan is saved")
	}

	if len(messages) > maxCheckpointMessages {
		messages = messages[len(messages)-maxCheckpointMessages:]
	}

	cp := models.ConversationCheckpoint{
		TaskID:    plan.TaskID,
		ProjectID: plan.ProjectID,
		StepIndex: plan.CurrentStepIndex,
		SavedAt:   time.Now(),
		Messages:  messages,
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return kerrors.NewPersistenceError("checkpoint_save", plan.PlanFilename, err)
	}
	if err := filelock.LockAndWrite(s.contextPath(plan.PlanFilename), data); err != nil {
		return kerrors.NewPersistenceError("checkpoint_save", plan.PlanFilename, err)
	}
	return nil
}

// LoadConversationCheckpoint loads a task's persisted checkpoint.
func (s *Store) LoadConversationCheckpoint(projectID, taskID string) (*models.ConversationCheckpoint, error) {
	s.mu.Lock()
	idx, err := s.readIndexLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	filename, ok := idx[taskID]
	s.mu.Unlock()
	if !ok {
		return nil, kerrors.NewPersistenceError("checkpoint_load", taskID, os.ErrNotExist)
	}

	data, err := os.ReadFile(s.contextPath(filename))
	if err != nil {
		return nil, kerrors.NewPersistenceError("checkpoint_load", filename, err)
	}
	var cp models.ConversationCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, kerrors.NewPersistenceError("checkpoint_load", filename, err)
	}
	return &cp, nil
}

// RestoreConversation returns the checkpoint's messages in their persisted
// order, ready to seed a resumed conversation.
func RestoreConversation(cp *models.ConversationCheckpoint) []models.Message {
	if cp == nil {
		return nil
	}
	return cp.Messages
}
