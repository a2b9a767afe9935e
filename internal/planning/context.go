// Package planning implements the Shared Planning Context: in-memory,
// thread-safe coordination state per project (active agents, file-in-use
// tracking, insights, reflections), persisted to
// {output}/planning-context.json. Grounded on the teacher's
// internal/learning/store.go for the shape of aggregated insight records,
// and on the general in-memory-map-plus-persist style of
// internal/executor/orchestrator.go.
package planning

import (
	"encoding/json"
	"math"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/harrison/kobold/internal/filelock"
	"github.com/harrison/kobold/internal/insights"
	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/models"
)

const maxCachedProjects = 50

// PlanProvider is the narrow view of the Plan Store the planning context
// needs for GetRelatedPlans: list every plan for a project.
type PlanProvider interface {
	ListForProject(projectID string) ([]*models.Plan, error)
}

// Context is the process-wide Shared Planning Context.
type Context struct {
	mu         sync.Mutex
	outputDirs map[string]string
	projects   map[string]*models.ProjectPlanningContext
	plans      PlanProvider

	// liveFiles tracks each active agent's current-step files, keyed by
	// projectId then agentId. It mirrors in-flight conversation state, not
	// durable fact, so it is not part of the persisted
	// ProjectPlanningContext shape.
	liveFiles map[string]map[string][]string

	// insightsStore, when set, backs GetCrossProjectInsights/GetBestPractices
	// with the durable SQLite index instead of the LRU-bounded in-memory
	// project cache, so an insight survives eviction from c.projects.
	insightsStore *insights.Store
}

// New constructs an empty Context. plans supplies stored plans for
// GetRelatedPlans; each project's output directory (where
// planning-context.json is persisted) is registered separately with
// RegisterProjectOutputDir.
func New(plans PlanProvider) *Context {
	return &Context{
		outputDirs: make(map[string]string),
		projects:   make(map[string]*models.ProjectPlanningContext),
		plans:      plans,
	}
}

// SetInsightsStore wires a durable cross-project insight index into the
// Context. Record failures are best-effort: the in-memory copy kept on
// ProjectPlanningContext is always the source of truth for a cached
// project, and the store only extends that reach across evictions.
func (c *Context) SetInsightsStore(store *insights.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insightsStore = store
}

// RegisterProjectOutputDir tells the Context where projectId's
// planning-context.json lives.
func (c *Context) RegisterProjectOutputDir(projectID, outputDir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputDirs[projectID] = outputDir
}

func (c *Context) contextPath(projectID string) string {
	dir := c.outputDirs[projectID]
	return filepath.Join(dir, "planning-context.json")
}

// getProjectContextLocked returns projectId's context, loading from disk or
// creating a fresh one if not cached, evicting the LRU entry first if the
// cache is full. Must be called with c.mu held.
func (c *Context) getProjectContextLocked(projectID string) *models.ProjectPlanningContext {
	if pc, ok := c.projects[projectID]; ok {
		pc.LastAccessedAt = time.Now()
		return pc
	}

	if len(c.projects) >= maxCachedProjects {
		c.evictLRULocked()
	}

	pc := c.loadFromDiskLocked(projectID)
	if pc == nil {
		pc = models.NewProjectPlanningContext(projectID)
	}
	pc.LastAccessedAt = time.Now()
	c.projects[projectID] = pc
	return pc
}

// GetProjectContext is the public, locking entry point.
func (c *Context) GetProjectContext(projectID string) *models.ProjectPlanningContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getProjectContextLocked(projectID)
}

func (c *Context) loadFromDiskLocked(projectID string) *models.ProjectPlanningContext {
	path := c.contextPath(projectID)
	if path == string(filepath.Separator) || c.outputDirs[projectID] == "" {
		return nil
	}
	data, err := readFileBestEffort(path)
	if err != nil || data == nil {
		return nil
	}
	var pc models.ProjectPlanningContext
	if err := json.Unmarshal(data, &pc); err != nil {
		return nil
	}
	if pc.ActiveAgents == nil {
		pc.ActiveAgents = make(map[string]string)
	}
	if pc.FileRegistry == nil {
		pc.FileRegistry = make(map[string]models.FileMetadata)
	}
	if pc.ReflectionsByTask == nil {
		pc.ReflectionsByTask = make(map[string][]models.ReflectionSignal)
	}
	return &pc
}

// evictLRULocked persists and removes the least-recently-accessed project
// context. Must be called with c.mu held.
func (c *Context) evictLRULocked() {
	var oldestID string
	var oldestAt time.Time
	first := true
	for id, pc := range c.projects {
		if first || pc.LastAccessedAt.Before(oldestAt) {
			oldestID, oldestAt = id, pc.LastAccessedAt
			first = false
		}
	}
	if oldestID == "" {
		return
	}
	c.persistLocked(c.projects[oldestID])
	delete(c.projects, oldestID)
}

func (c *Context) persistLocked(pc *models.ProjectPlanningContext) error {
	path := c.contextPath(pc.ProjectID)
	if c.outputDirs[pc.ProjectID] == "" {
		return nil // best-effort: no known output dir yet, skip persistence
	}
	data, err := json.MarshalIndent(pc, "", "  ")
	if err != nil {
		return kerrors.NewPersistenceError("planning_context_persist", path, err)
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return kerrors.NewPersistenceError("planning_context_persist", path, err)
	}
	return nil
}

// Persist flushes projectId's context to disk now.
func (c *Context) Persist(projectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc, ok := c.projects[projectID]
	if !ok {
		return nil
	}
	return c.persistLocked(pc)
}

// RegisterAgent records a newly-started agent.
func (c *Context) RegisterAgent(agentID, projectID, taskID, agentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc := c.getProjectContextLocked(projectID)
	pc.ActiveAgents[agentID] = taskID
	pc.ActiveAgentCount = len(pc.ActiveAgents)
}

// UnregisterAgent removes an agent's registration, records a PlanningInsight
// derived from the completed plan, updates file metadata for every file
// touched by a Completed step, enforces the insights bound, and persists.
func (c *Context) UnregisterAgent(agentID, projectID string, success bool, errorMessage string, plan *models.Plan, agentType string, startedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pc := c.getProjectContextLocked(projectID)
	delete(pc.ActiveAgents, agentID)
	pc.ActiveAgentCount = len(pc.ActiveAgents)

	if success {
		pc.CompletedTasksCount++
	} else {
		pc.FailedTasksCount++
	}

	if plan != nil {
		insight := computeInsight(agentID, plan, agentType, success, errorMessage, startedAt)
		pc.AppendInsight(insight)

		if c.insightsStore != nil {
			_ = c.insightsStore.Record(insight)
		}

		for _, step := range plan.Steps {
			if step.Status != models.StepCompleted {
				continue
			}
			updateFileMetadata(pc, plan, step)
		}
	}

	c.persistLocked(pc)
}

func computeInsight(insightID string, plan *models.Plan, agentType string, success bool, errorMessage string, startedAt time.Time) models.PlanningInsight {
	filesCreated, filesModified, iterations := 0, 0, 0
	completed := 0
	for _, s := range plan.Steps {
		filesCreated += len(s.FilesToCreate)
		filesModified += len(s.FilesToModify)
		iterations += s.Metrics.IterationsUsed
		if s.Status == models.StepCompleted {
			completed++
		}
	}
	return models.PlanningInsight{
		InsightID:       insightID,
		ProjectID:       plan.ProjectID,
		TaskID:          plan.TaskID,
		AgentType:       agentType,
		Timestamp:       time.Now(),
		Success:         success,
		DurationSeconds: time.Since(startedAt).Seconds(),
		StepCount:       len(plan.Steps),
		CompletedSteps:  completed,
		TotalIterations: iterations,
		FilesCreated:    filesCreated,
		FilesModified:   filesModified,
		ErrorMessage:    errorMessage,
	}
}

// inferCategory heuristically names a file's architectural role from its
// base name suffix or a directory segment, matching common layered-app
// conventions.
func inferCategory(path string) string {
	suffixes := []string{"Service", "Controller", "Repository", "Factory", "Handler", "Provider", "Model", "Test"}
	base := filepath.Base(path)
	for _, suf := range suffixes {
		if hasCaseInsensitiveSuffix(stripExt(base), suf) {
			return suf
		}
	}
	for _, seg := range splitPathSegments(path) {
		for _, suf := range suffixes {
			if equalFold(seg, suf) || equalFold(seg, suf+"s") {
				return suf
			}
		}
	}
	return "Other"
}

func updateFileMetadata(pc *models.ProjectPlanningContext, plan *models.Plan, step models.Step) {
	purpose := step.Title
	if purpose == "" {
		purpose = plan.TaskDescription
	}
	now := time.Now()

	for _, f := range step.FilesToCreate {
		meta, ok := pc.FileRegistry[f]
		if !ok {
			meta = models.FileMetadata{Path: f, FirstCreated: now, Category: inferCategory(f)}
		}
		meta.Purpose = purpose
		meta.LastModified = now
		meta.CreatedByTasks = appendUnique(meta.CreatedByTasks, plan.TaskID)
		pc.FileRegistry[f] = meta
	}
	for _, f := range step.FilesToModify {
		meta, ok := pc.FileRegistry[f]
		if !ok {
			meta = models.FileMetadata{Path: f, FirstCreated: now, Category: inferCategory(f)}
		}
		meta.Purpose = purpose
		meta.LastModified = now
		meta.ModifiedByTasks = appendUnique(meta.ModifiedByTasks, plan.TaskID)
		pc.FileRegistry[f] = meta
	}
}

// UpdateAgentActivity refreshes lastActivityAt tracking for an agent. Since
// AgentPlanningContext records are not retained in ProjectPlanningContext
// directly (only the agentId->taskId map is), this is a best-effort no-op
// hook kept for interface completeness unless a caller maintains its own
// AgentPlanningContext records (see GetActiveAgents).
func (c *Context) UpdateAgentActivity(projectID, agentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.getProjectContextLocked(projectID) // touches LastAccessedAt
}

// GetActiveAgents returns a copy of projectId's agentId -> taskId map of
// active agents.
func (c *Context) GetActiveAgents(projectID string) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc := c.getProjectContextLocked(projectID)
	out := make(map[string]string, len(pc.ActiveAgents))
	for k, v := range pc.ActiveAgents {
		out[k] = v
	}
	return out
}

// RelatedPlan is one scored result from GetRelatedPlans.
type RelatedPlan struct {
	Plan  *models.Plan
	Score float64
}

// GetRelatedPlans returns the top 5 stored plans (excluding currentTaskId)
// whose status is Completed or InProgress and whose file sets intersect
// files, scored by 10*|overlap| + 1/(1+hoursSinceUpdate).
func (c *Context) GetRelatedPlans(projectID, currentTaskID string, files []string) ([]RelatedPlan, error) {
	if c.plans == nil {
		return nil, nil
	}
	plans, err := c.plans.ListForProject(projectID)
	if err != nil {
		return nil, err
	}

	fileSet := make(map[string]bool, len(files))
	for _, f := range files {
		fileSet[f] = true
	}

	var scored []RelatedPlan
	for _, p := range plans {
		if p.TaskID == currentTaskID {
			continue
		}
		if p.Status != models.PlanCompleted && p.Status != models.PlanInProgress {
			continue
		}
		overlap := 0
		for _, s := range p.Steps {
			for _, f := range s.FilesToCreate {
				if fileSet[f] {
					overlap++
				}
			}
			for _, f := range s.FilesToModify {
				if fileSet[f] {
					overlap++
				}
			}
		}
		if overlap == 0 {
			continue
		}
		hours := time.Since(p.UpdatedAt).Hours()
		score := 10*float64(overlap) + 1/(1+math.Max(hours, 0))
		scored = append(scored, RelatedPlan{Plan: p, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > 5 {
		scored = scored[:5]
	}
	return scored, nil
}

// IsFileInUse reports whether any active agent's current-step files include
// path.
func (c *Context) IsFileInUse(projectID, path string) bool {
	for _, f := range c.GetFilesInUse(projectID) {
		if f == path {
			return true
		}
	}
	return false
}

// GetFilesInUse returns the union of every active agent's current-step
// files for a project. Agent-level file tracking is out of
// ProjectPlanningContext's persisted shape, so this reads from the
// in-memory per-agent file map that SetAgentFiles fills.
func (c *Context) GetFilesInUse(projectID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool)
	for _, files := range c.agentFilesLocked(projectID) {
		for _, f := range files {
			seen[f] = true
		}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (c *Context) agentFilesLocked(projectID string) map[string][]string {
	if c.liveFiles == nil {
		return nil
	}
	return c.liveFiles[projectID]
}

// SetAgentFiles records the files an agent's current step declares, for
// IsFileInUse/GetFilesInUse.
func (c *Context) SetAgentFiles(projectID, agentID string, files []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.liveFiles == nil {
		c.liveFiles = make(map[string]map[string][]string)
	}
	if c.liveFiles[projectID] == nil {
		c.liveFiles[projectID] = make(map[string][]string)
	}
	c.liveFiles[projectID][agentID] = files
}

// RecordReflection appends a reflection to taskId's list, capping at 50 and
// dropping the oldest.
func (c *Context) RecordReflection(projectID, taskID string, r models.ReflectionSignal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc := c.getProjectContextLocked(projectID)
	pc.AppendReflection(taskID, r)
}

// ProjectStatistics aggregates over a project's insights.
type ProjectStatistics struct {
	TotalInsights      int
	SuccessCount       int
	FailureCount       int
	AverageDuration    float64
	TotalFilesCreated  int
	TotalFilesModified int
}

// GetProjectStatistics aggregates over a project's stored insights.
func (c *Context) GetProjectStatistics(projectID string) ProjectStatistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc := c.getProjectContextLocked(projectID)

	var stats ProjectStatistics
	var totalDuration float64
	for _, ins := range pc.Insights {
		stats.TotalInsights++
		if ins.Success {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
		totalDuration += ins.DurationSeconds
		stats.TotalFilesCreated += ins.FilesCreated
		stats.TotalFilesModified += ins.FilesModified
	}
	if stats.TotalInsights > 0 {
		stats.AverageDuration = totalDuration / float64(stats.TotalInsights)
	}
	return stats
}

// GetCrossProjectInsights returns every recorded insight across all
// projects. When a durable insightsStore is wired it is the source of
// truth, since the in-memory c.projects cache is LRU-bounded and silently
// drops evicted projects; otherwise this falls back to scanning whatever
// projects are currently cached.
func (c *Context) GetCrossProjectInsights() []models.PlanningInsight {
	c.mu.Lock()
	store := c.insightsStore
	c.mu.Unlock()

	if store != nil {
		if all, err := store.CrossProjectInsights(); err == nil {
			return all
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var all []models.PlanningInsight
	for _, pc := range c.projects {
		all = append(all, pc.Insights...)
	}
	return all
}

// GetBestPractices returns successful insights for agentType (or every
// agent type when empty), sorted by fewest iterations used (a proxy for an
// efficient approach). Prefers the durable insightsStore when wired, for
// the same reason as GetCrossProjectInsights.
func (c *Context) GetBestPractices(agentType string) []models.PlanningInsight {
	c.mu.Lock()
	store := c.insightsStore
	c.mu.Unlock()

	if store != nil {
		if best, err := store.BestPractices(agentType); err == nil {
			return best
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var best []models.PlanningInsight
	for _, pc := range c.projects {
		for _, ins := range pc.Insights {
			if ins.Success && (agentType == "" || ins.AgentType == agentType) {
				best = append(best, ins)
			}
		}
	}
	sort.Slice(best, func(i, j int) bool { return best[i].TotalIterations < best[j].TotalIterations })
	return best
}
