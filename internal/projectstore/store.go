// Package projectstore maintains the `<projectsDir>/projects.json`
// registry: the list of known Projects, with paths stored in portable
// `./…` form when they live under projectsDir and absolute otherwise, per
// spec §6. Persistence is guarded by a single mutex (spec §5: "Project
// repository (stored projects list): single mutex protecting load/save"),
// grounded on the filelock+atomic-write discipline shared with the Plan
// Store and WAL.
package projectstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/harrison/kobold/internal/filelock"
	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/models"
)

const registryFileName = "projects.json"

// Store is the single-mutex-guarded registry of Projects under projectsDir.
type Store struct {
	mu          sync.Mutex
	projectsDir string
}

// New returns a Store rooted at projectsDir.
func New(projectsDir string) *Store {
	return &Store{projectsDir: projectsDir}
}

func (s *Store) registryPath() string {
	return filepath.Join(s.projectsDir, registryFileName)
}

// Portable converts an absolute path to `./…` form when it lives under
// projectsDir, else returns it unchanged (absolute).
func Portable(projectsDir, path string) string {
	rel, err := filepath.Rel(projectsDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return "./" + filepath.ToSlash(rel)
}

// Resolve expands a portable `./…` path back to an absolute path rooted
// at projectsDir; an already-absolute path is returned unchanged.
func Resolve(projectsDir, stored string) string {
	if strings.HasPrefix(stored, "./") || strings.HasPrefix(stored, "../") {
		return filepath.Join(projectsDir, stored)
	}
	return stored
}

func (s *Store) toPortable(p models.Project) models.Project {
	p.SpecificationPath = Portable(s.projectsDir, p.SpecificationPath)
	p.OutputDir = Portable(s.projectsDir, p.OutputDir)
	if p.AnalysisReport != "" {
		p.AnalysisReport = Portable(s.projectsDir, p.AnalysisReport)
	}
	return p
}

func (s *Store) toResolved(p models.Project) models.Project {
	p.SpecificationPath = Resolve(s.projectsDir, p.SpecificationPath)
	p.OutputDir = Resolve(s.projectsDir, p.OutputDir)
	if p.AnalysisReport != "" {
		p.AnalysisReport = Resolve(s.projectsDir, p.AnalysisReport)
	}
	return p
}

func (s *Store) readLocked() ([]models.Project, error) {
	data, err := os.ReadFile(s.registryPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, kerrors.NewPersistenceError("projectstore_read", s.registryPath(), err)
	}

	var stored []models.Project
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, kerrors.NewPersistenceError("projectstore_decode", s.registryPath(), err)
	}

	out := make([]models.Project, 0, len(stored))
	for _, p := range stored {
		out = append(out, s.toResolved(p))
	}
	return out, nil
}

func (s *Store) writeLocked(projects []models.Project) error {
	portable := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		portable = append(portable, s.toPortable(p))
	}
	data, err := json.MarshalIndent(portable, "", "  ")
	if err != nil {
		return kerrors.NewPersistenceError("projectstore_encode", s.registryPath(), err)
	}
	if err := os.MkdirAll(s.projectsDir, 0755); err != nil {
		return kerrors.NewPersistenceError("projectstore_mkdir", s.projectsDir, err)
	}
	if err := filelock.LockAndWrite(s.registryPath(), data); err != nil {
		return kerrors.NewPersistenceError("projectstore_write", s.registryPath(), err)
	}
	return nil
}

// List returns every registered project, sorted by ID for stable output.
func (s *Store) List() ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

// Get returns one project by ID.
func (s *Store) Get(id string) (models.Project, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.readLocked()
	if err != nil {
		return models.Project{}, false, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, true, nil
		}
	}
	return models.Project{}, false, nil
}

// Upsert inserts or replaces a project by ID.
func (s *Store) Upsert(p models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.readLocked()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range projects {
		if existing.ID == p.ID {
			projects[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		projects = append(projects, p)
	}
	return s.writeLocked(projects)
}

// Delete removes a project by ID; a no-op if it isn't registered.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.readLocked()
	if err != nil {
		return err
	}

	out := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return s.writeLocked(out)
}
