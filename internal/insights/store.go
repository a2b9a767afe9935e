// Package insights is a small SQLite-backed index of PlanningInsight
// records, adapted from the teacher's internal/learning/store.go
// (//go:embed schema.sql, sql.Open("sqlite3", ...), initSchema). It mirrors
// the Shared Planning Context's in-memory insights for fast cross-project
// aggregation without re-reading every project's planning-context.json.
package insights

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Store manages the SQLite database backing the cross-project insight
// index.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (or creates) the SQLite database at dbPath and applies the
// embedded schema. dbPath may be ":memory:".
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, kerrors.NewPersistenceError("insights_store_open", dbPath, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, kerrors.NewPersistenceError("insights_store_open", dbPath, err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return kerrors.NewPersistenceError("insights_schema_init", s.dbPath, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts or replaces one PlanningInsight.
func (s *Store) Record(ins models.PlanningInsight) error {
	const q = `
INSERT INTO insights
  (insight_id, project_id, task_id, agent_type, timestamp, success,
   duration_seconds, step_count, completed_steps, total_iterations,
   files_created, files_modified, error_message)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(insight_id) DO UPDATE SET
  success=excluded.success, duration_seconds=excluded.duration_seconds,
  completed_steps=excluded.completed_steps, total_iterations=excluded.total_iterations,
  files_created=excluded.files_created, files_modified=excluded.files_modified,
  error_message=excluded.error_message`

	_, err := s.db.Exec(q,
		ins.InsightID, ins.ProjectID, ins.TaskID, ins.AgentType, ins.Timestamp, boolToInt(ins.Success),
		ins.DurationSeconds, ins.StepCount, ins.CompletedSteps, ins.TotalIterations,
		ins.FilesCreated, ins.FilesModified, ins.ErrorMessage)
	if err != nil {
		return kerrors.NewPersistenceError("insights_record", s.dbPath, err)
	}
	return nil
}

// CrossProjectInsights returns every recorded insight across all projects,
// most recent first.
func (s *Store) CrossProjectInsights() ([]models.PlanningInsight, error) {
	return s.query(`SELECT insight_id, project_id, task_id, agent_type, timestamp, success,
		duration_seconds, step_count, completed_steps, total_iterations,
		files_created, files_modified, error_message
		FROM insights ORDER BY timestamp DESC`)
}

// BestPractices returns successful insights for agentType (or all agent
// types when empty), ordered by fewest total iterations first.
func (s *Store) BestPractices(agentType string) ([]models.PlanningInsight, error) {
	if agentType == "" {
		return s.query(`SELECT insight_id, project_id, task_id, agent_type, timestamp, success,
			duration_seconds, step_count, completed_steps, total_iterations,
			files_created, files_modified, error_message
			FROM insights WHERE success = 1 ORDER BY total_iterations ASC`)
	}
	return s.queryArgs(`SELECT insight_id, project_id, task_id, agent_type, timestamp, success,
		duration_seconds, step_count, completed_steps, total_iterations,
		files_created, files_modified, error_message
		FROM insights WHERE success = 1 AND agent_type = ? ORDER BY total_iterations ASC`, agentType)
}

func (s *Store) query(q string) ([]models.PlanningInsight, error) {
	return s.queryArgs(q)
}

func (s *Store) queryArgs(q string, args ...interface{}) ([]models.PlanningInsight, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, kerrors.NewPersistenceError("insights_query", s.dbPath, err)
	}
	defer rows.Close()

	var out []models.PlanningInsight
	for rows.Next() {
		var ins models.PlanningInsight
		var successInt int
		if err := rows.Scan(&ins.InsightID, &ins.ProjectID, &ins.TaskID, &ins.AgentType, &ins.Timestamp,
			&successInt, &ins.DurationSeconds, &ins.StepCount, &ins.CompletedSteps, &ins.TotalIterations,
			&ins.FilesCreated, &ins.FilesModified, &ins.ErrorMessage); err != nil {
			return nil, kerrors.NewPersistenceError("insights_scan", s.dbPath, err)
		}
		ins.Success = successInt != 0
		out = append(out, ins)
	}
	if err := rows.Err(); err != nil {
		return nil, kerrors.NewPersistenceError("insights_query", s.dbPath, err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
