// Package wal implements the task-state write-ahead log: one append-only
// file per task-state storage file, guaranteeing no status transition is
// lost across a crash. Built on internal/filelock's FileLock/AppendLocked,
// the same exclusive-lock-plus-atomic-file-op primitive the teacher uses in
// internal/filelock/filelock.go for its plan/config persistence.
package wal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/kobold/internal/filelock"
	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/models"
)

// PathFor derives a WAL's path from the task-state file it guards: the
// extension is replaced with ".wal".
func PathFor(stateFilePath string) string {
	if ext := filepath.Ext(stateFilePath); ext != "" {
		return strings.TrimSuffix(stateFilePath, ext) + ".wal"
	}
	return stateFilePath + ".wal"
}

// WAL guards a single task-state file's write-ahead log.
type WAL struct {
	path string
}

// New returns a WAL for the given task-state file path (PathFor is applied
// internally).
func New(stateFilePath string) *WAL {
	return &WAL{path: PathFor(stateFilePath)}
}

// Append serializes entry as one JSON line and appends it under the WAL's
// exclusive lock.
func (w *WAL) Append(entry models.WalEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return kerrors.NewPersistenceError("wal_append", w.path, err)
	}
	line = append(line, '\n')

	if err := filelock.AppendLocked(w.path, line); err != nil {
		return kerrors.NewPersistenceError("wal_append", w.path, err)
	}
	return nil
}

// ReadAll parses every line in the WAL in file order. Malformed lines are
// skipped (partial-crash resilience) rather than aborting the read; skipped
// lines are reported via the returned warnings slice.
func (w *WAL) ReadAll() (entries []models.WalEntry, warnings []string, err error) {
	f, err := os.Open(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, kerrors.NewPersistenceError("wal_read", w.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry models.WalEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			warnings = append(warnings, fmt.Sprintf("wal %s line %d: malformed entry skipped: %v", w.path, lineNum, err))
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, warnings, kerrors.NewPersistenceError("wal_read", w.path, err)
	}
	return entries, warnings, nil
}

// Checkpoint deletes the WAL file under its lock. Deleting a file that
// doesn't exist is not an error.
func (w *WAL) Checkpoint() error {
	lock := filelock.NewFileLock(w.path + ".lock")
	if err := lock.Lock(); err != nil {
		return kerrors.NewPersistenceError("wal_checkpoint", w.path, err)
	}
	defer lock.Unlock()

	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return kerrors.NewPersistenceError("wal_checkpoint", w.path, err)
	}
	return nil
}

// HasUncommittedChanges reports whether the WAL file exists and is
// non-empty.
func (w *WAL) HasUncommittedChanges() (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, kerrors.NewPersistenceError("wal_stat", w.path, err)
	}
	return info.Size() > 0, nil
}

// ApplyIdempotent applies entries to currentStatus in order, skipping any
// entry whose NewStatus has already been reached, as required by the
// recovery protocol ("idempotent by checking newStatus against current").
func ApplyIdempotent(currentStatus models.PlanStatus, entries []models.WalEntry) models.PlanStatus {
	for _, e := range entries {
		if e.NewStatus == currentStatus {
			continue
		}
		currentStatus = e.NewStatus
	}
	return currentStatus
}
