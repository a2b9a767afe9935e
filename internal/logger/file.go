package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileLogger writes timestamped, level-filtered lines to a per-run log
// file under logDir, maintaining a `latest.log` symlink to the current
// run. Grounded on internal/logger/file.go's NewFileLoggerWithDirAndLevel.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	runPath string
	level   int
}

// NewFileLogger creates (or reuses) logDir, opens a new timestamped run
// log file, and repoints logDir/latest.log at it.
func NewFileLogger(logDir, level string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	runPath := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(runPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			f.Close()
			return nil, fmt.Errorf("remove stale latest.log: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runPath), symlinkPath); err != nil {
		f.Close()
		return nil, fmt.Errorf("create latest.log symlink: %w", err)
	}

	fl := &FileLogger{file: f, runPath: runPath, level: levelRank(level)}
	fl.writeLine(fmt.Sprintf("=== Kobold run log ===\nstarted at %s\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

func (f *FileLogger) writeLine(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file != nil {
		io.WriteString(f.file, line)
	}
}

func (f *FileLogger) log(rank int, tag, format string, args ...interface{}) {
	if rank < f.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	f.writeLine(fmt.Sprintf("[%s] %s %s\n", time.Now().Format(time.RFC3339), tag, msg))
}

func (f *FileLogger) Debug(format string, args ...interface{}) { f.log(levelDebug, "DEBUG", format, args...) }
func (f *FileLogger) Info(format string, args ...interface{})  { f.log(levelInfo, "INFO", format, args...) }
func (f *FileLogger) Warn(format string, args ...interface{})  { f.log(levelWarn, "WARN", format, args...) }
func (f *FileLogger) Error(format string, args ...interface{}) { f.log(levelError, "ERROR", format, args...) }

// Close closes the underlying run log file.
func (f *FileLogger) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// RunPath returns the path of the current run's log file.
func (f *FileLogger) RunPath() string {
	return f.runPath
}
