// Package logger provides console and file logging implementations for
// Kobold's agent runtime and scheduler, grounded on
// internal/logger/console.go and internal/logger/file.go: timestamped,
// level-filtered, thread-safe output with optional ANSI color and a
// `latest.log` symlink for the most recent run.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	levelDebug int = 0
	levelInfo  int = 1
	levelWarn  int = 2
	levelError int = 3
)

func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Logger is the sink the Agent Runtime's progress callback and the
// Scheduler's admission/dispatch events write to.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// ConsoleLogger writes timestamped, level-filtered, optionally colorized
// lines to an io.Writer. Color is enabled automatically when the writer is
// a TTY (os.Stdout/os.Stderr under isatty.IsTerminal).
type ConsoleLogger struct {
	writer   io.Writer
	level    int
	mu       sync.Mutex
	colorize bool
}

// NewConsoleLogger builds a ConsoleLogger. A nil writer discards output.
func NewConsoleLogger(writer io.Writer, level string) *ConsoleLogger {
	colorize := false
	if f, ok := writer.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd())
	}
	return &ConsoleLogger{writer: writer, level: levelRank(level), colorize: colorize}
}

func (c *ConsoleLogger) log(rank int, colorFn func(string, ...interface{}) string, tag, format string, args ...interface{}) {
	if c.writer == nil || rank < c.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] %s %s\n", time.Now().Format("15:04:05"), tag, msg)
	if c.colorize {
		line = colorFn("%s", line)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.writer, line)
}

func (c *ConsoleLogger) Debug(format string, args ...interface{}) {
	c.log(levelDebug, color.HiBlackString, "DEBUG", format, args...)
}

func (c *ConsoleLogger) Info(format string, args ...interface{}) {
	c.log(levelInfo, color.CyanString, "INFO ", format, args...)
}

func (c *ConsoleLogger) Warn(format string, args ...interface{}) {
	c.log(levelWarn, color.YellowString, "WARN ", format, args...)
}

func (c *ConsoleLogger) Error(format string, args ...interface{}) {
	c.log(levelError, color.RedString, "ERROR", format, args...)
}
