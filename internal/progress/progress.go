// Package progress keeps the human-readable task log in .morty/progress.txt.
package progress

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zsprackett/morty-dashboard/internal/events"
)

const (
	Dir      = ".morty"
	FileName = "progress.txt"
	Header   = "# Morty Progress Log\n\n"
)

// Path returns the progress file location for a working directory.
func Path(workDir string) string {
	return filepath.Join(workDir, Dir, FileName)
}

// Log appends one line per finished task. It implements events.Emitter.
type Log struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

func New(workDir string, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{path: Path(workDir), logger: logger}
}

func (l *Log) Path() string {
	return l.path
}

// Emit records task:complete and task:fail; other events are ignored.
// Write failures are logged, never returned to the producer.
func (l *Log) Emit(e events.Event) {
	line, ok := Line(e)
	if !ok {
		return
	}
	if err := l.append(line); err != nil {
		l.logger.Warn("progress: append failed", "path", l.path, "err", err)
	}
}

// Line formats the progress entry for a finished task, using the event
// timestamp in UTC.
func Line(e events.Event) (string, bool) {
	var icon string
	switch e.Type {
	case events.TaskComplete:
		icon = "✓"
	case events.TaskFail:
		icon = "✗"
	default:
		return "", false
	}
	title, _ := e.String("title")
	if title == "" {
		title, _ = e.String("id")
	}
	stamp := e.Time().UTC().Format("2006-01-02 15:04")
	return fmt.Sprintf("- [%s] %s - %s\n", icon, stamp, title), true
}

func (l *Log) append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		if _, err := f.WriteString(Header); err != nil {
			return err
		}
	}
	_, err = f.WriteString(line)
	return err
}
