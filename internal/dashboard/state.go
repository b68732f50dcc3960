package dashboard

import (
	"time"

	"github.com/zsprackett/morty-dashboard/internal/events"
)

const (
	TimelineCapacity    = 100
	RecentFilesCapacity = 20

	StepIdle     = "Idle"
	StepStarting = "Starting task..."
	StepFailed   = "Task failed"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

type Mode string

const (
	ModeSingle   Mode = "single"
	ModePRD      Mode = "prd"
	ModeParallel Mode = "parallel"
)

type Session struct {
	ID        string `json:"id"`
	StartTime int64  `json:"startTime"`
	Engine    string `json:"engine"`
	Mode      Mode   `json:"mode"`
	WorkDir   string `json:"workDir"`
}

type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	StartTime int64      `json:"startTime"`
	EndTime   *int64     `json:"endTime,omitempty"`
	Error     *string    `json:"error,omitempty"`
}

// Duration is the elapsed run time, measured to now for unfinished tasks.
func (t Task) Duration(now time.Time) time.Duration {
	end := now.UnixMilli()
	if t.EndTime != nil {
		end = *t.EndTime
	}
	if end < t.StartTime {
		return 0
	}
	return time.Duration(end-t.StartTime) * time.Millisecond
}

type TokenStats struct {
	InputTokens   int64   `json:"inputTokens"`
	OutputTokens  int64   `json:"outputTokens"`
	EstimatedCost float64 `json:"estimatedCost"`
}

type FileAction string

const (
	FileActionRead  FileAction = "read"
	FileActionWrite FileAction = "write"
)

type RecentFile struct {
	Path      string     `json:"path"`
	Action    FileAction `json:"action"`
	Timestamp int64      `json:"timestamp"` // assigned when projected
}

// State is the bounded projection of the event stream for one observer.
// Values are treated as immutable: Apply always returns a fresh State.
type State struct {
	Connected   bool               `json:"connected"`
	Session     *Session           `json:"session"`
	Tasks       []Task             `json:"tasks"`
	CurrentTask *Task              `json:"currentTask"`
	CurrentStep string             `json:"currentStep"`
	Events      Ring[events.Event] `json:"events"`
	Tokens      TokenStats         `json:"tokens"`
	RecentFiles Ring[RecentFile]   `json:"recentFiles"`
}

// Initial returns the empty projection.
func Initial() State {
	return State{
		CurrentStep: StepIdle,
		Events:      NewRing[events.Event](TimelineCapacity),
		RecentFiles: NewRing[RecentFile](RecentFilesCapacity),
	}
}

// Progress counts completed tasks against all known tasks.
func (s State) Progress() (done, total int, pct float64) {
	total = len(s.Tasks)
	for _, t := range s.Tasks {
		if t.Status == TaskCompleted {
			done++
		}
	}
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	return done, total, pct
}
