package dashboard

import (
	"time"

	"github.com/zsprackett/morty-dashboard/internal/events"
)

// Apply folds one event into the projection and returns the next state.
// It never mutates prev, performs no I/O and never panics; payload fields
// that are missing or of the wrong type are treated as absent. now stamps
// RecentFile entries.
func Apply(prev State, e events.Event, now time.Time) State {
	next := prev
	next.Events = prev.Events.Push(e)

	switch e.Type {
	case events.SessionStart:
		next.Session = sessionFrom(e)

	case events.SessionEnd:
		next.Session = nil

	case events.TaskStart:
		task := Task{Status: TaskRunning, StartTime: e.Timestamp}
		task.ID, _ = e.String("id")
		task.Title, _ = e.String("title")
		next.Tasks = append(cloneTasks(prev.Tasks), task)
		current := task
		next.CurrentTask = &current
		next.CurrentStep = StepStarting

	case events.TaskComplete:
		id, _ := e.String("id")
		next.Tasks = finishTask(prev.Tasks, id, TaskCompleted, e.Timestamp, nil)
		next.CurrentTask = nil
		next.CurrentStep = StepIdle

	case events.TaskFail:
		id, _ := e.String("id")
		var errMsg *string
		if msg, ok := e.String("error"); ok {
			errMsg = &msg
		}
		next.Tasks = finishTask(prev.Tasks, id, TaskFailed, e.Timestamp, errMsg)
		next.CurrentTask = nil
		next.CurrentStep = StepFailed

	case events.StepUpdate:
		if step, ok := e.String("step"); ok {
			next.CurrentStep = step
		}

	case events.FileRead, events.FileWrite:
		action := FileActionRead
		if e.Type == events.FileWrite {
			action = FileActionWrite
		}
		path, _ := e.String("path")
		next.RecentFiles = prev.RecentFiles.Push(RecentFile{
			Path:      path,
			Action:    action,
			Timestamp: now.UnixMilli(),
		})

	case events.TokensUpdate:
		if v, ok := e.Int("input"); ok {
			next.Tokens.InputTokens = v
		}
		if v, ok := e.Int("output"); ok {
			next.Tokens.OutputTokens = v
		}
		if v, ok := e.Float("cost"); ok {
			next.Tokens.EstimatedCost = v
		}
	}
	return next
}

func sessionFrom(e events.Event) *Session {
	s := &Session{StartTime: e.Timestamp}
	s.ID, _ = e.String("id")
	s.Engine, _ = e.String("engine")
	mode, _ := e.String("mode")
	s.Mode = Mode(mode)
	s.WorkDir, _ = e.String("workDir")
	return s
}

// finishTask moves every non-terminal task with the given id to status.
// Unknown ids leave the list untouched.
func finishTask(tasks []Task, id string, status TaskStatus, at int64, errMsg *string) []Task {
	out := tasks
	copied := false
	for i, t := range tasks {
		if t.ID != id || t.Status.Terminal() {
			continue
		}
		if !copied {
			out = cloneTasks(tasks)
			copied = true
		}
		end := at
		out[i].Status = status
		out[i].EndTime = &end
		out[i].Error = errMsg
	}
	return out
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks), len(tasks)+1)
	copy(out, tasks)
	return out
}
