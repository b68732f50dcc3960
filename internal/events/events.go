package events

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Type identifies the kind of occurrence an Event describes.
type Type string

const (
	SessionStart Type = "session:start"
	SessionEnd   Type = "session:end"
	TaskStart    Type = "task:start"
	TaskComplete Type = "task:complete"
	TaskFail     Type = "task:fail"
	StepUpdate   Type = "step:update"
	FileRead     Type = "file:read"
	FileWrite    Type = "file:write"
	CommandRun   Type = "command:run"
	TokensUpdate Type = "tokens:update"
)

// Known reports whether t belongs to the closed set of event types.
func (t Type) Known() bool {
	switch t {
	case SessionStart, SessionEnd,
		TaskStart, TaskComplete, TaskFail,
		StepUpdate, FileRead, FileWrite,
		CommandRun, TokensUpdate:
		return true
	}
	return false
}

// Event is an immutable record of one occurrence in an agent session. It is
// both the unit pushed to dashboard clients and the unit the reducer folds.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	Timestamp int64          `json:"timestamp"` // Unix ms, producer clock
	Data      map[string]any `json:"data"`
}

// Time returns the event timestamp as a time.Time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

var seq atomic.Uint64

// New builds a fully populated Event stamped with the current time.
// The data map is stored as given; callers must not mutate it afterwards.
func New(t Type, data map[string]any) Event {
	now := time.Now().UnixMilli()
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		ID:        nextID(now),
		Type:      t,
		Timestamp: now,
		Data:      data,
	}
}

// nextID combines the wall clock with a process-wide counter, so ids are
// unique for the life of the process even within one millisecond.
func nextID(nowMs int64) string {
	return fmt.Sprintf("evt_%d_%d", nowMs, seq.Add(1))
}

// Emitter accepts events from producers. The broadcast hub implements it.
type Emitter interface {
	Emit(e Event)
}

type tee []Emitter

func (t tee) Emit(e Event) {
	for _, em := range t {
		em.Emit(e)
	}
}

// Tee returns an Emitter that forwards each event to every non-nil emitter
// in argument order.
func Tee(emitters ...Emitter) Emitter {
	var out tee
	for _, em := range emitters {
		if em != nil {
			out = append(out, em)
		}
	}
	return out
}
