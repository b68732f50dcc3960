package events

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// String returns data[key] when it holds a string.
func (e Event) String(key string) (string, bool) {
	s, ok := e.Data[key].(string)
	return s, ok
}

// Float returns data[key] as a float64. JSON numbers decode as float64, but
// events built in-process may carry ints, so those are accepted too.
func (e Event) Float(key string) (float64, bool) {
	switch v := e.Data[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Int returns data[key] truncated to an int64.
func (e Event) Int(key string) (int64, bool) {
	switch v := e.Data[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	}
	f, ok := e.Float(key)
	return int64(f), ok
}

// Describe renders the one-line timeline text for an event.
func Describe(e Event) string {
	str := func(key string) string {
		s, _ := e.String(key)
		return s
	}
	switch e.Type {
	case SessionStart:
		return "Session started with " + str("engine")
	case SessionEnd:
		return "Session ended"
	case TaskStart:
		return "Started: " + str("title")
	case TaskComplete:
		return "Completed: " + str("title")
	case TaskFail:
		return "Failed: " + str("title")
	case StepUpdate:
		return str("step")
	case FileRead:
		return "Reading " + baseName(str("path"))
	case FileWrite:
		return "Writing " + baseName(str("path"))
	case CommandRun:
		return "Running: " + truncate(str("command"), 40)
	case TokensUpdate:
		out, _ := e.Int("output")
		return fmt.Sprintf("Tokens: +%d output", out)
	default:
		return string(e.Type)
	}
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
