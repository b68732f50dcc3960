package events

import "github.com/google/uuid"

// Reporter offers typed helpers for the orchestration loop. A nil Reporter,
// or one built around a nil Emitter, drops everything, so callers never
// have to check whether the dashboard is enabled.
type Reporter struct {
	out Emitter
}

func NewReporter(out Emitter) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) emit(t Type, data map[string]any) {
	if r == nil || r.out == nil {
		return
	}
	r.out.Emit(New(t, data))
}

// SessionStart announces a new session and returns its generated id.
func (r *Reporter) SessionStart(engine, mode, workDir string) string {
	id := "session_" + uuid.NewString()[:8]
	r.emit(SessionStart, map[string]any{
		"id":      id,
		"engine":  engine,
		"mode":    mode,
		"workDir": workDir,
	})
	return id
}

func (r *Reporter) SessionEnd() {
	r.emit(SessionEnd, map[string]any{})
}

func (r *Reporter) TaskStart(id, title string) {
	r.emit(TaskStart, map[string]any{"id": id, "title": title})
}

func (r *Reporter) TaskComplete(id, title string) {
	r.emit(TaskComplete, map[string]any{"id": id, "title": title})
}

func (r *Reporter) TaskFail(id, title, errMsg string) {
	r.emit(TaskFail, map[string]any{"id": id, "title": title, "error": errMsg})
}

func (r *Reporter) StepUpdate(step string) {
	r.emit(StepUpdate, map[string]any{"step": step})
}

func (r *Reporter) FileRead(path string) {
	r.emit(FileRead, map[string]any{"path": path})
}

func (r *Reporter) FileWrite(path string) {
	r.emit(FileWrite, map[string]any{"path": path})
}

func (r *Reporter) CommandRun(command string) {
	r.emit(CommandRun, map[string]any{"command": command})
}

// TokensUpdate reports absolute running totals, not deltas.
func (r *Reporter) TokensUpdate(input, output int64, cost float64) {
	r.emit(TokensUpdate, map[string]any{"input": input, "output": output, "cost": cost})
}
