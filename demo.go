package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/zsprackett/morty-dashboard/internal/events"
)

type demoTask struct {
	id, title string
	files     []string
	command   string
	fail      string
}

var demoTasks = []demoTask{
	{id: "task-1", title: "Add request logging middleware", files: []string{"internal/server/server.go", "internal/server/middleware.go"}, command: "go test ./internal/server/..."},
	{id: "task-2", title: "Cache session lookups", files: []string{"internal/session/store.go"}, command: "go test ./internal/session/...", fail: "TestStoreEviction: expected 2 entries, got 3"},
	{id: "task-3", title: "Document the config file", files: []string{"README.md", "internal/config/config.go"}, command: "go vet ./..."},
}

// runDemo plays a scripted single-engine session through r, pausing pace
// between events. It returns ctx.Err() if cancelled midway.
func runDemo(ctx context.Context, r *events.Reporter, workDir string, pace time.Duration) error {
	wait := func() error {
		if pace <= 0 {
			return ctx.Err()
		}
		t := time.NewTimer(pace)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}

	abs, err := filepath.Abs(workDir)
	if err != nil {
		abs = workDir
	}
	r.SessionStart("claude", "prd", abs)

	var in, out int64
	for _, task := range demoTasks {
		steps := []func(){
			func() { r.TaskStart(task.id, task.title) },
			func() { r.StepUpdate("Reading code") },
		}
		for _, f := range task.files {
			path := filepath.Join(abs, f)
			steps = append(steps, func() { r.FileRead(path) })
		}
		steps = append(steps, func() { r.StepUpdate("Writing changes") })
		for _, f := range task.files {
			path := filepath.Join(abs, f)
			steps = append(steps, func() { r.FileWrite(path) })
		}
		steps = append(steps,
			func() { r.CommandRun(task.command) },
			func() {
				in += 4200
				out += 1350
				r.TokensUpdate(in, out, estimateCost(in, out))
			},
			func() {
				if task.fail != "" {
					r.TaskFail(task.id, task.title, task.fail)
					return
				}
				r.TaskComplete(task.id, task.title)
			},
		)
		for _, step := range steps {
			if err := wait(); err != nil {
				return err
			}
			step()
		}
	}

	if err := wait(); err != nil {
		return err
	}
	r.SessionEnd()
	return nil
}

// estimateCost uses Sonnet-class list prices per million tokens.
func estimateCost(in, out int64) float64 {
	return float64(in)*3/1e6 + float64(out)*15/1e6
}
