package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dealershipai/clarity/pkg/task"
)

// Outcome pairs a submitted task with its result or error.
type Outcome struct {
	Task   task.Task
	Result task.Result
	Err    error
}

// ExecuteAll runs tasks with at most parallel in flight and returns one
// outcome per task in submission order. A failed task does not stop the others.
func (e *Engine) ExecuteAll(ctx context.Context, tasks []task.Task, parallel int) []Outcome {
	if parallel <= 0 {
		parallel = 1
	}
	outcomes := make([]Outcome, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, t := range tasks {
		if t.ID == "" {
			t.ID = e.newID()
		}
		g.Go(func() error {
			r, err := e.Execute(gctx, t)
			outcomes[i] = Outcome{Task: t, Result: r, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
