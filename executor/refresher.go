package executor

import "context"

// AsManagerRefresher adapts a BoundedExecutor to automanager.Refresher so
// an async auto-loading manager can route background reloads through a
// bounded resource pool instead of an unbounded goroutine-per-refresh.
// It is meant to own its BoundedExecutor exclusively: since Execute
// accepts only one batch at a time, an executor shared with unrelated
// batched work would frequently reject a refresh submission outright.
type AsManagerRefresher struct {
	Executor *BoundedExecutor
}

// Submit fires task as a single-task batch and returns; a background
// goroutine then waits for it to finish and calls Clear so the
// executor's one batch slot is free again for the next refresh. Without that wait-and-clear, the slot would stay
// occupied by the first refresh forever (Clear is the only thing that
// resets it) and every later Submit would immediately fail over to the
// unbounded fallback below, defeating the point of routing refreshes
// through a bounded pool at all.
//
// If the executor's batch slot is occupied (Execute returns a state
// error — a previous refresh hasn't been cleared yet, or unrelated
// work is using the same executor), Submit falls back to running task
// on its own goroutine rather than dropping the refresh: refreshes are
// best-effort and losing one silently would mean a stale entry never
// gets a second chance until the next reader's touch wins.
func (r AsManagerRefresher) Submit(task func()) {
	handles, err := r.Executor.Execute(context.Background(), []Task{
		func(ctx context.Context) (any, error) {
			task()
			return nil, nil
		},
	})
	if err != nil {
		go task()
		return
	}

	go func() {
		_, _ = r.Executor.GetOrWaitForResult(context.Background(), handles[0])
		r.Executor.Clear()
	}()
}
