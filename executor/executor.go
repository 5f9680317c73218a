/*
Package executor implements the bounded-resource async task executor: a
coordinator that runs a batch of caller-supplied tasks against a shared
resource pool of size R, preserving submission order except where a
waiting caller promotes a still-queued task to run next.

SINGLE ARBITER, ONE SEMAPHORE

All R permits are acquired by exactly one goroutine: drain. It loops
forever acquiring a resourceSem permit, then — only once it actually
holds that permit — decides which task gets to consume it by popping
the front of the FIFO queue under the same mutex a promotion uses to
reorder that queue. Deciding "which task" strictly after "do we have a
permit" is what makes promotion correct: resourceSem's own internal
wait list is FIFO by call order, so if every task tried to Acquire
directly, a task that started waiting first always wins the next
release regardless of any later promotion (golang.org/x/sync/semaphore
offers no API to reshuffle that wait list). Routing every acquisition
through the single drain loop sidesteps the problem entirely — there
is only ever one Acquire call in flight, and a promotion that reorders
the queue before that call returns changes which task it resolves to.

PROMOTION

getOrWaitForResult's promotion path never starts a task itself; it
only splices a still-queued task to the front of the FIFO slice, under
the mutex drain also holds while popping. The already-running drain
loop (blocked in Acquire if the pool is full, or about to loop back to
Acquire otherwise) picks it up the next time a permit frees. This
gives "promoted task runs next" without granting it a permit ahead of
the resource cap — a promoted task submitted while R is fully busy
still waits for a running task to finish, exactly like any other
queued task; it only skips ahead of FIFO-ordered but not-yet-started
siblings.

STATE MACHINE

Each task moves queued -> starting -> running -> {completed | failed |
cancelled}. stopCurrentExecution only flips a flag; drain discovers it
the next time it acquires a permit and, rather than starting another
task, cancels every task still sitting in the queue so no caller
blocked in getOrWaitForResult waits forever for a task that will never
run. Tasks already past "starting" are not interrupted and complete
normally.
*/
package executor

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/haldane-cache/autocache/errs"
)

// Task is a unit of work submitted to a BoundedExecutor.
type Task func(ctx context.Context) (any, error)

// Handle identifies a submitted task. Comparable, safe to use as a map
// key by the caller; opaque otherwise.
type Handle struct {
	id uuid.UUID
}

type taskStatus int

const (
	statusQueued taskStatus = iota
	statusStarting
	statusRunning
	statusCompleted
	statusFailed
	statusCancelled
)

func (s taskStatus) String() string {
	switch s {
	case statusQueued:
		return "queued"
	case statusStarting:
		return "starting"
	case statusRunning:
		return "running"
	case statusCompleted:
		return "completed"
	case statusFailed:
		return "failed"
	case statusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type taskState struct {
	handle Handle
	task   Task
	status taskStatus
	result any
	err    error
	done   chan struct{}
}

// BoundedExecutor coordinates one batch of tasks at a time over a
// resource pool of fixed size. The zero value is not usable; construct
// with New.
type BoundedExecutor struct {
	runner        Runner
	resourceLimit int64
	logger        *zap.Logger

	mu           sync.Mutex
	resourceSem  *semaphore.Weighted
	queue        []*taskState
	tasks        map[uuid.UUID]*taskState
	batchRunning bool
	stopped      bool
	pending      int
	group        *errgroup.Group
}

// Option configures a BoundedExecutor.
type Option func(*BoundedExecutor)

// WithRunner overrides the default one-goroutine-per-task Runner.
func WithRunner(r Runner) Option {
	return func(e *BoundedExecutor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithLogger sets the logger used for Debug-level state transitions.
func WithLogger(logger *zap.Logger) Option {
	return func(e *BoundedExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds a BoundedExecutor with the given resource cap R (R must be
// > 0) and a Runner (default: one goroutine per task).
func New(resourceLimit int64, opts ...Option) (*BoundedExecutor, error) {
	if resourceLimit <= 0 {
		return nil, errs.Wrap(errs.Argument, "executor: resourceLimit must be > 0")
	}
	e := &BoundedExecutor{
		runner:        goRunner{},
		resourceLimit: resourceLimit,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute accepts an ordered batch of distinct tasks and starts
// submitting them in order, subject to the resource cap. Rejects with a
// state error while a previous batch is held, that is from its Execute
// until Clear, even after all of its tasks have finished; rejects with an
// argument error if tasks is empty or contains a nil entry.
func (e *BoundedExecutor) Execute(ctx context.Context, tasks []Task) ([]Handle, error) {
	if len(tasks) == 0 {
		return nil, errs.Wrap(errs.Argument, "executor: tasks must not be empty")
	}
	for _, t := range tasks {
		if t == nil {
			return nil, errs.Wrap(errs.Argument, "executor: task must not be nil")
		}
	}

	e.mu.Lock()
	if e.batchRunning {
		e.mu.Unlock()
		return nil, errs.Wrap(errs.State, "executor: a batch is already running")
	}

	states := make([]*taskState, len(tasks))
	handles := make([]Handle, len(tasks))
	taskMap := make(map[uuid.UUID]*taskState, len(tasks))
	for i, t := range tasks {
		h := Handle{id: uuid.New()}
		ts := &taskState{handle: h, task: t, status: statusQueued, done: make(chan struct{})}
		states[i] = ts
		handles[i] = h
		taskMap[h.id] = ts
	}

	e.resourceSem = semaphore.NewWeighted(e.resourceLimit)
	e.queue = states
	e.tasks = taskMap
	e.batchRunning = true
	e.stopped = false
	e.pending = len(states)
	group, gctx := errgroup.WithContext(ctx)
	e.group = group
	e.mu.Unlock()

	e.logger.Debug("executor: batch submitted", zap.Int("taskCount", len(tasks)))
	group.Go(func() error {
		e.drain(gctx, group)
		return nil
	})

	return handles, nil
}

// drain is the sole acquirer of resourceSem permits: it loops, and only
// after it actually holds a permit does it decide (under mu, the same
// region a promotion uses) which queued task consumes it. That
// ordering is what lets a promotion reorder the queue ahead of a task
// that is merely waiting its FIFO turn.
func (e *BoundedExecutor) drain(ctx context.Context, group *errgroup.Group) {
	for {
		if err := e.resourceSem.Acquire(ctx, 1); err != nil {
			e.cancelRemaining(errs.Wrap(errs.Cancelled, "executor: batch context done before task started"))
			return
		}

		e.mu.Lock()
		if e.stopped {
			e.mu.Unlock()
			e.resourceSem.Release(1)
			e.cancelRemaining(errs.Wrap(errs.Cancelled, "executor: stopped before task started"))
			return
		}
		if len(e.queue) == 0 {
			e.mu.Unlock()
			e.resourceSem.Release(1)
			return
		}
		next := e.queue[0]
		e.queue = e.queue[1:]
		next.status = statusStarting
		e.mu.Unlock()

		e.logger.Debug("executor: task starting", zap.Stringer("task", next.handle.id))
		e.dispatch(ctx, group, next)
	}
}

// cancelRemaining drains whatever is left in the queue (after a stop or
// a cancelled batch context) and finishes each as cancelled, so no
// caller blocked in GetOrWaitForResult waits forever for a task that
// drain will never start.
func (e *BoundedExecutor) cancelRemaining(err error) {
	e.mu.Lock()
	remaining := e.queue
	e.queue = nil
	e.mu.Unlock()

	for _, ts := range remaining {
		e.finish(ts, statusCancelled, nil, err)
	}
}

// dispatch hands ts to the Runner for execution while tracking it in
// group: group.Go's own goroutine is the one whose lifetime Clear waits
// on, and it blocks until the Runner's background call to run returns
// rather than running the body itself, so a custom Runner backed by an
// external worker pool still gets to decide where the body actually
// runs.
func (e *BoundedExecutor) dispatch(ctx context.Context, group *errgroup.Group, ts *taskState) {
	group.Go(func() error {
		done := make(chan struct{})
		e.runner.Run(func() {
			e.run(ctx, ts)
			close(done)
		})
		<-done
		return nil
	})
}

// run executes a single task body. By the time run is called, drain
// has already reserved the resource permit this task consumes; run
// releases it once the body returns, and publishes the result.
func (e *BoundedExecutor) run(ctx context.Context, ts *taskState) {
	e.mu.Lock()
	ts.status = statusRunning
	e.mu.Unlock()
	e.logger.Debug("executor: task running", zap.Stringer("task", ts.handle.id))

	value, err := ts.task(ctx)
	e.resourceSem.Release(1)

	if err != nil {
		e.finish(ts, statusFailed, nil, errs.Wrapf(errs.TaskFailure, "executor: task %s failed: %v", ts.handle.id, err))
		return
	}
	e.finish(ts, statusCompleted, value, nil)
}

func (e *BoundedExecutor) finish(ts *taskState, status taskStatus, value any, err error) {
	e.mu.Lock()
	ts.status = status
	ts.result = value
	ts.err = err
	e.pending--
	e.mu.Unlock()
	e.logger.Debug("executor: task finished", zap.Stringer("task", ts.handle.id), zap.Stringer("status", status))
	close(ts.done)
}

// GetOrWaitForResult returns h's result, promoting it to the front of
// the FIFO queue if it has not started yet. Returns a not-found error
// if h was never submitted to the current batch.
func (e *BoundedExecutor) GetOrWaitForResult(ctx context.Context, h Handle) (any, error) {
	e.mu.Lock()
	ts, ok := e.tasks[h.id]
	if !ok {
		e.mu.Unlock()
		return nil, errs.Wrap(errs.NotFound, "executor: task not found in current batch")
	}

	promoted := false
	if ts.status == statusQueued {
		for i, queued := range e.queue {
			if queued == ts {
				e.queue = append(e.queue[:i], e.queue[i+1:]...)
				e.queue = append([]*taskState{ts}, e.queue...)
				promoted = true
				break
			}
		}
	}
	e.mu.Unlock()
	if promoted {
		e.logger.Debug("executor: task promoted", zap.Stringer("task", h.id))
	}

	select {
	case <-ts.done:
		return ts.result, ts.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsRunning reports whether a batch is submitted and has at least one
// task not yet in a terminal state.
func (e *BoundedExecutor) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batchRunning && e.pending > 0
}

// IsCompleted reports whether a batch is submitted and every one of its
// tasks has reached a terminal state.
func (e *BoundedExecutor) IsCompleted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batchRunning && e.pending == 0
}

// StopCurrentExecution prevents any further queued tasks from starting.
// Tasks already running are not interrupted and complete normally.
func (e *BoundedExecutor) StopCurrentExecution() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
	e.logger.Debug("executor: stop requested")
}

// Clear waits for every tracked goroutine of the current batch (the
// drain loop and every dispatched task) to return, then drops all
// batch state: completed results and the current batch handle. Only
// once that wait completes is a subsequent Execute allowed to reuse the
// executor's shared fields — starting a new batch while a straggler
// from the old one still touches resourceSem or pending would corrupt
// both. Pair with StopCurrentExecution first to abandon a batch's
// still-queued tasks; tasks already running are not interrupted, and
// Clear still waits for them to return.
func (e *BoundedExecutor) Clear() {
	e.mu.Lock()
	group := e.group
	e.mu.Unlock()
	if group != nil {
		_ = group.Wait()
	}

	e.mu.Lock()
	e.queue = nil
	e.tasks = nil
	e.batchRunning = false
	e.stopped = false
	e.pending = 0
	e.group = nil
	e.mu.Unlock()
	e.logger.Debug("executor: cleared")
}
