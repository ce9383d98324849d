package staging

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"listingstudio.app/studio/internal/model"
)

// Run is one staging invocation. Tasks are keyed by snapshot index and each
// transitions pending -> in_progress -> succeeded|failed exactly once.
type Run struct {
	ID        int64
	SessionID string

	mu        sync.Mutex
	tasks     map[int]*model.StagingTask
	order     []int
	updates   chan model.StagingTask
	done      chan struct{}
	anyFailed atomic.Bool
}

func newRun(id int64, sessionID string, sources []Source) *Run {
	r := &Run{
		ID:        id,
		SessionID: sessionID,
		tasks:     make(map[int]*model.StagingTask, len(sources)),
		order:     make([]int, 0, len(sources)),
		// Three transitions per task, so sends never block.
		updates: make(chan model.StagingTask, 3*len(sources)),
		done:    make(chan struct{}),
	}
	for _, s := range sources {
		r.tasks[s.Index] = &model.StagingTask{
			Index:  s.Index,
			Source: s.Photo.PhotoIdentity,
			State:  model.TaskStatePending,
		}
		r.order = append(r.order, s.Index)
	}
	slices.Sort(r.order)
	return r
}

// Tasks returns a snapshot of every task ordered by index.
func (r *Run) Tasks() []model.StagingTask {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.StagingTask, 0, len(r.order))
	for _, idx := range r.order {
		out = append(out, copyTask(r.tasks[idx]))
	}
	return out
}

// Task returns a snapshot of the task for index.
func (r *Run) Task(index int) (model.StagingTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[index]
	if !ok {
		return model.StagingTask{}, false
	}
	return copyTask(t), true
}

// Updates delivers a snapshot for every transition. It is closed once all
// tasks are terminal.
func (r *Run) Updates() <-chan model.StagingTask {
	return r.updates
}

// Done is closed once every task is terminal.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// AnyFailed is advisory; it never blocks the remaining tasks.
func (r *Run) AnyFailed() bool {
	return r.anyFailed.Load()
}

// Wait blocks until the run is finished or ctx is done.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// transition applies fn to the task and returns the resulting snapshot.
// Terminal tasks are left untouched.
func (r *Run) transition(index int, fn func(t *model.StagingTask)) (model.StagingTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[index]
	if !ok || t.State.Terminal() {
		return model.StagingTask{}, false
	}
	fn(t)
	if t.State == model.TaskStateFailed {
		r.anyFailed.Store(true)
	}
	snapshot := copyTask(t)
	r.updates <- snapshot
	return snapshot, true
}

func (r *Run) finish() {
	close(r.updates)
	close(r.done)
}

func copyTask(t *model.StagingTask) model.StagingTask {
	out := *t
	if t.Enhanced != nil {
		enhanced := *t.Enhanced
		out.Enhanced = &enhanced
	}
	return out
}
