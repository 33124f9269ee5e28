package task

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// ErrBusy is returned when a task of the same kind is still running.
// The UI disables the triggering control on it; the CLI treats it as a
// stage failure.
var ErrBusy = errors.New("an operation of this kind is already running")

type State string

const (
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Snapshot is the poll-safe view of a task handle.
type Snapshot struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	State      State      `json:"state"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Task is the handle for one long-running operation. It completes or
// fails; there is no cancellation path.
type Task struct {
	id   string
	kind string

	mu       sync.Mutex
	state    State
	message  string
	err      error
	started  time.Time
	finished time.Time

	done chan struct{}
}

func (t *Task) ID() string { return t.id }

// Wait blocks until the task reaches a terminal state and returns its
// error, if any.
func (t *Task) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := Snapshot{
		ID:        t.id,
		Kind:      t.kind,
		State:     t.state,
		Message:   t.message,
		StartedAt: t.started,
	}
	if !t.finished.IsZero() {
		f := t.finished
		snap.FinishedAt = &f
	}
	return snap
}

// Runner starts background operations, enforcing at most one running
// task per kind.
type Runner struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*Task
	running map[string]*Task
}

func NewRunner() *Runner {
	return &Runner{
		byID:    make(map[string]*Task),
		running: make(map[string]*Task),
	}
}

// Start launches fn on its own goroutine and returns the handle. The
// returned message becomes the task's terminal message on success; the
// error marks it failed.
func (r *Runner) Start(kind string, fn func() (string, error)) (*Task, error) {
	r.mu.Lock()
	if _, busy := r.running[kind]; busy {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.seq++
	t := &Task{
		id:      fmt.Sprintf("%s-%d", kind, r.seq),
		kind:    kind,
		state:   StateRunning,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	r.byID[t.id] = t
	r.running[kind] = t
	r.mu.Unlock()

	go func() {
		defer func() {
			// A panicking stage must not take the process down; it
			// reports failure like any other error.
			if rec := recover(); rec != nil {
				log.Printf("ERROR: task %s panicked: %v", t.id, rec)
				r.finish(t, "", fmt.Errorf("unexpected error: %v", rec))
			}
		}()
		msg, err := fn()
		r.finish(t, msg, err)
	}()

	return t, nil
}

func (r *Runner) finish(t *Task, msg string, err error) {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return
	}
	t.finished = time.Now()
	t.err = err
	if err != nil {
		t.state = StateFailed
		t.message = err.Error()
	} else {
		t.state = StateDone
		t.message = msg
	}
	t.mu.Unlock()

	r.mu.Lock()
	delete(r.running, t.kind)
	r.mu.Unlock()

	close(t.done)
}

// Get returns the handle for an id.
func (r *Runner) Get(id string) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	return t, ok
}

// List returns snapshots of every known task, newest first.
func (r *Runner) List() []Snapshot {
	r.mu.Lock()
	tasks := make([]*Task, 0, len(r.byID))
	for _, t := range r.byID {
		tasks = append(tasks, t)
	}
	r.mu.Unlock()

	snaps := make([]Snapshot, 0, len(tasks))
	for _, t := range tasks {
		snaps = append(snaps, t.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].StartedAt.After(snaps[j].StartedAt)
	})
	return snaps
}
