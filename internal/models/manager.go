package models

import (
	"context"
	"sync"
	"sync/atomic"

	"crosstalk/internal/faults"
)

// State is the acquisition lifecycle phase.
type State string

const (
	StateIdle        State = "idle"
	StateDownloading State = "downloading"
	StateComplete    State = "complete"
	StateError       State = "error"
)

// Status is an immutable progress snapshot. Poll returns it by value, so
// readers never observe a torn multi-field update.
type Status struct {
	State   State   `json:"state"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
	ModelID string  `json:"model_id"`
}

// Task is the owned handle for one acquisition run. Cancellation is
// cooperative: Cancel raises a flag the download consults only at
// checkpoints, so an in-flight chunk transfer always runs to completion
// before the cancellation is observed.
type Task struct {
	mu        sync.Mutex
	status    Status
	cancel    atomic.Bool
	done      chan struct{}
	err       error
	localPath string
}

func newTask(modelID string) *Task {
	return &Task{
		status: Status{State: StateIdle, ModelID: modelID},
		done:   make(chan struct{}),
	}
}

// Poll returns the current progress snapshot.
func (t *Task) Poll() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Cancel requests cooperative cancellation. Safe from any goroutine.
func (t *Task) Cancel() {
	t.cancel.Store(true)
}

// Wait blocks until the task finishes and returns its outcome.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// LocalPath returns the installed weight path after a successful run.
func (t *Task) LocalPath() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.localPath
}

func (t *Task) set(state State, percent float64, message string) {
	t.mu.Lock()
	t.status.State = state
	t.status.Percent = percent
	t.status.Message = message
	t.mu.Unlock()
}

// checkpoint consults the cancellation flag. When set, the flag is cleared,
// the status leaves the downloading state without entering error, and a
// cancellation failure is returned.
func (t *Task) checkpoint() error {
	if !t.cancel.Swap(false) {
		return nil
	}
	t.set(StateIdle, 0, "download cancelled")
	return faults.Wrap(faults.ErrCancelled, "models", "download", t.status.ModelID, nil)
}

// Manager owns the process-wide acquisition slot. Starting a new download
// replaces the slot; pollers of the old handle keep reading that task's
// final state, while Current follows the latest request (last-writer-wins,
// matching the single shared progress record contract).
type Manager struct {
	mu      sync.Mutex
	baseDir string
	current *Task
	fetch   fetchFunc
}

// NewManager creates a manager storing weights under baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir, fetch: fetchHTTP}
}

// WithFetcher sets a custom transfer function (for testing).
func (m *Manager) WithFetcher(fetch fetchFunc) {
	m.fetch = fetch
}

// BaseDir returns the model storage root.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Current returns the latest task's snapshot, or an idle status when no
// acquisition has run yet.
func (m *Manager) Current() Status {
	m.mu.Lock()
	task := m.current
	m.mu.Unlock()
	if task == nil {
		return Status{State: StateIdle}
	}
	return task.Poll()
}

// Start launches an acquisition in the background and returns its handle.
func (m *Manager) Start(ctx context.Context, family, model string) *Task {
	task := newTask(family + "/" + model)
	m.mu.Lock()
	m.current = task
	m.mu.Unlock()

	go func() {
		defer close(task.done)
		path, err := m.download(ctx, task, family, model)
		if err != nil {
			task.err = err
			return
		}
		task.mu.Lock()
		task.localPath = path
		task.mu.Unlock()
	}()
	return task
}

// Download acquires weights synchronously. The returned path points at the
// installed file.
func (m *Manager) Download(ctx context.Context, family, model string) (string, *Task, error) {
	task := m.Start(ctx, family, model)
	err := task.Wait()
	return task.LocalPath(), task, err
}
