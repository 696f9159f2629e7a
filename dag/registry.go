package dag

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ErrRunNotFound is returned when a run id is unknown to the registry.
var ErrRunNotFound = fmt.Errorf("run not found")

// TaskInstance is the state of one task within one run.
type TaskInstance struct {
	TaskID    string    `json:"taskId"`
	State     State     `json:"state"`
	TryNumber int       `json:"tryNumber"`
	StartTime time.Time `json:"startTime,omitempty"`
	EndTime   time.Time `json:"endTime,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// RunResult is the state of one run of a DAG.
type RunResult struct {
	RunID       string         `json:"runId"`
	DagID       string         `json:"dagId"`
	LogicalDate time.Time      `json:"logicalDate"`
	State       State          `json:"state"`
	StartTime   time.Time      `json:"startTime"`
	EndTime     time.Time      `json:"endTime,omitempty"`
	Tasks       []TaskInstance `json:"tasks"`
}

// Task returns the instance for taskID or nil.
func (r *RunResult) Task(taskID string) *TaskInstance {
	for i := range r.Tasks {
		if r.Tasks[i].TaskID == taskID {
			return &r.Tasks[i]
		}
	}
	return nil
}

func (r *RunResult) copy() *RunResult {
	c := *r
	c.Tasks = append([]TaskInstance(nil), r.Tasks...)
	return &c
}

type runEntry struct {
	result *RunResult
	cancel context.CancelFunc
}

// DefaultMaxFinishedRuns is how many finished runs a registry keeps.
const DefaultMaxFinishedRuns = 100

// RunRegistry is a map of runs that is safe for concurrent use.
// It lets the web server and scheduler see and stop runs executed by the runner.
// Unfinished runs are always kept. Only the newest maxFinished finished runs are.
type RunRegistry struct {
	mu          sync.RWMutex
	runs        map[string]*runEntry
	order       []string
	maxFinished int
}

func NewRunRegistry() *RunRegistry {
	return NewRunRegistryWithLimit(DefaultMaxFinishedRuns)
}

// NewRunRegistryWithLimit keeps at most maxFinished finished runs. Use 0 or less to keep all.
func NewRunRegistryWithLimit(maxFinished int) *RunRegistry {
	return &RunRegistry{runs: make(map[string]*runEntry), maxFinished: maxFinished}
}

// Start adds a run in the running state. cancel may be nil.
func (r *RunRegistry) Start(result *RunResult, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[result.RunID]; !ok {
		r.order = append(r.order, result.RunID)
	}
	r.runs[result.RunID] = &runEntry{result: result.copy(), cancel: cancel}
}

func (r *RunRegistry) UpdateTask(runID string, ti TaskInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.runs[runID]
	if !ok {
		return
	}
	if t := e.result.Task(ti.TaskID); t != nil {
		*t = ti
		return
	}
	e.result.Tasks = append(e.result.Tasks, ti)
}

// Finish replaces the stored run with its final result.
func (r *RunRegistry) Finish(result *RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.runs[result.RunID]
	if !ok {
		r.order = append(r.order, result.RunID)
		e = &runEntry{}
		r.runs[result.RunID] = e
	}
	e.result = result.copy()
	e.cancel = nil
	r.prune()
}

// prune drops the oldest finished runs beyond maxFinished. The caller holds the lock.
func (r *RunRegistry) prune() {
	if r.maxFinished <= 0 {
		return
	}
	finished := 0
	for _, id := range r.order {
		if r.runs[id].result.State.IsFinished() {
			finished++
		}
	}
	drop := finished - r.maxFinished
	if drop <= 0 {
		return
	}
	kept := r.order[:0]
	for _, id := range r.order {
		if drop > 0 && r.runs[id].result.State.IsFinished() {
			delete(r.runs, id)
			drop--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

// Load returns a copy of the run.
func (r *RunRegistry) Load(runID string) (*RunResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.runs[runID]
	if !ok {
		return nil, false
	}
	return e.result.copy(), true
}

// List returns copies of all runs, newest first.
func (r *RunRegistry) List() []*RunResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RunResult, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.runs[r.order[i]].result.copy())
	}
	return out
}

// Active is true while dagID has a run that has not finished.
func (r *RunRegistry) Active(dagID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.runs {
		if e.result.DagID == dagID && !e.result.State.IsFinished() {
			return true
		}
	}
	return false
}

// Stop cancels the context of a running run.
func (r *RunRegistry) Stop(runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.runs[runID]
	if !ok {
		return ErrRunNotFound
	}
	if e.result.State.IsFinished() {
		return fmt.Errorf("run %v already finished with state %v", runID, e.result.State)
	}
	if e.cancel != nil {
		e.cancel()
	}
	return nil
}

// StopAll cancels every unfinished run and returns their ids.
func (r *RunRegistry) StopAll() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	stopped := make([]string, 0)
	for _, id := range r.order {
		e := r.runs[id]
		if !e.result.State.IsFinished() && e.cancel != nil {
			e.cancel()
			stopped = append(stopped, id)
		}
	}
	return stopped
}
