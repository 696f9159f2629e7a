package dag

import (
	"context"
	"fmt"
	"time"

	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/stats"
	"golang.org/x/sync/semaphore"
)

// Runner executes DAG runs.
// A task starts once all of its parents succeeded. A failed parent marks its descendants upstream_failed.
type Runner struct {
	Log      logger.Logger
	Recorder stats.Recorder
	Registry *RunRegistry
	// MaxActiveTasks caps concurrently executing attempts; zero means no cap.
	MaxActiveTasks int64
	// Sleep waits between attempts and returns early with ctx.Err().
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

func NewRunner(log logger.Logger, recorder stats.Recorder, registry *RunRegistry) *Runner {
	if recorder == nil {
		recorder = stats.NopRecorder{}
	}
	if registry == nil {
		registry = NewRunRegistry()
	}
	return &Runner{
		Log:      log,
		Recorder: recorder,
		Registry: registry,
		Sleep:    sleepContext,
		Now:      time.Now,
	}
}

// Run executes d once as a manual run.
func (r *Runner) Run(ctx context.Context, d *DAG, logicalDate time.Time) (*RunResult, error) {
	return r.RunWithID(ctx, d, NewRunID(RunTypeManual, logicalDate), logicalDate)
}

// RunWithID executes d and blocks until every task has finished.
// An error is returned only when d is invalid; task failures are reported in the result.
// Cancelling ctx stops the run: running attempts see the cancellation and unstarted tasks end as shutdown.
func (r *Runner) RunWithID(ctx context.Context, d *DAG, runID string, logicalDate time.Time) (*RunResult, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	nodes, err := d.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := r.MaxActiveTasks
	if limit <= 0 {
		limit = int64(len(nodes))
	}
	e := &execution{
		r:           r,
		d:           d,
		runID:       runID,
		logicalDate: logicalDate,
		log:         r.log().WithField("run", runID),
		sem:         semaphore.NewWeighted(limit),
		index:       make(map[*TaskNode]int, len(nodes)),
		remaining:   make(map[*TaskNode]int, len(nodes)),
		done:        make(chan taskOutcome, len(nodes)),
		result: &RunResult{
			RunID:       runID,
			DagID:       d.ID,
			LogicalDate: logicalDate.UTC(),
			State:       StateRunning,
			StartTime:   r.now(),
			Tasks:       make([]TaskInstance, len(nodes)),
		},
	}
	for i, n := range nodes {
		e.index[n] = i
		e.remaining[n] = len(n.upstream)
		e.result.Tasks[i] = TaskInstance{TaskID: n.ID, State: StateNone}
	}
	r.registry().Start(e.result, cancel)
	e.log.Info("Starting run of DAG ", d.ID, " for logical date ", logicalDate.UTC().Format(time.RFC3339))

	e.run(ctx, nodes)

	e.result.EndTime = r.now()
	e.result.State = e.finalState(ctx)
	r.registry().Finish(e.result)
	r.recorder().RunFinished(d.ID, e.result.State.String(), e.result.EndTime.Sub(e.result.StartTime))
	if e.result.State == StateSuccess {
		e.log.Info("Run of DAG ", d.ID, " completed successfully")
	} else {
		e.log.Error("Run of DAG ", d.ID, " finished with state ", e.result.State)
	}
	return e.result, nil
}

func (r *Runner) log() logger.Logger {
	if r.Log == nil {
		r.Log = logger.NewLogger("sdw", "info", false)
	}
	return r.Log
}

func (r *Runner) recorder() stats.Recorder {
	if r.Recorder == nil {
		return stats.NopRecorder{}
	}
	return r.Recorder
}

func (r *Runner) registry() *RunRegistry {
	if r.Registry == nil {
		r.Registry = NewRunRegistry()
	}
	return r.Registry
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep == nil {
		return sleepContext(ctx, d)
	}
	return r.Sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type taskOutcome struct {
	node     *TaskNode
	instance TaskInstance
}

// execution holds the state of one run.
// result and remaining are only touched by the goroutine in run().
type execution struct {
	r           *Runner
	d           *DAG
	runID       string
	logicalDate time.Time
	log         logger.Logger
	sem         *semaphore.Weighted
	result      *RunResult
	index       map[*TaskNode]int
	remaining   map[*TaskNode]int
	done        chan taskOutcome
}

func (e *execution) run(ctx context.Context, nodes []*TaskNode) {
	running := 0
	for _, n := range nodes {
		if len(n.upstream) == 0 {
			e.launch(ctx, n)
			running++
		}
	}
	for running > 0 {
		o := <-e.done
		running--
		e.set(o.instance)
		e.log.Info("Task ", o.node.ID, " finished with state ", o.instance.State)
		for _, c := range o.node.downstream {
			switch o.instance.State {
			case StateSuccess:
				e.remaining[c]--
				if e.remaining[c] == 0 && e.state(c) == StateNone {
					e.launch(ctx, c)
					running++
				}
			case StateShutdown:
				e.skip(c, StateShutdown)
			default:
				e.skip(c, StateUpstreamFailed)
			}
		}
	}
	// Anything never reached was cut off by cancellation.
	for i := range e.result.Tasks {
		if e.result.Tasks[i].State == StateNone {
			e.result.Tasks[i].State = StateShutdown
			e.r.registry().UpdateTask(e.runID, e.result.Tasks[i])
		}
	}
}

func (e *execution) finalState(ctx context.Context) State {
	success := true
	for _, t := range e.result.Tasks {
		if t.State != StateSuccess {
			success = false
			break
		}
	}
	switch {
	case success:
		return StateSuccess
	case ctx.Err() != nil:
		return StateShutdown
	default:
		return StateFailed
	}
}

func (e *execution) state(n *TaskNode) State {
	return e.result.Tasks[e.index[n]].State
}

func (e *execution) set(ti TaskInstance) {
	for i := range e.result.Tasks {
		if e.result.Tasks[i].TaskID == ti.TaskID {
			e.result.Tasks[i] = ti
			break
		}
	}
	e.r.registry().UpdateTask(e.runID, ti)
}

// skip marks n and its descendants with state unless they already have one.
func (e *execution) skip(n *TaskNode, state State) {
	if e.state(n) != StateNone {
		return
	}
	now := e.r.now()
	e.set(TaskInstance{TaskID: n.ID, State: state, StartTime: now, EndTime: now})
	e.r.recorder().TaskFinished(e.d.ID, n.ID, state.String(), 0)
	e.log.Warn("Task ", n.ID, " marked ", state)
	for _, c := range n.downstream {
		e.skip(c, state)
	}
}

func (e *execution) launch(ctx context.Context, n *TaskNode) {
	e.set(TaskInstance{TaskID: n.ID, State: StateScheduled})
	go func() {
		e.done <- e.execute(ctx, n)
	}()
}

// execute runs attempts of n until one succeeds, retries are exhausted or ctx is cancelled.
func (e *execution) execute(ctx context.Context, n *TaskNode) taskOutcome {
	log := e.log.WithField("task", n.ID)
	maxTries := n.Retries() + 1
	ti := TaskInstance{TaskID: n.ID, StartTime: e.r.now()}
	for try := 1; ; try++ {
		ti.TryNumber = try
		if err := e.sem.Acquire(ctx, 1); err != nil {
			ti.State = StateShutdown
			ti.Error = err.Error()
			break
		}
		ti.State = StateRunning
		e.r.registry().UpdateTask(e.runID, ti)
		log.Debug("Starting attempt ", try, " of ", maxTries)
		err := e.attempt(ctx, n, log, try)
		e.sem.Release(1)
		if err == nil {
			ti.State = StateSuccess
			ti.Error = ""
			break
		}
		ti.Error = err.Error()
		if ctx.Err() != nil {
			ti.State = StateShutdown
			break
		}
		if try >= maxTries {
			ti.State = StateFailed
			log.Error("Task failed after ", try, " attempt(s): ", err)
			break
		}
		ti.State = StateUpForRetry
		e.r.registry().UpdateTask(e.runID, ti)
		e.r.recorder().TaskRetried(e.d.ID, n.ID)
		log.Warn("Attempt ", try, " failed, retrying in ", n.RetryDelay(), ": ", err)
		if err := e.r.sleep(ctx, n.RetryDelay()); err != nil {
			ti.State = StateShutdown
			break
		}
	}
	ti.EndTime = e.r.now()
	e.r.recorder().TaskFinished(e.d.ID, n.ID, ti.State.String(), ti.EndTime.Sub(ti.StartTime))
	return taskOutcome{node: n, instance: ti}
}

func (e *execution) attempt(ctx context.Context, n *TaskNode, log logger.Logger, try int) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task %v panicked: %v", n.ID, p)
		}
	}()
	rc := NewRunContext(log, e.runID, e.d.ID, n.ID, e.logicalDate, try, e.d.Params)
	return n.Task.Execute(ctx, rc)
}
