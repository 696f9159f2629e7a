package dag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/robfig/cron"
)

// ErrRunActive is returned by Trigger while the DAG already has a run in progress.
var ErrRunActive = fmt.Errorf("dag already has an active run")

// Schedule returns the next activation time later than the given time.
type Schedule interface {
	Next(time.Time) time.Time
}

// ParseSchedule accepts a standard five field cron expression or a descriptor such as @hourly.
func ParseSchedule(expr string) (Schedule, error) {
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %v", expr, err)
	}
	return s, nil
}

// Scheduler starts runs of one DAG at the times given by its cron schedule.
// At most one run of the DAG is active; ticks that arrive while a run is active are skipped.
type Scheduler struct {
	log      logger.Logger
	runner   *Runner
	dag      *DAG
	schedule Schedule
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	active   bool
	paused   bool
	now      func() time.Time
}

func NewScheduler(log logger.Logger, runner *Runner, d *DAG) (*Scheduler, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	s, err := ParseSchedule(d.Schedule)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		log:      log.WithField("dag", d.ID),
		runner:   runner,
		dag:      d,
		schedule: s,
		ctx:      context.Background(),
		now:      time.Now,
	}, nil
}

// Next returns the next scheduled logical date after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Start begins the tick loop. Runs started by Trigger or a tick are children of ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	loopCtx := s.ctx
	s.mu.Unlock()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(loopCtx)
	}()
	s.log.Info("Scheduler started with schedule ", s.dag.Schedule, ", next run at ", s.Next(s.now()).Format(time.RFC3339))
}

// Stop cancels the tick loop and any run in progress, then waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		next := s.Next(s.now())
		t := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
			if s.Paused() {
				s.log.Info("DAG is paused, skipping scheduled run for ", next.Format(time.RFC3339))
				continue
			}
			if _, err := s.Trigger(next.Truncate(time.Minute), RunTypeScheduled); err != nil {
				s.log.Warn("Skipping scheduled run for ", next.Format(time.RFC3339), ": ", err)
			}
		}
	}
}

// Trigger starts a run for logicalDate in the background and returns its id.
func (s *Scheduler) Trigger(logicalDate time.Time, runType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active || s.runner.registry().Active(s.dag.ID) {
		return "", ErrRunActive
	}
	if s.ctx.Err() != nil {
		return "", fmt.Errorf("scheduler is stopped")
	}
	runID := NewRunID(runType, logicalDate)
	s.active = true
	s.wg.Add(1)
	go func(ctx context.Context) {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.active = false
			s.mu.Unlock()
		}()
		if _, err := s.runner.RunWithID(ctx, s.dag, runID, logicalDate); err != nil {
			s.log.Error("Run ", runID, " could not start: ", err)
		}
	}(s.ctx)
	return runID, nil
}

// Wait blocks until runs started by Trigger have finished. It does not stop the tick loop.
func (s *Scheduler) Wait() {
	for {
		s.mu.Lock()
		active := s.active
		s.mu.Unlock()
		if !active {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// SetPaused stops or resumes scheduled runs. Trigger still starts runs while paused.
func (s *Scheduler) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Dag returns the DAG this scheduler runs.
func (s *Scheduler) Dag() *DAG {
	return s.dag
}
