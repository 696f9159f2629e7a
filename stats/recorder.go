// Package stats records task and run outcomes.
package stats

import (
	"time"
)

// Recorder receives outcomes from the DAG runner and the quality check operator.
// States are the runner's state names, e.g. "success" or "failed".
type Recorder interface {
	TaskFinished(dagID string, taskID string, state string, duration time.Duration)
	TaskRetried(dagID string, taskID string)
	RunFinished(dagID string, state string, duration time.Duration)
	QualityCheck(dagID string, check string, passed bool)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) TaskFinished(string, string, string, time.Duration) {}

func (NopRecorder) TaskRetried(string, string) {}

func (NopRecorder) RunFinished(string, string, time.Duration) {}

func (NopRecorder) QualityCheck(string, string, bool) {}
