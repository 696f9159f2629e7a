package dag

import (
	"fmt"
	"time"

	"github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/rs/xid"
)

const (
	RunTypeManual    = "manual"
	RunTypeScheduled = "scheduled"
)

// RunContext is what a task sees of the run it belongs to.
// Its exported fields are available to templated task arguments, e.g. {{ .Ds }}.
type RunContext struct {
	RunID       string
	DagID       string
	TaskID      string
	LogicalDate time.Time
	TryNumber   int
	Ds          string
	DsNodash    string
	Ts          string
	Year        string
	Month       string
	Day         string
	Params      map[string]string
	Log         logger.Logger
}

// NewRunContext derives the date strings from logicalDate in UTC.
func NewRunContext(log logger.Logger, runID string, dagID string, taskID string, logicalDate time.Time, tryNumber int, params map[string]string) *RunContext {
	ld := logicalDate.UTC()
	p := make(map[string]string, len(params))
	for k, v := range params {
		p[k] = v
	}
	return &RunContext{
		RunID:       runID,
		DagID:       dagID,
		TaskID:      taskID,
		LogicalDate: ld,
		TryNumber:   tryNumber,
		Ds:          ld.Format(constants.TimeFormatDs),
		DsNodash:    ld.Format(constants.TimeFormatDsNodash),
		Ts:          ld.Format(constants.TimeFormatTs),
		Year:        ld.Format("2006"),
		Month:       ld.Format("01"),
		Day:         ld.Format("02"),
		Params:      p,
		Log:         log,
	}
}

// NewRunID returns "<runType>__<logical date RFC3339>__<xid>".
func NewRunID(runType string, logicalDate time.Time) string {
	return fmt.Sprintf("%v__%v__%v", runType, logicalDate.UTC().Format(constants.TimeFormatTs), xid.New().String())
}
