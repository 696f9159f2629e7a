package operators

import (
	"context"
	"fmt"
	"strconv"

	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/queries"
	"github.com/relloyd/sparkify-dwh/rdbms"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
	"github.com/relloyd/sparkify-dwh/stats"
)

// QualityError lists the testcases whose result did not match.
type QualityError struct {
	Failed []int
	Total  int
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("data quality failed %v/%v testcases: %v", len(e.Failed), e.Total, e.Failed)
}

// DataQuality runs scalar checks and compares the first column of the first row with the expected value.
// Mismatches are logged; they fail the task only when Strict is set.
type DataQuality struct {
	Db       shared.Connector
	Checks   []queries.QualityCheck
	Strict   bool
	Recorder stats.Recorder
}

func (o *DataQuality) Execute(ctx context.Context, rc *dag.RunContext) error {
	log := rc.Log
	if len(o.Checks) == 0 {
		log.Info("Empty test case list for data quality, please check your test cases")
		return nil
	}
	rec := o.Recorder
	if rec == nil {
		rec = stats.NopRecorder{}
	}
	var failed []int
	for i, check := range o.Checks {
		log.Info("Running testcase #", i)
		records, err := rdbms.GetRecords(ctx, log, o.Db, check.SQL)
		if err != nil {
			log.Warn("Testcase #", i, " cannot run because '", err, "', please fix it before the next run")
			rec.QualityCheck(rc.DagID, strconv.Itoa(i), false)
			continue
		}
		if len(records) == 0 || len(records[0]) == 0 {
			log.Warn("Testcase #", i, " returned no rows, please fix it before the next run")
			rec.QualityCheck(rc.DagID, strconv.Itoa(i), false)
			continue
		}
		got := records[0][0]
		if helper.NormaliseNumber(got) != helper.NormaliseNumber(check.Expected) {
			failed = append(failed, i)
			log.Error("Data quality testcase #", i, " failed: value should be ", check.Expected, " but got ", helper.GetStringFromInterface(got))
			rec.QualityCheck(rc.DagID, strconv.Itoa(i), false)
			continue
		}
		log.Info("Passed testcase #", i)
		rec.QualityCheck(rc.DagID, strconv.Itoa(i), true)
	}
	if len(failed) > 0 {
		log.Info("Passed ", len(o.Checks)-len(failed), "/", len(o.Checks), " testcases")
		if o.Strict {
			return &QualityError{Failed: failed, Total: len(o.Checks)}
		}
		return nil
	}
	log.Info("Passed all testcases")
	return nil
}
