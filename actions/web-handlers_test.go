package actions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/gorilla/mux"
	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2018, 11, 1, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, task dag.Task) (*DagService, *dag.Scheduler, *mux.Router, chan string) {
	t.Helper()
	log := logger.NewLogger("test", testLogLevel, false)
	d := dag.New("test_dag", "a test", "@hourly", dag.DefaultArgs{Owner: "test"})
	d.AddTask("only", task)
	rec := stats.NewPrometheusRecorder()
	reg := dag.NewRunRegistry()
	s, err := dag.NewScheduler(log, dag.NewRunner(log, rec, reg), d)
	require.NoError(t, err)
	svc := &DagService{
		Schedulers: map[string]*dag.Scheduler{d.ID: s},
		Registry:   reg,
		Metrics:    rec.Handler(),
		Now:        func() time.Time { return testNow },
	}
	chanStop := make(chan string, 1)
	return svc, s, newRouter(log, svc, chanStop), chanStop
}

func do(r http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func succeed() dag.Task {
	return dag.TaskFunc(func(ctx context.Context, rc *dag.RunContext) error { return nil })
}

func TestHealthAndStop(t *testing.T) {
	_, _, r, chanStop := newTestService(t, succeed())
	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status": "ok"`)

	w = do(r, http.MethodGet, "/stop", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stop", <-chanStop)
}

func TestDagList(t *testing.T) {
	_, _, r, _ := newTestService(t, succeed())
	w := do(r, http.MethodGet, "/dags", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := struct {
		Dags []struct {
			Dag     dag.Description `json:"dag"`
			Paused  bool            `json:"paused"`
			NextRun time.Time       `json:"nextRun"`
		} `json:"dags"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Dags, 1)
	assert.Equal(t, "test_dag", got.Dags[0].Dag.DagID)
	assert.Equal(t, time.Date(2018, 11, 1, 11, 0, 0, 0, time.UTC), got.Dags[0].NextRun)
	assert.False(t, got.Dags[0].Paused)
}

func TestTriggerAndStatus(t *testing.T) {
	_, s, r, _ := newTestService(t, succeed())

	w := do(r, http.MethodPost, "/dags/missing/trigger", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/dags/test_dag/trigger", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/dags/test_dag/trigger", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = do(r, http.MethodPost, "/dags/test_dag/trigger", `{"logicalDate": "2018-11-01"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	trig := struct {
		RunId string `json:"runId"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trig))
	assert.True(t, strings.HasPrefix(trig.RunId, "manual__2018-11-01T00:00:00Z__"), trig.RunId)
	s.Wait()

	w = do(r, http.MethodGet, "/runs/"+trig.RunId+"/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	status := struct {
		Status string `json:"status"`
		Run    struct {
			State string `json:"state"`
			Tasks []struct {
				TaskID string `json:"taskId"`
				State  string `json:"state"`
			} `json:"tasks"`
		} `json:"run"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "success", status.Run.State)
	require.Len(t, status.Run.Tasks, 1)
	assert.Equal(t, "success", status.Run.Tasks[0].State)

	w = do(r, http.MethodGet, "/runs", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), trig.RunId)

	w = do(r, http.MethodGet, "/runs/nope/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/runs/"+trig.RunId+"/stop", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(r, http.MethodPost, "/runs/nope/stop", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sdw_dag_runs_total{dag="test_dag",state="success"} 1`)
}

func TestStopRunningRun(t *testing.T) {
	started := make(chan struct{})
	svc, s, r, _ := newTestService(t, dag.TaskFunc(func(ctx context.Context, rc *dag.RunContext) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	w := do(r, http.MethodPost, "/dags/test_dag/trigger", "")
	require.Equal(t, http.StatusOK, w.Code)
	<-started

	w = do(r, http.MethodPost, "/dags/test_dag/trigger", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	runs := svc.Registry.List()
	require.Len(t, runs, 1)
	w = do(r, http.MethodPost, "/runs/"+runs[0].RunID+"/stop", "")
	assert.Equal(t, http.StatusOK, w.Code)
	s.Wait()
	res, ok := svc.Registry.Load(runs[0].RunID)
	require.True(t, ok)
	assert.Equal(t, dag.StateShutdown, res.State)
}

func TestTriggerBodyReadError(t *testing.T) {
	_, _, r, _ := newTestService(t, succeed())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dags/test_dag/trigger", iotest.ErrReader(errors.New("connection reset")))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error reading request body")
}
