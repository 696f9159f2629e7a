package stats

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	r := NewPrometheusRecorder()
	r.TaskFinished("sparkify_dag", "Stage_events", "success", 2*time.Second)
	r.TaskFinished("sparkify_dag", "Stage_events", "success", time.Second)
	r.TaskRetried("sparkify_dag", "Stage_songs")
	r.RunFinished("sparkify_dag", "failed", time.Minute)
	r.QualityCheck("sparkify_dag", "0", true)
	r.QualityCheck("sparkify_dag", "1", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.taskTotal.WithLabelValues("sparkify_dag", "Stage_events", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.taskRetries.WithLabelValues("sparkify_dag", "Stage_songs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runTotal.WithLabelValues("sparkify_dag", "failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.qualityCheckFail.WithLabelValues("sparkify_dag", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.qualityCheckFail.WithLabelValues("sparkify_dag", "1")))
}

func TestPrometheusRecorderHandler(t *testing.T) {
	r := NewPrometheusRecorder()
	r.RunFinished("sparkify_dag", "success", time.Second)
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sdw_dag_runs_total{dag="sparkify_dag",state="success"} 1`)
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	r.TaskFinished("d", "t", "success", 0)
	r.TaskRetried("d", "t")
	r.RunFinished("d", "success", 0)
	r.QualityCheck("d", "c", false)
}
