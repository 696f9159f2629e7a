package stats

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prometheusMetricNamespace = "sdw"

// PrometheusRecorder keeps its metrics in a private registry so several can coexist in tests.
type PrometheusRecorder struct {
	registry         *prometheus.Registry
	taskTotal        *prometheus.CounterVec
	taskRetries      *prometheus.CounterVec
	taskDuration     *prometheus.HistogramVec
	runTotal         *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	qualityCheckFail *prometheus.CounterVec
	qualityCheckRuns *prometheus.CounterVec
}

func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		taskTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prometheusMetricNamespace,
				Name:      "task_instances_total",
				Help:      "Finished task instances by final state.",
			},
			[]string{"dag", "task", "state"},
		),
		taskRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prometheusMetricNamespace,
				Name:      "task_retries_total",
				Help:      "Task attempts that failed and were retried.",
			},
			[]string{"dag", "task"},
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: prometheusMetricNamespace,
				Name:      "task_duration_seconds",
				Help:      "Duration of a task instance including retries.",
				Buckets:   []float64{1, 10, 60, 300, 900, 1800},
			},
			[]string{"dag", "task"},
		),
		runTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prometheusMetricNamespace,
				Name:      "dag_runs_total",
				Help:      "Finished DAG runs by final state.",
			},
			[]string{"dag", "state"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: prometheusMetricNamespace,
				Name:      "dag_run_duration_seconds",
				Help:      "Duration of a DAG run.",
				Buckets:   []float64{10, 60, 300, 900, 1800, 3600},
			},
			[]string{"dag"},
		),
		qualityCheckRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prometheusMetricNamespace,
				Name:      "quality_checks_total",
				Help:      "Data quality checks executed.",
			},
			[]string{"dag", "check"},
		),
		qualityCheckFail: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prometheusMetricNamespace,
				Name:      "quality_checks_failed_total",
				Help:      "Data quality checks whose result did not match.",
			},
			[]string{"dag", "check"},
		),
	}
	r.registry.MustRegister(
		r.taskTotal,
		r.taskRetries,
		r.taskDuration,
		r.runTotal,
		r.runDuration,
		r.qualityCheckRuns,
		r.qualityCheckFail,
	)
	return r
}

func (r *PrometheusRecorder) TaskFinished(dagID string, taskID string, state string, duration time.Duration) {
	r.taskTotal.WithLabelValues(dagID, taskID, state).Inc()
	r.taskDuration.WithLabelValues(dagID, taskID).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) TaskRetried(dagID string, taskID string) {
	r.taskRetries.WithLabelValues(dagID, taskID).Inc()
}

func (r *PrometheusRecorder) RunFinished(dagID string, state string, duration time.Duration) {
	r.runTotal.WithLabelValues(dagID, state).Inc()
	r.runDuration.WithLabelValues(dagID).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) QualityCheck(dagID string, check string, passed bool) {
	r.qualityCheckRuns.WithLabelValues(dagID, check).Inc()
	if !passed {
		r.qualityCheckFail.WithLabelValues(dagID, check).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry to tests and other exporters.
func (r *PrometheusRecorder) Gatherer() prometheus.Gatherer {
	return r.registry
}
