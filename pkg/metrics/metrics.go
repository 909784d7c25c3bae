// Package metrics owns the prometheus registry for the CMS process.
// Labels stay low-cardinality: operation kinds, sources, and statuses,
// never paths or site-provided strings. Per-path detail goes to the
// structured log instead.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CMSMetrics collects content, git, and deployment measurements into one
// registry served at /metrics.
type CMSMetrics struct {
	reg     *prometheus.Registry
	handler http.Handler

	contentOpsTotal   *prometheus.CounterVec
	contentOpDur      *prometheus.HistogramVec
	contentOpBytes    *prometheus.HistogramVec
	recordOpsTotal    *prometheus.CounterVec
	gitOpsTotal       *prometheus.CounterVec
	gitOpDur          *prometheus.HistogramVec
	deployTotal       *prometheus.CounterVec
	deployStageDur    *prometheus.HistogramVec
	deployActive      prometheus.Gauge
	deployQueueDepth  prometheus.Gauge
	deployLogCompacts prometheus.Counter
}

// New returns a fresh registry with the standard Go and process
// collectors plus every CMS collector registered.
func New() *CMSMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &CMSMetrics{
		contentOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cms_content_operations_total",
			Help: "Total content operations by kind, site, and outcome",
		}, []string{"op", "site", "outcome"}),
		contentOpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cms_content_operation_duration_seconds",
			Help:    "Content operation latency by kind",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"op"}),
		contentOpBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cms_content_operation_size_bytes",
			Help:    "Payload size of content reads and writes",
			Buckets: []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304},
		}, []string{"op"}),
		recordOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cms_record_operations_total",
			Help: "Total relational record operations by kind and outcome",
		}, []string{"op", "outcome"}),
		gitOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cms_git_operations_total",
			Help: "Total git operations by kind and outcome",
		}, []string{"op", "outcome"}),
		gitOpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cms_git_operation_duration_seconds",
			Help:    "Git operation latency by kind",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"op"}),
		deployTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cms_deployments_total",
			Help: "Total deployment tasks by terminal status",
		}, []string{"status"}),
		deployStageDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cms_deployment_stage_duration_seconds",
			Help:    "Deployment stage latency by stage",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"stage"}),
		deployActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cms_deployments_active",
			Help: "Deployment tasks currently in a non-terminal state",
		}),
		deployQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cms_deployment_queue_depth",
			Help: "Deployment runs waiting for a worker",
		}),
		deployLogCompacts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cms_deployment_log_compactions_total",
			Help: "Times a task log hit its cap and was compacted",
		}),
	}
	reg.MustRegister(
		m.contentOpsTotal,
		m.contentOpDur,
		m.contentOpBytes,
		m.recordOpsTotal,
		m.gitOpsTotal,
		m.gitOpDur,
		m.deployTotal,
		m.deployStageDur,
		m.deployActive,
		m.deployQueueDepth,
		m.deployLogCompacts,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	m.reg = reg
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *CMSMetrics) Handler() http.Handler {
	return m.handler
}

// Registry exposes the underlying registry for test scraping.
func (m *CMSMetrics) Registry() *prometheus.Registry {
	return m.reg
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// ObserveContentOp records one content operation. size < 0 means the
// operation has no payload (delete, list).
func (m *CMSMetrics) ObserveContentOp(op, site string, size int64, dur time.Duration, success bool) {
	if m == nil {
		return
	}
	m.contentOpsTotal.WithLabelValues(op, site, outcome(success)).Inc()
	m.contentOpDur.WithLabelValues(op).Observe(dur.Seconds())
	if size >= 0 {
		m.contentOpBytes.WithLabelValues(op).Observe(float64(size))
	}
}

// ObserveRecordOp records one relational record operation.
func (m *CMSMetrics) ObserveRecordOp(op string, success bool) {
	if m == nil {
		return
	}
	m.recordOpsTotal.WithLabelValues(op, outcome(success)).Inc()
}

// ObserveGitOp records one git operation.
func (m *CMSMetrics) ObserveGitOp(op string, dur time.Duration, success bool) {
	if m == nil {
		return
	}
	m.gitOpsTotal.WithLabelValues(op, outcome(success)).Inc()
	m.gitOpDur.WithLabelValues(op).Observe(dur.Seconds())
}

// ObserveDeployment records a task reaching a terminal status.
func (m *CMSMetrics) ObserveDeployment(status string) {
	if m == nil {
		return
	}
	m.deployTotal.WithLabelValues(status).Inc()
}

// ObserveDeployStage records one pipeline stage duration.
func (m *CMSMetrics) ObserveDeployStage(stage string, dur time.Duration) {
	if m == nil {
		return
	}
	m.deployStageDur.WithLabelValues(stage).Observe(dur.Seconds())
}

// SetActiveDeployments tracks the non-terminal task count.
func (m *CMSMetrics) SetActiveDeployments(n int) {
	if m == nil {
		return
	}
	m.deployActive.Set(float64(n))
}

// SetQueueDepth tracks queued deployment runs.
func (m *CMSMetrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.deployQueueDepth.Set(float64(n))
}

// IncLogCompactions counts one task-log compaction.
func (m *CMSMetrics) IncLogCompactions() {
	if m == nil {
		return
	}
	m.deployLogCompacts.Inc()
}
