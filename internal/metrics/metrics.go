// Package metrics holds the Prometheus collectors exported by userhub.
package metrics

import (
	"net/http"

	"github.com/nebari-dev/userhub/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry      *prometheus.Registry
	AuditRecords  *prometheus.CounterVec
	AuditFailures *prometheus.CounterVec
	AuditSkipped  prometheus.Counter
	UserMutations *prometheus.CounterVec
}

// New creates a private registry and registers all metrics on it
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AuditRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userhub_audit_records_total",
			Help: "Audit records appended, by action",
		}, []string{"action"}),
		AuditFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userhub_audit_append_failures_total",
			Help: "Audit records that could not be written, by action",
		}, []string{"action"}),
		AuditSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "userhub_audit_skipped_noop_total",
			Help: "Updates that changed no tracked field and produced no audit record",
		}),
		UserMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userhub_user_mutations_total",
			Help: "Committed user mutations, by action",
		}, []string{"action"}),
	}
}

// Appended implements audit.Observer
func (m *Metrics) Appended(action models.AuditAction) {
	m.AuditRecords.WithLabelValues(string(action)).Inc()
}

// AppendFailed implements audit.Observer
func (m *Metrics) AppendFailed(action models.AuditAction) {
	m.AuditFailures.WithLabelValues(string(action)).Inc()
}

// SkippedNoop implements audit.Observer
func (m *Metrics) SkippedNoop() {
	m.AuditSkipped.Inc()
}

// UserMutated counts a committed user mutation
func (m *Metrics) UserMutated(action models.AuditAction) {
	m.UserMutations.WithLabelValues(string(action)).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
