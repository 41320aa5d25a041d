// Package metrics provides Prometheus metrics for pipeline runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"reshape/internal/integrity"
	"reshape/internal/models"
)

const namespace = "reshape"

// Severities of integrity violations.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Metrics holds the collectors of one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// RowsTotal counts rows produced per layout and table
	RowsTotal *prometheus.CounterVec

	// ViolationsTotal counts integrity errors and warnings by kind
	ViolationsTotal *prometheus.CounterVec

	// StageDuration tracks how long each pipeline stage took
	StageDuration *prometheus.HistogramVec

	// LoadRowsTotal counts rows or documents written to each store
	LoadRowsTotal *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Total number of rows produced per layout and table",
			},
			[]string{"layout", "table"},
		),
		ViolationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Total number of integrity violations by severity and kind",
			},
			[]string{"layout", "severity", "kind"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"stage"},
		),
		LoadRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_rows_total",
				Help:      "Total number of rows or documents written per store and table",
			},
			[]string{"store", "table"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTables records the row count of every table of a layout.
func (m *Metrics) ObserveTables(layout string, tables []models.Table) {
	for _, t := range tables {
		m.RowsTotal.WithLabelValues(layout, t.Name).Add(float64(t.Len()))
	}
}

// ObserveReport records the violations of an integrity report.
func (m *Metrics) ObserveReport(report *integrity.Report) {
	for kind, n := range report.ErrorsByKind() {
		m.ViolationsTotal.WithLabelValues(report.Layout, SeverityError, string(kind)).Add(float64(n))
	}

	for kind, n := range report.WarningsByKind() {
		m.ViolationsTotal.WithLabelValues(report.Layout, SeverityWarning, string(kind)).Add(float64(n))
	}
}

// ObserveLoad records the rows written to a store.
func (m *Metrics) ObserveLoad(store string, loaded map[string]int) {
	for table, n := range loaded {
		m.LoadRowsTotal.WithLabelValues(store, table).Add(float64(n))
	}
}

// Stage starts timing a stage; call the returned func when it ends.
func (m *Metrics) Stage(name string) func() {
	timer := prometheus.NewTimer(m.StageDuration.WithLabelValues(name))

	return func() { timer.ObserveDuration() }
}

// ObserveStage records a stage duration measured elsewhere.
func (m *Metrics) ObserveStage(name string, d time.Duration) {
	m.StageDuration.WithLabelValues(name).Observe(d.Seconds())
}

// WriteTextfile writes the metrics in the text exposition format, for the node
// exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
