// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// An export is a short batch job, so nothing is scraped: collectors live in
// a private registry and Flush pushes them once at the end of the run, under
// the run's job name as the Pushgateway grouping key.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"qkhe/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	familyCounter  *prometheus.CounterVec // qkhe_family_total
	familyDuration *prometheus.SummaryVec // qkhe_family_duration_seconds
	rowCounter     *prometheus.CounterVec // qkhe_rows_total
	warningCounter *prometheus.CounterVec // qkhe_warnings_total
}

// NewBackend constructs a Prometheus Pushgateway backend. An empty jobName
// falls back to "qkhe".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "qkhe"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		familyCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.FamilyTotal,
			Help: "Exporter family runs, partitioned by family and status.",
		}, []string{"family", "status"}),
		familyDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.FamilyDuration,
			Help:       "Duration of exporter families in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"family", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows per target table and kind (inserted, skipped, deleted, resolved).",
		}, []string{"table", "kind"}),
		warningCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.WarningsTotal,
			Help: "Data-quality warnings raised during the export.",
		}, []string{"kind"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"family counter":  b.familyCounter,
		"family summary":  b.familyDuration,
		"row counter":     b.rowCounter,
		"warning counter": b.warningCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

// IncCounter routes known metric names to their collector; the job label
// is carried by the push grouping key and dropped here.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.FamilyTotal:
		if b.familyCounter != nil {
			b.familyCounter.WithLabelValues(labels["family"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["table"], labels["kind"]).Add(delta)
		}
	case metrics.WarningsTotal:
		if b.warningCounter != nil {
			b.warningCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.FamilyDuration || b.familyDuration == nil {
		return
	}
	b.familyDuration.WithLabelValues(labels["family"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
