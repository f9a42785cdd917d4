// Package metrics records what an export did, independent of where the
// numbers end up.
//
// Callers use the Record* helpers; a concrete backend (prompush, datadog)
// is installed once at startup with SetBackend. Until then every call is a
// no-op, so library code can record unconditionally.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	FamilyTotal    = "qkhe_family_total"
	FamilyDuration = "qkhe_family_duration_seconds"
	RowsTotal      = "qkhe_rows_total"
	WarningsTotal  = "qkhe_warnings_total"
)

// Row kinds for RecordRows.
const (
	RowsInserted = "inserted"
	RowsSkipped  = "skipped"
	RowsDeleted  = "deleted"
	RowsResolved = "resolved"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-like value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil restores the no-op.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordFamily counts one exporter family run and its duration.
func RecordFamily(job, family string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "family": family, "status": status}

	b := current()
	b.IncCounter(FamilyTotal, 1, lbls)
	b.ObserveHistogram(FamilyDuration, d.Seconds(), lbls)
}

// RecordRows adds delta rows of the given kind for a target table.
func RecordRows(job, table, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":   job,
		"table": table,
		"kind":  kind,
	})
}

// RecordWarning counts a data-quality warning.
func RecordWarning(job, kind string) {
	current().IncCounter(WarningsTotal, 1, Labels{"job": job, "kind": kind})
}
