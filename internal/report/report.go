// Package report is the progress and error channel of an export run.
//
// The pipeline only hands over a stage label with a completion fraction,
// plus notices, data-quality warnings and terminal errors. How they are
// shown (log lines, a progress bar, a test recorder) is up to the sink.
package report

import (
	"sync"
	"time"
)

// Reporter receives run progress and messages.
type Reporter interface {
	// Progress reports label with a completion fraction in [0,1].
	Progress(label string, fraction float64)
	// Notice is an informational message.
	Notice(title, detail string)
	// Warning is a non-fatal data-quality finding.
	Warning(title, detail string)
	// Error is a terminal failure. persist is how long a UI should keep
	// the message visible; 0 means until dismissed.
	Error(title, detail string, persist time.Duration)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Progress(string, float64)            {}
func (Nop) Notice(string, string)               {}
func (Nop) Warning(string, string)              {}
func (Nop) Error(string, string, time.Duration) {}

// Multi fans out to several reporters in order.
func Multi(rs ...Reporter) Reporter {
	out := make(multi, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multi []Reporter

func (m multi) Progress(label string, f float64) {
	for _, r := range m {
		r.Progress(label, f)
	}
}

func (m multi) Notice(title, detail string) {
	for _, r := range m {
		r.Notice(title, detail)
	}
}

func (m multi) Warning(title, detail string) {
	for _, r := range m {
		r.Warning(title, detail)
	}
}

func (m multi) Error(title, detail string, persist time.Duration) {
	for _, r := range m {
		r.Error(title, detail, persist)
	}
}

// Monotonic clamps fractions into [0,1] and never lets them decrease.
func Monotonic(r Reporter) Reporter {
	return &monotonic{Reporter: r}
}

type monotonic struct {
	Reporter
	mu   sync.Mutex
	last float64
}

func (m *monotonic) Progress(label string, f float64) {
	m.mu.Lock()
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	if f < m.last {
		f = m.last
	}
	m.last = f
	m.mu.Unlock()
	m.Reporter.Progress(label, f)
}
