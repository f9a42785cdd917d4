package report

import (
	"sync"
	"time"
)

// Kind classifies a recorded event.
type Kind string

const (
	KindProgress Kind = "progress"
	KindNotice   Kind = "notice"
	KindWarning  Kind = "warning"
	KindError    Kind = "error"
)

// Event is one call captured by a Recorder.
type Event struct {
	Kind     Kind
	Title    string // label for progress events
	Detail   string
	Fraction float64
	Persist  time.Duration
}

// Recorder keeps every event in memory. It is used by tests and by
// callers that want to inspect warnings after a run.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) Progress(label string, f float64) {
	r.add(Event{Kind: KindProgress, Title: label, Fraction: f})
}

func (r *Recorder) Notice(title, detail string) {
	r.add(Event{Kind: KindNotice, Title: title, Detail: detail})
}

func (r *Recorder) Warning(title, detail string) {
	r.add(Event{Kind: KindWarning, Title: title, Detail: detail})
}

func (r *Recorder) Error(title, detail string, persist time.Duration) {
	r.add(Event{Kind: KindError, Title: title, Detail: detail, Persist: persist})
}

// Events returns a copy of all events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Filter returns the events of one kind.
func (r *Recorder) Filter(k Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
