package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	flushCount int
}

type call struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func install(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	SetBackend(fb)
	t.Cleanup(func() { SetBackend(nil) })
	return fb
}

func TestRecordFamilySuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordFamily("nacht", "manholes", nil, 2*time.Second)
	RecordFamily("nacht", "pipes", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls = %d counters, %d histograms; want 2, 2", len(fb.counters), len(fb.histograms))
	}

	c0 := fb.counters[0]
	if c0.name != FamilyTotal || c0.value != 1 {
		t.Fatalf("counter[0] = %#v; want %s delta 1", c0, FamilyTotal)
	}
	if c0.labels["family"] != "manholes" || c0.labels["status"] != "success" || c0.labels["job"] != "nacht" {
		t.Fatalf("counter[0].labels = %v", c0.labels)
	}
	if got := fb.counters[1].labels["status"]; got != "failure" {
		t.Fatalf("counter[1].labels[status] = %q; want failure", got)
	}

	h1 := fb.histograms[1]
	if h1.name != FamilyDuration || h1.value < 1.499 || h1.value > 1.501 {
		t.Fatalf("hist[1] = %#v; want ~1.5s", h1)
	}
}

func TestRecordRowsSkipsNonPositive(t *testing.T) {
	fb := install(t)

	RecordRows("nacht", "ROHR", RowsInserted, 3)
	RecordRows("nacht", "ROHR", RowsSkipped, 0)
	RecordRows("nacht", "ROHR", RowsSkipped, -1)
	RecordWarning("nacht", "difference_area")

	if len(fb.counters) != 2 {
		t.Fatalf("counter calls = %d; want 2", len(fb.counters))
	}
	c0 := fb.counters[0]
	if c0.name != RowsTotal || c0.value != 3 || c0.labels["table"] != "ROHR" || c0.labels["kind"] != RowsInserted {
		t.Fatalf("counter[0] = %#v", c0)
	}
	if c1 := fb.counters[1]; c1.name != WarningsTotal || c1.labels["kind"] != "difference_area" {
		t.Fatalf("counter[1] = %#v", c1)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	fb := install(t)

	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("flushCount = %d; want 1", fb.flushCount)
	}

	SetBackend(nil)
	RecordRows("nacht", "ROHR", RowsInserted, 1)
	if err := Flush(); err != nil {
		t.Fatalf("Flush after reset returned error: %v", err)
	}
	if len(fb.counters) != 0 || fb.flushCount != 1 {
		t.Fatalf("old backend still receives calls: %d counters, %d flushes", len(fb.counters), fb.flushCount)
	}
}
