package pipeline

import (
	"context"

	"qkhe/internal/storage"
)

// Allocator hands out the IDs every target row carries. One counter is
// shared by all tables of a run; it is seeded from the control record and
// written back after each family.
type Allocator struct {
	next      int64
	persisted int64
}

func NewAllocator(seed int64) *Allocator {
	if seed < 1 {
		seed = 1
	}
	return &Allocator{next: seed, persisted: seed}
}

// Peek returns the ID the next call to Next will hand out.
func (a *Allocator) Peek() int64 { return a.next }

// Next returns the current value and advances the counter.
func (a *Allocator) Next() int64 {
	id := a.next
	a.next++
	return id
}

// Persisted is the value last written to the control record.
func (a *Allocator) Persisted() int64 { return a.persisted }

// Persist writes the counter to the control record in tx.
func (a *Allocator) Persist(ctx context.Context, tx *storage.Tx) error {
	if err := tx.SetNextID(ctx, a.next); err != nil {
		return err
	}
	a.persisted = a.next
	return nil
}
