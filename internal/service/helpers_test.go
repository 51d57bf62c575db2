package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rosterapp/roster/internal/store"
)

var errDiskFull = errors.New("disk full")

// failingStore wraps an adapter and fails every write while failWrites is set.
type failingStore struct {
	store.Adapter
	failWrites atomic.Bool
}

func (f *failingStore) SetItem(ctx context.Context, key string, value any) error {
	if f.failWrites.Load() {
		return errDiskFull
	}
	return f.Adapter.SetItem(ctx, key, value)
}

func (f *failingStore) SetItems(ctx context.Context, items map[string]any) error {
	if f.failWrites.Load() {
		return errDiskFull
	}
	return f.Adapter.SetItems(ctx, items)
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []any
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) Events() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	mem     *store.Memory
	store   *failingStore
	emitter *recordingEmitter
	clock   *clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := store.NewMemory(nil)
	t.Cleanup(func() { _ = mem.Close() })
	return &testEnv{
		mem:     mem,
		store:   &failingStore{Adapter: mem},
		emitter: &recordingEmitter{},
		clock:   newClock(),
	}
}

func (e *testEnv) deps() Deps {
	return Deps{
		Store:   e.store,
		Emitter: e.emitter,
		Now:     e.clock.Now,
	}
}
