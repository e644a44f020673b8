// Package pathlock serializes operations on the same file.
//
// A Table hands out one lock per path. Waiters are granted the lock in
// arrival order; a waiter whose deadline passes gives up its place without
// disturbing the holder or the rest of the queue.
package pathlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/deque"

	"github.com/simonhull/audiotag/internal/metrics"
	"github.com/simonhull/audiotag/internal/types"
)

// DefaultTimeout bounds how long Acquire waits when no timeout is configured.
const DefaultTimeout = 60 * time.Second

type waiter struct {
	ready   chan struct{}
	granted bool // guarded by Table.mu
}

type entry struct {
	held    bool
	waiters deque.Deque[*waiter]
}

// Table is a set of per-path locks. The zero value is not usable; call New.
type Table struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout time.Duration
	metrics *metrics.Metrics
}

// New creates a Table. A timeout <= 0 selects DefaultTimeout. m may be nil.
func New(timeout time.Duration, m *metrics.Metrics) *Table {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Table{
		entries: make(map[string]*entry),
		timeout: timeout,
		metrics: m,
	}
}

// Timeout returns the acquisition timeout.
func (t *Table) Timeout() time.Duration {
	return t.timeout
}

// Handle is a held lock. Release it exactly once; extra calls are no-ops.
type Handle struct {
	table *Table
	path  string
	once  sync.Once
}

// Path returns the locked path.
func (h *Handle) Path() string {
	return h.path
}

// Release gives the lock to the next waiter, or drops the path from the
// table when nobody is waiting.
func (h *Handle) Release() {
	h.once.Do(func() { h.table.release(h.path) })
}

// Acquire blocks until the lock for path is held, the table's timeout
// elapses, or ctx is done. The last two fail with LockTimeout.
func (t *Table) Acquire(ctx context.Context, path string) (*Handle, error) {
	return t.Enqueue(path).Wait(ctx)
}

// Ticket is a place in a path's queue. Wait on it exactly once.
type Ticket struct {
	table *Table
	path  string
	entry *entry
	w     *waiter
	start time.Time
}

// Enqueue takes a place in the queue for path without blocking. The place
// is granted in Enqueue order, so callers that hand the wait to another
// goroutine still run in the order they called Enqueue.
func (t *Table) Enqueue(path string) *Ticket {
	tk := &Ticket{table: t, path: path, start: time.Now(), w: &waiter{ready: make(chan struct{})}}

	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[path]
	if !ok {
		e = &entry{}
		t.entries[path] = e
		t.metrics.SetActivePaths(len(t.entries))
	}
	tk.entry = e
	if !e.held {
		e.held = true
		tk.w.granted = true
		close(tk.w.ready)
		return tk
	}
	e.waiters.PushBack(tk.w)
	return tk
}

// Wait blocks until the ticket's turn comes, the table's timeout elapses,
// or ctx is done. The last two give up the place and fail with
// LockTimeout.
func (tk *Ticket) Wait(ctx context.Context) (*Handle, error) {
	t := tk.table
	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	var cause error
	select {
	case <-tk.w.ready:
		return tk.granted(), nil
	case <-timer.C:
		cause = fmt.Errorf("waited %v", t.timeout)
	case <-ctx.Done():
		cause = context.Cause(ctx)
	}

	t.mu.Lock()
	if tk.w.granted {
		// The lock was handed over while the deadline fired; keep it.
		t.mu.Unlock()
		return tk.granted(), nil
	}
	e := tk.entry
	if i := e.waiters.Index(func(x *waiter) bool { return x == tk.w }); i >= 0 {
		e.waiters.Remove(i)
	}
	t.mu.Unlock()

	t.metrics.LockTimeout()
	return nil, &types.Error{
		Kind:   types.KindLockTimeout,
		Path:   tk.path,
		Reason: "path lock not acquired",
		Err:    cause,
	}
}

func (tk *Ticket) granted() *Handle {
	tk.table.metrics.ObserveLockWait(time.Since(tk.start))
	return &Handle{table: tk.table, path: tk.path}
}

func (t *Table) release(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[path]
	if !ok || !e.held {
		return
	}
	if e.waiters.Len() > 0 {
		w := e.waiters.PopFront()
		w.granted = true
		close(w.ready)
		return
	}
	delete(t.entries, path)
	t.metrics.SetActivePaths(len(t.entries))
}

// Len returns the number of paths currently held or awaited.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// IsTimeout reports whether err came from a failed acquisition.
func IsTimeout(err error) bool {
	return errors.Is(err, types.ErrLockTimeout)
}
