// Package toast implements the single-slot notification dispatcher.
//
// At most one toast is visible. Showing a new toast replaces the
// current one and re-arms the auto-dismiss timer; the replaced timer
// is stopped, and a generation id guarantees that a late timer can
// never clear a newer toast.
package toast

import (
	"sync"
	"time"

	"github.com/fraudshield/admin-dashboard/internal/clock"
)

// DefaultDuration is how long a toast stays visible.
const DefaultDuration = 3000 * time.Millisecond

// Type is the toast severity.
type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Warning Type = "warning"
	Info    Type = "info"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case Success, Error, Warning, Info:
		return true
	}
	return false
}

// Toast is one visible notification.
type Toast struct {
	ID        uint64
	Message   string
	Type      Type
	ShownAt   time.Time
	ExpiresAt time.Time
}

// Notifier is what components depend on to raise a toast.
type Notifier interface {
	Show(message string, t Type)
}

// Dispatcher is the single-slot Notifier.
type Dispatcher struct {
	clock    clock.Clock
	duration time.Duration
	onShow   func(Toast)
	onExpire func(Toast)

	mu      sync.Mutex
	current *Toast
	timer   *clock.Timer
	seq     uint64
	closed  bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDuration overrides the auto-dismiss duration. Non-positive values
// keep the default.
func WithDuration(d time.Duration) Option {
	return func(ds *Dispatcher) {
		if d > 0 {
			ds.duration = d
		}
	}
}

// WithOnShow registers a hook called after every Show.
func WithOnShow(fn func(Toast)) Option {
	return func(ds *Dispatcher) { ds.onShow = fn }
}

// WithOnExpire registers a hook called when a toast auto-dismisses.
func WithOnExpire(fn func(Toast)) Option {
	return func(ds *Dispatcher) { ds.onExpire = fn }
}

// NewDispatcher returns an empty Dispatcher driven by c.
func NewDispatcher(c clock.Clock, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		clock:    c,
		duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Show replaces the visible toast. An unknown type falls back to Info.
// Show on a closed Dispatcher is ignored.
func (d *Dispatcher) Show(message string, t Type) {
	if !t.Valid() {
		t = Info
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	id := d.seq
	now := d.clock.Now()
	shown := Toast{
		ID:        id,
		Message:   message,
		Type:      t,
		ShownAt:   now,
		ExpiresAt: now.Add(d.duration),
	}
	d.current = &shown
	d.timer = d.clock.AfterFunc(d.duration, func() { d.expire(id) })
	onShow := d.onShow
	d.mu.Unlock()

	if onShow != nil {
		onShow(shown)
	}
}

func (d *Dispatcher) expire(id uint64) {
	d.mu.Lock()
	if d.current == nil || d.current.ID != id {
		d.mu.Unlock()
		return
	}
	expired := *d.current
	d.current = nil
	d.timer = nil
	onExpire := d.onExpire
	d.mu.Unlock()

	if onExpire != nil {
		onExpire(expired)
	}
}

// Current returns the visible toast, if any.
func (d *Dispatcher) Current() (Toast, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return Toast{}, false
	}
	return *d.current, true
}

// Dismiss hides the visible toast early and cancels its timer.
func (d *Dispatcher) Dismiss() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
}

// Close unmounts the Dispatcher: the pending timer is cancelled and
// later Show calls are ignored.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
	d.closed = true
}

func (d *Dispatcher) clearLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.current = nil
}
