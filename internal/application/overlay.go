package application

import (
	"sync"
	"time"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

const DefaultOverlayDuration = 3 * time.Second

// OverlayScheduler holds at most one full-screen message. Show preempts the
// current message and restarts the expiry from the new call.
type OverlayScheduler struct {
	clock    ports.Clock
	duration time.Duration

	mu      sync.Mutex
	closed  bool
	current *domain.OverlayMessage
	timer   ports.Timer
	token   uint64

	listeners listeners
}

func NewOverlayScheduler(clock ports.Clock, duration time.Duration) *OverlayScheduler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if duration <= 0 {
		duration = DefaultOverlayDuration
	}

	return &OverlayScheduler{clock: clock, duration: duration}
}

func (o *OverlayScheduler) Show(subjectLabel string, category domain.Category) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.stopTimerLocked()
	o.token++
	token := o.token
	now := o.clock.Now()
	o.current = &domain.OverlayMessage{
		SubjectLabel: subjectLabel,
		Category:     category,
		CreatedAt:    now,
		ExpiresAt:    now.Add(o.duration),
	}
	o.timer = o.clock.AfterFunc(o.duration, func() { o.expire(token) })
	o.mu.Unlock()

	o.listeners.notify()
}

func (o *OverlayScheduler) Clear() {
	o.mu.Lock()
	o.stopTimerLocked()
	o.token++
	changed := o.current != nil
	o.current = nil
	o.mu.Unlock()

	if changed {
		o.listeners.notify()
	}
}

// Close clears the overlay for good; later Show calls are ignored.
func (o *OverlayScheduler) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.Clear()
}

func (o *OverlayScheduler) Current() (domain.OverlayMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil {
		return domain.OverlayMessage{}, false
	}
	return *o.current, true
}

func (o *OverlayScheduler) Subscribe(fn func()) func() {
	return o.listeners.add(fn)
}

// expire clears the overlay only if no Show or Clear happened since the
// timer identified by token was armed.
func (o *OverlayScheduler) expire(token uint64) {
	o.mu.Lock()
	if token != o.token || o.current == nil {
		o.mu.Unlock()
		return
	}
	o.current = nil
	o.timer = nil
	o.mu.Unlock()

	o.listeners.notify()
}

func (o *OverlayScheduler) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}
