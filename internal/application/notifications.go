package application

import (
	"sync"
	"time"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

const DefaultNotificationDuration = 3 * time.Second

// NotificationQueue holds stacked toasts. Each entry owns one expiry timer and
// leaves the queue exactly once, by expiry, Dismiss or Close.
type NotificationQueue struct {
	clock    ports.Clock
	duration time.Duration

	mu      sync.Mutex
	closed  bool
	nextID  domain.NotificationID
	entries []domain.Notification
	timers  map[domain.NotificationID]ports.Timer

	listeners listeners
}

func NewNotificationQueue(clock ports.Clock, duration time.Duration) *NotificationQueue {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if duration <= 0 {
		duration = DefaultNotificationDuration
	}

	return &NotificationQueue{
		clock:    clock,
		duration: duration,
		timers:   map[domain.NotificationID]ports.Timer{},
	}
}

// Push adds a toast and arms its expiry. After Close it does nothing and
// returns the zero id.
func (q *NotificationQueue) Push(message string, category domain.Category) domain.NotificationID {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}
	q.nextID++
	id := q.nextID
	now := q.clock.Now()
	q.entries = append(q.entries, domain.Notification{
		ID:        id,
		Message:   message,
		Category:  category,
		CreatedAt: now,
		ExpiresAt: now.Add(q.duration),
	})
	q.timers[id] = q.clock.AfterFunc(q.duration, func() { q.Dismiss(id) })
	q.mu.Unlock()

	q.listeners.notify()
	return id
}

// Dismiss removes id. Unknown or already removed ids are ignored.
func (q *NotificationQueue) Dismiss(id domain.NotificationID) {
	q.mu.Lock()
	index := -1
	for i, entry := range q.entries {
		if entry.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		q.mu.Unlock()
		return
	}

	q.entries = append(q.entries[:index:index], q.entries[index+1:]...)
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	q.mu.Unlock()

	q.listeners.notify()
}

// Active returns the live notifications, oldest first.
func (q *NotificationQueue) Active() []domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.Notification, len(q.entries))
	copy(out, q.entries)
	return out
}

func (q *NotificationQueue) Subscribe(fn func()) func() {
	return q.listeners.add(fn)
}

// Close drops every notification, cancels their timers and refuses later
// pushes.
func (q *NotificationQueue) Close() {
	q.mu.Lock()
	q.closed = true
	changed := len(q.entries) > 0
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.entries = nil
	q.mu.Unlock()

	if changed {
		q.listeners.notify()
	}
}
