package core

import (
	"sync"
	"time"
)

const DefaultNotificationTTL = 5 * time.Second

// NotificationQueue keeps at most one visible notification. Push replaces
// whatever is showing; each notification clears itself after the TTL unless
// it has already been replaced.
type NotificationQueue struct {
	mu        sync.Mutex
	clock     Clock
	ttl       time.Duration
	seq       uint64
	current   *Notification
	timer     Timer
	closed    bool
	listeners []func(Notification, bool)
}

func NewNotificationQueue(clock Clock, ttl time.Duration) *NotificationQueue {
	if clock == nil {
		clock = SystemClock()
	}
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &NotificationQueue{clock: clock, ttl: ttl}
}

// Subscribe registers fn; visible is false when a notification is removed.
func (q *NotificationQueue) Subscribe(fn func(n Notification, visible bool)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
}

func (q *NotificationQueue) Push(message string, severity Severity) Notification {
	q.mu.Lock()
	q.seq++
	n := Notification{
		ID:        q.seq,
		Message:   message,
		Severity:  severity,
		CreatedAt: q.clock.Now(),
	}
	if q.closed {
		q.mu.Unlock()
		return n
	}
	if q.timer != nil {
		q.timer.Stop()
	}
	q.current = &n
	id := n.ID
	q.timer = q.clock.AfterFunc(q.ttl, func() { q.expire(id) })
	listeners := append([]func(Notification, bool){}, q.listeners...)
	q.mu.Unlock()

	for _, fn := range listeners {
		fn(n, true)
	}
	return n
}

// Current returns the visible notification, if any.
func (q *NotificationQueue) Current() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return Notification{}, false
	}
	return *q.current, true
}

// Dismiss removes the visible notification early.
func (q *NotificationQueue) Dismiss() {
	q.mu.Lock()
	if q.current == nil {
		q.mu.Unlock()
		return
	}
	id := q.current.ID
	q.mu.Unlock()
	q.expire(id)
}

// Close cancels the pending removal; later pushes are not shown.
func (q *NotificationQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

func (q *NotificationQueue) expire(id uint64) {
	q.mu.Lock()
	if q.current == nil || q.current.ID != id {
		q.mu.Unlock()
		return
	}
	n := *q.current
	q.current = nil
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	listeners := append([]func(Notification, bool){}, q.listeners...)
	q.mu.Unlock()

	for _, fn := range listeners {
		fn(n, false)
	}
}
