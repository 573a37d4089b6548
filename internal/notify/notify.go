// Package notify holds the transient toast queue that stores publish to and
// the UI renders.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDuration is how long a toast stays visible unless told otherwise.
const DefaultDuration = 3000 * time.Millisecond

// Kind is the severity of a toast.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Toast is one user-facing message.
type Toast struct {
	ID        string
	Message   string
	Kind      Kind
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Publisher is the side channel stores use to surface outcomes.
type Publisher interface {
	Notify(message string, kind Kind)
}

// EventType says what happened to the queue.
type EventType string

const (
	EventAdded   EventType = "added"
	EventRemoved EventType = "removed"
)

// Event is delivered to subscribers on every queue change.
type Event struct {
	Type  EventType
	Toast Toast
}

// Center is the notification store. It is safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	toasts   []Toast
	timers   map[string]*time.Timer
	subs     map[chan Event]struct{}
	duration time.Duration
	closed   bool
}

// NewCenter creates a notification store whose default toast lifetime is
// duration (DefaultDuration when non-positive).
func NewCenter(duration time.Duration) *Center {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Center{
		timers:   make(map[string]*time.Timer),
		subs:     make(map[chan Event]struct{}),
		duration: duration,
	}
}

// Notify adds a toast with the default duration.
func (c *Center) Notify(message string, kind Kind) {
	c.Add(message, kind, 0)
}

// Add appends a toast and schedules its removal after duration. A
// non-positive duration uses the center's default. It returns the toast id.
func (c *Center) Add(message string, kind Kind, duration time.Duration) string {
	if kind == "" {
		kind = KindInfo
	}
	if duration <= 0 {
		duration = c.duration
	}

	now := time.Now()
	toast := Toast{
		ID:        newID(),
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return toast.ID
	}
	c.toasts = append(c.toasts, toast)
	c.timers[toast.ID] = time.AfterFunc(duration, func() { c.Remove(toast.ID) })
	c.publishLocked(Event{Type: EventAdded, Toast: toast})
	c.mu.Unlock()

	return toast.ID
}

// Remove dismisses a toast. Removing an unknown or already removed id is a no-op.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	for i, toast := range c.toasts {
		if toast.ID == id {
			c.toasts = append(c.toasts[:i:i], c.toasts[i+1:]...)
			c.publishLocked(Event{Type: EventRemoved, Toast: toast})
			return
		}
	}
}

// Toasts returns the active toasts in insertion order.
func (c *Center) Toasts() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Subscribe returns a channel of queue changes and a cancel func. Events are
// dropped for subscribers that fall behind.
func (c *Center) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
			}
			c.mu.Unlock()
		})
	}
}

// Close stops every pending timer and closes subscriber channels.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
	}
}

func (c *Center) publishLocked(ev Event) {
	for ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// newID returns a time-ordered unique id (UUIDv7: millisecond timestamp
// prefix with a random tail).
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Discard is a Publisher that drops every message.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Notify(string, Kind) {}
