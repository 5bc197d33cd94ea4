// Package bus is the in-process publish/subscribe fabric the daemon uses to
// fan events out to open watchers.
package bus

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Bus delivers events to every subscription whose namespace is a prefix of
// the event kind.
type Bus struct {
	mu   sync.RWMutex
	subs map[uint64]*Subscription
	next uint64
}

// Subscription is a standing interest in one namespace.
type Subscription struct {
	bus       *Bus
	id        uint64
	namespace string
	ch        chan Event
	dropped   atomic.Uint64
	once      sync.Once
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Publish offers evt to every matching subscription without blocking. A
// subscriber whose buffer is full misses the event and has its drop counter
// incremented.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !strings.HasPrefix(evt.Kind, sub.namespace) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			sub.dropped.Add(1)
		}
	}
}

// Subscribe registers interest in events whose kind starts with namespace.
// bufSize bounds how far the subscriber may lag before events are dropped.
func (b *Bus) Subscribe(namespace string, bufSize int) *Subscription {
	sub := &Subscription{
		bus:       b,
		namespace: namespace,
		ch:        make(chan Event, bufSize),
	}
	b.mu.Lock()
	sub.id = b.next
	b.next++
	b.subs[sub.id] = sub
	b.mu.Unlock()
	return sub
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// C returns the delivery channel. It is closed by Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// TakeDropped returns how many events were dropped since the last call.
func (s *Subscription) TakeDropped() uint64 {
	return s.dropped.Swap(0)
}

// Close removes the subscription and closes its channel. Safe to call more
// than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		close(s.ch)
		s.bus.mu.Unlock()
	})
}
