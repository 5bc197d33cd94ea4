// Package feed is the realtime change feed: a per-thread push channel that
// tells open chat views about new messages and status changes.
package feed

import (
	"context"
	"sync"

	"github.com/hirrd/hirrd/internal/store"
)

// Kind names what happened on a thread.
type Kind string

const (
	// Inserted carries a newly persisted message.
	Inserted Kind = "inserted"
	// StatusChanged carries the application's new status.
	StatusChanged Kind = "status_changed"
	// Disconnected is synthesised locally when delivery stops.
	Disconnected Kind = "disconnected"
	// Resumed is synthesised locally when delivery restarts after a
	// possible gap; consumers should reload history.
	Resumed Kind = "resumed"
)

// Event is one notification for a thread.
type Event struct {
	Kind          Kind           `json:"kind"`
	ApplicationID string         `json:"application_id"`
	Message       *store.Message `json:"message,omitempty"`
	Status        string         `json:"status,omitempty"`
	Unlocked      bool           `json:"unlocked,omitempty"`
	Err           error          `json:"-"`
}

// Handler receives the events of one subscription, one at a time and in
// delivery order.
type Handler func(Event)

// Feed publishes and subscribes to per-thread events.
type Feed interface {
	Publish(ctx context.Context, evt Event) error
	Subscribe(ctx context.Context, applicationID string, h Handler) (*Subscription, error)
}

// Subscription is the handle of a standing watch.
type Subscription struct {
	once sync.Once
	stop func()
}

// NewSubscription wraps a stop function so that it runs at most once.
func NewSubscription(stop func()) *Subscription {
	return &Subscription{stop: stop}
}

// Unsubscribe stops delivery and releases the underlying resources. Calls
// after the first are no-ops.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}

// InsertedEvent returns the event announcing msg.
func InsertedEvent(msg *store.Message) Event {
	return Event{Kind: Inserted, ApplicationID: msg.ApplicationID, Message: msg}
}
