package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/hirrd/hirrd/internal/bus"
)

const localBufSize = 64

// Local is a feed backed by the in-process bus. It serves every view opened
// against the same daemon.
type Local struct {
	bus *bus.Bus
}

// NewLocal creates a feed on top of b.
func NewLocal(b *bus.Bus) *Local {
	return &Local{bus: b}
}

// topic is the bus namespace of a thread. The bus matches by prefix, so a
// thread's namespace also covers ids that extend it with a dot; Subscribe
// filters on the event's application id.
func topic(applicationID string) string {
	return "thread." + applicationID + "."
}

// Publish puts evt on the bus under the thread's namespace.
func (l *Local) Publish(_ context.Context, evt Event) error {
	if evt.ApplicationID == "" {
		return fmt.Errorf("publish %s: missing application id", evt.Kind)
	}
	l.bus.Publish(bus.Event{
		Kind:      topic(evt.ApplicationID) + string(evt.Kind),
		Timestamp: time.Now(),
		Payload:   evt,
	})
	return nil
}

// Subscribe starts delivering the thread's events to h. If the subscriber
// falls behind and the bus drops events, h receives Resumed before the next
// delivered event so the consumer can reconcile.
func (l *Local) Subscribe(ctx context.Context, applicationID string, h Handler) (*Subscription, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("subscribe: missing application id")
	}
	sub := l.bus.Subscribe(topic(applicationID), localBufSize)
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer sub.Close()
		for {
			select {
			case be, ok := <-sub.C():
				if !ok {
					return
				}
				if ctx.Err() != nil {
					return
				}
				if n := sub.TakeDropped(); n > 0 {
					h(Event{Kind: Resumed, ApplicationID: applicationID})
				}
				evt, ok := be.Payload.(Event)
				if !ok || evt.ApplicationID != applicationID {
					continue
				}
				h(evt)
			case <-ctx.Done():
				return
			}
		}
	}()

	return NewSubscription(func() {
		cancel()
		sub.Close()
	}), nil
}
