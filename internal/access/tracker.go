// Package access tracks whether each application's chat thread is locked or
// unlocked and announces status changes to open views.
package access

import (
	"context"
	"fmt"
	"sync"

	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/store"
	"go.uber.org/zap"
)

// State is the derived accessibility of a thread.
type State string

const (
	Locked   State = "LOCKED"
	Unlocked State = "UNLOCKED"
)

// Change describes one observed status update.
type Change struct {
	ApplicationID string
	Status        string
	From          State
	To            State
}

// Flipped reports whether the update moved the thread across the gate.
func (c Change) Flipped() bool {
	return c.From != c.To
}

// Tracker remembers the last derived state per application. The state is a
// cache for announcements only; sends always re-check the store.
type Tracker struct {
	mu     sync.Mutex
	gate   *gate.Gate
	feed   feed.Feed
	logger *zap.Logger
	states map[string]State
}

// NewTracker creates a tracker that publishes on f.
func NewTracker(g *gate.Gate, f feed.Feed, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		gate:   g,
		feed:   f,
		logger: logger,
		states: make(map[string]State),
	}
}

// Derive maps a status to its thread state.
func (t *Tracker) Derive(status string) State {
	if t.gate.Allowed(status) {
		return Unlocked
	}
	return Locked
}

// Current returns the last observed state, or Locked if none was observed.
func (t *Tracker) Current(applicationID string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.states[applicationID]; ok {
		return s
	}
	return Locked
}

// Observe records app's status and publishes a StatusChanged event so open
// views can redraw. Unlocked→Locked is as valid as Locked→Unlocked.
func (t *Tracker) Observe(ctx context.Context, app *store.Application) (Change, error) {
	to := t.Derive(app.Status)

	t.mu.Lock()
	from, seen := t.states[app.ID]
	if !seen {
		from = Locked
	}
	t.states[app.ID] = to
	t.mu.Unlock()

	change := Change{ApplicationID: app.ID, Status: app.Status, From: from, To: to}
	if change.Flipped() {
		t.logger.Info("thread access changed",
			zap.String("application_id", app.ID),
			zap.String("status", app.Status),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
	}

	if t.feed != nil {
		err := t.feed.Publish(ctx, feed.Event{
			Kind:          feed.StatusChanged,
			ApplicationID: app.ID,
			Status:        app.Status,
			Unlocked:      to == Unlocked,
		})
		if err != nil {
			return change, fmt.Errorf("publish status change: %w", err)
		}
	}
	return change, nil
}
