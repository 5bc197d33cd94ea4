package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// View is the state of one open chat screen: the merged thread, the draft
// and the lock state. Network calls are made outside the mutex; OnChange
// callbacks run after the state has been updated.
type View struct {
	backend Backend
	gate    *gate.Gate
	appID   string
	userID  string
	logger  *zap.Logger

	mu        sync.Mutex
	app       *store.Application
	status    string
	thread    *Thread
	draft     string
	loaded    bool
	connected bool
	err       error
	sub       *feed.Subscription
	ctx       context.Context
	cancel    context.CancelFunc
	onChange  func()
}

// NewView creates a view of applicationID for userID. Open must be called
// before use.
func NewView(b Backend, g *gate.Gate, applicationID, userID string, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{
		backend: b,
		gate:    g,
		appID:   applicationID,
		userID:  userID,
		logger:  logger.With(zap.String("application_id", applicationID)),
		thread:  NewThread(),
	}
}

// OnChange registers fn to be called after every state change.
func (v *View) OnChange(fn func()) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// Open reads the application, checks that the viewer is a party to it,
// starts the live subscription and, when the thread is unlocked, loads
// history. Subscribing first means no message can fall between the
// history read and the watch; duplicates are merged away.
func (v *View) Open(ctx context.Context) error {
	app, err := v.backend.Application(ctx, v.appID)
	if err != nil {
		return err
	}
	if !app.HasParticipant(v.userID) {
		return errors.Wrapf(ErrUnauthorized, "user %s is not a party to application %s", v.userID, v.appID)
	}

	v.mu.Lock()
	if v.cancel != nil {
		v.mu.Unlock()
		return errors.New("view already open")
	}
	v.app = app
	v.status = app.Status
	v.ctx, v.cancel = context.WithCancel(context.Background())
	watchCtx := v.ctx
	v.mu.Unlock()

	sub, err := v.backend.Subscribe(watchCtx, v.appID, v.handle)
	v.mu.Lock()
	if err != nil {
		v.logger.Warn("live updates unavailable", zap.Error(err))
		v.err = err
	} else {
		v.sub = sub
		v.connected = true
	}
	v.mu.Unlock()

	if v.gate.Allowed(app.Status) {
		if err := v.Reconcile(ctx); err != nil {
			return err
		}
	}
	v.notify()
	return nil
}

// Close stops live delivery. It is safe to call more than once.
func (v *View) Close() {
	v.mu.Lock()
	sub, cancel := v.sub, v.cancel
	v.sub = nil
	v.connected = false
	v.mu.Unlock()

	sub.Unsubscribe()
	if cancel != nil {
		cancel()
	}
}

// SetDraft replaces the composer content.
func (v *View) SetDraft(text string) {
	v.mu.Lock()
	v.draft = text
	v.mu.Unlock()
}

// Draft returns the composer content.
func (v *View) Draft() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

// Send submits the draft. On success the persisted message is merged and
// the draft is cleared, unless it was edited while the call was in flight.
// On failure the draft is kept so the user can try again.
func (v *View) Send(ctx context.Context) (*store.Message, error) {
	v.mu.Lock()
	draft, status, app := v.draft, v.status, v.app
	v.mu.Unlock()

	if app == nil {
		return nil, errors.New("view is not open")
	}
	if strings.TrimSpace(draft) == "" {
		return nil, errors.WithStack(ErrValidation)
	}
	if !v.gate.Allowed(status) {
		return nil, errors.Wrapf(ErrUnauthorized, "application %s is %s", v.appID, status)
	}

	msg, err := v.backend.Send(ctx, v.appID, v.userID, app.Counterpart(v.userID), draft)
	if err != nil {
		v.logger.Warn("send failed", zap.Error(err))
		if errors.Is(err, ErrUnauthorized) {
			v.refreshStatus(ctx)
		}
		v.mu.Lock()
		v.err = err
		v.mu.Unlock()
		v.notify()
		return nil, err
	}

	v.mu.Lock()
	v.thread.Merge(*msg)
	if v.draft == draft {
		v.draft = ""
	}
	v.err = nil
	v.mu.Unlock()
	v.notify()
	return msg, nil
}

// Reconcile reloads history and merges it into the thread.
func (v *View) Reconcile(ctx context.Context) error {
	msgs, err := v.backend.LoadHistory(ctx, v.appID)
	if err != nil {
		v.mu.Lock()
		v.err = err
		v.mu.Unlock()
		v.notify()
		return err
	}
	v.mu.Lock()
	v.thread.Merge(msgs...)
	v.loaded = true
	v.mu.Unlock()
	v.notify()
	return nil
}

// refreshStatus re-reads the application after a denied send so the view
// shows the thread as locked.
func (v *View) refreshStatus(ctx context.Context) {
	app, err := v.backend.Application(ctx, v.appID)
	if err != nil {
		v.logger.Debug("status refresh failed", zap.Error(err))
		return
	}
	v.mu.Lock()
	v.app = app
	v.status = app.Status
	v.mu.Unlock()
}

func (v *View) handle(evt feed.Event) {
	if evt.ApplicationID != "" && evt.ApplicationID != v.appID {
		return
	}

	reconcile := false
	v.mu.Lock()
	switch evt.Kind {
	case feed.Inserted:
		if evt.Message != nil {
			v.thread.Merge(*evt.Message)
		}
	case feed.StatusChanged:
		wasUnlocked := v.gate.Allowed(v.status)
		v.status = evt.Status
		if v.app != nil {
			v.app.Status = evt.Status
		}
		reconcile = !wasUnlocked && v.gate.Allowed(evt.Status)
	case feed.Disconnected:
		v.connected = false
		v.err = ErrFeedDisconnected
		if evt.Err != nil {
			v.err = errors.Wrap(ErrFeedDisconnected, evt.Err.Error())
		}
	case feed.Resumed:
		v.connected = true
		if errors.Is(v.err, ErrFeedDisconnected) {
			v.err = nil
		}
		reconcile = v.loaded || v.gate.Allowed(v.status)
	}
	ctx := v.ctx
	v.mu.Unlock()
	v.notify()

	if reconcile && ctx != nil {
		go func() {
			if err := v.Reconcile(ctx); err != nil && ctx.Err() == nil {
				v.logger.Warn("reconcile failed", zap.Error(err))
			}
		}()
	}
}

func (v *View) notify() {
	v.mu.Lock()
	fn := v.onChange
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Messages returns the visible thread in order.
func (v *View) Messages() []store.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.thread.Messages()
}

// Status returns the latest known application status.
func (v *View) Status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Unlocked reports whether sending is currently permitted.
func (v *View) Unlocked() bool {
	return v.gate.Allowed(v.Status())
}

// Connected reports whether live delivery is running.
func (v *View) Connected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.connected
}

// Err returns the last error the view observed, if any.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Application returns a copy of the application as last seen.
func (v *View) Application() *store.Application {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.app == nil {
		return nil
	}
	app := *v.app
	return &app
}

// Counterpart returns the other party of the thread, or "" before Open.
func (v *View) Counterpart() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.app == nil {
		return ""
	}
	return v.app.Counterpart(v.userID)
}

// Lines renders the thread for display in loc.
func (v *View) Lines(loc *time.Location) []Line {
	return Lines(v.Messages(), v.userID, loc)
}
