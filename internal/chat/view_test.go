package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hirrd/hirrd/internal/access"
	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

func openView(t *testing.T, fx *fixture, userID string) *View {
	t.Helper()
	v := NewView(fx.channel, fx.gate, "app1", userID, nil)
	require.NoError(t, v.Open(context.Background()))
	t.Cleanup(v.Close)
	return v
}

func TestViewLockedAtOpen(t *testing.T) {
	fx := newFixture(t, "applied")
	v := openView(t, fx, "cand1")

	require.False(t, v.Unlocked())
	require.Empty(t, v.Messages())

	v.SetDraft("hello")
	_, err := v.Send(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "hello", v.Draft())
	require.Equal(t, 0, fx.count(t))
}

func TestViewCounterpart(t *testing.T) {
	fx := newFixture(t, "applied")
	v := NewView(fx.channel, fx.gate, "app1", "cand1", nil)
	require.Equal(t, "", v.Counterpart())
	require.NoError(t, v.Open(context.Background()))
	t.Cleanup(v.Close)
	require.Equal(t, "rec1", v.Counterpart())

	require.Equal(t, "cand1", openView(t, fx, "rec1").Counterpart())
}

func TestViewRejectsStranger(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	v := NewView(fx.channel, fx.gate, "app1", "intruder", nil)
	require.ErrorIs(t, v.Open(context.Background()), ErrUnauthorized)
}

func TestViewSendEchoesOnce(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	v := openView(t, fx, "cand1")

	v.SetDraft("  Thanks for the shortlist  ")
	msg, err := v.Send(context.Background())
	require.NoError(t, err)
	require.Equal(t, "", v.Draft())

	// The feed delivers the same row again; it must not duplicate.
	time.Sleep(50 * time.Millisecond)
	msgs := v.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, msg.ID, msgs[0].ID)
	require.Equal(t, "Thanks for the shortlist", msgs[0].Content)
}

func TestViewReceivesCounterpartMessages(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	cand := openView(t, fx, "cand1")
	rec := openView(t, fx, "rec1")

	rec.SetDraft("Are you free Tuesday?")
	_, err := rec.Send(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(cand.Messages()) == 1 }, waitFor, tick)
	lines := cand.Lines(time.UTC)
	require.False(t, lines[0].Mine)
	require.Equal(t, "rec1", lines[0].Author)
}

func TestViewConcurrentSendsKeepOrder(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	ctx := context.Background()
	cand := openView(t, fx, "cand1")

	pairs := [][2]string{{"cand1", "rec1"}, {"rec1", "cand1"}}
	errs := make(chan error, len(pairs))
	var wg sync.WaitGroup
	for _, p := range pairs {
		wg.Add(1)
		go func(sender, receiver string) {
			defer wg.Done()
			_, err := fx.channel.Send(ctx, "app1", sender, receiver, "hi from "+sender)
			errs <- err
		}(p[0], p[1])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return len(cand.Messages()) == 2 }, waitFor, tick)
	history, err := fx.channel.LoadHistory(ctx, "app1")
	require.NoError(t, err)
	require.Equal(t, ids(history), ids(cand.Messages()))
}

func TestViewStatusRevocation(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	ctx := context.Background()
	tracker := access.NewTracker(fx.gate, fx.feed, nil)
	v := openView(t, fx, "cand1")

	v.SetDraft("first")
	_, err := v.Send(ctx)
	require.NoError(t, err)

	app, err := fx.db.SetApplicationStatus(ctx, "app1", "rejected")
	require.NoError(t, err)
	_, err = tracker.Observe(ctx, app)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return !v.Unlocked() }, waitFor, tick)
	require.Equal(t, "rejected", v.Status())
	require.Len(t, v.Messages(), 1, "history stays visible")

	v.SetDraft("second")
	_, err = v.Send(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "second", v.Draft())
	require.Equal(t, 1, fx.count(t))
}

func TestViewStaleStatusStillDenied(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	ctx := context.Background()
	v := openView(t, fx, "cand1")

	// Status changes without any announcement: the view still believes the
	// thread is open, but the channel re-reads the store.
	_, err := fx.db.SetApplicationStatus(ctx, "app1", "rejected")
	require.NoError(t, err)
	require.True(t, v.Unlocked())

	v.SetDraft("too late")
	_, err = v.Send(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "too late", v.Draft())
	require.False(t, v.Unlocked(), "denied send refreshes the status")
}

func TestViewUnlockLoadsHistory(t *testing.T) {
	fx := newFixture(t, "viewed")
	ctx := context.Background()
	tracker := access.NewTracker(fx.gate, fx.feed, nil)
	v := openView(t, fx, "cand1")
	require.False(t, v.Unlocked())

	app, err := fx.db.SetApplicationStatus(ctx, "app1", "shortlisted")
	require.NoError(t, err)
	_, err = fx.channel.Send(ctx, "app1", "rec1", "cand1", "Congrats!")
	require.NoError(t, err)
	_, err = tracker.Observe(ctx, app)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return v.Unlocked() && len(v.Messages()) == 1 }, waitFor, tick)
}

func TestViewResumedReconciles(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	ctx := context.Background()
	v := openView(t, fx, "cand1")

	// A row that never reached the feed.
	require.NoError(t, fx.db.InsertMessage(ctx, &store.Message{
		ApplicationID: "app1", SenderID: "rec1", ReceiverID: "cand1", Content: "missed",
	}))

	v.handle(feed.Event{Kind: feed.Disconnected, ApplicationID: "app1"})
	require.False(t, v.Connected())
	require.ErrorIs(t, v.Err(), ErrFeedDisconnected)

	v.handle(feed.Event{Kind: feed.Resumed, ApplicationID: "app1"})
	require.Eventually(t, func() bool { return len(v.Messages()) == 1 }, waitFor, tick)
	require.True(t, v.Connected())
	require.NoError(t, v.Err())
}

func TestViewSendFailureKeepsDraft(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	v := openView(t, fx, "cand1")
	fx.channel.store = &failingStore{Store: fx.db, insertErr: errors.New("timeout")}

	v.SetDraft("retry me")
	_, err := v.Send(context.Background())
	require.ErrorIs(t, err, ErrTransient)
	require.Equal(t, "retry me", v.Draft())
	require.Empty(t, v.Messages())
}

func TestViewSendEmptyDraft(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	v := openView(t, fx, "cand1")

	v.SetDraft("   ")
	_, err := v.Send(context.Background())
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, 0, fx.count(t))
}

func TestViewCloseIsIdempotent(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	v := openView(t, fx, "cand1")
	v.Close()
	v.Close()
	require.False(t, v.Connected())
}

func TestViewOnChange(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	v := NewView(fx.channel, fx.gate, "app1", "cand1", nil)
	changes := make(chan struct{}, 16)
	v.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	require.NoError(t, v.Open(context.Background()))
	defer v.Close()

	select {
	case <-changes:
	case <-time.After(waitFor):
		t.Fatal("no change notification after open")
	}
}
