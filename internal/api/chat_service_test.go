package api

import (
	"context"
	"testing"
	"time"

	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type appStore struct {
	app *store.Application
}

func (s *appStore) GetApplication(_ context.Context, id string) (*store.Application, error) {
	if s.app.ID != id {
		return nil, nil
	}
	app := *s.app
	return &app, nil
}

func (s *appStore) InsertMessage(context.Context, *store.Message) error { return nil }

func (s *appStore) ListMessages(context.Context, string) ([]store.Message, error) {
	return []store.Message{}, nil
}

// replayFeed hands every subscriber a fixed list of events regardless of
// which thread it asked for.
type replayFeed struct {
	events []feed.Event
}

func (f *replayFeed) Publish(context.Context, feed.Event) error { return nil }

func (f *replayFeed) Subscribe(ctx context.Context, _ string, h feed.Handler) (*feed.Subscription, error) {
	go func() {
		for _, evt := range f.events {
			if ctx.Err() != nil {
				return
			}
			h(evt)
		}
	}()
	return feed.NewSubscription(func() {}), nil
}

type watchStream struct {
	grpc.ServerStream
	ctx  context.Context
	sent chan *WatchEvent
}

func (s *watchStream) Context() context.Context { return s.ctx }

func (s *watchStream) Send(evt *WatchEvent) error {
	s.sent <- evt
	return nil
}

func TestWatchDropsOtherThreads(t *testing.T) {
	g, err := gate.New([]gate.Status{gate.Shortlisted})
	require.NoError(t, err)
	st := &appStore{app: &store.Application{ID: "a", JobID: "job1", ApplicantID: "cand1", RecruiterID: "rec1", Status: "shortlisted"}}
	f := &replayFeed{events: []feed.Event{
		feed.InsertedEvent(&store.Message{ID: "leak", ApplicationID: "a.b", Content: "other thread"}),
		{Kind: feed.StatusChanged, ApplicationID: "a.b", Status: "rejected"},
		feed.InsertedEvent(&store.Message{ID: "own", ApplicationID: "a", Content: "this thread"}),
	}}
	svc := NewChatService(chat.NewChannel(st, g, f, zap.NewNop()), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stream := &watchStream{ctx: ctx, sent: make(chan *WatchEvent, 8)}
	done := make(chan error, 1)
	go func() { done <- svc.Watch(&WatchRequest{ApplicationID: "a", ViewerID: "cand1"}, stream) }()

	next := func() *WatchEvent {
		select {
		case evt := <-stream.sent:
			return evt
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for watch event")
			return nil
		}
	}
	require.True(t, next().Ready)
	evt := next()
	require.Equal(t, "a", evt.ApplicationID)
	require.Equal(t, "own", evt.Message.ID)

	select {
	case extra := <-stream.sent:
		t.Fatalf("unexpected event %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatchRejectsNonParticipant(t *testing.T) {
	g, err := gate.New([]gate.Status{gate.Shortlisted})
	require.NoError(t, err)
	st := &appStore{app: &store.Application{ID: "a", JobID: "job1", ApplicantID: "cand1", RecruiterID: "rec1", Status: "shortlisted"}}
	svc := NewChatService(chat.NewChannel(st, g, &replayFeed{}, zap.NewNop()), zap.NewNop())

	stream := &watchStream{ctx: context.Background(), sent: make(chan *WatchEvent, 1)}
	err = svc.Watch(&WatchRequest{ApplicationID: "a", ViewerID: "intruder"}, stream)
	require.ErrorIs(t, FromStatus(err), chat.ErrUnauthorized)
	require.Empty(t, stream.sent)
}
