package client

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hirrd/hirrd/internal/api"
	"github.com/hirrd/hirrd/internal/bus"
	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type harness struct {
	socket  string
	channel *chat.Channel
	srv     *grpc.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "hirrd-client-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	db, err := store.Open(filepath.Join(dir, "hirrd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Migrate()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.PutJob(ctx, &store.Job{ID: "job1", RecruiterID: "rec1"}))
	require.NoError(t, db.PutApplication(ctx, &store.Application{ID: "app1", JobID: "job1", ApplicantID: "cand1", Status: "shortlisted"}))

	g, err := gate.New(gate.DefaultUnlocked)
	require.NoError(t, err)
	h := &harness{
		socket:  filepath.Join(dir, "d.sock"),
		channel: chat.NewChannel(db, g, feed.NewLocal(bus.New()), nil),
	}
	h.start(t)
	t.Cleanup(func() { h.srv.Stop() })
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	_ = os.Remove(h.socket)
	lis, err := net.Listen("unix", h.socket)
	require.NoError(t, err)
	h.srv = grpc.NewServer()
	api.RegisterChatServiceServer(h.srv, api.NewChatService(h.channel, zap.NewNop()))
	go func() { _ = h.srv.Serve(lis) }()
}

func TestBackendRoundTrip(t *testing.T) {
	h := newHarness(t)
	c, err := New(h.socket, 10, nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	b := c.As("cand1")
	require.Equal(t, "cand1", b.UserID())

	app, err := b.Application(ctx, "app1")
	require.NoError(t, err)
	require.Equal(t, "rec1", app.RecruiterID)

	history, err := b.LoadHistory(ctx, "app1")
	require.NoError(t, err)
	require.NotNil(t, history)
	require.Empty(t, history)

	events := make(chan feed.Event, 8)
	sub, err := b.Subscribe(ctx, "app1", func(evt feed.Event) { events <- evt })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	msg, err := b.Send(ctx, "app1", "cand1", "rec1", " hi ")
	require.NoError(t, err)
	require.Equal(t, "hi", msg.Content)

	select {
	case evt := <-events:
		require.Equal(t, feed.Inserted, evt.Kind)
		require.Equal(t, msg.ID, evt.Message.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no inserted event over watch")
	}

	_, err = c.As("intruder").Subscribe(ctx, "app1", func(feed.Event) {})
	require.ErrorIs(t, err, chat.ErrUnauthorized)
}

func TestBackendWatchReconnects(t *testing.T) {
	h := newHarness(t)
	c, err := New(h.socket, 20, nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	events := make(chan feed.Event, 16)
	sub, err := c.As("rec1").Subscribe(context.Background(), "app1", func(evt feed.Event) { events <- evt })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	wait := func(kind feed.Kind) {
		t.Helper()
		deadline := time.After(10 * time.Second)
		for {
			select {
			case evt := <-events:
				if evt.Kind == kind {
					return
				}
			case <-deadline:
				t.Fatalf("no %s event", kind)
			}
		}
	}

	h.srv.Stop()
	wait(feed.Disconnected)

	h.start(t)
	wait(feed.Resumed)

	// Live again: new messages flow through the re-opened stream.
	_, err = h.channel.Send(context.Background(), "app1", "cand1", "rec1", "after restart")
	require.NoError(t, err)
	wait(feed.Inserted)
}
