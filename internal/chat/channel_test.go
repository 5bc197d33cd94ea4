package chat

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hirrd/hirrd/internal/bus"
	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db      *store.DB
	feed    *feed.Local
	gate    *gate.Gate
	channel *Channel
}

func newFixture(t *testing.T, status string) *fixture {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Migrate()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.PutJob(ctx, &store.Job{ID: "job1", RecruiterID: "rec1", Title: "Backend Engineer"}))
	require.NoError(t, db.PutApplication(ctx, &store.Application{
		ID: "app1", JobID: "job1", ApplicantID: "cand1", Status: status,
	}))

	g, err := gate.New(gate.DefaultUnlocked)
	require.NoError(t, err)
	f := feed.NewLocal(bus.New())
	return &fixture{db: db, feed: f, gate: g, channel: NewChannel(db, g, f, nil)}
}

func (fx *fixture) count(t *testing.T) int {
	t.Helper()
	n, err := fx.db.MessageCount(context.Background())
	require.NoError(t, err)
	return int(n)
}

// failingStore injects errors into message persistence.
type failingStore struct {
	Store
	insertErr error
	listErr   error
}

func (s *failingStore) InsertMessage(ctx context.Context, m *store.Message) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.Store.InsertMessage(ctx, m)
}

func (s *failingStore) ListMessages(ctx context.Context, id string) ([]store.Message, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.Store.ListMessages(ctx, id)
}

type brokenFeed struct{ feed.Feed }

func (brokenFeed) Publish(context.Context, feed.Event) error {
	return errors.New("broker gone")
}

func TestSendDeniedBeforeShortlist(t *testing.T) {
	for _, status := range []string{"applied", "viewed", "rejected", "hired"} {
		t.Run(status, func(t *testing.T) {
			fx := newFixture(t, status)
			_, err := fx.channel.Send(context.Background(), "app1", "cand1", "rec1", "hello")
			require.ErrorIs(t, err, ErrUnauthorized)
			require.Equal(t, 0, fx.count(t))
		})
	}
}

func TestSendPersistsTrimmedMessage(t *testing.T) {
	fx := newFixture(t, "shortlisted")

	msg, err := fx.channel.Send(context.Background(), "app1", "cand1", "rec1", "  Hi, thanks!  ")
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	require.NotZero(t, msg.CreatedAt)
	require.Equal(t, "Hi, thanks!", msg.Content)
	require.Equal(t, 1, fx.count(t))

	history, err := fx.channel.LoadHistory(context.Background(), "app1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, *msg, history[0])
}

func TestSendRejectsEmptyContent(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := fx.channel.Send(context.Background(), "app1", "cand1", "rec1", content)
		require.ErrorIs(t, err, ErrValidation)
	}
	require.Equal(t, 0, fx.count(t))
}

func TestSendChecksParticipants(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	ctx := context.Background()

	cases := []struct {
		name     string
		sender   string
		receiver string
	}{
		{"stranger sender", "intruder", "rec1"},
		{"wrong receiver", "cand1", "intruder"},
		{"self addressed", "rec1", "rec1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.channel.Send(ctx, "app1", tc.sender, tc.receiver, "hi")
			require.ErrorIs(t, err, ErrUnauthorized)
		})
	}
	require.Equal(t, 0, fx.count(t))

	// The recruiter may write to the applicant.
	_, err := fx.channel.Send(ctx, "app1", "rec1", "cand1", "Welcome")
	require.NoError(t, err)
}

func TestSendUnknownApplicationIsUnauthorized(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	_, err := fx.channel.Send(context.Background(), "nope", "cand1", "rec1", "hi")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = fx.channel.Application(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSendRechecksStatus(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	ctx := context.Background()

	_, err := fx.channel.Send(ctx, "app1", "cand1", "rec1", "first")
	require.NoError(t, err)

	_, err = fx.db.SetApplicationStatus(ctx, "app1", "rejected")
	require.NoError(t, err)

	_, err = fx.channel.Send(ctx, "app1", "cand1", "rec1", "second")
	require.ErrorIs(t, err, ErrUnauthorized)

	history, err := fx.channel.LoadHistory(ctx, "app1")
	require.NoError(t, err)
	require.Len(t, history, 1, "archived history stays readable")
}

func TestSendStoreFailureIsTransient(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	cause := errors.New("disk full")
	fx.channel.store = &failingStore{Store: fx.db, insertErr: cause}

	_, err := fx.channel.Send(context.Background(), "app1", "cand1", "rec1", "hi")
	require.ErrorIs(t, err, ErrTransient)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrUnauthorized)

	var te *TransientError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "insert message", te.Op)
}

func TestLoadHistoryFailureIsTransient(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	fx.channel.store = &failingStore{Store: fx.db, listErr: errors.New("io")}

	_, err := fx.channel.LoadHistory(context.Background(), "app1")
	require.ErrorIs(t, err, ErrTransient)
}

func TestLoadHistoryEmptyThread(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	history, err := fx.channel.LoadHistory(context.Background(), "app1")
	require.NoError(t, err)
	require.NotNil(t, history)
	require.Empty(t, history)
}

func TestSendSucceedsWhenAnnouncementFails(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	fx.channel.feed = brokenFeed{fx.feed}

	msg, err := fx.channel.Send(context.Background(), "app1", "cand1", "rec1", "still stored")
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	require.Equal(t, 1, fx.count(t))
}

func TestSendAnnouncesOnFeed(t *testing.T) {
	fx := newFixture(t, "shortlisted")
	got := make(chan feed.Event, 4)
	sub, err := fx.channel.Subscribe(context.Background(), "app1", func(evt feed.Event) { got <- evt })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	msg, err := fx.channel.Send(context.Background(), "app1", "rec1", "cand1", "ping")
	require.NoError(t, err)

	evt := <-got
	require.Equal(t, feed.Inserted, evt.Kind)
	require.Equal(t, msg.ID, evt.Message.ID)
}

func TestAuthorize(t *testing.T) {
	fx := newFixture(t, "applied")
	ctx := context.Background()

	app, err := fx.channel.Authorize(ctx, "app1", "cand1")
	require.NoError(t, err)
	require.Equal(t, "rec1", app.RecruiterID)

	_, err = fx.channel.Authorize(ctx, "app1", "intruder")
	require.ErrorIs(t, err, ErrUnauthorized)
}
