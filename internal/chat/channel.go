// Package chat implements shortlist-gated messaging between the applicant
// and the recruiter of a job application.
package chat

import (
	"context"
	"strings"

	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Store is the persistence the channel needs: application reads plus
// append-only message storage.
type Store interface {
	GetApplication(ctx context.Context, id string) (*store.Application, error)
	InsertMessage(ctx context.Context, m *store.Message) error
	ListMessages(ctx context.Context, applicationID string) ([]store.Message, error)
}

// Backend is what an open chat view talks to. *Channel implements it
// in-process; the daemon client implements it over the socket.
type Backend interface {
	Application(ctx context.Context, applicationID string) (*store.Application, error)
	LoadHistory(ctx context.Context, applicationID string) ([]store.Message, error)
	Send(ctx context.Context, applicationID, senderID, receiverID, content string) (*store.Message, error)
	Subscribe(ctx context.Context, applicationID string, h feed.Handler) (*feed.Subscription, error)
}

// Channel persists, loads and streams the messages of application threads.
type Channel struct {
	store  Store
	gate   *gate.Gate
	feed   feed.Feed
	logger *zap.Logger
}

var _ Backend = (*Channel)(nil)

// NewChannel creates a channel. All dependencies are explicit; there is no
// package-level client.
func NewChannel(s Store, g *gate.Gate, f feed.Feed, logger *zap.Logger) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{store: s, gate: g, feed: f, logger: logger}
}

// Gate returns the policy the channel enforces.
func (c *Channel) Gate() *gate.Gate {
	return c.gate
}

// Application reads the application as currently stored.
func (c *Channel) Application(ctx context.Context, applicationID string) (*store.Application, error) {
	app, err := c.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, Transient("get application", err)
	}
	if app == nil {
		return nil, errors.Wrapf(ErrNotFound, "application %s", applicationID)
	}
	return app, nil
}

// Authorize checks that userID is one of the two parties of the
// application. It does not consult the gate.
func (c *Channel) Authorize(ctx context.Context, applicationID, userID string) (*store.Application, error) {
	app, err := c.Application(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.HasParticipant(userID) {
		return nil, errors.Wrapf(ErrUnauthorized, "user %s is not a party to application %s", userID, applicationID)
	}
	return app, nil
}

// LoadHistory returns the thread in ascending (created_at, seq) order. A
// thread without messages yields an empty slice.
func (c *Channel) LoadHistory(ctx context.Context, applicationID string) ([]store.Message, error) {
	msgs, err := c.store.ListMessages(ctx, applicationID)
	if err != nil {
		return nil, Transient("load history", err)
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	return msgs, nil
}

// Send persists one message after re-reading the application's status. The
// content is trimmed once; the stored row is returned with its server
// assigned id and timestamp and announced on the feed.
func (c *Channel) Send(ctx context.Context, applicationID, senderID, receiverID, content string) (*store.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.WithStack(ErrValidation)
	}

	app, err := c.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, Transient("get application", err)
	}
	if app == nil {
		return nil, errors.Wrapf(ErrUnauthorized, "application %s does not exist", applicationID)
	}
	if !app.HasParticipant(senderID) || app.Counterpart(senderID) != receiverID {
		return nil, errors.Wrapf(ErrUnauthorized, "%s cannot message %s on application %s", senderID, receiverID, applicationID)
	}
	if !c.gate.Allowed(app.Status) {
		return nil, errors.Wrapf(ErrUnauthorized, "application %s is %s", applicationID, app.Status)
	}

	msg := &store.Message{
		ApplicationID: applicationID,
		SenderID:      senderID,
		ReceiverID:    receiverID,
		Content:       content,
	}
	if err := c.store.InsertMessage(ctx, msg); err != nil {
		return nil, Transient("insert message", err)
	}

	// The row is committed; a lost announcement is recovered by reconcile.
	if err := c.feed.Publish(ctx, feed.InsertedEvent(msg)); err != nil {
		c.logger.Warn("failed to announce message",
			zap.Error(err),
			zap.String("application_id", applicationID),
			zap.String("message_id", msg.ID))
	}
	return msg, nil
}

// Subscribe watches the thread for new messages and status changes until
// the returned subscription is released or ctx ends.
func (c *Channel) Subscribe(ctx context.Context, applicationID string, h feed.Handler) (*feed.Subscription, error) {
	sub, err := c.feed.Subscribe(ctx, applicationID, h)
	if err != nil {
		return nil, errors.Wrapf(ErrFeedDisconnected, "subscribe %s: %v", applicationID, err)
	}
	return sub, nil
}
