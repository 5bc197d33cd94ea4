// Package client talks to a running hirrdd over its Unix socket.
package client

import (
	"context"
	"fmt"

	"github.com/hirrd/hirrd/internal/api"
	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/pkg/errors"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client wraps the gRPC connection to the daemon.
type Client struct {
	conn         *grpc.ClientConn
	Chat         *api.ChatServiceClient
	Applications *api.ApplicationServiceClient
	Daemon       *api.DaemonServiceClient

	reconnectPerSecond int
	logger             *zap.Logger
}

// New dials the daemon's Unix domain socket and returns typed service
// clients. reconnectPerSecond paces Watch re-establishment.
func New(socketPath string, reconnectPerSecond int, logger *zap.Logger) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return newClient(conn, reconnectPerSecond, logger), nil
}

func newClient(conn *grpc.ClientConn, reconnectPerSecond int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reconnectPerSecond <= 0 {
		reconnectPerSecond = 1
	}
	return &Client{
		conn:               conn,
		Chat:               api.NewChatServiceClient(conn),
		Applications:       api.NewApplicationServiceClient(conn),
		Daemon:             api.NewDaemonServiceClient(conn),
		reconnectPerSecond: reconnectPerSecond,
		logger:             logger,
	}
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// As returns a chat backend acting for userID.
func (c *Client) As(userID string) *Backend {
	return &Backend{client: c, userID: userID}
}

// Backend implements chat.Backend over the daemon socket for one user.
type Backend struct {
	client *Client
	userID string
}

var _ chat.Backend = (*Backend)(nil)

// UserID returns the identity the backend acts for.
func (b *Backend) UserID() string {
	return b.userID
}

func (b *Backend) Application(ctx context.Context, applicationID string) (*store.Application, error) {
	resp, err := b.client.Chat.GetApplication(ctx, &api.GetApplicationRequest{
		ApplicationID: applicationID,
		ViewerID:      b.userID,
	})
	if err != nil {
		return nil, api.FromStatus(err)
	}
	return resp.Application, nil
}

func (b *Backend) LoadHistory(ctx context.Context, applicationID string) ([]store.Message, error) {
	resp, err := b.client.Chat.LoadHistory(ctx, &api.LoadHistoryRequest{
		ApplicationID: applicationID,
		ViewerID:      b.userID,
	})
	if err != nil {
		return nil, api.FromStatus(err)
	}
	if resp.Messages == nil {
		return []store.Message{}, nil
	}
	return resp.Messages, nil
}

func (b *Backend) Send(ctx context.Context, applicationID, senderID, receiverID, content string) (*store.Message, error) {
	resp, err := b.client.Chat.Send(ctx, &api.SendRequest{
		ApplicationID: applicationID,
		SenderID:      senderID,
		ReceiverID:    receiverID,
		Content:       content,
	})
	if err != nil {
		return nil, api.FromStatus(err)
	}
	return resp.Message, nil
}

// Subscribe opens a Watch stream and returns once the daemon has confirmed
// it. A dropped stream is reported as Disconnected, re-opened at the
// client's reconnect rate, and reported as Resumed once live again.
func (b *Backend) Subscribe(ctx context.Context, applicationID string, h feed.Handler) (*feed.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := b.watch(ctx, applicationID)
	if err != nil {
		cancel()
		return nil, err
	}
	go b.pump(ctx, applicationID, stream, h)
	return feed.NewSubscription(cancel), nil
}

func (b *Backend) watch(ctx context.Context, applicationID string) (grpc.ServerStreamingClient[api.WatchEvent], error) {
	stream, err := b.client.Chat.Watch(ctx, &api.WatchRequest{
		ApplicationID: applicationID,
		ViewerID:      b.userID,
	})
	if err != nil {
		return nil, api.FromStatus(err)
	}
	first, err := stream.Recv()
	if err != nil {
		return nil, api.FromStatus(err)
	}
	if !first.Ready {
		return nil, errors.Wrap(chat.ErrFeedDisconnected, "watch stream did not confirm")
	}
	return stream, nil
}

func (b *Backend) pump(ctx context.Context, applicationID string, stream grpc.ServerStreamingClient[api.WatchEvent], h feed.Handler) {
	logger := b.client.logger.With(zap.String("application_id", applicationID))
	limiter := ratelimit.New(b.client.reconnectPerSecond, ratelimit.WithoutSlack)

	for {
		err := forward(stream, h)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("watch stream dropped", zap.Error(err))
		h(feed.Event{Kind: feed.Disconnected, ApplicationID: applicationID, Err: api.FromStatus(err)})

		for {
			limiter.Take()
			if ctx.Err() != nil {
				return
			}
			stream, err = b.watch(ctx, applicationID)
			if err == nil {
				break
			}
			if errors.Is(err, chat.ErrUnauthorized) || errors.Is(err, chat.ErrNotFound) {
				logger.Error("watch can no longer be re-established", zap.Error(err))
				return
			}
			logger.Debug("watch reconnect failed", zap.Error(err))
		}
		logger.Info("watch stream resumed")
		h(feed.Event{Kind: feed.Resumed, ApplicationID: applicationID})
	}
}

func forward(stream grpc.ServerStreamingClient[api.WatchEvent], h feed.Handler) error {
	for {
		evt, err := stream.Recv()
		if err != nil {
			return err
		}
		if evt.Ready {
			continue
		}
		h(evt.Event)
	}
}
