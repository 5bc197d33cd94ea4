package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/feed"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const watchBufSize = 64

// ChatService implements hirrd.v1.ChatService on top of a chat.Channel.
type ChatService struct {
	channel *chat.Channel
	logger  *zap.Logger
}

// NewChatService creates a new chat service backed by the channel.
func NewChatService(ch *chat.Channel, logger *zap.Logger) *ChatService {
	return &ChatService{channel: ch, logger: logger}
}

func (s *ChatService) GetApplication(ctx context.Context, req *GetApplicationRequest) (*GetApplicationResponse, error) {
	app, err := s.channel.Authorize(ctx, req.ApplicationID, req.ViewerID)
	if err != nil {
		return nil, ToStatus(err)
	}
	return &GetApplicationResponse{
		Application: app,
		Unlocked:    s.channel.Gate().Allowed(app.Status),
	}, nil
}

func (s *ChatService) LoadHistory(ctx context.Context, req *LoadHistoryRequest) (*LoadHistoryResponse, error) {
	if _, err := s.channel.Authorize(ctx, req.ApplicationID, req.ViewerID); err != nil {
		return nil, ToStatus(err)
	}
	msgs, err := s.channel.LoadHistory(ctx, req.ApplicationID)
	if err != nil {
		return nil, ToStatus(err)
	}
	return &LoadHistoryResponse{Messages: msgs}, nil
}

func (s *ChatService) Send(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	msg, err := s.channel.Send(ctx, req.ApplicationID, req.SenderID, req.ReceiverID, req.Content)
	if err != nil {
		return nil, ToStatus(err)
	}
	return &SendResponse{Message: msg}, nil
}

// Watch streams the thread's feed events until the client goes away.
func (s *ChatService) Watch(req *WatchRequest, stream grpc.ServerStreamingServer[WatchEvent]) error {
	ctx := stream.Context()
	if _, err := s.channel.Authorize(ctx, req.ApplicationID, req.ViewerID); err != nil {
		return ToStatus(err)
	}

	events := make(chan feed.Event, watchBufSize)
	sub, err := s.channel.Subscribe(ctx, req.ApplicationID, func(evt feed.Event) {
		select {
		case events <- evt:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return ToStatus(err)
	}
	defer sub.Unsubscribe()

	if err := stream.Send(&WatchEvent{
		EventID:          uuid.New().String(),
		OccurredAtUnixMs: time.Now().UnixMilli(),
		Ready:            true,
	}); err != nil {
		return err
	}
	s.logger.Debug("watch started",
		zap.String("application_id", req.ApplicationID),
		zap.String("viewer_id", req.ViewerID))

	for {
		select {
		case evt := <-events:
			// Only the authorized thread's events reach the viewer.
			if evt.ApplicationID != req.ApplicationID {
				s.logger.Warn("watch dropped event for another thread",
					zap.String("application_id", req.ApplicationID),
					zap.String("event_application_id", evt.ApplicationID))
				continue
			}
			if err := stream.Send(&WatchEvent{
				EventID:          uuid.New().String(),
				OccurredAtUnixMs: time.Now().UnixMilli(),
				Event:            evt,
			}); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
