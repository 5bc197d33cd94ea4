package api

import (
	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/store"
)

// ViewerID on chat requests names the local user the call is made for.
// The socket is owner-only; identity is asserted, not authenticated.

type GetApplicationRequest struct {
	ApplicationID string `json:"application_id"`
	ViewerID      string `json:"viewer_id"`
}

type GetApplicationResponse struct {
	Application *store.Application `json:"application"`
	Unlocked    bool               `json:"unlocked"`
}

type LoadHistoryRequest struct {
	ApplicationID string `json:"application_id"`
	ViewerID      string `json:"viewer_id"`
}

type LoadHistoryResponse struct {
	Messages []store.Message `json:"messages"`
}

type SendRequest struct {
	ApplicationID string `json:"application_id"`
	SenderID      string `json:"sender_id"`
	ReceiverID    string `json:"receiver_id"`
	Content       string `json:"content"`
}

type SendResponse struct {
	Message *store.Message `json:"message"`
}

type WatchRequest struct {
	ApplicationID string `json:"application_id"`
	ViewerID      string `json:"viewer_id"`
}

// WatchEvent is one feed event as streamed to a client. The first message
// of every stream has Ready set and no event: it confirms the subscription
// is live.
type WatchEvent struct {
	EventID          string `json:"event_id"`
	OccurredAtUnixMs int64  `json:"occurred_at_unix_ms"`
	Ready            bool   `json:"ready,omitempty"`
	feed.Event
}

type PutJobRequest struct {
	Job store.Job `json:"job"`
}

type PutJobResponse struct {
	Job *store.Job `json:"job"`
}

type PutApplicationRequest struct {
	Application store.Application `json:"application"`
}

type PutApplicationResponse struct {
	Application *store.Application `json:"application"`
	State       string             `json:"state"`
}

type SetStatusRequest struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
}

type SetStatusResponse struct {
	Application *store.Application `json:"application"`
	State       string             `json:"state"`
	Flipped     bool               `json:"flipped"`
}

type GetStatusRequest struct{}

type GetStatusResponse struct {
	Instance         string   `json:"instance"`
	UptimeMs         int64    `json:"uptime_ms"`
	ApplicationCount int64    `json:"application_count"`
	MessageCount     int64    `json:"message_count"`
	UnlockedStates   []string `json:"unlocked_states"`
	Feed             string   `json:"feed"`
}
