package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// RedisOptions tunes the Redis feed.
type RedisOptions struct {
	// Prefix namespaces the pub/sub channels. Defaults to "hirrd".
	Prefix string
	// ReconnectPerSecond caps how often a broken subscription retries.
	// Defaults to 2.
	ReconnectPerSecond int
	Logger             *zap.Logger
}

// Redis is a feed over Redis pub/sub, one channel per thread. It lets
// several daemons share live delivery.
type Redis struct {
	rdb    *redis.Client
	prefix string
	rate   int
	logger *zap.Logger
}

// NewRedis creates a feed on an existing client. The caller owns rdb.
func NewRedis(rdb *redis.Client, opts RedisOptions) *Redis {
	if opts.Prefix == "" {
		opts.Prefix = "hirrd"
	}
	if opts.ReconnectPerSecond <= 0 {
		opts.ReconnectPerSecond = 2
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Redis{rdb: rdb, prefix: opts.Prefix, rate: opts.ReconnectPerSecond, logger: opts.Logger}
}

// Channel returns the pub/sub channel for a thread.
func (r *Redis) Channel(applicationID string) string {
	return r.prefix + ":thread:" + applicationID
}

// Publish sends evt as JSON on the thread's channel.
func (r *Redis) Publish(ctx context.Context, evt Event) error {
	if evt.ApplicationID == "" {
		return fmt.Errorf("publish %s: missing application id", evt.Kind)
	}
	payload, err := encodeEvent(evt)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.Channel(evt.ApplicationID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe opens a pub/sub connection for the thread and waits for the
// server to confirm it. go-redis re-establishes the connection on failure;
// the gap is reported to h as Disconnected then Resumed.
func (r *Redis) Subscribe(ctx context.Context, applicationID string, h Handler) (*Subscription, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("subscribe: missing application id")
	}
	channel := r.Channel(applicationID)
	ps := r.rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	go r.receive(ctx, ps, applicationID, h)

	return NewSubscription(func() {
		cancel()
		_ = ps.Close()
	}), nil
}

func (r *Redis) receive(ctx context.Context, ps *redis.PubSub, applicationID string, h Handler) {
	limiter := ratelimit.New(r.rate, ratelimit.WithoutSlack)
	logger := r.logger.With(zap.String("application_id", applicationID))
	disconnected := false

	resume := func() {
		if disconnected {
			disconnected = false
			logger.Info("feed subscription resumed")
			h(Event{Kind: Resumed, ApplicationID: applicationID})
		}
	}

	for {
		msg, err := ps.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return
			}
			if !disconnected {
				disconnected = true
				logger.Warn("feed subscription lost", zap.Error(err))
				h(Event{Kind: Disconnected, ApplicationID: applicationID, Err: err})
			}
			limiter.Take()
			continue
		}

		switch m := msg.(type) {
		case *redis.Subscription:
			if m.Kind == "subscribe" {
				resume()
			}
		case *redis.Message:
			evt, err := decodeEvent([]byte(m.Payload))
			if err != nil {
				logger.Error("dropping undecodable feed payload", zap.Error(err))
				continue
			}
			resume()
			h(evt)
		}
	}
}

func encodeEvent(evt Event) ([]byte, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode feed event: %w", err)
	}
	return b, nil
}

func decodeEvent(b []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(b, &evt); err != nil {
		return Event{}, fmt.Errorf("decode feed event: %w", err)
	}
	if evt.Kind != Inserted && evt.Kind != StatusChanged {
		return Event{}, fmt.Errorf("decode feed event: unexpected kind %q", evt.Kind)
	}
	if evt.Kind == Inserted && evt.Message == nil {
		return Event{}, fmt.Errorf("decode feed event: inserted without message")
	}
	return evt, nil
}
