package feed

import (
	"context"
	"os"
	"testing"

	"github.com/hirrd/hirrd/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisChannelName(t *testing.T) {
	r := NewRedis(nil, RedisOptions{})
	require.Equal(t, "hirrd:thread:app1", r.Channel("app1"))

	r = NewRedis(nil, RedisOptions{Prefix: "staging"})
	require.Equal(t, "staging:thread:app1", r.Channel("app1"))
}

func TestEventCodec(t *testing.T) {
	msg := &store.Message{ID: "m1", Seq: 7, ApplicationID: "app1", SenderID: "a", ReceiverID: "b", Content: " hi\n", CreatedAt: 1000}
	b, err := encodeEvent(InsertedEvent(msg))
	require.NoError(t, err)

	evt, err := decodeEvent(b)
	require.NoError(t, err)
	require.Equal(t, Inserted, evt.Kind)
	require.Equal(t, *msg, *evt.Message)

	_, err = decodeEvent([]byte(`{"kind":"disconnected","application_id":"app1"}`))
	require.Error(t, err, "locally synthesised kinds are not accepted from the wire")

	_, err = decodeEvent([]byte(`{"kind":"inserted","application_id":"app1"}`))
	require.Error(t, err)

	_, err = decodeEvent([]byte(`not json`))
	require.Error(t, err)
}

// TestRedisLive needs a reachable server, e.g. HIRRD_TEST_REDIS_ADDR=localhost:6379.
func TestRedisLive(t *testing.T) {
	addr := os.Getenv("HIRRD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HIRRD_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = rdb.Close() }()

	f := NewRedis(rdb, RedisOptions{Prefix: "hirrd-test"})
	rec := newRecorder()
	sub, err := f.Subscribe(context.Background(), "app1", rec.handle)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, f.Publish(context.Background(), InsertedEvent(&store.Message{ID: "m1", ApplicationID: "app1", Content: "Hello"})))
	evt := rec.next(t)
	require.Equal(t, Inserted, evt.Kind)
	require.Equal(t, "Hello", evt.Message.Content)

	sub.Unsubscribe()
	sub.Unsubscribe()
}
