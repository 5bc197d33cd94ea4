package chat

import (
	"testing"
	"time"

	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC).UnixMilli()
	msgs := []store.Message{
		{ID: "1", SenderID: "cand1", Content: "Hello", CreatedAt: ts},
		{ID: "2", SenderID: "rec1", Content: "Hi!", CreatedAt: ts + int64(time.Hour/time.Millisecond)},
	}

	lines := Lines(msgs, "cand1", time.UTC)
	require.Equal(t, []Line{
		{ID: "1", Mine: true, Author: "You", Clock: "09:05", Text: "Hello"},
		{ID: "2", Mine: false, Author: "rec1", Clock: "10:05", Text: "Hi!"},
	}, lines)
}

func TestLockedText(t *testing.T) {
	g, err := gate.New(gate.DefaultUnlocked)
	require.NoError(t, err)
	require.Equal(t, "Messaging is only available for shortlisted applications.", LockedText(g))

	g, err = gate.New([]gate.Status{gate.Hired, gate.Shortlisted})
	require.NoError(t, err)
	require.Equal(t, "Messaging is only available for shortlisted or hired applications.", LockedText(g))
}
