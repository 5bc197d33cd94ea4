package chat

import (
	"strings"
	"time"

	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/store"
)

const (
	EmptyThreadText = "No messages yet. Start the conversation!"
	LockedTitle     = "Chat Unavailable"
	// SelfAuthor labels the viewer's own messages.
	SelfAuthor = "You"
)

// Line is one rendered message.
type Line struct {
	ID     string
	Mine   bool
	Author string
	Clock  string
	Text   string
}

// Lines renders msgs from userID's point of view.
func Lines(msgs []store.Message, userID string, loc *time.Location) []Line {
	out := make([]Line, 0, len(msgs))
	for _, m := range msgs {
		l := Line{
			ID:     m.ID,
			Mine:   m.SenderID == userID,
			Author: m.SenderID,
			Clock:  Clock(m.CreatedAt, loc),
			Text:   m.Content,
		}
		if l.Mine {
			l.Author = SelfAuthor
		}
		out = append(out, l)
	}
	return out
}

// Clock formats a unix millisecond timestamp as HH:MM in loc.
func Clock(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format("15:04")
}

// LockedText explains why a thread cannot be used, naming the statuses
// that unlock it.
func LockedText(g *gate.Gate) string {
	var names []string
	for _, s := range g.Unlocked() {
		names = append(names, string(s))
	}
	if len(names) == 0 {
		names = []string{string(gate.Shortlisted)}
	}
	return "Messaging is only available for " + strings.Join(names, " or ") + " applications."
}
